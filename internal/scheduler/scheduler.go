// Package scheduler drives the periodic expiration pass.
//
// The Scheduler owns a ticker loop that invokes the expiration orchestration
// at a fixed interval until its context is canceled. Each run is logged and
// measured; failures never stop the loop, the next tick simply retries.
package scheduler

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"github.com/oc-ilias/quotegen-backend/internal/services"
)

var (
	// runQuotesExpired counts quotes transitioned to expired by scheduled runs.
	runQuotesExpired = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "expiration_quotes_expired_total",
		Help: "Total number of quotes marked expired by scheduled runs.",
	})

	// runRemindersSent counts reminder emails recorded by scheduled runs.
	runRemindersSent = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "expiration_reminders_sent_total",
		Help: "Total number of expiration reminders sent by scheduled runs.",
	})

	// runErrors counts per-quote and per-phase errors reported by runs.
	runErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "expiration_run_errors_total",
		Help: "Total number of errors reported by scheduled expiration runs.",
	})

	// runDuration records how long a full expiration pass takes.
	runDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "expiration_run_duration_seconds",
		Help:    "Duration of scheduled expiration runs in seconds.",
		Buckets: prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(runQuotesExpired, runRemindersSent, runErrors, runDuration)
}

// Runner is the orchestration entry point the scheduler drives. The
// expiration service satisfies it.
type Runner interface {
	ProcessQuoteExpirations(ctx context.Context, cfg services.ReminderConfig) services.ExpirationSummary
}

// Options tunes the scheduler loop.
type Options struct {
	// Interval between runs; values <= 0 fall back to one hour.
	Interval time.Duration
	// RunOnStart triggers one pass immediately instead of waiting a full
	// interval after boot.
	RunOnStart bool
}

// Scheduler periodically runs the expiration orchestration.
type Scheduler struct {
	runner   Runner
	cfg      services.ReminderConfig
	interval time.Duration
	onStart  bool
}

// New constructs a Scheduler. The reminder config is captured once and reused
// for every run.
func New(runner Runner, cfg services.ReminderConfig, opts Options) *Scheduler {
	interval := opts.Interval
	if interval <= 0 {
		interval = time.Hour
	}
	return &Scheduler{
		runner:   runner,
		cfg:      cfg,
		interval: interval,
		onStart:  opts.RunOnStart,
	}
}

// Run blocks and executes the expiration pass on every tick until ctx is
// canceled. It is intended to be started in its own goroutine.
func (s *Scheduler) Run(ctx context.Context) {
	log.Info().
		Dur("interval", s.interval).
		Bool("run_on_start", s.onStart).
		Msg("expiration scheduler started")

	if s.onStart {
		s.runOnce(ctx)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("expiration scheduler stopping")
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

// runOnce executes a single pass and records its outcome.
func (s *Scheduler) runOnce(ctx context.Context) {
	start := time.Now()
	sum := s.runner.ProcessQuoteExpirations(ctx, s.cfg)
	elapsed := time.Since(start)

	runQuotesExpired.Add(float64(sum.Expired))
	runRemindersSent.Add(float64(sum.RemindersSent))
	runErrors.Add(float64(len(sum.Errors)))
	runDuration.Observe(elapsed.Seconds())

	evt := log.Info()
	if len(sum.Errors) > 0 {
		evt = log.Warn().Strs("errors", sum.Errors)
	}
	evt.
		Int("expired", sum.Expired).
		Int("expiring_soon", sum.ExpiringSoon).
		Int("reminders_sent", sum.RemindersSent).
		Dur("took", elapsed).
		Msg("expiration run finished")
}
