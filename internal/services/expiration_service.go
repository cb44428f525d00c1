// Package services – ExpirationService
//
// This file implements the expiration and reminder engines plus the
// orchestrator that external schedulers invoke. It scans the quote store for
// quotes past their expiry, transitions them to EXPIRED with an audit trail,
// and sends time-boxed reminder emails de-duplicated by per-(quote, threshold)
// markers.
//
// The engines report through result values, never through returned errors:
// a batch with 8 successes and 2 failures is the normal case, reported as
// {Expired: 8, Errors: [2 strings]}. One bad quote must not abort the batch,
// a failed store fetch short-circuits only its own scan, and panics are
// recovered at each entry point so callers always receive a well-formed
// result. No retries happen here; the scheduler's next tick is the retry.
package services

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/oc-ilias/quotegen-backend/internal/domain"
)

// DefaultReminderDays are the day-thresholds before expiry at which a
// reminder fires when no explicit configuration is provided.
var DefaultReminderDays = []int{7, 3, 1}

// ReminderConfig is the per-invocation configuration for the reminder engine.
// Callers construct it once per run (typically from config.Config); there is
// no process-wide reminder state.
type ReminderConfig struct {
	// Enabled is the global kill switch. When false the reminder engine
	// returns an all-zero result without touching the store.
	Enabled bool `json:"enabled"`
	// ReminderDays are the look-ahead windows, in days, processed
	// independently and in order.
	ReminderDays []int `json:"reminder_days"`
	// FromEmail is the sender address passed to the notifier.
	FromEmail string `json:"from_email"`
	// CompanyName brands the notification content.
	CompanyName string `json:"company_name"`
}

// DefaultReminderConfig returns an enabled configuration with the standard
// 7/3/1-day thresholds.
func DefaultReminderConfig() ReminderConfig {
	return ReminderConfig{
		Enabled:      true,
		ReminderDays: append([]int(nil), DefaultReminderDays...),
	}
}

// ExpirationResult reports one expiration-engine run.
type ExpirationResult struct {
	// Expired counts quotes successfully transitioned to EXPIRED.
	Expired int `json:"expired"`
	// Errors holds one descriptive string per failure.
	Errors []string `json:"errors"`
}

// ReminderResult reports one reminder-engine run.
type ReminderResult struct {
	// ExpiringSoon is the total candidate count across all thresholds. A
	// quote matching several thresholds is counted once per threshold:
	// each threshold is an independent scan, and downstream dashboards
	// rely on the per-threshold count.
	ExpiringSoon int `json:"expiring_soon"`
	// RemindersSent counts only sends that actually occurred (marker and
	// missing-email skips excluded).
	RemindersSent int `json:"reminders_sent"`
	// Errors holds one descriptive string per failure.
	Errors []string `json:"errors"`
}

// ExpirationSummary merges both engines' results for one orchestrator run.
type ExpirationSummary struct {
	Expired       int      `json:"expired"`
	ExpiringSoon  int      `json:"expiring_soon"`
	RemindersSent int      `json:"reminders_sent"`
	Errors        []string `json:"errors"`
}

// QuoteSummary is the slice of a quote handed to the notifier for rendering
// reminder content.
type QuoteSummary struct {
	ID           string    `json:"id"`
	QuoteNumber  string    `json:"quote_number"`
	CustomerName string    `json:"customer_name"`
	Title        string    `json:"title"`
	Total        float64   `json:"total"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// QuoteStore defines the persistence contract required by ExpirationService.
// Implementations are responsible for quote reads/writes, the status-history
// and activity logs, and the reminder-marker table.
type QuoteStore interface {
	// FindQuotesPastExpiry returns pending-response quotes with
	// expires_at strictly before now.
	FindQuotesPastExpiry(ctx context.Context, db *gorm.DB, now time.Time) ([]domain.Quote, error)

	// FindQuotesExpiringWithin returns pending-response quotes with
	// expires_at in [now, now+days].
	FindQuotesExpiringWithin(ctx context.Context, db *gorm.DB, now time.Time, days int) ([]domain.Quote, error)

	// UpdateQuoteStatus transitions a quote's status.
	UpdateQuoteStatus(ctx context.Context, db *gorm.DB, id, newStatus string) error

	// AppendStatusHistory appends one row to the transition log.
	AppendStatusHistory(ctx context.Context, db *gorm.DB, quoteID, fromStatus, toStatus, actor string) error

	// AppendActivity appends one row to the audit trail.
	AppendActivity(ctx context.Context, db *gorm.DB, quoteID, kind, detail string) error

	// HasReminderMarker reports whether a reminder was already sent for
	// (quoteID, thresholdDays).
	HasReminderMarker(ctx context.Context, db *gorm.DB, quoteID string, thresholdDays int) (bool, error)

	// InsertReminderMarker records a sent reminder for (quoteID, thresholdDays).
	InsertReminderMarker(ctx context.Context, db *gorm.DB, quoteID string, thresholdDays int) error
}

// Notifier sends templated notification emails. Implementations are
// fire-and-forget from the engine's perspective: a returned error is recorded
// against the quote and the batch moves on.
type Notifier interface {
	SendReminderEmail(ctx context.Context, to string, summary QuoteSummary, thresholdDays int, cfg ReminderConfig) error
}

// ExpirationService runs the expiration and reminder engines against an
// injected store and notifier. It holds no state between invocations.
type ExpirationService struct {
	// DB is the GORM handle threaded through store calls.
	DB *gorm.DB
	// Store is the quote persistence collaborator.
	Store QuoteStore
	// Notifier delivers reminder emails.
	Notifier Notifier

	// Now overrides the clock in tests. Nil means time.Now.
	Now func() time.Time
}

// NewExpirationService constructs an ExpirationService over the given
// collaborators.
func NewExpirationService(db *gorm.DB, store QuoteStore, notifier Notifier) *ExpirationService {
	return &ExpirationService{DB: db, Store: store, Notifier: notifier}
}

func (s *ExpirationService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// CheckAndExpireQuotes transitions every pending-response quote whose expiry
// is in the past to EXPIRED, appending a status-history row and an activity
// entry per quote.
//
// Failure policy:
//   - A failed fetch returns immediately with Expired: 0 and one error.
//   - A failed write for one quote records one error and continues; the
//     remaining writes for that quote are skipped (no atomicity across
//     quote + history is promised, only isolation between quotes).
//   - A panic anywhere is recovered and appended as a single error; the
//     method never propagates.
func (s *ExpirationService) CheckAndExpireQuotes(ctx context.Context) (res ExpirationResult) {
	res.Errors = []string{}
	defer func() {
		if r := recover(); r != nil {
			res.Errors = append(res.Errors, opError{Kind: errPanic, Err: panicErr(r)}.Error())
		}
	}()

	now := s.now()
	quotes, err := s.Store.FindQuotesPastExpiry(ctx, s.DB, now)
	if err != nil {
		res.Errors = append(res.Errors, opError{Kind: errFetch, Err: err}.Error())
		return res
	}

	for _, q := range quotes {
		if err := s.expireOne(ctx, q); err != nil {
			res.Errors = append(res.Errors, err.Error())
			continue
		}
		res.Expired++
	}
	return res
}

// expireOne performs the three writes for a single expired quote. The first
// failing write aborts the rest and is reported; it never touches any other
// quote.
func (s *ExpirationService) expireOne(ctx context.Context, q domain.Quote) error {
	if err := s.Store.UpdateQuoteStatus(ctx, s.DB, q.ID, domain.StatusExpired); err != nil {
		return opError{Kind: errWrite, QuoteID: q.ID, Err: err}
	}
	if err := s.Store.AppendStatusHistory(ctx, s.DB, q.ID, q.Status, domain.StatusExpired, domain.ActorSystem); err != nil {
		return opError{Kind: errWrite, QuoteID: q.ID, Err: err}
	}
	detail := "quote " + q.QuoteNumber + " expired automatically"
	if err := s.Store.AppendActivity(ctx, s.DB, q.ID, domain.ActivityExpired, detail); err != nil {
		return opError{Kind: errWrite, QuoteID: q.ID, Err: err}
	}
	return nil
}

// SendExpirationReminders sends one reminder per (quote, threshold) pair for
// quotes expiring within each configured look-ahead window. Thresholds are
// processed independently and in the configured order; a quote expiring
// within several windows is a candidate once per window.
//
// Per candidate quote:
//  1. An existing (quote, threshold) marker skips the send silently.
//  2. A missing customer email skips the send silently.
//  3. Otherwise the notifier is invoked and a marker is recorded.
//
// A disabled config returns an all-zero result without any store access.
// Failure policy mirrors CheckAndExpireQuotes: per-quote failures are
// recorded and skipped, a failed scan only loses its own threshold, and
// panics become a single error entry.
func (s *ExpirationService) SendExpirationReminders(ctx context.Context, cfg ReminderConfig) (res ReminderResult) {
	res.Errors = []string{}
	defer func() {
		if r := recover(); r != nil {
			res.Errors = append(res.Errors, opError{Kind: errPanic, Err: panicErr(r)}.Error())
		}
	}()

	if !cfg.Enabled {
		return res
	}

	now := s.now()
	for _, days := range cfg.ReminderDays {
		quotes, err := s.Store.FindQuotesExpiringWithin(ctx, s.DB, now, days)
		if err != nil {
			res.Errors = append(res.Errors, opError{Kind: errFetch, Err: err}.Error())
			continue
		}
		res.ExpiringSoon += len(quotes)

		for _, q := range quotes {
			sent, err := s.remindOne(ctx, q, days, cfg)
			if err != nil {
				res.Errors = append(res.Errors, err.Error())
				continue
			}
			if sent {
				res.RemindersSent++
			}
		}
	}
	return res
}

// remindOne handles one (quote, threshold) candidate. It returns (false, nil)
// for the two silent skips: an existing marker, and a quote without a
// customer email.
func (s *ExpirationService) remindOne(ctx context.Context, q domain.Quote, days int, cfg ReminderConfig) (bool, error) {
	already, err := s.Store.HasReminderMarker(ctx, s.DB, q.ID, days)
	if err != nil {
		return false, opError{Kind: errFetch, QuoteID: q.ID, Err: err}
	}
	if already {
		return false, nil
	}
	if q.CustomerEmail == nil || *q.CustomerEmail == "" {
		return false, nil
	}

	if err := s.Notifier.SendReminderEmail(ctx, *q.CustomerEmail, summarize(q), days, cfg); err != nil {
		return false, opError{Kind: errSend, QuoteID: q.ID, Err: err}
	}
	// The unique index on (quote_id, threshold_days) turns an overlapping
	// concurrent run into an insert failure here rather than a second send.
	if err := s.Store.InsertReminderMarker(ctx, s.DB, q.ID, days); err != nil {
		return false, opError{Kind: errWrite, QuoteID: q.ID, Err: err}
	}
	return true, nil
}

// ProcessQuoteExpirations runs the expiration engine and then the reminder
// engine, merging both results. This is the single entry point for external
// schedulers. Phase 2 always runs regardless of phase 1's errors; the merged
// Errors slice preserves each phase's order, expiration first.
func (s *ExpirationService) ProcessQuoteExpirations(ctx context.Context, cfg ReminderConfig) (sum ExpirationSummary) {
	sum.Errors = []string{}
	defer func() {
		if r := recover(); r != nil {
			sum.Errors = append(sum.Errors, opError{Kind: errPanic, Err: panicErr(r)}.Error())
		}
	}()

	exp := s.CheckAndExpireQuotes(ctx)
	rem := s.SendExpirationReminders(ctx, cfg)

	sum.Expired = exp.Expired
	sum.ExpiringSoon = rem.ExpiringSoon
	sum.RemindersSent = rem.RemindersSent
	sum.Errors = append(sum.Errors, exp.Errors...)
	sum.Errors = append(sum.Errors, rem.Errors...)
	return sum
}

// summarize projects a quote onto the notifier payload. Candidates always
// carry a non-nil expiry (the scans require one), but guard anyway.
func summarize(q domain.Quote) QuoteSummary {
	sum := QuoteSummary{
		ID:           q.ID,
		QuoteNumber:  q.QuoteNumber,
		CustomerName: q.CustomerName,
		Title:        q.Title,
		Total:        q.Total,
	}
	if q.ExpiresAt != nil {
		sum.ExpiresAt = *q.ExpiresAt
	}
	return sum
}

// panicErr normalizes a recovered panic value into an error.
func panicErr(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return fmt.Errorf("%v", r)
}
