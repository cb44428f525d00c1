// Expiration HTTP handlers.
//
// This file exposes REST endpoints for the quote expiration subsystem:
//   - POST /expirations/run     (trigger one expiration + reminder pass)
//   - GET  /expirations/status  (counts of pending work and reminders sent)
//
// Handlers are transport-thin: they call the expiration service or repo and
// translate results into HTTP responses. A run reports failures inside a 200
// body rather than a 5xx status, because a pass can partially succeed and the
// per-quote errors are part of its result.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/oc-ilias/quotegen-backend/internal/http/middleware"
	"github.com/oc-ilias/quotegen-backend/internal/repo"
	"github.com/oc-ilias/quotegen-backend/internal/services"
)

// ExpirationRunner defines the expiration operations consumed by HTTP
// handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type ExpirationRunner interface {
	// ProcessQuoteExpirations runs the expiration pass followed by the
	// reminder pass and returns the merged summary.
	ProcessQuoteExpirations(ctx context.Context, cfg services.ReminderConfig) services.ExpirationSummary
}

// Handlers groups the HTTP endpoints of the expiration subsystem. It depends
// on the abstract ExpirationRunner interface to keep transport concerns
// separate from business logic; the *gorm.DB is used read-only for status
// counts.
type Handlers struct {
	svc        ExpirationRunner
	db         *gorm.DB
	cfg        services.ReminderConfig
	windowDays int
}

// New constructs a Handlers instance. windowDays bounds the "expiring soon"
// count on the status endpoint; values < 1 fall back to 7.
func New(svc ExpirationRunner, db *gorm.DB, cfg services.ReminderConfig, windowDays int) *Handlers {
	if windowDays < 1 {
		windowDays = 7
	}
	return &Handlers{svc: svc, db: db, cfg: cfg, windowDays: windowDays}
}

// StatusResponse reports the current expiration workload.
type StatusResponse struct {
	// CheckedAt is the instant the counts were taken (UTC).
	CheckedAt time.Time `json:"checked_at"`
	// WindowDays is the look-ahead used for the expiring-soon count.
	WindowDays int `json:"window_days"`
	// PastExpiry counts pending quotes whose expiry has already passed.
	PastExpiry int64 `json:"past_expiry"`
	// ExpiringSoon counts pending quotes expiring within the window.
	ExpiringSoon int64 `json:"expiring_soon"`
	// RemindersSent counts reminder markers recorded to date.
	RemindersSent int64 `json:"reminders_sent"`
}

// RunExpirations triggers a single expiration + reminder pass and returns the
// summary. Per-quote failures are reported in the summary's errors list, not
// via the HTTP status.
func (h *Handlers) RunExpirations(c *gin.Context) {
	sum := h.svc.ProcessQuoteExpirations(c.Request.Context(), h.cfg)

	lg := middleware.LoggerFrom(c)
	evt := lg.Info()
	if len(sum.Errors) > 0 {
		evt = lg.Warn()
	}
	evt.
		Int("expired", sum.Expired).
		Int("expiring_soon", sum.ExpiringSoon).
		Int("reminders_sent", sum.RemindersSent).
		Int("errors", len(sum.Errors)).
		Msg("expiration run")

	ok(c, http.StatusOK, sum)
}

// ExpirationStatus returns counts of pending expiration work without
// mutating anything.
func (h *Handlers) ExpirationStatus(c *gin.Context) {
	now := time.Now().UTC()
	past, soon, sent, err := repo.ExpirationStats(c.Request.Context(), h.db, now, h.windowDays)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeStatusFailed, "expiration status unavailable")
		return
	}
	ok(c, http.StatusOK, StatusResponse{
		CheckedAt:     now,
		WindowDays:    h.windowDays,
		PastExpiry:    past,
		ExpiringSoon:  soon,
		RemindersSent: sent,
	})
}
