// Package repo – QuoteStore adapter.
//
// GormQuoteStore adapts the repository free functions in this package to the
// services.QuoteStore interface expected by the ExpirationService. It keeps
// the service decoupled from the concrete repo package while reusing the
// existing functions, and is shared by the HTTP wiring and the scheduler loop.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/oc-ilias/quotegen-backend/internal/domain"
)

// GormQuoteStore proxies services.QuoteStore calls to the repo free functions.
type GormQuoteStore struct{}

// FindQuotesPastExpiry proxies repo.FindQuotesPastExpiry.
func (GormQuoteStore) FindQuotesPastExpiry(ctx context.Context, db *gorm.DB, now time.Time) ([]domain.Quote, error) {
	return FindQuotesPastExpiry(ctx, db, now)
}

// FindQuotesExpiringWithin proxies repo.FindQuotesExpiringWithin.
func (GormQuoteStore) FindQuotesExpiringWithin(ctx context.Context, db *gorm.DB, now time.Time, days int) ([]domain.Quote, error) {
	return FindQuotesExpiringWithin(ctx, db, now, days)
}

// UpdateQuoteStatus proxies repo.UpdateQuoteStatus.
func (GormQuoteStore) UpdateQuoteStatus(ctx context.Context, db *gorm.DB, id, newStatus string) error {
	return UpdateQuoteStatus(ctx, db, id, newStatus)
}

// AppendStatusHistory proxies repo.AppendStatusHistory.
func (GormQuoteStore) AppendStatusHistory(ctx context.Context, db *gorm.DB, quoteID, fromStatus, toStatus, actor string) error {
	return AppendStatusHistory(ctx, db, quoteID, fromStatus, toStatus, actor)
}

// AppendActivity proxies repo.AppendActivity.
func (GormQuoteStore) AppendActivity(ctx context.Context, db *gorm.DB, quoteID, kind, detail string) error {
	return AppendActivity(ctx, db, quoteID, kind, detail)
}

// HasReminderMarker proxies repo.HasReminderMarker.
func (GormQuoteStore) HasReminderMarker(ctx context.Context, db *gorm.DB, quoteID string, thresholdDays int) (bool, error) {
	return HasReminderMarker(ctx, db, quoteID, thresholdDays)
}

// InsertReminderMarker proxies repo.InsertReminderMarker.
func (GormQuoteStore) InsertReminderMarker(ctx context.Context, db *gorm.DB, quoteID string, thresholdDays int) error {
	return InsertReminderMarker(ctx, db, quoteID, thresholdDays)
}
