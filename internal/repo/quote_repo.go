// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the expiration-facing queries and writes
// for the Quote model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a quote is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
//
// Functions:
//
//   - FindQuotesPastExpiry(ctx, db, now) -> []domain.Quote, error
//     Pending-response quotes whose expiry is strictly before now.
//
//   - FindQuotesExpiringWithin(ctx, db, now, days) -> []domain.Quote, error
//     Pending-response quotes expiring within [now, now+days].
//
//   - UpdateQuoteStatus(ctx, db, id, newStatus) -> error
//     Transitions a quote's status; ErrNotFound when the row is missing.
//
//   - AppendStatusHistory(ctx, db, quoteID, from, to, actor) -> error
//     Appends one row to the status-transition log.
//
//   - AppendActivity(ctx, db, quoteID, kind, detail) -> error
//     Appends one row to the audit trail.
//
// This repository is designed to be wrapped by a higher-level service
// (see services.ExpirationService) which owns batch semantics, failure
// isolation, and reporting.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/oc-ilias/quotegen-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// FindQuotesPastExpiry returns quotes whose expires_at is strictly before now
// and whose status is still pending-response (SENT or VIEWED). Rows with a
// NULL expires_at never match. Results are ordered by expiry ascending so the
// longest-overdue quotes are processed first.
func FindQuotesPastExpiry(ctx context.Context, db *gorm.DB, now time.Time) ([]domain.Quote, error) {
	var out []domain.Quote
	err := db.WithContext(ctx).
		Where("status IN ?", domain.PendingStatuses()).
		Where("expires_at < ?", now).
		Order("expires_at asc").
		Find(&out).Error
	return out, err
}

// FindQuotesExpiringWithin returns pending-response quotes whose expires_at
// falls within [now, now + days*24h], inclusive on both ends. Already-expired
// quotes (expires_at < now) are excluded; those belong to FindQuotesPastExpiry.
func FindQuotesExpiringWithin(ctx context.Context, db *gorm.DB, now time.Time, days int) ([]domain.Quote, error) {
	until := now.Add(time.Duration(days) * 24 * time.Hour)
	var out []domain.Quote
	err := db.WithContext(ctx).
		Where("status IN ?", domain.PendingStatuses()).
		Where("expires_at >= ? AND expires_at <= ?", now, until).
		Order("expires_at asc").
		Find(&out).Error
	return out, err
}

// UpdateQuoteStatus sets the status of the quote identified by id. If no rows
// are affected (quote missing or soft-deleted), it returns ErrNotFound. On DB
// error, the raw error is returned.
func UpdateQuoteStatus(ctx context.Context, db *gorm.DB, id, newStatus string) error {
	res := db.WithContext(ctx).
		Model(&domain.Quote{}).
		Where("id = ?", id).
		Update("status", newStatus)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// AppendStatusHistory inserts one status-transition row for quoteID. The row
// ID is a randomly generated UUID and CreatedAt is set to UTC.
func AppendStatusHistory(ctx context.Context, db *gorm.DB, quoteID, fromStatus, toStatus, actor string) error {
	rec := &domain.QuoteStatusHistory{
		ID:         uuid.NewString(),
		QuoteID:    quoteID,
		FromStatus: fromStatus,
		ToStatus:   toStatus,
		Actor:      actor,
		CreatedAt:  time.Now().UTC(),
	}
	return db.WithContext(ctx).Create(rec).Error
}

// AppendActivity inserts one audit-trail row for quoteID.
func AppendActivity(ctx context.Context, db *gorm.DB, quoteID, kind, detail string) error {
	rec := &domain.QuoteActivity{
		ID:        uuid.NewString(),
		QuoteID:   quoteID,
		Kind:      kind,
		Detail:    detail,
		CreatedAt: time.Now().UTC(),
	}
	return db.WithContext(ctx).Create(rec).Error
}
