// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides small aggregate queries used by the
// operational status endpoint to report how much work the next scheduler tick
// will find. Each function is context-aware and safe to call from services
// or handlers.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/oc-ilias/quotegen-backend/internal/domain"
)

// ExpirationStats returns aggregate counts for the expiration subsystem as of
// now: how many pending-response quotes are already past expiry, how many
// expire within the given look-ahead window, and how many reminder markers
// have been recorded in total.
//
// Return values:
//   - pastExpiry:    pending quotes with expires_at < now
//   - expiringSoon:  pending quotes with expires_at in [now, now+withinDays]
//   - remindersSent: total reminder marker rows
//   - err:           database error, if any
func ExpirationStats(ctx context.Context, db *gorm.DB, now time.Time, withinDays int) (pastExpiry, expiringSoon, remindersSent int64, err error) {
	// Session() makes the pending scope reusable across the two counts.
	pending := db.WithContext(ctx).
		Model(&domain.Quote{}).
		Where("status IN ?", domain.PendingStatuses()).
		Session(&gorm.Session{})

	if err = pending.Where("expires_at < ?", now).Count(&pastExpiry).Error; err != nil {
		return 0, 0, 0, err
	}

	until := now.Add(time.Duration(withinDays) * 24 * time.Hour)
	if err = pending.Where("expires_at >= ? AND expires_at <= ?", now, until).Count(&expiringSoon).Error; err != nil {
		return 0, 0, 0, err
	}

	if err = db.WithContext(ctx).Model(&domain.QuoteReminder{}).Count(&remindersSent).Error; err != nil {
		return 0, 0, 0, err
	}
	return pastExpiry, expiringSoon, remindersSent, nil
}
