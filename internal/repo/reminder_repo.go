// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository helpers for the QuoteReminder
// marker used to de-duplicate expiration reminders per (quote, threshold).
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/oc-ilias/quotegen-backend/internal/domain"
)

// ErrDuplicate indicates that a reminder marker already exists for the given
// (quote_id, threshold_days) pair.
var ErrDuplicate = errors.New("duplicate")

// HasReminderMarker reports whether a reminder was already sent for quoteID
// at the given day-threshold. The marker's presence is authoritative.
func HasReminderMarker(ctx context.Context, db *gorm.DB, quoteID string, thresholdDays int) (bool, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.QuoteReminder{}).
		Where("quote_id = ? AND threshold_days = ?", quoteID, thresholdDays).
		Count(&n).Error
	return n > 0, err
}

// InsertReminderMarker records that a reminder was sent for quoteID at the
// given day-threshold. It returns ErrDuplicate on a unique-index violation,
// which is how a concurrent overlapping scan surfaces instead of producing a
// second send.
func InsertReminderMarker(ctx context.Context, db *gorm.DB, quoteID string, thresholdDays int) error {
	rec := &domain.QuoteReminder{
		ID:            uuid.NewString(),
		QuoteID:       quoteID,
		ThresholdDays: thresholdDays,
		SentAt:        time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(rec).Error; err != nil {
		// glebarez/sqlite often returns plain-text errors for UNIQUE violations.
		low := strings.ToLower(err.Error())
		if errors.Is(err, gorm.ErrDuplicatedKey) ||
			strings.Contains(low, "unique constraint failed") ||
			strings.Contains(low, "constraint failed: unique") {
			return ErrDuplicate
		}
		return err
	}
	return nil
}
