// Package domain – reminder markers.
//
// A QuoteReminder row is the sole de-duplication mechanism for expiration
// reminders: its existence means "a reminder for this quote at this
// day-threshold has already been sent". The unique index on
// (quote_id, threshold_days) turns a concurrent double-send race into a
// detectable insert failure instead of a duplicate email.
package domain

import "time"

// QuoteReminder marks that a reminder was sent for a quote at a given
// day-threshold before expiry.
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - QuoteID: the reminded quote (unique per threshold).
//   - ThresholdDays: the look-ahead window that triggered the reminder
//     (unique per quote).
//   - SentAt: when the reminder email was handed to the mail provider.
type QuoteReminder struct {
	ID            string    `json:"id"             gorm:"type:char(36);primaryKey"`
	QuoteID       string    `json:"quote_id"       gorm:"type:char(36);not null;index;uniqueIndex:ux_reminder_quote_threshold"`
	ThresholdDays int       `json:"threshold_days" gorm:"not null;uniqueIndex:ux_reminder_quote_threshold"`
	SentAt        time.Time `json:"sent_at"`

	// Quote is the reminded record. Markers are cascade-deleted if the
	// quote is removed.
	Quote Quote `json:"-" gorm:"foreignKey:QuoteID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for QuoteReminder.
func (QuoteReminder) TableName() string { return "quote_reminders" }
