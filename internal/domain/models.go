// Package domain defines the persistence models for quotes, their status
// transitions, activity entries, and reminder markers. These types are mapped
// with GORM and form the core data layer of the quote expiration subsystem.
package domain

import (
	"time"

	"gorm.io/gorm"
)

// Quote lifecycle statuses. Only StatusSent and StatusViewed (the
// "pending-response" pair) are eligible for automatic expiration; all other
// transitions are driven by workflows outside this subsystem.
const (
	StatusDraft    = "DRAFT"
	StatusSent     = "SENT"
	StatusViewed   = "VIEWED"
	StatusAccepted = "ACCEPTED"
	StatusRejected = "REJECTED"
	StatusExpired  = "EXPIRED"
)

// ActorSystem marks status transitions performed by the automated engines,
// as opposed to a human-initiated change recorded under a user identifier.
const ActorSystem = "system"

// ActivityExpired is the activity kind recorded when the engine transitions
// a quote to EXPIRED.
const ActivityExpired = "expired"

// PendingStatuses returns the statuses in which a quote is awaiting a
// customer response and thus subject to expiration and reminders.
func PendingStatuses() []string {
	return []string{StatusSent, StatusViewed}
}

// IsPending reports whether status is one of the pending-response statuses.
func IsPending(status string) bool {
	return status == StatusSent || status == StatusViewed
}

// Quote represents a customer quote. The expiration subsystem only reads the
// fields below and only ever writes Status; all other quote fields are owned
// by the (out-of-scope) CRUD layer.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - QuoteNumber: human-readable reference (e.g. "Q-2026-0042").
//   - Status: lifecycle state, constrained to the closed set above.
//   - CustomerName / CustomerEmail: optional recipient details; reminders are
//     silently skipped when CustomerEmail is nil.
//   - Title / Total: used only to populate notification content.
//   - ExpiresAt: optional expiry timestamp; composite-indexed with Status so
//     the engine scans stay cheap.
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
//   - DeletedAt: soft deletion marker (retains row for audit/history).
type Quote struct {
	ID            string         `json:"id"             gorm:"type:char(36);primaryKey"`
	QuoteNumber   string         `json:"quote_number"   gorm:"type:varchar(32);not null;uniqueIndex"`
	Status        string         `json:"status"         gorm:"type:varchar(16);not null;default:'DRAFT';index:idx_status_expiry,priority:1;check:status IN ('DRAFT','SENT','VIEWED','ACCEPTED','REJECTED','EXPIRED')"`
	CustomerName  string         `json:"customer_name"  gorm:"type:varchar(255)"`
	CustomerEmail *string        `json:"customer_email,omitempty" gorm:"type:varchar(320)"`
	Title         string         `json:"title"          gorm:"type:varchar(255)"`
	Total         float64        `json:"total"`
	ExpiresAt     *time.Time     `json:"expires_at,omitempty" gorm:"index:idx_status_expiry,priority:2"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"-"              gorm:"index"`
}

// TableName returns the database table name for Quote.
func (Quote) TableName() string { return "quotes" }

// QuoteStatusHistory is the append-only log of status transitions. One row is
// written per transition, whether performed by a user or by the expiration
// engine (Actor = ActorSystem).
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - QuoteID: foreign key to the transitioned quote (indexed).
//   - FromStatus / ToStatus: the transition endpoints.
//   - Actor: who performed the change ("system" for automated transitions).
//   - CreatedAt: transition timestamp.
//   - Quote: FK association, ensures cascade delete/update.
type QuoteStatusHistory struct {
	ID         string    `json:"id"          gorm:"type:char(36);primaryKey"`
	QuoteID    string    `json:"quote_id"    gorm:"type:char(36);not null;index"`
	FromStatus string    `json:"from_status" gorm:"type:varchar(16);not null"`
	ToStatus   string    `json:"to_status"   gorm:"type:varchar(16);not null"`
	Actor      string    `json:"actor"       gorm:"type:varchar(64);not null;default:'system'"`
	CreatedAt  time.Time `json:"created_at"`

	// Quote is the parent record. History rows are cascade-deleted if the
	// quote is removed.
	Quote Quote `json:"-" gorm:"foreignKey:QuoteID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for QuoteStatusHistory.
func (QuoteStatusHistory) TableName() string { return "quote_status_history" }

// QuoteActivity is the append-only audit trail for a quote. The expiration
// engine records one entry per automatic expiration; other layers append
// their own kinds (sent, viewed, downloaded, ...).
type QuoteActivity struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	QuoteID   string    `json:"quote_id"   gorm:"type:char(36);not null;index"`
	Kind      string    `json:"kind"       gorm:"type:varchar(32);not null"`
	Detail    string    `json:"detail"     gorm:"type:text"`
	CreatedAt time.Time `json:"created_at"`

	Quote Quote `json:"-" gorm:"foreignKey:QuoteID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for QuoteActivity.
func (QuoteActivity) TableName() string { return "quote_activities" }
