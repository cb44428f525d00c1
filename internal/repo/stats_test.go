package repo

import (
	"context"
	"testing"
	"time"

	"github.com/oc-ilias/quotegen-backend/internal/domain"
)

func TestExpirationStats(t *testing.T) {
	db := newRepoDB(t)
	now := time.Now().UTC()

	// Two overdue pending quotes, one expiring soon, one terminal.
	mustQuote(t, db, "Q-1", domain.StatusSent, at(now.Add(-time.Hour)))
	mustQuote(t, db, "Q-2", domain.StatusViewed, at(now.Add(-24*time.Hour)))
	soon := mustQuote(t, db, "Q-3", domain.StatusSent, at(now.Add(2*24*time.Hour)))
	mustQuote(t, db, "Q-4", domain.StatusExpired, at(now.Add(-time.Hour)))
	mustQuote(t, db, "Q-5", domain.StatusSent, at(now.Add(30*24*time.Hour))) // outside window

	if err := InsertReminderMarker(context.Background(), db, soon.ID, 7); err != nil {
		t.Fatalf("seed marker: %v", err)
	}

	pastExpiry, expiringSoon, remindersSent, err := ExpirationStats(context.Background(), db, now, 7)
	if err != nil {
		t.Fatalf("ExpirationStats: %v", err)
	}
	if pastExpiry != 2 {
		t.Fatalf("pastExpiry = %d; want 2", pastExpiry)
	}
	if expiringSoon != 1 {
		t.Fatalf("expiringSoon = %d; want 1", expiringSoon)
	}
	if remindersSent != 1 {
		t.Fatalf("remindersSent = %d; want 1", remindersSent)
	}
}

func TestExpirationStats_EmptyTables(t *testing.T) {
	db := newRepoDB(t)

	pastExpiry, expiringSoon, remindersSent, err := ExpirationStats(context.Background(), db, time.Now().UTC(), 7)
	if err != nil {
		t.Fatalf("ExpirationStats: %v", err)
	}
	if pastExpiry != 0 || expiringSoon != 0 || remindersSent != 0 {
		t.Fatalf("got (%d, %d, %d); want zeros", pastExpiry, expiringSoon, remindersSent)
	}
}
