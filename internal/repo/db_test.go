package repo

import (
	"path/filepath"
	"testing"

	"github.com/oc-ilias/quotegen-backend/internal/domain"
)

func TestOpenSQLite_CreatesAndMigrates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quotes.db")

	db, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}

	m := db.Migrator()
	for _, tbl := range []any{&domain.Quote{}, &domain.QuoteStatusHistory{}, &domain.QuoteActivity{}, &domain.QuoteReminder{}} {
		if !m.HasTable(tbl) {
			t.Fatalf("expected table for %T after migrate", tbl)
		}
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func TestOpenSQLite_MissingParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does", "not", "exist", "quotes.db")
	if _, err := OpenSQLite(path); err == nil {
		t.Fatalf("expected error for missing parent directory")
	}
}
