package httpapi

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/oc-ilias/quotegen-backend/internal/config"
	"github.com/oc-ilias/quotegen-backend/internal/domain"
	"github.com/oc-ilias/quotegen-backend/internal/services"
)

// --- tiny fake notifier to satisfy services.Notifier ---
type fakeNotifier struct{ sent int }

func (f *fakeNotifier) SendReminderEmail(context.Context, string, services.QuoteSummary, int, services.ReminderConfig) error {
	f.sent++
	return nil
}

// --- test DB helper (pure-Go sqlite, no CGO) ---
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:routerdb_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.Exec("PRAGMA foreign_keys=ON;")
	if err := db.AutoMigrate(&domain.Quote{}, &domain.QuoteStatusHistory{}, &domain.QuoteActivity{}, &domain.QuoteReminder{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func baseConfig() config.Config {
	return config.Config{
		APIBasePath:      "/api/v1",
		StatusWindowDays: 7,
		RateRPS:          100,
		RateBurst:        10,
		Security:         config.SecurityConfig{EnableHSTS: false, HSTSMaxAge: 0},
		OTEL:             config.OTELConfig{ServiceName: "test-svc"},
		Reminders: config.RemindersConfig{
			Enabled:     true,
			Days:        []int{7, 3, 1},
			FromEmail:   "quotes@localhost",
			CompanyName: "Test Co",
		},
	}
}

func TestRegisterRoutes_CORSAllowAll_Health_Metrics_Fallbacks(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	cfg := baseConfig()
	cfg.CORS = config.CORSConfig{AllowedOrigins: nil} // triggers AllowAllOrigins branch
	RegisterRoutes(r, newTestDB(t), &fakeNotifier{}, cfg)

	// /health works
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /health = %d", w.Code)
	}
	// CORS (AllowAllOrigins) → header "*"
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("AllowAllOrigins expected '*', got %q", got)
	}
	// Security headers applied
	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Fatalf("expected nosniff header, got %q", got)
	}

	// /metrics is wired
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK || w.Body.Len() == 0 {
		t.Fatalf("GET /metrics bad: code=%d len=%d", w.Code, w.Body.Len())
	}

	// NoRoute → 404
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/nope", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("GET /nope expected 404, got %d", w.Code)
	}

	// NoMethod → 405 (DELETE /health)
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodDelete, "/health", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("DELETE /health expected 405, got %d", w.Code)
	}
}

func TestRegisterRoutes_CORSWithOrigins_HeaderEcho(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	cfg := baseConfig()
	cfg.CORS = config.CORSConfig{AllowedOrigins: []string{"http://example.com"}}
	RegisterRoutes(r, newTestDB(t), &fakeNotifier{}, cfg)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://example.com")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /health = %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://example.com" {
		t.Fatalf("expected echoed origin, got %q", got)
	}

	// Unknown origin is not echoed
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://evil.example")
	r.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got == "http://evil.example" {
		t.Fatalf("unknown origin must not be echoed")
	}
}

func TestRegisterRoutes_RunAndStatusEndToEnd(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	db := newTestDB(t)
	notifier := &fakeNotifier{}
	RegisterRoutes(r, db, notifier, baseConfig())

	now := time.Now().UTC()
	past := now.Add(-2 * time.Hour)
	email := "ada@example.com"
	q := &domain.Quote{
		ID:            uuid.NewString(),
		QuoteNumber:   "Q-9001",
		Status:        domain.StatusSent,
		Title:         "Landing page",
		Total:         1500,
		CustomerEmail: &email,
		ExpiresAt:     &past,
	}
	if err := db.Create(q).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	// Trigger a run; the seeded quote is past expiry and must transition.
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/expirations/run", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("POST run = %d body=%s", w.Code, w.Body.String())
	}
	var sum services.ExpirationSummary
	if err := json.Unmarshal(w.Body.Bytes(), &sum); err != nil {
		t.Fatalf("json: %v", err)
	}
	if sum.Expired != 1 || len(sum.Errors) != 0 {
		t.Fatalf("unexpected summary: %+v", sum)
	}

	var got domain.Quote
	if err := db.First(&got, "id = ?", q.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Status != domain.StatusExpired {
		t.Fatalf("status = %q; want expired", got.Status)
	}

	// Status endpoint reflects the cleaned-up backlog.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/v1/expirations/status", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("GET status = %d", w.Code)
	}
	var status struct {
		PastExpiry   int64 `json:"past_expiry"`
		ExpiringSoon int64 `json:"expiring_soon"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &status); err != nil {
		t.Fatalf("json: %v", err)
	}
	if status.PastExpiry != 0 {
		t.Fatalf("past_expiry = %d; want 0 after run", status.PastExpiry)
	}
}

func TestRegisterRoutes_GzipCompression(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r, newTestDB(t), &fakeNotifier{}, baseConfig())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	r.ServeHTTP(w, req)

	if got := w.Header().Get("Content-Encoding"); got != "gzip" {
		t.Fatalf("expected gzip encoding, got %q", got)
	}
	zr, err := gzip.NewReader(w.Body)
	if err != nil {
		t.Fatalf("gzip reader: %v", err)
	}
	raw, err := io.ReadAll(zr)
	if err != nil {
		t.Fatalf("gunzip: %v", err)
	}
	var body map[string]string
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if body["status"] != "ok" {
		t.Fatalf("unexpected health body: %v", body)
	}
}

func TestReminderConfig_Mapping(t *testing.T) {
	cfg := baseConfig()
	rc := ReminderConfig(cfg)
	if !rc.Enabled || rc.FromEmail != "quotes@localhost" || rc.CompanyName != "Test Co" {
		t.Fatalf("unexpected mapping: %+v", rc)
	}
	if len(rc.ReminderDays) != 3 || rc.ReminderDays[0] != 7 {
		t.Fatalf("unexpected days: %v", rc.ReminderDays)
	}
}
