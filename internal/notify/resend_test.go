package notify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/oc-ilias/quotegen-backend/internal/services"
)

func sampleSummary() services.QuoteSummary {
	return services.QuoteSummary{
		ID:           "3f1c6a6e-0000-0000-0000-000000000001",
		QuoteNumber:  "Q-2026-0042",
		CustomerName: "Ada Lovelace",
		Title:        "Website redesign",
		Total:        4200.5,
		ExpiresAt:    time.Date(2026, time.September, 6, 12, 0, 0, 0, time.UTC),
	}
}

func sampleConfig() services.ReminderConfig {
	cfg := services.DefaultReminderConfig()
	cfg.FromEmail = "quotes@acme.test"
	cfg.CompanyName = "Acme Studio"
	return cfg
}

func TestNewResendNotifier_DisabledWithoutKey(t *testing.T) {
	for _, cfg := range []Config{
		{Enabled: false, APIKey: "re_123"},
		{Enabled: true, APIKey: ""},
	} {
		n := NewResendNotifier(cfg)
		if n.IsEnabled() {
			t.Fatalf("notifier enabled for config %+v; want disabled", cfg)
		}
		err := n.SendReminderEmail(context.Background(), "ada@x.test", sampleSummary(), 7, sampleConfig())
		if !errors.Is(err, ErrDisabled) {
			t.Fatalf("send on disabled client: err = %v; want ErrDisabled", err)
		}
	}
}

func TestNewResendNotifier_EnabledWithKey(t *testing.T) {
	n := NewResendNotifier(Config{Enabled: true, APIKey: "re_123", ReplyTo: "help@acme.test"})
	if !n.IsEnabled() {
		t.Fatalf("notifier disabled despite key; want enabled")
	}
}

func TestReminderSubject(t *testing.T) {
	got := reminderSubject(sampleSummary(), 3, sampleConfig())
	want := "Acme Studio: Your quote Q-2026-0042 expires in 3 days"
	if got != want {
		t.Fatalf("subject = %q; want %q", got, want)
	}

	cfg := sampleConfig()
	cfg.CompanyName = ""
	got = reminderSubject(sampleSummary(), 1, cfg)
	want = "Your quote Q-2026-0042 expires tomorrow"
	if got != want {
		t.Fatalf("subject = %q; want %q", got, want)
	}
}

func TestExpiresInWording(t *testing.T) {
	if got := expiresIn(1); got != "tomorrow" {
		t.Fatalf("expiresIn(1) = %q; want %q", got, "tomorrow")
	}
	if got := expiresIn(7); got != "in 7 days" {
		t.Fatalf("expiresIn(7) = %q; want %q", got, "in 7 days")
	}
}

func TestFormatTotal_GroupsDigits(t *testing.T) {
	if got := formatTotal(4200.5); got != "$4,200.50" {
		t.Fatalf("formatTotal = %q; want %q", got, "$4,200.50")
	}
	if got := formatTotal(99); got != "$99.00" {
		t.Fatalf("formatTotal = %q; want %q", got, "$99.00")
	}
}

func TestReminderBodies_ContainQuoteFacts(t *testing.T) {
	summary := sampleSummary()
	cfg := sampleConfig()

	htmlBody := reminderHTML(summary, 7, cfg)
	textBody := reminderText(summary, 7, cfg)

	for _, body := range []string{htmlBody, textBody} {
		for _, want := range []string{"Ada Lovelace", "Q-2026-0042", "Website redesign", "$4,200.50", "in 7 days", "September 6, 2026", "Acme Studio"} {
			if !strings.Contains(body, want) {
				t.Fatalf("body missing %q:\n%s", want, body)
			}
		}
	}
}

func TestReminderBodies_EscapeAndFallbacks(t *testing.T) {
	summary := sampleSummary()
	summary.CustomerName = ""
	summary.Title = "<script>alert(1)</script>"

	cfg := sampleConfig()
	cfg.CompanyName = ""

	htmlBody := reminderHTML(summary, 3, cfg)
	if strings.Contains(htmlBody, "<script>") {
		t.Fatalf("html body not escaped:\n%s", htmlBody)
	}
	if !strings.Contains(htmlBody, "Hi there,") {
		t.Fatalf("html body missing fallback greeting:\n%s", htmlBody)
	}
	if !strings.Contains(htmlBody, "our team") {
		t.Fatalf("html body missing company fallback:\n%s", htmlBody)
	}

	textBody := reminderText(summary, 3, cfg)
	if !strings.Contains(textBody, "Hi there,") || !strings.Contains(textBody, "our team") {
		t.Fatalf("text body missing fallbacks:\n%s", textBody)
	}
}
