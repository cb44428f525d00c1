// Package notify implements the outbound notification contract over the
// Resend email API. It renders the expiration reminder template (HTML plus a
// plain-text fallback) and hands it to the provider; delivery is
// fire-and-forget from the engine's perspective.
//
// The client supports a disabled mode (no API key, or explicitly switched
// off) in which sends return ErrDisabled instead of silently succeeding, so
// a misconfigured deployment shows up in the run's error list rather than
// minting reminder markers for emails that never left.
package notify

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/resend/resend-go/v2"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/oc-ilias/quotegen-backend/internal/services"
)

// ErrDisabled is returned by SendReminderEmail when the client has no API key
// or was constructed disabled.
var ErrDisabled = errors.New("email sending is disabled")

// Config holds the Resend client configuration.
type Config struct {
	Enabled bool
	APIKey  string
	ReplyTo string
}

// ResendNotifier sends reminder emails through Resend. It satisfies
// services.Notifier.
type ResendNotifier struct {
	client  *resend.Client
	enabled bool
	replyTo string
}

var _ services.Notifier = (*ResendNotifier)(nil)

// printer renders totals with English digit grouping ("4,200.50").
var printer = message.NewPrinter(language.English)

// NewResendNotifier creates a Resend-backed notifier. A missing API key or a
// disabled config yields a client whose sends fail with ErrDisabled.
func NewResendNotifier(cfg Config) *ResendNotifier {
	if !cfg.Enabled || cfg.APIKey == "" {
		return &ResendNotifier{enabled: false}
	}
	return &ResendNotifier{
		client:  resend.NewClient(cfg.APIKey),
		enabled: true,
		replyTo: cfg.ReplyTo,
	}
}

// IsEnabled returns whether the notifier will attempt deliveries.
func (n *ResendNotifier) IsEnabled() bool { return n.enabled }

// SendReminderEmail renders and sends one expiration reminder for the quote
// summary at the given day-threshold.
func (n *ResendNotifier) SendReminderEmail(ctx context.Context, to string, summary services.QuoteSummary, thresholdDays int, cfg services.ReminderConfig) error {
	if !n.enabled {
		return ErrDisabled
	}

	params := &resend.SendEmailRequest{
		From:    cfg.FromEmail,
		To:      []string{to},
		Subject: reminderSubject(summary, thresholdDays, cfg),
		Html:    reminderHTML(summary, thresholdDays, cfg),
		Text:    reminderText(summary, thresholdDays, cfg),
	}
	if n.replyTo != "" {
		params.ReplyTo = n.replyTo
	}

	if _, err := n.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("send reminder email: %w", err)
	}
	return nil
}

// reminderSubject builds the subject line, e.g.
// "Your quote Q-2026-0042 expires in 3 days".
func reminderSubject(summary services.QuoteSummary, days int, cfg services.ReminderConfig) string {
	subject := fmt.Sprintf("Your quote %s expires %s", summary.QuoteNumber, expiresIn(days))
	if cfg.CompanyName != "" {
		subject = cfg.CompanyName + ": " + subject
	}
	return subject
}

// expiresIn phrases the threshold for subject and body copy.
func expiresIn(days int) string {
	if days == 1 {
		return "tomorrow"
	}
	return fmt.Sprintf("in %d days", days)
}

func formatTotal(total float64) string {
	return printer.Sprintf("$%.2f", total)
}

func greetingName(summary services.QuoteSummary) string {
	if strings.TrimSpace(summary.CustomerName) != "" {
		return summary.CustomerName
	}
	return "there"
}

func reminderHTML(summary services.QuoteSummary, days int, cfg services.ReminderConfig) string {
	company := cfg.CompanyName
	if company == "" {
		company = "our team"
	}
	var b strings.Builder
	b.WriteString("<h2>Quote expiration reminder</h2>")
	fmt.Fprintf(&b, "<p>Hi %s,</p>", html.EscapeString(greetingName(summary)))
	fmt.Fprintf(&b, "<p>Your quote <strong>%s</strong>", html.EscapeString(summary.QuoteNumber))
	if summary.Title != "" {
		fmt.Fprintf(&b, " (%s)", html.EscapeString(summary.Title))
	}
	fmt.Fprintf(&b, " for <strong>%s</strong> expires %s, on %s.</p>",
		formatTotal(summary.Total), expiresIn(days), summary.ExpiresAt.Format("January 2, 2006"))
	b.WriteString("<p>If you would like to go ahead, please accept the quote before it expires.</p>")
	fmt.Fprintf(&b, "<p>Thanks,<br>%s</p>", html.EscapeString(company))
	return b.String()
}

func reminderText(summary services.QuoteSummary, days int, cfg services.ReminderConfig) string {
	company := cfg.CompanyName
	if company == "" {
		company = "our team"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", greetingName(summary))
	fmt.Fprintf(&b, "Your quote %s", summary.QuoteNumber)
	if summary.Title != "" {
		fmt.Fprintf(&b, " (%s)", summary.Title)
	}
	fmt.Fprintf(&b, " for %s expires %s, on %s.\n\n",
		formatTotal(summary.Total), expiresIn(days), summary.ExpiresAt.Format("January 2, 2006"))
	b.WriteString("If you would like to go ahead, please accept the quote before it expires.\n\n")
	fmt.Fprintf(&b, "Thanks,\n%s\n", company)
	return b.String()
}
