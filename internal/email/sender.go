package email

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Sender delivers transactional email.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Message is a single outbound email.
type Message struct {
	From    string
	To      string
	Subject string
	HTML    string
	Text    string
}

const senderName = "StudyMate"

// sendClient is the slice of the SendGrid client that SendGridSender uses.
type sendClient interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// SendGridSender delivers email through the SendGrid v3 API.
type SendGridSender struct {
	client sendClient
}

// NewSendGridSender creates a sender backed by the given SendGrid API key.
func NewSendGridSender(apiKey string) *SendGridSender {
	return &SendGridSender{client: sendgrid.NewSendClient(apiKey)}
}

// Send delivers the message through SendGrid. A 2xx response counts as
// accepted; anything else is surfaced as an error carrying the response
// body so the caller can log the provider's reason.
func (s *SendGridSender) Send(ctx context.Context, msg Message) error {
	from := mail.NewEmail(senderName, msg.From)
	to := mail.NewEmail("", msg.To)
	m := mail.NewSingleEmail(from, msg.Subject, to, msg.Text, msg.HTML)

	resp, err := s.client.SendWithContext(ctx, m)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("sendgrid rejected message (HTTP %d): %s", resp.StatusCode, resp.Body)
	}
	return nil
}

// LogSender writes email to the log instead of delivering it. It stands in
// when no SendGrid key is configured, for example in local development.
type LogSender struct {
	log zerolog.Logger
}

// NewLogSender creates a sender that only logs.
func NewLogSender(log zerolog.Logger) *LogSender {
	return &LogSender{log: log}
}

// Send logs the message headers and reports success.
func (l *LogSender) Send(_ context.Context, msg Message) error {
	l.log.Info().
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Msg("Email delivery not configured, logging message instead")
	return nil
}
