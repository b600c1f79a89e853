package contact

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Message is a formatted contact email ready for the provider.
type Message struct {
	ID          string
	Subject     string
	Text        string
	HTML        string
	ReplyTo     string
	ReplyToName string
}

// Deliverer hands a Message to an email provider.
type Deliverer interface {
	Deliver(ctx context.Context, m Message) error
}

// SendGridConfig holds the provider credentials and addresses.
type SendGridConfig struct {
	APIKey    string
	FromEmail string
	FromName  string
	To        string
}

// SendGrid delivers messages through the SendGrid v3 API.
type SendGrid struct {
	client *sendgrid.Client
	from   *mail.Email
	to     *mail.Email
}

// NewSendGrid validates cfg and builds a SendGrid deliverer.
func NewSendGrid(cfg SendGridConfig) (*SendGrid, error) {
	if cfg.APIKey == "" || cfg.FromEmail == "" || cfg.To == "" {
		return nil, fmt.Errorf("contact: incomplete sendgrid config (from=%q to=%q)", cfg.FromEmail, cfg.To)
	}
	return &SendGrid{
		client: sendgrid.NewSendClient(cfg.APIKey),
		from:   mail.NewEmail(cfg.FromName, cfg.FromEmail),
		to:     mail.NewEmail("", cfg.To),
	}, nil
}

// Deliver sends m. Provider errors are returned for logging only; callers
// must not show them to visitors.
func (s *SendGrid) Deliver(ctx context.Context, m Message) error {
	msg := mail.NewSingleEmail(s.from, m.Subject, s.to, m.Text, m.HTML)
	if m.ReplyTo != "" {
		msg.SetReplyTo(mail.NewEmail(m.ReplyToName, m.ReplyTo))
	}
	if m.ID != "" {
		msg.SetHeader("X-Entity-Ref-ID", m.ID)
	}
	resp, err := s.client.SendWithContext(ctx, msg)
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("sendgrid: status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

// LogDeliverer writes messages to the log instead of sending them. It backs
// local development when no provider key is configured.
type LogDeliverer struct {
	Logger *slog.Logger
}

func (d LogDeliverer) Deliver(ctx context.Context, m Message) error {
	d.Logger.InfoContext(ctx, "contact message (not sent, no provider configured)",
		slog.String("id", m.ID),
		slog.String("subject", m.Subject),
		slog.String("reply_to", m.ReplyTo),
	)
	return nil
}
