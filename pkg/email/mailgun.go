package email

import (
	"context"
	"errors"
	"fmt"

	mailgun "github.com/mailgun/mailgun-go/v5"
)

// MailgunSender delivers messages through the Mailgun HTTP API.
type MailgunSender struct {
	mg     mailgun.Mailgun
	domain string
}

// NewMailgunSender creates a Mailgun-backed sender. eu switches the client to
// the EU region API base.
func NewMailgunSender(apiKey, domain string, eu bool) *MailgunSender {
	mg := mailgun.NewMailgun(apiKey)
	if eu {
		mg.SetAPIBase(mailgun.APIBaseEU)
	}
	return &MailgunSender{mg: mg, domain: domain}
}

func (s *MailgunSender) Name() string { return "mailgun" }

func (s *MailgunSender) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return errors.New("mailgun: message has no recipient")
	}

	m := mailgun.NewMessage(s.domain, msg.From, msg.Subject, msg.TextBody)
	for _, to := range msg.To {
		if err := m.AddRecipient(to); err != nil {
			return fmt.Errorf("mailgun add recipient: %w", err)
		}
	}
	if msg.ReplyTo != "" {
		m.SetReplyTo(msg.ReplyTo)
	}
	if msg.HTMLBody != "" {
		m.SetHTML(msg.HTMLBody)
	}

	if _, err := s.mg.Send(ctx, m); err != nil {
		return fmt.Errorf("mailgun send: %w", err)
	}
	return nil
}
