package email

import (
	"context"
	"fmt"
	"log/slog"

	"contact-relay-backend/config"
)

// LogSender accepts every message and only logs it. Used for local development.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Name() string { return "log" }

func (s *LogSender) Send(_ context.Context, msg Message) error {
	s.logger.Info("sending email (log provider)",
		"to", msg.To,
		"from", msg.From,
		"reply_to", msg.ReplyTo,
		"subject", msg.Subject,
	)
	return nil
}

// New builds the Sender selected by cfg.MailProvider.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Sender, error) {
	switch cfg.MailProvider {
	case config.ProviderMailgun:
		return NewMailgunSender(cfg.MailgunAPIKey, cfg.MailgunDomain, cfg.MailgunEU), nil
	case config.ProviderSES:
		return NewSESSender(ctx, cfg.AWSRegion)
	case config.ProviderSMTP:
		return NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword), nil
	case config.ProviderLog:
		return NewLogSender(logger), nil
	default:
		return nil, fmt.Errorf("unknown mail provider %q", cfg.MailProvider)
	}
}
