package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"contact-relay-backend/internal/domain"
	"contact-relay-backend/pkg/email"
	"contact-relay-backend/pkg/metrics"

	"github.com/go-playground/validator/v10"
)

// DefaultProviderTimeout bounds a provider call when none is configured.
const DefaultProviderTimeout = 10 * time.Second

// ContactConfig is the immutable startup configuration of the contact flow.
type ContactConfig struct {
	From    string // verified sender
	To      string
	Timeout time.Duration
}

type contactUsecase struct {
	sender   email.Sender
	validate *validator.Validate
	cfg      ContactConfig
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// NewContactUsecase creates a new contact usecase. validate must have the
// validation package's custom rules registered.
func NewContactUsecase(sender email.Sender, validate *validator.Validate, cfg ContactConfig, logger *slog.Logger, m *metrics.Metrics) domain.ContactUsecase {
	if cfg.To == "" {
		cfg.To = cfg.From
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultProviderTimeout
	}
	return &contactUsecase{
		sender:   sender,
		validate: validate,
		cfg:      cfg,
		logger:   logger,
		metrics:  m,
	}
}

// SendContactMessage validates the contact request and sends the email
func (uc *contactUsecase) SendContactMessage(ctx context.Context, req *domain.ContactRequest) error {
	if req == nil {
		uc.metrics.RecordSubmission(metrics.OutcomeInvalid)
		return domain.ErrInvalidInput
	}
	if err := uc.validate.Struct(req); err != nil {
		uc.metrics.RecordSubmission(metrics.OutcomeInvalid)
		uc.logger.DebugContext(ctx, "contact submission rejected", "reason", err.Error())
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	sub := req.Normalize()
	msg, err := email.BuildContactMessage(uc.cfg.From, uc.cfg.To, email.ContactEmailData{
		SenderName:  sub.Name,
		SenderEmail: sub.Email,
		Subject:     sub.Subject,
		Message:     sub.Message,
	})
	if err != nil {
		uc.metrics.RecordSubmission(metrics.OutcomeFailed)
		uc.logger.ErrorContext(ctx, "failed to compose contact email", "error", err)
		return fmt.Errorf("%w: %v", domain.ErrDeliveryFailed, err)
	}

	sendCtx, cancel := context.WithTimeout(ctx, uc.cfg.Timeout)
	defer cancel()

	start := time.Now()
	err = uc.sender.Send(sendCtx, msg)
	uc.metrics.RecordProviderSend(uc.sender.Name(), time.Since(start))
	if err != nil {
		uc.metrics.RecordSubmission(metrics.OutcomeFailed)
		uc.logger.ErrorContext(ctx, "mail provider send failed",
			"provider", uc.sender.Name(),
			"error", err,
		)
		return fmt.Errorf("%w: %v", domain.ErrDeliveryFailed, err)
	}

	uc.metrics.RecordSubmission(metrics.OutcomeAccepted)
	uc.logger.InfoContext(ctx, "contact message accepted by provider", "provider", uc.sender.Name())
	return nil
}
