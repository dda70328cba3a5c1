package domain

import (
	"context"
	"errors"
	"strings"

	"contact-relay-backend/pkg/validation"
)

var (
	// ErrInvalidInput means the submission failed server-side validation.
	ErrInvalidInput = errors.New("invalid contact submission")
	// ErrDeliveryFailed means the email provider did not accept the message.
	ErrDeliveryFailed = errors.New("contact message delivery failed")
)

// ContactRequest is a contact form submission as it arrives on the wire.
// Subject is optional; when the client folds it into Message it is nil.
type ContactRequest struct {
	Name    string  `json:"name" validate:"full_name"`
	Email   string  `json:"email" validate:"contact_email"`
	Subject *string `json:"subject,omitempty" validate:"omitnil,not_blank"`
	Message string  `json:"message" validate:"not_blank"`
}

// ContactSubmission is a validated, trimmed submission.
type ContactSubmission struct {
	Name    string
	Email   string
	Subject string // empty when the request carried no subject
	Message string
}

// Normalize trims every field. It does not validate.
func (r *ContactRequest) Normalize() ContactSubmission {
	s := ContactSubmission{
		Name:    strings.Join(strings.FieldsFunc(r.Name, validation.IsSpace), " "),
		Email:   validation.Trim(r.Email),
		Message: validation.Trim(r.Message),
	}
	if r.Subject != nil {
		s.Subject = validation.Trim(*r.Subject)
	}
	return s
}

// ContactUsecase defines the interface for contact form operations
type ContactUsecase interface {
	// SendContactMessage validates the request and hands it to the email provider.
	// It returns an error wrapping ErrInvalidInput or ErrDeliveryFailed.
	SendContactMessage(ctx context.Context, req *ContactRequest) error
}
