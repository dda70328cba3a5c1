package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"
)

// Message is a provider-neutral outbound email.
type Message struct {
	From     string
	To       []string
	ReplyTo  string
	Subject  string
	TextBody string
	HTMLBody string
}

// Sender is the capability every email provider implements. Send only
// reports that the provider accepted the message, not that it was delivered.
type Sender interface {
	Name() string
	Send(ctx context.Context, msg Message) error
}

// ContactEmailData holds the data for contact form emails
type ContactEmailData struct {
	SenderName  string
	SenderEmail string
	Subject     string // optional
	Message     string
}

// contactEmailTemplate is the HTML template for contact form emails.
// html/template escapes & < > " ' in every interpolated value.
var contactEmailTemplate = template.Must(template.New("contact").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>New Contact Form Submission</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .label { font-weight: bold; color: #555; }
        .message-box { background: #f9f9f9; padding: 15px; border-left: 4px solid #0066cc; white-space: pre-wrap; }
    </style>
</head>
<body>
    <div class="container">
        <p><span class="label">From:</span> {{.SenderName}} ({{.SenderEmail}})</p>
        {{- if .Subject}}
        <p><span class="label">Subject:</span> {{.Subject}}</p>
        {{- end}}
        <div class="message-box">{{.Message}}</div>
        <p>Reply to this email to answer {{.SenderName}} directly.</p>
    </div>
</body>
</html>`))

// ContactSubject builds the subject line of a contact email.
func ContactSubject(data ContactEmailData) string {
	if data.Subject == "" {
		return fmt.Sprintf("New contact from %s", data.SenderName)
	}
	return fmt.Sprintf("New contact from %s: %s", data.SenderName, data.Subject)
}

// BuildContactMessage composes the email sent for a contact submission. from is
// the verified sender; the submitter only ever appears as Reply-To.
func BuildContactMessage(from, to string, data ContactEmailData) (Message, error) {
	var body bytes.Buffer
	if err := contactEmailTemplate.Execute(&body, data); err != nil {
		return Message{}, fmt.Errorf("failed to execute email template: %w", err)
	}

	var text strings.Builder
	fmt.Fprintf(&text, "Name: %s\nEmail: %s\n", data.SenderName, data.SenderEmail)
	if data.Subject != "" {
		fmt.Fprintf(&text, "Subject: %s\n", data.Subject)
	}
	text.WriteString("\n")
	text.WriteString(data.Message)

	return Message{
		From:     from,
		To:       []string{to},
		ReplyTo:  data.SenderEmail,
		Subject:  sanitizeHeader(ContactSubject(data)),
		TextBody: text.String(),
		HTMLBody: body.String(),
	}, nil
}

// sanitizeHeader keeps a user-supplied value on a single header line.
func sanitizeHeader(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
