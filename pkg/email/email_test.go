package email

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"contact-relay-backend/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestBuildContactMessage_Headers(t *testing.T) {
	msg, err := BuildContactMessage("site@example.com", "team@example.com", ContactEmailData{
		SenderName:  "Jane Doe",
		SenderEmail: "jane@example.com",
		Subject:     "Hello",
		Message:     "Hi there",
	})
	require.NoError(t, err)

	assert.Equal(t, "site@example.com", msg.From)
	assert.Equal(t, []string{"team@example.com"}, msg.To)
	assert.Equal(t, "jane@example.com", msg.ReplyTo)
	assert.Equal(t, "New contact from Jane Doe: Hello", msg.Subject)
	assert.Contains(t, msg.TextBody, "Hi there")
	assert.Contains(t, msg.HTMLBody, "Hi there")
}

func TestBuildContactMessage_NoSubject(t *testing.T) {
	msg, err := BuildContactMessage("site@example.com", "site@example.com", ContactEmailData{
		SenderName:  "Jane Doe",
		SenderEmail: "jane@example.com",
		Message:     "Hello\n\nHi there",
	})
	require.NoError(t, err)

	assert.Equal(t, "New contact from Jane Doe", msg.Subject)
	assert.NotContains(t, msg.TextBody, "Subject:")
	assert.NotContains(t, msg.HTMLBody, "Subject:")
}

func TestBuildContactMessage_EscapesHTML(t *testing.T) {
	hostile := `<script>&"'`
	msg, err := BuildContactMessage("site@example.com", "site@example.com", ContactEmailData{
		SenderName:  "Mallory " + hostile,
		SenderEmail: "mallory@example.com",
		Subject:     hostile,
		Message:     hostile,
	})
	require.NoError(t, err)

	assert.NotContains(t, msg.HTMLBody, hostile)
	assert.NotContains(t, msg.HTMLBody, "<script>")
	assert.Contains(t, msg.HTMLBody, "&lt;script&gt;&amp;&#34;&#39;")
	// plain text is delivered as-is
	assert.Contains(t, msg.TextBody, hostile)
}

func TestBuildContactMessage_SubjectStaysOnOneLine(t *testing.T) {
	msg, err := BuildContactMessage("site@example.com", "site@example.com", ContactEmailData{
		SenderName:  "Jane Doe",
		SenderEmail: "jane@example.com",
		Subject:     "Hi\r\nBcc: victim@example.com",
		Message:     "x",
	})
	require.NoError(t, err)
	assert.NotContains(t, msg.Subject, "\n")
	assert.NotContains(t, msg.Subject, "\r")
}

type mockSES struct {
	mock.Mock
}

func (m *mockSES) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ses.SendEmailOutput), args.Error(1)
}

func TestSESSender_Send(t *testing.T) {
	api := new(mockSES)
	sender := &SESSender{client: api}

	api.On("SendEmail", mock.Anything, mock.AnythingOfType("*ses.SendEmailInput")).
		Return(&ses.SendEmailOutput{MessageId: aws.String("id-1")}, nil).
		Run(func(args mock.Arguments) {
			in := args.Get(1).(*ses.SendEmailInput)
			assert.Equal(t, "site@example.com", aws.ToString(in.Source))
			assert.Equal(t, []string{"jane@example.com"}, in.ReplyToAddresses)
			assert.Equal(t, []string{"team@example.com"}, in.Destination.ToAddresses)
			assert.Equal(t, "subj", aws.ToString(in.Message.Subject.Data))
			assert.Equal(t, "<p>hi</p>", aws.ToString(in.Message.Body.Html.Data))
		})

	err := sender.Send(context.Background(), Message{
		From:     "site@example.com",
		To:       []string{"team@example.com"},
		ReplyTo:  "jane@example.com",
		Subject:  "subj",
		TextBody: "hi",
		HTMLBody: "<p>hi</p>",
	})
	require.NoError(t, err)
	api.AssertExpectations(t)
}

func TestSESSender_Error(t *testing.T) {
	api := new(mockSES)
	sender := &SESSender{client: api}
	api.On("SendEmail", mock.Anything, mock.Anything).Return(nil, errors.New("MessageRejected: Email address is not verified"))

	err := sender.Send(context.Background(), Message{From: "a@b.cd", To: []string{"a@b.cd"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ses send")
}

func TestLogSender(t *testing.T) {
	var buf bytes.Buffer
	sender := NewLogSender(slog.New(slog.NewJSONHandler(&buf, nil)))

	require.NoError(t, sender.Send(context.Background(), Message{From: "a@b.cd", To: []string{"c@d.ef"}, Subject: "s"}))
	assert.True(t, strings.Contains(buf.String(), `"subject":"s"`))
}

func TestNew(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cases := map[string]string{
		config.ProviderMailgun: "mailgun",
		config.ProviderSMTP:    "smtp",
		config.ProviderLog:     "log",
	}
	for provider, want := range cases {
		cfg := &config.Config{
			MailProvider:  provider,
			MailgunAPIKey: "key",
			MailgunDomain: "mg.example.com",
			SMTPHost:      "smtp.example.com",
			SMTPPort:      "587",
		}
		s, err := New(context.Background(), cfg, logger)
		require.NoError(t, err)
		assert.Equal(t, want, s.Name())
	}

	_, err := New(context.Background(), &config.Config{MailProvider: "pigeon"}, logger)
	assert.Error(t, err)
}
