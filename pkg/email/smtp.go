package email

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net"
	"net/textproto"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"github.com/google/uuid"
)

type dialFunc func(ctx context.Context, network, addr string) (net.Conn, error)

// SMTPSender delivers messages to an SMTP submission server with PLAIN auth.
// Port 465 uses implicit TLS; other ports upgrade with STARTTLS when offered.
type SMTPSender struct {
	addr        string
	host        string
	username    string
	password    string
	implicitTLS bool
	tlsConfig   *tls.Config
	dial        dialFunc
}

func NewSMTPSender(host, port, username, password string) *SMTPSender {
	if username == "" {
		username = "apikey"
	}
	return &SMTPSender{
		addr:        net.JoinHostPort(host, port),
		host:        host,
		username:    username,
		password:    password,
		implicitTLS: port == "465",
		tlsConfig:   &tls.Config{ServerName: host, MinVersion: tls.VersionTLS12},
		dial:        (&net.Dialer{}).DialContext,
	}
}

func (s *SMTPSender) Name() string { return "smtp" }

// Send writes a multipart/alternative message. The whole SMTP exchange is
// bound to ctx: when it ends the connection is closed, so a message is never
// handed over after Send has reported failure.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	raw, err := buildMIME(msg, time.Now())
	if err != nil {
		return fmt.Errorf("smtp build message: %w", err)
	}

	conn, err := s.dial(ctx, "tcp", s.addr)
	if err != nil {
		return fmt.Errorf("smtp dial: %w", err)
	}
	if s.implicitTLS {
		conn = tls.Client(conn, s.tlsConfig)
	}

	c := smtp.NewClient(conn)
	defer c.Close()
	stop := context.AfterFunc(ctx, func() { _ = c.Close() })
	defer stop()

	if deadline, ok := ctx.Deadline(); ok {
		left := time.Until(deadline)
		c.CommandTimeout = left
		c.SubmissionTimeout = left
	}

	if err := s.deliver(c, msg, raw); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("smtp send: %w", ctxErr)
		}
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func (s *SMTPSender) deliver(c *smtp.Client, msg Message, raw []byte) error {
	if !s.implicitTLS {
		if ok, _ := c.Extension("STARTTLS"); ok {
			if err := c.StartTLS(s.tlsConfig); err != nil {
				return fmt.Errorf("starttls: %w", err)
			}
		}
	}
	if s.password != "" {
		if ok, _ := c.Extension("AUTH"); !ok {
			return errors.New("server does not support AUTH")
		}
		if err := c.Auth(sasl.NewPlainClient("", s.username, s.password)); err != nil {
			return fmt.Errorf("auth: %w", err)
		}
	}
	if err := c.SendMail(msg.From, msg.To, bytes.NewReader(raw)); err != nil {
		return err
	}
	// the message is accepted once DATA is acknowledged
	_ = c.Quit()
	return nil
}

func buildMIME(msg Message, now time.Time) ([]byte, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	header := func(k, v string) {
		fmt.Fprintf(&buf, "%s: %s\r\n", k, v)
	}
	header("From", msg.From)
	for _, to := range msg.To {
		header("To", to)
	}
	if msg.ReplyTo != "" {
		header("Reply-To", msg.ReplyTo)
	}
	header("Subject", mime.QEncoding.Encode("utf-8", msg.Subject))
	header("Date", now.UTC().Format(time.RFC1123Z))
	header("Message-ID", fmt.Sprintf("<%s@contact-relay>", uuid.NewString()))
	header("MIME-Version", "1.0")
	header("Content-Type", "multipart/alternative; boundary="+mw.Boundary())
	buf.WriteString("\r\n")

	parts := []struct {
		contentType string
		body        string
	}{
		{"text/plain; charset=UTF-8", msg.TextBody},
		{"text/html; charset=UTF-8", msg.HTMLBody},
	}
	for _, p := range parts {
		if p.body == "" {
			continue
		}
		h := textproto.MIMEHeader{}
		h.Set("Content-Type", p.contentType)
		h.Set("Content-Transfer-Encoding", "quoted-printable")
		pw, err := mw.CreatePart(h)
		if err != nil {
			return nil, err
		}
		qp := quotedprintable.NewWriter(pw)
		if _, err := qp.Write([]byte(p.body)); err != nil {
			return nil, err
		}
		if err := qp.Close(); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
