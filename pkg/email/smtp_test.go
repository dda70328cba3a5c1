package email

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testBackend is an in-process submission server that records what it accepts.
type testBackend struct {
	mu        sync.Mutex
	authUser  string
	from      string
	to        []string
	data      []byte
	delivered int
	rcptGate  chan struct{} // when set, RCPT blocks until it is closed
}

func (b *testBackend) NewSession(*smtp.Conn) (smtp.Session, error) {
	return &testSession{backend: b}, nil
}

func (b *testBackend) deliveredCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.delivered
}

type testSession struct {
	backend *testBackend
}

func (s *testSession) AuthMechanisms() []string {
	return []string{sasl.Plain}
}

func (s *testSession) Auth(mech string) (sasl.Server, error) {
	return sasl.NewPlainServer(func(identity, username, password string) error {
		if username != "user" || password != "secret" {
			return errors.New("invalid credentials")
		}
		s.backend.mu.Lock()
		s.backend.authUser = username
		s.backend.mu.Unlock()
		return nil
	}), nil
}

func (s *testSession) Mail(from string, _ *smtp.MailOptions) error {
	s.backend.mu.Lock()
	defer s.backend.mu.Unlock()
	s.backend.from = from
	return nil
}

func (s *testSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	if s.backend.rcptGate != nil {
		<-s.backend.rcptGate
	}
	s.backend.mu.Lock()
	defer s.backend.mu.Unlock()
	s.backend.to = append(s.backend.to, to)
	return nil
}

func (s *testSession) Data(r io.Reader) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.backend.mu.Lock()
	defer s.backend.mu.Unlock()
	s.backend.data = raw
	s.backend.delivered++
	return nil
}

func (s *testSession) Reset() {}

func (s *testSession) Logout() error { return nil }

func startSMTPServer(t *testing.T, be *testBackend) (host, port string) {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := smtp.NewServer(be)
	srv.Domain = "localhost"
	srv.AllowInsecureAuth = true
	go func() { _ = srv.Serve(l) }()
	t.Cleanup(func() { _ = srv.Close() })

	host, port, err = net.SplitHostPort(l.Addr().String())
	require.NoError(t, err)
	return host, port
}

func TestSMTPSender_Send(t *testing.T) {
	be := &testBackend{}
	host, port := startSMTPServer(t, be)
	sender := NewSMTPSender(host, port, "user", "secret")

	err := sender.Send(context.Background(), Message{
		From:     "site@example.com",
		To:       []string{"team@example.com"},
		ReplyTo:  "jane@example.com",
		Subject:  "New contact from Jane Doe",
		TextBody: "plain",
		HTMLBody: "<p>html</p>",
	})
	require.NoError(t, err)

	be.mu.Lock()
	defer be.mu.Unlock()
	assert.Equal(t, 1, be.delivered)
	assert.Equal(t, "user", be.authUser)
	assert.Equal(t, "site@example.com", be.from)
	assert.Equal(t, []string{"team@example.com"}, be.to)
	s := string(be.data)
	assert.Contains(t, s, "From: site@example.com\r\n")
	assert.Contains(t, s, "Reply-To: jane@example.com\r\n")
	assert.Contains(t, s, "multipart/alternative")
	assert.Contains(t, s, "text/plain; charset=UTF-8")
	assert.Contains(t, s, "text/html; charset=UTF-8")
}

func TestSMTPSender_BadCredentials(t *testing.T) {
	be := &testBackend{}
	host, port := startSMTPServer(t, be)
	sender := NewSMTPSender(host, port, "user", "wrong")

	err := sender.Send(context.Background(), Message{From: "site@example.com", To: []string{"team@example.com"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "auth")
	assert.Equal(t, 0, be.deliveredCount())
}

func TestSMTPSender_TimeoutNeverDeliversLate(t *testing.T) {
	gate := make(chan struct{})
	be := &testBackend{rcptGate: gate}
	host, port := startSMTPServer(t, be)
	sender := NewSMTPSender(host, port, "user", "secret")

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := sender.Send(ctx, Message{
		From:     "site@example.com",
		To:       []string{"team@example.com"},
		TextBody: "hi",
	})
	require.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second, "Send must return once ctx ends")

	// let the server finish RCPT; the connection is already gone
	close(gate)
	assert.Never(t, func() bool { return be.deliveredCount() > 0 }, 300*time.Millisecond, 10*time.Millisecond)
}

func TestSMTPSender_DialFailure(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	host, port, _ := net.SplitHostPort(l.Addr().String())
	require.NoError(t, l.Close())

	err = NewSMTPSender(host, port, "user", "secret").Send(context.Background(), Message{
		From: "site@example.com",
		To:   []string{"team@example.com"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "smtp dial")
}

func TestSMTPSender_CancelledBeforeDial(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewSMTPSender("127.0.0.1", "2525", "user", "secret").Send(ctx, Message{
		From: "site@example.com",
		To:   []string{"team@example.com"},
	})
	assert.ErrorIs(t, err, context.Canceled)
}
