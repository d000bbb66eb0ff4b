package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"sync"

	"github.com/mvribeiro/suplemarket/internal/logging"
)

// Sender opens an outbound message towards a recipient. There is no delivery
// confirmation; a nil error only means the message was handed off.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

type SMTPSender struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

func (s *SMTPSender) Send(ctx context.Context, to, subject, body string) error {
	logging.FromContext(ctx).Info("sending email", "to", to, "subject", subject)

	msg := []byte("From: " + s.From + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"\r\n" +
		body + "\r\n")

	addr := fmt.Sprintf("%s:%s", s.Host, s.Port)
	var auth smtp.Auth
	if s.Username != "" {
		auth = smtp.PlainAuth("", s.Username, s.Password, s.Host)
	}

	if err := smtp.SendMail(addr, auth, s.From, []string{to}, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// LogSender is the fallback when no SMTP host is configured: compositions
// are logged instead of sent.
type LogSender struct{}

func (LogSender) Send(ctx context.Context, to, subject, body string) error {
	logging.FromContext(ctx).Info("email composition", "to", to, "subject", subject, "body", body)
	return nil
}

// Recorder captures sends for tests.
type Recorder struct {
	mu       sync.Mutex
	Messages []Message
}

type Message struct {
	To      string
	Subject string
	Body    string
}

func (r *Recorder) Send(ctx context.Context, to, subject, body string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Messages = append(r.Messages, Message{To: to, Subject: subject, Body: body})
	return nil
}
