// Package notify delivers account notifications such as login codes.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/smtp"
	"strings"

	"github.com/techmaa/portal/config"
	"github.com/techmaa/portal/internal/mq"
)

// Notifier sends a plain-text message to an email address.
type Notifier interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Email is the payload queued for the mailer worker.
type Email struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// LogNotifier writes messages to the process log. It is meant for local
// development where no mail server is available.
type LogNotifier struct {
	logger *log.Logger
}

func NewLogNotifier(logger *log.Logger) *LogNotifier {
	if logger == nil {
		logger = log.Default()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Send(_ context.Context, to, subject, body string) error {
	n.logger.Printf("notify: to=%s subject=%q body=%q", to, subject, body)
	return nil
}

// SMTPSender delivers mail directly through an SMTP relay.
type SMTPSender struct {
	addr string
	from string
	auth smtp.Auth
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPSender(cfg config.SMTPConfig) (*SMTPSender, error) {
	if strings.TrimSpace(cfg.Host) == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return &SMTPSender{
		addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		from: cfg.From,
		auth: auth,
		send: smtp.SendMail,
	}, nil
}

func (s *SMTPSender) Send(_ context.Context, to, subject, body string) error {
	msg := buildMessage(s.from, to, subject, body)
	if err := s.send(s.addr, s.auth, s.from, []string{to}, msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}

func buildMessage(from, to, subject, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", stripCRLF(subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return []byte(b.String())
}

func stripCRLF(s string) string {
	return strings.NewReplacer("\r", "", "\n", " ").Replace(s)
}

// QueueNotifier hands messages to the mailer worker through a broker.
type QueueNotifier struct {
	backend mq.Backend
	channel string
}

func NewQueueNotifier(backend mq.Backend, channel string) *QueueNotifier {
	return &QueueNotifier{backend: backend, channel: channel}
}

func (n *QueueNotifier) Send(ctx context.Context, to, subject, body string) error {
	data, err := json.Marshal(Email{To: to, Subject: subject, Body: body})
	if err != nil {
		return err
	}
	if _, err := n.backend.Publish(ctx, n.channel, data, map[string]string{"kind": "email"}); err != nil {
		return fmt.Errorf("queue mail to %s: %w", to, err)
	}
	return nil
}

// Relay consumes queued messages from channel and delivers each through
// sender until ctx is done. Messages that fail to decode are dropped.
func Relay(ctx context.Context, backend mq.Backend, channel string, sender Notifier) error {
	return backend.Subscribe(ctx, channel, func(ctx context.Context, msg mq.Message) error {
		var email Email
		if err := json.Unmarshal(msg.Data, &email); err != nil {
			log.Printf("notify: dropping message %s: %v", msg.ID, err)
			return nil
		}
		return sender.Send(ctx, email.To, email.Subject, email.Body)
	})
}
