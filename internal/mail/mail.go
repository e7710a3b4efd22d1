// Package mail relays contact-form submissions to the site owner over SMTP.
package mail

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	gomail "gopkg.in/mail.v2"

	"blog/internal/config"
)

var ErrNotConfigured = errors.New("mail relay is not configured")

// Message is one contact-form submission.
type Message struct {
	Name  string
	Email string
	Phone string
	Body  string
}

// Result reports whether the relay accepted a message. Err is set when it
// did not.
type Result struct {
	Delivered bool
	Err       error
}

type Sender interface {
	Send(ctx context.Context, msg Message) Result
}

// Relay submits messages to an authenticated SMTP server, requiring STARTTLS.
type Relay struct {
	cfg    config.MailConfig
	logger *zap.SugaredLogger
	send   func(*gomail.Message) error
}

func NewRelay(cfg config.MailConfig, logger *zap.SugaredLogger) *Relay {
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	d.StartTLSPolicy = gomail.MandatoryStartTLS
	d.Timeout = cfg.Timeout
	return &Relay{cfg: cfg, logger: logger, send: func(m *gomail.Message) error { return d.DialAndSend(m) }}
}

// Send delivers msg, giving up after the configured timeout or when ctx ends.
func (r *Relay) Send(ctx context.Context, msg Message) Result {
	if !r.cfg.MailEnabled() {
		return Result{Err: ErrNotConfigured}
	}

	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
	}

	m := Compose(r.cfg.Username, r.cfg.To, msg)
	done := make(chan error, 1)
	go func() { done <- r.send(m) }()

	select {
	case err := <-done:
		if err != nil {
			return Result{Err: fmt.Errorf("failed to send contact message: %w", err)}
		}
		r.logger.Infow("contact message relayed", "from", msg.Email)
		return Result{Delivered: true}
	case <-ctx.Done():
		return Result{Err: fmt.Errorf("failed to send contact message: %w", ctx.Err())}
	}
}

// Compose builds the outgoing message. Replies go to the submitter.
func Compose(from, to string, msg Message) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", to)
	if msg.Email != "" {
		m.SetHeader("Reply-To", msg.Email)
	}
	m.SetHeader("Subject", "New Message")
	m.SetBody("text/plain", FormatBody(msg))
	return m
}

func FormatBody(msg Message) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Name: %s\n", msg.Name)
	fmt.Fprintf(&b, "Email: %s\n", msg.Email)
	fmt.Fprintf(&b, "Phone: %s\n", msg.Phone)
	fmt.Fprintf(&b, "Message: %s\n", msg.Body)
	return b.String()
}
