// Package mailer delivers rendered newsletters over SMTP.
package mailer

import (
	"errors"
	"fmt"
	"log"

	"gopkg.in/gomail.v2"

	"github.com/harshapps/newsletter-agent/internal/config"
	"github.com/harshapps/newsletter-agent/internal/newsletter"
)

// ErrNotConfigured is returned when SMTP credentials are missing.
var ErrNotConfigured = errors.New("mailer: SMTP credentials not configured")

// Sender abstracts message delivery for testing.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// Mailer sends newsletters through an SMTP relay.
type Mailer struct {
	from   string
	sender Sender
}

// New creates a mailer from email configuration. Returns ErrNotConfigured
// when the credentials are incomplete so callers can degrade gracefully.
func New(cfg config.EmailConfig) (*Mailer, error) {
	if cfg.Host == "" || cfg.Username == "" || cfg.Password == "" {
		return nil, ErrNotConfigured
	}
	from := cfg.From
	if from == "" {
		from = cfg.Username
	}
	return &Mailer{
		from:   from,
		sender: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}, nil
}

// NewWithSender creates a mailer with a custom sender, for tests.
func NewWithSender(from string, sender Sender) *Mailer {
	return &Mailer{from: from, sender: sender}
}

// SendNewsletter delivers a rendered newsletter to its recipient as a
// multipart message: plain text body with an HTML alternative.
func (m *Mailer) SendNewsletter(nl *newsletter.Newsletter) error {
	if nl == nil {
		return fmt.Errorf("mailer: nil newsletter")
	}
	if nl.Email == "" {
		return fmt.Errorf("mailer: newsletter has no recipient")
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", nl.Email)
	msg.SetHeader("Subject", nl.Subject)
	msg.SetBody("text/plain", nl.Content)
	if nl.HTMLContent != "" {
		msg.AddAlternative("text/html", nl.HTMLContent)
	}

	if err := m.sender.DialAndSend(msg); err != nil {
		return fmt.Errorf("mailer: send to %s: %w", nl.Email, err)
	}
	log.Printf("[mailer] sent %q to %s", nl.Subject, nl.Email)
	return nil
}

// SendTest delivers a short plain message to verify SMTP settings.
func (m *Mailer) SendTest(to string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Newsletter Agent Test Email")
	msg.SetBody("text/plain", "Your email configuration is working. Daily newsletters will arrive at this address.")

	if err := m.sender.DialAndSend(msg); err != nil {
		return fmt.Errorf("mailer: test send to %s: %w", to, err)
	}
	return nil
}
