// Package mail sends run transcripts over SMTP.
package mail

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"lox/pkg/config"
)

// Sender delivers a composed message. *gomail.Dialer satisfies it.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// NewMessage builds a plain text message.
func NewMessage(from, to, subject, body string) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)
	return m
}

// NewDialer returns a dialer for the configured SMTP server.
func NewDialer(cfg config.SMTPConfig) *gomail.Dialer {
	return gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Pass)
}

// From picks the sender address: the configured From, then the SMTP user.
func From(cfg config.SMTPConfig) string {
	if cfg.From != "" {
		return cfg.From
	}
	if cfg.User != "" {
		return cfg.User
	}
	return "noreply@example.com"
}

// Transcript composes the report mailed after 'lox run -mail-to'.
func Transcript(cfg config.SMTPConfig, to, script, output, diagnostics string) *gomail.Message {
	body := output
	if diagnostics != "" {
		body += "\n--- errors ---\n" + diagnostics
	}
	return NewMessage(From(cfg), to, fmt.Sprintf("lox run: %s", script), body)
}

func Send(s Sender, m *gomail.Message) error {
	if err := s.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
