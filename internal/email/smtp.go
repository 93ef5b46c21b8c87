// Package email sends transactional mail over SMTP. It works with
// Mailpit in development (no auth) and any authenticated SMTP relay in
// production.
package email

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
)

// SMTPConfig holds SMTP server settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

// Sender sends feedback share links over SMTP. It implements
// service.LinkNotifier.
type Sender struct {
	config SMTPConfig
	logger *slog.Logger
}

// NewSender creates a new SMTP sender.
func NewSender(config SMTPConfig, logger *slog.Logger) *Sender {
	if config.From == "" {
		config.From = "noreply@tandemhq.com"
	}
	if config.FromName == "" {
		config.FromName = "Tandem"
	}
	return &Sender{config: config, logger: logger}
}

// SendFeedbackLink mails the anonymous feedback form link to the
// employee's manager. The URL contains the raw share token, so the
// body is never logged.
func (s *Sender) SendFeedbackLink(ctx context.Context, to, subject, shareURL string) error {
	body := fmt.Sprintf(`Hi,

A 360 feedback request has been opened: %s

Share this link with the people you'd like feedback from:

%s

Responses are anonymous. The link stops accepting responses when the
request expires or is closed.

Thanks,
The Tandem Team
`, subject, shareURL)

	return s.send(ctx, to, "Feedback request: "+subject, body)
}

func (s *Sender) send(ctx context.Context, to, subject, body string) error {
	msg := s.buildMessage(to, subject, body)
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	// No auth when credentials are absent (local Mailpit).
	var auth smtp.Auth
	if s.config.Username != "" && s.config.Password != "" {
		auth = smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
	}

	if err := smtp.SendMail(addr, auth, s.config.From, []string{to}, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Info("email sent", "to", to, "subject", subject)
	return nil
}

func (s *Sender) buildMessage(to, subject, body string) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "From: %s <%s>\r\n", s.config.FromName, s.config.From)
	fmt.Fprintf(&buf, "To: %s\r\n", to)
	fmt.Fprintf(&buf, "Subject: %s\r\n", subject)
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(body)
	buf.WriteString("\r\n")
	return buf.Bytes()
}
