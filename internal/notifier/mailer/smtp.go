package mailer

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strconv"
	"strings"
	"text/template"

	"github.com/oneplanet-market/internal/config"
	"github.com/oneplanet-market/internal/domain/shared"
)

// SMTPMailer implements Mailer over plain SMTP with optional auth
type SMTPMailer struct {
	addr     string
	auth     smtp.Auth
	from     string
	fromName string
	logger   *slog.Logger

	// send is swappable in tests
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPMailer creates an SMTP mailer from configuration
func NewSMTPMailer(logger *slog.Logger, cfg *config.SMTPConfig) *SMTPMailer {
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}

	return &SMTPMailer{
		addr:     cfg.Host + ":" + strconv.Itoa(cfg.Port),
		auth:     auth,
		from:     cfg.From,
		fromName: cfg.FromName,
		logger:   logger,
		send:     smtp.SendMail,
	}
}

// Send renders the event's template and delivers it to the recipient
func (m *SMTPMailer) Send(ctx context.Context, event *shared.NotificationEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tpl, err := TemplateFor(event.Kind)
	if err != nil {
		return err
	}

	body, err := renderBody(tpl.Body, event.Data)
	if err != nil {
		return fmt.Errorf("failed to render %s template: %w", event.Kind, err)
	}

	msg := buildMessage(m.fromName, m.from, event.Recipient, tpl.Subject, body)

	if err := m.send(m.addr, m.auth, m.from, []string{event.Recipient}, msg); err != nil {
		m.logger.Error("Failed to send email",
			"kind", string(event.Kind),
			"recipient", event.Recipient,
			"error", err,
		)
		return fmt.Errorf("failed to send %s email: %w", event.Kind, err)
	}

	m.logger.Info("Email sent",
		"kind", string(event.Kind),
		"recipient", event.Recipient,
	)
	return nil
}

func renderBody(body string, data map[string]string) (string, error) {
	tpl, err := template.New("email").Option("missingkey=zero").Parse(body)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func buildMessage(fromName, from, to, subject, body string) []byte {
	var b strings.Builder
	if fromName != "" {
		fmt.Fprintf(&b, "From: %s <%s>\r\n", fromName, from)
	} else {
		fmt.Fprintf(&b, "From: %s\r\n", from)
	}
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return []byte(b.String())
}
