// Package mailer sends outbound notification email. Delivery is best-effort:
// once the authoritative database write has succeeded, a failed send is logged
// and never surfaced to the caller.
package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/smtp"

	"refugio/internal/config"
	"refugio/internal/middleware"
)

// Mailer delivers a single email message.
type Mailer interface {
	Send(to, subject, body string) error
}

// SMTPMailer sends mail over implicit-TLS SMTP (port 465 style).
type SMTPMailer struct {
	host     string
	port     string
	username string
	password string
}

// NewSMTPMailer returns a Mailer bound to the given SMTP server.
func NewSMTPMailer(host, port, user, pass string) *SMTPMailer {
	return &SMTPMailer{host: host, port: port, username: user, password: pass}
}

// NewFromConfig builds a Mailer from configuration. An empty SMTP host yields
// a no-op mailer that drops messages with a log line, so development setups
// work without a mail server.
func NewFromConfig(cfg *config.Config) Mailer {
	if cfg == nil || cfg.SMTPHost == "" {
		return NopMailer{}
	}
	return NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword)
}

// BuildMessage assembles an RFC 5322 message with an HTML body.
func BuildMessage(from, to, subject, body string) []byte {
	return []byte(
		fmt.Sprintf("From: %s\r\n", from) +
			fmt.Sprintf("To: %s\r\n", to) +
			fmt.Sprintf("Subject: %s\r\n", subject) +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/html; charset=\"utf-8\"\r\n" +
			"\r\n" +
			body,
	)
}

// Send delivers the message synchronously.
func (m *SMTPMailer) Send(to, subject, body string) error {
	from := m.username
	msg := BuildMessage(from, to, subject, body)

	serverAddr := m.host + ":" + m.port

	// Implicit TLS for port 465
	tlsConfig := &tls.Config{ServerName: m.host}

	conn, err := tls.Dial("tcp", serverAddr, tlsConfig)
	if err != nil {
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, m.host)
	if err != nil {
		return err
	}
	defer client.Quit()

	auth := smtp.PlainAuth("", m.username, m.password, m.host)
	if err := client.Auth(auth); err != nil {
		return err
	}

	if err := client.Mail(from); err != nil {
		return err
	}
	if err := client.Rcpt(to); err != nil {
		return err
	}

	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	return w.Close()
}

// NopMailer drops messages. Used when no SMTP server is configured.
type NopMailer struct{}

// Send logs and discards the message.
func (NopMailer) Send(to, subject, _ string) error {
	middleware.Logger.Info("email dropped (no SMTP configured)",
		slog.String("to", to),
		slog.String("subject", subject),
	)
	return nil
}

// SendAsync fires the send in a goroutine. Failures are logged, never returned:
// notification email must not fail a request whose primary write succeeded.
// The goroutine logs against a detached context because the request context is
// recycled by Fiber once the handler returns.
func SendAsync(ctx context.Context, m Mailer, to, subject, body string) {
	if m == nil || to == "" {
		return
	}
	logCtx := detachContext(ctx)
	go func() {
		if err := m.Send(to, subject, body); err != nil {
			middleware.Logger.ErrorContext(logCtx, "notification email failed",
				slog.String("to", to),
				slog.String("subject", subject),
				slog.String("error", err.Error()),
			)
		}
	}()
}

// detachContext copies the request-scoped log values onto a fresh context so
// a goroutine can outlive the request without holding a reference to it.
func detachContext(ctx context.Context) context.Context {
	detached := context.Background()
	if rid, ok := ctx.Value(middleware.RequestIDKey).(string); ok {
		detached = context.WithValue(detached, middleware.RequestIDKey, rid)
	}
	if uid, ok := ctx.Value(middleware.UserIDKey).(uint); ok {
		detached = context.WithValue(detached, middleware.UserIDKey, uid)
	}
	return detached
}
