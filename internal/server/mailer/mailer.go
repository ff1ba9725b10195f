// Package mailer delivers activation e-mails over SMTP.
package mailer

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/carmeet/internal/logging"
	"gopkg.in/gomail.v2"
)

// Message is a plain-text e-mail.
type Message struct {
	From    string
	To      string
	Subject string
	Headers map[string]string
	Body    string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// sender is implemented by *gomail.Dialer.
type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPMailer sends messages through an SMTP relay.
type SMTPMailer struct {
	sender sender
}

func NewSMTPMailer(host string, port int, username, password string) *SMTPMailer {
	return &SMTPMailer{sender: gomail.NewDialer(host, port, username, password)}
}

func (s *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", msg.From)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	for k, v := range msg.Headers {
		m.SetHeader(k, v)
	}
	m.SetBody("text/plain", msg.Body)

	if err := s.sender.DialAndSend(m); err != nil {
		return fmt.Errorf("error sending mail to %s: %w", msg.To, err)
	}
	return nil
}

// LogMailer writes messages to the log instead of sending them. The server
// uses it when no SMTP host is configured.
type LogMailer struct {
	logger logging.Logger
}

func NewLogMailer(logger logging.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (l *LogMailer) Send(ctx context.Context, msg Message) error {
	l.logger.Info(ctx, "mail not sent, no SMTP host configured",
		"to", msg.To, "subject", msg.Subject, "body", msg.Body)
	return nil
}
