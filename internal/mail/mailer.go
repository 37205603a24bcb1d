// Package mail delivers transactional email.
package mail

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"github.com/yukikurage/project-management-api/internal/config"
)

var ErrNoRecipient = errors.New("mail: message has no recipient")

// Message is a single email with a plain text and an HTML body
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Mailer sends messages
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// New returns an SMTP mailer when SMTP_HOST is configured, and a LogMailer otherwise.
func New(cfg *config.Config, log logrus.FieldLogger) Mailer {
	if cfg.SMTPHost == "" {
		log.Warn("SMTP_HOST is not set, emails will only be logged")
		return NewLogMailer(log)
	}
	return NewSMTPMailer(SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.MailFrom,
		FromName: cfg.MailFromName,
	}, log)
}

// LogMailer writes messages to the log instead of sending them. Used in development.
type LogMailer struct {
	log logrus.FieldLogger
}

// NewLogMailer creates a LogMailer
func NewLogMailer(log logrus.FieldLogger) *LogMailer {
	return &LogMailer{log: log}
}

// Send logs msg. The body can hold reset links, so it is only written at debug level.
func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return ErrNoRecipient
	}
	entry := m.log.WithFields(logrus.Fields{
		"to":      msg.To,
		"subject": msg.Subject,
	})
	entry.Info("email (not sent)")
	entry.Debug("email body\n" + msg.Text)
	return nil
}
