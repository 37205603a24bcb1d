package mail

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"mime"
	"net/smtp"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

// SMTPConfig holds the relay settings
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPMailer sends email through an SMTP relay. Delivery runs behind a circuit breaker
// so a dead relay fails fast instead of holding up requests.
type SMTPMailer struct {
	cfg     SMTPConfig
	auth    smtp.Auth
	breaker *gobreaker.CircuitBreaker
	send    sendFunc
	log     logrus.FieldLogger
}

// NewSMTPMailer creates an SMTPMailer
func NewSMTPMailer(cfg SMTPConfig, log logrus.FieldLogger) *SMTPMailer {
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "smtp",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("circuit breaker state changed")
		},
	})

	return &SMTPMailer{
		cfg:     cfg,
		auth:    auth,
		breaker: breaker,
		send:    smtp.SendMail,
		log:     log,
	}
}

// Send delivers msg
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return ErrNoRecipient
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	body := buildMIMEMessage(m.cfg.From, m.cfg.FromName, msg, newBoundary())
	addr := m.cfg.Host + ":" + strconv.Itoa(m.cfg.Port)

	_, err := m.breaker.Execute(func() (interface{}, error) {
		return nil, m.send(addr, m.auth, m.cfg.From, []string{msg.To}, body)
	})
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	m.log.WithField("subject", msg.Subject).Debug("email sent")
	return nil
}

func newBoundary() string {
	buf := make([]byte, 16)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

// buildMIMEMessage renders a multipart/alternative message with text and HTML parts
func buildMIMEMessage(from, fromName string, msg Message, boundary string) []byte {
	var b bytes.Buffer

	sender := from
	if fromName != "" {
		sender = fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", fromName), from)
	}

	fmt.Fprintf(&b, "From: %s\r\n", sender)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	b.WriteString("MIME-Version: 1.0\r\n")

	if msg.HTML == "" {
		b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n\r\n")
		b.WriteString(msg.Text)
		b.WriteString("\r\n")
		return b.Bytes()
	}

	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", boundary)

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n\r\n")
	b.WriteString(msg.Text)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n")
	b.WriteString(msg.HTML)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s--\r\n", boundary)
	return b.Bytes()
}
