package utils

import (
	"crypto/tls"
	"errors"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/deifrati/api/config"
)

// ErrMailDisabled is returned when SMTP is not configured.
var ErrMailDisabled = errors.New("smtp not configured")

// Mailer sends plain text mail through the configured SMTP relay.
type Mailer struct {
	cfg config.SMTPConfig
}

// NewMailer returns a Mailer for cfg. Sending fails with ErrMailDisabled when host or sender is missing.
func NewMailer(cfg config.SMTPConfig) *Mailer {
	return &Mailer{cfg: cfg}
}

// Enabled reports whether the relay and the notification recipient are both set.
func (m *Mailer) Enabled() bool {
	return m != nil && m.cfg.Host != "" && m.cfg.From != "" && m.cfg.NotifyTo != ""
}

// NotifyTo is the staff address that receives site notifications.
func (m *Mailer) NotifyTo() string {
	if m == nil {
		return ""
	}
	return m.cfg.NotifyTo
}

// Send delivers a single message to one recipient.
func (m *Mailer) Send(to, subject, body string) error {
	cfg := m.cfg
	if cfg.Host == "" || cfg.From == "" {
		return ErrMailDisabled
	}
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	auth := smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	msg := buildMessage(cfg, to, subject, body)

	if !cfg.TLS {
		return smtp.SendMail(addr, auth, cfg.From, []string{to}, msg)
	}

	d := net.Dialer{Timeout: 5 * time.Second}
	conn, err := d.Dial("tcp", addr)
	if err != nil {
		return err
	}
	_ = conn.SetDeadline(time.Now().Add(15 * time.Second))
	c, err := smtp.NewClient(conn, cfg.Host)
	if err != nil {
		_ = conn.Close()
		return err
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: cfg.Host}); err != nil {
			return err
		}
	}
	if cfg.Username != "" {
		if err := c.Auth(auth); err != nil {
			return err
		}
	}
	if err := c.Mail(cfg.From); err != nil {
		return err
	}
	if err := c.Rcpt(to); err != nil {
		return err
	}
	wc, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := wc.Write(msg); err != nil {
		_ = wc.Close()
		return err
	}
	if err := wc.Close(); err != nil {
		return err
	}
	return c.Quit()
}

func buildMessage(cfg config.SMTPConfig, to, subject, body string) []byte {
	fromName := cfg.FromName
	if fromName == "" {
		fromName = "Dei Frati"
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s <%s>\r\n", mime.BEncoding.Encode("UTF-8", fromName), cfg.From)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", mime.BEncoding.Encode("UTF-8", subject))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	msg.WriteString(body)
	return []byte(msg.String())
}
