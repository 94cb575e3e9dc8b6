package notify

import (
	"fmt"
	"net/smtp"

	"homevia/config"
)

// Mailer is the email channel. Implementations must be safe for
// concurrent use.
type Mailer interface {
	SendMail(to, subject, body string) error
}

// SMTPMailer sends plain-text mail through a configured SMTP relay.
type SMTPMailer struct {
	host   string
	port   string
	user   string
	pass   string
	sender string
}

func NewSMTPMailer(cfg config.Config) *SMTPMailer {
	return &SMTPMailer{
		host:   cfg.SMTPHost,
		port:   cfg.SMTPPort,
		user:   cfg.SMTPUser,
		pass:   cfg.SMTPPass,
		sender: cfg.SenderEmail,
	}
}

func (m *SMTPMailer) SendMail(to, subject, body string) error {
	if to == "" {
		return fmt.Errorf("recipient email is empty")
	}

	msg := []byte(fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		m.sender, to, subject, body))

	addr := m.host + ":" + m.port
	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.pass, m.host)
	}

	return smtp.SendMail(addr, auth, m.sender, []string{to}, msg)
}
