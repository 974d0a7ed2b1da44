package smtp

import (
	"fmt"
	"net/smtp"
	"time"

	"github.com/Recurse-ML/logfire-example/internal/config"
)

// Mailer sends transactional email.
type Mailer interface {
	SendPasswordRecovery(to, token string, ttl time.Duration) error
}

type mailer struct {
	host     string
	port     string
	from     string
	username string
	password string
}

func NewMailer(cfg *config.Config) Mailer {
	return &mailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		from:     cfg.SMTPFrom,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
	}
}

func (m *mailer) SendPasswordRecovery(to, token string, ttl time.Duration) error {
	subject := "Password recovery"
	body := fmt.Sprintf(
		"Use this token to reset your password: %s\r\nIt expires in %s.",
		token, ttl,
	)
	return m.send(to, subject, body)
}

func (m *mailer) send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s", m.from, to, subject, body)
	addr := fmt.Sprintf("%s:%s", m.host, m.port)

	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}
	return smtp.SendMail(addr, auth, m.from, []string{to}, []byte(msg))
}
