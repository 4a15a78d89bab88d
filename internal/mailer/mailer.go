package mailer

import (
	"fmt"

	"github.com/campus-engage/engage-api/internal/config"
	"gopkg.in/gomail.v2"
)

type Mailer interface {
	SendValidationMail(to, fullName, validationToken string) error
}

// SMTPMailer delivers the email-validation message over SMTP.
type SMTPMailer struct {
	dialer   *gomail.Dialer
	from     string
	fromName string
}

func NewSMTPMailer(cfg *config.Config) (*SMTPMailer, error) {
	if cfg.SMTPHost == "" || cfg.MailFrom == "" {
		return nil, fmt.Errorf("smtp host or sender address not configured")
	}
	return &SMTPMailer{
		dialer:   gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword),
		from:     cfg.MailFrom,
		fromName: cfg.MailFromName,
	}, nil
}

func (m *SMTPMailer) SendValidationMail(to, fullName, validationToken string) error {
	if m == nil {
		return fmt.Errorf("mailer is not configured")
	}

	message := gomail.NewMessage()
	message.SetAddressHeader("From", m.from, m.fromName)
	message.SetHeader("To", to)
	message.SetHeader("Subject", fmt.Sprintf("Validate your email on %s", m.fromName))
	message.SetBody("text/html", fmt.Sprintf(
		"<p>Hi %s,</p><p>Use this code to finish creating your account:</p><p><b>%s</b></p><p>The code expires in one hour.</p>",
		fullName, validationToken,
	))

	return m.dialer.DialAndSend(message)
}
