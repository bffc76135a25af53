package notify

import (
	"context"
	"fmt"
	"net/smtp"
)

// EmailChannel delivers messages over SMTP.
type EmailChannel struct {
	smtpHost  string
	smtpPort  int
	username  string
	password  string
	fromEmail string
}

func NewEmailChannel(smtpHost string, smtpPort int, username, password, fromEmail string) *EmailChannel {
	return &EmailChannel{
		smtpHost:  smtpHost,
		smtpPort:  smtpPort,
		username:  username,
		password:  password,
		fromEmail: fromEmail,
	}
}

// Send sends a single email.
func (c *EmailChannel) Send(ctx context.Context, to, subject, body string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	msg := "From: " + c.fromEmail + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"\r\n" + body

	smtpAuth := smtp.PlainAuth("", c.username, c.password, c.smtpHost)

	addr := fmt.Sprintf("%s:%d", c.smtpHost, c.smtpPort)
	if err := smtp.SendMail(addr, smtpAuth, c.fromEmail, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// Validate validates the configuration.
func (c *EmailChannel) Validate() error {
	if c.smtpHost == "" {
		return fmt.Errorf("smtp host is required")
	}
	if c.smtpPort <= 0 {
		return fmt.Errorf("smtp port is required")
	}
	if c.fromEmail == "" {
		return fmt.Errorf("from email is required")
	}
	return nil
}
