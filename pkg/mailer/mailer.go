package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

// Sender sends HTML mail over SMTP. Each send dials a fresh connection;
// outbound volume is rate-limited by the pipelines, not here.
type Sender struct {
	host       string
	port       int
	account    string
	password   string
	senderName string
}

func NewSender(host string, port int, account, password, senderName string) *Sender {
	return &Sender{
		host:       host,
		port:       port,
		account:    account,
		password:   password,
		senderName: senderName,
	}
}

func (s *Sender) SendHTML(to, subject, htmlBody string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(s.account, s.senderName))
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	d := gomail.NewDialer(s.host, s.port, s.account, s.password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", to, err)
	}
	return nil
}
