package utils

import (
	"fmt"
	"log"

	"gopkg.in/gomail.v2"

	"github.com/goyoulink/goyoulink_backend/config"
)

// EmailService sends transactional mail to affiliates
type EmailService struct {
	host     string
	port     int
	username string
	password string
	from     string
}

// NewEmailService creates an email service from SMTP settings. A nil service
// is returned when no SMTP host is configured; callers treat that as
// "notifications disabled".
func NewEmailService(settings *config.Settings) *EmailService {
	if settings.SMTPHost == "" {
		log.Println("SMTP_HOST not set, payout notification mail disabled")
		return nil
	}
	return &EmailService{
		host:     settings.SMTPHost,
		port:     settings.SMTPPort,
		username: settings.SMTPUsername,
		password: settings.SMTPPassword,
		from:     settings.SMTPFrom,
	}
}

// SendPayoutNotification notifies an affiliate that a commission payout was
// recorded. Failures are logged, not propagated: mail must never roll back a
// ledger mutation.
func (s *EmailService) SendPayoutNotification(toEmail, name string, amount float64, currency, reference string) {
	if s == nil || toEmail == "" {
		return
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "Your commission payout has been processed")
	m.SetBody("text/plain", fmt.Sprintf(
		"Hi %s,\n\nA commission payout of %.2f %s has been processed.\nReference: %s\n\nThank you for partnering with us.\n",
		name, amount, currency, reference))

	d := gomail.NewDialer(s.host, s.port, s.username, s.password)
	if err := d.DialAndSend(m); err != nil {
		log.Printf("Error sending payout notification to %s: %v", toEmail, err)
	}
}
