// FILE: internal/pkg/mailer/email_service.go
package mailer

import (
	"fmt"

	"billing-engine-be/internal/pkg/logger"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	Send(toEmail, subject, htmlBody string) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	senderName  string
	logger      logger.ILogger
}

func NewEmailService(host string, port int, username, password, senderName string, log logger.ILogger) IEmailService {
	return &emailService{
		dialer:      gomail.NewDialer(host, port, username, password),
		senderEmail: username,
		senderName:  senderName,
		logger:      log,
	}
}

func (s *emailService) Send(toEmail, subject, htmlBody string) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.senderEmail, s.senderName)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	if err := s.dialer.DialAndSend(m); err != nil {
		s.logger.Error("MAILER", "Failed to send email", map[string]interface{}{"to": toEmail, "subject": subject, "error": err.Error()})
		return fmt.Errorf("send email: %w", err)
	}

	s.logger.Info("MAILER", "Email sent", map[string]interface{}{"to": toEmail, "subject": subject})
	return nil
}

// logMailer writes messages to the log instead of sending them. Used when no
// SMTP host is configured.
type logMailer struct {
	logger logger.ILogger
}

func NewLogMailer(log logger.ILogger) IEmailService {
	return &logMailer{logger: log}
}

func (m *logMailer) Send(toEmail, subject, htmlBody string) error {
	m.logger.Info("MAILER", "Email not sent, SMTP disabled", map[string]interface{}{"to": toEmail, "subject": subject})
	return nil
}
