package notification

import (
	"log/slog"

	"github.com/google/uuid"
	"github.com/satyapradip/employee-task-management/internal"
	"gopkg.in/gomail.v2"
)

// Mailer is the outbound notification channel. Send returns a message id on
// success; callers decide whether a failure is surfaced (password reset) or
// swallowed (task assignment).
type Mailer interface {
	Send(to, subject, htmlBody, textBody string) (messageID string, err error)
}

// SMTPMailer delivers mail over SMTP.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
	logger *slog.Logger
}

func NewSMTPMailer(cfg internal.MailConfig, logger *slog.Logger) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass),
		from:   cfg.FromAddress,
		logger: logger,
	}
}

func (m *SMTPMailer) Send(to, subject, htmlBody, textBody string) (string, error) {
	messageID := uuid.NewString()

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetHeader("Message-ID", "<"+messageID+">")
	msg.SetBody("text/plain", textBody)
	msg.AddAlternative("text/html", htmlBody)

	if err := m.dialer.DialAndSend(msg); err != nil {
		m.logger.Error("failed to send mail", "error", err, "to", to, "subject", subject)
		return "", err
	}

	m.logger.Info("mail sent", "message_id", messageID, "to", to, "subject", subject)
	return messageID, nil
}

// LogMailer is the development fallback used when SMTP is not configured:
// it logs the mail instead of delivering it.
type LogMailer struct {
	logger *slog.Logger
}

func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(to, subject, htmlBody, textBody string) (string, error) {
	messageID := uuid.NewString()
	m.logger.Info("mail delivery skipped (mailer disabled)",
		"message_id", messageID,
		"to", to,
		"subject", subject,
		"body", textBody)
	return messageID, nil
}
