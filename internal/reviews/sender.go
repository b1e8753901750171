package reviews

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

// ============================================================
// Senders
// ============================================================

type Sender interface {
	Send(ctx context.Context, e Email) error
}

type SendGridSender struct {
	client    *sendgrid.Client
	fromName  string
	fromEmail string
	sandbox   bool
}

func NewSendGridSender(apiKey, fromName, fromEmail string, sandbox bool) *SendGridSender {
	return &SendGridSender{
		client:    sendgrid.NewSendClient(apiKey),
		fromName:  fromName,
		fromEmail: fromEmail,
		sandbox:   sandbox,
	}
}

func (s *SendGridSender) Send(ctx context.Context, e Email) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail(e.ToName, e.ToEmail)

	msg := mail.NewSingleEmail(from, e.Subject, to, e.Plain, e.HTML)
	if s.sandbox {
		ms := mail.NewMailSettings()
		ms.SetSandboxMode(mail.NewSetting(true))
		msg.MailSettings = ms
	}

	resp, err := s.client.SendWithContext(ctx, msg)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid send: status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

// LogSender только пишет письмо в лог. Используется без SENDGRID_API_KEY.
type LogSender struct {
	log *zap.Logger
}

func NewLogSender(log *zap.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(_ context.Context, e Email) error {
	s.log.Info("review email (not sent)",
		zap.String("to", e.ToEmail),
		zap.String("subject", e.Subject),
	)
	return nil
}
