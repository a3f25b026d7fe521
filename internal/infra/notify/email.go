package notify

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/jordan-wright/email"
	"github.com/rs/zerolog"

	"clinic-credit-service/internal/config"
	"clinic-credit-service/internal/domain/ports/adapter"
)

// Ensure compile-time conformance
var _ adapter.Notifier = (*EmailNotifier)(nil)

// EmailNotifier sends plain-text mail over SMTP.
type EmailNotifier struct {
	cfg config.SMTPConfig
	log *zerolog.Logger
}

func NewEmailNotifier(cfg config.SMTPConfig, logger *zerolog.Logger) *EmailNotifier {
	compLog := logger.With().Str("component", "EmailNotifier").Logger()
	return &EmailNotifier{cfg: cfg, log: &compLog}
}

func (n *EmailNotifier) Notify(ctx context.Context, recipient, subject, body string) error {
	e := email.NewEmail()
	e.From = n.cfg.From
	e.To = []string{recipient}
	e.Subject = subject
	e.Text = []byte(body)

	addr := fmt.Sprintf("%s:%d", n.cfg.Host, n.cfg.Port)
	auth := smtp.PlainAuth("", n.cfg.User, n.cfg.Password, n.cfg.Host)
	if err := e.Send(addr, auth); err != nil {
		n.log.Error().Err(err).Str("to", recipient).Msg("email send failed")
		return err
	}
	n.log.Debug().Str("to", recipient).Str("subject", subject).Msg("email sent")
	return nil
}
