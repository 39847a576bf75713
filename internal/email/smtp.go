package email

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/wneessen/go-mail"
)

// SMTPConfig holds the direct-transport settings for local runs.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
}

// SMTPDispatcher sends email over plain SMTP with a mandatory STARTTLS
// upgrade, dialing and disconnecting per send.
type SMTPDispatcher struct {
	cfg SMTPConfig
}

// NewSMTPDispatcher creates a dispatcher from transport settings.
func NewSMTPDispatcher(cfg SMTPConfig) *SMTPDispatcher {
	return &SMTPDispatcher{cfg: cfg}
}

// Send dispatches one HTML email over SMTP. The returned message id is
// generated locally; plain SMTP has no provider-assigned id.
func (d *SMTPDispatcher) Send(ctx context.Context, sender, recipient, subject, htmlBody string) (string, error) {
	msg := mail.NewMsg()
	if err := msg.From(sender); err != nil {
		return "", fmt.Errorf("invalid sender %q: %w", sender, err)
	}
	if err := msg.To(recipient); err != nil {
		return "", fmt.Errorf("invalid recipient %q: %w", recipient, err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)

	messageID := uuid.NewString()
	msg.SetMessageIDWithValue(messageID)

	client, err := mail.NewClient(d.cfg.Host,
		mail.WithPort(d.cfg.Port),
		mail.WithTLSPolicy(mail.TLSMandatory),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(d.cfg.User),
		mail.WithPassword(d.cfg.Password),
	)
	if err != nil {
		return "", fmt.Errorf("creating SMTP client for %s: %w", d.cfg.Host, err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return "", fmt.Errorf("sending email to %s via %s: %w", recipient, d.cfg.Host, err)
	}
	return messageID, nil
}
