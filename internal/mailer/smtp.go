package mailer

import (
	"context"
	"errors"
	"fmt"

	"projecthub/internal/config"

	"github.com/wneessen/go-mail"
)

// SMTPSender dials the configured server for every message. Account mail is
// sporadic, so no connection is kept open.
type SMTPSender struct {
	cfg config.SMTPConfig
}

func NewSMTPSender(cfg config.SMTPConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return errors.New("email send: no recipient")
	}

	m := mail.NewMsg()
	if err := m.FromFormat("ProjectHub", s.cfg.From); err != nil {
		return fmt.Errorf("email send: set from: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return fmt.Errorf("email send: set to: %w", err)
	}
	m.Subject(headerStripper.Replace(msg.Subject))
	m.SetBodyString(mail.TypeTextPlain, msg.Text)
	if msg.HTML != "" {
		m.AddAlternativeString(mail.TypeTextHTML, msg.HTML)
	}

	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
	}
	if s.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.Username),
			mail.WithPassword(s.cfg.Password),
		)
	}
	if s.cfg.TLS {
		opts = append(opts, mail.WithTLSPortPolicy(mail.TLSMandatory))
	} else {
		opts = append(opts, mail.WithTLSPortPolicy(mail.TLSOpportunistic))
	}

	c, err := mail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("email send: create client: %w", err)
	}
	if err := c.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("email send: %w", err)
	}
	return nil
}
