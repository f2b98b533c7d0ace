package mailer

import (
	"context"
	"sync"

	"projecthub/internal/config"
	"projecthub/internal/logger"
)

// LogSender writes messages to the log instead of delivering them. It is used
// when no SMTP host is configured, so local setups can read codes from stdout.
type LogSender struct{}

func (LogSender) Send(_ context.Context, msg Message) error {
	logger.Info().
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Str("body", msg.Text).
		Msg("email not sent: SMTP disabled")
	return nil
}

// New picks the SMTP sender when a host is configured.
func New(cfg config.SMTPConfig) Sender {
	if cfg.Host == "" {
		logger.Warn().Msg("SMTP_HOST is empty, emails will be logged")
		return LogSender{}
	}
	return NewSMTPSender(cfg)
}

// Recorder keeps messages in memory. Tests read them back to get OTP codes.
type Recorder struct {
	mu   sync.Mutex
	sent []Message
	Err  error
}

func (r *Recorder) Send(_ context.Context, msg Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.sent = append(r.sent, msg)
	return nil
}

// Sent returns a copy of every recorded message.
func (r *Recorder) Sent() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.sent...)
}

// Last returns the most recent message to the address.
func (r *Recorder) Last(to string) (Message, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.sent) - 1; i >= 0; i-- {
		if r.sent[i].To == to {
			return r.sent[i], true
		}
	}
	return Message{}, false
}
