package mailer_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"projecthub/internal/config"
	"projecthub/internal/logger"
	"projecthub/internal/mailer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerificationEmail(t *testing.T) {
	msg := mailer.VerificationEmail("ann@example.com", "<Ann>", "042137", 10*time.Minute)

	assert.Equal(t, "ann@example.com", msg.To)
	assert.Contains(t, msg.Subject, "Verify")
	assert.Contains(t, msg.Text, "042137")
	assert.Contains(t, msg.Text, "10 minutes")
	assert.Contains(t, msg.HTML, "&lt;Ann&gt;")
}

func TestPasswordResetEmail(t *testing.T) {
	msg := mailer.PasswordResetEmail("ann@example.com", "Ann", "999999", 15*time.Minute)

	assert.Contains(t, msg.Subject, "Reset")
	assert.Contains(t, msg.Text, "999999")
}

func TestNew_PicksSender(t *testing.T) {
	_, isLog := mailer.New(config.SMTPConfig{}).(mailer.LogSender)
	assert.True(t, isLog)

	_, isSMTP := mailer.New(config.SMTPConfig{Host: "smtp.example.com", Port: 587}).(*mailer.SMTPSender)
	assert.True(t, isSMTP)
}

func TestLogSender(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	t.Cleanup(func() { logger.Init("info") })

	err := mailer.LogSender{}.Send(context.Background(), mailer.Message{To: "ann@example.com", Subject: "hi", Text: "code 123456"})

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "ann@example.com")
	assert.Contains(t, buf.String(), "123456")
}

func TestRecorder(t *testing.T) {
	rec := &mailer.Recorder{}
	ctx := context.Background()

	require.NoError(t, rec.Send(ctx, mailer.Message{To: "a@example.com", Text: "first"}))
	require.NoError(t, rec.Send(ctx, mailer.Message{To: "b@example.com", Text: "other"}))
	require.NoError(t, rec.Send(ctx, mailer.Message{To: "a@example.com", Text: "second"}))

	last, ok := rec.Last("a@example.com")
	require.True(t, ok)
	assert.Equal(t, "second", last.Text)
	assert.Len(t, rec.Sent(), 3)

	_, ok = rec.Last("nobody@example.com")
	assert.False(t, ok)

	rec.Err = errors.New("smtp down")
	assert.Error(t, rec.Send(ctx, mailer.Message{To: "a@example.com"}))
	assert.Len(t, rec.Sent(), 3)
}

func TestSMTPSender_NoRecipient(t *testing.T) {
	err := mailer.NewSMTPSender(config.SMTPConfig{Host: "localhost", Port: 2525}).Send(context.Background(), mailer.Message{})
	assert.Error(t, err)
}
