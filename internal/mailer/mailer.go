// Package mailer delivers account emails: verification and password reset
// codes.
package mailer

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Message is a plain text email with an optional HTML alternative.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Sender delivers a single message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

var headerStripper = strings.NewReplacer("\r", "", "\n", "")

// VerificationEmail builds the message sent after registration and on resend.
func VerificationEmail(to, name, code string, ttl time.Duration) Message {
	return codeEmail(to, "Verify your ProjectHub account", name,
		"Use this code to verify your email address", code, ttl)
}

// PasswordResetEmail builds the message sent by forgot-password.
func PasswordResetEmail(to, name, code string, ttl time.Duration) Message {
	return codeEmail(to, "Reset your ProjectHub password", name,
		"Use this code to reset your password", code, ttl)
}

func codeEmail(to, subject, name, lead, code string, ttl time.Duration) Message {
	minutes := int(ttl.Minutes())
	text := fmt.Sprintf("Hi %s,\n\n%s: %s\n\nThe code expires in %d minutes.\n", name, lead, code, minutes)
	html := fmt.Sprintf("<p>Hi %s,</p><p>%s:</p><p><strong>%s</strong></p><p>The code expires in %d minutes.</p>",
		htmlEscaper.Replace(name), lead, code, minutes)
	return Message{To: to, Subject: subject, Text: text, HTML: html}
}

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;", "'", "&#39;")
