// Package mailer delivers account e-mails.
package mailer

import (
	"context"
	"fmt"
	"net/url"

	"github.com/rs/zerolog"
)

// Mailer sends e-mail messages.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

type Message struct {
	To      string
	Subject string
	Body    string
}

// VerificationMessage builds the e-mail carrying the verification link.
func VerificationMessage(to, baseURL, token string) Message {
	link := fmt.Sprintf("%s/api/verify_email?token=%s", baseURL, url.QueryEscape(token))
	return Message{
		To:      to,
		Subject: "Verify your e-mail address",
		Body:    "Open the following link to verify your e-mail address:\n\n" + link + "\n",
	}
}

// LogMailer writes messages to the log instead of delivering them.
type LogMailer struct {
	Log zerolog.Logger
}

func (m LogMailer) Send(_ context.Context, msg Message) error {
	m.Log.Info().
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Str("body", msg.Body).
		Msg("mail sent")
	return nil
}

// FakeMailer records sent messages.
type FakeMailer struct {
	SendFn func(ctx context.Context, msg Message) error
}

func (f *FakeMailer) Send(ctx context.Context, msg Message) error {
	if f.SendFn != nil {
		return f.SendFn(ctx, msg)
	}
	return nil
}
