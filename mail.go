package goCred

import (
	"context"
	"encoding/json"
	"io"
	"sync"
)

// MailSender is the outbound-notification strategy ForgotPassword hands the
// generated credential to. Delivery mechanics (SMTP, queue, provider API)
// stay outside the engine.
type MailSender interface {
	SendPasswordReset(ctx context.Context, email, subject, newPassword string) error
}

// NoOpMailSender accepts and discards every hand-off. It is the default when
// no sender is configured.
type NoOpMailSender struct{}

// SendPasswordReset implements MailSender.
func (NoOpMailSender) SendPasswordReset(context.Context, string, string, string) error {
	return nil
}

// ResetMail is one captured hand-off.
type ResetMail struct {
	Email       string
	Subject     string
	NewPassword string
}

// ChannelMailSender forwards hand-offs to a channel, mainly for tests and
// embedding.
type ChannelMailSender struct {
	mails chan ResetMail
}

// NewChannelMailSender creates a ChannelMailSender with the given buffer.
func NewChannelMailSender(buffer int) *ChannelMailSender {
	if buffer <= 0 {
		buffer = 1
	}
	return &ChannelMailSender{
		mails: make(chan ResetMail, buffer),
	}
}

// SendPasswordReset implements MailSender.
func (s *ChannelMailSender) SendPasswordReset(ctx context.Context, email, subject, newPassword string) error {
	select {
	case s.mails <- ResetMail{Email: email, Subject: subject, NewPassword: newPassword}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Mails exposes the receiving side of the sender.
func (s *ChannelMailSender) Mails() <-chan ResetMail {
	return s.mails
}

// JSONWriterMailSender writes one JSON object per hand-off to an io.Writer.
// Intended for demos and local development, not for real delivery.
type JSONWriterMailSender struct {
	writer io.Writer
	mu     sync.Mutex
}

// NewJSONWriterMailSender creates a JSONWriterMailSender over w.
func NewJSONWriterMailSender(w io.Writer) *JSONWriterMailSender {
	return &JSONWriterMailSender{
		writer: w,
	}
}

// SendPasswordReset implements MailSender.
func (s *JSONWriterMailSender) SendPasswordReset(_ context.Context, email, subject, newPassword string) error {
	data, err := json.Marshal(ResetMail{Email: email, Subject: subject, NewPassword: newPassword})
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.writer.Write(data); err != nil {
		return err
	}
	_, err = s.writer.Write([]byte("\n"))
	return err
}
