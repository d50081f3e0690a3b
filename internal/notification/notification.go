// Package notification delivers lifecycle messages to readers over
// email or SMS. Cross-cutting behavior (logging, de-duplication,
// retry) is added by wrapping a channel in decorators; the wrapping
// order is chosen by the caller and changes observable behavior, see
// the decorator docs.
package notification

import (
	"context"
	"fmt"
)

// Notification is a single deliverable message bound to one medium.
// Type identifies the medium ("EMAIL", "SMS") and Message returns the
// rendered text; decorators preserve both while altering Send.
type Notification interface {
	Send(ctx context.Context) error
	Type() string
	Message() string
}

// Sender performs the actual delivery for a medium. The core owns no
// SMTP or SMS gateway; real transports are injected behind this
// interface and fakes stand in for them in tests.
type Sender func(ctx context.Context, recipient, message string) error

// Email is an email-bound notification.
type Email struct {
	Recipient string
	Subject   string
	Text      string
	Deliver   Sender
}

func (e *Email) Send(ctx context.Context) error {
	if e.Deliver == nil {
		return fmt.Errorf("email to %s: no sender configured", e.Recipient)
	}
	return e.Deliver(ctx, e.Recipient, e.Text)
}

func (e *Email) Type() string { return "EMAIL" }

func (e *Email) Message() string { return e.Text }

// SMS is an SMS-bound notification.
type SMS struct {
	Phone   string
	Text    string
	Deliver Sender
}

func (s *SMS) Send(ctx context.Context) error {
	if s.Deliver == nil {
		return fmt.Errorf("sms to %s: no sender configured", s.Phone)
	}
	return s.Deliver(ctx, s.Phone, s.Text)
}

func (s *SMS) Type() string { return "SMS" }

func (s *SMS) Message() string { return s.Text }

// New builds a notification for the named channel ("EMAIL" or "SMS").
// The subject is only used by the email channel. An unknown channel
// name is a composition error and is reported as such.
func New(channel, recipient, subject, message string, deliver Sender) (Notification, error) {
	switch channel {
	case "EMAIL":
		return &Email{Recipient: recipient, Subject: subject, Text: message, Deliver: deliver}, nil
	case "SMS":
		return &SMS{Phone: recipient, Text: message, Deliver: deliver}, nil
	}
	return nil, fmt.Errorf("unknown notification channel: %s", channel)
}
