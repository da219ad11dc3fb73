package mailer

import (
	"context"
	"errors"
)

// Email is a fully rendered message ready for delivery.
type Email struct {
	To          string
	Subject     string
	HTMLBody    string
	Attachments []Attachment
}

// Attachment is an inline file carried with the email.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Mailer delivers rendered emails.
type Mailer interface {
	Send(ctx context.Context, email Email) error
}

// ErrNotConfigured indicates SMTP settings are missing.
var ErrNotConfigured = errors.New("mailer not configured")
