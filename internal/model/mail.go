package model

import "context"

// Email is an outbound HTML message.
type Email struct {
	From    string
	To      []string
	Subject string
	HTML    string
}

// Mailer delivers emails.
type Mailer interface {
	Send(ctx context.Context, msg Email) error
}
