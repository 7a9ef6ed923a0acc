package email

import (
	"context"
	"errors"
)

// ErrDeliveryFailed is returned when the provider rejects a message.
var ErrDeliveryFailed = errors.New("email delivery failed")

// Message is a single outgoing email.
type Message struct {
	ToAddress string
	ToName    string
	Subject   string
	PlainText string
	HTML      string
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}
