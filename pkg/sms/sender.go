package sms

import "context"

// Sender dispatches a single SMS message. A nil error means the message was
// accepted for delivery by the gateway; delivery itself is not confirmed.
type Sender interface {
	Send(ctx context.Context, phone, body string) error
}
