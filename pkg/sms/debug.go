package sms

import (
	"context"
	"log/slog"
)

// DebugSender implements Sender by logging messages instead of sending them.
// Sends always succeed. This is the only sender that logs message bodies,
// which contain verification codes; never wire it outside a trusted debug
// environment.
type DebugSender struct{}

// NewDebugSender creates a sender that logs instead of sending
func NewDebugSender() *DebugSender {
	return &DebugSender{}
}

// Send logs the message and reports success without sending anything
func (s *DebugSender) Send(ctx context.Context, phone, body string) error {
	slog.Debug("Debug mode: sms not actually sent", "to", phone, "body", body)
	return nil
}
