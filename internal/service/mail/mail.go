package mail

import (
	"context"
)

// Sender delivers the one-time activation code to a freshly registered
// address. Delivery failure is a reportable outcome, never a reason to
// fail the registration itself.
type Sender interface {
	SendActivationCode(ctx context.Context, toEmail string, name string, code string) error
}

// NoOpSender silently drops mail; handy for development and tests
type NoOpSender struct{}

func (NoOpSender) SendActivationCode(ctx context.Context, toEmail string, name string, code string) error {
	return nil
}
