// Package email dispatches HTML summary emails. Two interchangeable
// backends exist: SES for the live path and direct SMTP for local runs.
package email

import "context"

// Dispatcher sends one HTML email synchronously and returns the provider
// message id.
type Dispatcher interface {
	Send(ctx context.Context, sender, recipient, subject, htmlBody string) (messageID string, err error)
}
