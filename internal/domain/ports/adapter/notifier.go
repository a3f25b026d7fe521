package adapter

import "context"

// Notifier delivers user-facing notifications (email today).
type Notifier interface {
	Notify(ctx context.Context, recipient, subject, body string) error
}
