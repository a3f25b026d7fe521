package notify

import (
	"context"

	"clinic-credit-service/internal/domain/ports/adapter"
)

var _ adapter.Notifier = (*NoopNotifier)(nil)

// NoopNotifier swallows notifications. Used when SMTP is not
// configured, e.g. in development.
type NoopNotifier struct{}

func NewNoopNotifier() *NoopNotifier { return &NoopNotifier{} }

func (*NoopNotifier) Notify(ctx context.Context, recipient, subject, body string) error { return nil }
