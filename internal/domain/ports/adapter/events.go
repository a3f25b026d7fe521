package adapter

import "context"

// Event topics published on the message bus.
const (
	TopicRedemptions = "clinic.redemptions"
	TopicLowBalance  = "clinic.low-balance"
)

// EventPublisher emits domain events for downstream consumers. Publish
// is fire-and-forget; failures are logged, never surfaced to the
// redemption flow.
type EventPublisher interface {
	Publish(ctx context.Context, topic, key string, payload any) error
	Close()
}
