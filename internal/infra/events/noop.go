package events

import (
	"context"

	"clinic-credit-service/internal/domain/ports/adapter"
)

var _ adapter.EventPublisher = (*NoopPublisher)(nil)

// NoopPublisher discards events. Used when Kafka is disabled.
type NoopPublisher struct{}

func NewNoopPublisher() *NoopPublisher { return &NoopPublisher{} }

func (*NoopPublisher) Publish(ctx context.Context, topic, key string, payload any) error { return nil }

func (*NoopPublisher) Close() {}
