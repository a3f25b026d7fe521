package events

import (
	"context"
	"encoding/json"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/rs/zerolog"

	"clinic-credit-service/internal/domain/ports/adapter"
)

// Ensure compile-time conformance
var _ adapter.EventPublisher = (*KafkaPublisher)(nil)

// KafkaPublisher emits domain events as JSON messages. Delivery reports
// are drained in the background; a failed delivery is logged and
// dropped, never retried on the request path.
type KafkaPublisher struct {
	producer *kafka.Producer
	log      *zerolog.Logger
}

func NewKafkaPublisher(bootstrapServers string, logger *zerolog.Logger) (*KafkaPublisher, error) {
	p, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": bootstrapServers,
		"acks":              "all",
	})
	if err != nil {
		return nil, err
	}
	compLog := logger.With().Str("component", "KafkaPublisher").Logger()
	kp := &KafkaPublisher{producer: p, log: &compLog}
	go kp.drainDeliveryReports()
	return kp, nil
}

func (p *KafkaPublisher) drainDeliveryReports() {
	for e := range p.producer.Events() {
		if m, ok := e.(*kafka.Message); ok && m.TopicPartition.Error != nil {
			p.log.Warn().Err(m.TopicPartition.Error).
				Str("topic", *m.TopicPartition.Topic).Msg("event delivery failed")
		}
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, topic, key string, payload any) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return p.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Key:            []byte(key),
		Value:          value,
	}, nil)
}

func (p *KafkaPublisher) Close() {
	p.producer.Flush(5000)
	p.producer.Close()
}
