package repository

import (
	"context"
	"fmt"

	"PairPulse/internal/domain/models"
	domrepo "PairPulse/internal/domain/repository"
	"PairPulse/pkg/kafka"
)

// KafkaSamplePublisher writes each appended sample to a Kafka topic keyed by
// pair address so one pair always lands on the same partition.
type KafkaSamplePublisher struct {
	producer *kafka.Producer
	topic    string
}

var _ domrepo.SamplePublisher = (*KafkaSamplePublisher)(nil)

// NewKafkaSamplePublisher creates a publisher on topic.
func NewKafkaSamplePublisher(p *kafka.Producer, topic string) *KafkaSamplePublisher {
	return &KafkaSamplePublisher{producer: p, topic: topic}
}

// PublishSample sends ev as JSON.
func (k *KafkaSamplePublisher) PublishSample(ctx context.Context, ev models.SampleEvent) error {
	if err := k.producer.Publish(ctx, k.topic, []byte(ev.PairAddress), ev); err != nil {
		return fmt.Errorf("publish sample %s: %w", ev.Key(), err)
	}
	return nil
}

// Close flushes the producer.
func (k *KafkaSamplePublisher) Close() error {
	return k.producer.Close()
}
