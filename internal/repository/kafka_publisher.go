package repository

import (
	"context"

	"SentiPull/internal/domain/models"
	"SentiPull/internal/domain/repository"
	pkgkafka "SentiPull/pkg/kafka"
)

// KafkaPublisher implements Publisher for Kafka.
type KafkaPublisher struct {
	producer *pkgkafka.Producer
}

// NewKafkaPublisher creates a Kafka cache event publisher.
func NewKafkaPublisher(producer *pkgkafka.Producer) repository.Publisher {
	return &KafkaPublisher{producer: producer}
}

// Publish sends ev keyed by its cache key.
func (p *KafkaPublisher) Publish(ctx context.Context, ev *models.CacheEvent) error {
	return p.producer.Publish(ctx, []byte(ev.Key), ev)
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}

// NoopPublisher drops every event.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, *models.CacheEvent) error { return nil }
func (NoopPublisher) Close() error                                       { return nil }
