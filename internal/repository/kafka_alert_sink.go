package repository

import (
	"context"

	"VixWatch/internal/domain/models"
	"VixWatch/internal/domain/repository"
	pkgkafka "VixWatch/pkg/kafka"
)

// KafkaAlertSink implements AlertSink over a Kafka topic. Alerts are keyed
// by symbol so consumers see zone transitions for one instrument in order.
type KafkaAlertSink struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaAlertSink creates a Kafka-backed alert sink.
func NewKafkaAlertSink(producer *pkgkafka.Producer, topic string) repository.AlertSink {
	return &KafkaAlertSink{producer: producer, topic: topic}
}

func (s *KafkaAlertSink) Publish(ctx context.Context, alert *models.AlertEvent) error {
	return s.producer.Publish(ctx, s.topic, []byte(alert.Symbol), alert)
}

func (s *KafkaAlertSink) Close() error {
	if s.producer != nil {
		return s.producer.Close()
	}
	return nil
}
