package kafka

import (
	"context"
	"time"

	"github.com/iwtcode/tankRtu/internal/config"
	"github.com/iwtcode/tankRtu/internal/interfaces"

	"github.com/segmentio/kafka-go"
)

type KafkaProducer struct {
	writer *kafka.Writer
}

// NewKafkaProducer создает продюсера событий RTU. При KAFKA_ENABLE=false события не публикуются.
func NewKafkaProducer(cfg *config.AppConfig) (interfaces.KafkaService, error) {
	if !cfg.Kafka.Enable {
		return NopProducer{}, nil
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Kafka.Broker),
		Topic:        cfg.Kafka.Topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 50 * time.Millisecond,
	}
	return &KafkaProducer{writer: writer}, nil
}

// Produce отправляет сообщение в Kafka
func (p *KafkaProducer) Produce(ctx context.Context, key, value []byte) error {
	return p.writer.WriteMessages(ctx,
		kafka.Message{
			Key:   key,
			Value: value,
		},
	)
}

// Close закрывает соединение с Kafka
func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}

// NopProducer отбрасывает сообщения.
type NopProducer struct{}

func (NopProducer) Produce(ctx context.Context, key, value []byte) error { return nil }
func (NopProducer) Close() error                                         { return nil }
