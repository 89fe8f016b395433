package kafka

import (
	"testing"

	"github.com/iwtcode/tankRtu/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKafkaProducer(t *testing.T) {
	cfg := &config.AppConfig{Kafka: config.KafkaConfig{Enable: false}}
	p, err := NewKafkaProducer(cfg)
	require.NoError(t, err)
	assert.IsType(t, NopProducer{}, p)
	assert.NoError(t, p.Produce(t.Context(), []byte("k"), []byte("v")))

	cfg.Kafka = config.KafkaConfig{Enable: true, Broker: "localhost:9092", Topic: "rtu_events"}
	p, err = NewKafkaProducer(cfg)
	require.NoError(t, err)
	producer, ok := p.(*KafkaProducer)
	require.True(t, ok)
	assert.Equal(t, "rtu_events", producer.writer.Topic)
	assert.NoError(t, p.Close())
}
