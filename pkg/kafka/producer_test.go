package kafka

import (
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProducerRequiresBrokersAndTopic(t *testing.T) {
	_, err := NewProducer(WithTopic("cache"))
	assert.Error(t, err)

	_, err = NewProducer(WithBrokers([]string{"localhost:9092"}))
	assert.Error(t, err)
}

func TestNewProducerAppliesOptions(t *testing.T) {
	p, err := NewProducer(
		WithBrokers([]string{"localhost:9092"}),
		WithTopic("sentipull.cache"),
		WithCompression("zstd"),
		WithMaxAttempts(7),
		WithRequiredAcks(-1),
		WithBatchTimeout(50*time.Millisecond),
		WithTimeouts(3*time.Second, 4*time.Second),
	)
	require.NoError(t, err)
	defer p.Close()

	assert.Equal(t, "sentipull.cache", p.Topic())
	assert.Equal(t, "sentipull.cache", p.writer.Topic)
	assert.Equal(t, kafka.Zstd, p.writer.Compression)
	assert.Equal(t, 7, p.writer.MaxAttempts)
	assert.Equal(t, kafka.RequireAll, p.writer.RequiredAcks)
	assert.Equal(t, 50*time.Millisecond, p.writer.BatchTimeout)
	assert.Equal(t, 3*time.Second, p.writer.WriteTimeout)
	assert.Equal(t, 4*time.Second, p.writer.ReadTimeout)
}

func TestEncodeValue(t *testing.T) {
	b, err := encodeValue(map[string]int{"records": 24})
	require.NoError(t, err)
	assert.JSONEq(t, `{"records":24}`, string(b))

	b, err = encodeValue("raw")
	require.NoError(t, err)
	assert.Equal(t, "raw", string(b))
}
