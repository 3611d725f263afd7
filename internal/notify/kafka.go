package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog"
)

// KafkaSink publishes events as JSON to a Kafka topic, keyed by order number.
type KafkaSink struct {
	producer sarama.SyncProducer
	topic    string
	logger   zerolog.Logger
}

// NewKafkaProducerConfig returns the producer settings used for event publishing.
func NewKafkaProducerConfig() *sarama.Config {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true
	config.Producer.Timeout = 5 * time.Second
	return config
}

// NewKafkaSink connects a synchronous producer to brokers.
func NewKafkaSink(brokers []string, topic string, logger zerolog.Logger) (*KafkaSink, error) {
	producer, err := sarama.NewSyncProducer(brokers, NewKafkaProducerConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	return NewKafkaSinkWithProducer(producer, topic, logger), nil
}

// NewKafkaSinkWithProducer wraps an existing producer.
func NewKafkaSinkWithProducer(producer sarama.SyncProducer, topic string, logger zerolog.Logger) *KafkaSink {
	return &KafkaSink{
		producer: producer,
		topic:    topic,
		logger:   logger.With().Str("sink", "kafka").Str("topic", topic).Logger(),
	}
}

// Name implements Sink.
func (s *KafkaSink) Name() string { return "kafka" }

// Send implements Sink.
func (s *KafkaSink) Send(ctx context.Context, ev Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	partition, offset, err := s.producer.SendMessage(&sarama.ProducerMessage{
		Topic: s.topic,
		Key:   sarama.StringEncoder(ev.Key()),
		Value: sarama.ByteEncoder(payload),
		Headers: []sarama.RecordHeader{
			{Key: []byte("kind"), Value: []byte(ev.Kind)},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	s.logger.Debug().
		Int32("partition", partition).
		Int64("offset", offset).
		Str("kind", string(ev.Kind)).
		Msg("Event published")
	return nil
}

// Close closes the underlying producer.
func (s *KafkaSink) Close() error {
	return s.producer.Close()
}
