// ABOUTME: Kafka sink publishing one message per row, keyed by table name.
// ABOUTME: Uses a synchronous kafka-go writer so Send returns after broker acks.
package sink

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/segmentio/kafka-go"

	"github.com/harperreed/runlog/internal/storage"
)

// messageWriter is the part of *kafka.Writer the sink uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaConfig configures the Kafka sink.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// Kafka publishes table rows to a topic.
type Kafka struct {
	w messageWriter
}

// NewKafka creates a Kafka sink. Rows of one table share a key and so land
// on one partition in order.
func NewKafka(cfg KafkaConfig) (*Kafka, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka sink: at least one broker is required")
	}
	if cfg.Topic == "" {
		return nil, errors.New("kafka sink: topic is required")
	}
	return &Kafka{w: &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		RequiredAcks: kafka.RequireOne,
		Balancer:     &kafka.Hash{},
		Async:        false,
	}}, nil
}

// Send writes one message per record.
func (k *Kafka) Send(ctx context.Context, table string, recs []storage.Record) error {
	msgs := make([]kafka.Message, len(recs))
	for i, r := range recs {
		value, err := json.Marshal(r.With("_source", table))
		if err != nil {
			return fmt.Errorf("encode row %d: %w", i, err)
		}
		msgs[i] = kafka.Message{
			Key:   []byte(table),
			Value: value,
			Headers: []kafka.Header{
				{Key: "sourcetype", Value: []byte(SourceType)},
			},
		}
	}
	if err := k.w.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write messages: %w", err)
	}
	return nil
}

// Close flushes and closes the writer.
func (k *Kafka) Close() error {
	return k.w.Close()
}
