// Package events publishes domain events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"newsreader/internal/usecase/event"
	"newsreader/pkg/config"
)

const DefaultTopic = "newsreader.events"

// Config configures the publisher. No brokers means events are dropped.
type Config struct {
	Brokers      []string
	Topic        string
	WriteTimeout time.Duration
}

// LoadConfigFromEnv reads KAFKA_BROKERS (comma separated) and KAFKA_TOPIC.
func LoadConfigFromEnv() Config {
	return Config{
		Brokers:      config.GetEnvStringList("KAFKA_BROKERS", nil),
		Topic:        config.GetEnvString("KAFKA_TOPIC", DefaultTopic),
		WriteTimeout: config.GetEnvDuration("KAFKA_WRITE_TIMEOUT", 5*time.Second),
	}
}

// MessageWriter is the subset of *kafka.Writer the publisher uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes each event as one JSON message keyed by Event.Key,
// so events about the same article or country land on one partition.
type KafkaPublisher struct {
	writer  MessageWriter
	timeout time.Duration
}

var _ event.Publisher = (*KafkaPublisher)(nil)

// NewKafkaPublisher wraps w. A non-positive timeout means no per-write deadline.
func NewKafkaPublisher(w MessageWriter, timeout time.Duration) *KafkaPublisher {
	return &KafkaPublisher{writer: w, timeout: timeout}
}

// NewPublisher returns a Kafka-backed publisher, or event.NopPublisher when
// cfg names no brokers. The returned close function is always non-nil.
func NewPublisher(cfg Config) (event.Publisher, func() error) {
	if len(cfg.Brokers) == 0 {
		return event.NopPublisher{}, func() error { return nil }
	}
	topic := cfg.Topic
	if topic == "" {
		topic = DefaultTopic
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
	p := NewKafkaPublisher(w, cfg.WriteTimeout)
	return p, p.Close
}

func (p *KafkaPublisher) Publish(ctx context.Context, e event.Event) error {
	if e.Type == "" {
		return errors.New("publish: event type is required")
	}
	value, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("publish %s: encode: %w", e.Type, err)
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	msg := kafka.Message{
		Key:   []byte(e.Key),
		Value: value,
		Time:  e.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(e.Type)},
			{Key: "event-id", Value: []byte(e.ID)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s: %w", e.Type, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
