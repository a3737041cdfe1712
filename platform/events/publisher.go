package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/dhima/inventory-activity/internal/logging"
)

// messageWriter is the subset of *kafka.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher emits activity messages to a single Kafka topic.
type Publisher struct {
	out    messageWriter
	topic  string
	logger logging.Logger
}

// NewPublisher creates a publisher writing JSON messages to topic.
func NewPublisher(brokers []string, topic string, logger logging.Logger) *Publisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		MaxAttempts:  3,
		WriteTimeout: 10 * time.Second,
		BatchTimeout: 10 * time.Millisecond,
	}
	return NewPublisherWithWriter(writer, topic, logger)
}

// NewPublisherWithWriter wires a custom writer, mainly for tests.
func NewPublisherWithWriter(w messageWriter, topic string, logger logging.Logger) *Publisher {
	if logger == nil {
		logger = logging.NewNoOpLogger()
	}
	return &Publisher{out: w, topic: topic, logger: logger}
}

// Publish marshals value as JSON and writes it keyed by key, so all messages
// for the same key land on the same partition.
func (p *Publisher) Publish(ctx context.Context, key string, value interface{}) error {
	body, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s message: %w", p.topic, err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: body,
		Time:  time.Now().UTC(),
	}
	if err := p.out.WriteMessages(ctx, msg); err != nil {
		p.logger.Warn("kafka write failed",
			zap.String("topic", p.topic),
			zap.String("key", key),
			zap.Error(err))
		return fmt.Errorf("publish to %s: %w", p.topic, err)
	}

	p.logger.Debug("message published",
		zap.String("topic", p.topic),
		zap.String("key", key))
	return nil
}

// Topic returns the destination topic.
func (p *Publisher) Topic() string {
	return p.topic
}

// Close flushes pending writes and releases the connection.
func (p *Publisher) Close() error {
	if p.out == nil {
		return nil
	}
	return p.out.Close()
}
