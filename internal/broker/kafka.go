// Package broker publishes order lifecycle events to Kafka. Publishing is
// best-effort: order creation never fails because of the broker.
package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// Publisher emits order lifecycle events.
type Publisher interface {
	PublishOrderCreated(ctx context.Context, event *OrderCreatedEvent) error
	Close() error
}

// kafkaPublisher implements Publisher on a kafka-go writer.
type kafkaPublisher struct {
	writer *kafka.Writer
	logger zerolog.Logger
}

// NewKafkaPublisher creates a Publisher writing to the given topic.
func NewKafkaPublisher(brokers []string, topic string, logger zerolog.Logger) Publisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireAll,
		MaxAttempts:  3,
		WriteTimeout: 10 * time.Second,
		ReadTimeout:  10 * time.Second,
	}

	return &kafkaPublisher{
		writer: writer,
		logger: logger.With().Str("component", "kafka-publisher").Logger(),
	}
}

// PublishOrderCreated emits an order.created event keyed by order id.
func (p *kafkaPublisher) PublishOrderCreated(ctx context.Context, event *OrderCreatedEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal order event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.OrderID),
		Value: payload,
		Time:  time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to write order event: %w", err)
	}

	p.logger.Debug().
		Str("order_id", event.OrderID).
		Msg("order.created event published")

	return nil
}

// Close closes the underlying writer.
func (p *kafkaPublisher) Close() error {
	return p.writer.Close()
}
