package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/polkiloo/cakeshop-checkout/internal/domain/model"
)

const writeTimeout = 5 * time.Second

// Publisher emits payment events after order status changes.
type Publisher interface {
	Publish(ctx context.Context, event model.PaymentEvent) error
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes payment events to a Kafka topic keyed by order id.
type KafkaPublisher struct {
	writer messageWriter
	logger *slog.Logger
}

// NewKafkaPublisher creates a publisher for the given brokers and topic.
func NewKafkaPublisher(brokers []string, topic string, logger *slog.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireAll,
			AllowAutoTopicCreation: true,
		},
		logger: logger,
	}
}

// Publish writes a single event. Events for one order land on one partition.
func (p *KafkaPublisher) Publish(ctx context.Context, event model.PaymentEvent) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	value, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(event.OrderID, 10)),
		Value: value,
		Time:  event.OccurredAt,
	}); err != nil {
		return err
	}

	p.logger.Debug("payment event published",
		slog.Int64("order_id", event.OrderID),
		slog.String("status", string(event.Status)),
		slog.String("source", string(event.Source)),
	)
	return nil
}

// Close flushes pending writes and releases connections.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NoopPublisher drops every event.
type NoopPublisher struct{}

// Publish discards the event.
func (NoopPublisher) Publish(context.Context, model.PaymentEvent) error { return nil }

// Close is a no-op.
func (NoopPublisher) Close() error { return nil }
