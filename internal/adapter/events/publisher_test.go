package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"

	"github.com/polkiloo/cakeshop-checkout/internal/config"
	"github.com/polkiloo/cakeshop-checkout/internal/domain/model"
)

type writerStub struct {
	msgs     []kafka.Message
	err      error
	closed   bool
	deadline bool
}

func (w *writerStub) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	_, w.deadline = ctx.Deadline()
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *writerStub) Close() error {
	w.closed = true
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestKafkaPublisherPublish(t *testing.T) {
	stub := &writerStub{}
	publisher := &KafkaPublisher{writer: stub, logger: discardLogger()}
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	err := publisher.Publish(context.Background(), model.PaymentEvent{
		OrderID:       42,
		Status:        model.OrderStatusPaid,
		TransactionID: "ABC123",
		Source:        model.EventSourceCallback,
		OccurredAt:    at,
	})
	require.NoError(t, err)
	require.Len(t, stub.msgs, 1)
	assert.True(t, stub.deadline)

	msg := stub.msgs[0]
	assert.Equal(t, "42", string(msg.Key))
	assert.Equal(t, at, msg.Time)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, float64(42), decoded["order_id"])
	assert.Equal(t, "paid", decoded["status"])
	assert.Equal(t, "ABC123", decoded["transaction_id"])
	assert.Equal(t, "callback", decoded["source"])
}

func TestKafkaPublisherPropagatesWriteError(t *testing.T) {
	stub := &writerStub{err: errors.New("broker down")}
	publisher := &KafkaPublisher{writer: stub, logger: discardLogger()}

	err := publisher.Publish(context.Background(), model.PaymentEvent{OrderID: 1, Status: model.OrderStatusTimeout})
	require.Error(t, err)

	require.NoError(t, publisher.Close())
	assert.True(t, stub.closed)
}

func TestNoopPublisher(t *testing.T) {
	var p Publisher = NoopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), model.PaymentEvent{OrderID: 1}))
	assert.NoError(t, p.Close())
}

func TestNewPublisherSelectsImplementation(t *testing.T) {
	noop := newPublisher(publisherParams{Config: &config.Config{}, Logger: discardLogger()})
	assert.IsType(t, NoopPublisher{}, noop)

	cfg := &config.Config{Kafka: config.Kafka{Brokers: []string{"localhost:9092"}, PaymentsTopic: "payment-events"}}
	kp := newPublisher(publisherParams{Config: cfg, Logger: discardLogger()})
	require.IsType(t, &KafkaPublisher{}, kp)
	writer := kp.(*KafkaPublisher).writer.(*kafka.Writer)
	assert.Equal(t, "payment-events", writer.Topic)
	assert.NoError(t, kp.Close())
}

func TestRegisterLifecycleClosesPublisher(t *testing.T) {
	lc := fxtest.NewLifecycle(t)
	stub := &writerStub{}
	registerLifecycle(lc, &KafkaPublisher{writer: stub, logger: discardLogger()})

	lc.RequireStart()
	lc.RequireStop()
	assert.True(t, stub.closed)
}
