package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/polkiloo/cakeshop-checkout/internal/domain/model"
)

type emitter struct {
	publisher EventPublisher
	logger    *slog.Logger
}

// emit publishes a status change. Failures are logged and swallowed.
func (e emitter) emit(ctx context.Context, orderID int64, status model.OrderStatus, transactionID string, source model.EventSource, at time.Time) {
	if e.publisher == nil {
		return
	}
	event := model.PaymentEvent{
		OrderID:       orderID,
		Status:        status,
		TransactionID: transactionID,
		Source:        source,
		OccurredAt:    at.UTC(),
	}
	if err := e.publisher.Publish(context.WithoutCancel(ctx), event); err != nil {
		e.logger.Error("publish payment event",
			slog.Int64("order_id", orderID),
			slog.String("status", string(status)),
			slog.String("source", string(source)),
			slog.Any("error", err),
		)
	}
}
