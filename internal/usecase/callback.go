package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	domainErrors "github.com/polkiloo/cakeshop-checkout/internal/domain/errors"
	"github.com/polkiloo/cakeshop-checkout/internal/domain/model"
	"github.com/polkiloo/cakeshop-checkout/internal/domain/repository"
)

// CallbackUseCase reconciles asynchronous payment results with orders.
type CallbackUseCase struct {
	orders  repository.OrderRepository
	decoder CallbackDecoder
	events  emitter
	logger  *slog.Logger
	now     func() time.Time
}

// NewCallbackUseCase constructs CallbackUseCase.
func NewCallbackUseCase(orders repository.OrderRepository, decoder CallbackDecoder, publisher EventPublisher, logger *slog.Logger) *CallbackUseCase {
	return &CallbackUseCase{
		orders:  orders,
		decoder: decoder,
		events:  emitter{publisher: publisher, logger: logger},
		logger:  logger,
		now:     time.Now,
	}
}

// Reconcile applies a gateway callback and returns the acknowledgment for the gateway.
// Only a payload that cannot be parsed yields a failure acknowledgment; every other
// problem is logged and acknowledged as success so the gateway stops retrying.
func (u *CallbackUseCase) Reconcile(ctx context.Context, raw []byte) model.CallbackAck {
	u.logger.Debug("payment callback received", slog.String("body", string(raw)))

	cb, err := u.decoder.DecodeCallback(raw)
	if err != nil {
		u.logger.Error("payment callback rejected", slog.Any("error", err))
		return model.AckInvalidJSON
	}

	log := u.logger.With(
		slog.String("checkout_request_id", cb.CheckoutRequestID),
		slog.String("merchant_request_id", cb.MerchantRequestID),
		slog.Int("result_code", cb.ResultCode),
	)

	order, err := u.locate(ctx, cb)
	switch {
	case isNotFound(err):
		log.Error("no order matches payment callback")
		return model.AckAccepted
	case err != nil:
		log.Error("payment callback lookup failed", slog.Any("error", err))
		return model.AckAccepted
	}

	log = log.With(slog.Int64("order_id", order.ID))
	if order.Status != model.OrderStatusPending {
		log.Info("payment callback ignored for settled order", slog.String("status", string(order.Status)))
		return model.AckAccepted
	}

	status := model.StatusForResultCode(cb.ResultCode)
	var transactionID string
	if status == model.OrderStatusPaid {
		transactionID = cb.ReceiptNumber
	}

	changed, err := u.orders.TransitionFromPending(ctx, order.ID, status, transactionID)
	if err != nil {
		log.Error("payment callback transition failed", slog.Any("error", err))
		return model.AckAccepted
	}
	if !changed {
		log.Info("payment callback lost race to another writer")
		return model.AckAccepted
	}

	attrs := []any{
		slog.String("status", string(status)),
		slog.String("result_description", cb.ResultDescription),
	}
	if status == model.OrderStatusPaid {
		attrs = append(attrs, slog.String("transaction_id", transactionID))
		if cb.Amount != nil {
			attrs = append(attrs, slog.String("amount", cb.Amount.String()))
			if !cb.Amount.Equal(order.Total.Ceil()) {
				log.Warn("paid amount differs from order total",
					slog.String("amount", cb.Amount.String()),
					slog.String("total", order.Total.StringFixed(2)),
				)
			}
		}
	}
	log.Info("payment reconciled", attrs...)

	u.events.emit(ctx, order.ID, status, transactionID, model.EventSourceCallback, u.now())
	return model.AckAccepted
}

// locate finds the order by checkout request id, falling back to the merchant request id.
func (u *CallbackUseCase) locate(ctx context.Context, cb *model.PaymentCallback) (*model.Order, error) {
	order, err := u.orders.FindByCheckoutRequestID(ctx, cb.CheckoutRequestID)
	if err == nil {
		return order, nil
	}
	if !errors.Is(err, domainErrors.ErrNotFound) {
		return nil, err
	}

	order, err = u.orders.FindByMerchantRequestID(ctx, cb.MerchantRequestID)
	if err == nil {
		u.logger.Warn("payment callback matched by merchant request id",
			slog.Int64("order_id", order.ID),
			slog.String("checkout_request_id", cb.CheckoutRequestID),
		)
	}
	return order, err
}
