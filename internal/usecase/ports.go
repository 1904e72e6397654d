package usecase

import (
	"context"

	"github.com/polkiloo/cakeshop-checkout/internal/domain/model"
)

// PaymentGateway initiates mobile money payments.
type PaymentGateway interface {
	InitiatePayment(ctx context.Context, req model.PaymentRequest) (*model.InitiationResult, error)
}

// CallbackDecoder turns a raw gateway callback into a PaymentCallback.
type CallbackDecoder interface {
	DecodeCallback(raw []byte) (*model.PaymentCallback, error)
}

// EventPublisher emits payment events after a status change.
type EventPublisher interface {
	Publish(ctx context.Context, event model.PaymentEvent) error
}
