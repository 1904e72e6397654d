package handlers

import (
	"context"

	"github.com/polkiloo/cakeshop-checkout/internal/domain/model"
	"github.com/polkiloo/cakeshop-checkout/internal/usecase"
)

// CheckoutFacade describes checkout capabilities required by handlers.
type CheckoutFacade interface {
	Checkout(ctx context.Context, in usecase.CheckoutInput) (*usecase.CheckoutResult, error)
	Counties() []string
	Stations(county string) []string
}

// PaymentFacade encapsulates payment status, cancellation and gateway callbacks.
type PaymentFacade interface {
	PaymentStatus(ctx context.Context, orderID int64) (*model.StatusView, error)
	CancelOrder(ctx context.Context, orderID int64) (*model.Order, error)
	HandlePaymentCallback(ctx context.Context, raw []byte) model.CallbackAck
}

// AdminFacade provides order management operations.
type AdminFacade interface {
	Orders(ctx context.Context, filter model.OrderFilter) ([]model.Order, error)
	Order(ctx context.Context, orderID int64) (*model.Order, error)
	FulfillOrder(ctx context.Context, orderID int64) (*model.Order, error)
}

// HealthFacade reports dependency health.
type HealthFacade interface {
	Health(ctx context.Context) error
}

// StorefrontFacade aggregates the full set of operations used across handlers.
type StorefrontFacade interface {
	CheckoutFacade
	PaymentFacade
	AdminFacade
	HealthFacade
}
