// Package httpstub holds facade stubs for HTTP layer tests.
package httpstub

import (
	"context"
	"time"

	domainErrors "github.com/polkiloo/cakeshop-checkout/internal/domain/errors"
	"github.com/polkiloo/cakeshop-checkout/internal/domain/model"
	"github.com/polkiloo/cakeshop-checkout/internal/usecase"
)

// StorefrontFacadeStub provides controllable behaviour for every HTTP endpoint.
type StorefrontFacadeStub struct {
	CheckoutFn func(context.Context, usecase.CheckoutInput) (*usecase.CheckoutResult, error)
	StatusFn   func(context.Context, int64) (*model.StatusView, error)
	CancelFn   func(context.Context, int64) (*model.Order, error)
	CallbackFn func(context.Context, []byte) model.CallbackAck
	OrdersFn   func(context.Context, model.OrderFilter) ([]model.Order, error)
	OrderFn    func(context.Context, int64) (*model.Order, error)
	FulfillFn  func(context.Context, int64) (*model.Order, error)
	HealthErr  error
	StationMap map[string][]string
}

// Checkout delegates to CheckoutFn or echoes a pending order built from the input.
func (s StorefrontFacadeStub) Checkout(ctx context.Context, in usecase.CheckoutInput) (*usecase.CheckoutResult, error) {
	if s.CheckoutFn != nil {
		return s.CheckoutFn(ctx, in)
	}
	return &usecase.CheckoutResult{
		Order: &model.Order{
			ID:            1,
			Customer:      in.Customer,
			PaymentMethod: in.PaymentMethod,
			Total:         in.Cart.Total(),
			Status:        model.OrderStatusPending,
			CreatedAt:     time.Unix(0, 0).UTC(),
		},
		Message: usecase.MessageCashOnDelivery,
	}, nil
}

// Counties lists configured counties.
func (s StorefrontFacadeStub) Counties() []string {
	counties := make([]string, 0, len(s.StationMap))
	for county := range s.StationMap {
		counties = append(counties, county)
	}
	return counties
}

// Stations returns configured stations for county.
func (s StorefrontFacadeStub) Stations(county string) []string {
	stations := s.StationMap[county]
	if stations == nil {
		return []string{}
	}
	return stations
}

// PaymentStatus delegates to StatusFn or reports a pending order.
func (s StorefrontFacadeStub) PaymentStatus(ctx context.Context, orderID int64) (*model.StatusView, error) {
	if s.StatusFn != nil {
		return s.StatusFn(ctx, orderID)
	}
	return &model.StatusView{OrderID: orderID, Status: model.OrderStatusPending, PaymentMethod: model.PaymentMethodMobileMoney}, nil
}

// CancelOrder delegates to CancelFn or reports a cancelled order.
func (s StorefrontFacadeStub) CancelOrder(ctx context.Context, orderID int64) (*model.Order, error) {
	if s.CancelFn != nil {
		return s.CancelFn(ctx, orderID)
	}
	return &model.Order{ID: orderID, Status: model.OrderStatusCancelled}, nil
}

// HandlePaymentCallback delegates to CallbackFn or accepts the delivery.
func (s StorefrontFacadeStub) HandlePaymentCallback(ctx context.Context, raw []byte) model.CallbackAck {
	if s.CallbackFn != nil {
		return s.CallbackFn(ctx, raw)
	}
	return model.AckAccepted
}

// Orders delegates to OrdersFn or returns nothing.
func (s StorefrontFacadeStub) Orders(ctx context.Context, filter model.OrderFilter) ([]model.Order, error) {
	if s.OrdersFn != nil {
		return s.OrdersFn(ctx, filter)
	}
	return nil, nil
}

// Order delegates to OrderFn or reports ErrNotFound.
func (s StorefrontFacadeStub) Order(ctx context.Context, orderID int64) (*model.Order, error) {
	if s.OrderFn != nil {
		return s.OrderFn(ctx, orderID)
	}
	return nil, domainErrors.ErrNotFound
}

// FulfillOrder delegates to FulfillFn or reports a fulfilled order.
func (s StorefrontFacadeStub) FulfillOrder(ctx context.Context, orderID int64) (*model.Order, error) {
	if s.FulfillFn != nil {
		return s.FulfillFn(ctx, orderID)
	}
	return &model.Order{ID: orderID, Status: model.OrderStatusFulfilled}, nil
}

// Health returns HealthErr.
func (s StorefrontFacadeStub) Health(context.Context) error {
	return s.HealthErr
}

