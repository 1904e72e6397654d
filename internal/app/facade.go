package app

import (
	"context"
	"time"

	"github.com/polkiloo/cakeshop-checkout/internal/domain/model"
	"github.com/polkiloo/cakeshop-checkout/internal/usecase"
)

// HealthChecker reports whether the order store is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// CheckoutFacade is the single entry point for the HTTP layer and the sweeper.
type CheckoutFacade struct {
	checkout  *usecase.CheckoutUseCase
	callbacks *usecase.CallbackUseCase
	sweeps    *usecase.SweepUseCase
	stations  *usecase.StationDirectory
	health    HealthChecker
}

func NewCheckoutFacade(
	checkout *usecase.CheckoutUseCase,
	callbacks *usecase.CallbackUseCase,
	sweeps *usecase.SweepUseCase,
	stations *usecase.StationDirectory,
	health HealthChecker,
) *CheckoutFacade {
	return &CheckoutFacade{
		checkout:  checkout,
		callbacks: callbacks,
		sweeps:    sweeps,
		stations:  stations,
		health:    health,
	}
}

func (f *CheckoutFacade) Checkout(ctx context.Context, in usecase.CheckoutInput) (*usecase.CheckoutResult, error) {
	return f.checkout.Checkout(ctx, in)
}

func (f *CheckoutFacade) PaymentStatus(ctx context.Context, orderID int64) (*model.StatusView, error) {
	return f.checkout.Status(ctx, orderID)
}

func (f *CheckoutFacade) CancelOrder(ctx context.Context, orderID int64) (*model.Order, error) {
	return f.checkout.Cancel(ctx, orderID)
}

func (f *CheckoutFacade) HandlePaymentCallback(ctx context.Context, raw []byte) model.CallbackAck {
	return f.callbacks.Reconcile(ctx, raw)
}

func (f *CheckoutFacade) Counties() []string {
	return f.stations.Counties()
}

func (f *CheckoutFacade) Stations(county string) []string {
	return f.stations.Stations(county)
}

func (f *CheckoutFacade) Orders(ctx context.Context, filter model.OrderFilter) ([]model.Order, error) {
	return f.checkout.List(ctx, filter)
}

func (f *CheckoutFacade) Order(ctx context.Context, orderID int64) (*model.Order, error) {
	return f.checkout.Get(ctx, orderID)
}

func (f *CheckoutFacade) FulfillOrder(ctx context.Context, orderID int64) (*model.Order, error) {
	return f.checkout.Fulfill(ctx, orderID)
}

func (f *CheckoutFacade) PaymentCutoff() time.Time {
	return f.sweeps.Deadline()
}

func (f *CheckoutFacade) ExpiredOrders(ctx context.Context, cutoff time.Time, limit int) ([]model.Order, error) {
	return f.sweeps.Candidates(ctx, cutoff, limit)
}

func (f *CheckoutFacade) ExpireOrder(ctx context.Context, orderID int64, cutoff time.Time) (bool, error) {
	return f.sweeps.ExpireOne(ctx, orderID, cutoff)
}

func (f *CheckoutFacade) Health(ctx context.Context) error {
	return f.health.HealthCheck(ctx)
}
