package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/cakeshop-checkout/internal/adapter/mpesa"
	"github.com/polkiloo/cakeshop-checkout/internal/config"
	domainErrors "github.com/polkiloo/cakeshop-checkout/internal/domain/errors"
	"github.com/polkiloo/cakeshop-checkout/internal/domain/model"
	testhelpers "github.com/polkiloo/cakeshop-checkout/internal/test"
	"github.com/polkiloo/cakeshop-checkout/internal/usecase"
)

type healthStub struct{ err error }

func (h healthStub) HealthCheck(context.Context) error { return h.err }

type callbackDecoder struct{}

func (callbackDecoder) DecodeCallback(raw []byte) (*model.PaymentCallback, error) {
	return mpesa.DecodeCallback(raw)
}

type facadeFixture struct {
	facade    *CheckoutFacade
	orders    *testhelpers.OrderRepositoryStub
	gateway   *testhelpers.GatewayStub
	publisher *testhelpers.PublisherStub
}

func newFacade(health error) facadeFixture {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	cfg := &config.Config{Sweep: config.Sweep{PaymentExpiry: 10 * time.Minute, BatchSize: 10}}
	orders := testhelpers.NewOrderRepositoryStub()
	gateway := &testhelpers.GatewayStub{}
	publisher := &testhelpers.PublisherStub{}

	facade := NewCheckoutFacade(
		usecase.NewCheckoutUseCase(orders, gateway, publisher, cfg, logger),
		usecase.NewCallbackUseCase(orders, callbackDecoder{}, publisher, logger),
		usecase.NewSweepUseCase(orders, publisher, cfg, logger),
		usecase.NewStationDirectory(),
		healthStub{err: health},
	)
	return facadeFixture{facade: facade, orders: orders, gateway: gateway, publisher: publisher}
}

func checkoutInput(method model.PaymentMethod) usecase.CheckoutInput {
	return usecase.CheckoutInput{
		Customer: model.Customer{
			FirstName:     "Amina",
			LastName:      "Otieno",
			Phone:         "0712345678",
			Email:         "amina@example.com",
			County:        "Nairobi",
			PickupStation: "Westlands",
		},
		PaymentMethod: method,
		Cart: model.CartSnapshot{Lines: []model.CartLine{
			{ProductName: "Red Velvet", Size: "1kg", UnitPrice: decimal.NewFromInt(2000), Quantity: 1},
		}},
	}
}

func TestCheckoutFacadeMobileMoneyRoundTrip(t *testing.T) {
	f := newFacade(nil)
	f.gateway.Result = &model.InitiationResult{Acknowledged: true, CheckoutRequestID: "ws_CO_1", MerchantRequestID: "mr_1", ResponseCode: "0"}
	ctx := context.Background()

	result, err := f.facade.Checkout(ctx, checkoutInput(model.PaymentMethodMobileMoney))
	if err != nil {
		t.Fatalf("checkout returned error: %v", err)
	}
	if result.PaymentFailed || result.Order.CheckoutRequestID != "ws_CO_1" {
		t.Fatalf("unexpected checkout result: %+v", result)
	}

	view, err := f.facade.PaymentStatus(ctx, result.Order.ID)
	if err != nil {
		t.Fatalf("status returned error: %v", err)
	}
	if view.Status != model.OrderStatusPending || view.IsExpired {
		t.Fatalf("expected pending status, got %+v", view)
	}

	payload := fmt.Sprintf(`{"Body":{"stkCallback":{"MerchantRequestID":"mr_1","CheckoutRequestID":"ws_CO_1","ResultCode":0,
		"CallbackMetadata":{"Item":[{"Name":"Amount","Value":2000},{"Name":"MpesaReceiptNumber","Value":"%s"}]}}}}`, "RCP123")
	if ack := f.facade.HandlePaymentCallback(ctx, []byte(payload)); ack != model.AckAccepted {
		t.Fatalf("unexpected ack %+v", ack)
	}

	view, err = f.facade.PaymentStatus(ctx, result.Order.ID)
	if err != nil {
		t.Fatalf("status returned error: %v", err)
	}
	if view.Status != model.OrderStatusPaid || view.TransactionID != "RCP123" {
		t.Fatalf("expected paid status, got %+v", view)
	}

	cancelled, err := f.facade.CancelOrder(ctx, result.Order.ID)
	if err != nil {
		t.Fatalf("cancel returned error: %v", err)
	}
	if cancelled.Status != model.OrderStatusPaid {
		t.Fatalf("cancel must not override a paid order, got %s", cancelled.Status)
	}

	fulfilled, err := f.facade.FulfillOrder(ctx, result.Order.ID)
	if err != nil {
		t.Fatalf("fulfil returned error: %v", err)
	}
	if fulfilled.Status != model.OrderStatusFulfilled {
		t.Fatalf("expected fulfilled, got %s", fulfilled.Status)
	}

	order, err := f.facade.Order(ctx, result.Order.ID)
	if err != nil {
		t.Fatalf("order returned error: %v", err)
	}
	if len(order.Items) != 1 {
		t.Fatalf("expected order items, got %d", len(order.Items))
	}

	if len(f.publisher.Published()) == 0 {
		t.Fatal("expected payment events to be published")
	}
}

func TestCheckoutFacadeCashOnDelivery(t *testing.T) {
	f := newFacade(nil)
	result, err := f.facade.Checkout(context.Background(), checkoutInput(model.PaymentMethodCashOnDelivery))
	if err != nil {
		t.Fatalf("checkout returned error: %v", err)
	}
	if result.Order.Status != model.OrderStatusPending || f.gateway.RequestCount() != 0 {
		t.Fatalf("cash on delivery must not reach the gateway: %+v", result.Order)
	}

	orders, err := f.facade.Orders(context.Background(), model.OrderFilter{PaymentMethod: model.PaymentMethodCashOnDelivery})
	if err != nil {
		t.Fatalf("orders returned error: %v", err)
	}
	if len(orders) != 1 {
		t.Fatalf("expected one order, got %d", len(orders))
	}
}

func TestCheckoutFacadeSweepOperations(t *testing.T) {
	f := newFacade(nil)
	initiated := time.Now().Add(-time.Hour)
	stale := f.orders.Put(model.Order{
		PaymentMethod:      model.PaymentMethodMobileMoney,
		Status:             model.OrderStatusPending,
		Total:              decimal.NewFromInt(100),
		CheckoutRequestID:  "ws_stale",
		PaymentInitiatedAt: &initiated,
	})

	cutoff := f.facade.PaymentCutoff()
	if !cutoff.Before(time.Now()) {
		t.Fatalf("cutoff should lie in the past, got %v", cutoff)
	}

	candidates, err := f.facade.ExpiredOrders(context.Background(), cutoff, 10)
	if err != nil {
		t.Fatalf("expired orders returned error: %v", err)
	}
	if len(candidates) != 1 || candidates[0].ID != stale.ID {
		t.Fatalf("unexpected candidates %+v", candidates)
	}

	changed, err := f.facade.ExpireOrder(context.Background(), stale.ID, cutoff)
	if err != nil || !changed {
		t.Fatalf("expected order to expire, changed=%v err=%v", changed, err)
	}
	if got := f.orders.Snapshot(stale.ID).Status; got != model.OrderStatusTimeout {
		t.Fatalf("expected timeout, got %s", got)
	}
}

func TestCheckoutFacadeStationsAndHealth(t *testing.T) {
	f := newFacade(nil)
	if len(f.facade.Counties()) == 0 {
		t.Fatal("expected counties")
	}
	if len(f.facade.Stations("Nairobi")) == 0 {
		t.Fatal("expected Nairobi stations")
	}
	if len(f.facade.Stations("Atlantis")) != 0 {
		t.Fatal("unknown county must have no stations")
	}
	if err := f.facade.Health(context.Background()); err != nil {
		t.Fatalf("unexpected health error: %v", err)
	}

	down := newFacade(errors.New("db down"))
	if err := down.facade.Health(context.Background()); err == nil {
		t.Fatal("expected health error")
	}
}

func TestCheckoutFacadeNotFound(t *testing.T) {
	f := newFacade(nil)
	if _, err := f.facade.PaymentStatus(context.Background(), 404); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := f.facade.CancelOrder(context.Background(), 404); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
