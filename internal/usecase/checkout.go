package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/cakeshop-checkout/internal/config"
	domainErrors "github.com/polkiloo/cakeshop-checkout/internal/domain/errors"
	"github.com/polkiloo/cakeshop-checkout/internal/domain/model"
	"github.com/polkiloo/cakeshop-checkout/internal/domain/repository"
)

const (
	MessageMobileMoneyInitiated = "M-Pesa payment initiated. Check your phone to complete the payment."
	MessageMobileMoneyFailed    = "We could not start the M-Pesa payment. Please try again or choose another payment method."
	MessageCashOnDelivery       = "Order placed successfully! Pay when you pick up."
)

// CheckoutInput is everything the storefront hands over when the customer confirms.
type CheckoutInput struct {
	Customer      model.Customer
	PaymentMethod model.PaymentMethod
	Cart          model.CartSnapshot
	Description   string
}

// CheckoutResult is the created order plus what to tell the customer.
type CheckoutResult struct {
	Order         *model.Order
	PaymentFailed bool
	Message       string
}

// CheckoutUseCase drives an order from creation through payment initiation.
type CheckoutUseCase struct {
	orders  repository.OrderRepository
	gateway PaymentGateway
	events  emitter
	window  time.Duration
	logger  *slog.Logger
	now     func() time.Time
}

// NewCheckoutUseCase constructs CheckoutUseCase.
func NewCheckoutUseCase(orders repository.OrderRepository, gateway PaymentGateway, publisher EventPublisher, cfg *config.Config, logger *slog.Logger) *CheckoutUseCase {
	return &CheckoutUseCase{
		orders:  orders,
		gateway: gateway,
		events:  emitter{publisher: publisher, logger: logger},
		window:  cfg.Sweep.PaymentExpiry,
		logger:  logger,
		now:     time.Now,
	}
}

// Checkout persists the order with its items and, for mobile money, prompts the customer's phone.
// Gateway failures never surface as errors: the order is marked failed and PaymentFailed is set.
func (u *CheckoutUseCase) Checkout(ctx context.Context, in CheckoutInput) (*CheckoutResult, error) {
	if in.Cart.Empty() {
		return nil, domainErrors.ErrEmptyCart
	}
	if !in.PaymentMethod.Valid() {
		return nil, fmt.Errorf("%w: %q", domainErrors.ErrInvalidPaymentMethod, in.PaymentMethod)
	}
	customer := NormalizeCustomer(in.Customer)
	if err := ValidateCustomer(customer); err != nil {
		return nil, err
	}
	if err := ValidateLines(in.Cart.Lines); err != nil {
		return nil, err
	}

	order, err := u.orders.Create(ctx, buildOrder(customer, in.PaymentMethod, in.Cart))
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	u.logger.Info("order created",
		slog.Int64("order_id", order.ID),
		slog.String("payment_method", string(order.PaymentMethod)),
		slog.String("total", order.Total.StringFixed(2)),
	)

	if order.PaymentMethod == model.PaymentMethodCashOnDelivery {
		return &CheckoutResult{Order: order, Message: MessageCashOnDelivery}, nil
	}

	return u.initiate(ctx, order, in.Description)
}

func buildOrder(customer model.Customer, method model.PaymentMethod, cart model.CartSnapshot) *model.Order {
	order := &model.Order{
		Customer:      customer,
		PaymentMethod: method,
		Status:        model.OrderStatusPending,
		Total:         decimal.Zero,
	}
	for _, line := range cart.Lines {
		lineTotal := line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
		order.Items = append(order.Items, model.OrderItem{
			ProductID:     line.ProductID,
			ProductName:   line.ProductName,
			Size:          line.Size,
			Icing:         line.Icing,
			Eggs:          line.Eggs,
			CustomMessage: line.CustomMessage,
			UnitPrice:     line.UnitPrice,
			Quantity:      line.Quantity,
			TotalPrice:    lineTotal,
		})
		order.Total = order.Total.Add(lineTotal)
	}
	return order
}

func (u *CheckoutUseCase) initiate(ctx context.Context, order *model.Order, description string) (*CheckoutResult, error) {
	initiatedAt := u.now()
	marked, err := u.orders.MarkPaymentInitiated(ctx, order.ID, initiatedAt)
	if err != nil {
		return nil, fmt.Errorf("mark payment initiated: %w", err)
	}
	if !marked {
		return nil, fmt.Errorf("order %d: payment already initiated: %w", order.ID, domainErrors.ErrInvalidTransition)
	}
	order.PaymentInitiatedAt = &initiatedAt

	result, err := u.gateway.InitiatePayment(ctx, model.PaymentRequest{
		Phone:       order.Customer.Phone,
		Amount:      order.Total,
		OrderID:     order.ID,
		Description: description,
	})
	switch {
	case err != nil:
		u.logger.Error("payment initiation failed",
			slog.Int64("order_id", order.ID),
			slog.Any("error", err),
		)
		return u.fail(ctx, order)
	case !result.Acknowledged:
		u.logger.Warn("payment initiation rejected",
			slog.Int64("order_id", order.ID),
			slog.String("response_code", result.ResponseCode),
			slog.String("response_description", result.ResponseDescription),
		)
		return u.fail(ctx, order)
	}

	// A callback landing before this write finds no order and is logged as
	// "no order matches payment callback"; the order then times out.
	if err := u.orders.AttachCheckoutRequest(ctx, order.ID, result.CheckoutRequestID, result.MerchantRequestID); err != nil {
		return nil, fmt.Errorf("attach checkout request: %w", err)
	}
	order.CheckoutRequestID = result.CheckoutRequestID
	order.MerchantRequestID = result.MerchantRequestID

	u.logger.Info("payment initiated",
		slog.Int64("order_id", order.ID),
		slog.String("checkout_request_id", result.CheckoutRequestID),
	)

	return &CheckoutResult{Order: order, Message: MessageMobileMoneyInitiated}, nil
}

func (u *CheckoutUseCase) fail(ctx context.Context, order *model.Order) (*CheckoutResult, error) {
	changed, err := u.orders.TransitionFromPending(ctx, order.ID, model.OrderStatusFailed, "")
	if err != nil {
		return nil, fmt.Errorf("mark order failed: %w", err)
	}
	if changed {
		order.Status = model.OrderStatusFailed
		u.events.emit(ctx, order.ID, order.Status, "", model.EventSourceCheckout, u.now())
	} else if current, err := u.orders.GetByID(ctx, order.ID); err == nil {
		order.Status = current.Status
	}
	return &CheckoutResult{Order: order, PaymentFailed: true, Message: MessageMobileMoneyFailed}, nil
}

// Status returns what a polling client needs. A pending mobile money order past its
// deadline is moved to timeout before the view is built.
func (u *CheckoutUseCase) Status(ctx context.Context, orderID int64) (*model.StatusView, error) {
	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	now := u.now()
	if order.Status == model.OrderStatusPending && order.PaymentExpired(now, u.window) {
		if order, err = u.expireLazily(ctx, order, now); err != nil {
			return nil, err
		}
	}

	return &model.StatusView{
		OrderID:       order.ID,
		Status:        order.Status,
		TransactionID: order.TransactionID,
		PaymentMethod: order.PaymentMethod,
		IsExpired:     order.Status == model.OrderStatusTimeout,
	}, nil
}

func (u *CheckoutUseCase) expireLazily(ctx context.Context, order *model.Order, now time.Time) (*model.Order, error) {
	changed, err := u.orders.ExpireIfDue(ctx, order.ID, now.Add(-u.window))
	if err != nil {
		return nil, fmt.Errorf("expire order: %w", err)
	}
	if changed {
		u.logger.Info("order payment expired on status query", slog.Int64("order_id", order.ID))
		u.events.emit(ctx, order.ID, model.OrderStatusTimeout, "", model.EventSourceStatusQuery, now)
		order.Status = model.OrderStatusTimeout
		return order, nil
	}

	u.logger.Debug("lazy expiry lost race", slog.Int64("order_id", order.ID))
	return u.orders.GetByID(ctx, order.ID)
}

// Cancel moves a pending order to cancelled. Orders in any other state are returned unchanged.
func (u *CheckoutUseCase) Cancel(ctx context.Context, orderID int64) (*model.Order, error) {
	changed, err := u.orders.TransitionFromPending(ctx, orderID, model.OrderStatusCancelled, "")
	if err != nil {
		return nil, fmt.Errorf("cancel order: %w", err)
	}

	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if changed {
		u.logger.Info("order cancelled", slog.Int64("order_id", orderID))
		u.events.emit(ctx, orderID, model.OrderStatusCancelled, "", model.EventSourceCancel, u.now())
	}
	return order, nil
}

// Get returns an order with its items.
func (u *CheckoutUseCase) Get(ctx context.Context, orderID int64) (*model.Order, error) {
	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	items, err := u.orders.Items(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("load items: %w", err)
	}
	order.Items = items
	return order, nil
}

// List returns orders for the admin view, newest first.
func (u *CheckoutUseCase) List(ctx context.Context, filter model.OrderFilter) ([]model.Order, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", domainErrors.ErrInvalidFilter, filter.Status)
	}
	if filter.PaymentMethod != "" && !filter.PaymentMethod.Valid() {
		return nil, fmt.Errorf("%w: unknown payment method %q", domainErrors.ErrInvalidFilter, filter.PaymentMethod)
	}
	return u.orders.List(ctx, filter)
}

// Fulfill marks a decided order, or a cash on delivery order, as fulfilled.
func (u *CheckoutUseCase) Fulfill(ctx context.Context, orderID int64) (*model.Order, error) {
	changed, err := u.orders.MarkFulfilled(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("fulfil order: %w", err)
	}

	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !changed {
		if order.Status == model.OrderStatusFulfilled {
			return order, nil
		}
		return nil, fmt.Errorf("order %d is %s: %w", orderID, order.Status, domainErrors.ErrInvalidTransition)
	}

	u.logger.Info("order fulfilled", slog.Int64("order_id", orderID))
	u.events.emit(ctx, orderID, model.OrderStatusFulfilled, order.TransactionID, model.EventSourceFulfilment, u.now())
	return order, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, domainErrors.ErrNotFound)
}
