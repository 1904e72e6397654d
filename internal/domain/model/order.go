package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus describes the payment lifecycle of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusFailed    OrderStatus = "failed"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusTimeout   OrderStatus = "timeout"
	OrderStatusFulfilled OrderStatus = "fulfilled"
)

var statusDisplay = map[OrderStatus]string{
	OrderStatusPending:   "Pending",
	OrderStatusPaid:      "Paid",
	OrderStatusFailed:    "Failed",
	OrderStatusCancelled: "Cancelled",
	OrderStatusTimeout:   "Timeout",
	OrderStatusFulfilled: "Fulfilled",
}

// Display returns the human readable label shown to customers.
func (s OrderStatus) Display() string {
	if label, ok := statusDisplay[s]; ok {
		return label
	}
	return string(s)
}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	_, ok := statusDisplay[s]
	return ok
}

// Terminal reports whether the payment outcome has been decided.
func (s OrderStatus) Terminal() bool {
	switch s {
	case OrderStatusPaid, OrderStatusFailed, OrderStatusCancelled, OrderStatusTimeout:
		return true
	}
	return false
}

// PaymentMethod is fixed at checkout.
type PaymentMethod string

const (
	PaymentMethodMobileMoney    PaymentMethod = "M-Pesa"
	PaymentMethodCashOnDelivery PaymentMethod = "COD"
)

// Valid reports whether m is a supported payment method.
func (m PaymentMethod) Valid() bool {
	return m == PaymentMethodMobileMoney || m == PaymentMethodCashOnDelivery
}

// Customer holds contact and pickup details captured at checkout.
type Customer struct {
	FirstName     string `validate:"required,max=100"`
	LastName      string `validate:"required,max=100"`
	Phone         string `validate:"required,max=15"`
	Email         string `validate:"required,email"`
	County        string `validate:"required,max=100"`
	PickupStation string `validate:"required,max=200"`
}

// Order is one checkout transaction.
type Order struct {
	ID                 int64
	Customer           Customer
	PaymentMethod      PaymentMethod
	Total              decimal.Decimal
	Status             OrderStatus
	CheckoutRequestID  string
	MerchantRequestID  string
	TransactionID      string
	PaymentInitiatedAt *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
	Items              []OrderItem
}

// PaymentDeadline returns the moment a pending mobile money payment expires.
// The second value is false when no payment has been dispatched.
func (o *Order) PaymentDeadline(window time.Duration) (time.Time, bool) {
	if o.PaymentMethod != PaymentMethodMobileMoney || o.PaymentInitiatedAt == nil {
		return time.Time{}, false
	}
	return o.PaymentInitiatedAt.Add(window), true
}

// PaymentExpired reports whether a dispatched payment is past its deadline at now.
func (o *Order) PaymentExpired(now time.Time, window time.Duration) bool {
	deadline, ok := o.PaymentDeadline(window)
	return ok && now.After(deadline)
}

// OrderItem is a priced line copied from the cart at checkout.
type OrderItem struct {
	ID            int64
	OrderID       int64
	ProductID     *int64
	ProductName   string
	Size          string
	Icing         string
	Eggs          string
	CustomMessage string
	UnitPrice     decimal.Decimal
	Quantity      int
	TotalPrice    decimal.Decimal
}

// OrderFilter narrows admin order listings.
type OrderFilter struct {
	Status        OrderStatus
	PaymentMethod PaymentMethod
	Limit         int
}

// StatusView is what a polling client sees.
type StatusView struct {
	OrderID       int64
	Status        OrderStatus
	TransactionID string
	PaymentMethod PaymentMethod
	IsExpired     bool
}
