package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Gateway result codes reported in payment callbacks.
const (
	ResultCodeSuccess           = 0
	ResultCodeInsufficientFunds = 1
	ResultCodeUserRejected      = 1031
	ResultCodeUserCancelled     = 1032
	ResultCodePINTimeout        = 1037
)

// StatusForResultCode maps a callback result code onto the order status it settles.
// Unknown non-zero codes settle as failed.
func StatusForResultCode(code int) OrderStatus {
	switch code {
	case ResultCodeSuccess:
		return OrderStatusPaid
	case ResultCodeInsufficientFunds:
		return OrderStatusFailed
	case ResultCodeUserRejected, ResultCodeUserCancelled:
		return OrderStatusCancelled
	case ResultCodePINTimeout:
		return OrderStatusTimeout
	default:
		return OrderStatusFailed
	}
}

// PaymentRequest carries what the gateway needs to prompt a customer.
type PaymentRequest struct {
	Phone       string
	Amount      decimal.Decimal
	OrderID     int64
	Description string
}

// InitiationResult is the synchronous gateway acknowledgment.
// Acknowledged is false when the gateway rejected the request.
type InitiationResult struct {
	Acknowledged        bool
	CheckoutRequestID   string
	MerchantRequestID   string
	ResponseCode        string
	ResponseDescription string
}

// PaymentCallback is the decoded asynchronous payment result.
type PaymentCallback struct {
	ResultCode        int
	ResultDescription string
	CheckoutRequestID string
	MerchantRequestID string
	ReceiptNumber     string
	Amount            *decimal.Decimal
	PhoneNumber       string
}

// PaymentEvent is published after every successful status mutation.
type PaymentEvent struct {
	OrderID       int64       `json:"order_id"`
	Status        OrderStatus `json:"status"`
	TransactionID string      `json:"transaction_id,omitempty"`
	Source        EventSource `json:"source"`
	OccurredAt    time.Time   `json:"occurred_at"`
}

// EventSource names the component that changed an order.
type EventSource string

const (
	EventSourceCheckout    EventSource = "checkout"
	EventSourceCallback    EventSource = "callback"
	EventSourceCancel      EventSource = "cancel"
	EventSourceSweep       EventSource = "sweep"
	EventSourceStatusQuery EventSource = "status_query"
	EventSourceFulfilment  EventSource = "fulfilment"
)

// CallbackAck is returned to the gateway for every callback delivery.
type CallbackAck struct {
	ResultCode int    `json:"ResultCode"`
	ResultDesc string `json:"ResultDesc"`
}

var (
	AckAccepted    = CallbackAck{ResultCode: 0, ResultDesc: "Success"}
	AckInvalidJSON = CallbackAck{ResultCode: 1, ResultDesc: "Failed - Invalid JSON"}
)
