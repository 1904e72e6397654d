package dto

import "github.com/shopspring/decimal"

// CheckoutRequest describes the confirmed checkout form with the finalized cart.
type CheckoutRequest struct {
	FirstName     string            `json:"firstName"`
	LastName      string            `json:"lastName"`
	Phone         string            `json:"phone"`
	Email         string            `json:"email"`
	County        string            `json:"county"`
	PickupStation string            `json:"pickupStation"`
	PaymentMethod string            `json:"paymentMethod"`
	Description   string            `json:"description,omitempty"`
	Items         []CartItemRequest `json:"items"`
}

// CartItemRequest is one cart line as priced by the storefront.
type CartItemRequest struct {
	ProductID     *int64          `json:"productId,omitempty"`
	ProductName   string          `json:"productName"`
	Size          string          `json:"size"`
	Icing         string          `json:"icing"`
	Eggs          string          `json:"eggs"`
	CustomMessage string          `json:"message"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
	Quantity      int             `json:"quantity"`
}

// CheckoutResponse carries the created order and the message for the customer.
type CheckoutResponse struct {
	Order         OrderResponse `json:"order"`
	PaymentFailed bool          `json:"paymentFailed"`
	Message       string        `json:"message"`
}

// StationsResponse lists pickup stations for a county.
type StationsResponse struct {
	County   string   `json:"county,omitempty"`
	Stations []string `json:"stations"`
	Counties []string `json:"counties,omitempty"`
}
