package dto

import "time"

// CustomerResponse echoes the customer details stored on an order.
type CustomerResponse struct {
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	County        string `json:"county"`
	PickupStation string `json:"pickupStation"`
}

// OrderResponse describes an order.
type OrderResponse struct {
	ID                 int64               `json:"id"`
	Status             string              `json:"status"`
	StatusDisplay      string              `json:"statusDisplay"`
	PaymentMethod      string              `json:"paymentMethod"`
	Total              string              `json:"total"`
	CheckoutRequestID  string              `json:"checkoutRequestId,omitempty"`
	TransactionID      string              `json:"transactionId,omitempty"`
	PaymentInitiatedAt *time.Time          `json:"paymentInitiatedAt,omitempty"`
	CreatedAt          time.Time           `json:"createdAt"`
	Customer           CustomerResponse    `json:"customer"`
	Items              []OrderItemResponse `json:"items,omitempty"`
}

// OrderItemResponse describes an order line.
type OrderItemResponse struct {
	ProductID     *int64 `json:"productId,omitempty"`
	ProductName   string `json:"productName"`
	Size          string `json:"size,omitempty"`
	Icing         string `json:"icing,omitempty"`
	Eggs          string `json:"eggs,omitempty"`
	CustomMessage string `json:"message,omitempty"`
	UnitPrice     string `json:"unitPrice"`
	Quantity      int    `json:"quantity"`
	TotalPrice    string `json:"totalPrice"`
}
