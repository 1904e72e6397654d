package dto

// PaymentStatusResponse is polled by the storefront while a payment is pending.
type PaymentStatusResponse struct {
	OrderID       int64  `json:"orderId"`
	Status        string `json:"status"`
	StatusDisplay string `json:"statusDisplay"`
	TransactionID string `json:"transactionId"`
	PaymentMethod string `json:"paymentMethod"`
	IsExpired     bool   `json:"isExpired"`
}

// CancelResponse reports the outcome of a cancel request.
type CancelResponse struct {
	Success bool   `json:"success"`
	Status  string `json:"status"`
}

// ErrorResponse carries a short error description.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse reports service health.
type HealthResponse struct {
	Status string `json:"status"`
}
