package errors

import "errors"

var (
	ErrNotFound             = errors.New("not found")
	ErrEmptyCart            = errors.New("cart is empty")
	ErrInvalidCustomer      = errors.New("invalid customer details")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	ErrInvalidLineItem      = errors.New("invalid line item")
	ErrMalformedPayload     = errors.New("malformed payload")
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrInvalidFilter        = errors.New("invalid order filter")
)
