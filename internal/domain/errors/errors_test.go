package errors

import (
	stdErrors "errors"
	"fmt"
	"testing"
)

func TestSentinelErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
	}{
		{"not found", ErrNotFound},
		{"empty cart", ErrEmptyCart},
		{"invalid customer", ErrInvalidCustomer},
		{"invalid payment method", ErrInvalidPaymentMethod},
		{"invalid line item", ErrInvalidLineItem},
		{"malformed payload", ErrMalformedPayload},
		{"invalid transition", ErrInvalidTransition},
		{"invalid filter", ErrInvalidFilter},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			wrapped := fmt.Errorf("context: %w", tc.err)
			if !stdErrors.Is(wrapped, tc.err) {
				t.Fatalf("expected wrapped error to match: %v", tc.err)
			}
		})
	}
}
