package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestOrderStatusValues(t *testing.T) {
	cases := []struct {
		name    string
		got     OrderStatus
		value   string
		display string
	}{
		{"pending", OrderStatusPending, "pending", "Pending"},
		{"paid", OrderStatusPaid, "paid", "Paid"},
		{"failed", OrderStatusFailed, "failed", "Failed"},
		{"cancelled", OrderStatusCancelled, "cancelled", "Cancelled"},
		{"timeout", OrderStatusTimeout, "timeout", "Timeout"},
		{"fulfilled", OrderStatusFulfilled, "fulfilled", "Fulfilled"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if string(tc.got) != tc.value {
				t.Fatalf("expected %s, got %s", tc.value, tc.got)
			}
			if tc.got.Display() != tc.display {
				t.Fatalf("expected display %s, got %s", tc.display, tc.got.Display())
			}
			if !tc.got.Valid() {
				t.Fatalf("expected %s to be valid", tc.got)
			}
		})
	}

	if OrderStatus("unknown").Valid() {
		t.Fatal("unknown status must not be valid")
	}
}

func TestTerminalStatuses(t *testing.T) {
	terminal := map[OrderStatus]bool{
		OrderStatusPending:   false,
		OrderStatusPaid:      true,
		OrderStatusFailed:    true,
		OrderStatusCancelled: true,
		OrderStatusTimeout:   true,
		OrderStatusFulfilled: false,
	}
	for status, want := range terminal {
		if status.Terminal() != want {
			t.Errorf("%s: expected terminal=%v", status, want)
		}
	}
}

func TestStatusForResultCode(t *testing.T) {
	cases := []struct {
		code int
		want OrderStatus
	}{
		{0, OrderStatusPaid},
		{1, OrderStatusFailed},
		{1031, OrderStatusCancelled},
		{1032, OrderStatusCancelled},
		{1037, OrderStatusTimeout},
		{2001, OrderStatusFailed},
		{-1, OrderStatusFailed},
	}

	for _, tc := range cases {
		if got := StatusForResultCode(tc.code); got != tc.want {
			t.Errorf("code %d: expected %s, got %s", tc.code, tc.want, got)
		}
	}
}

func TestCartSnapshotTotal(t *testing.T) {
	cart := CartSnapshot{Lines: []CartLine{
		{ProductName: "Black Forest", UnitPrice: decimal.NewFromInt(1000), Quantity: 1},
		{ProductName: "Cupcake", UnitPrice: decimal.NewFromInt(250), Quantity: 2},
	}}

	if !cart.Total().Equal(decimal.NewFromInt(1500)) {
		t.Fatalf("expected total 1500, got %s", cart.Total())
	}
	if cart.Empty() {
		t.Fatal("cart with units must not be empty")
	}
	if !(CartSnapshot{}).Empty() {
		t.Fatal("zero snapshot must be empty")
	}
}

func TestOrderPaymentExpired(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	initiated := now.Add(-11 * time.Minute)

	mobile := &Order{PaymentMethod: PaymentMethodMobileMoney, PaymentInitiatedAt: &initiated}
	if !mobile.PaymentExpired(now, 10*time.Minute) {
		t.Fatal("expected payment initiated 11 minutes ago to be expired")
	}
	if mobile.PaymentExpired(now, 15*time.Minute) {
		t.Fatal("expected payment within window to be live")
	}

	notDispatched := &Order{PaymentMethod: PaymentMethodMobileMoney}
	if notDispatched.PaymentExpired(now, time.Minute) {
		t.Fatal("order without dispatch must never expire")
	}

	cod := &Order{PaymentMethod: PaymentMethodCashOnDelivery, PaymentInitiatedAt: &initiated}
	if cod.PaymentExpired(now, time.Minute) {
		t.Fatal("cash on delivery orders must never expire")
	}
}
