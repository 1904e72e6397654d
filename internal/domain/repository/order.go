package repository

import (
	"context"
	"time"

	"github.com/polkiloo/cakeshop-checkout/internal/domain/model"
)

// OrderRepository describes persistence operations with orders.
//
// Every status mutation is a compare-and-set on the current status. Methods
// returning a bool report whether a row was changed; false means another
// writer got there first and is not an error.
type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) (*model.Order, error)
	GetByID(ctx context.Context, id int64) (*model.Order, error)
	Items(ctx context.Context, orderID int64) ([]model.OrderItem, error)
	FindByCheckoutRequestID(ctx context.Context, checkoutRequestID string) (*model.Order, error)
	FindByMerchantRequestID(ctx context.Context, merchantRequestID string) (*model.Order, error)
	MarkPaymentInitiated(ctx context.Context, id int64, at time.Time) (bool, error)
	AttachCheckoutRequest(ctx context.Context, id int64, checkoutRequestID, merchantRequestID string) error
	TransitionFromPending(ctx context.Context, id int64, to model.OrderStatus, transactionID string) (bool, error)
	ExpireIfDue(ctx context.Context, id int64, initiatedBefore time.Time) (bool, error)
	ListExpiredCandidates(ctx context.Context, initiatedBefore time.Time, limit int) ([]model.Order, error)
	MarkFulfilled(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context, filter model.OrderFilter) ([]model.Order, error)
}
