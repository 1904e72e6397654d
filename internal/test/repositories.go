package test

import (
	"context"
	"sort"
	"sync"
	"time"

	domainErrors "github.com/polkiloo/cakeshop-checkout/internal/domain/errors"
	"github.com/polkiloo/cakeshop-checkout/internal/domain/model"
	"github.com/polkiloo/cakeshop-checkout/internal/domain/repository"
)

// OrderRepositoryStub keeps orders in memory and applies the same
// compare-and-set rules as the PostgreSQL store.
type OrderRepositoryStub struct {
	mu     sync.Mutex
	orders map[int64]*model.Order
	next   int64

	CreateErr     error
	GetErr        error
	FindErr       error
	MarkErr       error
	AttachErr     error
	TransitionErr error
	ExpireErr     error
	ExpireErrFor  map[int64]error
	ListErr       error
	Now           func() time.Time

	Transitions []OrderTransition
}

// OrderTransition records a successful status write.
type OrderTransition struct {
	OrderID       int64
	Status        model.OrderStatus
	TransactionID string
}

// NewOrderRepositoryStub constructs an empty store.
func NewOrderRepositoryStub() *OrderRepositoryStub {
	return &OrderRepositoryStub{orders: make(map[int64]*model.Order), next: 1}
}

var _ repository.OrderRepository = (*OrderRepositoryStub)(nil)

func (s *OrderRepositoryStub) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func cloneOrder(o *model.Order) *model.Order {
	c := *o
	if o.PaymentInitiatedAt != nil {
		at := *o.PaymentInitiatedAt
		c.PaymentInitiatedAt = &at
	}
	c.Items = append([]model.OrderItem(nil), o.Items...)
	return &c
}

// Put stores order as is, assigning an id when it has none.
func (s *OrderRepositoryStub) Put(order model.Order) *model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.orders == nil {
		s.orders = make(map[int64]*model.Order)
	}
	if order.ID == 0 {
		if s.next == 0 {
			s.next = 1
		}
		order.ID = s.next
	}
	if order.ID >= s.next {
		s.next = order.ID + 1
	}
	s.orders[order.ID] = cloneOrder(&order)
	return cloneOrder(&order)
}

// Snapshot returns a copy of the stored order or nil.
func (s *OrderRepositoryStub) Snapshot(id int64) *model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o, ok := s.orders[id]; ok {
		return cloneOrder(o)
	}
	return nil
}

// Create stores the order with its items.
func (s *OrderRepositoryStub) Create(ctx context.Context, order *model.Order) (*model.Order, error) {
	if s.CreateErr != nil {
		return nil, s.CreateErr
	}
	stored := cloneOrder(order)
	now := s.now()
	stored.ID = 0
	stored.CreatedAt, stored.UpdatedAt = now, now
	created := s.Put(*stored)

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.orders[created.ID].Items {
		s.orders[created.ID].Items[i].ID = int64(i + 1)
		s.orders[created.ID].Items[i].OrderID = created.ID
	}
	return cloneOrder(s.orders[created.ID]), nil
}

// GetByID returns an order without items.
func (s *OrderRepositoryStub) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	if s.GetErr != nil {
		return nil, s.GetErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	c := cloneOrder(o)
	c.Items = nil
	return c, nil
}

// Items returns the stored items of an order.
func (s *OrderRepositoryStub) Items(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	if s.GetErr != nil {
		return nil, s.GetErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok {
		return []model.OrderItem{}, nil
	}
	return append([]model.OrderItem{}, o.Items...), nil
}

func (s *OrderRepositoryStub) find(match func(*model.Order) bool) (*model.Order, error) {
	if s.FindErr != nil {
		return nil, s.FindErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.orders {
		if match(o) {
			return cloneOrder(o), nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

// FindByCheckoutRequestID matches the gateway correlation id.
func (s *OrderRepositoryStub) FindByCheckoutRequestID(ctx context.Context, id string) (*model.Order, error) {
	if id == "" {
		return nil, domainErrors.ErrNotFound
	}
	return s.find(func(o *model.Order) bool { return o.CheckoutRequestID == id })
}

// FindByMerchantRequestID matches the secondary gateway id.
func (s *OrderRepositoryStub) FindByMerchantRequestID(ctx context.Context, id string) (*model.Order, error) {
	if id == "" {
		return nil, domainErrors.ErrNotFound
	}
	return s.find(func(o *model.Order) bool { return o.MerchantRequestID == id })
}

// MarkPaymentInitiated sets the initiation time once.
func (s *OrderRepositoryStub) MarkPaymentInitiated(ctx context.Context, id int64, at time.Time) (bool, error) {
	if s.MarkErr != nil {
		return false, s.MarkErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok || o.PaymentInitiatedAt != nil || o.Status != model.OrderStatusPending {
		return false, nil
	}
	o.PaymentInitiatedAt = &at
	return true, nil
}

// AttachCheckoutRequest stores gateway correlation ids.
func (s *OrderRepositoryStub) AttachCheckoutRequest(ctx context.Context, id int64, checkoutRequestID, merchantRequestID string) error {
	if s.AttachErr != nil {
		return s.AttachErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return domainErrors.ErrNotFound
	}
	o.CheckoutRequestID = checkoutRequestID
	o.MerchantRequestID = merchantRequestID
	return nil
}

// TransitionFromPending moves a pending order to a terminal status.
func (s *OrderRepositoryStub) TransitionFromPending(ctx context.Context, id int64, to model.OrderStatus, transactionID string) (bool, error) {
	if !to.Terminal() {
		return false, domainErrors.ErrInvalidTransition
	}
	if s.TransitionErr != nil {
		return false, s.TransitionErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok || o.Status != model.OrderStatusPending {
		return false, nil
	}
	o.Status = to
	if transactionID != "" {
		o.TransactionID = transactionID
	}
	s.Transitions = append(s.Transitions, OrderTransition{OrderID: id, Status: to, TransactionID: transactionID})
	return true, nil
}

// ExpireIfDue moves a pending mobile money order initiated before cutoff to timeout.
func (s *OrderRepositoryStub) ExpireIfDue(ctx context.Context, id int64, initiatedBefore time.Time) (bool, error) {
	if s.ExpireErr != nil {
		return false, s.ExpireErr
	}
	if err, ok := s.ExpireErrFor[id]; ok {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok || !expirable(o, initiatedBefore) {
		return false, nil
	}
	o.Status = model.OrderStatusTimeout
	s.Transitions = append(s.Transitions, OrderTransition{OrderID: id, Status: model.OrderStatusTimeout})
	return true, nil
}

func expirable(o *model.Order, initiatedBefore time.Time) bool {
	return o.Status == model.OrderStatusPending &&
		o.PaymentMethod == model.PaymentMethodMobileMoney &&
		o.PaymentInitiatedAt != nil &&
		o.PaymentInitiatedAt.Before(initiatedBefore)
}

// ListExpiredCandidates returns expirable orders, oldest initiation first.
func (s *OrderRepositoryStub) ListExpiredCandidates(ctx context.Context, initiatedBefore time.Time, limit int) ([]model.Order, error) {
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Order
	for _, o := range s.orders {
		if expirable(o, initiatedBefore) {
			out = append(out, *cloneOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].PaymentInitiatedAt.Before(*out[j].PaymentInitiatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// MarkFulfilled moves a decided order or a pending cash on delivery order to fulfilled.
func (s *OrderRepositoryStub) MarkFulfilled(ctx context.Context, id int64) (bool, error) {
	if s.TransitionErr != nil {
		return false, s.TransitionErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return false, nil
	}
	cod := o.Status == model.OrderStatusPending && o.PaymentMethod == model.PaymentMethodCashOnDelivery
	if !o.Status.Terminal() && !cod {
		return false, nil
	}
	o.Status = model.OrderStatusFulfilled
	s.Transitions = append(s.Transitions, OrderTransition{OrderID: id, Status: model.OrderStatusFulfilled})
	return true, nil
}

// List filters stored orders, newest id first.
func (s *OrderRepositoryStub) List(ctx context.Context, filter model.OrderFilter) ([]model.Order, error) {
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Order{}
	for _, o := range s.orders {
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		if filter.PaymentMethod != "" && o.PaymentMethod != filter.PaymentMethod {
			continue
		}
		c := cloneOrder(o)
		c.Items = nil
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// TransitionCount returns how many status writes touched id.
func (s *OrderRepositoryStub) TransitionCount(id int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, tr := range s.Transitions {
		if tr.OrderID == id {
			n++
		}
	}
	return n
}
