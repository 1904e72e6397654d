package test

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/polkiloo/cakeshop-checkout/internal/domain/model"
)

// SweepFacadeStub mimics sweeper interactions with the application facade.
type SweepFacadeStub struct {
	Batches   [][]model.Order
	ExpiredFn func(context.Context, time.Time, int) ([]model.Order, error)
	ExpireFn  func(context.Context, int64, time.Time) (bool, error)
	Cutoff    time.Time

	mu        sync.Mutex
	expired   []int64
	listCalls atomic.Int32
}

// PaymentCutoff returns the configured cutoff.
func (s *SweepFacadeStub) PaymentCutoff() time.Time {
	return s.Cutoff
}

// ExpiredOrders returns configured batches in order, then nothing.
func (s *SweepFacadeStub) ExpiredOrders(ctx context.Context, cutoff time.Time, limit int) ([]model.Order, error) {
	if s.ExpiredFn != nil {
		return s.ExpiredFn(ctx, cutoff, limit)
	}
	call := s.listCalls.Add(1)
	if int(call) <= len(s.Batches) {
		return s.Batches[call-1], nil
	}
	return nil, nil
}

// ExpireOrder delegates to ExpireFn or records the id as expired.
func (s *SweepFacadeStub) ExpireOrder(ctx context.Context, orderID int64, cutoff time.Time) (bool, error) {
	if s.ExpireFn != nil {
		return s.ExpireFn(ctx, orderID, cutoff)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expired = append(s.expired, orderID)
	return true, nil
}

// ExpiredIDs returns a copy of ids passed to ExpireOrder.
func (s *SweepFacadeStub) ExpiredIDs() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int64(nil), s.expired...)
}

// ListCalls reports how many times ExpiredOrders was called.
func (s *SweepFacadeStub) ListCalls() int {
	return int(s.listCalls.Load())
}
