package test

import (
	"context"
	"sync"

	"github.com/polkiloo/cakeshop-checkout/internal/domain/model"
)

// GatewayStub records payment requests and returns a configured acknowledgment.
type GatewayStub struct {
	InitiateFn func(context.Context, model.PaymentRequest) (*model.InitiationResult, error)
	Result     *model.InitiationResult
	Err        error

	mu       sync.Mutex
	Requests []model.PaymentRequest
}

// InitiatePayment returns the override, the configured error or result, or an acknowledgment.
func (g *GatewayStub) InitiatePayment(ctx context.Context, req model.PaymentRequest) (*model.InitiationResult, error) {
	g.mu.Lock()
	g.Requests = append(g.Requests, req)
	g.mu.Unlock()

	if g.InitiateFn != nil {
		return g.InitiateFn(ctx, req)
	}
	if g.Err != nil {
		return nil, g.Err
	}
	if g.Result != nil {
		return g.Result, nil
	}
	return &model.InitiationResult{
		Acknowledged:      true,
		CheckoutRequestID: "ws_" + RandomASCIIString(8, 8),
		MerchantRequestID: "mr_" + RandomASCIIString(8, 8),
		ResponseCode:      "0",
	}, nil
}

// RequestCount returns how many initiations were attempted.
func (g *GatewayStub) RequestCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.Requests)
}

// PublisherStub records payment events.
type PublisherStub struct {
	Err error

	mu     sync.Mutex
	Events []model.PaymentEvent
	closed bool
}

// Publish stores the event unless Err is set.
func (p *PublisherStub) Publish(ctx context.Context, event model.PaymentEvent) error {
	if p.Err != nil {
		return p.Err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Events = append(p.Events, event)
	return nil
}

// Close marks the publisher closed.
func (p *PublisherStub) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

// Published returns a copy of recorded events.
func (p *PublisherStub) Published() []model.PaymentEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]model.PaymentEvent(nil), p.Events...)
}

// Closed reports whether Close was called.
func (p *PublisherStub) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}
