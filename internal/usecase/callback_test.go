package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polkiloo/cakeshop-checkout/internal/adapter/mpesa"
	"github.com/polkiloo/cakeshop-checkout/internal/domain/model"
	"github.com/polkiloo/cakeshop-checkout/internal/test"
)

type decoderFunc func([]byte) (*model.PaymentCallback, error)

func (f decoderFunc) DecodeCallback(raw []byte) (*model.PaymentCallback, error) { return f(raw) }

func newCallbackUseCase(orders *test.OrderRepositoryStub, publisher *test.PublisherStub) *CallbackUseCase {
	uc := NewCallbackUseCase(orders, decoderFunc(mpesa.DecodeCallback), publisher, discardLogger())
	uc.now = func() time.Time { return fixedNow }
	return uc
}

func successPayload(checkoutID, receipt string) []byte {
	return []byte(fmt.Sprintf(`{"Body":{"stkCallback":{
		"MerchantRequestID":"mr_%[1]s","CheckoutRequestID":"%[1]s","ResultCode":0,
		"ResultDesc":"The service request is processed successfully.",
		"CallbackMetadata":{"Item":[
			{"Name":"Amount","Value":1500},
			{"Name":"MpesaReceiptNumber","Value":"%[2]s"},
			{"Name":"PhoneNumber","Value":254712345678}]}}}}`, checkoutID, receipt))
}

func resultPayload(checkoutID, merchantID string, code int) []byte {
	return []byte(fmt.Sprintf(`{"Body":{"stkCallback":{"MerchantRequestID":"%s","CheckoutRequestID":"%s","ResultCode":%d,"ResultDesc":"done"}}}`,
		merchantID, checkoutID, code))
}

func TestReconcileSuccessIsIdempotent(t *testing.T) {
	orders := test.NewOrderRepositoryStub()
	publisher := &test.PublisherStub{}
	uc := newCallbackUseCase(orders, publisher)
	order := initiatedOrder(orders, fixedNow, "ws_1")

	ack := uc.Reconcile(context.Background(), successPayload("ws_1", "ABC123"))
	assert.Equal(t, model.AckAccepted, ack)

	stored := orders.Snapshot(order.ID)
	assert.Equal(t, model.OrderStatusPaid, stored.Status)
	assert.Equal(t, "ABC123", stored.TransactionID)

	ack = uc.Reconcile(context.Background(), successPayload("ws_1", "ABC123"))
	assert.Equal(t, model.AckAccepted, ack)
	assert.Equal(t, 1, orders.TransitionCount(order.ID))

	events := publisher.Published()
	require.Len(t, events, 1)
	assert.Equal(t, model.EventSourceCallback, events[0].Source)
	assert.Equal(t, "ABC123", events[0].TransactionID)
	assert.Equal(t, fixedNow, events[0].OccurredAt)
}

func TestReconcileResultCodes(t *testing.T) {
	cases := []struct {
		code int
		want model.OrderStatus
	}{
		{1, model.OrderStatusFailed},
		{1031, model.OrderStatusCancelled},
		{1032, model.OrderStatusCancelled},
		{1037, model.OrderStatusTimeout},
		{2001, model.OrderStatusFailed},
	}

	for _, tc := range cases {
		t.Run(fmt.Sprint(tc.code), func(t *testing.T) {
			orders := test.NewOrderRepositoryStub()
			uc := newCallbackUseCase(orders, &test.PublisherStub{})
			order := initiatedOrder(orders, fixedNow, "ws_1")

			ack := uc.Reconcile(context.Background(), resultPayload("ws_1", "mr_ws_1", tc.code))
			assert.Equal(t, model.AckAccepted, ack)

			stored := orders.Snapshot(order.ID)
			assert.Equal(t, tc.want, stored.Status)
			assert.Empty(t, stored.TransactionID)
		})
	}
}

func TestReconcileFallsBackToMerchantRequestID(t *testing.T) {
	orders := test.NewOrderRepositoryStub()
	uc := newCallbackUseCase(orders, &test.PublisherStub{})
	order := initiatedOrder(orders, fixedNow, "ws_1")

	ack := uc.Reconcile(context.Background(), resultPayload("ws_unknown", "mr_ws_1", 1032))
	assert.Equal(t, model.AckAccepted, ack)
	assert.Equal(t, model.OrderStatusCancelled, orders.Snapshot(order.ID).Status)
}

func TestReconcileAbsorbsDomainProblems(t *testing.T) {
	t.Run("unknown order", func(t *testing.T) {
		orders := test.NewOrderRepositoryStub()
		uc := newCallbackUseCase(orders, &test.PublisherStub{})
		assert.Equal(t, model.AckAccepted, uc.Reconcile(context.Background(), successPayload("ws_x", "R1")))
	})

	t.Run("missing stk callback", func(t *testing.T) {
		orders := test.NewOrderRepositoryStub()
		uc := newCallbackUseCase(orders, &test.PublisherStub{})
		assert.Equal(t, model.AckAccepted, uc.Reconcile(context.Background(), []byte(`{"Body":{}}`)))
	})

	t.Run("store failure", func(t *testing.T) {
		orders := test.NewOrderRepositoryStub()
		initiatedOrder(orders, fixedNow, "ws_1")
		orders.TransitionErr = errors.New("db down")
		uc := newCallbackUseCase(orders, &test.PublisherStub{})
		assert.Equal(t, model.AckAccepted, uc.Reconcile(context.Background(), successPayload("ws_1", "R1")))
	})

	t.Run("lookup failure", func(t *testing.T) {
		orders := test.NewOrderRepositoryStub()
		orders.FindErr = errors.New("db down")
		uc := newCallbackUseCase(orders, &test.PublisherStub{})
		assert.Equal(t, model.AckAccepted, uc.Reconcile(context.Background(), successPayload("ws_1", "R1")))
	})
}

func TestReconcileMalformedPayload(t *testing.T) {
	orders := test.NewOrderRepositoryStub()
	uc := newCallbackUseCase(orders, &test.PublisherStub{})

	ack := uc.Reconcile(context.Background(), []byte(`{"Body":`))
	assert.Equal(t, model.AckInvalidJSON, ack)
	assert.Equal(t, 1, ack.ResultCode)
}

func TestReconcileTrailingDataLeavesOrderPending(t *testing.T) {
	orders := test.NewOrderRepositoryStub()
	order := initiatedOrder(orders, fixedNow, "ws_1")
	uc := newCallbackUseCase(orders, &test.PublisherStub{})

	raw := append(resultPayload("ws_1", "mr_1", 1), []byte(" garbage")...)
	ack := uc.Reconcile(context.Background(), raw)
	assert.Equal(t, model.AckInvalidJSON, ack)
	assert.Equal(t, model.OrderStatusPending, orders.Snapshot(order.ID).Status)
	assert.Zero(t, orders.TransitionCount(order.ID))
}

func TestLateCallbackAfterSweepIsIgnored(t *testing.T) {
	orders := test.NewOrderRepositoryStub()
	publisher := &test.PublisherStub{}
	order := initiatedOrder(orders, fixedNow.Add(-11*time.Minute), "ws_1")

	sweeper := newSweepUseCase(orders, publisher)
	count, err := sweeper.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	ack := newCallbackUseCase(orders, publisher).Reconcile(context.Background(), successPayload("ws_1", "ABC123"))
	assert.Equal(t, model.AckAccepted, ack)

	stored := orders.Snapshot(order.ID)
	assert.Equal(t, model.OrderStatusTimeout, stored.Status)
	assert.Empty(t, stored.TransactionID)
}

func TestConcurrentCallbacksAndSweepsWriteOnce(t *testing.T) {
	orders := test.NewOrderRepositoryStub()
	publisher := &test.PublisherStub{}
	var ids []int64
	for i := 0; i < 20; i++ {
		ids = append(ids, initiatedOrder(orders, fixedNow.Add(-11*time.Minute), fmt.Sprintf("ws_%d", i)).ID)
	}

	callbacks := newCallbackUseCase(orders, publisher)
	sweeper := newSweepUseCase(orders, publisher)

	var wg sync.WaitGroup
	for round := 0; round < 3; round++ {
		for i := range ids {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				callbacks.Reconcile(context.Background(), successPayload(fmt.Sprintf("ws_%d", i), "R"))
			}(i)
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = sweeper.Sweep(context.Background())
		}()
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, 1, orders.TransitionCount(id), "order %d", id)
		assert.True(t, orders.Snapshot(id).Status.Terminal())
	}
	assert.Len(t, publisher.Published(), len(ids))
}
