package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/polkiloo/cakeshop-checkout/internal/domain/model"
	testhelpers "github.com/polkiloo/cakeshop-checkout/internal/test"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.After(timeout)
	for !cond() {
		select {
		case <-deadline:
			t.Fatal(msg)
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestNewExpirySweeperDefaults(t *testing.T) {
	sweeper := NewExpirySweeper(&testhelpers.SweepFacadeStub{}, 0, 0, 0, discardLogger())
	if sweeper.batchSize != 1 {
		t.Fatalf("expected batch size default to 1, got %d", sweeper.batchSize)
	}
	if sweeper.workers != 1 {
		t.Fatalf("expected workers default to 1, got %d", sweeper.workers)
	}
	if sweeper.interval != time.Minute {
		t.Fatalf("expected interval default to 1m, got %v", sweeper.interval)
	}
}

func TestExpirySweeperRunsFirstPassImmediately(t *testing.T) {
	cutoff := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	facade := &testhelpers.SweepFacadeStub{
		Cutoff:  cutoff,
		Batches: [][]model.Order{{{ID: 1}, {ID: 2}, {ID: 3}}},
	}
	sweeper := NewExpirySweeper(facade, time.Hour, 10, 2, discardLogger())

	sweeper.Start(context.Background())
	waitFor(t, time.Second, func() bool { return len(facade.ExpiredIDs()) == 3 }, "timeout waiting for first sweep")
	sweeper.Stop()

	if got := sweeper.Expired(); got != 3 {
		t.Fatalf("expected 3 expired orders, got %d", got)
	}
	if facade.ListCalls() != 1 {
		t.Fatalf("expected a single pass before the first tick, got %d", facade.ListCalls())
	}
}

func TestExpirySweeperPassesCutoffAndLimit(t *testing.T) {
	cutoff := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	var gotLimit atomic.Int64
	var gotCutoff atomic.Int64
	facade := &testhelpers.SweepFacadeStub{Cutoff: cutoff}
	facade.ExpiredFn = func(_ context.Context, c time.Time, limit int) ([]model.Order, error) {
		gotLimit.Store(int64(limit))
		return []model.Order{{ID: 9}}, nil
	}
	facade.ExpireFn = func(_ context.Context, id int64, c time.Time) (bool, error) {
		gotCutoff.Store(c.Unix())
		return false, nil
	}

	sweeper := NewExpirySweeper(facade, time.Hour, 25, 1, discardLogger())
	sweeper.Start(context.Background())
	waitFor(t, time.Second, func() bool { return gotCutoff.Load() != 0 }, "timeout waiting for expire call")
	sweeper.Stop()

	if gotLimit.Load() != 25 {
		t.Fatalf("expected limit 25, got %d", gotLimit.Load())
	}
	if gotCutoff.Load() != cutoff.Unix() {
		t.Fatalf("expected the listing cutoff to be reused, got %d", gotCutoff.Load())
	}
	if sweeper.Expired() != 0 {
		t.Fatalf("lost races must not be counted, got %d", sweeper.Expired())
	}
}

func TestExpirySweeperIsolatesFailures(t *testing.T) {
	var attempts atomic.Int32
	facade := &testhelpers.SweepFacadeStub{Batches: [][]model.Order{{{ID: 1}, {ID: 2}}}}
	facade.ExpireFn = func(_ context.Context, id int64, _ time.Time) (bool, error) {
		attempts.Add(1)
		if id == 1 {
			return false, errors.New("deadlock detected")
		}
		return true, nil
	}

	sweeper := NewExpirySweeper(facade, time.Hour, 5, 1, discardLogger())
	sweeper.Start(context.Background())
	waitFor(t, time.Second, func() bool { return attempts.Load() == 2 }, "timeout waiting for both orders")
	sweeper.Stop()

	if sweeper.Expired() != 1 {
		t.Fatalf("expected one expired order, got %d", sweeper.Expired())
	}
}

func TestExpirySweeperSurvivesListingErrors(t *testing.T) {
	var calls atomic.Int32
	facade := &testhelpers.SweepFacadeStub{}
	facade.ExpiredFn = func(context.Context, time.Time, int) ([]model.Order, error) {
		if calls.Add(1) == 1 {
			return nil, errors.New("connection reset")
		}
		return []model.Order{{ID: 4}}, nil
	}

	sweeper := NewExpirySweeper(facade, 5*time.Millisecond, 1, 1, discardLogger())
	sweeper.Start(context.Background())
	waitFor(t, time.Second, func() bool { return len(facade.ExpiredIDs()) > 0 }, "sweeper did not recover after listing error")
	sweeper.Stop()
}

func TestExpirySweeperStopsOnContextCancel(t *testing.T) {
	facade := &testhelpers.SweepFacadeStub{}
	sweeper := NewExpirySweeper(facade, 5*time.Millisecond, 1, 3, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	sweeper.Start(ctx)
	waitFor(t, time.Second, func() bool { return facade.ListCalls() >= 2 }, "sweeper did not tick")
	cancel()

	done := make(chan struct{})
	go func() {
		sweeper.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after context cancellation")
	}
}
