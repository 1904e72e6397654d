package worker

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/polkiloo/cakeshop-checkout/internal/domain/model"
)

// SweepFacade exposes the subset of application functionality required by the sweeper.
type SweepFacade interface {
	PaymentCutoff() time.Time
	ExpiredOrders(ctx context.Context, cutoff time.Time, limit int) ([]model.Order, error)
	ExpireOrder(ctx context.Context, orderID int64, cutoff time.Time) (bool, error)
}

type expiryJob struct {
	orderID int64
	cutoff  time.Time
}

// ExpirySweeper periodically moves overdue pending payments to timeout using a pool of workers.
type ExpirySweeper struct {
	facade    SweepFacade
	interval  time.Duration
	batchSize int
	workers   int
	logger    *slog.Logger

	expired atomic.Int64
	jobs    chan expiryJob
	wg      sync.WaitGroup
	cancel  context.CancelFunc
	mu      sync.Mutex
}

// NewExpirySweeper constructs the sweeper worker pool.
func NewExpirySweeper(facade SweepFacade, interval time.Duration, batchSize, workers int, logger *slog.Logger) *ExpirySweeper {
	if workers <= 0 {
		workers = 1
	}
	if batchSize <= 0 {
		batchSize = 1
	}
	if interval <= 0 {
		interval = time.Minute
	}
	return &ExpirySweeper{
		facade:    facade,
		interval:  interval,
		batchSize: batchSize,
		workers:   workers,
		logger:    logger,
		jobs:      make(chan expiryJob, batchSize),
	}
}

// Start launches background sweeping. The first pass runs immediately.
func (s *ExpirySweeper) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	for i := 0; i < s.workers; i++ {
		s.wg.Add(1)
		go s.worker(runCtx)
	}

	s.wg.Add(1)
	go s.dispatch(runCtx)
}

// Stop cancels sweeping and waits for all workers to finish.
func (s *ExpirySweeper) Stop() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()

	s.wg.Wait()
}

// Expired returns how many orders this sweeper has moved to timeout.
func (s *ExpirySweeper) Expired() int64 {
	return s.expired.Load()
}

func (s *ExpirySweeper) dispatch(ctx context.Context) {
	defer s.wg.Done()
	defer close(s.jobs)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.fetchAndDispatch(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.fetchAndDispatch(ctx)
		}
	}
}

func (s *ExpirySweeper) fetchAndDispatch(ctx context.Context) {
	cutoff := s.facade.PaymentCutoff()
	orders, err := s.facade.ExpiredOrders(ctx, cutoff, s.batchSize)
	if err != nil {
		s.logger.Error("fetch expired orders failed", slog.String("error", err.Error()))
		return
	}
	if len(orders) > 0 {
		s.logger.Debug("dispatching expired orders", slog.Int("count", len(orders)))
	}
	for _, order := range orders {
		select {
		case <-ctx.Done():
			return
		case s.jobs <- expiryJob{orderID: order.ID, cutoff: cutoff}:
		}
	}
}

func (s *ExpirySweeper) worker(ctx context.Context) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-s.jobs:
			if !ok {
				return
			}
			s.handle(ctx, job)
		}
	}
}

func (s *ExpirySweeper) handle(ctx context.Context, job expiryJob) {
	changed, err := s.facade.ExpireOrder(ctx, job.orderID, job.cutoff)
	if err != nil {
		s.logger.Error("expire order failed", slog.Int64("order_id", job.orderID), slog.String("error", err.Error()))
		return
	}
	if changed {
		s.expired.Add(1)
	}
}
