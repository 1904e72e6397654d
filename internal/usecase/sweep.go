package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/polkiloo/cakeshop-checkout/internal/config"
	"github.com/polkiloo/cakeshop-checkout/internal/domain/model"
	"github.com/polkiloo/cakeshop-checkout/internal/domain/repository"
)

const defaultSweepBatch = 100

// SweepUseCase moves pending mobile money orders past their payment deadline to timeout.
type SweepUseCase struct {
	orders    repository.OrderRepository
	events    emitter
	window    time.Duration
	batchSize int
	logger    *slog.Logger
	now       func() time.Time
}

// NewSweepUseCase constructs SweepUseCase.
func NewSweepUseCase(orders repository.OrderRepository, publisher EventPublisher, cfg *config.Config, logger *slog.Logger) *SweepUseCase {
	batchSize := cfg.Sweep.BatchSize
	if batchSize <= 0 {
		batchSize = defaultSweepBatch
	}
	return &SweepUseCase{
		orders:    orders,
		events:    emitter{publisher: publisher, logger: logger},
		window:    cfg.Sweep.PaymentExpiry,
		batchSize: batchSize,
		logger:    logger,
		now:       time.Now,
	}
}

// Deadline returns the initiation cutoff: orders initiated before it are expired.
func (u *SweepUseCase) Deadline() time.Time {
	return u.now().Add(-u.window)
}

// Candidates lists up to limit pending orders initiated before cutoff.
func (u *SweepUseCase) Candidates(ctx context.Context, cutoff time.Time, limit int) ([]model.Order, error) {
	return u.orders.ListExpiredCandidates(ctx, cutoff, limit)
}

// ExpireOne moves a single order to timeout if it is still pending and past cutoff.
func (u *SweepUseCase) ExpireOne(ctx context.Context, orderID int64, cutoff time.Time) (bool, error) {
	changed, err := u.orders.ExpireIfDue(ctx, orderID, cutoff)
	if err != nil {
		return false, err
	}
	if !changed {
		u.logger.Debug("sweep skipped settled order", slog.Int64("order_id", orderID))
		return false, nil
	}

	u.logger.Info("order marked as timeout", slog.Int64("order_id", orderID))
	u.events.emit(ctx, orderID, model.OrderStatusTimeout, "", model.EventSourceSweep, u.now())
	return true, nil
}

// Sweep runs one full pass and returns how many orders were moved to timeout.
// A failure on one order is logged and does not stop the pass.
func (u *SweepUseCase) Sweep(ctx context.Context) (int, error) {
	cutoff := u.Deadline()
	seen := make(map[int64]struct{})
	count := 0

	for {
		batch, err := u.Candidates(ctx, cutoff, u.batchSize)
		if err != nil {
			return count, fmt.Errorf("list expired orders: %w", err)
		}

		progressed := false
		for _, order := range batch {
			if _, ok := seen[order.ID]; ok {
				continue
			}
			seen[order.ID] = struct{}{}
			progressed = true

			changed, err := u.ExpireOne(ctx, order.ID, cutoff)
			if err != nil {
				u.logger.Error("expire order", slog.Int64("order_id", order.ID), slog.Any("error", err))
				continue
			}
			if changed {
				count++
			}
		}

		if !progressed || len(batch) < u.batchSize {
			break
		}
		if err := ctx.Err(); err != nil {
			return count, err
		}
	}

	u.logger.Info("expired payments swept", slog.Int("count", count))
	return count, nil
}
