package txn

import (
	"context"
	"fmt"
	"time"

	"equipment-manager/core/store"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"
)

// Unit is a unit of work: it receives the current snapshot (a private copy)
// and returns the snapshot to commit plus a result for the caller.
// Returning a nil snapshot commits nothing.
type Unit[R any] func(s *store.Snapshot) (*store.Snapshot, R, error)

// Coordinator serializes every read-modify-write cycle against a store.
// Units never run concurrently, whatever records they touch, and waiting
// callers are admitted in arrival order.
type Coordinator struct {
	store  store.Store
	logger *zap.Logger
	sem    *semaphore.Weighted
	reads  singleflight.Group
}

// New creates a coordinator over s.
func New(s store.Store, logger *zap.Logger) *Coordinator {
	return &Coordinator{
		store:  s,
		logger: logger,
		sem:    semaphore.NewWeighted(1),
	}
}

// Run executes unit with exclusive access to the store. The snapshot the
// unit returns is validated and saved before access is released. If the
// unit fails nothing is saved.
//
// ctx bounds only the wait for access; a unit that has started runs to
// completion.
func Run[R any](ctx context.Context, c *Coordinator, op string, unit Unit[R]) (R, error) {
	var zero R

	if err := c.sem.Acquire(ctx, 1); err != nil {
		return zero, fmt.Errorf("%s: waiting for store: %w", op, err)
	}
	defer c.sem.Release(1)

	start := time.Now()

	current, err := c.store.Load()
	if err != nil {
		c.logger.Error("Transaction load failed", zap.String("op", op), zap.Error(err))
		return zero, err
	}

	next, result, err := unit(current)
	if err != nil {
		c.logger.Debug("Transaction aborted", zap.String("op", op), zap.Error(err))
		return zero, err
	}
	if next == nil {
		return result, nil
	}

	if err := next.Validate(); err != nil {
		c.logger.Debug("Transaction rejected", zap.String("op", op), zap.Error(err))
		return zero, err
	}

	if err := c.store.Save(next); err != nil {
		c.logger.Error("Transaction commit failed", zap.String("op", op), zap.Error(err))
		return zero, err
	}
	// A load in flight may predate the save; readers arriving from now on
	// must not join it.
	c.reads.Forget("load")

	c.logger.Debug("Transaction committed",
		zap.String("op", op),
		zap.Int("assets", len(next.Assets)),
		zap.Duration("took", time.Since(start)),
	)
	return result, nil
}

// Snapshot returns the most recently committed snapshot without taking
// exclusive access. Concurrent callers share one disk read; each receives
// its own copy. A read that starts after Run returns sees that commit.
func (c *Coordinator) Snapshot(ctx context.Context) (*store.Snapshot, error) {
	ch := c.reads.DoChan("load", func() (interface{}, error) {
		return c.store.Load()
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*store.Snapshot).Clone(), nil
	}
}
