package queue

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/xavierca1/lead-pipeline/internal/entity"
	"github.com/xavierca1/lead-pipeline/internal/metrics"
)

var ErrDispatcherStopped = errors.New("research dispatcher stopped")

// LocalDispatcher runs research tasks in-process for deployments without a
// broker. At most maxConcurrent tasks run at once; the rest wait.
type LocalDispatcher struct {
	base      context.Context
	processor ResearchProcessor
	sem       *semaphore.Weighted
	wg        sync.WaitGroup
	logger    *zap.Logger
}

// NewLocalDispatcher ties task lifetimes to ctx rather than to the request
// that dispatched them.
func NewLocalDispatcher(ctx context.Context, processor ResearchProcessor, maxConcurrent int64, logger *zap.Logger) *LocalDispatcher {
	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocalDispatcher{
		base:      ctx,
		processor: processor,
		sem:       semaphore.NewWeighted(maxConcurrent),
		logger:    logger.Named("local_dispatcher"),
	}
}

// Dispatch returns as soon as the task is scheduled.
func (d *LocalDispatcher) Dispatch(_ context.Context, task entity.ResearchTask) error {
	if d.base.Err() != nil {
		return ErrDispatcherStopped
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		if err := d.sem.Acquire(d.base, 1); err != nil {
			d.logger.Warn("research task dropped on shutdown", zap.String("lead_id", task.LeadID))
			metrics.RecordResearchDispatchError()
			return
		}
		defer d.sem.Release(1)

		if err := d.processor.Process(d.base, task); err != nil {
			d.logger.Error("research task failed", zap.String("lead_id", task.LeadID), zap.Error(err))
		}
	}()
	return nil
}

// Wait blocks until every dispatched task has finished.
func (d *LocalDispatcher) Wait() {
	d.wg.Wait()
}
