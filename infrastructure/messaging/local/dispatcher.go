package local

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"trustie-admin/application/services"
	"trustie-admin/domain/events"
	pkgerrors "trustie-admin/pkg/errors"
)

// Dispatcher runs fanout tasks on background goroutines of this process.
// Failures are dead-lettered by the fanout service itself.
type Dispatcher struct {
	fanout *services.FeedFanoutService
	sem    chan struct{}
	wg     sync.WaitGroup
	logger *zap.Logger
}

// NewDispatcher creates a dispatcher running at most concurrency tasks at once
func NewDispatcher(fanout *services.FeedFanoutService, concurrency int, logger *zap.Logger) *Dispatcher {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Dispatcher{
		fanout: fanout,
		sem:    make(chan struct{}, concurrency),
		logger: logger,
	}
}

// Dispatch implements ports.FanoutDispatcher. The task outlives the request
// that triggered it.
func (d *Dispatcher) Dispatch(ctx context.Context, task events.PostPublished) error {
	bg := context.WithoutCancel(ctx)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.sem <- struct{}{}
		defer func() { <-d.sem }()

		result, err := d.fanout.Run(bg, task)
		if err != nil {
			fields := []zap.Field{zap.String("chatID", task.ChatID), zap.Error(err)}
			if appErr := pkgerrors.GetAppError(err); appErr != nil {
				if id, ok := appErr.Details["deadLetterID"]; ok {
					fields = append(fields, zap.Any("deadLetterID", id))
				}
			}
			d.logger.Error("Feed fanout failed", fields...)
			return
		}
		d.logger.Info("Feed fanout completed",
			zap.String("chatID", task.ChatID),
			zap.Int("delivered", result.Delivered),
			zap.Int("batches", result.Batches),
		)
	}()
	return nil
}

// Wait blocks until every dispatched task has finished or ctx ends
func (d *Dispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
