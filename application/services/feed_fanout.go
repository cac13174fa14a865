package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"trustie-admin/application/ports"
	"trustie-admin/domain/core/entities"
	"trustie-admin/domain/events"
	pkgerrors "trustie-admin/pkg/errors"
)

// FanoutResult summarizes one fanout run
type FanoutResult struct {
	Delivered int
	Batches   int
	Pages     int
	// ResumeCursor is where a retry should restart the scan. Empty means from
	// the beginning, or nothing left when the run succeeded.
	ResumeCursor string
}

// FeedFanoutService writes one feed pointer per subscribed user for a newly
// published chat. The user scan is paginated and writes are flushed in
// batches of at most ports.MaxBatchWrite. Batches already written stay
// written when a later one fails; pointer keys are deterministic so a replay
// rewrites identical items.
type FeedFanoutService struct {
	users      ports.UserRepository
	deadLetter ports.DeadLetterStore
	metrics    ports.FanoutMetrics
	profileSK  string
	logger     *zap.Logger
}

// NewFeedFanoutService creates the fanout service. profileSK is the primarySK
// that marks a subscribed user.
func NewFeedFanoutService(
	users ports.UserRepository,
	deadLetter ports.DeadLetterStore,
	metrics ports.FanoutMetrics,
	profileSK string,
	logger *zap.Logger,
) *FeedFanoutService {
	return &FeedFanoutService{
		users:      users,
		deadLetter: deadLetter,
		metrics:    metrics,
		profileSK:  profileSK,
		logger:     logger,
	}
}

// Run delivers task from the start of the user scan
func (s *FeedFanoutService) Run(ctx context.Context, task events.PostPublished) (*FanoutResult, error) {
	return s.run(ctx, task, "")
}

// Replay retries a dead letter from its recorded cursor and removes it on
// success
func (s *FeedFanoutService) Replay(ctx context.Context, letter ports.DeadLetter) (*FanoutResult, error) {
	result, err := s.run(ctx, letter.Task, letter.Cursor)
	if err != nil {
		return result, err
	}
	if err := s.deadLetter.Delete(ctx, letter.ID); err != nil {
		s.logger.Warn("Replayed fanout but failed to delete dead letter",
			zap.String("deadLetterID", letter.ID),
			zap.Error(err),
		)
	}
	return result, nil
}

func (s *FeedFanoutService) run(ctx context.Context, task events.PostPublished, start string) (*FanoutResult, error) {
	if task.ChatID == "" || task.AuthorID == "" || task.FeedDate == "" {
		return nil, pkgerrors.NewValidationError("fanout task requires chat id, author id and feed date")
	}

	logger := s.logger.With(
		zap.String("chatID", task.ChatID),
		zap.String("authorID", task.AuthorID),
	)
	logger.Info("Starting feed fanout", zap.Bool("resumed", start != ""))

	result := &FanoutResult{}
	buffer := make([]entities.FeedPointer, 0, ports.MaxBatchWrite)
	cursor := start
	resumeFrom := start

	flush := func() error {
		if len(buffer) == 0 {
			return nil
		}
		if err := s.users.PutFeedPointers(ctx, buffer); err != nil {
			return err
		}
		result.Batches++
		result.Delivered += len(buffer)
		buffer = buffer[:0]
		return nil
	}

	for {
		if err := ctx.Err(); err != nil {
			return s.fail(ctx, logger, task, result, resumeFrom, err)
		}

		page, err := s.users.ScanProfiles(ctx, s.profileSK, cursor)
		if err != nil {
			return s.fail(ctx, logger, task, result, resumeFrom, fmt.Errorf("scan users: %w", err))
		}
		result.Pages++
		if len(buffer) == 0 {
			resumeFrom = cursor
		}

		for _, userID := range page.UserIDs {
			buffer = append(buffer, entities.NewFeedPointer(userID, task.FeedDate, task.ChatID, task.AuthorID))
			if len(buffer) < ports.MaxBatchWrite {
				continue
			}
			if err := flush(); err != nil {
				return s.fail(ctx, logger, task, result, resumeFrom, fmt.Errorf("write feed batch: %w", err))
			}
			// the rest of this page is still pending
			resumeFrom = cursor
		}

		if page.Next == "" {
			break
		}
		cursor = page.Next
	}

	if err := flush(); err != nil {
		return s.fail(ctx, logger, task, result, resumeFrom, fmt.Errorf("write feed batch: %w", err))
	}

	result.ResumeCursor = ""
	s.record(ctx, result, nil)
	logger.Info("Feed fanout completed",
		zap.Int("delivered", result.Delivered),
		zap.Int("batches", result.Batches),
		zap.Int("pages", result.Pages),
	)
	return result, nil
}

func (s *FeedFanoutService) fail(
	ctx context.Context,
	logger *zap.Logger,
	task events.PostPublished,
	result *FanoutResult,
	resumeFrom string,
	cause error,
) (*FanoutResult, error) {
	result.ResumeCursor = resumeFrom
	s.record(ctx, result, cause)

	letter := ports.DeadLetter{
		ID:        uuid.NewString(),
		Task:      task,
		Cursor:    resumeFrom,
		Delivered: result.Delivered,
		Reason:    cause.Error(),
		FailedAt:  time.Now().UTC(),
	}
	// the request context may already be done; the dead letter must still land
	if err := s.deadLetter.Record(context.WithoutCancel(ctx), letter); err != nil {
		logger.Error("Failed to record fanout dead letter",
			zap.Error(err),
			zap.Any("deadLetter", letter),
		)
	}

	logger.Error("Feed fanout stopped",
		zap.Error(cause),
		zap.Int("delivered", result.Delivered),
		zap.Int("batches", result.Batches),
		zap.String("deadLetterID", letter.ID),
	)
	return result, pkgerrors.NewPartialFailureError("feed fanout", result.Batches, cause).
		WithCode(pkgerrors.CodeFanoutIncomplete).
		WithDetail("deadLetterID", letter.ID)
}

func (s *FeedFanoutService) record(ctx context.Context, result *FanoutResult, err error) {
	if s.metrics != nil {
		s.metrics.RecordFanout(ctx, result.Delivered, result.Batches, err)
	}
}
