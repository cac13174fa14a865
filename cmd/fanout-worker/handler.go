package main

import (
	"context"
	"encoding/json"
	"fmt"

	lambdaevents "github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	"trustie-admin/application/services"
	"trustie-admin/domain/events"
)

// fanoutRunner is the part of the fanout service the worker drives
type fanoutRunner interface {
	Run(ctx context.Context, task events.PostPublished) (*services.FanoutResult, error)
}

type worker struct {
	fanout fanoutRunner
	logger *zap.Logger
}

// handle runs one fanout per post.published event. A failed run is already
// dead-lettered by the service, so the invocation still succeeds.
func (w *worker) handle(ctx context.Context, event lambdaevents.CloudWatchEvent) error {
	if event.DetailType != events.EventTypePostPublished {
		w.logger.Warn("Ignoring unexpected event",
			zap.String("detailType", event.DetailType),
			zap.String("source", event.Source),
		)
		return nil
	}

	var task events.PostPublished
	if err := json.Unmarshal(event.Detail, &task); err != nil {
		// redelivery cannot fix a malformed detail
		w.logger.Error("Failed to decode fanout task", zap.String("eventID", event.ID), zap.Error(err))
		return nil
	}
	if task.ChatID == "" {
		return fmt.Errorf("event %s carries no chat id", event.ID)
	}

	result, err := w.fanout.Run(ctx, task)
	if err != nil {
		w.logger.Error("Fanout failed",
			zap.String("chatID", task.ChatID),
			zap.String("eventID", event.ID),
			zap.Error(err),
		)
		return nil
	}

	w.logger.Info("Fanout completed",
		zap.String("chatID", task.ChatID),
		zap.Int("delivered", result.Delivered),
		zap.Int("batches", result.Batches),
	)
	return nil
}
