package eventbridge

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"trustie-admin/application/ports"
	"trustie-admin/domain/events"
	pkgerrors "trustie-admin/pkg/errors"
)

// Source is the event source of everything this service publishes
const Source = "trustie.admin"

// PutEventsAPI is the subset of the EventBridge client used here
type PutEventsAPI interface {
	PutEvents(ctx context.Context, params *eventbridge.PutEventsInput, optFns ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error)
}

// Publisher hands fanout tasks to a worker through an event bus. A task the
// bus refuses is written to the dead letter store before the error returns.
type Publisher struct {
	client       PutEventsAPI
	eventBusName string
	deadLetter   ports.DeadLetterStore
	maxRetries   int
	backoff      time.Duration
	logger       *zap.Logger
}

// NewPublisher creates a new EventBridge publisher
func NewPublisher(client PutEventsAPI, eventBusName string, deadLetter ports.DeadLetterStore, logger *zap.Logger) *Publisher {
	return &Publisher{
		client:       client,
		eventBusName: eventBusName,
		deadLetter:   deadLetter,
		maxRetries:   3,
		backoff:      100 * time.Millisecond,
		logger:       logger,
	}
}

// Dispatch implements ports.FanoutDispatcher
func (p *Publisher) Dispatch(ctx context.Context, task events.PostPublished) error {
	detail, err := json.Marshal(task)
	if err != nil {
		return pkgerrors.NewInternalError("failed to encode fanout task").WithCause(err)
	}
	entry := types.PutEventsRequestEntry{
		EventBusName: aws.String(p.eventBusName),
		Source:       aws.String(Source),
		DetailType:   aws.String(task.GetEventType()),
		Detail:       aws.String(string(detail)),
		Time:         aws.Time(task.GetTimestamp()),
		Resources:    []string{fmt.Sprintf("arn:aws:trustie::%s", task.GetAggregateID())},
	}

	err = p.publishWithRetry(ctx, entry)
	if err == nil {
		p.logger.Debug("Fanout task published",
			zap.String("chatID", task.ChatID),
			zap.String("eventBus", p.eventBusName),
		)
		return nil
	}

	letter := ports.DeadLetter{
		ID:       uuid.NewString(),
		Task:     task,
		Reason:   err.Error(),
		FailedAt: time.Now().UTC(),
	}
	// the request may already be gone; the dead letter must still land
	if derr := p.deadLetter.Record(context.WithoutCancel(ctx), letter); derr != nil {
		p.logger.Error("Failed to record fanout dead letter",
			zap.String("chatID", task.ChatID),
			zap.Error(derr),
		)
	}
	return pkgerrors.NewExternalError("eventbridge", err).WithDetail("deadLetterID", letter.ID)
}

func (p *Publisher) publishWithRetry(ctx context.Context, entry types.PutEventsRequestEntry) error {
	backoff := p.backoff
	var lastErr error
	for attempt := 0; attempt < p.maxRetries; attempt++ {
		lastErr = p.publish(ctx, entry)
		if lastErr == nil {
			return nil
		}
		if attempt < p.maxRetries-1 {
			p.logger.Warn("Retrying fanout task publication",
				zap.Int("attempt", attempt+1),
				zap.Duration("backoff", backoff),
				zap.Error(lastErr),
			)
			select {
			case <-time.After(backoff):
				backoff *= 2
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return fmt.Errorf("failed after %d attempts: %w", p.maxRetries, lastErr)
}

func (p *Publisher) publish(ctx context.Context, entry types.PutEventsRequestEntry) error {
	result, err := p.client.PutEvents(ctx, &eventbridge.PutEventsInput{
		Entries: []types.PutEventsRequestEntry{entry},
	})
	if err != nil {
		return err
	}
	if result.FailedEntryCount > 0 {
		for _, e := range result.Entries {
			if e.ErrorCode != nil {
				return fmt.Errorf("%s: %s", aws.ToString(e.ErrorCode), aws.ToString(e.ErrorMessage))
			}
		}
		return fmt.Errorf("%d events failed to publish", result.FailedEntryCount)
	}
	return nil
}
