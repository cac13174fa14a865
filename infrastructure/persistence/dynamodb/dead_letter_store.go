package dynamodb

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"trustie-admin/application/ports"
	"trustie-admin/domain/events"
)

// deadLetterSK is the fixed sort key of every dead letter record
const deadLetterSK = "fanout"

type deadLetterItem struct {
	PK        string               `dynamodbav:"PK"`
	SK        string               `dynamodbav:"SK"`
	Task      events.PostPublished `dynamodbav:"task"`
	Cursor    string               `dynamodbav:"cursor,omitempty"`
	Delivered int                  `dynamodbav:"delivered"`
	Reason    string               `dynamodbav:"reason"`
	FailedAt  time.Time            `dynamodbav:"failedAt"`
	// ExpiresAt feeds the table's TTL
	ExpiresAt int64 `dynamodbav:"expiresAt"`
}

func (item deadLetterItem) toLetter() ports.DeadLetter {
	return ports.DeadLetter{
		ID:        item.PK,
		Task:      item.Task,
		Cursor:    item.Cursor,
		Delivered: item.Delivered,
		Reason:    item.Reason,
		FailedAt:  item.FailedAt,
	}
}

// DeadLetterStore keeps failed fanout tasks in their own table
type DeadLetterStore struct {
	store     *RecordStore
	retention time.Duration
	logger    *zap.Logger
}

// NewDeadLetterStore creates a store whose records expire after retention
func NewDeadLetterStore(store *RecordStore, retention time.Duration, logger *zap.Logger) *DeadLetterStore {
	return &DeadLetterStore{store: store, retention: retention, logger: logger}
}

// Record implements ports.DeadLetterStore
func (s *DeadLetterStore) Record(ctx context.Context, letter ports.DeadLetter) error {
	item := deadLetterItem{
		PK:        letter.ID,
		SK:        deadLetterSK,
		Task:      letter.Task,
		Cursor:    letter.Cursor,
		Delivered: letter.Delivered,
		Reason:    letter.Reason,
		FailedAt:  letter.FailedAt,
		ExpiresAt: letter.FailedAt.Add(s.retention).Unix(),
	}
	if err := s.store.Put(ctx, item, nil); err != nil {
		return err
	}
	s.logger.Warn("Fanout dead letter recorded",
		zap.String("id", letter.ID),
		zap.String("chatID", letter.Task.ChatID),
		zap.Int("delivered", letter.Delivered),
	)
	return nil
}

// List implements ports.DeadLetterStore, oldest first. The table stays small
// so a full scan is acceptable.
func (s *DeadLetterStore) List(ctx context.Context, limit int) ([]ports.DeadLetter, error) {
	var items []deadLetterItem
	if err := s.store.ScanAll(ctx, &items); err != nil {
		return nil, err
	}
	out := make([]ports.DeadLetter, 0, len(items))
	for _, item := range items {
		out = append(out, item.toLetter())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FailedAt.Before(out[j].FailedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Get implements ports.DeadLetterStore
func (s *DeadLetterStore) Get(ctx context.Context, id string) (*ports.DeadLetter, error) {
	var item deadLetterItem
	found, err := s.store.Get(ctx, stringKey("PK", id, "SK", deadLetterSK), &item)
	if err != nil || !found {
		return nil, err
	}
	letter := item.toLetter()
	return &letter, nil
}

// Delete implements ports.DeadLetterStore
func (s *DeadLetterStore) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, stringKey("PK", id, "SK", deadLetterSK))
}
