package eventbridge

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"trustie-admin/domain/events"
	"trustie-admin/infrastructure/persistence/memory"
)

type stubBus struct {
	inputs  []*eventbridge.PutEventsInput
	respond func(int) (*eventbridge.PutEventsOutput, error)
}

func (s *stubBus) PutEvents(ctx context.Context, in *eventbridge.PutEventsInput, _ ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error) {
	s.inputs = append(s.inputs, in)
	return s.respond(len(s.inputs))
}

func testTask() events.PostPublished {
	return events.NewPostPublished("flash_1", "chat_1", "author", "2024-06-01T08:30:00.000Z", time.Now())
}

func TestDispatchPublishesTask(t *testing.T) {
	bus := &stubBus{respond: func(int) (*eventbridge.PutEventsOutput, error) {
		return &eventbridge.PutEventsOutput{}, nil
	}}
	dlq := memory.NewDeadLetterStore()
	p := NewPublisher(bus, "trustie-events", dlq, zap.NewNop())

	require.NoError(t, p.Dispatch(context.Background(), testTask()))
	require.Len(t, bus.inputs, 1)

	entry := bus.inputs[0].Entries[0]
	assert.Equal(t, "post.published", aws.ToString(entry.DetailType))
	assert.Equal(t, Source, aws.ToString(entry.Source))

	var decoded events.PostPublished
	require.NoError(t, json.Unmarshal([]byte(aws.ToString(entry.Detail)), &decoded))
	assert.Equal(t, "chat_1", decoded.ChatID)

	letters, err := dlq.List(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, letters)
}

func TestDispatchRetriesThenRecordsDeadLetter(t *testing.T) {
	bus := &stubBus{respond: func(call int) (*eventbridge.PutEventsOutput, error) {
		if call == 1 {
			return nil, errors.New("throttled")
		}
		return &eventbridge.PutEventsOutput{
			FailedEntryCount: 1,
			Entries:          []types.PutEventsResultEntry{{ErrorCode: aws.String("InternalFailure")}},
		}, nil
	}}
	dlq := memory.NewDeadLetterStore()
	p := NewPublisher(bus, "trustie-events", dlq, zap.NewNop())
	p.backoff = time.Millisecond

	err := p.Dispatch(context.Background(), testTask())
	require.Error(t, err)
	assert.Len(t, bus.inputs, 3)

	letters, err := dlq.List(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, letters, 1)
	assert.Equal(t, "chat_1", letters[0].Task.ChatID)
	assert.Empty(t, letters[0].Cursor)
}
