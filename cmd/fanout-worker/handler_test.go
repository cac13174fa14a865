package main

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	lambdaevents "github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"trustie-admin/application/services"
	"trustie-admin/domain/core/entities"
	"trustie-admin/domain/events"
	"trustie-admin/infrastructure/persistence/memory"
)

func publishedEvent(t *testing.T, task events.PostPublished) lambdaevents.CloudWatchEvent {
	t.Helper()
	detail, err := json.Marshal(task)
	require.NoError(t, err)
	return lambdaevents.CloudWatchEvent{
		ID:         "evt-1",
		DetailType: events.EventTypePostPublished,
		Source:     "trustie.admin",
		Detail:     detail,
	}
}

func TestWorkerRunsFanoutFromBusEvent(t *testing.T) {
	users := memory.NewUserRepository(0)
	for i := 0; i < 5; i++ {
		users.Seed(entities.UserRecord{UserID: fmt.Sprintf("u-%d", i), PrimarySK: "profile_basic"})
	}
	fanout := services.NewFeedFanoutService(users, memory.NewDeadLetterStore(), nil, "profile_basic", zap.NewNop())
	w := &worker{fanout: fanout, logger: zap.NewNop()}

	task := events.NewPostPublished("flash_1", "chat_9", "author", "2024-06-01T08:30:00.000Z", time.Now())
	require.NoError(t, w.handle(context.Background(), publishedEvent(t, task)))

	_, ok := users.Record("u-3", "feed_2024-06-01T08:30:00.000Z_chat_9")
	assert.True(t, ok)
}

type failingRunner struct{ calls int }

func (f *failingRunner) Run(context.Context, events.PostPublished) (*services.FanoutResult, error) {
	f.calls++
	return &services.FanoutResult{}, fmt.Errorf("batch write failed")
}

func TestWorkerSwallowsDeadLetteredFailures(t *testing.T) {
	runner := &failingRunner{}
	w := &worker{fanout: runner, logger: zap.NewNop()}

	task := events.NewPostPublished("flash_1", "chat_9", "author", "2024-06-01T08:30:00.000Z", time.Now())
	assert.NoError(t, w.handle(context.Background(), publishedEvent(t, task)))
	assert.Equal(t, 1, runner.calls)
}

func TestWorkerIgnoresOtherDetailTypes(t *testing.T) {
	runner := &failingRunner{}
	w := &worker{fanout: runner, logger: zap.NewNop()}

	err := w.handle(context.Background(), lambdaevents.CloudWatchEvent{DetailType: "post.deleted"})
	assert.NoError(t, err)
	assert.Zero(t, runner.calls)
}

func TestWorkerRejectsTaskWithoutChat(t *testing.T) {
	w := &worker{fanout: &failingRunner{}, logger: zap.NewNop()}

	task := events.NewPostPublished("flash_1", "", "author", "2024-06-01T08:30:00.000Z", time.Now())
	assert.Error(t, w.handle(context.Background(), publishedEvent(t, task)))
}
