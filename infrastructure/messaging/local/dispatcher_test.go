package local

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"trustie-admin/application/services"
	"trustie-admin/domain/core/entities"
	"trustie-admin/domain/events"
	"trustie-admin/infrastructure/persistence/memory"
)

func TestDispatchRunsFanoutAfterRequestEnds(t *testing.T) {
	users := memory.NewUserRepository(0)
	for i := 0; i < 30; i++ {
		users.Seed(entities.UserRecord{UserID: fmt.Sprintf("u-%02d", i), PrimarySK: "profile_basic"})
	}
	fanout := services.NewFeedFanoutService(users, memory.NewDeadLetterStore(), nil, "profile_basic", zap.NewNop())
	d := NewDispatcher(fanout, 2, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	task := events.NewPostPublished("flash_1", "chat_1", "author", "2024-06-01T08:30:00.000Z", time.Now())
	require.NoError(t, d.Dispatch(ctx, task))
	cancel()

	waitCtx, waitCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer waitCancel()
	require.NoError(t, d.Wait(waitCtx))

	assert.Equal(t, 2, users.BatchCalls())
	_, ok := users.Record("u-07", "feed_2024-06-01T08:30:00.000Z_chat_1")
	assert.True(t, ok)
}
