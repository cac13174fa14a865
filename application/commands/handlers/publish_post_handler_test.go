package handlers_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"trustie-admin/application/commands"
	"trustie-admin/application/commands/handlers"
	"trustie-admin/domain/core/entities"
	"trustie-admin/infrastructure/persistence/memory"
	pkgerrors "trustie-admin/pkg/errors"
)

type publishFixture struct {
	events     *memory.EventRepository
	users      *memory.UserRepository
	dispatcher *recordingDispatcher
}

func newPublishFixture(t *testing.T, posts ...*entities.Event) *publishFixture {
	t.Helper()
	f := &publishFixture{
		events:     memory.NewEventRepository(),
		users:      memory.NewUserRepository(0),
		dispatcher: &recordingDispatcher{},
	}
	for _, p := range posts {
		require.NoError(t, f.events.Create(context.Background(), p))
	}
	return f
}

func (f *publishFixture) handler(ordering handlers.PublishOrdering) *handlers.PublishPostHandler {
	return handlers.NewPublishPostHandler(f.events, f.users, f.dispatcher, fixedClock{fixedNow}, ordering, zap.NewNop())
}

func draft(t *testing.T, userID string) *entities.Event {
	t.Helper()
	post, err := entities.NewDraftPost(entities.DraftPost{
		UserID:      userID,
		Title:       "Title",
		PictureName: "pic.jpg",
		Preview:     "data:image/jpeg;base64,AA==",
	}, fixedNow)
	require.NoError(t, err)
	return post
}

func TestPublishPostWritesChatCountersAndDispatches(t *testing.T) {
	post := draft(t, "user-1")
	f := newPublishFixture(t, post)

	chat, err := f.handler(handlers.PublishOrdering{}).Handle(context.Background(), commands.PublishPostCommand{
		PostID: post.EventID, UserID: "user-1", AdminID: "admin-1",
	})
	require.NoError(t, err)

	assert.Equal(t, entities.EventTypeChat, chat.EventType)
	assert.Equal(t, "published", chat.LastStatus)
	assert.Equal(t, 0, chat.Likes)

	stored, err := f.events.Get(context.Background(), post.EventID, entities.EventTypePost)
	require.NoError(t, err)
	assert.Equal(t, "published", stored.LastStatus)
	assert.Equal(t, "flash_active_published_2024-06-01T08:30:00.000Z", stored.Updated)

	status, ok := f.users.Record("user-1", "post_status")
	require.True(t, ok)
	assert.Equal(t, 1, status.Attributes[entities.CounterWritten])
	assert.Equal(t, "pic.jpg", status.Attributes["picture"])

	require.Len(t, f.dispatcher.tasks, 1)
	assert.Equal(t, chat.EventID, f.dispatcher.tasks[0].ChatID)
	assert.Equal(t, "user-1", f.dispatcher.tasks[0].AuthorID)
}

func TestPublishPostByNonOwnerFlipsStatusButStopsThere(t *testing.T) {
	post := draft(t, "owner")
	f := newPublishFixture(t, post)

	_, err := f.handler(handlers.PublishOrdering{}).Handle(context.Background(), commands.PublishPostCommand{
		PostID: post.EventID, UserID: "intruder",
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsForbidden(err))

	stored, err := f.events.Get(context.Background(), post.EventID, entities.EventTypePost)
	require.NoError(t, err)
	assert.Equal(t, "published", stored.LastStatus)

	chat, err := f.events.Get(context.Background(), "chat_"+post.EventID[len("flash_"):], entities.EventTypeChat)
	require.NoError(t, err)
	assert.Nil(t, chat)
	_, ok := f.users.Record("owner", "post_status")
	assert.False(t, ok)
	assert.Empty(t, f.dispatcher.tasks)
}

func TestPublishPostAuthorizeFirstLeavesPostUntouched(t *testing.T) {
	post := draft(t, "owner")
	f := newPublishFixture(t, post)

	_, err := f.handler(handlers.PublishOrdering{AuthorizeFirst: true}).Handle(context.Background(), commands.PublishPostCommand{
		PostID: post.EventID, UserID: "intruder",
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsForbidden(err))

	stored, err := f.events.Get(context.Background(), post.EventID, entities.EventTypePost)
	require.NoError(t, err)
	assert.Equal(t, "created", stored.LastStatus)
}

func TestPublishPostStrictRejectsRepublish(t *testing.T) {
	post := draft(t, "owner")
	f := newPublishFixture(t, post)
	h := f.handler(handlers.PublishOrdering{AuthorizeFirst: true, Strict: true})
	cmd := commands.PublishPostCommand{PostID: post.EventID, UserID: "owner"}

	_, err := h.Handle(context.Background(), cmd)
	require.NoError(t, err)

	_, err = h.Handle(context.Background(), cmd)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsConflict(err))
	assert.Len(t, f.dispatcher.tasks, 1)
}

func TestPublishPostMissingPost(t *testing.T) {
	f := newPublishFixture(t)
	_, err := f.handler(handlers.PublishOrdering{}).Handle(context.Background(), commands.PublishPostCommand{
		PostID: "flash_missing", UserID: "user-1",
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestPublishPostIgnoresDispatchFailure(t *testing.T) {
	post := draft(t, "user-1")
	f := newPublishFixture(t, post)
	f.dispatcher.err = errors.New("bus unavailable")

	chat, err := f.handler(handlers.PublishOrdering{}).Handle(context.Background(), commands.PublishPostCommand{
		PostID: post.EventID, UserID: "user-1",
	})
	require.NoError(t, err)
	assert.NotNil(t, chat)
}
