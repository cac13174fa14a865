package handlers_test

import (
	"context"
	"errors"
	"strings"
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

func TestCreatePostStoresVariantsAndDraft(t *testing.T) {
	events := memory.NewEventRepository()
	store := newFakeStore()
	h := handlers.NewCreatePostHandler(events, store, stubTransformer{}, fixedClock{fixedNow}, "eu-west-1:admin", zap.NewNop())

	result, err := h.Handle(context.Background(), commands.CreatePostCommand{
		UserID:      "user-1",
		AdminID:     "admin-1",
		Title:       "Hello",
		Description: "First post",
		Image:       []byte("raw"),
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(result.EventID, "flash_"))
	assert.Equal(t, "post_detail", result.EventType)
	assert.Equal(t, "user-1_high_1717230600000.jpg", result.PictureName)
	assert.ElementsMatch(t, []string{
		"protected/eu-west-1:admin/user-1_low_1717230600000.jpg",
		"protected/eu-west-1:admin/user-1_high_1717230600000.jpg",
	}, store.keys())
	assert.Equal(t, "https://bucket.example/protected/eu-west-1:admin/user-1_low_1717230600000.jpg", result.LowResURL)

	post, err := events.Get(context.Background(), result.EventID, entities.EventTypePost)
	require.NoError(t, err)
	require.NotNil(t, post)
	assert.Equal(t, "created", post.LastStatus)
	assert.Equal(t, []string{"0#user-1_high_1717230600000.jpg"}, post.Pictures)
	assert.Equal(t, "data:image/jpeg;base64,dGh1bWI=", post.Preview)
	assert.Equal(t, "flash_active_created_2024-06-01T08:30:00.000Z", post.Updated)
}

func TestCreatePostFailsWhenAnyUploadFails(t *testing.T) {
	events := memory.NewEventRepository()
	store := newFakeStore()
	store.failKey = "_high_"
	h := handlers.NewCreatePostHandler(events, store, stubTransformer{}, fixedClock{fixedNow}, "ns", zap.NewNop())

	_, err := h.Handle(context.Background(), commands.CreatePostCommand{UserID: "user-1", Title: "t", Image: []byte("x")})
	require.Error(t, err)
}

func TestCreatePostFailsWhenTransformFails(t *testing.T) {
	store := newFakeStore()
	transformErr := pkgerrors.NewValidationError("image could not be decoded").WithCode(pkgerrors.CodeImageTransform)
	h := handlers.NewCreatePostHandler(memory.NewEventRepository(), store, stubTransformer{err: transformErr}, fixedClock{fixedNow}, "ns", zap.NewNop())

	_, err := h.Handle(context.Background(), commands.CreatePostCommand{UserID: "user-1", Title: "t", Image: []byte("x")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, transformErr))
	assert.Empty(t, store.keys())
}
