package entities_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trustie-admin/domain/core/entities"
	"trustie-admin/domain/core/valueobjects"
	pkgerrors "trustie-admin/pkg/errors"
)

var now = time.Date(2024, 6, 1, 8, 30, 0, 0, time.UTC)

func TestNewDraftPost(t *testing.T) {
	post, err := entities.NewDraftPost(entities.DraftPost{
		UserID:      "admin-1",
		Title:       "Weekly tip",
		Description: "Save first, spend later",
		PictureName: "admin-1_high_1717230600000.jpg",
		Preview:     "data:image/jpeg;base64,AAAA",
	}, now)
	require.NoError(t, err)

	id, err := valueobjects.ParsePostID(post.EventID)
	require.NoError(t, err)
	assert.Equal(t, valueobjects.PrefixFlash, id.Prefix())
	assert.Equal(t, entities.EventTypePost, post.EventType)
	assert.Equal(t, "admin-1", post.ForID)
	assert.Equal(t, "flash_active_created_2024-06-01T08:30:00.000Z", post.Updated)
	assert.Equal(t, []string{"0#admin-1_high_1717230600000.jpg"}, post.Pictures)
	assert.Equal(t, entities.PostPicturePath, post.PicturePath)
	assert.Equal(t, entities.PrivacyPublic, post.Privacy)
	assert.Equal(t, valueobjects.StatusCreated, post.LastStatus)
	assert.Zero(t, post.Comments)
	assert.Zero(t, post.Likes)
	assert.False(t, post.Secret)
	assert.NoError(t, post.Validate())
}

func TestNewDraftPostRequiresOwnerAndTitle(t *testing.T) {
	_, err := entities.NewDraftPost(entities.DraftPost{Title: "x"}, now)
	assert.True(t, pkgerrors.IsValidation(err))

	_, err = entities.NewDraftPost(entities.DraftPost{UserID: "u"}, now)
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestToChat(t *testing.T) {
	post := &entities.Event{
		EventID:     "flash_abc",
		EventType:   entities.EventTypePost,
		UserID:      "admin-1",
		ForID:       "admin-1",
		Title:       "t",
		Description: "d",
		Pictures:    []string{"0#a.jpg"},
		PicturePath: "eu-west-1:admin",
		Preview:     "data:image/jpeg;base64,AAAA",
		Privacy:     "public",
		LastStatus:  valueobjects.StatusPublished,
		Comments:    7,
		Likes:       3,
	}
	id, err := valueobjects.ParsePostID(post.EventID)
	require.NoError(t, err)

	chat := post.ToChat(id, now)

	assert.Equal(t, "chat_abc", chat.EventID)
	assert.Equal(t, entities.EventTypeChat, chat.EventType)
	assert.Equal(t, "chat_active_published_2024-06-01T08:30:00.000Z", chat.Updated)
	assert.Equal(t, post.Pictures, chat.Pictures)
	assert.Equal(t, post.Preview, chat.Preview)
	assert.Equal(t, post.Privacy, chat.Privacy)
	assert.Zero(t, chat.Comments)
	assert.Zero(t, chat.Likes)
	assert.Nil(t, chat.Goal)
	assert.NoError(t, chat.Validate())

	// the chat owns its own slice
	chat.Pictures[0] = "changed"
	assert.Equal(t, "0#a.jpg", post.Pictures[0])
}

func TestToChatCarriesGoalFields(t *testing.T) {
	post := &entities.Event{
		EventID:    "goal_abc",
		EventType:  entities.EventTypePost,
		UserID:     "admin-1",
		LastStatus: valueobjects.StatusPublished,
		Goal:       &entities.GoalFields{Balance: 120, NbContribution: 4, Value: 500},
	}
	id, err := valueobjects.ParsePostID(post.EventID)
	require.NoError(t, err)

	chat := post.ToChat(id, now)
	require.NotNil(t, chat.Goal)
	assert.Equal(t, entities.GoalFields{Balance: 0, NbContribution: 0, Value: 500}, *chat.Goal)
}

func TestEventValidate(t *testing.T) {
	tests := []struct {
		name    string
		event   entities.Event
		wantErr bool
	}{
		{name: "created post", event: entities.Event{EventID: "flash_1", EventType: entities.EventTypePost, LastStatus: "created"}},
		{name: "published chat", event: entities.Event{EventID: "chat_1", EventType: entities.EventTypeChat, LastStatus: "published"}},
		{name: "missing id", event: entities.Event{EventType: entities.EventTypePost, LastStatus: "created"}, wantErr: true},
		{name: "unknown type", event: entities.Event{EventID: "x_1", EventType: "goal_detail", LastStatus: "created"}, wantErr: true},
		{name: "created chat", event: entities.Event{EventID: "chat_1", EventType: entities.EventTypeChat, LastStatus: "created"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.event.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPostStatusUpdateFor(t *testing.T) {
	post := &entities.Event{
		UserID:      "admin-1",
		Pictures:    []string{"1#second.jpg", "0#first.jpg"},
		Preview:     "data:image/jpeg;base64,AAAA",
		PicturePath: "eu-west-1:admin",
	}

	flash, _ := valueobjects.ParsePostID("flash_1")
	update := entities.PostStatusUpdateFor(post, flash, now)
	assert.Equal(t, entities.CounterWritten, update.Counter)
	assert.True(t, update.HasPicture)
	assert.Equal(t, "first.jpg", update.Picture)
	assert.Equal(t, "2024-06-01T08:30:00.000Z", update.Updated)

	goal, _ := valueobjects.ParsePostID("goal_1")
	update = entities.PostStatusUpdateFor(&entities.Event{UserID: "admin-1"}, goal, now)
	assert.Equal(t, entities.CounterPublished, update.Counter)
	assert.False(t, update.HasPicture)
}
