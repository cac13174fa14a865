package handlers_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"trustie-admin/application/commands"
	"trustie-admin/application/commands/handlers"
	"trustie-admin/domain/core/entities"
	"trustie-admin/infrastructure/persistence/memory"
	pkgerrors "trustie-admin/pkg/errors"
	"trustie-admin/pkg/utils"
)

func strPtr(s string) *string { return &s }

func addResource(t *testing.T, h *handlers.ResourceHandler) *entities.Resource {
	t.Helper()
	res, err := h.HandleAdd(context.Background(), commands.AddResourceCommand{Input: entities.NewResourceInput{
		Title:  "Rich Dad Poor Dad",
		Type:   entities.ResourceBook,
		Status: entities.StatusIdentified,
		Tags:   []entities.Tag{{TagID: "1", Name: "Investing"}},
	}})
	require.NoError(t, err)
	return res
}

func TestAddResourceStampsIdentityAndDates(t *testing.T) {
	repo := memory.NewResourceRepository()
	h := handlers.NewResourceHandler(repo, utils.NewMonotonicClock(fixedClock{fixedNow}), zap.NewNop())

	res := addResource(t, h)
	assert.NotEmpty(t, res.ResourceID)
	assert.Equal(t, "2024-06-01T08:30:00.000Z", res.SK)
	assert.Equal(t, res.SK, res.DateAdded)
	assert.Equal(t, res.SK, res.LastModified)

	list, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestUpdateResourceAdvancesLastModifiedWithinSameMillisecond(t *testing.T) {
	repo := memory.NewResourceRepository()
	// the base clock never moves
	h := handlers.NewResourceHandler(repo, utils.NewMonotonicClock(fixedClock{fixedNow}), zap.NewNop())
	res := addResource(t, h)

	first, err := h.HandleUpdate(context.Background(), commands.UpdateResourceCommand{
		ResourceID: res.ResourceID, SK: res.SK,
		Patch: entities.ResourcePatch{Notes: strPtr("chapter 1")},
	})
	require.NoError(t, err)
	second, err := h.HandleUpdate(context.Background(), commands.UpdateResourceCommand{
		ResourceID: res.ResourceID, SK: res.SK,
		Patch: entities.ResourcePatch{Notes: strPtr("chapter 2")},
	})
	require.NoError(t, err)

	assert.Greater(t, first.LastModified, res.LastModified)
	assert.Greater(t, second.LastModified, first.LastModified)
	assert.Equal(t, "chapter 2", second.Notes)
	assert.Equal(t, "Rich Dad Poor Dad", second.Title)
}

func TestUpdateResourceEmptyPatchOnlyRefreshesLastModified(t *testing.T) {
	repo := memory.NewResourceRepository()
	h := handlers.NewResourceHandler(repo, utils.NewMonotonicClock(fixedClock{fixedNow}), zap.NewNop())
	res := addResource(t, h)

	updated, err := h.HandleUpdate(context.Background(), commands.UpdateResourceCommand{ResourceID: res.ResourceID, SK: res.SK})
	require.NoError(t, err)
	assert.Equal(t, res.Title, updated.Title)
	assert.Equal(t, res.Tags, updated.Tags)
	assert.Greater(t, updated.LastModified, res.LastModified)
}

func TestUpdateResourceStoredInTheFuture(t *testing.T) {
	repo := memory.NewResourceRepository()
	future := fixedNow.Add(time.Hour)
	require.NoError(t, repo.Create(context.Background(), &entities.Resource{
		ResourceID: "r1", SK: "sk", Title: "t",
		Type: entities.ResourceBook, Status: entities.StatusIdentified,
		LastModified: utils.FormatISO(future),
	}))
	h := handlers.NewResourceHandler(repo, utils.NewMonotonicClock(fixedClock{fixedNow}), zap.NewNop())

	updated, err := h.HandleUpdate(context.Background(), commands.UpdateResourceCommand{ResourceID: "r1", SK: "sk"})
	require.NoError(t, err)
	assert.Equal(t, "2024-06-01T09:30:00.001Z", updated.LastModified)
}

func TestUpdateResourceNotFound(t *testing.T) {
	h := handlers.NewResourceHandler(memory.NewResourceRepository(), utils.NewMonotonicClock(nil), zap.NewNop())
	_, err := h.HandleUpdate(context.Background(), commands.UpdateResourceCommand{ResourceID: "nope", SK: "sk"})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestUploadKnowledgeFile(t *testing.T) {
	tests := []struct {
		name      string
		publicURL string
		wantURL   string
	}{
		{
			name:      "public base URL",
			publicURL: "https://kb.example/",
			wantURL:   "https://kb.example/1717230600000-guide.pdf",
		},
		{
			name:    "bucket URL",
			wantURL: "https://bucket.example/protected/eu-west-1:knowledge/1717230600000-guide.pdf",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			h := handlers.NewKnowledgeFileHandler(store, fixedClock{fixedNow}, "eu-west-1:knowledge", tt.publicURL, zap.NewNop())

			result, err := h.Handle(context.Background(), commands.UploadKnowledgeFileCommand{
				FileName:    "guide.pdf",
				ContentType: "application/pdf",
				Body:        []byte("%PDF"),
			})
			require.NoError(t, err)
			assert.Equal(t, "protected/eu-west-1:knowledge/1717230600000-guide.pdf", result.Key)
			assert.Equal(t, tt.wantURL, result.URL)
			assert.Equal(t, []string{result.Key}, store.signed)
		})
	}
}
