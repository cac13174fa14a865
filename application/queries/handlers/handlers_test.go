package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"trustie-admin/application/ports"
	"trustie-admin/application/queries"
	"trustie-admin/application/queries/handlers"
	"trustie-admin/domain/core/entities"
	"trustie-admin/domain/core/valueobjects"
	"trustie-admin/infrastructure/persistence/memory"
	pkgerrors "trustie-admin/pkg/errors"
)

type stubSearch struct {
	users      []ports.SearchHit
	events     []ports.SearchHit
	stats      json.RawMessage
	err        error
	lastEvents []string
}

func (s *stubSearch) SearchUsers(ctx context.Context, search string) ([]ports.SearchHit, error) {
	return s.users, s.err
}

func (s *stubSearch) SearchEvents(ctx context.Context, search, eventType, userID string) ([]ports.SearchHit, error) {
	s.lastEvents = []string{search, eventType, userID}
	return s.events, s.err
}

func (s *stubSearch) UsageStats(ctx context.Context, statsType string) (json.RawMessage, error) {
	return s.stats, s.err
}

// brokenUsers fails every read
type brokenUsers struct{ ports.UserRepository }

func (brokenUsers) GetSection(ctx context.Context, userID string, section valueobjects.ProfileSection) (*entities.UserRecord, error) {
	return nil, errors.New("ResourceNotFoundException")
}

func (brokenUsers) ListByPrefix(ctx context.Context, userID, prefix string) ([]entities.UserRecord, error) {
	return nil, errors.New("ResourceNotFoundException")
}

func TestProfileSection(t *testing.T) {
	users := memory.NewUserRepository(0)
	users.Seed(entities.UserRecord{UserID: "u-1", PrimarySK: "profile_basic", Attributes: map[string]interface{}{"name": "Ada"}})
	h := handlers.NewUserQueryHandler(users, &stubSearch{}, zap.NewNop())

	rec, err := h.HandleProfileSection(context.Background(), queries.GetProfileSectionQuery{UserID: "u-1", Section: "profile_basic"})
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "Ada", rec.Attributes["name"])

	rec, err = h.HandleProfileSection(context.Background(), queries.GetProfileSectionQuery{UserID: "u-1", Section: "details"})
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestReadPathsSwallowStoreErrors(t *testing.T) {
	h := handlers.NewUserQueryHandler(brokenUsers{}, &stubSearch{}, zap.NewNop())

	rec, err := h.HandleProfileSection(context.Background(), queries.GetProfileSectionQuery{UserID: "u-1", Section: "setting_user"})
	assert.NoError(t, err)
	assert.Nil(t, rec)

	accounts, err := h.HandleAccounts(context.Background(), queries.GetUserAccountsQuery{UserID: "u-1"})
	assert.NoError(t, err)
	assert.Nil(t, accounts)
}

func TestAccountsListsWalletRecords(t *testing.T) {
	users := memory.NewUserRepository(0)
	users.Seed(
		entities.UserRecord{UserID: "u-1", PrimarySK: "wallet_eur"},
		entities.UserRecord{UserID: "u-1", PrimarySK: "profile_basic"},
		entities.UserRecord{UserID: "u-1", PrimarySK: "wallet_btc"},
		entities.UserRecord{UserID: "u-2", PrimarySK: "wallet_eur"},
	)
	h := handlers.NewUserQueryHandler(users, &stubSearch{}, zap.NewNop())

	accounts, err := h.HandleAccounts(context.Background(), queries.GetUserAccountsQuery{UserID: "u-1"})
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, "wallet_btc", accounts[0].PrimarySK)
	assert.Equal(t, "wallet_eur", accounts[1].PrimarySK)
}

func TestSearchEventsDefaultsToPosts(t *testing.T) {
	search := &stubSearch{}
	h := handlers.NewEventQueryHandler(memory.NewEventRepository(), search, zap.NewNop())

	sel, err := h.HandleSearch(context.Background(), queries.SearchEventsQuery{Search: "hello", UserID: "u-1"})
	require.NoError(t, err)
	assert.Equal(t, queries.SelectionNone, sel.State)
	assert.Equal(t, "null", sel.SelectedID)
	assert.Equal(t, []string{"hello", "post", "u-1"}, search.lastEvents)
}

func TestSearchUsersPreselectsSingleHit(t *testing.T) {
	search := &stubSearch{users: []ports.SearchHit{{"userId": "u-9"}}}
	h := handlers.NewUserQueryHandler(memory.NewUserRepository(0), search, zap.NewNop())

	sel, err := h.HandleSearch(context.Background(), queries.SearchUsersQuery{Search: "ada"})
	require.NoError(t, err)
	assert.Equal(t, queries.SelectionSingle, sel.State)
	assert.Equal(t, "u-9", sel.SelectedID)
}

func TestUsageStatsFailureMessage(t *testing.T) {
	h := handlers.NewUsageStatsHandler(&stubSearch{err: errors.New("timeout")}, zap.NewNop())

	_, err := h.Handle(context.Background(), queries.GetUsageStatsQuery{StatsType: "growth"})
	require.Error(t, err)
	appErr := pkgerrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, "Error fetching growth data", appErr.Message)
}

func TestListResourcesAppliesFilter(t *testing.T) {
	repo := memory.NewResourceRepository()
	for i, title := range []string{"Tax basics", "Budget blog", "Tax podcast"} {
		require.NoError(t, repo.Create(context.Background(), &entities.Resource{
			ResourceID: title,
			SK:         string(rune('a' + i)),
			Title:      title,
			Type:       entities.ResourceBook,
			Status:     entities.StatusIdentified,
		}))
	}
	h := handlers.NewResourceQueryHandler(repo, zap.NewNop())

	list, err := h.Handle(context.Background(), queries.ListResourcesQuery{Filter: entities.ResourceFilter{Search: "tax"}})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Tax basics", list[0].Title)
	assert.Equal(t, "Tax podcast", list[1].Title)
}
