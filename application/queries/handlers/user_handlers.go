package handlers

import (
	"context"

	"go.uber.org/zap"

	"trustie-admin/application/ports"
	"trustie-admin/application/queries"
	"trustie-admin/domain/core/entities"
	"trustie-admin/domain/core/valueobjects"
)

// UserQueryHandler serves the user directory read paths. Store failures are
// logged and answered with an empty result, the way the dashboard renders a
// missing section.
type UserQueryHandler struct {
	users  ports.UserRepository
	search ports.SearchClient
	logger *zap.Logger
}

// NewUserQueryHandler creates a new user query handler
func NewUserQueryHandler(users ports.UserRepository, search ports.SearchClient, logger *zap.Logger) *UserQueryHandler {
	return &UserQueryHandler{
		users:  users,
		search: search,
		logger: logger,
	}
}

// HandleProfileSection returns the section record or nil
func (h *UserQueryHandler) HandleProfileSection(ctx context.Context, q queries.GetProfileSectionQuery) (*entities.UserRecord, error) {
	section, err := valueobjects.ParseProfileSection(q.Section)
	if err != nil {
		return nil, err
	}

	record, err := h.users.GetSection(ctx, q.UserID, section)
	if err != nil {
		h.logger.Error("Failed to read profile section",
			zap.String("userID", q.UserID),
			zap.String("section", q.Section),
			zap.Error(err),
		)
		return nil, nil
	}
	return record, nil
}

// HandleAccounts returns the user's wallet records
func (h *UserQueryHandler) HandleAccounts(ctx context.Context, q queries.GetUserAccountsQuery) ([]entities.UserRecord, error) {
	records, err := h.users.ListByPrefix(ctx, q.UserID, valueobjects.WalletPrefix)
	if err != nil {
		h.logger.Error("Failed to list user accounts",
			zap.String("userID", q.UserID),
			zap.Error(err),
		)
		return nil, nil
	}
	return records, nil
}

// HandleSearch runs the remote user search and preselects a unique hit
func (h *UserQueryHandler) HandleSearch(ctx context.Context, q queries.SearchUsersQuery) (*queries.Selection, error) {
	hits, err := h.search.SearchUsers(ctx, q.Search)
	if err != nil {
		return nil, err
	}
	sel := queries.NewSelection(hits, "", "userId")
	return &sel, nil
}
