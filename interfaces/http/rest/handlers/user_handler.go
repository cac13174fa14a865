package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"trustie-admin/application/queries"
	querybus "trustie-admin/application/queries/bus"
	"trustie-admin/domain/core/entities"
	"trustie-admin/pkg/common"
	pkgerrors "trustie-admin/pkg/errors"
)

// UserHandler serves user search and profile reads
type UserHandler struct {
	queryBus *querybus.QueryBus
	errors   *pkgerrors.ErrorHandler
	logger   *zap.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(queryBus *querybus.QueryBus, errors *pkgerrors.ErrorHandler, logger *zap.Logger) *UserHandler {
	return &UserHandler{queryBus: queryBus, errors: errors, logger: logger}
}

// Search handles GET /api/users/search?q=
func (h *UserHandler) Search(w http.ResponseWriter, r *http.Request) {
	result, err := h.queryBus.Ask(r.Context(), queries.SearchUsersQuery{Search: r.URL.Query().Get("q")})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}

// GetProfileSection handles GET /api/users/{userId}/profile/{section}.
// A section the user never wrote answers data:null.
func (h *UserHandler) GetProfileSection(w http.ResponseWriter, r *http.Request) {
	result, err := h.queryBus.Ask(r.Context(), queries.GetProfileSectionQuery{
		UserID:  chi.URLParam(r, "userId"),
		Section: chi.URLParam(r, "section"),
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	rec, _ := result.(*entities.UserRecord)
	common.RespondJSON(w, http.StatusOK, toUserRecordResponse(rec))
}

// ListAccounts handles GET /api/users/{userId}/accounts
func (h *UserHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	result, err := h.queryBus.Ask(r.Context(), queries.GetUserAccountsQuery{UserID: chi.URLParam(r, "userId")})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	records, _ := result.([]entities.UserRecord)
	out := make([]map[string]interface{}, 0, len(records))
	for i := range records {
		out = append(out, toUserRecordResponse(&records[i]))
	}
	common.RespondList(w, r, out, len(out))
}
