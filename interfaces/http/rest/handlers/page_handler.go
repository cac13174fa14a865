package handlers

import (
	"net/http"

	"trustie-admin/domain/core/entities"
	"trustie-admin/pkg/auth"
	"trustie-admin/pkg/common"
)

// Dashboard pages behind the session gate
var Pages = []string{"/home", "/user-search", "/create-post", "/publish-post", "/side-hustle"}

// PageResponse is the bootstrap payload of a dashboard page. Pages render
// client side; the server only gates them and hands over static choices.
type PageResponse struct {
	Page     string                    `json:"page"`
	UserID   string                    `json:"userId"`
	Types    []entities.ResourceType   `json:"resourceTypes,omitempty"`
	Statuses []entities.ResourceStatus `json:"resourceStatuses,omitempty"`
	Tags     []entities.Tag            `json:"tags,omitempty"`
}

// Page serves a gated dashboard page
func Page(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := PageResponse{Page: name}
		if user, err := auth.GetUserFromContext(r.Context()); err == nil {
			resp.UserID = user.UserID
		}
		if name == "/side-hustle" {
			resp.Types = entities.ResourceTypes
			resp.Statuses = entities.ResourceStatuses
			resp.Tags = entities.DefaultTags
		}
		common.RespondJSON(w, http.StatusOK, resp)
	}
}
