package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"trustie-admin/application/queries"
	querybus "trustie-admin/application/queries/bus"
	"trustie-admin/pkg/common"
	pkgerrors "trustie-admin/pkg/errors"
)

// DashboardHandler serves usage statistics and signed image URLs
type DashboardHandler struct {
	queryBus *querybus.QueryBus
	errors   *pkgerrors.ErrorHandler
	logger   *zap.Logger
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(queryBus *querybus.QueryBus, errors *pkgerrors.ErrorHandler, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{queryBus: queryBus, errors: errors, logger: logger}
}

// GetStats handles GET /api/stats/{statsType}. The series is passed through
// exactly as the statistics function returned it.
func (h *DashboardHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	result, err := h.queryBus.Ask(r.Context(), queries.GetUsageStatsQuery{StatsType: chi.URLParam(r, "statsType")})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	data, _ := result.(json.RawMessage)
	if len(data) == 0 {
		data = json.RawMessage("null")
	}
	common.RespondJSON(w, http.StatusOK, data)
}

// ImageURLResponse carries a signed download URL
type ImageURLResponse struct {
	URL string `json:"url"`
}

// GetImageURL handles GET /api/images/url?path=&name=
func (h *DashboardHandler) GetImageURL(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	result, err := h.queryBus.Ask(r.Context(), queries.GetImageURLQuery{
		PicturePath: params.Get("path"),
		Name:        params.Get("name"),
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	url, _ := result.(string)
	common.RespondJSON(w, http.StatusOK, ImageURLResponse{URL: url})
}
