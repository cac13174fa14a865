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

// EventHandler serves post and chat reads
type EventHandler struct {
	queryBus *querybus.QueryBus
	errors   *pkgerrors.ErrorHandler
	logger   *zap.Logger
}

// NewEventHandler creates a new event handler
func NewEventHandler(queryBus *querybus.QueryBus, errors *pkgerrors.ErrorHandler, logger *zap.Logger) *EventHandler {
	return &EventHandler{queryBus: queryBus, errors: errors, logger: logger}
}

// Search handles GET /api/events/search?q=&type=&userId=
func (h *EventHandler) Search(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	result, err := h.queryBus.Ask(r.Context(), queries.SearchEventsQuery{
		Search:    params.Get("q"),
		EventType: params.Get("type"),
		UserID:    params.Get("userId"),
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}

// GetEvent handles GET /api/events/{eventId}?type=
func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventType := r.URL.Query().Get("type")
	if eventType == "" {
		eventType = string(entities.EventTypePost)
	}
	result, err := h.queryBus.Ask(r.Context(), queries.GetEventQuery{
		EventID:   chi.URLParam(r, "eventId"),
		EventType: eventType,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	event, _ := result.(*entities.Event)
	common.RespondJSON(w, http.StatusOK, toEventResponse(event))
}
