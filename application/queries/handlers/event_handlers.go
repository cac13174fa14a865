package handlers

import (
	"context"

	"go.uber.org/zap"

	"trustie-admin/application/ports"
	"trustie-admin/application/queries"
	"trustie-admin/domain/core/entities"
)

// eventSearchType is the search function's name for post records
const eventSearchType = "post"

// EventQueryHandler serves post and chat lookups
type EventQueryHandler struct {
	events ports.EventRepository
	search ports.SearchClient
	logger *zap.Logger
}

// NewEventQueryHandler creates a new event query handler
func NewEventQueryHandler(events ports.EventRepository, search ports.SearchClient, logger *zap.Logger) *EventQueryHandler {
	return &EventQueryHandler{
		events: events,
		search: search,
		logger: logger,
	}
}

// HandleGet returns the record or nil when it is absent or unreadable
func (h *EventQueryHandler) HandleGet(ctx context.Context, q queries.GetEventQuery) (*entities.Event, error) {
	eventType, err := entities.ParseEventType(q.EventType)
	if err != nil {
		return nil, err
	}

	event, err := h.events.Get(ctx, q.EventID, eventType)
	if err != nil {
		h.logger.Error("Failed to read event",
			zap.String("eventID", q.EventID),
			zap.String("eventType", q.EventType),
			zap.Error(err),
		)
		return nil, nil
	}
	return event, nil
}

// HandleSearch runs the remote event search. No hits selects the literal
// "null" id the publish form expects.
func (h *EventQueryHandler) HandleSearch(ctx context.Context, q queries.SearchEventsQuery) (*queries.Selection, error) {
	eventType := q.EventType
	if eventType == "" {
		eventType = eventSearchType
	}

	hits, err := h.search.SearchEvents(ctx, q.Search, eventType, q.UserID)
	if err != nil {
		return nil, err
	}
	sel := queries.NewSelection(hits, queries.NullSelection, "eventId", "userId")
	return &sel, nil
}
