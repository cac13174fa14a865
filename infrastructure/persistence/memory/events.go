package memory

import (
	"context"
	"sync"

	"trustie-admin/application/ports"
	"trustie-admin/domain/core/entities"
	"trustie-admin/domain/core/valueobjects"
	pkgerrors "trustie-admin/pkg/errors"
)

type eventKey struct {
	eventID   string
	eventType entities.EventType
}

// EventRepository is an in-process events table
type EventRepository struct {
	mu     sync.RWMutex
	events map[eventKey]entities.Event
}

// NewEventRepository creates an empty table
func NewEventRepository() *EventRepository {
	return &EventRepository{events: make(map[eventKey]entities.Event)}
}

// Get implements ports.EventRepository
func (r *EventRepository) Get(ctx context.Context, eventID string, eventType entities.EventType) (*entities.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.events[eventKey{eventID: eventID, eventType: eventType}]
	if !ok {
		return nil, nil
	}
	return copyEvent(e), nil
}

// Create implements ports.EventRepository
func (r *EventRepository) Create(ctx context.Context, event *entities.Event) error {
	if err := event.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	key := eventKey{eventID: event.EventID, eventType: event.EventType}
	if _, exists := r.events[key]; exists {
		return pkgerrors.NewConflictError("event " + event.EventID + " already exists")
	}
	r.events[key] = *copyEvent(*event)
	return nil
}

// Put implements ports.EventRepository
func (r *EventRepository) Put(ctx context.Context, event *entities.Event) error {
	if err := event.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events[eventKey{eventID: event.EventID, eventType: event.EventType}] = *copyEvent(*event)
	return nil
}

// MarkPublished implements ports.EventRepository
func (r *EventRepository) MarkPublished(ctx context.Context, id valueobjects.PostID, token valueobjects.StatusToken, guard ports.PublishGuard) (*entities.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := eventKey{eventID: id.String(), eventType: entities.EventTypePost}
	post, ok := r.events[key]
	if !ok {
		return nil, pkgerrors.NewNotFoundError("post " + id.String())
	}
	if guard.ActorID != "" && post.UserID != guard.ActorID {
		return nil, pkgerrors.NewForbiddenError("You do not have the right to publish").WithCode(pkgerrors.CodeNotOwner)
	}
	if guard.RequireUnpublished && post.IsPublished() {
		return nil, pkgerrors.NewConflictError("post " + id.String() + " is already published")
	}

	post.LastStatus = valueobjects.StatusPublished
	post.Updated = token.String()
	r.events[key] = post
	return copyEvent(post), nil
}

func copyEvent(e entities.Event) *entities.Event {
	out := e
	out.Pictures = append([]string(nil), e.Pictures...)
	if e.Goal != nil {
		goal := *e.Goal
		out.Goal = &goal
	}
	return &out
}
