package dynamodb

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"go.uber.org/zap"

	"trustie-admin/application/ports"
	"trustie-admin/domain/core/entities"
	"trustie-admin/domain/core/valueobjects"
	pkgerrors "trustie-admin/pkg/errors"
)

// eventItem is the stored shape of post_detail and chat_detail records
type eventItem struct {
	EventID        string   `dynamodbav:"eventId"`
	EventType      string   `dynamodbav:"eventType"`
	UserID         string   `dynamodbav:"userId"`
	ForID          string   `dynamodbav:"forId,omitempty"`
	Created        string   `dynamodbav:"created"`
	Updated        string   `dynamodbav:"updated"`
	Title          string   `dynamodbav:"title"`
	Description    string   `dynamodbav:"description"`
	Pictures       []string `dynamodbav:"pictures,omitempty"`
	PicturePath    string   `dynamodbav:"picturePath,omitempty"`
	Preview        string   `dynamodbav:"preview,omitempty"`
	Privacy        string   `dynamodbav:"privacy"`
	LastStatus     string   `dynamodbav:"lastStatus"`
	Comments       int      `dynamodbav:"comments"`
	Likes          int      `dynamodbav:"likes"`
	Secret         bool     `dynamodbav:"secret"`
	Balance        *float64 `dynamodbav:"balance,omitempty"`
	NbContribution *int     `dynamodbav:"nbContribution,omitempty"`
	Value          *float64 `dynamodbav:"value,omitempty"`
}

func toEventItem(e *entities.Event) eventItem {
	item := eventItem{
		EventID:     e.EventID,
		EventType:   string(e.EventType),
		UserID:      e.UserID,
		ForID:       e.ForID,
		Created:     e.Created,
		Updated:     e.Updated,
		Title:       e.Title,
		Description: e.Description,
		Pictures:    e.Pictures,
		PicturePath: e.PicturePath,
		Preview:     e.Preview,
		Privacy:     e.Privacy,
		LastStatus:  e.LastStatus,
		Comments:    e.Comments,
		Likes:       e.Likes,
		Secret:      e.Secret,
	}
	if e.Goal != nil {
		balance, nb, value := e.Goal.Balance, e.Goal.NbContribution, e.Goal.Value
		item.Balance, item.NbContribution, item.Value = &balance, &nb, &value
	}
	return item
}

func (item eventItem) toEntity() *entities.Event {
	e := &entities.Event{
		EventID:     item.EventID,
		EventType:   entities.EventType(item.EventType),
		UserID:      item.UserID,
		ForID:       item.ForID,
		Created:     item.Created,
		Updated:     item.Updated,
		Title:       item.Title,
		Description: item.Description,
		Pictures:    item.Pictures,
		PicturePath: item.PicturePath,
		Preview:     item.Preview,
		Privacy:     item.Privacy,
		LastStatus:  item.LastStatus,
		Comments:    item.Comments,
		Likes:       item.Likes,
		Secret:      item.Secret,
	}
	if item.Balance != nil || item.NbContribution != nil || item.Value != nil {
		goal := &entities.GoalFields{}
		if item.Balance != nil {
			goal.Balance = *item.Balance
		}
		if item.NbContribution != nil {
			goal.NbContribution = *item.NbContribution
		}
		if item.Value != nil {
			goal.Value = *item.Value
		}
		e.Goal = goal
	}
	return e
}

// EventRepository stores posts and chats keyed by (eventId, eventType)
type EventRepository struct {
	store  *RecordStore
	logger *zap.Logger
}

// NewEventRepository creates a new event repository
func NewEventRepository(store *RecordStore, logger *zap.Logger) *EventRepository {
	return &EventRepository{store: store, logger: logger}
}

func eventKey(eventID string, eventType entities.EventType) Key {
	return stringKey("eventId", eventID, "eventType", string(eventType))
}

// Get implements ports.EventRepository
func (r *EventRepository) Get(ctx context.Context, eventID string, eventType entities.EventType) (*entities.Event, error) {
	var item eventItem
	found, err := r.store.Get(ctx, eventKey(eventID, eventType), &item)
	if err != nil || !found {
		return nil, err
	}
	return item.toEntity(), nil
}

// Create implements ports.EventRepository
func (r *EventRepository) Create(ctx context.Context, event *entities.Event) error {
	if err := event.Validate(); err != nil {
		return err
	}
	cond := expression.AttributeNotExists(expression.Name("eventId"))
	if err := r.store.Put(ctx, toEventItem(event), &cond); err != nil {
		if pkgerrors.IsConflict(err) {
			return pkgerrors.NewConflictError("event " + event.EventID + " already exists").WithCause(err)
		}
		return err
	}
	return nil
}

// Put implements ports.EventRepository
func (r *EventRepository) Put(ctx context.Context, event *entities.Event) error {
	if err := event.Validate(); err != nil {
		return err
	}
	return r.store.Put(ctx, toEventItem(event), nil)
}

// MarkPublished implements ports.EventRepository. The guard is part of the
// update condition; when it fails the old item tells which clause did.
func (r *EventRepository) MarkPublished(ctx context.Context, id valueobjects.PostID, token valueobjects.StatusToken, guard ports.PublishGuard) (*entities.Event, error) {
	update := expression.
		Set(expression.Name("lastStatus"), expression.Value(valueobjects.StatusPublished)).
		Set(expression.Name("updated"), expression.Value(token.String()))

	cond := expression.AttributeExists(expression.Name("eventId"))
	if guard.ActorID != "" {
		cond = cond.And(expression.Name("userId").Equal(expression.Value(guard.ActorID)))
	}
	if guard.RequireUnpublished {
		cond = cond.And(expression.Name("lastStatus").NotEqual(expression.Value(valueobjects.StatusPublished)))
	}

	var item eventItem
	err := r.store.Update(ctx, eventKey(id.String(), entities.EventTypePost), update, &cond, &item)
	if err == nil {
		return item.toEntity(), nil
	}
	if !pkgerrors.IsConflict(err) {
		return nil, err
	}

	old, ok := conditionFailedItem(err)
	if !ok || len(old) == 0 {
		return nil, pkgerrors.NewNotFoundError("post " + id.String())
	}
	var previous eventItem
	if uerr := attributevalue.UnmarshalMap(old, &previous); uerr != nil {
		return nil, pkgerrors.NewDatabaseError("unmarshal", uerr)
	}
	if guard.ActorID != "" && previous.UserID != guard.ActorID {
		return nil, pkgerrors.NewForbiddenError("You do not have the right to publish").WithCode(pkgerrors.CodeNotOwner)
	}
	return nil, pkgerrors.NewConflictError("post " + id.String() + " is already published")
}
