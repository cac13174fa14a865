package entities

import (
	"fmt"
	"time"

	"trustie-admin/domain/core/valueobjects"
	pkgerrors "trustie-admin/pkg/errors"
	"trustie-admin/pkg/utils"
)

// EventType is the sort key of the events table and the discriminant of Event
type EventType string

const (
	EventTypePost EventType = "post_detail"
	EventTypeChat EventType = "chat_detail"
)

// ParseEventType validates the discriminant read from storage or a request
func ParseEventType(raw string) (EventType, error) {
	switch t := EventType(raw); t {
	case EventTypePost, EventTypeChat:
		return t, nil
	}
	return "", fmt.Errorf("unknown eventType %q", raw)
}

const (
	PrivacyPublic   = "public"
	PostPicturePath = "eu-west-1:admin"
)

// GoalFields are carried by records whose id has the goal prefix
type GoalFields struct {
	Balance        float64
	NbContribution int
	Value          float64
}

// Event is a post_detail or chat_detail record. EventType selects the variant
// and Validate enforces the per-variant rules.
type Event struct {
	EventID     string
	EventType   EventType
	UserID      string
	ForID       string
	Created     string
	Updated     string
	Title       string
	Description string
	Pictures    []string
	PicturePath string
	Preview     string
	Privacy     string
	LastStatus  string
	Comments    int
	Likes       int
	Secret      bool
	Goal        *GoalFields
}

// Validate checks the record against its variant
func (e *Event) Validate() error {
	if e.EventID == "" {
		return pkgerrors.NewValidationError("eventId is required")
	}
	switch e.EventType {
	case EventTypePost:
		if e.LastStatus != valueobjects.StatusCreated && e.LastStatus != valueobjects.StatusPublished {
			return pkgerrors.NewValidationError(fmt.Sprintf("post %s has invalid lastStatus %q", e.EventID, e.LastStatus))
		}
	case EventTypeChat:
		if e.LastStatus != valueobjects.StatusPublished {
			return pkgerrors.NewValidationError(fmt.Sprintf("chat %s has invalid lastStatus %q", e.EventID, e.LastStatus))
		}
	default:
		return pkgerrors.NewValidationError(fmt.Sprintf("event %s has unknown eventType %q", e.EventID, e.EventType))
	}
	return nil
}

// IsOwnedBy reports whether userID authored the record
func (e *Event) IsOwnedBy(userID string) bool {
	return userID != "" && e.UserID == userID
}

// IsPublished reports whether the record reached its final state
func (e *Event) IsPublished() bool {
	return e.LastStatus == valueobjects.StatusPublished
}

// DraftPost is the input of NewDraftPost
type DraftPost struct {
	UserID      string
	Title       string
	Description string
	PictureName string
	Preview     string
}

// NewDraftPost creates a flash post in the created state
func NewDraftPost(in DraftPost, now time.Time) (*Event, error) {
	if in.UserID == "" {
		return nil, pkgerrors.NewValidationError("userId is required")
	}
	if in.Title == "" {
		return nil, pkgerrors.NewValidationError("title is required")
	}

	id := valueobjects.NewPostID(valueobjects.PrefixFlash)
	post := &Event{
		EventID:     id.String(),
		EventType:   EventTypePost,
		UserID:      in.UserID,
		ForID:       in.UserID,
		Created:     utils.FormatISO(now),
		Updated:     valueobjects.NewStatusToken(id.Prefix(), valueobjects.StatusCreated, now).String(),
		Title:       in.Title,
		Description: in.Description,
		PicturePath: PostPicturePath,
		Preview:     in.Preview,
		Privacy:     PrivacyPublic,
		LastStatus:  valueobjects.StatusCreated,
	}
	if in.PictureName != "" {
		post.Pictures = []string{valueobjects.PictureRef{Index: 0, Name: in.PictureName}.String()}
	}
	return post, nil
}

// ToChat derives the chat record spawned when the post is published.
// Counters start at zero; goal posts carry their target value.
func (e *Event) ToChat(id valueobjects.PostID, now time.Time) *Event {
	chat := &Event{
		EventID:     id.ChatID(),
		EventType:   EventTypeChat,
		UserID:      e.UserID,
		ForID:       e.ForID,
		Created:     utils.FormatISO(now),
		Updated:     valueobjects.NewStatusToken(valueobjects.PrefixChat, valueobjects.StatusPublished, now).String(),
		Title:       e.Title,
		Description: e.Description,
		Pictures:    append([]string(nil), e.Pictures...),
		PicturePath: e.PicturePath,
		Preview:     e.Preview,
		Privacy:     e.Privacy,
		LastStatus:  valueobjects.StatusPublished,
	}
	if id.IsGoal() {
		goal := &GoalFields{}
		if e.Goal != nil {
			goal.Value = e.Goal.Value
		}
		chat.Goal = goal
	}
	return chat
}
