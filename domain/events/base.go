package events

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent is something that has already happened
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields
type BaseEvent struct {
	EventID     string    `json:"event_id"`
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

// EventTypePostPublished is the detail-type of PostPublished on the bus
const EventTypePostPublished = "post.published"

// PostPublished is raised once a post's chat record and counters are written.
// It is the fanout task: every consumer writes one feed pointer per user.
type PostPublished struct {
	BaseEvent
	PostID   string `json:"post_id"`
	ChatID   string `json:"chat_id"`
	AuthorID string `json:"author_id"`
	// FeedDate is the ISO timestamp embedded in every feed pointer key
	FeedDate string `json:"feed_date"`
}

// NewPostPublished creates the fanout task for a published chat
func NewPostPublished(postID, chatID, authorID, feedDate string, at time.Time) PostPublished {
	return PostPublished{
		BaseEvent: BaseEvent{
			EventID:     uuid.NewString(),
			AggregateID: chatID,
			EventType:   EventTypePostPublished,
			Timestamp:   at,
			Version:     1,
		},
		PostID:   postID,
		ChatID:   chatID,
		AuthorID: authorID,
		FeedDate: feedDate,
	}
}
