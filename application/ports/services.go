package ports

import (
	"context"
	"encoding/json"
	"time"

	"trustie-admin/domain/events"
)

// ObjectStore writes objects and signs URLs against one bucket
type ObjectStore interface {
	// Upload writes body under key, replacing any existing object, and returns
	// the permanent URL
	Upload(ctx context.Context, key string, body []byte, contentType string) (string, error)

	// SignedDownloadURL signs a GET for protected/<path>/<name>
	SignedDownloadURL(ctx context.Context, path, name string, ttl time.Duration) (string, error)

	// SignedUploadURL signs a PUT for key
	SignedUploadURL(ctx context.Context, key, contentType string, ttl time.Duration) (string, error)

	// UploadViaSignedURL signs a PUT for key and sends body to it directly
	UploadViaSignedURL(ctx context.Context, key string, body []byte, contentType string) (string, error)

	// PermanentURL is the unsigned URL of key
	PermanentURL(key string) string
}

// UserFileStore is the bucket holding post images
type UserFileStore interface{ ObjectStore }

// KnowledgeFileStore is the bucket holding knowledge base uploads
type KnowledgeFileStore interface{ ObjectStore }

// ImageVariants are the three encodings derived from one upload
type ImageVariants struct {
	Thumbnail []byte
	Low       []byte
	High      []byte
}

// ImageTransformer derives the fixed-width variants of an image
type ImageTransformer interface {
	Transform(ctx context.Context, data []byte) (*ImageVariants, error)
}

// SearchHit is one opaque match returned by the remote search function
type SearchHit map[string]interface{}

// SearchClient calls the remote search and statistics functions
type SearchClient interface {
	SearchUsers(ctx context.Context, search string) ([]SearchHit, error)
	SearchEvents(ctx context.Context, search, eventType, userID string) ([]SearchHit, error)
	UsageStats(ctx context.Context, statsType string) (json.RawMessage, error)
}

// FanoutDispatcher hands a fanout task to whatever runs it. A nil error means
// the task was accepted, not that it completed.
type FanoutDispatcher interface {
	Dispatch(ctx context.Context, task events.PostPublished) error
}

// DeadLetter is a fanout task that did not complete
type DeadLetter struct {
	ID        string               `json:"id"`
	Task      events.PostPublished `json:"task"`
	Cursor    string               `json:"cursor,omitempty"`
	Delivered int                  `json:"delivered"`
	Reason    string               `json:"reason"`
	FailedAt  time.Time            `json:"failed_at"`
}

// DeadLetterStore is the failure channel of the fanout handoff
type DeadLetterStore interface {
	Record(ctx context.Context, letter DeadLetter) error
	List(ctx context.Context, limit int) ([]DeadLetter, error)
	Get(ctx context.Context, id string) (*DeadLetter, error)
	Delete(ctx context.Context, id string) error
}

// FanoutMetrics receives one observation per fanout run
type FanoutMetrics interface {
	RecordFanout(ctx context.Context, delivered, batches int, err error)
}
