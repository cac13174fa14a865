package ports

import (
	"context"
	"time"

	"trustie-admin/domain/core/entities"
	"trustie-admin/domain/core/valueobjects"
)

// MaxBatchWrite is the store's ceiling on items per batch write
const MaxBatchWrite = 25

// PublishGuard narrows the conditional status flip of a post. The zero value
// only requires the post to exist.
type PublishGuard struct {
	// ActorID, when set, must equal the post's userId
	ActorID string
	// RequireUnpublished rejects posts that are already published
	RequireUnpublished bool
}

// EventRepository persists post and chat records. Get returns nil, nil when
// the record is absent.
type EventRepository interface {
	Get(ctx context.Context, eventID string, eventType entities.EventType) (*entities.Event, error)

	// Create writes a new record and fails with CONFLICT if the key exists
	Create(ctx context.Context, event *entities.Event) error

	// Put writes a record unconditionally
	Put(ctx context.Context, event *entities.Event) error

	// MarkPublished flips a post to published in one atomic update and returns
	// the full post after the update. Missing posts are NOT_FOUND; a failed
	// guard is FORBIDDEN (owner) or CONFLICT (already published).
	MarkPublished(ctx context.Context, id valueobjects.PostID, token valueobjects.StatusToken, guard PublishGuard) (*entities.Event, error)
}

// ProfilePage is one page of a filtered user scan
type ProfilePage struct {
	UserIDs []string
	// Next is empty once the scan is exhausted
	Next string
}

// UserRepository reads and writes sub-records of the users table
type UserRepository interface {
	// GetSection returns nil, nil when the user never wrote that section
	GetSection(ctx context.Context, userID string, section valueobjects.ProfileSection) (*entities.UserRecord, error)

	// ListByPrefix queries one user's records whose primarySK starts with prefix
	ListByPrefix(ctx context.Context, userID, prefix string) ([]entities.UserRecord, error)

	// ApplyPostStatus increments a post_status counter, creating the record if needed
	ApplyPostStatus(ctx context.Context, update entities.PostStatusUpdate) error

	// ScanProfiles returns the next page of users whose primarySK equals profileSK
	ScanProfiles(ctx context.Context, profileSK, cursor string) (ProfilePage, error)

	// PutFeedPointers writes at most MaxBatchWrite pointers in one call
	PutFeedPointers(ctx context.Context, pointers []entities.FeedPointer) error
}

// ResourceRepository persists knowledge base resources
type ResourceRepository interface {
	Create(ctx context.Context, resource *entities.Resource) error

	// Get returns nil, nil when absent
	Get(ctx context.Context, resourceID, sk string) (*entities.Resource, error)

	// Update merges patch and stamps lastModified, which must be later than the
	// stored value. Returns the record after the update.
	Update(ctx context.Context, resourceID, sk string, patch entities.ResourcePatch, lastModified time.Time) (*entities.Resource, error)

	// List returns every resource, following pagination to the end
	List(ctx context.Context) ([]entities.Resource, error)
}
