package entities

import (
	"time"

	"trustie-admin/domain/core/valueobjects"
	"trustie-admin/pkg/utils"
)

// Counters kept on the post_status record
const (
	CounterPublished = "published"
	CounterWritten   = "written"
)

// UserRecord is any sub-record of the users table. Attribute sets differ per
// section and are passed through untouched.
type UserRecord struct {
	UserID     string
	PrimarySK  string
	Attributes map[string]interface{}
}

// FeedPointer points a user's feed at a published chat. Pointers are written
// once and never updated.
type FeedPointer struct {
	UserID    string
	PrimarySK string
	FriendID  string
}

// NewFeedPointer builds the pointer for one recipient
func NewFeedPointer(recipientID, date, chatID, authorID string) FeedPointer {
	return FeedPointer{
		UserID:    recipientID,
		PrimarySK: valueobjects.FeedPointerSK(date, chatID),
		FriendID:  authorID,
	}
}

// PostStatusUpdate increments one counter on a user's post_status record and
// optionally refreshes the cover picture fields.
type PostStatusUpdate struct {
	UserID      string
	Counter     string
	Updated     string
	HasPicture  bool
	Picture     string
	Preview     string
	PicturePath string
}

// PostStatusUpdateFor derives the counter update for a freshly published post
func PostStatusUpdateFor(post *Event, id valueobjects.PostID, now time.Time) PostStatusUpdate {
	update := PostStatusUpdate{
		UserID:  post.UserID,
		Counter: CounterWritten,
		Updated: utils.FormatISO(now),
	}
	if id.IsGoal() {
		update.Counter = CounterPublished
	}
	if len(post.Pictures) > 0 {
		cover, _ := valueobjects.CoverPicture(post.Pictures)
		update.HasPicture = true
		update.Picture = cover
		update.Preview = post.Preview
		update.PicturePath = post.PicturePath
	}
	return update
}
