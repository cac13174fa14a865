package commands

import (
	"errors"

	"trustie-admin/domain/core/valueobjects"
)

// CreatePostCommand creates a draft post on behalf of UserID
type CreatePostCommand struct {
	UserID      string
	AdminID     string
	Title       string
	Description string
	Image       []byte
}

// Validate validates the CreatePostCommand
func (c CreatePostCommand) Validate() error {
	if c.UserID == "" {
		return errors.New("user ID is required")
	}
	if c.Title == "" {
		return errors.New("title is required")
	}
	if len(c.Image) == 0 {
		return errors.New("image is required")
	}
	return nil
}

// CreatePostResult is returned after the draft is persisted
type CreatePostResult struct {
	EventID     string `json:"eventId"`
	EventType   string `json:"eventType"`
	LowResURL   string `json:"lowResUrl"`
	HighResURL  string `json:"highResUrl"`
	PictureName string `json:"pictureName"`
}

// PublishPostCommand publishes a draft as UserID
type PublishPostCommand struct {
	PostID  string
	UserID  string
	AdminID string
}

// Validate validates the PublishPostCommand
func (c PublishPostCommand) Validate() error {
	if c.UserID == "" {
		return errors.New("user ID is required")
	}
	if _, err := valueobjects.ParsePostID(c.PostID); err != nil {
		return err
	}
	return nil
}
