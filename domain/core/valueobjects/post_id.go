package valueobjects

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Post id prefixes seen in the events table
const (
	PrefixFlash = "flash"
	PrefixGoal  = "goal"
	PrefixChat  = "chat"
)

// PostID is an event id of the form "<prefix>_<uuid>". The prefix decides the
// shape of records derived from the post.
type PostID struct {
	prefix string
	ref    string
}

// NewPostID creates a fresh id with the given prefix
func NewPostID(prefix string) PostID {
	return PostID{prefix: prefix, ref: uuid.NewString()}
}

// ParsePostID splits raw at its first underscore
func ParsePostID(raw string) (PostID, error) {
	i := strings.IndexByte(raw, '_')
	if i <= 0 || i == len(raw)-1 {
		return PostID{}, fmt.Errorf("invalid post id %q: expected <prefix>_<uuid>", raw)
	}
	return PostID{prefix: raw[:i], ref: raw[i+1:]}, nil
}

// Prefix returns the part before the first underscore
func (id PostID) Prefix() string { return id.prefix }

// Ref returns the uuid part shared by a post and its chat
func (id PostID) Ref() string { return id.ref }

// IsGoal reports whether records derived from this post carry goal fields
func (id PostID) IsGoal() bool { return id.prefix == PrefixGoal }

// ChatID returns the id of the chat record spawned when the post is published
func (id PostID) ChatID() string { return PrefixChat + "_" + id.ref }

// IsZero reports whether id was never set
func (id PostID) IsZero() bool { return id.prefix == "" && id.ref == "" }

func (id PostID) String() string { return id.prefix + "_" + id.ref }
