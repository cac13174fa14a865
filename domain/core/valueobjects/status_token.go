package valueobjects

import (
	"fmt"
	"strings"
	"time"

	"trustie-admin/pkg/utils"
)

// Lifecycle words used in status tokens and lastStatus
const (
	StatusCreated   = "created"
	StatusPublished = "published"
)

const activeMarker = "_active_"

// StatusToken is the compound "<prefix>_active_<status>_<iso>" value stored in
// the updated attribute of post and chat records. It sorts by prefix, then
// status, then time.
type StatusToken struct {
	Prefix string
	Status string
	At     time.Time
}

// NewStatusToken builds a token stamped at at
func NewStatusToken(prefix, status string, at time.Time) StatusToken {
	return StatusToken{Prefix: prefix, Status: status, At: at.UTC()}
}

func (t StatusToken) String() string {
	return t.Prefix + activeMarker + t.Status + "_" + utils.FormatISO(t.At)
}

// ParseStatusToken reverses String
func ParseStatusToken(raw string) (StatusToken, error) {
	i := strings.Index(raw, activeMarker)
	if i <= 0 {
		return StatusToken{}, fmt.Errorf("invalid status token %q", raw)
	}
	rest := raw[i+len(activeMarker):]
	j := strings.IndexByte(rest, '_')
	if j <= 0 {
		return StatusToken{}, fmt.Errorf("invalid status token %q", raw)
	}
	at, err := utils.ParseISO(rest[j+1:])
	if err != nil {
		return StatusToken{}, fmt.Errorf("invalid status token time %q: %w", raw, err)
	}
	return StatusToken{Prefix: raw[:i], Status: rest[:j], At: at.UTC()}, nil
}
