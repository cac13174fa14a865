package valueobjects

import (
	"fmt"
	"strings"
)

// ProfileSection is the primarySK of a single-record user sub-record
type ProfileSection string

const (
	SectionBasicProfile ProfileSection = "profile_basic"
	SectionDetails      ProfileSection = "details"
	SectionSettings     ProfileSection = "setting_user"
	SectionPostStatus   ProfileSection = "post_status"
)

// Sort-key prefixes for multi-record user families
const (
	FeedPrefix   = "feed_"
	WalletPrefix = "wallet_"
)

// ParseProfileSection validates a section name
func ParseProfileSection(raw string) (ProfileSection, error) {
	switch s := ProfileSection(raw); s {
	case SectionBasicProfile, SectionDetails, SectionSettings, SectionPostStatus:
		return s, nil
	}
	return "", fmt.Errorf("unknown profile section %q", raw)
}

// FeedPointerSK builds the primarySK of a feed pointer record
func FeedPointerSK(date, chatID string) string {
	return FeedPrefix + date + "_" + chatID
}

// IsFeedPointerSK reports whether sk addresses a feed pointer
func IsFeedPointerSK(sk string) bool {
	return strings.HasPrefix(sk, FeedPrefix)
}
