package queries

import (
	"errors"
	"fmt"
	"strings"

	"trustie-admin/domain/core/entities"
	"trustie-admin/domain/core/valueobjects"
)

// GetProfileSectionQuery reads one sub-record of a user
type GetProfileSectionQuery struct {
	UserID  string
	Section string
}

// Validate validates the GetProfileSectionQuery
func (q GetProfileSectionQuery) Validate() error {
	if q.UserID == "" {
		return errors.New("user ID is required")
	}
	_, err := valueobjects.ParseProfileSection(q.Section)
	return err
}

// GetUserAccountsQuery lists a user's wallet records
type GetUserAccountsQuery struct {
	UserID string
}

// Validate validates the GetUserAccountsQuery
func (q GetUserAccountsQuery) Validate() error {
	if q.UserID == "" {
		return errors.New("user ID is required")
	}
	return nil
}

// SearchUsersQuery runs the remote user search
type SearchUsersQuery struct {
	Search string
}

// Validate validates the SearchUsersQuery
func (q SearchUsersQuery) Validate() error {
	if strings.TrimSpace(q.Search) == "" {
		return errors.New("search term is required")
	}
	return nil
}

// GetEventQuery reads one post or chat record
type GetEventQuery struct {
	EventID   string
	EventType string
}

// Validate validates the GetEventQuery
func (q GetEventQuery) Validate() error {
	if q.EventID == "" {
		return errors.New("event ID is required")
	}
	_, err := entities.ParseEventType(q.EventType)
	return err
}

// SearchEventsQuery runs the remote event search
type SearchEventsQuery struct {
	Search    string
	EventType string
	UserID    string
}

// Validate validates the SearchEventsQuery
func (q SearchEventsQuery) Validate() error {
	if strings.TrimSpace(q.Search) == "" {
		return errors.New("search term is required")
	}
	return nil
}

// Usage statistics kinds
const (
	StatsGrowth = "growth"
	StatsUsage  = "usage"
)

// GetUsageStatsQuery fetches a precomputed statistics series
type GetUsageStatsQuery struct {
	StatsType string
}

// Validate validates the GetUsageStatsQuery
func (q GetUsageStatsQuery) Validate() error {
	switch q.StatsType {
	case StatsGrowth, StatsUsage:
		return nil
	}
	return fmt.Errorf("statsType must be %q or %q", StatsGrowth, StatsUsage)
}

// ListResourcesQuery lists knowledge base resources matching Filter
type ListResourcesQuery struct {
	Filter entities.ResourceFilter
}

// Validate validates the ListResourcesQuery
func (q ListResourcesQuery) Validate() error { return nil }

// GetImageURLQuery signs a download URL for protected/<PicturePath>/<Name>
type GetImageURLQuery struct {
	PicturePath string
	Name        string
}

// Validate validates the GetImageURLQuery
func (q GetImageURLQuery) Validate() error {
	if q.PicturePath == "" || q.Name == "" {
		return errors.New("picture path and name are required")
	}
	return nil
}
