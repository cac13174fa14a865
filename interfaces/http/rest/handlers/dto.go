package handlers

import (
	"trustie-admin/domain/core/entities"
)

// EventResponse is a post or chat record in its stored attribute names
type EventResponse struct {
	EventID        string   `json:"eventId"`
	EventType      string   `json:"eventType"`
	UserID         string   `json:"userId"`
	ForID          string   `json:"forId,omitempty"`
	Created        string   `json:"created"`
	Updated        string   `json:"updated"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Pictures       []string `json:"pictures"`
	PicturePath    string   `json:"picturePath"`
	Preview        string   `json:"preview,omitempty"`
	Privacy        string   `json:"privacy"`
	LastStatus     string   `json:"lastStatus"`
	Comments       int      `json:"comments"`
	Likes          int      `json:"likes"`
	Secret         bool     `json:"secret"`
	Balance        *float64 `json:"balance,omitempty"`
	NbContribution *int     `json:"nbContribution,omitempty"`
	Value          *float64 `json:"value,omitempty"`
}

func toEventResponse(e *entities.Event) *EventResponse {
	if e == nil {
		return nil
	}
	out := &EventResponse{
		EventID:     e.EventID,
		EventType:   string(e.EventType),
		UserID:      e.UserID,
		ForID:       e.ForID,
		Created:     e.Created,
		Updated:     e.Updated,
		Title:       e.Title,
		Description: e.Description,
		Pictures:    append([]string{}, e.Pictures...),
		PicturePath: e.PicturePath,
		Preview:     e.Preview,
		Privacy:     e.Privacy,
		LastStatus:  e.LastStatus,
		Comments:    e.Comments,
		Likes:       e.Likes,
		Secret:      e.Secret,
	}
	if e.Goal != nil {
		out.Balance = &e.Goal.Balance
		out.NbContribution = &e.Goal.NbContribution
		out.Value = &e.Goal.Value
	}
	return out
}

// toUserRecordResponse flattens a sub-record back into one attribute map
func toUserRecordResponse(rec *entities.UserRecord) map[string]interface{} {
	if rec == nil {
		return nil
	}
	out := make(map[string]interface{}, len(rec.Attributes)+2)
	for k, v := range rec.Attributes {
		out[k] = v
	}
	out["userId"] = rec.UserID
	out["primarySK"] = rec.PrimarySK
	return out
}

// ResourceResponse is a knowledge base resource
type ResourceResponse struct {
	ResourceID   string         `json:"resourceId"`
	SK           string         `json:"SK"`
	Title        string         `json:"title"`
	URL          string         `json:"url"`
	Author       string         `json:"author"`
	Type         string         `json:"type"`
	Status       string         `json:"status"`
	Notes        string         `json:"notes"`
	Tags         []entities.Tag `json:"tags"`
	DateAdded    string         `json:"dateAdded"`
	LastModified string         `json:"lastModified"`
}

func toResourceResponse(r entities.Resource) ResourceResponse {
	tags := r.Tags
	if tags == nil {
		tags = []entities.Tag{}
	}
	return ResourceResponse{
		ResourceID:   r.ResourceID,
		SK:           r.SK,
		Title:        r.Title,
		URL:          r.URL,
		Author:       r.Author,
		Type:         string(r.Type),
		Status:       string(r.Status),
		Notes:        r.Notes,
		Tags:         tags,
		DateAdded:    r.DateAdded,
		LastModified: r.LastModified,
	}
}
