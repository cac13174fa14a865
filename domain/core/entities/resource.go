package entities

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	pkgerrors "trustie-admin/pkg/errors"
	"trustie-admin/pkg/utils"
)

// ResourceType values are stored as their display labels
type ResourceType string

const (
	ResourceAppOrTool ResourceType = "📱  App or Tool"
	ResourceArticle   ResourceType = "📰  Article"
	ResourceBlog      ResourceType = "💬  Blog"
	ResourceBook      ResourceType = "📚  Book"
	ResourceCourse    ResourceType = "🎓  Course"
	ResourceOther     ResourceType = "🔍  Other"
	ResourcePodcast   ResourceType = "🎧  Podcast"
	ResourceSocial    ResourceType = "👥  Social"
	ResourceVideo     ResourceType = "🎥  Video"
	ResourceWebsite   ResourceType = "🌐  Website"
)

// ResourceTypes lists the accepted types in display order
var ResourceTypes = []ResourceType{
	ResourceAppOrTool, ResourceArticle, ResourceBlog, ResourceBook, ResourceCourse,
	ResourceOther, ResourcePodcast, ResourceSocial, ResourceVideo, ResourceWebsite,
}

// ResourceStatus values are stored as their display labels
type ResourceStatus string

const (
	StatusIdentified    ResourceStatus = "🚩  Identified"
	StatusPurchased     ResourceStatus = "🛒  Purchased"
	StatusDownloaded    ResourceStatus = "📥  Downloaded"
	StatusContentReview ResourceStatus = "✍️  Content Reviewed"
	StatusTagged        ResourceStatus = "🏷️  Tagged and Curated"
	StatusIngested      ResourceStatus = "🗄️  Database ingested"
)

// ResourceStatuses lists the accepted statuses in workflow order
var ResourceStatuses = []ResourceStatus{
	StatusIdentified, StatusPurchased, StatusDownloaded, StatusContentReview, StatusTagged, StatusIngested,
}

// Tag labels a resource
type Tag struct {
	TagID string `json:"tagId" validate:"required"`
	Name  string `json:"name" validate:"required"`
}

// DefaultTags seeds the tag picker
var DefaultTags = []Tag{
	{TagID: "1", Name: "Investing"},
	{TagID: "2", Name: "Savings"},
	{TagID: "3", Name: "Credit"},
	{TagID: "4", Name: "Taxes"},
	{TagID: "5", Name: "Insurance"},
	{TagID: "6", Name: "Retirement"},
	{TagID: "7", Name: "Real Estate"},
}

// Resource is a knowledge base entry keyed by (resourceId, SK)
type Resource struct {
	ResourceID   string
	SK           string
	Title        string
	URL          string
	Author       string
	Type         ResourceType
	Status       ResourceStatus
	Notes        string
	Tags         []Tag
	DateAdded    string
	LastModified string
}

// NewResourceInput holds the caller-supplied fields of a new resource
type NewResourceInput struct {
	Title  string
	URL    string
	Author string
	Type   ResourceType
	Status ResourceStatus
	Notes  string
	Tags   []Tag
}

// NewResource assigns an id and a creation timestamp that doubles as SK
func NewResource(in NewResourceInput, now time.Time) (*Resource, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, pkgerrors.NewValidationError("title is required")
	}
	if err := validateType(in.Type); err != nil {
		return nil, err
	}
	if err := validateStatus(in.Status); err != nil {
		return nil, err
	}

	stamp := utils.FormatISO(now)
	return &Resource{
		ResourceID:   uuid.NewString(),
		SK:           stamp,
		Title:        in.Title,
		URL:          in.URL,
		Author:       in.Author,
		Type:         in.Type,
		Status:       in.Status,
		Notes:        in.Notes,
		Tags:         append([]Tag{}, in.Tags...),
		DateAdded:    stamp,
		LastModified: stamp,
	}, nil
}

func validateType(t ResourceType) error {
	for _, known := range ResourceTypes {
		if t == known {
			return nil
		}
	}
	return pkgerrors.NewValidationError(fmt.Sprintf("unknown resource type %q", t))
}

func validateStatus(s ResourceStatus) error {
	for _, known := range ResourceStatuses {
		if s == known {
			return nil
		}
	}
	return pkgerrors.NewValidationError(fmt.Sprintf("unknown resource status %q", s))
}

// Stored attribute names of mutable resource fields
const (
	AttrTitle        = "title"
	AttrURL          = "url"
	AttrAuthor       = "author"
	AttrType         = "type"
	AttrStatus       = "status"
	AttrNotes        = "notes"
	AttrTags         = "tags"
	AttrLastModified = "lastModified"
)

// ResourcePatch is a sparse update. Nil fields are left untouched.
// ResourceID and SK may be echoed back but never changed.
type ResourcePatch struct {
	ResourceID *string
	SK         *string
	Title      *string
	URL        *string
	Author     *string
	Type       *ResourceType
	Status     *ResourceStatus
	Notes      *string
	Tags       *[]Tag
}

// Validate rejects identifier changes and unknown enum values
func (p ResourcePatch) Validate(resourceID, sk string) error {
	if p.ResourceID != nil && *p.ResourceID != resourceID {
		return pkgerrors.NewValidationError("resourceId cannot be changed").WithCode(pkgerrors.CodeImmutableField)
	}
	if p.SK != nil && *p.SK != sk {
		return pkgerrors.NewValidationError("SK cannot be changed").WithCode(pkgerrors.CodeImmutableField)
	}
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return pkgerrors.NewValidationError("title cannot be empty")
	}
	if p.Type != nil {
		if err := validateType(*p.Type); err != nil {
			return err
		}
	}
	if p.Status != nil {
		if err := validateStatus(*p.Status); err != nil {
			return err
		}
	}
	return nil
}

// Fields returns the supplied attributes keyed by stored attribute name
func (p ResourcePatch) Fields() map[string]interface{} {
	fields := make(map[string]interface{})
	if p.Title != nil {
		fields[AttrTitle] = *p.Title
	}
	if p.URL != nil {
		fields[AttrURL] = *p.URL
	}
	if p.Author != nil {
		fields[AttrAuthor] = *p.Author
	}
	if p.Type != nil {
		fields[AttrType] = string(*p.Type)
	}
	if p.Status != nil {
		fields[AttrStatus] = string(*p.Status)
	}
	if p.Notes != nil {
		fields[AttrNotes] = *p.Notes
	}
	if p.Tags != nil {
		fields[AttrTags] = append([]Tag{}, (*p.Tags)...)
	}
	return fields
}

// FieldNames returns the supplied attribute names in a stable order
func (p ResourcePatch) FieldNames() []string {
	fields := p.Fields()
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Apply returns a copy of r with the patch and the new lastModified applied
func (p ResourcePatch) Apply(r Resource, lastModified time.Time) Resource {
	out := r
	out.Tags = append([]Tag(nil), r.Tags...)
	if p.Title != nil {
		out.Title = *p.Title
	}
	if p.URL != nil {
		out.URL = *p.URL
	}
	if p.Author != nil {
		out.Author = *p.Author
	}
	if p.Type != nil {
		out.Type = *p.Type
	}
	if p.Status != nil {
		out.Status = *p.Status
	}
	if p.Notes != nil {
		out.Notes = *p.Notes
	}
	if p.Tags != nil {
		out.Tags = append([]Tag{}, (*p.Tags)...)
	}
	out.LastModified = utils.FormatISO(lastModified)
	return out
}

// ResourceFilter narrows a resource list after retrieval. Empty criteria match
// everything.
type ResourceFilter struct {
	Search   string
	Types    []ResourceType
	TagIDs   []string
	Statuses []ResourceStatus
}

// Matches reports whether r satisfies every criterion
func (f ResourceFilter) Matches(r Resource) bool {
	if f.Search != "" && !strings.Contains(strings.ToLower(r.Title), strings.ToLower(f.Search)) {
		return false
	}
	if len(f.Types) > 0 && !containsType(f.Types, r.Type) {
		return false
	}
	if len(f.Statuses) > 0 && !containsStatus(f.Statuses, r.Status) {
		return false
	}
	for _, want := range f.TagIDs {
		if !hasTag(r.Tags, want) {
			return false
		}
	}
	return true
}

// Apply keeps the matching resources in their original order
func (f ResourceFilter) Apply(resources []Resource) []Resource {
	out := make([]Resource, 0, len(resources))
	for _, r := range resources {
		if f.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}

func containsType(types []ResourceType, t ResourceType) bool {
	for _, x := range types {
		if x == t {
			return true
		}
	}
	return false
}

func containsStatus(statuses []ResourceStatus, s ResourceStatus) bool {
	for _, x := range statuses {
		if x == s {
			return true
		}
	}
	return false
}

func hasTag(tags []Tag, id string) bool {
	for _, t := range tags {
		if t.TagID == id {
			return true
		}
	}
	return false
}
