package dynamodb

import (
	"context"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"go.uber.org/zap"

	"trustie-admin/domain/core/entities"
	pkgerrors "trustie-admin/pkg/errors"
	"trustie-admin/pkg/utils"
)

type tagItem struct {
	TagID string `dynamodbav:"tagId"`
	Name  string `dynamodbav:"name"`
}

// resourceItem is the stored shape of a knowledge base resource. PK repeats
// resourceId.
type resourceItem struct {
	PK           string    `dynamodbav:"PK"`
	SK           string    `dynamodbav:"SK"`
	ResourceID   string    `dynamodbav:"resourceId"`
	Title        string    `dynamodbav:"title"`
	URL          string    `dynamodbav:"url"`
	Author       string    `dynamodbav:"author,omitempty"`
	Type         string    `dynamodbav:"type"`
	Status       string    `dynamodbav:"status"`
	Notes        string    `dynamodbav:"notes,omitempty"`
	Tags         []tagItem `dynamodbav:"tags"`
	DateAdded    string    `dynamodbav:"dateAdded"`
	LastModified string    `dynamodbav:"lastModified"`
}

func toTagItems(tags []entities.Tag) []tagItem {
	out := make([]tagItem, 0, len(tags))
	for _, t := range tags {
		out = append(out, tagItem{TagID: t.TagID, Name: t.Name})
	}
	return out
}

func toResourceItem(r *entities.Resource) resourceItem {
	return resourceItem{
		PK:           r.ResourceID,
		SK:           r.SK,
		ResourceID:   r.ResourceID,
		Title:        r.Title,
		URL:          r.URL,
		Author:       r.Author,
		Type:         string(r.Type),
		Status:       string(r.Status),
		Notes:        r.Notes,
		Tags:         toTagItems(r.Tags),
		DateAdded:    r.DateAdded,
		LastModified: r.LastModified,
	}
}

func (item resourceItem) toEntity() entities.Resource {
	id := item.ResourceID
	if id == "" {
		id = item.PK
	}
	tags := make([]entities.Tag, 0, len(item.Tags))
	for _, t := range item.Tags {
		tags = append(tags, entities.Tag{TagID: t.TagID, Name: t.Name})
	}
	return entities.Resource{
		ResourceID:   id,
		SK:           item.SK,
		Title:        item.Title,
		URL:          item.URL,
		Author:       item.Author,
		Type:         entities.ResourceType(item.Type),
		Status:       entities.ResourceStatus(item.Status),
		Notes:        item.Notes,
		Tags:         tags,
		DateAdded:    item.DateAdded,
		LastModified: item.LastModified,
	}
}

// ResourceRepository stores knowledge base resources keyed by (PK, SK)
type ResourceRepository struct {
	store  *RecordStore
	logger *zap.Logger
}

// NewResourceRepository creates a new resource repository
func NewResourceRepository(store *RecordStore, logger *zap.Logger) *ResourceRepository {
	return &ResourceRepository{store: store, logger: logger}
}

// Create implements ports.ResourceRepository
func (r *ResourceRepository) Create(ctx context.Context, resource *entities.Resource) error {
	cond := expression.AttributeNotExists(expression.Name("PK"))
	return r.store.Put(ctx, toResourceItem(resource), &cond)
}

// Get implements ports.ResourceRepository
func (r *ResourceRepository) Get(ctx context.Context, resourceID, sk string) (*entities.Resource, error) {
	var item resourceItem
	found, err := r.store.Get(ctx, stringKey("PK", resourceID, "SK", sk), &item)
	if err != nil || !found {
		return nil, err
	}
	res := item.toEntity()
	return &res, nil
}

// Update implements ports.ResourceRepository. Only supplied attributes are
// set; the condition rejects a missing record and a lastModified that would
// not move forward.
func (r *ResourceRepository) Update(ctx context.Context, resourceID, sk string, patch entities.ResourcePatch, lastModified time.Time) (*entities.Resource, error) {
	stamp := utils.FormatISO(lastModified)
	update := expression.Set(expression.Name(entities.AttrLastModified), expression.Value(stamp))

	fields := patch.Fields()
	for _, name := range patch.FieldNames() {
		value := fields[name]
		if tags, ok := value.([]entities.Tag); ok {
			value = toTagItems(tags)
		}
		update = update.Set(expression.Name(name), expression.Value(value))
	}

	cond := expression.AttributeExists(expression.Name("PK")).
		And(expression.Name(entities.AttrLastModified).LessThan(expression.Value(stamp)))

	var item resourceItem
	err := r.store.Update(ctx, stringKey("PK", resourceID, "SK", sk), update, &cond, &item)
	if err == nil {
		res := item.toEntity()
		return &res, nil
	}
	if !pkgerrors.IsConflict(err) {
		return nil, err
	}
	if old, ok := conditionFailedItem(err); !ok || len(old) == 0 {
		return nil, pkgerrors.NewNotFoundError("resource " + resourceID)
	}
	return nil, err
}

// List implements ports.ResourceRepository, oldest first
func (r *ResourceRepository) List(ctx context.Context) ([]entities.Resource, error) {
	var items []resourceItem
	if err := r.store.ScanAll(ctx, &items); err != nil {
		return nil, err
	}
	out := make([]entities.Resource, 0, len(items))
	for _, item := range items {
		out = append(out, item.toEntity())
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SK < out[j].SK })
	return out, nil
}
