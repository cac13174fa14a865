package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"trustie-admin/domain/core/entities"
	pkgerrors "trustie-admin/pkg/errors"
	"trustie-admin/pkg/utils"
)

type resourceKey struct {
	resourceID string
	sk         string
}

// ResourceRepository is an in-process knowledge table
type ResourceRepository struct {
	mu        sync.RWMutex
	resources map[resourceKey]entities.Resource
}

// NewResourceRepository creates an empty table
func NewResourceRepository() *ResourceRepository {
	return &ResourceRepository{resources: make(map[resourceKey]entities.Resource)}
}

// Create implements ports.ResourceRepository
func (r *ResourceRepository) Create(ctx context.Context, resource *entities.Resource) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := resourceKey{resourceID: resource.ResourceID, sk: resource.SK}
	if _, exists := r.resources[key]; exists {
		return pkgerrors.NewConflictError("resource " + resource.ResourceID + " already exists")
	}
	r.resources[key] = copyResource(*resource)
	return nil
}

// Get implements ports.ResourceRepository
func (r *ResourceRepository) Get(ctx context.Context, resourceID, sk string) (*entities.Resource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res, ok := r.resources[resourceKey{resourceID: resourceID, sk: sk}]
	if !ok {
		return nil, nil
	}
	out := copyResource(res)
	return &out, nil
}

// Update implements ports.ResourceRepository
func (r *ResourceRepository) Update(ctx context.Context, resourceID, sk string, patch entities.ResourcePatch, lastModified time.Time) (*entities.Resource, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := resourceKey{resourceID: resourceID, sk: sk}
	current, ok := r.resources[key]
	if !ok {
		return nil, pkgerrors.NewNotFoundError("resource " + resourceID)
	}
	if utils.FormatISO(lastModified) <= current.LastModified {
		return nil, pkgerrors.NewConflictError("resource " + resourceID + " was modified concurrently")
	}

	updated := patch.Apply(current, lastModified)
	r.resources[key] = copyResource(updated)
	out := copyResource(updated)
	return &out, nil
}

// List implements ports.ResourceRepository
func (r *ResourceRepository) List(ctx context.Context) ([]entities.Resource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]entities.Resource, 0, len(r.resources))
	for _, res := range r.resources {
		out = append(out, copyResource(res))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SK < out[j].SK })
	return out, nil
}

func copyResource(res entities.Resource) entities.Resource {
	res.Tags = append([]entities.Tag(nil), res.Tags...)
	return res
}
