package handlers

import (
	"context"
	"fmt"
	"path"
	"strings"

	"go.uber.org/zap"

	"trustie-admin/application/commands"
	"trustie-admin/application/ports"
	"trustie-admin/domain/core/entities"
	"trustie-admin/domain/core/valueobjects"
	pkgerrors "trustie-admin/pkg/errors"
	"trustie-admin/pkg/utils"
)

const updateAttempts = 3

// ResourceHandler handles knowledge base writes
type ResourceHandler struct {
	resources ports.ResourceRepository
	clock     *utils.MonotonicClock
	logger    *zap.Logger
}

// NewResourceHandler creates a new resource handler
func NewResourceHandler(resources ports.ResourceRepository, clock *utils.MonotonicClock, logger *zap.Logger) *ResourceHandler {
	return &ResourceHandler{
		resources: resources,
		clock:     clock,
		logger:    logger,
	}
}

// HandleAdd executes the add resource command
func (h *ResourceHandler) HandleAdd(ctx context.Context, cmd commands.AddResourceCommand) (*entities.Resource, error) {
	resource, err := entities.NewResource(cmd.Input, h.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := h.resources.Create(ctx, resource); err != nil {
		return nil, pkgerrors.Wrap(err, "Failed to add resource")
	}

	h.logger.Info("Resource added",
		zap.String("resourceID", resource.ResourceID),
		zap.String("type", string(resource.Type)),
	)
	return resource, nil
}

// HandleUpdate executes the update resource command. The new lastModified is
// always later than the stored one; a concurrent writer that got there first
// causes a retry with a fresh stamp.
func (h *ResourceHandler) HandleUpdate(ctx context.Context, cmd commands.UpdateResourceCommand) (*entities.Resource, error) {
	var lastErr error
	for attempt := 0; attempt < updateAttempts; attempt++ {
		current, err := h.resources.Get(ctx, cmd.ResourceID, cmd.SK)
		if err != nil {
			return nil, pkgerrors.Wrap(err, "Failed to update resource")
		}
		if current == nil {
			return nil, pkgerrors.NewNotFoundError("resource " + cmd.ResourceID)
		}

		stored, err := utils.ParseISO(current.LastModified)
		var lastModified = h.clock.Now()
		if err == nil {
			lastModified = h.clock.After(stored)
		}

		updated, err := h.resources.Update(ctx, cmd.ResourceID, cmd.SK, cmd.Patch, lastModified)
		if err == nil {
			h.logger.Info("Resource updated",
				zap.String("resourceID", cmd.ResourceID),
				zap.Strings("fields", cmd.Patch.FieldNames()),
			)
			return updated, nil
		}
		if !pkgerrors.IsConflict(err) {
			return nil, pkgerrors.Wrap(err, "Failed to update resource")
		}
		lastErr = err
	}
	return nil, lastErr
}

// KnowledgeFileHandler uploads files to the knowledge bucket through a signed
// URL
type KnowledgeFileHandler struct {
	store     ports.KnowledgeFileStore
	clock     utils.Clock
	namespace string
	publicURL string
	logger    *zap.Logger
}

// NewKnowledgeFileHandler creates a new knowledge file handler. publicURL,
// when set, is the base that file names are appended to in results.
func NewKnowledgeFileHandler(store ports.KnowledgeFileStore, clock utils.Clock, namespace, publicURL string, logger *zap.Logger) *KnowledgeFileHandler {
	return &KnowledgeFileHandler{
		store:     store,
		clock:     clock,
		namespace: namespace,
		publicURL: strings.TrimSuffix(publicURL, "/"),
		logger:    logger,
	}
}

// Handle executes the upload knowledge file command
func (h *KnowledgeFileHandler) Handle(ctx context.Context, cmd commands.UploadKnowledgeFileCommand) (*commands.UploadKnowledgeFileResult, error) {
	fileName := fmt.Sprintf("%d-%s", h.clock.Now().UnixMilli(), path.Base(cmd.FileName))
	key := valueobjects.ObjectKey(h.namespace, fileName)

	permanent, err := h.store.UploadViaSignedURL(ctx, key, cmd.Body, cmd.ContentType)
	if err != nil {
		return nil, err
	}

	url := permanent
	if h.publicURL != "" {
		url = h.publicURL + "/" + fileName
	}
	h.logger.Info("Knowledge file uploaded",
		zap.String("key", key),
		zap.Int("bytes", len(cmd.Body)),
	)
	return &commands.UploadKnowledgeFileResult{Key: key, URL: url}, nil
}
