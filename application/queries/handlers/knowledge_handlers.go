package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"trustie-admin/application/ports"
	"trustie-admin/application/queries"
	"trustie-admin/domain/core/entities"
	pkgerrors "trustie-admin/pkg/errors"
)

// ResourceQueryHandler lists knowledge base resources
type ResourceQueryHandler struct {
	resources ports.ResourceRepository
	logger    *zap.Logger
}

// NewResourceQueryHandler creates a new resource query handler
func NewResourceQueryHandler(resources ports.ResourceRepository, logger *zap.Logger) *ResourceQueryHandler {
	return &ResourceQueryHandler{resources: resources, logger: logger}
}

// Handle reads every resource and filters in process
func (h *ResourceQueryHandler) Handle(ctx context.Context, q queries.ListResourcesQuery) ([]entities.Resource, error) {
	all, err := h.resources.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "Failed to list resources")
	}
	filtered := q.Filter.Apply(all)
	h.logger.Debug("Resources listed",
		zap.Int("total", len(all)),
		zap.Int("matched", len(filtered)),
	)
	return filtered, nil
}

// ImageURLHandler signs download URLs for post pictures
type ImageURLHandler struct {
	files ports.UserFileStore
	ttl   time.Duration
}

// NewImageURLHandler creates a new image URL handler
func NewImageURLHandler(files ports.UserFileStore, ttl time.Duration) *ImageURLHandler {
	return &ImageURLHandler{files: files, ttl: ttl}
}

// Handle returns a signed GET URL
func (h *ImageURLHandler) Handle(ctx context.Context, q queries.GetImageURLQuery) (string, error) {
	return h.files.SignedDownloadURL(ctx, q.PicturePath, q.Name, h.ttl)
}

// UsageStatsHandler fetches dashboard statistics
type UsageStatsHandler struct {
	search ports.SearchClient
	logger *zap.Logger
}

// NewUsageStatsHandler creates a new usage stats handler
func NewUsageStatsHandler(search ports.SearchClient, logger *zap.Logger) *UsageStatsHandler {
	return &UsageStatsHandler{search: search, logger: logger}
}

// Handle returns the statistics payload untouched
func (h *UsageStatsHandler) Handle(ctx context.Context, q queries.GetUsageStatsQuery) (json.RawMessage, error) {
	stats, err := h.search.UsageStats(ctx, q.StatsType)
	if err != nil {
		h.logger.Error("Failed to fetch usage stats",
			zap.String("statsType", q.StatsType),
			zap.Error(err),
		)
		appErr := pkgerrors.NewExternalError("usage-stats", err).WithDetail("statsType", q.StatsType)
		appErr.Message = fmt.Sprintf("Error fetching %s data", q.StatsType)
		return nil, appErr
	}
	return stats, nil
}
