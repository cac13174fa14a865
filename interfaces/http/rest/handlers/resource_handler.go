package handlers

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"trustie-admin/application/commands"
	"trustie-admin/application/commands/bus"
	"trustie-admin/application/queries"
	querybus "trustie-admin/application/queries/bus"
	"trustie-admin/domain/core/entities"
	"trustie-admin/pkg/common"
	pkgerrors "trustie-admin/pkg/errors"
	"trustie-admin/pkg/utils"
)

// ResourceHandler serves the knowledge base
type ResourceHandler struct {
	commandBus   *bus.CommandBus
	queryBus     *querybus.QueryBus
	errors       *pkgerrors.ErrorHandler
	maxFileBytes int64
	logger       *zap.Logger
}

// NewResourceHandler creates a new resource handler
func NewResourceHandler(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	errors *pkgerrors.ErrorHandler,
	maxFileBytes int64,
	logger *zap.Logger,
) *ResourceHandler {
	return &ResourceHandler{
		commandBus:   commandBus,
		queryBus:     queryBus,
		errors:       errors,
		maxFileBytes: maxFileBytes,
		logger:       logger,
	}
}

// ListResources handles GET /api/resources. Repeated type, tag and status
// parameters are OR-ed within a criterion; criteria are AND-ed.
func (h *ResourceHandler) ListResources(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	filter := entities.ResourceFilter{
		Search: params.Get("search"),
		TagIDs: params["tag"],
	}
	for _, t := range params["type"] {
		filter.Types = append(filter.Types, entities.ResourceType(t))
	}
	for _, s := range params["status"] {
		filter.Statuses = append(filter.Statuses, entities.ResourceStatus(s))
	}

	result, err := h.queryBus.Ask(r.Context(), queries.ListResourcesQuery{Filter: filter})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	resources, _ := result.([]entities.Resource)
	out := make([]ResourceResponse, 0, len(resources))
	for _, res := range resources {
		out = append(out, toResourceResponse(res))
	}
	common.RespondList(w, r, out, len(out))
}

// AddResourceRequest is the body of POST /api/resources
type AddResourceRequest struct {
	Title  string         `json:"title" validate:"required,max=500"`
	URL    string         `json:"url" validate:"omitempty,url"`
	Author string         `json:"author"`
	Type   string         `json:"type" validate:"required"`
	Status string         `json:"status" validate:"required"`
	Notes  string         `json:"notes"`
	Tags   []entities.Tag `json:"tags" validate:"omitempty,dive"`
}

// AddResource handles POST /api/resources
func (h *ResourceHandler) AddResource(w http.ResponseWriter, r *http.Request) {
	var req AddResourceRequest
	if err := common.ParseJSONBody(w, r, &req, 256<<10); err != nil {
		h.errors.Handle(w, r, pkgerrors.NewValidationError("Invalid request body: "+err.Error()))
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	result, err := h.commandBus.Send(r.Context(), commands.AddResourceCommand{
		Input: entities.NewResourceInput{
			Title:  req.Title,
			URL:    req.URL,
			Author: req.Author,
			Type:   entities.ResourceType(req.Type),
			Status: entities.ResourceStatus(req.Status),
			Notes:  req.Notes,
			Tags:   req.Tags,
		},
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	res, _ := result.(*entities.Resource)
	common.RespondJSON(w, http.StatusCreated, toResourceResponse(*res))
}

// UpdateResourceRequest is the body of PATCH /api/resources/{resourceId}/{sk}.
// Absent fields are left untouched.
type UpdateResourceRequest struct {
	ResourceID *string         `json:"resourceId"`
	SK         *string         `json:"SK"`
	Title      *string         `json:"title"`
	URL        *string         `json:"url"`
	Author     *string         `json:"author"`
	Type       *string         `json:"type"`
	Status     *string         `json:"status"`
	Notes      *string         `json:"notes"`
	Tags       *[]entities.Tag `json:"tags"`
}

func (req UpdateResourceRequest) patch() entities.ResourcePatch {
	p := entities.ResourcePatch{
		ResourceID: req.ResourceID,
		SK:         req.SK,
		Title:      req.Title,
		URL:        req.URL,
		Author:     req.Author,
		Notes:      req.Notes,
		Tags:       req.Tags,
	}
	if req.Type != nil {
		t := entities.ResourceType(*req.Type)
		p.Type = &t
	}
	if req.Status != nil {
		s := entities.ResourceStatus(*req.Status)
		p.Status = &s
	}
	return p
}

// UpdateResource handles PATCH /api/resources/{resourceId}/{sk}
func (h *ResourceHandler) UpdateResource(w http.ResponseWriter, r *http.Request) {
	var req UpdateResourceRequest
	if err := common.ParseJSONBody(w, r, &req, 256<<10); err != nil {
		h.errors.Handle(w, r, pkgerrors.NewValidationError("Invalid request body: "+err.Error()))
		return
	}

	result, err := h.commandBus.Send(r.Context(), commands.UpdateResourceCommand{
		ResourceID: chi.URLParam(r, "resourceId"),
		SK:         chi.URLParam(r, "sk"),
		Patch:      req.patch(),
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	res, _ := result.(*entities.Resource)
	common.RespondJSON(w, http.StatusOK, toResourceResponse(*res))
}

// UploadFile handles POST /api/knowledge/files with a multipart "file" field
func (h *ResourceHandler) UploadFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxFileBytes+1<<20)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		h.errors.Handle(w, r, pkgerrors.NewValidationError("Invalid multipart body: "+err.Error()))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		h.errors.Handle(w, r, pkgerrors.NewValidationError("file is required"))
		return
	}
	defer file.Close()

	body, err := io.ReadAll(io.LimitReader(file, h.maxFileBytes+1))
	if err != nil {
		h.errors.Handle(w, r, pkgerrors.NewValidationError("failed to read file").WithCause(err))
		return
	}
	if int64(len(body)) > h.maxFileBytes {
		h.errors.Handle(w, r, pkgerrors.NewValidationError("file is too large"))
		return
	}

	result, err := h.commandBus.Send(r.Context(), commands.UploadKnowledgeFileCommand{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Body:        body,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, result)
}
