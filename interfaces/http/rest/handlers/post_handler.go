package handlers

import (
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"trustie-admin/application/commands"
	"trustie-admin/application/commands/bus"
	"trustie-admin/domain/core/entities"
	"trustie-admin/pkg/auth"
	"trustie-admin/pkg/common"
	pkgerrors "trustie-admin/pkg/errors"
	"trustie-admin/pkg/utils"
)

// PostHandler serves post creation and publication
type PostHandler struct {
	commandBus   *bus.CommandBus
	errors       *pkgerrors.ErrorHandler
	maxBodyBytes int64
	logger       *zap.Logger
}

// NewPostHandler creates a new post handler. maxImageBytes bounds the decoded
// image; the JSON body limit is derived from it.
func NewPostHandler(commandBus *bus.CommandBus, errors *pkgerrors.ErrorHandler, maxImageBytes int64, logger *zap.Logger) *PostHandler {
	return &PostHandler{
		commandBus:   commandBus,
		errors:       errors,
		maxBodyBytes: base64Len(maxImageBytes) + 64<<10,
		logger:       logger,
	}
}

func base64Len(n int64) int64 {
	return (n + 2) / 3 * 4
}

// CreatePostRequest is the body of POST /api/posts. Image is standard base64,
// optionally as a data URL.
type CreatePostRequest struct {
	UserID      string `json:"userId" validate:"required"`
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=5000"`
	Image       string `json:"image" validate:"required"`
}

// CreatePost handles POST /api/posts
func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req CreatePostRequest
	if err := common.ParseJSONBody(w, r, &req, h.maxBodyBytes); err != nil {
		h.errors.Handle(w, r, pkgerrors.NewValidationError("Invalid request body: "+err.Error()))
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	image, err := decodeImage(req.Image)
	if err != nil {
		h.errors.Handle(w, r, pkgerrors.NewValidationError("image must be base64 encoded").WithCause(err))
		return
	}

	result, err := h.commandBus.Send(r.Context(), commands.CreatePostCommand{
		UserID:      req.UserID,
		AdminID:     adminID(r),
		Title:       req.Title,
		Description: req.Description,
		Image:       image,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, result)
}

func decodeImage(raw string) ([]byte, error) {
	if strings.HasPrefix(raw, "data:") {
		if i := strings.Index(raw, ","); i >= 0 {
			raw = raw[i+1:]
		}
	}
	return base64.StdEncoding.DecodeString(strings.TrimSpace(raw))
}

// PublishPostRequest is the body of POST /api/posts/{postId}/publish. UserID
// is the user the admin acts as.
type PublishPostRequest struct {
	UserID string `json:"userId" validate:"required"`
}

// PublishPost handles POST /api/posts/{postId}/publish
func (h *PostHandler) PublishPost(w http.ResponseWriter, r *http.Request) {
	var req PublishPostRequest
	if err := common.ParseJSONBody(w, r, &req, 16<<10); err != nil {
		h.errors.Handle(w, r, pkgerrors.NewValidationError("Invalid request body: "+err.Error()))
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	result, err := h.commandBus.Send(r.Context(), commands.PublishPostCommand{
		PostID:  chi.URLParam(r, "postId"),
		UserID:  req.UserID,
		AdminID: adminID(r),
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	post, _ := result.(*entities.Event)
	common.RespondJSON(w, http.StatusOK, toEventResponse(post))
}

func adminID(r *http.Request) string {
	if user, err := auth.GetUserFromContext(r.Context()); err == nil {
		return user.UserID
	}
	return ""
}
