package handlers

import (
	"context"
	"encoding/base64"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"trustie-admin/application/commands"
	"trustie-admin/application/ports"
	"trustie-admin/domain/core/entities"
	"trustie-admin/domain/core/valueobjects"
	pkgerrors "trustie-admin/pkg/errors"
	"trustie-admin/pkg/utils"
)

const jpegContentType = "image/jpeg"

// CreatePostHandler resizes the uploaded image, stores the low and high
// variants and persists a draft post whose preview is the inline thumbnail.
// Every resize and both uploads must succeed.
type CreatePostHandler struct {
	events      ports.EventRepository
	files       ports.UserFileStore
	transformer ports.ImageTransformer
	clock       utils.Clock
	namespace   string
	logger      *zap.Logger
}

// NewCreatePostHandler creates a new create post handler
func NewCreatePostHandler(
	events ports.EventRepository,
	files ports.UserFileStore,
	transformer ports.ImageTransformer,
	clock utils.Clock,
	namespace string,
	logger *zap.Logger,
) *CreatePostHandler {
	return &CreatePostHandler{
		events:      events,
		files:       files,
		transformer: transformer,
		clock:       clock,
		namespace:   namespace,
		logger:      logger,
	}
}

// Handle executes the create post command
func (h *CreatePostHandler) Handle(ctx context.Context, cmd commands.CreatePostCommand) (*commands.CreatePostResult, error) {
	variants, err := h.transformer.Transform(ctx, cmd.Image)
	if err != nil {
		return nil, err
	}

	now := h.clock.Now()
	stamp := now.UnixMilli()
	lowName := fmt.Sprintf("%s_low_%d.jpg", cmd.UserID, stamp)
	highName := fmt.Sprintf("%s_high_%d.jpg", cmd.UserID, stamp)

	var lowURL, highURL string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		url, err := h.files.Upload(gctx, valueobjects.ObjectKey(h.namespace, lowName), variants.Low, jpegContentType)
		lowURL = url
		return err
	})
	g.Go(func() error {
		url, err := h.files.Upload(gctx, valueobjects.ObjectKey(h.namespace, highName), variants.High, jpegContentType)
		highURL = url
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	post, err := entities.NewDraftPost(entities.DraftPost{
		UserID:      cmd.UserID,
		Title:       cmd.Title,
		Description: cmd.Description,
		PictureName: highName,
		Preview:     "data:" + jpegContentType + ";base64," + base64.StdEncoding.EncodeToString(variants.Thumbnail),
	}, now)
	if err != nil {
		return nil, err
	}
	post.PicturePath = h.namespace

	if err := h.events.Create(ctx, post); err != nil {
		return nil, pkgerrors.Wrap(err, "failed to save draft post")
	}

	h.logger.Info("Draft post created",
		zap.String("eventID", post.EventID),
		zap.String("userID", cmd.UserID),
		zap.String("adminID", cmd.AdminID),
		zap.String("picture", highName),
	)

	return &commands.CreatePostResult{
		EventID:     post.EventID,
		EventType:   string(post.EventType),
		LowResURL:   lowURL,
		HighResURL:  highURL,
		PictureName: highName,
	}, nil
}
