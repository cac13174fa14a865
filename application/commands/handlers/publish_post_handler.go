package handlers

import (
	"context"

	"go.uber.org/zap"

	"trustie-admin/application/commands"
	"trustie-admin/application/ports"
	"trustie-admin/domain/core/entities"
	"trustie-admin/domain/core/valueobjects"
	"trustie-admin/domain/events"
	pkgerrors "trustie-admin/pkg/errors"
	"trustie-admin/pkg/utils"
)

// PublishOrdering selects where the ownership check happens
type PublishOrdering struct {
	// AuthorizeFirst moves the ownership check into the conditional status
	// update. When false the status is flipped first and ownership checked on
	// the returned record, so a rejected publish still leaves the post marked
	// published.
	AuthorizeFirst bool
	// Strict also rejects posts that are already published. Only honoured
	// with AuthorizeFirst.
	Strict bool
}

// PublishPostHandler flips a draft to published, writes its chat record,
// bumps the author's post_status counter and hands the feed fanout off.
// Fanout failures never reach the caller.
type PublishPostHandler struct {
	events     ports.EventRepository
	users      ports.UserRepository
	dispatcher ports.FanoutDispatcher
	clock      utils.Clock
	ordering   PublishOrdering
	logger     *zap.Logger
}

// NewPublishPostHandler creates a new publish post handler
func NewPublishPostHandler(
	events ports.EventRepository,
	users ports.UserRepository,
	dispatcher ports.FanoutDispatcher,
	clock utils.Clock,
	ordering PublishOrdering,
	logger *zap.Logger,
) *PublishPostHandler {
	return &PublishPostHandler{
		events:     events,
		users:      users,
		dispatcher: dispatcher,
		clock:      clock,
		ordering:   ordering,
		logger:     logger,
	}
}

// Handle executes the publish post command and returns the new chat record
func (h *PublishPostHandler) Handle(ctx context.Context, cmd commands.PublishPostCommand) (*entities.Event, error) {
	id, err := valueobjects.ParsePostID(cmd.PostID)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}

	logger := h.logger.With(
		zap.String("postID", cmd.PostID),
		zap.String("userID", cmd.UserID),
		zap.String("adminID", cmd.AdminID),
	)

	now := h.clock.Now()
	guard := ports.PublishGuard{}
	if h.ordering.AuthorizeFirst {
		guard.ActorID = cmd.UserID
		guard.RequireUnpublished = h.ordering.Strict
	}

	post, err := h.events.MarkPublished(ctx, id, valueobjects.NewStatusToken(id.Prefix(), valueobjects.StatusPublished, now), guard)
	if err != nil {
		return nil, err
	}

	if !post.IsOwnedBy(cmd.UserID) {
		// only reachable without AuthorizeFirst; the status flip above stays
		logger.Warn("Publish rejected after status flip",
			zap.String("ownerID", post.UserID),
		)
		return nil, pkgerrors.NewForbiddenError("You do not have the right to publish").
			WithCode(pkgerrors.CodeNotOwner)
	}

	chat := post.ToChat(id, now)
	if err := h.events.Put(ctx, chat); err != nil {
		return nil, pkgerrors.Wrap(err, "failed to save chat record")
	}

	if err := h.users.ApplyPostStatus(ctx, entities.PostStatusUpdateFor(post, id, now)); err != nil {
		return nil, pkgerrors.Wrap(err, "failed to update post status")
	}

	task := events.NewPostPublished(id.String(), chat.EventID, post.UserID, utils.FormatISO(now), now)
	if err := h.dispatcher.Dispatch(ctx, task); err != nil {
		logger.Error("Failed to hand off feed fanout",
			zap.String("chatID", chat.EventID),
			zap.Error(err),
		)
	}

	logger.Info("Post published", zap.String("chatID", chat.EventID))
	return chat, nil
}
