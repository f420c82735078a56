package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/engage-api/internal/dto"
	"github.com/noah-isme/engage-api/internal/middleware"
	"github.com/noah-isme/engage-api/internal/service"
	"github.com/noah-isme/engage-api/internal/utils"
)

// EngagementHandler provides the HTTP endpoints for comments, replies, and likes.
type EngagementHandler struct {
	service service.EngagementService
	logger  zerolog.Logger
}

// NewEngagementHandler constructs a handler instance.
func NewEngagementHandler(service service.EngagementService, logger zerolog.Logger) *EngagementHandler {
	return &EngagementHandler{
		service: service,
		logger:  logger.With().Str("component", "engagement_handler").Logger(),
	}
}

// Register binds the engagement routes. Reads allow anonymous traffic;
// mutations require a resolved identity and are rate limited per user.
func (h *EngagementHandler) Register(api fiber.Router, identity middleware.Identity, limit fiber.Handler) {
	if limit == nil {
		limit = middleware.RateLimit("engagement", 30, time.Minute)
	}

	comments := api.Group("/comments")
	comments.Get("/", identity.Optional, h.listComments)
	comments.Post("/", identity.Required, limit, h.createComment)
	comments.Post("/:id/like", identity.Required, limit, h.toggleCommentLike)
	comments.Post("/:id/replies", identity.Required, limit, h.createReply)

	replies := api.Group("/replies")
	replies.Post("/:id/like", identity.Required, limit, h.toggleReplyLike)
}

func (h *EngagementHandler) listComments(c *fiber.Ctx) error {
	var tags []string
	if raw := c.Query("tags"); raw != "" {
		tags = splitAndTrim(raw)
	}

	comments, err := h.service.ListComments(withRequestContext(c), tags)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list comments")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list comments")
	}

	return utils.SendJSON(c, fiber.StatusOK, comments)
}

func (h *EngagementHandler) createComment(c *fiber.Ctx) error {
	externalID := middleware.ExternalUserID(c)
	if externalID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	var payload dto.CommentCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	comment, err := h.service.CreateComment(withRequestContext(c), externalID, payload)
	if err != nil {
		return h.sendEngagementError(c, err, "failed to create comment")
	}

	return utils.SendJSON(c, fiber.StatusOK, comment)
}

func (h *EngagementHandler) toggleCommentLike(c *fiber.Ctx) error {
	externalID := middleware.ExternalUserID(c)
	if externalID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	commentID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	liked, err := h.service.ToggleCommentLike(withRequestContext(c), commentID, externalID)
	if err != nil {
		return h.sendEngagementError(c, err, "failed to toggle comment like")
	}

	return utils.SendJSON(c, fiber.StatusOK, dto.ToggleLikeResponse{Liked: liked})
}

func (h *EngagementHandler) createReply(c *fiber.Ctx) error {
	externalID := middleware.ExternalUserID(c)
	if externalID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	commentID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.ReplyCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	reply, err := h.service.CreateReply(withRequestContext(c), commentID, externalID, payload)
	if err != nil {
		return h.sendEngagementError(c, err, "failed to create reply")
	}

	return utils.SendJSON(c, fiber.StatusOK, reply)
}

func (h *EngagementHandler) toggleReplyLike(c *fiber.Ctx) error {
	externalID := middleware.ExternalUserID(c)
	if externalID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	replyID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	liked, err := h.service.ToggleReplyLike(withRequestContext(c), replyID, externalID)
	if err != nil {
		return h.sendEngagementError(c, err, "failed to toggle reply like")
	}

	return utils.SendJSON(c, fiber.StatusOK, dto.ToggleLikeResponse{Liked: liked})
}

// sendEngagementError maps service errors onto HTTP statuses. Missing users
// and missing targets are reported separately so a client can tell a skipped
// sync apart from a stale comment id.
func (h *EngagementHandler) sendEngagementError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "user not found")
	case errors.Is(err, service.ErrCommentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "comment not found")
	case errors.Is(err, service.ErrReplyNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "reply not found")
	case errors.Is(err, service.ErrEmptyContent), errors.Is(err, service.ErrContentTooLong):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, validationMessage(err))
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg(fallback)
		return utils.SendError(c, fiber.StatusInternalServerError, fallback)
	}
}
