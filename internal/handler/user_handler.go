package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/engage-api/internal/dto"
	"github.com/noah-isme/engage-api/internal/middleware"
	"github.com/noah-isme/engage-api/internal/service"
	"github.com/noah-isme/engage-api/internal/utils"
)

// UserHandler provides the HTTP endpoints for the user directory.
type UserHandler struct {
	users      service.UserService
	engagement service.EngagementService
	logger     zerolog.Logger
}

// NewUserHandler constructs a handler instance.
func NewUserHandler(users service.UserService, engagement service.EngagementService, logger zerolog.Logger) *UserHandler {
	return &UserHandler{
		users:      users,
		engagement: engagement,
		logger:     logger.With().Str("component", "user_handler").Logger(),
	}
}

// Register binds the user routes. The sync endpoint carries no bearer token:
// it is invoked by the trusted identity-provider integration, not end users.
func (h *UserHandler) Register(api fiber.Router, identity middleware.Identity) {
	users := api.Group("/users")
	users.Post("/sync", h.sync)
	users.Get("/:id/likes", identity.Required, h.likes)
}

func (h *UserHandler) sync(c *fiber.Ctx) error {
	var payload dto.UserSyncRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	user, err := h.users.Sync(withRequestContext(c), payload)
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, validationMessage(err))
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to sync user")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to sync user")
	}

	return utils.SendJSON(c, fiber.StatusOK, user)
}

func (h *UserHandler) likes(c *fiber.Ctx) error {
	externalID := middleware.ExternalUserID(c)
	if externalID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	userID := strings.TrimSpace(c.Params("id"))
	if userID == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "id required")
	}

	likes, err := h.engagement.UserLikes(withRequestContext(c), externalID, userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound), errors.Is(err, service.ErrNotOwner):
			// The likes projection is private; a mismatched caller gets the
			// same response as a missing identity.
			return utils.SendError(c, fiber.StatusUnauthorized, "unauthorized")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to list user likes")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to list user likes")
		}
	}

	return utils.SendJSON(c, fiber.StatusOK, likes)
}
