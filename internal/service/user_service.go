package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/noah-isme/engage-api/internal/dto"
	"github.com/noah-isme/engage-api/internal/models"
	"github.com/noah-isme/engage-api/internal/repository"
)

// UserService exposes the user directory use-cases.
type UserService interface {
	Sync(ctx context.Context, payload dto.UserSyncRequest) (dto.UserResponse, error)
}

type userService struct {
	users     repository.UserRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewUserService constructs a user service.
func NewUserService(users repository.UserRepository, validate *validator.Validate, logger zerolog.Logger) UserService {
	return &userService{
		users:     users,
		validator: validate,
		logger:    logger.With().Str("component", "user_service").Logger(),
	}
}

// Sync upserts the internal user record for an external identity. It is
// called by the identity-provider integration on every sign-in and is safe to
// repeat; the latest name, email, and avatar win.
func (s *userService) Sync(ctx context.Context, payload dto.UserSyncRequest) (dto.UserResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.UserResponse{}, err
	}

	user := models.User{
		ExternalID: strings.TrimSpace(payload.UserID),
		Name:       strings.TrimSpace(payload.Name),
		Email:      strings.TrimSpace(payload.Email),
		AvatarURL:  strings.TrimSpace(payload.AvatarURL),
	}

	if len(payload.Metadata) > 0 {
		metadata := make(datatypes.JSONMap, len(payload.Metadata))
		for key, value := range payload.Metadata {
			metadata[key] = value
		}
		user.Metadata = metadata
	}

	if err := s.users.Upsert(ctx, &user); err != nil {
		return dto.UserResponse{}, err
	}

	s.logger.Info().Str("user_id", user.ID).Str("external_id", user.ExternalID).Msg("user synced")

	return dto.NewUserResponse(user), nil
}
