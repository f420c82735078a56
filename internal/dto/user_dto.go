package dto

import (
	"time"

	"github.com/noah-isme/engage-api/internal/models"
)

// UserSyncRequest is the payload the identity-provider integration posts on
// every sign-in. All identity fields are mandatory; avatar is optional.
type UserSyncRequest struct {
	UserID    string            `json:"userId" validate:"required,max=128"`
	Email     string            `json:"email" validate:"required,email,max=255"`
	Name      string            `json:"name" validate:"required,max=255"`
	AvatarURL string            `json:"avatarUrl" validate:"omitempty,url,max=512"`
	Metadata  map[string]string `json:"metadata" validate:"omitempty,max=16"`
}

// UserResponse is the serialized internal identity record.
type UserResponse struct {
	ID         string    `json:"id"`
	ExternalID string    `json:"external_id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	AvatarURL  string    `json:"avatar_url,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewUserResponse converts a model into a DTO.
func NewUserResponse(user models.User) UserResponse {
	return UserResponse{
		ID:         user.ID,
		ExternalID: user.ExternalID,
		Name:       user.Name,
		Email:      user.Email,
		AvatarURL:  user.AvatarURL,
		CreatedAt:  user.CreatedAt,
		UpdatedAt:  user.UpdatedAt,
	}
}
