package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// User is the internal identity record backing engagement entries. Rows are
// created and refreshed by the identity-provider sync and never deleted here.
type User struct {
	ID         string            `gorm:"primaryKey;size:36" json:"id"`
	ExternalID string            `gorm:"size:128;uniqueIndex;not null" json:"external_id"`
	Name       string            `gorm:"size:255;not null" json:"name"`
	Email      string            `gorm:"size:255;not null" json:"email"`
	AvatarURL  string            `gorm:"size:512" json:"avatar_url,omitempty"`
	Metadata   datatypes.JSONMap `gorm:"type:json" json:"metadata,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// BeforeCreate assigns a server-generated opaque identifier.
func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
