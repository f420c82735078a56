package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/noah-isme/engage-api/internal/models"
)

// UserRepository provides access to the user directory.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (models.User, error)
	GetByExternalID(ctx context.Context, externalID string) (models.User, error)
	Upsert(ctx context.Context, user *models.User) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository constructs a GORM-backed user repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id string) (models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return models.User{}, err
	}

	return user, nil
}

func (r *userRepository) GetByExternalID(ctx context.Context, externalID string) (models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("external_id = ?", externalID).First(&user).Error; err != nil {
		return models.User{}, err
	}

	return user, nil
}

// Upsert creates the user on first contact and refreshes the identity fields
// on subsequent calls, keyed by the external identifier. A concurrent first
// sync losing the insert race falls back to an update so the call stays
// idempotent.
func (r *userRepository) Upsert(ctx context.Context, user *models.User) error {
	db := r.db.WithContext(ctx)

	var existing models.User
	err := db.Where("external_id = ?", user.ExternalID).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		createErr := db.Create(user).Error
		if createErr == nil {
			return nil
		}
		if !errors.Is(createErr, gorm.ErrDuplicatedKey) {
			return createErr
		}
		// Lost the insert race to a concurrent first sync; fall through to update.
		if err := db.Where("external_id = ?", user.ExternalID).First(&existing).Error; err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	updates := map[string]interface{}{
		"name":       user.Name,
		"email":      user.Email,
		"avatar_url": user.AvatarURL,
	}
	// A sync without metadata keeps whatever an earlier sync stored.
	if user.Metadata != nil {
		updates["metadata"] = user.Metadata
	}
	if err := db.Model(&existing).Updates(updates).Error; err != nil {
		return err
	}

	// Re-read so the caller observes the stored row, including the refreshed
	// updated_at and any metadata carried over from an earlier sync.
	return db.Where("id = ?", existing.ID).First(user).Error
}
