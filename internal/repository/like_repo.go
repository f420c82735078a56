package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/engage-api/internal/models"
)

// LikeRepository persists like rows. Uniqueness of a (user, target) pair is
// enforced by the store's composite unique indexes; Create surfaces a
// violation as gorm.ErrDuplicatedKey for the service to recover from.
type LikeRepository interface {
	GetByUserAndComment(ctx context.Context, userID string, commentID uint) (models.Like, error)
	GetByUserAndReply(ctx context.Context, userID string, replyID uint) (models.Like, error)
	Create(ctx context.Context, like *models.Like) error
	Delete(ctx context.Context, id uint) error
	ListByUser(ctx context.Context, userID string) ([]models.Like, error)
}

type likeRepository struct {
	db *gorm.DB
}

// NewLikeRepository constructs a GORM-backed like repository.
func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

func (r *likeRepository) GetByUserAndComment(ctx context.Context, userID string, commentID uint) (models.Like, error) {
	var like models.Like
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND comment_id = ?", userID, commentID).
		First(&like).Error; err != nil {
		return models.Like{}, err
	}

	return like, nil
}

func (r *likeRepository) GetByUserAndReply(ctx context.Context, userID string, replyID uint) (models.Like, error) {
	var like models.Like
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND reply_id = ?", userID, replyID).
		First(&like).Error; err != nil {
		return models.Like{}, err
	}

	return like, nil
}

func (r *likeRepository) Create(ctx context.Context, like *models.Like) error {
	return r.db.WithContext(ctx).Create(like).Error
}

func (r *likeRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Like{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *likeRepository) ListByUser(ctx context.Context, userID string) ([]models.Like, error) {
	var likes []models.Like
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&likes).Error; err != nil {
		return nil, err
	}

	return likes, nil
}
