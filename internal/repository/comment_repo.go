package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/noah-isme/engage-api/internal/models"
)

// CommentRepository persists comments, replies, and their tag links.
type CommentRepository interface {
	List(ctx context.Context, tags []string) ([]models.Comment, error)
	Get(ctx context.Context, id uint) (models.Comment, error)
	GetWithGraph(ctx context.Context, id uint) (models.Comment, error)
	Create(ctx context.Context, comment *models.Comment, tagNames []string) error
	GetReply(ctx context.Context, id uint) (models.Reply, error)
	CreateReply(ctx context.Context, reply *models.Reply) error
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository constructs a GORM-backed comment repository.
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func withCommentGraph(db *gorm.DB) *gorm.DB {
	return db.
		Preload("User").
		Preload("Tags").
		Preload("Likes").
		Preload("Replies", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("Replies.User").
		Preload("Replies.Likes")
}

// List returns comments newest first with their full nested graph. When tag
// names are supplied only comments whose tag set intersects them are returned.
func (r *commentRepository) List(ctx context.Context, tags []string) ([]models.Comment, error) {
	query := withCommentGraph(r.db.WithContext(ctx)).
		Order("comments.created_at DESC")

	if len(tags) > 0 {
		query = query.
			Joins("JOIN comment_tags ON comment_tags.comment_id = comments.id").
			Joins("JOIN tags ON tags.id = comment_tags.tag_id").
			Where("tags.name IN ?", tags).
			Distinct("comments.*")
	}

	var comments []models.Comment
	if err := query.Find(&comments).Error; err != nil {
		return nil, err
	}

	return comments, nil
}

func (r *commentRepository) Get(ctx context.Context, id uint) (models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		return models.Comment{}, err
	}

	return comment, nil
}

func (r *commentRepository) GetWithGraph(ctx context.Context, id uint) (models.Comment, error) {
	var comment models.Comment
	if err := withCommentGraph(r.db.WithContext(ctx)).First(&comment, id).Error; err != nil {
		return models.Comment{}, err
	}

	return comment, nil
}

// Create persists the comment and its tag links in one transaction. Tags are
// resolved by name first and inserted only when absent, so tag rows stay
// unique by name and the comment either commits with all links or not at all.
func (r *commentRepository) Create(ctx context.Context, comment *models.Comment, tagNames []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tags := make([]models.Tag, 0, len(tagNames))
		for _, name := range tagNames {
			var tag models.Tag
			err := tx.Where("name = ?", name).First(&tag).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				tag = models.Tag{Name: name}
				if err := tx.Create(&tag).Error; err != nil {
					return err
				}
			} else if err != nil {
				return err
			}
			tags = append(tags, tag)
		}

		comment.Tags = tags
		return tx.Create(comment).Error
	})
}

func (r *commentRepository) GetReply(ctx context.Context, id uint) (models.Reply, error) {
	var reply models.Reply
	if err := r.db.WithContext(ctx).First(&reply, id).Error; err != nil {
		return models.Reply{}, err
	}

	return reply, nil
}

func (r *commentRepository) CreateReply(ctx context.Context, reply *models.Reply) error {
	return r.db.WithContext(ctx).Create(reply).Error
}
