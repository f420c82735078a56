package dto

import (
	"time"

	"github.com/noah-isme/engage-api/internal/models"
)

// CommentCreateRequest is the payload to create a top-level comment.
type CommentCreateRequest struct {
	Content string   `json:"content" validate:"required,min=1,max=500"`
	Tags    []string `json:"tags" validate:"omitempty,max=10,dive,min=1,max=64"`
}

// ReplyCreateRequest creates a reply attached to an existing comment.
type ReplyCreateRequest struct {
	Content string `json:"content" validate:"required,min=1,max=500"`
}

// CommentAuthor is the user projection embedded in engagement responses.
type CommentAuthor struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// LikeResponse describes a persisted like. Exactly one of CommentID and
// ReplyID is set.
type LikeResponse struct {
	ID        uint      `json:"id"`
	UserID    string    `json:"user_id"`
	CommentID *uint     `json:"comment_id,omitempty"`
	ReplyID   *uint     `json:"reply_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ReplyResponse is a serialized reply with its author and likes.
type ReplyResponse struct {
	ID        uint           `json:"id"`
	CommentID uint           `json:"comment_id"`
	Content   string         `json:"content"`
	User      CommentAuthor  `json:"user"`
	Likes     []LikeResponse `json:"likes"`
	CreatedAt time.Time      `json:"created_at"`
}

// CommentResponse is a serialized comment with its full nested graph.
type CommentResponse struct {
	ID        uint            `json:"id"`
	Content   string          `json:"content"`
	User      CommentAuthor   `json:"user"`
	Tags      []string        `json:"tags"`
	Likes     []LikeResponse  `json:"likes"`
	Replies   []ReplyResponse `json:"replies"`
	CreatedAt time.Time       `json:"created_at"`
}

// ReplyCreatedResponse pairs a freshly created reply with its parent comment
// re-expanded, so clients can refresh the whole subtree in one round trip.
type ReplyCreatedResponse struct {
	Reply   ReplyResponse   `json:"reply"`
	Comment CommentResponse `json:"comment"`
}

// ToggleLikeResponse reports the post-toggle state of a like.
type ToggleLikeResponse struct {
	Liked bool `json:"liked"`
}

// NewCommentAuthor converts a user model into the embedded author projection.
func NewCommentAuthor(user models.User) CommentAuthor {
	return CommentAuthor{
		ID:        user.ID,
		Name:      user.Name,
		AvatarURL: user.AvatarURL,
	}
}

// NewLikeResponse converts a like model into a DTO.
func NewLikeResponse(like models.Like) LikeResponse {
	return LikeResponse{
		ID:        like.ID,
		UserID:    like.UserID,
		CommentID: like.CommentID,
		ReplyID:   like.ReplyID,
		CreatedAt: like.CreatedAt,
	}
}

// NewLikeResponseSlice converts a slice of likes into DTOs.
func NewLikeResponseSlice(likes []models.Like) []LikeResponse {
	out := make([]LikeResponse, 0, len(likes))
	for _, like := range likes {
		out = append(out, NewLikeResponse(like))
	}
	return out
}

// NewReplyResponse converts a reply model into a DTO.
func NewReplyResponse(reply models.Reply) ReplyResponse {
	return ReplyResponse{
		ID:        reply.ID,
		CommentID: reply.CommentID,
		Content:   reply.Content,
		User:      NewCommentAuthor(reply.User),
		Likes:     NewLikeResponseSlice(reply.Likes),
		CreatedAt: reply.CreatedAt,
	}
}

// NewReplyResponseSlice converts replies into DTOs.
func NewReplyResponseSlice(replies []models.Reply) []ReplyResponse {
	out := make([]ReplyResponse, 0, len(replies))
	for _, reply := range replies {
		out = append(out, NewReplyResponse(reply))
	}
	return out
}

// NewCommentResponse converts a comment model, including whatever associations
// were preloaded, into a DTO.
func NewCommentResponse(comment models.Comment) CommentResponse {
	tags := make([]string, 0, len(comment.Tags))
	for _, tag := range comment.Tags {
		tags = append(tags, tag.Name)
	}

	return CommentResponse{
		ID:        comment.ID,
		Content:   comment.Content,
		User:      NewCommentAuthor(comment.User),
		Tags:      tags,
		Likes:     NewLikeResponseSlice(comment.Likes),
		Replies:   NewReplyResponseSlice(comment.Replies),
		CreatedAt: comment.CreatedAt,
	}
}

// NewCommentResponseSlice converts comments into DTOs.
func NewCommentResponseSlice(comments []models.Comment) []CommentResponse {
	out := make([]CommentResponse, 0, len(comments))
	for _, comment := range comments {
		out = append(out, NewCommentResponse(comment))
	}
	return out
}
