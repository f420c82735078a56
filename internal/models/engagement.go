package models

import "time"

// CommentMaxLength bounds comment and reply content, matching the client-side
// contract enforced by the web frontend.
const CommentMaxLength = 500

// Tag is a free-form label attached to comments, unique by name.
type Tag struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:64;uniqueIndex;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Comment is a top-level engagement entry. Comments are immutable once
// created; only their like and reply collections grow.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Content   string    `gorm:"size:500;not null" json:"content"`
	UserID    string    `gorm:"size:36;index;not null" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID" json:"user"`
	Tags      []Tag     `gorm:"many2many:comment_tags" json:"tags"`
	Likes     []Like    `gorm:"foreignKey:CommentID" json:"likes"`
	Replies   []Reply   `gorm:"foreignKey:CommentID" json:"replies"`
	CreatedAt time.Time `json:"created_at"`
}

// Reply is a child engagement entry scoped to exactly one comment.
type Reply struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CommentID uint      `gorm:"index;not null" json:"comment_id"`
	Content   string    `gorm:"size:500;not null" json:"content"`
	UserID    string    `gorm:"size:36;index;not null" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID" json:"user"`
	Likes     []Like    `gorm:"foreignKey:ReplyID" json:"likes"`
	CreatedAt time.Time `json:"created_at"`
}

// Like records a user's endorsement of exactly one comment or one reply.
// The composite unique indexes close the concurrent-toggle race at the store:
// a duplicate insert for the same (user, target) pair fails atomically instead
// of producing a second row.
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"size:36;not null;index:idx_like_user_comment,unique;index:idx_like_user_reply,unique" json:"user_id"`
	CommentID *uint     `gorm:"index:idx_like_user_comment,unique;check:chk_like_target,(comment_id IS NULL) <> (reply_id IS NULL)" json:"comment_id,omitempty"`
	ReplyID   *uint     `gorm:"index:idx_like_user_reply,unique" json:"reply_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
