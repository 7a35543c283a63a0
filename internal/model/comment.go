package model

import (
	"time"
)

// Comment represents a comment on a video.
type Comment struct {
	ID        int64     `db:"id" json:"id"`
	VideoID   int64     `db:"video_id" json:"video_id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	ParentID  *int64    `db:"parent_id" json:"parent_id"`
	Text      string    `db:"text" json:"text"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`

	// Joined fields
	Username     string  `db:"username" json:"username"`
	AvatarURL    *string `db:"avatar_url" json:"avatar_url"`
	Likes        int     `db:"likes" json:"likes"`
	IsLiked      bool    `db:"is_liked" json:"is_liked"`
	RepliesCount int     `db:"replies_count" json:"replies"`
}

// CreateCommentRequest is the request body for creating a comment.
type CreateCommentRequest struct {
	Text     string `json:"text"`
	ParentID *int64 `json:"parent_id,omitempty"`
}

// Comment constraints
const (
	MaxCommentLength = 500
)
