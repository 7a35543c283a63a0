package model

import (
	"time"
)

// Notification types
const (
	NotificationTypeLike        = "like"
	NotificationTypeComment     = "comment"
	NotificationTypeReply       = "reply"
	NotificationTypeCommentLike = "comment_like"
	NotificationTypeFollow      = "follow"
	NotificationTypeNewVideo    = "new_video"
)

const MaxNotificationList = 50

// Notification represents a single notification record joined with
// what the client needs to render it.
type Notification struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"-"`         // Recipient
	ActorID   int64     `db:"actor_id" json:"actor_id"` // Who triggered it
	Type      string    `db:"type" json:"type"`
	VideoID   *int64    `db:"video_id" json:"video_id,omitempty"`
	CommentID *int64    `db:"comment_id" json:"comment_id,omitempty"`
	IsRead    bool      `db:"is_read" json:"is_read"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`

	ActorUsername  string  `db:"actor_username" json:"actor_username"`
	ActorAvatarURL *string `db:"actor_avatar_url" json:"actor_avatar_url"`
	VideoTitle     *string `db:"video_title" json:"video_title,omitempty"`
	VideoMediaURL  *string `db:"video_media_url" json:"video_media_url,omitempty"`
}

// NotificationIntent is one notification to be written for a recipient.
type NotificationIntent struct {
	RecipientID int64  `json:"recipient_id"`
	ActorID     int64  `json:"actor_id"`
	Type        string `json:"type"`
	VideoID     *int64 `json:"video_id,omitempty"`
	CommentID   *int64 `json:"comment_id,omitempty"`
}

// SelfTriggered reports whether the recipient caused the notification.
func (n NotificationIntent) SelfTriggered() bool {
	return n.RecipientID == n.ActorID
}

// MarkReadRequest is the request body for marking notifications as read.
// A nil IDs marks every notification of the caller.
type MarkReadRequest struct {
	IDs []int64 `json:"ids"`
}

// UnreadCountResponse is the badge counter.
type UnreadCountResponse struct {
	Count int `json:"count"`
}
