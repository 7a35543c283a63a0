package model

import (
	"time"
)

// Video is a stored upload.
type Video struct {
	ID          int64     `db:"id" json:"id"`
	UserID      int64     `db:"user_id" json:"user_id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	MediaURL    string    `db:"media_url" json:"media_url"`
	MediaKey    string    `db:"media_key" json:"-"`
	Views       int64     `db:"views" json:"views"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// VideoCard is the self-contained read shape returned by every feed:
// owner identity, counters and viewer-relative flags are all resolved.
type VideoCard struct {
	Video
	Username     string  `db:"username" json:"username"`
	AvatarURL    *string `db:"avatar_url" json:"avatar_url"`
	Likes        int     `db:"-" json:"likes"`
	Comments     int     `db:"-" json:"comments"`
	IsLiked      int     `db:"-" json:"is_liked"`
	IsBookmarked int     `db:"-" json:"is_bookmarked"`
}

// CreateVideoRequest holds the form fields of an upload.
type CreateVideoRequest struct {
	Title       string
	Description string
}

// ToggleResult reports the state of a relation after a toggle and the
// fresh count on its target. Handlers render it as one of the response
// shapes below.
type ToggleResult struct {
	State bool
	Count int
}

// LikeResponse answers a video or comment like toggle.
type LikeResponse struct {
	Liked bool `json:"liked"`
	Count int  `json:"count"`
}

type BookmarkResponse struct {
	Bookmarked bool `json:"bookmarked"`
	Count      int  `json:"count"`
}

type FollowResponse struct {
	Following bool `json:"following"`
	Count     int  `json:"count"`
}

// Video text limits, counted in runes.
const (
	MaxTitleLength       = 100
	MaxDescriptionLength = 500
)

// Bit renders a boolean as the 0/1 flag clients expect.
func Bit(b bool) int {
	if b {
		return 1
	}
	return 0
}
