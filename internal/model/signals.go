package model

import "time"

// VideoSignals are the scoring inputs for one video from one viewer's
// point of view.
type VideoSignals struct {
	VideoID            int64     `db:"video_id"`
	OwnerID            int64     `db:"owner_id"`
	Likes              int       `db:"likes"`
	Comments           int       `db:"comments"`
	Views              int64     `db:"views"`
	CreatedAt          time.Time `db:"created_at"`
	ViewerFollowsOwner bool      `db:"viewer_follows_owner"`
}

// VideoCounts are the derived counters of a video.
type VideoCounts struct {
	Likes    int `db:"likes"`
	Comments int `db:"comments"`
}

// ViewerFlags are the viewer-relative relation bits of a video.
type ViewerFlags struct {
	Liked      bool `db:"liked"`
	Bookmarked bool `db:"bookmarked"`
}
