package model

import "time"

// Follow is a directed edge from follower to followed account.
type Follow struct {
	FollowerID  int64     `db:"follower_id" json:"follower_id"`
	FollowingID int64     `db:"following_id" json:"following_id"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
