package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"omegavideos/internal/model"
)

// Methods taking a *sqlx.Tx run on the database handle when tx is nil.

// RelationRepository stores one kind of (actor, target) pair.
type RelationRepository interface {
	// Insert returns model.ErrDuplicateRelation when the pair already exists.
	Insert(ctx context.Context, tx *sqlx.Tx, actorID, targetID int64) error
	Delete(ctx context.Context, tx *sqlx.Tx, actorID, targetID int64) error
	Count(ctx context.Context, tx *sqlx.Tx, targetID int64) (int, error)
	Exists(ctx context.Context, actorID, targetID int64) (bool, error)
}

type FollowRepository interface {
	RelationRepository
	// FollowerIDs is the follower set of userID at this instant.
	FollowerIDs(ctx context.Context, tx *sqlx.Tx, userID int64) ([]int64, error)
	Followers(ctx context.Context, userID, viewerID int64) ([]model.UserSummary, error)
	Following(ctx context.Context, userID, viewerID int64) ([]model.UserSummary, error)
}

// SignalRepository is the read model. Every call recomputes counters from
// the fact tables.
type SignalRepository interface {
	// FeedCandidates returns one page of videos in personalized rank order
	// for viewerID at instant now.
	FeedCandidates(ctx context.Context, viewerID int64, now time.Time, offset, limit int) ([]model.VideoSignals, error)
	TrendingCandidates(ctx context.Context, since time.Time) ([]model.VideoSignals, error)
	Counts(ctx context.Context, videoIDs []int64) (map[int64]model.VideoCounts, error)
	ViewerFlags(ctx context.Context, viewerID int64, videoIDs []int64) (map[int64]model.ViewerFlags, error)
}

type VideoRepository interface {
	Create(ctx context.Context, tx *sqlx.Tx, video *model.Video) error
	GetByID(ctx context.Context, id int64) (*model.Video, error)
	OwnerID(ctx context.Context, tx *sqlx.Tx, id int64) (int64, error)
	Delete(ctx context.Context, tx *sqlx.Tx, id int64) error
	IncrementViews(ctx context.Context, id int64) error
	// GetCards returns the videos joined with their owner, in the order of ids.
	// Unknown ids are skipped.
	GetCards(ctx context.Context, ids []int64) ([]model.VideoCard, error)
	ListIDsByOwner(ctx context.Context, ownerID int64) ([]int64, error)
	ListIDsLikedBy(ctx context.Context, userID int64) ([]int64, error)
	ListIDsBookmarkedBy(ctx context.Context, userID int64) ([]int64, error)
	SearchIDs(ctx context.Context, query string, limit int) ([]int64, error)
}

type CommentRepository interface {
	Create(ctx context.Context, tx *sqlx.Tx, comment *model.Comment) error
	GetByID(ctx context.Context, tx *sqlx.Tx, id int64) (*model.Comment, error)
	ListTopLevel(ctx context.Context, videoID, viewerID int64) ([]model.Comment, error)
	ListReplies(ctx context.Context, parentID, viewerID int64) ([]model.Comment, error)
	// DeleteThread removes the comment and every descendant and returns
	// the ids that were removed.
	DeleteThread(ctx context.Context, tx *sqlx.Tx, id int64) ([]int64, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, intent model.NotificationIntent) error
	List(ctx context.Context, userID int64, limit int) ([]model.Notification, error)
	UnreadCount(ctx context.Context, userID int64) (int, error)
	// MarkRead only touches ids that belong to userID.
	MarkRead(ctx context.Context, userID int64, ids []int64) error
	MarkAllRead(ctx context.Context, userID int64) error
	Delete(ctx context.Context, userID, id int64) error
	DeleteAll(ctx context.Context, userID int64) error
	DeleteByVideo(ctx context.Context, tx *sqlx.Tx, videoID int64) error
	DeleteByComments(ctx context.Context, tx *sqlx.Tx, commentIDs []int64) error
}

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	Exists(ctx context.Context, tx *sqlx.Tx, id int64) (bool, error)
	UpdateProfile(ctx context.Context, userID int64, bio string, avatarURL, avatarKey *string) error
	UpdateLanguage(ctx context.Context, userID int64, language string) error
	Stats(ctx context.Context, userID int64) (*model.ProfileStats, error)
	Search(ctx context.Context, query string, viewerID int64, limit int) ([]model.UserSummary, error)
}

// querier is satisfied by both *sqlx.DB and *sqlx.Tx.
type querier interface {
	sqlx.ExtContext
}

func pick(db *sqlx.DB, tx *sqlx.Tx) querier {
	if tx != nil {
		return tx
	}
	return db
}
