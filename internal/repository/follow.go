package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"omegavideos/internal/model"
)

type followRepository struct {
	*relationRepository
}

func NewFollowRepository(db *sqlx.DB) FollowRepository {
	return &followRepository{relationRepository: newRelationRepository(db, followsTable)}
}

func (r *followRepository) FollowerIDs(ctx context.Context, tx *sqlx.Tx, userID int64) ([]int64, error) {
	query := `SELECT follower_id FROM follows WHERE following_id = $1 ORDER BY follower_id`
	var ids []int64
	if err := sqlx.SelectContext(ctx, pick(r.db, tx), &ids, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get follower ids: %w", err)
	}
	return ids, nil
}

// Followers lists accounts following userID, newest edge first.
// is_following is relative to viewerID.
func (r *followRepository) Followers(ctx context.Context, userID, viewerID int64) ([]model.UserSummary, error) {
	query := `
		SELECT u.id, u.username, u.avatar_url, u.bio,
		       EXISTS(SELECT 1 FROM follows x WHERE x.follower_id = $2 AND x.following_id = u.id) AS is_following
		FROM follows f
		JOIN users u ON u.id = f.follower_id
		WHERE f.following_id = $1
		ORDER BY f.created_at DESC, u.id DESC
	`
	users := []model.UserSummary{}
	if err := r.db.SelectContext(ctx, &users, query, userID, viewerID); err != nil {
		return nil, fmt.Errorf("failed to get followers: %w", err)
	}
	return users, nil
}

// Following lists accounts that userID follows, newest edge first.
func (r *followRepository) Following(ctx context.Context, userID, viewerID int64) ([]model.UserSummary, error) {
	query := `
		SELECT u.id, u.username, u.avatar_url, u.bio,
		       EXISTS(SELECT 1 FROM follows x WHERE x.follower_id = $2 AND x.following_id = u.id) AS is_following
		FROM follows f
		JOIN users u ON u.id = f.following_id
		WHERE f.follower_id = $1
		ORDER BY f.created_at DESC, u.id DESC
	`
	users := []model.UserSummary{}
	if err := r.db.SelectContext(ctx, &users, query, userID, viewerID); err != nil {
		return nil, fmt.Errorf("failed to get following: %w", err)
	}
	return users, nil
}
