package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"omegavideos/internal/model"
)

type videoRepository struct {
	db *sqlx.DB
}

func NewVideoRepository(db *sqlx.DB) VideoRepository {
	return &videoRepository{db: db}
}

// Create inserts the video and fills in its id, views and created_at.
func (r *videoRepository) Create(ctx context.Context, tx *sqlx.Tx, v *model.Video) error {
	query := `
		INSERT INTO videos (user_id, title, description, media_url, media_key)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, views, created_at
	`
	row := pick(r.db, tx).QueryRowxContext(ctx, query, v.UserID, v.Title, v.Description, v.MediaURL, v.MediaKey)
	if err := row.Scan(&v.ID, &v.Views, &v.CreatedAt); err != nil {
		return fmt.Errorf("insert video: %w", err)
	}
	return nil
}

func (r *videoRepository) GetByID(ctx context.Context, id int64) (*model.Video, error) {
	query := `
		SELECT id, user_id, title, description, media_url, media_key, views, created_at
		FROM videos
		WHERE id = $1
	`
	var v model.Video
	err := r.db.GetContext(ctx, &v, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrVideoNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get video: %w", err)
	}
	return &v, nil
}

func (r *videoRepository) OwnerID(ctx context.Context, tx *sqlx.Tx, id int64) (int64, error) {
	var ownerID int64
	err := sqlx.GetContext(ctx, pick(r.db, tx), &ownerID, `SELECT user_id FROM videos WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, model.ErrVideoNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("get video owner: %w", err)
	}
	return ownerID, nil
}

// Delete removes the row. Likes, bookmarks, comments and comment likes
// cascade.
func (r *videoRepository) Delete(ctx context.Context, tx *sqlx.Tx, id int64) error {
	result, err := pick(r.db, tx).ExecContext(ctx, `DELETE FROM videos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete video: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrVideoNotFound
	}
	return nil
}

func (r *videoRepository) IncrementViews(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `UPDATE videos SET views = views + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("increment views: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrVideoNotFound
	}
	return nil
}

func (r *videoRepository) GetCards(ctx context.Context, ids []int64) ([]model.VideoCard, error) {
	if len(ids) == 0 {
		return []model.VideoCard{}, nil
	}

	query := `
		SELECT v.id, v.user_id, v.title, v.description, v.media_url, v.media_key, v.views, v.created_at,
		       u.username, u.avatar_url
		FROM videos v
		JOIN users u ON u.id = v.user_id
		WHERE v.id = ANY($1)
	`
	var rows []model.VideoCard
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("get video cards: %w", err)
	}

	byID := make(map[int64]model.VideoCard, len(rows))
	for _, c := range rows {
		byID[c.ID] = c
	}

	cards := make([]model.VideoCard, 0, len(ids))
	for _, id := range ids {
		if c, ok := byID[id]; ok {
			cards = append(cards, c)
		}
	}
	return cards, nil
}

func (r *videoRepository) ListIDsByOwner(ctx context.Context, ownerID int64) ([]int64, error) {
	query := `SELECT id FROM videos WHERE user_id = $1 ORDER BY created_at DESC, id DESC`
	return r.selectIDs(ctx, "list owner videos", query, ownerID)
}

func (r *videoRepository) ListIDsLikedBy(ctx context.Context, userID int64) ([]int64, error) {
	query := `SELECT video_id FROM likes WHERE user_id = $1 ORDER BY created_at DESC, video_id DESC`
	return r.selectIDs(ctx, "list liked videos", query, userID)
}

func (r *videoRepository) ListIDsBookmarkedBy(ctx context.Context, userID int64) ([]int64, error) {
	query := `SELECT video_id FROM bookmarks WHERE user_id = $1 ORDER BY created_at DESC, video_id DESC`
	return r.selectIDs(ctx, "list bookmarked videos", query, userID)
}

// SearchIDs matches q literally and case-insensitively against title,
// description and owner username, newest first.
func (r *videoRepository) SearchIDs(ctx context.Context, q string, limit int) ([]int64, error) {
	query := `
		SELECT v.id
		FROM videos v
		JOIN users u ON u.id = v.user_id
		WHERE v.title ILIKE $1 ESCAPE '\'
		   OR v.description ILIKE $1 ESCAPE '\'
		   OR u.username ILIKE $1 ESCAPE '\'
		ORDER BY v.created_at DESC, v.id DESC
		LIMIT $2
	`
	return r.selectIDs(ctx, "search videos", query, containsPattern(q), limit)
}

func (r *videoRepository) selectIDs(ctx context.Context, op, query string, args ...interface{}) ([]int64, error) {
	ids := []int64{}
	if err := r.db.SelectContext(ctx, &ids, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return ids, nil
}
