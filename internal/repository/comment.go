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

type commentRepository struct {
	db *sqlx.DB
}

func NewCommentRepository(db *sqlx.DB) CommentRepository {
	return &commentRepository{db: db}
}

// Create inserts a comment and fills in its id and created_at.
func (r *commentRepository) Create(ctx context.Context, tx *sqlx.Tx, c *model.Comment) error {
	query := `
		INSERT INTO comments (video_id, user_id, parent_id, text)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	row := pick(r.db, tx).QueryRowxContext(ctx, query, c.VideoID, c.UserID, c.ParentID, c.Text)
	if err := row.Scan(&c.ID, &c.CreatedAt); err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, tx *sqlx.Tx, id int64) (*model.Comment, error) {
	query := `
		SELECT c.id, c.video_id, c.user_id, c.parent_id, c.text, c.created_at,
		       u.username, u.avatar_url
		FROM comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.id = $1
	`
	var c model.Comment
	err := sqlx.GetContext(ctx, pick(r.db, tx), &c, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrCommentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get comment: %w", err)
	}
	return &c, nil
}

const commentReadColumns = `
	c.id, c.video_id, c.user_id, c.parent_id, c.text, c.created_at,
	u.username, u.avatar_url,
	(SELECT COUNT(*) FROM comment_likes WHERE comment_id = c.id) AS likes,
	EXISTS(SELECT 1 FROM comment_likes WHERE comment_id = c.id AND user_id = $2) AS is_liked,
	(SELECT COUNT(*) FROM comments r WHERE r.parent_id = c.id) AS replies_count`

// ListTopLevel returns the comments of a video without a parent, newest first.
func (r *commentRepository) ListTopLevel(ctx context.Context, videoID, viewerID int64) ([]model.Comment, error) {
	query := `SELECT` + commentReadColumns + `
		FROM comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.video_id = $1 AND c.parent_id IS NULL
		ORDER BY c.created_at DESC, c.id DESC
	`
	comments := []model.Comment{}
	if err := r.db.SelectContext(ctx, &comments, query, videoID, viewerID); err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}

// ListReplies returns the direct replies of a comment, oldest first.
func (r *commentRepository) ListReplies(ctx context.Context, parentID, viewerID int64) ([]model.Comment, error) {
	query := `SELECT` + commentReadColumns + `
		FROM comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.parent_id = $1
		ORDER BY c.created_at ASC, c.id ASC
	`
	comments := []model.Comment{}
	if err := r.db.SelectContext(ctx, &comments, query, parentID, viewerID); err != nil {
		return nil, fmt.Errorf("list replies: %w", err)
	}
	return comments, nil
}

// DeleteThread deletes in dependency order: likes on descendants,
// descendants, likes on the comment, the comment. The returned ids start
// with the root.
func (r *commentRepository) DeleteThread(ctx context.Context, tx *sqlx.Tx, id int64) ([]int64, error) {
	q := pick(r.db, tx)

	descendantsQuery := `
		WITH RECURSIVE thread AS (
			SELECT id FROM comments WHERE parent_id = $1
			UNION ALL
			SELECT c.id FROM comments c JOIN thread t ON c.parent_id = t.id
		)
		SELECT id FROM thread
	`
	var descendants []int64
	if err := sqlx.SelectContext(ctx, q, &descendants, descendantsQuery, id); err != nil {
		return nil, fmt.Errorf("collect replies: %w", err)
	}

	if len(descendants) > 0 {
		if _, err := q.ExecContext(ctx, `DELETE FROM comment_likes WHERE comment_id = ANY($1)`, pq.Array(descendants)); err != nil {
			return nil, fmt.Errorf("delete reply likes: %w", err)
		}
		if _, err := q.ExecContext(ctx, `DELETE FROM comments WHERE id = ANY($1)`, pq.Array(descendants)); err != nil {
			return nil, fmt.Errorf("delete replies: %w", err)
		}
	}

	if _, err := q.ExecContext(ctx, `DELETE FROM comment_likes WHERE comment_id = $1`, id); err != nil {
		return nil, fmt.Errorf("delete comment likes: %w", err)
	}

	result, err := q.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("delete comment: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return nil, model.ErrCommentNotFound
	}

	return append([]int64{id}, descendants...), nil
}
