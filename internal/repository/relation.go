package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"omegavideos/internal/model"
)

// pqUniqueViolation is the SQLSTATE of a unique constraint violation.
const pqUniqueViolation = "23505"

// relationTable names a pair table. Values are compile-time constants,
// never request input.
type relationTable struct {
	name      string
	actorCol  string
	targetCol string
}

var (
	likesTable        = relationTable{name: "likes", actorCol: "user_id", targetCol: "video_id"}
	bookmarksTable    = relationTable{name: "bookmarks", actorCol: "user_id", targetCol: "video_id"}
	commentLikesTable = relationTable{name: "comment_likes", actorCol: "user_id", targetCol: "comment_id"}
	followsTable      = relationTable{name: "follows", actorCol: "follower_id", targetCol: "following_id"}
)

type relationRepository struct {
	db *sqlx.DB

	insertQuery string
	deleteQuery string
	countQuery  string
	existsQuery string
	label       string
}

func newRelationRepository(db *sqlx.DB, t relationTable) *relationRepository {
	return &relationRepository{
		db: db,
		insertQuery: fmt.Sprintf(
			`INSERT INTO %s (%s, %s) VALUES ($1, $2) ON CONFLICT (%s, %s) DO NOTHING`,
			t.name, t.actorCol, t.targetCol, t.actorCol, t.targetCol),
		deleteQuery: fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2`, t.name, t.actorCol, t.targetCol),
		countQuery:  fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s = $1`, t.name, t.targetCol),
		existsQuery: fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM %s WHERE %s = $1 AND %s = $2)`, t.name, t.actorCol, t.targetCol),
		label:       t.name,
	}
}

func NewLikeRepository(db *sqlx.DB) RelationRepository {
	return newRelationRepository(db, likesTable)
}

func NewBookmarkRepository(db *sqlx.DB) RelationRepository {
	return newRelationRepository(db, bookmarksTable)
}

func NewCommentLikeRepository(db *sqlx.DB) RelationRepository {
	return newRelationRepository(db, commentLikesTable)
}

func (r *relationRepository) Insert(ctx context.Context, tx *sqlx.Tx, actorID, targetID int64) error {
	result, err := pick(r.db, tx).ExecContext(ctx, r.insertQuery, actorID, targetID)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrDuplicateRelation
		}
		return fmt.Errorf("insert %s: %w", r.label, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrDuplicateRelation
	}
	return nil
}

func (r *relationRepository) Delete(ctx context.Context, tx *sqlx.Tx, actorID, targetID int64) error {
	if _, err := pick(r.db, tx).ExecContext(ctx, r.deleteQuery, actorID, targetID); err != nil {
		return fmt.Errorf("delete %s: %w", r.label, err)
	}
	return nil
}

func (r *relationRepository) Count(ctx context.Context, tx *sqlx.Tx, targetID int64) (int, error) {
	var count int
	if err := sqlx.GetContext(ctx, pick(r.db, tx), &count, r.countQuery, targetID); err != nil {
		return 0, fmt.Errorf("count %s: %w", r.label, err)
	}
	return count, nil
}

func (r *relationRepository) Exists(ctx context.Context, actorID, targetID int64) (bool, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, r.existsQuery, actorID, targetID); err != nil {
		return false, fmt.Errorf("check %s existence: %w", r.label, err)
	}
	return exists, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation
}
