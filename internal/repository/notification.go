package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"omegavideos/internal/model"
)

type notificationRepository struct {
	db *sqlx.DB
}

func NewNotificationRepository(db *sqlx.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

// Create inserts a new notification.
func (r *notificationRepository) Create(ctx context.Context, n model.NotificationIntent) error {
	query := `
		INSERT INTO notifications (user_id, actor_id, type, video_id, comment_id)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query, n.RecipientID, n.ActorID, n.Type, n.VideoID, n.CommentID)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

// List returns the newest notifications of userID with actor and video
// details joined in.
func (r *notificationRepository) List(ctx context.Context, userID int64, limit int) ([]model.Notification, error) {
	query := `
		SELECT n.id, n.user_id, n.actor_id, n.type, n.video_id, n.comment_id, n.is_read, n.created_at,
		       u.username AS actor_username, u.avatar_url AS actor_avatar_url,
		       v.title AS video_title, v.media_url AS video_media_url
		FROM notifications n
		JOIN users u ON u.id = n.actor_id
		LEFT JOIN videos v ON v.id = n.video_id
		WHERE n.user_id = $1
		ORDER BY n.created_at DESC, n.id DESC
		LIMIT $2
	`
	notifications := []model.Notification{}
	if err := r.db.SelectContext(ctx, &notifications, query, userID, limit); err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return notifications, nil
}

func (r *notificationRepository) UnreadCount(ctx context.Context, userID int64) (int, error) {
	query := `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = FALSE`
	var count int
	if err := r.db.GetContext(ctx, &count, query, userID); err != nil {
		return 0, fmt.Errorf("get unread count: %w", err)
	}
	return count, nil
}

// MarkRead marks the given notifications as read. Ids owned by other
// users are ignored.
func (r *notificationRepository) MarkRead(ctx context.Context, userID int64, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	query := `
		UPDATE notifications
		SET is_read = TRUE
		WHERE user_id = $1 AND id = ANY($2) AND is_read = FALSE
	`
	if _, err := r.db.ExecContext(ctx, query, userID, pq.Array(ids)); err != nil {
		return fmt.Errorf("mark notifications read: %w", err)
	}
	return nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID int64) error {
	query := `UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND is_read = FALSE`
	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("mark all notifications read: %w", err)
	}
	return nil
}

func (r *notificationRepository) Delete(ctx context.Context, userID, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM notifications WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrNotificationNotFound
	}
	return nil
}

func (r *notificationRepository) DeleteAll(ctx context.Context, userID int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM notifications WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("clear notifications: %w", err)
	}
	return nil
}

func (r *notificationRepository) DeleteByVideo(ctx context.Context, tx *sqlx.Tx, videoID int64) error {
	if _, err := pick(r.db, tx).ExecContext(ctx, `DELETE FROM notifications WHERE video_id = $1`, videoID); err != nil {
		return fmt.Errorf("purge video notifications: %w", err)
	}
	return nil
}

func (r *notificationRepository) DeleteByComments(ctx context.Context, tx *sqlx.Tx, commentIDs []int64) error {
	if len(commentIDs) == 0 {
		return nil
	}
	query := `DELETE FROM notifications WHERE comment_id = ANY($1)`
	if _, err := pick(r.db, tx).ExecContext(ctx, query, pq.Array(commentIDs)); err != nil {
		return fmt.Errorf("purge comment notifications: %w", err)
	}
	return nil
}
