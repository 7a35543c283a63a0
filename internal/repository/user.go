package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"omegavideos/internal/model"
)

// userRepository implements UserRepository using sqlx
type userRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, username, email, password_hashed, avatar_url, avatar_key, bio, language, created_at`

// Create inserts a new user into the database
func (r *userRepository) Create(ctx context.Context, u *model.User) error {
	query := `
		INSERT INTO users (username, email, password_hashed, avatar_url)
		VALUES ($1, $2, $3, $4)
		RETURNING id, bio, language, created_at
	`
	row := r.db.QueryRowxContext(ctx, query, u.Username, u.Email, u.PasswordHashed, u.AvatarURL)
	if err := row.Scan(&u.ID, &u.Bio, &u.Language, &u.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return model.ErrUserExists
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by their ID
func (r *userRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER($1)`, email)
}

// GetByUsername retrieves a user by their username
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

func (r *userRepository) getOne(ctx context.Context, query string, arg interface{}) (*model.User, error) {
	var u model.User
	err := r.db.GetContext(ctx, &u, query, arg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

func (r *userRepository) Exists(ctx context.Context, tx *sqlx.Tx, id int64) (bool, error) {
	var exists bool
	err := sqlx.GetContext(ctx, pick(r.db, tx), &exists, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, id)
	if err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}
	return exists, nil
}

// UpdateProfile sets the bio and, when avatarURL is non-nil, the avatar.
func (r *userRepository) UpdateProfile(ctx context.Context, userID int64, bio string, avatarURL, avatarKey *string) error {
	query := `
		UPDATE users
		SET bio = $2,
		    avatar_url = COALESCE($3, avatar_url),
		    avatar_key = CASE WHEN $3::text IS NULL THEN avatar_key ELSE $4 END
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query, userID, bio, avatarURL, avatarKey)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	return expectOne(result, model.ErrUserNotFound)
}

func (r *userRepository) UpdateLanguage(ctx context.Context, userID int64, language string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE users SET language = $2 WHERE id = $1`, userID, language)
	if err != nil {
		return fmt.Errorf("failed to update language: %w", err)
	}
	return expectOne(result, model.ErrUserNotFound)
}

// Stats recomputes the profile counters from the fact tables.
func (r *userRepository) Stats(ctx context.Context, userID int64) (*model.ProfileStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM videos WHERE user_id = $1) AS videos,
			(SELECT COUNT(*) FROM follows WHERE following_id = $1) AS followers,
			(SELECT COUNT(*) FROM follows WHERE follower_id = $1) AS following,
			(SELECT COUNT(*) FROM likes l JOIN videos v ON v.id = l.video_id WHERE v.user_id = $1) AS total_likes
	`
	var stats model.ProfileStats
	if err := r.db.GetContext(ctx, &stats, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get profile stats: %w", err)
	}
	return &stats, nil
}

// Search matches usernames containing q, case-insensitively.
func (r *userRepository) Search(ctx context.Context, q string, viewerID int64, limit int) ([]model.UserSummary, error) {
	query := `
		SELECT u.id, u.username, u.avatar_url, u.bio,
		       EXISTS(SELECT 1 FROM follows f WHERE f.follower_id = $2 AND f.following_id = u.id) AS is_following
		FROM users u
		WHERE u.username ILIKE $1 ESCAPE '\'
		ORDER BY (SELECT COUNT(*) FROM follows f WHERE f.following_id = u.id) DESC, u.id ASC
		LIMIT $3
	`
	users := []model.UserSummary{}
	if err := r.db.SelectContext(ctx, &users, query, containsPattern(q), viewerID, limit); err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	return users, nil
}

func expectOne(result sql.Result, notFound error) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return notFound
	}
	return nil
}
