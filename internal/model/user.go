package model

import (
	"errors"
	"time"
)

// AnonymousViewerID stands in for "no authenticated account" in every
// viewer-relative query. No account ever has this id.
const AnonymousViewerID int64 = 0

// Supported interface languages
const (
	LanguageEnglish = "en"
	LanguageRussian = "ru"
)

const MaxBioLength = 200

// User represents an account
type User struct {
	ID             int64     `db:"id" json:"id"`
	Username       string    `db:"username" json:"username"`
	Email          string    `db:"email" json:"email"`
	PasswordHashed string    `db:"password_hashed" json:"-"` // "-" hides from JSON output
	AvatarURL      *string   `db:"avatar_url" json:"avatar_url"`
	AvatarKey      *string   `db:"avatar_key" json:"-"`
	Bio            string    `db:"bio" json:"bio"`
	Language       string    `db:"language" json:"language"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// UserSummary is the compact account shape used in lists.
type UserSummary struct {
	ID          int64   `db:"id" json:"id"`
	Username    string  `db:"username" json:"username"`
	AvatarURL   *string `db:"avatar_url" json:"avatar_url"`
	Bio         string  `db:"bio" json:"bio"`
	IsFollowing bool    `db:"is_following" json:"is_following"`
}

// ProfileStats are recomputed from the fact tables on every read.
type ProfileStats struct {
	Videos     int `db:"videos" json:"videos"`
	Followers  int `db:"followers" json:"followers"`
	Following  int `db:"following" json:"following"`
	TotalLikes int `db:"total_likes" json:"total_likes"`
}

// Profile is the public profile page.
type Profile struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	AvatarURL *string   `json:"avatar_url"`
	Bio       string    `json:"bio"`
	CreatedAt time.Time `json:"created_at"`
	ProfileStats
	IsFollowing bool `json:"is_following"`
	IsOwner     bool `json:"is_owner"`
}

// RegisterRequest represents the data needed to register a new user
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=30,alphanum"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// LoginRequest represents the data needed to log in
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is returned after register and login
type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
	User      *User  `json:"user"`
}

// UpdateSettingsRequest is the body of PUT /users/settings.
type UpdateSettingsRequest struct {
	Language string `json:"language" validate:"required,oneof=en ru"`
}

// UpdateProfileRequest carries the editable profile fields.
// Avatar is optional; nil keeps the current one.
type UpdateProfileRequest struct {
	Bio    string
	Avatar *MediaFile
}

var (
	// ErrUserExists is returned when the username or email is taken
	ErrUserExists = errors.New("username or email already exists")

	// ErrInvalidCredentials is returned when login credentials are incorrect
	ErrInvalidCredentials = errors.New("invalid credentials")
)
