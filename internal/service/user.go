package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"omegavideos/internal/logging"
	"omegavideos/internal/model"
	"omegavideos/internal/repository"
)

const maxUserSearchResults = 20

// AvatarMedia stores and removes avatar images.
type AvatarMedia interface {
	UploadAvatar(ctx context.Context, file *model.MediaFile) (*model.UploadResult, error)
	Delete(ctx context.Context, key string) error
	DefaultAvatarURL() *string
}

// UserService handles business logic for user operations
type UserService struct {
	repo    repository.UserRepository
	follows repository.RelationRepository
	media   AvatarMedia
	log     zerolog.Logger
}

func NewUserService(repo repository.UserRepository, follows repository.RelationRepository, media AvatarMedia) *UserService {
	return &UserService{
		repo:    repo,
		follows: follows,
		media:   media,
		log:     logging.Component("UserService"),
	}
}

// Register creates an account. The request has already passed struct
// validation.
func (s *UserService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Username:       strings.TrimSpace(req.Username),
		Email:          strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHashed: string(hashedPassword),
		AvatarURL:      s.media.DefaultAvatarURL(),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info().Int64("user_id", user.ID).Str("username", user.Username).Msg("user registered")
	return user, nil
}

// Login authenticates by email and password. Unknown email and wrong
// password give the same error.
func (s *UserService) Login(ctx context.Context, req *model.LoginRequest) (*model.User, error) {
	user, err := s.repo.GetByEmail(ctx, strings.TrimSpace(req.Email))
	if errors.Is(err, model.ErrUserNotFound) {
		return nil, model.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHashed), []byte(req.Password)); err != nil {
		return nil, model.ErrInvalidCredentials
	}
	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id int64) (*model.User, error) {
	if err := requireActor(id); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// Profile returns the public profile with counters recomputed on read.
func (s *UserService) Profile(ctx context.Context, viewerID int64, username string) (*model.Profile, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	stats, err := s.repo.Stats(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	profile := &model.Profile{
		ID:           user.ID,
		Username:     user.Username,
		AvatarURL:    user.AvatarURL,
		Bio:          user.Bio,
		CreatedAt:    user.CreatedAt,
		ProfileStats: *stats,
		IsOwner:      viewerID != model.AnonymousViewerID && viewerID == user.ID,
	}

	if viewerID != model.AnonymousViewerID && viewerID != user.ID {
		if profile.IsFollowing, err = s.follows.Exists(ctx, viewerID, user.ID); err != nil {
			return nil, err
		}
	}
	return profile, nil
}

func (s *UserService) Search(ctx context.Context, viewerID int64, query string) ([]model.UserSummary, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []model.UserSummary{}, nil
	}
	return s.repo.Search(ctx, query, viewerID, maxUserSearchResults)
}

func (s *UserService) UpdateSettings(ctx context.Context, userID int64, req *model.UpdateSettingsRequest) (*model.User, error) {
	if err := requireActor(userID); err != nil {
		return nil, err
	}
	if req.Language != model.LanguageEnglish && req.Language != model.LanguageRussian {
		return nil, model.ErrInvalidLanguage
	}
	if err := s.repo.UpdateLanguage(ctx, userID, req.Language); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, userID)
}

// UpdateProfile sets the bio and optionally replaces the avatar. The old
// avatar object is removed once the new one is recorded.
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, req model.UpdateProfileRequest) (*model.User, error) {
	if err := requireActor(userID); err != nil {
		return nil, err
	}

	bio := strings.TrimSpace(req.Bio)
	if utf8.RuneCountInString(bio) > model.MaxBioLength {
		return nil, model.ErrBioTooLong
	}

	current, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	var avatarURL, avatarKey *string
	if req.Avatar != nil {
		uploaded, err := s.media.UploadAvatar(ctx, req.Avatar)
		if err != nil {
			return nil, err
		}
		avatarURL, avatarKey = &uploaded.URL, &uploaded.Key
	}

	if err := s.repo.UpdateProfile(ctx, userID, bio, avatarURL, avatarKey); err != nil {
		if avatarKey != nil {
			s.deleteAvatar(ctx, *avatarKey)
		}
		return nil, err
	}

	if avatarKey != nil && current.AvatarKey != nil {
		s.deleteAvatar(ctx, *current.AvatarKey)
	}

	return s.repo.GetByID(ctx, userID)
}

func (s *UserService) deleteAvatar(ctx context.Context, key string) {
	if err := s.media.Delete(ctx, key); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("failed to delete avatar object")
	}
}
