package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"omegavideos/internal/model"
)

// =============================================================================
// REGISTER / LOGIN
// =============================================================================

func TestUserService_Register_HashesPasswordAndNormalizesEmail(t *testing.T) {
	// ARRANGE
	var created *model.User
	repo := &mockUserRepository{
		createFn: func(ctx context.Context, user *model.User) error {
			user.ID = 1
			created = user
			return nil
		},
	}
	svc := NewUserService(repo, newMemRelation(), &mockMedia{})

	// ACT
	user, err := svc.Register(context.Background(), &model.RegisterRequest{
		Username: "alice",
		Email:    " Alice@Example.COM ",
		Password: "secret123",
	})

	// ASSERT
	require.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)
	assert.Equal(t, "alice@example.com", created.Email)
	assert.NotEqual(t, "secret123", created.PasswordHashed)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.PasswordHashed), []byte("secret123")))
	require.NotNil(t, created.AvatarURL)
	assert.Equal(t, "/static/default-avatar.png", *created.AvatarURL)
}

func TestUserService_Register_Duplicate(t *testing.T) {
	repo := &mockUserRepository{
		createFn: func(ctx context.Context, user *model.User) error { return model.ErrUserExists },
	}
	svc := NewUserService(repo, newMemRelation(), &mockMedia{})

	_, err := svc.Register(context.Background(), &model.RegisterRequest{Username: "alice", Email: "a@b.co", Password: "secret123"})

	assert.ErrorIs(t, err, model.ErrUserExists)
}

func TestUserService_Login(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)

	repo := &mockUserRepository{
		getByEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			if email == "alice@example.com" {
				return &model.User{ID: 1, Email: email, PasswordHashed: string(hash)}, nil
			}
			return nil, model.ErrUserNotFound
		},
	}
	svc := NewUserService(repo, newMemRelation(), &mockMedia{})

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{"valid", "alice@example.com", "secret123", nil},
		{"wrong password", "alice@example.com", "nope", model.ErrInvalidCredentials},
		{"unknown email", "bob@example.com", "secret123", model.ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := svc.Login(context.Background(), &model.LoginRequest{Email: tt.email, Password: tt.password})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int64(1), user.ID)
		})
	}
}

// =============================================================================
// PROFILE
// =============================================================================

func TestUserService_Profile_ViewerFlags(t *testing.T) {
	// ARRANGE: user 1 follows bob (2)
	follows := newMemRelation()
	require.NoError(t, follows.Insert(context.Background(), nil, 1, 2))
	repo := &mockUserRepository{
		getByUsernameFn: func(ctx context.Context, username string) (*model.User, error) {
			return &model.User{ID: 2, Username: username}, nil
		},
		statsFn: func(ctx context.Context, userID int64) (*model.ProfileStats, error) {
			return &model.ProfileStats{Videos: 3, Followers: 1, TotalLikes: 9}, nil
		},
	}
	svc := NewUserService(repo, follows, &mockMedia{})
	ctx := context.Background()

	tests := []struct {
		name          string
		viewer        int64
		wantFollowing bool
		wantOwner     bool
	}{
		{"follower", 1, true, false},
		{"owner", 2, false, true},
		{"anonymous", model.AnonymousViewerID, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// ACT
			p, err := svc.Profile(ctx, tt.viewer, "bob")

			// ASSERT
			require.NoError(t, err)
			assert.Equal(t, tt.wantFollowing, p.IsFollowing)
			assert.Equal(t, tt.wantOwner, p.IsOwner)
			assert.Equal(t, 9, p.TotalLikes)
		})
	}
}

func TestUserService_UpdateSettings_RejectsUnknownLanguage(t *testing.T) {
	repo := &mockUserRepository{}
	svc := NewUserService(repo, newMemRelation(), &mockMedia{})

	_, err := svc.UpdateSettings(context.Background(), 1, &model.UpdateSettingsRequest{Language: "de"})

	assert.ErrorIs(t, err, model.ErrInvalidLanguage)
	assert.Empty(t, repo.language)
}

func TestUserService_UpdateProfile_BioTooLong(t *testing.T) {
	media := &mockMedia{}
	svc := NewUserService(&mockUserRepository{}, newMemRelation(), media)

	_, err := svc.UpdateProfile(context.Background(), 1, model.UpdateProfileRequest{Bio: strings.Repeat("b", 201)})

	assert.ErrorIs(t, err, model.ErrBioTooLong)
	assert.Zero(t, media.uploads)
}

func TestUserService_UpdateProfile_ReplacesAvatar(t *testing.T) {
	// ARRANGE
	oldKey := "avatars/old.jpg"
	var gotKey *string
	repo := &mockUserRepository{
		getByIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			return &model.User{ID: id, AvatarKey: &oldKey}, nil
		},
		updateProfileFn: func(ctx context.Context, userID int64, bio string, avatarURL, avatarKey *string) error {
			gotKey = avatarKey
			return nil
		},
	}
	media := &mockMedia{}
	svc := NewUserService(repo, newMemRelation(), media)

	// ACT
	_, err := svc.UpdateProfile(context.Background(), 1, model.UpdateProfileRequest{
		Bio:    "hi",
		Avatar: &model.MediaFile{Filename: "me.png"},
	})

	// ASSERT
	require.NoError(t, err)
	require.NotNil(t, gotKey)
	assert.Equal(t, "avatars/new.bin", *gotKey)
	assert.Equal(t, []string{oldKey}, media.deleted)
}

func TestUserService_UpdateProfile_RemovesNewAvatarOnFailure(t *testing.T) {
	repo := &mockUserRepository{
		getByIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			return &model.User{ID: id}, nil
		},
		updateProfileFn: func(ctx context.Context, userID int64, bio string, avatarURL, avatarKey *string) error {
			return errBoom
		},
	}
	media := &mockMedia{}
	svc := NewUserService(repo, newMemRelation(), media)

	_, err := svc.UpdateProfile(context.Background(), 1, model.UpdateProfileRequest{Avatar: &model.MediaFile{}})

	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, []string{"avatars/new.bin"}, media.deleted)
}
