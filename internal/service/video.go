package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"

	"omegavideos/internal/fanout"
	"omegavideos/internal/logging"
	"omegavideos/internal/model"
	"omegavideos/internal/repository"
)

// VideoMedia stores and removes video files.
type VideoMedia interface {
	UploadVideo(ctx context.Context, file *model.MediaFile) (*model.UploadResult, error)
	Delete(ctx context.Context, key string) error
}

type VideoService struct {
	tx            TxRunner
	videos        repository.VideoRepository
	likes         repository.RelationRepository
	bookmarks     repository.RelationRepository
	follows       repository.FollowRepository
	notifications repository.NotificationRepository
	media         VideoMedia
	reader        CardReader
	dispatcher    fanout.Dispatcher
	log           zerolog.Logger
}

func NewVideoService(
	tx TxRunner,
	videos repository.VideoRepository,
	likes repository.RelationRepository,
	bookmarks repository.RelationRepository,
	follows repository.FollowRepository,
	notifications repository.NotificationRepository,
	media VideoMedia,
	reader CardReader,
	dispatcher fanout.Dispatcher,
) *VideoService {
	return &VideoService{
		tx:            tx,
		videos:        videos,
		likes:         likes,
		bookmarks:     bookmarks,
		follows:       follows,
		notifications: notifications,
		media:         media,
		reader:        reader,
		dispatcher:    dispatcher,
		log:           logging.Component("VideoService"),
	}
}

func validateVideoFields(req model.CreateVideoRequest) (string, string, error) {
	title := strings.TrimSpace(req.Title)
	description := strings.TrimSpace(req.Description)

	if title == "" {
		return "", "", model.ErrTitleRequired
	}
	if utf8.RuneCountInString(title) > model.MaxTitleLength {
		return "", "", model.ErrTitleTooLong
	}
	if utf8.RuneCountInString(description) > model.MaxDescriptionLength {
		return "", "", model.ErrDescriptionTooLong
	}
	return title, description, nil
}

// Upload stores the file, then writes the row and snapshots the uploader's
// followers in one transaction. Each follower gets a new_video notification.
func (s *VideoService) Upload(ctx context.Context, actorID int64, req model.CreateVideoRequest, file *model.MediaFile) (*model.VideoCard, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}

	title, description, err := validateVideoFields(req)
	if err != nil {
		return nil, err
	}

	uploaded, err := s.media.UploadVideo(ctx, file)
	if err != nil {
		return nil, err
	}

	video := &model.Video{
		UserID:      actorID,
		Title:       title,
		Description: description,
		MediaURL:    uploaded.URL,
		MediaKey:    uploaded.Key,
	}

	var intents []model.NotificationIntent
	err = s.tx.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.videos.Create(ctx, tx, video); err != nil {
			return err
		}

		followers, err := s.follows.FollowerIDs(ctx, tx, actorID)
		if err != nil {
			return err
		}

		videoID := video.ID
		intents = make([]model.NotificationIntent, 0, len(followers))
		for _, followerID := range followers {
			intents = append(intents, model.NotificationIntent{
				RecipientID: followerID,
				ActorID:     actorID,
				Type:        model.NotificationTypeNewVideo,
				VideoID:     &videoID,
			})
		}
		return nil
	})
	if err != nil {
		if delErr := s.media.Delete(ctx, uploaded.Key); delErr != nil {
			s.log.Warn().Err(delErr).Str("key", uploaded.Key).Msg("failed to remove orphaned upload")
		}
		return nil, err
	}

	res := s.dispatcher.Dispatch(ctx, intents)
	s.log.Info().
		Int64("video_id", video.ID).
		Int64("user_id", actorID).
		Int("followers", len(intents)).
		Int("failed", res.Failed).
		Msg("video uploaded")

	return s.card(ctx, actorID, video.ID)
}

// Get counts a view and returns the card. Every fetch counts.
func (s *VideoService) Get(ctx context.Context, viewerID, videoID int64) (*model.VideoCard, error) {
	if err := s.videos.IncrementViews(ctx, videoID); err != nil {
		return nil, err
	}
	return s.card(ctx, viewerID, videoID)
}

// Delete removes the video for its owner. Notifications that point at it
// are purged in the same transaction; the media object is removed after
// commit and a failure there is only logged.
func (s *VideoService) Delete(ctx context.Context, actorID, videoID int64) error {
	if err := requireActor(actorID); err != nil {
		return err
	}

	video, err := s.videos.GetByID(ctx, videoID)
	if err != nil {
		return err
	}
	if video.UserID != actorID {
		return model.ErrNotVideoOwner
	}

	err = s.tx.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.notifications.DeleteByVideo(ctx, tx, videoID); err != nil {
			return err
		}
		return s.videos.Delete(ctx, tx, videoID)
	})
	if err != nil {
		return err
	}

	if err := s.media.Delete(ctx, video.MediaKey); err != nil {
		s.log.Warn().Err(err).Int64("video_id", videoID).Str("key", video.MediaKey).Msg("failed to delete media object")
	}
	return nil
}

// ToggleLike likes or unlikes the video. The owner is notified when the
// like is created.
func (s *VideoService) ToggleLike(ctx context.Context, actorID, videoID int64) (model.ToggleResult, error) {
	if err := requireActor(actorID); err != nil {
		return model.ToggleResult{}, err
	}

	var ownerID int64
	res, err := toggle(ctx, s.tx, s.likes, "like", actorID, videoID, func(tx *sqlx.Tx) error {
		var err error
		ownerID, err = s.videos.OwnerID(ctx, tx, videoID)
		return err
	})
	if err != nil {
		return model.ToggleResult{}, err
	}

	if res.State {
		s.dispatcher.Dispatch(ctx, []model.NotificationIntent{{
			RecipientID: ownerID,
			ActorID:     actorID,
			Type:        model.NotificationTypeLike,
			VideoID:     &videoID,
		}})
	}
	return res, nil
}

func (s *VideoService) ToggleBookmark(ctx context.Context, actorID, videoID int64) (model.ToggleResult, error) {
	if err := requireActor(actorID); err != nil {
		return model.ToggleResult{}, err
	}

	return toggle(ctx, s.tx, s.bookmarks, "bookmark", actorID, videoID, func(tx *sqlx.Tx) error {
		_, err := s.videos.OwnerID(ctx, tx, videoID)
		return err
	})
}

func (s *VideoService) card(ctx context.Context, viewerID, videoID int64) (*model.VideoCard, error) {
	cards, err := s.reader.Cards(ctx, viewerID, []int64{videoID})
	if err != nil {
		return nil, err
	}
	if len(cards) == 0 {
		return nil, model.ErrVideoNotFound
	}
	return &cards[0], nil
}
