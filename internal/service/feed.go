package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"omegavideos/internal/logging"
	"omegavideos/internal/metrics"
	"omegavideos/internal/model"
	"omegavideos/internal/ranking"
	"omegavideos/internal/repository"
)

const MaxSearchResults = 50

// TrendingIDCache holds the ranked trending order between requests.
type TrendingIDCache interface {
	Get(ctx context.Context) ([]int64, bool, error)
	Set(ctx context.Context, ids []int64) error
}

// FeedService assembles the read-side video lists.
type FeedService struct {
	signals repository.SignalRepository
	videos  repository.VideoRepository
	users   repository.UserRepository
	reader  CardReader
	cache   TrendingIDCache
	now     func() time.Time
	log     zerolog.Logger
}

func NewFeedService(
	signals repository.SignalRepository,
	videos repository.VideoRepository,
	users repository.UserRepository,
	reader CardReader,
) *FeedService {
	return &FeedService{
		signals: signals,
		videos:  videos,
		users:   users,
		reader:  reader,
		now:     time.Now,
		log:     logging.Component("FeedService"),
	}
}

// UseTrendingCache caches the trending order. Cache errors fall back to
// ranking from the store.
func (s *FeedService) UseTrendingCache(c TrendingIDCache) {
	s.cache = c
}

// Personalized returns one page of the feed ranked for viewerID. The store
// ranks and pages; the page is put through RankPersonalized so the order
// is the scoring engine's. Fewer than ranking.PageSize cards means the end
// of the feed.
func (s *FeedService) Personalized(ctx context.Context, viewerID int64, page int) ([]model.VideoCard, error) {
	defer observe("personalized", time.Now())

	now := s.now()
	cands, err := s.signals.FeedCandidates(ctx, viewerID, now, ranking.Offset(page), ranking.PageSize)
	if err != nil {
		return nil, err
	}

	return s.reader.Cards(ctx, viewerID, ranking.IDs(ranking.RankPersonalized(cands, now)))
}

// Trending returns the top videos of the trending window.
func (s *FeedService) Trending(ctx context.Context, viewerID int64) ([]model.VideoCard, error) {
	defer observe("trending", time.Now())

	if s.cache != nil {
		ids, found, err := s.cache.Get(ctx)
		if err != nil {
			s.log.Warn().Err(err).Msg("trending cache read failed")
		}
		if found {
			return s.reader.Cards(ctx, viewerID, ids)
		}
	}

	now := s.now()
	cands, err := s.signals.TrendingCandidates(ctx, now.Add(-ranking.TrendingWindow))
	if err != nil {
		return nil, err
	}

	ids := ranking.IDs(ranking.RankTrending(cands, now))
	if s.cache != nil {
		if err := s.cache.Set(ctx, ids); err != nil {
			s.log.Warn().Err(err).Msg("trending cache write failed")
		}
	}
	return s.reader.Cards(ctx, viewerID, ids)
}

// Search matches query literally, surrounding spaces included, against
// title, description and owner username. A blank query returns nothing.
func (s *FeedService) Search(ctx context.Context, viewerID int64, query string) ([]model.VideoCard, error) {
	defer observe("search", time.Now())

	if strings.TrimSpace(query) == "" {
		return []model.VideoCard{}, nil
	}

	ids, err := s.videos.SearchIDs(ctx, query, MaxSearchResults)
	if err != nil {
		return nil, err
	}
	return s.reader.Cards(ctx, viewerID, ids)
}

func (s *FeedService) UserVideos(ctx context.Context, viewerID int64, username string) ([]model.VideoCard, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	ids, err := s.videos.ListIDsByOwner(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return s.reader.Cards(ctx, viewerID, ids)
}

func (s *FeedService) LikedVideos(ctx context.Context, viewerID int64, username string) ([]model.VideoCard, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	ids, err := s.videos.ListIDsLikedBy(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return s.reader.Cards(ctx, viewerID, ids)
}

func (s *FeedService) Bookmarks(ctx context.Context, viewerID int64) ([]model.VideoCard, error) {
	if err := requireActor(viewerID); err != nil {
		return nil, err
	}
	ids, err := s.videos.ListIDsBookmarkedBy(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	return s.reader.Cards(ctx, viewerID, ids)
}

func observe(variant string, start time.Time) {
	metrics.FeedAssemblyDuration.WithLabelValues(variant).Observe(time.Since(start).Seconds())
}
