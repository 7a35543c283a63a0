package service

import (
	"context"

	"omegavideos/internal/model"
	"omegavideos/internal/repository"
)

// CardReader hydrates video ids into self-contained cards.
type CardReader interface {
	Cards(ctx context.Context, viewerID int64, ids []int64) ([]model.VideoCard, error)
}

// VideoReader joins owner identity, counters and viewer flags onto videos
// with one batched query each.
type VideoReader struct {
	videos  repository.VideoRepository
	signals repository.SignalRepository
}

func NewVideoReader(videos repository.VideoRepository, signals repository.SignalRepository) *VideoReader {
	return &VideoReader{videos: videos, signals: signals}
}

// Cards keeps the order of ids. Ids that no longer exist are dropped.
func (r *VideoReader) Cards(ctx context.Context, viewerID int64, ids []int64) ([]model.VideoCard, error) {
	if len(ids) == 0 {
		return []model.VideoCard{}, nil
	}

	cards, err := r.videos.GetCards(ctx, ids)
	if err != nil {
		return nil, err
	}

	counts, err := r.signals.Counts(ctx, ids)
	if err != nil {
		return nil, err
	}

	flags, err := r.signals.ViewerFlags(ctx, viewerID, ids)
	if err != nil {
		return nil, err
	}

	for i := range cards {
		c := counts[cards[i].ID]
		f := flags[cards[i].ID]
		cards[i].Likes = c.Likes
		cards[i].Comments = c.Comments
		cards[i].IsLiked = model.Bit(f.Liked)
		cards[i].IsBookmarked = model.Bit(f.Bookmarked)
	}
	return cards, nil
}
