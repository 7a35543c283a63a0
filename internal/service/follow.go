package service

import (
	"context"

	"github.com/jmoiron/sqlx"

	"omegavideos/internal/fanout"
	"omegavideos/internal/model"
	"omegavideos/internal/repository"
)

type FollowService struct {
	tx         TxRunner
	follows    repository.FollowRepository
	users      repository.UserRepository
	dispatcher fanout.Dispatcher
}

func NewFollowService(
	tx TxRunner,
	follows repository.FollowRepository,
	users repository.UserRepository,
	dispatcher fanout.Dispatcher,
) *FollowService {
	return &FollowService{
		tx:         tx,
		follows:    follows,
		users:      users,
		dispatcher: dispatcher,
	}
}

// ToggleFollow follows or unfollows targetID. Count is the target's
// follower count afterwards.
func (s *FollowService) ToggleFollow(ctx context.Context, actorID, targetID int64) (model.ToggleResult, error) {
	if err := requireActor(actorID); err != nil {
		return model.ToggleResult{}, err
	}
	if actorID == targetID {
		return model.ToggleResult{}, model.ErrInvalidFollowTarget
	}

	res, err := toggle(ctx, s.tx, s.follows, "follow", actorID, targetID, func(tx *sqlx.Tx) error {
		exists, err := s.users.Exists(ctx, tx, targetID)
		if err != nil {
			return err
		}
		if !exists {
			return model.ErrInvalidFollowTarget
		}
		return nil
	})
	if err != nil {
		return model.ToggleResult{}, err
	}

	if res.State {
		s.dispatcher.Dispatch(ctx, []model.NotificationIntent{{
			RecipientID: targetID,
			ActorID:     actorID,
			Type:        model.NotificationTypeFollow,
		}})
	}
	return res, nil
}

// Unfollow removes the edge if present. Repeating it is harmless.
func (s *FollowService) Unfollow(ctx context.Context, actorID, targetID int64) (model.ToggleResult, error) {
	if err := requireActor(actorID); err != nil {
		return model.ToggleResult{}, err
	}

	var res model.ToggleResult
	err := s.tx.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.follows.Delete(ctx, tx, actorID, targetID); err != nil {
			return err
		}
		count, err := s.follows.Count(ctx, tx, targetID)
		if err != nil {
			return err
		}
		res = model.ToggleResult{State: false, Count: count}
		return nil
	})
	return res, err
}

func (s *FollowService) Followers(ctx context.Context, viewerID int64, username string) ([]model.UserSummary, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.follows.Followers(ctx, user.ID, viewerID)
}

func (s *FollowService) Following(ctx context.Context, viewerID int64, username string) ([]model.UserSummary, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.follows.Following(ctx, user.ID, viewerID)
}
