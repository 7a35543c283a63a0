package service

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"

	"omegavideos/internal/metrics"
	"omegavideos/internal/model"
	"omegavideos/internal/repository"
)

// TxRunner runs fn in one transaction. *database.Transactor implements it.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error
}

func requireActor(actorID int64) error {
	if actorID == model.AnonymousViewerID {
		return model.ErrAuthenticationRequired
	}
	return nil
}

// toggle flips the (actor, target) relation in one transaction and reports
// the resulting state with the count read in it. check runs first in the
// same transaction and may be nil. The action is counted once committed.
func toggle(ctx context.Context, runner TxRunner, rel repository.RelationRepository, action string, actorID, targetID int64, check func(tx *sqlx.Tx) error) (model.ToggleResult, error) {
	var res model.ToggleResult
	err := runner.WithTx(ctx, func(tx *sqlx.Tx) error {
		if check != nil {
			if err := check(tx); err != nil {
				return err
			}
		}

		state := true
		err := rel.Insert(ctx, tx, actorID, targetID)
		if errors.Is(err, model.ErrDuplicateRelation) {
			state = false
			err = rel.Delete(ctx, tx, actorID, targetID)
		}
		if err != nil {
			return err
		}

		count, err := rel.Count(ctx, tx, targetID)
		if err != nil {
			return err
		}
		res = model.ToggleResult{State: state, Count: count}
		return nil
	})
	if err != nil {
		return model.ToggleResult{}, err
	}

	metrics.SocialActionsTotal.WithLabelValues(action, metrics.ToggleState(res.State)).Inc()
	return res, nil
}
