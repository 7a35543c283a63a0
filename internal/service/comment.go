package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/jmoiron/sqlx"

	"omegavideos/internal/fanout"
	"omegavideos/internal/model"
	"omegavideos/internal/repository"
)

type CommentService struct {
	tx            TxRunner
	comments      repository.CommentRepository
	commentLikes  repository.RelationRepository
	videos        repository.VideoRepository
	notifications repository.NotificationRepository
	dispatcher    fanout.Dispatcher
}

func NewCommentService(
	tx TxRunner,
	comments repository.CommentRepository,
	commentLikes repository.RelationRepository,
	videos repository.VideoRepository,
	notifications repository.NotificationRepository,
	dispatcher fanout.Dispatcher,
) *CommentService {
	return &CommentService{
		tx:            tx,
		comments:      comments,
		commentLikes:  commentLikes,
		videos:        videos,
		notifications: notifications,
		dispatcher:    dispatcher,
	}
}

// List returns the top-level comments of a video, newest first.
func (s *CommentService) List(ctx context.Context, viewerID, videoID int64) ([]model.Comment, error) {
	if _, err := s.videos.OwnerID(ctx, nil, videoID); err != nil {
		return nil, err
	}
	return s.comments.ListTopLevel(ctx, videoID, viewerID)
}

// Replies returns the replies of a comment, oldest first.
func (s *CommentService) Replies(ctx context.Context, viewerID, commentID int64) ([]model.Comment, error) {
	if _, err := s.comments.GetByID(ctx, nil, commentID); err != nil {
		return nil, err
	}
	return s.comments.ListReplies(ctx, commentID, viewerID)
}

// Create adds a comment or reply. Replies to a reply are attached to the
// top-level comment, but the author of the reply being answered is the
// one notified.
func (s *CommentService) Create(ctx context.Context, actorID, videoID int64, req model.CreateCommentRequest) (*model.Comment, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, model.ErrCommentEmpty
	}
	if utf8.RuneCountInString(text) > model.MaxCommentLength {
		return nil, model.ErrCommentTooLong
	}

	comment := &model.Comment{VideoID: videoID, UserID: actorID, Text: text}
	var intents []model.NotificationIntent

	err := s.tx.WithTx(ctx, func(tx *sqlx.Tx) error {
		ownerID, err := s.videos.OwnerID(ctx, tx, videoID)
		if err != nil {
			return err
		}

		var repliedTo int64
		if req.ParentID != nil {
			parent, err := s.comments.GetByID(ctx, tx, *req.ParentID)
			if errors.Is(err, model.ErrCommentNotFound) {
				return model.ErrOrphanReply
			}
			if err != nil {
				return err
			}
			if parent.VideoID != videoID {
				return model.ErrOrphanReply
			}

			attachTo := parent.ID
			if parent.ParentID != nil {
				attachTo = *parent.ParentID
			}
			comment.ParentID = &attachTo
			repliedTo = parent.UserID
		}

		if err := s.comments.Create(ctx, tx, comment); err != nil {
			return err
		}

		commentID := comment.ID
		intents = append(intents, model.NotificationIntent{
			RecipientID: ownerID,
			ActorID:     actorID,
			Type:        model.NotificationTypeComment,
			VideoID:     &videoID,
			CommentID:   &commentID,
		})
		if comment.ParentID != nil {
			intents = append(intents, model.NotificationIntent{
				RecipientID: repliedTo,
				ActorID:     actorID,
				Type:        model.NotificationTypeReply,
				VideoID:     &videoID,
				CommentID:   &commentID,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.dispatcher.Dispatch(ctx, intents)

	created, err := s.comments.GetByID(ctx, nil, comment.ID)
	if err != nil {
		return nil, err
	}
	return created, nil
}

// ToggleLike likes or unlikes a comment and notifies its author on like.
func (s *CommentService) ToggleLike(ctx context.Context, actorID, commentID int64) (model.ToggleResult, error) {
	if err := requireActor(actorID); err != nil {
		return model.ToggleResult{}, err
	}

	var target *model.Comment
	res, err := toggle(ctx, s.tx, s.commentLikes, "comment_like", actorID, commentID, func(tx *sqlx.Tx) error {
		var err error
		target, err = s.comments.GetByID(ctx, tx, commentID)
		return err
	})
	if err != nil {
		return model.ToggleResult{}, err
	}

	if res.State {
		videoID := target.VideoID
		s.dispatcher.Dispatch(ctx, []model.NotificationIntent{{
			RecipientID: target.UserID,
			ActorID:     actorID,
			Type:        model.NotificationTypeCommentLike,
			VideoID:     &videoID,
			CommentID:   &commentID,
		}})
	}
	return res, nil
}

// Delete removes a comment with its whole thread. The comment author and
// the video owner may delete.
func (s *CommentService) Delete(ctx context.Context, actorID, commentID int64) error {
	if err := requireActor(actorID); err != nil {
		return err
	}

	return s.tx.WithTx(ctx, func(tx *sqlx.Tx) error {
		c, err := s.comments.GetByID(ctx, tx, commentID)
		if err != nil {
			return err
		}

		if c.UserID != actorID {
			ownerID, err := s.videos.OwnerID(ctx, tx, c.VideoID)
			if err != nil {
				return err
			}
			if ownerID != actorID {
				return model.ErrCannotDeleteComment
			}
		}

		removed, err := s.comments.DeleteThread(ctx, tx, commentID)
		if err != nil {
			return err
		}
		return s.notifications.DeleteByComments(ctx, tx, removed)
	})
}
