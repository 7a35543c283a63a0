package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"omegavideos/internal/model"
	"omegavideos/internal/ranking"
)

type signalRepository struct {
	db *sqlx.DB
}

func NewSignalRepository(db *sqlx.DB) SignalRepository {
	return &signalRepository{db: db}
}

const candidateColumns = `
	v.id AS video_id, v.user_id AS owner_id, v.views, v.created_at,
	COALESCE(l.cnt, 0) AS likes,
	COALESCE(c.cnt, 0) AS comments`

const candidateJoins = `
	FROM videos v
	LEFT JOIN (SELECT video_id, COUNT(*) AS cnt FROM likes GROUP BY video_id) l ON l.video_id = v.id
	LEFT JOIN (SELECT video_id, COUNT(*) AS cnt FROM comments GROUP BY video_id) c ON c.video_id = v.id`

// feedOrder is ranking.Score as SQL, term for term in the same order, so
// both sides compute the same float8. Ties break as in RankPersonalized.
const feedOrder = `
	ORDER BY (s.likes * $2::float8 + s.comments * $3::float8 + s.views * $4::float8
		+ CASE WHEN s.created_at > $5 THEN $6::float8 ELSE 0 END
		+ CASE WHEN s.viewer_follows_owner THEN $7::float8 ELSE 0 END) DESC,
		s.created_at DESC, s.video_id DESC
	LIMIT $8 OFFSET $9`

// FeedCandidates ranks in the database and loads only the requested page.
// viewerID is always bound; the anonymous id matches no follow edge.
func (r *signalRepository) FeedCandidates(ctx context.Context, viewerID int64, now time.Time, offset, limit int) ([]model.VideoSignals, error) {
	query := `SELECT * FROM (SELECT` + candidateColumns + `,
		EXISTS(SELECT 1 FROM follows f WHERE f.follower_id = $1 AND f.following_id = v.user_id) AS viewer_follows_owner` +
		candidateJoins + `) s` + feedOrder

	cands := []model.VideoSignals{}
	err := r.db.SelectContext(ctx, &cands, query, viewerID,
		ranking.LikeWeight, ranking.CommentWeight, ranking.ViewWeight,
		now.Add(-ranking.RecencyWindow), ranking.RecencyBonus, ranking.AffinityBonus,
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("load feed candidates: %w", err)
	}
	return cands, nil
}

// TrendingCandidates returns the signals of videos created after since.
func (r *signalRepository) TrendingCandidates(ctx context.Context, since time.Time) ([]model.VideoSignals, error) {
	query := `SELECT` + candidateColumns + `,
		FALSE AS viewer_follows_owner` +
		candidateJoins + `
	WHERE v.created_at > $1`

	cands := []model.VideoSignals{}
	if err := r.db.SelectContext(ctx, &cands, query, since); err != nil {
		return nil, fmt.Errorf("load trending candidates: %w", err)
	}
	return cands, nil
}

func (r *signalRepository) Counts(ctx context.Context, videoIDs []int64) (map[int64]model.VideoCounts, error) {
	result := make(map[int64]model.VideoCounts, len(videoIDs))
	if len(videoIDs) == 0 {
		return result, nil
	}

	query := `
		SELECT v.id,
		       (SELECT COUNT(*) FROM likes WHERE video_id = v.id) AS likes,
		       (SELECT COUNT(*) FROM comments WHERE video_id = v.id) AS comments
		FROM videos v
		WHERE v.id = ANY($1)
	`
	type row struct {
		ID int64 `db:"id"`
		model.VideoCounts
	}
	var rows []row
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(videoIDs)); err != nil {
		return nil, fmt.Errorf("count video signals: %w", err)
	}
	for _, rw := range rows {
		result[rw.ID] = rw.VideoCounts
	}
	return result, nil
}

// ViewerFlags resolves liked/bookmarked for viewerID. Anonymous viewers get
// an empty map, which reads as all false.
func (r *signalRepository) ViewerFlags(ctx context.Context, viewerID int64, videoIDs []int64) (map[int64]model.ViewerFlags, error) {
	result := make(map[int64]model.ViewerFlags, len(videoIDs))
	if viewerID == model.AnonymousViewerID || len(videoIDs) == 0 {
		return result, nil
	}

	query := `
		SELECT v.id,
		       EXISTS(SELECT 1 FROM likes WHERE video_id = v.id AND user_id = $1) AS liked,
		       EXISTS(SELECT 1 FROM bookmarks WHERE video_id = v.id AND user_id = $1) AS bookmarked
		FROM videos v
		WHERE v.id = ANY($2)
	`
	type row struct {
		ID int64 `db:"id"`
		model.ViewerFlags
	}
	var rows []row
	if err := r.db.SelectContext(ctx, &rows, query, viewerID, pq.Array(videoIDs)); err != nil {
		return nil, fmt.Errorf("load viewer flags: %w", err)
	}
	for _, rw := range rows {
		result[rw.ID] = rw.ViewerFlags
	}
	return result, nil
}
