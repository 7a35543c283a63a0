// Package ranking scores and orders feed candidates. Everything here is a
// pure function of its inputs; the caller supplies the clock.
package ranking

import (
	"sort"
	"strconv"
	"time"

	"omegavideos/internal/model"
)

// Weights of the personalized score
const (
	LikeWeight     = 3.0
	CommentWeight  = 5.0
	ViewWeight     = 0.1
	RecencyBonus   = 50.0
	AffinityBonus  = 30.0
	RecencyWindow  = 24 * time.Hour
	TrendingWindow = 7 * 24 * time.Hour
	TrendingLimit  = 20
	PageSize       = 10
)

// Score is the personalized rank of one candidate at instant now.
func Score(s model.VideoSignals, now time.Time) float64 {
	// The conversions keep each product rounded on its own (no fused
	// multiply-add), matching the float8 arithmetic of the feed query.
	score := float64(float64(s.Likes)*LikeWeight) +
		float64(float64(s.Comments)*CommentWeight) +
		float64(float64(s.Views)*ViewWeight)

	if s.CreatedAt.After(now.Add(-RecencyWindow)) {
		score += RecencyBonus
	}
	if s.ViewerFollowsOwner {
		score += AffinityBonus
	}
	return score
}

// Engagement is the trending rank. Views count at full weight.
func Engagement(s model.VideoSignals) int64 {
	return int64(s.Likes)*3 + int64(s.Comments)*5 + s.Views
}

// RankPersonalized returns the candidates ordered by score desc, then
// created_at desc, then id desc. The input slice is not modified.
func RankPersonalized(cands []model.VideoSignals, now time.Time) []model.VideoSignals {
	type scored struct {
		sig   model.VideoSignals
		score float64
	}

	items := make([]scored, len(cands))
	for i, c := range cands {
		items[i] = scored{sig: c, score: Score(c, now)}
	}

	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.score != b.score {
			return a.score > b.score
		}
		if !a.sig.CreatedAt.Equal(b.sig.CreatedAt) {
			return a.sig.CreatedAt.After(b.sig.CreatedAt)
		}
		return a.sig.VideoID > b.sig.VideoID
	})

	out := make([]model.VideoSignals, len(items))
	for i, it := range items {
		out[i] = it.sig
	}
	return out
}

// RankTrending keeps candidates created within the trending window and
// returns at most TrendingLimit of them by engagement desc, views desc, id desc.
func RankTrending(cands []model.VideoSignals, now time.Time) []model.VideoSignals {
	cutoff := now.Add(-TrendingWindow)

	out := make([]model.VideoSignals, 0, len(cands))
	for _, c := range cands {
		if c.CreatedAt.After(cutoff) {
			out = append(out, c)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		ea, eb := Engagement(out[i]), Engagement(out[j])
		if ea != eb {
			return ea > eb
		}
		if out[i].Views != out[j].Views {
			return out[i].Views > out[j].Views
		}
		return out[i].VideoID > out[j].VideoID
	})

	if len(out) > TrendingLimit {
		out = out[:TrendingLimit]
	}
	return out
}

// ParsePage reads a 1-indexed page number. Anything malformed or below 1 is page 1.
func ParsePage(raw string) int {
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// Offset is the number of ranked items before a 1-indexed page.
func Offset(page int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * PageSize
}

// IDs extracts the video ids in order.
func IDs(cands []model.VideoSignals) []int64 {
	ids := make([]int64, len(cands))
	for i, c := range cands {
		ids[i] = c.VideoID
	}
	return ids
}
