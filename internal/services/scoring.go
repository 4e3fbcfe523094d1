package services

import (
	"time"

	"github.com/grocerysushi/stumbleupon-clone/internal/models"
)

// Scoring weights.
const (
	EngagementWeight = 0.4
	RecencyWeight    = 0.3
	DiversityWeight  = 0.3

	// RecencyWindow is the span over which the recency score decays linearly to zero.
	RecencyWindow = 7 * 24 * time.Hour

	// DiversityBonus is the same for every candidate today.
	// TODO: replace with a per-viewer domain/topic novelty signal (e.g. penalize domains shown recently).
	DiversityBonus = 0.1
)

// ScoredLink is a candidate with its relevance score.
type ScoredLink struct {
	Link  models.Link
	Score float64
}

// EngagementRate is likes per view, 0 for a link never viewed.
func EngagementRate(l *models.Link) float64 {
	if l.ViewCount <= 0 {
		return 0
	}
	return float64(l.LikeCount) / float64(l.ViewCount)
}

// RecencyScore is 1 at creation, falls linearly and is 0 from seven days on.
// A creation time in the future (clock skew) counts as brand new.
func RecencyScore(createdAt, now time.Time) float64 {
	age := now.Sub(createdAt).Milliseconds()
	score := 1 - float64(age)/float64(RecencyWindow.Milliseconds())
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// Score computes 0.4·engagement + 0.3·recency + 0.3·diversity for one candidate.
// Pure: no I/O, no error path.
func Score(l *models.Link, now time.Time) float64 {
	return EngagementWeight*EngagementRate(l) +
		RecencyWeight*RecencyScore(l.CreatedAt, now) +
		DiversityWeight*DiversityBonus
}

// ScoreAll scores every candidate against the same instant.
func ScoreAll(links []models.Link, now time.Time) []ScoredLink {
	scored := make([]ScoredLink, len(links))
	for i := range links {
		scored[i] = ScoredLink{Link: links[i], Score: Score(&links[i], now)}
	}
	return scored
}
