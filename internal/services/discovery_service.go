package services

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	customerrors "github.com/grocerysushi/stumbleupon-clone/internal/errors"
	"github.com/grocerysushi/stumbleupon-clone/internal/metrics"
	"github.com/grocerysushi/stumbleupon-clone/internal/models"
	"github.com/grocerysushi/stumbleupon-clone/internal/repository"
)

// DefaultCandidateLimit bounds the number of candidates scored per call.
const DefaultCandidateLimit = 50

// SelectRequest is one "stumble" call. Both fields are optional.
type SelectRequest struct {
	ViewerID string
	Topics   []string
}

// DiscoveryService chains the candidate filter, the scorer and the selector,
// then books the view for identified viewers.
type DiscoveryService struct {
	links          repository.LinkRepository
	events         repository.EventRepository
	selector       *Selector
	candidateLimit int
	now            func() time.Time
	log            logrus.FieldLogger
}

// DiscoveryOption customizes a DiscoveryService.
type DiscoveryOption func(*DiscoveryService)

// WithCandidateLimit overrides DefaultCandidateLimit.
func WithCandidateLimit(n int) DiscoveryOption {
	return func(s *DiscoveryService) {
		if n > 0 {
			s.candidateLimit = n
		}
	}
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) DiscoveryOption {
	return func(s *DiscoveryService) { s.now = now }
}

// NewDiscoveryService creates and returns a new instance of DiscoveryService.
func NewDiscoveryService(links repository.LinkRepository, events repository.EventRepository, selector *Selector, log logrus.FieldLogger, opts ...DiscoveryOption) *DiscoveryService {
	s := &DiscoveryService{
		links:          links,
		events:         events,
		selector:       selector,
		candidateLimit: DefaultCandidateLimit,
		now:            time.Now,
		log:            log.WithField("component", "discovery"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Candidates returns the eligible links for the request: approved, matching any
// requested topic and not yet viewed by the viewer. The exclusion set is read
// from the event ledger on every call.
func (s *DiscoveryService) Candidates(ctx context.Context, req SelectRequest) ([]models.Link, error) {
	topics, err := normalizeTopics(req.Topics)
	if err != nil {
		return nil, err
	}
	links, err := s.links.FindCandidates(ctx, repository.CandidateQuery{
		ViewerID:   strings.TrimSpace(req.ViewerID),
		TopicSlugs: topics,
		Limit:      s.candidateLimit,
	})
	if err != nil {
		metrics.StoreErrors.WithLabelValues("find_candidates").Inc()
		return nil, customerrors.Dependency("find candidates", err)
	}
	return links, nil
}

// Select picks one unseen link for the viewer.
//
// When a viewer id is given, the VIEW event and the view_count increment are
// written together before returning; if that write fails the call fails, so a
// successful response always matches the ledger. Anonymous calls write nothing.
func (s *DiscoveryService) Select(ctx context.Context, req SelectRequest) (*models.Link, error) {
	viewer := strings.TrimSpace(req.ViewerID)

	candidates, err := s.Candidates(ctx, req)
	if err != nil {
		return nil, err
	}
	metrics.CandidatePoolSize.Observe(float64(len(candidates)))
	if len(candidates) == 0 {
		metrics.NoContentTotal.Inc()
		return nil, customerrors.ErrNoEligibleContent
	}

	choice, ok := s.selector.Select(ScoreAll(candidates, s.now()))
	if !ok {
		return nil, customerrors.ErrNoEligibleContent
	}
	link := choice.Link

	mode := "exploit"
	if choice.Explored {
		mode = "explore"
	}
	metrics.SelectionsTotal.WithLabelValues(mode).Inc()

	log := s.log.WithFields(logrus.Fields{
		"link_id":    link.ID,
		"score":      choice.Score,
		"mode":       mode,
		"candidates": len(candidates),
	})

	if viewer == "" {
		log.Debug("Anonymous selection, nothing recorded")
		return &link, nil
	}

	if _, err := s.events.RecordView(ctx, viewer, link.ID); err != nil {
		metrics.StoreErrors.WithLabelValues("record_view").Inc()
		log.WithError(err).WithField("viewer", viewer).Error("Failed to record view, failing selection")
		return nil, customerrors.Dependency("record view", err)
	}
	models.CounterView.Apply(&link)

	log.WithField("viewer", viewer).Debug("Selection recorded")
	return &link, nil
}
