// Package services contains the business logic layer of the discovery service
package services

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	customerrors "github.com/grocerysushi/stumbleupon-clone/internal/errors"
	"github.com/grocerysushi/stumbleupon-clone/internal/metadata"
	"github.com/grocerysushi/stumbleupon-clone/internal/models"
	"github.com/grocerysushi/stumbleupon-clone/internal/repository"
)

// MetadataSource fetches page metadata. Implementations never fail: they
// degrade to placeholder values instead.
type MetadataSource interface {
	Fetch(ctx context.Context, pageURL string) metadata.Metadata
}

// SubmitRequest is a new link submission.
type SubmitRequest struct {
	URL    string   `json:"url" validate:"required,weburl"`
	UserID string   `json:"userId" validate:"required"`
	Topics []string `json:"topics"`

	// PreApproved skips moderation. Only the seed and import paths set it.
	PreApproved bool `json:"-"`
}

// ModerateRequest changes a link's lifecycle status.
type ModerateRequest struct {
	LinkID string            `json:"linkId" validate:"required"`
	Status models.LinkStatus `json:"status" validate:"required,link_status"`
}

// LinkStats is a link together with its ledger totals.
type LinkStats struct {
	Link   *models.Link
	Events map[models.Action]int64
}

// LinkService provides submission, listing and moderation of links.
// It acts as an intermediary between the HTTP handlers and the data repository.
type LinkService struct {
	links    repository.LinkRepository
	events   repository.EventRepository
	topics   repository.TopicRepository
	metadata MetadataSource
	log      logrus.FieldLogger
}

// NewLinkService creates and returns a new instance of LinkService.
func NewLinkService(links repository.LinkRepository, events repository.EventRepository, topics repository.TopicRepository, md MetadataSource, log logrus.FieldLogger) *LinkService {
	return &LinkService{
		links:    links,
		events:   events,
		topics:   topics,
		metadata: md,
		log:      log.WithField("component", "links"),
	}
}

// Submit stores a new link. Metadata is fetched from the page; a fetch failure
// only degrades title/description/image, it never fails the submission.
// Unknown topic slugs are ignored. The link starts PENDING unless pre-approved.
func (s *LinkService) Submit(ctx context.Context, req SubmitRequest) (*models.Link, error) {
	req.URL = strings.TrimSpace(req.URL)
	req.UserID = strings.TrimSpace(req.UserID)
	if err := validateStruct(&req); err != nil {
		return nil, err
	}
	requested, err := normalizeTopics(req.Topics)
	if err != nil {
		return nil, err
	}
	topics, err := s.knownTopics(ctx, requested)
	if err != nil {
		return nil, err
	}

	// Check first so a duplicate does not cost a network fetch.
	if _, err := s.links.GetLinkByURL(ctx, req.URL); err == nil {
		return nil, customerrors.ErrLinkAlreadyExists
	} else if !customerrors.IsNotFound(err) {
		return nil, customerrors.Dependency("look up link", err)
	}

	md := s.metadata.Fetch(ctx, req.URL)
	link := &models.Link{
		URL:         req.URL,
		Title:       md.Title,
		Description: md.Description,
		Domain:      metadata.Domain(req.URL),
		Image:       md.Image,
		Status:      models.StatusPending,
		SubmittedBy: req.UserID,
	}
	if req.PreApproved {
		link.Status = models.StatusApproved
	}

	if err := s.links.CreateLink(ctx, link, topics); err != nil {
		return nil, customerrors.Dependency("create link", err)
	}

	s.log.WithFields(logrus.Fields{
		"link_id": link.ID,
		"domain":  link.Domain,
		"status":  link.Status,
	}).Info("Link submitted")
	return link, nil
}

// knownTopics keeps the slugs that name an existing topic and logs the others.
func (s *LinkService) knownTopics(ctx context.Context, slugs []string) ([]string, error) {
	if len(slugs) == 0 {
		return nil, nil
	}
	found, err := s.topics.GetTopicsBySlugs(ctx, slugs)
	if err != nil {
		return nil, customerrors.Dependency("resolve topics", err)
	}
	exists := make(map[string]bool, len(found))
	for _, t := range found {
		exists[t.Slug] = true
	}
	known := make([]string, 0, len(found))
	for _, slug := range slugs {
		if exists[slug] {
			known = append(known, slug)
			continue
		}
		s.log.WithField("topic", slug).Debug("Ignoring unknown topic")
	}
	return known, nil
}

// List returns the newest links with the given status (APPROVED when empty),
// optionally restricted to one submitter.
func (s *LinkService) List(ctx context.Context, status models.LinkStatus, submittedBy string) ([]models.Link, error) {
	if status == "" {
		status = models.StatusApproved
	}
	if !status.Valid() {
		return nil, customerrors.NewValidationError("status", customerrors.ErrInvalidStatus, string(status))
	}
	links, err := s.links.ListLinks(ctx, repository.LinkFilter{
		Status:      status,
		SubmittedBy: strings.TrimSpace(submittedBy),
		Limit:       repository.DefaultListLimit,
	})
	if err != nil {
		return nil, customerrors.Dependency("list links", err)
	}
	return links, nil
}

// GetLink retrieves a link with its topics.
func (s *LinkService) GetLink(ctx context.Context, id string) (*models.Link, error) {
	link, err := s.links.GetLinkByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return nil, customerrors.Dependency("get link", err)
	}
	return link, nil
}

// Moderate sets the status of a link. This is the only path that changes status.
func (s *LinkService) Moderate(ctx context.Context, req ModerateRequest) (*models.Link, error) {
	req.LinkID = strings.TrimSpace(req.LinkID)
	req.Status = models.LinkStatus(strings.ToUpper(strings.TrimSpace(string(req.Status))))
	if err := validateStruct(&req); err != nil {
		return nil, err
	}
	if err := s.links.UpdateStatus(ctx, req.LinkID, req.Status); err != nil {
		return nil, customerrors.Dependency("update status", err)
	}
	s.log.WithFields(logrus.Fields{"link_id": req.LinkID, "status": req.Status}).Info("Link moderated")
	return s.GetLink(ctx, req.LinkID)
}

// Stats retrieves a link and the number of ledger events per action.
func (s *LinkService) Stats(ctx context.Context, id string) (*LinkStats, error) {
	link, err := s.GetLink(ctx, id)
	if err != nil {
		return nil, err
	}
	counts, err := s.events.CountEventsByLinkID(ctx, link.ID)
	if err != nil {
		return nil, customerrors.Dependency("count events", err)
	}
	return &LinkStats{Link: link, Events: counts}, nil
}
