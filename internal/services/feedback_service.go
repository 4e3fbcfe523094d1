package services

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	customerrors "github.com/grocerysushi/stumbleupon-clone/internal/errors"
	"github.com/grocerysushi/stumbleupon-clone/internal/metrics"
	"github.com/grocerysushi/stumbleupon-clone/internal/models"
	"github.com/grocerysushi/stumbleupon-clone/internal/repository"
)

// FeedbackRequest is a viewer's reaction to a link.
type FeedbackRequest struct {
	UserID string        `json:"userId" validate:"required"`
	LinkID string        `json:"linkId" validate:"required"`
	Action models.Action `json:"action" validate:"required,feedback_action"`
}

// FeedbackService records reactions in the ledger and bumps the link counters.
type FeedbackService struct {
	events repository.EventRepository
	log    logrus.FieldLogger
}

// NewFeedbackService creates and returns a new instance of FeedbackService.
func NewFeedbackService(events repository.EventRepository, log logrus.FieldLogger) *FeedbackService {
	return &FeedbackService{events: events, log: log.WithField("component", "feedback")}
}

// Record validates the request, appends the event and increments the matching
// counter by one (SHARE has no counter). Nothing is written when validation
// fails or the link does not exist. Repeated calls are all counted.
func (s *FeedbackService) Record(ctx context.Context, req FeedbackRequest) (*models.Event, error) {
	req.UserID = strings.TrimSpace(req.UserID)
	req.LinkID = strings.TrimSpace(req.LinkID)
	req.Action = models.Action(strings.TrimSpace(string(req.Action)))

	if err := validateStruct(&req); err != nil {
		return nil, err
	}

	event, err := s.events.RecordFeedback(ctx, req.UserID, req.LinkID, req.Action)
	if err != nil {
		if !customerrors.IsNotFound(err) {
			metrics.StoreErrors.WithLabelValues("record_feedback").Inc()
		}
		return nil, customerrors.Dependency("record feedback", err)
	}

	metrics.FeedbackTotal.WithLabelValues(string(req.Action)).Inc()
	s.log.WithFields(logrus.Fields{
		"user_id": req.UserID,
		"link_id": req.LinkID,
		"action":  req.Action,
	}).Debug("Feedback recorded")
	return event, nil
}
