package services

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	customerrors "github.com/grocerysushi/stumbleupon-clone/internal/errors"
	"github.com/grocerysushi/stumbleupon-clone/internal/models"
	"github.com/grocerysushi/stumbleupon-clone/internal/repository"
)

// CreateTopicRequest declares a new topic.
type CreateTopicRequest struct {
	Name string `json:"name" validate:"required"`
	Slug string `json:"slug" validate:"required,slug"`
}

// TopicService lists and creates topics.
type TopicService struct {
	topics repository.TopicRepository
	log    logrus.FieldLogger
}

// NewTopicService creates and returns a new instance of TopicService.
func NewTopicService(topics repository.TopicRepository, log logrus.FieldLogger) *TopicService {
	return &TopicService{topics: topics, log: log.WithField("component", "topics")}
}

// List returns every topic ordered by name.
func (s *TopicService) List(ctx context.Context) ([]models.Topic, error) {
	topics, err := s.topics.ListTopics(ctx)
	if err != nil {
		return nil, customerrors.Dependency("list topics", err)
	}
	return topics, nil
}

// Create adds a topic. Slugs are unique.
func (s *TopicService) Create(ctx context.Context, req CreateTopicRequest) (*models.Topic, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Slug = strings.TrimSpace(req.Slug)
	if err := validateStruct(&req); err != nil {
		return nil, err
	}
	topic := &models.Topic{Name: req.Name, Slug: req.Slug}
	if err := s.topics.CreateTopic(ctx, topic); err != nil {
		return nil, customerrors.Dependency("create topic", err)
	}
	s.log.WithField("slug", topic.Slug).Info("Topic created")
	return topic, nil
}
