package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	customerrors "github.com/grocerysushi/stumbleupon-clone/internal/errors"
	"github.com/grocerysushi/stumbleupon-clone/internal/models"
)

// GormTopicRepository est l'implémentation de TopicRepository utilisant GORM.
type GormTopicRepository struct {
	db *gorm.DB
}

// NewTopicRepository crée et retourne une nouvelle instance de GormTopicRepository.
func NewTopicRepository(db *gorm.DB) *GormTopicRepository {
	return &GormTopicRepository{db: db}
}

// ListTopics récupère tous les topics, triés par nom.
func (r *GormTopicRepository) ListTopics(ctx context.Context) ([]models.Topic, error) {
	var topics []models.Topic
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&topics).Error; err != nil {
		return nil, fmt.Errorf("failed to list topics: %w", err)
	}
	return topics, nil
}

// CreateTopic insère un nouveau topic.
func (r *GormTopicRepository) CreateTopic(ctx context.Context, topic *models.Topic) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Topic{}).Where("slug = ?", topic.Slug).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check topic slug: %w", err)
	}
	if count > 0 {
		return customerrors.ErrTopicAlreadyExists
	}
	if err := r.db.WithContext(ctx).Create(topic).Error; err != nil {
		if isUniqueViolation(err) {
			return customerrors.ErrTopicAlreadyExists
		}
		return fmt.Errorf("failed to create topic: %w", err)
	}
	return nil
}

// UpsertTopic crée le topic s'il n'existe pas encore.
func (r *GormTopicRepository) UpsertTopic(ctx context.Context, topic *models.Topic) error {
	var existing models.Topic
	err := r.db.WithContext(ctx).Where("slug = ?", topic.Slug).First(&existing).Error
	if err == nil {
		*topic = existing
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to look up topic %s: %w", topic.Slug, err)
	}
	if err := r.db.WithContext(ctx).Create(topic).Error; err != nil {
		return fmt.Errorf("failed to create topic %s: %w", topic.Slug, err)
	}
	return nil
}

// GetTopicsBySlugs récupère les topics connus parmi slugs.
func (r *GormTopicRepository) GetTopicsBySlugs(ctx context.Context, slugs []string) ([]models.Topic, error) {
	if len(slugs) == 0 {
		return nil, nil
	}
	var topics []models.Topic
	if err := r.db.WithContext(ctx).Where("slug IN ?", slugs).Order("name ASC").Find(&topics).Error; err != nil {
		return nil, fmt.Errorf("failed to get topics: %w", err)
	}
	return topics, nil
}
