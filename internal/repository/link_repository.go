package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	customerrors "github.com/grocerysushi/stumbleupon-clone/internal/errors"
	"github.com/grocerysushi/stumbleupon-clone/internal/models"
)

// GormLinkRepository est l'implémentation de LinkRepository utilisant GORM.
type GormLinkRepository struct {
	db *gorm.DB
}

// NewLinkRepository crée et retourne une nouvelle instance de GormLinkRepository.
func NewLinkRepository(db *gorm.DB) *GormLinkRepository {
	return &GormLinkRepository{db: db}
}

// CreateLink insère un nouveau lien et ses associations de topics.
func (r *GormLinkRepository) CreateLink(ctx context.Context, link *models.Link, topicSlugs []string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Link{}).Where("url = ?", link.URL).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return customerrors.ErrLinkAlreadyExists
		}
		if len(topicSlugs) > 0 {
			var topics []models.Topic
			if err := tx.Where("slug IN ?", topicSlugs).Find(&topics).Error; err != nil {
				return err
			}
			link.Topics = topics
		}
		return tx.Create(link).Error
	})
	if err != nil {
		if errors.Is(err, customerrors.ErrLinkAlreadyExists) || isUniqueViolation(err) {
			return customerrors.ErrLinkAlreadyExists
		}
		return fmt.Errorf("failed to create link: %w", err)
	}
	return nil
}

// GetLinkByID récupère un lien et ses topics par identifiant.
func (r *GormLinkRepository) GetLinkByID(ctx context.Context, id string) (*models.Link, error) {
	var link models.Link
	if err := r.db.WithContext(ctx).Preload("Topics").Where("id = ?", id).First(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, customerrors.ErrLinkNotFound
		}
		return nil, fmt.Errorf("failed to get link %s: %w", id, err)
	}
	return &link, nil
}

// GetLinkByURL récupère un lien par son URL.
func (r *GormLinkRepository) GetLinkByURL(ctx context.Context, url string) (*models.Link, error) {
	var link models.Link
	if err := r.db.WithContext(ctx).Preload("Topics").Where("url = ?", url).First(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, customerrors.ErrLinkNotFound
		}
		return nil, fmt.Errorf("failed to get link by url: %w", err)
	}
	return &link, nil
}

// ListLinks récupère les liens les plus récents correspondant au filtre.
func (r *GormLinkRepository) ListLinks(ctx context.Context, filter LinkFilter) ([]models.Link, error) {
	q := r.db.WithContext(ctx).Preload("Topics").Order("created_at DESC").Limit(listLimit(filter.Limit))
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.SubmittedBy != "" {
		q = q.Where("submitted_by = ?", filter.SubmittedBy)
	}
	var links []models.Link
	if err := q.Find(&links).Error; err != nil {
		return nil, fmt.Errorf("failed to list links: %w", err)
	}
	return links, nil
}

// FindCandidates sélectionne les liens approuvés éligibles pour un viewer.
// The exclusion subquery reads the event ledger on every call.
func (r *GormLinkRepository) FindCandidates(ctx context.Context, cq CandidateQuery) ([]models.Link, error) {
	q := r.db.WithContext(ctx).Model(&models.Link{}).Where("links.status = ?", models.StatusApproved)

	if len(cq.TopicSlugs) > 0 {
		tagged := r.db.Table("link_topics").
			Select("link_topics.link_id").
			Joins("JOIN topics ON topics.id = link_topics.topic_id").
			Where("topics.slug IN ?", cq.TopicSlugs)
		q = q.Where("links.id IN (?)", tagged)
	}
	if cq.ViewerID != "" {
		viewed := r.db.Model(&models.Event{}).
			Select("link_id").
			Where("user_id = ? AND action = ?", cq.ViewerID, models.ActionView)
		q = q.Where("links.id NOT IN (?)", viewed)
	}

	var links []models.Link
	if err := q.Preload("Topics").Limit(listLimit(cq.Limit)).Find(&links).Error; err != nil {
		return nil, fmt.Errorf("failed to query candidates: %w", err)
	}
	return links, nil
}

// UpdateStatus change l'état de modération d'un lien.
func (r *GormLinkRepository) UpdateStatus(ctx context.Context, id string, status models.LinkStatus) error {
	res := r.db.WithContext(ctx).Model(&models.Link{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("failed to update status of link %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return customerrors.ErrLinkNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint failed")
}
