package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	customerrors "github.com/grocerysushi/stumbleupon-clone/internal/errors"
	"github.com/grocerysushi/stumbleupon-clone/internal/models"
)

// GormEventRepository est l'implémentation de EventRepository utilisant GORM.
type GormEventRepository struct {
	db *gorm.DB
}

// NewEventRepository crée et retourne une nouvelle instance de GormEventRepository.
func NewEventRepository(db *gorm.DB) *GormEventRepository {
	return &GormEventRepository{db: db}
}

// RecordView ajoute un événement VIEW et incrémente view_count dans la même transaction.
func (r *GormEventRepository) RecordView(ctx context.Context, userID, linkID string) (*models.Event, error) {
	return r.record(ctx, userID, linkID, models.ActionView)
}

// RecordFeedback ajoute l'événement et incrémente le compteur associé à l'action.
func (r *GormEventRepository) RecordFeedback(ctx context.Context, userID, linkID string, action models.Action) (*models.Event, error) {
	return r.record(ctx, userID, linkID, action)
}

func (r *GormEventRepository) record(ctx context.Context, userID, linkID string, action models.Action) (*models.Event, error) {
	event := &models.Event{UserID: userID, LinkID: linkID, Action: action}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Link{}).Where("id = ?", linkID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return customerrors.ErrLinkNotFound
		}
		if err := tx.Create(event).Error; err != nil {
			return err
		}
		counter := action.Counter()
		if counter == models.CounterNone {
			return nil
		}
		// Delta atomique côté base, jamais de lecture-modification-écriture.
		col := string(counter)
		res := tx.Model(&models.Link{}).Where("id = ?", linkID).Update(col, gorm.Expr(col+" + ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return customerrors.ErrLinkNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, customerrors.ErrLinkNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to record %s event for link %s: %w", action, linkID, err)
	}
	return event, nil
}

// CountEventsByLinkID compte les événements d'un lien, par action.
func (r *GormEventRepository) CountEventsByLinkID(ctx context.Context, linkID string) (map[models.Action]int64, error) {
	var rows []struct {
		Action models.Action
		Total  int64
	}
	err := r.db.WithContext(ctx).Model(&models.Event{}).
		Select("action, COUNT(*) AS total").
		Where("link_id = ?", linkID).
		Group("action").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count events for link %s: %w", linkID, err)
	}
	counts := make(map[models.Action]int64, len(rows))
	for _, row := range rows {
		counts[row.Action] = row.Total
	}
	return counts, nil
}
