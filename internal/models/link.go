package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LinkStatus est l'état de modération d'un lien.
type LinkStatus string

const (
	StatusPending  LinkStatus = "PENDING"
	StatusApproved LinkStatus = "APPROVED"
	StatusRejected LinkStatus = "REJECTED"
	StatusFlagged  LinkStatus = "FLAGGED"
)

// Valid reports whether s is one of the known lifecycle states.
func (s LinkStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusFlagged:
		return true
	}
	return false
}

// Link représente un contenu web découvrable dans la base de données.
// Counters are only ever changed through atomic deltas issued by the repositories.
type Link struct {
	ID          string     `gorm:"primaryKey;size:36" json:"id"`
	URL         string     `gorm:"uniqueIndex;not null" json:"url"`
	Title       string     `gorm:"not null" json:"title"`
	Description *string    `json:"description,omitempty"`
	Domain      string     `gorm:"index;not null" json:"domain"`
	Image       *string    `json:"image,omitempty"`
	Status      LinkStatus `gorm:"index;size:16;not null;default:PENDING" json:"status"`
	SubmittedBy string     `gorm:"index;not null" json:"submittedBy"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`

	ViewCount    int64 `gorm:"not null;default:0" json:"viewCount"`
	LikeCount    int64 `gorm:"not null;default:0" json:"likeCount"`
	DislikeCount int64 `gorm:"not null;default:0" json:"dislikeCount"`
	SkipCount    int64 `gorm:"not null;default:0" json:"skipCount"`
	SaveCount    int64 `gorm:"not null;default:0" json:"saveCount"`

	// Relation many-to-many avec les topics via la table link_topics.
	Topics []Topic `gorm:"many2many:link_topics;" json:"topics"`
}

// BeforeCreate assigne un identifiant UUID si aucun n'a été fourni.
func (l *Link) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}

// HasTopic reports whether the link is tagged with any of the given slugs.
func (l *Link) HasTopic(slugs []string) bool {
	for _, t := range l.Topics {
		for _, s := range slugs {
			if t.Slug == s {
				return true
			}
		}
	}
	return false
}
