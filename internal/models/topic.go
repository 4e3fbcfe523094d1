package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Topic est une catégorie nommée identifiée par un slug unique.
type Topic struct {
	ID   string `gorm:"primaryKey;size:36" json:"id"`
	Name string `gorm:"not null" json:"name"`
	Slug string `gorm:"uniqueIndex;size:64;not null" json:"slug"`
}

// BeforeCreate assigne un identifiant UUID si aucun n'a été fourni.
func (t *Topic) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}
