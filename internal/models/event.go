package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Action is what a viewer did with a link.
type Action string

const (
	ActionView    Action = "VIEW"
	ActionLike    Action = "LIKE"
	ActionDislike Action = "DISLIKE"
	ActionSkip    Action = "SKIP"
	ActionSave    Action = "SAVE"
	ActionShare   Action = "SHARE"
)

// FeedbackActions are the actions accepted by the feedback recorder.
// VIEW is only ever written by the selection path.
var FeedbackActions = []Action{ActionLike, ActionDislike, ActionSkip, ActionSave, ActionShare}

// Counter names the link column a feedback action increments.
type Counter string

const (
	CounterNone    Counter = ""
	CounterView    Counter = "view_count"
	CounterLike    Counter = "like_count"
	CounterDislike Counter = "dislike_count"
	CounterSkip    Counter = "skip_count"
	CounterSave    Counter = "save_count"
)

// Counter returns the column incremented by the action, or CounterNone for SHARE.
func (a Action) Counter() Counter {
	switch a {
	case ActionView:
		return CounterView
	case ActionLike:
		return CounterLike
	case ActionDislike:
		return CounterDislike
	case ActionSkip:
		return CounterSkip
	case ActionSave:
		return CounterSave
	}
	return CounterNone
}

// IsFeedback reports whether the action can be submitted as viewer feedback.
func (a Action) IsFeedback() bool {
	for _, fa := range FeedbackActions {
		if a == fa {
			return true
		}
	}
	return false
}

// Event est un fait immuable du journal d'engagement: (viewer, link, action, timestamp).
// Events are never updated or deleted.
type Event struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    string    `gorm:"not null;index:idx_events_user_action" json:"userId"`
	LinkID    string    `gorm:"not null;index" json:"linkId"`
	Action    Action    `gorm:"size:16;not null;index:idx_events_user_action" json:"action"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

// BeforeCreate assigne un identifiant UUID si aucun n'a été fourni.
func (e *Event) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}

// Apply adds one unit of the counter to the in-memory copy of the link.
// Stores use it after persisting the same delta so callers see the new value.
func (c Counter) Apply(l *Link) {
	switch c {
	case CounterView:
		l.ViewCount++
	case CounterLike:
		l.LikeCount++
	case CounterDislike:
		l.DislikeCount++
	case CounterSkip:
		l.SkipCount++
	case CounterSave:
		l.SaveCount++
	}
}
