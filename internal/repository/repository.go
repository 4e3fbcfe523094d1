package repository

import (
	"context"

	"github.com/grocerysushi/stumbleupon-clone/internal/models"
)

// DefaultListLimit borne les listes renvoyées par ListLinks.
const DefaultListLimit = 50

// NoLimit disables the ListLinks cap.
const NoLimit = -1

// LinkFilter restreint ListLinks. Zero values mean "no filter" except Limit,
// which falls back to DefaultListLimit.
type LinkFilter struct {
	Status      models.LinkStatus
	SubmittedBy string
	Limit       int
}

// CandidateQuery décrit les liens éligibles pour une sélection.
type CandidateQuery struct {
	ViewerID   string   // exclude links this viewer already has a VIEW event for
	TopicSlugs []string // OR semantics; empty means any topic
	Limit      int
}

// LinkRepository est une interface qui définit les méthodes d'accès aux liens.
type LinkRepository interface {
	// CreateLink persists link and associates the known topics among topicSlugs.
	// Returns errors.ErrLinkAlreadyExists when the URL is taken.
	CreateLink(ctx context.Context, link *models.Link, topicSlugs []string) error
	GetLinkByID(ctx context.Context, id string) (*models.Link, error)
	GetLinkByURL(ctx context.Context, url string) (*models.Link, error)
	// ListLinks returns links newest first.
	ListLinks(ctx context.Context, filter LinkFilter) ([]models.Link, error)
	// FindCandidates returns at most q.Limit APPROVED links, in no particular order.
	FindCandidates(ctx context.Context, q CandidateQuery) ([]models.Link, error)
	UpdateStatus(ctx context.Context, id string, status models.LinkStatus) error
}

// EventRepository est le journal d'événements en ajout seul.
// Each Record* call appends the event and applies the counter delta as one atomic unit.
type EventRepository interface {
	// RecordView appends a VIEW event and increments view_count by one.
	RecordView(ctx context.Context, userID, linkID string) (*models.Event, error)
	// RecordFeedback appends the event and increments the action's counter, if it has one.
	RecordFeedback(ctx context.Context, userID, linkID string, action models.Action) (*models.Event, error)
	CountEventsByLinkID(ctx context.Context, linkID string) (map[models.Action]int64, error)
}

// TopicRepository gère les catégories.
type TopicRepository interface {
	ListTopics(ctx context.Context) ([]models.Topic, error)
	// CreateTopic returns errors.ErrTopicAlreadyExists when the slug is taken.
	CreateTopic(ctx context.Context, topic *models.Topic) error
	// UpsertTopic creates the topic if its slug is unknown and fills topic.ID either way.
	UpsertTopic(ctx context.Context, topic *models.Topic) error
	GetTopicsBySlugs(ctx context.Context, slugs []string) ([]models.Topic, error)
}

// listLimit returns the effective cap; a negative result means unbounded.
func listLimit(n int) int {
	if n == 0 {
		return DefaultListLimit
	}
	return n
}
