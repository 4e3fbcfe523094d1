package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	customerrors "github.com/grocerysushi/stumbleupon-clone/internal/errors"
	"github.com/grocerysushi/stumbleupon-clone/internal/models"
)

// maxTxnRetries bounds the optimistic retries on badger.ErrConflict.
const maxTxnRetries = 32

// Key layout. Parts are joined with a NUL byte so ids containing ':' cannot collide.
//
//	link\x00{id}                 -> JSON models.Link (topics embedded)
//	link_url\x00{url}            -> link id
//	topic\x00{slug}              -> JSON models.Topic
//	event\x00{linkID}\x00{id}    -> JSON models.Event
//	view\x00{userID}\x00{linkID} -> empty, the viewer's exclusion index
const sep = "\x00"

func linkKey(id string) []byte             { return []byte("link" + sep + id) }
func linkURLKey(url string) []byte         { return []byte("link_url" + sep + url) }
func topicKey(slug string) []byte          { return []byte("topic" + sep + slug) }
func eventKey(linkID, id string) []byte    { return []byte("event" + sep + linkID + sep + id) }
func eventPrefix(linkID string) []byte     { return []byte("event" + sep + linkID + sep) }
func viewKey(userID, linkID string) []byte { return []byte("view" + sep + userID + sep + linkID) }
func viewPrefix(userID string) []byte      { return []byte("view" + sep + userID + sep) }

var (
	linkPrefix  = []byte("link" + sep)
	topicPrefix = []byte("topic" + sep)
)

// BadgerRepository implements the link store, the event ledger and the topic
// store on a single BadgerDB. Counter deltas run in serializable transactions
// retried on conflict, so concurrent feedback never loses an increment.
type BadgerRepository struct {
	db  *badger.DB
	log logrus.FieldLogger
	now func() time.Time
}

// NewBadgerRepository opens the database at dbPath.
func NewBadgerRepository(dbPath string, logger logrus.FieldLogger) (*BadgerRepository, error) {
	opts := badger.DefaultOptions(dbPath)
	opts.Logger = &badgerLogger{logger.WithField("component", "badgerdb")}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db at %s: %w", dbPath, err)
	}
	logger.WithField("path", dbPath).Info("BadgerDB opened")

	return &BadgerRepository{
		db:  db,
		log: logger.WithField("component", "repository"),
		now: time.Now,
	}, nil
}

// Close closes the BadgerDB database.
func (r *BadgerRepository) Close() error {
	if err := r.db.Close(); err != nil {
		r.log.WithError(err).Error("Error closing BadgerDB")
		return err
	}
	return nil
}

// update runs fn in a read-write transaction, retrying on optimistic conflicts.
func (r *BadgerRepository) update(ctx context.Context, fn func(txn *badger.Txn) error) error {
	var err error
	for attempt := 0; attempt < maxTxnRetries; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		err = r.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
		r.log.WithField("attempt", attempt+1).Debug("Transaction conflict, retrying")
	}
	return err
}

func getJSON(txn *badger.Txn, key []byte, dst any) error {
	item, err := txn.Get(key)
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, dst)
	})
}

func setJSON(txn *badger.Txn, key []byte, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return txn.Set(key, b)
}

// --- LinkRepository ---

func (r *BadgerRepository) CreateLink(ctx context.Context, link *models.Link, topicSlugs []string) error {
	if link.ID == "" {
		link.ID = uuid.NewString()
	}
	now := r.now()
	if link.CreatedAt.IsZero() {
		link.CreatedAt = now
	}
	link.UpdatedAt = now
	if link.Status == "" {
		link.Status = models.StatusPending
	}

	err := r.update(ctx, func(txn *badger.Txn) error {
		if _, err := txn.Get(linkURLKey(link.URL)); err == nil {
			return customerrors.ErrLinkAlreadyExists
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		topics := make([]models.Topic, 0, len(topicSlugs))
		for _, slug := range topicSlugs {
			var t models.Topic
			err := getJSON(txn, topicKey(slug), &t)
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			topics = append(topics, t)
		}
		link.Topics = topics
		if err := setJSON(txn, linkKey(link.ID), link); err != nil {
			return err
		}
		return txn.Set(linkURLKey(link.URL), []byte(link.ID))
	})
	if err != nil {
		if errors.Is(err, customerrors.ErrLinkAlreadyExists) {
			return err
		}
		return fmt.Errorf("failed to create link: %w", err)
	}
	return nil
}

func (r *BadgerRepository) GetLinkByID(ctx context.Context, id string) (*models.Link, error) {
	var link models.Link
	err := r.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, linkKey(id), &link)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, customerrors.ErrLinkNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get link %s: %w", id, err)
	}
	return &link, nil
}

func (r *BadgerRepository) GetLinkByURL(ctx context.Context, url string) (*models.Link, error) {
	var link models.Link
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(linkURLKey(url))
		if err != nil {
			return err
		}
		id, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		return getJSON(txn, linkKey(string(id)), &link)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, customerrors.ErrLinkNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get link by url: %w", err)
	}
	return &link, nil
}

// scanLinks iterates over every stored link, stopping early when fn returns false.
func scanLinks(txn *badger.Txn, fn func(models.Link) bool) error {
	it := txn.NewIterator(badger.DefaultIteratorOptions)
	defer it.Close()
	for it.Seek(linkPrefix); it.ValidForPrefix(linkPrefix); it.Next() {
		var link models.Link
		if err := it.Item().Value(func(val []byte) error {
			return json.Unmarshal(val, &link)
		}); err != nil {
			return fmt.Errorf("decode link %q: %w", it.Item().Key(), err)
		}
		if !fn(link) {
			return nil
		}
	}
	return nil
}

func (r *BadgerRepository) ListLinks(ctx context.Context, filter LinkFilter) ([]models.Link, error) {
	var links []models.Link
	err := r.db.View(func(txn *badger.Txn) error {
		return scanLinks(txn, func(l models.Link) bool {
			if filter.Status != "" && l.Status != filter.Status {
				return true
			}
			if filter.SubmittedBy != "" && l.SubmittedBy != filter.SubmittedBy {
				return true
			}
			links = append(links, l)
			return true
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list links: %w", err)
	}
	sort.Slice(links, func(i, j int) bool {
		return links[i].CreatedAt.After(links[j].CreatedAt)
	})
	if limit := listLimit(filter.Limit); limit >= 0 && len(links) > limit {
		links = links[:limit]
	}
	return links, nil
}

func (r *BadgerRepository) FindCandidates(ctx context.Context, cq CandidateQuery) ([]models.Link, error) {
	limit := listLimit(cq.Limit)
	var links []models.Link
	err := r.db.View(func(txn *badger.Txn) error {
		excluded := map[string]struct{}{}
		if cq.ViewerID != "" {
			ids, err := viewedIn(txn, cq.ViewerID)
			if err != nil {
				return err
			}
			for _, id := range ids {
				excluded[id] = struct{}{}
			}
		}
		return scanLinks(txn, func(l models.Link) bool {
			if l.Status != models.StatusApproved {
				return true
			}
			if _, seen := excluded[l.ID]; seen {
				return true
			}
			if len(cq.TopicSlugs) > 0 && !l.HasTopic(cq.TopicSlugs) {
				return true
			}
			links = append(links, l)
			return limit < 0 || len(links) < limit
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query candidates: %w", err)
	}
	return links, nil
}

func (r *BadgerRepository) UpdateStatus(ctx context.Context, id string, status models.LinkStatus) error {
	err := r.update(ctx, func(txn *badger.Txn) error {
		var link models.Link
		if err := getJSON(txn, linkKey(id), &link); err != nil {
			return err
		}
		link.Status = status
		link.UpdatedAt = r.now()
		return setJSON(txn, linkKey(id), &link)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return customerrors.ErrLinkNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update status of link %s: %w", id, err)
	}
	return nil
}

// --- EventRepository ---

func (r *BadgerRepository) RecordView(ctx context.Context, userID, linkID string) (*models.Event, error) {
	return r.record(ctx, userID, linkID, models.ActionView)
}

func (r *BadgerRepository) RecordFeedback(ctx context.Context, userID, linkID string, action models.Action) (*models.Event, error) {
	return r.record(ctx, userID, linkID, action)
}

func (r *BadgerRepository) record(ctx context.Context, userID, linkID string, action models.Action) (*models.Event, error) {
	var event *models.Event
	err := r.update(ctx, func(txn *badger.Txn) error {
		var link models.Link
		if err := getJSON(txn, linkKey(linkID), &link); err != nil {
			return err
		}
		// Fresh event per attempt: a retried transaction must not reuse a half-written id.
		event = &models.Event{
			ID:        uuid.NewString(),
			UserID:    userID,
			LinkID:    linkID,
			Action:    action,
			CreatedAt: r.now(),
		}
		if err := setJSON(txn, eventKey(linkID, event.ID), event); err != nil {
			return err
		}
		if action == models.ActionView {
			if err := txn.Set(viewKey(userID, linkID), nil); err != nil {
				return err
			}
		}
		if counter := action.Counter(); counter != models.CounterNone {
			counter.Apply(&link)
			link.UpdatedAt = event.CreatedAt
			return setJSON(txn, linkKey(linkID), &link)
		}
		return nil
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, customerrors.ErrLinkNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to record %s event for link %s: %w", action, linkID, err)
	}
	return event, nil
}

func viewedIn(txn *badger.Txn, userID string) ([]string, error) {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	it := txn.NewIterator(opts)
	defer it.Close()

	prefix := viewPrefix(userID)
	var ids []string
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		ids = append(ids, strings.TrimPrefix(string(it.Item().Key()), string(prefix)))
	}
	return ids, nil
}

func (r *BadgerRepository) CountEventsByLinkID(ctx context.Context, linkID string) (map[models.Action]int64, error) {
	counts := map[models.Action]int64{}
	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		prefix := eventPrefix(linkID)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var e models.Event
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &e)
			}); err != nil {
				return err
			}
			counts[e.Action]++
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to count events for link %s: %w", linkID, err)
	}
	return counts, nil
}

// --- TopicRepository ---

func (r *BadgerRepository) ListTopics(ctx context.Context) ([]models.Topic, error) {
	var topics []models.Topic
	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(topicPrefix); it.ValidForPrefix(topicPrefix); it.Next() {
			var t models.Topic
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &t)
			}); err != nil {
				return err
			}
			topics = append(topics, t)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list topics: %w", err)
	}
	sort.Slice(topics, func(i, j int) bool { return topics[i].Name < topics[j].Name })
	return topics, nil
}

func (r *BadgerRepository) CreateTopic(ctx context.Context, topic *models.Topic) error {
	if topic.ID == "" {
		topic.ID = uuid.NewString()
	}
	err := r.update(ctx, func(txn *badger.Txn) error {
		if _, err := txn.Get(topicKey(topic.Slug)); err == nil {
			return customerrors.ErrTopicAlreadyExists
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return setJSON(txn, topicKey(topic.Slug), topic)
	})
	if err != nil {
		if errors.Is(err, customerrors.ErrTopicAlreadyExists) {
			return err
		}
		return fmt.Errorf("failed to create topic: %w", err)
	}
	return nil
}

func (r *BadgerRepository) UpsertTopic(ctx context.Context, topic *models.Topic) error {
	err := r.CreateTopic(ctx, topic)
	if !errors.Is(err, customerrors.ErrTopicAlreadyExists) {
		return err
	}
	return r.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, topicKey(topic.Slug), topic)
	})
}

func (r *BadgerRepository) GetTopicsBySlugs(ctx context.Context, slugs []string) ([]models.Topic, error) {
	var topics []models.Topic
	err := r.db.View(func(txn *badger.Txn) error {
		for _, slug := range slugs {
			var t models.Topic
			err := getJSON(txn, topicKey(slug), &t)
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			topics = append(topics, t)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get topics: %w", err)
	}
	sort.Slice(topics, func(i, j int) bool { return topics[i].Name < topics[j].Name })
	return topics, nil
}

// --- BadgerDB Internal Logger ---

// badgerLogger adapts logrus.FieldLogger to Badger's logger interface.
type badgerLogger struct {
	logger logrus.FieldLogger
}

func (l *badgerLogger) Errorf(f string, v ...interface{})   { l.logger.Errorf(f, v...) }
func (l *badgerLogger) Warningf(f string, v ...interface{}) { l.logger.Warningf(f, v...) }
func (l *badgerLogger) Infof(f string, v ...interface{})    { l.logger.Debugf(f, v...) }
func (l *badgerLogger) Debugf(f string, v ...interface{})   { l.logger.Debugf(f, v...) }
