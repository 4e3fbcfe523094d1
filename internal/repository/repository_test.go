package repository

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	customerrors "github.com/grocerysushi/stumbleupon-clone/internal/errors"
	"github.com/grocerysushi/stumbleupon-clone/internal/logging"
	"github.com/grocerysushi/stumbleupon-clone/internal/models"
)

// backends returns a fresh store per implementation.
func backends(t *testing.T) map[string]func(t *testing.T) *Store {
	return map[string]func(t *testing.T) *Store{
		"gorm": func(t *testing.T) *Store {
			db, err := OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
			require.NoError(t, err)
			require.NoError(t, Migrate(db))
			s := NewGormStore(db)
			t.Cleanup(func() { _ = s.Close() })
			return s
		},
		"badger": func(t *testing.T) *Store {
			repo, err := NewBadgerRepository(t.TempDir(), logging.Discard())
			require.NoError(t, err)
			s := &Store{Links: repo, Events: repo, Topics: repo, close: repo.Close}
			t.Cleanup(func() { _ = s.Close() })
			return s
		},
	}
}

func seedTopics(t *testing.T, s *Store, slugs ...string) {
	t.Helper()
	for _, slug := range slugs {
		require.NoError(t, s.Topics.UpsertTopic(context.Background(), &models.Topic{Name: slug, Slug: slug}))
	}
}

func newLink(url string, status models.LinkStatus) *models.Link {
	return &models.Link{
		URL:         url,
		Title:       "title",
		Domain:      "example.com",
		Status:      status,
		SubmittedBy: "tester",
	}
}

func TestCreateAndGetLink(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			ctx := context.Background()
			seedTopics(t, s, "science", "design")

			link := newLink("https://example.com/a", models.StatusApproved)
			require.NoError(t, s.Links.CreateLink(ctx, link, []string{"science", "unknown"}))
			require.NotEmpty(t, link.ID)

			got, err := s.Links.GetLinkByID(ctx, link.ID)
			require.NoError(t, err)
			assert.Equal(t, "https://example.com/a", got.URL)
			require.Len(t, got.Topics, 1)
			assert.Equal(t, "science", got.Topics[0].Slug)

			byURL, err := s.Links.GetLinkByURL(ctx, "https://example.com/a")
			require.NoError(t, err)
			assert.Equal(t, link.ID, byURL.ID)

			_, err = s.Links.GetLinkByID(ctx, "missing")
			assert.ErrorIs(t, err, customerrors.ErrLinkNotFound)
			assert.True(t, customerrors.IsNotFound(err))
		})
	}
}

func TestCreateLinkDuplicateURL(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			ctx := context.Background()
			require.NoError(t, s.Links.CreateLink(ctx, newLink("https://example.com/dup", models.StatusPending), nil))
			err := s.Links.CreateLink(ctx, newLink("https://example.com/dup", models.StatusPending), nil)
			assert.ErrorIs(t, err, customerrors.ErrLinkAlreadyExists)
		})
	}
}

func TestFindCandidates(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			ctx := context.Background()
			seedTopics(t, s, "science", "design", "music")

			approvedScience := newLink("https://example.com/science", models.StatusApproved)
			approvedDesign := newLink("https://example.com/design", models.StatusApproved)
			pending := newLink("https://example.com/pending", models.StatusPending)
			rejected := newLink("https://example.com/rejected", models.StatusRejected)
			require.NoError(t, s.Links.CreateLink(ctx, approvedScience, []string{"science"}))
			require.NoError(t, s.Links.CreateLink(ctx, approvedDesign, []string{"design"}))
			require.NoError(t, s.Links.CreateLink(ctx, pending, []string{"science"}))
			require.NoError(t, s.Links.CreateLink(ctx, rejected, []string{"science"}))

			all, err := s.Links.FindCandidates(ctx, CandidateQuery{Limit: 50})
			require.NoError(t, err)
			assert.ElementsMatch(t, []string{approvedScience.ID, approvedDesign.ID}, ids(all))

			science, err := s.Links.FindCandidates(ctx, CandidateQuery{TopicSlugs: []string{"science"}, Limit: 50})
			require.NoError(t, err)
			assert.Equal(t, []string{approvedScience.ID}, ids(science))

			either, err := s.Links.FindCandidates(ctx, CandidateQuery{TopicSlugs: []string{"science", "design"}, Limit: 50})
			require.NoError(t, err)
			assert.Len(t, either, 2)

			none, err := s.Links.FindCandidates(ctx, CandidateQuery{TopicSlugs: []string{"music"}, Limit: 50})
			require.NoError(t, err)
			assert.Empty(t, none)

			_, err = s.Events.RecordView(ctx, "alice", approvedScience.ID)
			require.NoError(t, err)

			forAlice, err := s.Links.FindCandidates(ctx, CandidateQuery{ViewerID: "alice", Limit: 50})
			require.NoError(t, err)
			assert.Equal(t, []string{approvedDesign.ID}, ids(forAlice))

			forBob, err := s.Links.FindCandidates(ctx, CandidateQuery{ViewerID: "bob", Limit: 50})
			require.NoError(t, err)
			assert.Len(t, forBob, 2)

			capped, err := s.Links.FindCandidates(ctx, CandidateQuery{Limit: 1})
			require.NoError(t, err)
			assert.Len(t, capped, 1)
		})
	}
}

func TestFeedbackDoesNotExclude(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			ctx := context.Background()
			link := newLink("https://example.com/x", models.StatusApproved)
			require.NoError(t, s.Links.CreateLink(ctx, link, nil))

			_, err := s.Events.RecordFeedback(ctx, "alice", link.ID, models.ActionLike)
			require.NoError(t, err)

			got, err := s.Links.FindCandidates(ctx, CandidateQuery{ViewerID: "alice", Limit: 50})
			require.NoError(t, err)
			assert.Len(t, got, 1)
		})
	}
}

func TestRecordEventsUpdateCounters(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			ctx := context.Background()
			link := newLink("https://example.com/c", models.StatusApproved)
			require.NoError(t, s.Links.CreateLink(ctx, link, nil))

			_, err := s.Events.RecordView(ctx, "alice", link.ID)
			require.NoError(t, err)
			for _, action := range []models.Action{models.ActionLike, models.ActionLike, models.ActionDislike, models.ActionSkip, models.ActionSave, models.ActionShare} {
				_, err := s.Events.RecordFeedback(ctx, "alice", link.ID, action)
				require.NoError(t, err)
			}

			got, err := s.Links.GetLinkByID(ctx, link.ID)
			require.NoError(t, err)
			assert.EqualValues(t, 1, got.ViewCount)
			assert.EqualValues(t, 2, got.LikeCount)
			assert.EqualValues(t, 1, got.DislikeCount)
			assert.EqualValues(t, 1, got.SkipCount)
			assert.EqualValues(t, 1, got.SaveCount)

			counts, err := s.Events.CountEventsByLinkID(ctx, link.ID)
			require.NoError(t, err)
			assert.EqualValues(t, 1, counts[models.ActionView])
			assert.EqualValues(t, 2, counts[models.ActionLike])
			assert.EqualValues(t, 1, counts[models.ActionShare])

			// the view excludes the link for alice only
			left, err := s.Links.FindCandidates(ctx, CandidateQuery{ViewerID: "alice", Limit: 50})
			require.NoError(t, err)
			assert.Empty(t, left)
			left, err = s.Links.FindCandidates(ctx, CandidateQuery{ViewerID: "bob", Limit: 50})
			require.NoError(t, err)
			assert.Len(t, left, 1)
		})
	}
}

func TestRecordUnknownLinkWritesNothing(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			ctx := context.Background()

			_, err := s.Events.RecordFeedback(ctx, "alice", "missing", models.ActionLike)
			assert.ErrorIs(t, err, customerrors.ErrLinkNotFound)

			counts, err := s.Events.CountEventsByLinkID(ctx, "missing")
			require.NoError(t, err)
			assert.Empty(t, counts)
		})
	}
}

func TestConcurrentFeedbackKeepsEveryIncrement(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			ctx := context.Background()
			link := newLink("https://example.com/busy", models.StatusApproved)
			require.NoError(t, s.Links.CreateLink(ctx, link, nil))

			const n = 20
			var wg sync.WaitGroup
			errs := make(chan error, n)
			for i := 0; i < n; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, err := s.Events.RecordFeedback(ctx, "alice", link.ID, models.ActionLike)
					errs <- err
				}()
			}
			wg.Wait()
			close(errs)
			for err := range errs {
				require.NoError(t, err)
			}

			got, err := s.Links.GetLinkByID(ctx, link.ID)
			require.NoError(t, err)
			assert.EqualValues(t, n, got.LikeCount)
		})
	}
}

func TestListLinksAndUpdateStatus(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			ctx := context.Background()

			older := newLink("https://example.com/old", models.StatusPending)
			older.CreatedAt = time.Now().Add(-time.Hour)
			newer := newLink("https://example.com/new", models.StatusPending)
			newer.SubmittedBy = "other"
			require.NoError(t, s.Links.CreateLink(ctx, older, nil))
			require.NoError(t, s.Links.CreateLink(ctx, newer, nil))

			pending, err := s.Links.ListLinks(ctx, LinkFilter{Status: models.StatusPending})
			require.NoError(t, err)
			assert.Equal(t, []string{newer.ID, older.ID}, ids(pending))

			mine, err := s.Links.ListLinks(ctx, LinkFilter{Status: models.StatusPending, SubmittedBy: "tester"})
			require.NoError(t, err)
			assert.Equal(t, []string{older.ID}, ids(mine))

			require.NoError(t, s.Links.UpdateStatus(ctx, older.ID, models.StatusApproved))
			approved, err := s.Links.ListLinks(ctx, LinkFilter{Status: models.StatusApproved, Limit: NoLimit})
			require.NoError(t, err)
			assert.Equal(t, []string{older.ID}, ids(approved))

			err = s.Links.UpdateStatus(ctx, "missing", models.StatusApproved)
			assert.ErrorIs(t, err, customerrors.ErrLinkNotFound)
		})
	}
}

func TestTopics(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			ctx := context.Background()

			require.NoError(t, s.Topics.CreateTopic(ctx, &models.Topic{Name: "Science", Slug: "science"}))
			require.NoError(t, s.Topics.CreateTopic(ctx, &models.Topic{Name: "Art", Slug: "art"}))
			err := s.Topics.CreateTopic(ctx, &models.Topic{Name: "Other", Slug: "science"})
			assert.ErrorIs(t, err, customerrors.ErrTopicAlreadyExists)

			existing := &models.Topic{Name: "Science again", Slug: "science"}
			require.NoError(t, s.Topics.UpsertTopic(ctx, existing))
			assert.Equal(t, "Science", existing.Name)

			topics, err := s.Topics.ListTopics(ctx)
			require.NoError(t, err)
			require.Len(t, topics, 2)
			assert.Equal(t, "Art", topics[0].Name)

			found, err := s.Topics.GetTopicsBySlugs(ctx, []string{"science", "nope"})
			require.NoError(t, err)
			require.Len(t, found, 1)
			assert.Equal(t, "science", found[0].Slug)
		})
	}
}

func ids(links []models.Link) []string {
	out := make([]string, len(links))
	for i, l := range links {
		out[i] = l.ID
	}
	return out
}
