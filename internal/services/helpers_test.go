package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/grocerysushi/stumbleupon-clone/internal/metadata"
	"github.com/grocerysushi/stumbleupon-clone/internal/models"
	"github.com/grocerysushi/stumbleupon-clone/internal/repository"
)

func newTestStore(t *testing.T) *repository.Store {
	t.Helper()
	db, err := repository.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, repository.Migrate(db))
	store := repository.NewGormStore(db)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func addTopics(t *testing.T, store *repository.Store, slugs ...string) {
	t.Helper()
	for _, slug := range slugs {
		require.NoError(t, store.Topics.UpsertTopic(context.Background(), &models.Topic{Name: slug, Slug: slug}))
	}
}

func addLink(t *testing.T, store *repository.Store, url string, status models.LinkStatus, topics ...string) *models.Link {
	t.Helper()
	link := &models.Link{
		URL:         url,
		Title:       "title",
		Domain:      metadata.Domain(url),
		Status:      status,
		SubmittedBy: "tester",
		CreatedAt:   time.Now(),
	}
	require.NoError(t, store.Links.CreateLink(context.Background(), link, topics))
	return link
}

// fixedRand replays a constant draw.
type fixedRand struct {
	f float64
	n int
}

func (r fixedRand) Float64() float64 { return r.f }
func (r fixedRand) IntN(n int) int {
	if r.n >= n {
		return n - 1
	}
	return r.n
}

// stubMetadata returns canned metadata without network access.
type stubMetadata struct {
	md    metadata.Metadata
	calls int
}

func (s *stubMetadata) Fetch(_ context.Context, _ string) metadata.Metadata {
	s.calls++
	return s.md
}
