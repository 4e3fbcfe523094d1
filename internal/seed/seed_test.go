package seed

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grocerysushi/stumbleupon-clone/internal/logging"
	"github.com/grocerysushi/stumbleupon-clone/internal/models"
	"github.com/grocerysushi/stumbleupon-clone/internal/repository"
)

func newStore(t *testing.T) *repository.Store {
	t.Helper()
	db, err := repository.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, repository.Migrate(db))
	store := repository.NewGormStore(db)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestDefaultData(t *testing.T) {
	d, err := Default()
	require.NoError(t, err)
	assert.Equal(t, "test-user", d.Submitter)
	assert.Len(t, d.Topics, 16)
	assert.Len(t, d.Links, 4)
}

func TestSeedIsRepeatable(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	d, err := Default()
	require.NoError(t, err)

	res, err := Seed(ctx, store, d, logging.Discard())
	require.NoError(t, err)
	assert.Equal(t, 16, res.Topics)
	assert.Equal(t, 4, res.Links)

	res, err = Seed(ctx, store, d, logging.Discard())
	require.NoError(t, err)
	assert.Equal(t, 0, res.Links)
	assert.Equal(t, 4, res.SkippedLinks)

	topics, err := store.Topics.ListTopics(ctx)
	require.NoError(t, err)
	assert.Len(t, topics, 16)

	links, err := store.Links.ListLinks(ctx, repository.LinkFilter{Status: models.StatusApproved})
	require.NoError(t, err)
	assert.Len(t, links, 4)

	mdn, err := store.Links.GetLinkByURL(ctx, "https://developer.mozilla.org/")
	require.NoError(t, err)
	assert.Equal(t, "developer.mozilla.org", mdn.Domain)
	assert.Equal(t, "test-user", mdn.SubmittedBy)
	assert.Len(t, mdn.Topics, 2)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
topics:
  - { name: Go, slug: go }
links:
  - url: https://go.dev/
    topics: [go]
`), 0o600))

	d, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "test-user", d.Submitter)

	store := newStore(t)
	res, err := Seed(context.Background(), store, d, logging.Discard())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Links)

	link, err := store.Links.GetLinkByURL(context.Background(), "https://go.dev/")
	require.NoError(t, err)
	assert.Equal(t, "Untitled", link.Title)
	assert.Nil(t, link.Description)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
