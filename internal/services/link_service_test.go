package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	customerrors "github.com/grocerysushi/stumbleupon-clone/internal/errors"
	"github.com/grocerysushi/stumbleupon-clone/internal/logging"
	"github.com/grocerysushi/stumbleupon-clone/internal/metadata"
	"github.com/grocerysushi/stumbleupon-clone/internal/models"
	"github.com/grocerysushi/stumbleupon-clone/internal/repository"
)

func newLinkService(store *repository.Store, md *stubMetadata) *LinkService {
	return NewLinkService(store.Links, store.Events, store.Topics, md, logging.Discard())
}

func TestSubmitLink(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	addTopics(t, store, "science", "technology")
	desc := "A page"
	md := &stubMetadata{md: metadata.Metadata{Title: "Example", Description: &desc}}
	svc := newLinkService(store, md)

	link, err := svc.Submit(ctx, SubmitRequest{
		URL:    "https://www.example.com/page",
		UserID: "alice",
		Topics: []string{"Science", "unknown"},
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, link.Status)
	assert.Equal(t, "Example", link.Title)
	assert.Equal(t, "www.example.com", link.Domain)
	require.NotNil(t, link.Description)
	assert.Equal(t, "A page", *link.Description)

	stored, err := store.Links.GetLinkByID(ctx, link.ID)
	require.NoError(t, err)
	require.Len(t, stored.Topics, 1)
	assert.Equal(t, "science", stored.Topics[0].Slug)

	// pending links are not discoverable
	_, err = newDiscovery(store, nil).Select(ctx, SelectRequest{})
	assert.ErrorIs(t, err, customerrors.ErrNoEligibleContent)
}

func TestSubmitLinkDuplicate(t *testing.T) {
	store := newTestStore(t)
	md := &stubMetadata{md: metadata.Placeholder()}
	svc := newLinkService(store, md)
	req := SubmitRequest{URL: "https://example.com/", UserID: "alice"}

	_, err := svc.Submit(context.Background(), req)
	require.NoError(t, err)
	_, err = svc.Submit(context.Background(), req)
	assert.ErrorIs(t, err, customerrors.ErrLinkAlreadyExists)
	assert.Equal(t, 1, md.calls, "duplicate must not trigger a fetch")
}

func TestSubmitLinkValidation(t *testing.T) {
	store := newTestStore(t)
	svc := newLinkService(store, &stubMetadata{md: metadata.Placeholder()})

	tests := []struct {
		name  string
		req   SubmitRequest
		cause error
	}{
		{"missing url", SubmitRequest{UserID: "alice"}, customerrors.ErrMissingField},
		{"relative url", SubmitRequest{URL: "/just/a/path", UserID: "alice"}, customerrors.ErrInvalidURL},
		{"ftp url", SubmitRequest{URL: "ftp://example.com/file", UserID: "alice"}, customerrors.ErrInvalidURL},
		{"missing user", SubmitRequest{URL: "https://example.com"}, customerrors.ErrMissingField},
		{"bad topic", SubmitRequest{URL: "https://example.com", UserID: "alice", Topics: []string{"no spaces"}}, customerrors.ErrInvalidTopic},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Submit(context.Background(), tt.req)
			require.Error(t, err)
			assert.True(t, customerrors.IsValidation(err))
			assert.ErrorIs(t, err, tt.cause)
		})
	}
}

func TestModerateAndList(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	svc := newLinkService(store, &stubMetadata{md: metadata.Placeholder()})

	link, err := svc.Submit(ctx, SubmitRequest{URL: "https://example.com/m", UserID: "alice"})
	require.NoError(t, err)

	approved, err := svc.List(ctx, "", "")
	require.NoError(t, err)
	assert.Empty(t, approved)

	pending, err := svc.List(ctx, models.StatusPending, "alice")
	require.NoError(t, err)
	require.Len(t, pending, 1)

	moderated, err := svc.Moderate(ctx, ModerateRequest{LinkID: link.ID, Status: "approved"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, moderated.Status)

	approved, err = svc.List(ctx, "", "")
	require.NoError(t, err)
	require.Len(t, approved, 1)

	_, err = svc.Moderate(ctx, ModerateRequest{LinkID: link.ID, Status: "DELETED"})
	assert.ErrorIs(t, err, customerrors.ErrInvalidStatus)

	_, err = svc.Moderate(ctx, ModerateRequest{LinkID: "missing", Status: models.StatusRejected})
	assert.ErrorIs(t, err, customerrors.ErrLinkNotFound)

	_, err = svc.List(ctx, "BOGUS", "")
	assert.ErrorIs(t, err, customerrors.ErrInvalidStatus)
}

func TestLinkStats(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	link := addLink(t, store, "https://example.com/s", models.StatusApproved)
	_, err := store.Events.RecordView(ctx, "alice", link.ID)
	require.NoError(t, err)
	_, err = store.Events.RecordFeedback(ctx, "alice", link.ID, models.ActionSave)
	require.NoError(t, err)

	svc := newLinkService(store, &stubMetadata{})
	stats, err := svc.Stats(ctx, link.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.Link.ViewCount)
	assert.EqualValues(t, 1, stats.Events[models.ActionView])
	assert.EqualValues(t, 1, stats.Events[models.ActionSave])

	_, err = svc.Stats(ctx, "missing")
	assert.True(t, customerrors.IsNotFound(err))
}

// failingTopics makes topic lookups fail.
type failingTopics struct {
	repository.TopicRepository
}

func (failingTopics) GetTopicsBySlugs(context.Context, []string) ([]models.Topic, error) {
	return nil, errors.New("topics table locked")
}

func TestSubmitLinkTopicResolution(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	md := &stubMetadata{md: metadata.Placeholder()}

	// only unknown topics: the link is still stored, without topics
	link, err := newLinkService(store, md).Submit(ctx, SubmitRequest{
		URL: "https://example.com/unknown", UserID: "alice", Topics: []string{"nope"},
	})
	require.NoError(t, err)
	stored, err := store.Links.GetLinkByID(ctx, link.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Topics)

	svc := NewLinkService(store.Links, store.Events, failingTopics{store.Topics}, md, logging.Discard())
	_, err = svc.Submit(ctx, SubmitRequest{
		URL: "https://example.com/broken", UserID: "alice", Topics: []string{"science"},
	})
	var derr *customerrors.DependencyError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "resolve topics", derr.Op)

	// without topics the lookup is skipped
	_, err = svc.Submit(ctx, SubmitRequest{URL: "https://example.com/plain", UserID: "alice"})
	assert.NoError(t, err)
}
