package cli

import (
	"time"

	"github.com/grocerysushi/stumbleupon-clone/cmd"
	"github.com/grocerysushi/stumbleupon-clone/internal/metadata"
	"github.com/grocerysushi/stumbleupon-clone/internal/repository"
	"github.com/grocerysushi/stumbleupon-clone/internal/services"
)

// app bundles the store and services a CLI command works with.
type app struct {
	store     *repository.Store
	discovery *services.DiscoveryService
	feedback  *services.FeedbackService
	links     *services.LinkService
	topics    *services.TopicService
}

// openApp opens the configured store and wires the services on top of it.
// Callers must Close the store.
func openApp() (*app, error) {
	cfg := cmd.Cfg
	store, err := repository.Open(cfg, cmd.Log)
	if err != nil {
		return nil, err
	}

	fetcher := metadata.NewFetcher(metadata.Options{
		Timeout:   time.Duration(cfg.Metadata.TimeoutSeconds) * time.Second,
		UserAgent: cfg.Metadata.UserAgent,
	}, cmd.Log)
	selector := services.NewSelector(cfg.Discovery.Epsilon, cfg.Discovery.ExploreWindow, nil)

	return &app{
		store: store,
		discovery: services.NewDiscoveryService(store.Links, store.Events, selector, cmd.Log,
			services.WithCandidateLimit(cfg.Discovery.CandidateLimit)),
		feedback: services.NewFeedbackService(store.Events, cmd.Log),
		links:    services.NewLinkService(store.Links, store.Events, store.Topics, fetcher, cmd.Log),
		topics:   services.NewTopicService(store.Topics, cmd.Log),
	}, nil
}
