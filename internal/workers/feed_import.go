// Package workers runs bulk link imports through a bounded pool of goroutines.
package workers

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/mmcdole/gofeed"
	"github.com/sirupsen/logrus"

	customerrors "github.com/grocerysushi/stumbleupon-clone/internal/errors"
	"github.com/grocerysushi/stumbleupon-clone/internal/models"
	"github.com/grocerysushi/stumbleupon-clone/internal/services"
)

// Submitter stores one link. *services.LinkService satisfies it.
type Submitter interface {
	Submit(ctx context.Context, req services.SubmitRequest) (*models.Link, error)
}

// ImportRequest describes one feed import.
type ImportRequest struct {
	SubmittedBy string
	Topics      []string
	Approve     bool
}

// ImportResult aggregates the outcome of an import.
type ImportResult struct {
	Items      int
	Imported   int
	Duplicates int
	Failed     int
}

// FeedImporter parses RSS/Atom/JSON feeds and submits every item link.
type FeedImporter struct {
	submitter   Submitter
	parser      *gofeed.Parser
	workerCount int
	log         logrus.FieldLogger
}

// NewFeedImporter creates a FeedImporter with workerCount concurrent submitters.
func NewFeedImporter(submitter Submitter, workerCount int, userAgent string, log logrus.FieldLogger) *FeedImporter {
	if workerCount < 1 {
		workerCount = 1
	}
	parser := gofeed.NewParser()
	parser.UserAgent = userAgent
	return &FeedImporter{
		submitter:   submitter,
		parser:      parser,
		workerCount: workerCount,
		log:         log.WithField("component", "feed_import"),
	}
}

// ImportURL downloads and imports the feed at feedURL.
func (f *FeedImporter) ImportURL(ctx context.Context, feedURL string, req ImportRequest) (ImportResult, error) {
	feed, err := f.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return ImportResult{}, customerrors.Dependency("parse feed", err)
	}
	return f.importFeed(ctx, feed, req), nil
}

// Import parses a feed document from r and imports it.
func (f *FeedImporter) Import(ctx context.Context, r io.Reader, req ImportRequest) (ImportResult, error) {
	feed, err := f.parser.Parse(r)
	if err != nil {
		return ImportResult{}, customerrors.Dependency("parse feed", err)
	}
	return f.importFeed(ctx, feed, req), nil
}

type outcome int

const (
	outcomeImported outcome = iota
	outcomeDuplicate
	outcomeFailed
)

func (f *FeedImporter) importFeed(ctx context.Context, feed *gofeed.Feed, req ImportRequest) ImportResult {
	urls := itemURLs(feed)
	f.log.WithFields(logrus.Fields{"feed": feed.Title, "items": len(urls)}).Info("Importing feed")

	jobs := make(chan string)
	results := make(chan outcome, len(urls))

	var wg sync.WaitGroup
	for i := 0; i < f.workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f.worker(ctx, jobs, results, req)
		}()
	}

	go func() {
		defer close(jobs)
		for _, u := range urls {
			select {
			case jobs <- u:
			case <-ctx.Done():
				return
			}
		}
	}()

	wg.Wait()
	close(results)

	res := ImportResult{Items: len(urls)}
	for o := range results {
		switch o {
		case outcomeImported:
			res.Imported++
		case outcomeDuplicate:
			res.Duplicates++
		default:
			res.Failed++
		}
	}
	f.log.WithFields(logrus.Fields{
		"imported":   res.Imported,
		"duplicates": res.Duplicates,
		"failed":     res.Failed,
	}).Info("Feed import completed")
	return res
}

// worker submits links until jobs is closed. A failed item never stops the pool.
func (f *FeedImporter) worker(ctx context.Context, jobs <-chan string, results chan<- outcome, req ImportRequest) {
	for u := range jobs {
		_, err := f.submitter.Submit(ctx, services.SubmitRequest{
			URL:         u,
			UserID:      req.SubmittedBy,
			Topics:      req.Topics,
			PreApproved: req.Approve,
		})
		switch {
		case err == nil:
			results <- outcomeImported
		case errors.Is(err, customerrors.ErrLinkAlreadyExists):
			f.log.WithField("url", u).Debug("Link already known, skipped")
			results <- outcomeDuplicate
		default:
			f.log.WithError(err).WithField("url", u).Warn("Failed to import link")
			results <- outcomeFailed
		}
	}
}

// itemURLs returns the distinct non-empty item links of feed, in feed order.
func itemURLs(feed *gofeed.Feed) []string {
	seen := make(map[string]struct{}, len(feed.Items))
	urls := make([]string, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		u := strings.TrimSpace(item.Link)
		if u == "" {
			continue
		}
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		urls = append(urls, u)
	}
	return urls
}
