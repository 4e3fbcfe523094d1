package monitor

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	customerrors "github.com/grocerysushi/stumbleupon-clone/internal/errors"
	"github.com/grocerysushi/stumbleupon-clone/internal/metrics"
	"github.com/grocerysushi/stumbleupon-clone/internal/models"
	"github.com/grocerysushi/stumbleupon-clone/internal/repository"
)

// LinkMonitor periodically checks that approved links are still reachable.
// It keeps the last known state per link and logs transitions. It never
// changes a link's status; that stays a moderation decision.
type LinkMonitor struct {
	links       repository.LinkRepository
	interval    time.Duration
	knownStates map[string]bool // link ID -> reachable
	mu          sync.Mutex
	httpClient  *http.Client
	log         logrus.FieldLogger
}

// DefaultInterval is used when NewLinkMonitor gets a non-positive interval.
const DefaultInterval = 30 * time.Minute

// NewLinkMonitor creates and returns a new instance of LinkMonitor.
func NewLinkMonitor(links repository.LinkRepository, interval time.Duration, log logrus.FieldLogger) *LinkMonitor {
	if interval <= 0 {
		log.WithField("interval", interval.String()).Warn("Non-positive monitor interval, using default")
		interval = DefaultInterval
	}
	return &LinkMonitor{
		links:       links,
		interval:    interval,
		knownStates: make(map[string]bool),
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		log:         log.WithField("component", "monitor"),
	}
}

// Start runs the check loop until ctx is cancelled.
// A first check runs immediately, before waiting for the first tick.
func (m *LinkMonitor) Start(ctx context.Context) {
	m.log.WithField("interval", m.interval.String()).Info("Starting link monitor")
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.CheckLinks(ctx)
	for {
		select {
		case <-ctx.Done():
			m.log.Info("Link monitor stopped")
			return
		case <-ticker.C:
			m.CheckLinks(ctx)
		}
	}
}

// CheckLinks checks every approved link once and returns how many were unreachable.
func (m *LinkMonitor) CheckLinks(ctx context.Context) int {
	links, err := m.links.ListLinks(ctx, repository.LinkFilter{Status: models.StatusApproved, Limit: repository.NoLimit})
	if err != nil {
		m.log.WithError(err).Error("Failed to list links for monitoring")
		metrics.StoreErrors.WithLabelValues("monitor_list").Inc()
		return 0
	}

	unreachable := 0
	for _, link := range links {
		if ctx.Err() != nil {
			return unreachable
		}
		current := true
		if err := m.check(ctx, link.URL); err != nil {
			current = false
			unreachable++
			m.log.WithError(err).Debug("Link check failed")
		}

		m.mu.Lock()
		previous, seen := m.knownStates[link.ID]
		m.knownStates[link.ID] = current
		m.mu.Unlock()

		entry := m.log.WithFields(logrus.Fields{"link_id": link.ID, "url": link.URL})
		if !seen {
			entry.WithField("state", formatState(current)).Debug("Initial link state")
			continue
		}
		if current != previous {
			entry.WithFields(logrus.Fields{
				"from": formatState(previous),
				"to":   formatState(current),
			}).Warn("Link state changed")
		}
	}

	metrics.UnreachableLinks.Set(float64(unreachable))
	m.log.WithFields(logrus.Fields{"checked": len(links), "unreachable": unreachable}).Info("Link check completed")
	return unreachable
}

// State returns the last observed state of a link.
func (m *LinkMonitor) State(linkID string) (reachable, known bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	reachable, known = m.knownStates[linkID]
	return reachable, known
}

// check sends a HEAD request; 2xx and 3xx count as reachable.
func (m *LinkMonitor) check(ctx context.Context, url string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return customerrors.ErrURLCheckFailed{URL: url, Reason: err.Error()}
	}
	resp, err := m.httpClient.Do(req)
	if err != nil {
		return customerrors.ErrURLCheckFailed{URL: url, Reason: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		return customerrors.ErrURLCheckFailed{URL: url, Reason: resp.Status}
	}
	return nil
}

func formatState(reachable bool) string {
	if reachable {
		return "REACHABLE"
	}
	return "UNREACHABLE"
}
