// Package metadata fetches a page and extracts its title, description and preview image.
// Failures never propagate: callers always get usable, possibly placeholder, values.
package metadata

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker/v2"

	"github.com/grocerysushi/stumbleupon-clone/internal/metrics"
)

// PlaceholderTitle is used when no title can be extracted.
const PlaceholderTitle = "Untitled"

// maxBodyBytes caps how much HTML is read from a page.
const maxBodyBytes = 2 << 20

// Metadata is what a link submission needs from the page.
type Metadata struct {
	Title       string
	Description *string
	Image       *string
}

// Placeholder returns the values used when the page cannot be fetched.
func Placeholder() Metadata {
	return Metadata{Title: PlaceholderTitle}
}

// Options configures a Fetcher.
type Options struct {
	Timeout   time.Duration
	UserAgent string
}

// Fetcher retrieves page metadata over HTTP with a bounded timeout.
type Fetcher struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
	breaker   *gobreaker.CircuitBreaker[Metadata]
	log       logrus.FieldLogger
}

// NewFetcher creates a fetcher. A zero timeout means 10 seconds.
func NewFetcher(opts Options, log logrus.FieldLogger) *Fetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	l := log.WithField("component", "metadata")
	breaker := gobreaker.NewCircuitBreaker[Metadata](gobreaker.Settings{
		Name:        "metadata-fetch",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			l.WithFields(logrus.Fields{"from": from.String(), "to": to.String()}).Warn("Metadata circuit breaker state changed")
		},
	})
	return &Fetcher{
		client:    &http.Client{Timeout: opts.Timeout},
		timeout:   opts.Timeout,
		userAgent: opts.UserAgent,
		breaker:   breaker,
		log:       l,
	}
}

// Fetch returns the page metadata, or Placeholder() on any failure or timeout.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) Metadata {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	md, err := f.breaker.Execute(func() (Metadata, error) {
		return f.fetch(ctx, pageURL)
	})
	if err != nil {
		outcome := "fallback"
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			outcome = "breaker_open"
		}
		metrics.MetadataFetches.WithLabelValues(outcome).Inc()
		f.log.WithError(err).WithField("url", pageURL).Warn("Failed to fetch metadata, using placeholder")
		return Placeholder()
	}
	metrics.MetadataFetches.WithLabelValues("ok").Inc()
	return md
}

func (f *Fetcher) fetch(ctx context.Context, pageURL string) (Metadata, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return Metadata{}, fmt.Errorf("parse url: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return Metadata{}, fmt.Errorf("new request: %w", err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return Metadata{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Metadata{}, fmt.Errorf("http status: %s", resp.Status)
	}
	return Parse(io.LimitReader(resp.Body, maxBodyBytes), base)
}

// Parse extracts metadata from an HTML document. Open Graph tags win over
// <title> and meta description. Relative image URLs are resolved against base.
func Parse(r io.Reader, base *url.URL) (Metadata, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return Metadata{}, fmt.Errorf("parse html: %w", err)
	}

	md := Placeholder()
	if title := firstNonEmpty(
		metaContent(doc, `meta[property="og:title"]`),
		strings.TrimSpace(doc.Find("title").First().Text()),
	); title != "" {
		md.Title = title
	}
	if desc := firstNonEmpty(
		metaContent(doc, `meta[property="og:description"]`),
		metaContent(doc, `meta[name="description"]`),
	); desc != "" {
		md.Description = &desc
	}
	if img := metaContent(doc, `meta[property="og:image"]`); img != "" {
		if ref, err := url.Parse(img); err == nil && base != nil {
			img = base.ResolveReference(ref).String()
		}
		md.Image = &img
	}
	return md, nil
}

func metaContent(doc *goquery.Document, selector string) string {
	content, _ := doc.Find(selector).First().Attr("content")
	return strings.TrimSpace(content)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Domain returns the hostname of rawURL, or "unknown" when it cannot be parsed.
func Domain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return u.Hostname()
}
