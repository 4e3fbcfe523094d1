// Package seed loads the default topics and sample links into a store.
package seed

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	customerrors "github.com/grocerysushi/stumbleupon-clone/internal/errors"
	"github.com/grocerysushi/stumbleupon-clone/internal/metadata"
	"github.com/grocerysushi/stumbleupon-clone/internal/models"
	"github.com/grocerysushi/stumbleupon-clone/internal/repository"
)

//go:embed default.yaml
var defaultData []byte

// Data is the content of a seed file.
type Data struct {
	Submitter string      `yaml:"submitter"`
	Topics    []TopicSeed `yaml:"topics"`
	Links     []LinkSeed  `yaml:"links"`
}

// TopicSeed is a topic to upsert, keyed by slug.
type TopicSeed struct {
	Name string `yaml:"name"`
	Slug string `yaml:"slug"`
}

// LinkSeed is a sample link, created APPROVED if its URL is not stored yet.
// Unknown topic slugs are ignored.
type LinkSeed struct {
	URL         string   `yaml:"url"`
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Image       string   `yaml:"image"`
	Topics      []string `yaml:"topics"`
}

// Result counts what a seed run created. Records that already existed are skipped.
type Result struct {
	Topics       int
	Links        int
	SkippedLinks int
}

// Default returns the embedded seed data.
func Default() (*Data, error) {
	return Parse(defaultData)
}

// Load reads seed data from a YAML file.
func Load(path string) (*Data, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return Parse(raw)
}

// Parse decodes seed YAML.
func Parse(raw []byte) (*Data, error) {
	var d Data
	if err := yaml.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("failed to parse seed data: %w", err)
	}
	if strings.TrimSpace(d.Submitter) == "" {
		d.Submitter = "test-user"
	}
	return &d, nil
}

// Seed upserts topics then links. Running it twice is harmless: existing
// topics keep their id and existing links are left untouched.
// Seeded links are APPROVED.
func Seed(ctx context.Context, store *repository.Store, d *Data, log logrus.FieldLogger) (Result, error) {
	log = log.WithField("component", "seed")
	var res Result

	for _, t := range d.Topics {
		topic := &models.Topic{Name: t.Name, Slug: strings.ToLower(strings.TrimSpace(t.Slug))}
		if err := store.Topics.UpsertTopic(ctx, topic); err != nil {
			return res, fmt.Errorf("failed to seed topic %q: %w", t.Slug, err)
		}
		res.Topics++
	}

	for _, l := range d.Links {
		if _, err := store.Links.GetLinkByURL(ctx, l.URL); err == nil {
			res.SkippedLinks++
			continue
		} else if !customerrors.IsNotFound(err) {
			return res, fmt.Errorf("failed to look up %s: %w", l.URL, err)
		}

		link := &models.Link{
			URL:         l.URL,
			Title:       l.Title,
			Description: optional(l.Description),
			Domain:      metadata.Domain(l.URL),
			Image:       optional(l.Image),
			Status:      models.StatusApproved,
			SubmittedBy: d.Submitter,
		}
		if link.Title == "" {
			link.Title = metadata.PlaceholderTitle
		}
		if err := store.Links.CreateLink(ctx, link, l.Topics); err != nil {
			return res, fmt.Errorf("failed to seed link %s: %w", l.URL, err)
		}
		res.Links++
	}

	log.WithFields(logrus.Fields{
		"topics":  res.Topics,
		"links":   res.Links,
		"skipped": res.SkippedLinks,
	}).Info("Seed data loaded")
	return res, nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
