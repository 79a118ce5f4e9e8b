package sources

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/aakashyadav27/tech-trend-agent/app/curated"
	"github.com/aakashyadav27/tech-trend-agent/app/curation"
	"github.com/aakashyadav27/tech-trend-agent/app/feed"
	"github.com/aakashyadav27/tech-trend-agent/app/freshness"
)

const (
	maxItemsPerFeed    = 10
	maxConcurrentSites = 4
)

// CuratedFeeds turns the curated source list into candidate items: each
// site goes through feed discovery and normalization, and sites without a
// machine-readable feed fall back to readability extraction of the page
// itself. One failing site never affects the others.
type CuratedFeeds struct {
	lookup     *curated.Client
	client     *feed.Client
	discoverer *feed.Discoverer
	parser     *feed.Parser
	extractor  *feed.ContentExtractor
	fresh      *freshness.Filter
}

func NewCuratedFeeds(lookup *curated.Client, client *feed.Client, fresh *freshness.Filter) *CuratedFeeds {
	return &CuratedFeeds{
		lookup:     lookup,
		client:     client,
		discoverer: feed.NewDiscoverer(client),
		parser:     feed.NewParser(),
		extractor:  feed.NewContentExtractor(),
		fresh:      fresh,
	}
}

func (s *CuratedFeeds) Name() string { return "Curated Feeds" }

func (s *CuratedFeeds) Fetch(ctx context.Context, query curation.Query) ([]curation.Item, error) {
	descriptors := s.lookup.Run(ctx)
	if len(descriptors) == 0 {
		return nil, nil
	}

	var (
		mu    sync.Mutex
		wg    sync.WaitGroup
		items []curation.Item
	)

	sem := make(chan struct{}, maxConcurrentSites)

	for _, descriptor := range descriptors {
		wg.Add(1)
		go func(d curated.Descriptor) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			siteItems := s.fetchSite(ctx, d)

			mu.Lock()
			items = append(items, siteItems...)
			mu.Unlock()
		}(descriptor)
	}

	wg.Wait()
	return items, nil
}

func (s *CuratedFeeds) fetchSite(ctx context.Context, d curated.Descriptor) []curation.Item {
	feedURL, err := s.discoverer.Run(ctx, d.URL)
	if err != nil {
		if errors.Is(err, feed.ErrNoFeed) {
			return s.extractPage(ctx, d)
		}
		slog.Warn("Feed discovery failed", "site", d.URL, "error", err)
		return nil
	}

	data, _, err := s.client.Get(ctx, feedURL, nil)
	if err != nil {
		slog.Warn("Feed fetch failed", "feed", feedURL, "error", err)
		return nil
	}

	parsed := s.parser.Run(data, maxItemsPerFeed, d.Name)

	items := make([]curation.Item, 0, len(parsed))
	for _, entry := range parsed {
		if !s.fresh.Fresh(entry.PublishedAt) {
			continue
		}
		items = append(items, curation.Item{
			Title:       entry.Title,
			URL:         entry.URL,
			Source:      entry.Source,
			PublishedAt: entry.PublishedAt,
			Relevance:   curation.DefaultRelevance,
			Category:    categoryForType(d.Type),
		})
	}
	return items
}

// extractPage is the no-feed fallback: readability extraction of the page
// itself yields a single candidate. The extraction step cannot determine
// a publication date, so it marks the item with the optimistic sentinel.
func (s *CuratedFeeds) extractPage(ctx context.Context, d curated.Descriptor) []curation.Item {
	data, _, err := s.client.Get(ctx, d.URL, nil)
	if err != nil {
		slog.Warn("Page fetch failed", "site", d.URL, "error", err)
		return nil
	}

	article, err := s.extractor.Run(data, d.URL)
	if err != nil {
		slog.Debug("Page extraction yielded nothing", "site", d.URL, "error", err)
		return nil
	}

	title := article.Title
	if title == "" {
		title = d.Name
	}

	return []curation.Item{{
		Title:       title,
		URL:         d.URL,
		Source:      d.Name,
		Summary:     truncate(article.Excerpt, 280),
		PublishedAt: freshness.SentinelUnknown,
		Relevance:   curation.DefaultRelevance,
		Category:    categoryForType(d.Type),
	}}
}

func categoryForType(sourceType string) string {
	switch sourceType {
	case "blog":
		return "Blog"
	case "news":
		return "News"
	case "release":
		return "Releases"
	default:
		return curation.DefaultCategory
	}
}
