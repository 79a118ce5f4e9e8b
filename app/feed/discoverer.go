package feed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
)

// ErrNoFeed reports that all discovery strategies were exhausted without
// finding a feed. It is distinguishable from transient fetch errors so
// that callers can fall back to full-page content extraction.
var ErrNoFeed = errors.New("no feed discovered")

// Discovery strategies in priority order: <link> tags advertised in the
// page head, conventional feed paths probed against the origin, and
// finally the input URL itself checked for feed markup. Strategies run
// sequentially: each is cheap to skip on failure, and speculative
// concurrent fetches would multiply load on the target site.

// Both attribute orders appear in the wild: type before href and href
// before type.
var feedLinkPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)<link[^>]+type=["']application/(?:rss\+xml|atom\+xml|feed\+json|json)["'][^>]*href=["']([^"']+)["']`),
	regexp.MustCompile(`(?i)<link[^>]+href=["']([^"']+)["'][^>]*type=["']application/(?:rss\+xml|atom\+xml|feed\+json|json)["']`),
}

var commonFeedPaths = []string{
	"/feed",
	"/feed.xml",
	"/rss",
	"/rss.xml",
	"/atom.xml",
	"/index.xml",
	"/feeds/posts/default",
	"/blog/feed",
	"/blog/rss.xml",
	"/feed/atom",
}

type Discoverer struct {
	client *Client
}

func NewDiscoverer(client *Client) *Discoverer {
	return &Discoverer{client: client}
}

// Run locates a feed URL for the given site. Network errors at any step
// demote to the next strategy; only full exhaustion returns ErrNoFeed.
func (d *Discoverer) Run(ctx context.Context, siteURL string) (string, error) {
	base, err := url.Parse(siteURL)
	if err != nil || base.Host == "" {
		return "", fmt.Errorf("invalid site URL %q", siteURL)
	}

	if feedURL := d.scanPageLinks(ctx, base, siteURL); feedURL != "" {
		slog.Debug("Feed discovered via link tag", "site", siteURL, "feed", feedURL)
		return feedURL, nil
	}

	if feedURL := d.probeCommonPaths(ctx, base); feedURL != "" {
		slog.Debug("Feed discovered via common path", "site", siteURL, "feed", feedURL)
		return feedURL, nil
	}

	// The input itself may be the feed.
	if body, contentType, err := d.client.Get(ctx, siteURL, nil); err == nil && looksLikeFeed(contentType, body) {
		slog.Debug("Input URL is itself a feed", "site", siteURL)
		return siteURL, nil
	}

	return "", ErrNoFeed
}

func (d *Discoverer) scanPageLinks(ctx context.Context, base *url.URL, siteURL string) string {
	body, _, err := d.client.Get(ctx, siteURL, nil)
	if err != nil {
		return ""
	}

	for _, pattern := range feedLinkPatterns {
		m := pattern.FindSubmatch(body)
		if len(m) < 2 {
			continue
		}
		href := strings.TrimSpace(string(m[1]))
		if href == "" {
			continue
		}
		ref, err := url.Parse(href)
		if err != nil {
			continue
		}
		return base.ResolveReference(ref).String()
	}
	return ""
}

func (d *Discoverer) probeCommonPaths(ctx context.Context, base *url.URL) string {
	origin := base.Scheme + "://" + base.Host
	for _, path := range commonFeedPaths {
		candidate := origin + path
		body, contentType, err := d.client.Get(ctx, candidate, nil)
		if err != nil {
			continue
		}
		if looksLikeFeed(contentType, body) {
			return candidate
		}
	}
	return ""
}

// looksLikeFeed accepts a response as a feed when its declared content
// type mentions xml/rss/atom, or its body starts with an XML prolog, or
// it contains feed markup.
func looksLikeFeed(contentType string, body []byte) bool {
	ct := strings.ToLower(contentType)
	if strings.Contains(ct, "xml") || strings.Contains(ct, "rss") || strings.Contains(ct, "atom") {
		return true
	}

	trimmed := bytes.TrimSpace(body)
	if bytes.HasPrefix(trimmed, []byte("<?xml")) {
		return true
	}

	return bytes.Contains(body, []byte("<rss")) ||
		bytes.Contains(body, []byte("<feed")) ||
		bytes.Contains(body, []byte("<channel>"))
}
