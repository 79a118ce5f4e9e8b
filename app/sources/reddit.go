package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/aakashyadav27/tech-trend-agent/app/curation"
	"github.com/aakashyadav27/tech-trend-agent/app/feed"
	"github.com/aakashyadav27/tech-trend-agent/app/freshness"
)

const redditBaseURL = "https://www.reddit.com"

// Reddit pulls new submissions from the subreddits mapped to the
// requested role. Reddit's listing API has no recency parameter, so the
// freshness filter runs here.
type Reddit struct {
	client  *feed.Client
	fresh   *freshness.Filter
	baseURL string
}

func NewReddit(client *feed.Client, fresh *freshness.Filter) *Reddit {
	return &Reddit{client: client, fresh: fresh, baseURL: redditBaseURL}
}

func (s *Reddit) Name() string { return "Reddit" }

type redditListing struct {
	Data struct {
		Children []struct {
			Data struct {
				Title      string  `json:"title"`
				URL        string  `json:"url"`
				Permalink  string  `json:"permalink"`
				SelfText   string  `json:"selftext"`
				CreatedUTC float64 `json:"created_utc"`
				Subreddit  string  `json:"subreddit"`
				Score      int     `json:"score"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

func (s *Reddit) Fetch(ctx context.Context, query curation.Query) ([]curation.Item, error) {
	subreddits := profileFor(query.Role).subreddits
	endpoint := fmt.Sprintf("%s/r/%s/new.json?limit=25", s.baseURL, strings.Join(subreddits, "+"))

	body, _, err := s.client.Get(ctx, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("reddit listing: %w", err)
	}

	var listing redditListing
	if err := json.Unmarshal(body, &listing); err != nil {
		return nil, fmt.Errorf("reddit response: %w", err)
	}

	items := make([]curation.Item, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		post := child.Data
		if post.Title == "" {
			continue
		}

		publishedAt := time.Unix(int64(post.CreatedUTC), 0).UTC().Format(time.RFC3339)
		if !s.fresh.Fresh(publishedAt) {
			continue
		}

		itemURL := post.URL
		if itemURL == "" || strings.HasPrefix(itemURL, "/r/") {
			itemURL = s.baseURL + post.Permalink
		}

		items = append(items, curation.Item{
			Title:       post.Title,
			URL:         itemURL,
			Source:      "r/" + post.Subreddit,
			Summary:     truncate(post.SelfText, 280),
			PublishedAt: publishedAt,
			Relevance:   scoreFromPoints(post.Score),
			Category:    "Community",
		})
	}
	return items, nil
}
