package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/aakashyadav27/tech-trend-agent/app/curation"
	"github.com/aakashyadav27/tech-trend-agent/app/feed"
	"github.com/aakashyadav27/tech-trend-agent/app/freshness"
)

const hackerNewsBaseURL = "https://hn.algolia.com/api/v1"

// HackerNews queries the Algolia HN search API. The numeric created_at
// filter makes the API itself guarantee the freshness window, so no
// re-filtering happens here.
type HackerNews struct {
	client  *feed.Client
	baseURL string
}

func NewHackerNews(client *feed.Client) *HackerNews {
	return &HackerNews{client: client, baseURL: hackerNewsBaseURL}
}

func (s *HackerNews) Name() string { return "Hacker News" }

type hnResponse struct {
	Hits []struct {
		ObjectID  string `json:"objectID"`
		Title     string `json:"title"`
		URL       string `json:"url"`
		StoryText string `json:"story_text"`
		CreatedAt string `json:"created_at"`
		Points    int    `json:"points"`
	} `json:"hits"`
}

func (s *HackerNews) Fetch(ctx context.Context, query curation.Query) ([]curation.Item, error) {
	cutoff := time.Now().Add(-freshness.Window).Unix()

	endpoint := fmt.Sprintf("%s/search_by_date?query=%s&tags=story&hitsPerPage=25&numericFilters=created_at_i>%d",
		s.baseURL, url.QueryEscape(searchQuery(query)), cutoff)

	body, _, err := s.client.Get(ctx, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("hackernews search: %w", err)
	}

	var resp hnResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("hackernews response: %w", err)
	}

	items := make([]curation.Item, 0, len(resp.Hits))
	for _, hit := range resp.Hits {
		if hit.Title == "" {
			continue
		}

		itemURL := hit.URL
		if itemURL == "" {
			itemURL = "https://news.ycombinator.com/item?id=" + hit.ObjectID
		}

		items = append(items, curation.Item{
			Title:       hit.Title,
			URL:         itemURL,
			Source:      s.Name(),
			Summary:     truncate(hit.StoryText, 280),
			PublishedAt: hit.CreatedAt,
			Relevance:   scoreFromPoints(hit.Points),
			Category:    "Community",
		})
	}
	return items, nil
}

// scoreFromPoints maps community votes onto the 1-10 relevance scale.
// New stories start near the default; heavily upvoted ones rank higher.
func scoreFromPoints(points int) int {
	switch {
	case points >= 300:
		return 9
	case points >= 100:
		return 8
	case points >= 30:
		return 7
	case points >= 10:
		return 6
	default:
		return curation.DefaultRelevance
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
