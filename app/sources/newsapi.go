package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/aakashyadav27/tech-trend-agent/app/curation"
	"github.com/aakashyadav27/tech-trend-agent/app/feed"
	"github.com/aakashyadav27/tech-trend-agent/app/freshness"
)

const newsAPIBaseURL = "https://newsapi.org/v2"

// NewsAPI queries the newsapi.org everything endpoint. The from=
// parameter makes the API enforce the freshness window. Paid tier:
// requires a key.
type NewsAPI struct {
	client  *feed.Client
	apiKey  string
	baseURL string
}

func NewNewsAPI(client *feed.Client, apiKey string) *NewsAPI {
	return &NewsAPI{client: client, apiKey: apiKey, baseURL: newsAPIBaseURL}
}

func (s *NewsAPI) Name() string { return "NewsAPI" }

type newsAPIResponse struct {
	Status   string `json:"status"`
	Articles []struct {
		Title       string `json:"title"`
		URL         string `json:"url"`
		Description string `json:"description"`
		PublishedAt string `json:"publishedAt"`
		Source      struct {
			Name string `json:"name"`
		} `json:"source"`
	} `json:"articles"`
}

func (s *NewsAPI) Fetch(ctx context.Context, query curation.Query) ([]curation.Item, error) {
	if s.apiKey == "" {
		return nil, fmt.Errorf("newsapi: %w", ErrMissingCredential)
	}

	from := time.Now().Add(-freshness.Window).UTC().Format(time.RFC3339)
	endpoint := fmt.Sprintf("%s/everything?q=%s&from=%s&sortBy=publishedAt&language=en&pageSize=25",
		s.baseURL, url.QueryEscape(searchQuery(query)), url.QueryEscape(from))

	header := http.Header{}
	header.Set("X-Api-Key", s.apiKey)

	body, _, err := s.client.Get(ctx, endpoint, header)
	if err != nil {
		return nil, fmt.Errorf("newsapi search: %w", err)
	}

	var resp newsAPIResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("newsapi response: %w", err)
	}
	if resp.Status != "ok" {
		return nil, fmt.Errorf("newsapi returned status %q", resp.Status)
	}

	items := make([]curation.Item, 0, len(resp.Articles))
	for _, article := range resp.Articles {
		if article.Title == "" {
			continue
		}

		items = append(items, curation.Item{
			Title:       article.Title,
			URL:         article.URL,
			Source:      article.Source.Name,
			Summary:     truncate(article.Description, 280),
			PublishedAt: article.PublishedAt,
			Relevance:   curation.DefaultRelevance,
			Category:    "News",
		})
	}
	return items, nil
}
