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
)

const gitHubBaseURL = "https://api.github.com"

// GitHub surfaces repositories created within the window, ordered by
// stars, as a trending proxy. A token is optional and only raises rate
// limits.
type GitHub struct {
	client  *feed.Client
	token   string
	baseURL string
}

func NewGitHub(client *feed.Client, token string) *GitHub {
	return &GitHub{client: client, token: token, baseURL: gitHubBaseURL}
}

func (s *GitHub) Name() string { return "GitHub Trending" }

type gitHubSearchResponse struct {
	Items []struct {
		FullName    string `json:"full_name"`
		HTMLURL     string `json:"html_url"`
		Description string `json:"description"`
		CreatedAt   string `json:"created_at"`
		Stars       int    `json:"stargazers_count"`
		Language    string `json:"language"`
	} `json:"items"`
}

func (s *GitHub) Fetch(ctx context.Context, query curation.Query) ([]curation.Item, error) {
	since := time.Now().Add(-24 * time.Hour).UTC().Format("2006-01-02")
	keyword := profileFor(query.Role).keywords[0]

	q := fmt.Sprintf("%s created:>%s stars:>5", keyword, since)
	endpoint := fmt.Sprintf("%s/search/repositories?q=%s&sort=stars&order=desc&per_page=20",
		s.baseURL, url.QueryEscape(q))

	header := http.Header{}
	header.Set("Accept", "application/vnd.github+json")
	if s.token != "" {
		header.Set("Authorization", "Bearer "+s.token)
	}

	body, _, err := s.client.Get(ctx, endpoint, header)
	if err != nil {
		return nil, fmt.Errorf("github search: %w", err)
	}

	var resp gitHubSearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("github response: %w", err)
	}

	items := make([]curation.Item, 0, len(resp.Items))
	for _, repo := range resp.Items {
		if repo.FullName == "" {
			continue
		}

		category := repo.Language
		if category == "" {
			category = "Open Source"
		}

		items = append(items, curation.Item{
			Title:       repo.FullName,
			URL:         repo.HTMLURL,
			Source:      s.Name(),
			Summary:     truncate(repo.Description, 280),
			PublishedAt: repo.CreatedAt,
			Relevance:   scoreFromStars(repo.Stars),
			Category:    category,
		})
	}
	return items, nil
}

func scoreFromStars(stars int) int {
	switch {
	case stars >= 500:
		return 9
	case stars >= 100:
		return 8
	case stars >= 25:
		return 7
	default:
		return curation.DefaultRelevance
	}
}
