package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/url"
	"time"

	"github.com/aakashyadav27/tech-trend-agent/app/curation"
	"github.com/aakashyadav27/tech-trend-agent/app/feed"
	"github.com/aakashyadav27/tech-trend-agent/app/freshness"
)

const youTubeBaseURL = "https://www.googleapis.com/youtube/v3"

// YouTube searches recent videos via the Data API. The publishedAfter
// parameter makes the API enforce the freshness window. Requires an API
// key; without one the adapter reports ErrMissingCredential for this
// source and the rest of the request proceeds.
type YouTube struct {
	client  *feed.Client
	apiKey  string
	baseURL string
}

func NewYouTube(client *feed.Client, apiKey string) *YouTube {
	return &YouTube{client: client, apiKey: apiKey, baseURL: youTubeBaseURL}
}

func (s *YouTube) Name() string { return "YouTube" }

type youTubeSearchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title        string `json:"title"`
			Description  string `json:"description"`
			PublishedAt  string `json:"publishedAt"`
			ChannelTitle string `json:"channelTitle"`
		} `json:"snippet"`
	} `json:"items"`
}

func (s *YouTube) Fetch(ctx context.Context, query curation.Query) ([]curation.Item, error) {
	if s.apiKey == "" {
		return nil, fmt.Errorf("youtube: %w", ErrMissingCredential)
	}

	publishedAfter := time.Now().Add(-freshness.Window).UTC().Format(time.RFC3339)
	endpoint := fmt.Sprintf("%s/search?part=snippet&type=video&order=date&maxResults=15&publishedAfter=%s&q=%s&key=%s",
		s.baseURL, url.QueryEscape(publishedAfter), url.QueryEscape(searchQuery(query)), url.QueryEscape(s.apiKey))

	body, _, err := s.client.Get(ctx, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("youtube search: %w", err)
	}

	var resp youTubeSearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("youtube response: %w", err)
	}

	items := make([]curation.Item, 0, len(resp.Items))
	for _, video := range resp.Items {
		title := html.UnescapeString(video.Snippet.Title)
		if title == "" || video.ID.VideoID == "" {
			continue
		}

		items = append(items, curation.Item{
			Title:       title,
			URL:         "https://www.youtube.com/watch?v=" + video.ID.VideoID,
			Source:      video.Snippet.ChannelTitle,
			Summary:     truncate(video.Snippet.Description, 280),
			PublishedAt: video.Snippet.PublishedAt,
			Relevance:   curation.DefaultRelevance,
			Category:    "Video",
		})
	}
	return items, nil
}
