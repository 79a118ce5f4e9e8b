package feed

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
	"golang.org/x/time/rate"
)

// maxBodySize caps response bodies; feeds and pages beyond this are
// truncated rather than rejected.
const maxBodySize = 2 << 20

// Client is the shared outbound HTTP client used by the discoverer, the
// normalizer and the source adapters. Every call is bounded by the
// configured timeout, and requests are rate limited per host so that
// probing a site's feed paths stays polite.
type Client struct {
	httpClient *http.Client
	userAgent  string
	timeout    time.Duration

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func NewClient(timeout time.Duration, userAgent string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  userAgent,
		timeout:    timeout,
		limiters:   make(map[string]*rate.Limiter),
	}
}

// Get fetches rawURL and returns the body (transcoded to UTF-8 when the
// response declares a different charset) and the Content-Type header.
// Non-2xx responses are errors.
func (c *Client) Get(ctx context.Context, rawURL string, header http.Header) ([]byte, string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, "", fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}

	if err := c.limiter(u.Host).Wait(ctx); err != nil {
		return nil, "", err
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", rawURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	for key, values := range header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", fmt.Errorf("unexpected status %d for %s", resp.StatusCode, rawURL)
	}

	contentType := resp.Header.Get("Content-Type")

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read response body: %w", err)
	}

	body = decodeCharset(body, contentType)

	return body, contentType, nil
}

func (c *Client) limiter(host string) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()

	l, ok := c.limiters[host]
	if !ok {
		l = rate.NewLimiter(rate.Limit(5), 8)
		c.limiters[host] = l
	}
	return l
}

// decodeCharset transcodes body to UTF-8 based on the charset declared in
// contentType. Undeclared, UTF-8, or unrecognized charsets pass through
// unchanged.
func decodeCharset(body []byte, contentType string) []byte {
	if contentType == "" {
		return body
	}

	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return body
	}

	charset := strings.ToLower(params["charset"])
	if charset == "" || charset == "utf-8" || charset == "utf8" {
		return body
	}

	enc, err := htmlindex.Get(charset)
	if err != nil || enc == nil {
		return body
	}

	decoded, _, err := transform.Bytes(enc.NewDecoder(), body)
	if err != nil {
		return body
	}
	return decoded
}
