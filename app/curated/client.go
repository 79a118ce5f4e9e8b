// Package curated resolves the list of hand-picked sources the rssfeed
// adapter crawls. Descriptors come from an external lookup service (a
// black box returning named endpoints) merged with a local YAML file;
// either side failing degrades to whatever the other provides.
package curated

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aakashyadav27/tech-trend-agent/app/feed"
)

type Client struct {
	fetchClient *feed.Client
	lookupURL   string
	filePath    string
}

func NewClient(fetchClient *feed.Client, lookupURL, filePath string) *Client {
	return &Client{
		fetchClient: fetchClient,
		lookupURL:   lookupURL,
		filePath:    filePath,
	}
}

type fileConfig struct {
	Sources []Descriptor `yaml:"sources"`
}

// Run returns the merged descriptor list, deduplicated by URL. Lookup or
// file failures are logged and skipped; the worst case is an empty list.
func (c *Client) Run(ctx context.Context) []Descriptor {
	descriptors := c.loadFile()

	if remote := c.lookup(ctx); len(remote) > 0 {
		descriptors = append(descriptors, remote...)
	}

	return dedupe(descriptors)
}

func (c *Client) loadFile() []Descriptor {
	if c.filePath == "" {
		return nil
	}

	data, err := os.ReadFile(c.filePath)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("Failed to read curated sources file", "path", c.filePath, "error", err)
		}
		return nil
	}

	var config fileConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		slog.Warn("Failed to parse curated sources file", "path", c.filePath, "error", err)
		return nil
	}

	return validOnly(config.Sources)
}

func (c *Client) lookup(ctx context.Context) []Descriptor {
	if c.lookupURL == "" {
		return nil
	}

	body, _, err := c.fetchClient.Get(ctx, c.lookupURL, nil)
	if err != nil {
		slog.Warn("Curated sources lookup failed", "url", c.lookupURL, "error", err)
		return nil
	}

	// The lookup service returns either a bare array or {"sources": [...]}
	var list []Descriptor
	if err := json.Unmarshal(body, &list); err != nil {
		var wrapped struct {
			Sources []Descriptor `json:"sources"`
		}
		if err := json.Unmarshal(body, &wrapped); err != nil {
			slog.Warn("Curated sources lookup returned unexpected payload", "url", c.lookupURL)
			return nil
		}
		list = wrapped.Sources
	}

	return validOnly(list)
}

func validOnly(list []Descriptor) []Descriptor {
	out := make([]Descriptor, 0, len(list))
	for _, d := range list {
		if strings.TrimSpace(d.URL) == "" {
			continue
		}
		if d.Name == "" {
			d.Name = d.URL
		}
		out = append(out, d)
	}
	return out
}

func dedupe(list []Descriptor) []Descriptor {
	seen := make(map[string]bool, len(list))
	out := make([]Descriptor, 0, len(list))
	for _, d := range list {
		key := strings.ToLower(strings.TrimSuffix(d.URL, "/"))
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, d)
	}
	return out
}

// Validate reports obviously broken descriptors, used when loading
// operator-provided files at startup.
func Validate(d Descriptor) error {
	if d.URL == "" {
		return fmt.Errorf("source %q has no URL", d.Name)
	}
	if !strings.HasPrefix(d.URL, "http://") && !strings.HasPrefix(d.URL, "https://") {
		return fmt.Errorf("source %q URL must be http(s): %s", d.Name, d.URL)
	}
	return nil
}
