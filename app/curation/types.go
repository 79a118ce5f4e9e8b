// Package curation turns untrusted candidate arrays into the final
// filtered, scored, deduplicated, ranked response. The candidate payload
// comes from an external reasoning layer with no enforced schema, so all
// defaulting happens at a single ingestion boundary and every downstream
// transformation operates on fully-typed values.
package curation

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Impact levels. The final label on every output item is derived from its
// clamped score, never taken from the source.
const (
	ImpactCritical = "critical"
	ImpactHigh     = "high"
	ImpactMedium   = "medium"
	ImpactLow      = "low"
)

const (
	DefaultRelevance = 5
	DefaultCategory  = "General"
	MinRelevance     = 1
	MaxRelevance     = 10
)

// Item is the strict internal candidate shape. URL is the deduplication
// key; items lacking one fall back to title-based deduplication, which is
// weaker and may under-deduplicate (an accepted limitation).
type Item struct {
	Title       string `json:"title"`
	Source      string `json:"source"`
	Summary     string `json:"summary"`
	URL         string `json:"url"`
	Relevance   int    `json:"relevance"`
	PublishedAt string `json:"publishedAt"`
	Category    string `json:"category"`
	ImpactLevel string `json:"impactLevel"`

	// Provenance metadata, passed through untouched and never scored.
	Audience          []string `json:"audience,omitempty"`
	Technologies      []string `json:"technologies,omitempty"`
	PrimaryRole       string   `json:"primaryRole,omitempty"`
	RelevantRoles     []string `json:"relevantRoles,omitempty"`
	MajorAnnouncement bool     `json:"majorAnnouncement,omitempty"`
}

// Query describes one curation request.
type Query struct {
	Role    string   `json:"role"`
	Context string   `json:"context"`
	Topics  []string `json:"topics,omitempty"`
}

// SourceStatus reports the per-source outcome of an aggregation run.
// Adapter failures land here as structured payloads instead of aborting
// the request.
type SourceStatus struct {
	Name  string `json:"name"`
	Items int    `json:"items"`
	Error string `json:"error,omitempty"`
}

// Normalize converts an untrusted JSON payload into typed items. It
// accepts a bare array or an object wrapping one under "items" or "news";
// anything structurally unusable degrades to an empty slice, never an
// error. Field-level gaps are defaulted per item.
func Normalize(payload []byte) []Item {
	var raw any
	if err := json.Unmarshal(payload, &raw); err != nil {
		return []Item{}
	}

	list, ok := raw.([]any)
	if !ok {
		obj, ok := raw.(map[string]any)
		if !ok {
			return []Item{}
		}
		for _, key := range []string{"items", "news", "results"} {
			if arr, ok := obj[key].([]any); ok {
				list = arr
				break
			}
		}
		if list == nil {
			return []Item{}
		}
	}

	items := make([]Item, 0, len(list))
	for _, el := range list {
		m, ok := el.(map[string]any)
		if !ok {
			continue
		}
		items = append(items, normalizeRecord(m))
	}
	return items
}

func normalizeRecord(m map[string]any) Item {
	item := Item{
		Title:             getString(m, "title"),
		Source:            getString(m, "source"),
		Summary:           getString(m, "summary"),
		URL:               strings.TrimSpace(getString(m, "url")),
		PublishedAt:       getString(m, "publishedAt", "published_at", "date"),
		Relevance:         getRelevance(m),
		Category:          getString(m, "category"),
		ImpactLevel:       validImpact(getString(m, "impactLevel", "impact_level", "impact")),
		Audience:          getStringList(m, "audience"),
		Technologies:      getStringList(m, "technologies", "techTags", "tags"),
		PrimaryRole:       getString(m, "primaryRole", "primary_role"),
		RelevantRoles:     getStringList(m, "relevantRoles", "relevant_roles"),
		MajorAnnouncement: getBool(m, "majorAnnouncement", "major_announcement"),
	}

	if item.Category == "" {
		if len(item.Technologies) > 0 {
			item.Category = item.Technologies[0]
		} else {
			item.Category = DefaultCategory
		}
	}

	return item
}

func getString(m map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := m[key].(string); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func getStringList(m map[string]any, keys ...string) []string {
	for _, key := range keys {
		arr, ok := m[key].([]any)
		if !ok {
			continue
		}
		out := make([]string, 0, len(arr))
		for _, el := range arr {
			if s, ok := el.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return nil
}

func getBool(m map[string]any, keys ...string) bool {
	for _, key := range keys {
		if v, ok := m[key].(bool); ok {
			return v
		}
	}
	return false
}

func getRelevance(m map[string]any) int {
	switch v := m["relevance"].(type) {
	case float64:
		return clampScore(int(v))
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return clampScore(n)
		}
	}
	return DefaultRelevance
}

func validImpact(level string) string {
	switch strings.ToLower(level) {
	case ImpactCritical, ImpactHigh, ImpactMedium, ImpactLow:
		return strings.ToLower(level)
	}
	return ""
}

func clampScore(score int) int {
	if score > MaxRelevance {
		return MaxRelevance
	}
	if score < MinRelevance {
		return MinRelevance
	}
	return score
}
