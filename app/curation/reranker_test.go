package curation

import (
	"testing"
	"time"

	"github.com/aakashyadav27/tech-trend-agent/app/freshness"
)

var testNow = time.Date(2024, 6, 2, 12, 0, 0, 0, time.UTC)

func testFilter() *freshness.Filter {
	f := freshness.New(freshness.DefaultSkew)
	f.Now = func() time.Time { return testNow }
	return f
}

func hoursAgo(h int) string {
	return testNow.Add(-time.Duration(h) * time.Hour).Format(time.RFC3339)
}

func TestRerankRecomputesImpactLevel(t *testing.T) {
	// Relevance recomputed, impact derived as medium, fresh
	// item outranks a stale duplicate with the same URL
	r := NewReranker(PolicyHardExclude, testFilter())

	items := []Item{
		{Title: "Next.js 15 released", URL: "https://nextjs.org/blog/15", PublishedAt: hoursAgo(2), Relevance: 6},
		{Title: "Next.js 15 released", URL: "https://nextjs.org/blog/15", PublishedAt: hoursAgo(72), Relevance: 9},
	}

	out := r.Run(items)

	if len(out) != 1 {
		t.Fatalf("Expected 1 item (stale duplicate dropped), got %d", len(out))
	}
	if out[0].Relevance != 6 {
		t.Errorf("Expected recomputed relevance 6, got %d", out[0].Relevance)
	}
	if out[0].ImpactLevel != ImpactMedium {
		t.Errorf("Expected derived impact 'medium', got %q", out[0].ImpactLevel)
	}
	if out[0].PublishedAt != hoursAgo(2) {
		t.Error("Expected the fresh item to survive, not the stale one")
	}
}

func TestRerankIdempotent(t *testing.T) {
	// Reranking the output again yields the same set and order
	r := NewReranker(PolicyHardExclude, testFilter())

	items := []Item{
		{Title: "A", URL: "https://x.com/a", PublishedAt: hoursAgo(1), Relevance: 9},
		{Title: "B", URL: "https://x.com/b", PublishedAt: hoursAgo(2), Relevance: 4},
		{Title: "C", URL: "https://x.com/c", PublishedAt: hoursAgo(3), Relevance: 7},
		{Title: "D", URL: "https://x.com/d", PublishedAt: hoursAgo(30), Relevance: 10},
	}

	first := r.Run(items)
	second := r.Run(first)

	if len(first) != len(second) {
		t.Fatalf("Expected same set size, got %d then %d", len(first), len(second))
	}
	for i := range first {
		if first[i].URL != second[i].URL {
			t.Errorf("Position %d: expected %s, got %s", i, first[i].URL, second[i].URL)
		}
	}
}

func TestRerankDedupTrailingSlash(t *testing.T) {
	// Trailing-slash variants are the same item; the higher-scored
	// one survives
	r := NewReranker(PolicyHardExclude, testFilter())

	items := []Item{
		{Title: "Post", URL: "https://x.com/a", PublishedAt: hoursAgo(1), Relevance: 4},
		{Title: "Post", URL: "https://x.com/a/", PublishedAt: hoursAgo(1), Relevance: 8},
	}

	out := r.Run(items)

	if len(out) != 1 {
		t.Fatalf("Expected 1 item after dedup, got %d", len(out))
	}
	if out[0].Relevance != 8 {
		t.Errorf("Expected the higher-scored duplicate to survive, got relevance %d", out[0].Relevance)
	}
	if out[0].URL != "https://x.com/a/" {
		t.Errorf("Expected the higher-scored variant kept, got %s", out[0].URL)
	}
}

func TestRerankDedupCaseInsensitive(t *testing.T) {
	r := NewReranker(PolicyHardExclude, testFilter())

	items := []Item{
		{Title: "Post", URL: "https://X.com/A", PublishedAt: hoursAgo(1), Relevance: 5},
		{Title: "Post", URL: "https://x.com/a", PublishedAt: hoursAgo(1), Relevance: 5},
	}

	out := r.Run(items)
	if len(out) != 1 {
		t.Errorf("Expected case-insensitive dedup to keep 1 item, got %d", len(out))
	}
}

func TestRerankTitleFallbackDedup(t *testing.T) {
	// Identical titles with empty URLs collapse to one
	r := NewReranker(PolicyHardExclude, testFilter())

	items := []Item{
		{Title: "Rust 1.80 ships", URL: "", PublishedAt: hoursAgo(1), Relevance: 5},
		{Title: "Rust 1.80 ships", URL: "", PublishedAt: hoursAgo(2), Relevance: 5},
	}

	out := r.Run(items)
	if len(out) != 1 {
		t.Errorf("Expected title-key dedup to keep 1 item, got %d", len(out))
	}
}

func TestRerankScoreClamp(t *testing.T) {
	// Scores clamp to [1, 10]
	r := NewReranker(PolicyKeepWithPenalty, testFilter())

	items := []Item{
		{Title: "Overweight", URL: "https://x.com/hot", PublishedAt: hoursAgo(1), Relevance: 15, ImpactLevel: ImpactCritical},
		{Title: "CEO steps down amid layoffs", URL: "https://x.com/noise", PublishedAt: hoursAgo(30), Relevance: 2},
	}

	out := r.Run(items)

	if len(out) != 2 {
		t.Fatalf("Expected 2 items under keep-with-penalty, got %d", len(out))
	}
	if out[0].Relevance != 10 {
		t.Errorf("Expected clamp to 10, got %d", out[0].Relevance)
	}
	// 2 - 3 noise - 4 stale = -5, clamps to 1
	if out[1].Relevance != 1 {
		t.Errorf("Expected clamp to 1, got %d", out[1].Relevance)
	}
}

func TestRerankNoisePenaltySingleApplication(t *testing.T) {
	// Two noise matches cost the same as one
	r := NewReranker(PolicyHardExclude, testFilter())

	items := []Item{
		{Title: "CEO announces IPO", URL: "https://x.com/two", PublishedAt: hoursAgo(1), Relevance: 8},
		{Title: "CEO keynote recap", URL: "https://x.com/one", PublishedAt: hoursAgo(1), Relevance: 8},
	}

	out := r.Run(items)

	if len(out) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(out))
	}
	if out[0].Relevance != out[1].Relevance {
		t.Errorf("Expected identical penalties (single application), got %d vs %d",
			out[0].Relevance, out[1].Relevance)
	}
	if out[0].Relevance != 5 {
		t.Errorf("Expected 8 - 3 = 5, got %d", out[0].Relevance)
	}
}

func TestRerankImpactBonus(t *testing.T) {
	r := NewReranker(PolicyHardExclude, testFilter())

	items := []Item{
		{Title: "Critical", URL: "https://x.com/c", PublishedAt: hoursAgo(1), Relevance: 5, ImpactLevel: ImpactCritical},
		{Title: "High", URL: "https://x.com/h", PublishedAt: hoursAgo(1), Relevance: 5, ImpactLevel: ImpactHigh},
		{Title: "Medium", URL: "https://x.com/m", PublishedAt: hoursAgo(1), Relevance: 5, ImpactLevel: ImpactMedium},
		{Title: "None", URL: "https://x.com/n", PublishedAt: hoursAgo(1), Relevance: 5},
	}

	out := r.Run(items)

	expected := map[string]int{
		"https://x.com/c": 8,
		"https://x.com/h": 7,
		"https://x.com/m": 6,
		"https://x.com/n": 5,
	}
	for _, item := range out {
		if item.Relevance != expected[item.URL] {
			t.Errorf("%s: expected score %d, got %d", item.URL, expected[item.URL], item.Relevance)
		}
	}
}

func TestRerankImpactLabelOverwritesSource(t *testing.T) {
	// The final label is score-derived, never source-asserted
	r := NewReranker(PolicyHardExclude, testFilter())

	items := []Item{
		{Title: "Claims critical, scores low", URL: "https://x.com/1", PublishedAt: hoursAgo(1), Relevance: 1, ImpactLevel: ImpactCritical},
	}

	out := r.Run(items)
	if len(out) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(out))
	}
	// 1 + 3 critical bonus = 4 -> low
	if out[0].ImpactLevel != ImpactLow {
		t.Errorf("Expected score-derived 'low', got %q", out[0].ImpactLevel)
	}
}

func TestRerankDefaultRelevance(t *testing.T) {
	r := NewReranker(PolicyHardExclude, testFilter())

	items := []Item{
		{Title: "No score", URL: "https://x.com/ns", PublishedAt: hoursAgo(1)},
	}

	out := r.Run(items)
	if len(out) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(out))
	}
	if out[0].Relevance != DefaultRelevance {
		t.Errorf("Expected default relevance %d, got %d", DefaultRelevance, out[0].Relevance)
	}
}

func TestRerankSentinelDateShortCircuits(t *testing.T) {
	r := NewReranker(PolicyHardExclude, testFilter())

	items := []Item{
		{Title: "Unknown date", URL: "https://x.com/u", PublishedAt: "unknown", Relevance: 6},
		{Title: "Empty date", URL: "https://x.com/e", PublishedAt: "", Relevance: 6},
		{Title: "Garbage date", URL: "https://x.com/g", PublishedAt: "last tuesday-ish", Relevance: 6},
	}

	out := r.Run(items)

	if len(out) != 1 {
		t.Fatalf("Expected only the sentinel to pass the hard gate, got %d items", len(out))
	}
	if out[0].URL != "https://x.com/u" {
		t.Errorf("Expected the sentinel-dated item, got %s", out[0].URL)
	}
}

func TestRerankAllStaleYieldsEmpty(t *testing.T) {
	r := NewReranker(PolicyHardExclude, testFilter())

	items := []Item{
		{Title: "Old 1", URL: "https://x.com/1", PublishedAt: hoursAgo(25), Relevance: 9},
		{Title: "Old 2", URL: "https://x.com/2", PublishedAt: hoursAgo(48), Relevance: 9},
	}

	out := r.Run(items)
	if len(out) != 0 {
		t.Errorf("Expected empty output for all-stale input, got %d items", len(out))
	}
}

func TestRerankKeepWithPenaltyRetainsStale(t *testing.T) {
	r := NewReranker(PolicyKeepWithPenalty, testFilter())

	items := []Item{
		{Title: "Fresh", URL: "https://x.com/f", PublishedAt: hoursAgo(1), Relevance: 5},
		{Title: "Stale", URL: "https://x.com/s", PublishedAt: hoursAgo(30), Relevance: 5},
	}

	out := r.Run(items)

	if len(out) != 2 {
		t.Fatalf("Expected stale item retained under keep-with-penalty, got %d items", len(out))
	}
	if out[0].URL != "https://x.com/f" {
		t.Errorf("Expected fresh item ranked first, got %s", out[0].URL)
	}
	if out[1].Relevance != 1 {
		t.Errorf("Expected stale score 5 - 4 = 1, got %d", out[1].Relevance)
	}
}

func TestRerankSortsByScoreDescending(t *testing.T) {
	r := NewReranker(PolicyHardExclude, testFilter())

	items := []Item{
		{Title: "Low", URL: "https://x.com/low", PublishedAt: hoursAgo(1), Relevance: 2},
		{Title: "Top", URL: "https://x.com/top", PublishedAt: hoursAgo(1), Relevance: 9},
		{Title: "Mid", URL: "https://x.com/mid", PublishedAt: hoursAgo(1), Relevance: 6},
	}

	out := r.Run(items)

	if len(out) != 3 {
		t.Fatalf("Expected 3 items, got %d", len(out))
	}
	for i := 1; i < len(out); i++ {
		if out[i].Relevance > out[i-1].Relevance {
			t.Errorf("Output not sorted descending at position %d", i)
		}
	}
	if out[0].URL != "https://x.com/top" {
		t.Errorf("Expected highest-scored first, got %s", out[0].URL)
	}
}

func TestCanonicalURL(t *testing.T) {
	tests := []struct {
		raw      string
		expected string
	}{
		{"https://X.com/A/", "https://x.com/a"},
		{"https://x.com/a", "https://x.com/a"},
		{"  https://x.com/a  ", "https://x.com/a"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := canonicalURL(tt.raw); got != tt.expected {
			t.Errorf("canonicalURL(%q): expected %q, got %q", tt.raw, tt.expected, got)
		}
	}
}
