package curation

import (
	"sort"
	"strings"

	"github.com/aakashyadav27/tech-trend-agent/app/freshness"
)

// Policy selects how stale items are handled. It is chosen once per
// deployment; the two behaviors are never mixed within a run.
type Policy string

const (
	// PolicyHardExclude drops stale items entirely.
	PolicyHardExclude Policy = "hard-exclude"
	// PolicyKeepWithPenalty keeps stale items with a fixed score penalty.
	PolicyKeepWithPenalty Policy = "keep-with-penalty"
)

const (
	noisePenalty = 3
	stalePenalty = 4
)

// Off-topic business/financial/political signals. Matching any one of
// these incurs the noise penalty exactly once.
var noisePatterns = []string{
	"ceo",
	"acquisition",
	"acquires",
	"merger",
	"ipo",
	"layoff",
	"funding round",
	"stock price",
	"share price",
	"lawsuit",
	"regulation",
	"politic",
	"net worth",
	"valuation",
	"antitrust",
	"earnings call",
}

var impactBonus = map[string]int{
	ImpactCritical: 3,
	ImpactHigh:     2,
	ImpactMedium:   1,
}

// Reranker transforms an untrusted candidate list into the final
// response: filtered for staleness, scored, re-leveled, deduplicated and
// sorted. It is a pure, deterministic, in-memory transformation.
type Reranker struct {
	policy Policy
	fresh  *freshness.Filter
}

func NewReranker(policy Policy, fresh *freshness.Filter) *Reranker {
	if policy != PolicyKeepWithPenalty {
		policy = PolicyHardExclude
	}
	return &Reranker{policy: policy, fresh: fresh}
}

// Run scores and ranks items. All-stale input yields an empty, valid
// result.
func (r *Reranker) Run(items []Item) []Item {
	scored := make([]Item, 0, len(items))

	for _, item := range items {
		isFresh := r.fresh.FreshStrict(item.PublishedAt)
		if !isFresh && r.policy == PolicyHardExclude {
			continue
		}

		score := item.Relevance
		if score == 0 {
			score = DefaultRelevance
		}

		score += impactBonus[strings.ToLower(item.ImpactLevel)]

		if hasNoise(item) {
			score -= noisePenalty
		}

		if !isFresh {
			score -= stalePenalty
		}

		score = clampScore(score)

		item.Relevance = score
		item.ImpactLevel = impactForScore(score)
		scored = append(scored, item)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Relevance > scored[j].Relevance
	})

	return dedupe(scored)
}

// hasNoise reports whether the combined title/summary/category text
// matches any off-topic pattern. First match wins; the penalty is not
// cumulative.
func hasNoise(item Item) bool {
	text := strings.ToLower(item.Title + " " + item.Summary + " " + item.Category)
	for _, pattern := range noisePatterns {
		if strings.Contains(text, pattern) {
			return true
		}
	}
	return false
}

// impactForScore derives the final impact label purely from the clamped
// score, overwriting whatever the item arrived with.
func impactForScore(score int) string {
	switch {
	case score >= 8:
		return ImpactHigh
	case score <= 4:
		return ImpactLow
	default:
		return ImpactMedium
	}
}

// dedupe removes duplicates by canonical URL, falling back to the raw
// title when the URL is empty. Input is already sorted by score, so the
// first occurrence kept is the highest-scored one.
func dedupe(items []Item) []Item {
	seen := make(map[string]bool, len(items))
	out := make([]Item, 0, len(items))

	for _, item := range items {
		key := canonicalURL(item.URL)
		if key == "" {
			key = item.Title
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, item)
	}
	return out
}

func canonicalURL(rawURL string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(rawURL)), "/")
}
