// Package sources holds one adapter per external news source. Every
// adapter normalizes its response into candidate items and applies the
// freshness window unless the upstream API already guarantees recency.
// Adapters are independent: each catches its own failures and reports
// them as an error for that one source, never aborting siblings.
package sources

import (
	"errors"
	"strings"

	"github.com/aakashyadav27/tech-trend-agent/app/curation"
)

// ErrMissingCredential marks a paid-tier adapter that was not configured
// with its API key. Reported per-source, never process-fatal.
var ErrMissingCredential = errors.New("missing API credential")

type roleProfile struct {
	keywords   []string
	subreddits []string
}

var roleProfiles = map[string]roleProfile{
	"frontend": {
		keywords:   []string{"javascript", "react", "css", "web framework"},
		subreddits: []string{"javascript", "reactjs", "webdev"},
	},
	"backend": {
		keywords:   []string{"api", "database", "golang", "distributed systems"},
		subreddits: []string{"golang", "programming", "java"},
	},
	"devops": {
		keywords:   []string{"kubernetes", "terraform", "ci cd", "observability"},
		subreddits: []string{"devops", "kubernetes", "sre"},
	},
	"data": {
		keywords:   []string{"data engineering", "sql", "spark", "analytics"},
		subreddits: []string{"dataengineering", "datascience"},
	},
	"mobile": {
		keywords:   []string{"ios", "android", "swift", "kotlin"},
		subreddits: []string{"iosprogramming", "androiddev"},
	},
	"security": {
		keywords:   []string{"vulnerability", "cve", "security advisory"},
		subreddits: []string{"netsec", "cybersecurity"},
	},
	"ai": {
		keywords:   []string{"llm", "machine learning", "model release"},
		subreddits: []string{"machinelearning", "localllama"},
	},
}

var defaultProfile = roleProfile{
	keywords:   []string{"software engineering", "programming"},
	subreddits: []string{"programming", "technology"},
}

func profileFor(role string) roleProfile {
	normalized := strings.ToLower(strings.TrimSpace(role))
	for key, profile := range roleProfiles {
		if strings.Contains(normalized, key) {
			return profile
		}
	}
	return defaultProfile
}

// searchQuery builds the free-text query an adapter sends upstream: the
// role's lead keyword plus any caller-provided context.
func searchQuery(q curation.Query) string {
	terms := profileFor(q.Role).keywords
	parts := []string{terms[0]}
	if q.Context != "" {
		parts = append(parts, q.Context)
	}
	parts = append(parts, q.Topics...)
	return strings.Join(parts, " ")
}
