// Package freshness implements the trailing 24-hour recency window applied
// across all sources. Upstream sources disagree on how to report "no known
// date", so a timestamp string is first classified into a confidence level
// and the keep/reject decision depends on both the classification and the
// call site: adapters are permissive, the final reranking gate is strict.
package freshness

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// Confidence describes how much we trust a raw timestamp string.
type Confidence int

const (
	// Known: the string parsed to a concrete instant.
	Known Confidence = iota
	// Optimistic: the literal sentinel meaning "no date could be
	// determined, assume the item is current".
	Optimistic
	// Missing: the string was empty.
	Missing
	// Unparseable: non-empty, but no date could be extracted.
	Unparseable
)

// SentinelUnknown is the literal an upstream stage emits when it could not
// determine a publication date but believes the item is current. Compared
// case-insensitively.
const SentinelUnknown = "unknown"

// Window is the trailing freshness window.
const Window = 24 * time.Hour

// DefaultSkew absorbs clock/timezone skew that would otherwise make a
// just-published item appear to be from the future.
const DefaultSkew = 45 * time.Minute

// Classify parses a raw timestamp string into an instant and a confidence
// level. The returned time is only meaningful when confidence is Known.
func Classify(raw string) (time.Time, Confidence) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, Missing
	}
	if strings.EqualFold(s, SentinelUnknown) {
		return time.Time{}, Optimistic
	}

	// Fast paths for the two formats feeds overwhelmingly use.
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, Known
	}
	if t, err := time.Parse(time.RFC1123Z, s); err == nil {
		return t, Known
	}

	t, err := dateparse.ParseAny(s)
	if err != nil {
		return time.Time{}, Unparseable
	}
	return t, Known
}

// Filter evaluates timestamps against the freshness window. Now is
// overridable for tests; it defaults to time.Now.
type Filter struct {
	Skew time.Duration
	Now  func() time.Time
}

func New(skew time.Duration) *Filter {
	if skew <= 0 {
		skew = DefaultSkew
	}
	return &Filter{Skew: skew, Now: time.Now}
}

// Fresh is the permissive predicate used at the parsing/adapter layer:
// an item is only rejected when it carries a date we positively know to
// be outside the window. Missing and unparseable dates are kept so that
// parsing gaps never lose real content.
func (f *Filter) Fresh(raw string) bool {
	t, conf := Classify(raw)
	if conf == Known {
		return f.WithinWindow(t)
	}
	return true
}

// FreshStrict is the hard gate applied at the final reranking stage. By
// then every item is expected to carry a real date, so only parseable
// in-window dates pass. The optimistic sentinel alone is exempt.
func (f *Filter) FreshStrict(raw string) bool {
	t, conf := Classify(raw)
	switch conf {
	case Known:
		return f.WithinWindow(t)
	case Optimistic:
		return true
	default:
		return false
	}
}

// WithinWindow reports whether t falls inside [-skew, +24h) of elapsed
// time. An item exactly 24h old is already stale.
func (f *Filter) WithinWindow(t time.Time) bool {
	elapsed := f.Now().Sub(t)
	return elapsed >= -f.Skew && elapsed < Window
}
