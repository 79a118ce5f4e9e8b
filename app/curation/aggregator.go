package curation

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Source is a single external news source. Implementations normalize
// their responses into candidate items and must catch their own transient
// failures; returning an error here marks the source degraded for this
// request without affecting siblings.
type Source interface {
	Name() string
	Fetch(ctx context.Context, query Query) ([]Item, error)
}

// Aggregator fans out all configured sources concurrently, collects their
// candidates, and reranks the merged list. A failure or timeout in one
// source never aborts the others.
type Aggregator struct {
	sources          []Source
	reranker         *Reranker
	perSourceTimeout time.Duration
}

func NewAggregator(sources []Source, reranker *Reranker, perSourceTimeout time.Duration) *Aggregator {
	return &Aggregator{
		sources:          sources,
		reranker:         reranker,
		perSourceTimeout: perSourceTimeout,
	}
}

// Run executes one curation request. The caller bounds the whole request
// through ctx; each source additionally gets its own timeout so a hung
// upstream cannot consume the entire request budget.
func (a *Aggregator) Run(ctx context.Context, query Query) ([]Item, []SourceStatus) {
	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		merged   []Item
		statuses = make([]SourceStatus, len(a.sources))
	)

	started := time.Now()

	for i, source := range a.sources {
		wg.Add(1)
		go func(idx int, src Source) {
			defer wg.Done()

			sourceCtx, cancel := context.WithTimeout(ctx, a.perSourceTimeout)
			defer cancel()

			items, err := src.Fetch(sourceCtx, query)

			status := SourceStatus{Name: src.Name(), Items: len(items)}
			if err != nil {
				status.Error = err.Error()
				slog.Warn("Source fetch failed", "source", src.Name(), "error", err)
			}

			mu.Lock()
			statuses[idx] = status
			merged = append(merged, items...)
			mu.Unlock()
		}(i, source)
	}

	wg.Wait()

	ranked := a.reranker.Run(merged)

	slog.Info("Aggregation completed",
		"sources", len(a.sources),
		"candidates", len(merged),
		"ranked", len(ranked),
		"duration", time.Since(started).Round(time.Millisecond).String())

	return ranked, statuses
}
