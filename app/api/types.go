package api

import (
	"context"

	"github.com/aakashyadav27/tech-trend-agent/app/curation"
)

type AggregatorInterface interface {
	Run(ctx context.Context, query curation.Query) ([]curation.Item, []curation.SourceStatus)
}

var _ AggregatorInterface = (*curation.Aggregator)(nil)

type Handler struct {
	aggregator     AggregatorInterface
	reranker       *curation.Reranker
	requestTimeout int // seconds
}

type curateResponse struct {
	Items       []curation.Item         `json:"items"`
	Total       int                     `json:"total"`
	Sources     []curation.SourceStatus `json:"sources"`
	GeneratedAt string                  `json:"generated_at"`
	RequestID   string                  `json:"request_id"`
}
