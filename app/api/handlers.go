package api

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/aakashyadav27/tech-trend-agent/app/curation"
)

const maxRequestBody = 1 << 20 // 1 MB

func NewHandler(aggregator AggregatorInterface, reranker *curation.Reranker,
	requestTimeout int) *Handler {
	return &Handler{
		aggregator:     aggregator,
		reranker:       reranker,
		requestTimeout: requestTimeout,
	}
}

// Curate runs a full aggregation pass: fan out to every source, filter by
// freshness, deduplicate and rerank. The whole request is bounded by the
// configured deadline; sources that miss it are reported as degraded in
// the response rather than failing it.
func (h *Handler) Curate(c *gin.Context) {
	var query curation.Query
	if err := c.ShouldBindJSON(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if query.Role == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required field: role"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(),
		time.Duration(h.requestTimeout)*time.Second)
	defer cancel()

	items, statuses := h.aggregator.Run(ctx, query)

	c.JSON(http.StatusOK, curateResponse{
		Items:       items,
		Total:       len(items),
		Sources:     statuses,
		GeneratedAt: time.Now().In(time.Local).Format(time.RFC3339),
		RequestID:   c.GetString("request_id"),
	})
}

// Rerank reprocesses a caller-provided batch through normalization and
// the ranking pipeline without touching any source. Malformed payloads
// normalize to an empty batch and still return 200: the contract is that
// reranking never fails, it degrades.
func (h *Handler) Rerank(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxRequestBody))
	if err != nil {
		slog.Warn("Failed to read rerank request body", "error", err)
		body = nil
	}

	items := h.reranker.Run(curation.Normalize(body))

	c.JSON(http.StatusOK, gin.H{
		"items":      items,
		"total":      len(items),
		"request_id": c.GetString("request_id"),
	})
}

func (h *Handler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	})
}
