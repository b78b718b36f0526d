package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/soundprediction/dedupe"
	"github.com/soundprediction/dedupe/pkg/server/dto"
)

// BackfillHandler handles embedding backfill requests
type BackfillHandler struct {
	client dedupe.Deduplicator
	logger *slog.Logger
}

// NewBackfillHandler creates a new backfill handler
func NewBackfillHandler(client dedupe.Deduplicator, logger *slog.Logger) *BackfillHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &BackfillHandler{
		client: client,
		logger: logger,
	}
}

// Backfill handles POST /api/v1/embeddings/backfill
func (h *BackfillHandler) Backfill(c *gin.Context) {
	var req dto.BackfillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "invalid request body",
			Message: err.Error(),
			Code:    http.StatusBadRequest,
		})
		return
	}

	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation failed",
			Message: err.Error(),
			Code:    http.StatusBadRequest,
		})
		return
	}

	count, err := h.client.BackfillEmbeddings(c.Request.Context(), req.GroupID, req.BatchSize)
	if err != nil {
		h.logger.Error("embedding backfill failed", "group_id", req.GroupID, "embedded", count, "error", err)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "embedding backfill failed",
			Message: err.Error(),
			Code:    http.StatusInternalServerError,
		})
		return
	}

	c.JSON(http.StatusOK, dto.BackfillResponse{EntitiesEmbedded: count})
}
