package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/soundprediction/dedupe"
	"github.com/soundprediction/dedupe/pkg/server/dto"
)

// DedupeHandler handles deduplication scan requests
type DedupeHandler struct {
	client dedupe.Deduplicator
	logger *slog.Logger
}

// NewDedupeHandler creates a new dedupe handler
func NewDedupeHandler(client dedupe.Deduplicator, logger *slog.Logger) *DedupeHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DedupeHandler{
		client: client,
		logger: logger,
	}
}

// Deduplicate handles POST /api/v1/deduplicate
func (h *DedupeHandler) Deduplicate(c *gin.Context) {
	var req dto.DeduplicateRequest
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

	report, err := h.client.Run(c.Request.Context(), req.GroupID, req.Limit)
	if err != nil {
		h.logger.Error("deduplication run failed", "group_id", req.GroupID, "error", err)
		status := http.StatusInternalServerError
		msg := "deduplication run failed"
		if errors.Is(err, &dedupe.StoreError{}) {
			status = http.StatusBadGateway
			msg = "graph database unavailable"
		}
		c.JSON(status, dto.ErrorResponse{
			Error:   msg,
			Message: err.Error(),
			Code:    status,
		})
		return
	}

	c.JSON(http.StatusOK, report)
}
