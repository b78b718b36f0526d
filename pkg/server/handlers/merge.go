package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/soundprediction/dedupe"
	"github.com/soundprediction/dedupe/pkg/server/dto"
	"github.com/soundprediction/dedupe/pkg/types"
)

// MergeHandler handles entity merge requests
type MergeHandler struct {
	client dedupe.Deduplicator
	logger *slog.Logger
}

// NewMergeHandler creates a new merge handler
func NewMergeHandler(client dedupe.Deduplicator, logger *slog.Logger) *MergeHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &MergeHandler{
		client: client,
		logger: logger,
	}
}

// Merge handles POST /api/v1/merge
func (h *MergeHandler) Merge(c *gin.Context) {
	var req dto.MergeRequest
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

	actor := c.GetString("actor")

	result, err := h.client.Merge(c.Request.Context(), req.EntityID, req.DuplicateID, req.GroupID, actor)
	if err != nil {
		h.logger.Error("merge failed", "keeper", req.EntityID, "duplicate", req.DuplicateID, "error", err)
		switch {
		case errors.Is(err, types.ErrSelfMerge):
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Error: "cannot merge an entity with itself",
				Code:  http.StatusBadRequest,
			})
		case errors.Is(err, types.ErrNodeNotFound):
			c.JSON(http.StatusNotFound, dto.ErrorResponse{
				Error:   "entity not found",
				Message: err.Error(),
				Code:    http.StatusNotFound,
			})
		default:
			c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
				Error:   "merge failed",
				Message: err.Error(),
				Code:    http.StatusInternalServerError,
			})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}
