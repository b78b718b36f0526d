package dto

import (
	"errors"
	"strings"
)

// MaxScanLimit caps the number of entities one deduplication request may scan.
const MaxScanLimit = 10000

// DeduplicateRequest triggers a deduplication run.
type DeduplicateRequest struct {
	GroupID string `json:"group_id,omitempty"`
	Limit   int    `json:"limit,omitempty"`
}

// Validate performs validation on DeduplicateRequest
func (r *DeduplicateRequest) Validate() error {
	if r.Limit < 0 {
		return errors.New("limit cannot be negative")
	}
	if r.Limit > MaxScanLimit {
		return errors.New("limit exceeds maximum scan size")
	}
	return nil
}

// MergeRequest merges a duplicate entity into a keeper.
type MergeRequest struct {
	EntityID    string `json:"entity_id" binding:"required"`
	DuplicateID string `json:"duplicate_id" binding:"required"`
	GroupID     string `json:"group_id,omitempty"`
}

// Validate performs validation on MergeRequest
func (r *MergeRequest) Validate() error {
	if strings.TrimSpace(r.EntityID) == "" {
		return errors.New("entity_id cannot be empty")
	}
	if strings.TrimSpace(r.DuplicateID) == "" {
		return errors.New("duplicate_id cannot be empty")
	}
	if r.EntityID == r.DuplicateID {
		return errors.New("cannot merge an entity with itself")
	}
	return nil
}

// BackfillRequest triggers an embedding backfill.
type BackfillRequest struct {
	GroupID   string `json:"group_id,omitempty"`
	BatchSize int    `json:"batch_size,omitempty"`
}

// Validate performs validation on BackfillRequest
func (r *BackfillRequest) Validate() error {
	if r.BatchSize < 0 {
		return errors.New("batch_size cannot be negative")
	}
	return nil
}

// BackfillResponse reports the outcome of an embedding backfill.
type BackfillResponse struct {
	EntitiesEmbedded int `json:"entities_embedded"`
}
