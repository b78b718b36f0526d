package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/soundprediction/dedupe"
	"github.com/soundprediction/dedupe/pkg/driver"
	"github.com/soundprediction/dedupe/pkg/server/dto"
	"github.com/soundprediction/dedupe/pkg/types"
)

// mockDeduplicator implements dedupe.Deduplicator with overridable functions.
type mockDeduplicator struct {
	runFn      func(ctx context.Context, groupID string, limit int) (*types.DeduplicationReport, error)
	mergeFn    func(ctx context.Context, keeperID, duplicateID, groupID, actor string) (*types.MergeResult, error)
	backfillFn func(ctx context.Context, groupID string, batchSize int) (int, error)
}

var _ dedupe.Deduplicator = (*mockDeduplicator)(nil)

func (m *mockDeduplicator) BackfillEmbeddings(ctx context.Context, groupID string, batchSize int) (int, error) {
	if m.backfillFn != nil {
		return m.backfillFn(ctx, groupID, batchSize)
	}
	return 0, nil
}

func (m *mockDeduplicator) FindCandidates(ctx context.Context, entity *types.Node, groupID string, exclude *dedupe.PairSet, topK int, threshold float64) ([]*driver.ScoredNode, error) {
	return nil, nil
}

func (m *mockDeduplicator) ConfirmDuplicates(ctx context.Context, entity *types.Node, candidates []*driver.ScoredNode) ([]types.DuplicatePair, error) {
	return nil, nil
}

func (m *mockDeduplicator) Run(ctx context.Context, groupID string, limit int) (*types.DeduplicationReport, error) {
	if m.runFn != nil {
		return m.runFn(ctx, groupID, limit)
	}
	return &types.DeduplicationReport{Duplicates: []types.DuplicatePair{}}, nil
}

func (m *mockDeduplicator) Merge(ctx context.Context, keeperID, duplicateID, groupID, actor string) (*types.MergeResult, error) {
	if m.mergeFn != nil {
		return m.mergeFn(ctx, keeperID, duplicateID, groupID, actor)
	}
	return &types.MergeResult{}, nil
}

func (m *mockDeduplicator) CreateIndices(ctx context.Context) error {
	return nil
}

func (m *mockDeduplicator) Close(ctx context.Context) error {
	return nil
}

func performRequest(handler gin.HandlerFunc, method, path string, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		actor := c.GetHeader("X-User-Email")
		if actor == "" {
			actor = "system"
		}
		c.Set("actor", actor)
		c.Next()
	})
	router.Handle(method, path, handler)

	req := httptest.NewRequest(method, path, bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestDeduplicate_InvalidJSON(t *testing.T) {
	h := NewDedupeHandler(&mockDeduplicator{}, nil)

	w := performRequest(h.Deduplicate, http.MethodPost, "/api/v1/deduplicate", []byte("{not json"), nil)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	var resp dto.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if resp.Error != "invalid request body" {
		t.Errorf("error = %q", resp.Error)
	}
}

func TestDeduplicate_NegativeLimit(t *testing.T) {
	h := NewDedupeHandler(&mockDeduplicator{}, nil)

	body, _ := json.Marshal(dto.DeduplicateRequest{Limit: -5})
	w := performRequest(h.Deduplicate, http.MethodPost, "/api/v1/deduplicate", body, nil)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestDeduplicate_Success(t *testing.T) {
	mock := &mockDeduplicator{
		runFn: func(ctx context.Context, groupID string, limit int) (*types.DeduplicationReport, error) {
			if groupID != "g" || limit != 5 {
				t.Errorf("Run called with (%q, %d), want (g, 5)", groupID, limit)
			}
			return &types.DeduplicationReport{
				TotalEntitiesChecked:     5,
				PotentialDuplicatesFound: 1,
				Duplicates: []types.DuplicatePair{
					{Entity1ID: "a", Entity2ID: "b", ConfidenceScore: 9.1},
				},
			}, nil
		},
	}
	h := NewDedupeHandler(mock, nil)

	body, _ := json.Marshal(dto.DeduplicateRequest{GroupID: "g", Limit: 5})
	w := performRequest(h.Deduplicate, http.MethodPost, "/api/v1/deduplicate", body, nil)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	var report types.DeduplicationReport
	if err := json.Unmarshal(w.Body.Bytes(), &report); err != nil {
		t.Fatalf("failed to decode report: %v", err)
	}
	if report.TotalEntitiesChecked != 5 || report.PotentialDuplicatesFound != 1 {
		t.Errorf("unexpected report: %+v", report)
	}
}

func TestDeduplicate_StoreErrorIsBadGateway(t *testing.T) {
	mock := &mockDeduplicator{
		runFn: func(ctx context.Context, groupID string, limit int) (*types.DeduplicationReport, error) {
			return nil, dedupe.NewStoreError("fetch recent entities", context.DeadlineExceeded)
		},
	}
	h := NewDedupeHandler(mock, nil)

	body, _ := json.Marshal(dto.DeduplicateRequest{})
	w := performRequest(h.Deduplicate, http.MethodPost, "/api/v1/deduplicate", body, nil)

	if w.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", w.Code)
	}
}

func TestMerge_MissingFields(t *testing.T) {
	h := NewMergeHandler(&mockDeduplicator{}, nil)

	body, _ := json.Marshal(map[string]string{"entity_id": "a"})
	w := performRequest(h.Merge, http.MethodPost, "/api/v1/merge", body, nil)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestMerge_IdenticalIDs(t *testing.T) {
	called := false
	mock := &mockDeduplicator{
		mergeFn: func(ctx context.Context, keeperID, duplicateID, groupID, actor string) (*types.MergeResult, error) {
			called = true
			return nil, nil
		},
	}
	h := NewMergeHandler(mock, nil)

	body, _ := json.Marshal(dto.MergeRequest{EntityID: "same", DuplicateID: "same"})
	w := performRequest(h.Merge, http.MethodPost, "/api/v1/merge", body, nil)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	if called {
		t.Error("engine must not be called for identical ids")
	}
}

func TestMerge_NotFound(t *testing.T) {
	mock := &mockDeduplicator{
		mergeFn: func(ctx context.Context, keeperID, duplicateID, groupID, actor string) (*types.MergeResult, error) {
			return nil, types.ErrNodeNotFound
		},
	}
	h := NewMergeHandler(mock, nil)

	body, _ := json.Marshal(dto.MergeRequest{EntityID: "keep", DuplicateID: "ghost"})
	w := performRequest(h.Merge, http.MethodPost, "/api/v1/merge", body, nil)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestMerge_Success(t *testing.T) {
	var gotActor string
	mock := &mockDeduplicator{
		mergeFn: func(ctx context.Context, keeperID, duplicateID, groupID, actor string) (*types.MergeResult, error) {
			gotActor = actor
			return &types.MergeResult{
				Message:                  "Successfully merged entity dup into keep",
				EntityID:                 keeperID,
				MergedID:                 duplicateID,
				RelationshipsTransferred: 4,
			}, nil
		},
	}
	h := NewMergeHandler(mock, nil)

	body, _ := json.Marshal(dto.MergeRequest{EntityID: "keep", DuplicateID: "dup"})
	w := performRequest(h.Merge, http.MethodPost, "/api/v1/merge", body, map[string]string{
		"X-User-Email": "ops@example.com",
	})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	if gotActor != "ops@example.com" {
		t.Errorf("actor = %q, want ops@example.com", gotActor)
	}
	var result types.MergeResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to decode result: %v", err)
	}
	if result.RelationshipsTransferred != 4 {
		t.Errorf("RelationshipsTransferred = %d, want 4", result.RelationshipsTransferred)
	}
}

func TestBackfill_NegativeBatchSize(t *testing.T) {
	h := NewBackfillHandler(&mockDeduplicator{}, nil)

	body, _ := json.Marshal(dto.BackfillRequest{BatchSize: -1})
	w := performRequest(h.Backfill, http.MethodPost, "/api/v1/embeddings/backfill", body, nil)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestBackfill_Success(t *testing.T) {
	mock := &mockDeduplicator{
		backfillFn: func(ctx context.Context, groupID string, batchSize int) (int, error) {
			return 42, nil
		},
	}
	h := NewBackfillHandler(mock, nil)

	body, _ := json.Marshal(dto.BackfillRequest{GroupID: "g", BatchSize: 50})
	w := performRequest(h.Backfill, http.MethodPost, "/api/v1/embeddings/backfill", body, nil)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	var resp dto.BackfillResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.EntitiesEmbedded != 42 {
		t.Errorf("EntitiesEmbedded = %d, want 42", resp.EntitiesEmbedded)
	}
}
