package dedupe

import (
	"context"
	"errors"
	"testing"

	"github.com/soundprediction/dedupe/pkg/driver"
	"github.com/soundprediction/dedupe/pkg/types"
)

func embeddedNode(uuid, name string) *types.Node {
	return &types.Node{
		Uuid:      uuid,
		Name:      name,
		GroupID:   "g",
		Embedding: []float32{0.1, 0.2, 0.3},
	}
}

func TestFindCandidates_PassesOptions(t *testing.T) {
	var gotOptions *driver.VectorSearchOptions
	var gotGroup string

	d := &mockDriver{
		searchNodesByVectorFn: func(ctx context.Context, vector []float32, groupID string, options *driver.VectorSearchOptions) ([]*driver.ScoredNode, error) {
			gotOptions = options
			gotGroup = groupID
			return []*driver.ScoredNode{
				{Node: embeddedNode("c-1", "Candidate"), Score: 0.9},
			}, nil
		},
	}
	client := newTestClient(d, nil, nil)
	entity := embeddedNode("e-1", "Entity")

	candidates, err := client.FindCandidates(context.Background(), entity, "g", nil, 40, 0.7)
	if err != nil {
		t.Fatalf("FindCandidates: %v", err)
	}

	if gotGroup != "g" {
		t.Errorf("groupID = %q, want g", gotGroup)
	}
	if gotOptions.Limit != 40 {
		t.Errorf("Limit = %d, want 40", gotOptions.Limit)
	}
	if gotOptions.MinScore != 0.7 {
		t.Errorf("MinScore = %f, want 0.7", gotOptions.MinScore)
	}
	if gotOptions.ExcludeUuid != "e-1" {
		t.Errorf("ExcludeUuid = %q, want e-1", gotOptions.ExcludeUuid)
	}
	if len(candidates) != 1 || candidates[0].Node.Uuid != "c-1" {
		t.Errorf("unexpected candidates: %v", candidates)
	}
}

func TestFindCandidates_MissingEmbedding(t *testing.T) {
	client := newTestClient(nil, nil, nil)
	entity := &types.Node{Uuid: "e-1", Name: "No Vector", GroupID: "g"}

	_, err := client.FindCandidates(context.Background(), entity, "g", nil, 40, 0.7)
	if !errors.Is(err, types.ErrMissingEmbedding) {
		t.Errorf("expected ErrMissingEmbedding, got %v", err)
	}
}

func TestFindCandidates_FiltersExcludedPairs(t *testing.T) {
	d := &mockDriver{
		searchNodesByVectorFn: func(ctx context.Context, vector []float32, groupID string, options *driver.VectorSearchOptions) ([]*driver.ScoredNode, error) {
			return []*driver.ScoredNode{
				{Node: embeddedNode("c-1", "Seen"), Score: 0.95},
				{Node: embeddedNode("c-2", "Fresh"), Score: 0.85},
			}, nil
		},
	}
	client := newTestClient(d, nil, nil)
	entity := embeddedNode("e-1", "Entity")

	exclude := NewPairSet()
	exclude.Add("c-1", "e-1") // reverse order must still match

	candidates, err := client.FindCandidates(context.Background(), entity, "g", exclude, 40, 0.7)
	if err != nil {
		t.Fatalf("FindCandidates: %v", err)
	}
	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate after filtering, got %d", len(candidates))
	}
	if candidates[0].Node.Uuid != "c-2" {
		t.Errorf("remaining candidate = %q, want c-2", candidates[0].Node.Uuid)
	}
}

func TestFindCandidates_SearchErrorIsStoreError(t *testing.T) {
	d := &mockDriver{
		searchNodesByVectorFn: func(ctx context.Context, vector []float32, groupID string, options *driver.VectorSearchOptions) ([]*driver.ScoredNode, error) {
			return nil, errors.New("index missing")
		},
	}
	client := newTestClient(d, nil, nil)

	_, err := client.FindCandidates(context.Background(), embeddedNode("e-1", "Entity"), "g", nil, 40, 0.7)
	if !errors.Is(err, &StoreError{}) {
		t.Errorf("expected StoreError, got %v", err)
	}
}
