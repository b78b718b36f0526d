package dedupe

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/soundprediction/dedupe/pkg/types"
)

func TestBackfillEmbeddings_EmbedsUntilDone(t *testing.T) {
	batches := [][]*types.Node{
		{
			{Uuid: "a", Name: "Alpha", GroupID: "g"},
			{Uuid: "b", Name: "Beta", GroupID: "g"},
		},
		{
			{Uuid: "c", Name: "Gamma", GroupID: "g"},
		},
		{},
	}
	call := 0
	stored := map[string][]float32{}

	d := &mockDriver{
		getEntitiesMissingEmbeddingFn: func(ctx context.Context, groupID string, limit int) ([]*types.Node, error) {
			batch := batches[call]
			call++
			return batch, nil
		},
		setNodeEmbeddingFn: func(ctx context.Context, nodeID, groupID string, embedding []float32) error {
			stored[nodeID] = embedding
			return nil
		},
	}

	client := newTestClient(d, nil, nil)

	count, err := client.BackfillEmbeddings(context.Background(), "g", 2)
	if err != nil {
		t.Fatalf("BackfillEmbeddings: %v", err)
	}
	if count != 3 {
		t.Errorf("count = %d, want 3", count)
	}
	for _, uuid := range []string{"a", "b", "c"} {
		if _, ok := stored[uuid]; !ok {
			t.Errorf("embedding for %s was not stored", uuid)
		}
	}
}

func TestBackfillEmbeddings_StopsWhenNoWriteSucceeds(t *testing.T) {
	d := &mockDriver{
		getEntitiesMissingEmbeddingFn: func(ctx context.Context, groupID string, limit int) ([]*types.Node, error) {
			return []*types.Node{{Uuid: "a", Name: "Alpha", GroupID: "g"}}, nil
		},
		setNodeEmbeddingFn: func(ctx context.Context, nodeID, groupID string, embedding []float32) error {
			return errors.New("disk full")
		},
	}

	client := newTestClient(d, nil, nil)

	count, err := client.BackfillEmbeddings(context.Background(), "g", 10)
	if err == nil {
		t.Fatal("expected error when no write succeeds")
	}
	if !errors.Is(err, &StoreError{}) {
		t.Errorf("expected StoreError, got %T", err)
	}
	if count != 0 {
		t.Errorf("count = %d, want 0", count)
	}
}

func TestBackfillEmbeddings_SkipsEntityThatFailsToEmbed(t *testing.T) {
	alpha := &types.Node{Uuid: "a", Name: "Alpha", GroupID: "g"}
	poison := &types.Node{Uuid: "p", Name: "Poison", GroupID: "g"}
	fetches := 0
	stored := map[string][]float32{}

	d := &mockDriver{
		getEntitiesMissingEmbeddingFn: func(ctx context.Context, groupID string, limit int) ([]*types.Node, error) {
			fetches++
			if fetches == 1 {
				return []*types.Node{alpha, poison}, nil
			}
			// Alpha got its embedding; only the failing entity remains.
			return []*types.Node{poison}, nil
		},
		setNodeEmbeddingFn: func(ctx context.Context, nodeID, groupID string, embedding []float32) error {
			stored[nodeID] = embedding
			return nil
		},
	}
	emb := &mockEmbedder{
		embedFn: func(ctx context.Context, texts []string) ([][]float32, error) {
			out := make([][]float32, len(texts))
			for i, text := range texts {
				if strings.HasPrefix(text, "Poison") {
					return nil, errors.New("model rejected input")
				}
				out[i] = []float32{1}
			}
			return out, nil
		},
	}

	client := newTestClient(d, nil, emb)

	count, err := client.BackfillEmbeddings(context.Background(), "g", 10)
	if err != nil {
		t.Fatalf("a failing entity must be skipped, got: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
	if _, ok := stored["a"]; !ok {
		t.Error("embedding for a was not stored")
	}
	if _, ok := stored["p"]; ok {
		t.Error("failing entity must stay unembedded")
	}
	if fetches != 2 {
		t.Errorf("fetches = %d, want 2 (must stop once nothing embeds)", fetches)
	}
}

func TestBackfillEmbeddings_StopsWhenNothingEmbeds(t *testing.T) {
	fetches := 0
	d := &mockDriver{
		getEntitiesMissingEmbeddingFn: func(ctx context.Context, groupID string, limit int) ([]*types.Node, error) {
			fetches++
			return []*types.Node{{Uuid: "a", Name: "Alpha", GroupID: "g"}}, nil
		},
	}
	emb := &mockEmbedder{
		embedFn: func(ctx context.Context, texts []string) ([][]float32, error) {
			return nil, errors.New("api unavailable")
		},
	}

	client := newTestClient(d, nil, emb)

	count, err := client.BackfillEmbeddings(context.Background(), "g", 10)
	if err != nil {
		t.Fatalf("embedding failures must not abort the backfill, got: %v", err)
	}
	if count != 0 {
		t.Errorf("count = %d, want 0", count)
	}
	if fetches != 1 {
		t.Errorf("fetches = %d, want 1 (must not loop on unembeddable entities)", fetches)
	}
}

func TestBackfillEmbeddings_EmbedsNameAndSummary(t *testing.T) {
	var embedded []string
	call := 0
	d := &mockDriver{
		getEntitiesMissingEmbeddingFn: func(ctx context.Context, groupID string, limit int) ([]*types.Node, error) {
			if call > 0 {
				return nil, nil
			}
			call++
			return []*types.Node{{Uuid: "a", Name: "Alpha", Summary: "first letter", GroupID: "g"}}, nil
		},
	}
	emb := &mockEmbedder{
		embedFn: func(ctx context.Context, texts []string) ([][]float32, error) {
			embedded = texts
			out := make([][]float32, len(texts))
			for i := range texts {
				out[i] = []float32{1}
			}
			return out, nil
		},
	}

	client := newTestClient(d, nil, emb)

	if _, err := client.BackfillEmbeddings(context.Background(), "g", 10); err != nil {
		t.Fatalf("BackfillEmbeddings: %v", err)
	}
	if len(embedded) != 1 || embedded[0] != "Alpha - first letter" {
		t.Errorf("embedded texts = %v, want [\"Alpha - first letter\"]", embedded)
	}
}
