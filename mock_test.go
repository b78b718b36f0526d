package dedupe

import (
	"context"

	"github.com/soundprediction/dedupe/pkg/driver"
	"github.com/soundprediction/dedupe/pkg/nlp"
	"github.com/soundprediction/dedupe/pkg/types"
)

// mockDriver implements driver.GraphDriver with overridable functions.
type mockDriver struct {
	verifyConnectivityFn          func(ctx context.Context) error
	getNodeFn                     func(ctx context.Context, nodeID, groupID string) (*types.Node, error)
	upsertNodeFn                  func(ctx context.Context, node *types.Node) error
	deleteNodeFn                  func(ctx context.Context, nodeID, groupID string) error
	getIncidentEdgesFn            func(ctx context.Context, nodeID, groupID string) ([]types.IncidentEdge, error)
	upsertEdgeFn                  func(ctx context.Context, edge *types.Edge) error
	getRecentEntitiesFn           func(ctx context.Context, groupID string, limit int) ([]*types.Node, error)
	getEntitiesMissingEmbeddingFn func(ctx context.Context, groupID string, limit int) ([]*types.Node, error)
	setNodeEmbeddingFn            func(ctx context.Context, nodeID, groupID string, embedding []float32) error
	searchNodesByVectorFn         func(ctx context.Context, vector []float32, groupID string, options *driver.VectorSearchOptions) ([]*driver.ScoredNode, error)
	mergeNodesFn                  func(ctx context.Context, req *driver.MergeRequest) (int, error)
	createIndicesFn               func(ctx context.Context, dimensions int) error
	getStatsFn                    func(ctx context.Context, groupID string) (*driver.GraphStats, error)
}

var _ driver.GraphDriver = (*mockDriver)(nil)

func (m *mockDriver) VerifyConnectivity(ctx context.Context) error {
	if m.verifyConnectivityFn != nil {
		return m.verifyConnectivityFn(ctx)
	}
	return nil
}

func (m *mockDriver) Provider() driver.GraphProvider {
	return driver.GraphProviderNeo4j
}

func (m *mockDriver) Close(ctx context.Context) error {
	return nil
}

func (m *mockDriver) GetNode(ctx context.Context, nodeID, groupID string) (*types.Node, error) {
	if m.getNodeFn != nil {
		return m.getNodeFn(ctx, nodeID, groupID)
	}
	return nil, types.ErrNodeNotFound
}

func (m *mockDriver) UpsertNode(ctx context.Context, node *types.Node) error {
	if m.upsertNodeFn != nil {
		return m.upsertNodeFn(ctx, node)
	}
	return nil
}

func (m *mockDriver) DeleteNode(ctx context.Context, nodeID, groupID string) error {
	if m.deleteNodeFn != nil {
		return m.deleteNodeFn(ctx, nodeID, groupID)
	}
	return nil
}

func (m *mockDriver) GetIncidentEdges(ctx context.Context, nodeID, groupID string) ([]types.IncidentEdge, error) {
	if m.getIncidentEdgesFn != nil {
		return m.getIncidentEdgesFn(ctx, nodeID, groupID)
	}
	return nil, nil
}

func (m *mockDriver) UpsertEdge(ctx context.Context, edge *types.Edge) error {
	if m.upsertEdgeFn != nil {
		return m.upsertEdgeFn(ctx, edge)
	}
	return nil
}

func (m *mockDriver) GetRecentEntities(ctx context.Context, groupID string, limit int) ([]*types.Node, error) {
	if m.getRecentEntitiesFn != nil {
		return m.getRecentEntitiesFn(ctx, groupID, limit)
	}
	return nil, nil
}

func (m *mockDriver) GetEntitiesMissingEmbedding(ctx context.Context, groupID string, limit int) ([]*types.Node, error) {
	if m.getEntitiesMissingEmbeddingFn != nil {
		return m.getEntitiesMissingEmbeddingFn(ctx, groupID, limit)
	}
	return nil, nil
}

func (m *mockDriver) SetNodeEmbedding(ctx context.Context, nodeID, groupID string, embedding []float32) error {
	if m.setNodeEmbeddingFn != nil {
		return m.setNodeEmbeddingFn(ctx, nodeID, groupID, embedding)
	}
	return nil
}

func (m *mockDriver) SearchNodesByVector(ctx context.Context, vector []float32, groupID string, options *driver.VectorSearchOptions) ([]*driver.ScoredNode, error) {
	if m.searchNodesByVectorFn != nil {
		return m.searchNodesByVectorFn(ctx, vector, groupID, options)
	}
	return nil, nil
}

func (m *mockDriver) MergeNodes(ctx context.Context, req *driver.MergeRequest) (int, error) {
	if m.mergeNodesFn != nil {
		return m.mergeNodesFn(ctx, req)
	}
	return 0, nil
}

func (m *mockDriver) CreateIndices(ctx context.Context, dimensions int) error {
	if m.createIndicesFn != nil {
		return m.createIndicesFn(ctx, dimensions)
	}
	return nil
}

func (m *mockDriver) GetStats(ctx context.Context, groupID string) (*driver.GraphStats, error) {
	if m.getStatsFn != nil {
		return m.getStatsFn(ctx, groupID)
	}
	return &driver.GraphStats{}, nil
}

// mockLLM implements nlp.Client with overridable functions.
type mockLLM struct {
	chatFn           func(ctx context.Context, messages []types.Message) (*types.Response, error)
	chatStructuredFn func(ctx context.Context, messages []types.Message, schema any) (*types.Response, error)
}

var _ nlp.Client = (*mockLLM)(nil)

func (m *mockLLM) Chat(ctx context.Context, messages []types.Message) (*types.Response, error) {
	if m.chatFn != nil {
		return m.chatFn(ctx, messages)
	}
	return &types.Response{Content: "{}"}, nil
}

func (m *mockLLM) ChatWithStructuredOutput(ctx context.Context, messages []types.Message, schema any) (*types.Response, error) {
	if m.chatStructuredFn != nil {
		return m.chatStructuredFn(ctx, messages, schema)
	}
	return &types.Response{Content: `{"duplicates": []}`}, nil
}

func (m *mockLLM) GetCapabilities() []nlp.TaskCapability {
	return []nlp.TaskCapability{nlp.TaskTextGeneration, nlp.TaskStructuredOutput}
}

func (m *mockLLM) Close() error {
	return nil
}

// mockEmbedder returns deterministic embeddings for testing.
type mockEmbedder struct {
	embedFn func(ctx context.Context, texts []string) ([][]float32, error)
	dims    int
}

func (m *mockEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if m.embedFn != nil {
		return m.embedFn(ctx, texts)
	}
	embeddings := make([][]float32, len(texts))
	for i := range texts {
		embeddings[i] = []float32{0.1, 0.2, 0.3}
	}
	return embeddings, nil
}

func (m *mockEmbedder) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := m.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}

func (m *mockEmbedder) Dimensions() int {
	if m.dims > 0 {
		return m.dims
	}
	return 3
}

func (m *mockEmbedder) Close() error {
	return nil
}

func newTestClient(d *mockDriver, llm *mockLLM, emb *mockEmbedder) *Client {
	if d == nil {
		d = &mockDriver{}
	}
	if llm == nil {
		llm = &mockLLM{}
	}
	if emb == nil {
		emb = &mockEmbedder{}
	}
	client, _ := NewClient(d, llm, emb, nil, nil)
	return client
}
