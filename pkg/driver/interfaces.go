package driver

import (
	"context"

	"github.com/soundprediction/dedupe/pkg/types"
)

// This file defines focused interfaces that follow the Interface Segregation Principle.
// The main GraphDriver interface is composed from these smaller interfaces.
// Consumers should depend on the smallest interface that meets their needs.

// GraphCore provides lifecycle and identity operations all drivers implement.
type GraphCore interface {
	// VerifyConnectivity checks that the database is reachable.
	VerifyConnectivity(ctx context.Context) error

	// Provider returns the type of graph database provider.
	Provider() GraphProvider

	// Close releases all resources held by the driver.
	Close(ctx context.Context) error
}

// EntityStore provides operations for managing entity nodes.
type EntityStore interface {
	// GetNode retrieves a single node by uuid within a group.
	GetNode(ctx context.Context, nodeID, groupID string) (*types.Node, error)

	// UpsertNode creates or updates a node.
	UpsertNode(ctx context.Context, node *types.Node) error

	// DeleteNode removes a node and its incident edges.
	DeleteNode(ctx context.Context, nodeID, groupID string) error

	// GetIncidentEdges enumerates the edges touching a node in both
	// directions.
	GetIncidentEdges(ctx context.Context, nodeID, groupID string) ([]types.IncidentEdge, error)

	// UpsertEdge creates an edge if no edge of the same type exists between
	// the endpoints. Existing edges keep their properties.
	UpsertEdge(ctx context.Context, edge *types.Edge) error
}

// EntityScanner provides the scans the deduplication pipeline is built on.
type EntityScanner interface {
	// GetRecentEntities retrieves up to limit embedded entities ordered
	// from most to least recently created.
	GetRecentEntities(ctx context.Context, groupID string, limit int) ([]*types.Node, error)

	// GetEntitiesMissingEmbedding retrieves up to limit entities whose
	// embedding property is null.
	GetEntitiesMissingEmbedding(ctx context.Context, groupID string, limit int) ([]*types.Node, error)
}

// EmbeddingStore writes entity embeddings.
type EmbeddingStore interface {
	// SetNodeEmbedding writes the embedding property of one node. No other
	// property is touched.
	SetNodeEmbedding(ctx context.Context, nodeID, groupID string, embedding []float32) error
}

// VectorSearcher provides similarity search over the entity vector index.
type VectorSearcher interface {
	// SearchNodesByVector returns nodes similar to the query vector,
	// ordered by score descending. Results honor the options' limit,
	// minimum score, and uuid exclusion.
	SearchNodesByVector(ctx context.Context, vector []float32, groupID string, options *VectorSearchOptions) ([]*ScoredNode, error)
}

// EntityMerger merges duplicate entities.
type EntityMerger interface {
	// MergeNodes re-homes the duplicate's relationships onto the keeper and
	// deletes the duplicate, all within one transaction. It returns the
	// number of relationships enumerated on the duplicate.
	MergeNodes(ctx context.Context, req *MergeRequest) (int, error)
}

// DatabaseAdmin provides administrative operations for database maintenance.
type DatabaseAdmin interface {
	// CreateIndices creates range and vector indices for the entity graph.
	CreateIndices(ctx context.Context, dimensions int) error

	// GetStats retrieves statistics about the graph.
	GetStats(ctx context.Context, groupID string) (*GraphStats, error)
}

// GraphDriver is the full driver contract used by the engine.
type GraphDriver interface {
	GraphCore
	EntityStore
	EntityScanner
	EmbeddingStore
	VectorSearcher
	EntityMerger
	DatabaseAdmin
}

// Ensure Neo4jDriver implements the full driver contract.
var _ GraphDriver = (*Neo4jDriver)(nil)
