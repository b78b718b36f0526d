package driver

import (
	"time"

	"github.com/soundprediction/dedupe/pkg/types"
)

// GraphProvider represents the type of graph database provider.
type GraphProvider string

const (
	GraphProviderNeo4j GraphProvider = "neo4j"
)

// EntityVectorIndex is the name of the vector index over entity embeddings.
const EntityVectorIndex = "entity_embeddings"

// GraphStats holds statistics about the graph.
type GraphStats struct {
	NodeCount         int64     `json:"node_count"`
	EdgeCount         int64     `json:"edge_count"`
	NodesWithoutEmbed int64     `json:"nodes_without_embedding"`
	LastUpdated       time.Time `json:"last_updated"`
}

// VectorSearchOptions holds options for vector similarity search operations.
type VectorSearchOptions struct {
	// Limit is the maximum number of results to return.
	Limit int `json:"limit"`
	// MinScore excludes results whose similarity score is not strictly
	// greater than this value.
	MinScore float64 `json:"min_score"`
	// ExcludeUuid removes a node (typically the query entity itself) from
	// the results.
	ExcludeUuid string `json:"exclude_uuid,omitempty"`
}

// ScoredNode pairs a node with its similarity score from a vector search.
type ScoredNode struct {
	Node  *types.Node `json:"node"`
	Score float64     `json:"score"`
}

// MergeRequest describes a merge of one duplicate entity into a keeper.
type MergeRequest struct {
	KeeperID    string
	DuplicateID string
	GroupID     string
	// Actor is recorded on re-homed relationships as created_by/updated_by.
	Actor string
	// Timestamp is recorded as created_at/updated_at on re-homed
	// relationships. Zero means time.Now().UTC().
	Timestamp time.Time
}
