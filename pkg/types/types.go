package types

import (
	"errors"
	"time"
)

// Validation errors
var (
	ErrEmptyName    = errors.New("name cannot be empty")
	ErrEmptyGroupID = errors.New("group_id cannot be empty")
	ErrEmptyUUID    = errors.New("uuid cannot be empty")
	ErrInvalidLimit = errors.New("limit must be positive")
)

// Operational errors shared across the engine and its callers.
var (
	// ErrNodeNotFound is returned when a referenced entity does not exist
	// in the requested group scope.
	ErrNodeNotFound = errors.New("node not found")
	// ErrSelfMerge is returned when a merge names the same entity as both
	// keeper and duplicate.
	ErrSelfMerge = errors.New("cannot merge an entity with itself")
	// ErrMissingEmbedding is returned when an operation requires an entity
	// embedding that has not been backfilled yet.
	ErrMissingEmbedding = errors.New("entity has no embedding")
)

// Node represents a person entity in the graph.
type Node struct {
	Uuid      string    `json:"uuid" mapstructure:"uuid"`
	Name      string    `json:"name" mapstructure:"name"`
	GroupID   string    `json:"group_id" mapstructure:"group_id"`
	CreatedAt time.Time `json:"created_at" mapstructure:"created_at"`
	UpdatedAt time.Time `json:"updated_at" mapstructure:"updated_at"`
	CreatedBy string    `json:"created_by,omitempty" mapstructure:"created_by"`
	UpdatedBy string    `json:"updated_by,omitempty" mapstructure:"updated_by"`

	// Summary holds the entity description used for embedding text.
	Summary string `json:"summary,omitempty" mapstructure:"summary"`

	// Embedding is nil until backfilled. It is written atomically per node,
	// never partially.
	Embedding []float32 `json:"embedding,omitempty" mapstructure:"embedding"`

	Metadata map[string]interface{} `json:"metadata,omitempty" mapstructure:"metadata"`
}

// Validate checks if the Node has all required fields set.
func (n *Node) Validate() error {
	if n.Name == "" {
		return ErrEmptyName
	}
	if n.GroupID == "" {
		return ErrEmptyGroupID
	}
	return nil
}

// ValidateForCreate checks if the Node has all required fields for creation.
func (n *Node) ValidateForCreate() error {
	if n.Uuid == "" {
		return ErrEmptyUUID
	}
	return n.Validate()
}

// HasEmbedding reports whether the node carries a non-empty embedding.
func (n *Node) HasEmbedding() bool {
	return len(n.Embedding) > 0
}

// EmbeddingText returns the text embedded for this node. Missing name or
// summary fall back to the empty string so the separator is always present.
func (n *Node) EmbeddingText() string {
	return n.Name + " - " + n.Summary
}

// Edge represents a relationship between two entities.
type Edge struct {
	Uuid         string    `json:"uuid" mapstructure:"uuid"`
	Type         string    `json:"type" mapstructure:"type"`
	SourceNodeID string    `json:"source_node_uuid" mapstructure:"source_node_uuid"`
	TargetNodeID string    `json:"target_node_uuid" mapstructure:"target_node_uuid"`
	GroupID      string    `json:"group_id" mapstructure:"group_id"`
	CreatedAt    time.Time `json:"created_at" mapstructure:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" mapstructure:"updated_at"`
	CreatedBy    string    `json:"created_by,omitempty" mapstructure:"created_by"`
	UpdatedBy    string    `json:"updated_by,omitempty" mapstructure:"updated_by"`

	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// Validate checks if the Edge has all required fields set.
func (e *Edge) Validate() error {
	if e.SourceNodeID == "" || e.TargetNodeID == "" {
		return ErrEmptyUUID
	}
	if e.GroupID == "" {
		return ErrEmptyGroupID
	}
	return nil
}

// EdgeDirection indicates which endpoint of an incident edge the entity
// occupies.
type EdgeDirection string

const (
	// EdgeOutgoing means the entity is the source of the edge.
	EdgeOutgoing EdgeDirection = "outgoing"
	// EdgeIncoming means the entity is the target of the edge.
	EdgeIncoming EdgeDirection = "incoming"
)

// IncidentEdge describes one edge touching an entity, as enumerated during
// a merge. OtherNodeID is the endpoint that is not the enumerated entity.
type IncidentEdge struct {
	Type        string        `json:"type"`
	Direction   EdgeDirection `json:"direction"`
	OtherNodeID string        `json:"other_node_uuid"`
}

// DuplicatePair is one confirmed duplicate relationship between two entities.
type DuplicatePair struct {
	Entity1ID       string  `json:"entity1_id"`
	Entity1Name     string  `json:"entity1_name"`
	Entity2ID       string  `json:"entity2_id"`
	Entity2Name     string  `json:"entity2_name"`
	ConfidenceScore float64 `json:"confidence_score"`
	Reasoning       string  `json:"reasoning"`
}

// DeduplicationReport summarizes one deduplication run.
type DeduplicationReport struct {
	TotalEntitiesChecked     int             `json:"total_entities_checked"`
	PotentialDuplicatesFound int             `json:"potential_duplicates_found"`
	Duplicates               []DuplicatePair `json:"duplicates"`
}

// MergeResult summarizes one completed merge.
type MergeResult struct {
	Message                  string `json:"message"`
	EntityID                 string `json:"entity_id"`
	MergedID                 string `json:"merged_id"`
	RelationshipsTransferred int    `json:"relationships_transferred"`
}
