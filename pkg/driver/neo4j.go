package driver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/db"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
	"github.com/soundprediction/dedupe/pkg/types"
)

// Neo4jDriver implements the GraphDriver interface for Neo4j databases.
type Neo4jDriver struct {
	client   neo4j.DriverWithContext
	database string
}

// NewNeo4jDriver creates a new Neo4j driver instance.
func NewNeo4jDriver(uri, username, password, database string) (*Neo4jDriver, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}

	if database == "" {
		database = "neo4j"
	}

	return &Neo4jDriver{
		client:   driver,
		database: database,
	}, nil
}

// VerifyConnectivity checks that the database is reachable.
func (n *Neo4jDriver) VerifyConnectivity(ctx context.Context) error {
	return n.client.VerifyConnectivity(ctx)
}

// Provider returns the graph provider type.
func (n *Neo4jDriver) Provider() GraphProvider {
	return GraphProviderNeo4j
}

// Close releases the underlying driver.
func (n *Neo4jDriver) Close(ctx context.Context) error {
	return n.client.Close(ctx)
}

// GetNode retrieves a node by uuid within a group.
func (n *Neo4jDriver) GetNode(ctx context.Context, nodeID, groupID string) (*types.Node, error) {
	session := n.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: n.database})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			MATCH (n:Entity {uuid: $nodeID, group_id: $groupID})
			RETURN n
		`
		res, err := tx.Run(ctx, query, map[string]any{
			"nodeID":  nodeID,
			"groupID": groupID,
		})
		if err != nil {
			return nil, err
		}

		record, err := res.Single(ctx)
		if err != nil {
			if strings.Contains(err.Error(), "no more records") {
				return nil, types.ErrNodeNotFound
			}
			return nil, err
		}

		return record, nil
	})
	if err != nil {
		return nil, err
	}

	record := result.(*db.Record)
	nodeValue, found := record.Get("n")
	if !found {
		return nil, types.ErrNodeNotFound
	}

	node, ok := nodeValue.(dbtype.Node)
	if !ok {
		return nil, fmt.Errorf("unexpected type for node: got %T, expected dbtype.Node", nodeValue)
	}
	return n.nodeFromDBNode(node), nil
}

// UpsertNode creates or updates a node.
func (n *Neo4jDriver) UpsertNode(ctx context.Context, node *types.Node) error {
	if node == nil {
		return fmt.Errorf("cannot upsert nil node")
	}
	if err := node.ValidateForCreate(); err != nil {
		return err
	}

	if node.CreatedAt.IsZero() {
		node.CreatedAt = time.Now().UTC()
	}
	node.UpdatedAt = time.Now().UTC()

	session := n.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: n.database})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			MERGE (n:Entity {uuid: $uuid, group_id: $group_id})
			SET n += $properties
			SET n.updated_at = $updated_at
		`
		_, err := tx.Run(ctx, query, map[string]any{
			"uuid":       node.Uuid,
			"group_id":   node.GroupID,
			"properties": n.nodeToProperties(node),
			"updated_at": node.UpdatedAt.Format(time.RFC3339),
		})
		return nil, err
	})

	return err
}

// DeleteNode removes a node and its incident edges.
func (n *Neo4jDriver) DeleteNode(ctx context.Context, nodeID, groupID string) error {
	session := n.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: n.database})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			MATCH (n:Entity {uuid: $nodeID, group_id: $groupID})
			DETACH DELETE n
		`
		_, err := tx.Run(ctx, query, map[string]any{
			"nodeID":  nodeID,
			"groupID": groupID,
		})
		return nil, err
	})

	return err
}

// GetIncidentEdges enumerates the edges touching a node in both directions.
func (n *Neo4jDriver) GetIncidentEdges(ctx context.Context, nodeID, groupID string) ([]types.IncidentEdge, error) {
	session := n.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: n.database})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, GetIncidentEdgesQuery(n.Provider()), map[string]any{
			"uuid":     nodeID,
			"group_id": groupID,
		})
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, err
	}

	return incidentEdgesFromRecords(result.([]*db.Record)), nil
}

// UpsertEdge creates an edge if none of the same type exists between the
// endpoints. Audit fields are written only on creation.
func (n *Neo4jDriver) UpsertEdge(ctx context.Context, edge *types.Edge) error {
	if edge == nil {
		return fmt.Errorf("cannot upsert nil edge")
	}
	if err := edge.Validate(); err != nil {
		return err
	}
	if err := ValidateRelationshipType(edge.Type); err != nil {
		return err
	}

	ts := edge.CreatedAt
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	session := n.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: n.database})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := GetMergeEdgeQuery(n.Provider(), edge.Type, true)
		_, err := tx.Run(ctx, query, map[string]any{
			"keep_uuid":  edge.SourceNodeID,
			"other_uuid": edge.TargetNodeID,
			"group_id":   edge.GroupID,
			"actor":      edge.CreatedBy,
			"ts":         ts.Format(time.RFC3339),
		})
		return nil, err
	})

	return err
}

// GetRecentEntities retrieves up to limit embedded entities ordered from most
// to least recently created.
func (n *Neo4jDriver) GetRecentEntities(ctx context.Context, groupID string, limit int) ([]*types.Node, error) {
	if limit <= 0 {
		return nil, types.ErrInvalidLimit
	}

	session := n.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: n.database})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			MATCH (n:Entity {group_id: $groupID})
			WHERE n.embedding IS NOT NULL
			RETURN n
			ORDER BY n.created_at DESC
			LIMIT $limit
		`
		res, err := tx.Run(ctx, query, map[string]any{
			"groupID": groupID,
			"limit":   limit,
		})
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, err
	}

	return n.nodesFromRecords(result.([]*db.Record)), nil
}

// GetEntitiesMissingEmbedding retrieves up to limit entities whose embedding
// property is null.
func (n *Neo4jDriver) GetEntitiesMissingEmbedding(ctx context.Context, groupID string, limit int) ([]*types.Node, error) {
	if limit <= 0 {
		return nil, types.ErrInvalidLimit
	}

	session := n.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: n.database})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			MATCH (n:Entity {group_id: $groupID})
			WHERE n.embedding IS NULL
			RETURN n
			LIMIT $limit
		`
		res, err := tx.Run(ctx, query, map[string]any{
			"groupID": groupID,
			"limit":   limit,
		})
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, err
	}

	return n.nodesFromRecords(result.([]*db.Record)), nil
}

// SetNodeEmbedding writes the embedding property of one node.
func (n *Neo4jDriver) SetNodeEmbedding(ctx context.Context, nodeID, groupID string, embedding []float32) error {
	if len(embedding) == 0 {
		return types.ErrMissingEmbedding
	}

	session := n.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: n.database})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			MATCH (n:Entity {uuid: $uuid, group_id: $group_id})
			SET n.embedding = $embedding
			RETURN n.uuid
		`
		res, err := tx.Run(ctx, query, map[string]any{
			"uuid":      nodeID,
			"group_id":  groupID,
			"embedding": embeddingToFloat64(embedding),
		})
		if err != nil {
			return nil, err
		}

		record, err := res.Single(ctx)
		if err != nil {
			if strings.Contains(err.Error(), "no more records") {
				return nil, types.ErrNodeNotFound
			}
			return nil, err
		}
		return record, nil
	})

	return err
}

// SearchNodesByVector returns nodes similar to the query vector, ordered by
// score descending.
func (n *Neo4jDriver) SearchNodesByVector(ctx context.Context, vector []float32, groupID string, options *VectorSearchOptions) ([]*ScoredNode, error) {
	if len(vector) == 0 {
		return nil, types.ErrMissingEmbedding
	}
	if options == nil {
		options = &VectorSearchOptions{Limit: 10}
	}
	if options.Limit <= 0 {
		return nil, types.ErrInvalidLimit
	}

	// Ask the index for one extra result so the excluded node does not eat
	// a slot.
	k := options.Limit
	if options.ExcludeUuid != "" {
		k++
	}

	session := n.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: n.database})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, GetVectorSearchQuery(n.Provider()), map[string]any{
			"k":            k,
			"embedding":    embeddingToFloat64(vector),
			"exclude_uuid": options.ExcludeUuid,
			"group_id":     groupID,
			"min_score":    options.MinScore,
			"limit":        options.Limit,
		})
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, err
	}

	records := result.([]*db.Record)
	scored := make([]*ScoredNode, 0, len(records))
	for _, record := range records {
		nodeValue, found := record.Get("node")
		if !found {
			continue
		}
		dbNode, ok := nodeValue.(dbtype.Node)
		if !ok {
			continue
		}
		scoreValue, _ := record.Get("score")
		score, ok := scoreValue.(float64)
		if !ok {
			continue
		}
		scored = append(scored, &ScoredNode{
			Node:  n.nodeFromDBNode(dbNode),
			Score: score,
		})
	}

	return scored, nil
}

// MergeNodes re-homes the duplicate's relationships onto the keeper and
// deletes the duplicate inside a single write transaction.
func (n *Neo4jDriver) MergeNodes(ctx context.Context, req *MergeRequest) (int, error) {
	if req == nil {
		return 0, fmt.Errorf("merge request cannot be nil")
	}
	if req.KeeperID == req.DuplicateID {
		return 0, types.ErrSelfMerge
	}

	ts := req.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	session := n.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: n.database})
	defer session.Close(ctx)

	result, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		// Both endpoints must exist in scope before anything moves.
		check, err := tx.Run(ctx, `
			MATCH (keep:Entity {uuid: $keep_uuid, group_id: $group_id})
			MATCH (dup:Entity {uuid: $dup_uuid, group_id: $group_id})
			RETURN keep.uuid, dup.uuid
		`, map[string]any{
			"keep_uuid": req.KeeperID,
			"dup_uuid":  req.DuplicateID,
			"group_id":  req.GroupID,
		})
		if err != nil {
			return nil, err
		}
		if _, err := check.Single(ctx); err != nil {
			if strings.Contains(err.Error(), "no more records") {
				return nil, fmt.Errorf("entities %s, %s: %w", req.KeeperID, req.DuplicateID, types.ErrNodeNotFound)
			}
			return nil, err
		}

		res, err := tx.Run(ctx, GetIncidentEdgesQuery(n.Provider()), map[string]any{
			"uuid":     req.DuplicateID,
			"group_id": req.GroupID,
		})
		if err != nil {
			return nil, err
		}
		records, err := res.Collect(ctx)
		if err != nil {
			return nil, err
		}

		edges := incidentEdgesFromRecords(records)
		for _, edge := range edges {
			if err := ValidateRelationshipType(edge.Type); err != nil {
				return nil, err
			}
			query := GetMergeEdgeQuery(n.Provider(), edge.Type, edge.Direction == types.EdgeOutgoing)
			if _, err := tx.Run(ctx, query, map[string]any{
				"keep_uuid":  req.KeeperID,
				"other_uuid": edge.OtherNodeID,
				"group_id":   req.GroupID,
				"actor":      req.Actor,
				"ts":         ts.Format(time.RFC3339),
			}); err != nil {
				return nil, err
			}
		}

		if _, err := tx.Run(ctx, `
			MATCH (dup:Entity {uuid: $dup_uuid, group_id: $group_id})
			DETACH DELETE dup
		`, map[string]any{
			"dup_uuid": req.DuplicateID,
			"group_id": req.GroupID,
		}); err != nil {
			return nil, err
		}

		return len(edges), nil
	})
	if err != nil {
		return 0, err
	}

	return result.(int), nil
}

// CreateIndices creates range and vector indices for the entity graph.
func (n *Neo4jDriver) CreateIndices(ctx context.Context, dimensions int) error {
	session := n.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: n.database})
	defer session.Close(ctx)

	queries := GetRangeIndices(n.Provider())
	if dimensions > 0 {
		queries = append(queries, GetVectorIndexQuery(n.Provider(), dimensions))
	}

	for _, indexQuery := range queries {
		_, err := session.Run(ctx, indexQuery, nil)
		if err != nil {
			if !strings.Contains(err.Error(), "already exists") && !strings.Contains(err.Error(), "An equivalent") {
				return err
			}
		}
	}

	return nil
}

// GetStats retrieves statistics about the graph.
func (n *Neo4jDriver) GetStats(ctx context.Context, groupID string) (*GraphStats, error) {
	session := n.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: n.database})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			MATCH (n:Entity {group_id: $groupID})
			OPTIONAL MATCH (n)-[r]->(:Entity {group_id: $groupID})
			RETURN count(DISTINCT n) AS node_count,
			       count(DISTINCT r) AS edge_count,
			       count(DISTINCT CASE WHEN n.embedding IS NULL THEN n END) AS missing_embedding
		`
		res, err := tx.Run(ctx, query, map[string]any{
			"groupID": groupID,
		})
		if err != nil {
			return nil, err
		}
		return res.Single(ctx)
	})
	if err != nil {
		return nil, err
	}

	record := result.(*db.Record)
	stats := &GraphStats{LastUpdated: time.Now().UTC()}
	if v, ok := record.Get("node_count"); ok {
		if c, ok := v.(int64); ok {
			stats.NodeCount = c
		}
	}
	if v, ok := record.Get("edge_count"); ok {
		if c, ok := v.(int64); ok {
			stats.EdgeCount = c
		}
	}
	if v, ok := record.Get("missing_embedding"); ok {
		if c, ok := v.(int64); ok {
			stats.NodesWithoutEmbed = c
		}
	}

	return stats, nil
}

func (n *Neo4jDriver) nodesFromRecords(records []*db.Record) []*types.Node {
	nodes := make([]*types.Node, 0, len(records))
	for _, record := range records {
		nodeValue, found := record.Get("n")
		if !found {
			continue
		}
		dbNode, ok := nodeValue.(dbtype.Node)
		if !ok {
			continue
		}
		nodes = append(nodes, n.nodeFromDBNode(dbNode))
	}
	return nodes
}

func (n *Neo4jDriver) nodeFromDBNode(node dbtype.Node) *types.Node {
	props := node.Props

	result := &types.Node{}

	if id, ok := props["uuid"].(string); ok {
		result.Uuid = id
	}
	if name, ok := props["name"].(string); ok {
		result.Name = name
	}
	if groupID, ok := props["group_id"].(string); ok {
		result.GroupID = groupID
	}
	if summary, ok := props["summary"].(string); ok {
		result.Summary = summary
	}
	if createdBy, ok := props["created_by"].(string); ok {
		result.CreatedBy = createdBy
	}
	if updatedBy, ok := props["updated_by"].(string); ok {
		result.UpdatedBy = updatedBy
	}

	if createdAtStr, ok := props["created_at"].(string); ok {
		if t, err := time.Parse(time.RFC3339, createdAtStr); err == nil {
			result.CreatedAt = t
		}
	}
	if updatedAtStr, ok := props["updated_at"].(string); ok {
		if t, err := time.Parse(time.RFC3339, updatedAtStr); err == nil {
			result.UpdatedAt = t
		}
	}

	// Embeddings come back as a list of float64 from the native property.
	if raw, ok := props["embedding"].([]interface{}); ok {
		embedding := make([]float32, 0, len(raw))
		for _, v := range raw {
			if f, ok := v.(float64); ok {
				embedding = append(embedding, float32(f))
			}
		}
		if len(embedding) == len(raw) {
			result.Embedding = embedding
		}
	}

	if metadataJSON, ok := props["metadata"].(string); ok {
		var metadata map[string]interface{}
		if err := json.Unmarshal([]byte(metadataJSON), &metadata); err == nil {
			result.Metadata = metadata
		}
	}

	return result
}

func (n *Neo4jDriver) nodeToProperties(node *types.Node) map[string]any {
	props := map[string]any{
		"uuid":       node.Uuid,
		"name":       node.Name,
		"group_id":   node.GroupID,
		"created_at": node.CreatedAt.Format(time.RFC3339),
	}

	if node.Summary != "" {
		props["summary"] = node.Summary
	}
	if node.CreatedBy != "" {
		props["created_by"] = node.CreatedBy
	}
	if node.UpdatedBy != "" {
		props["updated_by"] = node.UpdatedBy
	}

	// Embedding is stored as a native list so the vector index can use it.
	if len(node.Embedding) > 0 {
		props["embedding"] = embeddingToFloat64(node.Embedding)
	}

	if node.Metadata != nil {
		if metadataJSON, err := json.Marshal(node.Metadata); err == nil {
			props["metadata"] = string(metadataJSON)
		}
	}

	return props
}

func incidentEdgesFromRecords(records []*db.Record) []types.IncidentEdge {
	edges := make([]types.IncidentEdge, 0, len(records))
	for _, record := range records {
		var edge types.IncidentEdge
		if v, ok := record.Get("other_uuid"); ok {
			if s, ok := v.(string); ok {
				edge.OtherNodeID = s
			}
		}
		if v, ok := record.Get("rel_type"); ok {
			if s, ok := v.(string); ok {
				edge.Type = s
			}
		}
		if v, ok := record.Get("direction"); ok {
			if s, ok := v.(string); ok {
				edge.Direction = types.EdgeDirection(s)
			}
		}
		if edge.OtherNodeID == "" || edge.Type == "" {
			continue
		}
		edges = append(edges, edge)
	}
	return edges
}

func embeddingToFloat64(embedding []float32) []float64 {
	out := make([]float64, len(embedding))
	for i, v := range embedding {
		out[i] = float64(v)
	}
	return out
}
