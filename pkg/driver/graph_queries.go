package driver

import (
	"fmt"
	"regexp"
)

// relationshipTypePattern matches the relationship type names we are willing
// to interpolate into a Cypher MERGE. Cypher has no parameter syntax for
// relationship types, so anything outside this pattern is rejected before it
// reaches a query.
var relationshipTypePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidateRelationshipType reports whether relType is safe to use as a
// structural relationship type in a query.
func ValidateRelationshipType(relType string) error {
	if relType == "" {
		return fmt.Errorf("relationship type cannot be empty")
	}
	if !relationshipTypePattern.MatchString(relType) {
		return fmt.Errorf("invalid relationship type %q", relType)
	}
	return nil
}

// GetRangeIndices returns database-specific range index creation queries.
func GetRangeIndices(provider GraphProvider) []string {
	switch provider {
	default: // Neo4j
		return []string{
			"CREATE INDEX entity_uuid IF NOT EXISTS FOR (n:Entity) ON (n.uuid)",
			"CREATE INDEX entity_group_id IF NOT EXISTS FOR (n:Entity) ON (n.group_id)",
			"CREATE INDEX entity_name IF NOT EXISTS FOR (n:Entity) ON (n.name)",
			"CREATE INDEX entity_created_at IF NOT EXISTS FOR (n:Entity) ON (n.created_at)",
		}
	}
}

// GetVectorIndexQuery returns the vector index creation query for entity
// embeddings with the given dimensionality.
func GetVectorIndexQuery(provider GraphProvider, dimensions int) string {
	switch provider {
	default: // Neo4j
		return fmt.Sprintf(`CREATE VECTOR INDEX %s IF NOT EXISTS
FOR (n:Entity) ON (n.embedding)
OPTIONS {indexConfig: {
  `+"`vector.dimensions`"+`: %d,
  `+"`vector.similarity_function`"+`: 'cosine'
}}`, EntityVectorIndex, dimensions)
	}
}

// GetVectorSearchQuery returns the similarity search query over the entity
// vector index. The index name is fixed at compile time; everything variable
// travels as parameters.
func GetVectorSearchQuery(provider GraphProvider) string {
	switch provider {
	default: // Neo4j
		return fmt.Sprintf(`CALL db.index.vector.queryNodes('%s', $k, $embedding)
YIELD node, score
WHERE node.uuid <> $exclude_uuid
  AND node.group_id = $group_id
  AND score > $min_score
RETURN node, score
ORDER BY score DESC
LIMIT $limit`, EntityVectorIndex)
	}
}

// GetIncidentEdgesQuery returns the query enumerating a node's incident
// relationships in both directions.
func GetIncidentEdgesQuery(provider GraphProvider) string {
	switch provider {
	default: // Neo4j
		return `MATCH (dup:Entity {uuid: $uuid, group_id: $group_id})-[r]->(other:Entity {group_id: $group_id})
RETURN other.uuid AS other_uuid, type(r) AS rel_type, 'outgoing' AS direction
UNION
MATCH (other:Entity {group_id: $group_id})-[r]->(dup:Entity {uuid: $uuid, group_id: $group_id})
RETURN other.uuid AS other_uuid, type(r) AS rel_type, 'incoming' AS direction`
	}
}

// GetMergeEdgeQuery returns the idempotent edge re-homing query for one
// relationship type and direction. relType must pass
// ValidateRelationshipType before being interpolated here.
func GetMergeEdgeQuery(provider GraphProvider, relType string, outgoing bool) string {
	pattern := fmt.Sprintf("(keep)-[r:%s]->(other)", relType)
	if !outgoing {
		pattern = fmt.Sprintf("(other)-[r:%s]->(keep)", relType)
	}

	switch provider {
	default: // Neo4j
		return fmt.Sprintf(`MATCH (keep:Entity {uuid: $keep_uuid, group_id: $group_id})
MATCH (other:Entity {uuid: $other_uuid, group_id: $group_id})
MERGE %s
ON CREATE SET r.group_id = $group_id,
              r.created_by = $actor,
              r.created_at = $ts,
              r.updated_by = $actor,
              r.updated_at = $ts`, pattern)
	}
}
