// Package types defines the core data types for the dedupe engine.
//
// This package contains the fundamental types used throughout dedupe:
//   - Node: Represents person entities in the graph
//   - Edge: Represents relationships between entities
//   - DuplicatePair / DeduplicationReport: Results of a deduplication scan
//   - MergeResult: Result of merging a duplicate into a keeper entity
//   - Message / Response: Chat exchanges with language model services
//
// # Validation
//
// Types provide Validate() methods for input validation:
//
//	node := &types.Node{Name: "Ada Lovelace", GroupID: "group-1"}
//	if err := node.Validate(); err != nil {
//	    // Handle validation error
//	}
//
// # JSON Serialization
//
// All types are designed to be JSON-serializable with struct tags matching
// the HTTP API field names.
package types
