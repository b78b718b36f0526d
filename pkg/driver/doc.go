// Package driver provides graph database access for the dedupe engine.
//
// The package defines focused interfaces (EntityStore, EntityScanner,
// VectorSearcher, EntityMerger, DatabaseAdmin) composed into the GraphDriver
// interface, plus a Neo4j implementation built on the official Go driver.
//
// All operations open a short-lived session and run inside managed
// transactions via ExecuteRead/ExecuteWrite. The merge operation runs its
// existence check, relationship re-homing, and duplicate deletion inside a
// single write transaction so a failure leaves the graph untouched.
package driver
