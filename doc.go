// Package dedupe finds and merges duplicate entities in a Neo4j knowledge
// graph.
//
// The pipeline has three stages. Embedding backfill computes vector
// embeddings for entities that are missing them. Candidate generation uses
// the entity vector index to find similar entities above a similarity
// threshold. Duplicate confirmation asks a language model to judge which
// candidates refer to the same real-world entity.
//
// Confirmed pairs can then be merged: the duplicate's relationships are
// transferred onto the keeper and the duplicate is deleted, all within a
// single transaction.
//
// The Client is constructed from a graph driver, a language model client,
// and an embedder:
//
//	client, err := dedupe.NewClient(graphDriver, llmClient, embedderClient, nil, logger)
//	if err != nil {
//		log.Fatal(err)
//	}
//	report, err := client.Run(ctx, "default", 10)
package dedupe
