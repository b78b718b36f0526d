package dedupe

import (
	"context"
	"fmt"
)

// BackfillEmbeddings computes embeddings for entities whose embedding
// property is missing and writes them back, batch by batch, until no
// unembedded entities remain. It returns the number of entities embedded.
//
// Entities that fail to embed are logged and skipped; they stay unembedded
// and are retried on the next run. A batch in which nothing embeds stops the
// run rather than looping on the same entities forever; a batch in which
// every write fails stops with a StoreError.
func (c *Client) BackfillEmbeddings(ctx context.Context, groupID string, batchSize int) (int, error) {
	if c.embedder == nil {
		return 0, fmt.Errorf("no embedder client configured")
	}
	if groupID == "" {
		groupID = c.config.GroupID
	}
	if batchSize <= 0 {
		batchSize = c.config.BackfillBatchSize
	}

	total := 0
	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		nodes, err := c.driver.GetEntitiesMissingEmbedding(ctx, groupID, batchSize)
		if err != nil {
			return total, NewStoreError("fetch entities missing embedding", err)
		}
		if len(nodes) == 0 {
			break
		}

		texts := make([]string, len(nodes))
		for i, node := range nodes {
			texts[i] = node.EmbeddingText()
		}

		// Try the batch in one call; on failure retry each entity alone so a
		// single rejected input cannot block the rest. A failed entity stays
		// unembedded and is picked up again on the next run.
		embeddings := make([][]float32, len(nodes))
		embedded := 0
		if batch, err := c.embedder.Embed(ctx, texts); err == nil && len(batch) == len(nodes) {
			copy(embeddings, batch)
			embedded = len(batch)
		} else {
			if err != nil {
				c.logger.Warn("batch embedding failed, retrying entities individually", "batch", len(nodes), "error", err)
			} else {
				c.logger.Warn("batch embedding returned wrong count, retrying entities individually", "batch", len(nodes), "got", len(batch))
			}
			for i, node := range nodes {
				vector, err := c.embedder.EmbedSingle(ctx, texts[i])
				if err != nil {
					c.logger.Error("failed to embed entity", "uuid", node.Uuid, "error", err)
					continue
				}
				embeddings[i] = vector
				embedded++
			}
		}

		succeeded := 0
		for i, node := range nodes {
			if embeddings[i] == nil {
				continue
			}
			if err := c.driver.SetNodeEmbedding(ctx, node.Uuid, groupID, embeddings[i]); err != nil {
				c.logger.Error("failed to store embedding", "uuid", node.Uuid, "error", err)
				continue
			}
			succeeded++
		}

		total += succeeded
		c.logger.Info("Persisting backfilled embeddings", "batch", len(nodes), "succeeded", succeeded, "total", total)

		if succeeded == 0 {
			// Nothing embeddable is left; stop rather than refetch the same
			// entities forever. They are retried on the next run.
			if embedded == 0 {
				c.logger.Warn("no entity in batch could be embedded, stopping", "batch", len(nodes))
				break
			}
			return total, NewStoreError("backfill batch", fmt.Errorf("no embeddings could be stored for a batch of %d entities", len(nodes)))
		}
	}

	c.logger.Info("embedding backfill complete", "group_id", groupID, "embedded", total)
	return total, nil
}
