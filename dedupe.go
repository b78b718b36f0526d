package dedupe

import (
	"context"
	"errors"

	"github.com/soundprediction/dedupe/pkg/nlp"
	"github.com/soundprediction/dedupe/pkg/types"
)

// Run scans the limit most recently created entities with embeddings and
// reports the confirmed duplicate pairs among them. Each unordered pair of
// entities is compared at most once per run; pairs that survive vector
// search are confirmed by the language model.
//
// A model failure for one entity is logged and skipped so the rest of the
// scan still completes.
func (c *Client) Run(ctx context.Context, groupID string, limit int) (*types.DeduplicationReport, error) {
	if groupID == "" {
		groupID = c.config.GroupID
	}
	if limit <= 0 {
		limit = c.config.DefaultLimit
	}

	c.logger.Info("scanning entities for duplicates", "group_id", groupID, "limit", limit)

	entities, err := c.driver.GetRecentEntities(ctx, groupID, limit)
	if err != nil {
		return nil, NewStoreError("fetch recent entities", err)
	}

	report := &types.DeduplicationReport{
		Duplicates: []types.DuplicatePair{},
	}

	// With fewer than two entities in the window there is nothing to compare.
	// The vector index spans entities outside the window, so proceeding would
	// still produce matches; the scan is defined over the window only.
	if len(entities) < 2 {
		report.TotalEntitiesChecked = len(entities)
		return report, nil
	}

	checked := NewPairSet()

	for _, entity := range entities {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		report.TotalEntitiesChecked++

		candidates, err := c.FindCandidates(ctx, entity, groupID, checked, c.config.TopK, c.config.SimilarityThreshold)
		if err != nil {
			if errors.Is(err, types.ErrMissingEmbedding) {
				c.logger.Warn("skipping entity without embedding", "uuid", entity.Uuid)
				continue
			}
			if errors.Is(err, &StoreError{}) {
				c.logger.Error("vector search failed, skipping entity", "uuid", entity.Uuid, "error", err)
				continue
			}
			return nil, err
		}

		// Mark every surviving pair as checked whether or not the model
		// confirms it, so the reverse direction is not re-examined.
		for _, cand := range candidates {
			checked.Add(entity.Uuid, cand.Node.Uuid)
		}

		if len(candidates) == 0 {
			continue
		}

		confirmed, err := c.ConfirmDuplicates(ctx, entity, candidates)
		if err != nil {
			if errors.Is(err, &nlp.InferenceError{}) {
				c.logger.Error("duplicate confirmation failed", "uuid", entity.Uuid, "error", err)
				continue
			}
			return nil, err
		}

		report.Duplicates = append(report.Duplicates, confirmed...)
	}

	report.PotentialDuplicatesFound = len(report.Duplicates)
	c.logger.Info("deduplication run complete",
		"group_id", groupID,
		"checked", report.TotalEntitiesChecked,
		"duplicates", report.PotentialDuplicatesFound)
	return report, nil
}
