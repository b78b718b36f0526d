package dedupe

import (
	"context"

	"github.com/soundprediction/dedupe/pkg/driver"
	"github.com/soundprediction/dedupe/pkg/types"
)

// FindCandidates returns entities similar to the given entity via the vector
// index, ordered by score descending. Only candidates scoring strictly above
// threshold are returned, the entity itself is excluded, and pairs already
// present in exclude are filtered out.
func (c *Client) FindCandidates(ctx context.Context, entity *types.Node, groupID string, exclude *PairSet, topK int, threshold float64) ([]*driver.ScoredNode, error) {
	if entity == nil {
		return nil, types.ErrEmptyUUID
	}
	if !entity.HasEmbedding() {
		return nil, types.ErrMissingEmbedding
	}
	if groupID == "" {
		groupID = c.config.GroupID
	}
	if topK <= 0 {
		topK = c.config.TopK
	}

	scored, err := c.driver.SearchNodesByVector(ctx, entity.Embedding, groupID, &driver.VectorSearchOptions{
		Limit:       topK,
		MinScore:    threshold,
		ExcludeUuid: entity.Uuid,
	})
	if err != nil {
		return nil, NewStoreError("vector search", err)
	}

	if exclude == nil {
		return scored, nil
	}

	candidates := make([]*driver.ScoredNode, 0, len(scored))
	for _, sn := range scored {
		if exclude.Contains(entity.Uuid, sn.Node.Uuid) {
			continue
		}
		candidates = append(candidates, sn)
	}
	return candidates, nil
}
