package dedupe

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/soundprediction/dedupe/pkg/driver"
	"github.com/soundprediction/dedupe/pkg/types"
)

// Merge transfers the duplicate entity's relationships onto the keeper and
// deletes the duplicate, all within one database transaction. Relationships
// the keeper already has are left untouched; transferred relationships keep
// their direction and type and are stamped with the actor and merge time.
//
// Merging an entity with itself fails with types.ErrSelfMerge before any
// database work. A missing keeper or duplicate fails with
// types.ErrNodeNotFound.
func (c *Client) Merge(ctx context.Context, keeperID, duplicateID, groupID, actor string) (*types.MergeResult, error) {
	if keeperID == "" || duplicateID == "" {
		return nil, types.ErrEmptyUUID
	}
	if keeperID == duplicateID {
		return nil, types.ErrSelfMerge
	}
	if groupID == "" {
		groupID = c.config.GroupID
	}
	if actor == "" {
		actor = "system"
	}

	c.logger.Info("Merging entity pair", "keeper", keeperID, "duplicate", duplicateID, "group_id", groupID, "actor", actor)

	transferred, err := c.driver.MergeNodes(ctx, &driver.MergeRequest{
		KeeperID:    keeperID,
		DuplicateID: duplicateID,
		GroupID:     groupID,
		Actor:       actor,
		Timestamp:   time.Now().In(c.config.TimeZone),
	})
	if err != nil {
		if errors.Is(err, types.ErrNodeNotFound) {
			return nil, err
		}
		return nil, NewStoreError("merge nodes", err)
	}

	c.logger.Info("Merged entity pair", "keeper", keeperID, "duplicate", duplicateID, "relationships_transferred", transferred)

	return &types.MergeResult{
		Message:                  fmt.Sprintf("Successfully merged entity %s into %s", duplicateID, keeperID),
		EntityID:                 keeperID,
		MergedID:                 duplicateID,
		RelationshipsTransferred: transferred,
	}, nil
}
