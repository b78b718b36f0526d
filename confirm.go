package dedupe

import (
	"context"
	"fmt"
	"math"

	"github.com/soundprediction/dedupe/pkg/driver"
	"github.com/soundprediction/dedupe/pkg/nlp"
	"github.com/soundprediction/dedupe/pkg/prompts"
	"github.com/soundprediction/dedupe/pkg/types"
)

// ConfidenceFromScore maps a cosine similarity score onto a 0-10 confidence
// scale, rounded to one decimal place.
func ConfidenceFromScore(score float64) float64 {
	confidence := math.Round(score*100) / 10
	if confidence < 0 {
		return 0
	}
	if confidence > 10 {
		return 10
	}
	return confidence
}

// ConfirmDuplicates asks the language model which of the vector candidates
// are true duplicates of the entity. Candidate ids the model invents are
// ignored. The returned pairs carry a confidence derived from the vector
// score and a reasoning string combining the score with the model's
// justification.
func (c *Client) ConfirmDuplicates(ctx context.Context, entity *types.Node, candidates []*driver.ScoredNode) ([]types.DuplicatePair, error) {
	if len(candidates) == 0 {
		return nil, nil
	}
	if c.llm == nil {
		return nil, fmt.Errorf("no language model client configured")
	}

	candidateNodes := make([]*types.Node, len(candidates))
	scores := make(map[string]float64, len(candidates))
	byUuid := make(map[string]*types.Node, len(candidates))
	for i, sn := range candidates {
		candidateNodes[i] = sn.Node
		scores[sn.Node.Uuid] = sn.Score
		byUuid[sn.Node.Uuid] = sn.Node
	}

	messages := prompts.ConfirmDuplicates(entity, candidateNodes)

	resp, err := c.llm.ChatWithStructuredOutput(ctx, messages, prompts.DuplicateResultList{})
	if err != nil {
		return nil, nlp.NewInferenceError("confirm duplicates", err)
	}

	var result prompts.DuplicateResultList
	if err := nlp.UnmarshalStructuredResponse(resp.Content, &result); err != nil {
		return nil, err
	}

	var confirmed []types.DuplicatePair
	for _, dup := range result.Duplicates {
		cand, ok := byUuid[dup.CandidateID]
		if !ok {
			c.logger.Warn("model returned unknown candidate id", "candidate_id", dup.CandidateID, "entity", entity.Uuid)
			continue
		}
		score := scores[cand.Uuid]
		confirmed = append(confirmed, types.DuplicatePair{
			Entity1ID:       entity.Uuid,
			Entity1Name:     entity.Name,
			Entity2ID:       cand.Uuid,
			Entity2Name:     cand.Name,
			ConfidenceScore: ConfidenceFromScore(score),
			Reasoning:       fmt.Sprintf("Vector similarity score: %.3f. Model: %s", score, dup.Justification),
		})
	}
	return confirmed, nil
}
