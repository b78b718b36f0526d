// Package prompts builds the language model prompts used for duplicate
// confirmation, together with the response schemas the model must follow.
package prompts

import (
	"fmt"
	"strings"

	"github.com/soundprediction/dedupe/pkg/nlp"
	"github.com/soundprediction/dedupe/pkg/types"
)

// DuplicateResult is a single candidate the model judged to be a duplicate.
type DuplicateResult struct {
	CandidateID   string `json:"candidate_id"`
	Justification string `json:"justification"`
}

// DuplicateResultList is the structured response schema for duplicate
// confirmation.
type DuplicateResultList struct {
	Duplicates []DuplicateResult `json:"duplicates"`
}

const confirmDuplicatesSystemPrompt = "You are an expert at entity deduplication. " +
	"Return a valid JSON object with a 'duplicates' field, which is a list of objects " +
	"with 'candidate_id' and 'justification'."

// ConfirmDuplicates builds the messages asking the model which of the
// candidates are duplicates of the target entity.
func ConfirmDuplicates(entity *types.Node, candidates []*types.Node) []types.Message {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Target Entity:\nID: %s\nName: %s\nDescription: %s\n\n",
		entity.Uuid, entity.Name, entity.Summary)

	sb.WriteString("Candidates:\n")
	for _, cand := range candidates {
		fmt.Fprintf(&sb, "ID: %s, Name: %s, Description: %s\n",
			cand.Uuid, cand.Name, cand.Summary)
	}

	sb.WriteString("\n" +
		"Return a JSON object with a 'duplicates' field, which is a list of objects. " +
		"Each object should have 'candidate_id' and 'justification' fields, for each candidate " +
		"you consider a duplicate of the target entity. " +
		"Only include candidates that are likely duplicates.")

	return []types.Message{
		nlp.NewSystemMessage(confirmDuplicatesSystemPrompt),
		nlp.NewUserMessage(sb.String()),
	}
}
