package prompts

import (
	"strings"
	"testing"

	"github.com/soundprediction/dedupe/pkg/nlp"
	"github.com/soundprediction/dedupe/pkg/types"
)

func TestConfirmDuplicates(t *testing.T) {
	entity := &types.Node{
		Uuid:    "e-1",
		Name:    "John Smith",
		Summary: "Software engineer in Boston",
	}
	candidates := []*types.Node{
		{Uuid: "c-1", Name: "Jon Smith", Summary: "Engineer, Boston area"},
		{Uuid: "c-2", Name: "Jane Doe", Summary: "Designer"},
	}

	messages := ConfirmDuplicates(entity, candidates)

	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}

	if messages[0].Role != nlp.RoleSystem {
		t.Errorf("first message role = %q, want system", messages[0].Role)
	}
	if !strings.Contains(messages[0].Content, "entity deduplication") {
		t.Errorf("system prompt missing task description: %s", messages[0].Content)
	}

	user := messages[1]
	if user.Role != nlp.RoleUser {
		t.Errorf("second message role = %q, want user", user.Role)
	}

	for _, want := range []string{
		"Target Entity:",
		"ID: e-1",
		"Name: John Smith",
		"Description: Software engineer in Boston",
		"Candidates:",
		"ID: c-1, Name: Jon Smith, Description: Engineer, Boston area",
		"ID: c-2, Name: Jane Doe, Description: Designer",
		"'duplicates' field",
		"'candidate_id' and 'justification'",
	} {
		if !strings.Contains(user.Content, want) {
			t.Errorf("user prompt missing %q", want)
		}
	}
}

func TestConfirmDuplicates_NoCandidates(t *testing.T) {
	entity := &types.Node{Uuid: "e-1", Name: "Solo", Summary: "No matches"}

	messages := ConfirmDuplicates(entity, nil)

	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}
	if !strings.Contains(messages[1].Content, "Candidates:") {
		t.Error("user prompt missing candidates section")
	}
}
