package llm_test

import (
	"strings"
	"testing"

	"github.com/signalnine/trajscope/internal/llm"
)

func TestParseVerdictBareJSON(t *testing.T) {
	v := llm.ParseVerdict(`{"primary_category": "wrong_tool", "sub_category": "cancel vs update", "explanation": "Called cancel_reservation instead of update."}`)
	if v.PrimaryCategory != "wrong_tool" {
		t.Errorf("got %q, want wrong_tool", v.PrimaryCategory)
	}
	if v.SubCategory != "cancel vs update" {
		t.Errorf("unexpected sub_category %q", v.SubCategory)
	}
}

func TestParseVerdictMarkdownFences(t *testing.T) {
	input := "```json\n{\"primary_category\": \"policy_violation\", \"sub_category\": \"basic economy\", \"explanation\": \"Modified a basic economy booking.\"}\n```"
	v := llm.ParseVerdict(input)
	if v.PrimaryCategory != "policy_violation" {
		t.Errorf("got %q, want policy_violation", v.PrimaryCategory)
	}
}

func TestParseVerdictFencesWithoutLanguage(t *testing.T) {
	input := "```\n{\"primary_category\": \"wrong_arguments\", \"sub_category\": \"id\", \"explanation\": \"Wrong reservation id.\"}\n```"
	v := llm.ParseVerdict(input)
	if v.PrimaryCategory != "wrong_arguments" {
		t.Errorf("got %q, want wrong_arguments", v.PrimaryCategory)
	}
}

func TestParseVerdictSurroundingProse(t *testing.T) {
	input := `Looking at this failure, the agent clearly misread the policy.

{"primary_category": "reasoning_failure", "sub_category": "wrong plan", "explanation": "Planned the wrong sequence."}

Hope that helps!`
	v := llm.ParseVerdict(input)
	if v.PrimaryCategory != "reasoning_failure" {
		t.Errorf("got %q, want reasoning_failure", v.PrimaryCategory)
	}
}

func TestParseVerdictUnparseable(t *testing.T) {
	v := llm.ParseVerdict("The agent failed because it called the wrong tool.")
	if v.PrimaryCategory != "parse_error" {
		t.Fatalf("got %q, want parse_error", v.PrimaryCategory)
	}
	if !strings.Contains(v.Explanation, "Could not parse LLM response") {
		t.Errorf("unexpected explanation %q", v.Explanation)
	}
	if !strings.Contains(v.Explanation, "wrong tool") {
		t.Errorf("explanation should carry a response preview: %q", v.Explanation)
	}
}

func TestParseVerdictTruncatesPreview(t *testing.T) {
	v := llm.ParseVerdict(strings.Repeat("z", 1000))
	if len(v.Explanation) > len("Could not parse LLM response: ")+200 {
		t.Errorf("preview not truncated: %d chars", len(v.Explanation))
	}
}

func TestParseVerdictJSONWithoutCategoryKey(t *testing.T) {
	v := llm.ParseVerdict(`{"category": "wrong_tool"}`)
	if v.PrimaryCategory != "parse_error" {
		t.Errorf("object without primary_category should be a parse error, got %q", v.PrimaryCategory)
	}
}
