// Package taxonomy defines the closed set of failure-cause categories the
// classifier picks from. Edit here to change them.
package taxonomy

import (
	"fmt"
	"strings"
)

const (
	WrongTool            = "wrong_tool"
	WrongArguments       = "wrong_arguments"
	PolicyViolation      = "policy_violation"
	IncompleteExecution  = "incomplete_execution"
	PrematureEscalation  = "premature_escalation"
	InformationError     = "information_error"
	ReasoningFailure     = "reasoning_failure"
	UserSimulatorError   = "user_simulator_error"
	ContextOrFormatError = "context_or_format_error"

	// Sentinels recorded when the classification call itself went wrong.
	ParseError = "parse_error"
	APIError   = "api_error"

	// Coercion target for verdicts naming a category outside the set.
	Other = "other"
)

type category struct {
	id          string
	description string
}

// Ordered so the prompt rendering is stable across runs.
var categories = []category{
	{WrongTool, "Agent called the wrong tool entirely " +
		"(e.g., cancel_reservation when it should have called update_reservation_flights)"},
	{WrongArguments, "Correct tool but wrong parameters " +
		"(e.g., wrong reservation_id, wrong payment_method, wrong flight number, wrong date)"},
	{PolicyViolation, "Agent violated a domain rule " +
		"(e.g., modifying basic economy, cancelling without insurance, giving unauthorized refund, " +
		"skipping user authentication)"},
	{IncompleteExecution, "Agent completed some but not all required actions " +
		"(e.g., changed flights but forgot to update baggage or passengers)"},
	{PrematureEscalation, "Agent transferred to a human agent when it could have handled the request " +
		"with available tools"},
	{InformationError, "Agent gave the user incorrect information (wrong price, wrong policy detail, " +
		"wrong flight status) which affected the conversation outcome"},
	{ReasoningFailure, "Agent misunderstood user intent or made a wrong plan despite having " +
		"correct information available from tools and conversation"},
	{UserSimulatorError, "The user simulator gave ambiguous, contradictory, or hallucinated instructions " +
		"that caused the agent to fail through no fault of its own"},
	{ContextOrFormatError, "Conversation cut short (context window overflow), malformed JSON action, " +
		"or other infrastructure/parsing failure"},
}

// Categories returns the category ids in prompt order, sentinels excluded.
func Categories() []string {
	ids := make([]string, len(categories))
	for i, c := range categories {
		ids[i] = c.id
	}
	return ids
}

// Valid reports whether cat is a taxonomy member or a sentinel.
func Valid(cat string) bool {
	for _, c := range categories {
		if c.id == cat {
			return true
		}
	}
	return cat == ParseError || cat == APIError
}

// Normalize coerces a category outside the closed set to Other. Members and
// sentinels pass through unchanged.
func Normalize(cat string) string {
	if Valid(cat) {
		return cat
	}
	return Other
}

// Render produces the one-line-per-category taxonomy block for the
// classifier prompt.
func Render() string {
	var b strings.Builder
	for i, c := range categories {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "  - %s: %s", c.id, c.description)
	}
	return b.String()
}
