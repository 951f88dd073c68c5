// Package prompt renders one failed trajectory entry into the diagnostic
// prompt sent to the classifier. The prompt carries both the ground truth
// and the actual conversation: without ground truth the classifier would
// have to guess what correct looks like and hallucinate plausible errors.
package prompt

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/signalnine/trajscope/internal/taxonomy"
	"github.com/signalnine/trajscope/internal/trajectory"
)

// MaxAPIOutputLen bounds user-role tool-result messages in the rendered
// conversation. Tool results can be huge JSON blobs.
const MaxAPIOutputLen = 500

// maxPolicyFallback is used when the system prompt has no tool-schema
// marker to cut at.
const maxPolicyFallback = 3000

var (
	thinkRe  = regexp.MustCompile(`(?s)<think>.*?</think>\s*`)
	actionRe = regexp.MustCompile(`(?s)Action:\s*(\{.*\})`)
)

// ExtractPolicy pulls the policy rules from a system prompt, cutting at the
// tool-schema section. The system prompt is huge because it includes full
// JSON schemas for every tool; only the policy section is worth sending.
func ExtractPolicy(systemContent string) string {
	lower := strings.ToLower(systemContent)
	idx := strings.Index(lower, "available tools")
	if idx >= 0 {
		cut := idx
		// The marker is usually a markdown heading; drop its hash prefix too.
		for cut > 0 && (systemContent[cut-1] == ' ' || systemContent[cut-1] == '#') {
			cut--
		}
		return strings.TrimSpace(systemContent[:cut])
	}
	if len(systemContent) > maxPolicyFallback {
		return systemContent[:maxPolicyFallback]
	}
	return systemContent
}

// FormatGroundTruth renders expected actions as a numbered list.
func FormatGroundTruth(actions []trajectory.Action) string {
	if len(actions) == 0 {
		return "No actions required — the agent should have refused the request " +
			"or correctly identified it as out of scope."
	}
	var lines []string
	for i, a := range actions {
		args, err := json.MarshalIndent(a.Arguments, "", "  ")
		if err != nil {
			args = []byte("{}")
		}
		lines = append(lines, fmt.Sprintf("%d. %s(%s)", i+1, a.Name, args))
	}
	return strings.Join(lines, "\n")
}

// FormatConversation renders conversation turns for the classifier.
//
// User-simulator <think> spans are stripped (simulator reasoning, not
// relevant to diagnosing agent errors); agent thinking stays since it shows
// reasoning failures. Long API outputs are truncated. Structured tool calls
// are appended to assistant content in readable form.
func FormatConversation(msgs []trajectory.Message) string {
	var lines []string
	for _, msg := range msgs {
		content := msg.Content

		if msg.Role == "user" && strings.Contains(content, "<think>") {
			content = thinkRe.ReplaceAllString(content, "")
		}

		if msg.Role == "user" && strings.HasPrefix(content, "API output:") &&
			len(content) > MaxAPIOutputLen {
			content = content[:MaxAPIOutputLen] + " ... [truncated]"
		}

		if msg.Role == "assistant" && len(msg.ToolCalls) > 0 {
			var tcLines []string
			for _, tc := range msg.ToolCalls {
				tcLines = append(tcLines, fmt.Sprintf("  [Tool Call] %s(%s)",
					tc.Function.Name, tc.Function.Arguments))
			}
			content = strings.TrimSpace(content + "\n" + strings.Join(tcLines, "\n"))
		}

		content = strings.TrimSpace(content)
		if content == "" {
			continue
		}
		lines = append(lines, fmt.Sprintf("[%s]: %s", strings.ToUpper(msg.Role), content))
	}
	return strings.Join(lines, "\n\n")
}

// Build produces the full classification prompt for one failure case.
func Build(entry *trajectory.Entry) string {
	instruction := "No instruction available"
	var gtActions []trajectory.Action
	if entry.Info.Task != nil {
		if entry.Info.Task.Instruction != "" {
			instruction = entry.Info.Task.Instruction
		}
		gtActions = entry.Info.Task.Actions
	}

	policy := "No policy available"
	if len(entry.Traj) > 0 && entry.Traj[0].Role == "system" {
		policy = ExtractPolicy(entry.Traj[0].Content)
	}

	var conv []trajectory.Message
	for _, m := range entry.Traj {
		if m.Role != "system" {
			conv = append(conv, m)
		}
	}

	return fmt.Sprintf(`You are an expert evaluator analyzing a FAILED AI agent interaction from the tau-bench benchmark.

The agent was supposed to help a simulated user with a customer service task but FAILED (reward = 0).
Your job: figure out WHY it failed by comparing what the agent did vs what it should have done.

## User's Goal
%s

## Expected Solution (Ground Truth)
These are the correct actions the agent should have taken:
%s

## Domain Policy (Rules the Agent Must Follow)
%s

## Actual Conversation
%s

## Error Taxonomy
Classify this failure into EXACTLY ONE of these categories:
%s

Respond with ONLY valid JSON, nothing else:
{"primary_category": "<category_id>", "sub_category": "<brief specific sub-type>", "explanation": "<1-2 sentence explanation>"}`,
		instruction,
		FormatGroundTruth(gtActions),
		policy,
		FormatConversation(conv),
		taxonomy.Render())
}

// AgentAction is a tool call the agent actually made. Arguments keeps the
// decoded object when the call's argument string parses, otherwise the raw
// string.
type AgentAction struct {
	Name      string `json:"name"`
	Arguments any    `json:"arguments"`
}

// AgentActions parses what tools the agent called from the trajectory.
//
// Two formats appear in the data: the FC format carries a structured
// tool_calls array, ACT/ReAct put `Action:\n{...}` inside assistant content.
func AgentActions(traj []trajectory.Message) []AgentAction {
	var actions []AgentAction
	for _, msg := range traj {
		if msg.Role != "assistant" {
			continue
		}

		if len(msg.ToolCalls) > 0 {
			for _, tc := range msg.ToolCalls {
				name := tc.Function.Name
				if name == "" {
					name = "unknown"
				}
				if name == "respond" || name == "unknown" {
					continue
				}
				var args any
				if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
					args = tc.Function.Arguments
				}
				actions = append(actions, AgentAction{Name: name, Arguments: args})
			}
			continue
		}

		m := actionRe.FindStringSubmatch(msg.Content)
		if m == nil {
			continue
		}
		var decoded map[string]any
		if err := json.Unmarshal([]byte(m[1]), &decoded); err != nil {
			continue
		}
		name, _ := decoded["name"].(string)
		if name == "" || name == "respond" {
			continue
		}
		args := decoded["arguments"]
		if args == nil {
			args = decoded["kwargs"]
		}
		actions = append(actions, AgentAction{Name: name, Arguments: args})
	}
	return actions
}
