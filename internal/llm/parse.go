package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var (
	fencedJSONRe = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")
	verdictObjRe = regexp.MustCompile(`\{[^{}]*"primary_category"[^{}]*\}`)
)

// ParseVerdict extracts the classification JSON from a model response.
// Models sometimes wrap the object in markdown fences or surrounding prose,
// so parsing is layered: bare JSON, fenced block, then the smallest object
// literal naming primary_category. When nothing parses the result is a
// parse_error verdict carrying a preview of the response — still valid
// output, easy to spot in the results.
func ParseVerdict(text string) Verdict {
	text = strings.TrimSpace(text)

	if v, ok := tryParse(text); ok {
		return v
	}
	if m := fencedJSONRe.FindStringSubmatch(text); m != nil {
		if v, ok := tryParse(m[1]); ok {
			return v
		}
	}
	if m := verdictObjRe.FindString(text); m != "" {
		if v, ok := tryParse(m); ok {
			return v
		}
	}

	return Verdict{
		PrimaryCategory: "parse_error",
		SubCategory:     "none",
		Explanation:     fmt.Sprintf("Could not parse LLM response: %s", truncate(text, 200)),
	}
}

func tryParse(text string) (Verdict, bool) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return Verdict{}, false
	}
	if _, ok := raw["primary_category"]; !ok {
		return Verdict{}, false
	}
	var v Verdict
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return Verdict{}, false
	}
	return v, true
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
