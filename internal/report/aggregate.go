// Package report combines per-file classification results into the
// cross-configuration summary and representative-example extracts consumed
// downstream. Everything here is a pure function of already-persisted
// results; no classification or API activity happens at this stage.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/signalnine/trajscope/internal/llm"
	"github.com/signalnine/trajscope/internal/prompt"
	"github.com/signalnine/trajscope/internal/runstate"
	"github.com/signalnine/trajscope/internal/trajectory"
)

// Combine maps each configuration label to its category summary.
func Combine(results map[string]*runstate.Result) map[string]map[string]runstate.CategoryStat {
	combined := make(map[string]map[string]runstate.CategoryStat)
	for label, r := range results {
		if r == nil || r.Summary == nil {
			continue
		}
		combined[label] = r.Summary
	}
	return combined
}

// Example is one representative classified failure.
type Example struct {
	Config             string               `json:"config"`
	TaskID             int                  `json:"task_id"`
	Instruction        string               `json:"instruction"`
	GroundTruthActions []trajectory.Action  `json:"ground_truth_actions"`
	AgentActions       []prompt.AgentAction `json:"agent_actions"`
	Classification     llm.Verdict          `json:"classification"`
}

// Examples pulls up to perCategory representative failures per taxonomy
// category, preferring the shortest explanations — usually the clearest.
func Examples(results map[string]*runstate.Result, perCategory int) map[string][]Example {
	byCategory := make(map[string][]Example)
	labels := make([]string, 0, len(results))
	for label := range results {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	for _, label := range labels {
		r := results[label]
		if r == nil {
			continue
		}
		for _, c := range r.Classifications {
			cat := c.Classification.PrimaryCategory
			byCategory[cat] = append(byCategory[cat], Example{
				Config:             label,
				TaskID:             c.TaskID,
				Instruction:        c.Instruction,
				GroundTruthActions: c.GroundTruthActions,
				AgentActions:       c.AgentActions,
				Classification:     c.Classification,
			})
		}
	}

	for cat, items := range byCategory {
		sort.SliceStable(items, func(i, j int) bool {
			return len(items[i].Classification.Explanation) < len(items[j].Classification.Explanation)
		})
		if len(items) > perCategory {
			items = items[:perCategory]
		}
		byCategory[cat] = items
	}
	return byCategory
}

// WriteCombined saves the combined summary under outDir.
func WriteCombined(outDir string, results map[string]*runstate.Result) (string, error) {
	path := filepath.Join(outDir, "combined_summary.json")
	if err := writeJSONFile(path, Combine(results)); err != nil {
		return "", err
	}
	return path, nil
}

// WriteExamples saves the representative examples under outDir/examples.
func WriteExamples(outDir string, results map[string]*runstate.Result, perCategory int) (string, error) {
	dir := filepath.Join(outDir, "examples")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating examples dir: %w", err)
	}
	path := filepath.Join(dir, "representative_examples.json")
	if err := writeJSONFile(path, Examples(results, perCategory)); err != nil {
		return "", err
	}
	return path, nil
}

func writeJSONFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// PrintSummary renders the end-of-run category breakdown per configuration
// with bar sparklines.
func PrintSummary(results map[string]*runstate.Result, w io.Writer) {
	labels := make([]string, 0, len(results))
	for label := range results {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	for _, label := range labels {
		r := results[label]
		if r == nil {
			continue
		}
		fmt.Fprintf(w, "\n%s:\n", label)

		cats := make([]string, 0, len(r.Summary))
		for cat := range r.Summary {
			cats = append(cats, cat)
		}
		sort.Slice(cats, func(i, j int) bool {
			si, sj := r.Summary[cats[i]], r.Summary[cats[j]]
			if si.Count != sj.Count {
				return si.Count > sj.Count
			}
			return cats[i] < cats[j]
		})

		for _, cat := range cats {
			s := r.Summary[cat]
			bar := strings.Repeat("#", int(s.Percentage/2))
			fmt.Fprintf(w, "  %-25s %3d (%5.1f%%) %s\n", cat, s.Count, s.Percentage, bar)
		}
	}
}
