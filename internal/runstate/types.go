// Package runstate persists per-file classification results and the
// in-progress checkpoint that makes a killed run resumable.
package runstate

import (
	"github.com/signalnine/trajscope/internal/llm"
	"github.com/signalnine/trajscope/internal/prompt"
	"github.com/signalnine/trajscope/internal/trajectory"
)

// ClassifiedCase is one classified failure as stored in result and
// checkpoint files.
type ClassifiedCase struct {
	TaskID             int                  `json:"task_id"`
	Trial              int                  `json:"trial"`
	Instruction        string               `json:"instruction"`
	GroundTruthActions []trajectory.Action  `json:"ground_truth_actions"`
	AgentActions       []prompt.AgentAction `json:"agent_actions"`
	Classification     llm.Verdict          `json:"classification"`
}

// CategoryStat is the per-category slice of a file summary.
type CategoryStat struct {
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

type FileStats struct {
	TotalTasks            int `json:"total_tasks"`
	TotalFailuresInFile   int `json:"total_failures_in_file"`
	UniqueFailuresSampled int `json:"unique_failures_sampled"`
}

// Result is the final output for one trajectory file.
type Result struct {
	Config          string                  `json:"config"`
	File            string                  `json:"file"`
	Stats           FileStats               `json:"stats"`
	Summary         map[string]CategoryStat `json:"summary"`
	Classifications []ClassifiedCase        `json:"classifications"`
}

// checkpoint is the sidecar written after every classification call.
type checkpoint struct {
	Classifications []ClassifiedCase `json:"classifications"`
}
