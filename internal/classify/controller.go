// Package classify drives one trajectory file through sampling,
// classification, and persistence, checkpointing after every call so a
// killed process resumes without re-spending API budget.
package classify

import (
	"context"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/signalnine/trajscope/internal/llm"
	"github.com/signalnine/trajscope/internal/prompt"
	"github.com/signalnine/trajscope/internal/runstate"
	"github.com/signalnine/trajscope/internal/sampler"
	"github.com/signalnine/trajscope/internal/trajectory"
	"go.uber.org/zap"
)

type Options struct {
	SampleSize int
	Seed       int
	Delay      time.Duration
	Force      bool
}

// ProcessFile runs the full pipeline for one trajectory file:
// load -> sample -> classify -> save. A completed file is returned from
// storage without any API calls unless Force is set; an interrupted run
// resumes at the first unclassified index, which is safe because the sample
// is deterministic for a fixed seed.
func ProcessFile(ctx context.Context, file trajectory.File, client llm.Client, store *runstate.Store, opts Options, log *zap.Logger, out io.Writer) (*runstate.Result, error) {
	key := file.Config.Label()

	if !opts.Force && store.State(key) == runstate.Complete {
		fmt.Fprintf(out, "\n-- Skipping %s (already done, use --force to redo)\n", key)
		return store.LoadResult(key)
	}

	entries, err := trajectory.Load(file.Path)
	if err != nil {
		return nil, err
	}
	failures, stats := sampler.Sample(entries, opts.SampleSize, opts.Seed)

	fmt.Fprintf(out, "\nConfig: %s\nFile:   %s\n", key, file.Path)
	fmt.Fprintf(out, "  %d tasks total, %d unique failures sampled\n", stats.TotalTasks, stats.UniqueSampled)

	if len(failures) == 0 {
		fmt.Fprintln(out, "  No failures found, skipping")
		return nil, nil
	}

	var cases []runstate.ClassifiedCase
	startIdx := 0
	if opts.Force {
		if err := store.ClearCheckpoint(key); err != nil {
			return nil, fmt.Errorf("clearing checkpoint %s: %w", key, err)
		}
	} else if store.State(key) == runstate.InProgress {
		cases, err = store.LoadCheckpoint(key)
		if err != nil {
			return nil, err
		}
		startIdx = len(cases)
		fmt.Fprintf(out, "  Resuming from classification %d/%d\n", startIdx, len(failures))
	}

	for i := startIdx; i < len(failures); i++ {
		entry := failures[i]
		fmt.Fprintf(out, "  [%d/%d] task_id=%d ... ", i+1, len(failures), entry.TaskID)

		// Safety net: a crashed run has no ground truth to judge against.
		if entry.Info.Task == nil {
			fmt.Fprintln(out, "-> SKIPPED (no ground truth, crashed run)")
			log.Warn("skipping entry without ground truth",
				zap.String("config", key), zap.Int("task_id", entry.TaskID))
			continue
		}

		verdict := llm.ClassifyOne(ctx, client, prompt.Build(&entry), opts.Delay, log)
		cases = append(cases, runstate.ClassifiedCase{
			TaskID:             entry.TaskID,
			Trial:              entry.Trial,
			Instruction:        entry.Info.Task.Instruction,
			GroundTruthActions: entry.Info.Task.Actions,
			AgentActions:       prompt.AgentActions(entry.Traj),
			Classification:     verdict,
		})
		fmt.Fprintf(out, "-> %s\n", verdict.PrimaryCategory)

		if err := store.SaveCheckpoint(key, cases); err != nil {
			return nil, fmt.Errorf("saving checkpoint %s: %w", key, err)
		}
	}

	result := &runstate.Result{
		Config: key,
		File:   file.Path,
		Stats: runstate.FileStats{
			TotalTasks:            stats.TotalTasks,
			TotalFailuresInFile:   stats.TotalFailures,
			UniqueFailuresSampled: stats.UniqueSampled,
		},
		Summary:         Summarize(cases),
		Classifications: cases,
	}
	if err := store.SaveResult(key, result); err != nil {
		return nil, err
	}
	fmt.Fprintf(out, "  Saved: %s\n", key+".json")
	return result, nil
}

// Summarize counts verdicts per category with percentages.
func Summarize(cases []runstate.ClassifiedCase) map[string]runstate.CategoryStat {
	counts := map[string]int{}
	for _, c := range cases {
		counts[c.Classification.PrimaryCategory]++
	}
	summary := make(map[string]runstate.CategoryStat, len(counts))
	for cat, n := range counts {
		pct := 0.0
		if len(cases) > 0 {
			pct = math.Round(1000*float64(n)/float64(len(cases))) / 10
		}
		summary[cat] = runstate.CategoryStat{Count: n, Percentage: pct}
	}
	return summary
}
