// Package sampler selects which failed attempts from a trajectory file get
// classified. Selection is deterministic for a given seed so an interrupted
// classification run can resume against the identical sample.
package sampler

import (
	"math/rand"
	"sort"

	"github.com/signalnine/trajscope/internal/trajectory"
)

// Stats describes the file the sample was drawn from.
type Stats struct {
	TotalEntries  int
	TotalTasks    int
	TotalFailures int
	UniqueSampled int
}

// Sample filters a loaded trajectory file to classifiable failures,
// deduplicates by task id, and draws a seeded sample of at most size cases.
//
// A classifiable failure has reward 0.0, ground truth attached, and a
// non-empty conversation. Crashed entries carry info.error instead and have
// nothing to diagnose. Deduplication keeps the lowest trial per task id: a
// task that fails all trials is one failure pattern, not five.
func Sample(entries []trajectory.Entry, size, seed int) ([]trajectory.Entry, Stats) {
	stats := Stats{
		TotalEntries: len(entries),
		TotalTasks:   trajectory.CountTasks(entries),
	}

	byTask := make(map[int]trajectory.Entry)
	for i := range entries {
		e := entries[i]
		if e.Failed() {
			stats.TotalFailures++
		}
		if !e.Failed() || e.Info.Task == nil || len(e.Traj) == 0 {
			continue
		}
		kept, ok := byTask[e.TaskID]
		if !ok || e.Trial < kept.Trial {
			byTask[e.TaskID] = e
		}
	}

	unique := make([]trajectory.Entry, 0, len(byTask))
	for _, e := range byTask {
		unique = append(unique, e)
	}
	sort.Slice(unique, func(i, j int) bool { return unique[i].TaskID < unique[j].TaskID })

	if len(unique) <= size {
		stats.UniqueSampled = len(unique)
		return unique, stats
	}

	rng := rand.New(rand.NewSource(int64(seed)))
	sampled := make([]trajectory.Entry, 0, size)
	for _, idx := range rng.Perm(len(unique))[:size] {
		sampled = append(sampled, unique[idx])
	}
	stats.UniqueSampled = len(sampled)
	return sampled, stats
}
