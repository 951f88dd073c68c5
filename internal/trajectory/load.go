package trajectory

import (
	"encoding/json"
	"fmt"
	"os"
)

// Load reads a trajectory file: a JSON array with one element per
// (task, trial) attempt.
func Load(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading trajectory file: %w", err)
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing trajectory file %s: %w", path, err)
	}
	return entries, nil
}

// CountTasks returns the number of distinct task ids in a file.
func CountTasks(entries []Entry) int {
	seen := make(map[int]struct{}, len(entries))
	for _, e := range entries {
		seen[e.TaskID] = struct{}{}
	}
	return len(seen)
}

// CountFailures returns the number of zero-reward entries, counting every
// trial separately.
func CountFailures(entries []Entry) int {
	n := 0
	for i := range entries {
		if entries[i].Failed() {
			n++
		}
	}
	return n
}
