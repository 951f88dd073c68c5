package runstate

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// State is the lifecycle of one file's classification run.
type State int

const (
	NotStarted State = iota
	InProgress
	Complete
)

// Store keeps results and checkpoints as JSON files under one directory,
// keyed by config label. Exactly one run controller owns a key at a time.
type Store struct {
	dir string
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) Dir() string { return s.dir }

func (s *Store) resultPath(key string) string {
	return filepath.Join(s.dir, key+".json")
}

func (s *Store) checkpointPath(key string) string {
	return filepath.Join(s.dir, key+".partial.json")
}

// State reports where a key's run stands: a final result means Complete, a
// leftover checkpoint means a prior run was interrupted mid-file.
func (s *Store) State(key string) State {
	if _, err := os.Stat(s.resultPath(key)); err == nil {
		return Complete
	}
	if _, err := os.Stat(s.checkpointPath(key)); err == nil {
		return InProgress
	}
	return NotStarted
}

func (s *Store) LoadResult(key string) (*Result, error) {
	data, err := os.ReadFile(s.resultPath(key))
	if err != nil {
		return nil, fmt.Errorf("reading result %s: %w", key, err)
	}
	var r Result
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parsing result %s: %w", key, err)
	}
	return &r, nil
}

// LoadCheckpoint returns the classifications accumulated before a crash.
func (s *Store) LoadCheckpoint(key string) ([]ClassifiedCase, error) {
	data, err := os.ReadFile(s.checkpointPath(key))
	if err != nil {
		return nil, fmt.Errorf("reading checkpoint %s: %w", key, err)
	}
	var cp checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, fmt.Errorf("parsing checkpoint %s: %w", key, err)
	}
	return cp.Classifications, nil
}

// SaveCheckpoint persists progress. Called after every successful
// classification so at most one in-flight call is lost on restart.
func (s *Store) SaveCheckpoint(key string, cases []ClassifiedCase) error {
	data, err := json.Marshal(checkpoint{Classifications: cases})
	if err != nil {
		return fmt.Errorf("marshaling checkpoint: %w", err)
	}
	return os.WriteFile(s.checkpointPath(key), data, 0o644)
}

// SaveResult writes the final result and removes the checkpoint.
func (s *Store) SaveResult(key string, r *Result) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling result: %w", err)
	}
	if err := os.WriteFile(s.resultPath(key), data, 0o644); err != nil {
		return fmt.Errorf("writing result %s: %w", key, err)
	}
	if err := os.Remove(s.checkpointPath(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing checkpoint %s: %w", key, err)
	}
	return nil
}

// ClearCheckpoint discards a stale checkpoint (used with forced re-runs).
func (s *Store) ClearCheckpoint(key string) error {
	if err := os.Remove(s.checkpointPath(key)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
