package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/signalnine/trajscope/cmd"
)

// createFixtureData writes a minimal trajectory directory plus a config file
// pointing at it, for CLI-level tests.
func createFixtureData(t *testing.T) (trajDir, cfgPath string) {
	t.Helper()
	base := t.TempDir()
	trajDir = filepath.Join(base, "trajectories")
	if err := os.MkdirAll(trajDir, 0o755); err != nil {
		t.Fatal(err)
	}

	content := `[
  {"task_id": 1, "trial": 0, "reward": 1.0,
   "info": {"task": {"instruction": "x", "actions": []}},
   "traj": [{"role": "user", "content": "hi"}]},
  {"task_id": 2, "trial": 0, "reward": 0.0,
   "info": {"task": {"instruction": "y", "actions": [{"name": "do_it", "kwargs": {}}]}},
   "traj": [{"role": "system", "content": "Policy."}, {"role": "user", "content": "please"}]},
  {"task_id": 3, "trial": 0,
   "info": {"error": "ContextWindowExceededError: maximum context length is 8192 tokens. However, your request has 9000 input tokens."},
   "traj": []}
]`
	if err := os.WriteFile(filepath.Join(trajDir, "airline_act-Qwen3-14B.json"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfgPath = filepath.Join(base, "trajscope.yaml")
	cfgContent := "trajectories:\n  dir: " + trajDir + "\noutput:\n  dir: " + filepath.Join(base, "results") + "\n"
	if err := os.WriteFile(cfgPath, []byte(cfgContent), 0o644); err != nil {
		t.Fatal(err)
	}
	return trajDir, cfgPath
}

func runCLI(t *testing.T, args ...string) error {
	t.Helper()
	root := cmd.NewRootCmd()
	root.SetArgs(args)
	root.SilenceUsage = true
	return root.Execute()
}

func TestListCommand(t *testing.T) {
	_, cfgPath := createFixtureData(t)
	if err := runCLI(t, "--config", cfgPath, "list"); err != nil {
		t.Fatalf("list failed: %v", err)
	}
}

func TestValidateCommand(t *testing.T) {
	_, cfgPath := createFixtureData(t)
	if err := runCLI(t, "--config", cfgPath, "validate"); err != nil {
		t.Fatalf("validate failed: %v", err)
	}
}

func TestCrashesCommandWritesJSONReport(t *testing.T) {
	_, cfgPath := createFixtureData(t)
	jsonOut := filepath.Join(t.TempDir(), "crashes.json")
	if err := runCLI(t, "--config", cfgPath, "crashes", "--json-output", jsonOut); err != nil {
		t.Fatalf("crashes failed: %v", err)
	}

	data, err := os.ReadFile(jsonOut)
	if err != nil {
		t.Fatalf("json report not written: %v", err)
	}
	var report struct {
		Totals struct {
			TotalEntries  int `json:"total_entries"`
			TotalCrashes  int `json:"total_crashes"`
			ContextWindow int `json:"context_window"`
		} `json:"totals"`
	}
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatalf("invalid json report: %v", err)
	}
	if report.Totals.TotalEntries != 3 || report.Totals.TotalCrashes != 1 || report.Totals.ContextWindow != 1 {
		t.Errorf("unexpected totals: %+v", report.Totals)
	}
}

func TestClassifyDryRun(t *testing.T) {
	_, cfgPath := createFixtureData(t)
	if err := runCLI(t, "--config", cfgPath, "classify", "--dry-run"); err != nil {
		t.Fatalf("classify --dry-run failed: %v", err)
	}
}

func TestCrashesCommandMissingDir(t *testing.T) {
	base := t.TempDir()
	cfgPath := filepath.Join(base, "trajscope.yaml")
	if err := os.WriteFile(cfgPath, []byte("trajectories:\n  dir: "+filepath.Join(base, "nope")+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := runCLI(t, "--config", cfgPath, "crashes"); err == nil {
		t.Fatal("expected error for missing trajectory dir")
	}
}
