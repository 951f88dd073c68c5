package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/signalnine/trajscope/internal/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "trajscope.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoadFull(t *testing.T) {
	path := writeConfig(t, `
trajectories:
  dir: /data/runs
output:
  dir: /data/out
classify:
  provider: openai
  model: gpt-4o
  model_size: 32b
  sample_size: 25
  delay_seconds: 1.5
  seed: 7
  max_response_tokens: 500
secrets:
  env_file: .env.local
log:
  level: debug
`)
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Trajectories.Dir != "/data/runs" {
		t.Errorf("expected trajectories dir /data/runs, got %q", cfg.Trajectories.Dir)
	}
	if cfg.Output.Dir != "/data/out" {
		t.Errorf("expected output dir /data/out, got %q", cfg.Output.Dir)
	}
	if cfg.Classify.Provider != "openai" {
		t.Errorf("expected provider openai, got %q", cfg.Classify.Provider)
	}
	if cfg.Classify.Model != "gpt-4o" {
		t.Errorf("expected model gpt-4o, got %q", cfg.Classify.Model)
	}
	if cfg.Classify.SampleSize != 25 {
		t.Errorf("expected sample_size 25, got %d", cfg.Classify.SampleSize)
	}
	if cfg.Classify.DelaySeconds != 1.5 {
		t.Errorf("expected delay 1.5, got %f", cfg.Classify.DelaySeconds)
	}
	if cfg.Classify.Seed != 7 {
		t.Errorf("expected seed 7, got %d", cfg.Classify.Seed)
	}
	if cfg.Secrets.EnvFile != ".env.local" {
		t.Errorf("expected env_file .env.local, got %q", cfg.Secrets.EnvFile)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("expected log level debug, got %q", cfg.Log.Level)
	}
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, "trajectories:\n  dir: ./runs\n")
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Classify.Provider != "anthropic" {
		t.Errorf("expected default provider anthropic, got %q", cfg.Classify.Provider)
	}
	if cfg.Classify.SampleSize != 50 {
		t.Errorf("expected default sample_size 50, got %d", cfg.Classify.SampleSize)
	}
	if cfg.Classify.DelaySeconds != 0.5 {
		t.Errorf("expected default delay 0.5, got %f", cfg.Classify.DelaySeconds)
	}
	if cfg.Classify.Seed != 42 {
		t.Errorf("expected default seed 42, got %d", cfg.Classify.Seed)
	}
	if cfg.Classify.MaxResponseTokens != 300 {
		t.Errorf("expected default max_response_tokens 300, got %d", cfg.Classify.MaxResponseTokens)
	}
	if cfg.Output.Dir != "./results" {
		t.Errorf("expected default output dir ./results, got %q", cfg.Output.Dir)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("expected default log level info, got %q", cfg.Log.Level)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Trajectories.Dir != "./trajectories" {
		t.Errorf("expected default trajectories dir, got %q", cfg.Trajectories.Dir)
	}
	if cfg.Classify.Provider != "anthropic" {
		t.Errorf("expected default provider, got %q", cfg.Classify.Provider)
	}
}

func TestLoadRejectsBadProvider(t *testing.T) {
	path := writeConfig(t, "classify:\n  provider: gemini\n")
	if _, err := config.Load(path); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestLoadRejectsBadLogLevel(t *testing.T) {
	path := writeConfig(t, "log:\n  level: verbose\n")
	if _, err := config.Load(path); err == nil {
		t.Fatal("expected error for bad log level")
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := writeConfig(t, "classify: [not\n")
	if _, err := config.Load(path); err == nil {
		t.Fatal("expected error for malformed yaml")
	}
}
