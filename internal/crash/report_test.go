package crash_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/signalnine/trajscope/internal/crash"
	"github.com/signalnine/trajscope/internal/trajectory"
)

func testReports() []*crash.FileReport {
	airline := crash.Scan([]trajectory.Entry{
		{TaskID: 1, Reward: reward(1.0), Traj: make([]trajectory.Message, 12)},
		{TaskID: 3, Info: trajectory.Info{
			Error: "ContextWindowExceededError: maximum context length is 8192 tokens. However, your request has 9000 input tokens.",
		}},
		{TaskID: 5, Info: trajectory.Info{Error: "APITimeoutError: Request timed out."}},
	}, trajectory.RunConfig{ModelSize: "14B", Strategy: "ACT", Domain: "airline"})

	retail := crash.Scan([]trajectory.Entry{
		{TaskID: 2, Reward: reward(0.0), Traj: make([]trajectory.Message, 40)},
		{TaskID: 9, Info: trajectory.Info{Error: "KeyError: 'user_id'\nTraceback..."}},
	}, trajectory.RunConfig{ModelSize: "4B", Strategy: "ReAct", Domain: "retail"})

	return []*crash.FileReport{airline, retail}
}

func TestRenderTable(t *testing.T) {
	var buf bytes.Buffer
	if err := crash.Render(testReports(), "table", &buf); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"Scanned 2 trajectory file(s): 5 entries, 3 crashes (60.0%)",
		"14B_ACT_airline",
		"4B_ReAct_retail",
		"CONFIG",
		"TOTAL",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("table output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderMarkdown(t *testing.T) {
	var buf bytes.Buffer
	if err := crash.Render(testReports(), "markdown", &buf); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"# Crash & Context Window Analysis",
		"## Per-File Summary",
		"## Context Window Exceeded — Detail",
		"| 14B_ACT_airline | 3 | 1 | 9000 | 8192 | +808 |",
		"## Other Crashes (Timeouts, Code Bugs)",
		"KeyError: 'user_id'",
		"## Cross-Model Crash Rates",
		"## Top 10 Longest Conversations",
		"| 4B_ReAct_retail | 2 | 0 | 40 | FAIL |",
		"| 14B_ACT_airline | 1 | 0 | 12 | PASS |",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown output missing %q", want)
		}
	}
}

func TestRenderMarkdownOmitsCrossModelForSingleSize(t *testing.T) {
	var buf bytes.Buffer
	reports := testReports()[:1]
	if err := crash.Render(reports, "markdown", &buf); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if strings.Contains(buf.String(), "Cross-Model") {
		t.Error("cross-model table should only appear with more than one model size")
	}
}

func TestRenderJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := crash.Render(testReports(), "json", &buf); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	var out struct {
		Totals struct {
			TotalEntries  int     `json:"total_entries"`
			TotalCrashes  int     `json:"total_crashes"`
			CrashRatePct  float64 `json:"crash_rate_pct"`
			ContextWindow int     `json:"context_window"`
			APITimeout    int     `json:"api_timeout"`
			Other         int     `json:"other"`
		} `json:"totals"`
		PerFile []struct {
			Config string `json:"config"`
		} `json:"per_file"`
		Crashes []struct {
			CrashType string `json:"crash_type"`
			OverBy    int    `json:"over_by"`
		} `json:"crashes"`
		CrossModel map[string]struct {
			TotalCrashes int `json:"total_crashes"`
		} `json:"cross_model"`
	}
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid json output: %v", err)
	}
	if out.Totals.TotalEntries != 5 || out.Totals.TotalCrashes != 3 {
		t.Errorf("unexpected totals: %+v", out.Totals)
	}
	if out.Totals.CrashRatePct != 60.0 {
		t.Errorf("expected crash rate 60.0, got %f", out.Totals.CrashRatePct)
	}
	if out.Totals.ContextWindow != 1 || out.Totals.APITimeout != 1 || out.Totals.Other != 1 {
		t.Errorf("unexpected type counts: %+v", out.Totals)
	}
	if len(out.PerFile) != 2 {
		t.Errorf("expected 2 per-file records, got %d", len(out.PerFile))
	}
	if len(out.Crashes) != 3 {
		t.Fatalf("expected 3 crash records, got %d", len(out.Crashes))
	}
	if out.Crashes[0].OverBy != 808 {
		t.Errorf("expected over_by 808, got %d", out.Crashes[0].OverBy)
	}
	if len(out.CrossModel) != 2 {
		t.Errorf("expected 2 cross-model entries, got %d", len(out.CrossModel))
	}
}
