// Package crash scans trajectory files for runs that terminated abnormally
// (context window overflow, API timeouts, code bugs) and summarizes them.
package crash

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/signalnine/trajscope/internal/trajectory"
)

const (
	TypeContextWindow = "context_window"
	TypeAPITimeout    = "api_timeout"
	TypeOther         = "other"
)

// Crash describes one crashed entry.
type Crash struct {
	Config     string `json:"config"`
	TaskID     int    `json:"task_id"`
	Trial      int    `json:"trial"`
	Type       string `json:"crash_type"`
	TokensUsed int    `json:"tokens_used,omitempty"`
	TokenLimit int    `json:"token_limit,omitempty"`
	Short      string `json:"error_short"`
}

// OverBy returns how far past the context limit the request went, or 0 when
// token counts were not extracted.
func (c Crash) OverBy() int {
	if c.TokensUsed == 0 || c.TokenLimit == 0 {
		return 0
	}
	return c.TokensUsed - c.TokenLimit
}

var (
	tokensUsedRe = regexp.MustCompile(`your request has (\d+) input tokens`)
	tokenLimitRe = regexp.MustCompile(`maximum context length is (\d+) tokens`)
)

// Categorize classifies a crash from its info.error string.
func Categorize(errMsg string) Crash {
	switch {
	case strings.Contains(errMsg, "ContextWindowExceeded"):
		c := Crash{Type: TypeContextWindow, Short: "Context window exceeded"}
		if m := tokensUsedRe.FindStringSubmatch(errMsg); m != nil {
			c.TokensUsed, _ = strconv.Atoi(m[1])
		}
		if m := tokenLimitRe.FindStringSubmatch(errMsg); m != nil {
			c.TokenLimit, _ = strconv.Atoi(m[1])
		}
		if c.TokensUsed > 0 {
			c.Short = fmt.Sprintf("Context window exceeded (%d/%d tokens)", c.TokensUsed, c.TokenLimit)
		}
		return c
	case strings.Contains(errMsg, "Timeout") || strings.Contains(errMsg, "APITimeout"):
		return Crash{Type: TypeAPITimeout, Short: "API request timed out"}
	default:
		first, _, _ := strings.Cut(errMsg, "\n")
		if len(first) > 120 {
			first = first[:120]
		}
		return Crash{Type: TypeOther, Short: first}
	}
}

// TrajLength records the length of one non-crashed conversation.
type TrajLength struct {
	Config string  `json:"config"`
	TaskID int     `json:"task_id"`
	Trial  int     `json:"trial"`
	Turns  int     `json:"turns"`
	Reward float64 `json:"reward"`
}

// FileReport holds the scan result for one trajectory file.
type FileReport struct {
	Config        trajectory.RunConfig
	Path          string
	TotalEntries  int
	NormalEntries int
	Crashes       []Crash
	LongestTrajs  []TrajLength
}

func (r *FileReport) countType(t string) int {
	n := 0
	for _, c := range r.Crashes {
		if c.Type == t {
			n++
		}
	}
	return n
}

// Scan checks every entry of a loaded trajectory file: crashed entries are
// categorized, the rest contribute to the longest-conversation ranking.
func Scan(entries []trajectory.Entry, cfg trajectory.RunConfig) *FileReport {
	label := cfg.Label()
	r := &FileReport{Config: cfg, TotalEntries: len(entries)}

	var lengths []TrajLength
	for i := range entries {
		e := &entries[i]
		if e.Crashed() {
			c := Categorize(e.Info.Error)
			c.Config = label
			c.TaskID = e.TaskID
			c.Trial = e.Trial
			r.Crashes = append(r.Crashes, c)
			continue
		}
		reward := 0.0
		if e.Reward != nil {
			reward = *e.Reward
		}
		lengths = append(lengths, TrajLength{
			Config: label,
			TaskID: e.TaskID,
			Trial:  e.Trial,
			Turns:  len(e.Traj),
			Reward: reward,
		})
	}

	sort.SliceStable(lengths, func(i, j int) bool { return lengths[i].Turns > lengths[j].Turns })
	if len(lengths) > 10 {
		lengths = lengths[:10]
	}
	r.NormalEntries = r.TotalEntries - len(r.Crashes)
	r.LongestTrajs = lengths
	return r
}
