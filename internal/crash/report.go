package crash

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"text/tabwriter"
)

// Render writes the crash analysis for all scanned files in the requested
// format: table, markdown, or json.
func Render(reports []*FileReport, format string, w io.Writer) error {
	switch format {
	case "markdown":
		return writeMarkdown(reports, w)
	case "json":
		return writeJSON(reports, w)
	default:
		return writeTable(reports, w)
	}
}

func totalsOf(reports []*FileReport) (entries, crashes, ctx, timeout, other int) {
	for _, r := range reports {
		entries += r.TotalEntries
		crashes += len(r.Crashes)
		ctx += r.countType(TypeContextWindow)
		timeout += r.countType(TypeAPITimeout)
		other += r.countType(TypeOther)
	}
	return
}

func modelSizes(reports []*FileReport) []string {
	set := map[string]struct{}{}
	for _, r := range reports {
		set[r.Config.ModelSize] = struct{}{}
	}
	sizes := make([]string, 0, len(set))
	for s := range set {
		sizes = append(sizes, s)
	}
	sort.Strings(sizes)
	return sizes
}

func allLongest(reports []*FileReport) []TrajLength {
	var all []TrajLength
	for _, r := range reports {
		all = append(all, r.LongestTrajs...)
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].Turns > all[j].Turns })
	if len(all) > 10 {
		all = all[:10]
	}
	return all
}

func writeTable(reports []*FileReport, w io.Writer) error {
	entries, crashes, ctx, timeout, other := totalsOf(reports)
	rate := 0.0
	if entries > 0 {
		rate = float64(crashes) / float64(entries) * 100
	}
	fmt.Fprintf(w, "Scanned %d trajectory file(s): %d entries, %d crashes (%.1f%%)\n\n",
		len(reports), entries, crashes, rate)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CONFIG\tTOTAL\tNORMAL\tCRASHES\tCTX WINDOW\tTIMEOUT\tOTHER")
	fmt.Fprintln(tw, strings.Repeat("-", 70))
	for _, r := range reports {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\t%d\n",
			r.Config.Label(), r.TotalEntries, r.NormalEntries, len(r.Crashes),
			r.countType(TypeContextWindow), r.countType(TypeAPITimeout), r.countType(TypeOther))
	}
	fmt.Fprintf(tw, "TOTAL\t%d\t%d\t%d\t%d\t%d\t%d\n",
		entries, entries-crashes, crashes, ctx, timeout, other)
	return tw.Flush()
}

func writeMarkdown(reports []*FileReport, w io.Writer) error {
	entries, crashes, ctx, timeout, other := totalsOf(reports)
	sizes := modelSizes(reports)

	fmt.Fprintln(w, "# Crash & Context Window Analysis")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Scanned **%d trajectory files** across %d model sizes.\n", len(reports), len(sizes))
	fmt.Fprintln(w)
	rate := 0.0
	if entries > 0 {
		rate = float64(crashes) / float64(entries) * 100
	}
	fmt.Fprintf(w, "**Total entries:** %d | **Total crashes:** %d (%.1f%%) | "+
		"Context window: %d | Timeout: %d | Other: %d\n", entries, crashes, rate, ctx, timeout, other)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "## Per-File Summary")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "| Config | Total | Normal | Crashes | Ctx Window | Timeout | Other |")
	fmt.Fprintln(w, "|--------|-------|--------|---------|------------|---------|-------|")
	for _, r := range reports {
		fmt.Fprintf(w, "| %s | %d | %d | %d | %d | %d | %d |\n",
			r.Config.Label(), r.TotalEntries, r.NormalEntries, len(r.Crashes),
			r.countType(TypeContextWindow), r.countType(TypeAPITimeout), r.countType(TypeOther))
	}
	fmt.Fprintln(w)

	var ctxCrashes, otherCrashes []Crash
	for _, r := range reports {
		for _, c := range r.Crashes {
			if c.Type == TypeContextWindow {
				ctxCrashes = append(ctxCrashes, c)
			} else {
				otherCrashes = append(otherCrashes, c)
			}
		}
	}

	if len(ctxCrashes) > 0 {
		fmt.Fprintln(w, "## Context Window Exceeded — Detail")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "| Config | Task ID | Trial | Tokens Used | Token Limit | Over By |")
		fmt.Fprintln(w, "|--------|---------|-------|-------------|-------------|---------|")
		for _, c := range ctxCrashes {
			if c.TokensUsed > 0 && c.TokenLimit > 0 {
				fmt.Fprintf(w, "| %s | %d | %d | %d | %d | +%d |\n",
					c.Config, c.TaskID, c.Trial, c.TokensUsed, c.TokenLimit, c.OverBy())
			} else {
				fmt.Fprintf(w, "| %s | %d | %d | ? | ? | ? |\n", c.Config, c.TaskID, c.Trial)
			}
		}
		fmt.Fprintln(w)
	}

	if len(otherCrashes) > 0 {
		fmt.Fprintln(w, "## Other Crashes (Timeouts, Code Bugs)")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "| Config | Task ID | Trial | Type | Error |")
		fmt.Fprintln(w, "|--------|---------|-------|------|-------|")
		for _, c := range otherCrashes {
			fmt.Fprintf(w, "| %s | %d | %d | %s | %s |\n", c.Config, c.TaskID, c.Trial, c.Type, c.Short)
		}
		fmt.Fprintln(w)
	}

	if len(sizes) > 1 {
		fmt.Fprintln(w, "## Cross-Model Crash Rates")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "| Model Size | Total Entries | Total Crashes | Crash Rate | Ctx Window | Timeout | Other |")
		fmt.Fprintln(w, "|------------|---------------|---------------|------------|------------|---------|-------|")
		for _, ms := range sizes {
			var sub []*FileReport
			for _, r := range reports {
				if r.Config.ModelSize == ms {
					sub = append(sub, r)
				}
			}
			e, c, cx, to, ot := totalsOf(sub)
			rateStr := "N/A"
			if e > 0 {
				rateStr = fmt.Sprintf("%.1f%%", float64(c)/float64(e)*100)
			}
			fmt.Fprintf(w, "| %s | %d | %d | %s | %d | %d | %d |\n", ms, e, c, rateStr, cx, to, ot)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "## Top 10 Longest Conversations (Potential Near-Limit)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "These are the longest non-crashed conversations. Long conversations consume more")
	fmt.Fprintln(w, "tokens and are more likely to degrade due to context pressure, even without crashing.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "| Config | Task ID | Trial | Turns | Reward |")
	fmt.Fprintln(w, "|--------|---------|-------|-------|--------|")
	for _, t := range allLongest(reports) {
		status := "FAIL"
		if t.Reward == 1.0 {
			status = "PASS"
		}
		fmt.Fprintf(w, "| %s | %d | %d | %d | %s |\n", t.Config, t.TaskID, t.Trial, t.Turns, status)
	}
	fmt.Fprintln(w)
	return nil
}

type jsonTotals struct {
	TotalEntries  int     `json:"total_entries"`
	TotalCrashes  int     `json:"total_crashes"`
	ContextWindow int     `json:"context_window"`
	APITimeout    int     `json:"api_timeout"`
	Other         int     `json:"other"`
	CrashRatePct  float64 `json:"crash_rate_pct"`
}

type jsonPerFile struct {
	Config        string `json:"config"`
	ModelSize     string `json:"model_size"`
	Strategy      string `json:"strategy"`
	Domain        string `json:"domain"`
	TotalEntries  int    `json:"total_entries"`
	NormalEntries int    `json:"normal_entries"`
	TotalCrashes  int    `json:"total_crashes"`
	ContextWindow int    `json:"context_window"`
	APITimeout    int    `json:"api_timeout"`
	Other         int    `json:"other"`
}

type jsonCrash struct {
	Config     string `json:"config"`
	TaskID     int    `json:"task_id"`
	Trial      int    `json:"trial"`
	CrashType  string `json:"crash_type"`
	ErrorShort string `json:"error_short"`
	TokensUsed int    `json:"tokens_used,omitempty"`
	TokenLimit int    `json:"token_limit,omitempty"`
	OverBy     int    `json:"over_by,omitempty"`
}

type jsonCrossModel struct {
	TotalEntries  int     `json:"total_entries"`
	TotalCrashes  int     `json:"total_crashes"`
	CrashRatePct  float64 `json:"crash_rate_pct"`
	ContextWindow int     `json:"context_window"`
	APITimeout    int     `json:"api_timeout"`
	Other         int     `json:"other"`
}

type jsonOutput struct {
	Totals               jsonTotals                `json:"totals"`
	PerFile              []jsonPerFile             `json:"per_file"`
	Crashes              []jsonCrash               `json:"crashes"`
	CrossModel           map[string]jsonCrossModel `json:"cross_model"`
	LongestConversations []TrajLength              `json:"longest_conversations"`
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

func writeJSON(reports []*FileReport, w io.Writer) error {
	entries, crashes, ctx, timeout, other := totalsOf(reports)
	out := jsonOutput{
		Totals: jsonTotals{
			TotalEntries:  entries,
			TotalCrashes:  crashes,
			ContextWindow: ctx,
			APITimeout:    timeout,
			Other:         other,
		},
		PerFile:    []jsonPerFile{},
		Crashes:    []jsonCrash{},
		CrossModel: map[string]jsonCrossModel{},
	}
	if entries > 0 {
		out.Totals.CrashRatePct = round2(float64(crashes) / float64(entries) * 100)
	}

	for _, r := range reports {
		out.PerFile = append(out.PerFile, jsonPerFile{
			Config:        r.Config.Label(),
			ModelSize:     r.Config.ModelSize,
			Strategy:      r.Config.Strategy,
			Domain:        r.Config.Domain,
			TotalEntries:  r.TotalEntries,
			NormalEntries: r.NormalEntries,
			TotalCrashes:  len(r.Crashes),
			ContextWindow: r.countType(TypeContextWindow),
			APITimeout:    r.countType(TypeAPITimeout),
			Other:         r.countType(TypeOther),
		})
		for _, c := range r.Crashes {
			jc := jsonCrash{
				Config:     c.Config,
				TaskID:     c.TaskID,
				Trial:      c.Trial,
				CrashType:  c.Type,
				ErrorShort: c.Short,
			}
			if c.TokensUsed > 0 {
				jc.TokensUsed = c.TokensUsed
				jc.TokenLimit = c.TokenLimit
				jc.OverBy = c.OverBy()
			}
			out.Crashes = append(out.Crashes, jc)
		}
	}

	for _, ms := range modelSizes(reports) {
		var sub []*FileReport
		for _, r := range reports {
			if r.Config.ModelSize == ms {
				sub = append(sub, r)
			}
		}
		e, c, cx, to, ot := totalsOf(sub)
		xm := jsonCrossModel{
			TotalEntries:  e,
			TotalCrashes:  c,
			ContextWindow: cx,
			APITimeout:    to,
			Other:         ot,
		}
		if e > 0 {
			xm.CrashRatePct = round2(float64(c) / float64(e) * 100)
		}
		out.CrossModel[ms] = xm
	}

	out.LongestConversations = allLongest(reports)
	if out.LongestConversations == nil {
		out.LongestConversations = []TrajLength{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
