package trajectory

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// RunConfig labels one trajectory file's provenance. It is derived from the
// file path and used only as an output key.
type RunConfig struct {
	ModelSize string
	Strategy  string
	Domain    string
}

func (c RunConfig) Label() string {
	return fmt.Sprintf("%s_%s_%s", c.ModelSize, c.Strategy, c.Domain)
}

// File pairs a trajectory file path with its parsed configuration.
type File struct {
	Path   string
	Config RunConfig
}

var modelSizePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)qwen3?-(\d+b)`),
	regexp.MustCompile(`(?i)qwen_(\d+b)`),
}

// ParseRunConfig extracts model size, strategy, and domain from a trajectory
// file path. Handles both layouts:
//
//	subdir:     .../act_airline_trials5_qwen_14b/act-Qwen3-14B-....json
//	standalone: .../retail_act-Qwen3-4B-....json
func ParseRunConfig(path string) RunConfig {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	name := strings.ToLower(stem)
	parent := strings.ToLower(filepath.Base(filepath.Dir(path)))
	combined := parent + " " + name

	size := "unknown"
	for _, re := range modelSizePatterns {
		if m := re.FindStringSubmatch(name + " " + parent); m != nil {
			size = strings.ToUpper(m[1])
			break
		}
	}

	// Order matters: "react" contains "act".
	var strategy string
	switch {
	case strings.Contains(combined, "tool-calling") || strings.Contains(combined, "tool_calling"):
		strategy = "FC"
	case strings.Contains(combined, "react"):
		strategy = "ReAct"
	case strings.Contains(combined, "act"):
		strategy = "ACT"
	default:
		strategy = "unknown"
	}

	var domain string
	switch {
	case strings.Contains(combined, "airline"):
		domain = "airline"
	case strings.Contains(combined, "retail"):
		domain = "retail"
	default:
		domain = "unknown"
	}

	return RunConfig{ModelSize: size, Strategy: strategy, Domain: domain}
}

// Discover walks baseDir for trajectory JSON files, excluding result and
// summary files. modelFilter, when non-empty, keeps only files whose parsed
// model size matches (case-insensitive). The canonical data directory was
// created upstream with a trailing space in its name; if baseDir does not
// exist, the variant with a trailing space is tried before failing.
func Discover(baseDir, modelFilter string) ([]File, error) {
	if _, err := os.Stat(baseDir); err != nil {
		alt := baseDir + " "
		if _, altErr := os.Stat(alt); altErr == nil {
			baseDir = alt
		} else {
			return nil, fmt.Errorf("trajectory directory not found: %s", baseDir)
		}
	}

	var files []File
	err := filepath.WalkDir(baseDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".json") {
			return nil
		}
		if strings.Contains(path, "results") || strings.Contains(path, "summary") {
			return nil
		}
		cfg := ParseRunConfig(path)
		if modelFilter != "" && !strings.EqualFold(cfg.ModelSize, modelFilter) {
			return nil
		}
		files = append(files, File{Path: path, Config: cfg})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", baseDir, err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}
