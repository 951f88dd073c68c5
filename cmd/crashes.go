package cmd

import (
	"bytes"
	"fmt"
	"os"

	"github.com/signalnine/trajscope/internal/config"
	"github.com/signalnine/trajscope/internal/crash"
	"github.com/signalnine/trajscope/internal/trajectory"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newCrashesCmd() *cobra.Command {
	var (
		flagModelSize  string
		flagFormat     string
		flagOutput     string
		flagJSONOutput string
	)
	cmd := &cobra.Command{
		Use:   "crashes",
		Short: "Detect and categorize crashed trials across trajectory files",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			log, err := newLogger(cfg.Log.Level)
			if err != nil {
				return err
			}
			defer log.Sync()

			dir := cfg.Trajectories.Dir
			if flagTrajDir != "" {
				dir = flagTrajDir
			}
			files, err := trajectory.Discover(dir, flagModelSize)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				return fmt.Errorf("no trajectory files found in %s", dir)
			}

			var reports []*crash.FileReport
			for _, f := range files {
				entries, err := trajectory.Load(f.Path)
				if err != nil {
					log.Warn("skipping unreadable trajectory file",
						zap.String("path", f.Path), zap.Error(err))
					continue
				}
				reports = append(reports, crash.Scan(entries, f.Config))
			}
			if len(reports) == 0 {
				return fmt.Errorf("no readable trajectory files in %s", dir)
			}

			if err := crash.Render(reports, flagFormat, os.Stdout); err != nil {
				return err
			}
			if flagOutput != "" {
				var buf bytes.Buffer
				if err := crash.Render(reports, "markdown", &buf); err != nil {
					return err
				}
				if err := os.WriteFile(flagOutput, buf.Bytes(), 0o644); err != nil {
					return fmt.Errorf("writing markdown report: %w", err)
				}
				fmt.Printf("\nMarkdown report written to %s\n", flagOutput)
			}
			if flagJSONOutput != "" {
				var buf bytes.Buffer
				if err := crash.Render(reports, "json", &buf); err != nil {
					return err
				}
				if err := os.WriteFile(flagJSONOutput, buf.Bytes(), 0o644); err != nil {
					return fmt.Errorf("writing json report: %w", err)
				}
				fmt.Printf("JSON report written to %s\n", flagJSONOutput)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&flagModelSize, "model-size", "", "only analyze files for this model size (e.g. 14b)")
	cmd.Flags().StringVar(&flagFormat, "format", "table", "stdout format (table, markdown, json)")
	cmd.Flags().StringVar(&flagOutput, "output", "", "write the markdown report to this file")
	cmd.Flags().StringVar(&flagJSONOutput, "json-output", "", "write the json report to this file")
	return cmd
}
