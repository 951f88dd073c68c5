package cmd

import (
	"fmt"

	"github.com/signalnine/trajscope/internal/config"
	"github.com/signalnine/trajscope/internal/trajectory"
	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check that every discovered trajectory file parses",
		Long: "Walk the trajectory directory and parse every discovered file, " +
			"reporting entry counts and any files the analysis commands would choke on.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			dir := cfg.Trajectories.Dir
			if flagTrajDir != "" {
				dir = flagTrajDir
			}
			files, err := trajectory.Discover(dir, "")
			if err != nil {
				return err
			}
			if len(files) == 0 {
				return fmt.Errorf("no trajectory files found in %s", dir)
			}

			bad := 0
			for _, f := range files {
				entries, err := trajectory.Load(f.Path)
				if err != nil {
					bad++
					fmt.Printf("  FAIL %s: %v\n", f.Path, err)
					continue
				}
				crashes := 0
				for i := range entries {
					if entries[i].Crashed() {
						crashes++
					}
				}
				fmt.Printf("  ok   %-40s %d entries, %d tasks, %d failures, %d crashes\n",
					f.Config.Label(), len(entries), trajectory.CountTasks(entries),
					trajectory.CountFailures(entries), crashes)
			}
			if bad > 0 {
				return fmt.Errorf("%d of %d files failed to parse", bad, len(files))
			}
			fmt.Printf("\nAll %d files parse cleanly.\n", len(files))
			return nil
		},
	}
}
