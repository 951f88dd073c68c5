package cmd

import (
	"fmt"

	"github.com/signalnine/trajscope/internal/config"
	"github.com/signalnine/trajscope/internal/trajectory"
	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	var flagModelSize string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List discovered trajectory files and their parsed configurations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
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
			fmt.Printf("Found %d trajectory file(s) in %s:\n\n", len(files), dir)
			for _, f := range files {
				fmt.Printf("  %-40s %s\n", f.Config.Label(), f.Path)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&flagModelSize, "model-size", "", "only list files for this model size (e.g. 14b)")
	return cmd
}
