package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/signalnine/trajscope/internal/classify"
	"github.com/signalnine/trajscope/internal/config"
	"github.com/signalnine/trajscope/internal/llm"
	"github.com/signalnine/trajscope/internal/prompt"
	"github.com/signalnine/trajscope/internal/report"
	"github.com/signalnine/trajscope/internal/runstate"
	"github.com/signalnine/trajscope/internal/sampler"
	"github.com/signalnine/trajscope/internal/trajectory"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newClassifyCmd() *cobra.Command {
	var (
		flagProvider   string
		flagModel      string
		flagModelSize  string
		flagSampleSize int
		flagDelay      float64
		flagSeed       int
		flagForce      bool
		flagDryRun     bool
	)
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify sampled failures in each trajectory file via an LLM",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			if flagProvider != "" {
				cfg.Classify.Provider = flagProvider
			}
			if flagModel != "" {
				cfg.Classify.Model = flagModel
			}
			if flagModelSize != "" {
				cfg.Classify.ModelSize = flagModelSize
			}
			if cmd.Flags().Changed("sample-size") {
				cfg.Classify.SampleSize = flagSampleSize
			}
			if cmd.Flags().Changed("delay") {
				cfg.Classify.DelaySeconds = flagDelay
			}
			if cmd.Flags().Changed("seed") {
				cfg.Classify.Seed = flagSeed
			}

			log, err := newLogger(cfg.Log.Level)
			if err != nil {
				return err
			}
			defer log.Sync()

			if cfg.Secrets.EnvFile != "" {
				_ = godotenv.Load(cfg.Secrets.EnvFile)
			} else {
				_ = godotenv.Load()
			}

			dir := cfg.Trajectories.Dir
			if flagTrajDir != "" {
				dir = flagTrajDir
			}
			files, err := trajectory.Discover(dir, cfg.Classify.ModelSize)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				return fmt.Errorf("no trajectory files found in %s", dir)
			}

			if flagDryRun {
				return dryRun(files[0], cfg)
			}

			client, err := llm.New(cfg.Classify.Provider, cfg.Classify.Model, cfg.Classify.MaxResponseTokens)
			if err != nil {
				return err
			}
			store, err := runstate.NewStore(cfg.Output.Dir)
			if err != nil {
				return err
			}

			opts := classify.Options{
				SampleSize: cfg.Classify.SampleSize,
				Seed:       cfg.Classify.Seed,
				Delay:      time.Duration(cfg.Classify.DelaySeconds * float64(time.Second)),
				Force:      flagForce,
			}

			ctx := context.Background()
			results := make(map[string]*runstate.Result)
			for _, f := range files {
				res, err := classify.ProcessFile(ctx, f, client, store, opts, log, os.Stdout)
				if err != nil {
					log.Error("processing trajectory file failed",
						zap.String("path", f.Path), zap.Error(err))
					continue
				}
				if res != nil {
					results[f.Config.Label()] = res
				}
			}
			if len(results) == 0 {
				return fmt.Errorf("no files produced results")
			}

			combinedPath, err := report.WriteCombined(cfg.Output.Dir, results)
			if err != nil {
				return err
			}
			examplesPath, err := report.WriteExamples(cfg.Output.Dir, results, 5)
			if err != nil {
				return err
			}
			report.PrintSummary(results, os.Stdout)
			fmt.Printf("\nCombined summary: %s\n", combinedPath)
			fmt.Printf("Representative examples: %s\n", examplesPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&flagProvider, "provider", "", "LLM provider (anthropic, openai)")
	cmd.Flags().StringVar(&flagModel, "model", "", "override the provider's default model")
	cmd.Flags().StringVar(&flagModelSize, "model-size", "", "only classify files for this model size (e.g. 14b)")
	cmd.Flags().IntVar(&flagSampleSize, "sample-size", 50, "max unique failed tasks to sample per file")
	cmd.Flags().Float64Var(&flagDelay, "delay", 0.5, "seconds to sleep between API calls")
	cmd.Flags().IntVar(&flagSeed, "seed", 42, "sampling seed")
	cmd.Flags().BoolVar(&flagForce, "force", false, "reclassify files that already have results")
	cmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "print the first prompt of the first file and exit")
	return cmd
}

// dryRun shows the exact prompt that would be sent for the first sampled
// failure, without touching the network or requiring an API key.
func dryRun(file trajectory.File, cfg *config.Config) error {
	entries, err := trajectory.Load(file.Path)
	if err != nil {
		return err
	}
	sampled, stats := sampler.Sample(entries, cfg.Classify.SampleSize, cfg.Classify.Seed)
	fmt.Printf("File: %s (%s)\n", file.Path, file.Config.Label())
	fmt.Printf("Tasks: %d, failures: %d, sampled: %d\n\n",
		stats.TotalTasks, stats.TotalFailures, stats.UniqueSampled)
	if len(sampled) == 0 {
		fmt.Println("No qualifying failures to classify.")
		return nil
	}
	fmt.Println("--- prompt for first sampled failure ---")
	fmt.Println(prompt.Build(&sampled[0]))
	return nil
}
