package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	cfgFile     string
	flagTrajDir string
)

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "trajscope",
		Short: "Analyze tau-bench agent trajectories for crashes and failure modes",
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "trajscope.yaml", "config file path")
	root.PersistentFlags().StringVar(&flagTrajDir, "trajectory-dir", "", "override trajectory base directory")
	root.AddCommand(newListCmd())
	root.AddCommand(newCrashesCmd())
	root.AddCommand(newClassifyCmd())
	root.AddCommand(newValidateCmd())
	return root
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	zcfg.Encoding = "console"
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return zcfg.Build()
}
