package cmd

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/AnyUserName/printcurate-cli/internal/config"
	"github.com/AnyUserName/printcurate-cli/internal/logging"
)

var (
	version    = "0.1.0"
	verbose    bool
	configPath string
	logLevel   string
	jsonLogs   bool

	// Populated by the root PersistentPreRunE.
	cfg    config.Config
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "printcurate",
	Short: "Curate downloaded celebrity images into print-ready sets",
	Long: `printcurate filters candidate images for a celebrity's roles, drops
watermarked, fan-made and near-duplicate pictures, and renders the survivors
as exact-size JPEG prints (8x10, 11x17) with a manifest.json describing the set.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		var opts []config.Option
		if configPath != "" {
			opts = append(opts, config.WithFile(configPath))
		}
		loaded, err := config.Load(opts...)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("log-level") {
			loaded.LogLevel = logLevel
		}
		cfg = loaded

		l, err := logging.New(logging.Options{Level: cfg.LogLevel, Verbose: verbose, JSON: jsonLogs})
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(*cobra.Command, []string) {
		_ = logger.Sync()
	},
}

// Execute runs the CLI.
func Execute(ctx context.Context) error {
	return fang.Execute(ctx, rootCmd,
		fang.WithVersion(fmt.Sprintf("%s (%s/%s, %s)", version, runtime.GOOS, runtime.GOARCH, runtime.Version())),
		fang.WithNotifySignal(os.Interrupt),
	)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false, "emit logs as JSON")
}

func formatBytes(b int64) string {
	switch {
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}
