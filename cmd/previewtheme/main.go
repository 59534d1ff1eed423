package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/gnana997/previewtheme/pkg/util"
)

const version = "0.1.0-dev"

var (
	flagConfig     string
	flagVerbose    bool
	flagExtensions []string
	flagBuiltin    string
)

var rootCmd = &cobra.Command{
	Use:   "previewtheme",
	Short: "previewtheme – markdown preview styling that follows the editor color theme",
	Long: "Previewtheme resolves the active editor color theme, maps its token colors\n" +
		"onto the markdown highlight classes and writes the preview stylesheet.",
	SilenceUsage: true,
}

func init() {
	rootCmd.Version = version
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Project config file (default .previewtheme/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringArrayVar(&flagExtensions, "extensions-dir", nil, "Installed extensions directory (repeatable)")
	rootCmd.PersistentFlags().StringVar(&flagBuiltin, "builtin-dir", "", "Built-in extensions directory")
	rootCmd.AddCommand(versionCmd)
}

// newLogger builds the process logger. Everything diagnostic goes to
// stderr; stdout stays clean for command output and the MCP transport.
func newLogger() *slog.Logger {
	cfg := util.DefaultLoggerConfig()
	if flagVerbose {
		cfg.Level = util.LevelDebug
	}
	logger := util.NewLogger(cfg)
	// Components that were not handed a logger fall back to the slog
	// default, so point it at the same sink.
	util.SetDefault(logger)
	return logger
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "previewtheme %s\n", version)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
