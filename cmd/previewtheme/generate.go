package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gnana997/previewtheme/pkg/pipeline"
	"github.com/gnana997/previewtheme/pkg/registry"
)

var (
	flagTheme      string
	flagSettings   string
	flagOut        string
	flagRefreshCmd string
	flagDebounceMs int
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate the preview stylesheet once",
	Long: "Resolve the active color theme (or the one named by --theme), map its\n" +
		"token colors and write the preview stylesheet.",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()
		runner, _, err := buildRunner(logger)
		if err != nil {
			return err
		}
		if err := runner.Run(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", runner.OutPath())
		return nil
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the editor settings and regenerate on theme changes",
	Long: "Generate the stylesheet, then keep watching the editor settings file and\n" +
		"regenerate whenever the active color theme changes. Runs until interrupted.",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()
		runner, cfg, err := buildRunner(logger)
		if err != nil {
			return err
		}

		// Initial document so the preview is styled before the first change.
		if err := runner.Run(cmd.Context()); err != nil {
			return err
		}

		settingsPath := resolveSettingsPath(flagSettings, cfg)
		watcher, err := pipeline.NewSettingsWatcher(runner, settingsPath, resolveDebounce(flagDebounceMs, cfg), logger)
		if err != nil {
			return err
		}
		if err := watcher.Start(); err != nil {
			return err
		}
		defer watcher.Stop()

		logger.Info("watching editor settings", "path", settingsPath, "out", runner.OutPath())

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		select {
		case <-stop:
		case <-cmd.Context().Done():
		}
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{generateCmd, watchCmd} {
		c.Flags().StringVar(&flagTheme, "theme", "", "Theme label or id (overrides the editor settings)")
		c.Flags().StringVar(&flagSettings, "settings", "", "Editor settings file to read the active theme from")
		c.Flags().StringVar(&flagOut, "out", "", "Stylesheet output path")
		c.Flags().StringVar(&flagRefreshCmd, "refresh-cmd", "", "Shell command to run after a successful write")
	}
	watchCmd.Flags().IntVar(&flagDebounceMs, "debounce-ms", 0, "Debounce window for settings changes in milliseconds")
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(watchCmd)
}

// buildRunner wires the pipeline from flags and the project config.
func buildRunner(logger *slog.Logger) (*pipeline.Runner, *ProjectConfig, error) {
	cfg, err := loadProjectConfig(flagConfig)
	if err != nil {
		return nil, nil, err
	}

	reg, err := registry.New(resolveExtensionsDirs(cfg), resolveBuiltinDir(cfg), logger)
	if err != nil {
		return nil, nil, err
	}

	var settings pipeline.Settings
	if flagTheme != "" {
		settings = pipeline.StaticSettings(flagTheme)
	} else {
		settings = pipeline.FileSettings{Path: resolveSettingsPath(flagSettings, cfg)}
	}

	var refresher pipeline.Refresher
	if cmd := resolveRefreshCommand(flagRefreshCmd, cfg); cmd != "" {
		refresher = pipeline.CommandRefresher{Command: cmd, Logger: logger}
	}

	runner, err := pipeline.NewRunner(pipeline.Config{
		Inventory: reg,
		Settings:  settings,
		Refresher: refresher,
		OutPath:   resolveOutputPath(flagOut, cfg),
		Logger:    logger,
	})
	if err != nil {
		return nil, nil, err
	}
	return runner, cfg, nil
}
