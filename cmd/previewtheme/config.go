package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gnana997/previewtheme/pkg/pipeline"
)

const defaultConfigPath = ".previewtheme/config.yaml"

// ProjectConfig holds the contents of .previewtheme/config.yaml.
// Every field is optional; flags override config values, config values
// override the OS defaults.
type ProjectConfig struct {
	ExtensionsDirs []string `yaml:"extensions_dirs"`
	BuiltinDir     string   `yaml:"builtin_dir"`
	SettingsFile   string   `yaml:"settings_file"`
	OutputFile     string   `yaml:"output_file"`
	RefreshCommand string   `yaml:"refresh_command"`
	MCPLog         string   `yaml:"mcp_log"`
	DebounceMs     int      `yaml:"debounce_ms"`
}

// loadProjectConfig reads the project config file. A missing file is
// not an error; it yields an empty config so the defaults apply.
func loadProjectConfig(path string) (*ProjectConfig, error) {
	if path == "" {
		path = defaultConfigPath
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &ProjectConfig{}, nil
	}
	if err != nil {
		return nil, err
	}
	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}

// resolveExtensionsDirs applies the flag > config > default chain for
// the installed extensions pool.
func resolveExtensionsDirs(cfg *ProjectConfig) []string {
	if len(flagExtensions) > 0 {
		return flagExtensions
	}
	if len(cfg.ExtensionsDirs) > 0 {
		return cfg.ExtensionsDirs
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	return []string{filepath.Join(home, ".vscode", "extensions")}
}

func resolveBuiltinDir(cfg *ProjectConfig) string {
	if flagBuiltin != "" {
		return flagBuiltin
	}
	return cfg.BuiltinDir
}

// defaultSettingsPath returns the OS-specific editor settings file.
func defaultSettingsPath() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "Code", "User", "settings.json")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "Code", "User", "settings.json")
	default: // linux
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "Code", "User", "settings.json")
	}
}

func resolveSettingsPath(flagValue string, cfg *ProjectConfig) string {
	if flagValue != "" {
		return flagValue
	}
	if cfg.SettingsFile != "" {
		return cfg.SettingsFile
	}
	return defaultSettingsPath()
}

func resolveOutputPath(flagValue string, cfg *ProjectConfig) string {
	if flagValue != "" {
		return flagValue
	}
	if cfg.OutputFile != "" {
		return cfg.OutputFile
	}
	return filepath.Join(".previewtheme", "markdown.css")
}

func resolveRefreshCommand(flagValue string, cfg *ProjectConfig) string {
	if flagValue != "" {
		return flagValue
	}
	return cfg.RefreshCommand
}

func resolveDebounce(flagMs int, cfg *ProjectConfig) time.Duration {
	ms := flagMs
	if ms == 0 {
		ms = cfg.DebounceMs
	}
	if ms <= 0 {
		return pipeline.DefaultDebounce
	}
	return time.Duration(ms) * time.Millisecond
}
