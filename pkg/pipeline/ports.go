package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/tailscale/hujson"

	"github.com/gnana997/previewtheme/pkg/registry"
)

// Inventory resolves a theme name to its on-disk description.
type Inventory interface {
	Resolve(name string) (registry.Location, error)
}

// Settings reads the active theme name. Implementations must read the
// backing store fresh on every call; the name is externally owned and
// may change between runs.
type Settings interface {
	ActiveTheme() (string, error)
}

// Refresher asks the consuming preview surface to reload its styling
// after a new stylesheet has been persisted.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// colorThemeKey is the editor setting naming the active color theme.
const colorThemeKey = "workbench.colorTheme"

// FileSettings reads the active theme name from an editor settings
// file (JSONC).
type FileSettings struct {
	Path string
}

// ActiveTheme parses the settings file and returns its color theme
// entry. A missing file or missing key yields an empty name, not an
// error; the pipeline treats that as "no theme to resolve".
func (f FileSettings) ActiveTheme() (string, error) {
	data, err := os.ReadFile(f.Path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read settings %s: %w", f.Path, err)
	}

	if std, serr := hujson.Standardize(data); serr == nil {
		data = std
	}
	var settings map[string]any
	if err := json.Unmarshal(data, &settings); err != nil {
		return "", fmt.Errorf("parse settings %s: %w", f.Path, err)
	}
	name, _ := settings[colorThemeKey].(string)
	return strings.TrimSpace(name), nil
}

// StaticSettings returns a fixed theme name, for one-shot runs where
// the name comes from a flag instead of the editor configuration.
type StaticSettings string

func (s StaticSettings) ActiveTheme() (string, error) {
	return string(s), nil
}

// CommandRefresher runs a user-configured shell command to poke the
// preview surface. An empty command is a no-op.
type CommandRefresher struct {
	Command string
	Logger  *slog.Logger
}

func (c CommandRefresher) Refresh(ctx context.Context) error {
	if strings.TrimSpace(c.Command) == "" {
		return nil
	}
	cmd := exec.CommandContext(ctx, "sh", "-c", c.Command)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("refresh command: %w (%s)", err, strings.TrimSpace(string(out)))
	}
	if c.Logger != nil {
		c.Logger.Debug("preview refresh requested", "command", c.Command)
	}
	return nil
}
