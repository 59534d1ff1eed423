// Package pipeline runs the resolve → load → map → emit → persist
// cycle that keeps the preview stylesheet in step with the editor
// color theme.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/gnana997/previewtheme/pkg/css"
	"github.com/gnana997/previewtheme/pkg/registry"
	"github.com/gnana997/previewtheme/pkg/scopemap"
	"github.com/gnana997/previewtheme/pkg/theme"
)

// Runner executes pipeline runs. Runs are single-flight: a trigger
// arriving while a run is in flight is coalesced into exactly one
// follow-up run instead of racing the writer.
type Runner struct {
	inventory Inventory
	loader    *theme.Loader
	settings  Settings
	refresher Refresher
	table     *scopemap.Table
	outPath   string
	logger    *slog.Logger

	running atomic.Bool
	pending atomic.Bool
}

// Config wires a Runner. Inventory, Settings and OutPath are required;
// Refresher may be nil. A nil Table defaults to the bundled markdown
// table, a nil Loader to a fresh one.
type Config struct {
	Inventory Inventory
	Loader    *theme.Loader
	Settings  Settings
	Refresher Refresher
	Table     *scopemap.Table
	OutPath   string
	Logger    *slog.Logger
}

// NewRunner creates a Runner from cfg.
func NewRunner(cfg Config) (*Runner, error) {
	if cfg.Inventory == nil {
		return nil, fmt.Errorf("pipeline: inventory is required")
	}
	if cfg.Settings == nil {
		return nil, fmt.Errorf("pipeline: settings reader is required")
	}
	if cfg.OutPath == "" {
		return nil, fmt.Errorf("pipeline: output path is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Table == nil {
		cfg.Table = scopemap.MarkdownTable()
	}
	if cfg.Loader == nil {
		cfg.Loader = theme.NewLoader(cfg.Logger)
	}
	return &Runner{
		inventory: cfg.Inventory,
		loader:    cfg.Loader,
		settings:  cfg.Settings,
		refresher: cfg.Refresher,
		table:     cfg.Table,
		outPath:   cfg.OutPath,
		logger:    cfg.Logger,
	}, nil
}

// OutPath returns the stylesheet destination.
func (r *Runner) OutPath() string {
	return r.outPath
}

// Run executes one pipeline cycle. If a cycle is already in flight the
// call returns immediately and one follow-up cycle runs after the
// current one finishes, so the stylesheet always reflects the latest
// trigger.
//
// Only a persist failure makes a run fail; every upstream failure
// degrades to the base-rule-only document per the error contract.
func (r *Runner) Run(ctx context.Context) error {
	// The pending flag is only cleared by a goroutine holding the run
	// slot. A caller that finds the slot taken sets the flag and then
	// rechecks the slot: the holder may have released between the
	// failed claim and the flag store without seeing the flag, and in
	// that case this caller must pick the cycle up itself.
	if !r.running.CompareAndSwap(false, true) {
		r.pending.Store(true)
		if !r.running.CompareAndSwap(false, true) {
			return nil
		}
		r.pending.Store(false)
	}

	var err error
	for {
		err = r.runOnce(ctx)
		r.running.Store(false)
		if !r.pending.Load() {
			return err
		}
		if !r.running.CompareAndSwap(false, true) {
			// A newer trigger claimed the slot. Its run starts after
			// the pending request, and the flag stays set until a
			// holder consumes it.
			return err
		}
		r.pending.Store(false)
	}
}

func (r *Runner) runOnce(ctx context.Context) error {
	name, err := r.settings.ActiveTheme()
	if err != nil {
		r.logger.Warn("cannot read active theme", "error", err)
		name = ""
	}

	rules := r.rulesFor(name)
	styles := scopemap.Map(rules, r.table)
	doc := css.Emit(styles)

	if err := writeFileAtomic(r.outPath, []byte(doc)); err != nil {
		return fmt.Errorf("persist stylesheet: %w", err)
	}

	r.logger.Info("stylesheet generated",
		"theme", name,
		"rules", len(rules),
		"classes", styles.Len(),
		"bytes", len(doc),
		"out", r.outPath)

	if r.refresher != nil {
		if err := r.refresher.Refresh(ctx); err != nil {
			r.logger.Warn("preview refresh failed", "error", err)
		}
	}
	return nil
}

// rulesFor resolves and loads the named theme's token rules. Every
// failure is absorbed: the worst case is an empty list, which emits
// the base-rule-only document.
func (r *Runner) rulesFor(name string) []theme.TokenRule {
	if name == "" {
		r.logger.Warn("no active theme configured")
		return nil
	}

	loc, err := r.inventory.Resolve(name)
	if err != nil {
		if errors.Is(err, registry.ErrThemeNotFound) {
			r.logger.Warn("active theme not installed", "theme", name)
		} else {
			r.logger.Warn("theme resolution failed", "theme", name, "error", err)
		}
		return nil
	}

	rules, err := r.loader.Load(loc.ThemePath)
	if err != nil {
		r.logger.Warn("theme loaded with errors", "theme", name, "path", loc.ThemePath, "error", err)
	}
	return rules
}

// writeFileAtomic writes data to a sibling temp file and renames it
// into place, so a concurrent reader never observes a partial
// document.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".previewtheme-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
