// Package registry locates a theme description among installed and
// built-in extension packages by enumerating their manifests.
package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/gnana997/previewtheme/pkg/util"
)

// ErrThemeNotFound is returned when no installed or built-in package
// declares the requested theme.
var ErrThemeNotFound = errors.New("theme not found")

// manifestPattern matches one package manifest per package directory.
const manifestPattern = "*/package.json"

// manifestCacheSize bounds the parsed-manifest cache. Extension
// directories rarely hold more than a few hundred packages.
const manifestCacheSize = 512

// ThemeContribution is one contributes.themes entry in a package
// manifest.
type ThemeContribution struct {
	Label   string `json:"label"`
	ID      string `json:"id"`
	UITheme string `json:"uiTheme"`
	Path    string `json:"path"`
}

// Manifest is the subset of a package manifest the registry reads.
type Manifest struct {
	Name        string `json:"name"`
	Contributes struct {
		Themes []ThemeContribution `json:"themes"`
	} `json:"contributes"`
}

// Location is the resolved on-disk position of a theme description.
type Location struct {
	// ThemePath is the absolute path of the theme description file.
	ThemePath string
	// PackageRoot is the directory of the declaring package.
	PackageRoot string
	// Builtin marks a match from the built-in pool.
	Builtin bool
}

// ThemeInfo describes one declared theme, for listings.
type ThemeInfo struct {
	Label   string `json:"label"`
	ID      string `json:"id,omitempty"`
	Package string `json:"package"`
	Builtin bool   `json:"builtin"`
	Path    string `json:"path"`
}

type cachedManifest struct {
	modTime  time.Time
	manifest *Manifest
}

// Registry enumerates theme packages. The installed pool is searched
// before the built-in pool; within a pool, packages are visited in
// sorted directory order.
//
// Theme descriptions themselves are never cached; only parsed package
// manifests are, keyed by path and invalidated on mtime change.
type Registry struct {
	installedRoots []string
	builtinRoot    string
	logger         *slog.Logger
	manifests      *lru.Cache[string, cachedManifest]
}

// New creates a Registry over the given pools. Either pool may be
// empty. If logger is nil, slog.Default() is used.
func New(installedRoots []string, builtinRoot string, logger *slog.Logger) (*Registry, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cache, err := lru.New[string, cachedManifest](manifestCacheSize)
	if err != nil {
		return nil, fmt.Errorf("create manifest cache: %w", err)
	}
	return &Registry{
		installedRoots: installedRoots,
		builtinRoot:    builtinRoot,
		logger:         logger,
		manifests:      cache,
	}, nil
}

// Resolve finds the theme whose declared label or id equals name.
// Installed packages win over built-in ones; the first match within a
// pool wins. Filesystem failures inside a pool are treated as "no
// match in this package", never as fatal.
func (r *Registry) Resolve(name string) (Location, error) {
	if strings.TrimSpace(name) == "" {
		return Location{}, fmt.Errorf("theme name is required")
	}

	for _, root := range r.installedRoots {
		if loc, ok := r.resolveInRoot(root, name, false); ok {
			return loc, nil
		}
	}
	if r.builtinRoot != "" {
		if loc, ok := r.resolveInRoot(r.builtinRoot, name, true); ok {
			return loc, nil
		}
	}
	return Location{}, fmt.Errorf("%w: %q", ErrThemeNotFound, name)
}

// List returns every declared theme across both pools, installed pool
// first, in package enumeration order.
func (r *Registry) List() []ThemeInfo {
	var infos []ThemeInfo
	collect := func(root string, builtin bool) {
		r.scanRoot(root, func(pkgRoot string, man *Manifest) bool {
			for _, c := range man.Contributes.Themes {
				infos = append(infos, ThemeInfo{
					Label:   c.Label,
					ID:      c.ID,
					Package: man.Name,
					Builtin: builtin,
					Path:    themePath(pkgRoot, c),
				})
			}
			return false // keep scanning
		})
	}
	for _, root := range r.installedRoots {
		collect(root, false)
	}
	if r.builtinRoot != "" {
		collect(r.builtinRoot, true)
	}
	return infos
}

func (r *Registry) resolveInRoot(root, name string, builtin bool) (Location, bool) {
	var found Location
	matched := r.scanRoot(root, func(pkgRoot string, man *Manifest) bool {
		for _, c := range man.Contributes.Themes {
			if c.Label == name || (c.ID != "" && c.ID == name) {
				found = Location{
					ThemePath:   themePath(pkgRoot, c),
					PackageRoot: pkgRoot,
					Builtin:     builtin,
				}
				return true
			}
		}
		return false
	})
	return found, matched
}

// scanRoot visits every package manifest under root until visit
// returns true. Reports whether any visit returned true.
func (r *Registry) scanRoot(root string, visit func(pkgRoot string, man *Manifest) bool) bool {
	paths, err := r.discoverManifests(root)
	if err != nil {
		r.logger.Warn("cannot enumerate theme packages", "root", root, "error", err)
		return false
	}

	mapped := util.NewMappedSet(r.logger)
	defer mapped.Close()

	for _, path := range paths {
		man := r.manifest(mapped, path)
		if man == nil || len(man.Contributes.Themes) == 0 {
			continue
		}
		if visit(filepath.Dir(path), man) {
			return true
		}
	}
	return false
}

// discoverManifests globs for package manifests directly under root.
// Results are sorted for stable enumeration order.
func (r *Registry) discoverManifests(root string) ([]string, error) {
	if _, err := os.Stat(root); err != nil {
		return nil, err
	}
	matches, err := doublestar.Glob(os.DirFS(root), manifestPattern)
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)

	paths := make([]string, 0, len(matches))
	for _, m := range matches {
		paths = append(paths, filepath.Join(root, filepath.FromSlash(m)))
	}
	return paths, nil
}

// manifest loads and parses one package manifest, consulting the
// mtime-validated cache first. Returns nil on any failure; the failure
// is logged and the package is skipped.
func (r *Registry) manifest(mapped *util.MappedSet, path string) *Manifest {
	stat, err := os.Stat(path)
	if err != nil {
		r.logger.Debug("cannot stat manifest", "path", path, "error", err)
		return nil
	}
	if c, ok := r.manifests.Get(path); ok && c.modTime.Equal(stat.ModTime()) {
		return c.manifest
	}

	data, err := mapped.Read(path)
	if err != nil {
		r.logger.Warn("cannot read manifest", "path", path, "error", err)
		return nil
	}

	var man Manifest
	if err := json.Unmarshal(data, &man); err != nil {
		r.logger.Warn("malformed manifest", "path", path, "error", err)
		return nil
	}

	r.manifests.Add(path, cachedManifest{modTime: stat.ModTime(), manifest: &man})
	return &man
}

func themePath(pkgRoot string, c ThemeContribution) string {
	return filepath.Join(pkgRoot, filepath.FromSlash(c.Path))
}
