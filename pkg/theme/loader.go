package theme

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/tailscale/hujson"
)

// ErrIncludeCycle is returned when a theme's include chain loops back
// on itself. The offending node contributes no rules; rules gathered
// from the rest of the chain are still returned.
var ErrIncludeCycle = errors.New("theme include cycle")

// Loader reads theme descriptions from disk. Descriptions are read
// fresh on every call and never cached.
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a Loader. If logger is nil, slog.Default() is used.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// Load reads the theme description at path and returns its token rules
// with the include chain flattened: own rules first, parent rules after,
// so a child's rule for the same scope is considered before the
// parent's and wins under the mapper's first-match precedence.
//
// Failures are non-fatal by contract. A node that is missing, malformed,
// or part of an include cycle contributes an empty rule list; the error
// describes the failed node and callers are expected to log it and
// carry on with whatever rules were gathered.
func (l *Loader) Load(path string) ([]TokenRule, error) {
	visited := make(map[string]bool)
	return l.load(path, visited)
}

func (l *Loader) load(path string, visited map[string]bool) ([]TokenRule, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = filepath.Clean(path)
	}
	if visited[abs] {
		l.logger.Warn("theme include cycle detected", "path", path)
		return nil, fmt.Errorf("%w at %s", ErrIncludeCycle, path)
	}
	visited[abs] = true

	desc, err := ReadDescription(path)
	if err != nil {
		l.logger.Warn("failed to load theme description", "path", path, "error", err)
		return nil, err
	}

	rules := desc.TokenColors
	if desc.Include == "" {
		return rules, nil
	}

	parentPath := filepath.Join(filepath.Dir(path), filepath.FromSlash(desc.Include))
	parentRules, parentErr := l.load(parentPath, visited)
	merged := make([]TokenRule, 0, len(rules)+len(parentRules))
	merged = append(merged, rules...)
	merged = append(merged, parentRules...)
	return merged, parentErr
}

// ReadDescription parses a single theme file without following includes.
func ReadDescription(path string) (*Description, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read theme %s: %w", path, err)
	}
	desc, err := ParseDescription(data)
	if err != nil {
		return nil, fmt.Errorf("parse theme %s: %w", path, err)
	}
	return desc, nil
}

// ParseDescription parses theme description bytes. Editor themes ship
// as JSONC, so comments and trailing commas are standardized away
// before decoding.
func ParseDescription(data []byte) (*Description, error) {
	if std, err := hujson.Standardize(data); err == nil {
		data = std
	}
	var desc Description
	if err := json.Unmarshal(data, &desc); err != nil {
		return nil, err
	}
	return &desc, nil
}
