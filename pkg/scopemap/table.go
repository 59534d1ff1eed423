// Package scopemap translates a theme's token-color rules into the
// fixed set of highlighting classes used by the preview renderer.
package scopemap

import (
	"encoding/json"
	"fmt"
	"sync"

	_ "embed"
)

//go:embed tables/markdown.json
var markdownTableJSON []byte

// Entry associates one dot-segmented scope prefix with the preview
// classes it feeds.
type Entry struct {
	Scope   string   `json:"scope"`
	Classes []string `json:"classes"`
}

// Table is the scope→class mapping. It is configuration data, fixed
// for the life of the process; entry order defines the scan order of
// the matching passes and must stay stable for deterministic output.
type Table struct {
	Entries []Entry `json:"entries"`
}

// LoadTable parses and validates a table from JSON bytes.
func LoadTable(data []byte) (*Table, error) {
	var table Table
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("parse scope table: %w", err)
	}
	if len(table.Entries) == 0 {
		return nil, fmt.Errorf("scope table has no entries")
	}
	for i, e := range table.Entries {
		if e.Scope == "" {
			return nil, fmt.Errorf("scope table entries[%d]: scope is required", i)
		}
		if len(e.Classes) == 0 {
			return nil, fmt.Errorf("scope table entry %q: classes must have at least one entry", e.Scope)
		}
	}
	return &table, nil
}

var (
	markdownOnce  sync.Once
	markdownTable *Table
)

// MarkdownTable returns the bundled table for the markdown preview
// renderer, which highlights fenced code blocks with hljs-* classes.
func MarkdownTable() *Table {
	markdownOnce.Do(func() {
		table, err := LoadTable(markdownTableJSON)
		if err != nil {
			panic(fmt.Sprintf("embedded scope table is invalid: %v", err))
		}
		markdownTable = table
	})
	return markdownTable
}
