package scopemap

import (
	"strings"

	"github.com/gnana997/previewtheme/pkg/theme"
)

// Style is the resolved visual treatment for one preview class.
// FontStyle carries the theme rule's flag string unchanged; the
// emitter interprets the individual flags.
type Style struct {
	Color     string
	FontStyle string
}

// StyleMap holds per-class resolved styles in first-touch order, so
// repeated runs over the same input emit byte-identical CSS.
type StyleMap struct {
	order  []string
	styles map[string]*Style
}

func newStyleMap() *StyleMap {
	return &StyleMap{styles: make(map[string]*Style)}
}

func (m *StyleMap) ensure(class string) *Style {
	if st, ok := m.styles[class]; ok {
		return st
	}
	st := &Style{}
	m.styles[class] = st
	m.order = append(m.order, class)
	return st
}

// Classes returns the class names in first-touch order.
func (m *StyleMap) Classes() []string {
	return m.order
}

// Get returns the resolved style for class.
func (m *StyleMap) Get(class string) (Style, bool) {
	st, ok := m.styles[class]
	if !ok {
		return Style{}, false
	}
	return *st, true
}

// Len returns the number of resolved classes.
func (m *StyleMap) Len() int {
	return len(m.order)
}

// Map resolves token rules against the table in two passes.
//
// Pass 1 handles rules written at or below a table pattern's
// granularity: the rule's scope equals the pattern or is a dot-separated
// sub-scope of it. The first rule to reach a class wins per field;
// color and style flags are claimed independently.
//
// Pass 2 is the fallback for coarse rules broader than any table
// pattern (a bare "string" rule against the "string.quoted" entry).
// It only fires for classes that no rule colored in pass 1, and sets
// color and style flags together so a coarse rule never splices its
// flags onto a precise rule's color.
func Map(rules []theme.TokenRule, table *Table) *StyleMap {
	m := newStyleMap()

	for _, rule := range rules {
		if !rule.HasColor() {
			continue
		}
		for _, scope := range rule.Scope {
			for _, entry := range table.Entries {
				if !scopeAtOrBelow(scope, entry.Scope) {
					continue
				}
				for _, class := range entry.Classes {
					st := m.ensure(class)
					if st.Color == "" {
						st.Color = rule.Settings.Foreground
					}
					if st.FontStyle == "" && rule.Settings.FontStyle != "" {
						st.FontStyle = rule.Settings.FontStyle
					}
				}
			}
		}
	}

	for _, rule := range rules {
		if !rule.HasColor() {
			continue
		}
		for _, scope := range rule.Scope {
			for _, entry := range table.Entries {
				if !scopeAtOrBelow(entry.Scope, scope) {
					continue
				}
				for _, class := range entry.Classes {
					st := m.ensure(class)
					if st.Color == "" {
						st.Color = rule.Settings.Foreground
						st.FontStyle = rule.Settings.FontStyle
					}
				}
			}
		}
	}

	return m
}

// scopeAtOrBelow reports whether scope equals prefix or descends from
// it on a dot boundary, so "keyword" covers "keyword.control" but not
// "keywords".
func scopeAtOrBelow(scope, prefix string) bool {
	return scope == prefix || (strings.HasPrefix(scope, prefix) && len(scope) > len(prefix) && scope[len(prefix)] == '.')
}
