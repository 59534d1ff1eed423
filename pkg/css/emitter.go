// Package css renders a resolved class→style mapping into the preview
// stylesheet.
package css

import (
	"fmt"
	"strings"

	"github.com/gnana997/previewtheme/pkg/scopemap"
)

// containerPrefixes are the preview body classes for the three display
// modes. Every selector is repeated under each prefix so the same
// highlighting class resolves regardless of the rendered mode.
var containerPrefixes = []string{".vscode-dark", ".vscode-high-contrast", ".vscode-light"}

const header = "/* Generated stylesheet. Regenerated whenever the editor color theme changes; do not edit. */"

// Emit renders the stylesheet: a fixed header, a base rule forcing
// code and pre elements to inherit the editor foreground, then one
// block per colored class in the mapping's order. Classes without a
// color are omitted entirely.
func Emit(m *scopemap.StyleMap) string {
	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n\n")

	writeBaseRule(&b)

	for _, class := range m.Classes() {
		st, ok := m.Get(class)
		if !ok || st.Color == "" {
			continue
		}
		writeClassRule(&b, class, st)
	}

	return b.String()
}

// writeBaseRule emits the fallback that keeps code blocks legible even
// when no token rule matched anything.
func writeBaseRule(b *strings.Builder) {
	selectors := make([]string, 0, len(containerPrefixes)*2)
	for _, prefix := range containerPrefixes {
		selectors = append(selectors, prefix+" code", prefix+" pre")
	}
	b.WriteString(strings.Join(selectors, ",\n"))
	b.WriteString(" {\n\tcolor: inherit;\n}\n")
}

func writeClassRule(b *strings.Builder, class string, st scopemap.Style) {
	selectors := make([]string, 0, len(containerPrefixes))
	for _, prefix := range containerPrefixes {
		selectors = append(selectors, fmt.Sprintf("%s .%s", prefix, class))
	}

	b.WriteString("\n")
	b.WriteString(strings.Join(selectors, ",\n"))
	b.WriteString(" {\n")
	fmt.Fprintf(b, "\tcolor: %s !important;\n", st.Color)
	if HasFlag(st.FontStyle, "italic") {
		b.WriteString("\tfont-style: italic !important;\n")
	}
	if HasFlag(st.FontStyle, "bold") {
		b.WriteString("\tfont-weight: bold !important;\n")
	}
	if HasFlag(st.FontStyle, "underline") {
		b.WriteString("\ttext-decoration: underline !important;\n")
	}
	b.WriteString("}\n")
}

// HasFlag reports whether the space-separated flag string requests flag.
func HasFlag(flags, flag string) bool {
	for _, f := range strings.Fields(flags) {
		if f == flag {
			return true
		}
	}
	return false
}
