package theme

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Helpers ---

func writeTheme(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// --- ScopeList ---

func TestScopeListUnmarshal(t *testing.T) {
	tests := []struct {
		name string
		json string
		want ScopeList
	}{
		{"single string", `"comment"`, ScopeList{"comment"}},
		{"array", `["keyword", "storage.type"]`, ScopeList{"keyword", "storage.type"}},
		{"comma separated", `"comment, punctuation.definition.comment"`, ScopeList{"comment", "punctuation.definition.comment"}},
		{"array with commas", `["string, string.quoted", "constant"]`, ScopeList{"string", "string.quoted", "constant"}},
		{"empty string", `""`, ScopeList{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s ScopeList
			require.NoError(t, s.UnmarshalJSON([]byte(tt.json)))
			assert.Equal(t, tt.want, s)
		})
	}
}

func TestScopeListUnmarshal_Invalid(t *testing.T) {
	var s ScopeList
	assert.Error(t, s.UnmarshalJSON([]byte(`42`)))
}

// --- ParseDescription ---

func TestParseDescription_ToleratesJSONC(t *testing.T) {
	data := []byte(`{
	// dark theme
	"colors": { "editor.background": "#1e1e1e" },
	"tokenColors": [
		/* comments are italic */
		{ "scope": "comment", "settings": { "foreground": "#6a9955", "fontStyle": "italic" } },
	],
}`)
	desc, err := ParseDescription(data)
	require.NoError(t, err)
	assert.Equal(t, "#1e1e1e", desc.Colors["editor.background"])
	require.Len(t, desc.TokenColors, 1)
	assert.Equal(t, ScopeList{"comment"}, desc.TokenColors[0].Scope)
	assert.Equal(t, "#6a9955", desc.TokenColors[0].Settings.Foreground)
	assert.Equal(t, "italic", desc.TokenColors[0].Settings.FontStyle)
}

func TestParseDescription_Malformed(t *testing.T) {
	_, err := ParseDescription([]byte(`{"tokenColors": [}`))
	assert.Error(t, err)
}

func TestParseDescription_MissingFields(t *testing.T) {
	desc, err := ParseDescription([]byte(`{}`))
	require.NoError(t, err)
	assert.Empty(t, desc.TokenColors)
	assert.Empty(t, desc.Include)
}

// --- Load ---

func TestLoad_SingleFile(t *testing.T) {
	dir := t.TempDir()
	path := writeTheme(t, dir, "plain.json", `{
		"tokenColors": [
			{ "scope": "keyword", "settings": { "foreground": "#0000ff" } },
			{ "scope": "string", "settings": { "foreground": "#a31515" } }
		]
	}`)

	rules, err := NewLoader(nil).Load(path)
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, ScopeList{"keyword"}, rules[0].Scope)
	assert.Equal(t, ScopeList{"string"}, rules[1].Scope)
}

func TestLoad_IncludeChainChildFirst(t *testing.T) {
	dir := t.TempDir()
	writeTheme(t, dir, "parent.json", `{
		"tokenColors": [
			{ "scope": "comment", "settings": { "foreground": "#111111" } }
		]
	}`)
	child := writeTheme(t, dir, "child.json", `{
		"include": "./parent.json",
		"tokenColors": [
			{ "scope": "comment", "settings": { "foreground": "#222222" } }
		]
	}`)

	rules, err := NewLoader(nil).Load(child)
	require.NoError(t, err)
	require.Len(t, rules, 2)
	// The child's rules come first so they win under the mapper's
	// first-match precedence; the parent's rule trails as a fallback.
	assert.Equal(t, "#222222", rules[0].Settings.Foreground)
	assert.Equal(t, "#111111", rules[1].Settings.Foreground)
}

func TestLoad_IncludeInSubdirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "base"), 0755))
	writeTheme(t, filepath.Join(dir, "base"), "common.json", `{
		"tokenColors": [
			{ "scope": "keyword", "settings": { "foreground": "#333333" } }
		]
	}`)
	child := writeTheme(t, dir, "dark.json", `{
		"include": "base/common.json",
		"tokenColors": []
	}`)

	rules, err := NewLoader(nil).Load(child)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, "#333333", rules[0].Settings.Foreground)
}

func TestLoad_MissingFile(t *testing.T) {
	rules, err := NewLoader(nil).Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
	assert.Empty(t, rules)
}

func TestLoad_MissingParentKeepsOwnRules(t *testing.T) {
	dir := t.TempDir()
	child := writeTheme(t, dir, "child.json", `{
		"include": "./gone.json",
		"tokenColors": [
			{ "scope": "string", "settings": { "foreground": "#444444" } }
		]
	}`)

	rules, err := NewLoader(nil).Load(child)
	assert.Error(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, "#444444", rules[0].Settings.Foreground)
}

func TestLoad_IncludeCycle(t *testing.T) {
	dir := t.TempDir()
	writeTheme(t, dir, "a.json", `{
		"include": "./b.json",
		"tokenColors": [
			{ "scope": "comment", "settings": { "foreground": "#aaaaaa" } }
		]
	}`)
	a := filepath.Join(dir, "a.json")
	writeTheme(t, dir, "b.json", `{
		"include": "./a.json",
		"tokenColors": [
			{ "scope": "keyword", "settings": { "foreground": "#bbbbbb" } }
		]
	}`)

	rules, err := NewLoader(nil).Load(a)
	require.ErrorIs(t, err, ErrIncludeCycle)
	// Both nodes on the chain still contribute their own rules.
	require.Len(t, rules, 2)
	assert.Equal(t, "#aaaaaa", rules[0].Settings.Foreground)
	assert.Equal(t, "#bbbbbb", rules[1].Settings.Foreground)
}

func TestLoad_SelfInclude(t *testing.T) {
	dir := t.TempDir()
	path := writeTheme(t, dir, "self.json", `{
		"include": "./self.json",
		"tokenColors": [
			{ "scope": "comment", "settings": { "foreground": "#cccccc" } }
		]
	}`)

	rules, err := NewLoader(nil).Load(path)
	require.ErrorIs(t, err, ErrIncludeCycle)
	require.Len(t, rules, 1)
}
