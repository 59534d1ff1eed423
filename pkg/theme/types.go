// Package theme defines the token-color data model and loads theme
// descriptions from disk, flattening include chains.
package theme

import (
	"encoding/json"
	"strings"
)

// ScopeList holds the scope patterns one token rule applies to.
// Theme files write the field either as a single string or as an array;
// a single string may also pack several comma-separated patterns.
type ScopeList []string

// UnmarshalJSON accepts both the string and the array form.
func (s *ScopeList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*s = splitScopes(single)
		return nil
	}

	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	out := make(ScopeList, 0, len(many))
	for _, v := range many {
		out = append(out, splitScopes(v)...)
	}
	*s = out
	return nil
}

func splitScopes(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Settings carries the visual attributes of one token rule.
// FontStyle is a space-separated subset of "italic", "bold", "underline".
type Settings struct {
	Foreground string `json:"foreground,omitempty"`
	FontStyle  string `json:"fontStyle,omitempty"`
}

// TokenRule associates scope patterns with a foreground color and
// optional style flags.
type TokenRule struct {
	Scope    ScopeList `json:"scope"`
	Settings Settings  `json:"settings"`
}

// HasColor reports whether the rule carries a foreground color.
// Rules without one contribute nothing and are skipped by the mapper.
func (r TokenRule) HasColor() bool {
	return r.Settings.Foreground != ""
}

// Description is one theme file on disk: workbench color overrides
// (unused by the pipeline), ordered token rules, and an optional
// relative reference to a parent description.
type Description struct {
	Colors      map[string]string `json:"colors"`
	TokenColors []TokenRule       `json:"tokenColors"`
	Include     string            `json:"include"`
}
