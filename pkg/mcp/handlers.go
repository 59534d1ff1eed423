package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/gnana997/previewtheme/pkg/css"
	"github.com/gnana997/previewtheme/pkg/scopemap"
)

func (s *Server) handleListThemes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	infos := s.registry.List()
	if len(infos) == 0 {
		return mcp.NewToolResultText("no themes found"), nil
	}
	return jsonResult(infos)
}

func (s *Server) handleResolveTheme(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	loc, err := s.registry.Resolve(name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return jsonResult(map[string]any{
		"theme_path":   loc.ThemePath,
		"package_root": loc.PackageRoot,
		"builtin":      loc.Builtin,
	})
}

func (s *Server) handleInspectTheme(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	styles, err := s.stylesFor(name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	type classStyle struct {
		Class     string `json:"class"`
		Color     string `json:"color,omitempty"`
		FontStyle string `json:"font_style,omitempty"`
	}
	out := make([]classStyle, 0, styles.Len())
	for _, class := range styles.Classes() {
		st, _ := styles.Get(class)
		out = append(out, classStyle{Class: class, Color: st.Color, FontStyle: st.FontStyle})
	}
	return jsonResult(out)
}

func (s *Server) handleGenerateCSS(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	styles, err := s.stylesFor(name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(css.Emit(styles)), nil
}

// stylesFor resolves a theme by name, loads its rules and maps them to
// highlight classes. Partial loads (a broken include parent, for
// example) still produce styles; only a resolution failure or a fully
// unreadable root description is an error.
func (s *Server) stylesFor(name string) (*scopemap.StyleMap, error) {
	loc, err := s.registry.Resolve(name)
	if err != nil {
		return nil, err
	}

	rules, err := s.loader.Load(loc.ThemePath)
	if err != nil && len(rules) == 0 {
		return nil, fmt.Errorf("load theme %q: %w", name, err)
	}

	return scopemap.Map(rules, s.table), nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
