package mcp

import "github.com/mark3labs/mcp-go/mcp"

func listThemesTool() mcp.Tool {
	return mcp.NewTool("list_themes",
		mcp.WithDescription("List every color theme declared by installed and built-in extension packages"),
	)
}

func resolveThemeTool() mcp.Tool {
	return mcp.NewTool("resolve_theme",
		mcp.WithDescription("Resolve a theme name to the package and description file that declares it"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Theme label or id, e.g. \"Default Dark+\""),
		),
	)
}

func inspectThemeTool() mcp.Tool {
	return mcp.NewTool("inspect_theme",
		mcp.WithDescription("Show the highlight classes and styles a theme yields for markdown previews"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Theme label or id"),
		),
	)
}

func generateCSSTool() mcp.Tool {
	return mcp.NewTool("generate_css",
		mcp.WithDescription("Generate the preview stylesheet for a theme and return it as CSS text"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Theme label or id"),
		),
	)
}
