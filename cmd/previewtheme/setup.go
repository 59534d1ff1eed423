package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
)

// How an agent picks up MCP servers: either its own CLI has an
// "mcp add" command, or it reads a JSON config file we can edit.
type installMethod int

const (
	viaCommand installMethod = iota
	viaConfigFile
)

// agentSpec describes one agent the setup command knows about.
type agentSpec struct {
	id         string
	name       string
	method     installMethod
	bin        string            // viaCommand: binary looked up on PATH
	markers    []string          // viaConfigFile: dirs whose presence means "in use here"
	configFile func() string     // viaConfigFile: where the server entry goes
	serversKey string            // top-level JSON key holding the server map
	scoped     bool              // ask project vs user scope before installing
	entryExtra map[string]string // fields merged into the server entry verbatim
}

// foundAgent pairs a spec with what detection learned about it.
type foundAgent struct {
	spec       agentSpec
	configured bool
	configPath string
}

var flagSetupAuto bool

// Swapped out by tests.
var lookPathFunc = exec.LookPath
var statFunc = os.Stat

var knownAgents = []agentSpec{
	{
		id: "claude_code", name: "Claude Code",
		method: viaCommand, bin: "claude", scoped: true,
	},
	{
		id: "openai_codex", name: "OpenAI Codex",
		method: viaCommand, bin: "codex", scoped: true,
	},
	{
		id: "vscode_copilot", name: "VS Code Copilot",
		method:  viaConfigFile,
		markers: []string{".vscode"},
		configFile: func() string {
			return filepath.Join(".vscode", "mcp.json")
		},
		serversKey: "servers",
		entryExtra: map[string]string{"type": "stdio"},
	},
	{
		id: "cursor", name: "Cursor",
		method:  viaConfigFile,
		markers: []string{".cursor"},
		configFile: func() string {
			return filepath.Join(".cursor", "mcp.json")
		},
		serversKey: "mcpServers",
	},
	{
		id: "claude_desktop", name: "Claude Desktop",
		method:     viaConfigFile,
		configFile: claudeDesktopConfigPath,
		serversKey: "mcpServers",
	},
}

func claudeDesktopConfigPath() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "Claude", "claude_desktop_config.json")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "Claude", "claude_desktop_config.json")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "Claude", "claude_desktop_config.json")
	}
}

// detectAgents walks knownAgents and keeps the ones present on this
// machine. Command agents count as present when their binary resolves
// on PATH. Config-file agents count when a marker dir exists, or, with
// no markers (Claude Desktop), when the config's parent dir does.
func detectAgents() []foundAgent {
	var found []foundAgent
	for _, spec := range knownAgents {
		switch spec.method {
		case viaCommand:
			if _, err := lookPathFunc(spec.bin); err != nil {
				continue
			}
			found = append(found, foundAgent{
				spec:       spec,
				configured: hasServerEntry(".mcp.json", "mcpServers"),
			})
		case viaConfigFile:
			if agent, ok := detectFileAgent(spec); ok {
				found = append(found, agent)
			}
		}
	}
	return found
}

func detectFileAgent(spec agentSpec) (foundAgent, bool) {
	for _, marker := range spec.markers {
		if _, err := statFunc(marker); err == nil {
			path := ""
			if spec.configFile != nil {
				path = spec.configFile()
			}
			return foundAgent{
				spec:       spec,
				configPath: path,
				configured: path != "" && hasServerEntry(path, spec.serversKey),
			}, true
		}
	}
	if len(spec.markers) == 0 && spec.configFile != nil {
		path := spec.configFile()
		if _, err := statFunc(filepath.Dir(path)); err == nil {
			return foundAgent{
				spec:       spec,
				configPath: path,
				configured: hasServerEntry(path, spec.serversKey),
			}, true
		}
	}
	return foundAgent{}, false
}

// hasServerEntry reports whether path already carries a previewtheme
// entry under key. Unreadable or malformed files read as "not yet".
func hasServerEntry(path, key string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return false
	}
	servers, ok := doc[key].(map[string]any)
	if !ok {
		return false
	}
	_, ok = servers["previewtheme"]
	return ok
}

// injectServer merges a previewtheme entry into an agent config
// document and returns the new JSON. A nil result with a nil error
// means the entry was already there and nothing needs writing.
func injectServer(existing []byte, key string, extra map[string]string) ([]byte, error) {
	doc := make(map[string]any)
	if len(existing) > 0 {
		if err := json.Unmarshal(existing, &doc); err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
	}

	servers, ok := doc[key].(map[string]any)
	if !ok {
		servers = make(map[string]any)
	}
	if _, dup := servers["previewtheme"]; dup {
		return nil, nil
	}

	entry := map[string]any{
		"command": "previewtheme",
		"args":    []any{"serve"},
	}
	for k, v := range extra {
		entry[k] = v
	}
	servers["previewtheme"] = entry
	doc[key] = servers

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}

func installViaCommand(spec agentSpec, scope string) error {
	args := []string{"mcp", "add"}
	if scope != "" {
		args = append(args, "--scope", scope)
	}
	args = append(args, "previewtheme", "--", "previewtheme", "serve")
	cmd := exec.Command(spec.bin, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func installViaConfigFile(spec agentSpec, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	existing, _ := os.ReadFile(path)
	merged, err := injectServer(existing, spec.serversKey, spec.entryExtra)
	if err != nil {
		return err
	}
	if merged == nil {
		return nil
	}
	return os.WriteFile(path, merged, 0644)
}

// confirm asks question and reads a y/n line. Empty input and EOF
// both mean yes.
func confirm(r io.Reader, w io.Writer, question string) bool {
	fmt.Fprintf(w, "%s ", question)
	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		return true
	}
	answer := strings.TrimSpace(strings.ToLower(scanner.Text()))
	return answer == "" || answer == "y" || answer == "yes"
}

// chooseScope asks where the server entry should live for agents that
// distinguish project from user config. Empty return means skip this
// agent. An empty line or EOF picks project scope.
func chooseScope(r io.Reader, w io.Writer, agentName string) string {
	fmt.Fprintf(w, "\nWhere should %s pick up previewtheme?\n", agentName)
	fmt.Fprintln(w, "  1) this project (checked-in config)")
	fmt.Fprintln(w, "  2) your user config (all projects)")
	fmt.Fprintln(w, "  3) don't set it up")
	fmt.Fprintf(w, "choice: ")

	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		return "project"
	}
	switch strings.TrimSpace(scanner.Text()) {
	case "1", "":
		return "project"
	case "2":
		return "user"
	default:
		return ""
	}
}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Register the MCP server with detected AI agents",
	Long: "Look for AI agents installed on this machine (Claude Code, Cursor,\n" +
		"VS Code Copilot, ...) and wire previewtheme into their MCP server config.",
	RunE: func(cmd *cobra.Command, args []string) error {
		runSetup(cmd.InOrStdin(), cmd.OutOrStdout(), flagSetupAuto)
		return nil
	},
}

func init() {
	setupCmd.Flags().BoolVar(&flagSetupAuto, "auto", false, "Configure all detected agents without prompting")
	rootCmd.AddCommand(setupCmd)
}

// runSetup drives the whole flow against the given streams so tests
// can script it.
func runSetup(r io.Reader, w io.Writer, auto bool) {
	agents := detectAgents()
	if len(agents) == 0 {
		fmt.Fprintln(w, "No supported AI agents detected.")
		return
	}

	fmt.Fprintln(w, "Found on this machine:")
	for _, a := range agents {
		note := ""
		if a.configured {
			note = " (already set up)"
		}
		fmt.Fprintf(w, "  - %s%s\n", a.spec.name, note)
	}
	fmt.Fprintln(w)

	if !auto && !confirm(r, w, "Set them up now? [Y/n]") {
		return
	}

	for _, a := range agents {
		if a.configured {
			fmt.Fprintf(w, "\n%s is already set up, leaving it alone\n", a.spec.name)
			continue
		}
		setupAgent(r, w, a, auto)
	}
}

func setupAgent(r io.Reader, w io.Writer, a foundAgent, auto bool) {
	switch a.spec.method {
	case viaCommand:
		scope := "project"
		if !auto && a.spec.scoped {
			scope = chooseScope(r, w, a.spec.name)
			if scope == "" {
				fmt.Fprintf(w, "  skipped %s\n", a.spec.name)
				return
			}
		}
		if err := installViaCommand(a.spec, scope); err != nil {
			fmt.Fprintf(w, "  %s failed: %v\n", a.spec.name, err)
			return
		}
		fmt.Fprintf(w, "  %s configured at %s scope\n", a.spec.name, scope)

	case viaConfigFile:
		if !auto && !confirm(r, w, fmt.Sprintf("\nWrite a previewtheme entry to %s? [Y/n]", a.configPath)) {
			fmt.Fprintf(w, "  skipped %s\n", a.spec.name)
			return
		}
		if err := installViaConfigFile(a.spec, a.configPath); err != nil {
			fmt.Fprintf(w, "  %s failed: %v\n", a.spec.name, err)
			return
		}
		fmt.Fprintf(w, "  %s configured (%s)\n", a.spec.name, a.configPath)
	}
}
