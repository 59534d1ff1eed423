package main

import (
	"github.com/spf13/cobra"

	mcpserver "github.com/gnana997/previewtheme/pkg/mcp"
	"github.com/gnana997/previewtheme/pkg/mcplog"
	"github.com/gnana997/previewtheme/pkg/registry"
)

var flagMCPLog string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server on stdin/stdout",
	Long: "Expose theme lookup and stylesheet generation as MCP tools over stdio,\n" +
		"for use by AI agents and editor integrations.",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()
		cfg, err := loadProjectConfig(flagConfig)
		if err != nil {
			return err
		}

		reg, err := registry.New(resolveExtensionsDirs(cfg), resolveBuiltinDir(cfg), logger)
		if err != nil {
			return err
		}

		logPath := flagMCPLog
		if logPath == "" {
			logPath = cfg.MCPLog
		}
		callLog, err := mcplog.NewLogger(logPath)
		if err != nil {
			return err
		}
		if callLog != nil {
			defer callLog.Close()
		}

		srv := mcpserver.NewServer(reg, nil, nil, callLog)
		return srv.ServeStdio()
	},
}

func init() {
	serveCmd.Flags().StringVar(&flagMCPLog, "mcp-log", "", "JSONL file recording every tool call (disabled when empty)")
	rootCmd.AddCommand(serveCmd)
}
