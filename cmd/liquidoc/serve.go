package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/liquidoc/liquidoc/pkg/mcp"
	"github.com/liquidoc/liquidoc/pkg/mcplog"
)

func newServeCmd() *cobra.Command {
	var (
		root    string
		regPath string
		logFile string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the documentation tools over MCP stdio",
		Long: `Serve starts a Model Context Protocol server on stdin/stdout so coding
agents can parse templates, read documentation and run checks. Tool calls
are appended to a JSONL log file; stdout stays reserved for the protocol.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadProjectConfig(root)
			if err != nil {
				return err
			}
			reg, err := resolveRegistry(regPath, cfg)
			if err != nil {
				return err
			}

			absRoot, err := filepath.Abs(root)
			if err != nil {
				return err
			}

			switch logFile {
			case "":
				logFile = mcplog.DefaultPath(absRoot)
			case "off":
				logFile = ""
			}
			logger, err := mcplog.NewLogger(logFile)
			if err != nil {
				return err
			}
			if logger != nil {
				defer logger.Close()
			}

			return mcp.NewServer(reg, absRoot, logger).ServeStdio()
		},
	}

	cmd.Flags().StringVar(&root, "root", ".", "Directory tool paths resolve against")
	cmd.Flags().StringVar(&regPath, "registry", "", "Vendor type dataset JSON file")
	cmd.Flags().StringVar(&logFile, "log-file", "", `Tool call log path (default .liquidoc/mcp.jsonl under root, "off" disables)`)
	return cmd
}
