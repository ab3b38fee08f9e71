package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/liquidoc/liquidoc/pkg/util"
)

const version = "0.1.0-dev"

// envLogLevel overrides the default log level. The --log-level flag wins
// over it.
const envLogLevel = "LIQUIDOC_LOG_LEVEL"

func newRootCmd() *cobra.Command {
	var (
		logLevel  string
		logFormat string
	)

	cmd := &cobra.Command{
		Use:   "liquidoc",
		Short: "Documentation checker for Liquid templates",
		Long: `liquidoc parses {% doc %} annotation blocks in Liquid templates,
resolves parameter types against a vendor type registry, and reports
templates with missing or malformed documentation.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if !cmd.Flags().Changed("log-level") {
				if env := os.Getenv(envLogLevel); env != "" {
					logLevel = env
				}
			}
			util.SetDefault(util.NewLogger(util.LoggerConfig{
				Level:  util.LevelFromString(logLevel),
				Format: util.LogFormat(logFormat),
				Output: os.Stderr,
			}))
		},
	}

	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn or error")
	cmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format: text or json")

	// Register the --version flag now so that arg traversal does not
	// mistake a following flag for its value.
	cmd.InitDefaultVersionFlag()

	cmd.AddCommand(
		newCheckCmd(),
		newParseCmd(),
		newWatchCmd(),
		newRegistryCmd(),
		newServeCmd(),
		newSetupCmd(),
		newVersionCmd(),
	)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the liquidoc version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "liquidoc %s\n", version)
		},
	}
}
