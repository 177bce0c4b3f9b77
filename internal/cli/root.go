// Package cli provides the Cobra command structure for dsv.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/shapestone/shape-dsv/internal/logging"
)

// BuildInfo holds build-time version information.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// NewRootCommand creates the root dsv command with all subcommands.
func NewRootCommand(info BuildInfo) *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "dsv",
		Short: "Inspect and convert delimited text files",
		Long: `dsv reads CSV and related delimited formats (TSV, semicolon or pipe
separated files, multi-character delimiters, backslash-escaped dialects)
with a streaming tokenizer.

Dialects are selected by built-in name (csv, excel, tsv, ssv, psv, unix)
or by a YAML dialect file, and individual settings can be overridden
with flags.`,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level := "info"
			if flags.debug {
				level = "debug"
			} else if flags.quiet {
				level = "error"
			}
			logger := logging.NewWithWriter(cmd.ErrOrStderr(), level)
			cmd.SetContext(logging.WithLogger(cmd.Context(), logger))
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags.register(rootCmd)

	rootCmd.AddCommand(newRecordsCommand(flags))
	rootCmd.AddCommand(newDetectCommand(flags))
	rootCmd.AddCommand(newStatsCommand(flags))
	rootCmd.AddCommand(newConvertCommand(flags))
	rootCmd.AddCommand(newDialectsCommand())
	rootCmd.AddCommand(newVersionCommand(info))

	return rootCmd
}
