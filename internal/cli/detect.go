package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shapestone/shape-dsv/internal/dialect"
	"github.com/shapestone/shape-dsv/internal/logging"
	"github.com/shapestone/shape-dsv/pkg/csv"
)

func newDetectCommand(global *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "detect [file]",
		Short: "Detect the delimiter and header of a file",
		Long: `Sniff the first records of a file (or stdin) and print the detected
dialect as YAML. The output can be saved and passed back with --dialect.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.FromContext(cmd.Context())
			base, err := global.readerDialect(cmd)
			if err != nil {
				return err
			}
			opts, err := base.ReaderOptions()
			if err != nil {
				return err
			}

			path := inputArgs(args)[0]
			in, err := openInput(cmd, path)
			if err != nil {
				return err
			}
			defer in.Close()

			sniffed, err := csv.Sniff(in, opts)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			if !sniffed.Detected {
				logger.Warn("no candidate delimiter found", logging.FieldPath, path,
					logging.FieldDelimiter, sniffed.Delimiter)
			}
			logger.Debug("sniffed", logging.FieldPath, path,
				logging.FieldDelimiter, sniffed.Delimiter,
				logging.FieldHeader, sniffed.HasHeader,
				logging.FieldFields, sniffed.Fields)

			d := base
			d.Name = dialectName(path)
			d.Delimiter = sniffed.Delimiter
			d.Header = sniffed.HasHeader
			d.Detect = false
			d.DetectCandidates = nil
			data, err := d.ToYAML()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	return cmd
}

func dialectName(path string) string {
	if path == "-" {
		return "stdin"
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func newDialectsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dialects [name]",
		Short: "List built-in dialects",
		Long:  `List the built-in dialect names, or print one of them as YAML.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				for _, name := range dialect.Names() {
					fmt.Fprintln(out, name)
				}
				return nil
			}
			d, ok := dialect.Lookup(args[0])
			if !ok {
				return fmt.Errorf("unknown dialect %q", args[0])
			}
			data, err := d.ToYAML()
			if err != nil {
				return err
			}
			_, err = out.Write(data)
			return err
		},
	}
	return cmd
}
