package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/shapestone/shape-dsv/internal/dialect"
	"github.com/shapestone/shape-dsv/internal/logging"
	"github.com/shapestone/shape-dsv/pkg/csv"
)

type convertFlags struct {
	to       string
	output   string
	quoteAll bool
	skipBad  bool
}

func newConvertCommand(global *globalFlags) *cobra.Command {
	flags := &convertFlags{}

	cmd := &cobra.Command{
		Use:   "convert [file...]",
		Short: "Rewrite records in another dialect",
		Long: `Read the input files (or stdin) in the --dialect format and write
their records in the --to format. Fields are quoted so the output reads
back to the same records. With --header only the first file's header is
written.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ropts, err := global.readerOptions(cmd)
			if err != nil {
				return err
			}
			target, err := dialect.Resolve(flags.to)
			if err != nil {
				return err
			}
			if flags.quoteAll {
				target.QuoteAll = true
			}
			wopts, err := target.WriterOptions()
			if err != nil {
				return err
			}

			var out io.Writer = cmd.OutOrStdout()
			if flags.output != "" && flags.output != "-" {
				file, err := os.Create(flags.output)
				if err != nil {
					return fmt.Errorf("create output: %w", err)
				}
				defer file.Close()
				out = file
			}
			w, err := csv.NewWriter(out, wopts)
			if err != nil {
				return err
			}

			wroteHeader := false
			var results []readResult
			for _, path := range inputArgs(args) {
				res, err := readInput(cmd.Context(), cmd, path, ropts, flags.skipBad, func(rec *csv.Record) error {
					if !wroteHeader {
						wroteHeader = true
						if h := rec.Headers(); len(h) > 0 {
							if err := w.Write(h); err != nil {
								return err
							}
						}
					}
					return w.Write(rec.Fields())
				})
				if err != nil {
					return err
				}
				results = append(results, res)
			}
			if err := w.Flush(); err != nil {
				return fmt.Errorf("write output: %w", err)
			}

			logging.FromContext(cmd.Context()).Debug("converted",
				logging.FieldOutput, flags.output,
				logging.FieldRecords, total(results))
			return strictErr(global.strict, results...)
		},
	}

	cmd.Flags().StringVar(&flags.to, "to", "csv", "output dialect name or YAML dialect file")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&flags.quoteAll, "quote-all", false, "quote every output field")
	cmd.Flags().BoolVar(&flags.skipBad, "skip-bad", false, "drop records that contain bad data")

	return cmd
}

func total(results []readResult) int {
	n := 0
	for _, res := range results {
		n += res.Records
	}
	return n
}
