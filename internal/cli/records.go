package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shapestone/shape-dsv/pkg/csv"
)

type recordsFlags struct {
	format  string
	meta    bool
	skipBad bool
}

const (
	formatJSON = "json"
	formatText = "text"
)

// recordLine is one record in JSON output with --meta.
type recordLine struct {
	Row    int      `json:"row"`
	Line   int      `json:"line"`
	Fields []string `json:"fields"`
	Raw    string   `json:"raw,omitempty"`
}

func newRecordsCommand(global *globalFlags) *cobra.Command {
	flags := &recordsFlags{}

	cmd := &cobra.Command{
		Use:   "records [file...]",
		Short: "Print records one per line",
		Long: `Read the input files (or stdin) and print every record.

The json format prints one JSON array of fields per record; with --meta
each record becomes an object with its row, start line and raw text. The
text format prints fields separated by a tab.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.format != formatJSON && flags.format != formatText {
				return fmt.Errorf("unknown format %q", flags.format)
			}
			opts, err := global.readerOptions(cmd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			enc := json.NewEncoder(out)
			emit := func(rec *csv.Record) error {
				switch {
				case flags.format == formatText:
					for i := 0; i < rec.Len(); i++ {
						if i > 0 {
							fmt.Fprint(out, "\t")
						}
						v, _ := rec.Get(i)
						fmt.Fprint(out, v)
					}
					_, err := fmt.Fprintln(out)
					return err
				case flags.meta:
					return enc.Encode(recordLine{
						Row:    rec.Row(),
						Line:   rec.Line(),
						Fields: rec.Fields(),
						Raw:    rec.Raw(),
					})
				default:
					return enc.Encode(rec.Fields())
				}
			}

			var results []readResult
			for _, path := range inputArgs(args) {
				res, err := readInput(cmd.Context(), cmd, path, opts, flags.skipBad, emit)
				if err != nil {
					return err
				}
				results = append(results, res)
			}
			return strictErr(global.strict, results...)
		},
	}

	cmd.Flags().StringVar(&flags.format, "format", formatJSON, "output format: json, text")
	cmd.Flags().BoolVar(&flags.meta, "meta", false, "include row, line and raw text in json output")
	cmd.Flags().BoolVar(&flags.skipBad, "skip-bad", false, "drop records that contain bad data")

	return cmd
}
