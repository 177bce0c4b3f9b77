package cli

import (
	"fmt"
	"runtime"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/shapestone/shape-dsv/internal/logging"
)

type statsFlags struct {
	jobs int
}

func newStatsCommand(global *globalFlags) *cobra.Command {
	flags := &statsFlags{}

	cmd := &cobra.Command{
		Use:   "stats [file...]",
		Short: "Count records, characters and bytes",
		Long: `Read each input file (or stdin) to the end and print its record,
line, character and byte counts along with the number of bad-data findings.
Files are read concurrently.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := global.readerOptions(cmd)
			if err != nil {
				return err
			}
			opts.CountBytes = true
			opts.ReuseRecord = true

			paths := inputArgs(args)
			results := make([]readResult, len(paths))
			start := time.Now()

			jobs := max(flags.jobs, 1)
			g, ctx := errgroup.WithContext(cmd.Context())
			g.SetLimit(jobs)
			for i, path := range paths {
				g.Go(func() error {
					res, err := readInput(ctx, cmd, path, opts, false, nil)
					results[i] = res
					return err
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			logging.FromContext(cmd.Context()).Debug("stats complete",
				logging.FieldInput, len(paths),
				logging.FieldJobs, jobs,
				logging.FieldDuration, time.Since(start))

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "FILE\tRECORDS\tLINES\tCHARS\tBYTES\tBAD\tDELIMITER")
			for _, res := range results {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\t%q\n",
					res.Path,
					humanize.Comma(int64(res.Records)),
					humanize.Comma(int64(res.Lines)),
					humanize.Comma(res.Chars),
					humanize.Bytes(uint64(res.Bytes)),
					res.BadData+res.Oversized,
					res.Delimiter,
				)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			return strictErr(global.strict, results...)
		},
	}

	cmd.Flags().IntVarP(&flags.jobs, "jobs", "j", runtime.NumCPU(), "number of files read concurrently")

	return cmd
}
