package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/shapestone/shape-dsv/internal/dialect"
	"github.com/shapestone/shape-dsv/internal/logging"
	"github.com/shapestone/shape-dsv/pkg/csv"
)

// globalFlags are the persistent flags shared by all subcommands.
type globalFlags struct {
	debug     bool
	quiet     bool
	dialect   string
	delimiter string
	header    bool
	detect    bool
	encoding  string
	maxField  int
	strict    bool
}

func (f *globalFlags) register(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	pf.BoolVar(&f.debug, "debug", false, "enable debug logging")
	pf.BoolVarP(&f.quiet, "quiet", "q", false, "only log errors")
	pf.StringVarP(&f.dialect, "dialect", "d", "csv", "built-in dialect name or path to a YAML dialect file")
	pf.StringVar(&f.delimiter, "delimiter", "", "field delimiter (overrides the dialect)")
	pf.BoolVar(&f.header, "header", false, "treat the first record as column names")
	pf.BoolVar(&f.detect, "detect", false, "detect the delimiter from the first line")
	pf.StringVar(&f.encoding, "encoding", "", "input encoding, e.g. windows-1252 (overrides the dialect)")
	pf.IntVar(&f.maxField, "max-field-size", 0, "maximum field size in characters, 0 for no limit")
	pf.BoolVar(&f.strict, "strict", false, "exit with status 2 when bad data is found")
}

// readerDialect resolves the dialect and applies flag overrides.
func (f *globalFlags) readerDialect(cmd *cobra.Command) (dialect.Dialect, error) {
	d, err := dialect.Resolve(f.dialect)
	if err != nil {
		return dialect.Dialect{}, err
	}
	pf := cmd.Flags()
	if pf.Changed("delimiter") {
		d.Delimiter = f.delimiter
	}
	if pf.Changed("header") {
		d.Header = f.header
	}
	if pf.Changed("detect") {
		d.Detect = f.detect
	}
	if pf.Changed("encoding") {
		d.Encoding = f.encoding
	}
	if pf.Changed("max-field-size") {
		d.MaxFieldSize = f.maxField
	}
	return d, nil
}

func (f *globalFlags) readerOptions(cmd *cobra.Command) (csv.ReaderOptions, error) {
	d, err := f.readerDialect(cmd)
	if err != nil {
		return csv.ReaderOptions{}, err
	}
	return d.ReaderOptions()
}

// badDataLogger returns a handler that logs each finding and counts them.
func badDataLogger(logger *log.Logger, path string, count *int, skip bool) csv.BadDataHandler {
	return func(bd csv.BadData) csv.BadDataAction {
		*count++
		logger.Warn("bad data",
			logging.FieldPath, path,
			logging.FieldRow, bd.Row,
			logging.FieldLine, bd.Line,
			logging.FieldColumn, bd.Column,
			logging.FieldField, bd.FieldIndex+1,
			logging.FieldKind, bd.Kind,
		)
		if skip {
			return csv.SkipRecord
		}
		return csv.KeepRecord
	}
}

// openInput opens path for reading; "-" reads from the command's stdin.
func openInput(cmd *cobra.Command, path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(cmd.InOrStdin()), nil
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	return file, nil
}

// inputArgs defaults an empty argument list to stdin.
func inputArgs(args []string) []string {
	if len(args) == 0 {
		return []string{"-"}
	}
	return args
}
