package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/shapestone/shape-dsv/internal/logging"
	"github.com/shapestone/shape-dsv/pkg/csv"
)

// readResult summarizes one input after it has been read to the end.
type readResult struct {
	Path      string
	Records   int
	BadData   int
	Oversized int
	Chars     int64
	Bytes     int64
	Lines     int
	Delimiter string
	Headers   []string
	Buffer    csv.BufferStats
}

// readInput streams every record of path through fn. Bad data is logged and
// counted; oversized fields are logged and their records dropped.
func readInput(ctx context.Context, cmd *cobra.Command, path string, opts csv.ReaderOptions,
	skipBad bool, fn func(*csv.Record) error,
) (readResult, error) {
	res := readResult{Path: path}
	logger := logging.FromContext(ctx)

	in, err := openInput(cmd, path)
	if err != nil {
		return res, err
	}
	defer in.Close()

	opts.BadDataFound = badDataLogger(logger, path, &res.BadData, skipBad)
	r, err := csv.NewIOReader(in, opts)
	if err != nil {
		return res, err
	}

	for {
		rec, err := r.ReadContext(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var se *csv.FieldSizeError
			if errors.As(err, &se) {
				res.Oversized++
				logger.Warn("field too large",
					logging.FieldPath, path,
					logging.FieldRow, se.Row,
					logging.FieldLine, se.Line,
					logging.FieldField, se.FieldIndex+1,
				)
				continue
			}
			return res, fmt.Errorf("%s: %w", path, err)
		}
		res.Records++
		if fn != nil {
			if err := fn(rec); err != nil {
				return res, err
			}
		}
	}

	res.Chars = r.CharCount()
	res.Bytes = r.ByteCount()
	res.Lines = r.Lines()
	res.Delimiter = r.DetectedDelimiter()
	res.Headers = r.Headers()
	res.Buffer = r.BufferStats()
	logger.Debug("read input",
		logging.FieldPath, path,
		logging.FieldRecords, res.Records,
		logging.FieldBadData, res.BadData,
		logging.FieldDelimiter, res.Delimiter,
		logging.FieldFills, res.Buffer.Fills,
		logging.FieldGrows, res.Buffer.Grows,
		logging.FieldBuffer, res.Buffer.Capacity,
	)
	return res, nil
}

// strictErr returns ErrBadDataFound when strict is set and any finding was
// reported.
func strictErr(strict bool, results ...readResult) error {
	if !strict {
		return nil
	}
	for _, res := range results {
		if res.BadData > 0 || res.Oversized > 0 {
			return ErrBadDataFound
		}
	}
	return nil
}
