package csv

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/shapestone/shape-dsv/internal/tokenizer"
	"github.com/shapestone/shape-dsv/pkg/source"
)

// Reader reads records from a character source one at a time.
//
// Example usage:
//
//	r, err := csv.NewIOReader(file, csv.DefaultReaderOptions())
//	if err != nil {
//	    // invalid options
//	}
//	for {
//	    rec, err := r.Read()
//	    if err == io.EOF {
//	        break
//	    }
//	    if err != nil {
//	        // handle error
//	    }
//	    fmt.Println(rec.Fields())
//	}
//
// A Reader is not safe for concurrent use.
type Reader struct {
	src  source.Source
	tok  *tokenizer.Tokenizer
	opts ReaderOptions

	headers    []string
	headerDone bool
	expected   int

	current    bool
	inCallback bool
	reused     *Record
}

// NewReader creates a Reader over src. The options are validated and copied.
func NewReader(src source.Source, opts ReaderOptions) (*Reader, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	opts.DetectDelimiterValues = append([]string(nil), opts.DetectDelimiterValues...)
	opts.WhiteSpaceChars = append([]rune(nil), opts.WhiteSpaceChars...)
	return &Reader{
		src:      src,
		tok:      tokenizer.New(src, opts.tokenizerConfig()),
		opts:     opts,
		expected: opts.FieldsPerRecord,
	}, nil
}

// NewIOReader creates a Reader decoding r with opts.Encoding (UTF-8 when nil).
func NewIOReader(r io.Reader, opts ReaderOptions) (*Reader, error) {
	return NewReader(source.FromEncodedReader(r, opts.Encoding), opts)
}

// Read returns the next record, waiting for sources that support it.
// It returns io.EOF when the input is exhausted.
func (r *Reader) Read() (*Record, error) {
	return r.ReadContext(context.Background())
}

// ReadContext is like Read but gives up waiting when ctx is done. Sources
// that cannot wait make it return ErrWouldBlock instead.
func (r *Reader) ReadContext(ctx context.Context) (*Record, error) {
	for {
		rec, err := r.TryRead()
		if !errors.Is(err, ErrWouldBlock) {
			return rec, err
		}
		w, ok := r.src.(source.Waiter)
		if !ok {
			return nil, err
		}
		if werr := w.Wait(ctx); werr != nil {
			return nil, werr
		}
	}
}

// TryRead returns the next record without waiting. When the source has
// nothing ready it returns ErrWouldBlock and the partial record is kept
// for the next call.
func (r *Reader) TryRead() (*Record, error) {
	r.current = false
	for {
		st, err := r.tok.Next()
		if err != nil {
			var se *tokenizer.SizeError
			if errors.As(err, &se) {
				return nil, &FieldSizeError{
					Row:        se.Row,
					Line:       se.Line,
					FieldIndex: se.Field,
					Size:       se.Size,
					Max:        se.Max,
				}
			}
			return nil, err
		}
		switch st {
		case tokenizer.EOF:
			return nil, io.EOF
		case tokenizer.WouldBlock:
			return nil, ErrWouldBlock
		}

		if issues := r.tok.Issues(); len(issues) > 0 {
			keep, err := r.reportBadData(issues)
			if err != nil {
				return nil, err
			}
			if !keep {
				continue
			}
		}

		if r.opts.HasHeader && !r.headerDone {
			r.headers = append([]string(nil), r.tok.Fields()...)
			r.headerDone = true
			if r.expected == 0 {
				r.expected = len(r.headers)
			}
			continue
		}

		if err := r.checkFieldCount(); err != nil {
			return nil, err
		}
		r.current = true
		return r.record(), nil
	}
}

// reportBadData hands each finding to the handler. It reports whether the
// record should be kept.
func (r *Reader) reportBadData(issues []tokenizer.Issue) (bool, error) {
	if r.opts.BadDataFound == nil {
		return false, &BadDataError{BadData: r.badData(issues[0])}
	}
	keep := true
	for _, issue := range issues {
		bd := r.badData(issue)
		r.inCallback = true
		action := r.opts.BadDataFound(bd)
		r.inCallback = false
		if action == SkipRecord {
			keep = false
		}
	}
	return keep, nil
}

func (r *Reader) badData(issue tokenizer.Issue) BadData {
	bd := BadData{
		Kind:       issue.Kind,
		FieldIndex: issue.Field,
		RawRecord:  r.tok.Raw(),
		Row:        r.tok.Row(),
		Line:       r.tok.Line(),
		Column:     issue.Offset + 1,
	}
	if issue.Field < r.tok.FieldCount() {
		bd.Field = r.tok.Field(issue.Field)
	}
	return bd
}

func (r *Reader) checkFieldCount() error {
	if r.tok.Blank() {
		return nil
	}
	n := r.tok.FieldCount()
	if r.expected == 0 {
		r.expected = n
		return nil
	}
	if r.expected > 0 && n != r.expected {
		return &ParseError{
			StartLine: r.tok.Line(),
			Line:      r.tok.Line(),
			Column:    1,
			Err:       ErrFieldCount,
		}
	}
	return nil
}

// record builds the owned value for the current record.
func (r *Reader) record() *Record {
	rec := r.reused
	if rec == nil || !r.opts.ReuseRecord {
		rec = &Record{}
	}
	rec.fields = append(rec.fields[:0], r.tok.Fields()...)
	rec.headers = r.headers
	rec.raw = r.tok.Raw()
	rec.row = r.tok.Row()
	rec.line = r.tok.Line()
	rec.chars = r.tok.RecordChars()
	rec.bytes = r.tok.RecordBytes()
	rec.blank = r.tok.Blank()
	if r.opts.ReuseRecord {
		r.reused = rec
	}
	return rec
}

// FieldCount returns the number of fields in the current record.
func (r *Reader) FieldCount() (int, error) {
	if !r.hasRecord() {
		return 0, ErrNoRecord
	}
	return r.tok.FieldCount(), nil
}

// Field returns field i of the current record.
func (r *Reader) Field(i int) (string, error) {
	if !r.hasRecord() {
		return "", ErrNoRecord
	}
	if i < 0 || i >= r.tok.FieldCount() {
		return "", fmt.Errorf("%w: %d not in [0, %d)", ErrFieldIndex, i, r.tok.FieldCount())
	}
	return r.tok.Field(i), nil
}

// RawRecord returns the current record's text as it appeared in the input.
func (r *Reader) RawRecord() (string, error) {
	if !r.hasRecord() {
		return "", ErrNoRecord
	}
	return r.tok.Raw(), nil
}

func (r *Reader) hasRecord() bool {
	return r.current && !r.inCallback && r.tok.Valid()
}

// Headers returns the header record when HasHeader is set and it has been read.
func (r *Reader) Headers() []string {
	return r.headers
}

// CharCount returns the number of characters consumed so far.
func (r *Reader) CharCount() int64 {
	return r.tok.CharCount()
}

// ByteCount returns the encoded size of everything consumed so far. It is
// zero unless CountBytes is set.
func (r *Reader) ByteCount() int64 {
	return r.tok.ByteCount()
}

// Lines returns the number of line endings consumed so far.
func (r *Reader) Lines() int {
	return r.tok.Lines()
}

// DetectedDelimiter returns the delimiter in effect. With DetectDelimiter
// set it reflects the detection result once the first read has run.
func (r *Reader) DetectedDelimiter() string {
	return r.tok.Delimiter()
}

// CacheStats describes field interning effectiveness.
type CacheStats struct {
	Hits     int
	Misses   int
	Capacity int
}

// CacheStats returns field cache counters. ok is false when CacheFields is off.
func (r *Reader) CacheStats() (stats CacheStats, ok bool) {
	s, ok := r.tok.CacheStats()
	if !ok {
		return CacheStats{}, false
	}
	return CacheStats{Hits: s.Hits, Misses: s.Misses, Capacity: s.Capacity}, true
}

// BufferStats describes character buffer activity.
type BufferStats struct {
	Fills    int
	Grows    int
	Capacity int
}

// BufferStats returns how often the buffer was refilled and grown, and its
// current capacity in characters.
func (r *Reader) BufferStats() BufferStats {
	s := r.tok.BufferStats()
	return BufferStats{Fills: s.Fills, Grows: s.Grows, Capacity: s.Capacity}
}

// ReadAll reads all remaining records.
func (r *Reader) ReadAll() ([]*Record, error) {
	var out []*Record
	for {
		rec, err := r.Read()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		if r.opts.ReuseRecord {
			cp := *rec
			cp.fields = rec.Fields()
			rec = &cp
		}
		out = append(out, rec)
	}
}
