package csv

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// ErrUnquotable indicates a field that needs quoting was written in
// ModeNoEscape, where it cannot be represented.
var ErrUnquotable = errors.New("field needs quoting but mode has none")

// Writer writes records in delimited form. Fields are quoted and escaped so
// that a Reader configured with the same delimiter, quote, escape and mode
// reads them back unchanged.
//
// Example usage:
//
//	w, _ := csv.NewWriter(os.Stdout, csv.DefaultWriterOptions())
//	w.Write([]string{"name", "note"})
//	w.Write([]string{"Alice", "says \"hi\""})
//	if err := w.Flush(); err != nil {
//	    // handle error
//	}
type Writer struct {
	w   *bufio.Writer
	f   fieldFormat
	buf bytes.Buffer
	err error
}

// NewWriter creates a Writer with the given options.
func NewWriter(w io.Writer, opts WriterOptions) (*Writer, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Writer{
		w: bufio.NewWriter(w),
		f: newFieldFormat(opts),
	}, nil
}

// Write writes a single record. Output is buffered; call Flush to make sure
// it reaches the underlying writer.
func (w *Writer) Write(fields []string) error {
	if w.err != nil {
		return w.err
	}
	w.buf.Reset()
	if err := w.f.writeRecord(&w.buf, fields); err != nil {
		return err
	}
	if _, err := w.w.Write(w.buf.Bytes()); err != nil {
		w.err = err
		return err
	}
	return nil
}

// WriteAll writes all records and flushes.
func (w *Writer) WriteAll(records [][]string) error {
	for _, rec := range records {
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return w.Flush()
}

// Flush writes any buffered data to the underlying writer.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	if err := w.w.Flush(); err != nil {
		w.err = err
	}
	return w.err
}

// Error reports any error from a previous Write or Flush.
func (w *Writer) Error() error {
	return w.err
}

// fieldFormat holds the quoting rules derived from WriterOptions.
type fieldFormat struct {
	delim   string
	nl      string
	quote   rune
	escape  rune
	mode    Mode
	comment rune
	all     bool
}

func newFieldFormat(opts WriterOptions) fieldFormat {
	return fieldFormat{
		delim:   opts.Delimiter,
		nl:      opts.newLine(),
		quote:   opts.Quote,
		escape:  opts.Escape,
		mode:    opts.Mode,
		comment: opts.Comment,
		all:     opts.QuoteAll,
	}
}

func (f fieldFormat) writeRecord(buf *bytes.Buffer, fields []string) error {
	for i, field := range fields {
		if i > 0 {
			buf.WriteString(f.delim)
		}
		if err := f.writeField(buf, field, i == 0, len(fields) == 1); err != nil {
			return fmt.Errorf("field %d: %w", i, err)
		}
	}
	buf.WriteString(f.nl)
	return nil
}

// writeField writes one field. first is set for the field that opens the
// record, where a leading comment character matters. only is set when the
// field is the whole record, where an empty value would read back as a
// blank line.
func (f fieldFormat) writeField(buf *bytes.Buffer, value string, first, only bool) error {
	if !f.needsQuotes(value, first, only) {
		buf.WriteString(value)
		return nil
	}
	if f.mode == ModeNoEscape {
		return fmt.Errorf("%w: %q", ErrUnquotable, value)
	}

	buf.WriteRune(f.quote)
	for _, ch := range value {
		switch {
		case ch == f.quote && f.escape == f.quote:
			buf.WriteRune(f.quote)
			buf.WriteRune(f.quote)
		case ch == f.quote:
			buf.WriteRune(f.escape)
			buf.WriteRune(f.quote)
		case ch == f.escape:
			buf.WriteRune(f.escape)
			buf.WriteRune(f.escape)
		default:
			buf.WriteRune(ch)
		}
	}
	buf.WriteRune(f.quote)
	return nil
}

func (f fieldFormat) needsQuotes(value string, first, only bool) bool {
	if f.all && f.mode != ModeNoEscape {
		return true
	}
	if value == "" {
		return only
	}
	if strings.ContainsAny(value, "\r\n") {
		return true
	}
	if overlaps(value, f.delim) || overlaps(value, f.nl) {
		return true
	}
	if first && f.comment != 0 {
		if r, _ := utf8.DecodeRuneInString(value); r == f.comment {
			return true
		}
	}
	switch f.mode {
	case ModeRFC4180:
		return strings.ContainsRune(value, f.quote)
	case ModeEscape:
		return strings.ContainsRune(value, f.quote) || strings.ContainsRune(value, f.escape)
	}
	return false
}

// overlaps reports whether sep would be found inside value, or straddling
// the boundary between value and a following sep.
func overlaps(value, sep string) bool {
	return strings.Index(value+sep, sep) < len(value)
}
