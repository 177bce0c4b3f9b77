package tokenizer

import (
	"errors"
	"fmt"
)

// Bad-data kinds. A record carrying any of these is still fully tokenized;
// the caller decides whether to keep it.
var (
	// ErrBareQuote is a quote inside a field that did not start with one.
	ErrBareQuote = errors.New("bare \" in non-quoted field")
	// ErrQuoteAfterClose is a quote found after a quoted field was closed.
	ErrQuoteAfterClose = errors.New("extraneous \" after closing quote")
	// ErrLineBreakInQuotes is a raw line ending inside a quoted field when
	// that is disallowed. The line ending terminates the record.
	ErrLineBreakInQuotes = errors.New("line break in quoted field")
	// ErrUnterminatedQuote is a quoted field still open at end of input.
	ErrUnterminatedQuote = errors.New("unterminated quoted field")
)

// ErrFieldTooLarge indicates a field exceeded MaxFieldSize.
var ErrFieldTooLarge = errors.New("field exceeds maximum size")

// Issue is one bad-data finding within the current record.
type Issue struct {
	Kind error
	// Field is the zero-based index of the field being built.
	Field int
	// Offset is the character offset within the raw record.
	Offset int
}

// SizeError reports a field that outgrew MaxFieldSize. The rest of the
// record is discarded by the next call to Next.
type SizeError struct {
	// Row is the one-based record number.
	Row int
	// Line is the physical line the record started on.
	Line int
	// Field is the zero-based field index.
	Field int
	// Size is the length the field would have reached.
	Size int
	Max  int
}

// Error returns a description of the violation.
func (e *SizeError) Error() string {
	return fmt.Sprintf("record %d (line %d), field %d: %d characters exceeds limit of %d",
		e.Row, e.Line, e.Field, e.Size, e.Max)
}

// Unwrap returns ErrFieldTooLarge.
func (e *SizeError) Unwrap() error {
	return ErrFieldTooLarge
}
