package csv

import (
	"errors"
	"fmt"

	"github.com/shapestone/shape-dsv/internal/parser"
	"github.com/shapestone/shape-dsv/internal/tokenizer"
	"github.com/shapestone/shape-dsv/pkg/source"
)

// BadLineMode specifies how the parser handles malformed CSV lines.
type BadLineMode int

const (
	// BadLineModeError returns an error on malformed lines (default).
	BadLineModeError BadLineMode = iota
	// BadLineModeWarn logs a warning but continues parsing.
	BadLineModeWarn
	// BadLineModeSkip silently skips malformed lines.
	BadLineModeSkip
)

// String returns the string representation of BadLineMode.
func (m BadLineMode) String() string {
	switch m {
	case BadLineModeError:
		return "error"
	case BadLineModeWarn:
		return "warn"
	case BadLineModeSkip:
		return "skip"
	default:
		return fmt.Sprintf("BadLineMode(%d)", m)
	}
}

func (m BadLineMode) parserMode() parser.BadLineMode {
	switch m {
	case BadLineModeWarn:
		return parser.BadLineModeWarn
	case BadLineModeSkip:
		return parser.BadLineModeSkip
	default:
		return parser.BadLineModeError
	}
}

// ParseError represents a parsing error with position information.
// It provides detailed context about where the error occurred in the CSV data.
type ParseError struct {
	// StartLine is the line where parsing started for this record (1-indexed).
	StartLine int
	// Line is the current line where the error occurred (1-indexed).
	Line int
	// Column is the column where the error occurred (1-indexed).
	Column int
	// Err is the underlying error.
	Err error
}

// Error returns a formatted error message with position information.
func (e *ParseError) Error() string {
	if e.StartLine == e.Line {
		return fmt.Sprintf("parse error on line %d, column %d: %v", e.Line, e.Column, e.Err)
	}
	return fmt.Sprintf("parse error on line %d (started line %d), column %d: %v",
		e.Line, e.StartLine, e.Column, e.Err)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// OptionsError reports an invalid configuration value.
type OptionsError struct {
	Field   string
	Message string
}

func (e *OptionsError) Error() string {
	return "csv: invalid " + e.Field + ": " + e.Message
}

// Bad-data kinds. Each is reported through BadData.Kind and can be matched
// with errors.Is on *BadDataError.
var (
	// ErrBareQuote indicates a quote character inside a non-quoted field.
	ErrBareQuote = tokenizer.ErrBareQuote
	// ErrQuoteAfterClose indicates data between a closing quote and the
	// next delimiter or line ending.
	ErrQuoteAfterClose = tokenizer.ErrQuoteAfterClose
	// ErrLineBreakInQuotes indicates a raw line ending inside a quoted
	// field when LineBreakInQuotedFieldIsBadData is set. The record ends at
	// the line ending and the rest of the quoted field is read as the next
	// record, which usually reports its own ErrBareQuote.
	ErrLineBreakInQuotes = tokenizer.ErrLineBreakInQuotes
	// ErrUnterminatedQuote indicates input ended inside a quoted field.
	ErrUnterminatedQuote = tokenizer.ErrUnterminatedQuote

	// ErrQuote matches every quote-related bad-data kind.
	ErrQuote = errors.New("bad quote")
)

// Common parsing errors
var (
	// ErrFieldCount indicates a record has the wrong number of fields.
	ErrFieldCount = parser.ErrFieldCount

	// ErrFieldTooLarge indicates a field exceeded MaxFieldSize.
	ErrFieldTooLarge = tokenizer.ErrFieldTooLarge

	// ErrRecordTooLarge indicates a record exceeded MaxRecordSize.
	ErrRecordTooLarge = parser.ErrRecordTooLarge

	// ErrNoRecord indicates there is no current valid record to inspect.
	ErrNoRecord = errors.New("no current record")

	// ErrFieldIndex indicates a field index out of range.
	ErrFieldIndex = errors.New("field index out of range")

	// ErrWouldBlock indicates the source has no data yet but is not exhausted.
	ErrWouldBlock = source.ErrWouldBlock
)

// BadData describes one bad-data finding in a record.
type BadData struct {
	// Kind is one of ErrBareQuote, ErrQuoteAfterClose, ErrLineBreakInQuotes
	// or ErrUnterminatedQuote.
	Kind error
	// Field is the value the field was read as.
	Field string
	// FieldIndex is the zero-based index of the offending field.
	FieldIndex int
	// RawRecord is the record text as it appeared in the input.
	RawRecord string
	// Row is the 1-based record number.
	Row int
	// Line is the line on which the record started (1-indexed).
	Line int
	// Column is the character offset of the finding within the record (1-indexed).
	Column int
}

// BadDataAction is returned by a BadDataHandler.
type BadDataAction int

const (
	// KeepRecord returns the record to the caller despite the finding.
	KeepRecord BadDataAction = iota
	// SkipRecord drops the record and continues with the next one.
	SkipRecord
)

// BadDataHandler is invoked for each bad-data finding. Current-record
// accessors on the Reader fail with ErrNoRecord while it runs.
type BadDataHandler func(BadData) BadDataAction

// IgnoreBadData is a BadDataHandler that keeps every record.
func IgnoreBadData(BadData) BadDataAction { return KeepRecord }

// BadDataError is returned by Read when bad data is found and no
// BadDataFound handler is configured.
type BadDataError struct {
	BadData
}

func (e *BadDataError) Error() string {
	return fmt.Sprintf("bad data on line %d, field %d: %v (record %q)",
		e.Line, e.FieldIndex+1, e.Kind, e.RawRecord)
}

// Unwrap returns the bad-data kind.
func (e *BadDataError) Unwrap() error {
	return e.Kind
}

// Is reports quote-related kinds as ErrQuote.
func (e *BadDataError) Is(target error) bool {
	return target == ErrQuote
}

// FieldSizeError is returned when a field exceeds MaxFieldSize. The
// offending record is abandoned and reading can continue with the next one.
type FieldSizeError struct {
	Row        int
	Line       int
	FieldIndex int
	Size       int
	Max        int
}

func (e *FieldSizeError) Error() string {
	return fmt.Sprintf("record %d on line %d, field %d: field exceeds maximum size (%d > %d)",
		e.Row, e.Line, e.FieldIndex+1, e.Size, e.Max)
}

// Unwrap returns ErrFieldTooLarge.
func (e *FieldSizeError) Unwrap() error {
	return ErrFieldTooLarge
}

// WarningHandler is a callback function for logging warnings.
type WarningHandler func(line int, message string)

// ErrorRecoveryOptions configures error handling behavior for the AST
// parsing functions.
type ErrorRecoveryOptions struct {
	// OnBadLine specifies how to handle malformed lines.
	// Default: BadLineModeError
	OnBadLine BadLineMode

	// WarningCallback is invoked for warnings (when OnBadLine is BadLineModeWarn).
	// If nil, warnings are silently ignored.
	WarningCallback WarningHandler

	// MaxRecordSize is the maximum allowed total field length of a record
	// in characters. 0 means no limit.
	MaxRecordSize int
}

// DefaultErrorRecoveryOptions returns the default error recovery configuration.
func DefaultErrorRecoveryOptions() ErrorRecoveryOptions {
	return ErrorRecoveryOptions{
		OnBadLine:       BadLineModeError,
		WarningCallback: nil,
		MaxRecordSize:   0,
	}
}
