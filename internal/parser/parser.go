// Package parser builds a shape-core AST from delimited text.
// It drives the record tokenizer over the whole input and applies
// document-level policy: bad-line handling, field-count validation and
// record size limits.
package parser

import (
	"errors"
	"fmt"

	"github.com/shapestone/shape-core/pkg/ast"
	shapetokenizer "github.com/shapestone/shape-core/pkg/tokenizer"

	"github.com/shapestone/shape-dsv/internal/tokenizer"
	"github.com/shapestone/shape-dsv/pkg/source"
)

// BadLineMode specifies how to handle malformed lines.
type BadLineMode int

const (
	// BadLineModeError returns an error on malformed lines (default).
	BadLineModeError BadLineMode = iota
	// BadLineModeWarn reports a warning and skips the line.
	BadLineModeWarn
	// BadLineModeSkip silently skips malformed lines.
	BadLineModeSkip
)

// Options configures the parser behavior.
type Options struct {
	// Tokenizer is the tokenizing policy.
	Tokenizer tokenizer.Config
	// FieldsPerRecord validates field count. 0=first record sets count, negative=no validation
	FieldsPerRecord int
	// OnBadLine specifies how to handle malformed lines. Default: BadLineModeError
	OnBadLine BadLineMode
	// MaxRecordSize is the maximum total field length of a record in characters. 0 means no limit.
	MaxRecordSize int
	// WarningCallback is invoked for warnings when OnBadLine is BadLineModeWarn
	WarningCallback func(line int, message string)
}

// DefaultOptions returns default parser options.
// FieldsPerRecord defaults to -1 (no validation).
func DefaultOptions() Options {
	return Options{
		Tokenizer:       tokenizer.DefaultConfig(),
		FieldsPerRecord: -1,
	}
}

// ErrFieldCount indicates a record has the wrong number of fields.
var ErrFieldCount = errors.New("wrong number of fields")

// ErrRecordTooLarge indicates a record exceeded MaxRecordSize.
var ErrRecordTooLarge = errors.New("record exceeds maximum size")

// Parser turns a character source into an *ast.ArrayDataNode of records.
type Parser struct {
	tok            *tokenizer.Tokenizer
	opts           Options
	expectedFields int
	recordNum      int
}

// NewParser creates a parser for the given input string.
func NewParser(input string) *Parser {
	return NewParserWithOptions(input, DefaultOptions())
}

// NewParserWithOptions creates a parser for input with custom options.
func NewParserWithOptions(input string, opts Options) *Parser {
	return NewParserFromSource(source.FromString(input), opts)
}

// NewParserFromStream creates a parser over a shape-core stream.
// This allows parsing from io.Reader using tokenizer.NewStreamFromReader.
func NewParserFromStream(stream shapetokenizer.Stream) *Parser {
	return NewParserFromStreamWithOptions(stream, DefaultOptions())
}

// NewParserFromStreamWithOptions creates a parser over a shape-core stream with custom options.
func NewParserFromStreamWithOptions(stream shapetokenizer.Stream, opts Options) *Parser {
	return NewParserFromSource(source.FromStream(stream), opts)
}

// NewParserFromSource creates a parser over any character source.
func NewParserFromSource(src source.Source, opts Options) *Parser {
	return &Parser{
		tok:            tokenizer.New(src, opts.Tokenizer),
		opts:           opts,
		expectedFields: opts.FieldsPerRecord,
	}
}

// Parse reads the whole input and returns its AST.
//
// Returns *ast.ArrayDataNode - an array of records, where each record is an
// ArrayDataNode of fields. Each field is a LiteralNode containing a string.
// A source that reports would-block fails with source.ErrWouldBlock; the
// parser does not wait.
func (p *Parser) Parse() (ast.SchemaNode, error) {
	records := make([]ast.SchemaNode, 0, 16)

	for {
		offset := p.tok.CharCount()
		st, err := p.tok.Next()
		if err != nil {
			var se *tokenizer.SizeError
			if !errors.As(err, &se) {
				return nil, err
			}
			if err := p.handleBadLine(se.Line, err); err != nil {
				return nil, err
			}
			continue
		}
		switch st {
		case tokenizer.EOF:
			return ast.NewArrayDataNode(records, ast.ZeroPosition()), nil
		case tokenizer.WouldBlock:
			return nil, source.ErrWouldBlock
		}

		line := p.tok.Line()
		if issues := p.tok.Issues(); len(issues) > 0 {
			issue := issues[0]
			err := fmt.Errorf("record on line %d, field %d: %w", line, issue.Field+1, issue.Kind)
			if err := p.handleBadLine(line, err); err != nil {
				return nil, err
			}
			continue
		}

		record := p.buildRecord(int(offset), line)

		fieldCount := record.Len()
		if p.opts.FieldsPerRecord >= 0 {
			if p.recordNum == 0 && p.opts.FieldsPerRecord == 0 {
				// First record sets expected count
				p.expectedFields = fieldCount
			} else if p.expectedFields > 0 && fieldCount != p.expectedFields {
				fieldErr := fmt.Errorf("record on line %d: %w (got %d, expected %d)",
					line, ErrFieldCount, fieldCount, p.expectedFields)
				if err := p.handleBadLine(line, fieldErr); err != nil {
					return nil, err
				}
				continue
			}
		}

		if p.opts.MaxRecordSize > 0 {
			if size := p.recordSize(); size > p.opts.MaxRecordSize {
				sizeErr := fmt.Errorf("record on line %d: %w (%d > %d)",
					line, ErrRecordTooLarge, size, p.opts.MaxRecordSize)
				if err := p.handleBadLine(line, sizeErr); err != nil {
					return nil, err
				}
				continue
			}
		}

		records = append(records, record)
		p.recordNum++
	}
}

// DetectedDelimiter returns the delimiter in effect after parsing.
func (p *Parser) DetectedDelimiter() string {
	return p.tok.Delimiter()
}

// buildRecord converts the current record into AST nodes. Every node of the
// record carries the record's start position.
func (p *Parser) buildRecord(offset, line int) *ast.ArrayDataNode {
	pos := ast.NewPosition(offset, line, 1)
	fields := make([]ast.SchemaNode, 0, p.tok.FieldCount())
	for _, v := range p.tok.Fields() {
		fields = append(fields, ast.NewLiteralNode(v, pos))
	}
	return ast.NewArrayDataNode(fields, pos)
}

// handleBadLine handles a parsing error based on OnBadLine mode.
// Returns nil if parsing should continue, or the error if it should stop.
func (p *Parser) handleBadLine(line int, err error) error {
	switch p.opts.OnBadLine {
	case BadLineModeSkip:
		return nil
	case BadLineModeWarn:
		if p.opts.WarningCallback != nil {
			p.opts.WarningCallback(line, err.Error())
		}
		return nil
	default:
		return err
	}
}

// recordSize returns the total length of the current record's fields in characters.
func (p *Parser) recordSize() int {
	size := 0
	for i := 0; i < p.tok.FieldCount(); i++ {
		size += len(p.tok.FieldRunes(i))
	}
	return size
}
