// Package csv provides delimited-text parsing, writing and AST generation.
//
// The package reads CSV and its relatives (semicolon, tab or pipe separated
// files, multi-character delimiters, backslash-escaped dialects) through a
// streaming tokenizer that works on any character source, including sources
// that have no data yet and must be resumed later.
//
// # Thread Safety
//
// The package-level functions are safe for concurrent use by multiple
// goroutines. Each call creates its own parser instance with no shared
// mutable state. A Reader, Scanner or Writer must be used by one goroutine
// at a time.
//
//	// Safe: Concurrent parsing
//	go func() { csv.Parse(input1) }()
//	go func() { csv.Parse(input2) }()
//
// # Reading records
//
// Reader returns one owned Record per call:
//
//	opts := csv.DefaultReaderOptions()
//	opts.HasHeader = true
//	r, err := csv.NewIOReader(file, opts)
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
//	    name, _ := rec.GetByName("name")
//	}
//
// For incremental input, build the Reader over a source.Feed and call
// TryRead, which returns ErrWouldBlock until the next record is complete.
//
// # Parsing APIs
//
// The AST functions build a shape-core tree:
//
//   - Parse(string) - Parses CSV from a string in memory
//   - ParseReader(io.Reader) - Parses CSV from any io.Reader with streaming support
//   - ParseWithOptions / ParseReaderWithOptions - The same with a custom dialect
//   - ParseWithRecovery - Adds bad-line handling (error, warn or skip)
//
// # Example usage with Parse:
//
//	csvStr := "name,age\nAlice,30\nBob,25"
//	node, err := csv.Parse(csvStr)
//	if err != nil {
//	    // handle error
//	}
//	// node is now a *ast.ArrayDataNode representing the CSV data
//
// # Writing
//
// Writer and Render quote fields so that a Reader with the same dialect
// reads them back unchanged.
package csv

import (
	"io"
	"strings"

	"github.com/shapestone/shape-core/pkg/ast"
	"github.com/shapestone/shape-core/pkg/tokenizer"

	"github.com/shapestone/shape-dsv/internal/parser"
	"github.com/shapestone/shape-dsv/pkg/source"
)

// Parse parses CSV format into an AST from a string.
//
// Returns an ast.ArrayDataNode representing the parsed CSV:
//   - *ast.ArrayDataNode for the file (array of records)
//   - Each record is an *ast.ArrayDataNode of fields
//   - Each field is an *ast.LiteralNode containing a string value
//
// For parsing large files or streaming data, use ParseReader instead.
//
// Example:
//
//	node, err := csv.Parse("name,age\nAlice,30\nBob,25")
//	arrayNode := node.(*ast.ArrayDataNode)
//	records := arrayNode.Elements()
//	// records[0] is the header row
//	// records[1] is the first data row
func Parse(input string) (ast.SchemaNode, error) {
	p := parser.NewParser(input)
	return p.Parse()
}

// ParseReader parses CSV format into an AST from an io.Reader.
//
// The reader is consumed through a buffered shape-core stream, so any
// io.Reader works: files, strings.Reader, network or compressed streams.
//
// Example parsing from a file:
//
//	file, err := os.Open("data.csv")
//	if err != nil {
//	    // handle error
//	}
//	defer file.Close()
//
//	node, err := csv.ParseReader(file)
func ParseReader(reader io.Reader) (ast.SchemaNode, error) {
	stream := tokenizer.NewStreamFromReader(reader)
	p := parser.NewParserFromStream(stream)
	return p.Parse()
}

// ParseWithOptions parses input with a custom dialect. HasHeader, ReuseRecord
// and BadDataFound do not apply to the AST: the header is the first record
// and bad data fails the parse.
func ParseWithOptions(input string, opts ReaderOptions) (ast.SchemaNode, error) {
	return ParseWithRecovery(input, opts, DefaultErrorRecoveryOptions())
}

// ParseReaderWithOptions is ParseWithOptions over an io.Reader decoded with
// opts.Encoding.
func ParseReaderWithOptions(reader io.Reader, opts ReaderOptions) (ast.SchemaNode, error) {
	return parseSource(source.FromEncodedReader(reader, opts.Encoding), opts, DefaultErrorRecoveryOptions())
}

// ParseWithRecovery parses input and applies recovery to malformed lines.
// In warn and skip modes the offending records are left out of the result.
//
// Example:
//
//	recovery := csv.DefaultErrorRecoveryOptions()
//	recovery.OnBadLine = csv.BadLineModeWarn
//	recovery.WarningCallback = func(line int, msg string) {
//	    log.Printf("line %d: %s", line, msg)
//	}
//	node, err := csv.ParseWithRecovery(input, csv.DefaultReaderOptions(), recovery)
func ParseWithRecovery(input string, opts ReaderOptions, recovery ErrorRecoveryOptions) (ast.SchemaNode, error) {
	return parseSource(source.FromString(input), opts, recovery)
}

func parseSource(src source.Source, opts ReaderOptions, recovery ErrorRecoveryOptions) (ast.SchemaNode, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	p := parser.NewParserFromSource(src, parser.Options{
		Tokenizer:       opts.tokenizerConfig(),
		FieldsPerRecord: opts.FieldsPerRecord,
		OnBadLine:       recovery.OnBadLine.parserMode(),
		MaxRecordSize:   recovery.MaxRecordSize,
		WarningCallback: recovery.WarningCallback,
	})
	return p.Parse()
}

// Format returns the format identifier for this parser.
// Returns "CSV" to identify this as the CSV data format parser.
func Format() string {
	return "CSV"
}

// Validate checks if the input string is valid CSV.
//
// Returns nil if the input is valid CSV.
// Returns an error with details about why the CSV is invalid.
//
//	if err := csv.Validate(input); err != nil {
//	    fmt.Println("Invalid CSV:", err)
//	}
//
// Valid CSV includes:
//   - Simple fields: name,age
//   - Quoted fields: "name","age"
//   - Empty fields: a,,c
//   - Escaped quotes: "field with ""quotes"""
//   - Newlines in quoted fields: "field\nwith\nnewlines"
func Validate(input string) error {
	return ValidateReader(strings.NewReader(input))
}

// ValidateReader checks if the input from an io.Reader is valid CSV.
// Records are checked as they stream in; nothing is retained.
func ValidateReader(reader io.Reader) error {
	return ValidateReaderWithOptions(reader, DefaultReaderOptions())
}

// ValidateReaderWithOptions checks the input against a custom dialect and
// returns the first error found.
func ValidateReaderWithOptions(reader io.Reader, opts ReaderOptions) error {
	opts.ReuseRecord = true
	opts.BadDataFound = nil
	r, err := NewIOReader(reader, opts)
	if err != nil {
		return err
	}
	for {
		if _, err := r.Read(); err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
	}
}
