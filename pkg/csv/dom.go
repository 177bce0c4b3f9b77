package csv

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/shapestone/shape-core/pkg/ast"
)

// Document represents a CSV file with a fluent API for manipulation.
// All setter methods return *Document to enable method chaining.
//
// A Document consists of:
//   - Optional headers (first row that names the columns)
//   - Data records (remaining rows)
type Document struct {
	headers []string
	records [][]string
}

// NewDocument creates a new empty Document.
func NewDocument() *Document {
	return &Document{
		headers: []string{},
		records: make([][]string, 0),
	}
}

// ParseDocument parses CSV string into a Document with a fluent API.
// Returns an error if the input is not valid CSV.
//
// By default, all rows are treated as data records. Use
// ParseDocumentWithOptions with HasHeader set to split off the header row.
//
// Example:
//
//	doc, err := csv.ParseDocument("name,age\nAlice,30\nBob,25")
//	if err != nil {
//	    // handle error
//	}
func ParseDocument(input string) (*Document, error) {
	return ParseDocumentWithOptions(strings.NewReader(input), DefaultReaderOptions())
}

// ParseDocumentWithOptions reads every record from r into a Document.
// When opts.HasHeader is set the header row becomes Headers().
func ParseDocumentWithOptions(r io.Reader, opts ReaderOptions) (*Document, error) {
	opts.ReuseRecord = false
	reader, err := NewIOReader(r, opts)
	if err != nil {
		return nil, err
	}

	doc := NewDocument()
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		doc.AddRecord(rec.fields)
	}
	if h := reader.Headers(); h != nil {
		doc.SetHeaders(h)
	}
	return doc, nil
}

// SetHeaders sets the column headers for this CSV document.
// Headers are used by Record.GetByName() to access fields by name.
// Returns the Document for method chaining.
func (d *Document) SetHeaders(headers []string) *Document {
	d.headers = headers
	return d
}

// AddRecord adds a data record (row) to the document.
// Returns the Document for method chaining.
func (d *Document) AddRecord(fields []string) *Document {
	d.records = append(d.records, fields)
	return d
}

// Headers returns the column headers.
// Returns an empty slice if no headers have been set.
func (d *Document) Headers() []string {
	return d.headers
}

// Records returns all data records as Record objects.
func (d *Document) Records() []Record {
	records := make([]Record, len(d.records))
	for i, fields := range d.records {
		records[i] = Record{fields: fields, headers: d.headers, row: i + 1}
	}
	return records
}

// RecordCount returns the number of data records in the document.
// This does not include the header row.
func (d *Document) RecordCount() int {
	return len(d.records)
}

// GetRecord returns the record at the specified index.
// Returns (Record, false) if the index is out of bounds.
// Index is 0-based (0 = first data record, not the header).
func (d *Document) GetRecord(index int) (Record, bool) {
	if index < 0 || index >= len(d.records) {
		return Record{}, false
	}
	return Record{fields: d.records[index], headers: d.headers, row: index + 1}, true
}

// CSV renders the Document back to a CSV string.
// This includes headers (if set) followed by all data records.
//
// Example:
//
//	doc := csv.NewDocument().
//	    SetHeaders([]string{"name", "age"}).
//	    AddRecord([]string{"Alice", "30"})
//	csvStr, _ := doc.CSV()
//	// Output: name,age\nAlice,30\n
func (d *Document) CSV() (string, error) {
	b, err := d.Render(DefaultWriterOptions())
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Render writes the Document with the given writer options.
func (d *Document) Render(opts WriterOptions) ([]byte, error) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, opts)
	if err != nil {
		return nil, err
	}
	if len(d.headers) > 0 {
		if err := w.Write(d.headers); err != nil {
			return nil, err
		}
	}
	if err := w.WriteAll(d.records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ToAST converts the Document to an AST ArrayDataNode.
// Headers, when set, become the first record.
func (d *Document) ToAST() *ast.ArrayDataNode {
	if len(d.headers) == 0 {
		return RecordsToNode(d.records)
	}
	all := make([][]string, 0, len(d.records)+1)
	all = append(all, d.headers)
	return RecordsToNode(append(all, d.records...))
}

// FromAST creates a Document from an AST ArrayDataNode.
// Every record becomes a data record; call SetHeaders to designate one.
func FromAST(node ast.SchemaNode) (*Document, error) {
	records, err := NodeToRecords(node)
	if err != nil {
		return nil, fmt.Errorf("from AST: %w", err)
	}
	doc := NewDocument()
	for _, rec := range records {
		doc.AddRecord(rec)
	}
	return doc, nil
}
