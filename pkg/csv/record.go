package csv

import "fmt"

// Record represents a single row in a CSV file.
// It provides type-safe access to field values by index or by header name.
//
// A Record returned by Reader owns its data and stays valid after the next
// read, unless ReuseRecord is enabled.
type Record struct {
	fields  []string
	headers []string // Reference to document headers for name-based access

	raw   string
	row   int
	line  int
	chars int
	bytes int
	blank bool
}

// Get gets the field value at the specified index.
// Returns (value, false) if the index is out of bounds.
// Index is 0-based.
func (r Record) Get(index int) (string, bool) {
	if index < 0 || index >= len(r.fields) {
		return "", false
	}
	return r.fields[index], true
}

// Field returns the field at index, or an error wrapping ErrFieldIndex.
func (r Record) Field(index int) (string, error) {
	if index < 0 || index >= len(r.fields) {
		return "", fmt.Errorf("%w: %d not in [0, %d)", ErrFieldIndex, index, len(r.fields))
	}
	return r.fields[index], nil
}

// GetByName gets the field value by header name.
// Returns (value, false) if the header name is not found or if no headers are set.
//
// Example:
//
//	record, _ := doc.GetRecord(0)
//	name, ok := record.GetByName("name")
//	if !ok {
//	    // Header "name" not found or no headers set
//	}
func (r Record) GetByName(name string) (string, bool) {
	for i, header := range r.headers {
		if header == name {
			return r.Get(i)
		}
	}
	return "", false
}

// Fields returns all field values in the record.
// This returns a copy of the fields slice.
func (r Record) Fields() []string {
	fields := make([]string, len(r.fields))
	copy(fields, r.fields)
	return fields
}

// Len returns the number of fields in the record.
func (r Record) Len() int {
	return len(r.fields)
}

// Headers returns the column names the record is matched against.
func (r Record) Headers() []string {
	return r.headers
}

// Raw returns the record text as it appeared in the input, including
// quotes and the line ending. It is empty for records built in memory.
func (r Record) Raw() string {
	return r.raw
}

// Row returns the 1-based record number within the input. The header
// counts as a record; comment lines and skipped blank lines do not.
func (r Record) Row() int {
	return r.row
}

// Line returns the line on which the record started (1-indexed).
func (r Record) Line() int {
	return r.line
}

// CharCount returns the number of characters the record occupied in the
// input, line ending included.
func (r Record) CharCount() int {
	return r.chars
}

// ByteCount returns the encoded size of the record. It is zero unless
// ReaderOptions.CountBytes is set.
func (r Record) ByteCount() int {
	return r.bytes
}

// IsBlank reports whether the record came from an empty line.
func (r Record) IsBlank() bool {
	return r.blank
}
