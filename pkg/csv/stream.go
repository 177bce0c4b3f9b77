package csv

import (
	"io"
)

// Scanner provides a streaming interface for reading CSV records one at a time.
// Records are tokenized as Scan is called, so memory use does not depend on
// the size of the input.
//
// Example usage:
//
//	file, _ := os.Open("data.csv")
//	defer file.Close()
//
//	scanner := csv.NewScanner(file).SetHasHeaders(true)
//	for scanner.Scan() {
//	    record := scanner.Record()
//	    name, _ := record.GetByName("name")
//	    fmt.Println(name)
//	}
//	if err := scanner.Err(); err != nil {
//	    // handle error
//	}
type Scanner struct {
	src    io.Reader
	opts   ReaderOptions
	reader *Reader
	record *Record
	err    error
}

// NewScanner creates a new Scanner that reads CSV from the given io.Reader.
// By default, the scanner assumes no headers. Use SetHasHeaders(true) to treat
// the first row as headers.
func NewScanner(reader io.Reader) *Scanner {
	return NewScannerWithOptions(reader, DefaultReaderOptions())
}

// NewScannerWithOptions creates a Scanner with custom reader options.
// Invalid options are reported by Err after the first Scan.
func NewScannerWithOptions(reader io.Reader, opts ReaderOptions) *Scanner {
	return &Scanner{src: reader, opts: opts}
}

// SetHasHeaders sets whether the first row should be treated as headers.
// If true, the first row will be used as column names for GetByName() access.
// It has no effect once scanning has started.
// Returns the Scanner for method chaining.
func (s *Scanner) SetHasHeaders(hasHeaders bool) *Scanner {
	s.opts.HasHeader = hasHeaders
	return s
}

// SetReuseRecord sets whether the scanner should reuse the Record struct.
// When true, successive calls to Record() may return a Record sharing
// memory with the previous one. Copy the fields if you need to retain them.
// Returns the Scanner for method chaining.
func (s *Scanner) SetReuseRecord(reuse bool) *Scanner {
	s.opts.ReuseRecord = reuse
	return s
}

// Scan advances the scanner to the next record.
// It returns false when there are no more records or an error occurs.
// After Scan returns false, the Err method will return any error that occurred.
func (s *Scanner) Scan() bool {
	if s.err != nil {
		return false
	}
	if s.reader == nil {
		r, err := NewIOReader(s.src, s.opts)
		if err != nil {
			s.err = err
			return false
		}
		s.reader = r
	}

	rec, err := s.reader.Read()
	if err != nil {
		s.record = nil
		if err != io.EOF {
			s.err = err
		}
		return false
	}
	s.record = rec
	return true
}

// Record returns the current record.
// This should only be called after Scan() returns true.
func (s *Scanner) Record() Record {
	if s.record == nil {
		return Record{fields: []string{}, headers: s.Headers()}
	}
	return *s.record
}

// Err returns the error, if any, that was encountered during scanning.
// It returns nil if no error occurred or at EOF.
func (s *Scanner) Err() error {
	return s.err
}

// Headers returns the column headers if SetHasHeaders(true) was called.
// Returns an empty slice if no headers were set.
// This is available after the first call to Scan().
func (s *Scanner) Headers() []string {
	if s.reader == nil || s.reader.Headers() == nil {
		return []string{}
	}
	return s.reader.Headers()
}

// Reader returns the underlying Reader once scanning has started, or nil.
func (s *Scanner) Reader() *Reader {
	return s.reader
}
