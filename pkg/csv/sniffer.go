package csv

import (
	"errors"
	"io"
	"regexp"
	"strings"
	"unicode"
)

// Dialect is the result of sniffing a sample.
type Dialect struct {
	// Delimiter is the detected field delimiter.
	Delimiter string
	// Detected is false when no candidate occurred on the first line and
	// Delimiter is the configured default.
	Detected bool
	// HasHeader reports whether the first record looks like column names.
	HasHeader bool
	// Fields is the number of fields in the first record.
	Fields int
}

var (
	headerPatterns = []*regexp.Regexp{
		regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`),      // snake_case or identifier
		regexp.MustCompile(`^[a-zA-Z]+[A-Z][a-zA-Z]*$`),     // camelCase
		regexp.MustCompile(`^[A-Z][a-z]+([ ][A-Z][a-z]+)*$`), // Title Case
	}
	datePatterns = []*regexp.Regexp{
		regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`),
		regexp.MustCompile(`^\d{2}/\d{2}/\d{4}$`),
	}
)

// Sniff detects the delimiter and header row of a sample. The delimiter is
// chosen from opts.DetectDelimiterValues by counting them on the first line;
// the header is inferred from the first two records.
//
// Example:
//
//	d, err := csv.Sniff(strings.NewReader(sample), csv.DefaultReaderOptions())
//	if err != nil {
//	    // handle error
//	}
//	opts.Delimiter = d.Delimiter
//	opts.HasHeader = d.HasHeader
func Sniff(sample io.Reader, opts ReaderOptions) (Dialect, error) {
	opts.DetectDelimiter = true
	opts.HasHeader = false
	opts.FieldsPerRecord = -1
	opts.BadDataFound = IgnoreBadData
	r, err := NewIOReader(sample, opts)
	if err != nil {
		return Dialect{}, err
	}

	var recs []*Record
	for len(recs) < 2 {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var se *FieldSizeError
			if errors.As(err, &se) {
				continue
			}
			return Dialect{}, err
		}
		recs = append(recs, rec)
	}

	d := Dialect{Delimiter: r.DetectedDelimiter()}
	if len(recs) > 0 {
		d.Fields = recs[0].Len()
		d.Detected = d.Fields > 1
	}
	if len(recs) == 2 {
		d.HasHeader = looksLikeHeader(recs[0].fields)
	}
	return d, nil
}

// looksLikeHeader scores header-like against data-like fields.
func looksLikeHeader(fields []string) bool {
	headerScore := 0
	dataScore := 0
	for _, field := range fields {
		field = strings.TrimSpace(field)
		if isLikelyHeader(field) {
			headerScore++
		}
		if isLikelyData(field) {
			dataScore++
		}
	}
	return headerScore > dataScore
}

// isLikelyHeader checks if a field looks like a header name.
func isLikelyHeader(s string) bool {
	if s == "" || isNumeric(s) {
		return false
	}
	for _, pattern := range headerPatterns {
		if pattern.MatchString(s) {
			return true
		}
	}
	return false
}

// isLikelyData checks if a field looks like data rather than a header.
func isLikelyData(s string) bool {
	if s == "" {
		return false
	}
	if isNumeric(s) || strings.Contains(s, "@") {
		return true
	}
	for _, pattern := range datePatterns {
		if pattern.MatchString(s) {
			return true
		}
	}
	return false
}

// isNumeric checks if a string represents a number.
func isNumeric(s string) bool {
	s = strings.TrimPrefix(strings.TrimSpace(s), "-")
	hasDot := false
	for _, ch := range s {
		if ch == '.' {
			if hasDot {
				return false
			}
			hasDot = true
		} else if !unicode.IsDigit(ch) {
			return false
		}
	}
	return s != "" && s != "."
}
