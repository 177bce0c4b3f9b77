package csv

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"

	"github.com/shapestone/shape-dsv/internal/tokenizer"
)

// Mode is the quoting discipline used by readers and writers.
type Mode = tokenizer.Mode

const (
	// ModeRFC4180 quotes fields with the quote character and escapes a quote
	// inside a quoted field by doubling it (or prefixing Escape when Escape
	// differs from Quote).
	ModeRFC4180 = tokenizer.ModeRFC4180
	// ModeEscape lets the escape character protect the next character,
	// including delimiters and line endings.
	ModeEscape = tokenizer.ModeEscape
	// ModeNoEscape treats quote and escape characters as ordinary data.
	ModeNoEscape = tokenizer.ModeNoEscape
)

// TrimOptions selects which whitespace is removed from fields.
type TrimOptions = tokenizer.Trim

const (
	// TrimNone keeps all whitespace.
	TrimNone = tokenizer.TrimNone
	// Trim strips whitespace outside quotes at the start and end of a field.
	Trim = tokenizer.TrimOutside
	// TrimInsideQuotes strips whitespace just inside the quotes of a quoted field.
	TrimInsideQuotes = tokenizer.TrimInside
)

// ReaderOptions configures CSV parsing behavior.
// The zero value is not usable; start from DefaultReaderOptions.
type ReaderOptions struct {
	// Delimiter separates fields. It may be several characters long.
	// Default: ","
	Delimiter string

	// Quote starts and ends quoted fields. Default: '"'
	Quote rune

	// Escape escapes a quote inside a quoted field. When it equals Quote,
	// a doubled quote is a literal quote. Default: '"'
	Escape rune

	// Comment marks a comment line when AllowComments is set. Default: '#'
	Comment rune

	// AllowComments skips lines whose first character is Comment.
	// Default: false
	AllowComments bool

	// Mode is the quoting discipline. Default: ModeRFC4180
	Mode Mode

	// TrimOptions controls whitespace trimming. Default: TrimNone
	TrimOptions TrimOptions

	// WhiteSpaceChars are the characters removed by trimming.
	// Nil means space and tab, minus any character of the delimiter.
	WhiteSpaceChars []rune

	// NewLine is the record separator. Empty accepts CRLF, CR and LF.
	// Default: ""
	NewLine string

	// DetectDelimiter picks the delimiter from DetectDelimiterValues by
	// counting them on the first line. Default: false
	DetectDelimiter bool

	// DetectDelimiterValues are the detection candidates in tie-break order.
	// Default: ",", ";", "|", "\t"
	DetectDelimiterValues []string

	// MaxFieldSize is the maximum field length in characters. 0 means no limit.
	MaxFieldSize int

	// BufferSize is the initial buffer capacity in characters. 0 selects 4096.
	BufferSize int

	// CacheFields interns field values so repeated content shares storage.
	CacheFields bool

	// CacheSize is the number of interning buckets. 0 selects 4096.
	CacheSize int

	// CountBytes enables encoded byte accounting.
	CountBytes bool

	// Encoding is used for byte accounting and by NewIOReader to decode
	// input. Nil means UTF-8.
	Encoding encoding.Encoding

	// IgnoreBlankLines skips empty lines. When false an empty line is a
	// record with zero fields. Default: true
	IgnoreBlankLines bool

	// LineBreakInQuotedFieldIsBadData reports a raw line ending inside a
	// quoted field as bad data and ends the record there. The remainder
	// of the field starts the next record, so one stray line break can
	// produce two findings. Default: false
	LineBreakInQuotedFieldIsBadData bool

	// BadDataFound is called for each bad-data finding. A nil handler makes
	// Read return *BadDataError instead.
	BadDataFound BadDataHandler

	// HasHeader treats the first record as column names.
	HasHeader bool

	// FieldsPerRecord is the expected number of fields per record.
	// If positive, each record must have exactly this many fields.
	// If 0, the first record determines the expected field count.
	// If negative, no field count validation is performed.
	// Default: -1
	FieldsPerRecord int

	// ReuseRecord controls whether calls to Read may return the same
	// *Record as the previous call for performance.
	// Default: false
	ReuseRecord bool
}

// DefaultReaderOptions returns the default reader configuration.
func DefaultReaderOptions() ReaderOptions {
	return ReaderOptions{
		Delimiter:             ",",
		Quote:                 '"',
		Escape:                '"',
		Comment:               '#',
		Mode:                  ModeRFC4180,
		DetectDelimiterValues: []string{",", ";", "|", "\t"},
		IgnoreBlankLines:      true,
		FieldsPerRecord:       -1,
	}
}

// Validate checks if the options are valid.
// Returns an *OptionsError describing the first problem found.
func (o ReaderOptions) Validate() error {
	quoting := o.Mode != ModeNoEscape

	if o.Mode < ModeRFC4180 || o.Mode > ModeNoEscape {
		return &OptionsError{Field: "Mode", Message: "unknown mode"}
	}
	if o.Delimiter == "" {
		return &OptionsError{Field: "Delimiter", Message: "must not be empty"}
	}
	if !utf8.ValidString(o.Delimiter) {
		return &OptionsError{Field: "Delimiter", Message: "must be valid UTF-8"}
	}
	if quoting {
		if !validSpecial(o.Quote) {
			return &OptionsError{Field: "Quote", Message: "invalid quote character"}
		}
		if !validSpecial(o.Escape) {
			return &OptionsError{Field: "Escape", Message: "invalid escape character"}
		}
		if strings.ContainsRune(o.Delimiter, o.Quote) {
			return &OptionsError{Field: "Delimiter", Message: "must not contain the quote character"}
		}
	}
	if o.NewLine == "" {
		if strings.ContainsAny(o.Delimiter, "\r\n") {
			return &OptionsError{Field: "Delimiter", Message: "must not contain CR or LF"}
		}
	} else if o.NewLine == o.Delimiter {
		return &OptionsError{Field: "NewLine", Message: "must differ from the delimiter"}
	}
	if o.AllowComments {
		if !validSpecial(o.Comment) {
			return &OptionsError{Field: "Comment", Message: "invalid comment character"}
		}
		if quoting && o.Comment == o.Quote {
			return &OptionsError{Field: "Comment", Message: "comment character same as quote"}
		}
		if d, _ := utf8.DecodeRuneInString(o.Delimiter); d == o.Comment && utf8.RuneCountInString(o.Delimiter) == 1 {
			return &OptionsError{Field: "Comment", Message: "comment character same as delimiter"}
		}
	}
	if o.DetectDelimiter {
		if len(o.DetectDelimiterValues) == 0 {
			return &OptionsError{Field: "DetectDelimiterValues", Message: "must not be empty when DetectDelimiter is set"}
		}
		for _, c := range o.DetectDelimiterValues {
			if c == "" {
				return &OptionsError{Field: "DetectDelimiterValues", Message: "contains an empty candidate"}
			}
			if quoting && strings.ContainsRune(c, o.Quote) {
				return &OptionsError{Field: "DetectDelimiterValues", Message: "candidate contains the quote character"}
			}
		}
	}
	for _, r := range o.WhiteSpaceChars {
		if quoting && r == o.Quote {
			return &OptionsError{Field: "WhiteSpaceChars", Message: "must not contain the quote character"}
		}
		if o.Delimiter == string(r) {
			return &OptionsError{Field: "WhiteSpaceChars", Message: "must not contain the delimiter"}
		}
	}
	if o.MaxFieldSize < 0 {
		return &OptionsError{Field: "MaxFieldSize", Message: "must not be negative"}
	}
	if o.BufferSize < 0 {
		return &OptionsError{Field: "BufferSize", Message: "must not be negative"}
	}
	if o.CacheSize < 0 {
		return &OptionsError{Field: "CacheSize", Message: "must not be negative"}
	}
	return nil
}

// validSpecial reports whether r can serve as a quote, escape or comment
// character.
func validSpecial(r rune) bool {
	return r != 0 && r != '\r' && r != '\n' && utf8.ValidRune(r) && r != utf8.RuneError
}

// tokenizerConfig converts validated options into the engine's policy set.
func (o ReaderOptions) tokenizerConfig() tokenizer.Config {
	cfg := tokenizer.Config{
		Delimiter:                       []rune(o.Delimiter),
		Quote:                           o.Quote,
		Escape:                          o.Escape,
		Comment:                         o.Comment,
		AllowComments:                   o.AllowComments,
		Mode:                            o.Mode,
		Trim:                            o.TrimOptions,
		WhiteSpace:                      o.WhiteSpaceChars,
		MaxFieldSize:                    o.MaxFieldSize,
		BufferSize:                      o.BufferSize,
		CacheFields:                     o.CacheFields,
		CacheSize:                       o.CacheSize,
		CountBytes:                      o.CountBytes,
		Encoding:                        o.Encoding,
		IgnoreBlankLines:                o.IgnoreBlankLines,
		LineBreakInQuotedFieldIsBadData: o.LineBreakInQuotedFieldIsBadData,
		DetectDelimiter:                 o.DetectDelimiter,
	}
	if o.NewLine != "" {
		cfg.NewLine = []rune(o.NewLine)
	}
	for _, c := range o.DetectDelimiterValues {
		cfg.DetectCandidates = append(cfg.DetectCandidates, []rune(c))
	}
	return cfg
}

// WriterOptions configures CSV writing behavior.
type WriterOptions struct {
	// Delimiter separates fields. Default: ","
	Delimiter string

	// Quote encloses fields that need quoting. Default: '"'
	Quote rune

	// Escape escapes quotes inside quoted fields. Default: '"'
	Escape rune

	// Mode is the quoting discipline. Default: ModeRFC4180
	Mode Mode

	// Comment, if not 0, forces quoting of fields that start with it so
	// they are not read back as comments.
	Comment rune

	// NewLine terminates records. Default: "\n"
	NewLine string

	// UseCRLF controls whether to use \r\n as the line terminator. It
	// overrides NewLine.
	// Default: false (use \n)
	UseCRLF bool

	// QuoteAll quotes every field.
	QuoteAll bool
}

// DefaultWriterOptions returns the default writer configuration.
func DefaultWriterOptions() WriterOptions {
	return WriterOptions{
		Delimiter: ",",
		Quote:     '"',
		Escape:    '"',
		Mode:      ModeRFC4180,
		NewLine:   "\n",
	}
}

// Validate checks if the writer options are valid.
func (o WriterOptions) Validate() error {
	if o.Delimiter == "" {
		return &OptionsError{Field: "Delimiter", Message: "must not be empty"}
	}
	if o.Mode < ModeRFC4180 || o.Mode > ModeNoEscape {
		return &OptionsError{Field: "Mode", Message: "unknown mode"}
	}
	if o.Mode != ModeNoEscape {
		if !validSpecial(o.Quote) {
			return &OptionsError{Field: "Quote", Message: "invalid quote character"}
		}
		if !validSpecial(o.Escape) {
			return &OptionsError{Field: "Escape", Message: "invalid escape character"}
		}
		if strings.ContainsRune(o.Delimiter, o.Quote) {
			return &OptionsError{Field: "Delimiter", Message: "must not contain the quote character"}
		}
	}
	if !o.UseCRLF && o.NewLine == "" {
		return &OptionsError{Field: "NewLine", Message: "must not be empty"}
	}
	if o.newLine() == o.Delimiter {
		return &OptionsError{Field: "NewLine", Message: "must differ from the delimiter"}
	}
	return nil
}

func (o WriterOptions) newLine() string {
	if o.UseCRLF {
		return "\r\n"
	}
	return o.NewLine
}
