// Package dialect loads named delimited-text dialects from YAML and maps
// them onto reader and writer options.
package dialect

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"gopkg.in/yaml.v3"

	"github.com/shapestone/shape-dsv/pkg/csv"
)

// Dialect is the YAML form of a delimited-text format. Character fields
// hold exactly one character; empty means the default.
type Dialect struct {
	Name             string   `yaml:"name,omitempty"`
	Delimiter        string   `yaml:"delimiter,omitempty"`
	Quote            string   `yaml:"quote,omitempty"`
	Escape           string   `yaml:"escape,omitempty"`
	Comment          string   `yaml:"comment,omitempty"`
	Mode             string   `yaml:"mode,omitempty"`
	Trim             string   `yaml:"trim,omitempty"`
	Whitespace       string   `yaml:"whitespace,omitempty"`
	NewLine          string   `yaml:"newline,omitempty"`
	Detect           bool     `yaml:"detect,omitempty"`
	DetectCandidates []string `yaml:"detect_candidates,omitempty"`
	Encoding         string   `yaml:"encoding,omitempty"`
	Header           bool     `yaml:"header,omitempty"`
	FieldsPerRecord  *int     `yaml:"fields_per_record,omitempty"`
	KeepBlankLines   bool     `yaml:"keep_blank_lines,omitempty"`
	StrictLineBreaks bool     `yaml:"strict_line_breaks,omitempty"`
	MaxFieldSize     int      `yaml:"max_field_size,omitempty"`
	QuoteAll         bool     `yaml:"quote_all,omitempty"`
	CRLF             bool     `yaml:"crlf,omitempty"`
}

var builtins = map[string]Dialect{
	"csv":   {Name: "csv", Delimiter: ","},
	"excel": {Name: "excel", Delimiter: ",", CRLF: true},
	"tsv":   {Name: "tsv", Delimiter: "\t", Mode: "none"},
	"ssv":   {Name: "ssv", Delimiter: ";"},
	"psv":   {Name: "psv", Delimiter: "|"},
	"unix":  {Name: "unix", Delimiter: ",", Escape: `\`, Mode: "escape", NewLine: "\n"},
}

// Lookup returns a built-in dialect by name.
func Lookup(name string) (Dialect, bool) {
	d, ok := builtins[strings.ToLower(name)]
	return d, ok
}

// Names returns the built-in dialect names in sorted order.
func Names() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Parse parses a dialect from YAML bytes.
func Parse(data []byte) (Dialect, error) {
	var d Dialect
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&d); err != nil {
		return Dialect{}, fmt.Errorf("parse yaml: %w", err)
	}
	return d, nil
}

// Load reads a dialect file.
func Load(path string) (Dialect, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Dialect{}, fmt.Errorf("read dialect: %w", err)
	}
	d, err := Parse(data)
	if err != nil {
		return Dialect{}, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// Resolve returns the built-in dialect called nameOrPath, or loads it from
// the file at that path.
func Resolve(nameOrPath string) (Dialect, error) {
	if d, ok := Lookup(nameOrPath); ok {
		return d, nil
	}
	return Load(nameOrPath)
}

// ToYAML serializes the dialect.
func (d Dialect) ToYAML() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return nil, fmt.Errorf("encode dialect: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("close encoder: %w", err)
	}
	return buf.Bytes(), nil
}

// ReaderOptions maps the dialect onto validated reader options.
func (d Dialect) ReaderOptions() (csv.ReaderOptions, error) {
	opts := csv.DefaultReaderOptions()
	if d.Delimiter != "" {
		opts.Delimiter = d.Delimiter
	}
	var err error
	if opts.Quote, err = char("quote", d.Quote, opts.Quote); err != nil {
		return opts, err
	}
	if opts.Escape, err = char("escape", d.Escape, opts.Escape); err != nil {
		return opts, err
	}
	if d.Comment != "" {
		if opts.Comment, err = char("comment", d.Comment, opts.Comment); err != nil {
			return opts, err
		}
		opts.AllowComments = true
	}
	if opts.Mode, err = mode(d.Mode); err != nil {
		return opts, err
	}
	switch strings.ToLower(d.Trim) {
	case "", "none":
	case "outside":
		opts.TrimOptions = csv.Trim
	case "inside":
		opts.TrimOptions = csv.TrimInsideQuotes
	case "both":
		opts.TrimOptions = csv.Trim | csv.TrimInsideQuotes
	default:
		return opts, fmt.Errorf("dialect %q: unknown trim %q", d.Name, d.Trim)
	}
	if d.Whitespace != "" {
		opts.WhiteSpaceChars = []rune(d.Whitespace)
	}
	opts.NewLine = d.NewLine
	opts.DetectDelimiter = d.Detect
	if len(d.DetectCandidates) > 0 {
		opts.DetectDelimiterValues = d.DetectCandidates
	}
	if opts.Encoding, err = Encoding(d.Encoding); err != nil {
		return opts, err
	}
	opts.HasHeader = d.Header
	if d.FieldsPerRecord != nil {
		opts.FieldsPerRecord = *d.FieldsPerRecord
	}
	opts.IgnoreBlankLines = !d.KeepBlankLines
	opts.LineBreakInQuotedFieldIsBadData = d.StrictLineBreaks
	opts.MaxFieldSize = d.MaxFieldSize

	if err := opts.Validate(); err != nil {
		return opts, fmt.Errorf("dialect %q: %w", d.Name, err)
	}
	return opts, nil
}

// WriterOptions maps the dialect onto validated writer options.
func (d Dialect) WriterOptions() (csv.WriterOptions, error) {
	opts := csv.DefaultWriterOptions()
	if d.Delimiter != "" {
		opts.Delimiter = d.Delimiter
	}
	var err error
	if opts.Quote, err = char("quote", d.Quote, opts.Quote); err != nil {
		return opts, err
	}
	if opts.Escape, err = char("escape", d.Escape, opts.Escape); err != nil {
		return opts, err
	}
	if d.Comment != "" {
		if opts.Comment, err = char("comment", d.Comment, 0); err != nil {
			return opts, err
		}
	}
	if opts.Mode, err = mode(d.Mode); err != nil {
		return opts, err
	}
	if d.NewLine != "" {
		opts.NewLine = d.NewLine
	}
	opts.UseCRLF = d.CRLF
	opts.QuoteAll = d.QuoteAll

	if err := opts.Validate(); err != nil {
		return opts, fmt.Errorf("dialect %q: %w", d.Name, err)
	}
	return opts, nil
}

// Encoding resolves a WHATWG encoding label such as "windows-1252" or
// "utf-16le". Empty and UTF-8 labels resolve to nil.
func Encoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(name) {
	case "", "utf-8", "utf8":
		return nil, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("unknown encoding %q: %w", name, err)
	}
	return enc, nil
}

func char(field, s string, def rune) (rune, error) {
	if s == "" {
		return def, nil
	}
	r, size := utf8.DecodeRuneInString(s)
	if size != len(s) || r == utf8.RuneError {
		return 0, fmt.Errorf("%s must be a single character, got %q", field, s)
	}
	return r, nil
}

func mode(s string) (csv.Mode, error) {
	switch strings.ToLower(s) {
	case "", "rfc4180":
		return csv.ModeRFC4180, nil
	case "escape":
		return csv.ModeEscape, nil
	case "none", "noescape":
		return csv.ModeNoEscape, nil
	default:
		return 0, fmt.Errorf("unknown mode %q", s)
	}
}
