package tokenizer

import (
	"golang.org/x/text/encoding"

	"github.com/shapestone/shape-dsv/internal/buffer"
)

// Mode is the quoting discipline in effect for a tokenizer instance.
type Mode int

const (
	// ModeRFC4180 treats a quote at field start as opening a quoted field and
	// a doubled quote (or escape then quote) inside it as a literal quote.
	ModeRFC4180 Mode = iota
	// ModeEscape additionally lets the escape character protect the next
	// character anywhere, including line endings.
	ModeEscape
	// ModeNoEscape disables quote semantics; only delimiters and line
	// endings are structural.
	ModeNoEscape
)

// String returns the name of the mode.
func (m Mode) String() string {
	switch m {
	case ModeRFC4180:
		return "rfc4180"
	case ModeEscape:
		return "escape"
	case ModeNoEscape:
		return "noescape"
	default:
		return "unknown"
	}
}

// Trim is a set of trimming flags applied when a field is finalized.
type Trim uint8

const (
	// TrimNone keeps all whitespace.
	TrimNone Trim = 0
	// TrimOutside strips whitespace at the unquoted start and end of a field.
	TrimOutside Trim = 1 << 0
	// TrimInside strips whitespace just inside the opening and closing quote.
	TrimInside Trim = 1 << 1
)

// Status reports the outcome of Next.
type Status = buffer.Status

// Next outcomes.
const (
	Ready      = buffer.Ready
	WouldBlock = buffer.WouldBlock
	EOF        = buffer.EOF
)

// Config is the policy set of a tokenizer. It is copied at construction and
// never changes afterwards, except for the delimiter chosen by detection.
// Config is assumed to be valid; callers validate it before use.
type Config struct {
	Delimiter     []rune
	Quote         rune
	Escape        rune
	Comment       rune
	AllowComments bool
	Mode          Mode
	Trim          Trim
	// WhiteSpace lists the characters stripped by trimming. Runes that also
	// occur in the delimiter are ignored.
	WhiteSpace []rune
	// NewLine is an explicit record separator. Nil selects CRLF, CR and LF.
	NewLine []rune

	// MaxFieldSize limits field length in characters. Zero is unlimited.
	MaxFieldSize int
	BufferSize   int

	CacheFields bool
	CacheSize   int

	CountBytes bool
	// Encoding is used for byte accounting. Nil means UTF-8.
	Encoding encoding.Encoding

	// IgnoreBlankLines skips empty lines instead of producing zero-field
	// records.
	IgnoreBlankLines                bool
	LineBreakInQuotedFieldIsBadData bool

	DetectDelimiter  bool
	DetectCandidates [][]rune
}

// DefaultConfig returns an RFC 4180 comma-separated configuration.
func DefaultConfig() Config {
	return Config{
		Delimiter:        []rune{','},
		Quote:            '"',
		Escape:           '"',
		Comment:          '#',
		Mode:             ModeRFC4180,
		WhiteSpace:       []rune{' ', '\t'},
		BufferSize:       buffer.DefaultSize,
		IgnoreBlankLines: true,
		DetectCandidates: [][]rune{{','}, {';'}, {'|'}, {'\t'}},
	}
}
