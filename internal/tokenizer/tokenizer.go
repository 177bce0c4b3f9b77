// Package tokenizer turns a character source into records of fields.
//
// The tokenizer is a state machine over a buffer.Buffer:
//
//	FieldStart -> InField -> RecordEnd
//	FieldStart -> InQuotedField -> AfterQuote -> RecordEnd
//
// plus a comment skip entered at record start. Each call to Next restarts
// the record from its first character, so a source that reports
// would-block in the middle of a record loses nothing: the buffer is
// rewound to the record start and the same record is tokenized again on the
// following call.
package tokenizer

import (
	"errors"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"

	"github.com/shapestone/shape-dsv/internal/buffer"
	"github.com/shapestone/shape-dsv/internal/detect"
	"github.com/shapestone/shape-dsv/internal/fieldcache"
	"github.com/shapestone/shape-dsv/internal/matcher"
	"github.com/shapestone/shape-dsv/pkg/source"
)

type state int

const (
	stateFieldStart state = iota
	stateField
	stateQuoted
	stateAfterQuote
)

type outcome int

const (
	outRecord outcome = iota
	outSkipped
	outEOF
	outBlocked
	outFailed
)

// span is a field's content range in Tokenizer.data.
type span struct {
	start, end int
}

// Tokenizer reads records from a source. It is not safe for concurrent use.
type Tokenizer struct {
	cfg      Config
	buf      *buffer.Buffer
	cache    *fieldcache.Table
	detector *detect.Detector
	encoder  *encoding.Encoder

	delim    []rune
	white    []rune
	lineEnds *matcher.Set
	fieldSet *matcher.Set
	startSet *matcher.Set
	detected bool

	// Current record.
	data    []rune
	fields  []span
	values  []string
	issues  []Issue
	blank   bool
	valid   bool
	recLine int

	// Field being built.
	fstart  int
	quoted  bool
	closeAt int

	// Set after a size error until the rest of the record is consumed.
	discarding    bool
	discardQuoted bool

	row      int
	line     int
	chars    int64
	bytes    int64
	recChars int
	recBytes int
}

// New returns a tokenizer reading from src. The source is borrowed for the
// tokenizer's lifetime.
func New(src source.Source, cfg Config) *Tokenizer {
	if len(cfg.Delimiter) == 0 {
		cfg.Delimiter = []rune{','}
	}
	if cfg.WhiteSpace == nil {
		cfg.WhiteSpace = []rune{' ', '\t'}
	}
	t := &Tokenizer{
		cfg:  cfg,
		buf:  buffer.New(src, cfg.BufferSize),
		data: make([]rune, 0, 256),
	}
	if cfg.CacheFields {
		t.cache = fieldcache.New(cfg.CacheSize)
	}
	if cfg.CountBytes && cfg.Encoding != nil && cfg.Encoding != unicode.UTF8 {
		t.encoder = encoding.ReplaceUnsupported(cfg.Encoding.NewEncoder())
	}
	t.setDelimiter(cfg.Delimiter)
	if cfg.DetectDelimiter && len(cfg.DetectCandidates) > 0 {
		t.detector = detect.New(detect.Config{
			Candidates:          cfg.DetectCandidates,
			Quoting:             cfg.Mode != ModeNoEscape,
			Quote:               cfg.Quote,
			Escape:              cfg.Escape,
			EscapeOutsideQuotes: cfg.Mode == ModeEscape,
			LineEndings:         t.lineEnds,
		})
	}
	return t
}

// setDelimiter installs d and rebuilds the token sets that depend on it.
func (t *Tokenizer) setDelimiter(d []rune) {
	t.delim = d

	t.white = t.white[:0]
	for _, r := range t.cfg.WhiteSpace {
		if !containsRune(d, r) {
			t.white = append(t.white, r)
		}
	}

	var ends []matcher.Token
	if len(t.cfg.NewLine) > 0 {
		ends = []matcher.Token{{Kind: matcher.LineEnding, Seq: t.cfg.NewLine}}
	} else {
		ends = matcher.AutoLineEndings()
	}
	field := append([]matcher.Token{{Kind: matcher.Delimiter, Seq: d}}, ends...)

	t.lineEnds = matcher.NewSet(ends...)
	t.fieldSet = matcher.NewSet(field...)
	if t.cfg.AllowComments {
		t.startSet = matcher.NewSet(append(field, matcher.Token{Kind: matcher.Comment, Seq: []rune{t.cfg.Comment}})...)
	} else {
		t.startSet = t.fieldSet
	}
}

// Next tokenizes the next record. Ready means a record is current; EOF
// means the input is exhausted; WouldBlock means the source has nothing
// ready and Next should be called again later. A non-nil error abandons
// the record; the following call starts cleanly on the next one.
func (t *Tokenizer) Next() (Status, error) {
	t.valid = false
	t.clearRecord()

	if t.detector != nil {
		if err := t.detect(); err != nil {
			return t.blocked(err)
		}
	}
	if t.discarding {
		if err := t.discard(); err != nil {
			return t.blocked(err)
		}
	}

	for {
		o, err := t.scan()
		switch o {
		case outRecord:
			t.commit(true)
			t.valid = true
			return Ready, nil
		case outSkipped:
			t.commit(false)
		case outEOF:
			return EOF, nil
		case outBlocked:
			t.buf.Rewind()
			t.clearRecord()
			return WouldBlock, nil
		default:
			t.clearRecord()
			return Ready, err
		}
	}
}

// blocked maps a helper error onto Next's results.
func (t *Tokenizer) blocked(err error) (Status, error) {
	t.buf.Rewind()
	if errors.Is(err, source.ErrWouldBlock) {
		return WouldBlock, nil
	}
	return Ready, err
}

func (t *Tokenizer) detect() error {
	res, st, err := t.detector.Run(t.buf)
	if err != nil {
		return err
	}
	if st == buffer.WouldBlock {
		return source.ErrWouldBlock
	}
	if res.Index >= 0 {
		t.setDelimiter(t.cfg.DetectCandidates[res.Index])
	}
	t.detector = nil
	t.detected = true
	return nil
}

func (t *Tokenizer) clearRecord() {
	t.data = t.data[:0]
	t.fields = t.fields[:0]
	t.values = t.values[:0]
	t.issues = t.issues[:0]
	t.blank = false
}

// scan tokenizes one logical line starting at the read cursor.
func (t *Tokenizer) scan() (outcome, error) {
	t.clearRecord()
	t.buf.Mark()
	t.recLine = t.line + 1

	r, ok, err := t.peek()
	if err != nil {
		return t.fail(err, false)
	}
	if !ok {
		return outEOF, nil
	}
	if t.cfg.AllowComments && r == t.cfg.Comment {
		res, err := t.match(0, t.startSet)
		if err != nil {
			return t.fail(err, false)
		}
		if res.Outcome == matcher.Matched && res.Kind == matcher.Comment {
			if err := t.skipLine(); err != nil {
				return t.fail(err, false)
			}
			return outSkipped, nil
		}
	}

	st := stateFieldStart
	for {
		r, ok, err := t.peek()
		if err != nil {
			return t.fail(err, st == stateQuoted)
		}

		switch st {
		case stateFieldStart:
			if !ok {
				// Only reachable after a delimiter or skipped whitespace.
				t.beginField(false)
				t.endField()
				return outRecord, nil
			}
			if t.fieldSet.CanStart(r) {
				res, err := t.match(0, t.fieldSet)
				if err != nil {
					return t.fail(err, false)
				}
				if res.Outcome == matcher.Matched {
					blank := res.Kind == matcher.LineEnding && t.buf.Offset() == 0
					t.buf.Advance(res.Len)
					if blank {
						t.blank = true
						if t.cfg.IgnoreBlankLines {
							return outSkipped, nil
						}
						return outRecord, nil
					}
					t.beginField(false)
					t.endField()
					if res.Kind == matcher.LineEnding {
						return outRecord, nil
					}
					continue
				}
			}
			if t.quoting() && r == t.cfg.Quote {
				t.buf.Advance(1)
				t.beginField(true)
				st = stateQuoted
				continue
			}
			if t.cfg.Trim&TrimOutside != 0 && containsRune(t.white, r) {
				t.buf.Advance(1)
				continue
			}
			t.beginField(false)
			st = stateField

		case stateField:
			if !ok {
				t.endField()
				return outRecord, nil
			}
			if t.fieldSet.CanStart(r) {
				res, err := t.match(0, t.fieldSet)
				if err != nil {
					return t.fail(err, false)
				}
				if res.Outcome == matcher.Matched {
					t.buf.Advance(res.Len)
					t.endField()
					if res.Kind == matcher.LineEnding {
						return outRecord, nil
					}
					st = stateFieldStart
					continue
				}
			}
			if t.cfg.Mode == ModeEscape && r == t.cfg.Escape {
				if err := t.takeEscaped(); err != nil {
					return t.fail(err, false)
				}
				continue
			}
			if t.quoting() && r == t.cfg.Quote {
				t.flag(ErrBareQuote)
			}
			if err := t.take(1, r); err != nil {
				return t.fail(err, false)
			}

		case stateQuoted:
			if !ok {
				t.flag(ErrUnterminatedQuote)
				t.endField()
				return outRecord, nil
			}
			next, done, err := t.quoted1(r)
			if err != nil {
				return t.fail(err, true)
			}
			if done {
				return outRecord, nil
			}
			st = next

		case stateAfterQuote:
			if !ok {
				t.endField()
				return outRecord, nil
			}
			if t.fieldSet.CanStart(r) {
				res, err := t.match(0, t.fieldSet)
				if err != nil {
					return t.fail(err, false)
				}
				if res.Outcome == matcher.Matched {
					t.buf.Advance(res.Len)
					t.endField()
					if res.Kind == matcher.LineEnding {
						return outRecord, nil
					}
					st = stateFieldStart
					continue
				}
			}
			if r == t.cfg.Quote {
				t.flag(ErrQuoteAfterClose)
			}
			if err := t.take(1, r); err != nil {
				return t.fail(err, false)
			}
		}
	}
}

// quoted1 handles one step inside a quoted field. It returns the next state
// and whether the record ended.
func (t *Tokenizer) quoted1(r rune) (state, bool, error) {
	if r == t.cfg.Quote {
		if t.cfg.Escape == t.cfg.Quote {
			next, ok, err := t.peekAt(1)
			if err != nil {
				return stateQuoted, false, err
			}
			if ok && next == t.cfg.Quote {
				return stateQuoted, false, t.take(2, t.cfg.Quote)
			}
		}
		t.buf.Advance(1)
		t.closeAt = len(t.data)
		return stateAfterQuote, false, nil
	}

	if r == t.cfg.Escape {
		next, ok, err := t.peekAt(1)
		if err != nil {
			return stateQuoted, false, err
		}
		switch {
		case ok && (next == t.cfg.Quote || next == t.cfg.Escape):
			return stateQuoted, false, t.take(2, next)
		case ok && t.cfg.Mode == ModeEscape:
			return stateQuoted, false, t.takeEscaped()
		}
		return stateQuoted, false, t.take(1, r)
	}

	if t.lineEnds.CanStart(r) {
		res, err := t.match(0, t.lineEnds)
		if err != nil {
			return stateQuoted, false, err
		}
		if res.Outcome == matcher.Matched {
			if t.cfg.LineBreakInQuotedFieldIsBadData {
				t.flag(ErrLineBreakInQuotes)
				t.buf.Advance(res.Len)
				t.endField()
				return stateQuoted, true, nil
			}
			return stateQuoted, false, t.take(res.Len, t.buf.Window()[:res.Len]...)
		}
	}
	return stateQuoted, false, t.take(1, r)
}

// takeEscaped consumes the escape character at the cursor and keeps the
// following character, or a whole line ending, as data.
func (t *Tokenizer) takeEscaped() error {
	next, ok, err := t.peekAt(1)
	if err != nil {
		return err
	}
	if !ok {
		return t.take(1, t.cfg.Escape)
	}
	if t.lineEnds.CanStart(next) {
		res, err := t.match(1, t.lineEnds)
		if err != nil {
			return err
		}
		if res.Outcome == matcher.Matched {
			return t.take(1+res.Len, t.buf.Window()[1:1+res.Len]...)
		}
	}
	return t.take(2, next)
}

// skipLine consumes characters through the next line ending.
func (t *Tokenizer) skipLine() error {
	for {
		r, ok, err := t.peek()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if t.lineEnds.CanStart(r) {
			res, err := t.match(0, t.lineEnds)
			if err != nil {
				return err
			}
			if res.Outcome == matcher.Matched {
				t.buf.Advance(res.Len)
				return nil
			}
		}
		t.buf.Advance(1)
	}
}

// discard consumes the remainder of a record abandoned by a size error.
func (t *Tokenizer) discard() error {
	t.buf.Mark()
	inQuotes := t.discardQuoted
	atStart := false
	for {
		r, ok, err := t.peek()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		if inQuotes {
			if r == t.cfg.Quote {
				if t.cfg.Escape == t.cfg.Quote {
					next, ok, err := t.peekAt(1)
					if err != nil {
						return err
					}
					if ok && next == t.cfg.Quote {
						t.buf.Advance(2)
						continue
					}
				}
				inQuotes = false
				t.buf.Advance(1)
				continue
			}
			if r == t.cfg.Escape {
				if err := t.skipPair(); err != nil {
					return err
				}
				continue
			}
			t.buf.Advance(1)
			continue
		}

		if t.fieldSet.CanStart(r) {
			res, err := t.match(0, t.fieldSet)
			if err != nil {
				return err
			}
			if res.Outcome == matcher.Matched {
				t.buf.Advance(res.Len)
				if res.Kind == matcher.LineEnding {
					break
				}
				atStart = true
				continue
			}
		}
		switch {
		case atStart && t.quoting() && r == t.cfg.Quote:
			inQuotes = true
			t.buf.Advance(1)
		case t.cfg.Mode == ModeEscape && r == t.cfg.Escape:
			if err := t.skipPair(); err != nil {
				return err
			}
		default:
			t.buf.Advance(1)
		}
		if !(atStart && t.cfg.Trim&TrimOutside != 0 && containsRune(t.white, r)) {
			atStart = false
		}
	}
	t.commit(false)
	t.discarding = false
	return nil
}

// skipPair advances past an escape character and the character it protects.
func (t *Tokenizer) skipPair() error {
	if _, _, err := t.peekAt(1); err != nil {
		return err
	}
	n := 2
	if t.buf.Available() < n {
		n = t.buf.Available()
	}
	t.buf.Advance(n)
	return nil
}

// fail converts a helper error into a scan outcome. Size errors consume the
// characters read so far and schedule the rest of the record for discard.
func (t *Tokenizer) fail(err error, inQuotes bool) (outcome, error) {
	if errors.Is(err, source.ErrWouldBlock) {
		return outBlocked, nil
	}
	var se *SizeError
	if errors.As(err, &se) {
		t.commit(true)
		t.discarding = true
		t.discardQuoted = inQuotes
		t.buf.Mark()
	} else {
		t.buf.Rewind()
	}
	return outFailed, err
}

// commit folds the characters between the mark and the cursor into the
// running counters.
func (t *Tokenizer) commit(record bool) {
	raw := t.buf.SinceMark()
	t.recChars = len(raw)
	t.chars += int64(len(raw))
	t.line += t.countLines(raw)
	if t.cfg.CountBytes {
		t.recBytes = t.byteLen(raw)
		t.bytes += int64(t.recBytes)
	}
	if record {
		t.row++
	}
}

func (t *Tokenizer) countLines(raw []rune) int {
	n := 0
	if len(t.cfg.NewLine) > 0 {
		nl := t.cfg.NewLine
		for i := 0; i+len(nl) <= len(raw); {
			if matcher.MatchOne(raw[i:], nl, true) == matcher.Matched {
				n++
				i += len(nl)
				continue
			}
			i++
		}
		return n
	}
	for i := 0; i < len(raw); i++ {
		switch raw[i] {
		case '\r':
			n++
			if i+1 < len(raw) && raw[i+1] == '\n' {
				i++
			}
		case '\n':
			n++
		}
	}
	return n
}

func (t *Tokenizer) byteLen(raw []rune) int {
	if t.encoder != nil {
		if s, err := t.encoder.String(string(raw)); err == nil {
			return len(s)
		}
	}
	n := 0
	for _, r := range raw {
		l := utf8.RuneLen(r)
		if l < 0 {
			l = utf8.RuneLen(utf8.RuneError)
		}
		n += l
	}
	return n
}

func (t *Tokenizer) quoting() bool {
	return t.cfg.Mode != ModeNoEscape
}

// peek returns the character at the cursor. ok is false at end of input.
func (t *Tokenizer) peek() (rune, bool, error) {
	return t.peekAt(0)
}

// peekAt returns the character i positions past the cursor.
func (t *Tokenizer) peekAt(i int) (rune, bool, error) {
	st, err := t.buf.Ensure(i + 1)
	if err != nil {
		return 0, false, err
	}
	if st == buffer.WouldBlock {
		return 0, false, source.ErrWouldBlock
	}
	if t.buf.Available() <= i {
		return 0, false, nil
	}
	return t.buf.Peek(i), true, nil
}

// match resolves set at i characters past the cursor, pulling input while
// a candidate straddles the fill limit.
func (t *Tokenizer) match(i int, set *matcher.Set) (matcher.Result, error) {
	for {
		res := set.Match(t.buf.Window()[i:], t.buf.Exhausted())
		if res.Outcome != matcher.Partial {
			return res, nil
		}
		st, err := t.buf.Ensure(t.buf.Available() + 1)
		if err != nil {
			return res, err
		}
		if st == buffer.WouldBlock {
			return res, source.ErrWouldBlock
		}
	}
}

func containsRune(rs []rune, r rune) bool {
	for _, c := range rs {
		if c == r {
			return true
		}
	}
	return false
}
