// Package matcher recognizes the structural tokens of delimited text
// (delimiter, line ending, comment marker) at the read cursor.
//
// Tokens may be several characters long and may straddle the buffer's fill
// limit. When the resident characters are a proper prefix of a candidate
// that could still win, Match reports Partial so the caller can pull more
// input instead of concluding a non-match.
package matcher

// Kind identifies a structural token.
type Kind int

// Token kinds in tie-break priority order: when two candidates of equal
// length match at the same position the lower Kind wins.
const (
	None Kind = iota
	Delimiter
	LineEnding
	Comment
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case Delimiter:
		return "Delimiter"
	case LineEnding:
		return "LineEnding"
	case Comment:
		return "Comment"
	default:
		return "None"
	}
}

// Outcome is the result class of a match attempt.
type Outcome int

const (
	// NotMatched means no candidate matches at the cursor.
	NotMatched Outcome = iota
	// Matched means Result.Kind matched with length Result.Len.
	Matched
	// Partial means more input is needed to decide.
	Partial
)

// Token is one candidate sequence.
type Token struct {
	Kind Kind
	Seq  []rune
}

// Result describes a match attempt.
type Result struct {
	Outcome Outcome
	Kind    Kind
	Len     int
}

// Set is an immutable group of candidate tokens.
type Set struct {
	tokens []Token
	starts []rune
	maxLen int
}

// NewSet builds a set from tokens. Empty sequences are ignored.
func NewSet(tokens ...Token) *Set {
	s := &Set{}
	for _, tok := range tokens {
		if len(tok.Seq) == 0 {
			continue
		}
		s.tokens = append(s.tokens, tok)
		if len(tok.Seq) > s.maxLen {
			s.maxLen = len(tok.Seq)
		}
		if !containsRune(s.starts, tok.Seq[0]) {
			s.starts = append(s.starts, tok.Seq[0])
		}
	}
	return s
}

// AutoLineEndings returns the line-ending tokens accepted when no explicit
// line ending is configured: CRLF, CR and LF.
func AutoLineEndings() []Token {
	return []Token{
		{Kind: LineEnding, Seq: []rune{'\r', '\n'}},
		{Kind: LineEnding, Seq: []rune{'\r'}},
		{Kind: LineEnding, Seq: []rune{'\n'}},
	}
}

// MaxLen returns the length of the longest candidate.
func (s *Set) MaxLen() int {
	return s.maxLen
}

// CanStart reports whether r is the first character of any candidate.
func (s *Set) CanStart(r rune) bool {
	return containsRune(s.starts, r)
}

// Match tests every candidate against view, the resident characters from
// the cursor to the fill limit. eof reports that no characters will follow
// view. The longest full match wins; on equal length the candidate with the
// lower Kind wins. Partial is returned when some candidate longer than the
// best full match is still possible.
func (s *Set) Match(view []rune, eof bool) Result {
	if len(view) == 0 {
		if eof {
			return Result{}
		}
		return Result{Outcome: Partial}
	}
	if !s.CanStart(view[0]) {
		return Result{}
	}

	best := Result{}
	partial := false
	for _, tok := range s.tokens {
		switch MatchOne(view, tok.Seq, eof) {
		case Matched:
			n := len(tok.Seq)
			if n > best.Len || (n == best.Len && tok.Kind < best.Kind) {
				best = Result{Outcome: Matched, Kind: tok.Kind, Len: n}
			}
		case Partial:
			partial = true
		}
	}
	if partial {
		// A partially resident candidate is always longer than view, so it
		// beats any full match found so far.
		return Result{Outcome: Partial}
	}
	return best
}

// MatchOne tests a single sequence against view.
func MatchOne(view []rune, seq []rune, eof bool) Outcome {
	if len(view) >= len(seq) {
		for i, r := range seq {
			if view[i] != r {
				return NotMatched
			}
		}
		return Matched
	}
	for i, r := range view {
		if seq[i] != r {
			return NotMatched
		}
	}
	if eof {
		return NotMatched
	}
	return Partial
}

func containsRune(rs []rune, r rune) bool {
	for _, c := range rs {
		if c == r {
			return true
		}
	}
	return false
}
