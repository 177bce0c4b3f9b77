package source

import "io"

// Runes is an in-memory source over a fixed slice of characters.
type Runes struct {
	data  []rune
	pos   int
	chunk int
}

// FromString returns a source that yields the characters of s.
func FromString(s string) *Runes {
	return FromRunes([]rune(s), 0)
}

// FromRunes returns a source that yields data. If chunk is positive, each
// Fill hands out at most chunk characters, which is useful for exercising
// buffer boundaries.
func FromRunes(data []rune, chunk int) *Runes {
	return &Runes{data: data, chunk: chunk}
}

// Fill implements Source.
func (s *Runes) Fill(p []rune) (int, error) {
	if s.pos >= len(s.data) {
		return 0, io.EOF
	}
	if s.chunk > 0 && len(p) > s.chunk {
		p = p[:s.chunk]
	}
	n := copy(p, s.data[s.pos:])
	s.pos += n
	return n, nil
}

// Remaining returns the number of characters not yet handed out.
func (s *Runes) Remaining() int {
	return len(s.data) - s.pos
}
