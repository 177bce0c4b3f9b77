package source

import (
	"io"

	"github.com/shapestone/shape-core/pkg/tokenizer"
)

// Stream adapts a shape-core tokenizer.Stream to a Source so the engine can
// read from the same streams the Shape parsers use.
type Stream struct {
	stream tokenizer.Stream
}

// FromStream returns a Source pulling characters from stream.
func FromStream(stream tokenizer.Stream) *Stream {
	return &Stream{stream: stream}
}

// FromShapeString returns a Source over a shape-core string stream.
func FromShapeString(s string) *Stream {
	return FromStream(tokenizer.NewStream(s))
}

// FromShapeReader returns a Source over a shape-core buffered reader stream.
func FromShapeReader(r io.Reader) *Stream {
	return FromStream(tokenizer.NewStreamFromReader(r))
}

// Fill implements Source.
func (s *Stream) Fill(p []rune) (int, error) {
	n := 0
	for n < len(p) {
		r, ok := s.stream.NextChar()
		if !ok {
			break
		}
		p[n] = r
		n++
	}
	if n == 0 && len(p) > 0 {
		return 0, io.EOF
	}
	return n, nil
}
