package source

import (
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const (
	defaultReadSize = 4096

	// maxEmptyReads bounds consecutive reads returning 0 bytes and a nil
	// error within one Fill, as bufio does.
	maxEmptyReads = 100
)

// Reader adapts an io.Reader of UTF-8 text to a Source. Multi-byte
// sequences split across reads are held back until complete. Reads that
// return 0 bytes and a nil error are retried up to 100 times in a row;
// after that Fill reports ErrWouldBlock, so readers over append-only files
// can be polled. Reader does not implement Waiter, so a csv.Reader's Read
// surfaces that ErrWouldBlock to its caller.
type Reader struct {
	r    io.Reader
	raw  []byte
	head int
	tail int
	err  error
}

// FromReader returns a Source decoding UTF-8 from r.
func FromReader(r io.Reader) *Reader {
	return &Reader{
		r:   r,
		raw: make([]byte, defaultReadSize),
	}
}

// FromEncodedReader returns a Source that decodes r with enc before
// handing out characters. A nil enc or UTF-8 behaves like FromReader.
func FromEncodedReader(r io.Reader, enc encoding.Encoding) *Reader {
	if enc == nil || enc == unicode.UTF8 {
		return FromReader(r)
	}
	return FromReader(transform.NewReader(r, enc.NewDecoder()))
}

// Fill implements Source.
func (s *Reader) Fill(p []rune) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if n := s.decode(p); n > 0 {
		return n, nil
	}
	if s.err != nil {
		return 0, s.err
	}

	// Slide undecoded bytes to the front before reading more.
	if s.head > 0 {
		s.tail = copy(s.raw, s.raw[s.head:s.tail])
		s.head = 0
	}
	for i := 0; i < maxEmptyReads; i++ {
		m, err := s.r.Read(s.raw[s.tail:])
		s.tail += m
		if err != nil {
			s.err = err
		}
		if m > 0 || err != nil {
			break
		}
	}

	if n := s.decode(p); n > 0 {
		return n, nil
	}
	if s.err != nil {
		return 0, s.err
	}
	return 0, ErrWouldBlock
}

// decode converts buffered bytes into runes. An incomplete trailing
// sequence is kept unless the underlying reader has failed, in which case
// it decodes to utf8.RuneError.
func (s *Reader) decode(p []rune) int {
	n := 0
	for n < len(p) && s.head < s.tail {
		b := s.raw[s.head:s.tail]
		if !utf8.FullRune(b) && s.err == nil {
			break
		}
		r, size := utf8.DecodeRune(b)
		p[n] = r
		n++
		s.head += size
	}
	return n
}
