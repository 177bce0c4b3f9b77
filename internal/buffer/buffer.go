// Package buffer implements the resizable character buffer the tokenizer
// reads through.
//
// The buffer keeps three cursors over its backing array:
//
//	0 <= mark <= pos <= end <= cap
//
// mark is the start of the region that must stay resident (the record being
// built), pos is the next unconsumed character and end is the fill limit.
// Refills slide the marked region to the front of the array; when the marked
// region already spans the whole array the buffer grows instead, so offsets
// measured from mark stay valid across refills.
package buffer

import (
	"errors"

	"github.com/shapestone/shape-dsv/pkg/source"
)

// DefaultSize is the initial capacity used when a size of 0 is requested.
const DefaultSize = 4096

// Status is the outcome of Ensure.
type Status int

const (
	// Ready means the requested characters are resident.
	Ready Status = iota
	// WouldBlock means the source had nothing ready; retry later.
	WouldBlock
	// EOF means the source is exhausted and fewer characters remain.
	EOF
)

// String returns the name of the status.
func (s Status) String() string {
	switch s {
	case Ready:
		return "ready"
	case WouldBlock:
		return "would-block"
	case EOF:
		return "eof"
	default:
		return "unknown"
	}
}

// Buffer is a growable character buffer over a borrowed source.
// It is not safe for concurrent use.
type Buffer struct {
	src  source.Source
	data []rune
	mark int
	pos  int
	end  int
	eof  bool
	err  error

	fills int
	grows int
}

// New returns a buffer reading from src with the given initial capacity.
func New(src source.Source, size int) *Buffer {
	if size <= 0 {
		size = DefaultSize
	}
	return &Buffer{
		src:  src,
		data: make([]rune, size),
	}
}

// Ensure guarantees that at least n characters are resident from the read
// cursor. It pulls one chunk at a time from the source and stops early with
// WouldBlock when the source has nothing ready, or EOF when it is exhausted.
// Non-EOF source errors are sticky and returned on every later call.
func (b *Buffer) Ensure(n int) (Status, error) {
	for b.end-b.pos < n {
		if b.err != nil {
			return EOF, b.err
		}
		if b.eof {
			return EOF, nil
		}
		st, err := b.fill()
		if err != nil || st != Ready {
			return st, err
		}
	}
	return Ready, nil
}

// fill pulls a single chunk from the source into the free tail.
func (b *Buffer) fill() (Status, error) {
	if b.end == len(b.data) {
		if b.mark > 0 {
			b.compact()
		} else {
			b.grow()
		}
	}

	n, err := b.src.Fill(b.data[b.end:])
	b.fills++
	if n > 0 {
		b.end += n
	}
	switch {
	case source.IsExhausted(err):
		b.eof = true
		if n == 0 {
			return EOF, nil
		}
	case err == nil, errors.Is(err, source.ErrWouldBlock):
		if source.IsWouldBlock(n, err) {
			return WouldBlock, nil
		}
	default:
		b.err = err
		if n == 0 {
			return EOF, err
		}
	}
	return Ready, nil
}

// compact slides the marked region to the front of the array.
func (b *Buffer) compact() {
	n := copy(b.data, b.data[b.mark:b.end])
	b.pos -= b.mark
	b.end = n
	b.mark = 0
}

// grow doubles the capacity, keeping every resident character in place.
func (b *Buffer) grow() {
	data := make([]rune, 2*len(b.data))
	copy(data, b.data[:b.end])
	b.data = data
	b.grows++
}

// Peek returns the character i positions past the read cursor. The caller
// must have ensured it is resident.
func (b *Buffer) Peek(i int) rune {
	return b.data[b.pos+i]
}

// Window returns the resident characters from the read cursor to the fill
// limit. The slice is invalidated by the next Ensure.
func (b *Buffer) Window() []rune {
	return b.data[b.pos:b.end]
}

// Available returns the number of resident, unconsumed characters.
func (b *Buffer) Available() int {
	return b.end - b.pos
}

// Exhausted reports whether the source has signalled its end. Characters may
// still be resident.
func (b *Buffer) Exhausted() bool {
	return b.eof || b.err != nil
}

// AtEOF reports whether every character of the source has been consumed.
func (b *Buffer) AtEOF() bool {
	return b.Exhausted() && b.pos == b.end
}

// Advance moves the read cursor forward by k resident characters.
func (b *Buffer) Advance(k int) {
	if k > b.end-b.pos {
		panic("buffer: advance past fill limit")
	}
	b.pos += k
}

// Mark pins the read cursor as the start of the region that must survive
// refills.
func (b *Buffer) Mark() {
	b.mark = b.pos
}

// Rewind moves the read cursor back to the mark.
func (b *Buffer) Rewind() {
	b.pos = b.mark
}

// Offset returns the distance from the mark to the read cursor.
func (b *Buffer) Offset() int {
	return b.pos - b.mark
}

// SinceMark returns the characters between the mark and the read cursor.
// The slice is invalidated by the next Ensure.
func (b *Buffer) SinceMark() []rune {
	return b.data[b.mark:b.pos]
}

// Slice returns characters between two offsets measured from the mark.
func (b *Buffer) Slice(from, to int) []rune {
	return b.data[b.mark+from : b.mark+to]
}

// Cap returns the current capacity of the backing array.
func (b *Buffer) Cap() int {
	return len(b.data)
}

// Stats describes buffer activity.
type Stats struct {
	Fills    int
	Grows    int
	Capacity int
}

// Stats returns counters describing refills and growth so far.
func (b *Buffer) Stats() Stats {
	return Stats{Fills: b.fills, Grows: b.grows, Capacity: len(b.data)}
}

// Cursors returns mark, pos, end and capacity, in that order.
func (b *Buffer) Cursors() (mark, pos, end, capacity int) {
	return b.mark, b.pos, b.end, len(b.data)
}
