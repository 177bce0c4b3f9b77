// Package source defines the pull-based character sources consumed by the
// tokenizing engine, plus adapters for strings, io.Readers, shape-core
// streams and incrementally filled feeds.
//
// A Source hands out characters in chunks of whatever size it has ready.
// It may return fewer characters than requested, zero characters without
// being exhausted (the "would-block" case), or io.EOF once no characters
// will ever follow:
//
//	n > 0                      characters were copied (err may be nil or io.EOF)
//	n == 0, err == nil         nothing ready yet (treated as ErrWouldBlock)
//	n == 0, ErrWouldBlock      nothing ready yet
//	n == 0, io.EOF             exhausted
//
// Sources are borrowed by the engine for the lifetime of a reader and are
// never closed by it.
package source

import (
	"context"
	"errors"
	"io"
)

// ErrWouldBlock reports that a source has no characters ready right now but
// is not exhausted. Callers may retry later without losing state.
var ErrWouldBlock = errors.New("source: no data available yet")

// Source is a pull-based provider of character chunks.
type Source interface {
	// Fill copies up to len(p) characters into p and reports how many were
	// written.
	Fill(p []rune) (n int, err error)
}

// Waiter is implemented by sources that can block until more characters
// may be available. Wait returns nil when the caller should retry Fill, or
// the context's error if it was cancelled first.
type Waiter interface {
	Wait(ctx context.Context) error
}

// IsWouldBlock reports whether a Fill result means "nothing ready yet".
func IsWouldBlock(n int, err error) bool {
	if n > 0 {
		return false
	}
	return err == nil || errors.Is(err, ErrWouldBlock)
}

// IsExhausted reports whether err marks the permanent end of a source.
func IsExhausted(err error) bool {
	return errors.Is(err, io.EOF)
}
