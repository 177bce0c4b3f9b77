package source

import (
	"context"
	"errors"
	"io"
	"sync"
)

// ErrFeedClosed is returned by writes to a closed Feed.
var ErrFeedClosed = errors.New("source: write to closed feed")

// Feed is an append-only source filled by a producer while a reader drains
// it. Fill never blocks: it reports ErrWouldBlock while the feed is empty
// and open, and io.EOF once it is empty and closed. Wait lets a consumer
// block until the producer appends or closes.
//
// Feed is safe for one producer and one consumer running concurrently.
type Feed struct {
	mu     sync.Mutex
	data   []rune
	closed bool
	ready  chan struct{}
}

// NewFeed returns an empty, open Feed.
func NewFeed() *Feed {
	return &Feed{ready: make(chan struct{})}
}

// WriteString appends s to the feed.
func (f *Feed) WriteString(s string) (int, error) {
	return len(s), f.WriteRunes([]rune(s))
}

// WriteRunes appends p to the feed.
func (f *Feed) WriteRunes(p []rune) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrFeedClosed
	}
	if len(p) == 0 {
		return nil
	}
	f.data = append(f.data, p...)
	f.signal()
	return nil
}

// Close marks the end of the feed. Characters already written remain
// readable.
func (f *Feed) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil
	}
	f.closed = true
	close(f.ready)
	return nil
}

// signal wakes waiters; must be called with mu held on an open feed.
func (f *Feed) signal() {
	close(f.ready)
	f.ready = make(chan struct{})
}

// Fill implements Source.
func (f *Feed) Fill(p []rune) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.data) == 0 {
		if f.closed {
			return 0, io.EOF
		}
		return 0, ErrWouldBlock
	}
	n := copy(p, f.data)
	f.data = f.data[n:]
	if len(f.data) == 0 {
		f.data = nil
	}
	return n, nil
}

// Wait implements Waiter.
func (f *Feed) Wait(ctx context.Context) error {
	f.mu.Lock()
	if len(f.data) > 0 || f.closed {
		f.mu.Unlock()
		return nil
	}
	ready := f.ready
	f.mu.Unlock()

	select {
	case <-ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Buffered returns the number of characters written but not yet drained.
func (f *Feed) Buffered() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.data)
}
