package buffer

import (
	"errors"
	"io"
	"testing"

	"github.com/shapestone/shape-dsv/pkg/source"
)

// step is one scripted Fill result.
type step struct {
	data string
	err  error
}

// scripted replays a fixed sequence of Fill results, then reports io.EOF.
type scripted struct {
	steps []step
	calls int
}

func (s *scripted) Fill(p []rune) (int, error) {
	s.calls++
	if len(s.steps) == 0 {
		return 0, io.EOF
	}
	st := s.steps[0]
	r := []rune(st.data)
	n := copy(p, r)
	if n < len(r) {
		s.steps[0].data = string(r[n:])
		return n, nil
	}
	s.steps = s.steps[1:]
	return n, st.err
}

func checkInvariant(t *testing.T, b *Buffer) {
	t.Helper()
	mark, pos, end, capacity := b.Cursors()
	if !(0 <= mark && mark <= pos && pos <= end && end <= capacity) {
		t.Fatalf("cursor invariant violated: mark=%d pos=%d end=%d cap=%d", mark, pos, end, capacity)
	}
}

func TestEnsure(t *testing.T) {
	tests := []struct {
		name  string
		steps []step
		n     int
		want  Status
		avail int
	}{
		{"enough in one chunk", []step{{"abcdef", nil}}, 4, Ready, 6},
		{"spans chunks", []step{{"ab", nil}, {"cd", nil}}, 3, Ready, 4},
		{"exhausted short", []step{{"ab", io.EOF}}, 3, EOF, 2},
		{"empty source", nil, 1, EOF, 0},
		{"would block", []step{{"a", nil}, {"", source.ErrWouldBlock}}, 2, WouldBlock, 1},
		{"zero read is would block", []step{{"", nil}}, 1, WouldBlock, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New(&scripted{steps: tt.steps}, 16)
			got, err := b.Ensure(tt.n)
			if err != nil {
				t.Fatalf("Ensure() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Ensure() = %v, want %v", got, tt.want)
			}
			if b.Available() != tt.avail {
				t.Errorf("Available() = %d, want %d", b.Available(), tt.avail)
			}
			checkInvariant(t, b)
		})
	}
}

func TestEnsureResumesAfterWouldBlock(t *testing.T) {
	src := &scripted{steps: []step{
		{"ab", nil},
		{"", source.ErrWouldBlock},
		{"cd", nil},
	}}
	b := New(src, 8)

	if st, _ := b.Ensure(3); st != WouldBlock {
		t.Fatalf("first Ensure() = %v, want would-block", st)
	}
	if string(b.Window()) != "ab" {
		t.Fatalf("Window() = %q, want %q", string(b.Window()), "ab")
	}
	if st, _ := b.Ensure(3); st != Ready {
		t.Fatalf("second Ensure() = %v, want ready", st)
	}
	if string(b.Window()) != "abcd" {
		t.Errorf("Window() = %q, want %q", string(b.Window()), "abcd")
	}
}

func TestCompactKeepsMarkedRegion(t *testing.T) {
	b := New(source.FromRunes([]rune("0123456789abcdef"), 4), 8)
	if st, _ := b.Ensure(8); st != Ready {
		t.Fatalf("Ensure(8) = %v", st)
	}
	b.Advance(5)
	b.Mark()
	b.Advance(2)

	if st, _ := b.Ensure(4); st != Ready {
		t.Fatalf("Ensure(4) = %v", st)
	}
	checkInvariant(t, b)
	if got := string(b.SinceMark()); got != "56" {
		t.Errorf("SinceMark() = %q, want %q", got, "56")
	}
	if got := string(b.Window()[:4]); got != "789a" {
		t.Errorf("Window() = %q, want %q", got, "789a")
	}
	if b.Cap() != 8 {
		t.Errorf("Cap() = %d, want 8 (compaction, not growth)", b.Cap())
	}
}

func TestGrowWhenMarkedRegionFillsBuffer(t *testing.T) {
	b := New(source.FromRunes([]rune("abcdefghijklmnopqrstuvwxyz"), 3), 4)
	b.Mark()
	for i := 0; i < 20; i++ {
		if st, _ := b.Ensure(1); st != Ready {
			t.Fatalf("Ensure(1) at %d = %v", i, st)
		}
		b.Advance(1)
		checkInvariant(t, b)
	}
	if got := string(b.SinceMark()); got != "abcdefghijklmnopqrst" {
		t.Errorf("SinceMark() = %q", got)
	}
	if b.Stats().Grows == 0 {
		t.Error("expected the buffer to grow")
	}
	if got := string(b.Slice(2, 5)); got != "cde" {
		t.Errorf("Slice(2, 5) = %q, want %q", got, "cde")
	}
}

func TestRewind(t *testing.T) {
	b := New(source.FromString("hello"), 0)
	if b.Cap() != DefaultSize {
		t.Errorf("Cap() = %d, want %d", b.Cap(), DefaultSize)
	}
	b.Ensure(5)
	b.Advance(1)
	b.Mark()
	b.Advance(3)
	if b.Offset() != 3 {
		t.Errorf("Offset() = %d, want 3", b.Offset())
	}
	b.Rewind()
	if b.Offset() != 0 || b.Peek(0) != 'e' {
		t.Errorf("after Rewind Offset() = %d Peek(0) = %q", b.Offset(), b.Peek(0))
	}
}

func TestAtEOF(t *testing.T) {
	b := New(source.FromString("x"), 4)
	if b.AtEOF() {
		t.Fatal("AtEOF() before reading")
	}
	b.Ensure(1)
	b.Advance(1)
	if st, _ := b.Ensure(1); st != EOF {
		t.Fatalf("Ensure(1) = %v, want eof", st)
	}
	if !b.AtEOF() {
		t.Error("AtEOF() = false after consuming everything")
	}
}

func TestStickyError(t *testing.T) {
	boom := errors.New("boom")
	b := New(&scripted{steps: []step{{"ab", boom}}}, 4)
	if _, err := b.Ensure(1); err != nil {
		t.Fatalf("Ensure(1) error = %v, want nil with data resident", err)
	}
	b.Advance(2)
	for i := 0; i < 2; i++ {
		if _, err := b.Ensure(1); !errors.Is(err, boom) {
			t.Errorf("Ensure(1) error = %v, want %v", err, boom)
		}
	}
}

func TestAdvancePastFillLimitPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Advance past fill limit did not panic")
		}
	}()
	b := New(source.FromString("ab"), 4)
	b.Ensure(2)
	b.Advance(3)
}
