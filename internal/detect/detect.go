// Package detect picks a field delimiter from a candidate list by looking at
// the first physical line of the input.
package detect

import (
	"github.com/shapestone/shape-dsv/internal/buffer"
	"github.com/shapestone/shape-dsv/internal/matcher"
)

// Config controls how the first line is scanned.
type Config struct {
	// Candidates are the delimiters to count, in tie-break order.
	Candidates [][]rune
	// Quoting enables quote tracking; delimiters inside quotes are ignored.
	Quoting bool
	Quote   rune
	Escape  rune
	// EscapeOutsideQuotes makes Escape protect the next character outside
	// quoted sections as well.
	EscapeOutsideQuotes bool
	// LineEndings terminates the scan.
	LineEndings *matcher.Set
}

// Detector counts candidate delimiters on the first line.
type Detector struct {
	cfg Config
}

// New returns a detector for cfg.
func New(cfg Config) *Detector {
	return &Detector{cfg: cfg}
}

// Result is the outcome of a completed scan.
type Result struct {
	// Index is the winning candidate, or -1 if none occurred.
	Index  int
	Counts []int
}

// Run scans from the read cursor up to the first line ending outside quotes
// without consuming anything. A WouldBlock status means the line is not
// fully resident yet; the scan can be repeated from scratch later.
func (d *Detector) Run(b *buffer.Buffer) (Result, buffer.Status, error) {
	counts := make([]int, len(d.cfg.Candidates))
	next := make([]int, len(d.cfg.Candidates))
	inQuotes := false

	i := 0
	for {
		st, err := b.Ensure(i + 1)
		if err != nil {
			return Result{Index: -1}, st, err
		}
		if st == buffer.WouldBlock {
			return Result{Index: -1}, st, nil
		}
		if b.Available() <= i {
			break
		}
		r := b.Window()[i]

		if d.cfg.Quoting {
			if r == d.cfg.Quote {
				if inQuotes && d.cfg.Escape == d.cfg.Quote {
					st, err := b.Ensure(i + 2)
					if err != nil || st == buffer.WouldBlock {
						return Result{Index: -1}, st, err
					}
					if b.Available() > i+1 && b.Window()[i+1] == d.cfg.Quote {
						i += 2
						continue
					}
				}
				inQuotes = !inQuotes
				i++
				continue
			}
			if inQuotes {
				if r == d.cfg.Escape && d.cfg.Escape != d.cfg.Quote {
					i += 2
				} else {
					i++
				}
				continue
			}
		}
		if d.cfg.EscapeOutsideQuotes && r == d.cfg.Escape {
			n, st, err := d.escapedLen(b, i)
			if err != nil || st == buffer.WouldBlock {
				return Result{Index: -1}, st, err
			}
			i += n
			continue
		}

		if d.cfg.LineEndings != nil && d.cfg.LineEndings.CanStart(r) {
			res, st, err := matchSet(b, i, d.cfg.LineEndings)
			if err != nil || st == buffer.WouldBlock {
				return Result{Index: -1}, st, err
			}
			if res.Outcome == matcher.Matched {
				break
			}
		}

		for c, cand := range d.cfg.Candidates {
			if i < next[c] || len(cand) == 0 || cand[0] != r {
				continue
			}
			out, st, err := matchSeq(b, i, cand)
			if err != nil || st == buffer.WouldBlock {
				return Result{Index: -1}, st, err
			}
			if out == matcher.Matched {
				counts[c]++
				next[c] = i + len(cand)
			}
		}
		i++
	}

	return Result{Index: pick(counts), Counts: counts}, buffer.Ready, nil
}

// escapedLen returns how many characters the escape at i protects,
// itself included. An escaped line ending is kept whole, matching the
// tokenizer.
func (d *Detector) escapedLen(b *buffer.Buffer, i int) (int, buffer.Status, error) {
	st, err := b.Ensure(i + 2)
	if err != nil || st == buffer.WouldBlock {
		return 0, st, err
	}
	if b.Available() <= i+1 || d.cfg.LineEndings == nil || !d.cfg.LineEndings.CanStart(b.Window()[i+1]) {
		return 2, buffer.Ready, nil
	}
	res, st, err := matchSet(b, i+1, d.cfg.LineEndings)
	if err != nil || st == buffer.WouldBlock {
		return 0, st, err
	}
	if res.Outcome == matcher.Matched {
		return 1 + res.Len, buffer.Ready, nil
	}
	return 2, buffer.Ready, nil
}

// pick returns the index of the highest count, preferring earlier
// candidates on ties, or -1 if every count is zero.
func pick(counts []int) int {
	best := -1
	for i, n := range counts {
		if n > 0 && (best < 0 || n > counts[best]) {
			best = i
		}
	}
	return best
}

// matchSet resolves a set match i characters past the cursor, pulling input
// while the outcome is partial.
func matchSet(b *buffer.Buffer, i int, set *matcher.Set) (matcher.Result, buffer.Status, error) {
	for {
		res := set.Match(b.Window()[i:], b.Exhausted())
		if res.Outcome != matcher.Partial {
			return res, buffer.Ready, nil
		}
		st, err := b.Ensure(b.Available() + 1)
		if err != nil || st == buffer.WouldBlock {
			return res, st, err
		}
	}
}

// matchSeq resolves a single-sequence match i characters past the cursor.
func matchSeq(b *buffer.Buffer, i int, seq []rune) (matcher.Outcome, buffer.Status, error) {
	for {
		out := matcher.MatchOne(b.Window()[i:], seq, b.Exhausted())
		if out != matcher.Partial {
			return out, buffer.Ready, nil
		}
		st, err := b.Ensure(b.Available() + 1)
		if err != nil || st == buffer.WouldBlock {
			return out, st, err
		}
	}
}
