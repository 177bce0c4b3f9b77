package tokenizer

import (
	"github.com/shapestone/shape-dsv/internal/buffer"
	"github.com/shapestone/shape-dsv/internal/fieldcache"
)

func (t *Tokenizer) beginField(quoted bool) {
	t.fstart = len(t.data)
	t.quoted = quoted
	t.closeAt = -1
}

// take appends rs to the current field and consumes k characters. The size
// limit is checked before anything is consumed.
func (t *Tokenizer) take(k int, rs ...rune) error {
	if max := t.cfg.MaxFieldSize; max > 0 {
		if size := len(t.data) - t.fstart + len(rs); size > max {
			return &SizeError{
				Row:   t.row + 1,
				Line:  t.recLine,
				Field: len(t.fields),
				Size:  size,
				Max:   max,
			}
		}
	}
	t.data = append(t.data, rs...)
	t.buf.Advance(k)
	return nil
}

// flag records a bad-data finding at the cursor. Repeats of the same kind
// within one field are reported once.
func (t *Tokenizer) flag(kind error) {
	field := len(t.fields)
	if n := len(t.issues); n > 0 && t.issues[n-1].Kind == kind && t.issues[n-1].Field == field {
		return
	}
	t.issues = append(t.issues, Issue{Kind: kind, Field: field, Offset: t.buf.Offset()})
}

// endField applies the trim policy and records the field's span.
func (t *Tokenizer) endField() {
	start, end := t.fstart, len(t.data)
	outside := t.cfg.Trim&TrimOutside != 0

	if !t.quoted {
		if outside {
			start = t.trimLeft(start, end)
			end = t.trimRight(start, end)
		}
		t.fields = append(t.fields, span{start, end})
		return
	}

	closeAt := t.closeAt
	if closeAt < 0 {
		closeAt = end
	}
	cs, ce := start, closeAt
	if t.cfg.Trim&TrimInside != 0 {
		cs = t.trimLeft(cs, ce)
		ce = t.trimRight(cs, ce)
	}
	ts, te := closeAt, end
	if outside {
		te = t.trimRight(ts, te)
	}
	if ce != ts {
		// Close the gap left by whitespace trimmed before the closing quote.
		te = ce + copy(t.data[ce:], t.data[ts:te])
	}
	t.fields = append(t.fields, span{cs, te})
}

func (t *Tokenizer) trimLeft(start, end int) int {
	for start < end && containsRune(t.white, t.data[start]) {
		start++
	}
	return start
}

func (t *Tokenizer) trimRight(start, end int) int {
	for end > start && containsRune(t.white, t.data[end-1]) {
		end--
	}
	return end
}

func (t *Tokenizer) materialize() {
	t.values = t.values[:0]
	for _, s := range t.fields {
		content := t.data[s.start:s.end]
		if t.cache != nil {
			t.values = append(t.values, t.cache.Intern(content))
		} else {
			t.values = append(t.values, string(content))
		}
	}
}

// Valid reports whether a record is current.
func (t *Tokenizer) Valid() bool {
	return t.valid
}

// FieldCount returns the number of fields in the current record.
func (t *Tokenizer) FieldCount() int {
	return len(t.fields)
}

// Field returns field i of the current record. Values pass through the
// field cache when it is enabled.
func (t *Tokenizer) Field(i int) string {
	if len(t.values) != len(t.fields) {
		t.materialize()
	}
	return t.values[i]
}

// Fields returns every field of the current record. The slice is reused by
// the next call to Next.
func (t *Tokenizer) Fields() []string {
	if len(t.values) != len(t.fields) {
		t.materialize()
	}
	return t.values
}

// FieldRunes returns the content of field i without copying. The slice is
// valid until the next call to Next.
func (t *Tokenizer) FieldRunes(i int) []rune {
	s := t.fields[i]
	return t.data[s.start:s.end]
}

// Raw returns the unprocessed text of the current record, including quotes
// and its line ending.
func (t *Tokenizer) Raw() string {
	return string(t.buf.SinceMark())
}

// Issues returns the bad-data findings of the current record.
func (t *Tokenizer) Issues() []Issue {
	return t.issues
}

// Blank reports whether the current record came from an empty line.
func (t *Tokenizer) Blank() bool {
	return t.blank
}

// Row returns the one-based number of the current record.
func (t *Tokenizer) Row() int {
	return t.row
}

// Line returns the physical line the current record started on.
func (t *Tokenizer) Line() int {
	return t.recLine
}

// Lines returns the number of line endings consumed so far.
func (t *Tokenizer) Lines() int {
	return t.line
}

// RecordChars returns the number of characters in the current record.
func (t *Tokenizer) RecordChars() int {
	return t.recChars
}

// RecordBytes returns the encoded size of the current record. It is zero
// unless byte counting is enabled.
func (t *Tokenizer) RecordBytes() int {
	return t.recBytes
}

// CharCount returns the number of characters consumed so far.
func (t *Tokenizer) CharCount() int64 {
	return t.chars
}

// ByteCount returns the encoded size of everything consumed so far.
func (t *Tokenizer) ByteCount() int64 {
	return t.bytes
}

// Delimiter returns the delimiter in effect.
func (t *Tokenizer) Delimiter() string {
	return string(t.delim)
}

// Detected reports whether delimiter detection has run.
func (t *Tokenizer) Detected() bool {
	return t.detected
}

// CacheStats returns field cache counters. ok is false when caching is off.
func (t *Tokenizer) CacheStats() (stats fieldcache.Stats, ok bool) {
	if t.cache == nil {
		return fieldcache.Stats{}, false
	}
	return t.cache.Stats(), true
}

// BufferStats returns refill and growth counters.
func (t *Tokenizer) BufferStats() buffer.Stats {
	return t.buf.Stats()
}
