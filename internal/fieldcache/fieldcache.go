// Package fieldcache interns field values so repeated content across
// records can share one string allocation.
//
// The table is a fixed array of buckets indexed by an xxhash of the field's
// UTF-8 encoding. Each bucket holds at most one value and collisions evict
// the previous occupant, so interning is best effort.
package fieldcache

import (
	"unicode/utf8"

	"github.com/cespare/xxhash/v2"
)

// DefaultCapacity is the bucket count used when 0 is requested.
const DefaultCapacity = 4096

// Table is a fixed-capacity interning table. It is not safe for concurrent
// use.
type Table struct {
	buckets []string
	used    []bool
	scratch []byte

	hits   int
	misses int
}

// New returns a table with the given number of buckets.
func New(capacity int) *Table {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Table{
		buckets: make([]string, capacity),
		used:    make([]bool, capacity),
		scratch: make([]byte, 0, 64),
	}
}

// Intern returns a string equal to field, reusing the stored value when the
// field's bucket already holds identical content.
func (t *Table) Intern(field []rune) string {
	if len(field) == 0 {
		return ""
	}
	t.scratch = t.scratch[:0]
	for _, r := range field {
		t.scratch = utf8.AppendRune(t.scratch, r)
	}
	i := int(xxhash.Sum64(t.scratch) % uint64(len(t.buckets)))
	if t.used[i] && t.buckets[i] == string(t.scratch) {
		t.hits++
		return t.buckets[i]
	}
	s := string(t.scratch)
	t.buckets[i] = s
	t.used[i] = true
	t.misses++
	return s
}

// Capacity returns the number of buckets.
func (t *Table) Capacity() int {
	return len(t.buckets)
}

// Stats describes interning effectiveness.
type Stats struct {
	Hits     int
	Misses   int
	Capacity int
}

// Stats returns hit and miss counters.
func (t *Table) Stats() Stats {
	return Stats{Hits: t.hits, Misses: t.misses, Capacity: len(t.buckets)}
}
