//go:build go1.18
// +build go1.18

package tokenizer

import (
	"testing"

	"github.com/shapestone/shape-dsv/pkg/source"
)

// FuzzTokenizer checks that tokenizing never panics and that results do not
// depend on the buffer size.
// Run with: go test -fuzz=FuzzTokenizer -fuzztime=30s ./internal/tokenizer
func FuzzTokenizer(f *testing.F) {
	seeds := []string{
		"",
		"a",
		",",
		"\n",
		"\r\n",
		"\r",
		"\"",
		"\"\"",
		"a,b,c",
		"\"quoted\"",
		"\"with,comma\"",
		"\"with\"\"quote\"",
		"a\nb\nc",
		"#comment\nx",
		"\"two\" \"2",
		"a\\\r\nb",
	}
	for i, s := range seeds {
		f.Add(s, uint8(i))
	}

	f.Fuzz(func(t *testing.T, input string, flags uint8) {
		cfg := DefaultConfig()
		cfg.Mode = Mode(flags % 3)
		if cfg.Mode == ModeEscape {
			cfg.Escape = '\\'
		}
		cfg.Trim = Trim(flags>>2) & (TrimOutside | TrimInside)
		cfg.AllowComments = flags&0x10 != 0
		cfg.IgnoreBlankLines = flags&0x20 != 0
		if flags&0x40 != 0 {
			cfg.Delimiter = []rune("<|>")
		}

		run := func(size, chunk int) [][]string {
			c := cfg
			c.BufferSize = size
			tok := New(source.FromRunes([]rune(input), chunk), c)
			var out [][]string
			for {
				st, err := tok.Next()
				if err != nil {
					t.Fatalf("Next() error = %v", err)
				}
				if st != Ready {
					return out
				}
				out = append(out, append([]string{}, tok.Fields()...))
			}
		}

		want := run(4096, 0)
		if got := run(1, 1); !equalRecords(got, want) {
			t.Errorf("size 1: records = %q, want %q", got, want)
		}
	})
}
