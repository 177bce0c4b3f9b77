//go:build go1.18
// +build go1.18

package parser

import (
	"reflect"
	"testing"

	"github.com/shapestone/shape-dsv/pkg/source"
)

// FuzzParserChunking checks that the AST does not depend on how the source
// splits its input.
// Run with: go test -fuzz=FuzzParserChunking -fuzztime=30s ./internal/parser
func FuzzParserChunking(f *testing.F) {
	seeds := []string{
		"",
		"a,b,c\n",
		"a,b\r\nc,d",
		"\"with,comma\",\"with\"\"quote\"",
		"\"multi\r\nline\"\r",
		",,\n\n,",
		"\"\"\"\"",
		"\"two\" \"2",
		"x\"y,z",
	}
	for _, s := range seeds {
		f.Add(s, uint8(1))
	}

	f.Fuzz(func(t *testing.T, input string, chunk uint8) {
		opts := DefaultOptions()
		opts.OnBadLine = BadLineModeSkip

		whole, err := NewParserWithOptions(input, opts).Parse()
		if err != nil {
			t.Fatalf("Parse() in skip mode returned %v", err)
		}
		split, err := NewParserFromSource(source.FromRunes([]rune(input), int(chunk%7)+1), opts).Parse()
		if err != nil {
			t.Fatalf("chunked Parse() in skip mode returned %v", err)
		}

		if got, want := records(t, split), records(t, whole); !reflect.DeepEqual(got, want) {
			t.Errorf("chunked parse of %q = %q, want %q", input, got, want)
		}
	})
}
