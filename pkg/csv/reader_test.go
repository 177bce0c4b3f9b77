package csv

import (
	"context"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"testing"

	"github.com/shapestone/shape-dsv/pkg/source"
)

// readAll reads every record from input and fails the test on error.
func readAll(t *testing.T, input string, opts ReaderOptions) [][]string {
	t.Helper()
	r, err := NewIOReader(strings.NewReader(input), opts)
	if err != nil {
		t.Fatalf("NewIOReader() error = %v", err)
	}
	var got [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			return got
		}
		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}
		got = append(got, rec.Fields())
	}
}

func TestReaderRead(t *testing.T) {
	tests := []struct {
		name  string
		input string
		opts  func(*ReaderOptions)
		want  [][]string
	}{
		{
			name:  "simple",
			input: "a,b,c\n1,2,3\n",
			want:  [][]string{{"a", "b", "c"}, {"1", "2", "3"}},
		},
		{
			name:  "mixed line endings",
			input: "a,b\r\nc,d\re,f",
			want:  [][]string{{"a", "b"}, {"c", "d"}, {"e", "f"}},
		},
		{
			name:  "quoted delimiter and newline",
			input: "\"a,b\",\"c\nd\"\n",
			want:  [][]string{{"a,b", "c\nd"}},
		},
		{
			name:  "doubled quote",
			input: "\"x\"\"y\"\n",
			want:  [][]string{{`x"y`}},
		},
		{
			name:  "trailing delimiter",
			input: "a,\n",
			want:  [][]string{{"a", ""}},
		},
		{
			name:  "empty input",
			input: "",
			want:  nil,
		},
		{
			name:  "semicolon",
			input: "a;b\n",
			opts:  func(o *ReaderOptions) { o.Delimiter = ";" },
			want:  [][]string{{"a", "b"}},
		},
		{
			name:  "multi-character delimiter",
			input: "a<|>b<|>c",
			opts:  func(o *ReaderOptions) { o.Delimiter = "<|>" },
			want:  [][]string{{"a", "b", "c"}},
		},
		{
			name:  "escape mode",
			input: "a\\,b,c\n",
			opts: func(o *ReaderOptions) {
				o.Mode = ModeEscape
				o.Escape = '\\'
			},
			want: [][]string{{"a,b", "c"}},
		},
		{
			name:  "no escape mode keeps quotes",
			input: "\"a,b\"\n",
			opts:  func(o *ReaderOptions) { o.Mode = ModeNoEscape },
			want:  [][]string{{`"a`, `b"`}},
		},
		{
			name:  "comments",
			input: "#note\na\n#x,y\n",
			opts:  func(o *ReaderOptions) { o.AllowComments = true },
			want:  [][]string{{"a"}},
		},
		{
			name:  "comment character mid-record is data",
			input: "a,#b\n",
			opts:  func(o *ReaderOptions) { o.AllowComments = true },
			want:  [][]string{{"a", "#b"}},
		},
		{
			name:  "trim outside quotes",
			input: " a , b \n",
			opts:  func(o *ReaderOptions) { o.TrimOptions = Trim },
			want:  [][]string{{"a", "b"}},
		},
		{
			name:  "trim inside quotes",
			input: "\" a \",b\n",
			opts:  func(o *ReaderOptions) { o.TrimOptions = TrimInsideQuotes },
			want:  [][]string{{"a", "b"}},
		},
		{
			name:  "explicit newline",
			input: "a,b|c\nd|",
			opts:  func(o *ReaderOptions) { o.NewLine = "|" },
			want:  [][]string{{"a", "b"}, {"c\nd"}},
		},
		{
			name:  "blank lines kept",
			input: "a\n\nb\n",
			opts:  func(o *ReaderOptions) { o.IgnoreBlankLines = false },
			want:  [][]string{{"a"}, {}, {"b"}},
		},
		{
			name:  "blank lines skipped",
			input: "a\n\n\r\nb\n",
			want:  [][]string{{"a"}, {"b"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultReaderOptions()
			if tt.opts != nil {
				tt.opts(&opts)
			}
			got := readAll(t, tt.input, opts)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("records = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReaderHeaders(t *testing.T) {
	opts := DefaultReaderOptions()
	opts.HasHeader = true
	r, err := NewIOReader(strings.NewReader("name,age\nAlice,30\nBob,25\n"), opts)
	if err != nil {
		t.Fatalf("NewIOReader() error = %v", err)
	}

	rec, err := r.Read()
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if got := r.Headers(); !reflect.DeepEqual(got, []string{"name", "age"}) {
		t.Errorf("Headers() = %q", got)
	}
	if name, ok := rec.GetByName("name"); !ok || name != "Alice" {
		t.Errorf("GetByName(name) = %q, %v", name, ok)
	}
	if _, ok := rec.GetByName("missing"); ok {
		t.Error("GetByName(missing) should fail")
	}
	if rec.Row() != 2 || rec.Line() != 2 {
		t.Errorf("Row() = %d, Line() = %d, want 2, 2", rec.Row(), rec.Line())
	}

	rec, err = r.Read()
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if age, _ := rec.GetByName("age"); age != "25" {
		t.Errorf("GetByName(age) = %q, want 25", age)
	}
	if _, err := r.Read(); err != io.EOF {
		t.Errorf("Read() error = %v, want io.EOF", err)
	}
}

func TestReaderFieldsPerRecord(t *testing.T) {
	opts := DefaultReaderOptions()
	opts.FieldsPerRecord = 0
	r, err := NewIOReader(strings.NewReader("a,b\nc\nd,e\n"), opts)
	if err != nil {
		t.Fatalf("NewIOReader() error = %v", err)
	}

	if _, err := r.Read(); err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	_, err = r.Read()
	var pe *ParseError
	if !errors.As(err, &pe) || !errors.Is(err, ErrFieldCount) {
		t.Fatalf("Read() error = %v, want *ParseError wrapping ErrFieldCount", err)
	}
	if pe.Line != 2 {
		t.Errorf("ParseError.Line = %d, want 2", pe.Line)
	}
	if _, err := r.FieldCount(); !errors.Is(err, ErrNoRecord) {
		t.Errorf("FieldCount() after failed read = %v, want ErrNoRecord", err)
	}

	rec, err := r.Read()
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if got := rec.Fields(); !reflect.DeepEqual(got, []string{"d", "e"}) {
		t.Errorf("Fields() = %q", got)
	}
}

func TestReaderReuseRecord(t *testing.T) {
	tests := []struct {
		name  string
		reuse bool
	}{
		{"reuse", true},
		{"fresh", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultReaderOptions()
			opts.ReuseRecord = tt.reuse
			r, err := NewIOReader(strings.NewReader("a\nb\n"), opts)
			if err != nil {
				t.Fatalf("NewIOReader() error = %v", err)
			}
			first, _ := r.Read()
			second, _ := r.Read()
			if (first == second) != tt.reuse {
				t.Errorf("same record = %v, want %v", first == second, tt.reuse)
			}
			if v, _ := second.Get(0); v != "b" {
				t.Errorf("second.Get(0) = %q, want b", v)
			}
		})
	}
}

func TestReaderAccessors(t *testing.T) {
	r, err := NewIOReader(strings.NewReader("x,\"y,z\"\n"), DefaultReaderOptions())
	if err != nil {
		t.Fatalf("NewIOReader() error = %v", err)
	}
	if _, err := r.Field(0); !errors.Is(err, ErrNoRecord) {
		t.Errorf("Field() before read = %v, want ErrNoRecord", err)
	}
	if _, err := r.Read(); err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if n, err := r.FieldCount(); err != nil || n != 2 {
		t.Errorf("FieldCount() = %d, %v", n, err)
	}
	if v, err := r.Field(1); err != nil || v != "y,z" {
		t.Errorf("Field(1) = %q, %v", v, err)
	}
	if _, err := r.Field(2); !errors.Is(err, ErrFieldIndex) {
		t.Errorf("Field(2) error = %v, want ErrFieldIndex", err)
	}
	if raw, err := r.RawRecord(); err != nil || raw != "x,\"y,z\"\n" {
		t.Errorf("RawRecord() = %q, %v", raw, err)
	}

	if _, err := r.Read(); err != io.EOF {
		t.Fatalf("Read() error = %v, want io.EOF", err)
	}
	if _, err := r.RawRecord(); !errors.Is(err, ErrNoRecord) {
		t.Errorf("RawRecord() at EOF = %v, want ErrNoRecord", err)
	}
}

func TestBadDataError(t *testing.T) {
	r, err := NewIOReader(strings.NewReader("a,b\nc,d\"e\nf,g\n"), DefaultReaderOptions())
	if err != nil {
		t.Fatalf("NewIOReader() error = %v", err)
	}
	if _, err := r.Read(); err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	_, err = r.Read()
	var bde *BadDataError
	if !errors.As(err, &bde) {
		t.Fatalf("Read() error = %v, want *BadDataError", err)
	}
	if !errors.Is(err, ErrBareQuote) || !errors.Is(err, ErrQuote) {
		t.Errorf("error %v should match ErrBareQuote and ErrQuote", err)
	}
	want := BadData{
		Kind:       ErrBareQuote,
		Field:      `d"e`,
		FieldIndex: 1,
		RawRecord:  "c,d\"e\n",
		Row:        2,
		Line:       2,
		Column:     4,
	}
	if bde.BadData != want {
		t.Errorf("BadData = %+v, want %+v", bde.BadData, want)
	}

	rec, err := r.Read()
	if err != nil {
		t.Fatalf("Read() after bad data error = %v", err)
	}
	if got := rec.Fields(); !reflect.DeepEqual(got, []string{"f", "g"}) {
		t.Errorf("Fields() = %q", got)
	}
}

func TestBadDataHandler(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		opts      func(*ReaderOptions)
		action    BadDataAction
		wantKinds []error
		want      [][]string
	}{
		{
			name:      "keep bare quote",
			input:     "a,b\nc,d\"e\n",
			action:    KeepRecord,
			wantKinds: []error{ErrBareQuote},
			want:      [][]string{{"a", "b"}, {"c", `d"e`}},
		},
		{
			name:      "skip bare quote",
			input:     "a,b\nc,d\"e\nf\n",
			action:    SkipRecord,
			wantKinds: []error{ErrBareQuote},
			want:      [][]string{{"a", "b"}, {"f"}},
		},
		{
			name:      "repeated bare quotes reported once per field",
			input:     "a\"b\"c,d\"\n",
			action:    KeepRecord,
			wantKinds: []error{ErrBareQuote, ErrBareQuote},
			want:      [][]string{{`a"b"c`, `d"`}},
		},
		{
			name:      "quote after close",
			input:     "\"a\"b\"\n",
			action:    KeepRecord,
			wantKinds: []error{ErrQuoteAfterClose},
			want:      [][]string{{`ab"`}},
		},
		{
			name:      "unterminated quote",
			input:     "a,\"bc",
			action:    KeepRecord,
			wantKinds: []error{ErrUnterminatedQuote},
			want:      [][]string{{"a", "bc"}},
		},
		{
			name:  "line break in quotes",
			input: "\"a\nb\"\n",
			opts: func(o *ReaderOptions) {
				o.LineBreakInQuotedFieldIsBadData = true
			},
			action:    KeepRecord,
			wantKinds: []error{ErrLineBreakInQuotes, ErrBareQuote},
			want:      [][]string{{"a"}, {`b"`}},
		},
		{
			name:  "line break in quotes rest of field is next record",
			input: "\"a\nb\",c\nd\n",
			opts: func(o *ReaderOptions) {
				o.LineBreakInQuotedFieldIsBadData = true
			},
			action:    KeepRecord,
			wantKinds: []error{ErrLineBreakInQuotes, ErrBareQuote},
			want:      [][]string{{"a"}, {`b"`, "c"}, {"d"}},
		},
		{
			name:  "line break in quotes skip both records",
			input: "\"a\nb\",c\nd\n",
			opts: func(o *ReaderOptions) {
				o.LineBreakInQuotedFieldIsBadData = true
			},
			action:    SkipRecord,
			wantKinds: []error{ErrLineBreakInQuotes, ErrBareQuote},
			want:      [][]string{{"d"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var kinds []error
			var r *Reader
			opts := DefaultReaderOptions()
			if tt.opts != nil {
				tt.opts(&opts)
			}
			opts.BadDataFound = func(bd BadData) BadDataAction {
				kinds = append(kinds, bd.Kind)
				if _, err := r.FieldCount(); !errors.Is(err, ErrNoRecord) {
					t.Errorf("FieldCount() in callback = %v, want ErrNoRecord", err)
				}
				return tt.action
			}
			r, err := NewIOReader(strings.NewReader(tt.input), opts)
			if err != nil {
				t.Fatalf("NewIOReader() error = %v", err)
			}

			var got [][]string
			for {
				rec, err := r.Read()
				if err == io.EOF {
					break
				}
				if err != nil {
					t.Fatalf("Read() error = %v", err)
				}
				got = append(got, rec.Fields())
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("records = %q, want %q", got, tt.want)
			}
			if !reflect.DeepEqual(kinds, tt.wantKinds) {
				t.Errorf("kinds = %v, want %v", kinds, tt.wantKinds)
			}
		})
	}
}

func TestFieldSizeLimit(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		max       int
		header    bool
		wantErr   FieldSizeError
		want      [][]string
		wantHeads []string
	}{
		{
			name:    "middle field",
			input:   "ab,abcd,x\nok\n",
			max:     3,
			wantErr: FieldSizeError{Row: 1, Line: 1, FieldIndex: 1, Size: 4, Max: 3},
			want:    [][]string{{"ok"}},
		},
		{
			name:    "far over the limit reports once",
			input:   "abcdefgh\nz",
			max:     2,
			wantErr: FieldSizeError{Row: 1, Line: 1, FieldIndex: 0, Size: 3, Max: 2},
			want:    [][]string{{"z"}},
		},
		{
			name:    "quoted field with delimiter and newline",
			input:   "\"abcd,e\nf\",g\nz\n",
			max:     3,
			wantErr: FieldSizeError{Row: 1, Line: 1, FieldIndex: 0, Size: 4, Max: 3},
			want:    [][]string{{"z"}},
		},
		{
			name:      "header row",
			input:     "name,toolongheader\nab,cd\nx,y\n",
			max:       5,
			header:    true,
			wantErr:   FieldSizeError{Row: 1, Line: 1, FieldIndex: 1, Size: 6, Max: 5},
			want:      [][]string{{"x", "y"}},
			wantHeads: []string{"ab", "cd"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultReaderOptions()
			opts.MaxFieldSize = tt.max
			opts.HasHeader = tt.header
			opts.BufferSize = 2
			r, err := NewIOReader(strings.NewReader(tt.input), opts)
			if err != nil {
				t.Fatalf("NewIOReader() error = %v", err)
			}

			_, err = r.Read()
			var fse *FieldSizeError
			if !errors.As(err, &fse) || !errors.Is(err, ErrFieldTooLarge) {
				t.Fatalf("Read() error = %v, want *FieldSizeError", err)
			}
			if *fse != tt.wantErr {
				t.Errorf("FieldSizeError = %+v, want %+v", *fse, tt.wantErr)
			}

			var got [][]string
			for {
				rec, err := r.Read()
				if err == io.EOF {
					break
				}
				if err != nil {
					t.Fatalf("Read() error = %v", err)
				}
				got = append(got, rec.Fields())
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("records = %q, want %q", got, tt.want)
			}
			if tt.header && !reflect.DeepEqual(r.Headers(), tt.wantHeads) {
				t.Errorf("Headers() = %q, want %q", r.Headers(), tt.wantHeads)
			}
		})
	}
}

func TestTryReadWouldBlock(t *testing.T) {
	feed := source.NewFeed()
	r, err := NewReader(feed, DefaultReaderOptions())
	if err != nil {
		t.Fatalf("NewReader() error = %v", err)
	}

	if _, err := r.TryRead(); !errors.Is(err, ErrWouldBlock) {
		t.Fatalf("TryRead() on empty feed = %v, want ErrWouldBlock", err)
	}

	feed.WriteString("a,b\nc,")
	rec, err := r.TryRead()
	if err != nil {
		t.Fatalf("TryRead() error = %v", err)
	}
	if got := rec.Fields(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("Fields() = %q", got)
	}
	if _, err := r.TryRead(); !errors.Is(err, ErrWouldBlock) {
		t.Fatalf("TryRead() mid-record = %v, want ErrWouldBlock", err)
	}
	if _, err := r.FieldCount(); !errors.Is(err, ErrNoRecord) {
		t.Errorf("FieldCount() after would-block = %v, want ErrNoRecord", err)
	}

	feed.WriteString("\"d\nd\"\n")
	rec, err = r.TryRead()
	if err != nil {
		t.Fatalf("TryRead() error = %v", err)
	}
	if got := rec.Fields(); !reflect.DeepEqual(got, []string{"c", "d\nd"}) {
		t.Errorf("Fields() = %q", got)
	}
	if rec.Line() != 2 || r.Lines() != 3 {
		t.Errorf("Line() = %d, Lines() = %d, want 2, 3", rec.Line(), r.Lines())
	}

	feed.Close()
	if _, err := r.TryRead(); err != io.EOF {
		t.Errorf("TryRead() after close = %v, want io.EOF", err)
	}
}

// dry is a source that never has data and cannot wait.
type dry struct{}

func (dry) Fill([]rune) (int, error) { return 0, nil }

func TestReadContext(t *testing.T) {
	t.Run("waits for feed", func(t *testing.T) {
		feed := source.NewFeed()
		r, err := NewReader(feed, DefaultReaderOptions())
		if err != nil {
			t.Fatalf("NewReader() error = %v", err)
		}
		go func() {
			for _, chunk := range []string{"1,\"he", "llo\"", "\n2,x"} {
				feed.WriteString(chunk)
			}
			feed.Close()
		}()

		var got [][]string
		for {
			rec, err := r.ReadContext(context.Background())
			if err == io.EOF {
				break
			}
			if err != nil {
				t.Fatalf("ReadContext() error = %v", err)
			}
			got = append(got, rec.Fields())
		}
		want := [][]string{{"1", "hello"}, {"2", "x"}}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("records = %q, want %q", got, want)
		}
	})

	t.Run("cancelled", func(t *testing.T) {
		r, err := NewReader(source.NewFeed(), DefaultReaderOptions())
		if err != nil {
			t.Fatalf("NewReader() error = %v", err)
		}
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := r.ReadContext(ctx); !errors.Is(err, context.Canceled) {
			t.Errorf("ReadContext() error = %v, want context.Canceled", err)
		}
	})

	t.Run("source cannot wait", func(t *testing.T) {
		r, err := NewReader(dry{}, DefaultReaderOptions())
		if err != nil {
			t.Fatalf("NewReader() error = %v", err)
		}
		if _, err := r.Read(); !errors.Is(err, ErrWouldBlock) {
			t.Errorf("Read() error = %v, want ErrWouldBlock", err)
		}
	})
}

func TestReaderCounters(t *testing.T) {
	opts := DefaultReaderOptions()
	opts.CountBytes = true
	r, err := NewIOReader(strings.NewReader("ab,c\r\n\"é\ny\"\n"), opts)
	if err != nil {
		t.Fatalf("NewIOReader() error = %v", err)
	}

	tests := []struct {
		line, chars, bytes int
	}{
		{1, 6, 6},
		{2, 6, 7},
	}
	for i, tt := range tests {
		rec, err := r.Read()
		if err != nil {
			t.Fatalf("Read() %d error = %v", i, err)
		}
		if rec.Line() != tt.line || rec.CharCount() != tt.chars || rec.ByteCount() != tt.bytes {
			t.Errorf("record %d: line %d chars %d bytes %d, want %d %d %d",
				i, rec.Line(), rec.CharCount(), rec.ByteCount(), tt.line, tt.chars, tt.bytes)
		}
	}
	if r.CharCount() != 12 || r.ByteCount() != 13 || r.Lines() != 3 {
		t.Errorf("CharCount() = %d, ByteCount() = %d, Lines() = %d, want 12, 13, 3",
			r.CharCount(), r.ByteCount(), r.Lines())
	}
}

func TestReaderCacheStats(t *testing.T) {
	opts := DefaultReaderOptions()
	r, err := NewIOReader(strings.NewReader("x"), opts)
	if err != nil {
		t.Fatalf("NewIOReader() error = %v", err)
	}
	if _, ok := r.CacheStats(); ok {
		t.Error("CacheStats() ok without CacheFields")
	}

	opts.CacheFields = true
	r, err = NewIOReader(strings.NewReader("x,x\nx,x\n"), opts)
	if err != nil {
		t.Fatalf("NewIOReader() error = %v", err)
	}
	if _, err := r.ReadAll(); err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	stats, ok := r.CacheStats()
	if !ok || stats.Hits != 3 || stats.Misses != 1 {
		t.Errorf("CacheStats() = %+v, %v, want 3 hits 1 miss", stats, ok)
	}
}

// sparseReader returns (0, nil) before every chunk of data.
type sparseReader struct {
	data  string
	empty bool
}

func (r *sparseReader) Read(p []byte) (int, error) {
	r.empty = !r.empty
	if r.empty {
		return 0, nil
	}
	if r.data == "" {
		return 0, io.EOF
	}
	n := copy(p[:1], r.data)
	r.data = r.data[n:]
	return n, nil
}

func TestReaderEmptyReads(t *testing.T) {
	r, err := NewIOReader(&sparseReader{data: "a,b\nc,d\n"}, DefaultReaderOptions())
	if err != nil {
		t.Fatalf("NewIOReader() error = %v", err)
	}
	recs, err := r.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	var got [][]string
	for _, rec := range recs {
		got = append(got, rec.Fields())
	}
	want := [][]string{{"a", "b"}, {"c", "d"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ReadAll() = %q, want %q", got, want)
	}
}

type idleReader struct{}

func (idleReader) Read([]byte) (int, error) { return 0, nil }

func TestReaderIdleSourceWouldBlock(t *testing.T) {
	r, err := NewIOReader(idleReader{}, DefaultReaderOptions())
	if err != nil {
		t.Fatalf("NewIOReader() error = %v", err)
	}
	if _, err := r.Read(); !errors.Is(err, ErrWouldBlock) {
		t.Errorf("Read() error = %v, want ErrWouldBlock", err)
	}
}

func TestReaderBufferStats(t *testing.T) {
	opts := DefaultReaderOptions()
	opts.BufferSize = 4
	r, err := NewReader(source.FromRunes([]rune("abcdefghij,k\nl\n"), 2), opts)
	if err != nil {
		t.Fatalf("NewReader() error = %v", err)
	}
	recs, err := r.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("ReadAll() = %d records, want 2", len(recs))
	}
	stats := r.BufferStats()
	if stats.Grows == 0 || stats.Capacity <= 4 || stats.Fills < 2 {
		t.Errorf("BufferStats() = %+v, want growth past 4 and several fills", stats)
	}
}

func TestReaderDetectDelimiter(t *testing.T) {
	opts := DefaultReaderOptions()
	opts.DetectDelimiter = true
	r, err := NewIOReader(strings.NewReader("a;b;c\n1;2;3\n"), opts)
	if err != nil {
		t.Fatalf("NewIOReader() error = %v", err)
	}
	recs, err := r.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if r.DetectedDelimiter() != ";" {
		t.Errorf("DetectedDelimiter() = %q, want %q", r.DetectedDelimiter(), ";")
	}
	if len(recs) != 2 || recs[1].Len() != 3 {
		t.Errorf("ReadAll() = %d records", len(recs))
	}
}

func TestReaderDetectDelimiterEscapedLineEnding(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		newLine string
		want    [][]string
	}{
		{"escaped crlf", "a\\\r\nb;c;d\r\n", "", [][]string{{"a\r\nb", "c", "d"}}},
		{"escaped crlf before delimiters", "a\\\r\n;b;c,d\r\n", "", [][]string{{"a\r\n", "b", "c,d"}}},
		{"escaped lf", "x\\\ny;z\n1;2\n", "", [][]string{{"x\ny", "z"}, {"1", "2"}}},
		{"escaped explicit newline", "a\\||b;c||d;e||", "||", [][]string{{"a||b", "c"}, {"d", "e"}}},
	}

	for _, tt := range tests {
		for _, size := range []int{1, 2, 3, 16, 4096} {
			t.Run(fmt.Sprintf("%s/buffer %d", tt.name, size), func(t *testing.T) {
				opts := DefaultReaderOptions()
				opts.Mode = ModeEscape
				opts.Escape = '\\'
				opts.NewLine = tt.newLine
				opts.DetectDelimiter = true
				opts.DetectDelimiterValues = []string{",", ";"}
				opts.BufferSize = size
				if got := readAll(t, tt.input, opts); !reflect.DeepEqual(got, tt.want) {
					t.Errorf("records = %q, want %q", got, tt.want)
				}
			})
		}
	}
}

func TestNewReaderInvalidOptions(t *testing.T) {
	opts := DefaultReaderOptions()
	opts.Delimiter = ""
	_, err := NewReader(source.FromString("a"), opts)
	var oe *OptionsError
	if !errors.As(err, &oe) || oe.Field != "Delimiter" {
		t.Errorf("NewReader() error = %v, want *OptionsError for Delimiter", err)
	}
}
