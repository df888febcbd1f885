package source

import (
	"testing"
)

func TestFileSet_NormalizationFlags(t *testing.T) {
	tests := []struct {
		name      string
		input     []byte
		want      string
		wantFlags FileFlags
	}{
		{
			name:      "plain",
			input:     []byte("a = x\n"),
			want:      "a = x\n",
			wantFlags: FileVirtual,
		},
		{
			name:      "crlf",
			input:     []byte("a = x\r\nb = y\r\n"),
			want:      "a = x\nb = y\n",
			wantFlags: FileVirtual | FileNormalizedEOL,
		},
		{
			name:      "lone cr",
			input:     []byte("a = x\rb = y\r"),
			want:      "a = x\nb = y\n",
			wantFlags: FileVirtual | FileNormalizedEOL,
		},
		{
			name:      "bom",
			input:     []byte("\xEF\xBB\xBFa = x\n"),
			want:      "a = x\n",
			wantFlags: FileVirtual | FileHadBOM,
		},
		{
			name:      "bom and crlf",
			input:     []byte("\xEF\xBB\xBFa = x\r\n"),
			want:      "a = x\n",
			wantFlags: FileVirtual | FileHadBOM | FileNormalizedEOL,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := NewFileSet()
			id := fs.AddVirtual("test.ftl", tt.input)
			f := fs.Get(id)
			if string(f.Content) != tt.want {
				t.Errorf("content = %q, want %q", f.Content, tt.want)
			}
			if f.Flags != tt.wantFlags {
				t.Errorf("flags = %b, want %b", f.Flags, tt.wantFlags)
			}
		})
	}
}

func TestFileSet_LatestWins(t *testing.T) {
	fs := NewFileSet()
	first := fs.AddVirtual("a.ftl", []byte("one = 1\n"))
	second := fs.AddVirtual("a.ftl", []byte("two = 2\n"))
	if first == second {
		t.Fatal("each add must mint a fresh FileID")
	}
	latest, ok := fs.GetLatest("a.ftl")
	if !ok || latest != second {
		t.Errorf("GetLatest = %d,%v, want %d,true", latest, ok, second)
	}
	if string(fs.Get(first).Content) != "one = 1\n" {
		t.Error("earlier revision content must remain addressable")
	}
}

func TestFileSet_Resolve(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("t.ftl", []byte("ab\ncd\n\nef"))
	tests := []struct {
		name string
		off  uint32
		want LineCol
	}{
		{"first byte", 0, LineCol{Line: 1, Col: 1}},
		{"middle of first line", 1, LineCol{Line: 1, Col: 2}},
		{"newline belongs to its line", 2, LineCol{Line: 1, Col: 3}},
		{"start of second line", 3, LineCol{Line: 2, Col: 1}},
		{"empty line", 6, LineCol{Line: 3, Col: 1}},
		{"after empty line", 7, LineCol{Line: 4, Col: 1}},
		{"last byte", 8, LineCol{Line: 4, Col: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, _ := fs.Resolve(Span{File: id, Start: tt.off, End: tt.off + 1})
			if start != tt.want {
				t.Errorf("Resolve(%d) = %+v, want %+v", tt.off, start, tt.want)
			}
		})
	}
}

func TestFile_GetLine(t *testing.T) {
	fs := NewFileSet()
	f := fs.Get(fs.AddVirtual("t.ftl", []byte("first\nsecond\n\nlast")))
	tests := []struct {
		line uint32
		want string
	}{
		{0, ""},
		{1, "first"},
		{2, "second"},
		{3, ""},
		{4, "last"},
		{5, ""},
	}
	for _, tt := range tests {
		if got := f.GetLine(tt.line); got != tt.want {
			t.Errorf("GetLine(%d) = %q, want %q", tt.line, got, tt.want)
		}
	}
}

func TestSpan_CoverAndContains(t *testing.T) {
	a := Span{File: 1, Start: 4, End: 8}
	b := Span{File: 1, Start: 6, End: 12}
	got := a.Cover(b)
	if got.Start != 4 || got.End != 12 {
		t.Errorf("Cover = %v, want 1:4-12", got)
	}
	other := Span{File: 2, Start: 0, End: 100}
	if a.Cover(other) != a {
		t.Error("cross-file cover must be a no-op")
	}
	if !a.Contains(4) || !a.Contains(7) {
		t.Error("Contains should include start and interior offsets")
	}
	if a.Contains(8) {
		t.Error("Contains must exclude the end offset")
	}
	if !a.Cover(b).Contains(11) {
		t.Error("covered span should contain merged offsets")
	}
	if (Span{Start: 3, End: 3}).Empty() != true {
		t.Error("zero-length span should be empty")
	}
}

func TestCursor_Basics(t *testing.T) {
	fs := NewFileSet()
	f := fs.Get(fs.AddVirtual("t.ftl", []byte("abc")))
	c := NewCursor(f)

	if c.Peek() != 'a' || c.PeekAt(2) != 'c' || c.PeekAt(3) != 0 {
		t.Error("peek mismatch")
	}
	if !c.Eat('a') {
		t.Error("Eat('a') should consume")
	}
	if c.Eat('x') {
		t.Error("Eat('x') should not consume")
	}
	m := c.Mark()
	if c.Bump() != 'b' || c.Bump() != 'c' {
		t.Error("bump mismatch")
	}
	if !c.EOF() || c.Bump() != 0 {
		t.Error("expected EOF after consuming all bytes")
	}
	if string(c.Slice(m)) != "bc" {
		t.Errorf("Slice = %q, want bc", c.Slice(m))
	}
	span := c.SpanFrom(m)
	if span.Start != 1 || span.End != 3 {
		t.Errorf("SpanFrom = %v", span)
	}
	c.Reset(m)
	if c.Peek() != 'b' {
		t.Error("Reset should rewind")
	}
}
