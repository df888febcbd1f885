package diagfmt

import (
	"encoding/json"
	"strings"
	"testing"

	"lingo/internal/diag"
	"lingo/internal/source"
)

func fixture(t *testing.T) (*source.FileSet, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("app.ftl", []byte("hello = world\n??? junk line\n"))

	bag := diag.NewBag(8)
	d := diag.Diagnostic{
		Severity: diag.SevError,
		Code:     diag.SynExpectedEntry,
		Message:  "expected message, term, or comment",
		Primary:  source.Span{File: id, Start: 14, End: 17},
	}
	d = d.WithNote(source.Span{File: id, Start: 0, End: 5}, "previous entry here")
	bag.Add(d)
	bag.Add(diag.Diagnostic{
		Severity: diag.SevWarning,
		Code:     diag.SemDuplicateMessage,
		Message:  "duplicate",
		Primary:  source.Span{File: id, Start: 0, End: 5},
	})
	bag.Sort()
	return fs, bag
}

func TestPretty(t *testing.T) {
	fs, bag := fixture(t)
	var b strings.Builder
	Pretty(&b, bag, fs, PrettyOpts{Context: true, ShowNotes: true})
	out := b.String()

	if !strings.Contains(out, "app.ftl:2:1: ERROR SYN1002: expected message, term, or comment") {
		t.Errorf("missing error header:\n%s", out)
	}
	if !strings.Contains(out, "app.ftl:1:1: WARNING SEM2001: duplicate") {
		t.Errorf("missing warning header:\n%s", out)
	}
	if !strings.Contains(out, "??? junk line") {
		t.Errorf("missing source context:\n%s", out)
	}
	if !strings.Contains(out, "^~~") {
		t.Errorf("missing caret underline:\n%s", out)
	}
	if !strings.Contains(out, "note: previous entry here") {
		t.Errorf("missing note:\n%s", out)
	}
}

func TestPretty_NoContextNoNotes(t *testing.T) {
	fs, bag := fixture(t)
	var b strings.Builder
	Pretty(&b, bag, fs, PrettyOpts{})
	out := b.String()
	if strings.Contains(out, "note:") {
		t.Errorf("notes should be suppressed:\n%s", out)
	}
	if strings.Contains(out, "^") {
		t.Errorf("context should be suppressed:\n%s", out)
	}
}

func TestJSON(t *testing.T) {
	fs, bag := fixture(t)
	var b strings.Builder
	if err := JSON(&b, bag, fs, JSONOpts{IncludePositions: true, IncludeNotes: true}); err != nil {
		t.Fatalf("JSON: %v", err)
	}

	var out DiagnosticsOutput
	if err := json.Unmarshal([]byte(b.String()), &out); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if out.Count != 2 || len(out.Diagnostics) != 2 {
		t.Fatalf("count = %d/%d, want 2", out.Count, len(out.Diagnostics))
	}
	first := out.Diagnostics[0]
	if first.Severity != "WARNING" || first.Code != "SEM2001" {
		t.Errorf("first = %+v, bag order should be preserved", first)
	}
	if first.Location.File != "app.ftl" || first.Location.StartLine != 1 {
		t.Errorf("location = %+v", first.Location)
	}
	second := out.Diagnostics[1]
	if len(second.Notes) != 1 || second.Notes[0].Message != "previous entry here" {
		t.Errorf("notes = %+v", second.Notes)
	}
}

func TestJSON_MaxTruncatesOutputOnly(t *testing.T) {
	fs, bag := fixture(t)
	out := BuildDiagnosticsOutput(bag, fs, JSONOpts{Max: 1})
	if len(out.Diagnostics) != 1 {
		t.Errorf("diagnostics = %d, want 1", len(out.Diagnostics))
	}
	if out.Count != 2 {
		t.Errorf("count = %d, want the untruncated total", out.Count)
	}
}
