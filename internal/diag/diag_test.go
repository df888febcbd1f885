package diag

import (
	"testing"

	"lingo/internal/source"
)

func mkDiag(code Code, sev Severity, file source.FileID, start, end uint32) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Message:  code.Title(),
		Primary:  source.Span{File: file, Start: start, End: end},
	}
}

func TestBag_CapDropsOverflow(t *testing.T) {
	b := NewBag(2)
	if !b.Add(mkDiag(SynExpectedEntry, SevError, 0, 0, 1)) {
		t.Fatal("first add dropped")
	}
	if !b.Add(mkDiag(SynExpectedEntry, SevError, 0, 1, 2)) {
		t.Fatal("second add dropped")
	}
	if b.Add(mkDiag(SynExpectedEntry, SevError, 0, 2, 3)) {
		t.Fatal("third add should have been dropped")
	}
	if b.Len() != 2 {
		t.Errorf("len = %d, want 2", b.Len())
	}
}

func TestBag_LargeCapDoesNotWrap(t *testing.T) {
	// Caps past 16 bits must hold, not wrap to a tiny effective cap.
	b := NewBag(70000)
	if b.Cap() != 70000 {
		t.Fatalf("cap = %d, want 70000", b.Cap())
	}
	for i := 0; i < 66000; i++ {
		if !b.Add(mkDiag(SynExpectedEntry, SevError, 0, uint32(i), uint32(i+1))) {
			t.Fatalf("add %d dropped below the cap", i)
		}
	}
	if b.Len() != 66000 {
		t.Errorf("len = %d, want 66000", b.Len())
	}
}

func TestBag_SeverityQueries(t *testing.T) {
	b := NewBag(8)
	b.Add(mkDiag(SemTermPositionalArgs, SevWarning, 0, 0, 1))
	if b.HasErrors() {
		t.Error("warning alone should not count as error")
	}
	if !b.HasWarnings() {
		t.Error("HasWarnings should see the warning")
	}
	b.Add(mkDiag(SemCyclicReference, SevError, 0, 1, 2))
	if !b.HasErrors() {
		t.Error("HasErrors should see the error")
	}
}

func TestBag_SortOrder(t *testing.T) {
	b := NewBag(8)
	b.Add(mkDiag(SynMissingValue, SevError, 1, 5, 6))
	b.Add(mkDiag(SynExpectedEntry, SevError, 0, 9, 10))
	b.Add(mkDiag(SemDuplicateMessage, SevWarning, 0, 3, 4))
	b.Add(mkDiag(SemUndefinedTermRef, SevError, 0, 3, 4))
	b.Sort()

	items := b.Items()
	// file asc, start asc, severity desc at the same span.
	wantCodes := []Code{SemUndefinedTermRef, SemDuplicateMessage, SynExpectedEntry, SynMissingValue}
	for i, want := range wantCodes {
		if items[i].Code != want {
			t.Errorf("items[%d].Code = %v, want %v", i, items[i].Code, want)
		}
	}
}

func TestBag_Dedup(t *testing.T) {
	b := NewBag(8)
	d := mkDiag(SynExpectedEntry, SevError, 0, 0, 1)
	b.Add(d)
	b.Add(d)
	b.Add(mkDiag(SynExpectedEntry, SevError, 0, 5, 6)) // same code, other span
	b.Dedup()
	if b.Len() != 2 {
		t.Errorf("len after dedup = %d, want 2", b.Len())
	}
}

func TestBag_MergeGrowsCap(t *testing.T) {
	a := NewBag(1)
	a.Add(mkDiag(SynExpectedEntry, SevError, 0, 0, 1))
	other := NewBag(2)
	other.Add(mkDiag(SemDuplicateTerm, SevWarning, 0, 1, 2))
	other.Add(mkDiag(SemDuplicateTerm, SevWarning, 0, 2, 3))
	a.Merge(other)
	if a.Len() != 3 {
		t.Errorf("len after merge = %d, want 3", a.Len())
	}
}

func TestCode_ID(t *testing.T) {
	tests := []struct {
		code Code
		want string
	}{
		{SynExpectedEntry, "SYN1002"},
		{SemCyclicReference, "SEM2007"},
		{ResBudgetExceeded, "RES3008"},
		{CacheChecksumBroken, "CHE4001"},
		{IOLoadFileError, "IO5001"},
		{UnknownCode, "E0000"},
	}
	for _, tt := range tests {
		if got := tt.code.ID(); got != tt.want {
			t.Errorf("ID(%d) = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestCode_TitleFallback(t *testing.T) {
	if Code(9999).Title() != UnknownCode.Title() {
		t.Error("unknown codes should fall back to the unknown description")
	}
}
