package plural

import (
	"testing"

	"golang.org/x/text/language"
)

func TestCategory(t *testing.T) {
	tests := []struct {
		name    string
		literal string
		tag     language.Tag
		want    string
	}{
		{"english one", "1", language.English, "one"},
		{"english other", "5", language.English, "other"},
		{"english zero is other", "0", language.English, "other"},
		{"visible fraction changes category", "1.0", language.English, "other"},
		{"negative one", "-1", language.English, "one"},
		{"russian few", "2", language.Russian, "few"},
		{"russian many", "5", language.Russian, "many"},
		{"russian twenty-one is one", "21", language.Russian, "one"},
		{"polish few", "3", language.Polish, "few"},
		{"arabic zero", "0", language.Arabic, "zero"},
		{"arabic two", "2", language.Arabic, "two"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Category(tt.literal, tt.tag); got != tt.want {
				t.Errorf("Category(%q, %v) = %q, want %q", tt.literal, tt.tag, got, tt.want)
			}
		})
	}
}

func TestOperands(t *testing.T) {
	tests := []struct {
		literal       string
		i, v, w, f, t int
	}{
		{"1", 1, 0, 0, 0, 0},
		{"1.0", 1, 1, 0, 0, 0},
		{"1.30", 1, 2, 1, 30, 3},
		{"-2.5", 2, 1, 1, 5, 5},
		{"0.07", 0, 2, 2, 7, 7},
	}
	for _, tt := range tests {
		i, v, w, f, tr := operands(tt.literal)
		if i != tt.i || v != tt.v || w != tt.w || f != tt.f || tr != tt.t {
			t.Errorf("operands(%q) = %d,%d,%d,%d,%d want %d,%d,%d,%d,%d",
				tt.literal, i, v, w, f, tr, tt.i, tt.v, tt.w, tt.f, tt.t)
		}
	}
}
