// Package plural maps numeric values to CLDR cardinal plural category
// labels. It is the resolver's only hook into locale plural data.
package plural

import (
	"strings"

	"golang.org/x/text/feature/plural"
	"golang.org/x/text/language"
)

// Category returns the cardinal plural category ("zero", "one", "two",
// "few", "many", "other") of a decimal literal under the given locale.
// The literal spelling matters: "1.0" and "1" can land in different
// categories, so callers pass the formatted source form.
func Category(literal string, tag language.Tag) string {
	i, v, w, f, t := operands(literal)
	form := plural.Cardinal.MatchPlural(tag, i, v, w, f, t)
	switch form {
	case plural.Zero:
		return "zero"
	case plural.One:
		return "one"
	case plural.Two:
		return "two"
	case plural.Few:
		return "few"
	case plural.Many:
		return "many"
	default:
		return "other"
	}
}

// operands derives the CLDR plural operands from a decimal literal:
// i = integer digits, v = count of visible fraction digits,
// w = v without trailing zeros, f = fraction digits as an integer,
// t = f without trailing zeros.
func operands(literal string) (i, v, w, f, t int) {
	literal = strings.TrimPrefix(literal, "-")
	intPart := literal
	fracPart := ""
	if dot := strings.IndexByte(literal, '.'); dot >= 0 {
		intPart, fracPart = literal[:dot], literal[dot+1:]
	}

	for _, ch := range intPart {
		if ch < '0' || ch > '9' {
			return 0, 0, 0, 0, 0
		}
		i = i*10 + int(ch-'0')
	}
	v = len(fracPart)
	for _, ch := range fracPart {
		if ch < '0' || ch > '9' {
			return i, 0, 0, 0, 0
		}
		f = f*10 + int(ch-'0')
	}
	trimmed := strings.TrimRight(fracPart, "0")
	w = len(trimmed)
	for _, ch := range trimmed {
		t = t*10 + int(ch-'0')
	}
	return i, v, w, f, t
}
