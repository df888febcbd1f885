package resolver

import (
	"strconv"

	"golang.org/x/text/language"

	"lingo/internal/ast"
)

// matchVariant picks the variant for a resolved selector value:
// exact match first, then a plural-category retry for numbers, then
// the default variant. A nil value goes straight to the default.
func matchVariant(val Value, variants []*ast.Variant, tag language.Tag) *ast.Variant {
	var def *ast.Variant
	for _, v := range variants {
		if v.Default {
			def = v
		}
	}
	if val == nil {
		return def
	}

	for _, v := range variants {
		if keyMatches(val, v.Key) {
			return v
		}
	}

	if num, ok := val.(NumberValue); ok {
		category := num.PluralCategory(tag)
		for _, v := range variants {
			if id, isID := v.Key.(*ast.Identifier); isID && id.Name == category {
				return v
			}
		}
	}
	return def
}

// keyMatches applies the exact-match rules. Numeric keys compare by
// numeric value and only against numbers: booleans and strings never
// match a numeric key, they fall through to the default.
func keyMatches(val Value, key ast.VariantKey) bool {
	switch k := key.(type) {
	case *ast.Identifier:
		s, ok := val.(StringValue)
		return ok && s.Val == k.Name
	case *ast.NumberLiteral:
		num, ok := val.(NumberValue)
		if !ok {
			return false
		}
		keyVal, err := strconv.ParseFloat(k.Value, 64)
		return err == nil && keyVal == num.Val
	}
	return false
}
