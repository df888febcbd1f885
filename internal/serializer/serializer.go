// Package serializer renders an AST back into canonical FTL text.
// Round-tripping through Parse preserves entry identifiers and value
// text; whitespace is normalized to the canonical form.
package serializer

import (
	"fmt"
	"strings"

	"lingo/internal/ast"
)

const indentUnit = "    "

// Serialize renders a whole resource. Junk entries are reproduced
// verbatim so no input content is silently dropped.
func Serialize(res *ast.Resource) string {
	var b strings.Builder
	for i, entry := range res.Body {
		if i > 0 {
			b.WriteByte('\n')
		}
		writeEntry(&b, entry)
	}
	return b.String()
}

func writeEntry(b *strings.Builder, entry ast.Entry) {
	switch e := entry.(type) {
	case *ast.Message:
		if e.Comment != nil {
			writeComment(b, "#", e.Comment.Content)
		}
		b.WriteString(e.ID.Name)
		b.WriteString(" =")
		if e.Value != nil {
			writePatternValue(b, e.Value, 1)
		}
		writeAttributes(b, e.Attributes)
		b.WriteByte('\n')
	case *ast.Term:
		if e.Comment != nil {
			writeComment(b, "#", e.Comment.Content)
		}
		b.WriteByte('-')
		b.WriteString(e.ID.Name)
		b.WriteString(" =")
		if e.Value != nil {
			writePatternValue(b, e.Value, 1)
		}
		writeAttributes(b, e.Attributes)
		b.WriteByte('\n')
	case *ast.Comment:
		writeComment(b, "#", e.Content)
	case *ast.GroupComment:
		writeComment(b, "##", e.Content)
	case *ast.ResourceComment:
		writeComment(b, "###", e.Content)
	case *ast.Junk:
		b.WriteString(e.Content)
		if !strings.HasSuffix(e.Content, "\n") {
			b.WriteByte('\n')
		}
	}
}

func writeComment(b *strings.Builder, hashes, content string) {
	for _, line := range strings.Split(content, "\n") {
		b.WriteString(hashes)
		if line != "" {
			b.WriteByte(' ')
			b.WriteString(line)
		}
		b.WriteByte('\n')
	}
}

func writeAttributes(b *strings.Builder, attrs []*ast.Attribute) {
	for _, attr := range attrs {
		b.WriteByte('\n')
		b.WriteString(indentUnit)
		b.WriteByte('.')
		b.WriteString(attr.ID.Name)
		b.WriteString(" =")
		writePatternValue(b, attr.Value, 2)
	}
}

// writePatternValue writes `= pattern`, switching to block form when
// the pattern is multiline or starts in a way the parser would
// misread inline.
func writePatternValue(b *strings.Builder, pat *ast.Pattern, level int) {
	if patternIsMultiline(pat) {
		indent := strings.Repeat(indentUnit, level)
		b.WriteByte('\n')
		b.WriteString(indent)
		writePattern(b, pat, indent, level)
		return
	}
	b.WriteByte(' ')
	writePattern(b, pat, "", level)
}

func patternIsMultiline(pat *ast.Pattern) bool {
	for _, el := range pat.Elements {
		if txt, ok := el.(*ast.TextElement); ok && strings.Contains(txt.Value, "\n") {
			return true
		}
	}
	return false
}

func writePattern(b *strings.Builder, pat *ast.Pattern, indent string, level int) {
	for _, el := range pat.Elements {
		switch v := el.(type) {
		case *ast.TextElement:
			b.WriteString(strings.ReplaceAll(v.Value, "\n", "\n"+indent))
		case *ast.Placeable:
			writePlaceable(b, v, level)
		}
	}
}

func writePlaceable(b *strings.Builder, pl *ast.Placeable, level int) {
	// a select expression writes its own braces
	if sel, ok := pl.Expression.(*ast.SelectExpression); ok {
		writeSelect(b, sel, level)
		return
	}
	b.WriteString("{ ")
	writeExpression(b, pl.Expression, level)
	b.WriteString(" }")
}

func escapeString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}

func writeExpression(b *strings.Builder, expr ast.Expression, level int) {
	switch v := expr.(type) {
	case *ast.StringLiteral:
		b.WriteByte('"')
		b.WriteString(escapeString(v.Value))
		b.WriteByte('"')
	case *ast.NumberLiteral:
		b.WriteString(v.Value)
	case *ast.VariableReference:
		b.WriteByte('$')
		b.WriteString(v.ID.Name)
	case *ast.MessageReference:
		b.WriteString(v.ID.Name)
		if v.Attribute != nil {
			b.WriteByte('.')
			b.WriteString(v.Attribute.Name)
		}
	case *ast.TermReference:
		b.WriteByte('-')
		b.WriteString(v.ID.Name)
		if v.Attribute != nil {
			b.WriteByte('.')
			b.WriteString(v.Attribute.Name)
		}
		if v.Arguments != nil {
			writeCallArguments(b, v.Arguments, level)
		}
	case *ast.FunctionReference:
		b.WriteString(v.ID.Name)
		writeCallArguments(b, v.Arguments, level)
	case *ast.Placeable:
		writePlaceable(b, v, level)
	case *ast.SelectExpression:
		writeSelect(b, v, level)
	default:
		fmt.Fprintf(b, "<unknown expression %T>", expr)
	}
}

func writeCallArguments(b *strings.Builder, args *ast.CallArguments, level int) {
	b.WriteByte('(')
	first := true
	for _, pos := range args.Positional {
		if !first {
			b.WriteString(", ")
		}
		first = false
		writeExpression(b, pos, level)
	}
	for _, named := range args.Named {
		if !first {
			b.WriteString(", ")
		}
		first = false
		b.WriteString(named.Name.Name)
		b.WriteString(": ")
		writeExpression(b, named.Value, level)
	}
	b.WriteByte(')')
}

func writeSelect(b *strings.Builder, sel *ast.SelectExpression, level int) {
	indent := strings.Repeat(indentUnit, level)
	b.WriteString("{ ")
	writeExpression(b, sel.Selector, level)
	b.WriteString(" ->")
	for _, variant := range sel.Variants {
		b.WriteByte('\n')
		b.WriteString(indent)
		if variant.Default {
			b.WriteByte('*')
		}
		b.WriteByte('[')
		switch k := variant.Key.(type) {
		case *ast.Identifier:
			b.WriteString(k.Name)
		case *ast.NumberLiteral:
			b.WriteString(k.Value)
		}
		b.WriteString("] ")
		writePattern(b, variant.Value, indent+indentUnit, level+1)
	}
	b.WriteByte('\n')
	if level > 1 {
		b.WriteString(strings.Repeat(indentUnit, level-1))
	}
	b.WriteString("}")
}
