package parser

import (
	"lingo/internal/ast"
	"lingo/internal/diag"
)

// parsePlaceable reads `{ expr }`. Nested placeables, call arguments,
// and variant values all bump the nesting depth.
func (p *Parser) parsePlaceable() (*ast.Placeable, bool) {
	if !p.enterNested() {
		return nil, false
	}
	defer p.leaveNested()

	start := p.cur.Mark()
	if !p.cur.Eat('{') {
		p.errAt(diag.SynExpectedToken, p.here(), "expected '{'")
		return nil, false
	}
	p.skipBlank()

	expr, ok := p.parseExpression()
	if !ok {
		return nil, false
	}

	p.skipBlank()
	if !p.cur.Eat('}') {
		p.errAt(diag.SynUnclosedPlaceable, p.here(), "expected '}'")
		return nil, false
	}
	return &ast.Placeable{
		Base:       ast.Base{Loc: p.cur.SpanFrom(start)},
		Expression: expr,
	}, true
}

// parseExpression reads an inline expression, optionally followed by
// `->` and a variant list forming a select expression.
func (p *Parser) parseExpression() (ast.Expression, bool) {
	start := p.cur.Mark()
	inline, ok := p.parseInlineExpression()
	if !ok {
		return nil, false
	}

	mark := p.cur.Mark()
	p.skipBlank()
	if !(p.cur.Peek() == '-' && p.cur.PeekAt(1) == '>') {
		p.cur.Reset(mark)
		return inline, true
	}
	p.cur.Bump()
	p.cur.Bump()

	if !p.selectorAllowed(inline) {
		return nil, false
	}

	variants, ok := p.parseVariants()
	if !ok {
		return nil, false
	}
	return &ast.SelectExpression{
		Base:     ast.Base{Loc: p.cur.SpanFrom(start)},
		Selector: inline,
		Variants: variants,
	}, true
}

// selectorAllowed enforces which expressions may select: literals,
// variables, function calls, and term attributes. Messages, message
// attributes, bare terms, and placeables cannot select.
func (p *Parser) selectorAllowed(e ast.Expression) bool {
	switch v := e.(type) {
	case *ast.StringLiteral, *ast.NumberLiteral, *ast.VariableReference, *ast.FunctionReference:
		return true
	case *ast.TermReference:
		if v.Attribute == nil {
			p.errAt(diag.SynExpectedExpression, v.Span(), "terms cannot be used as selectors, use a term attribute")
			return false
		}
		return true
	case *ast.MessageReference:
		if v.Attribute != nil {
			p.errAt(diag.SynTermAttrAsSelector, v.Span(), "message attributes cannot be used as selectors")
		} else {
			p.errAt(diag.SynExpectedExpression, v.Span(), "messages cannot be used as selectors")
		}
		return false
	default:
		p.errAt(diag.SynExpectedExpression, e.Span(), "expression cannot be used as a selector")
		return false
	}
}

// parseVariants reads the variant list of a select expression. Variants
// sit on indented lines or inline; exactly one carries '*'.
func (p *Parser) parseVariants() ([]*ast.Variant, bool) {
	var variants []*ast.Variant
	defaults := 0
	for {
		p.skipBlank()
		ch := p.cur.Peek()
		if ch == '}' || p.cur.EOF() {
			break
		}
		if ch != '[' && ch != '*' {
			p.errAt(diag.SynExpectedVariantKey, p.here(), "expected variant key")
			return nil, false
		}

		start := p.cur.Mark()
		isDefault := p.cur.Eat('*')
		if !p.cur.Eat('[') {
			p.errAt(diag.SynExpectedVariantKey, p.here(), "expected '[' before variant key")
			return nil, false
		}
		p.skipInline()
		key, ok := p.parseVariantKey()
		if !ok {
			return nil, false
		}
		p.skipInline()
		if !p.cur.Eat(']') {
			p.errAt(diag.SynExpectedToken, p.here(), "expected ']' after variant key")
			return nil, false
		}
		p.skipInline()

		// variant values count against the nesting limit
		if !p.enterNested() {
			return nil, false
		}
		value, ok := p.parsePatternMode(true)
		p.leaveNested()
		if !ok {
			return nil, false
		}
		if value == nil {
			p.errAt(diag.SynMissingValue, p.here(), "expected variant value")
			return nil, false
		}
		if isDefault {
			defaults++
		}
		variants = append(variants, &ast.Variant{
			Base:    ast.Base{Loc: p.cur.SpanFrom(start)},
			Key:     key,
			Value:   value,
			Default: isDefault,
		})
	}

	switch {
	case len(variants) == 0:
		p.errAt(diag.SynMissingVariants, p.here(), "select expression has no variants")
		return nil, false
	case defaults == 0:
		p.errAt(diag.SynMissingDefault, p.here(), "select expression has no default variant")
		return nil, false
	case defaults > 1:
		p.errAt(diag.SynMultipleDefaults, p.here(), "select expression has multiple default variants")
		return nil, false
	}
	return variants, true
}

func (p *Parser) parseVariantKey() (ast.VariantKey, bool) {
	ch := p.cur.Peek()
	if isDigit(ch) || ch == '-' {
		return p.scanNumber()
	}
	id, ok := p.scanIdentifier()
	if !ok {
		return nil, false
	}
	return id, true
}

// parseInlineExpression dispatches on the first byte: string, number,
// variable, term reference, function call, message reference, or a
// nested placeable.
func (p *Parser) parseInlineExpression() (ast.Expression, bool) {
	switch ch := p.cur.Peek(); {
	case ch == '"':
		return p.scanString()

	case isDigit(ch):
		return p.scanNumber()

	case ch == '-' && isDigit(p.cur.PeekAt(1)):
		return p.scanNumber()

	case ch == '-' && isIdentStart(p.cur.PeekAt(1)):
		return p.parseTermReference()

	case ch == '$':
		start := p.cur.Mark()
		p.cur.Bump()
		id, ok := p.scanIdentifier()
		if !ok {
			return nil, false
		}
		return &ast.VariableReference{
			Base: ast.Base{Loc: p.cur.SpanFrom(start)},
			ID:   id,
		}, true

	case isIdentStart(ch):
		return p.parseMessageOrFunctionReference()

	case ch == '{':
		return p.parsePlaceable()

	default:
		p.errAt(diag.SynExpectedExpression, p.here(), "expected expression")
		return nil, false
	}
}

func (p *Parser) parseTermReference() (ast.Expression, bool) {
	start := p.cur.Mark()
	p.cur.Eat('-')
	id, ok := p.scanIdentifier()
	if !ok {
		return nil, false
	}
	var attr *ast.Identifier
	if p.cur.Peek() == '.' {
		p.cur.Bump()
		attr, ok = p.scanIdentifier()
		if !ok {
			return nil, false
		}
	}
	var args *ast.CallArguments
	if p.cur.Peek() == '(' {
		args, ok = p.parseCallArguments()
		if !ok {
			return nil, false
		}
	}
	return &ast.TermReference{
		Base:      ast.Base{Loc: p.cur.SpanFrom(start)},
		ID:        id,
		Attribute: attr,
		Arguments: args,
	}, true
}

func (p *Parser) parseMessageOrFunctionReference() (ast.Expression, bool) {
	start := p.cur.Mark()
	id, ok := p.scanIdentifier()
	if !ok {
		return nil, false
	}

	if p.cur.Peek() == '(' {
		if !isFunctionName(id.Name) {
			p.errAt(diag.SynCallArgNotAllowed, id.Span(), "callees must be upper-case function names")
			return nil, false
		}
		args, ok := p.parseCallArguments()
		if !ok {
			return nil, false
		}
		return &ast.FunctionReference{
			Base:      ast.Base{Loc: p.cur.SpanFrom(start)},
			ID:        id,
			Arguments: args,
		}, true
	}

	var attr *ast.Identifier
	if p.cur.Peek() == '.' {
		p.cur.Bump()
		attr, ok = p.scanIdentifier()
		if !ok {
			return nil, false
		}
	}
	return &ast.MessageReference{
		Base:      ast.Base{Loc: p.cur.SpanFrom(start)},
		ID:        id,
		Attribute: attr,
	}, true
}

// isFunctionName reports whether name matches [A-Z][A-Z0-9_-]*.
func isFunctionName(name string) bool {
	if name == "" || name[0] < 'A' || name[0] > 'Z' {
		return false
	}
	for i := 1; i < len(name); i++ {
		ch := name[i]
		if (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') || ch == '_' || ch == '-' {
			continue
		}
		return false
	}
	return true
}

// parseCallArguments reads `( positional*, named* )`. Argument
// evaluation nests, so the whole list counts against the depth limit.
func (p *Parser) parseCallArguments() (*ast.CallArguments, bool) {
	if !p.enterNested() {
		return nil, false
	}
	defer p.leaveNested()

	start := p.cur.Mark()
	if !p.cur.Eat('(') {
		p.errAt(diag.SynExpectedToken, p.here(), "expected '('")
		return nil, false
	}
	args := &ast.CallArguments{}
	seenNamed := false

	p.skipBlank()
	for {
		if p.cur.Eat(')') {
			args.Loc = p.cur.SpanFrom(start)
			return args, true
		}
		if p.cur.EOF() {
			p.errAt(diag.SynUnclosedPlaceable, p.here(), "expected ')'")
			return nil, false
		}

		expr, ok := p.parseInlineExpression()
		if !ok {
			return nil, false
		}

		// `ident: literal` is a named argument
		named := false
		if ref, isRef := expr.(*ast.MessageReference); isRef && ref.Attribute == nil && p.cur.Peek() == ':' {
			p.cur.Bump()
			p.skipBlank()
			value, ok := p.parseInlineExpression()
			if !ok {
				return nil, false
			}
			switch value.(type) {
			case *ast.StringLiteral, *ast.NumberLiteral:
			default:
				p.errAt(diag.SynNamedArgLiteral, value.Span(), "named argument value must be a string or number literal")
				return nil, false
			}
			args.Named = append(args.Named, &ast.NamedArgument{
				Base:  ast.Base{Loc: ref.Span().Cover(value.Span())},
				Name:  ref.ID,
				Value: value,
			})
			named = true
			seenNamed = true
		}
		if !named {
			if seenNamed {
				p.errAt(diag.SynCallArgNotAllowed, expr.Span(), "positional arguments must precede named arguments")
				return nil, false
			}
			args.Positional = append(args.Positional, expr)
		}

		p.skipBlank()
		if p.cur.Eat(',') {
			p.skipBlank()
			continue
		}
		if !p.cur.Eat(')') {
			p.errAt(diag.SynExpectedToken, p.here(), "expected ',' or ')' in argument list")
			return nil, false
		}
		args.Loc = p.cur.SpanFrom(start)
		return args, true
	}
}
