package parser

import (
	"lingo/internal/ast"
	"lingo/internal/diag"
)

// parseMessage reads `id = pattern` with optional `.attr = pattern`
// continuation lines. A message may omit its value only when it has at
// least one attribute.
func (p *Parser) parseMessage() (ast.Entry, bool) {
	start := p.cur.Mark()
	id, ok := p.scanIdentifier()
	if !ok {
		return nil, false
	}
	p.skipInline()
	if !p.cur.Eat('=') {
		p.errAt(diag.SynExpectedToken, p.here(), "expected '=' after message identifier")
		return nil, false
	}
	p.skipInline()

	value, ok := p.parsePattern()
	if !ok {
		return nil, false
	}
	attrs, ok := p.parseAttributes()
	if !ok {
		return nil, false
	}
	if value == nil && len(attrs) == 0 {
		p.errAt(diag.SynMissingValue, id.Span(), "expected message value or attributes")
		return nil, false
	}
	return &ast.Message{
		Base:       ast.Base{Loc: p.cur.SpanFrom(start)},
		ID:         id,
		Value:      value,
		Attributes: attrs,
	}, true
}

// parseTerm reads `-id = pattern`; the value is mandatory.
func (p *Parser) parseTerm() (ast.Entry, bool) {
	start := p.cur.Mark()
	if !p.cur.Eat('-') {
		p.errAt(diag.SynExpectedTermID, p.here(), "expected '-' before term identifier")
		return nil, false
	}
	id, ok := p.scanIdentifier()
	if !ok {
		return nil, false
	}
	p.skipInline()
	if !p.cur.Eat('=') {
		p.errAt(diag.SynExpectedToken, p.here(), "expected '=' after term identifier")
		return nil, false
	}
	p.skipInline()

	value, ok := p.parsePattern()
	if !ok {
		return nil, false
	}
	attrs, ok := p.parseAttributes()
	if !ok {
		return nil, false
	}
	if value == nil {
		p.errAt(diag.SynMissingTermValue, id.Span(), "term must have a value")
		return nil, false
	}
	return &ast.Term{
		Base:       ast.Base{Loc: p.cur.SpanFrom(start)},
		ID:         id,
		Value:      value,
		Attributes: attrs,
	}, true
}

// parseAttributes reads zero or more `.attr = pattern` lines.
func (p *Parser) parseAttributes() ([]*ast.Attribute, bool) {
	var attrs []*ast.Attribute
	for {
		mark := p.cur.Mark()
		p.skipBlank()
		if p.cur.Peek() != '.' {
			p.cur.Reset(mark)
			return attrs, true
		}
		attrStart := p.cur.Mark()
		p.cur.Bump()
		id, ok := p.scanIdentifier()
		if !ok {
			p.errAt(diag.SynExpectedAttributeID, p.here(), "expected attribute identifier after '.'")
			return nil, false
		}
		p.skipInline()
		if !p.cur.Eat('=') {
			p.errAt(diag.SynExpectedToken, p.here(), "expected '=' after attribute identifier")
			return nil, false
		}
		p.skipInline()
		value, ok := p.parsePattern()
		if !ok {
			return nil, false
		}
		if value == nil {
			p.errAt(diag.SynMissingValue, id.Span(), "expected attribute value")
			return nil, false
		}
		attrs = append(attrs, &ast.Attribute{
			Base:  ast.Base{Loc: p.cur.SpanFrom(attrStart)},
			ID:    id,
			Value: value,
		})
	}
}

// skipBlank consumes spaces and newlines.
func (p *Parser) skipBlank() {
	for {
		ch := p.cur.Peek()
		if ch == ' ' || ch == '\n' {
			p.cur.Bump()
			continue
		}
		return
	}
}
