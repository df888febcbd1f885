package parser

import (
	"fmt"

	"lingo/internal/ast"
	"lingo/internal/diag"
	"lingo/internal/source"
)

func isIdentStart(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentCont(ch byte) bool {
	return isIdentStart(ch) || (ch >= '0' && ch <= '9') || ch == '-' || ch == '_'
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

// skipInline consumes spaces on the current line.
func (p *Parser) skipInline() {
	for p.cur.Peek() == ' ' {
		p.cur.Bump()
	}
}

// skipToLineEnd consumes everything up to (not including) the newline.
func (p *Parser) skipToLineEnd() {
	for !p.cur.EOF() && p.cur.Peek() != '\n' {
		p.cur.Bump()
	}
}

// skipBlankBlock consumes whole blank lines between entries. Leading
// spaces of a content line are left in place.
func (p *Parser) skipBlankBlock() {
	for {
		mark := p.cur.Mark()
		p.skipInline()
		if p.cur.Eat('\n') {
			continue
		}
		if p.cur.EOF() {
			return
		}
		p.cur.Reset(mark)
		return
	}
}

// scanIdentifier reads [a-zA-Z][a-zA-Z0-9_-]* with the length cap.
func (p *Parser) scanIdentifier() (*ast.Identifier, bool) {
	start := p.cur.Mark()
	if !isIdentStart(p.cur.Peek()) {
		p.errAt(diag.SynExpectedToken, p.here(), "expected identifier")
		return nil, false
	}
	p.cur.Bump()
	for isIdentCont(p.cur.Peek()) {
		if uint(p.cur.Off-uint32(start)) >= p.opts.MaxIdentLen {
			p.errAt(diag.SynTokenTooLong, p.cur.SpanFrom(start),
				fmt.Sprintf("identifier exceeds %d bytes", p.opts.MaxIdentLen))
			return nil, false
		}
		p.cur.Bump()
	}
	return &ast.Identifier{
		Base: ast.Base{Loc: p.cur.SpanFrom(start)},
		Name: string(p.cur.Slice(start)),
	}, true
}

// scanNumber reads -?[0-9]+(.[0-9]+)? with the length cap.
func (p *Parser) scanNumber() (*ast.NumberLiteral, bool) {
	start := p.cur.Mark()
	p.cur.Eat('-')
	if !isDigit(p.cur.Peek()) {
		p.errAt(diag.SynBadNumber, p.here(), "expected digit")
		return nil, false
	}
	for isDigit(p.cur.Peek()) {
		if !p.numberLenOK(start) {
			return nil, false
		}
		p.cur.Bump()
	}
	if p.cur.Peek() == '.' && isDigit(p.cur.PeekAt(1)) {
		p.cur.Bump()
		for isDigit(p.cur.Peek()) {
			if !p.numberLenOK(start) {
				return nil, false
			}
			p.cur.Bump()
		}
	}
	return &ast.NumberLiteral{
		Base:  ast.Base{Loc: p.cur.SpanFrom(start)},
		Value: string(p.cur.Slice(start)),
	}, true
}

func (p *Parser) numberLenOK(start source.Mark) bool {
	if uint(p.cur.Off-uint32(start)) >= p.opts.MaxNumberLen {
		p.errAt(diag.SynTokenTooLong, p.cur.SpanFrom(start),
			fmt.Sprintf("number exceeds %d bytes", p.opts.MaxNumberLen))
		return false
	}
	return true
}

// scanString reads a quoted string literal with \\ \" \uXXXX \UXXXXXX
// escapes and the length cap.
func (p *Parser) scanString() (*ast.StringLiteral, bool) {
	start := p.cur.Mark()
	if !p.cur.Eat('"') {
		p.errAt(diag.SynExpectedToken, p.here(), "expected '\"'")
		return nil, false
	}
	var out []byte
	for {
		if uint(len(out)) > p.opts.MaxStringLen {
			p.errAt(diag.SynTokenTooLong, p.cur.SpanFrom(start),
				fmt.Sprintf("string literal exceeds %d bytes", p.opts.MaxStringLen))
			return nil, false
		}
		ch := p.cur.Peek()
		switch {
		case p.cur.EOF() || ch == '\n':
			p.errAt(diag.SynUnterminatedString, p.cur.SpanFrom(start), "unterminated string literal")
			return nil, false
		case ch == '"':
			p.cur.Bump()
			return &ast.StringLiteral{
				Base:  ast.Base{Loc: p.cur.SpanFrom(start)},
				Value: string(out),
			}, true
		case ch == '\\':
			p.cur.Bump()
			decoded, ok := p.scanEscape(start)
			if !ok {
				return nil, false
			}
			out = append(out, decoded...)
		default:
			out = append(out, p.cur.Bump())
		}
	}
}

func (p *Parser) scanEscape(strStart source.Mark) ([]byte, bool) {
	switch ch := p.cur.Bump(); ch {
	case '\\':
		return []byte{'\\'}, true
	case '"':
		return []byte{'"'}, true
	case 'u':
		return p.scanUnicodeEscape(strStart, 4)
	case 'U':
		return p.scanUnicodeEscape(strStart, 6)
	default:
		p.errAt(diag.SynInvalidEscape, p.here(), fmt.Sprintf("unknown escape sequence \\%c", ch))
		return nil, false
	}
}

func (p *Parser) scanUnicodeEscape(strStart source.Mark, digits int) ([]byte, bool) {
	var r rune
	for i := 0; i < digits; i++ {
		ch := p.cur.Peek()
		var v rune
		switch {
		case ch >= '0' && ch <= '9':
			v = rune(ch - '0')
		case ch >= 'a' && ch <= 'f':
			v = rune(ch-'a') + 10
		case ch >= 'A' && ch <= 'F':
			v = rune(ch-'A') + 10
		default:
			p.errAt(diag.SynInvalidEscape, p.cur.SpanFrom(strStart), "invalid unicode escape sequence")
			return nil, false
		}
		p.cur.Bump()
		r = r<<4 | v
	}
	if r > 0x10FFFF || (r >= 0xD800 && r <= 0xDFFF) {
		// Out-of-range escapes become U+FFFD, same as upstream Fluent.
		r = 0xFFFD
	}
	return []byte(string(r)), true
}
