package parser

import (
	"strings"

	"lingo/internal/ast"
	"lingo/internal/diag"
)

// parseComment reads one comment block. Consecutive comment lines of
// the same level merge into a single node with newline-joined content.
func (p *Parser) parseComment() (ast.Entry, bool) {
	start := p.cur.Mark()
	level := 0
	for level < 3 && p.cur.Peek() == '#' {
		p.cur.Bump()
		level++
	}

	var lines []string
	line, ok := p.commentLineContent()
	if !ok {
		return nil, false
	}
	lines = append(lines, line)

	for {
		mark := p.cur.Mark()
		if !p.cur.Eat('\n') {
			break
		}
		got := 0
		for got < 3 && p.cur.Peek() == '#' {
			p.cur.Bump()
			got++
		}
		if got != level || p.cur.Peek() == '#' {
			p.cur.Reset(mark)
			break
		}
		if ch := p.cur.Peek(); !p.cur.EOF() && ch != '\n' && ch != ' ' {
			// malformed continuation line; a separate entry will junk it
			p.cur.Reset(mark)
			break
		}
		line, ok = p.commentLineContent()
		if !ok {
			p.cur.Reset(mark)
			break
		}
		lines = append(lines, line)
	}

	span := p.cur.SpanFrom(start)
	content := strings.Join(lines, "\n")
	switch level {
	case 1:
		return &ast.Comment{Base: ast.Base{Loc: span}, Content: content}, true
	case 2:
		return &ast.GroupComment{Base: ast.Base{Loc: span}, Content: content}, true
	default:
		return &ast.ResourceComment{Base: ast.Base{Loc: span}, Content: content}, true
	}
}

// commentLineContent reads the rest of a comment line. The hash run
// must be followed by a space or the line end; "#abc" is malformed.
func (p *Parser) commentLineContent() (string, bool) {
	if p.cur.Peek() == '#' {
		// more than three hashes
		p.errAt(diag.SynExpectedToken, p.here(), "too many '#' in comment")
		return "", false
	}
	if p.cur.EOF() || p.cur.Peek() == '\n' {
		return "", true
	}
	if !p.cur.Eat(' ') {
		p.errAt(diag.SynExpectedToken, p.here(), "expected ' ' after '#' in comment")
		return "", false
	}
	start := p.cur.Mark()
	p.skipToLineEnd()
	return string(p.cur.Slice(start)), true
}
