package parser

import (
	"strings"

	"lingo/internal/ast"
	"lingo/internal/diag"
	"lingo/internal/source"
)

// piece is an intermediate pattern element: either a finished element
// or an indent marker standing in for a line break plus the indent of
// the following continuation line. Markers become text once the common
// indent of the whole pattern is known.
type piece struct {
	el     ast.PatternElement
	marker bool
	breaks int    // newlines preceding the continuation line (blank lines included)
	indent uint32 // indent width of the continuation line
	span   source.Span
}

// parsePattern reads an inline pattern and its indented continuation
// lines. Returns (nil, true) for an empty pattern. The cursor is left
// at the newline terminating the pattern (or EOF).
func (p *Parser) parsePattern() (*ast.Pattern, bool) {
	return p.parsePatternMode(false)
}

// parsePatternMode optionally parses in variant mode, where an inline
// '*[' or '}' also terminates the pattern (select-expression variants
// may share a line with their siblings and the closing brace). A plain
// '[' mid-line stays text, so bracketed prose like "price [USD]" does
// not open a new variant key; '[' keys are recognized at line starts
// by scanContinuation.
func (p *Parser) parsePatternMode(inVariant bool) (*ast.Pattern, bool) {
	var pieces []piece
	textStart := p.cur.Mark()

	flushText := func() {
		if p.cur.Off == uint32(textStart) {
			return
		}
		sp := p.cur.SpanFrom(textStart)
		pieces = append(pieces, piece{el: &ast.TextElement{
			Base:  ast.Base{Loc: sp},
			Value: string(p.cur.File.Content[sp.Start:sp.End]),
		}})
	}

loop:
	for {
		switch ch := p.cur.Peek(); {
		case p.cur.EOF():
			flushText()
			break loop

		case ch == '{':
			flushText()
			pl, ok := p.parsePlaceable()
			if !ok {
				return nil, false
			}
			pieces = append(pieces, piece{el: pl})
			textStart = p.cur.Mark()

		case ch == '}':
			if inVariant {
				flushText()
				break loop
			}
			p.errAt(diag.SynUnclosedPlaceable, p.here(), "unbalanced '}' in pattern")
			return nil, false

		case inVariant && ch == '*' && p.cur.PeekAt(1) == '[':
			flushText()
			break loop

		case ch == '\n':
			flushText()
			nlMark := p.cur.Mark()
			mk, ok := p.scanContinuation()
			if !ok {
				p.cur.Reset(nlMark)
				break loop
			}
			pieces = append(pieces, mk)
			textStart = p.cur.Mark()

		default:
			p.cur.Bump()
		}
	}

	return p.assemblePattern(pieces), true
}

// scanContinuation looks past the newline at the cursor for an indented
// continuation line. Blank lines before the first content line are
// skipped first; a line starting (after its indent) with '.', '[', '*',
// or '}', a non-indented line, and EOF all terminate the pattern.
func (p *Parser) scanContinuation() (piece, bool) {
	breaks := 0
	for {
		if !p.cur.Eat('\n') {
			// whitespace-only tail before EOF
			return piece{}, false
		}
		breaks++

		lineStart := p.cur.Mark()
		p.skipInline()
		ch := p.cur.Peek()
		if ch == '\n' {
			continue // blank line, keep scanning
		}
		if p.cur.EOF() {
			return piece{}, false
		}
		indent := p.cur.Off - uint32(lineStart)
		if indent == 0 {
			return piece{}, false
		}
		if ch == '.' || ch == '[' || ch == '*' || ch == '}' {
			return piece{}, false
		}
		return piece{
			marker: true,
			breaks: breaks,
			indent: indent,
			span:   p.cur.SpanFrom(lineStart),
		}, true
	}
}

// assemblePattern applies the indent algorithm: trailing blank trimmed,
// common indent measured over content lines only (blank lines preceding
// the first content line were skipped during scanning), leading line
// break dropped, adjacent text runs merged.
func (p *Parser) assemblePattern(pieces []piece) *ast.Pattern {
	// trailing trim: markers at the end, then trailing spaces of the
	// final text run
	for len(pieces) > 0 && pieces[len(pieces)-1].marker {
		pieces = pieces[:len(pieces)-1]
	}
	if n := len(pieces); n > 0 && !pieces[n-1].marker {
		if txt, ok := pieces[n-1].el.(*ast.TextElement); ok {
			trimmed := strings.TrimRight(txt.Value, " \n")
			if trimmed == "" {
				pieces = pieces[:n-1]
			} else if trimmed != txt.Value {
				cut := uint32(len(txt.Value) - len(trimmed))
				pieces[n-1].el = &ast.TextElement{
					Base:  ast.Base{Loc: source.Span{File: txt.Loc.File, Start: txt.Loc.Start, End: txt.Loc.End - cut}},
					Value: trimmed,
				}
			}
		}
	}
	if len(pieces) == 0 {
		return nil
	}

	common := uint32(0)
	seen := false
	for _, pc := range pieces {
		if pc.marker && (!seen || pc.indent < common) {
			common = pc.indent
			seen = true
		}
	}

	pat := &ast.Pattern{}
	var buf strings.Builder
	var bufSpan source.Span
	bufActive := false

	appendText := func(s string, sp source.Span) {
		if s == "" {
			return
		}
		if !bufActive {
			bufSpan = sp
			bufActive = true
		} else {
			bufSpan = bufSpan.Cover(sp)
		}
		buf.WriteString(s)
	}
	flush := func() {
		if !bufActive {
			return
		}
		pat.Elements = append(pat.Elements, &ast.TextElement{
			Base:  ast.Base{Loc: bufSpan},
			Value: buf.String(),
		})
		buf.Reset()
		bufActive = false
	}

	for i, pc := range pieces {
		if pc.marker {
			text := ""
			if i > 0 {
				text = strings.Repeat("\n", pc.breaks)
			}
			text += strings.Repeat(" ", int(pc.indent-common))
			appendText(text, pc.span)
			continue
		}
		if txt, ok := pc.el.(*ast.TextElement); ok {
			appendText(txt.Value, txt.Loc)
			continue
		}
		flush()
		pat.Elements = append(pat.Elements, pc.el)
	}
	flush()

	if len(pat.Elements) == 0 {
		return nil
	}
	first := pat.Elements[0].Span()
	last := pat.Elements[len(pat.Elements)-1].Span()
	pat.Loc = first.Cover(last)
	return pat
}
