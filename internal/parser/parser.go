package parser

import (
	"lingo/internal/ast"
	"lingo/internal/diag"
	"lingo/internal/source"
)

// Options configures one parse. Zero values fall back to the defaults
// below, except MaxParseErrors where 0 disables the cap.
type Options struct {
	// MaxNestingDepth bounds every recursive construct: placeables,
	// call arguments, and select-variant values all count against it.
	MaxNestingDepth uint
	// MaxParseErrors aborts the parse after this many Junk entries;
	// 0 disables the cap. Bundle and the CLI apply
	// DefaultMaxParseErrors when the caller leaves this unset.
	MaxParseErrors uint
	// Token length caps, independent of nesting depth.
	MaxIdentLen  uint
	MaxNumberLen uint
	MaxStringLen uint

	Reporter diag.Reporter
}

const (
	DefaultMaxNestingDepth = 100
	// DefaultMaxParseErrors is the error cap applied by Bundle and the
	// CLI; Parse itself treats 0 as no cap.
	DefaultMaxParseErrors = 100
	DefaultMaxIdentLen    = 256
	DefaultMaxNumberLen   = 128
	DefaultMaxStringLen   = 4096
)

func (o *Options) fill() {
	if o.MaxNestingDepth == 0 {
		o.MaxNestingDepth = DefaultMaxNestingDepth
	}
	if o.MaxIdentLen == 0 {
		o.MaxIdentLen = DefaultMaxIdentLen
	}
	if o.MaxNumberLen == 0 {
		o.MaxNumberLen = DefaultMaxNumberLen
	}
	if o.MaxStringLen == 0 {
		o.MaxStringLen = DefaultMaxStringLen
	}
	if o.Reporter == nil {
		o.Reporter = diag.NopReporter{}
	}
}

// Result is one parsed file plus its diagnostics.
type Result struct {
	Resource *ast.Resource
	Bag      *diag.Bag
}

// Parser holds the state for parsing one file.
type Parser struct {
	cur   source.Cursor
	opts  Options
	depth uint // current nesting depth
	junks uint // Junk entries produced so far

	// entryErr holds the diagnostic that aborted the current entry;
	// set by errAt, consumed by the Junk recovery path.
	entryErr    diag.Diagnostic
	hasEntryErr bool
}

// Parse parses one FTL file. It never fails: malformed input becomes
// Junk entries and every diagnostic lands in the returned Bag. File
// content must already be line-ending normalized (source.FileSet does
// this on load).
func Parse(file *source.File, opts Options) Result {
	opts.fill()
	bagCap := int(opts.MaxParseErrors)
	if bagCap < 256 {
		bagCap = 256
	}
	bag := diag.NewBag(bagCap + 16)
	reporter := fanOut{a: diag.BagReporter{Bag: bag}, b: opts.Reporter}
	p := Parser{
		cur:  source.NewCursor(file),
		opts: opts,
	}
	p.opts.Reporter = reporter

	res := p.parseResource()
	return Result{Resource: res, Bag: bag}
}

// fanOut duplicates reports into the parse Bag and the caller's reporter.
type fanOut struct {
	a, b diag.Reporter
}

func (f fanOut) Report(code diag.Code, sev diag.Severity, primary source.Span, msg string, notes []diag.Note) {
	f.a.Report(code, sev, primary, msg, notes)
	f.b.Report(code, sev, primary, msg, notes)
}

func (p *Parser) parseResource() *ast.Resource {
	start := p.cur.Mark()
	res := &ast.Resource{}

	var lastComment *ast.Comment
	lastCommentEnd := uint32(0)

	for !p.cur.EOF() {
		if p.errLimitReached() {
			break
		}
		p.skipBlankBlock()
		if p.cur.EOF() {
			break
		}

		entryStart := p.cur.Mark()
		p.depth = 0
		p.hasEntryErr = false
		entry, ok := p.parseEntry()
		if !ok {
			junk := p.recoverJunk(entryStart)
			if lastComment != nil {
				// the comment stays a standalone entry; it must not
				// vanish just because what followed it was malformed
				res.Body = append(res.Body, lastComment)
				lastComment = nil
			}
			res.Body = append(res.Body, junk)
			p.junks++
			continue
		}
		if entry == nil {
			continue
		}

		// Attach an immediately preceding single-# comment to a
		// Message/Term; a blank line in between breaks attachment.
		switch e := entry.(type) {
		case *ast.Comment:
			if lastComment != nil {
				res.Body = append(res.Body, lastComment)
			}
			lastComment = e
			lastCommentEnd = e.Span().End
			continue
		case *ast.Message:
			if lastComment != nil && adjacent(lastCommentEnd, entry.Span().Start, p.cur.File) {
				e.Comment = lastComment
			} else if lastComment != nil {
				res.Body = append(res.Body, lastComment)
			}
			lastComment = nil
		case *ast.Term:
			if lastComment != nil && adjacent(lastCommentEnd, entry.Span().Start, p.cur.File) {
				e.Comment = lastComment
			} else if lastComment != nil {
				res.Body = append(res.Body, lastComment)
			}
			lastComment = nil
		default:
			if lastComment != nil {
				res.Body = append(res.Body, lastComment)
				lastComment = nil
			}
		}
		res.Body = append(res.Body, entry)
	}
	if lastComment != nil {
		res.Body = append(res.Body, lastComment)
	}

	res.Loc = p.cur.SpanFrom(start)
	return res
}

// adjacent reports whether only a single newline separates the comment
// end from the entry start.
func adjacent(commentEnd, entryStart uint32, f *source.File) bool {
	if entryStart < commentEnd {
		return false
	}
	between := f.Content[commentEnd:entryStart]
	newlines := 0
	for _, b := range between {
		switch b {
		case '\n':
			newlines++
		case ' ':
		default:
			return false
		}
	}
	return newlines <= 1
}

// parseEntry dispatches on the first byte of a line: '#' is a comment,
// '-' is a term, an ASCII letter is a message. Anything else errors and
// becomes Junk via the caller.
func (p *Parser) parseEntry() (ast.Entry, bool) {
	switch ch := p.cur.Peek(); {
	case ch == '#':
		return p.parseComment()
	case ch == '-':
		return p.parseTerm()
	case isIdentStart(ch):
		return p.parseMessage()
	default:
		p.errAt(diag.SynExpectedEntry, p.here(), "expected message, term, or comment")
		return nil, false
	}
}

// errLimitReached reports whether the Junk cap has been hit. Reaching
// the cap is a hard stop: the rest of the input is not scanned.
func (p *Parser) errLimitReached() bool {
	if p.opts.MaxParseErrors == 0 {
		return false
	}
	if p.junks < p.opts.MaxParseErrors {
		return false
	}
	if !p.cur.EOF() {
		p.report(diag.SynErrorLimitReached, diag.SevWarning, p.here(),
			"parse error limit reached, rest of input skipped")
		p.cur.Off = uint32(len(p.cur.File.Content))
	}
	return true
}

// recoverJunk consumes input from the failed entry start up to the next
// line that could begin an entry, merging all consecutive
// non-conforming lines into a single Junk entry.
func (p *Parser) recoverJunk(entryStart source.Mark) *ast.Junk {
	d := p.takeEntryErr()

	p.skipToLineEnd()
	p.cur.Eat('\n')
	for !p.cur.EOF() {
		ch := p.cur.Peek()
		if ch == '#' || ch == '-' || isIdentStart(ch) || ch == '\n' {
			break
		}
		p.skipToLineEnd()
		p.cur.Eat('\n')
	}

	span := p.cur.SpanFrom(entryStart)
	return &ast.Junk{
		Base:        ast.Base{Loc: span},
		Content:     string(p.cur.File.Content[span.Start:span.End]),
		Annotations: []diag.Diagnostic{d},
	}
}

func (p *Parser) takeEntryErr() diag.Diagnostic {
	if p.hasEntryErr {
		p.hasEntryErr = false
		return p.entryErr
	}
	return diag.Diagnostic{
		Severity: diag.SevError,
		Code:     diag.UnknownCode,
		Message:  "malformed entry",
		Primary:  p.here(),
	}
}

// errAt records the entry-aborting diagnostic and reports it.
func (p *Parser) errAt(code diag.Code, span source.Span, msg string) {
	d := diag.Diagnostic{
		Severity: diag.SevError,
		Code:     code,
		Message:  msg,
		Primary:  span,
	}
	if !p.hasEntryErr {
		p.entryErr = d
		p.hasEntryErr = true
	}
	p.report(code, diag.SevError, span, msg)
}

func (p *Parser) report(code diag.Code, sev diag.Severity, span source.Span, msg string) {
	p.opts.Reporter.Report(code, sev, span, msg, nil)
}

// enterNested bumps the nesting depth; every recursive construct goes
// through here so no path can bypass the limit.
func (p *Parser) enterNested() bool {
	p.depth++
	if p.depth > p.opts.MaxNestingDepth {
		p.errAt(diag.SynDepthExceeded, p.here(), "maximum nesting depth exceeded")
		return false
	}
	return true
}

func (p *Parser) leaveNested() {
	p.depth--
}

// here is a one-byte span at the current position.
func (p *Parser) here() source.Span {
	end := p.cur.Off + 1
	if end > uint32(len(p.cur.File.Content)) {
		end = uint32(len(p.cur.File.Content))
	}
	return source.Span{File: p.cur.File.ID, Start: p.cur.Off, End: end}
}
