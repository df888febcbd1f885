package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"lingo/internal/diag"
	"lingo/internal/source"
)

var (
	errColor  = color.New(color.FgRed, color.Bold)
	warnColor = color.New(color.FgYellow, color.Bold)
	infoColor = color.New(color.FgCyan, color.Bold)
	posColor  = color.New(color.Bold)
)

// Pretty renders every diagnostic in the bag. Expects bag.Sort() to
// have run. For each diagnostic it prints
//
//	<path>:<line>:<col>: <severity> <CODE>: <message>
//
// followed by the source line with a caret underline over the span,
// then the notes in the same shape.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	for _, d := range bag.Items() {
		writePretty(w, &d, fs, opts)
	}
}

func writePretty(w io.Writer, d *diag.Diagnostic, fs *source.FileSet, opts PrettyOpts) {
	start, _ := fs.Resolve(d.Primary)
	file := fs.Get(d.Primary.File)

	sev := d.Severity.String()
	code := d.Code.ID()
	if opts.Color {
		sev = severityColor(d.Severity).Sprint(sev)
		code = severityColor(d.Severity).Sprint(code)
	}
	pos := fmt.Sprintf("%s:%d:%d", file.Path, start.Line, start.Col)
	if opts.Color {
		pos = posColor.Sprint(pos)
	}
	fmt.Fprintf(w, "%s: %s %s: %s\n", pos, sev, code, d.Message)

	if opts.Context {
		writeContext(w, file, d.Primary, start, opts)
	}
	if opts.ShowNotes {
		for _, note := range d.Notes {
			nStart, _ := fs.Resolve(note.Span)
			nFile := fs.Get(note.Span.File)
			fmt.Fprintf(w, "  %s:%d:%d: note: %s\n", nFile.Path, nStart.Line, nStart.Col, note.Msg)
		}
	}
}

// writeContext prints the offending line and a caret underline. The
// underline is aligned by display width, so wide runes and tabs in the
// prefix do not skew it.
func writeContext(w io.Writer, file *source.File, span source.Span, start source.LineCol, opts PrettyOpts) {
	line := file.GetLine(start.Line)
	if line == "" {
		return
	}
	fmt.Fprintf(w, "  %s\n", line)

	col := int(start.Col) - 1
	if col < 0 || col > len(line) {
		return
	}
	pad := runewidth.StringWidth(line[:col])

	length := int(span.Len())
	if rest := len(line) - col; length > rest {
		length = rest
	}
	under := "^"
	if length > 1 {
		width := runewidth.StringWidth(line[col : col+length])
		if width > 1 {
			under += strings.Repeat("~", width-1)
		}
	}
	if opts.Color {
		under = errColor.Sprint(under)
	}
	fmt.Fprintf(w, "  %s%s\n", strings.Repeat(" ", pad), under)
}

func severityColor(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return errColor
	case diag.SevWarning:
		return warnColor
	default:
		return infoColor
	}
}
