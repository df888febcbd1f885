// Package diagfmt renders diagnostics for the CLI: a human-readable
// pretty form with source context and carets, and a machine-readable
// JSON form.
package diagfmt

// PrettyOpts configures pretty-printing of diagnostics.
type PrettyOpts struct {
	Color     bool
	ShowNotes bool
	// Context prints the offending source line under the header.
	Context bool
}

// JSONOpts configures JSON output of diagnostics.
type JSONOpts struct {
	// IncludePositions adds line/col to every location.
	IncludePositions bool
	IncludeNotes     bool
	// Max truncates the output, not the Bag. 0 keeps everything.
	Max int
}
