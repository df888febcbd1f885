// Package testkit holds invariant checkers shared by tests.
package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"lingo/internal/ast"
	"lingo/internal/source"
)

// CheckSpanInvariants runs a minimal set of span invariants on a parsed
// resource:
// 1) every entry span is non-empty and within file content bounds
// 2) every nested node's span is contained in its entry's span
// 3) entries appear in source order
func CheckSpanInvariants(res *ast.Resource, sf *source.File) error {
	if res == nil || sf == nil {
		return fmt.Errorf("nil resource or file")
	}
	lenContent, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}

	var prevStart uint32
	for i, entry := range res.Body {
		sp := entry.Span()
		if sp.End <= sp.Start {
			return fmt.Errorf("entry %d: empty span %v", i, sp)
		}
		if sp.File != sf.ID {
			return fmt.Errorf("entry %d: span file mismatch: got=%d want=%d", i, sp.File, sf.ID)
		}
		if sp.End > lenContent {
			return fmt.Errorf("entry %d: span end beyond content: %d > %d", i, sp.End, lenContent)
		}
		if i > 0 && sp.Start < prevStart {
			return fmt.Errorf("entry %d: out of source order: %d < %d", i, sp.Start, prevStart)
		}
		prevStart = sp.Start

		var nested error
		ast.Inspect(entry, func(n ast.Node) bool {
			if nested != nil {
				return false
			}
			ns := n.Span()
			if ns.Empty() {
				return true // synthetic nodes may carry no span
			}
			if ns.Start < sp.Start || ns.End > sp.End {
				nested = fmt.Errorf("entry %d: node %T span %v escapes entry span %v", i, n, ns, sp)
				return false
			}
			return true
		})
		if nested != nil {
			return nested
		}
	}
	return nil
}
