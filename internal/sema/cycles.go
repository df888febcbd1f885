package sema

import (
	"fmt"
	"strings"

	"lingo/internal/ast"
	"lingo/internal/diag"
)

// refKey identifies a node in the reference graph. Messages and terms
// live in separate namespaces, so the kind is part of the key.
type refKey struct {
	term bool
	id   string
}

func (k refKey) String() string {
	if k.term {
		return "-" + k.id
	}
	return k.id
}

// checkCycles detects circular message/term reference chains, including
// self-references and chains only completed via previously-known
// entries. The graph is over identifiers, walked with an explicit stack
// plus a set for O(1) membership; AST back-pointers are never used.
func (v *validator) checkCycles(res *ast.Resource) {
	edges := make(map[refKey][]refKey)
	spans := make(map[refKey]ast.Node)

	addEntry := func(key refKey, value *ast.Pattern, attrs []*ast.Attribute, node ast.Node) {
		if _, done := edges[key]; done {
			return
		}
		spans[key] = node
		refs := collectRefs(value, attrs, int(v.opts.MaxDepth))
		edges[key] = refs
	}

	// known first, then the resource: last write wins either way
	for id, m := range v.known.Messages {
		addEntry(refKey{id: id}, m.Value, m.Attributes, m.ID)
	}
	for id, t := range v.known.Terms {
		addEntry(refKey{term: true, id: id}, t.Value, t.Attributes, t.ID)
	}
	for _, entry := range res.Body {
		switch e := entry.(type) {
		case *ast.Message:
			delete(edges, refKey{id: e.ID.Name})
			addEntry(refKey{id: e.ID.Name}, e.Value, e.Attributes, e.ID)
		case *ast.Term:
			delete(edges, refKey{term: true, id: e.ID.Name})
			addEntry(refKey{term: true, id: e.ID.Name}, e.Value, e.Attributes, e.ID)
		}
	}

	state := make(map[refKey]uint8) // 0 unvisited, 1 on stack, 2 done
	var stack []refKey
	reported := make(map[refKey]bool)

	var visit func(key refKey)
	visit = func(key refKey) {
		switch state[key] {
		case 1:
			v.reportCycle(stack, key, spans, reported)
			return
		case 2:
			return
		}
		if _, defined := edges[key]; !defined {
			return // undefined refs are reported elsewhere
		}
		state[key] = 1
		stack = append(stack, key)
		for _, next := range edges[key] {
			visit(next)
		}
		stack = stack[:len(stack)-1]
		state[key] = 2
	}

	for _, entry := range res.Body {
		switch e := entry.(type) {
		case *ast.Message:
			visit(refKey{id: e.ID.Name})
		case *ast.Term:
			visit(refKey{term: true, id: e.ID.Name})
		}
	}
}

// reportCycle emits one diagnostic carrying the full reference path.
func (v *validator) reportCycle(stack []refKey, repeat refKey, spans map[refKey]ast.Node, reported map[refKey]bool) {
	start := 0
	for i, k := range stack {
		if k == repeat {
			start = i
			break
		}
	}
	cycle := stack[start:]
	if len(cycle) == 0 {
		return
	}
	if reported[cycle[0]] {
		return
	}
	for _, k := range cycle {
		reported[k] = true
	}

	parts := make([]string, 0, len(cycle)+1)
	for _, k := range cycle {
		parts = append(parts, k.String())
	}
	parts = append(parts, repeat.String())
	node := spans[cycle[0]]
	v.report(diag.SemCyclicReference, diag.SevError, node,
		fmt.Sprintf("cyclic reference: %s", strings.Join(parts, " -> ")))
}

// collectRefs gathers the message/term references of one entry (value
// plus attributes), bounded by the validator's depth guard.
func collectRefs(value *ast.Pattern, attrs []*ast.Attribute, maxDepth int) []refKey {
	var refs []refKey
	seen := make(map[refKey]bool)
	walk := func(pat *ast.Pattern) {
		if pat == nil {
			return
		}
		_ = ast.WalkDepth(refCollector{seen: seen, refs: &refs}, pat, maxDepth)
	}
	walk(value)
	for _, attr := range attrs {
		walk(attr.Value)
	}
	return refs
}

type refCollector struct {
	seen map[refKey]bool
	refs *[]refKey
}

func (c refCollector) Visit(n ast.Node) ast.Visitor {
	switch e := n.(type) {
	case *ast.MessageReference:
		key := refKey{id: e.ID.Name}
		if !c.seen[key] {
			c.seen[key] = true
			*c.refs = append(*c.refs, key)
		}
	case *ast.TermReference:
		key := refKey{term: true, id: e.ID.Name}
		if !c.seen[key] {
			c.seen[key] = true
			*c.refs = append(*c.refs, key)
		}
	}
	return c
}
