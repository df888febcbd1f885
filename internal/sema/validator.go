// Package sema performs static validation of parsed resources:
// duplicate identifiers, valueless entries, undefined and cyclic
// references, and malformed calls. Validation is pure and never fails;
// findings land in the result Bag as errors and warnings.
package sema

import (
	"fmt"

	"lingo/internal/ast"
	"lingo/internal/diag"
)

// Options configures one validation run.
type Options struct {
	// MaxDepth bounds recursive pattern walks, independently of the
	// parser's and resolver's limits.
	MaxDepth uint
	Reporter diag.Reporter
}

const DefaultMaxDepth = 100

// Known is the entry universe a resource is validated against: the
// messages and terms a bundle already holds. Cross-resource cycles are
// only visible with it; validating a resource in isolation misses
// chains completed by previously-added entries.
type Known struct {
	Messages map[string]*ast.Message
	Terms    map[string]*ast.Term
}

// Result carries the validation findings.
type Result struct {
	Bag *diag.Bag
}

// Errors reports whether any finding is an error.
func (r Result) Errors() bool { return r.Bag.HasErrors() }

// Validate checks a resource in isolation.
func Validate(res *ast.Resource, opts Options) Result {
	return ValidateAgainst(res, Known{}, opts)
}

// ValidateAgainst checks a resource incrementally against entries a
// bundle already holds.
func ValidateAgainst(res *ast.Resource, known Known, opts Options) Result {
	if opts.MaxDepth == 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if opts.Reporter == nil {
		opts.Reporter = diag.NopReporter{}
	}
	bag := diag.NewBag(1024)
	v := &validator{
		opts:  opts,
		bag:   bag,
		known: known,
	}
	v.run(res)
	bag.Sort()
	return Result{Bag: bag}
}

type validator struct {
	opts  Options
	bag   *diag.Bag
	known Known

	// definitions visible to references: known plus this resource
	messages map[string]*ast.Message
	terms    map[string]*ast.Term
}

func (v *validator) report(code diag.Code, sev diag.Severity, n ast.Node, msg string) {
	sp := n.Span()
	v.bag.Add(diag.Diagnostic{Severity: sev, Code: code, Message: msg, Primary: sp})
	v.opts.Reporter.Report(code, sev, sp, msg, nil)
}

func (v *validator) run(res *ast.Resource) {
	v.collect(res)
	for _, entry := range res.Body {
		switch e := entry.(type) {
		case *ast.Message:
			v.checkMessage(e)
		case *ast.Term:
			v.checkTerm(e)
		}
	}
	v.checkCycles(res)
}

// collect builds the visible definition maps and flags duplicates.
// Last write wins, matching bundle registration semantics.
func (v *validator) collect(res *ast.Resource) {
	v.messages = make(map[string]*ast.Message, len(v.known.Messages)+len(res.Body))
	v.terms = make(map[string]*ast.Term, len(v.known.Terms))
	for id, m := range v.known.Messages {
		v.messages[id] = m
	}
	for id, t := range v.known.Terms {
		v.terms[id] = t
	}
	for _, entry := range res.Body {
		switch e := entry.(type) {
		case *ast.Message:
			if _, dup := v.messages[e.ID.Name]; dup {
				v.report(diag.SemDuplicateMessage, diag.SevWarning, e.ID,
					fmt.Sprintf("message %q is defined more than once", e.ID.Name))
			}
			v.messages[e.ID.Name] = e
		case *ast.Term:
			if _, dup := v.terms[e.ID.Name]; dup {
				v.report(diag.SemDuplicateTerm, diag.SevWarning, e.ID,
					fmt.Sprintf("term %q is defined more than once", e.ID.Name))
			}
			v.terms[e.ID.Name] = e
		}
	}
}

func (v *validator) checkMessage(m *ast.Message) {
	if m.Value == nil && len(m.Attributes) == 0 {
		v.report(diag.SemMessageNoValue, diag.SevError, m.ID,
			fmt.Sprintf("message %q has neither value nor attributes", m.ID.Name))
	}
	v.checkPattern(m.Value)
	for _, attr := range m.Attributes {
		v.checkPattern(attr.Value)
	}
}

func (v *validator) checkTerm(t *ast.Term) {
	if t.Value == nil {
		v.report(diag.SemTermNoValue, diag.SevError, t.ID,
			fmt.Sprintf("term %q has no value", t.ID.Name))
	}
	v.checkPattern(t.Value)
	for _, attr := range t.Attributes {
		v.checkPattern(attr.Value)
	}
}

// checkPattern walks one pattern with the validator's own depth guard
// and checks every expression it contains.
func (v *validator) checkPattern(pat *ast.Pattern) {
	if pat == nil {
		return
	}
	err := ast.WalkDepth(exprChecker{v}, pat, int(v.opts.MaxDepth))
	if err != nil {
		v.report(diag.SemValidationDepthLimit, diag.SevWarning, pat,
			"pattern too deeply nested to validate fully")
	}
}

type exprChecker struct{ v *validator }

func (c exprChecker) Visit(n ast.Node) ast.Visitor {
	switch e := n.(type) {
	case *ast.MessageReference:
		if _, ok := c.v.messages[e.ID.Name]; !ok {
			c.v.report(diag.SemUndefinedMessageRef, diag.SevWarning, e,
				fmt.Sprintf("unknown message %q", e.ID.Name))
		}
	case *ast.TermReference:
		if _, ok := c.v.terms[e.ID.Name]; !ok {
			c.v.report(diag.SemUndefinedTermRef, diag.SevWarning, e,
				fmt.Sprintf("unknown term -%s", e.ID.Name))
		}
		if e.Arguments != nil && len(e.Arguments.Positional) > 0 {
			c.v.report(diag.SemTermPositionalArgs, diag.SevInfo, e.Arguments,
				fmt.Sprintf("positional arguments to term -%s are ignored", e.ID.Name))
		}
	case *ast.CallArguments:
		seen := make(map[string]bool, len(e.Named))
		for _, na := range e.Named {
			if seen[na.Name.Name] {
				c.v.report(diag.SemDuplicateNamedArg, diag.SevError, na,
					fmt.Sprintf("named argument %q appears more than once", na.Name.Name))
			}
			seen[na.Name.Name] = true
		}
	case *ast.SelectExpression:
		c.checkSelect(e)
	}
	return c
}

func (c exprChecker) checkSelect(sel *ast.SelectExpression) {
	if len(sel.Variants) == 0 {
		c.v.report(diag.SemEmptyVariantList, diag.SevError, sel,
			"select expression has no variants")
		return
	}
	defaults := 0
	for _, variant := range sel.Variants {
		if variant.Default {
			defaults++
		}
	}
	switch {
	case defaults == 0:
		c.v.report(diag.SemMissingDefaultVar, diag.SevError, sel,
			"select expression has no default variant")
	case defaults > 1:
		c.v.report(diag.SemMultipleDefaultVars, diag.SevError, sel,
			"select expression has multiple default variants")
	}
}
