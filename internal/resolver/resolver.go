package resolver

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/language"

	"lingo/internal/ast"
	"lingo/internal/diag"
	"lingo/internal/syncx"
)

const (
	DefaultMaxDepth         = 100
	DefaultMaxCallDepth     = 64
	DefaultMaxOutputSize    = 64 << 10
	DefaultMaxFallbackDepth = 10

	// sentinel written when resolution is exhausted past recovery
	invalidSentinel = "{???}"

	fsi = "⁨"
	pdi = "⁩"
)

// errBudget aborts resolution from any depth once the output budget is
// spent. It is the only error internal methods propagate; everything
// else degrades to fallback text plus a recorded diagnostic.
var errBudget = errors.New("resolver: output budget exceeded")

// callDepth persists across separate top-level calls on the same
// goroutine. A registered function that re-enters the resolver cannot
// reset the per-call guard: the nested call sees the accumulated depth.
var callDepth syncx.DepthCounter

// Env supplies entry lookup, normally backed by a bundle's maps.
type Env interface {
	Message(id string) (*ast.Message, bool)
	Term(id string) (*ast.Term, bool)
}

// Options configures a Resolver. Zero fields take defaults.
type Options struct {
	// MaxDepth bounds expression nesting within one call: placeables,
	// select variants, and call arguments all count.
	MaxDepth uint
	// MaxCallDepth bounds re-entrant top-level calls per goroutine.
	MaxCallDepth uint
	// MaxOutputSize is the output budget in bytes across one whole
	// top-level call, counting captured intermediate output.
	MaxOutputSize uint
	// MaxFallbackDepth bounds nested fallback generation.
	MaxFallbackDepth uint
	UseIsolating     bool
	Locale           language.Tag
	Funcs            *Registry
}

type Resolver struct {
	opts Options
}

func New(opts Options) *Resolver {
	if opts.MaxDepth == 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if opts.MaxCallDepth == 0 {
		opts.MaxCallDepth = DefaultMaxCallDepth
	}
	if opts.MaxOutputSize == 0 {
		opts.MaxOutputSize = DefaultMaxOutputSize
	}
	if opts.MaxFallbackDepth == 0 {
		opts.MaxFallbackDepth = DefaultMaxFallbackDepth
	}
	if opts.Funcs == nil {
		opts.Funcs = NewRegistry()
	}
	return &Resolver{opts: opts}
}

// ResolveMessage formats a message value. It never fails for input
// errors: the result is best-effort text plus zero or more diagnostics.
func (r *Resolver) ResolveMessage(env Env, msg *ast.Message, args map[string]any) (string, []diag.Diagnostic) {
	if msg.Value == nil {
		return "{" + msg.ID.Name + "}", []diag.Diagnostic{{
			Severity: diag.SevError,
			Code:     diag.ResNoValue,
			Message:  fmt.Sprintf("message %q has no value", msg.ID.Name),
			Primary:  msg.Span(),
		}}
	}
	return r.resolveTop(env, msg.Value, msg.ID.Name, args)
}

// ResolveAttribute formats one attribute of a message.
func (r *Resolver) ResolveAttribute(env Env, msg *ast.Message, attribute string, args map[string]any) (string, []diag.Diagnostic) {
	key := msg.ID.Name + "." + attribute
	for _, attr := range msg.Attributes {
		if attr.ID.Name == attribute {
			return r.resolveTop(env, attr.Value, key, args)
		}
	}
	return "{" + key + "}", []diag.Diagnostic{{
		Severity: diag.SevError,
		Code:     diag.ResMissingAttribute,
		Message:  fmt.Sprintf("message %q has no attribute %q", msg.ID.Name, attribute),
		Primary:  msg.Span(),
	}}
}

func (r *Resolver) resolveTop(env Env, pat *ast.Pattern, key string, args map[string]any) (string, []diag.Diagnostic) {
	depth := callDepth.Enter()
	defer callDepth.Leave()
	if depth > r.opts.MaxCallDepth {
		return invalidSentinel, []diag.Diagnostic{{
			Severity: diag.SevError,
			Code:     diag.ResDepthExceeded,
			Message:  fmt.Sprintf("re-entrant call depth %d exceeds limit %d", depth, r.opts.MaxCallDepth),
			Primary:  pat.Span(),
		}}
	}

	vals, dropped := FromArgs(args)
	s := &scope{
		r:            r,
		env:          env,
		args:         vals,
		onStack:      make(map[string]struct{}),
		out:          &strings.Builder{},
		fallbackLeft: int(r.opts.MaxFallbackDepth),
	}
	for _, name := range dropped {
		s.err(diag.ResMissingVariable, pat,
			"argument %q has an unsupported type and was treated as missing", name)
	}

	s.push(key)
	_ = s.pattern(pat) // only fails on budget exhaustion, already recorded
	s.pop(key)
	return s.out.String(), s.errs
}

// scope is the per-call resolution context. It is never shared across
// goroutines.
type scope struct {
	r   *Resolver
	env Env

	args     map[string]Value
	termArgs map[string]Value // non-nil while inside a parameterized term

	stack   []string
	onStack map[string]struct{}

	depth        uint
	written      uint
	budgetHit    bool
	fallbackLeft int

	out  *strings.Builder
	errs []diag.Diagnostic
}

func (s *scope) err(code diag.Code, n ast.Node, format string, args ...any) {
	s.errs = append(s.errs, diag.Diagnostic{
		Severity: diag.SevError,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Primary:  n.Span(),
	})
}

// write accounts every produced byte against the budget, including
// bytes captured into intermediate buffers.
func (s *scope) write(text string) error {
	s.written += uint(len(text))
	if s.written > s.r.opts.MaxOutputSize {
		if !s.budgetHit {
			s.budgetHit = true
			s.errs = append(s.errs, diag.Diagnostic{
				Severity: diag.SevError,
				Code:     diag.ResBudgetExceeded,
				Message: fmt.Sprintf("output exceeds the %d byte budget",
					s.r.opts.MaxOutputSize),
			})
		}
		return errBudget
	}
	s.out.WriteString(text)
	return nil
}

// writeFallback renders `{inner}` under its own decrementing depth
// counter, degrading to the invalid sentinel when spent.
func (s *scope) writeFallback(inner string) error {
	if s.fallbackLeft <= 0 {
		return s.write(invalidSentinel)
	}
	s.fallbackLeft--
	err := s.write("{" + inner + "}")
	s.fallbackLeft++
	return err
}

func (s *scope) enter(n ast.Node) bool {
	s.depth++
	if s.depth > s.r.opts.MaxDepth {
		s.depth--
		s.err(diag.ResDepthExceeded, n,
			"expression nesting exceeds the depth limit %d", s.r.opts.MaxDepth)
		return false
	}
	return true
}

func (s *scope) leave() { s.depth-- }

func (s *scope) push(key string) {
	s.stack = append(s.stack, key)
	s.onStack[key] = struct{}{}
}

func (s *scope) pop(key string) {
	s.stack = s.stack[:len(s.stack)-1]
	delete(s.onStack, key)
}

// capture resolves through fn into a fresh buffer and returns its text.
// The budget keeps accumulating; only the destination changes.
func (s *scope) capture(fn func() error) (string, error) {
	saved := s.out
	s.out = &strings.Builder{}
	err := fn()
	text := s.out.String()
	s.out = saved
	return text, err
}

func (s *scope) pattern(pat *ast.Pattern) error {
	for _, el := range pat.Elements {
		switch v := el.(type) {
		case *ast.TextElement:
			if err := s.write(v.Value); err != nil {
				return err
			}
		case *ast.Placeable:
			if err := s.placeable(v); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *scope) placeable(pl *ast.Placeable) error {
	if !s.enter(pl) {
		return s.write(invalidSentinel)
	}
	defer s.leave()

	if s.r.opts.UseIsolating {
		if err := s.write(fsi); err != nil {
			return err
		}
		if err := s.expression(pl.Expression); err != nil {
			return err
		}
		return s.write(pdi)
	}
	return s.expression(pl.Expression)
}

func (s *scope) expression(expr ast.Expression) error {
	switch v := expr.(type) {
	case *ast.StringLiteral:
		return s.write(v.Value)
	case *ast.NumberLiteral:
		return s.write(numberFromLiteral(v).Format(s.r.opts.Locale))
	case *ast.VariableReference:
		return s.variable(v)
	case *ast.MessageReference:
		return s.messageRef(v)
	case *ast.TermReference:
		return s.termRef(v)
	case *ast.FunctionReference:
		return s.functionRef(v)
	case *ast.SelectExpression:
		return s.selectExpr(v)
	case *ast.Placeable:
		return s.placeable(v)
	default:
		s.err(diag.ResInfo, expr, "cannot resolve expression of type %T", expr)
		return s.write(invalidSentinel)
	}
}

// variable resolves $name. Inside a parameterized term only the term's
// own arguments are visible; callers' arguments never leak in.
func (s *scope) variable(v *ast.VariableReference) error {
	name := v.ID.Name
	lookup := s.args
	if s.termArgs != nil {
		lookup = s.termArgs
	}
	val, ok := lookup[name]
	if !ok {
		s.err(diag.ResMissingVariable, v, "unknown variable $%s", name)
		return s.writeFallback("$" + name)
	}
	return s.write(val.Format(s.r.opts.Locale))
}

func (s *scope) messageRef(m *ast.MessageReference) error {
	key := m.ID.Name
	srcForm := key
	if m.Attribute != nil {
		key += "." + m.Attribute.Name
		srcForm = key
	}

	target, ok := s.env.Message(m.ID.Name)
	if !ok {
		s.err(diag.ResMissingMessage, m, "unknown message %q", m.ID.Name)
		return s.writeFallback(srcForm)
	}

	var pat *ast.Pattern
	if m.Attribute != nil {
		for _, attr := range target.Attributes {
			if attr.ID.Name == m.Attribute.Name {
				pat = attr.Value
				break
			}
		}
		if pat == nil {
			s.err(diag.ResMissingAttribute, m, "message %q has no attribute %q",
				m.ID.Name, m.Attribute.Name)
			return s.writeFallback(srcForm)
		}
	} else {
		pat = target.Value
		if pat == nil {
			s.err(diag.ResNoValue, m, "message %q has no value", m.ID.Name)
			return s.writeFallback(srcForm)
		}
	}
	return s.resolveEntry(key, srcForm, pat, m)
}

func (s *scope) termRef(t *ast.TermReference) error {
	key := "-" + t.ID.Name
	srcForm := key
	if t.Attribute != nil {
		key += "." + t.Attribute.Name
		srcForm = key
	}

	target, ok := s.env.Term(t.ID.Name)
	if !ok {
		s.err(diag.ResMissingTerm, t, "unknown term -%s", t.ID.Name)
		return s.writeFallback(srcForm)
	}

	var pat *ast.Pattern
	if t.Attribute != nil {
		for _, attr := range target.Attributes {
			if attr.ID.Name == t.Attribute.Name {
				pat = attr.Value
				break
			}
		}
		if pat == nil {
			s.err(diag.ResMissingAttribute, t, "term -%s has no attribute %q",
				t.ID.Name, t.Attribute.Name)
			return s.writeFallback(srcForm)
		}
	} else {
		pat = target.Value
		if pat == nil {
			s.err(diag.ResNoValue, t, "term -%s has no value", t.ID.Name)
			return s.writeFallback(srcForm)
		}
	}

	// terms see only their own named arguments; positional arguments
	// are ignored at runtime
	saved := s.termArgs
	s.termArgs = s.termArguments(t.Arguments)
	err := s.resolveEntry(key, srcForm, pat, t)
	s.termArgs = saved
	return err
}

// termArguments evaluates the named arguments of a term call. The
// grammar restricts their values to literals, so this never recurses.
func (s *scope) termArguments(args *ast.CallArguments) map[string]Value {
	if args == nil || len(args.Named) == 0 {
		return map[string]Value{}
	}
	out := make(map[string]Value, len(args.Named))
	for _, na := range args.Named {
		switch v := na.Value.(type) {
		case *ast.StringLiteral:
			out[na.Name.Name] = StringValue{Val: v.Value}
		case *ast.NumberLiteral:
			out[na.Name.Name] = numberFromLiteral(v)
		}
	}
	return out
}

// resolveEntry recurses into a referenced entry's pattern with the
// cycle check: membership test before push, pop on every exit path.
func (s *scope) resolveEntry(key, srcForm string, pat *ast.Pattern, at ast.Node) error {
	if _, hit := s.onStack[key]; hit {
		s.err(diag.ResCyclicReference, at, "cyclic reference: %s", s.cyclePath(key))
		return s.writeFallback(srcForm)
	}
	if !s.enter(at) {
		return s.write(invalidSentinel)
	}
	s.push(key)
	err := s.pattern(pat)
	s.pop(key)
	s.leave()
	return err
}

// cyclePath renders the full reference chain from the first occurrence
// of key back to it.
func (s *scope) cyclePath(key string) string {
	start := 0
	for i, k := range s.stack {
		if k == key {
			start = i
			break
		}
	}
	parts := make([]string, 0, len(s.stack)-start+1)
	parts = append(parts, s.stack[start:]...)
	parts = append(parts, key)
	return strings.Join(parts, " -> ")
}

func (s *scope) functionRef(f *ast.FunctionReference) error {
	val, ok, err := s.callFunction(f)
	if err != nil {
		return err
	}
	if !ok {
		return s.writeFallback(f.ID.Name + "()")
	}
	return s.write(val.Format(s.r.opts.Locale))
}

// callFunction evaluates arguments under the expression depth guard and
// invokes the registered callable. The error is budget exhaustion;
// ok=false means fallback with diagnostics already recorded.
func (s *scope) callFunction(f *ast.FunctionReference) (Value, bool, error) {
	entry, found := s.r.opts.Funcs.lookup(f.ID.Name)
	if !found {
		s.err(diag.ResMissingFunction, f, "unknown function %s", f.ID.Name)
		return nil, false, nil
	}

	// argument evaluation nests, same as the parser counts it
	if !s.enter(f) {
		return nil, false, nil
	}
	defer s.leave()

	var positional []Value
	named := map[string]Value{}
	if f.Arguments != nil {
		for _, arg := range f.Arguments.Positional {
			val, ok, err := s.evalValue(arg)
			if err != nil || !ok {
				return nil, false, err
			}
			positional = append(positional, val)
		}
		for _, na := range f.Arguments.Named {
			val, ok, err := s.evalValue(na.Value)
			if err != nil || !ok {
				return nil, false, err
			}
			named[na.Name.Name] = val
		}
	}

	val, callErr := entry.fn(FuncContext{Locale: s.r.opts.Locale}, positional, entry.translate(named))
	if callErr != nil {
		var fe *FormattingError
		if errors.As(callErr, &fe) {
			s.err(diag.ResFormattingFailed, f, "%s failed: %s", f.ID.Name, fe.Reason)
			return StringValue{Val: fe.Fallback}, true, nil
		}
		s.err(diag.ResFormattingFailed, f, "%s failed: %v", f.ID.Name, callErr)
		return nil, false, nil
	}
	if val == nil {
		s.err(diag.ResFormattingFailed, f, "%s returned no value", f.ID.Name)
		return nil, false, nil
	}
	return val, true, nil
}

// evalValue resolves an expression to a Value, for selectors and call
// arguments. Reference expressions capture their textual output.
func (s *scope) evalValue(expr ast.Expression) (Value, bool, error) {
	switch v := expr.(type) {
	case *ast.StringLiteral:
		return StringValue{Val: v.Value}, true, nil
	case *ast.NumberLiteral:
		return numberFromLiteral(v), true, nil
	case *ast.VariableReference:
		lookup := s.args
		if s.termArgs != nil {
			lookup = s.termArgs
		}
		val, ok := lookup[v.ID.Name]
		if !ok {
			s.err(diag.ResMissingVariable, v, "unknown variable $%s", v.ID.Name)
			return nil, false, nil
		}
		return val, true, nil
	case *ast.FunctionReference:
		return s.callFunction(v)
	default:
		text, err := s.capture(func() error { return s.expression(expr) })
		if err != nil {
			return nil, false, err
		}
		return StringValue{Val: text}, true, nil
	}
}

func (s *scope) selectExpr(sel *ast.SelectExpression) error {
	val, ok, err := s.evalValue(sel.Selector)
	if err != nil {
		return err
	}
	if !ok {
		val = nil // fall through to the default variant
	}

	variant := matchVariant(val, sel.Variants, s.r.opts.Locale)
	if variant == nil {
		s.err(diag.ResBadSelector, sel, "select expression has no matching variant")
		return s.write(invalidSentinel)
	}
	if !s.enter(variant) {
		return s.write(invalidSentinel)
	}
	defer s.leave()
	return s.pattern(variant.Value)
}

func numberFromLiteral(lit *ast.NumberLiteral) NumberValue {
	val, err := strconv.ParseFloat(lit.Value, 64)
	if err != nil {
		val = 0
	}
	return NumberValue{Val: val, Source: lit.Value}
}
