package resolver

import (
	"fmt"

	"golang.org/x/text/language"
)

// FuncContext is passed to every registered function. The locale is
// implicitly available so functions can format locale-aware without
// extra plumbing.
type FuncContext struct {
	Locale language.Tag
}

// Func is a host callable reachable from patterns as NAME(...).
// Positional arguments arrive resolved; named argument keys are
// translated through the registration's parameter map first.
//
// Returning a *FormattingError substitutes its fallback text and
// records one diagnostic; any other error falls back to the call's
// source form.
type Func func(ctx FuncContext, positional []Value, named map[string]Value) (Value, error)

// FormattingError is a function failure that carries its own fallback
// text. The resolver substitutes Fallback and keeps going.
type FormattingError struct {
	Fallback string
	Reason   string
}

func (e *FormattingError) Error() string {
	return fmt.Sprintf("formatting failed: %s", e.Reason)
}

type regEntry struct {
	fn     Func
	params map[string]string // pattern-side name -> host-side name
}

// Registry maps uppercase function names to host callables. A bundle
// holds a private clone, so later registrations on a shared registry
// never leak into bundles created earlier.
type Registry struct {
	funcs map[string]regEntry
}

// NewRegistry returns a registry preloaded with the NUMBER and
// DATETIME builtins.
func NewRegistry() *Registry {
	r := &Registry{funcs: make(map[string]regEntry)}
	r.mustRegister("NUMBER", builtinNumber, nil)
	r.mustRegister("DATETIME", builtinDatetime, nil)
	return r
}

// Register adds a callable under name. The name must match the
// function-name grammar [A-Z][A-Z0-9_-]*; anything else is rejected so
// the function stays unreachable from no pattern.
func (r *Registry) Register(name string, fn Func, params map[string]string) error {
	if !validFuncName(name) {
		return fmt.Errorf("function name %q must be upper-case ([A-Z][A-Z0-9_-]*)", name)
	}
	if fn == nil {
		return fmt.Errorf("function %s: nil callable", name)
	}
	r.funcs[name] = regEntry{fn: fn, params: params}
	return nil
}

func (r *Registry) mustRegister(name string, fn Func, params map[string]string) {
	if err := r.Register(name, fn, params); err != nil {
		panic(err)
	}
}

// Clone returns an independent copy.
func (r *Registry) Clone() *Registry {
	out := &Registry{funcs: make(map[string]regEntry, len(r.funcs))}
	for name, e := range r.funcs {
		out.funcs[name] = e
	}
	return out
}

func (r *Registry) lookup(name string) (regEntry, bool) {
	e, ok := r.funcs[name]
	return e, ok
}

// translate maps pattern-side named-argument keys to the host-side
// names declared at registration. Undeclared keys pass through as-is.
func (e regEntry) translate(named map[string]Value) map[string]Value {
	if len(e.params) == 0 || len(named) == 0 {
		return named
	}
	out := make(map[string]Value, len(named))
	for key, v := range named {
		if host, ok := e.params[key]; ok {
			key = host
		}
		out[key] = v
	}
	return out
}

func validFuncName(name string) bool {
	if name == "" || name[0] < 'A' || name[0] > 'Z' {
		return false
	}
	for i := 1; i < len(name); i++ {
		ch := name[i]
		if (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') || ch == '_' || ch == '-' {
			continue
		}
		return false
	}
	return true
}
