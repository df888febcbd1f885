// Package lingo is a Fluent-style localization message engine: it
// parses FTL resources, validates them, and formats messages for one
// locale. A Bundle ties the pieces together behind a reentrant
// reader-writer lock, so concurrent formatting and mutation are safe.
//
// Malformed input never fails hard: parsing, validation, and
// formatting return best-effort results plus diagnostics. Errors are
// reserved for API misuse, strict mode, and cache conflicts.
package lingo

import (
	"errors"
	"fmt"
	"sort"

	"golang.org/x/text/language"

	"lingo/internal/ast"
	"lingo/internal/cache"
	"lingo/internal/diag"
	"lingo/internal/parser"
	"lingo/internal/resolver"
	"lingo/internal/sema"
	"lingo/internal/source"
	"lingo/internal/syncx"
)

// Re-exported types so callers can name what the Bundle API returns
// and registers without reaching into internal packages.
type (
	Diagnostic      = diag.Diagnostic
	Severity        = diag.Severity
	Func            = resolver.Func
	FuncContext     = resolver.FuncContext
	FormattingError = resolver.FormattingError
	Registry        = resolver.Registry
	Value           = resolver.Value
	StringValue     = resolver.StringValue
	NumberValue     = resolver.NumberValue
	CacheStats      = cache.Stats
)

// NewRegistry returns a function registry preloaded with the NUMBER
// and DATETIME builtins.
func NewRegistry() *Registry { return resolver.NewRegistry() }

// ErrMessageNotFound is returned by the Format methods for unknown ids.
var ErrMessageNotFound = errors.New("lingo: message not found")

// ErrStrict wraps the first blocking diagnostic when a strict-mode
// bundle refuses a best-effort result.
var ErrStrict = errors.New("lingo: strict mode failure")

// Options configures a Bundle. The zero value is a permissive,
// non-isolating bundle with default limits.
type Options struct {
	// Strict makes AddResource and the Format methods fail on any
	// error-severity diagnostic instead of returning best-effort
	// results. Cache integrity failures also become errors.
	Strict bool
	// UseIsolating wraps every placeable in FSI/PDI bidi isolation
	// marks. Part of the cache key.
	UseIsolating bool
	// Funcs is cloned at construction; later registrations on the
	// original never reach this bundle. Nil means the builtins.
	Funcs *Registry

	Parser    parser.Options
	Resolver  resolver.Options
	Validator sema.Options
	Cache     cache.Options
}

// Bundle holds the messages, terms, functions, and cache for one
// locale. Safe for concurrent use.
type Bundle struct {
	locale    language.Tag
	localeStr string
	opts      Options

	mu       syncx.ReentrantRWLock
	files    *source.FileSet
	messages map[string]*ast.Message
	terms    map[string]*ast.Term
	funcs    *resolver.Registry
	res      *resolver.Resolver
	cache    *cache.Cache
	nextName int
}

// NewBundle creates a bundle for the given BCP 47 locale. Programmer
// errors panic at this boundary: a malformed locale tag or a negative
// cache capacity is a bug in the caller, not input to degrade on.
func NewBundle(locale string, opts Options) *Bundle {
	tag, err := language.Parse(locale)
	if err != nil {
		panic(fmt.Sprintf("lingo: invalid locale %q: %v", locale, err))
	}
	if opts.Cache.MaxEntries < 0 {
		panic(fmt.Sprintf("lingo: negative cache capacity %d", opts.Cache.MaxEntries))
	}

	if opts.Parser.MaxParseErrors == 0 {
		opts.Parser.MaxParseErrors = parser.DefaultMaxParseErrors
	}

	funcs := opts.Funcs
	if funcs == nil {
		funcs = resolver.NewRegistry()
	}
	funcs = funcs.Clone()

	resOpts := opts.Resolver
	resOpts.Locale = tag
	resOpts.UseIsolating = opts.UseIsolating
	resOpts.Funcs = funcs

	return &Bundle{
		locale:    tag,
		localeStr: locale,
		opts:      opts,
		files:     source.NewFileSet(),
		messages:  make(map[string]*ast.Message),
		terms:     make(map[string]*ast.Term),
		funcs:     funcs,
		res:       resolver.New(resOpts),
		cache:     cache.New(opts.Cache),
	}
}

// Locale returns the bundle's locale tag.
func (b *Bundle) Locale() language.Tag { return b.locale }

// RegisterFunction adds a host callable to this bundle's private
// registry under an uppercase name.
func (b *Bundle) RegisterFunction(name string, fn Func, params map[string]string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.funcs.Register(name, fn, params); err != nil {
		return err
	}
	b.cache.Invalidate()
	return nil
}

// AddResource parses and registers an FTL source. Registration is
// last write wins: an entry whose id is already registered replaces
// the existing definition and the conflict is flagged with a warning.
// The returned diagnostics cover parsing and validation; err is
// non-nil only in strict mode.
func (b *Bundle) AddResource(src string) ([]Diagnostic, error) {
	return b.addResource(src, false)
}

// AddResourceOverriding is AddResource without the conflict warnings:
// replacements happen silently.
func (b *Bundle) AddResourceOverriding(src string) ([]Diagnostic, error) {
	return b.addResource(src, true)
}

func (b *Bundle) addResource(src string, silent bool) ([]Diagnostic, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextName++
	id := b.files.AddVirtual(fmt.Sprintf("resource-%d.ftl", b.nextName), []byte(src))
	parsed := parser.Parse(b.files.Get(id), b.opts.Parser)

	diags := parsed.Bag.Items()

	// validate against what the bundle already holds; the read-path
	// snapshot helpers take nested read locks under our write lock
	known := sema.Known{Messages: b.snapshotMessages(), Terms: b.snapshotTerms()}
	verdict := sema.ValidateAgainst(parsed.Resource, known, b.opts.Validator)
	for _, d := range verdict.Bag.Items() {
		if silent && (d.Code == diag.SemDuplicateMessage || d.Code == diag.SemDuplicateTerm) {
			continue
		}
		diags = append(diags, d)
	}

	if b.opts.Strict {
		if first, found := firstError(diags); found {
			return diags, fmt.Errorf("%w: %s: %s", ErrStrict, first.Code.ID(), first.Message)
		}
	}

	// last write wins; tooling that needs the earlier definition reads
	// it from the diagnostics span before re-registering
	for _, entry := range parsed.Resource.Body {
		switch e := entry.(type) {
		case *ast.Message:
			if _, exists := b.messages[e.ID.Name]; exists && !silent {
				diags = append(diags, Diagnostic{
					Severity: diag.SevWarning,
					Code:     diag.SemDuplicateMessage,
					Message:  fmt.Sprintf("message %q already registered, replacing the existing definition", e.ID.Name),
					Primary:  e.ID.Span(),
				})
			}
			b.messages[e.ID.Name] = e
		case *ast.Term:
			if _, exists := b.terms[e.ID.Name]; exists && !silent {
				diags = append(diags, Diagnostic{
					Severity: diag.SevWarning,
					Code:     diag.SemDuplicateTerm,
					Message:  fmt.Sprintf("term -%s already registered, replacing the existing definition", e.ID.Name),
					Primary:  e.ID.Span(),
				})
			}
			b.terms[e.ID.Name] = e
		}
	}
	b.cache.Invalidate()
	return diags, nil
}

// HasMessage reports whether id is registered.
func (b *Bundle) HasMessage(id string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.messages[id]
	return ok
}

// MessageIDs returns the registered message ids, sorted.
func (b *Bundle) MessageIDs() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	ids := make([]string, 0, len(b.messages))
	for id := range b.messages {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// FormatMessage resolves a message's value with the given arguments.
// Diagnostics describe everything that degraded along the way; err is
// ErrMessageNotFound, a strict-mode failure, or a cache conflict.
func (b *Bundle) FormatMessage(id string, args map[string]any) (string, []Diagnostic, error) {
	return b.format(id, "", args)
}

// FormatAttribute resolves one attribute of a message.
func (b *Bundle) FormatAttribute(id, attribute string, args map[string]any) (string, []Diagnostic, error) {
	if attribute == "" {
		panic("lingo: FormatAttribute with empty attribute name")
	}
	return b.format(id, attribute, args)
}

func (b *Bundle) format(id, attribute string, args map[string]any) (string, []Diagnostic, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	msg, ok := b.messages[id]
	if !ok {
		return "", nil, fmt.Errorf("%w: %q", ErrMessageNotFound, id)
	}

	key, cachable := cache.BuildKey(id, attribute, b.localeStr, b.opts.UseIsolating, args)
	if cachable {
		entry, err := b.cache.Get(key)
		if err != nil {
			// strict-mode integrity failure
			return "", nil, err
		}
		if entry != nil {
			return entry.Formatted, entry.Errors, b.strictCheck(entry.Errors)
		}
	}

	var formatted string
	var diags []Diagnostic
	if attribute == "" {
		formatted, diags = b.res.ResolveMessage(bundleEnv{b}, msg, args)
	} else {
		formatted, diags = b.res.ResolveAttribute(bundleEnv{b}, msg, attribute, args)
	}

	if cachable {
		if _, err := b.cache.Put(key, formatted, diags); err != nil {
			return formatted, diags, err
		}
	}
	return formatted, diags, b.strictCheck(diags)
}

func (b *Bundle) strictCheck(diags []Diagnostic) error {
	if !b.opts.Strict {
		return nil
	}
	if first, found := firstError(diags); found {
		return fmt.Errorf("%w: %s: %s", ErrStrict, first.Code.ID(), first.Message)
	}
	return nil
}

// CacheStats returns the cache hit/miss counters and live entry count.
func (b *Bundle) CacheStats() CacheStats {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.cache.Stats()
}

// snapshotMessages and snapshotTerms are read-path helpers also used
// under the write lock; the reentrant lock's downgrade keeps that from
// deadlocking.
func (b *Bundle) snapshotMessages() map[string]*ast.Message {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make(map[string]*ast.Message, len(b.messages))
	for id, m := range b.messages {
		out[id] = m
	}
	return out
}

func (b *Bundle) snapshotTerms() map[string]*ast.Term {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make(map[string]*ast.Term, len(b.terms))
	for id, t := range b.terms {
		out[id] = t
	}
	return out
}

// bundleEnv adapts the bundle's maps to the resolver's lookup
// interface. Each lookup takes a nested read lock, which is reentrant
// under both the format read lock and the mutation write lock.
type bundleEnv struct{ b *Bundle }

func (e bundleEnv) Message(id string) (*ast.Message, bool) {
	e.b.mu.RLock()
	defer e.b.mu.RUnlock()
	m, ok := e.b.messages[id]
	return m, ok
}

func (e bundleEnv) Term(id string) (*ast.Term, bool) {
	e.b.mu.RLock()
	defer e.b.mu.RUnlock()
	t, ok := e.b.terms[id]
	return t, ok
}

func firstError(diags []Diagnostic) (Diagnostic, bool) {
	for _, d := range diags {
		if d.Severity == diag.SevError {
			return d, true
		}
	}
	return Diagnostic{}, false
}
