package lingo

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"lingo/internal/cache"
	"lingo/internal/diag"
)

func newTestBundle(t *testing.T, src string, opts Options) *Bundle {
	t.Helper()
	b := NewBundle("en", opts)
	diags, err := b.AddResource(src)
	if err != nil {
		t.Fatalf("AddResource: %v", err)
	}
	for _, d := range diags {
		if d.Severity >= diag.SevError {
			t.Fatalf("fixture diagnostics: %v", diags)
		}
	}
	return b
}

func TestBundle_FormatMessage(t *testing.T) {
	b := newTestBundle(t, strings.Join([]string{
		"-brand = Firefox",
		"hello = Hello, { $name }!",
		"about = About { -brand }",
		"    .title = About page",
		"",
	}, "\n"), Options{})

	t.Run("with argument", func(t *testing.T) {
		out, diags, err := b.FormatMessage("hello", map[string]any{"name": "Ana"})
		if err != nil || len(diags) != 0 {
			t.Fatalf("err=%v diags=%v", err, diags)
		}
		if out != "Hello, Ana!" {
			t.Errorf("out = %q", out)
		}
	})

	t.Run("term reference", func(t *testing.T) {
		out, _, err := b.FormatMessage("about", nil)
		if err != nil {
			t.Fatalf("err = %v", err)
		}
		if out != "About Firefox" {
			t.Errorf("out = %q", out)
		}
	})

	t.Run("attribute", func(t *testing.T) {
		out, _, err := b.FormatAttribute("about", "title", nil)
		if err != nil {
			t.Fatalf("err = %v", err)
		}
		if out != "About page" {
			t.Errorf("out = %q", out)
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		_, _, err := b.FormatMessage("nope", nil)
		if !errors.Is(err, ErrMessageNotFound) {
			t.Errorf("err = %v, want ErrMessageNotFound", err)
		}
	})

	t.Run("missing variable degrades with diagnostics", func(t *testing.T) {
		out, diags, err := b.FormatMessage("hello", nil)
		if err != nil {
			t.Fatalf("err = %v, degraded output is not an error", err)
		}
		if out != "Hello, {$name}!" {
			t.Errorf("out = %q", out)
		}
		if len(diags) == 0 {
			t.Error("expected diagnostics for the missing variable")
		}
	})
}

func TestBundle_MessageInventory(t *testing.T) {
	b := newTestBundle(t, "b = 2\na = 1\n-t = term\n", Options{})
	if !b.HasMessage("a") || b.HasMessage("t") {
		t.Error("HasMessage should see messages and not terms")
	}
	ids := b.MessageIDs()
	if len(ids) != 2 || ids[0] != "a" || ids[1] != "b" {
		t.Errorf("MessageIDs = %v, want [a b]", ids)
	}
}

func TestBundle_CacheBehavior(t *testing.T) {
	b := newTestBundle(t, "m = Hi { $name }!\n", Options{})
	args := map[string]any{"name": "Ana"}

	first, _, err := b.FormatMessage("m", args)
	if err != nil {
		t.Fatalf("FormatMessage: %v", err)
	}
	second, _, err := b.FormatMessage("m", args)
	if err != nil {
		t.Fatalf("FormatMessage: %v", err)
	}
	if first != second {
		t.Errorf("repeat format differs: %q vs %q", first, second)
	}
	stats := b.CacheStats()
	if stats.Hits < 1 {
		t.Errorf("stats = %+v, want at least one hit", stats)
	}

	t.Run("mutation invalidates", func(t *testing.T) {
		if _, err := b.AddResourceOverriding("m = Changed { $name }!\n"); err != nil {
			t.Fatalf("AddResourceOverriding: %v", err)
		}
		out, _, err := b.FormatMessage("m", args)
		if err != nil {
			t.Fatalf("FormatMessage: %v", err)
		}
		if out != "Changed Ana!" {
			t.Errorf("out = %q, want the new definition", out)
		}
	})

	t.Run("uncachable arguments still format", func(t *testing.T) {
		out, diags, err := b.FormatMessage("m", map[string]any{"name": []int{1}})
		if err != nil {
			t.Fatalf("FormatMessage: %v", err)
		}
		if out != "Changed {$name}!" {
			t.Errorf("out = %q", out)
		}
		if len(diags) == 0 {
			t.Error("dropped argument should be reported")
		}
	})
}

func TestBundle_ConflictHandling(t *testing.T) {
	t.Run("last write wins and is flagged", func(t *testing.T) {
		b := newTestBundle(t, "m = first\n", Options{})
		diags, err := b.AddResource("m = second\n")
		if err != nil {
			t.Fatalf("AddResource: %v", err)
		}
		found := false
		for _, d := range diags {
			if d.Code == diag.SemDuplicateMessage {
				found = true
			}
		}
		if !found {
			t.Errorf("diags = %v, want a duplicate warning", diags)
		}
		out, _, _ := b.FormatMessage("m", nil)
		if out != "second" {
			t.Errorf("out = %q, want the replacement", out)
		}
	})

	t.Run("overriding replaces silently", func(t *testing.T) {
		b := newTestBundle(t, "m = first\n", Options{})
		diags, err := b.AddResourceOverriding("m = second\n")
		if err != nil {
			t.Fatalf("AddResourceOverriding: %v", err)
		}
		for _, d := range diags {
			if d.Code == diag.SemDuplicateMessage {
				t.Errorf("diags = %v, overriding must not warn", diags)
			}
		}
		out, _, _ := b.FormatMessage("m", nil)
		if out != "second" {
			t.Errorf("out = %q, want the override", out)
		}
	})
}

func TestBundle_ParseErrorCapDefault(t *testing.T) {
	// A zero-options bundle caps parse errors at 100 even though the
	// parser itself treats 0 as unlimited.
	b := NewBundle("en", Options{})
	diags, err := b.AddResource(strings.Repeat("#bad-comment-line\n", 150))
	if err != nil {
		t.Fatalf("AddResource: %v", err)
	}
	found := false
	for _, d := range diags {
		if d.Code == diag.SynErrorLimitReached {
			found = true
		}
	}
	if !found {
		t.Error("expected SynErrorLimitReached from the default cap")
	}
}

func TestBundle_StrictMode(t *testing.T) {
	t.Run("add fails on junk", func(t *testing.T) {
		b := NewBundle("en", Options{Strict: true})
		diags, err := b.AddResource("??? broken\n")
		if !errors.Is(err, ErrStrict) {
			t.Fatalf("err = %v, want ErrStrict", err)
		}
		if len(diags) == 0 {
			t.Error("diagnostics should accompany the strict failure")
		}
	})

	t.Run("format fails on degraded output", func(t *testing.T) {
		b := NewBundle("en", Options{Strict: true})
		if _, err := b.AddResource("m = Hi { $name }!\n"); err != nil {
			t.Fatalf("AddResource: %v", err)
		}
		out, _, err := b.FormatMessage("m", nil)
		if !errors.Is(err, ErrStrict) {
			t.Fatalf("err = %v, want ErrStrict", err)
		}
		if out != "Hi {$name}!" {
			t.Errorf("out = %q, best-effort text should still be returned", out)
		}
	})

	t.Run("clean format passes", func(t *testing.T) {
		b := NewBundle("en", Options{Strict: true})
		if _, err := b.AddResource("m = Hi { $name }!\n"); err != nil {
			t.Fatalf("AddResource: %v", err)
		}
		out, _, err := b.FormatMessage("m", map[string]any{"name": "Ana"})
		if err != nil {
			t.Fatalf("err = %v", err)
		}
		if out != "Hi Ana!" {
			t.Errorf("out = %q", out)
		}
	})
}

func TestBundle_RegisterFunction(t *testing.T) {
	b := newTestBundle(t, "m = { SHOUT($text) }\n", Options{})

	_, diags, err := b.FormatMessage("m", map[string]any{"text": "hey"})
	if err != nil {
		t.Fatalf("FormatMessage: %v", err)
	}
	if len(diags) == 0 {
		t.Fatal("unknown function should be reported")
	}

	err = b.RegisterFunction("SHOUT", func(_ FuncContext, positional []Value, _ map[string]Value) (Value, error) {
		if len(positional) != 1 {
			return nil, &FormattingError{Fallback: "SHOUT()", Reason: "one argument required"}
		}
		sv, ok := positional[0].(StringValue)
		if !ok {
			return nil, &FormattingError{Fallback: "SHOUT()", Reason: "argument is not text"}
		}
		return StringValue{Val: strings.ToUpper(sv.Val)}, nil
	}, nil)
	if err != nil {
		t.Fatalf("RegisterFunction: %v", err)
	}

	out, diags, err := b.FormatMessage("m", map[string]any{"text": "hey"})
	if err != nil || len(diags) != 0 {
		t.Fatalf("err=%v diags=%v", err, diags)
	}
	if out != "HEY" {
		t.Errorf("out = %q, want HEY", out)
	}

	t.Run("lowercase name rejected", func(t *testing.T) {
		err := b.RegisterFunction("shout", func(FuncContext, []Value, map[string]Value) (Value, error) {
			return StringValue{}, nil
		}, nil)
		if err == nil {
			t.Error("lowercase names must be rejected")
		}
	})
}

func TestBundle_SharedRegistryIsolation(t *testing.T) {
	shared := NewRegistry()
	b := NewBundle("en", Options{Funcs: shared})
	if _, err := b.AddResource("m = { LATER() }\n"); err != nil {
		t.Fatalf("AddResource: %v", err)
	}

	// Registration on the shared registry after construction must not
	// reach the bundle's private clone.
	err := shared.Register("LATER", func(FuncContext, []Value, map[string]Value) (Value, error) {
		return StringValue{Val: "leaked"}, nil
	}, nil)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	out, _, err := b.FormatMessage("m", nil)
	if err != nil {
		t.Fatalf("FormatMessage: %v", err)
	}
	if out != "{LATER()}" {
		t.Errorf("out = %q, late registration must not leak in", out)
	}
}

func TestBundle_PreconditionPanics(t *testing.T) {
	t.Run("bad locale", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Fatal("NewBundle with a malformed locale should panic")
			}
		}()
		NewBundle("not a locale", Options{})
	})

	t.Run("negative cache capacity", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Fatal("NewBundle with negative cache capacity should panic")
			}
		}()
		NewBundle("en", Options{Cache: cache.Options{MaxEntries: -1}})
	})

	t.Run("empty attribute", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Fatal("FormatAttribute with an empty name should panic")
			}
		}()
		b := newTestBundle(t, "m = x\n", Options{})
		b.FormatAttribute("m", "", nil)
	})
}

func TestBundle_ConcurrentUse(t *testing.T) {
	b := newTestBundle(t, "m = Hi { $name }!\n", Options{})

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				if _, _, err := b.FormatMessage("m", map[string]any{"name": "Ana"}); err != nil {
					t.Errorf("FormatMessage: %v", err)
					return
				}
			}
		}(g)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 20; i++ {
			src := fmt.Sprintf("extra-%d = value\n", i)
			if _, err := b.AddResourceOverriding(src); err != nil {
				t.Errorf("AddResourceOverriding: %v", err)
				return
			}
		}
	}()
	wg.Wait()

	if got := len(b.MessageIDs()); got != 21 {
		t.Errorf("messages = %d, want 21", got)
	}
}
