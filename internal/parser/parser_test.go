package parser

import (
	"fmt"
	"strings"
	"testing"

	"lingo/internal/ast"
	"lingo/internal/diag"
	"lingo/internal/source"
	"lingo/internal/testkit"
)

func parseSrc(t *testing.T, src string, opts Options) (Result, *source.File) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.ftl", []byte(src))
	file := fs.Get(id)
	return Parse(file, opts), file
}

func textValue(t *testing.T, pat *ast.Pattern) string {
	t.Helper()
	if pat == nil {
		return ""
	}
	var b strings.Builder
	for _, el := range pat.Elements {
		if txt, ok := el.(*ast.TextElement); ok {
			b.WriteString(txt.Value)
		}
	}
	return b.String()
}

func firstMessage(t *testing.T, res *ast.Resource) *ast.Message {
	t.Helper()
	for _, entry := range res.Body {
		if m, ok := entry.(*ast.Message); ok {
			return m
		}
	}
	t.Fatal("no message in resource")
	return nil
}

func countJunk(res *ast.Resource) int {
	n := 0
	for _, entry := range res.Body {
		if _, ok := entry.(*ast.Junk); ok {
			n++
		}
	}
	return n
}

func TestParse_SimpleMessage(t *testing.T) {
	result, file := parseSrc(t, "hello = Hello, world!\n", Options{})
	if result.Bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", result.Bag.Items())
	}
	msg := firstMessage(t, result.Resource)
	if msg.ID.Name != "hello" {
		t.Errorf("ID = %q, want hello", msg.ID.Name)
	}
	if got := textValue(t, msg.Value); got != "Hello, world!" {
		t.Errorf("value = %q, want %q", got, "Hello, world!")
	}
	if err := testkit.CheckSpanInvariants(result.Resource, file); err != nil {
		t.Errorf("span invariants: %v", err)
	}
}

func TestParse_MultilinePatterns(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "even indent",
			src:  "m =\n    line one\n    line two\n",
			want: "line one\nline two",
		},
		{
			name: "uneven indent keeps relative",
			src:  "m =\n    one\n      two\n",
			want: "one\n  two",
		},
		{
			name: "blank interior line preserved",
			src:  "m =\n    a\n\n    b\n",
			want: "a\n\nb",
		},
		{
			name: "inline start with continuation",
			src:  "m = first\n    second\n",
			want: "first\nsecond",
		},
		{
			name: "trailing whitespace trimmed",
			src:  "m = value   \n",
			want: "value",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, _ := parseSrc(t, tt.src, Options{})
			if result.Bag.HasErrors() {
				t.Fatalf("unexpected errors: %v", result.Bag.Items())
			}
			msg := firstMessage(t, result.Resource)
			if got := textValue(t, msg.Value); got != tt.want {
				t.Errorf("value = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParse_CRLFNormalized(t *testing.T) {
	result, file := parseSrc(t, "a = one\r\nb = two\r\n", Options{})
	if result.Bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", result.Bag.Items())
	}
	if file.Flags&source.FileNormalizedEOL == 0 {
		t.Error("expected FileNormalizedEOL flag")
	}
	if len(result.Resource.Body) != 2 {
		t.Fatalf("entries = %d, want 2", len(result.Resource.Body))
	}
}

func TestParse_Attributes(t *testing.T) {
	t.Run("value and attributes", func(t *testing.T) {
		result, _ := parseSrc(t, "m = value\n    .title = Title\n    .hint = Hint\n", Options{})
		if result.Bag.HasErrors() {
			t.Fatalf("unexpected errors: %v", result.Bag.Items())
		}
		msg := firstMessage(t, result.Resource)
		if len(msg.Attributes) != 2 {
			t.Fatalf("attributes = %d, want 2", len(msg.Attributes))
		}
		if msg.Attributes[0].ID.Name != "title" || msg.Attributes[1].ID.Name != "hint" {
			t.Errorf("attribute names = %q, %q", msg.Attributes[0].ID.Name, msg.Attributes[1].ID.Name)
		}
	})

	t.Run("attributes without value is legal", func(t *testing.T) {
		result, _ := parseSrc(t, "m =\n    .title = Title\n", Options{})
		if result.Bag.HasErrors() {
			t.Fatalf("unexpected errors: %v", result.Bag.Items())
		}
		msg := firstMessage(t, result.Resource)
		if msg.Value != nil {
			t.Errorf("value = %v, want nil", msg.Value)
		}
		if len(msg.Attributes) != 1 {
			t.Errorf("attributes = %d, want 1", len(msg.Attributes))
		}
	})

	t.Run("neither value nor attributes is junk", func(t *testing.T) {
		result, _ := parseSrc(t, "m =\n", Options{})
		if countJunk(result.Resource) != 1 {
			t.Fatalf("junk = %d, want 1", countJunk(result.Resource))
		}
	})
}

func TestParse_TermRequiresValue(t *testing.T) {
	result, _ := parseSrc(t, "-brand =\n    .gender = masculine\n", Options{})
	if countJunk(result.Resource) != 1 {
		t.Fatalf("junk = %d, want 1", countJunk(result.Resource))
	}
	junk := result.Resource.Body[0].(*ast.Junk)
	if len(junk.Annotations) == 0 || junk.Annotations[0].Code != diag.SynMissingTermValue {
		t.Errorf("annotation = %v, want SynMissingTermValue", junk.Annotations)
	}
}

func TestParse_Comments(t *testing.T) {
	t.Run("attached to next message", func(t *testing.T) {
		result, _ := parseSrc(t, "# docs for hello\nhello = x\n", Options{})
		if len(result.Resource.Body) != 1 {
			t.Fatalf("entries = %d, want 1", len(result.Resource.Body))
		}
		msg := firstMessage(t, result.Resource)
		if msg.Comment == nil || msg.Comment.Content != "docs for hello" {
			t.Errorf("comment = %+v, want attached", msg.Comment)
		}
	})

	t.Run("blank line breaks attachment", func(t *testing.T) {
		result, _ := parseSrc(t, "# standalone\n\nhello = x\n", Options{})
		if len(result.Resource.Body) != 2 {
			t.Fatalf("entries = %d, want 2", len(result.Resource.Body))
		}
		if _, ok := result.Resource.Body[0].(*ast.Comment); !ok {
			t.Errorf("entry 0 = %T, want *ast.Comment", result.Resource.Body[0])
		}
		if firstMessage(t, result.Resource).Comment != nil {
			t.Error("comment should not attach across a blank line")
		}
	})

	t.Run("group and resource comments stay standalone", func(t *testing.T) {
		result, _ := parseSrc(t, "### file header\n## section\nhello = x\n", Options{})
		if len(result.Resource.Body) != 3 {
			t.Fatalf("entries = %d, want 3", len(result.Resource.Body))
		}
		if _, ok := result.Resource.Body[0].(*ast.ResourceComment); !ok {
			t.Errorf("entry 0 = %T, want *ast.ResourceComment", result.Resource.Body[0])
		}
		if _, ok := result.Resource.Body[1].(*ast.GroupComment); !ok {
			t.Errorf("entry 1 = %T, want *ast.GroupComment", result.Resource.Body[1])
		}
	})

	t.Run("same level lines merge", func(t *testing.T) {
		result, _ := parseSrc(t, "# line one\n# line two\n\nm = x\n", Options{})
		c, ok := result.Resource.Body[0].(*ast.Comment)
		if !ok {
			t.Fatalf("entry 0 = %T, want *ast.Comment", result.Resource.Body[0])
		}
		if c.Content != "line one\nline two" {
			t.Errorf("content = %q", c.Content)
		}
	})

	t.Run("comment before junk survives as standalone", func(t *testing.T) {
		result, _ := parseSrc(t, "# important note\n??? broken\n", Options{})
		comments := 0
		for _, entry := range result.Resource.Body {
			if c, ok := entry.(*ast.Comment); ok {
				comments++
				if c.Content != "important note" {
					t.Errorf("content = %q", c.Content)
				}
			}
		}
		if comments != 1 {
			t.Errorf("comment entries = %d, want 1", comments)
		}
		if countJunk(result.Resource) != 1 {
			t.Errorf("junk = %d, want 1", countJunk(result.Resource))
		}
	})

	t.Run("malformed comment becomes junk", func(t *testing.T) {
		result, _ := parseSrc(t, "#no-space\nm = x\n", Options{})
		if countJunk(result.Resource) != 1 {
			t.Fatalf("junk = %d, want 1", countJunk(result.Resource))
		}
	})
}

func TestParse_JunkRecovery(t *testing.T) {
	t.Run("junk then valid entry", func(t *testing.T) {
		result, _ := parseSrc(t, "???\nvalid = ok\n", Options{})
		if len(result.Resource.Body) != 2 {
			t.Fatalf("entries = %d, want 2", len(result.Resource.Body))
		}
		junk, ok := result.Resource.Body[0].(*ast.Junk)
		if !ok {
			t.Fatalf("entry 0 = %T, want *ast.Junk", result.Resource.Body[0])
		}
		if junk.Content != "???\n" {
			t.Errorf("junk content = %q", junk.Content)
		}
		if len(junk.Annotations) == 0 {
			t.Error("junk should carry its diagnostic")
		}
	})

	t.Run("consecutive non-conforming lines merge", func(t *testing.T) {
		result, _ := parseSrc(t, "??a\n??b\n??c\nok = fine\n", Options{})
		if got := countJunk(result.Resource); got != 1 {
			t.Fatalf("junk = %d, want 1", got)
		}
		junk := result.Resource.Body[0].(*ast.Junk)
		if junk.Content != "??a\n??b\n??c\n" {
			t.Errorf("junk content = %q", junk.Content)
		}
	})

	t.Run("every entry is a known kind", func(t *testing.T) {
		inputs := []string{
			"", "=", "= x", "{", "}", "m = { !!! }", "\x00\x01", "  leading = spaces",
			"-", "-=x", "#", "####", "m", "m =", "[x]", "*[x] y",
		}
		for _, src := range inputs {
			result, _ := parseSrc(t, src, Options{})
			for i, entry := range result.Resource.Body {
				switch entry.(type) {
				case *ast.Message, *ast.Term, *ast.Comment, *ast.GroupComment, *ast.ResourceComment, *ast.Junk:
				default:
					t.Errorf("input %q entry %d: unexpected type %T", src, i, entry)
				}
			}
		}
	})
}

func TestParse_ErrorLimit(t *testing.T) {
	malformed := strings.Repeat("#bad-comment-line\n", 150)

	t.Run("cap of 100 yields exactly 100 junk entries", func(t *testing.T) {
		result, _ := parseSrc(t, malformed, Options{MaxParseErrors: DefaultMaxParseErrors})
		if got := countJunk(result.Resource); got != 100 {
			t.Fatalf("junk = %d, want 100", got)
		}
		found := false
		for _, d := range result.Bag.Items() {
			if d.Code == diag.SynErrorLimitReached {
				found = true
			}
		}
		if !found {
			t.Error("expected SynErrorLimitReached warning")
		}
	})

	t.Run("zero disables the cap", func(t *testing.T) {
		result, _ := parseSrc(t, malformed, Options{MaxParseErrors: 0})
		if got := countJunk(result.Resource); got != 150 {
			t.Fatalf("junk = %d, want 150", got)
		}
	})
}

func TestParse_DepthGuard(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"nested placeables", "m = " + strings.Repeat("{", 8) + `"x"` + strings.Repeat("}", 8) + "\n"},
		{"call arguments", "m = { F(F(F(F(F(F(1)))))) }\n"},
		{"variant values", "m = { $a ->\n   *[x] { $b ->\n       *[y] { $c ->\n           *[z] { $d ->\n               *[w] deep\n            }\n        }\n    }\n }\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, _ := parseSrc(t, tt.src, Options{MaxNestingDepth: 3})
			if countJunk(result.Resource) != 1 {
				t.Fatalf("junk = %d, want 1", countJunk(result.Resource))
			}
			found := false
			for _, d := range result.Bag.Items() {
				if d.Code == diag.SynDepthExceeded {
					found = true
				}
			}
			if !found {
				t.Errorf("expected SynDepthExceeded, got %v", result.Bag.Items())
			}
		})
	}
}

func TestParse_TokenLengthCaps(t *testing.T) {
	t.Run("identifier", func(t *testing.T) {
		src := strings.Repeat("a", 50) + " = x\n"
		result, _ := parseSrc(t, src, Options{MaxIdentLen: 8})
		if countJunk(result.Resource) != 1 {
			t.Fatalf("junk = %d, want 1", countJunk(result.Resource))
		}
	})
	t.Run("string literal", func(t *testing.T) {
		src := `m = { "` + strings.Repeat("x", 100) + `" }` + "\n"
		result, _ := parseSrc(t, src, Options{MaxStringLen: 16})
		if countJunk(result.Resource) != 1 {
			t.Fatalf("junk = %d, want 1", countJunk(result.Resource))
		}
	})
	t.Run("number literal", func(t *testing.T) {
		src := "m = { " + strings.Repeat("9", 100) + " }\n"
		result, _ := parseSrc(t, src, Options{MaxNumberLen: 16})
		if countJunk(result.Resource) != 1 {
			t.Fatalf("junk = %d, want 1", countJunk(result.Resource))
		}
	})
}

func TestParse_StringEscapes(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"backslash and quote", `m = { "a\\b\"c" }` + "\n", `a\b"c`},
		{"u escape", `m = { "\u0041" }` + "\n", "A"},
		{"U escape", `m = { "\U01F602" }` + "\n", "\U0001F602"},
		{"surrogate becomes replacement", `m = { "\uD800" }` + "\n", "�"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, _ := parseSrc(t, tt.src, Options{})
			if result.Bag.HasErrors() {
				t.Fatalf("unexpected errors: %v", result.Bag.Items())
			}
			msg := firstMessage(t, result.Resource)
			pl := msg.Value.Elements[0].(*ast.Placeable)
			lit := pl.Expression.(*ast.StringLiteral)
			if lit.Value != tt.want {
				t.Errorf("value = %q, want %q", lit.Value, tt.want)
			}
		})
	}
}

func TestParse_SelectExpression(t *testing.T) {
	t.Run("one line", func(t *testing.T) {
		result, _ := parseSrc(t, "msg = { $count -> [one] one item *[other] { $count } items }\n", Options{})
		if result.Bag.HasErrors() {
			t.Fatalf("unexpected errors: %v", result.Bag.Items())
		}
		msg := firstMessage(t, result.Resource)
		pl := msg.Value.Elements[0].(*ast.Placeable)
		sel, ok := pl.Expression.(*ast.SelectExpression)
		if !ok {
			t.Fatalf("expression = %T, want select", pl.Expression)
		}
		if len(sel.Variants) != 2 {
			t.Fatalf("variants = %d, want 2", len(sel.Variants))
		}
		if sel.Variants[0].Default || !sel.Variants[1].Default {
			t.Error("default marker on wrong variant")
		}
		if got := textValue(t, sel.Variants[0].Value); got != "one item" {
			t.Errorf("variant[0] = %q, want %q", got, "one item")
		}
	})

	t.Run("multiline", func(t *testing.T) {
		src := "emails =\n    { $n ->\n        [one] one email\n       *[other] { $n } emails\n    }\n"
		result, _ := parseSrc(t, src, Options{})
		if result.Bag.HasErrors() {
			t.Fatalf("unexpected errors: %v", result.Bag.Items())
		}
		msg := firstMessage(t, result.Resource)
		if len(msg.Value.Elements) != 1 {
			t.Fatalf("elements = %d, want 1", len(msg.Value.Elements))
		}
	})

	t.Run("brackets in variant text stay text", func(t *testing.T) {
		result, _ := parseSrc(t, "m = { $x ->\n   *[other] price [USD]\n}\n", Options{})
		if result.Bag.HasErrors() {
			t.Fatalf("unexpected errors: %v", result.Bag.Items())
		}
		msg := firstMessage(t, result.Resource)
		pl := msg.Value.Elements[0].(*ast.Placeable)
		sel := pl.Expression.(*ast.SelectExpression)
		if len(sel.Variants) != 1 {
			t.Fatalf("variants = %d, want 1", len(sel.Variants))
		}
		if got := textValue(t, sel.Variants[0].Value); got != "price [USD]" {
			t.Errorf("variant value = %q, want %q", got, "price [USD]")
		}
	})

	t.Run("missing default is junk", func(t *testing.T) {
		result, _ := parseSrc(t, "m = { $n ->\n    [one] x\n}\n", Options{})
		if countJunk(result.Resource) != 1 {
			t.Fatal("expected junk for select without default")
		}
	})

	t.Run("message selector rejected", func(t *testing.T) {
		result, _ := parseSrc(t, "m = { other -> \n   *[x] y\n}\n", Options{})
		if countJunk(result.Resource) != 1 {
			t.Fatal("expected junk for message selector")
		}
	})

	t.Run("term attribute selector allowed", func(t *testing.T) {
		result, _ := parseSrc(t, "m = { -brand.gender ->\n   *[other] x\n}\n", Options{})
		if result.Bag.HasErrors() {
			t.Fatalf("unexpected errors: %v", result.Bag.Items())
		}
	})
}

func TestParse_CallArguments(t *testing.T) {
	t.Run("positional and named", func(t *testing.T) {
		result, _ := parseSrc(t, `m = { NUMBER($x, minimumFractionDigits: 2) }`+"\n", Options{})
		if result.Bag.HasErrors() {
			t.Fatalf("unexpected errors: %v", result.Bag.Items())
		}
		msg := firstMessage(t, result.Resource)
		pl := msg.Value.Elements[0].(*ast.Placeable)
		fn := pl.Expression.(*ast.FunctionReference)
		if fn.ID.Name != "NUMBER" {
			t.Errorf("callee = %q", fn.ID.Name)
		}
		if len(fn.Arguments.Positional) != 1 || len(fn.Arguments.Named) != 1 {
			t.Errorf("args = %d/%d, want 1/1", len(fn.Arguments.Positional), len(fn.Arguments.Named))
		}
	})

	t.Run("lowercase callee rejected", func(t *testing.T) {
		result, _ := parseSrc(t, "m = { number(1) }\n", Options{})
		if countJunk(result.Resource) != 1 {
			t.Fatal("expected junk for lowercase callee")
		}
	})

	t.Run("named argument value must be literal", func(t *testing.T) {
		result, _ := parseSrc(t, "m = { NUMBER(1, opt: $var) }\n", Options{})
		if countJunk(result.Resource) != 1 {
			t.Fatal("expected junk for non-literal named argument")
		}
	})

	t.Run("positional after named rejected", func(t *testing.T) {
		result, _ := parseSrc(t, `m = { NUMBER(opt: 1, 2) }`+"\n", Options{})
		if countJunk(result.Resource) != 1 {
			t.Fatal("expected junk for positional after named")
		}
	})
}

func TestParse_NeverPanics(t *testing.T) {
	inputs := []string{
		"m = {\n", "m = }\n", "m = { $ }\n", "m = { -> }\n", "m = \"\n",
		"m = { NUMBER( }\n", "m = { $a -> }\n", "m = { $a ->\n*[x]\n}\n",
		strings.Repeat("{", 1000), "m = " + strings.Repeat("{ ", 500),
	}
	for i, src := range inputs {
		t.Run(fmt.Sprintf("input_%d", i), func(t *testing.T) {
			result, _ := parseSrc(t, src, Options{})
			if result.Resource == nil {
				t.Fatal("Parse returned nil resource")
			}
		})
	}
}
