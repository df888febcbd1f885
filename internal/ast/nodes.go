package ast

import (
	"lingo/internal/diag"
	"lingo/internal/source"
)

// Node is implemented by every AST node type.
type Node interface {
	Span() source.Span
	node()
}

// Base carries the byte span every node is annotated with.
type Base struct {
	Loc source.Span
}

func (b *Base) Span() source.Span { return b.Loc }
func (*Base) node()               {}

// Entry is a top-level resource entry: Message, Term, one of the comment
// kinds, or Junk.
type Entry interface {
	Node
	entry()
}

// Resource is the root node of one parsed FTL file. Entries appear in
// declaration order; duplicates are preserved here and flagged by the
// validator.
type Resource struct {
	Base
	Body []Entry
}

// Identifier names a message, term, attribute, variant, variable,
// function, or named argument.
type Identifier struct {
	Base
	Name string
}

// Comment is a single-# comment, attached to a Message/Term when it
// immediately precedes one.
type Comment struct {
	Base
	Content string
}

// GroupComment is a double-# standalone comment.
type GroupComment struct {
	Base
	Content string
}

// ResourceComment is a triple-# standalone comment.
type ResourceComment struct {
	Base
	Content string
}

// Message is a translation unit. Value may be nil only when the message
// has at least one attribute.
type Message struct {
	Base
	ID         *Identifier
	Value      *Pattern
	Attributes []*Attribute
	Comment    *Comment
}

// Term is a private translation unit referenced as -id. Value is
// mandatory; the parser rejects terms without one.
type Term struct {
	Base
	ID         *Identifier
	Value      *Pattern
	Attributes []*Attribute
	Comment    *Comment
}

// Attribute is a named sub-pattern of a Message or Term.
type Attribute struct {
	Base
	ID    *Identifier
	Value *Pattern
}

// Pattern is the ordered text/placeable content of a value.
type Pattern struct {
	Base
	Elements []PatternElement
}

// PatternElement is a TextElement or a Placeable.
type PatternElement interface {
	Node
	patternElement()
}

// TextElement is a literal run of text inside a pattern.
type TextElement struct {
	Base
	Value string
}

// Placeable is a { ... } interpolation site inside a pattern.
type Placeable struct {
	Base
	Expression Expression
}

// Expression is anything that can appear inside a placeable.
type Expression interface {
	Node
	expression()
}

// StringLiteral is a quoted string literal.
type StringLiteral struct {
	Base
	Value string
}

// NumberLiteral keeps the literal spelling; precision-sensitive
// consumers parse it themselves.
type NumberLiteral struct {
	Base
	Value string
}

// MessageReference references another message, optionally one of its
// attributes.
type MessageReference struct {
	Base
	ID        *Identifier
	Attribute *Identifier
}

// TermReference references a term, optionally an attribute, optionally
// with call arguments parameterizing the term.
type TermReference struct {
	Base
	ID        *Identifier
	Attribute *Identifier
	Arguments *CallArguments
}

// VariableReference references a runtime argument ($name).
type VariableReference struct {
	Base
	ID *Identifier
}

// FunctionReference is a call to a registered function (uppercase name).
type FunctionReference struct {
	Base
	ID        *Identifier
	Arguments *CallArguments
}

// CallArguments holds positional and named arguments of a function or
// term call. Named argument names must be unique; the validator flags
// duplicates.
type CallArguments struct {
	Base
	Positional []Expression
	Named      []*NamedArgument
}

// NamedArgument is one name: literal pair inside CallArguments.
type NamedArgument struct {
	Base
	Name  *Identifier
	Value Expression // StringLiteral or NumberLiteral
}

// SelectExpression branches on a selector. Variants is never empty and
// exactly one variant carries Default.
type SelectExpression struct {
	Base
	Selector Expression
	Variants []*Variant
}

// VariantKey is an Identifier or a NumberLiteral.
type VariantKey interface {
	Node
	variantKey()
}

// Variant is one labeled branch of a SelectExpression.
type Variant struct {
	Base
	Key     VariantKey
	Value   *Pattern
	Default bool
}

// Junk holds unparseable source text. It is never silently dropped and
// always carries at least one annotation.
type Junk struct {
	Base
	Content     string
	Annotations []diag.Diagnostic
}

func (*Message) entry()         {}
func (*Term) entry()            {}
func (*Comment) entry()         {}
func (*GroupComment) entry()    {}
func (*ResourceComment) entry() {}
func (*Junk) entry()            {}

func (*TextElement) patternElement() {}
func (*Placeable) patternElement()   {}

func (*StringLiteral) expression()     {}
func (*NumberLiteral) expression()     {}
func (*MessageReference) expression()  {}
func (*TermReference) expression()     {}
func (*VariableReference) expression() {}
func (*FunctionReference) expression() {}
func (*SelectExpression) expression()  {}
func (*Placeable) expression()         {}

func (*Identifier) variantKey()    {}
func (*NumberLiteral) variantKey() {}
