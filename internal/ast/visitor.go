package ast

import (
	"errors"
	"fmt"
)

// DefaultMaxWalkDepth bounds generic traversal independently of the
// parser's nesting limit, so a hand-built pathological tree cannot blow
// the stack.
const DefaultMaxWalkDepth = 1000

// ErrWalkDepthExceeded is returned when traversal exceeds its depth limit.
var ErrWalkDepthExceeded = errors.New("ast: walk depth exceeded")

// Visitor is called for every node. A nil return stops descent into the
// node's children; returning a visitor continues with it (go/ast style,
// so per-type behavior is a type switch inside Visit).
type Visitor interface {
	Visit(n Node) Visitor
}

// Walk traverses the tree in depth-first order with the default depth
// limit.
func Walk(v Visitor, n Node) error {
	return WalkDepth(v, n, DefaultMaxWalkDepth)
}

// WalkDepth traverses with an explicit depth limit.
func WalkDepth(v Visitor, n Node, maxDepth int) error {
	if n == nil {
		return nil
	}
	return walk(v, n, maxDepth)
}

func walk(v Visitor, n Node, depth int) error {
	if depth <= 0 {
		return fmt.Errorf("%w at %s", ErrWalkDepthExceeded, n.Span())
	}
	w := v.Visit(n)
	if w == nil {
		return nil
	}
	for _, child := range Children(n) {
		if err := walk(w, child, depth-1); err != nil {
			return err
		}
	}
	return nil
}

type inspector func(Node) bool

func (f inspector) Visit(n Node) Visitor {
	if f(n) {
		return f
	}
	return nil
}

// Inspect calls fn for every node; descent into a node's children stops
// when fn returns false.
func Inspect(n Node, fn func(Node) bool) error {
	return Walk(inspector(fn), n)
}

// Children returns the direct child nodes of n in source order.
// Nil optional fields are skipped.
func Children(n Node) []Node {
	var out []Node
	add := func(c Node) {
		switch v := c.(type) {
		case nil:
			return
		case *Identifier:
			if v == nil {
				return
			}
		case *Pattern:
			if v == nil {
				return
			}
		case *Comment:
			if v == nil {
				return
			}
		case *CallArguments:
			if v == nil {
				return
			}
		}
		out = append(out, c)
	}

	switch v := n.(type) {
	case *Resource:
		for _, e := range v.Body {
			add(e)
		}
	case *Message:
		add(v.ID)
		add(v.Value)
		for _, a := range v.Attributes {
			add(a)
		}
		add(v.Comment)
	case *Term:
		add(v.ID)
		add(v.Value)
		for _, a := range v.Attributes {
			add(a)
		}
		add(v.Comment)
	case *Attribute:
		add(v.ID)
		add(v.Value)
	case *Pattern:
		for _, el := range v.Elements {
			add(el)
		}
	case *Placeable:
		add(v.Expression)
	case *MessageReference:
		add(v.ID)
		if v.Attribute != nil {
			add(v.Attribute)
		}
	case *TermReference:
		add(v.ID)
		if v.Attribute != nil {
			add(v.Attribute)
		}
		add(v.Arguments)
	case *VariableReference:
		add(v.ID)
	case *FunctionReference:
		add(v.ID)
		add(v.Arguments)
	case *CallArguments:
		for _, p := range v.Positional {
			add(p)
		}
		for _, na := range v.Named {
			add(na)
		}
	case *NamedArgument:
		add(v.Name)
		add(v.Value)
	case *SelectExpression:
		add(v.Selector)
		for _, vr := range v.Variants {
			add(vr)
		}
	case *Variant:
		add(v.Key)
		add(v.Value)
	}
	return out
}
