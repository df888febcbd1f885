package ast

import (
	"errors"
	"fmt"
)

// Transformation errors. All of them indicate misuse of the rewriting
// API, never malformed input, so Transform surfaces them as hard errors
// instead of producing a structurally invalid tree.
var (
	ErrTransformDepthExceeded = errors.New("ast: transform depth exceeded")
	ErrRemoveRequired         = errors.New("ast: cannot remove required field")
	ErrSpliceScalar           = errors.New("ast: cannot splice into scalar field")
	ErrBadReplacement         = errors.New("ast: replacement node has wrong type")
)

type editOp uint8

const (
	opKeep editOp = iota
	opReplace
	opRemove
	opSplice
)

// Edit is the outcome of a TransformFunc for one node: keep it, replace
// it with a single node, remove it, or splice in zero or more nodes.
type Edit struct {
	op    editOp
	nodes []Node
}

// Keep leaves the node as is (children rewrites still apply).
func Keep() Edit { return Edit{op: opKeep} }

// Replace substitutes the node with n. The replacement must satisfy the
// type of the field it lands in; Transform rejects mismatches.
func Replace(n Node) Edit { return Edit{op: opReplace, nodes: []Node{n}} }

// Remove deletes the node. Legal only for optional scalar fields and
// collection elements; removing a required field is an error.
func Remove() Edit { return Edit{op: opRemove} }

// Splice substitutes the node with zero or more nodes. Legal only for
// collection elements.
func Splice(nodes ...Node) Edit { return Edit{op: opSplice, nodes: nodes} }

// TransformFunc is invoked for every node after its children have been
// rewritten. The node passed in is already a fresh copy when any child
// changed; unchanged subtrees are shared with the input tree.
type TransformFunc func(Node) Edit

// Transform produces a new tree; the input is never mutated. Unchanged
// subtrees are reused by reference.
func Transform(root Node, fn TransformFunc) (Node, error) {
	return TransformDepth(root, fn, DefaultMaxWalkDepth)
}

// TransformDepth is Transform with an explicit depth limit.
func TransformDepth(root Node, fn TransformFunc, maxDepth int) (Node, error) {
	t := &transformer{fn: fn}
	out, err := t.scalar(root, "root", true, maxDepth)
	if err != nil {
		return nil, err
	}
	return out, nil
}

type transformer struct {
	fn TransformFunc
}

// apply rewrites children of n (copying on change) and runs the hook.
func (t *transformer) apply(n Node, depth int) (Edit, error) {
	if depth <= 0 {
		return Edit{}, fmt.Errorf("%w at %s", ErrTransformDepthExceeded, n.Span())
	}
	rewritten, err := t.rewriteChildren(n, depth-1)
	if err != nil {
		return Edit{}, err
	}
	ed := t.fn(rewritten)
	if ed.op == opKeep {
		return Edit{op: opReplace, nodes: []Node{rewritten}}, nil
	}
	return ed, nil
}

// scalar places the rewrite result of n into a single-node field.
func (t *transformer) scalar(n Node, field string, required bool, depth int) (Node, error) {
	if isNilNode(n) {
		return nil, nil
	}
	ed, err := t.apply(n, depth)
	if err != nil {
		return nil, err
	}
	switch ed.op {
	case opRemove:
		if required {
			return nil, fmt.Errorf("%w: %s", ErrRemoveRequired, field)
		}
		return nil, nil
	case opSplice:
		return nil, fmt.Errorf("%w: %s", ErrSpliceScalar, field)
	case opReplace:
		if len(ed.nodes) != 1 || ed.nodes[0] == nil {
			if required {
				return nil, fmt.Errorf("%w: %s", ErrRemoveRequired, field)
			}
			return nil, nil
		}
		return ed.nodes[0], nil
	}
	return n, nil
}

// list places rewrite results of a collection field, splicing as needed.
func transformList[T Node](t *transformer, in []T, field string, depth int) ([]T, bool, error) {
	var out []T
	changed := false
	for _, el := range in {
		ed, err := t.apply(el, depth)
		if err != nil {
			return nil, false, err
		}
		var repl []Node
		switch ed.op {
		case opRemove:
			changed = true
			continue
		case opSplice:
			changed = true
			repl = ed.nodes
		case opReplace:
			repl = ed.nodes
			if len(repl) != 1 || !sameNode(repl[0], Node(el)) {
				changed = true
			}
		}
		for _, r := range repl {
			typed, ok := r.(T)
			if !ok {
				return nil, false, fmt.Errorf("%w: %T in %s", ErrBadReplacement, r, field)
			}
			out = append(out, typed)
		}
	}
	if !changed {
		return in, false, nil
	}
	return out, true, nil
}

func sameNode(a, b Node) bool {
	return a == b
}

func isNilNode(n Node) bool {
	switch v := n.(type) {
	case nil:
		return true
	case *Identifier:
		return v == nil
	case *Pattern:
		return v == nil
	case *Comment:
		return v == nil
	case *CallArguments:
		return v == nil
	}
	return false
}

// as validates a scalar replacement type for a typed field.
func as[T Node](n Node, field string) (T, error) {
	var zero T
	if n == nil {
		return zero, nil
	}
	typed, ok := n.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %T in %s", ErrBadReplacement, n, field)
	}
	return typed, nil
}

//nolint:gocyclo // one arm per node type, each arm trivial
func (t *transformer) rewriteChildren(n Node, depth int) (Node, error) {
	switch v := n.(type) {
	case *Resource:
		body, changed, err := transformList(t, v.Body, "Resource.Body", depth)
		if err != nil {
			return nil, err
		}
		if !changed {
			return v, nil
		}
		cp := *v
		cp.Body = body
		return &cp, nil

	case *Message:
		// a Message may live on attributes alone, so its value pattern
		// is removable; a Term's value is mandatory
		return t.rewriteMessageLike(v.ID, v.Value, v.Attributes, v.Comment, "Message.Value", false, depth, func(id *Identifier, val *Pattern, attrs []*Attribute, c *Comment, changed bool) Node {
			if !changed {
				return v
			}
			cp := *v
			cp.ID, cp.Value, cp.Attributes, cp.Comment = id, val, attrs, c
			return &cp
		})

	case *Term:
		return t.rewriteMessageLike(v.ID, v.Value, v.Attributes, v.Comment, "Term.Value", true, depth, func(id *Identifier, val *Pattern, attrs []*Attribute, c *Comment, changed bool) Node {
			if !changed {
				return v
			}
			cp := *v
			cp.ID, cp.Value, cp.Attributes, cp.Comment = id, val, attrs, c
			return &cp
		})

	case *Attribute:
		idn, err := t.scalar(v.ID, "Attribute.ID", true, depth)
		if err != nil {
			return nil, err
		}
		valn, err := t.scalar(v.Value, "Attribute.Value", true, depth)
		if err != nil {
			return nil, err
		}
		id, err := as[*Identifier](idn, "Attribute.ID")
		if err != nil {
			return nil, err
		}
		val, err := as[*Pattern](valn, "Attribute.Value")
		if err != nil {
			return nil, err
		}
		if id == v.ID && val == v.Value {
			return v, nil
		}
		cp := *v
		cp.ID, cp.Value = id, val
		return &cp, nil

	case *Pattern:
		els, changed, err := transformList(t, v.Elements, "Pattern.Elements", depth)
		if err != nil {
			return nil, err
		}
		if !changed {
			return v, nil
		}
		cp := *v
		cp.Elements = els
		return &cp, nil

	case *Placeable:
		exprn, err := t.scalar(v.Expression, "Placeable.Expression", true, depth)
		if err != nil {
			return nil, err
		}
		expr, err := as[Expression](exprn, "Placeable.Expression")
		if err != nil {
			return nil, err
		}
		if expr == v.Expression {
			return v, nil
		}
		cp := *v
		cp.Expression = expr
		return &cp, nil

	case *MessageReference:
		idn, err := t.scalar(v.ID, "MessageReference.ID", true, depth)
		if err != nil {
			return nil, err
		}
		attrn, err := t.scalar(nilableIdent(v.Attribute), "MessageReference.Attribute", false, depth)
		if err != nil {
			return nil, err
		}
		id, err := as[*Identifier](idn, "MessageReference.ID")
		if err != nil {
			return nil, err
		}
		attr, err := as[*Identifier](attrn, "MessageReference.Attribute")
		if err != nil {
			return nil, err
		}
		if id == v.ID && attr == v.Attribute {
			return v, nil
		}
		cp := *v
		cp.ID, cp.Attribute = id, attr
		return &cp, nil

	case *TermReference:
		idn, err := t.scalar(v.ID, "TermReference.ID", true, depth)
		if err != nil {
			return nil, err
		}
		attrn, err := t.scalar(nilableIdent(v.Attribute), "TermReference.Attribute", false, depth)
		if err != nil {
			return nil, err
		}
		argsn, err := t.scalar(v.Arguments, "TermReference.Arguments", false, depth)
		if err != nil {
			return nil, err
		}
		id, err := as[*Identifier](idn, "TermReference.ID")
		if err != nil {
			return nil, err
		}
		attr, err := as[*Identifier](attrn, "TermReference.Attribute")
		if err != nil {
			return nil, err
		}
		args, err := as[*CallArguments](argsn, "TermReference.Arguments")
		if err != nil {
			return nil, err
		}
		if id == v.ID && attr == v.Attribute && args == v.Arguments {
			return v, nil
		}
		cp := *v
		cp.ID, cp.Attribute, cp.Arguments = id, attr, args
		return &cp, nil

	case *VariableReference:
		idn, err := t.scalar(v.ID, "VariableReference.ID", true, depth)
		if err != nil {
			return nil, err
		}
		id, err := as[*Identifier](idn, "VariableReference.ID")
		if err != nil {
			return nil, err
		}
		if id == v.ID {
			return v, nil
		}
		cp := *v
		cp.ID = id
		return &cp, nil

	case *FunctionReference:
		idn, err := t.scalar(v.ID, "FunctionReference.ID", true, depth)
		if err != nil {
			return nil, err
		}
		argsn, err := t.scalar(v.Arguments, "FunctionReference.Arguments", true, depth)
		if err != nil {
			return nil, err
		}
		id, err := as[*Identifier](idn, "FunctionReference.ID")
		if err != nil {
			return nil, err
		}
		args, err := as[*CallArguments](argsn, "FunctionReference.Arguments")
		if err != nil {
			return nil, err
		}
		if id == v.ID && args == v.Arguments {
			return v, nil
		}
		cp := *v
		cp.ID, cp.Arguments = id, args
		return &cp, nil

	case *CallArguments:
		pos, posChanged, err := transformList(t, v.Positional, "CallArguments.Positional", depth)
		if err != nil {
			return nil, err
		}
		named, namedChanged, err := transformList(t, v.Named, "CallArguments.Named", depth)
		if err != nil {
			return nil, err
		}
		if !posChanged && !namedChanged {
			return v, nil
		}
		cp := *v
		cp.Positional, cp.Named = pos, named
		return &cp, nil

	case *NamedArgument:
		namen, err := t.scalar(v.Name, "NamedArgument.Name", true, depth)
		if err != nil {
			return nil, err
		}
		valn, err := t.scalar(v.Value, "NamedArgument.Value", true, depth)
		if err != nil {
			return nil, err
		}
		name, err := as[*Identifier](namen, "NamedArgument.Name")
		if err != nil {
			return nil, err
		}
		val, err := as[Expression](valn, "NamedArgument.Value")
		if err != nil {
			return nil, err
		}
		if name == v.Name && val == v.Value {
			return v, nil
		}
		cp := *v
		cp.Name, cp.Value = name, val
		return &cp, nil

	case *SelectExpression:
		seln, err := t.scalar(v.Selector, "SelectExpression.Selector", true, depth)
		if err != nil {
			return nil, err
		}
		sel, err := as[Expression](seln, "SelectExpression.Selector")
		if err != nil {
			return nil, err
		}
		variants, changed, err := transformList(t, v.Variants, "SelectExpression.Variants", depth)
		if err != nil {
			return nil, err
		}
		if sel == v.Selector && !changed {
			return v, nil
		}
		cp := *v
		cp.Selector, cp.Variants = sel, variants
		return &cp, nil

	case *Variant:
		keyn, err := t.scalar(v.Key, "Variant.Key", true, depth)
		if err != nil {
			return nil, err
		}
		key, err := as[VariantKey](keyn, "Variant.Key")
		if err != nil {
			return nil, err
		}
		valn, err := t.scalar(v.Value, "Variant.Value", true, depth)
		if err != nil {
			return nil, err
		}
		val, err := as[*Pattern](valn, "Variant.Value")
		if err != nil {
			return nil, err
		}
		if key == v.Key && val == v.Value {
			return v, nil
		}
		cp := *v
		cp.Key, cp.Value = key, val
		return &cp, nil

	default:
		// Leaves: Identifier, TextElement, literals, comments, Junk.
		return n, nil
	}
}

func (t *transformer) rewriteMessageLike(
	id *Identifier,
	value *Pattern,
	attrs []*Attribute,
	comment *Comment,
	valueField string,
	valueRequired bool,
	depth int,
	build func(*Identifier, *Pattern, []*Attribute, *Comment, bool) Node,
) (Node, error) {
	idn, err := t.scalar(id, "ID", true, depth)
	if err != nil {
		return nil, err
	}
	newID, err := as[*Identifier](idn, "ID")
	if err != nil {
		return nil, err
	}
	valn, err := t.scalar(value, valueField, valueRequired, depth)
	if err != nil {
		return nil, err
	}
	newVal, err := as[*Pattern](valn, valueField)
	if err != nil {
		return nil, err
	}
	newAttrs, attrsChanged, err := transformList(t, attrs, "Attributes", depth)
	if err != nil {
		return nil, err
	}
	cn, err := t.scalar(comment, "Comment", false, depth)
	if err != nil {
		return nil, err
	}
	newComment, err := as[*Comment](cn, "Comment")
	if err != nil {
		return nil, err
	}
	changed := newID != id || newVal != value || attrsChanged || newComment != comment
	return build(newID, newVal, newAttrs, newComment, changed), nil
}

// nilableIdent keeps a typed nil *Identifier from turning into a
// non-nil Node interface.
func nilableIdent(id *Identifier) Node {
	if id == nil {
		return nil
	}
	return id
}
