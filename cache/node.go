package cache

import "fmt"

// Node is one node of the recorded-result tree. It holds the result of the
// operation that produced it plus one child per operation performed on that
// result. A node never keys operations performed on a sibling's result.
type Node struct {
	value    any
	hasValue bool
	ref      bool

	children map[string]*Node
	order    []string
}

// NewNode returns an empty node with no recorded result.
func NewNode() *Node {
	return &Node{children: make(map[string]*Node)}
}

// NewRootNode returns the tree root standing in for the originally wrapped
// object. The root carries an identity marker rather than a value: its
// children hold everything that was observed about the object.
func NewRootNode() *Node {
	n := NewNode()
	n.hasValue = true
	n.ref = true
	return n
}

// ChildFor returns the child recorded for the fragment, creating and
// inserting an empty one if absent. Creation never disturbs an existing
// child's recorded state.
func (n *Node) ChildFor(frag Fragment) *Node {
	key := frag.Key()
	if child, ok := n.children[key]; ok {
		return child
	}
	child := NewNode()
	n.children[key] = child
	n.order = append(n.order, key)
	return child
}

// Lookup returns the child recorded for the fragment, or ErrCacheMiss when
// no such child exists. It never mutates the tree.
func (n *Node) Lookup(frag Fragment) (*Node, error) {
	key := frag.Key()
	child, ok := n.children[key]
	if !ok {
		return nil, fmt.Errorf("%w: no recorded result for %q", ErrCacheMiss, key)
	}
	return child, nil
}

// SetResult records a primitive result value, overwriting any previous
// recording. The value is normalized to the canonical primitive space; a
// non-primitive value is rejected.
func (n *Node) SetResult(v any) error {
	norm, ok := NormalizePrimitive(v)
	if !ok {
		return fmt.Errorf("%w: %T is not a primitive result", ErrUnencodableArgument, v)
	}
	n.value = norm
	n.hasValue = true
	n.ref = false
	return nil
}

// SetRefResult records that the result was a further-proxyable reference.
// The reference carries no value of its own; everything known about it
// lives in this node's children.
func (n *Node) SetRefResult() {
	n.value = nil
	n.hasValue = true
	n.ref = true
}

// HasValue reports whether a result has been recorded. It distinguishes
// "not yet recorded" from "recorded as nil".
func (n *Node) HasValue() bool { return n.hasValue }

// IsRef reports whether the recorded result was a reference.
func (n *Node) IsRef() bool { return n.ref }

// Value returns the recorded primitive value. Only meaningful when
// HasValue() is true and IsRef() is false.
func (n *Node) Value() any { return n.value }

// ChildCount returns the number of recorded children.
func (n *Node) ChildCount() int { return len(n.children) }
