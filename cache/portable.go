package cache

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// TreeVersion is the version tag written into every portable tree.
const TreeVersion = 1

// PortableNode is the serialized form of one tree node. Fragment is the
// canonical key string of the operation that produced the node; it is empty
// only on the root.
type PortableNode struct {
	Fragment string          `json:"fragment,omitempty" msgpack:"fragment,omitempty"`
	HasValue bool            `json:"has_value" msgpack:"has_value"`
	Ref      bool            `json:"ref,omitempty" msgpack:"ref,omitempty"`
	Value    any             `json:"value,omitempty" msgpack:"value,omitempty"`
	Children []*PortableNode `json:"children,omitempty" msgpack:"children,omitempty"`
}

// PortableTree is the serialization-ready representation of a recorded
// tree. It is independent of whatever library produced the recorded values
// and can be loaded in an unrelated process.
type PortableTree struct {
	Version int           `json:"version" msgpack:"version"`
	Root    *PortableNode `json:"root" msgpack:"root"`
}

// Dump walks a node tree into its portable representation. Children are
// emitted in insertion order so that encoding is deterministic.
func Dump(n *Node) *PortableTree {
	return &PortableTree{
		Version: TreeVersion,
		Root:    dumpNode(n, ""),
	}
}

func dumpNode(n *Node, fragment string) *PortableNode {
	pn := &PortableNode{
		Fragment: fragment,
		HasValue: n.hasValue,
		Ref:      n.ref,
		Value:    n.value,
	}
	for _, key := range n.order {
		pn.Children = append(pn.Children, dumpNode(n.children[key], key))
	}
	return pn
}

// Load reconstructs a node tree from its portable representation. It fails
// with ErrCorruptCache on missing fields, duplicate sibling fragments,
// non-primitive leaf values, or cyclic input.
func Load(t *PortableTree) (*Node, error) {
	if t == nil || t.Root == nil {
		return nil, fmt.Errorf("%w: missing root", ErrCorruptCache)
	}
	if t.Version != TreeVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrCorruptCache, t.Version)
	}
	seen := make(map[*PortableNode]bool)
	return loadNode(t.Root, true, seen)
}

func loadNode(pn *PortableNode, root bool, seen map[*PortableNode]bool) (*Node, error) {
	if seen[pn] {
		return nil, fmt.Errorf("%w: cyclic structure", ErrCorruptCache)
	}
	seen[pn] = true

	if root && pn.Fragment != "" {
		return nil, fmt.Errorf("%w: root carries fragment %q", ErrCorruptCache, pn.Fragment)
	}

	n := NewNode()
	n.hasValue = pn.HasValue
	n.ref = pn.Ref
	if pn.HasValue && !pn.Ref {
		norm, ok := NormalizePrimitive(normalizeLoadedValue(pn.Value))
		if !ok {
			return nil, fmt.Errorf("%w: non-primitive value %T", ErrCorruptCache, pn.Value)
		}
		n.value = norm
	}

	for _, child := range pn.Children {
		if child == nil {
			return nil, fmt.Errorf("%w: nil child node", ErrCorruptCache)
		}
		if child.Fragment == "" {
			return nil, fmt.Errorf("%w: child without fragment", ErrCorruptCache)
		}
		if _, dup := n.children[child.Fragment]; dup {
			return nil, fmt.Errorf("%w: duplicate sibling fragment %q", ErrCorruptCache, child.Fragment)
		}
		loaded, err := loadNode(child, false, seen)
		if err != nil {
			return nil, err
		}
		n.children[child.Fragment] = loaded
		n.order = append(n.order, child.Fragment)
	}

	return n, nil
}

// normalizeLoadedValue maps decoder-specific number representations back to
// the canonical primitive space before validation.
func normalizeLoadedValue(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t
	default:
		return v
	}
}

// EncodeJSON renders a portable tree as JSON, the human-debuggable
// interchange encoding.
func EncodeJSON(t *PortableTree) ([]byte, error) {
	data, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("encode portable tree: %w", err)
	}
	return data, nil
}

// DecodeJSON parses a JSON portable tree. Numbers are decoded through
// json.Number so that integer leaf values survive the round trip as int64
// rather than collapsing to float64.
func DecodeJSON(data []byte) (*PortableTree, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var t PortableTree
	if err := dec.Decode(&t); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptCache, err)
	}
	return &t, nil
}

// EncodeMsgpack renders a portable tree in msgpack, the compact on-disk
// encoding.
func EncodeMsgpack(t *PortableTree) ([]byte, error) {
	data, err := msgpack.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("encode portable tree: %w", err)
	}
	return data, nil
}

// DecodeMsgpack parses a msgpack portable tree.
func DecodeMsgpack(data []byte) (*PortableTree, error) {
	var t PortableTree
	if err := msgpack.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptCache, err)
	}
	return &t, nil
}
