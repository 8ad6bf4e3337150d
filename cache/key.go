package cache

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// KeySeparator defines the delimiter used between cache key segments.
const KeySeparator = "::"

// keyEscaper rewrites the characters that carry structure inside a key
// (segment separators, tag delimiters, keyword assignment) so that client
// strings and names can never forge segment boundaries. Without it,
// "a::str:b" as one argument would produce the same key as "a" and "b" as
// two.
var keyEscaper = strings.NewReplacer("%", "%25", ":", "%3A", "=", "%3D")

// OperationKind identifies the three operations a proxy intercepts.
type OperationKind int

const (
	// KindAttribute is an attribute read by name.
	KindAttribute OperationKind = iota

	// KindItem is an item read by index or key.
	KindItem

	// KindCall is a call with positional and keyword arguments.
	KindCall
)

// String returns the kind's key prefix.
func (k OperationKind) String() string {
	switch k {
	case KindAttribute:
		return "attr"
	case KindItem:
		return "item"
	case KindCall:
		return "call"
	default:
		return "unknown"
	}
}

// Arg is the canonical, type-tagged encoding of a single operation argument.
type Arg string

// KwArg pairs a keyword name with its canonically encoded argument.
type KwArg struct {
	Name string
	Arg  Arg
}

// Fragment is the immutable canonical encoding of one operation. Two
// fragments describing the same logical operation compare equal through
// their Key strings.
type Fragment struct {
	kind   OperationKind
	name   string
	args   []Arg
	kwargs []KwArg
}

// Kind returns the operation kind encoded in the fragment.
func (f Fragment) Kind() OperationKind { return f.kind }

// Key returns the deterministic string form of the fragment. It doubles as
// the child-map key within Node trees and as the fragment descriptor in the
// portable serialized form.
func (f Fragment) Key() string {
	parts := []string{f.kind.String()}

	if f.kind == KindAttribute {
		parts = append(parts, keyEscaper.Replace(f.name))
	}

	for _, a := range f.args {
		parts = append(parts, string(a))
	}

	for _, kw := range f.kwargs {
		parts = append(parts, "kw:"+keyEscaper.Replace(kw.Name)+"="+string(kw.Arg))
	}

	return strings.Join(parts, KeySeparator)
}

// KeyPather is implemented by values that can stand in for themselves in a
// cache key through the recorded key path that produced them. The proxy
// type implements it, which is what makes results composable: passing a
// recorded sub-object back into a later call yields the same fragment when
// the sequence is replayed.
type KeyPather interface {
	KeyPath() string
}

// KeyCodec turns operations into canonical key fragments. It is exported so
// callers can substitute alternate canonicalization strategies, for example
// one that namespaces attribute names.
type KeyCodec interface {
	EncodeAttribute(name string) Fragment
	EncodeItem(key any) (Fragment, error)
	EncodeCall(args []any, kwargs map[string]any) (Fragment, error)
}

// defaultKeyCodec implements KeyCodec with the type-tagged encoding
// documented on the package. It produces stable fragments across runs and
// processes for every encodable argument type.
type defaultKeyCodec struct{}

// NewDefaultKeyCodec creates a new instance of the default key codec.
func NewDefaultKeyCodec() KeyCodec {
	return &defaultKeyCodec{}
}

// EncodeAttribute builds the fragment for an attribute read.
func (c *defaultKeyCodec) EncodeAttribute(name string) Fragment {
	return Fragment{kind: KindAttribute, name: name}
}

// EncodeItem builds the fragment for an item read. The index must be a
// primitive or a KeyPather.
func (c *defaultKeyCodec) EncodeItem(key any) (Fragment, error) {
	arg, err := c.encodeArg(key)
	if err != nil {
		return Fragment{}, err
	}
	return Fragment{kind: KindItem, args: []Arg{arg}}, nil
}

// EncodeCall builds the fragment for a call. Keyword arguments are sorted
// by name so that map iteration order never leaks into the key.
func (c *defaultKeyCodec) EncodeCall(args []any, kwargs map[string]any) (Fragment, error) {
	frag := Fragment{kind: KindCall}

	for i, a := range args {
		arg, err := c.encodeArg(a)
		if err != nil {
			return Fragment{}, fmt.Errorf("positional argument %d: %w", i, err)
		}
		frag.args = append(frag.args, arg)
	}

	if len(kwargs) > 0 {
		names := make([]string, 0, len(kwargs))
		for name := range kwargs {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			arg, err := c.encodeArg(kwargs[name])
			if err != nil {
				return Fragment{}, fmt.Errorf("keyword argument %q: %w", name, err)
			}
			frag.kwargs = append(frag.kwargs, KwArg{Name: name, Arg: arg})
		}
	}

	return frag, nil
}

// encodeArg canonicalizes a single argument. Integer widths collapse to a
// single tag so that e.g. int(2) and int64(2) address the same child.
func (c *defaultKeyCodec) encodeArg(v any) (Arg, error) {
	switch t := v.(type) {
	case nil:
		return "nil", nil
	case string:
		return Arg("str:" + keyEscaper.Replace(t)), nil
	case bool:
		return Arg("bool:" + strconv.FormatBool(t)), nil
	case int:
		return Arg("int:" + strconv.FormatInt(int64(t), 10)), nil
	case int8:
		return Arg("int:" + strconv.FormatInt(int64(t), 10)), nil
	case int16:
		return Arg("int:" + strconv.FormatInt(int64(t), 10)), nil
	case int32:
		return Arg("int:" + strconv.FormatInt(int64(t), 10)), nil
	case int64:
		return Arg("int:" + strconv.FormatInt(t, 10)), nil
	case uint:
		if uint64(t) > math.MaxInt64 {
			return "", fmt.Errorf("%w: %d exceeds the canonical integer range", ErrUnencodableArgument, t)
		}
		return Arg("int:" + strconv.FormatInt(int64(t), 10)), nil
	case uint8:
		return Arg("int:" + strconv.FormatUint(uint64(t), 10)), nil
	case uint16:
		return Arg("int:" + strconv.FormatUint(uint64(t), 10)), nil
	case uint32:
		return Arg("int:" + strconv.FormatUint(uint64(t), 10)), nil
	case uint64:
		if t > math.MaxInt64 {
			return "", fmt.Errorf("%w: %d exceeds the canonical integer range", ErrUnencodableArgument, t)
		}
		return Arg("int:" + strconv.FormatInt(int64(t), 10)), nil
	case float32:
		return Arg("float:" + strconv.FormatFloat(float64(t), 'g', -1, 64)), nil
	case float64:
		return Arg("float:" + strconv.FormatFloat(t, 'g', -1, 64)), nil
	case KeyPather:
		return Arg("path:" + t.KeyPath()), nil
	default:
		return "", fmt.Errorf("%w: %T has no stable identity", ErrUnencodableArgument, v)
	}
}

// NormalizePrimitive collapses the primitive value space to the canonical
// representation stored in nodes and portable trees: string, int64, float64,
// bool or nil. The second return is false for non-primitive values and for
// unsigned integers beyond the int64 range, which cannot be represented
// without silently changing sign.
func NormalizePrimitive(v any) (any, bool) {
	switch t := v.(type) {
	case nil:
		return nil, true
	case string, bool, int64, float64:
		return t, true
	case int:
		return int64(t), true
	case int8:
		return int64(t), true
	case int16:
		return int64(t), true
	case int32:
		return int64(t), true
	case uint:
		if uint64(t) > math.MaxInt64 {
			return nil, false
		}
		return int64(t), true
	case uint8:
		return int64(t), true
	case uint16:
		return int64(t), true
	case uint32:
		return int64(t), true
	case uint64:
		if t > math.MaxInt64 {
			return nil, false
		}
		return int64(t), true
	case float32:
		return float64(t), true
	default:
		return nil, false
	}
}
