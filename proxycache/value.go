package proxycache

import (
	"fmt"

	"github.com/zyga/cachingproxy/cache"
)

// Object is the capability surface the engine requires from anything it
// proxies. The engine never inspects the value behind it beyond invoking
// these three verbs; their semantics are entirely the implementation's.
type Object interface {
	// GetAttribute resolves a named attribute.
	GetAttribute(name string) (Value, error)

	// GetItem resolves an indexing operation.
	GetItem(key any) (Value, error)

	// Call invokes the object with positional and keyword arguments.
	Call(args []any, kwargs map[string]any) (Value, error)
}

// Value is the tagged result of an operation: either a primitive, at which
// point the interception chain stops, or a reference to a further
// proxyable object. The explicit variant replaces duck-typed "does it
// support more operations" checks.
type Value struct {
	prim  any
	obj   Object
	isObj bool
}

// Primitive builds a primitive Value. The input is normalized to the
// canonical primitive space (string, int64, float64, bool, nil); passing
// anything else is a programming error and panics.
func Primitive(v any) Value {
	norm, ok := cache.NormalizePrimitive(v)
	if !ok {
		panic(fmt.Sprintf("proxycache: %T is not a primitive value", v))
	}
	return Value{prim: norm}
}

// Reference builds a Value referencing a further proxyable object.
func Reference(obj Object) Value {
	if obj == nil {
		panic("proxycache: reference object cannot be nil")
	}
	return Value{obj: obj, isObj: true}
}

// IsReference reports whether the value is a proxyable reference.
func (v Value) IsReference() bool { return v.isObj }

// Prim returns the normalized primitive. Only meaningful when IsReference
// is false.
func (v Value) Prim() any { return v.prim }

// Obj returns the referenced object, or nil for primitives.
func (v Value) Obj() Object { return v.obj }
