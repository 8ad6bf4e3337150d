package proxycache

import (
	"fmt"

	"github.com/zyga/cachingproxy/cache"
)

// PathSeparator joins fragment keys into the key path of a proxy.
const PathSeparator = "/"

// Interface assertion so proxies can stand in for themselves as call
// arguments through their key path.
var _ cache.KeyPather = (*Proxy)(nil)

// Proxy is the stand-in value handed to client code in place of a real or
// replayed object. It pairs an optional real reference with an optional
// node in the session's cache tree; which of the two serves an operation is
// decided by the session mode at operation time.
//
// The cache tree is owned by the session that created it. Proxies hold
// non-owning references into the tree, so discarding a child proxy never
// discards recordings.
type Proxy struct {
	session *Session
	real    Object
	node    *cache.Node
	path    string
}

// KeyPath returns the canonical key path that produced this proxy. The
// root proxy has an empty path.
func (p *Proxy) KeyPath() string { return p.path }

// Get performs an attribute read. Primitive results are returned
// unwrapped; reference results come back as a further *Proxy.
func (p *Proxy) Get(name string) (any, error) {
	frag := p.session.codec.EncodeAttribute(name)
	return p.dispatch(frag, "attribute read", func(o Object) (Value, error) {
		return o.GetAttribute(name)
	})
}

// Item performs an item read by index or key.
func (p *Proxy) Item(key any) (any, error) {
	frag, err := p.session.codec.EncodeItem(key)
	if err != nil {
		return nil, fmt.Errorf("item read at %q: %w", p.path, err)
	}
	return p.dispatch(frag, "item read", func(o Object) (Value, error) {
		return o.GetItem(key)
	})
}

// Call invokes the proxied object with positional and keyword arguments.
// Arguments must be primitives or proxies recorded in the same session;
// anything else fails with cache.ErrUnencodableArgument before the real
// object is touched.
func (p *Proxy) Call(args []any, kwargs map[string]any) (any, error) {
	frag, err := p.session.codec.EncodeCall(args, kwargs)
	if err != nil {
		return nil, fmt.Errorf("call at %q: %w", p.path, err)
	}
	return p.dispatch(frag, "call", func(o Object) (Value, error) {
		return o.Call(args, kwargs)
	})
}

// dispatch is the single decision surface for all mode-dependent behavior.
// Adding a mode or changing precedence happens here and nowhere else.
func (p *Proxy) dispatch(frag cache.Fragment, op string, invoke func(Object) (Value, error)) (any, error) {
	mode := p.session.Mode()
	childPath := joinPath(p.path, frag.Key())
	operationsTotal.WithLabelValues(mode.String(), frag.Kind().String()).Inc()

	if mode.usesCache() && p.node == nil {
		return nil, fmt.Errorf("%s at %q: %w", op, childPath, ErrNoCacheTree)
	}

	switch mode {
	case ModeDisabled:
		v, err := p.invokeReal(op, childPath, invoke)
		if err != nil {
			return nil, err
		}
		return p.compose(v, nil, childPath), nil

	case ModeRecord:
		v, err := p.invokeReal(op, childPath, invoke)
		if err != nil {
			return nil, err
		}
		child := p.node.ChildFor(frag)
		if err := p.record(child, childPath, v); err != nil {
			return nil, err
		}
		return p.compose(v, child, childPath), nil

	case ModeKeep:
		v, err := p.invokeReal(op, childPath, invoke)
		if err != nil {
			return nil, err
		}
		child := p.node.ChildFor(frag)
		if child.HasValue() {
			// First write wins: the prior recording is what callers see.
			// When the recording says reference but the fresh result is a
			// primitive, there is no live object matching the recording
			// anymore; the served proxy is then real-less and operations
			// beneath it fail ErrRealObjectUnavailable rather than mixing
			// the old shape with the new value.
			replayHits.WithLabelValues(mode.String()).Inc()
			return p.replay(child, v.Obj(), childPath), nil
		}
		if err := p.record(child, childPath, v); err != nil {
			return nil, err
		}
		return p.compose(v, child, childPath), nil

	case ModeReadThrough:
		if child, err := p.node.Lookup(frag); err == nil && child.HasValue() {
			replayHits.WithLabelValues(mode.String()).Inc()
			p.session.logger.Debug().Str("path", childPath).Msg("served from cache")
			return p.replay(child, nil, childPath), nil
		}
		v, err := p.invokeReal(op, childPath, invoke)
		if err != nil {
			return nil, err
		}
		child := p.node.ChildFor(frag)
		if err := p.record(child, childPath, v); err != nil {
			return nil, err
		}
		return p.compose(v, child, childPath), nil

	case ModePure:
		child, err := p.node.Lookup(frag)
		if err != nil {
			replayMisses.Inc()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if !child.HasValue() {
			replayMisses.Inc()
			return nil, fmt.Errorf("%s: %w: %q was never recorded", op, cache.ErrCacheMiss, childPath)
		}
		replayHits.WithLabelValues(mode.String()).Inc()
		return p.replay(child, nil, childPath), nil
	}

	return nil, fmt.Errorf("unsupported mode %d", mode)
}

// invokeReal performs the underlying operation on the real object,
// propagating its failure tagged with the operation and path.
func (p *Proxy) invokeReal(op, path string, invoke func(Object) (Value, error)) (Value, error) {
	if p.real == nil {
		return Value{}, fmt.Errorf("%s at %q: %w", op, path, ErrRealObjectUnavailable)
	}
	v, err := invoke(p.real)
	if err != nil {
		return Value{}, &OperationError{Path: path, Op: op, Err: err}
	}
	return v, nil
}

// record stores a freshly obtained result into the child node. It runs
// only after the underlying value is fully in hand, so a failed operation
// never leaves a half-populated node behind.
func (p *Proxy) record(child *cache.Node, path string, v Value) error {
	if v.IsReference() {
		child.SetRefResult()
	} else if err := child.SetResult(v.Prim()); err != nil {
		return fmt.Errorf("record at %q: %w", path, err)
	}
	recordedResults.Inc()
	p.session.trackPath(path)
	p.session.logger.Debug().Str("path", path).Bool("ref", v.IsReference()).Msg("recorded result")
	return nil
}

// compose builds the caller-visible result for a live value: primitives
// unwrapped, references wrapped in a further proxy.
func (p *Proxy) compose(v Value, child *cache.Node, path string) any {
	if !v.IsReference() {
		return v.Prim()
	}
	return &Proxy{session: p.session, real: v.Obj(), node: child, path: path}
}

// replay builds the caller-visible result from a recorded child. The real
// reference is optional; it stays live in keep mode so a later mode switch
// can keep recording beneath the same proxy.
func (p *Proxy) replay(child *cache.Node, real Object, path string) any {
	if child.IsRef() {
		return &Proxy{session: p.session, real: real, node: child, path: path}
	}
	return child.Value()
}

func joinPath(base, key string) string {
	if base == "" {
		return key
	}
	return base + PathSeparator + key
}
