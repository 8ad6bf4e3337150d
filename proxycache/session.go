package proxycache

import (
	"fmt"
	"sort"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/rs/zerolog"

	"github.com/zyga/cachingproxy/cache"
)

// Session is the explicit configuration handle for one recording or replay
// pass. It owns the mode, the repr mode, the key codec, and every cache
// tree created through Wrap. There are no package-level globals: isolating
// two concurrent recordings is a matter of giving each its own session.
//
// Mode and repr mode follow a documented lifecycle: set them before a
// bounded pass, leave them alone while operations run. Concurrent mode
// mutation while operations are in flight is undefined.
type Session struct {
	mode     Mode
	reprMode ReprMode
	codec    cache.KeyCodec
	logger   zerolog.Logger

	// recorded tracks every key path written during this session so that
	// replay misses can be diagnosed against what was actually captured.
	recorded *xsync.MapOf[string, struct{}]
}

// Option configures a Session.
type Option func(*Session)

// WithMode sets the initial session mode.
func WithMode(m Mode) Option {
	return func(s *Session) { s.mode = m }
}

// WithReprMode sets the initial repr mode.
func WithReprMode(m ReprMode) Option {
	return func(s *Session) { s.reprMode = m }
}

// WithKeyCodec substitutes the key codec used for fragment encoding.
func WithKeyCodec(c cache.KeyCodec) Option {
	return func(s *Session) { s.codec = c }
}

// WithLogger attaches a logger; the default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// NewSession creates a session with caching disabled, real repr, and the
// default key codec, mirroring the safe do-nothing defaults of the
// recording layer: until a mode is chosen nothing is intercepted or stored.
func NewSession(opts ...Option) *Session {
	s := &Session{
		mode:     ModeDisabled,
		reprMode: ReprReal,
		codec:    cache.NewDefaultKeyCodec(),
		logger:   zerolog.Nop(),
		recorded: xsync.NewMapOf[string, struct{}](),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetMode switches the session mode. Intended between bounded passes, not
// while operations are in flight.
func (s *Session) SetMode(m Mode) { s.mode = m }

// Mode returns the current session mode.
func (s *Session) Mode() Mode { return s.mode }

// SetReprMode switches how proxies render for display.
func (s *Session) SetReprMode(m ReprMode) { s.reprMode = m }

// ReprMode returns the current repr mode.
func (s *Session) ReprMode() ReprMode { return s.reprMode }

// Wrap constructs a root proxy over a real object with a fresh cache tree.
// Under ModeDisabled no tree is created at all; such a proxy cannot be
// exported and cannot serve cache-consulting modes later.
func (s *Session) Wrap(obj Object) *Proxy {
	if obj == nil {
		panic("proxycache: wrapped object cannot be nil")
	}

	var root *cache.Node
	if s.mode.usesCache() {
		root = cache.NewRootNode()
	}

	return &Proxy{session: s, real: obj, node: root}
}

// ToCache exports the cache tree backing the proxy as a portable tree.
// Handing it the root proxy exports the whole recording; a child proxy
// exports just that subtree.
func (s *Session) ToCache(p *Proxy) (*cache.PortableTree, error) {
	if p == nil {
		return nil, fmt.Errorf("to_cache: nil proxy")
	}
	if p.node == nil {
		return nil, fmt.Errorf("to_cache: %w", ErrNoCacheTree)
	}
	return cache.Dump(p.node), nil
}

// FromCache builds a root proxy from a previously exported tree. The
// result has no real object behind it: it serves ModePure (and
// ModeReadThrough hits); any mode that needs liveness fails with
// ErrRealObjectUnavailable.
func (s *Session) FromCache(t *cache.PortableTree) (*Proxy, error) {
	root, err := cache.Load(t)
	if err != nil {
		return nil, fmt.Errorf("from_cache: %w", err)
	}
	return &Proxy{session: s, node: root}, nil
}

// RecordedPaths returns the sorted key paths recorded through this session
// so far. Useful when a pure replay misses: the list shows what the
// recording actually covered.
func (s *Session) RecordedPaths() []string {
	paths := make([]string, 0, s.recorded.Size())
	s.recorded.Range(func(path string, _ struct{}) bool {
		paths = append(paths, path)
		return true
	})
	sort.Strings(paths)
	return paths
}

func (s *Session) trackPath(path string) {
	s.recorded.Store(path, struct{}{})
}
