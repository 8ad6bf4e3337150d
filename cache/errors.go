package cache

import "errors"

// Sentinel errors shared by the cache model and the proxy engine.
var (
	// ErrCacheMiss indicates a fragment has no recorded child node.
	ErrCacheMiss = errors.New("cache miss")

	// ErrUnencodableArgument indicates an operation argument that cannot be
	// canonicalized into a key fragment.
	ErrUnencodableArgument = errors.New("unencodable argument")

	// ErrCorruptCache indicates structurally invalid portable cache data.
	ErrCorruptCache = errors.New("corrupt cache")
)
