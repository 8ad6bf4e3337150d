package proxycache

import (
	"errors"
	"fmt"
)

// Common errors returned by the proxy engine. Cache-level failures
// (cache.ErrCacheMiss, cache.ErrUnencodableArgument, cache.ErrCorruptCache)
// pass through wrapped, so errors.Is works against either package.
var (
	// ErrRealObjectUnavailable is returned when a mode requiring the real
	// object is used on a proxy that has none, e.g. one rebuilt from a
	// cache export.
	ErrRealObjectUnavailable = errors.New("real object unavailable")

	// ErrNoCacheTree is returned when a cache-consulting mode is used on a
	// proxy that was constructed while caching was disabled.
	ErrNoCacheTree = errors.New("proxy has no cache tree")
)

// OperationError tags a failure raised by the real object's own operation.
// The original error is preserved for errors.Is/As; the path locates the
// failing operation within the recorded tree.
type OperationError struct {
	Path string
	Op   string
	Err  error
}

// Error implements the error interface.
func (e *OperationError) Error() string {
	return fmt.Sprintf("underlying %s at %q failed: %v", e.Op, e.Path, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *OperationError) Unwrap() error {
	return e.Err
}
