package bundle

import (
	"context"
	"errors"
	"fmt"

	"github.com/zyga/cachingproxy/cache"
)

// Common errors returned by bundle stores.
var (
	// ErrBundleNotFound indicates the named bundle does not exist.
	ErrBundleNotFound = errors.New("bundle not found")

	// ErrInvalidName indicates a bundle name the stores refuse to use.
	ErrInvalidName = errors.New("invalid bundle name")
)

// Store persists portable cache trees by name. Implementations must treat
// Save as an upsert and return ErrBundleNotFound from Load and Delete when
// the name is unknown.
type Store interface {
	Save(ctx context.Context, name string, tree *cache.PortableTree) error
	Load(ctx context.Context, name string) (*cache.PortableTree, error)
	Delete(ctx context.Context, name string) error
	List(ctx context.Context) ([]string, error)
}

// Encoding selects the byte encoding a store uses for portable trees.
type Encoding int

const (
	// EncodingJSON stores bundles as JSON.
	EncodingJSON Encoding = iota

	// EncodingMsgpack stores bundles as msgpack.
	EncodingMsgpack
)

// String returns the encoding name used in file extensions and rows.
func (e Encoding) String() string {
	switch e {
	case EncodingJSON:
		return "json"
	case EncodingMsgpack:
		return "msgpack"
	default:
		return "unknown"
	}
}

// Marshal encodes a portable tree with this encoding.
func (e Encoding) Marshal(t *cache.PortableTree) ([]byte, error) {
	switch e {
	case EncodingJSON:
		return cache.EncodeJSON(t)
	case EncodingMsgpack:
		return cache.EncodeMsgpack(t)
	default:
		return nil, fmt.Errorf("unsupported encoding %d", e)
	}
}

// Unmarshal decodes a portable tree with this encoding.
func (e Encoding) Unmarshal(data []byte) (*cache.PortableTree, error) {
	switch e {
	case EncodingJSON:
		return cache.DecodeJSON(data)
	case EncodingMsgpack:
		return cache.DecodeMsgpack(data)
	default:
		return nil, fmt.Errorf("unsupported encoding %d", e)
	}
}

// parseEncoding is the inverse of Encoding.String, used by stores that
// persist the encoding alongside the payload.
func parseEncoding(s string) (Encoding, error) {
	switch s {
	case "json":
		return EncodingJSON, nil
	case "msgpack":
		return EncodingMsgpack, nil
	default:
		return 0, fmt.Errorf("unsupported encoding %q", s)
	}
}
