// Package bundleinfra adapts the sturdyc in-memory cache into a
// read-through layer in front of a bundle store, so repeated replay
// sessions loading the same recording do not hit the backing medium every
// time.
package bundleinfra

import (
	"context"
	"time"

	"github.com/viccon/sturdyc"

	"github.com/zyga/cachingproxy/bundle"
	"github.com/zyga/cachingproxy/cache"
)

// Config holds the configuration for the sturdyc bundle cache.
type Config struct {
	// Capacity defines the maximum number of bundles held in memory.
	// Must be greater than 0.
	Capacity int

	// NumShards determines the number of cache shards for concurrent
	// access. Must be greater than 0.
	NumShards int

	// TTL is how long a loaded bundle stays memoized before the backing
	// store is consulted again. Must be greater than 0.
	TTL time.Duration

	// EvictionPercentage specifies what percentage of entries to evict
	// when the cache reaches capacity. Must be between 1-100.
	EvictionPercentage int

	// EvictionInterval sets how often the cache checks for expired
	// entries. Zero value uses the sturdyc default.
	EvictionInterval time.Duration
}

// DefaultConfig returns a Config with sensible defaults. Recordings are
// immutable between sessions, so a long TTL is safe.
func DefaultConfig() Config {
	return Config{
		Capacity:           256,
		NumShards:          16,
		TTL:                time.Hour,
		EvictionPercentage: 10,
	}
}

// Validate checks if the configuration values are valid.
func (c Config) Validate() error {
	if c.Capacity <= 0 {
		return &ConfigError{Field: "Capacity", Message: "must be greater than 0"}
	}
	if c.NumShards <= 0 {
		return &ConfigError{Field: "NumShards", Message: "must be greater than 0"}
	}
	if c.TTL <= 0 {
		return &ConfigError{Field: "TTL", Message: "must be greater than 0"}
	}
	if c.EvictionPercentage < 1 || c.EvictionPercentage > 100 {
		return &ConfigError{Field: "EvictionPercentage", Message: "must be between 1 and 100"}
	}
	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "config error in field " + e.Field + ": " + e.Message
}

// CachedStore wraps a bundle.Store with read-through memoization of Load.
// Writes go straight to the backing store and drop the memoized entry so
// the next Load observes them.
type CachedStore struct {
	client  *sturdyc.Client[*cache.PortableTree]
	backing bundle.Store
}

// Interface assertion so the wrapper can stand in wherever a store is
// expected.
var _ bundle.Store = (*CachedStore)(nil)

// NewCachedStore creates the read-through wrapper around a backing store.
func NewCachedStore(backing bundle.Store, cfg Config) (*CachedStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var options []sturdyc.Option
	if cfg.EvictionInterval > 0 {
		options = append(options, sturdyc.WithEvictionInterval(cfg.EvictionInterval))
	}

	client := sturdyc.New[*cache.PortableTree](
		cfg.Capacity,
		cfg.NumShards,
		cfg.TTL,
		cfg.EvictionPercentage,
		options...,
	)

	return &CachedStore{client: client, backing: backing}, nil
}

// Save writes through to the backing store and invalidates the memoized
// entry for the name.
func (s *CachedStore) Save(ctx context.Context, name string, tree *cache.PortableTree) error {
	if err := s.backing.Save(ctx, name, tree); err != nil {
		return err
	}
	s.client.Delete(name)
	return nil
}

// Load serves the bundle from memory when possible, fetching from the
// backing store on the first access and after TTL expiry.
func (s *CachedStore) Load(ctx context.Context, name string) (*cache.PortableTree, error) {
	return s.client.GetOrFetch(ctx, name, func(ctx context.Context) (*cache.PortableTree, error) {
		return s.backing.Load(ctx, name)
	})
}

// Delete removes the bundle from the backing store and from memory.
func (s *CachedStore) Delete(ctx context.Context, name string) error {
	if err := s.backing.Delete(ctx, name); err != nil {
		return err
	}
	s.client.Delete(name)
	return nil
}

// List always consults the backing store; names are cheap and staleness
// here would be confusing.
func (s *CachedStore) List(ctx context.Context) ([]string, error) {
	return s.backing.List(ctx)
}
