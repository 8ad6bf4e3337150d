// Package di provides dependency injection for the caching proxy
// components: the key codec, the bundle store, and session construction.
package di

import (
	"github.com/rs/zerolog"

	"github.com/zyga/cachingproxy/bundle"
	"github.com/zyga/cachingproxy/cache"
	"github.com/zyga/cachingproxy/internal/bundleinfra"
	"github.com/zyga/cachingproxy/proxycache"
)

// Config wires the container. Store is optional; when set it is wrapped
// with the read-through memoization layer configured by StoreCache.
type Config struct {
	Store      bundle.Store
	StoreCache bundleinfra.Config
	Logger     zerolog.Logger
}

// DefaultConfig returns a Config with no backing store and discard logging.
func DefaultConfig() Config {
	return Config{
		StoreCache: bundleinfra.DefaultConfig(),
		Logger:     zerolog.Nop(),
	}
}

// Container manages singleton instances of the key codec and the bundle
// store and provides a factory for recording/replay sessions.
type Container struct {
	codec  cache.KeyCodec
	store  bundle.Store
	logger zerolog.Logger
}

// NewContainer creates a new DI container with the provided configuration.
func NewContainer(cfg Config) (*Container, error) {
	c := &Container{
		codec:  cache.NewDefaultKeyCodec(),
		logger: cfg.Logger,
	}

	if cfg.Store != nil {
		cached, err := bundleinfra.NewCachedStore(cfg.Store, cfg.StoreCache)
		if err != nil {
			return nil, err
		}
		c.store = cached
	}

	return c, nil
}

// NewContainerWithDefaults creates a container with default configuration:
// no persistence, default codec, discard logging.
func NewContainerWithDefaults() (*Container, error) {
	return NewContainer(DefaultConfig())
}

// KeyCodec returns the singleton key codec instance.
func (c *Container) KeyCodec() cache.KeyCodec {
	return c.codec
}

// Store returns the bundle store, or nil when the container was built
// without persistence.
func (c *Container) Store() bundle.Store {
	return c.store
}

// Logger returns the container's logger.
func (c *Container) Logger() zerolog.Logger {
	return c.logger
}

// NewSession creates a recording/replay session wired with the container's
// codec and logger. Callers append their own options; later options win.
func (c *Container) NewSession(opts ...proxycache.Option) *proxycache.Session {
	base := []proxycache.Option{
		proxycache.WithKeyCodec(c.codec),
		proxycache.WithLogger(c.logger),
	}
	return proxycache.NewSession(append(base, opts...)...)
}
