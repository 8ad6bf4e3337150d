package bundle

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/zyga/cachingproxy/cache"
)

// defaultRedisPrefix namespaces bundle keys within a shared Redis instance.
const defaultRedisPrefix = "cachingproxy:bundle"

// RedisStore persists bundles as single Redis values, one key per bundle.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	enc    Encoding
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithRedisPrefix overrides the key namespace.
func WithRedisPrefix(prefix string) RedisOption {
	return func(s *RedisStore) { s.prefix = prefix }
}

// WithRedisTTL expires bundles after the given duration. Zero, the
// default, keeps them until deleted.
func WithRedisTTL(ttl time.Duration) RedisOption {
	return func(s *RedisStore) { s.ttl = ttl }
}

// WithRedisEncoding selects the value encoding (default msgpack, the
// compact choice for a network hop).
func WithRedisEncoding(enc Encoding) RedisOption {
	return func(s *RedisStore) { s.enc = enc }
}

// NewRedisStore creates a Redis-backed store.
func NewRedisStore(client *redis.Client, opts ...RedisOption) *RedisStore {
	if client == nil {
		panic("bundle: redis client cannot be nil")
	}
	s := &RedisStore{
		client: client,
		prefix: defaultRedisPrefix,
		enc:    EncodingMsgpack,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save writes the bundle, replacing any previous one of the same name.
func (s *RedisStore) Save(ctx context.Context, name string, tree *cache.PortableTree) error {
	key, err := s.key(name)
	if err != nil {
		return err
	}

	data, err := s.enc.Marshal(tree)
	if err != nil {
		return err
	}

	if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", name, err)
	}
	return nil
}

// Load reads the named bundle. Returns ErrBundleNotFound when absent.
func (s *RedisStore) Load(ctx context.Context, name string) (*cache.PortableTree, error) {
	key, err := s.key(name)
	if err != nil {
		return nil, err
	}

	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("%w: %q", ErrBundleNotFound, name)
		}
		return nil, fmt.Errorf("redis get %q: %w", name, err)
	}

	return s.enc.Unmarshal(data)
}

// Delete removes the named bundle. Returns ErrBundleNotFound when absent.
func (s *RedisStore) Delete(ctx context.Context, name string) error {
	key, err := s.key(name)
	if err != nil {
		return err
	}

	deleted, err := s.client.Del(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("redis del %q: %w", name, err)
	}
	if deleted == 0 {
		return fmt.Errorf("%w: %q", ErrBundleNotFound, name)
	}
	return nil
}

// List returns the names of all stored bundles, sorted. It scans rather
// than using KEYS so a large shared instance is not blocked.
func (s *RedisStore) List(ctx context.Context) ([]string, error) {
	var names []string

	iter := s.client.Scan(ctx, 0, s.prefix+":*", 100).Iterator()
	for iter.Next(ctx) {
		names = append(names, strings.TrimPrefix(iter.Val(), s.prefix+":"))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan: %w", err)
	}

	sort.Strings(names)
	return names, nil
}

func (s *RedisStore) key(name string) (string, error) {
	if name == "" || strings.Contains(name, "*") {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return s.prefix + ":" + name, nil
}
