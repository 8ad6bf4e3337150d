package bundleinfra

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/zyga/cachingproxy/bundle"
	"github.com/zyga/cachingproxy/cache"
)

// memStore is an in-memory bundle store that counts backing accesses.
type memStore struct {
	trees map[string]*cache.PortableTree
	loads int
}

func newMemStore() *memStore {
	return &memStore{trees: make(map[string]*cache.PortableTree)}
}

func (m *memStore) Save(ctx context.Context, name string, tree *cache.PortableTree) error {
	m.trees[name] = tree
	return nil
}

func (m *memStore) Load(ctx context.Context, name string) (*cache.PortableTree, error) {
	m.loads++
	tree, ok := m.trees[name]
	if !ok {
		return nil, bundle.ErrBundleNotFound
	}
	return tree, nil
}

func (m *memStore) Delete(ctx context.Context, name string) error {
	if _, ok := m.trees[name]; !ok {
		return bundle.ErrBundleNotFound
	}
	delete(m.trees, name)
	return nil
}

func (m *memStore) List(ctx context.Context) ([]string, error) {
	names := make([]string, 0, len(m.trees))
	for name := range m.trees {
		names = append(names, name)
	}
	return names, nil
}

func sampleTree(t *testing.T, value int64) *cache.PortableTree {
	t.Helper()
	codec := cache.NewDefaultKeyCodec()
	root := cache.NewRootNode()
	if err := root.ChildFor(codec.EncodeAttribute("x")).SetResult(value); err != nil {
		t.Fatalf("SetResult() error = %v", err)
	}
	return cache.Dump(root)
}

func treeValue(t *testing.T, tree *cache.PortableTree) int64 {
	t.Helper()
	codec := cache.NewDefaultKeyCodec()
	root, err := cache.Load(tree)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	node, err := root.Lookup(codec.EncodeAttribute("x"))
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	v, ok := node.Value().(int64)
	if !ok {
		t.Fatalf("Value() = %#v, want int64", node.Value())
	}
	return v
}

func newTestCachedStore(t *testing.T, backing bundle.Store) *CachedStore {
	t.Helper()
	store, err := NewCachedStore(backing, DefaultConfig())
	if err != nil {
		t.Fatalf("NewCachedStore() error = %v", err)
	}
	return store
}

func TestCachedStore_MemoizesLoads(t *testing.T) {
	backing := newMemStore()
	store := newTestCachedStore(t, backing)
	ctx := context.Background()

	if err := store.Save(ctx, "b", sampleTree(t, 1)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	for i := 0; i < 5; i++ {
		if _, err := store.Load(ctx, "b"); err != nil {
			t.Fatalf("Load() #%d error = %v", i, err)
		}
	}
	if backing.loads != 1 {
		t.Errorf("backing loads = %d, want 1 (memoized)", backing.loads)
	}
}

func TestCachedStore_SaveInvalidatesMemoizedEntry(t *testing.T) {
	backing := newMemStore()
	store := newTestCachedStore(t, backing)
	ctx := context.Background()

	if err := store.Save(ctx, "b", sampleTree(t, 1)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	loaded, err := store.Load(ctx, "b")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if treeValue(t, loaded) != 1 {
		t.Fatalf("x = %d, want 1", treeValue(t, loaded))
	}

	if err := store.Save(ctx, "b", sampleTree(t, 2)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	loaded, err = store.Load(ctx, "b")
	if err != nil {
		t.Fatalf("Load() after save error = %v", err)
	}
	if treeValue(t, loaded) != 2 {
		t.Errorf("x after overwrite = %d, want 2", treeValue(t, loaded))
	}
}

func TestCachedStore_DeleteInvalidates(t *testing.T) {
	backing := newMemStore()
	store := newTestCachedStore(t, backing)
	ctx := context.Background()

	if err := store.Save(ctx, "b", sampleTree(t, 1)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if _, err := store.Load(ctx, "b"); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if err := store.Delete(ctx, "b"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := store.Load(ctx, "b"); !errors.Is(err, bundle.ErrBundleNotFound) {
		t.Errorf("Load() after delete error = %v, want ErrBundleNotFound", err)
	}
}

func TestCachedStore_MissesAreNotMemoized(t *testing.T) {
	backing := newMemStore()
	store := newTestCachedStore(t, backing)
	ctx := context.Background()

	if _, err := store.Load(ctx, "b"); !errors.Is(err, bundle.ErrBundleNotFound) {
		t.Fatalf("Load() error = %v, want ErrBundleNotFound", err)
	}

	// The bundle appearing later must become visible.
	if err := store.Save(ctx, "b", sampleTree(t, 1)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if _, err := store.Load(ctx, "b"); err != nil {
		t.Errorf("Load() after save error = %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "zero capacity", mutate: func(c *Config) { c.Capacity = 0 }, wantField: "Capacity"},
		{name: "zero shards", mutate: func(c *Config) { c.NumShards = 0 }, wantField: "NumShards"},
		{name: "zero ttl", mutate: func(c *Config) { c.TTL = 0 }, wantField: "TTL"},
		{name: "eviction too low", mutate: func(c *Config) { c.EvictionPercentage = 0 }, wantField: "EvictionPercentage"},
		{name: "eviction too high", mutate: func(c *Config) { c.EvictionPercentage = 101 }, wantField: "EvictionPercentage"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("Validate() error = %v, want *ConfigError", err)
			}
			if cfgErr.Field != tt.wantField {
				t.Errorf("ConfigError.Field = %q, want %q", cfgErr.Field, tt.wantField)
			}
		})
	}
}

func TestNewCachedStore_RejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TTL = -time.Second

	if _, err := NewCachedStore(newMemStore(), cfg); err == nil {
		t.Error("NewCachedStore() with invalid config succeeded")
	}
}
