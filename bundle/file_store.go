package bundle

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/zyga/cachingproxy/cache"
)

// FileStore persists one encoded file per bundle under a directory. The
// file name is "<name>.<encoding>".
type FileStore struct {
	dir    string
	enc    Encoding
	logger zerolog.Logger
}

// FileOption configures a FileStore.
type FileOption func(*FileStore)

// WithFileEncoding selects the on-disk encoding (default JSON).
func WithFileEncoding(enc Encoding) FileOption {
	return func(s *FileStore) { s.enc = enc }
}

// WithFileLogger attaches a logger; the default discards everything.
func WithFileLogger(l zerolog.Logger) FileOption {
	return func(s *FileStore) { s.logger = l }
}

// NewFileStore creates a file-backed store rooted at dir, creating the
// directory if needed.
func NewFileStore(dir string, opts ...FileOption) (*FileStore, error) {
	s := &FileStore{dir: dir, enc: EncodingJSON, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create bundle dir: %w", err)
	}
	return s, nil
}

// Save writes the bundle, replacing any previous one of the same name. The
// write goes through a temp file and a rename so a crash mid-write never
// leaves a truncated bundle behind.
func (s *FileStore) Save(ctx context.Context, name string, tree *cache.PortableTree) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}

	data, err := s.enc.Marshal(tree)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, "."+name+"-*")
	if err != nil {
		return fmt.Errorf("save bundle %q: %w", name, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("save bundle %q: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("save bundle %q: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("save bundle %q: %w", name, err)
	}

	s.logger.Debug().Str("bundle", name).Int("bytes", len(data)).Msg("saved bundle")
	return nil
}

// Load reads the named bundle. Returns ErrBundleNotFound when absent.
func (s *FileStore) Load(ctx context.Context, name string) (*cache.PortableTree, error) {
	path, err := s.path(name)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %q", ErrBundleNotFound, name)
		}
		return nil, fmt.Errorf("load bundle %q: %w", name, err)
	}

	return s.enc.Unmarshal(data)
}

// Delete removes the named bundle. Returns ErrBundleNotFound when absent.
func (s *FileStore) Delete(ctx context.Context, name string) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %q", ErrBundleNotFound, name)
		}
		return fmt.Errorf("delete bundle %q: %w", name, err)
	}
	return nil
}

// List returns the names of all stored bundles, sorted.
func (s *FileStore) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list bundles: %w", err)
	}

	ext := "." + s.enc.String()
	var names []string
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if strings.HasSuffix(entry.Name(), ext) {
			names = append(names, strings.TrimSuffix(entry.Name(), ext))
		}
	}
	sort.Strings(names)
	return names, nil
}

// path validates the bundle name and maps it to a file path. Names that
// would escape the store directory are rejected.
func (s *FileStore) path(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, "/\\") || name == "." || name == ".." {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(s.dir, name+"."+s.enc.String()), nil
}
