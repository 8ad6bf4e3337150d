package bundle

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	_ "github.com/mattn/go-sqlite3"

	"github.com/zyga/cachingproxy/cache"
)

// bundleRow is the bundles table model. Payload holds the encoded portable
// tree; Encoding records which codec wrote it so rows saved with different
// settings stay loadable.
type bundleRow struct {
	bun.BaseModel `bun:"table:bundles,alias:b"`

	ID        string    `bun:"id,pk"`
	Name      string    `bun:"name,notnull,unique"`
	Encoding  string    `bun:"encoding,notnull"`
	Payload   []byte    `bun:"payload,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

// SQLStore persists bundles as rows in a relational database through bun.
type SQLStore struct {
	db  *bun.DB
	enc Encoding
}

// SQLOption configures a SQLStore.
type SQLOption func(*SQLStore)

// WithSQLEncoding selects the payload encoding (default msgpack).
func WithSQLEncoding(enc Encoding) SQLOption {
	return func(s *SQLStore) { s.enc = enc }
}

// OpenSQLite opens (or creates) a SQLite database at path and wraps it for
// use with NewSQLStore.
func OpenSQLite(path string) (*bun.DB, error) {
	sqldb, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}
	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}

// NewSQLStore creates a SQL-backed store over an existing bun handle.
// Call Init once before first use to create the bundles table.
func NewSQLStore(db *bun.DB, opts ...SQLOption) *SQLStore {
	if db == nil {
		panic("bundle: db handle cannot be nil")
	}
	s := &SQLStore{db: db, enc: EncodingMsgpack}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Init creates the bundles table if it does not exist.
func (s *SQLStore) Init(ctx context.Context) error {
	if _, err := s.db.NewCreateTable().Model((*bundleRow)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("create bundles table: %w", err)
	}
	return nil
}

// Save upserts the bundle by name.
func (s *SQLStore) Save(ctx context.Context, name string, tree *cache.PortableTree) error {
	if name == "" {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	data, err := s.enc.Marshal(tree)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	row := &bundleRow{
		ID:        uuid.NewString(),
		Name:      name,
		Encoding:  s.enc.String(),
		Payload:   data,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err = s.db.NewInsert().
		Model(row).
		On("CONFLICT (name) DO UPDATE").
		Set("encoding = EXCLUDED.encoding").
		Set("payload = EXCLUDED.payload").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("save bundle %q: %w", name, err)
	}
	return nil
}

// Load reads the named bundle. Returns ErrBundleNotFound when absent.
func (s *SQLStore) Load(ctx context.Context, name string) (*cache.PortableTree, error) {
	var row bundleRow
	err := s.db.NewSelect().Model(&row).Where("name = ?", name).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %q", ErrBundleNotFound, name)
		}
		return nil, fmt.Errorf("load bundle %q: %w", name, err)
	}

	enc, err := parseEncoding(row.Encoding)
	if err != nil {
		return nil, fmt.Errorf("load bundle %q: %w", name, err)
	}
	return enc.Unmarshal(row.Payload)
}

// Delete removes the named bundle. Returns ErrBundleNotFound when absent.
func (s *SQLStore) Delete(ctx context.Context, name string) error {
	res, err := s.db.NewDelete().Model((*bundleRow)(nil)).Where("name = ?", name).Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete bundle %q: %w", name, err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("%w: %q", ErrBundleNotFound, name)
	}
	return nil
}

// List returns the names of all stored bundles, sorted.
func (s *SQLStore) List(ctx context.Context) ([]string, error) {
	var names []string
	err := s.db.NewSelect().
		Model((*bundleRow)(nil)).
		Column("name").
		Order("name ASC").
		Scan(ctx, &names)
	if err != nil {
		return nil, fmt.Errorf("list bundles: %w", err)
	}
	return names, nil
}
