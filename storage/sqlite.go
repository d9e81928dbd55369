package storage

import (
	"context"
	"database/sql"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// sessionBlob is the single-table key-value schema the sqlite store uses.
type sessionBlob struct {
	bun.BaseModel `bun:"table:session_blobs,alias:sb"`
	Key           string `bun:"key,pk"`
	Value         []byte `bun:"value,notnull"`
}

// Sqlite is a session store backed by a local sqlite database through bun.
type Sqlite struct {
	db *bun.DB
}

// OpenSqlite opens (and creates, if needed) the database at path and
// ensures the blob table exists.
func OpenSqlite(ctx context.Context, path string) (*Sqlite, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, path)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to open session database")
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())
	store := &Sqlite{db: db}
	if err := store.init(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// NewSqlite wraps an existing bun handle. The caller owns the handle's
// lifecycle; init must have been run or the table must already exist.
func NewSqlite(db *bun.DB) *Sqlite {
	return &Sqlite{db: db}
}

func (s *Sqlite) init(ctx context.Context) error {
	if _, err := s.db.NewCreateTable().
		Model((*sessionBlob)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create session table")
	}
	return nil
}

func (s *Sqlite) Get(ctx context.Context, key string) ([]byte, error) {
	blob := &sessionBlob{}
	err := s.db.NewSelect().
		Model(blob).
		Where("key = ?", key).
		Scan(ctx)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to read session blob")
	}
	return blob.Value, nil
}

func (s *Sqlite) Set(ctx context.Context, key string, value []byte) error {
	blob := &sessionBlob{Key: key, Value: value}
	if _, err := s.db.NewInsert().
		Model(blob).
		On("CONFLICT (key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Exec(ctx); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to write session blob")
	}
	return nil
}

func (s *Sqlite) Delete(ctx context.Context, key string) error {
	if _, err := s.db.NewDelete().
		Model((*sessionBlob)(nil)).
		Where("key = ?", key).
		Exec(ctx); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to delete session blob")
	}
	return nil
}

// Close releases the underlying database when the store owns it.
func (s *Sqlite) Close() error {
	return s.db.Close()
}
