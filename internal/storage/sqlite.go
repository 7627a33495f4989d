package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"incomebook/internal/log"
)

// SQLiteBucket keeps every key as one row of the buckets table.
type SQLiteBucket struct {
	db            *sql.DB
	schemaVersion uint
	logger        *log.Logger
}

var _ Bucket = (*SQLiteBucket)(nil)

// NewSQLiteBucket opens dbPath and applies pending migrations. A nil logger
// discards output.
func NewSQLiteBucket(dbPath string, logger *log.Logger) (*SQLiteBucket, error) {
	if logger == nil {
		logger = log.Discard()
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One writer at a time; sqlite serialises writes anyway and this avoids SQLITE_BUSY
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	version, err := RunMigrations(dbPath)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteBucket{db: db, schemaVersion: version, logger: logger.WithComponent(log.ComponentStorage)}, nil
}

// SchemaVersion is the migration version applied when the bucket opened.
func (b *SQLiteBucket) SchemaVersion() uint {
	return b.schemaVersion
}

func (b *SQLiteBucket) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ValidateKey(key); err != nil {
		return nil, false, err
	}
	var value []byte
	err := b.db.QueryRowContext(ctx, `SELECT value FROM buckets WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("select bucket %s: %w", key, err)
	}
	return value, true, nil
}

func (b *SQLiteBucket) Put(ctx context.Context, key string, value []byte) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if value == nil {
		value = []byte{}
	}
	_, err := b.db.ExecContext(ctx, `
		INSERT INTO buckets (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value)
	if err != nil {
		return fmt.Errorf("upsert bucket %s: %w", key, err)
	}
	b.logger.DebugContext(ctx, "Bucket saved to SQLite", log.FieldBucketKey, key, log.FieldBytes, len(value))
	return nil
}

func (b *SQLiteBucket) Close() error {
	if b.db != nil {
		return b.db.Close()
	}
	return nil
}
