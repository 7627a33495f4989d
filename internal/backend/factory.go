package backend

import (
	"context"
	"fmt"

	"incomebook/internal/log"
	"incomebook/internal/storage"
	"incomebook/internal/storage/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Discard()
	}
	return &DefaultFactory{logger: logger.WithComponent(log.ComponentBackend)}
}

// CreateBucket implements Factory.CreateBucket
func (f *DefaultFactory) CreateBucket(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	switch config.Type {
	case SQLiteBackend:
		return f.createSQLite(ctx, config)
	case FileBackend:
		return f.createFile(ctx, config)
	case MemoryBackend:
		f.logger.WarnContext(ctx, "Using in-memory storage, entries are lost on exit")
		return &Result{Bucket: memory.New(), Cleanup: func() error { return nil }}, nil
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLite(ctx context.Context, config Config) (*Result, error) {
	b, err := storage.NewSQLiteBucket(config.SQLiteDBPath, f.logger)
	if err != nil {
		return nil, fmt.Errorf("open sqlite bucket: %w", err)
	}
	f.logger.InfoContext(ctx, "Initialized SQLite backend",
		"db_path", config.SQLiteDBPath, "schema_version", b.SchemaVersion())
	return &Result{Bucket: b, Cleanup: b.Close}, nil
}

func (f *DefaultFactory) createFile(ctx context.Context, config Config) (*Result, error) {
	b, err := storage.NewFileBucket(config.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open file bucket: %w", err)
	}
	f.logger.InfoContext(ctx, "Initialized file backend", "data_dir", config.DataDir)
	return &Result{Bucket: b, Cleanup: func() error { return nil }}, nil
}
