// Package backend builds the storage bucket selected by configuration.
package backend

import (
	"context"

	"incomebook/internal/storage"
)

// CleanupFunc releases backend resources.
type CleanupFunc func() error

// Result is the created bucket and its cleanup.
type Result struct {
	Bucket  storage.Bucket
	Cleanup CleanupFunc
}

// Factory creates buckets based on configuration
type Factory interface {
	CreateBucket(ctx context.Context, config Config) (*Result, error)
}

// Config holds configuration for bucket creation
type Config struct {
	Type BackendType

	// File backend
	DataDir string

	// SQLite backend
	SQLiteDBPath string
}

// BackendType represents the type of backend
type BackendType string

const (
	MemoryBackend BackendType = "memory"
	FileBackend   BackendType = "file"
	SQLiteBackend BackendType = "sqlite"
)

func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, FileBackend, SQLiteBackend:
		return true
	default:
		return false
	}
}
