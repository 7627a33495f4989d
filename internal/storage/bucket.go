// Package storage provides named key-value buckets holding opaque blobs.
//
// Each key maps to one value that is replaced wholesale on every write.
// Backends: in-memory (memory package), a directory of files and SQLite.
package storage

import (
	"context"
	"errors"
	"strings"
)

// Bucket stores whole values under string keys.
type Bucket interface {
	// Get returns the value stored under key. A missing key is reported
	// with ok == false and a nil error.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	// Put replaces the value stored under key.
	Put(ctx context.Context, key string, value []byte) error
}

var ErrInvalidKey = errors.New("invalid bucket key")

// ValidateKey rejects keys that cannot be stored by every backend.
func ValidateKey(key string) error {
	if strings.TrimSpace(key) == "" || len(key) > 200 {
		return ErrInvalidKey
	}
	if strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") {
		return ErrInvalidKey
	}
	return nil
}
