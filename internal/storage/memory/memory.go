package memory

import (
	"context"
	"sync"

	"incomebook/internal/storage"
)

// Bucket keeps values in process memory. It is the default backend and the
// fake used by tests.
type Bucket struct {
	mu     sync.Mutex
	values map[string][]byte
	writes int
}

var _ storage.Bucket = (*Bucket)(nil)

func New() *Bucket {
	return &Bucket{values: map[string][]byte{}}
}

// NewWithValues seeds the bucket, e.g. with a corrupt blob in tests.
func NewWithValues(values map[string][]byte) *Bucket {
	b := New()
	for k, v := range values {
		b.values[k] = append([]byte(nil), v...)
	}
	return b
}

func (b *Bucket) Get(_ context.Context, key string) ([]byte, bool, error) {
	if err := storage.ValidateKey(key); err != nil {
		return nil, false, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	v, ok := b.values[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (b *Bucket) Put(_ context.Context, key string, value []byte) error {
	if err := storage.ValidateKey(key); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.values[key] = append([]byte(nil), value...)
	b.writes++
	return nil
}

// Writes returns how many successful Put calls the bucket has seen.
func (b *Bucket) Writes() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.writes
}
