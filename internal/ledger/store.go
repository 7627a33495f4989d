// Package ledger owns the persisted collection of income entries.
//
// The whole collection lives as one JSON array under a single bucket key.
// Every mutation reads the array, changes it and writes it back; a mutex
// serialises that cycle inside one process. Writers in other processes are
// last-writer-wins.
package ledger

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"incomebook/internal/core"
	"incomebook/internal/log"
	"incomebook/internal/storage"
	"incomebook/internal/summary"
)

// BucketKey is the bucket key holding the serialized entries.
const BucketKey = "freelancer_income_entries"

var ErrNotFound = errors.New("entry not found")

// Snapshot is the collection as read from the bucket.
type Snapshot struct {
	Entries []core.Entry
	// Corrupt is set when the stored blob could not be parsed and was
	// treated as an empty collection.
	Corrupt bool
	// Digest is the hex SHA-256 of the raw blob, "" when nothing is stored.
	Digest string
}

type Store struct {
	mu       sync.Mutex
	bucket   storage.Bucket
	key      string
	logger   *log.Logger
	now      func() time.Time
	newID    func() string
	notifier ChangeNotifier
}

type Option func(*Store)

// WithClock overrides the creation timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides identifier generation.
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// WithNotifier registers a hook called after each successful mutation.
func WithNotifier(n ChangeNotifier) Option {
	return func(s *Store) { s.notifier = n }
}

// WithKey stores the collection under a different bucket key.
func WithKey(key string) Option {
	return func(s *Store) { s.key = key }
}

func New(bucket storage.Bucket, logger *log.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = log.FromContext(context.Background())
	}
	s := &Store{
		bucket: bucket,
		key:    BucketKey,
		logger: logger.WithComponent(log.ComponentLedger),
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads the current collection. A missing key or an empty blob is an
// empty collection; an unparsable blob is an empty, Corrupt collection.
func (s *Store) Load(ctx context.Context) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// GetAll returns every entry in storage order.
func (s *Store) GetAll(ctx context.Context) ([]core.Entry, error) {
	snap, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Entries, nil
}

// Get returns the entry with the given id.
func (s *Store) Get(ctx context.Context, id string) (core.Entry, error) {
	entries, err := s.GetAll(ctx)
	if err != nil {
		return core.Entry{}, err
	}
	if i := indexOf(entries, id); i >= 0 {
		return entries[i], nil
	}
	return core.Entry{}, ErrNotFound
}

// Add validates in, assigns an id and creation time and appends the entry.
func (s *Store) Add(ctx context.Context, in core.EntryInput) (core.Entry, error) {
	if err := in.Validate(); err != nil {
		return core.Entry{}, fmt.Errorf("invalid entry: %w", err)
	}

	s.mu.Lock()
	snap, err := s.load(ctx)
	if err != nil {
		s.mu.Unlock()
		return core.Entry{}, err
	}
	e := in.Entry(s.newID(), s.now())
	err = s.persist(ctx, append(snap.Entries, e))
	s.mu.Unlock()
	if err != nil {
		return core.Entry{}, err
	}

	s.logger.InfoContext(ctx, "Entry created",
		log.NewFields().WithEntry(e.ID, e.ClientName, e.GrossAmount.String()).WithOperation(log.OpCreate).ToSlice()...)
	s.notify(ctx, e.ID, OpCreated)
	return e, nil
}

// Update merges patch over the entry with the given id. An unknown id
// returns ErrNotFound and leaves storage untouched.
func (s *Store) Update(ctx context.Context, id string, patch core.EntryPatch) (core.Entry, error) {
	s.mu.Lock()
	snap, err := s.load(ctx)
	if err != nil {
		s.mu.Unlock()
		return core.Entry{}, err
	}
	i := indexOf(snap.Entries, id)
	if i < 0 {
		s.mu.Unlock()
		return core.Entry{}, ErrNotFound
	}
	if patch.Empty() {
		s.mu.Unlock()
		return snap.Entries[i], nil
	}

	updated := patch.Apply(snap.Entries[i])
	if err := updated.Validate(); err != nil {
		s.mu.Unlock()
		return core.Entry{}, fmt.Errorf("invalid entry: %w", err)
	}
	snap.Entries[i] = updated
	err = s.persist(ctx, snap.Entries)
	s.mu.Unlock()
	if err != nil {
		return core.Entry{}, err
	}

	s.logger.InfoContext(ctx, "Entry updated",
		log.NewFields().WithEntry(updated.ID, updated.ClientName, updated.GrossAmount.String()).WithOperation(log.OpUpdate).ToSlice()...)
	s.notify(ctx, id, OpUpdated)
	return updated, nil
}

// Delete removes the entry with the given id and reports whether one was
// removed. Storage is written only on removal.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	snap, err := s.load(ctx)
	if err != nil {
		s.mu.Unlock()
		return false, err
	}
	kept := make([]core.Entry, 0, len(snap.Entries))
	for _, e := range snap.Entries {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	if len(kept) == len(snap.Entries) {
		s.mu.Unlock()
		return false, nil
	}
	err = s.persist(ctx, kept)
	s.mu.Unlock()
	if err != nil {
		return false, err
	}

	s.logger.InfoContext(ctx, "Entry deleted", log.FieldEntryID, id, log.FieldOperation, log.OpDelete)
	s.notify(ctx, id, OpDeleted)
	return true, nil
}

// MonthlyData summarises the current entries per calendar month.
func (s *Store) MonthlyData(ctx context.Context) ([]core.MonthlyData, error) {
	entries, err := s.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return summary.Monthly(entries), nil
}

// YearlyTotals summarises the current entries dated in year.
func (s *Store) YearlyTotals(ctx context.Context, year int) (core.YearlyTotals, error) {
	entries, err := s.GetAll(ctx)
	if err != nil {
		return core.YearlyTotals{}, err
	}
	return summary.Yearly(entries, year), nil
}

// Years lists the years that have at least one entry.
func (s *Store) Years(ctx context.Context) ([]int, error) {
	entries, err := s.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return summary.Years(entries), nil
}

func (s *Store) load(ctx context.Context) (Snapshot, error) {
	raw, ok, err := s.bucket.Get(ctx, s.key)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read entries: %w", err)
	}
	snap := Snapshot{Entries: []core.Entry{}}
	if !ok {
		return snap, nil
	}
	snap.Digest = digest(raw)
	if len(bytes.TrimSpace(raw)) == 0 {
		return snap, nil
	}

	var entries []core.Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		s.logger.WarnContext(ctx, "Persisted entries are unreadable, treating as empty",
			log.NewFields().
				WithError(err).
				WithErrorType(log.ErrorTypeCorruptData).
				WithOperation(log.OpLoad).
				ToSlice()...)
		snap.Corrupt = true
		return snap, nil
	}
	if entries != nil {
		snap.Entries = entries
	}
	return snap, nil
}

func (s *Store) persist(ctx context.Context, entries []core.Entry) error {
	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode entries: %w", err)
	}
	if err := s.bucket.Put(ctx, s.key, raw); err != nil {
		return fmt.Errorf("write entries: %w", err)
	}
	s.logger.DebugContext(ctx, "Entries persisted", log.FieldBucketKey, s.key, log.FieldEntryCount, len(entries))
	return nil
}

func indexOf(entries []core.Entry, id string) int {
	for i, e := range entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func digest(raw []byte) string {
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
