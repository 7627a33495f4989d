package ledger

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"incomebook/internal/core"
	"incomebook/internal/log"
	"incomebook/internal/storage/memory"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T, bucket *memory.Bucket, opts ...Option) *Store {
	t.Helper()
	n := 0
	opts = append([]Option{
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(func() string { n++; return fmt.Sprintf("id-%d", n) }),
	}, opts...)
	return New(bucket, log.Discard(), opts...)
}

func input(date core.Date, gross, pct string) core.EntryInput {
	return core.EntryInput{
		Date:               date,
		ClientName:         "Acme",
		ProjectName:        "Website",
		ProjectDescription: "Landing page, phase 1",
		GrossAmount:        dec(gross),
		TaxPercentage:      dec(pct),
		PaymentMethod:      core.PaymentBankTransfer,
	}
}

func seedScenario(t *testing.T, s *Store) []core.Entry {
	t.Helper()
	ctx := context.Background()
	var out []core.Entry
	for _, in := range []core.EntryInput{
		input(core.NewDate(2024, 1, 10), "1000", "10"),
		input(core.NewDate(2024, 1, 20), "500", "10"),
		input(core.NewDate(2024, 2, 5), "300", "10"),
	} {
		e, err := s.Add(ctx, in)
		require.NoError(t, err)
		out = append(out, e)
	}
	return out
}

func TestGetAllOnMissingBucket(t *testing.T) {
	s := newTestStore(t, memory.New())
	entries, err := s.GetAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestAddAssignsIdentityAndDerivedFields(t *testing.T) {
	bucket := memory.New()
	s := newTestStore(t, bucket)
	ctx := context.Background()

	in := input(core.NewDate(2024, 1, 10), "1000", "10")
	e, err := s.Add(ctx, in)
	require.NoError(t, err)

	assert.Equal(t, "id-1", e.ID)
	assert.True(t, e.CreatedAt.Equal(fixedNow))
	assert.True(t, e.TaxWithheld.Equal(dec("100")))
	assert.True(t, e.NetAmount.Equal(e.GrossAmount.Sub(e.TaxWithheld)))

	all, err := s.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, e.ID, all[0].ID)
	assert.Equal(t, in.ClientName, all[0].ClientName)
	assert.Equal(t, in.ProjectDescription, all[0].ProjectDescription)
	assert.True(t, all[0].GrossAmount.Equal(in.GrossAmount))
	assert.Equal(t, 1, bucket.Writes())
}

func TestAddAllowsDuplicates(t *testing.T) {
	s := newTestStore(t, memory.New())
	ctx := context.Background()
	in := input(core.NewDate(2024, 1, 10), "1000", "10")
	_, err := s.Add(ctx, in)
	require.NoError(t, err)
	_, err = s.Add(ctx, in)
	require.NoError(t, err)

	all, err := s.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.NotEqual(t, all[0].ID, all[1].ID)
}

func TestAddRejectsInvalidInput(t *testing.T) {
	bucket := memory.New()
	s := newTestStore(t, bucket)
	in := input(core.NewDate(2024, 1, 10), "1000", "150")
	_, err := s.Add(context.Background(), in)
	require.ErrorIs(t, err, core.ErrInvalidTaxPercentage)
	assert.Equal(t, 0, bucket.Writes())
}

func TestGetAllPreservesInsertionOrder(t *testing.T) {
	s := newTestStore(t, memory.New())
	ctx := context.Background()
	for _, d := range []core.Date{core.NewDate(2024, 5, 1), core.NewDate(2023, 1, 1), core.NewDate(2024, 2, 1)} {
		_, err := s.Add(ctx, input(d, "1", "0"))
		require.NoError(t, err)
	}
	all, err := s.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"id-1", "id-2", "id-3"}, []string{all[0].ID, all[1].ID, all[2].ID})
}

func TestUpdateMergesFields(t *testing.T) {
	s := newTestStore(t, memory.New())
	ctx := context.Background()
	entries := seedScenario(t, s)

	notes := "paid late"
	updated, err := s.Update(ctx, entries[1].ID, core.EntryPatch{Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, notes, updated.Notes)

	got, err := s.Get(ctx, entries[1].ID)
	require.NoError(t, err)
	assert.Equal(t, notes, got.Notes)
	assert.Equal(t, entries[1].ClientName, got.ClientName)
	assert.True(t, got.GrossAmount.Equal(entries[1].GrossAmount))
	assert.True(t, got.CreatedAt.Equal(entries[1].CreatedAt))

	// Other entries are untouched
	other, err := s.Get(ctx, entries[0].ID)
	require.NoError(t, err)
	assert.Empty(t, other.Notes)
}

func TestUpdateRecomputesDerivedAmounts(t *testing.T) {
	s := newTestStore(t, memory.New())
	ctx := context.Background()
	entries := seedScenario(t, s)

	gross := dec("2000")
	updated, err := s.Update(ctx, entries[0].ID, core.EntryPatch{GrossAmount: &gross})
	require.NoError(t, err)
	assert.True(t, updated.TaxWithheld.Equal(dec("200")))
	assert.True(t, updated.NetAmount.Equal(dec("1800")))
}

func TestUpdateUnknownIDLeavesStorageUnchanged(t *testing.T) {
	bucket := memory.New()
	s := newTestStore(t, bucket)
	ctx := context.Background()
	seedScenario(t, s)

	before, _, err := bucket.Get(ctx, BucketKey)
	require.NoError(t, err)
	writes := bucket.Writes()

	notes := "x"
	_, err = s.Update(ctx, "missing", core.EntryPatch{Notes: &notes})
	require.ErrorIs(t, err, ErrNotFound)

	after, _, err := bucket.Get(ctx, BucketKey)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(before, after))
	assert.Equal(t, writes, bucket.Writes())
}

func TestUpdateRejectsInvalidMerge(t *testing.T) {
	bucket := memory.New()
	s := newTestStore(t, bucket)
	ctx := context.Background()
	entries := seedScenario(t, s)
	writes := bucket.Writes()

	blank := " "
	_, err := s.Update(ctx, entries[0].ID, core.EntryPatch{ClientName: &blank})
	require.ErrorIs(t, err, core.ErrEmptyClient)
	assert.Equal(t, writes, bucket.Writes())
}

func TestDelete(t *testing.T) {
	bucket := memory.New()
	s := newTestStore(t, bucket)
	ctx := context.Background()
	entries := seedScenario(t, s)

	removed, err := s.Delete(ctx, entries[0].ID)
	require.NoError(t, err)
	assert.True(t, removed)

	all, err := s.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	for _, e := range all {
		assert.NotEqual(t, entries[0].ID, e.ID)
	}

	before, _, _ := bucket.Get(ctx, BucketKey)
	writes := bucket.Writes()
	removed, err = s.Delete(ctx, entries[0].ID)
	require.NoError(t, err)
	assert.False(t, removed)
	after, _, _ := bucket.Get(ctx, BucketKey)
	assert.True(t, bytes.Equal(before, after))
	assert.Equal(t, writes, bucket.Writes())
}

func TestCorruptBlobDegradesToEmpty(t *testing.T) {
	var logs bytes.Buffer
	bucket := memory.NewWithValues(map[string][]byte{BucketKey: []byte(`{not json`)})
	s := New(bucket, log.New(log.Config{Output: &logs, Level: slog.LevelWarn}))
	ctx := context.Background()

	snap, err := s.Load(ctx)
	require.NoError(t, err)
	assert.True(t, snap.Corrupt)
	assert.Empty(t, snap.Entries)
	assert.NotEmpty(t, snap.Digest)
	assert.Contains(t, logs.String(), log.ErrorTypeCorruptData)

	entries, err := s.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)

	// A write after corruption replaces the blob with a valid collection
	_, err = s.Add(ctx, input(core.NewDate(2024, 1, 1), "10", "0"))
	require.NoError(t, err)
	snap, err = s.Load(ctx)
	require.NoError(t, err)
	assert.False(t, snap.Corrupt)
	assert.Len(t, snap.Entries, 1)
}

func TestEmptyAndNullBlobs(t *testing.T) {
	for _, raw := range []string{"", "  ", "null", "[]"} {
		bucket := memory.NewWithValues(map[string][]byte{BucketKey: []byte(raw)})
		snap, err := New(bucket, log.Discard()).Load(context.Background())
		require.NoError(t, err)
		assert.False(t, snap.Corrupt, "blob %q", raw)
		assert.NotNil(t, snap.Entries)
		assert.Empty(t, snap.Entries)
	}
}

func TestAggregationQueries(t *testing.T) {
	s := newTestStore(t, memory.New())
	ctx := context.Background()
	seedScenario(t, s)

	months, err := s.MonthlyData(ctx)
	require.NoError(t, err)
	require.Len(t, months, 2)
	assert.Equal(t, "January", months[0].Month)
	assert.True(t, months[0].GrossAmount.Equal(dec("1500")))
	assert.True(t, months[0].TaxWithheld.Equal(dec("150")))
	assert.True(t, months[0].NetAmount.Equal(dec("1350")))
	assert.Equal(t, 2, months[0].Count)
	assert.Equal(t, "February", months[1].Month)
	assert.Equal(t, 1, months[1].Count)

	year, err := s.YearlyTotals(ctx, 2024)
	require.NoError(t, err)
	assert.True(t, year.GrossAmount.Equal(dec("1800")))
	assert.True(t, year.TaxWithheld.Equal(dec("180")))
	assert.True(t, year.NetAmount.Equal(dec("1620")))
	assert.Equal(t, 3, year.Count)

	years, err := s.Years(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{2024}, years)
}

type failingBucket struct{ err error }

func (f failingBucket) Get(context.Context, string) ([]byte, bool, error) { return nil, false, f.err }
func (f failingBucket) Put(context.Context, string, []byte) error         { return f.err }

func TestStorageErrorsPropagate(t *testing.T) {
	boom := errors.New("disk gone")
	s := New(failingBucket{err: boom}, log.Discard())
	ctx := context.Background()

	_, err := s.GetAll(ctx)
	require.ErrorIs(t, err, boom)
	_, err = s.Add(ctx, input(core.NewDate(2024, 1, 1), "1", "0"))
	require.ErrorIs(t, err, boom)
	_, err = s.Delete(ctx, "x")
	require.ErrorIs(t, err, boom)
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []ChangeEvent
	err    error
}

func (r *recordingNotifier) NotifyChange(_ context.Context, ev ChangeEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return r.err
}

func TestNotifierReceivesMutations(t *testing.T) {
	n := &recordingNotifier{err: errors.New("broker down")}
	s := newTestStore(t, memory.New(), WithNotifier(n))
	ctx := context.Background()

	e, err := s.Add(ctx, input(core.NewDate(2024, 1, 1), "1", "0"))
	require.NoError(t, err, "notifier failures must not fail the mutation")
	notes := "n"
	_, err = s.Update(ctx, e.ID, core.EntryPatch{Notes: &notes})
	require.NoError(t, err)
	_, err = s.Delete(ctx, e.ID)
	require.NoError(t, err)
	_, err = s.Delete(ctx, e.ID)
	require.NoError(t, err)

	require.Len(t, n.events, 3)
	assert.Equal(t, []Op{OpCreated, OpUpdated, OpDeleted}, []Op{n.events[0].Op, n.events[1].Op, n.events[2].Op})
	assert.Equal(t, e.ID, n.events[2].EntryID)
}

func TestConcurrentAddsAreSerialised(t *testing.T) {
	s := New(memory.New(), log.Discard())
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Add(ctx, input(core.NewDate(2024, 1, 1), "1", "0"))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	all, err := s.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 50)
}
