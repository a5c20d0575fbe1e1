package riskstore_test

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mailsentry/mailsentry/pkg/domain/riskprofile"
	"github.com/mailsentry/mailsentry/pkg/infra/kvstore"
	"github.com/mailsentry/mailsentry/pkg/infra/riskstore"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeKV is an in-memory implementation of the backing-store contract.
type fakeKV struct {
	mu       sync.Mutex
	value    []byte
	meta     kvstore.Metadata
	hasValue bool

	getErr error
	putErr error

	getCalls int32
	putCalls int32
	getDelay time.Duration
}

func (f *fakeKV) Get(ctx context.Context, key string) ([]byte, error) {
	atomic.AddInt32(&f.getCalls, 1)
	if f.getDelay > 0 {
		time.Sleep(f.getDelay)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	if !f.hasValue {
		return nil, kvstore.ErrNotFound
	}
	return f.value, nil
}

func (f *fakeKV) GetWithMetadata(ctx context.Context, key string) ([]byte, kvstore.Metadata, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, nil, f.getErr
	}
	if !f.hasValue {
		return nil, nil, kvstore.ErrNotFound
	}
	return f.value, f.meta, nil
}

func (f *fakeKV) Put(ctx context.Context, key string, value []byte, metadata kvstore.Metadata) error {
	atomic.AddInt32(&f.putCalls, 1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return f.putErr
	}
	f.value = value
	f.meta = metadata
	f.hasValue = true
	return nil
}

func (f *fakeKV) seed(t *testing.T, profiles []riskprofile.Profile) {
	t.Helper()
	payload, err := json.Marshal(profiles)
	require.NoError(t, err)
	f.mu.Lock()
	f.value = payload
	f.hasValue = true
	f.mu.Unlock()
}

func (f *fakeKV) setGetErr(err error) {
	f.mu.Lock()
	f.getErr = err
	f.mu.Unlock()
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newStore(kv kvstore.Store, clock *fakeClock) *riskstore.Store {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return riskstore.NewStore(kv, logger, riskstore.Config{
		Key:    "risk_table",
		Source: "test",
	}, riskstore.WithClock(clock.Now))
}

func TestLoad_FreshCacheServesWithoutIO(t *testing.T) {
	kv := &fakeKV{}
	kv.seed(t, []riskprofile.Profile{{TLD: "com", RiskMultiplier: 1.0}})
	store := newStore(kv, newFakeClock())

	first := store.Load(context.Background())
	second := store.Load(context.Background())

	assert.Len(t, first, 1)
	assert.Len(t, second, 1)
	assert.Equal(t, int32(1), atomic.LoadInt32(&kv.getCalls))
}

func TestLoad_RefetchesAfterFreshnessWindow(t *testing.T) {
	kv := &fakeKV{}
	kv.seed(t, []riskprofile.Profile{{TLD: "com", RiskMultiplier: 1.0}})
	clock := newFakeClock()
	store := newStore(kv, clock)

	store.Load(context.Background())
	clock.Advance(25 * time.Hour)
	store.Load(context.Background())

	assert.Equal(t, int32(2), atomic.LoadInt32(&kv.getCalls))
}

func TestLoad_EmptyStoreReturnsEmptyTable(t *testing.T) {
	kv := &fakeKV{}
	store := newStore(kv, newFakeClock())

	table := store.Load(context.Background())

	assert.Empty(t, table)
	// an empty payload still counts as a successful refresh
	store.Load(context.Background())
	assert.Equal(t, int32(1), atomic.LoadInt32(&kv.getCalls))
}

func TestLoad_ReadFailureServesStaleTable(t *testing.T) {
	kv := &fakeKV{}
	kv.seed(t, []riskprofile.Profile{{TLD: "xyz", RiskMultiplier: 2.2}})
	clock := newFakeClock()
	store := newStore(kv, clock)

	store.Load(context.Background())

	clock.Advance(25 * time.Hour)
	kv.setGetErr(errors.New("backing store unavailable"))

	table := store.Load(context.Background())
	_, ok := table.Get("xyz")
	assert.True(t, ok, "stale table should be served on read failure")
}

func TestLoad_ReadFailureWithoutCacheReturnsEmptyTable(t *testing.T) {
	kv := &fakeKV{getErr: errors.New("backing store unavailable")}
	store := newStore(kv, newFakeClock())

	table := store.Load(context.Background())
	assert.Empty(t, table)
}

func TestLoad_ReadFailureDoesNotExtendFreshness(t *testing.T) {
	kv := &fakeKV{}
	kv.seed(t, []riskprofile.Profile{{TLD: "com", RiskMultiplier: 1.0}})
	clock := newFakeClock()
	store := newStore(kv, clock)

	store.Load(context.Background())
	clock.Advance(25 * time.Hour)
	kv.setGetErr(errors.New("down"))
	store.Load(context.Background())

	// store recovers, next load must retry instead of trusting the
	// stale projection for another window
	kv.setGetErr(nil)
	store.Load(context.Background())
	assert.Equal(t, int32(3), atomic.LoadInt32(&kv.getCalls))
}

func TestLoad_CorruptPayloadServesStaleTable(t *testing.T) {
	kv := &fakeKV{}
	kv.seed(t, []riskprofile.Profile{{TLD: "com", RiskMultiplier: 1.0}})
	clock := newFakeClock()
	store := newStore(kv, clock)

	store.Load(context.Background())

	clock.Advance(25 * time.Hour)
	kv.mu.Lock()
	kv.value = []byte("{not json")
	kv.mu.Unlock()

	table := store.Load(context.Background())
	_, ok := table.Get("com")
	assert.True(t, ok)
}

func TestLoad_ConcurrentRefreshesCollapseToOneFetch(t *testing.T) {
	kv := &fakeKV{getDelay: 20 * time.Millisecond}
	kv.seed(t, []riskprofile.Profile{{TLD: "com", RiskMultiplier: 1.0}})
	store := newStore(kv, newFakeClock())

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			table := store.Load(context.Background())
			assert.Len(t, table, 1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&kv.getCalls))
}

func TestBulkUpdate_RejectsEmptyTLDAtomically(t *testing.T) {
	kv := &fakeKV{}
	kv.seed(t, []riskprofile.Profile{{TLD: "com", RiskMultiplier: 1.0}})
	store := newStore(kv, newFakeClock())
	before := store.Load(context.Background())

	result := store.BulkUpdate(context.Background(), []riskprofile.Profile{
		{TLD: "xyz", RiskMultiplier: 2.2},
		{TLD: "  ", RiskMultiplier: 1.5},
	})

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "empty tld")
	assert.Equal(t, int32(0), atomic.LoadInt32(&kv.putCalls))

	after := store.Load(context.Background())
	assert.Equal(t, before, after)
}

func TestBulkUpdate_RejectsInvalidMultiplier(t *testing.T) {
	kv := &fakeKV{}
	store := newStore(kv, newFakeClock())

	for _, multiplier := range []float64{math.NaN(), math.Inf(1), -0.5} {
		result := store.BulkUpdate(context.Background(), []riskprofile.Profile{
			{TLD: "xyz", RiskMultiplier: multiplier},
		})
		assert.False(t, result.Success)
		assert.Contains(t, result.Error, "risk_multiplier")
	}
	assert.Equal(t, int32(0), atomic.LoadInt32(&kv.putCalls))
}

func TestBulkUpdate_SuccessInvalidatesCacheWithinWindow(t *testing.T) {
	kv := &fakeKV{}
	kv.seed(t, []riskprofile.Profile{{TLD: "com", RiskMultiplier: 1.0}})
	store := newStore(kv, newFakeClock())

	store.Load(context.Background())

	result := store.BulkUpdate(context.Background(), []riskprofile.Profile{
		{TLD: "COM", RiskMultiplier: 1.0},
		{TLD: "tk", RiskMultiplier: 2.8},
	})
	require.True(t, result.Success)
	assert.Equal(t, 2, result.ProfilesCount)

	table := store.Load(context.Background())
	_, ok := table.Get("tk")
	assert.True(t, ok, "load after update must observe the new data")

	com, ok := table.Get("com")
	assert.True(t, ok)
	assert.Equal(t, "com", com.TLD, "persisted tlds are normalized to lowercase")
}

func TestBulkUpdate_WriteFailureReportsResult(t *testing.T) {
	kv := &fakeKV{putErr: errors.New("write refused")}
	store := newStore(kv, newFakeClock())

	result := store.BulkUpdate(context.Background(), []riskprofile.Profile{
		{TLD: "com", RiskMultiplier: 1.0},
	})

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "write refused")
}

func TestGetMetadata_ParsesPersistedFields(t *testing.T) {
	kv := &fakeKV{}
	store := newStore(kv, newFakeClock())

	result := store.BulkUpdate(context.Background(), []riskprofile.Profile{
		{TLD: "com", RiskMultiplier: 1.0},
		{TLD: "xyz", RiskMultiplier: 2.2},
	})
	require.True(t, result.Success)

	meta := store.GetMetadata(context.Background())
	require.NotNil(t, meta)
	assert.Equal(t, 2, meta.Count)
	assert.Equal(t, "test", meta.Source)
	assert.NotEmpty(t, meta.Version)
	assert.NotEmpty(t, meta.LastUpdated)
}

func TestGetMetadata_ReadFailureReturnsNil(t *testing.T) {
	kv := &fakeKV{getErr: errors.New("down")}
	store := newStore(kv, newFakeClock())
	assert.Nil(t, store.GetMetadata(context.Background()))
}

func TestGetMetadata_MissingKeyReturnsNil(t *testing.T) {
	kv := &fakeKV{}
	store := newStore(kv, newFakeClock())
	assert.Nil(t, store.GetMetadata(context.Background()))
}

func TestGetSingle_CaseInsensitive(t *testing.T) {
	kv := &fakeKV{}
	kv.seed(t, []riskprofile.Profile{{TLD: "xyz", RiskMultiplier: 2.2}})
	store := newStore(kv, newFakeClock())

	upper := store.GetSingle(context.Background(), "XYZ")
	lower := store.GetSingle(context.Background(), "xyz")

	require.NotNil(t, upper)
	require.NotNil(t, lower)
	assert.Equal(t, *upper, *lower)

	assert.Nil(t, store.GetSingle(context.Background(), "unknown"))
}

func TestUpdateSingle_UnknownTLDFailsWithoutWrite(t *testing.T) {
	kv := &fakeKV{}
	kv.seed(t, []riskprofile.Profile{{TLD: "com", RiskMultiplier: 1.0}})
	store := newStore(kv, newFakeClock())
	before := store.Load(context.Background())

	result := store.UpdateSingle(context.Background(), "nope", riskprofile.Overrides{})

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "not found")
	assert.Equal(t, int32(0), atomic.LoadInt32(&kv.putCalls))
	assert.Equal(t, before, store.Load(context.Background()))
}

func TestUpdateSingle_MergesAndPersistsFullSequence(t *testing.T) {
	kv := &fakeKV{}
	kv.seed(t, []riskprofile.Profile{
		{TLD: "com", RiskMultiplier: 1.0},
		{TLD: "xyz", RiskMultiplier: 2.2, Category: "generic"},
	})
	store := newStore(kv, newFakeClock())

	multiplier := 3.0
	result := store.UpdateSingle(context.Background(), "XYZ", riskprofile.Overrides{
		RiskMultiplier: &multiplier,
	})
	require.True(t, result.Success)
	assert.Equal(t, 2, result.ProfilesCount)

	table := store.Load(context.Background())
	updated, ok := table.Get("xyz")
	require.True(t, ok)
	assert.Equal(t, 3.0, updated.RiskMultiplier)
	assert.Equal(t, "generic", updated.Category)
	assert.Equal(t, "xyz", updated.TLD, "identity field survives the merge")

	untouched, ok := table.Get("com")
	require.True(t, ok)
	assert.Equal(t, 1.0, untouched.RiskMultiplier)
}

func TestClearCache_ForcesRefetchInsideWindow(t *testing.T) {
	kv := &fakeKV{}
	kv.seed(t, []riskprofile.Profile{{TLD: "com", RiskMultiplier: 1.0}})
	store := newStore(kv, newFakeClock())

	store.Load(context.Background())
	store.ClearCache()
	store.Load(context.Background())

	assert.Equal(t, int32(2), atomic.LoadInt32(&kv.getCalls))
}
