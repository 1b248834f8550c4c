package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaki95/songinfo/config"
	"github.com/jaki95/songinfo/internal/domain"
	"github.com/jaki95/songinfo/internal/storage"
)

type fakeStore struct {
	mu      sync.Mutex
	data    map[string][]byte
	ttls    map[string]time.Duration
	getErr  error
	setErr  error
	getHits int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		data: make(map[string][]byte),
		ttls: make(map[string]time.Duration),
	}
}

func (s *fakeStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getHits++
	if s.getErr != nil {
		return nil, s.getErr
	}
	v, ok := s.data[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return v, nil
}

func (s *fakeStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setErr != nil {
		return s.setErr
	}
	s.data[key] = value
	s.ttls[key] = ttl
	return nil
}

func (s *fakeStore) Close() error { return nil }

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func newTestCache(t *testing.T, size int, store storage.Store, clock *fakeClock) *TwoTier {
	t.Helper()
	c, err := New(config.CacheConfig{TTL: 30 * time.Minute, MaxEntries: size}, store, WithClock(clock.Now))
	require.NoError(t, err)
	return c
}

func song(bpm int) domain.SongMetadata {
	return domain.SongMetadata{BPM: domain.IntPtr(bpm), Key: domain.StringPtr("C Major")}
}

func TestTwoTier_ReadYourWrites(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	c := newTestCache(t, 50, newFakeStore(), clock)
	ctx := context.Background()

	c.Set(ctx, "song:a:b", song(120))
	got, prov, ok := c.Get(ctx, "song:a:b")
	require.True(t, ok)
	assert.Equal(t, domain.ProvenanceMemory, prov)
	assert.Equal(t, 120, *got.BPM)

	c.Set(ctx, "song:a:b", song(121))
	got, _, ok = c.Get(ctx, "song:a:b")
	require.True(t, ok)
	assert.Equal(t, 121, *got.BPM)
}

func TestTwoTier_CapacityEvictsOldestInserted(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	c := newTestCache(t, 2, nil, clock)
	ctx := context.Background()

	c.Set(ctx, "A", song(100))
	c.Set(ctx, "B", song(110))

	// reads must not protect A from eviction
	_, _, ok := c.Get(ctx, "A")
	require.True(t, ok)

	c.Set(ctx, "C", song(120))

	assert.Equal(t, []string{"B", "C"}, c.Keys())
	_, _, ok = c.Get(ctx, "A")
	assert.False(t, ok)
}

func TestTwoTier_OverwriteCountsAsInsert(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	c := newTestCache(t, 2, nil, clock)
	ctx := context.Background()

	c.Set(ctx, "A", song(100))
	c.Set(ctx, "B", song(110))
	c.Set(ctx, "A", song(101))
	c.Set(ctx, "C", song(120))

	assert.Equal(t, []string{"A", "C"}, c.Keys())
}

func TestTwoTier_ExpiresAfterTTL(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	c := newTestCache(t, 50, nil, clock)
	ctx := context.Background()

	c.Set(ctx, "k", song(128))

	clock.t = clock.t.Add(30 * time.Minute)
	_, _, ok := c.Get(ctx, "k")
	assert.True(t, ok, "entry exactly at the TTL is still fresh")

	clock.t = clock.t.Add(time.Millisecond)
	_, _, ok = c.Get(ctx, "k")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len(), "expired entry is dropped on read")
}

func TestTwoTier_WritesThroughToStore(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	store := newFakeStore()
	c := newTestCache(t, 50, store, clock)

	c.Set(context.Background(), "song:x:y", song(90))

	raw, ok := store.data["song:x:y"]
	require.True(t, ok)
	assert.Equal(t, 30*time.Minute, store.ttls["song:x:y"])

	var persisted domain.CacheEntry
	require.NoError(t, json.Unmarshal(raw, &persisted))
	assert.Equal(t, "song:x:y", persisted.Key)
	assert.Equal(t, clock.t.UnixMilli(), persisted.Timestamp)
	assert.Equal(t, 90, *persisted.Data.BPM)
}

func TestTwoTier_PromotesPersistentHits(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	store := newFakeStore()
	ctx := context.Background()

	// written by another process
	writer := newTestCache(t, 50, store, clock)
	writer.Set(ctx, "song:x:y", song(95))

	reader := newTestCache(t, 50, store, clock)
	got, prov, ok := reader.Get(ctx, "song:x:y")
	require.True(t, ok)
	assert.Equal(t, domain.ProvenancePersistent, prov)
	assert.Equal(t, 95, *got.BPM)

	_, prov, ok = reader.Get(ctx, "song:x:y")
	require.True(t, ok)
	assert.Equal(t, domain.ProvenanceMemory, prov)
	assert.Equal(t, 1, store.getHits)
}

func TestTwoTier_NegativeRecordsRoundTrip(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	store := newFakeStore()
	ctx := context.Background()

	newTestCache(t, 50, store, clock).Set(ctx, "song:no:body", domain.SongMetadata{})

	got, prov, ok := newTestCache(t, 50, store, clock).Get(ctx, "song:no:body")
	require.True(t, ok)
	assert.Equal(t, domain.ProvenancePersistent, prov)
	assert.True(t, got.IsEmpty())
}

func TestTwoTier_StoreFailuresAreSwallowed(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	store := newFakeStore()
	store.getErr = errors.New("connection reset")
	store.setErr = errors.New("connection reset")
	c := newTestCache(t, 50, store, clock)
	ctx := context.Background()

	_, _, ok := c.Get(ctx, "missing")
	assert.False(t, ok)

	assert.NotPanics(t, func() { c.Set(ctx, "k", song(100)) })
	_, prov, ok := c.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, domain.ProvenanceMemory, prov)
}

func TestTwoTier_CorruptPersistentEntryIsAMiss(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	store := newFakeStore()
	store.data["k"] = []byte("{not json")
	c := newTestCache(t, 50, store, clock)

	_, _, ok := c.Get(context.Background(), "k")
	assert.False(t, ok)
}

func TestNew_InvalidConfig(t *testing.T) {
	_, err := New(config.CacheConfig{TTL: time.Minute}, nil)
	assert.Error(t, err)

	_, err = New(config.CacheConfig{MaxEntries: 10}, nil)
	assert.Error(t, err)
}
