package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/jonesrussell/north-cloud/curator/internal/domain"
	"github.com/jonesrussell/north-cloud/curator/internal/logger"
	"github.com/jonesrussell/north-cloud/curator/internal/store"
)

// countingStore wraps MemoryStore and counts Get calls so cache hits
// are observable.
type countingStore struct {
	*store.MemoryStore
	gets int
}

func (s *countingStore) Get(ctx context.Context, id string) (*domain.FeedConfig, error) {
	s.gets++
	return s.MemoryStore.Get(ctx, id)
}

func newCachedStore(t *testing.T) (*store.CachedStore, *countingStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	backing := &countingStore{MemoryStore: store.NewMemoryStore()}
	cached := store.NewCachedStore(backing, client, time.Minute, logger.NewNop())
	return cached, backing, mr
}

func TestCachedStoreGetReadsThrough(t *testing.T) {
	cached, backing, _ := newCachedStore(t)
	ctx := context.Background()

	cfg := &domain.FeedConfig{Name: "Science", Keywords: []string{"science"}}
	if err := cached.Create(ctx, cfg); err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Create primed the cache, so neither read hits the backing store.
	for i := 0; i < 2; i++ {
		got, err := cached.Get(ctx, cfg.ID)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got.Name != "Science" {
			t.Fatalf("expected cached config, got %+v", got)
		}
	}
	if backing.gets != 0 {
		t.Fatalf("expected 0 backing reads, got %d", backing.gets)
	}
}

func TestCachedStoreExpiryFallsBack(t *testing.T) {
	cached, backing, mr := newCachedStore(t)
	ctx := context.Background()

	cfg := &domain.FeedConfig{Name: "Science"}
	if err := cached.Create(ctx, cfg); err != nil {
		t.Fatalf("Create: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	if _, err := cached.Get(ctx, cfg.ID); err != nil {
		t.Fatalf("Get after expiry: %v", err)
	}
	if backing.gets != 1 {
		t.Fatalf("expected 1 backing read after expiry, got %d", backing.gets)
	}

	// The miss primed the cache again.
	if _, err := cached.Get(ctx, cfg.ID); err != nil {
		t.Fatalf("Get after re-prime: %v", err)
	}
	if backing.gets != 1 {
		t.Fatalf("expected cache hit after re-prime, got %d backing reads", backing.gets)
	}
}

func TestCachedStoreUpdateRefreshesEntry(t *testing.T) {
	cached, backing, _ := newCachedStore(t)
	ctx := context.Background()

	cfg := &domain.FeedConfig{Name: "Science"}
	if err := cached.Create(ctx, cfg); err != nil {
		t.Fatalf("Create: %v", err)
	}

	cfg.Name = "Science v2"
	if err := cached.Update(ctx, cfg); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err := cached.Get(ctx, cfg.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "Science v2" {
		t.Fatalf("expected refreshed cache entry, got %q", got.Name)
	}
	if backing.gets != 0 {
		t.Fatalf("expected cached read after update, got %d backing reads", backing.gets)
	}
}

func TestCachedStoreDeleteInvalidates(t *testing.T) {
	cached, _, _ := newCachedStore(t)
	ctx := context.Background()

	cfg := &domain.FeedConfig{Name: "Science"}
	if err := cached.Create(ctx, cfg); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := cached.Delete(ctx, cfg.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	_, err := cached.Get(ctx, cfg.ID)
	if !errors.Is(err, domain.ErrConfigNotFound) {
		t.Fatalf("expected ErrConfigNotFound after delete, got %v", err)
	}
}

func TestCachedStoreSurvivesRedisOutage(t *testing.T) {
	cached, backing, mr := newCachedStore(t)
	ctx := context.Background()

	cfg := &domain.FeedConfig{Name: "Science"}
	if err := cached.Create(ctx, cfg); err != nil {
		t.Fatalf("Create: %v", err)
	}

	mr.Close()

	got, err := cached.Get(ctx, cfg.ID)
	if err != nil {
		t.Fatalf("Get with redis down: %v", err)
	}
	if got.Name != "Science" {
		t.Fatalf("expected backing read during outage, got %+v", got)
	}
	if backing.gets != 1 {
		t.Fatalf("expected 1 backing read during outage, got %d", backing.gets)
	}
}

func TestCachedStoreCorruptEntryFallsBack(t *testing.T) {
	cached, backing, mr := newCachedStore(t)
	ctx := context.Background()

	cfg := &domain.FeedConfig{Name: "Science"}
	if err := cached.Create(ctx, cfg); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := mr.Set("curator:feed_config:"+cfg.ID, "not-json"); err != nil {
		t.Fatalf("corrupt cache entry: %v", err)
	}

	got, err := cached.Get(ctx, cfg.ID)
	if err != nil {
		t.Fatalf("Get with corrupt entry: %v", err)
	}
	if got.Name != "Science" || backing.gets != 1 {
		t.Fatalf("expected backing fallback, got %+v after %d reads", got, backing.gets)
	}
}
