package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	ristretto_store "github.com/eko/gocache/store/ristretto/v4"
	"golang.org/x/sync/singleflight"

	"outfitapi/models"
)

// Cached outfits go stale after a day; ristretto's capacity bound evicts
// colder entries before that when the cache fills up.
const defaultOutfitTTL = 24 * time.Hour

// maximum number of cached outfits (each entry costs 1)
const outfitCacheCapacity = 8192

type CacheStats struct {
	Size      int64   `json:"size"`
	Hits      int64   `json:"hits"`
	Misses    int64   `json:"misses"`
	HitRate   float64 `json:"hit_rate"`
	Evictions int64   `json:"evictions"`
}

type OutfitCacheServiceProvider interface {
	GetOrCompute(ctx context.Context, key string, compute func(context.Context) (*models.GeneratedOutfit, error)) (*models.GeneratedOutfit, bool, error)
	Bypass(ctx context.Context, key string, compute func(context.Context) (*models.GeneratedOutfit, error)) (*models.GeneratedOutfit, error)
	Invalidate(ctx context.Context) error
	Stats() CacheStats
}

// OutfitCacheService memoizes generated outfits by request fingerprint on a
// Ristretto store and deduplicates concurrent identical requests with
// singleflight: for one key, exactly one computation runs at a time.
type OutfitCacheService struct {
	cache     *cache.Cache[*models.GeneratedOutfit]
	ristretto *ristretto.Cache
	group     singleflight.Group
	ttl       time.Duration

	// fingerprint -> *sync.Mutex, shared by the singleflight and bypass paths
	locks sync.Map

	hits   atomic.Int64
	misses atomic.Int64
}

func NewOutfitCacheService(ttl time.Duration) (*OutfitCacheService, error) {
	if ttl <= 0 {
		ttl = defaultOutfitTTL
	}
	ristrettoCache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10 * outfitCacheCapacity,
		MaxCost:     outfitCacheCapacity,
		BufferItems: 64,
		Metrics:     true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create ristretto cache: %w", err)
	}
	ristrettoStore := ristretto_store.NewRistretto(ristrettoCache)
	return &OutfitCacheService{
		cache:     cache.New[*models.GeneratedOutfit](ristrettoStore),
		ristretto: ristrettoCache,
		ttl:       ttl,
	}, nil
}

// GetOrCompute returns the cached outfit for key, or runs compute exactly
// once no matter how many callers arrive concurrently with the same key.
// The boolean is true on a cache hit. A failed compute caches nothing and the
// error reaches every waiter; a waiter whose context is cancelled detaches
// without disturbing the in-flight computation.
func (s *OutfitCacheService) GetOrCompute(ctx context.Context, key string, compute func(context.Context) (*models.GeneratedOutfit, error)) (*models.GeneratedOutfit, bool, error) {
	if outfit, err := s.cache.Get(ctx, key); err == nil && outfit != nil {
		s.hits.Add(1)
		return outfit, true, nil
	}
	s.misses.Add(1)

	ch := s.group.DoChan(key, func() (interface{}, error) {
		mu := s.keyLock(key)
		mu.Lock()
		defer mu.Unlock()
		// detached from any single caller's lifetime
		outfit, err := compute(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		s.put(outfit, key)
		return outfit, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, false, res.Err
		}
		return res.Val.(*models.GeneratedOutfit), false, nil
	case <-ctx.Done():
		return nil, false, ctx.Err()
	}
}

// Bypass runs compute unconditionally and overwrites whatever is cached, for
// callers that explicitly want a fresh generation. It takes the same per-key
// lock as GetOrCompute: a bypass arriving during an in-flight computation
// waits for it, and the bypass result is the one left in the cache.
func (s *OutfitCacheService) Bypass(ctx context.Context, key string, compute func(context.Context) (*models.GeneratedOutfit, error)) (*models.GeneratedOutfit, error) {
	mu := s.keyLock(key)
	mu.Lock()
	defer mu.Unlock()

	outfit, err := compute(ctx)
	if err != nil {
		return nil, err
	}
	s.put(outfit, key)
	return outfit, nil
}

// keyLock returns the mutex serializing computations for one key.
func (s *OutfitCacheService) keyLock(key string) *sync.Mutex {
	mu, _ := s.locks.LoadOrStore(key, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

func (s *OutfitCacheService) put(outfit *models.GeneratedOutfit, key string) {
	_ = s.cache.Set(context.Background(), key, outfit,
		store.WithExpiration(s.ttl), store.WithCost(1))
	// ristretto admits asynchronously; wait so the entry is visible to the
	// next Get
	s.ristretto.Wait()
}

// Invalidate drops every cached outfit.
func (s *OutfitCacheService) Invalidate(ctx context.Context) error {
	return s.cache.Clear(ctx)
}

// Stats is a read-only aggregate for the operational endpoint.
func (s *OutfitCacheService) Stats() CacheStats {
	hits := s.hits.Load()
	misses := s.misses.Load()
	var rate float64
	if hits+misses > 0 {
		rate = float64(hits) / float64(hits+misses)
	}
	m := s.ristretto.Metrics
	return CacheStats{
		Size:      int64(m.KeysAdded()) - int64(m.KeysEvicted()),
		Hits:      hits,
		Misses:    misses,
		HitRate:   rate,
		Evictions: int64(m.KeysEvicted()),
	}
}
