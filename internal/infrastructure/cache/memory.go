package cache

import (
	"context"
	"fmt"
	"time"

	"merchant-studio/internal/domain"
	"merchant-studio/pkg/cache"

	"github.com/goccy/go-json"
	gocache "github.com/patrickmn/go-cache"
)

// memoryCache backs the attribute schema cache and the live session table.
type memoryCache struct {
	items *gocache.Cache
}

// NewMemoryCache returns a process local cache. A negative ttl keeps items until they
// are deleted; janitor is how often expired items are swept (0 disables sweeping).
func NewMemoryCache(ttl, janitor time.Duration) cache.CacheService {
	return &memoryCache{items: gocache.New(ttl, janitor)}
}

func (c *memoryCache) Get(key string) (interface{}, bool) {
	return c.items.Get(key)
}

func (c *memoryCache) Set(key string, value interface{}, ttl time.Duration) {
	c.items.Set(key, value, ttl)
}

func (c *memoryCache) Delete(key string) {
	c.items.Delete(key)
}

// memoryDraftStore keeps encoded session snapshots in process memory. Used when no
// DB_DSN is set; drafts are lost on restart.
type memoryDraftStore struct {
	snapshots *gocache.Cache
	ttl       time.Duration
}

func NewMemoryDraftStore(ttl time.Duration) domain.DraftStore {
	return &memoryDraftStore{
		snapshots: gocache.New(ttl, ttl*2),
		ttl:       ttl,
	}
}

// Save stores an encoded copy so later mutations of snap do not leak into the store.
func (s *memoryDraftStore) Save(_ context.Context, snap *domain.SessionSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode session %s: %w", snap.ID, err)
	}
	s.snapshots.Set(snap.ID, data, s.ttl)
	return nil
}

func (s *memoryDraftStore) Load(_ context.Context, id string) (*domain.SessionSnapshot, error) {
	val, found := s.snapshots.Get(id)
	if !found {
		return nil, domain.ErrSessionNotFound
	}
	var snap domain.SessionSnapshot
	if err := json.Unmarshal(val.([]byte), &snap); err != nil {
		return nil, fmt.Errorf("failed to decode session %s: %w", id, err)
	}
	return &snap, nil
}

func (s *memoryDraftStore) Delete(_ context.Context, id string) error {
	s.snapshots.Delete(id)
	return nil
}
