package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// Backend is the persistent story store behind the cache.
type Backend interface {
	Create(ctx context.Context, s Story) error
	Get(ctx context.Context, id string) (Story, error)
	AppendStep(ctx context.Context, id string, st Step) (int, error)
	RecordChoice(ctx context.Context, id string, idx int, choice string) error
}

// Cached is a read-through cache of recently used stories. Writes go to the
// backend first and evict the cached copy. A load that overlapped a write is
// returned to its caller but never cached.
type Cached struct {
	backend Backend
	cache   *cache.Cache

	mu     sync.Mutex
	writes uint64
}

// NewCached caches stories for ttl after their last load.
func NewCached(backend Backend, ttl time.Duration) *Cached {
	return &Cached{backend: backend, cache: cache.New(ttl, ttl/2)}
}

func (c *Cached) Create(ctx context.Context, s Story) error {
	if err := c.backend.Create(ctx, s); err != nil {
		return err
	}
	c.evict(s.ID)
	return nil
}

func (c *Cached) Get(ctx context.Context, id string) (Story, error) {
	if v, ok := c.cache.Get(id); ok {
		return clone(v.(Story)), nil
	}

	c.mu.Lock()
	seen := c.writes
	c.mu.Unlock()

	s, err := c.backend.Get(ctx, id)
	if err != nil {
		return Story{}, err
	}

	c.mu.Lock()
	if c.writes == seen {
		c.cache.Set(id, s, cache.DefaultExpiration)
	}
	c.mu.Unlock()
	return clone(s), nil
}

func (c *Cached) AppendStep(ctx context.Context, id string, st Step) (int, error) {
	defer c.evict(id)
	return c.backend.AppendStep(ctx, id, st)
}

func (c *Cached) RecordChoice(ctx context.Context, id string, idx int, choice string) error {
	defer c.evict(id)
	return c.backend.RecordChoice(ctx, id, idx, choice)
}

// evict drops id and marks every load still in flight as stale.
func (c *Cached) evict(id string) {
	c.mu.Lock()
	c.writes++
	c.cache.Delete(id)
	c.mu.Unlock()
}

func clone(s Story) Story {
	s.Genres = slices.Clone(s.Genres)
	s.Steps = slices.Clone(s.Steps)
	return s
}
