package ingest

import (
	"context"
	"sync"

	"github.com/p-n-ai/exam-coach/internal/platform/cache"
)

// SeenSet remembers which paths were already handled.
type SeenSet interface {
	// MarkSeen records path and reports whether it was new.
	MarkSeen(ctx context.Context, path string) (bool, error)
}

// MemorySeen is a process-lifetime SeenSet.
type MemorySeen struct {
	mu    sync.Mutex
	paths map[string]struct{}
}

// NewMemorySeen creates an empty in-memory set.
func NewMemorySeen() *MemorySeen {
	return &MemorySeen{paths: make(map[string]struct{})}
}

func (s *MemorySeen) MarkSeen(_ context.Context, path string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.paths[path]; ok {
		return false, nil
	}
	s.paths[path] = struct{}{}
	return true, nil
}

// RedisSeen keeps the set in Redis so handled paths survive restarts.
type RedisSeen struct {
	cache *cache.Cache
	key   string
}

// NewRedisSeen stores handled paths in the Redis set at key.
func NewRedisSeen(c *cache.Cache, key string) *RedisSeen {
	return &RedisSeen{cache: c, key: key}
}

func (s *RedisSeen) MarkSeen(ctx context.Context, path string) (bool, error) {
	return s.cache.AddToSet(ctx, s.key, path)
}
