package service

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// SubmissionGuard rejects re-submission of an attempt: an attempt is scored
// at most once, and a duplicate submit must not re-run the evaluator.
type SubmissionGuard interface {
	// Acquire returns true at most once per attempt id while held.
	Acquire(ctx context.Context, attemptID string) (bool, error)
	// Release frees the id after a submission that failed to persist, so
	// the learner can retry instead of being locked out with no result.
	Release(ctx context.Context, attemptID string) error
}

// RedisGuard backs the guard with SETNX so the check holds across instances.
type RedisGuard struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisGuard(client *redis.Client) *RedisGuard {
	return &RedisGuard{client: client, ttl: 24 * time.Hour}
}

func (g *RedisGuard) Acquire(ctx context.Context, attemptID string) (bool, error) {
	return g.client.SetNX(ctx, "attempt:submitted:"+attemptID, 1, g.ttl).Result()
}

func (g *RedisGuard) Release(ctx context.Context, attemptID string) error {
	return g.client.Del(ctx, "attempt:submitted:"+attemptID).Err()
}

// MemoryGuard is the single-instance fallback used when Redis is not
// configured, and in tests.
type MemoryGuard struct {
	mu   sync.Mutex
	seen map[string]bool
}

func NewMemoryGuard() *MemoryGuard {
	return &MemoryGuard{seen: make(map[string]bool)}
}

func (g *MemoryGuard) Acquire(_ context.Context, attemptID string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.seen[attemptID] {
		return false, nil
	}
	g.seen[attemptID] = true
	return true, nil
}

func (g *MemoryGuard) Release(_ context.Context, attemptID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.seen, attemptID)
	return nil
}
