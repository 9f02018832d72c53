package guard

import (
	"context"
	"sync"
	"time"
)

// sweepEvery bounds how many claims pass between expiry sweeps.
const sweepEvery = 256

// MemoryGuard keeps claims in process memory.
type MemoryGuard struct {
	mu      sync.Mutex
	ttl     time.Duration
	claims  map[string]time.Time
	now     func() time.Time
	counter int
}

// NewMemoryGuard creates an in-memory guard.
func NewMemoryGuard(ttl time.Duration) *MemoryGuard {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryGuard{
		ttl:    ttl,
		claims: make(map[string]time.Time),
		now:    time.Now,
	}
}

// Claim implements Guard.
func (g *MemoryGuard) Claim(_ context.Context, token string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	g.counter++
	if g.counter%sweepEvery == 0 {
		g.sweep(now)
	}

	if expires, ok := g.claims[token]; ok && now.Before(expires) {
		return false, nil
	}
	g.claims[token] = now.Add(g.ttl)
	return true, nil
}

// Release implements Guard.
func (g *MemoryGuard) Release(_ context.Context, token string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.claims, token)
	return nil
}

// Len returns the number of tracked claims, expired ones included.
func (g *MemoryGuard) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.claims)
}

func (g *MemoryGuard) sweep(now time.Time) {
	for token, expires := range g.claims {
		if !now.Before(expires) {
			delete(g.claims, token)
		}
	}
}

// Close implements Guard.
func (g *MemoryGuard) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.claims = make(map[string]time.Time)
	return nil
}
