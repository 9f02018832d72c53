package guard

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"interactbot/pkg/config"
	"interactbot/pkg/logger"
)

func TestMemoryGuardGrantsFirstClaimOnly(t *testing.T) {
	g := NewMemoryGuard(time.Minute)
	ctx := context.Background()

	ok, err := g.Claim(ctx, "tok")
	if err != nil || !ok {
		t.Fatalf("first claim: ok=%v err=%v", ok, err)
	}
	ok, err = g.Claim(ctx, "tok")
	if err != nil || ok {
		t.Fatalf("second claim: ok=%v err=%v", ok, err)
	}
	ok, _ = g.Claim(ctx, "other")
	if !ok {
		t.Fatal("claim for a different token should be granted")
	}
}

func TestMemoryGuardExpires(t *testing.T) {
	g := NewMemoryGuard(time.Minute)
	now := time.Unix(1700000000, 0)
	g.now = func() time.Time { return now }

	if ok, _ := g.Claim(context.Background(), "tok"); !ok {
		t.Fatal("first claim should be granted")
	}
	now = now.Add(61 * time.Second)
	if ok, _ := g.Claim(context.Background(), "tok"); !ok {
		t.Fatal("claim after TTL should be granted")
	}
}

func TestMemoryGuardSweepsExpiredClaims(t *testing.T) {
	g := NewMemoryGuard(time.Second)
	now := time.Unix(1700000000, 0)
	g.now = func() time.Time { return now }

	for i := 0; i < sweepEvery-1; i++ {
		_, _ = g.Claim(context.Background(), fmt.Sprintf("tok-%d", i))
	}
	now = now.Add(2 * time.Second)
	_, _ = g.Claim(context.Background(), "trigger")

	if got := g.Len(); got != 1 {
		t.Fatalf("expected expired claims to be swept, %d remain", got)
	}
}

func TestMemoryGuardConcurrentClaims(t *testing.T) {
	g := NewMemoryGuard(time.Minute)
	var granted atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := g.Claim(context.Background(), "shared"); ok {
				granted.Add(1)
			}
		}()
	}
	wg.Wait()

	if granted.Load() != 1 {
		t.Fatalf("expected exactly one grant, got %d", granted.Load())
	}
}

type fakeSetNX struct {
	mu     sync.Mutex
	keys   map[string]time.Duration
	err    error
	closed bool
}

func (f *fakeSetNX) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return redis.NewBoolResult(false, f.err)
	}
	if _, ok := f.keys[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	f.keys[key] = expiration
	return redis.NewBoolResult(true, nil)
}

func (f *fakeSetNX) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return redis.NewIntResult(0, f.err)
	}
	var n int64
	for _, key := range keys {
		if _, ok := f.keys[key]; ok {
			delete(f.keys, key)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func (f *fakeSetNX) Close() error {
	f.closed = true
	return nil
}

func TestRedisGuardUsesHashedKeyAndTTL(t *testing.T) {
	fake := &fakeSetNX{keys: map[string]time.Duration{}}
	g := newRedisGuard(logger.Nop(), fake, "test:", 3*time.Minute)

	ok, err := g.Claim(context.Background(), "secret-token")
	if err != nil || !ok {
		t.Fatalf("first claim: ok=%v err=%v", ok, err)
	}
	if ok, _ := g.Claim(context.Background(), "secret-token"); ok {
		t.Fatal("second claim should be refused")
	}

	if len(fake.keys) != 1 {
		t.Fatalf("expected one key, got %d", len(fake.keys))
	}
	for key, ttl := range fake.keys {
		if ttl != 3*time.Minute {
			t.Fatalf("expected 3m TTL, got %s", ttl)
		}
		if key == "test:secret-token" || len(key) != len("test:")+64 {
			t.Fatalf("expected hashed key, got %q", key)
		}
	}

	if err := g.Close(); err != nil || !fake.closed {
		t.Fatal("expected Close to close the client")
	}
}

func TestReleaseAllowsNewClaim(t *testing.T) {
	ctx := context.Background()
	guards := map[string]Guard{
		"memory": NewMemoryGuard(time.Minute),
		"redis":  newRedisGuard(logger.Nop(), &fakeSetNX{keys: map[string]time.Duration{}}, "", 0),
	}
	for name, g := range guards {
		if ok, _ := g.Claim(ctx, "tok"); !ok {
			t.Fatalf("%s: first claim refused", name)
		}
		if err := g.Release(ctx, "tok"); err != nil {
			t.Fatalf("%s: Release: %v", name, err)
		}
		if ok, _ := g.Claim(ctx, "tok"); !ok {
			t.Fatalf("%s: claim after release refused", name)
		}
	}
}

func TestRedisGuardPropagatesErrors(t *testing.T) {
	fake := &fakeSetNX{keys: map[string]time.Duration{}, err: errors.New("down")}
	g := newRedisGuard(logger.Nop(), fake, "", 0)

	if _, err := g.Claim(context.Background(), "tok"); err == nil {
		t.Fatal("expected error")
	}
	if err := g.Release(context.Background(), "tok"); err == nil {
		t.Fatal("expected release error")
	}
}

// Runs against a real server when INTERACTBOT_TEST_REDIS_ADDR is set.
func TestRedisGuardLive(t *testing.T) {
	addr := os.Getenv("INTERACTBOT_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("INTERACTBOT_TEST_REDIS_ADDR not set")
	}

	ctx := context.Background()
	g, err := NewRedisGuard(ctx, logger.Nop(), &RedisGuardConfig{Addr: addr, Prefix: "interactbot:test:", TTL: 5 * time.Second})
	if err != nil {
		t.Fatalf("NewRedisGuard: %v", err)
	}
	defer g.Close()

	token := fmt.Sprintf("live-%d", time.Now().UnixNano())
	if ok, err := g.Claim(ctx, token); err != nil || !ok {
		t.Fatalf("first claim: ok=%v err=%v", ok, err)
	}
	if ok, err := g.Claim(ctx, token); err != nil || ok {
		t.Fatalf("second claim: ok=%v err=%v", ok, err)
	}
}

func TestNewSelectsBackend(t *testing.T) {
	ctx := context.Background()

	g, err := New(ctx, logger.Nop(), &Config{Backend: BackendMemory})
	if err != nil {
		t.Fatalf("memory: %v", err)
	}
	if _, ok := g.(*MemoryGuard); !ok {
		t.Fatalf("expected *MemoryGuard, got %T", g)
	}

	g, err = New(ctx, logger.Nop(), &Config{Backend: BackendNone})
	if err != nil {
		t.Fatalf("none: %v", err)
	}
	if ok, _ := g.Claim(ctx, "x"); !ok {
		t.Fatal("nop guard should grant")
	}
	if ok, _ := g.Claim(ctx, "x"); !ok {
		t.Fatal("nop guard should grant repeatedly")
	}

	if _, err := New(ctx, logger.Nop(), &Config{Backend: BackendRedis}); err == nil {
		t.Fatal("expected error without redis address")
	}
	if _, err := New(ctx, logger.Nop(), &Config{Backend: "etcd"}); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestEffectiveTTL(t *testing.T) {
	if got := (&Config{}).EffectiveTTL(); got != DefaultTTL {
		t.Fatalf("expected default TTL, got %s", got)
	}
	if got := (&Config{TTL: 2 * time.Minute}).EffectiveTTL(); got != 2*time.Minute {
		t.Fatalf("expected 2m, got %s", got)
	}
}

func TestProvideGuardLogsEffectiveTTL(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	cfg := config.DefaultConfig()
	cfg.Guard.TTLMinutes = 0

	var g Guard
	app := fxtest.New(t,
		fx.Supply(cfg, logger.FromZap(zap.New(core))),
		fx.Provide(ProvideGuard),
		fx.Populate(&g),
	)
	app.RequireStart()
	defer app.RequireStop()

	entries := logs.FilterMessage("Response guard initialized").All()
	if len(entries) != 1 {
		t.Fatalf("expected one init log, got %d", len(entries))
	}
	if ttl := entries[0].ContextMap()["ttl"]; ttl != DefaultTTL {
		t.Fatalf("expected ttl %s, got %v", DefaultTTL, ttl)
	}
}
