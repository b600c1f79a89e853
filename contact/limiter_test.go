package contact

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestMemoryLimiterBlocksAfterMax(t *testing.T) {
	limiter := NewMemoryLimiter(2, 200*time.Millisecond)
	defer limiter.Stop()
	ctx := context.Background()
	ip := "203.0.113.10"

	if !limiter.Allow(ctx, ip) {
		t.Fatalf("expected first attempt to be allowed")
	}
	if !limiter.Allow(ctx, ip) {
		t.Fatalf("expected second attempt to be allowed")
	}
	if limiter.Allow(ctx, ip) {
		t.Fatalf("expected third attempt to be blocked")
	}
}

func TestMemoryLimiterResetsAfterWindow(t *testing.T) {
	limiter := NewMemoryLimiter(1, 150*time.Millisecond)
	defer limiter.Stop()
	ctx := context.Background()
	ip := "203.0.113.20"

	if !limiter.Allow(ctx, ip) {
		t.Fatalf("expected first attempt to be allowed")
	}
	if limiter.Allow(ctx, ip) {
		t.Fatalf("expected second attempt to be blocked")
	}

	time.Sleep(200 * time.Millisecond)
	if !limiter.Allow(ctx, ip) {
		t.Fatalf("expected attempt after window to be allowed")
	}
}

func TestMemoryLimiterIsPerKey(t *testing.T) {
	limiter := NewMemoryLimiter(1, 200*time.Millisecond)
	defer limiter.Stop()
	ctx := context.Background()

	if !limiter.Allow(ctx, "203.0.113.30") {
		t.Fatalf("expected first ip to be allowed")
	}
	if !limiter.Allow(ctx, "203.0.113.31") {
		t.Fatalf("expected second ip to be allowed independently")
	}
	if limiter.Allow(ctx, "203.0.113.30") {
		t.Fatalf("expected first ip to be blocked after max")
	}
}

func TestMemoryLimiterStopIsIdempotent(t *testing.T) {
	limiter := NewMemoryLimiter(1, time.Minute)
	limiter.Stop()
	limiter.Stop()
}

func TestRateLimitedSender(t *testing.T) {
	limiter := NewMemoryLimiter(1, time.Minute)
	defer limiter.Stop()
	next := &fakeSender{}
	s := RateLimited(next, limiter, "contact:203.0.113.9")

	if err := s.Send(context.Background(), Submission{Name: "Anna"}); err != nil {
		t.Fatalf("first send: %v", err)
	}
	if err := s.Send(context.Background(), Submission{Name: "Anna"}); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("second send error = %v, want ErrRateLimited", err)
	}
	if got := next.calls.Load(); got != 1 {
		t.Fatalf("next called %d times, want 1", got)
	}
}

func TestRedisLimiterFailsOpen(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()
	limiter := NewRedisLimiter(client, 1, time.Minute, discardLogger())

	for i := 0; i < 3; i++ {
		if !limiter.Allow(context.Background(), "203.0.113.40") {
			t.Fatalf("attempt %d blocked while redis is down", i+1)
		}
	}
}

// redisClient connects to REDIS_URL or skips.
func redisClient(t *testing.T) *redis.Client {
	t.Helper()
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		t.Fatalf("parse REDIS_URL: %v", err)
	}
	client := redis.NewClient(opts)
	t.Cleanup(func() { client.Close() })
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis unreachable: %v", err)
	}
	return client
}

func TestRedisLimiterCountsWithinWindow(t *testing.T) {
	client := redisClient(t)
	ctx := context.Background()
	limiter := NewRedisLimiter(client, 2, time.Minute, discardLogger())
	limiter.prefix = "pubsite:test:" + t.Name() + ":"
	key := limiter.prefix + "203.0.113.50"
	t.Cleanup(func() { client.Del(context.Background(), key) })
	client.Del(ctx, key)

	if !limiter.Allow(ctx, "203.0.113.50") || !limiter.Allow(ctx, "203.0.113.50") {
		t.Fatalf("expected first two attempts to be allowed")
	}
	if limiter.Allow(ctx, "203.0.113.50") {
		t.Fatalf("expected third attempt to be blocked")
	}
	ttl, err := client.PTTL(ctx, key).Result()
	if err != nil {
		t.Fatalf("PTTL: %v", err)
	}
	if ttl <= 0 || ttl > time.Minute {
		t.Fatalf("window TTL = %v, want within (0, 1m]", ttl)
	}
}

func TestRedisLimiterRepairsMissingTTL(t *testing.T) {
	client := redisClient(t)
	ctx := context.Background()
	limiter := NewRedisLimiter(client, 5, time.Minute, discardLogger())
	limiter.prefix = "pubsite:test:" + t.Name() + ":"
	key := limiter.prefix + "203.0.113.51"
	t.Cleanup(func() { client.Del(context.Background(), key) })

	// A counter written without an expiry.
	if err := client.Set(ctx, key, 3, 0).Err(); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if !limiter.Allow(ctx, "203.0.113.51") {
		t.Fatalf("expected fourth attempt to be allowed")
	}
	ttl, err := client.PTTL(ctx, key).Result()
	if err != nil {
		t.Fatalf("PTTL: %v", err)
	}
	if ttl <= 0 {
		t.Fatalf("counter TTL = %v, want a window expiry", ttl)
	}
}
