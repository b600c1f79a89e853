package contact

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter caps how many submissions a key (usually a client IP) may make in
// a window.
type Limiter interface {
	Allow(ctx context.Context, key string) bool
}

// MemoryLimiter is a per-key sliding-window limiter held in process memory.
// Counts are not shared between instances; use RedisLimiter for that.
type MemoryLimiter struct {
	mu     sync.Mutex
	hits   map[string][]time.Time
	max    int
	window time.Duration
	stop   chan struct{}
	once   sync.Once
}

// NewMemoryLimiter allows max hits per key within window.
func NewMemoryLimiter(max int, window time.Duration) *MemoryLimiter {
	l := &MemoryLimiter{
		hits:   make(map[string][]time.Time),
		max:    max,
		window: window,
		stop:   make(chan struct{}),
	}
	go l.cleanup()
	return l
}

func (l *MemoryLimiter) cleanup() {
	ticker := time.NewTicker(l.window)
	defer ticker.Stop()
	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
		}
		cutoff := time.Now().Add(-l.window)
		l.mu.Lock()
		for key, hits := range l.hits {
			kept := prune(hits, cutoff)
			if len(kept) == 0 {
				delete(l.hits, key)
			} else {
				l.hits[key] = kept
			}
		}
		l.mu.Unlock()
	}
}

func prune(hits []time.Time, cutoff time.Time) []time.Time {
	kept := hits[:0]
	for _, t := range hits {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	return kept
}

// Allow records a hit for key and reports whether it is within the limit.
// Rejected hits are not recorded.
func (l *MemoryLimiter) Allow(_ context.Context, key string) bool {
	now := time.Now()
	l.mu.Lock()
	defer l.mu.Unlock()

	kept := prune(l.hits[key], now.Add(-l.window))
	if len(kept) >= l.max {
		l.hits[key] = kept
		return false
	}
	l.hits[key] = append(kept, now)
	return true
}

// Stop ends the cleanup goroutine.
func (l *MemoryLimiter) Stop() {
	l.once.Do(func() { close(l.stop) })
}

// RedisLimiter is a fixed-window counter in Redis, shared by every instance
// pointing at the same server.
type RedisLimiter struct {
	client *redis.Client
	prefix string
	max    int64
	window time.Duration
	logger *slog.Logger
}

// NewRedisLimiter allows max hits per key per window using client.
func NewRedisLimiter(client *redis.Client, max int, window time.Duration, logger *slog.Logger) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		prefix: "pubsite:contact:",
		max:    int64(max),
		window: window,
		logger: logger,
	}
}

// incrWindow counts a hit and starts the window on the first one. A counter
// left without a TTL gets one too, so a key can never stick forever.
var incrWindow = redis.NewScript(`
local n = redis.call('INCR', KEYS[1])
if n == 1 or redis.call('PTTL', KEYS[1]) < 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return n
`)

// Allow increments key's counter. When Redis is unreachable the request is
// let through and the error logged.
func (l *RedisLimiter) Allow(ctx context.Context, key string) bool {
	n, err := incrWindow.Run(ctx, l.client, []string{l.prefix + key}, l.window.Milliseconds()).Int64()
	if err != nil {
		l.logger.WarnContext(ctx, "rate limiter unavailable", slog.String("key", key), slog.Any("error", err))
		return true
	}
	return n <= l.max
}

type limitedSender struct {
	next    Sender
	limiter Limiter
	key     string
}

// RateLimited wraps next so each Send first counts against key. A blocked
// send returns ErrRateLimited without calling next.
func RateLimited(next Sender, limiter Limiter, key string) Sender {
	return limitedSender{next: next, limiter: limiter, key: key}
}

func (s limitedSender) Send(ctx context.Context, sub Submission) error {
	if !s.limiter.Allow(ctx, s.key) {
		return ErrRateLimited
	}
	return s.next.Send(ctx, sub)
}
