package core

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	acquireScript = `
local key = KEYS[1]
local max_permits = tonumber(ARGV[1])
local timeout = tonumber(ARGV[2])

local current = tonumber(redis.call('GET', key) or '0')
if current < max_permits then
	redis.call('INCR', key)
	redis.call('EXPIRE', key, timeout)
	return 1
end
return 0
`
	releaseScript = `
local key = KEYS[1]
local current = tonumber(redis.call('GET', key) or '0')
if current > 0 then
	redis.call('DECR', key)
	return 1
end
return 0
`
)

// DistributedSemaphore counts permits in a single redis key. The key expires
// after timeout so crashed holders cannot leak permits forever.
type DistributedSemaphore struct {
	redis      redis.UniversalClient
	key        string
	maxPermits int
	timeout    time.Duration
}

func NewDistributedSemaphore(redis redis.UniversalClient, key string, maxPermits int, timeout time.Duration) *DistributedSemaphore {
	return &DistributedSemaphore{
		redis:      redis,
		key:        key,
		maxPermits: maxPermits,
		timeout:    timeout,
	}
}

func (s *DistributedSemaphore) TryAcquire(ctx context.Context) bool {
	result, err := s.redis.Eval(ctx, acquireScript, []string{s.key}, s.maxPermits, int(s.timeout.Seconds())).Int()
	if err != nil {
		slog.Error("failed to acquire semaphore", slog.String("key", s.key), slog.String("error", err.Error()))
		return false
	}
	return result == 1
}

func (s *DistributedSemaphore) Release(ctx context.Context) {
	if err := s.redis.Eval(ctx, releaseScript, []string{s.key}).Err(); err != nil {
		slog.Error("failed to release semaphore", slog.String("key", s.key), slog.String("error", err.Error()))
	}
}

func transcribeSemaphoreKey(prefix string) string {
	return prefix + "bharatlens:semaphore:transcribe"
}
