package redisrepo

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// KEYS[1] sorted set of hits, ARGV: now_ms, window_ms, limit, member.
// Returns {allowed, count, retry_ms}.
const slidingWindowScript = `
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', KEYS[1], 0, now - window)
local count = redis.call('ZCARD', KEYS[1])
if count >= limit then
  local first = redis.call('ZRANGE', KEYS[1], 0, 0, 'WITHSCORES')
  local retry = window - (now - (tonumber(first[2]) or now))
  if retry < 0 then retry = 0 end
  return {0, count, retry}
end

redis.call('ZADD', KEYS[1], now, ARGV[4])
redis.call('PEXPIRE', KEYS[1], window)
return {1, count + 1, 0}
`

// Decision is the outcome of one limiter check.
type Decision struct {
	Allowed    bool
	Count      int64
	RetryAfter time.Duration
}

// RateLimiter admits at most limit hits per key within a sliding window.
// Rejected hits are not recorded.
type RateLimiter struct {
	rdb    *redis.Client
	scope  string
	limit  int
	window time.Duration
	script *redis.Script
	now    func() time.Time
}

func NewRateLimiter(rdb *redis.Client, scope string, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		rdb:    rdb,
		scope:  scope,
		limit:  limit,
		window: window,
		script: redis.NewScript(slidingWindowScript),
		now:    time.Now,
	}
}

func (l *RateLimiter) Allow(ctx context.Context, id string) (Decision, error) {
	const op = "redisrepo.RateLimiter.Allow"

	res, err := l.script.Run(ctx, l.rdb,
		[]string{KeyRateLimit(l.scope, id)},
		l.now().UnixMilli(), l.window.Milliseconds(), l.limit, member(),
	).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("%s: %w", op, err)
	}
	if len(res) != 3 {
		return Decision{}, fmt.Errorf("%s: unexpected script result %v", op, res)
	}

	return Decision{
		Allowed:    res[0] == 1,
		Count:      res[1],
		RetryAfter: time.Duration(res[2]) * time.Millisecond,
	}, nil
}

// RetryAfterSeconds rounds d up to whole seconds for the Retry-After header.
func RetryAfterSeconds(d time.Duration) string {
	secs := int64((d + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return strconv.FormatInt(secs, 10)
}

func member() string {
	b := make([]byte, 12)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
