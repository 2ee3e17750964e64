package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenBucketLimiter rate-limits API clients with a token bucket per client
// key. Buckets live in redis so limits hold across replicas; if redis is
// unavailable the limiter falls back to per-process in-memory buckets rather
// than failing requests.
type TokenBucketLimiter struct {
	redisClient   *redis.Client
	inMemoryStore *InMemoryStore
	useRedis      bool

	maxTokens      int
	refillRate     int
	refillInterval time.Duration
	keyPrefix      string
}

type Config struct {
	MaxTokens      int
	RefillRate     int
	RefillInterval time.Duration
	KeyPrefix      string
}

// Result describes one admission decision.
type Result struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
	ResetAt    time.Time
}

func DefaultConfig() Config {
	return Config{
		MaxTokens:      100,
		RefillRate:     10,
		RefillInterval: 1 * time.Second,
		KeyPrefix:      "ratelimit:",
	}
}

func NewTokenBucketLimiter(redisClient *redis.Client, config Config) *TokenBucketLimiter {
	if config.MaxTokens == 0 {
		config.MaxTokens = 100
	}
	if config.RefillRate == 0 {
		config.RefillRate = 10
	}
	if config.RefillInterval == 0 {
		config.RefillInterval = 1 * time.Second
	}
	if config.KeyPrefix == "" {
		config.KeyPrefix = "ratelimit:"
	}

	limiter := &TokenBucketLimiter{
		redisClient:    redisClient,
		maxTokens:      config.MaxTokens,
		refillRate:     config.RefillRate,
		refillInterval: config.RefillInterval,
		keyPrefix:      config.KeyPrefix,
	}

	if redisClient != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := redisClient.Ping(ctx).Err(); err == nil {
			limiter.useRedis = true
		}
	}

	if !limiter.useRedis {
		limiter.inMemoryStore = NewInMemoryStore()
	}

	return limiter
}

// Allow consumes one token for the client key if available.
func (tbl *TokenBucketLimiter) Allow(ctx context.Context, clientKey string) (*Result, error) {
	if tbl.useRedis {
		return tbl.allowRedis(ctx, clientKey)
	}
	return tbl.allowInMemory(clientKey), nil
}

// tokenBucketScript refills and consumes atomically so concurrent replicas
// never double-spend a token.
const tokenBucketScript = `
	local key = KEYS[1]
	local max_tokens = tonumber(ARGV[1])
	local refill_rate = tonumber(ARGV[2])
	local refill_interval_ms = tonumber(ARGV[3])
	local now_ms = tonumber(ARGV[4])

	local bucket = redis.call('HMGET', key, 'tokens', 'last_refill')
	local tokens = tonumber(bucket[1])
	local last_refill_ms = tonumber(bucket[2])

	if tokens == nil then
		tokens = max_tokens
		last_refill_ms = now_ms
	end

	local elapsed_ms = now_ms - last_refill_ms
	local tokens_to_add = (elapsed_ms / refill_interval_ms) * refill_rate
	tokens = math.min(max_tokens, tokens + tokens_to_add)

	local allowed = tokens >= 1
	if allowed then
		tokens = tokens - 1
	end

	redis.call('HMSET', key, 'tokens', tokens, 'last_refill', now_ms)
	redis.call('EXPIRE', key, 3600)

	return {allowed and 1 or 0, math.floor(tokens)}
`

func (tbl *TokenBucketLimiter) allowRedis(ctx context.Context, clientKey string) (*Result, error) {
	now := time.Now()

	raw, err := tbl.redisClient.Eval(ctx, tokenBucketScript, []string{tbl.keyPrefix + clientKey},
		tbl.maxTokens,
		tbl.refillRate,
		tbl.refillInterval.Milliseconds(),
		now.UnixMilli(),
	).Result()
	if err != nil {
		// Degrade to in-memory rather than rejecting traffic.
		if tbl.inMemoryStore == nil {
			tbl.inMemoryStore = NewInMemoryStore()
		}
		tbl.useRedis = false
		return tbl.allowInMemory(clientKey), nil
	}

	values := raw.([]interface{})
	result := &Result{
		Allowed:   values[0].(int64) == 1,
		Remaining: int(values[1].(int64)),
	}
	if !result.Allowed {
		result.RetryAfter = tbl.retryAfter(float64(result.Remaining))
		result.ResetAt = now.Add(result.RetryAfter)
	}

	return result, nil
}

func (tbl *TokenBucketLimiter) allowInMemory(clientKey string) *Result {
	bucket := tbl.inMemoryStore.GetOrCreate(clientKey, tbl.maxTokens, tbl.refillRate, tbl.refillInterval)

	bucket.mu.Lock()
	defer bucket.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(bucket.lastRefill)
	bucket.tokens = minFloat(float64(bucket.maxTokens), bucket.tokens+elapsed.Seconds()*bucket.refillRate)
	bucket.lastRefill = now

	result := &Result{
		Allowed:   bucket.tokens >= 1.0,
		Remaining: int(bucket.tokens),
	}

	if result.Allowed {
		bucket.tokens -= 1.0
		result.Remaining = int(bucket.tokens)
	} else {
		result.RetryAfter = tbl.retryAfter(bucket.tokens)
		result.ResetAt = now.Add(result.RetryAfter)
	}

	return result
}

func (tbl *TokenBucketLimiter) retryAfter(currentTokens float64) time.Duration {
	tokensPerSecond := float64(tbl.refillRate) / tbl.refillInterval.Seconds()
	secondsToWait := (1.0 - currentTokens) / tokensPerSecond
	return time.Duration(secondsToWait * float64(time.Second))
}

// MaxTokens exposes the bucket capacity for rate limit response headers.
func (tbl *TokenBucketLimiter) MaxTokens() int {
	return tbl.maxTokens
}

// InMemoryStore holds per-client buckets when redis is unavailable.
type InMemoryStore struct {
	mu      sync.Mutex
	buckets map[string]*Bucket
	cleanup *time.Ticker
}

type Bucket struct {
	mu         sync.Mutex
	tokens     float64
	lastRefill time.Time
	maxTokens  int
	refillRate float64 // tokens per second
}

func NewInMemoryStore() *InMemoryStore {
	store := &InMemoryStore{
		buckets: make(map[string]*Bucket),
		cleanup: time.NewTicker(5 * time.Minute),
	}
	go store.cleanupRoutine()
	return store
}

func (ims *InMemoryStore) GetOrCreate(clientKey string, maxTokens, refillRate int, refillInterval time.Duration) *Bucket {
	ims.mu.Lock()
	defer ims.mu.Unlock()

	bucket, exists := ims.buckets[clientKey]
	if !exists {
		bucket = &Bucket{
			tokens:     float64(maxTokens),
			lastRefill: time.Now(),
			maxTokens:  maxTokens,
			refillRate: float64(refillRate) / refillInterval.Seconds(),
		}
		ims.buckets[clientKey] = bucket
	}

	return bucket
}

func (ims *InMemoryStore) cleanupRoutine() {
	for range ims.cleanup.C {
		ims.mu.Lock()
		now := time.Now()
		for key, bucket := range ims.buckets {
			if now.Sub(bucket.lastRefill) > 1*time.Hour {
				delete(ims.buckets, key)
			}
		}
		ims.mu.Unlock()
	}
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
