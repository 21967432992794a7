package ai

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hiresight/resume-ingest/internal/domain"
)

// CachedProvider is a read-through cache in front of a completion provider.
// Responses are keyed by a hash of the prompt, so re-ingesting the same
// resume replays cached completions instead of paying for the model again.
type CachedProvider struct {
	inner domain.CompletionProvider
	rdb   *redis.Client
	ttl   time.Duration
}

// NewCachedProvider wraps provider with a Redis cache. A zero ttl caches
// forever.
func NewCachedProvider(provider domain.CompletionProvider, rdb *redis.Client, ttl time.Duration) *CachedProvider {
	return &CachedProvider{inner: provider, rdb: rdb, ttl: ttl}
}

func cacheKey(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return "completion:" + hex.EncodeToString(sum[:])
}

// Generate returns the cached response for prompt when present, otherwise
// calls the wrapped provider and stores its response. Cache failures are
// logged and ignored; the provider result always wins.
func (c *CachedProvider) Generate(ctx context.Context, prompt string) (string, error) {
	key := cacheKey(prompt)
	if cached, err := c.rdb.Get(ctx, key).Result(); err == nil {
		return cached, nil
	} else if err != redis.Nil {
		slog.Warn("completion cache read failed", "error", err)
	}
	resp, err := c.inner.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	if err := c.rdb.Set(ctx, key, resp, c.ttl).Err(); err != nil {
		slog.Warn("completion cache write failed", "error", err)
	}
	return resp, nil
}
