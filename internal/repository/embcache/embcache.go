// Package embcache decorates an embedder with a Redis-backed cache so
// repeated texts are vectorized once.
package embcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"github.com/snapquery/snapquery/internal/db"
	"github.com/snapquery/snapquery/internal/domain"
)

// Cached wraps an embedder. Cache failures are logged and treated as
// misses; they never fail the embed call.
type Cached struct {
	inner  domain.Embedder
	kv     db.KVStore
	logger *zap.Logger
}

// New wraps inner with a cache backed by kv.
func New(inner domain.Embedder, kv db.KVStore, logger *zap.Logger) *Cached {
	return &Cached{inner: inner, kv: kv, logger: logger}
}

// Embed returns the cached vector for text, or computes and stores it.
func (c *Cached) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	key := cacheKey(text)

	if data, err := c.kv.Get(ctx, key); err == nil {
		var vec []float32
		if err := json.Unmarshal(data, &vec); err == nil {
			return domain.EmbeddingResult{Embedding: vec}, nil
		}
		c.logger.Warn("corrupt embedding cache entry", zap.String("key", key))
	} else if !errors.Is(err, db.ErrKeyNotFound) {
		c.logger.Warn("embedding cache read failed", zap.Error(err))
	}

	res, err := c.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, err
	}

	if data, err := json.Marshal(res.Embedding); err == nil {
		if err := c.kv.Set(ctx, key, data); err != nil {
			c.logger.Warn("embedding cache write failed", zap.Error(err))
		}
	}
	return res, nil
}

func cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return domain.KeyPrefix + "emb:" + hex.EncodeToString(sum[:])
}
