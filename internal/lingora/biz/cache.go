package biz

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/lingora-ai/lingora/internal/pkg/textutil"
)

// AnswerCache memoizes genuine answers in redis, keyed by question,
// question language and emotion descriptor. Cache failures only log;
// the pipeline never depends on redis being up.
type AnswerCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger *zap.Logger
}

// NewAnswerCache creates a cache on an existing redis client.
func NewAnswerCache(client *redis.Client, prefix string, ttl time.Duration, logger *zap.Logger) *AnswerCache {
	if prefix == "" {
		prefix = "lingora:answer:"
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnswerCache{client: client, prefix: prefix, ttl: ttl, logger: logger}
}

func (c *AnswerCache) key(question, lang string, emotion Emotion) string {
	return c.prefix + textutil.HashString(question+"|"+lang+"|"+string(emotion))
}

// Get returns a cached answer if present.
func (c *AnswerCache) Get(ctx context.Context, question, lang string, emotion Emotion) (string, bool) {
	val, err := c.client.Get(ctx, c.key(question, lang, emotion)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("answer cache get failed", zap.Error(err))
		}
		return "", false
	}
	return val, true
}

// Set stores an answer with the cache TTL.
func (c *AnswerCache) Set(ctx context.Context, question, lang string, emotion Emotion, answer string) {
	if err := c.client.Set(ctx, c.key(question, lang, emotion), answer, c.ttl).Err(); err != nil {
		c.logger.Warn("answer cache set failed", zap.Error(err))
	}
}
