package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"interview-prep-service/internal/app"
)

// ExplanationCache caches deep-dive and simplified explanations per question
// with TTL, so repeat requests do not re-invoke the model. Concurrent misses
// for the same question collapse into one generation via singleflight.
type ExplanationCache struct {
	source app.ExplanationSource
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedExplanation
}

type cachedExplanation struct {
	text      string
	expiresAt time.Time
}

func NewExplanationCache(source app.ExplanationSource, ttl time.Duration) *ExplanationCache {
	return &ExplanationCache{
		source: source,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedExplanation),
	}
}

func (c *ExplanationCache) DeepDive(ctx context.Context, topicTitle, question string) (string, error) {
	key := "deepdive:" + topicTitle + ":" + question
	return c.getOrGenerate(ctx, key, func() (string, error) {
		return c.source.DeepDive(ctx, topicTitle, question)
	})
}

func (c *ExplanationCache) SimplerExplanation(ctx context.Context, topicTitle, question, previous string) (string, error) {
	key := "simplified:" + topicTitle + ":" + question
	return c.getOrGenerate(ctx, key, func() (string, error) {
		return c.source.SimplerExplanation(ctx, topicTitle, question, previous)
	})
}

func (c *ExplanationCache) getOrGenerate(_ context.Context, key string, generate func() (string, error)) (string, error) {
	now := c.clock()

	c.mu.RLock()
	if entry, ok := c.cache[key]; ok && entry.expiresAt.After(now) {
		c.mu.RUnlock()
		return entry.text, nil
	}
	c.mu.RUnlock()

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		now := c.clock()
		c.mu.RLock()
		if entry, ok := c.cache[key]; ok && entry.expiresAt.After(now) {
			c.mu.RUnlock()
			return entry.text, nil
		}
		c.mu.RUnlock()

		text, err := generate()
		if err != nil {
			return "", err
		}

		c.mu.Lock()
		c.cache[key] = cachedExplanation{
			text:      text,
			expiresAt: now.Add(c.ttlWithJitter()),
		}
		c.mu.Unlock()
		return text, nil
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

func (c *ExplanationCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
