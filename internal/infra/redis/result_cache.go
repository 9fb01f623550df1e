package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"xyen-quiz-service/internal/domain"
)

// QuizLoader fetches a quiz from the backing store on cache miss.
type QuizLoader interface {
	GetQuiz(ctx context.Context, id string) (domain.Quiz, error)
}

// ResultCache serves completed quizzes from Redis so repeated plays of the
// same quiz do not hit the database. Only COMPLETED jobs are cached: a
// terminal job's result data is immutable, everything else must stay fresh.
type ResultCache struct {
	client *redis.Client
	loader QuizLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewResultCache(client *redis.Client, loader QuizLoader, ttl time.Duration) *ResultCache {
	return &ResultCache{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *ResultCache) GetQuiz(ctx context.Context, id string) (domain.Quiz, error) {
	key := c.key(id)

	if raw, err := c.client.Get(ctx, key).Bytes(); err == nil && len(raw) > 0 {
		var quiz domain.Quiz
		if err := json.Unmarshal(raw, &quiz); err == nil {
			return quiz, nil
		}
		// A corrupt entry falls through to the loader and gets overwritten.
	}

	result, err, _ := c.sf.Do(id, func() (interface{}, error) {
		// Re-check in case another goroutine filled the cache.
		if raw, err := c.client.Get(ctx, key).Bytes(); err == nil && len(raw) > 0 {
			var quiz domain.Quiz
			if err := json.Unmarshal(raw, &quiz); err == nil {
				return quiz, nil
			}
		}

		quiz, err := c.loader.GetQuiz(ctx, id)
		if err != nil {
			return domain.Quiz{}, err
		}

		if quiz.Status == domain.StatusCompleted {
			if raw, err := json.Marshal(quiz); err == nil {
				_ = c.client.Set(ctx, key, raw, c.ttlWithJitter()).Err()
			}
		}
		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return result.(domain.Quiz), nil
}

func (c *ResultCache) key(id string) string {
	return fmt.Sprintf("quiz:%s:result", id)
}

func (c *ResultCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
