package quizcache

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/edupress/quizcore/internal/quiz"
)

// Redis caches full quiz definitions as JSON values under quiz:{id}:def and
// falls back to the loader on cache miss. Definitions include answer keys, so
// the cache must live on a trusted network segment, same as the database.
type Redis struct {
	client *redis.Client
	loader quiz.Loader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewRedis(client *redis.Client, loader quiz.Loader, ttl time.Duration) *Redis {
	return &Redis{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *Redis) GetQuiz(ctx context.Context, id string) (quiz.Quiz, error) {
	if q, ok := r.fromCache(ctx, id); ok {
		return q, nil
	}

	result, err, _ := r.sf.Do(id, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if q, ok := r.fromCache(ctx, id); ok {
			return q, nil
		}

		q, err := r.loader.GetQuiz(ctx, id)
		if err != nil {
			return quiz.Quiz{}, err
		}

		if data, merr := json.Marshal(q); merr == nil {
			_ = r.client.Set(ctx, r.key(id), data, r.ttlWithJitter()).Err()
		}
		return q, nil
	})
	if err != nil {
		return quiz.Quiz{}, err
	}
	return result.(quiz.Quiz), nil
}

// Invalidate drops one entry, e.g. after an authoring write.
func (r *Redis) Invalidate(ctx context.Context, id string) {
	_ = r.client.Del(ctx, r.key(id)).Err()
}

func (r *Redis) fromCache(ctx context.Context, id string) (quiz.Quiz, bool) {
	data, err := r.client.Get(ctx, r.key(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			// Treat a flaky cache as a miss; the loader is authoritative.
			return quiz.Quiz{}, false
		}
		return quiz.Quiz{}, false
	}
	var q quiz.Quiz
	if err := json.Unmarshal(data, &q); err != nil {
		return quiz.Quiz{}, false
	}
	return q, true
}

func (r *Redis) key(id string) string { return "quiz:" + id + ":def" }

func (r *Redis) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
