// Package quizcache provides TTL read-through caches over the quiz catalog.
// Published question sets are immutable, so a short TTL is only there to pick
// up publish/unpublish flips without a restart.
package quizcache

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/edupress/quizcore/internal/quiz"
)

// Memory caches full quiz definitions in-process with TTL.
type Memory struct {
	loader quiz.Loader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedQuiz
}

type cachedQuiz struct {
	quiz      quiz.Quiz
	expiresAt time.Time
}

func NewMemory(loader quiz.Loader, ttl time.Duration) *Memory {
	return &Memory{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedQuiz),
	}
}

func (m *Memory) GetQuiz(ctx context.Context, id string) (quiz.Quiz, error) {
	now := m.clock()

	m.mu.RLock()
	if entry, ok := m.cache[id]; ok && entry.expiresAt.After(now) {
		m.mu.RUnlock()
		return entry.quiz, nil
	}
	m.mu.RUnlock()

	result, err, _ := m.sf.Do(id, func() (interface{}, error) {
		now := m.clock()
		m.mu.RLock()
		if entry, ok := m.cache[id]; ok && entry.expiresAt.After(now) {
			m.mu.RUnlock()
			return entry.quiz, nil
		}
		m.mu.RUnlock()

		q, err := m.loader.GetQuiz(ctx, id)
		if err != nil {
			return quiz.Quiz{}, err
		}

		m.mu.Lock()
		m.cache[id] = cachedQuiz{quiz: q, expiresAt: now.Add(m.ttlWithJitter())}
		m.mu.Unlock()
		return q, nil
	})
	if err != nil {
		return quiz.Quiz{}, err
	}
	return result.(quiz.Quiz), nil
}

// Invalidate drops one entry, e.g. after an authoring write.
func (m *Memory) Invalidate(id string) {
	m.mu.Lock()
	delete(m.cache, id)
	m.mu.Unlock()
}

func (m *Memory) ttlWithJitter() time.Duration {
	if m.ttl <= 0 {
		return 0
	}
	// up to 10% jitter to spread expirations
	jitterMax := int64(m.ttl) / 10
	return m.ttl + time.Duration(m.rnd.Int63n(jitterMax+1))
}

// StaticLoader is a map-backed loader for tests and demos.
type StaticLoader struct {
	quizzes map[string]quiz.Quiz
}

func NewStaticLoader(quizzes map[string]quiz.Quiz) *StaticLoader {
	return &StaticLoader{quizzes: quizzes}
}

func (l *StaticLoader) GetQuiz(_ context.Context, id string) (quiz.Quiz, error) {
	if q, ok := l.quizzes[id]; ok {
		return q, nil
	}
	return quiz.Quiz{}, quiz.ErrNotFound
}
