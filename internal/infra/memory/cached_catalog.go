package memory

import (
	"context"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"quiz-game-service/internal/app"
	"quiz-game-service/internal/domain"
)

// CachedCatalog caches question pools and answer lists with a TTL to avoid
// repeated catalog hits. Single answers and categories pass through.
type CachedCatalog struct {
	app.Catalog
	ttl   time.Duration
	clock func() time.Time
	sf    singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand

	mu      sync.RWMutex
	pools   map[string]cachedEntry[[]domain.Question]
	answers map[string]cachedEntry[[]domain.Answer]
}

type cachedEntry[T any] struct {
	value     T
	expiresAt time.Time
}

func NewCachedCatalog(loader app.Catalog, ttl time.Duration) *CachedCatalog {
	return &CachedCatalog{
		Catalog: loader,
		ttl:     ttl,
		clock:   time.Now,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
		pools:   make(map[string]cachedEntry[[]domain.Question]),
		answers: make(map[string]cachedEntry[[]domain.Answer]),
	}
}

func (c *CachedCatalog) QuestionsFor(ctx context.Context, categoryID string, difficulty int) ([]domain.Question, error) {
	key := categoryID + "|" + strconv.Itoa(difficulty)
	return readThrough(c, c.pools, "pool:"+key, key, func() ([]domain.Question, error) {
		return c.Catalog.QuestionsFor(ctx, categoryID, difficulty)
	})
}

func (c *CachedCatalog) AnswersFor(ctx context.Context, questionID string) ([]domain.Answer, error) {
	return readThrough(c, c.answers, "answers:"+questionID, questionID, func() ([]domain.Answer, error) {
		return c.Catalog.AnswersFor(ctx, questionID)
	})
}

func readThrough[T any](c *CachedCatalog, cache map[string]cachedEntry[T], flightKey, key string, load func() (T, error)) (T, error) {
	if v, ok := lookup(c, cache, key); ok {
		return v, nil
	}

	result, err, _ := c.sf.Do(flightKey, func() (interface{}, error) {
		// Re-check in case another caller filled it.
		if v, ok := lookup(c, cache, key); ok {
			return v, nil
		}
		v, err := load()
		if err != nil {
			return v, err
		}
		c.mu.Lock()
		cache[key] = cachedEntry[T]{value: v, expiresAt: c.clock().Add(c.ttlWithJitter())}
		c.mu.Unlock()
		return v, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result.(T), nil
}

func lookup[T any](c *CachedCatalog, cache map[string]cachedEntry[T], key string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := cache[key]
	if ok && entry.expiresAt.After(c.clock()) {
		return entry.value, true
	}
	var zero T
	return zero, false
}

func (c *CachedCatalog) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
