package redis

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
	"quiz-game-service/internal/app"
	"quiz-game-service/internal/domain"
)

// CachedCatalog caches catalog reads in Redis and falls back to the wrapped
// catalog on a miss. Cache failures are logged and never fail a read.
// Pools are stored as:   SET  catalog:pool:{categoryID}:{difficulty} <json []Question>
// Answers are stored as: HSET catalog:answers:{questionID} {answerID} <json Answer>
type CachedCatalog struct {
	app.Catalog
	client *redis.Client
	ttl    time.Duration
	log    logrus.FieldLogger
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewCachedCatalog(client *redis.Client, loader app.Catalog, ttl time.Duration, log logrus.FieldLogger) *CachedCatalog {
	return &CachedCatalog{
		Catalog: loader,
		client:  client,
		ttl:     ttl,
		log:     log,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *CachedCatalog) QuestionsFor(ctx context.Context, categoryID string, difficulty int) ([]domain.Question, error) {
	key := poolKey(categoryID, difficulty)
	if pool, ok := c.cachedPool(ctx, key); ok {
		return pool, nil
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if pool, ok := c.cachedPool(ctx, key); ok {
			return pool, nil
		}
		pool, err := c.Catalog.QuestionsFor(ctx, categoryID, difficulty)
		if err != nil {
			return nil, err
		}
		raw, err := json.Marshal(pool)
		if err == nil {
			err = c.client.Set(ctx, key, raw, c.ttlWithJitter()).Err()
		}
		if err != nil {
			c.log.WithError(err).WithField("key", key).Warn("pool cache write failed")
		}
		return pool, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

func (c *CachedCatalog) AnswersFor(ctx context.Context, questionID string) ([]domain.Answer, error) {
	key := answersKey(questionID)
	if answers, ok := c.cachedAnswers(ctx, key); ok {
		return answers, nil
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		if answers, ok := c.cachedAnswers(ctx, key); ok {
			return answers, nil
		}
		answers, err := c.Catalog.AnswersFor(ctx, questionID)
		if err != nil {
			return nil, err
		}

		ttl := c.ttlWithJitter()
		pipe := c.client.Pipeline()
		for _, a := range answers {
			raw, err := json.Marshal(a)
			if err != nil {
				return answers, nil
			}
			pipe.HSet(ctx, key, a.ID, raw)
		}
		if ttl > 0 {
			pipe.Expire(ctx, key, ttl)
		}
		if _, err := pipe.Exec(ctx); err != nil {
			c.log.WithError(err).WithField("key", key).Warn("answers cache write failed")
		}
		return answers, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Answer), nil
}

func (c *CachedCatalog) cachedPool(ctx context.Context, key string) ([]domain.Question, bool) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.WithError(err).WithField("key", key).Warn("pool cache read failed")
		}
		return nil, false
	}
	var pool []domain.Question
	if err := json.Unmarshal(raw, &pool); err != nil {
		return nil, false
	}
	return pool, true
}

func (c *CachedCatalog) cachedAnswers(ctx context.Context, key string) ([]domain.Answer, bool) {
	fields, err := c.client.HGetAll(ctx, key).Result()
	if err != nil || len(fields) == 0 {
		return nil, false
	}
	answers := make([]domain.Answer, 0, len(fields))
	for _, raw := range fields {
		var a domain.Answer
		if err := json.Unmarshal([]byte(raw), &a); err != nil {
			return nil, false
		}
		answers = append(answers, a)
	}
	sort.Slice(answers, func(i, j int) bool { return answers[i].ID < answers[j].ID })
	return answers, true
}

func poolKey(categoryID string, difficulty int) string {
	return "catalog:pool:" + categoryID + ":" + strconv.Itoa(difficulty)
}

func answersKey(questionID string) string {
	return "catalog:answers:" + questionID
}

func (c *CachedCatalog) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
