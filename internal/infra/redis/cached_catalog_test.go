package redis

import (
	"context"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"quiz-game-service/internal/domain"
	"quiz-game-service/internal/infra/memory"
	"quiz-game-service/internal/logging"
)

func TestCachedCatalogCachesPoolInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	loader := &countingCatalog{Store: memory.NewStore(sampleCatalog())}
	catalog := NewCachedCatalog(newClient(mr), loader, time.Minute, logging.Discard())

	pool, err := catalog.QuestionsFor(context.Background(), "animals", 1)
	if err != nil {
		t.Fatalf("pool: %v", err)
	}
	if len(pool) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(pool))
	}
	if loader.poolCalls() != 1 {
		t.Fatalf("expected loader called once, got %d", loader.poolCalls())
	}
	if !mr.Exists("catalog:pool:animals:1") {
		t.Fatalf("expected pool key to be set")
	}
	if ttl := mr.TTL("catalog:pool:animals:1"); ttl < time.Minute || ttl > time.Minute+6*time.Second {
		t.Fatalf("unexpected ttl %v", ttl)
	}

	// Second call should hit cache, loader not incremented.
	cached, err := catalog.QuestionsFor(context.Background(), "animals", 1)
	if err != nil {
		t.Fatalf("pool 2: %v", err)
	}
	if loader.poolCalls() != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.poolCalls())
	}
	if len(cached) != 2 || cached[0].ID != "q1" {
		t.Fatalf("unexpected cached pool: %+v", cached)
	}
}

func TestCachedCatalogCachesAnswersWithFlag(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	loader := &countingCatalog{Store: memory.NewStore(sampleCatalog())}
	catalog := NewCachedCatalog(newClient(mr), loader, time.Minute, logging.Discard())

	if _, err := catalog.AnswersFor(context.Background(), "q1"); err != nil {
		t.Fatalf("answers: %v", err)
	}
	answers, err := catalog.AnswersFor(context.Background(), "q1")
	if err != nil {
		t.Fatalf("answers 2: %v", err)
	}
	if loader.answerCalls() != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.answerCalls())
	}
	if len(answers) != 2 || answers[0].ID != "a1" || !answers[0].Correct {
		t.Fatalf("unexpected cached answers: %+v", answers)
	}
}

func TestCachedCatalogFallsBackWhenRedisDown(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	client := newClient(mr)
	mr.Close()

	loader := &countingCatalog{Store: memory.NewStore(sampleCatalog())}
	catalog := NewCachedCatalog(client, loader, time.Minute, logging.Discard())

	pool, err := catalog.QuestionsFor(context.Background(), "animals", 1)
	if err != nil {
		t.Fatalf("expected loader fallback, got %v", err)
	}
	if len(pool) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(pool))
	}
}

type countingCatalog struct {
	*memory.Store
	mu      sync.Mutex
	pools   int
	answers int
}

func (c *countingCatalog) QuestionsFor(ctx context.Context, categoryID string, difficulty int) ([]domain.Question, error) {
	c.mu.Lock()
	c.pools++
	c.mu.Unlock()
	return c.Store.QuestionsFor(ctx, categoryID, difficulty)
}

func (c *countingCatalog) AnswersFor(ctx context.Context, questionID string) ([]domain.Answer, error) {
	c.mu.Lock()
	c.answers++
	c.mu.Unlock()
	return c.Store.AnswersFor(ctx, questionID)
}

func (c *countingCatalog) poolCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pools
}

func (c *countingCatalog) answerCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.answers
}

func sampleCatalog() domain.Catalog {
	return domain.Catalog{
		Categories: []domain.Category{{ID: "animals", Name: "Animals"}},
		Questions: []domain.Question{
			{ID: "q1", Content: "What colour is Henry IV's white horse?", CategoryID: "animals", Difficulty: 1},
			{ID: "q2", Content: "How many legs does a spider have?", CategoryID: "animals", Difficulty: 1},
		},
		Answers: []domain.Answer{
			{ID: "a1", Name: "White", Correct: true, QuestionID: "q1"},
			{ID: "a2", Name: "Black", Correct: false, QuestionID: "q1"},
			{ID: "a3", Name: "Eight", Correct: true, QuestionID: "q2"},
		},
	}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
