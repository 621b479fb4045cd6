package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"quiz-game-service/internal/domain"
)

// Store is an in-memory record store. It implements both app.GameRepository
// and app.Catalog and enforces the same uniqueness rules as the SQL schema.
type Store struct {
	mu         sync.RWMutex
	games      map[string]domain.Game
	served     map[string][]domain.GameQuestion
	answered   map[string]map[string]string
	categories map[string]domain.Category
	questions  map[string]domain.Question
	answers    map[string]domain.Answer
	byQuestion map[string][]string
}

// NewStore builds a store seeded with catalog content.
func NewStore(catalog domain.Catalog) *Store {
	s := &Store{
		games:      make(map[string]domain.Game),
		served:     make(map[string][]domain.GameQuestion),
		answered:   make(map[string]map[string]string),
		categories: make(map[string]domain.Category),
		questions:  make(map[string]domain.Question),
		answers:    make(map[string]domain.Answer),
		byQuestion: make(map[string][]string),
	}
	for _, c := range catalog.Categories {
		s.categories[c.ID] = c
	}
	for _, q := range catalog.Questions {
		s.questions[q.ID] = q
	}
	for _, a := range catalog.Answers {
		s.answers[a.ID] = a
		s.byQuestion[a.QuestionID] = append(s.byQuestion[a.QuestionID], a.ID)
	}
	return s
}

func (s *Store) CreateGame(_ context.Context, game domain.Game) (domain.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if game.ID == "" {
		game.ID = uuid.NewString()
	}
	s.games[game.ID] = game
	return game, nil
}

func (s *Store) GetGame(_ context.Context, gameID string) (domain.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	game, ok := s.games[gameID]
	if !ok {
		return domain.Game{}, domain.ErrGameNotFound
	}
	return game, nil
}

func (s *Store) ServedQuestions(_ context.Context, gameID string) ([]domain.GameQuestion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := s.served[gameID]
	out := make([]domain.GameQuestion, len(records))
	copy(out, records)
	return out, nil
}

func (s *Store) AddGameQuestion(_ context.Context, gq domain.GameQuestion) (domain.GameQuestion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.games[gq.GameID]; !ok {
		return domain.GameQuestion{}, domain.ErrGameNotFound
	}
	records := s.served[gq.GameID]
	if gq.Position != len(records) {
		return domain.GameQuestion{}, domain.ErrConcurrencyConflict
	}
	for _, r := range records {
		if r.QuestionID == gq.QuestionID {
			return domain.GameQuestion{}, domain.ErrConcurrencyConflict
		}
	}
	if gq.ID == "" {
		gq.ID = uuid.NewString()
	}
	s.served[gq.GameID] = append(records, gq)
	return gq, nil
}

func (s *Store) IncrementScore(_ context.Context, gameID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	game, ok := s.games[gameID]
	if !ok {
		return 0, domain.ErrGameNotFound
	}
	game.Score++
	s.games[gameID] = game
	return game.Score, nil
}

func (s *Store) RecordAnswer(_ context.Context, gameID, questionID, answerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.games[gameID]; !ok {
		return domain.ErrGameNotFound
	}
	byGame, ok := s.answered[gameID]
	if !ok {
		byGame = make(map[string]string)
		s.answered[gameID] = byGame
	}
	if _, dup := byGame[questionID]; dup {
		return domain.ErrConcurrencyConflict
	}
	byGame[questionID] = answerID
	return nil
}

// QuestionsFor returns the pool ordered by id so selection only depends on
// the random source.
func (s *Store) QuestionsFor(_ context.Context, categoryID string, difficulty int) ([]domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var pool []domain.Question
	for _, q := range s.questions {
		if q.CategoryID == categoryID && q.Difficulty == difficulty {
			pool = append(pool, q)
		}
	}
	sort.Slice(pool, func(i, j int) bool { return pool[i].ID < pool[j].ID })
	return pool, nil
}

func (s *Store) AnswersFor(_ context.Context, questionID string) ([]domain.Answer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.questions[questionID]; !ok {
		return nil, domain.ErrQuestionNotFound
	}
	ids := s.byQuestion[questionID]
	out := make([]domain.Answer, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.answers[id])
	}
	return out, nil
}

func (s *Store) GetAnswer(_ context.Context, answerID string) (domain.Answer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	answer, ok := s.answers[answerID]
	if !ok {
		return domain.Answer{}, domain.ErrAnswerNotFound
	}
	return answer, nil
}

func (s *Store) GetCategory(_ context.Context, categoryID string) (domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.categories[categoryID]
	if !ok {
		return domain.Category{}, domain.ErrCategoryNotFound
	}
	return c, nil
}
