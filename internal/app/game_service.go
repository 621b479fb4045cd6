package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"quiz-game-service/internal/domain"
	"quiz-game-service/internal/logging"
	"quiz-game-service/internal/metrics"
)

// GameRepository persists games and their served-question log.
type GameRepository interface {
	CreateGame(ctx context.Context, game domain.Game) (domain.Game, error)
	GetGame(ctx context.Context, gameID string) (domain.Game, error)
	// ServedQuestions returns the game's GameQuestion records in served order.
	ServedQuestions(ctx context.Context, gameID string) ([]domain.GameQuestion, error)
	// AddGameQuestion appends a record. It must fail with
	// domain.ErrConcurrencyConflict when (GameID, QuestionID) or
	// (GameID, Position) already exists.
	AddGameQuestion(ctx context.Context, gq domain.GameQuestion) (domain.GameQuestion, error)
	// IncrementScore atomically adds one to the game's score and returns the new value.
	IncrementScore(ctx context.Context, gameID string) (int, error)
	// RecordAnswer stores the answer given for a question. It must fail with
	// domain.ErrConcurrencyConflict when the question was already answered.
	RecordAnswer(ctx context.Context, gameID, questionID, answerID string) error
}

// Catalog serves read-only question content.
type Catalog interface {
	QuestionsFor(ctx context.Context, categoryID string, difficulty int) ([]domain.Question, error)
	AnswersFor(ctx context.Context, questionID string) ([]domain.Answer, error)
	GetAnswer(ctx context.Context, answerID string) (domain.Answer, error)
	GetCategory(ctx context.Context, categoryID string) (domain.Category, error)
}

// GameLocker serializes work on a single game. Locks are scoped to one game id.
type GameLocker interface {
	Lock(ctx context.Context, gameID string) (unlock func(), err error)
}

// StartRequest carries the StartSession input.
type StartRequest struct {
	UserID        string `json:"userId" validate:"required"`
	QuestionCount int    `json:"questionCount" validate:"min=1"`
	Difficulty    int    `json:"difficulty" validate:"min=1,max=3"`
	CategoryID    string `json:"categoryId" validate:"required"`
}

const defaultSelectRetries = 3

// Option configures a GameService.
type Option func(*GameService)

// WithLocker serializes NextQuestion per game.
func WithLocker(l GameLocker) Option {
	return func(s *GameService) { s.locker = l }
}

// WithSelectRetries bounds how often a conflicting selection is retried.
func WithSelectRetries(n int) Option {
	return func(s *GameService) {
		if n >= 0 {
			s.selectRetries = n
		}
	}
}

// WithStrictAnswers requires submitted answers to belong to a question
// served in the same game, answered at most once.
func WithStrictAnswers(strict bool) Option {
	return func(s *GameService) { s.strictAnswers = strict }
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(s *GameService) { s.log = log }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *GameService) { s.metrics = m }
}

// WithClock is used by tests for deterministic timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *GameService) { s.now = now }
}

// WithRandom replaces the uniform index picker; intn(n) must return [0,n).
func WithRandom(intn func(n int) int) Option {
	return func(s *GameService) { s.intn = intn }
}

// GameService is the game session engine.
type GameService struct {
	games         GameRepository
	catalog       Catalog
	locker        GameLocker
	validate      *validator.Validate
	log           logrus.FieldLogger
	metrics       *metrics.Metrics
	now           func() time.Time
	intn          func(n int) int
	selectRetries int
	strictAnswers bool
}

func NewGameService(games GameRepository, catalog Catalog, opts ...Option) *GameService {
	s := &GameService{
		games:         games,
		catalog:       catalog,
		validate:      validator.New(),
		log:           logging.Discard(),
		now:           time.Now,
		intn:          rand.Intn,
		selectRetries: defaultSelectRetries,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StartSession creates a game and serves its first question. When the game
// was created but the first question could not be served, the returned
// Session still carries the game so NextQuestion can be retried against it.
func (s *GameService) StartSession(ctx context.Context, req StartRequest) (session domain.Session, err error) {
	const op = "start session"
	defer func(start time.Time) { s.metrics.Observe("start_session", start, err) }(time.Now())

	if err := s.validate.Struct(req); err != nil {
		return domain.Session{}, domain.EKind(op, domain.ErrValidation, err)
	}

	game, err := s.games.CreateGame(ctx, domain.Game{
		UserID:        req.UserID,
		Score:         0,
		Time:          0,
		CreatedAt:     s.now().UTC(),
		QuestionCount: req.QuestionCount,
		Difficulty:    req.Difficulty,
		CategoryID:    req.CategoryID,
	})
	if err != nil {
		return domain.Session{}, domain.EKind(op, domain.ErrPersistence, err)
	}
	s.metrics.SessionStarted()
	s.log.WithFields(logrus.Fields{
		"game_id":  game.ID,
		"user_id":  game.UserID,
		"category": game.CategoryID,
	}).Info("game created")

	first, err := s.NextQuestion(ctx, game.ID)
	if err != nil {
		s.log.WithField("game_id", game.ID).WithError(err).Warn("first question not served")
		return domain.Session{Game: game}, domain.E(op, err)
	}
	return domain.Session{Game: game, First: &first}, nil
}

// NextQuestion serves one unseen question for the game, or reports completion.
// Each successful call consumes exactly one question; it is not idempotent.
func (s *GameService) NextQuestion(ctx context.Context, gameID string) (next domain.NextQuestion, err error) {
	const op = "next question"
	defer func(start time.Time) { s.metrics.Observe("next_question", start, err) }(time.Now())

	if s.locker != nil {
		unlock, err := s.locker.Lock(ctx, gameID)
		if err != nil {
			s.metrics.Conflict("next_question")
			return domain.NextQuestion{}, domain.E(op, err)
		}
		defer unlock()
	}

	for attempt := 0; ; attempt++ {
		next, err = s.serveNext(ctx, gameID)
		if err == nil || !errors.Is(err, domain.ErrConcurrencyConflict) {
			break
		}
		s.metrics.Conflict("next_question")
		s.log.WithFields(logrus.Fields{
			"game_id": gameID,
			"attempt": attempt + 1,
		}).Debug("served question conflicted, reselecting")
		if attempt >= s.selectRetries {
			break
		}
	}
	if err != nil {
		if errors.Is(err, domain.ErrExhaustedPool) {
			s.metrics.Exhausted()
		}
		return domain.NextQuestion{}, domain.E(op, err)
	}
	if !next.Complete {
		s.metrics.QuestionServed()
		if next.Remaining == 0 {
			s.metrics.GameCompleted()
		}
	}
	return next, nil
}

func (s *GameService) serveNext(ctx context.Context, gameID string) (domain.NextQuestion, error) {
	game, served, err := s.loadGame(ctx, gameID)
	if err != nil {
		return domain.NextQuestion{}, err
	}

	if game.IsComplete(len(served)) {
		return domain.NextQuestion{GameID: game.ID, Complete: true, Position: len(served)}, nil
	}

	pool, err := s.catalog.QuestionsFor(ctx, game.CategoryID, game.Difficulty)
	if err != nil {
		return domain.NextQuestion{}, fmt.Errorf("load pool: %w", err)
	}
	candidates := unseen(pool, domain.ServedIDs(served))
	if len(candidates) == 0 {
		return domain.NextQuestion{}, fmt.Errorf("%d of %d served, %d in pool: %w",
			len(served), game.QuestionCount, len(pool), domain.ErrExhaustedPool)
	}
	question := candidates[s.intn(len(candidates))]

	answers, err := s.catalog.AnswersFor(ctx, question.ID)
	if err != nil {
		return domain.NextQuestion{}, fmt.Errorf("load answers for %s: %w", question.ID, err)
	}

	// Commit only after the question and its answers resolved.
	if _, err := s.games.AddGameQuestion(ctx, domain.GameQuestion{
		GameID:     game.ID,
		QuestionID: question.ID,
		Position:   len(served),
		ServedAt:   s.now().UTC(),
	}); err != nil {
		return domain.NextQuestion{}, fmt.Errorf("record served question: %w", err)
	}

	return domain.NextQuestion{
		GameID:    game.ID,
		Question:  &question,
		Answers:   domain.Views(answers),
		Position:  len(served),
		Remaining: game.QuestionCount - len(served) - 1,
	}, nil
}

// loadGame fetches the game and its served log concurrently. Neither lookup
// cancels the other, so each reports its own failure; a missing game wins.
func (s *GameService) loadGame(ctx context.Context, gameID string) (domain.Game, []domain.GameQuestion, error) {
	var (
		game      domain.Game
		served    []domain.GameQuestion
		gameErr   error
		servedErr error
		g         errgroup.Group
	)
	g.Go(func() error {
		game, gameErr = s.games.GetGame(ctx, gameID)
		return gameErr
	})
	g.Go(func() error {
		served, servedErr = s.games.ServedQuestions(ctx, gameID)
		return servedErr
	})
	_ = g.Wait()
	if gameErr != nil {
		return domain.Game{}, nil, gameErr
	}
	if servedErr != nil {
		return domain.Game{}, nil, fmt.Errorf("load served questions: %w", servedErr)
	}
	return game, served, nil
}

// NextQuestionFor picks a random question for a raw category/difficulty pair
// without a game. Nothing is recorded.
func (s *GameService) NextQuestionFor(ctx context.Context, categoryID string, difficulty int) (view domain.QuestionView, err error) {
	const op = "next question for pool"
	defer func(start time.Time) { s.metrics.Observe("next_question_for", start, err) }(time.Now())

	if categoryID == "" {
		return domain.QuestionView{}, domain.EKind(op, domain.ErrValidation, errors.New("category id required"))
	}
	if difficulty < domain.MinDifficulty || difficulty > domain.MaxDifficulty {
		return domain.QuestionView{}, domain.EKind(op, domain.ErrValidation,
			fmt.Errorf("difficulty %d outside %d..%d", difficulty, domain.MinDifficulty, domain.MaxDifficulty))
	}

	pool, err := s.catalog.QuestionsFor(ctx, categoryID, difficulty)
	if err != nil {
		return domain.QuestionView{}, domain.E(op, err)
	}
	if len(pool) == 0 {
		if _, cerr := s.catalog.GetCategory(ctx, categoryID); cerr != nil {
			return domain.QuestionView{}, domain.E(op, cerr)
		}
		s.metrics.Exhausted()
		return domain.QuestionView{}, domain.E(op, domain.ErrExhaustedPool)
	}

	question := pool[s.intn(len(pool))]
	answers, err := s.catalog.AnswersFor(ctx, question.ID)
	if err != nil {
		return domain.QuestionView{}, domain.E(op, err)
	}
	return domain.QuestionView{Question: question, Answers: domain.Views(answers)}, nil
}

// SubmitAnswer scores an answer for a game. Only the correctness flag is
// returned; a wrong answer does not reveal the right one.
func (s *GameService) SubmitAnswer(ctx context.Context, gameID, answerID string) (result domain.AnswerResult, err error) {
	const op = "submit answer"
	defer func(start time.Time) { s.metrics.Observe("submit_answer", start, err) }(time.Now())

	answer, err := s.catalog.GetAnswer(ctx, answerID)
	if err != nil {
		return domain.AnswerResult{}, domain.E(op, err)
	}
	if _, err := s.games.GetGame(ctx, gameID); err != nil {
		return domain.AnswerResult{}, domain.E(op, err)
	}

	if s.strictAnswers {
		if err := s.checkAnswerLinkage(ctx, gameID, answer); err != nil {
			return domain.AnswerResult{}, domain.E(op, err)
		}
	}

	if answer.Correct {
		score, err := s.games.IncrementScore(ctx, gameID)
		if err != nil {
			return domain.AnswerResult{}, domain.EKind(op, domain.ErrPersistence, err)
		}
		s.log.WithFields(logrus.Fields{"game_id": gameID, "score": score}).Debug("score incremented")
	}
	s.metrics.Answered(answer.Correct)
	return domain.AnswerResult{Correct: answer.Correct}, nil
}

func (s *GameService) checkAnswerLinkage(ctx context.Context, gameID string, answer domain.Answer) error {
	served, err := s.games.ServedQuestions(ctx, gameID)
	if err != nil {
		return fmt.Errorf("load served questions: %w", err)
	}
	if _, ok := domain.ServedIDs(served)[answer.QuestionID]; !ok {
		return fmt.Errorf("%w: question %s was not served in game %s", domain.ErrValidation, answer.QuestionID, gameID)
	}
	if err := s.games.RecordAnswer(ctx, gameID, answer.QuestionID, answer.ID); err != nil {
		if errors.Is(err, domain.ErrConcurrencyConflict) {
			s.metrics.Conflict("submit_answer")
		}
		return fmt.Errorf("record answer: %w", err)
	}
	return nil
}

// Progress reports the served count and derived completion of a game.
func (s *GameService) Progress(ctx context.Context, gameID string) (domain.GameProgress, error) {
	game, served, err := s.loadGame(ctx, gameID)
	if err != nil {
		return domain.GameProgress{}, domain.E("progress", err)
	}
	return domain.GameProgress{
		Game:     game,
		Served:   len(served),
		Complete: game.IsComplete(len(served)),
	}, nil
}

func unseen(pool []domain.Question, served map[string]struct{}) []domain.Question {
	out := make([]domain.Question, 0, len(pool))
	for _, q := range pool {
		if _, ok := served[q.ID]; !ok {
			out = append(out, q)
		}
	}
	return out
}
