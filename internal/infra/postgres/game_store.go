package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"quiz-game-service/internal/domain"
)

// GameStore persists games and their served-question log. It implements
// app.GameRepository. Uniqueness of served questions is enforced by the
// game_questions constraints, score updates are single atomic statements.
type GameStore struct {
	db *bun.DB
}

func NewGameStore(db *bun.DB) *GameStore {
	return &GameStore{db: db}
}

func (s *GameStore) CreateGame(ctx context.Context, game domain.Game) (domain.Game, error) {
	if game.ID == "" {
		game.ID = uuid.NewString()
	}
	if _, err := s.db.NewInsert().Model(newGameModel(game)).Exec(ctx); err != nil {
		return domain.Game{}, fmt.Errorf("insert game: %w", err)
	}
	return game, nil
}

func (s *GameStore) GetGame(ctx context.Context, gameID string) (domain.Game, error) {
	var m gameModel
	err := s.db.NewSelect().Model(&m).Where("id = ?", gameID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Game{}, domain.ErrGameNotFound
	}
	if err != nil {
		return domain.Game{}, fmt.Errorf("select game: %w", err)
	}
	return m.toDomain(), nil
}

func (s *GameStore) ServedQuestions(ctx context.Context, gameID string) ([]domain.GameQuestion, error) {
	var rows []gameQuestionModel
	err := s.db.NewSelect().
		Model(&rows).
		Where("game_id = ?", gameID).
		Order("position ASC").
		Scan(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("select game questions: %w", err)
	}
	out := make([]domain.GameQuestion, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out, nil
}

// AddGameQuestion inserts the record unless either unique constraint is
// already taken, in which case it reports a concurrency conflict.
func (s *GameStore) AddGameQuestion(ctx context.Context, gq domain.GameQuestion) (domain.GameQuestion, error) {
	if gq.ID == "" {
		gq.ID = uuid.NewString()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO game_questions (id, game_id, question_id, position, served_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING`,
		gq.ID, gq.GameID, gq.QuestionID, gq.Position, gq.ServedAt)
	if err != nil {
		return domain.GameQuestion{}, fmt.Errorf("insert game question: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.GameQuestion{}, fmt.Errorf("insert game question: %w", err)
	}
	if n == 0 {
		return domain.GameQuestion{}, fmt.Errorf("question %s at position %d: %w", gq.QuestionID, gq.Position, domain.ErrConcurrencyConflict)
	}
	return gq, nil
}

func (s *GameStore) IncrementScore(ctx context.Context, gameID string) (int, error) {
	var score int
	err := s.db.QueryRowContext(ctx,
		`UPDATE games SET score = score + 1 WHERE id = ? RETURNING score`, gameID).
		Scan(&score)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, domain.ErrGameNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("increment score: %w", err)
	}
	return score, nil
}

func (s *GameStore) RecordAnswer(ctx context.Context, gameID, questionID, answerID string) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO game_answers (game_id, question_id, answer_id)
		VALUES (?, ?, ?)
		ON CONFLICT DO NOTHING`,
		gameID, questionID, answerID)
	if err != nil {
		return fmt.Errorf("insert game answer: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert game answer: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("question %s already answered: %w", questionID, domain.ErrConcurrencyConflict)
	}
	return nil
}
