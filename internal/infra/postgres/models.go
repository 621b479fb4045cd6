package postgres

import (
	"time"

	"github.com/uptrace/bun"
	"quiz-game-service/internal/domain"
)

type gameModel struct {
	bun.BaseModel `bun:"table:games,alias:g"`

	ID            string    `bun:"id,pk"`
	UserID        string    `bun:"user_id,notnull"`
	Time          int       `bun:"time,notnull"`
	Score         int       `bun:"score,notnull"`
	CreatedAt     time.Time `bun:"created_at,notnull"`
	QuestionCount int       `bun:"nb_questions,notnull"`
	Difficulty    int       `bun:"difficulty,notnull"`
	CategoryID    string    `bun:"category_id,notnull"`
}

func newGameModel(g domain.Game) *gameModel {
	return &gameModel{
		ID:            g.ID,
		UserID:        g.UserID,
		Time:          g.Time,
		Score:         g.Score,
		CreatedAt:     g.CreatedAt,
		QuestionCount: g.QuestionCount,
		Difficulty:    g.Difficulty,
		CategoryID:    g.CategoryID,
	}
}

func (m *gameModel) toDomain() domain.Game {
	return domain.Game{
		ID:            m.ID,
		UserID:        m.UserID,
		Time:          m.Time,
		Score:         m.Score,
		CreatedAt:     m.CreatedAt,
		QuestionCount: m.QuestionCount,
		Difficulty:    m.Difficulty,
		CategoryID:    m.CategoryID,
	}
}

type gameQuestionModel struct {
	bun.BaseModel `bun:"table:game_questions,alias:gq"`

	ID         string    `bun:"id,pk"`
	GameID     string    `bun:"game_id,notnull"`
	QuestionID string    `bun:"question_id,notnull"`
	Position   int       `bun:"position,notnull"`
	ServedAt   time.Time `bun:"served_at,notnull"`
}

func (m *gameQuestionModel) toDomain() domain.GameQuestion {
	return domain.GameQuestion{
		ID:         m.ID,
		GameID:     m.GameID,
		QuestionID: m.QuestionID,
		Position:   m.Position,
		ServedAt:   m.ServedAt,
	}
}

type categoryModel struct {
	bun.BaseModel `bun:"table:categories"`

	ID   string `bun:"id,pk"`
	Name string `bun:"name,notnull"`
}

type questionModel struct {
	bun.BaseModel `bun:"table:questions"`

	ID         string `bun:"id,pk"`
	Content    string `bun:"content,notnull"`
	CategoryID string `bun:"category_id,notnull"`
	Difficulty int    `bun:"difficulty,notnull"`
}

type answerModel struct {
	bun.BaseModel `bun:"table:answers"`

	ID         string `bun:"id,pk"`
	Name       string `bun:"name,notnull"`
	Correct    bool   `bun:"is_correct,notnull"`
	QuestionID string `bun:"question_id,notnull"`
}
