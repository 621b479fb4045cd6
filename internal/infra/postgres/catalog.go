package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"quiz-game-service/internal/domain"
)

// Catalog reads questions, answers and categories from Postgres. It
// implements app.Catalog.
type Catalog struct {
	pool *pgxpool.Pool
}

func NewCatalog(pool *pgxpool.Pool) *Catalog {
	return &Catalog{pool: pool}
}

func (c *Catalog) QuestionsFor(ctx context.Context, categoryID string, difficulty int) ([]domain.Question, error) {
	rows, err := c.pool.Query(ctx,
		`SELECT id, content, category_id, difficulty FROM questions
		WHERE category_id=$1 AND difficulty=$2 ORDER BY id`, categoryID, difficulty)
	if err != nil {
		return nil, fmt.Errorf("query pool: %w", err)
	}
	defer rows.Close()

	var pool []domain.Question
	for rows.Next() {
		var q domain.Question
		if err := rows.Scan(&q.ID, &q.Content, &q.CategoryID, &q.Difficulty); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		pool = append(pool, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pool: %w", err)
	}
	return pool, nil
}

// AnswersFor returns ErrQuestionNotFound when the question itself is
// unknown, and an empty list for a known question without answers.
func (c *Catalog) AnswersFor(ctx context.Context, questionID string) ([]domain.Answer, error) {
	rows, err := c.pool.Query(ctx,
		`SELECT q.id, a.id, a.name, a.is_correct FROM questions q
		LEFT JOIN answers a ON a.question_id = q.id
		WHERE q.id=$1 ORDER BY a.id`, questionID)
	if err != nil {
		return nil, fmt.Errorf("query answers: %w", err)
	}
	defer rows.Close()

	found := false
	answers := []domain.Answer{}
	for rows.Next() {
		found = true
		var (
			qid     string
			id      *string
			name    *string
			correct *bool
		)
		if err := rows.Scan(&qid, &id, &name, &correct); err != nil {
			return nil, fmt.Errorf("scan answer: %w", err)
		}
		if id == nil {
			continue
		}
		a := domain.Answer{ID: *id, QuestionID: qid}
		if name != nil {
			a.Name = *name
		}
		if correct != nil {
			a.Correct = *correct
		}
		answers = append(answers, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate answers: %w", err)
	}
	if !found {
		return nil, domain.ErrQuestionNotFound
	}
	return answers, nil
}

func (c *Catalog) GetAnswer(ctx context.Context, answerID string) (domain.Answer, error) {
	var a domain.Answer
	err := c.pool.QueryRow(ctx,
		`SELECT id, name, is_correct, question_id FROM answers WHERE id=$1`, answerID).
		Scan(&a.ID, &a.Name, &a.Correct, &a.QuestionID)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Answer{}, domain.ErrAnswerNotFound
	}
	if err != nil {
		return domain.Answer{}, fmt.Errorf("load answer: %w", err)
	}
	return a, nil
}

func (c *Catalog) GetCategory(ctx context.Context, categoryID string) (domain.Category, error) {
	var cat domain.Category
	err := c.pool.QueryRow(ctx, `SELECT id, name FROM categories WHERE id=$1`, categoryID).
		Scan(&cat.ID, &cat.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Category{}, domain.ErrCategoryNotFound
	}
	if err != nil {
		return domain.Category{}, fmt.Errorf("load category: %w", err)
	}
	return cat, nil
}
