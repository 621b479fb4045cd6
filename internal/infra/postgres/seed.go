package postgres

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
	"quiz-game-service/internal/domain"
)

// Seed inserts catalog content, skipping rows whose id already exists.
func Seed(ctx context.Context, db *bun.DB, catalog domain.Catalog) error {
	return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if len(catalog.Categories) > 0 {
			rows := make([]categoryModel, 0, len(catalog.Categories))
			for _, c := range catalog.Categories {
				rows = append(rows, categoryModel{ID: c.ID, Name: c.Name})
			}
			if _, err := tx.NewInsert().Model(&rows).On("CONFLICT (id) DO NOTHING").Exec(ctx); err != nil {
				return fmt.Errorf("seed categories: %w", err)
			}
		}
		if len(catalog.Questions) > 0 {
			rows := make([]questionModel, 0, len(catalog.Questions))
			for _, q := range catalog.Questions {
				rows = append(rows, questionModel{ID: q.ID, Content: q.Content, CategoryID: q.CategoryID, Difficulty: q.Difficulty})
			}
			if _, err := tx.NewInsert().Model(&rows).On("CONFLICT (id) DO NOTHING").Exec(ctx); err != nil {
				return fmt.Errorf("seed questions: %w", err)
			}
		}
		if len(catalog.Answers) > 0 {
			rows := make([]answerModel, 0, len(catalog.Answers))
			for _, a := range catalog.Answers {
				rows = append(rows, answerModel{ID: a.ID, Name: a.Name, Correct: a.Correct, QuestionID: a.QuestionID})
			}
			if _, err := tx.NewInsert().Model(&rows).On("CONFLICT (id) DO NOTHING").Exec(ctx); err != nil {
				return fmt.Errorf("seed answers: %w", err)
			}
		}
		return nil
	})
}
