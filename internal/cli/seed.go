package cli

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"quiz-game-service/internal/config"
	"quiz-game-service/internal/domain"
	"quiz-game-service/internal/infra/postgres"
)

// NewSeedCmd loads the sample catalog into Postgres.
func NewSeedCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Migrate and insert the sample question catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			log := newLogger(cfg)

			catalog := sampleCatalog()
			if err := validateCatalog(catalog); err != nil {
				return err
			}

			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := runMigrations(cmd.Context(), db, log); err != nil {
				return err
			}
			if err := postgres.Seed(cmd.Context(), db, catalog); err != nil {
				return err
			}
			log.WithFields(logrus.Fields{
				"categories": len(catalog.Categories),
				"questions":  len(catalog.Questions),
				"answers":    len(catalog.Answers),
			}).Info("catalog seeded")
			return nil
		},
	}
}

// validateCatalog checks field rules and that every question has exactly
// one correct answer.
func validateCatalog(catalog domain.Catalog) error {
	if err := validator.New().Struct(catalog); err != nil {
		return fmt.Errorf("invalid catalog: %w", err)
	}
	correct := make(map[string]int, len(catalog.Questions))
	for _, a := range catalog.Answers {
		if a.Correct {
			correct[a.QuestionID]++
		}
	}
	for _, q := range catalog.Questions {
		if correct[q.ID] != 1 {
			return fmt.Errorf("invalid catalog: question %s has %d correct answers", q.ID, correct[q.ID])
		}
	}
	return nil
}
