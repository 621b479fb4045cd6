package memory

import (
	"context"
	"errors"
	"testing"

	"quiz-game-service/internal/domain"
)

func TestStoreRejectsDuplicateServedQuestion(t *testing.T) {
	ctx := context.Background()
	store := NewStore(sampleCatalog())
	game, err := store.CreateGame(ctx, domain.Game{UserID: "u1", QuestionCount: 3, Difficulty: 1, CategoryID: "animals"})
	if err != nil {
		t.Fatalf("create game: %v", err)
	}
	if game.ID == "" {
		t.Fatalf("expected generated id")
	}

	if _, err := store.AddGameQuestion(ctx, domain.GameQuestion{GameID: game.ID, QuestionID: "q1", Position: 0}); err != nil {
		t.Fatalf("add first: %v", err)
	}
	_, err = store.AddGameQuestion(ctx, domain.GameQuestion{GameID: game.ID, QuestionID: "q1", Position: 1})
	if !errors.Is(err, domain.ErrConcurrencyConflict) {
		t.Fatalf("expected conflict for repeated question, got %v", err)
	}
	_, err = store.AddGameQuestion(ctx, domain.GameQuestion{GameID: game.ID, QuestionID: "q2", Position: 0})
	if !errors.Is(err, domain.ErrConcurrencyConflict) {
		t.Fatalf("expected conflict for taken position, got %v", err)
	}

	served, err := store.ServedQuestions(ctx, game.ID)
	if err != nil {
		t.Fatalf("served: %v", err)
	}
	if len(served) != 1 || served[0].QuestionID != "q1" {
		t.Fatalf("unexpected served log: %+v", served)
	}
}

func TestStoreIncrementScore(t *testing.T) {
	ctx := context.Background()
	store := NewStore(sampleCatalog())
	game, _ := store.CreateGame(ctx, domain.Game{UserID: "u1", QuestionCount: 1, Difficulty: 1, CategoryID: "animals"})

	for want := 1; want <= 3; want++ {
		got, err := store.IncrementScore(ctx, game.ID)
		if err != nil {
			t.Fatalf("increment: %v", err)
		}
		if got != want {
			t.Fatalf("expected score %d, got %d", want, got)
		}
	}
	if _, err := store.IncrementScore(ctx, "missing"); !errors.Is(err, domain.ErrGameNotFound) {
		t.Fatalf("expected game not found, got %v", err)
	}
}

func TestStoreRecordAnswerOnce(t *testing.T) {
	ctx := context.Background()
	store := NewStore(sampleCatalog())
	game, _ := store.CreateGame(ctx, domain.Game{UserID: "u1", QuestionCount: 1, Difficulty: 1, CategoryID: "animals"})

	if err := store.RecordAnswer(ctx, game.ID, "q1", "a1"); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := store.RecordAnswer(ctx, game.ID, "q1", "a2"); !errors.Is(err, domain.ErrConcurrencyConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestStoreCatalogLookups(t *testing.T) {
	ctx := context.Background()
	store := NewStore(sampleCatalog())

	pool, err := store.QuestionsFor(ctx, "animals", 1)
	if err != nil {
		t.Fatalf("pool: %v", err)
	}
	if len(pool) != 2 || pool[0].ID != "q1" || pool[1].ID != "q2" {
		t.Fatalf("unexpected pool: %+v", pool)
	}

	answers, err := store.AnswersFor(ctx, "q1")
	if err != nil || len(answers) != 2 {
		t.Fatalf("answers: %v %+v", err, answers)
	}
	if _, err := store.AnswersFor(ctx, "nope"); !errors.Is(err, domain.ErrQuestionNotFound) {
		t.Fatalf("expected question not found, got %v", err)
	}
	if _, err := store.GetAnswer(ctx, "nope"); !errors.Is(err, domain.ErrAnswerNotFound) {
		t.Fatalf("expected answer not found, got %v", err)
	}
	if _, err := store.GetCategory(ctx, "nope"); !errors.Is(err, domain.ErrCategoryNotFound) {
		t.Fatalf("expected category not found, got %v", err)
	}
}

func sampleCatalog() domain.Catalog {
	return domain.Catalog{
		Categories: []domain.Category{{ID: "animals", Name: "Animals"}},
		Questions: []domain.Question{
			{ID: "q1", Content: "What colour is Henry IV's white horse?", CategoryID: "animals", Difficulty: 1},
			{ID: "q2", Content: "How many legs does a spider have?", CategoryID: "animals", Difficulty: 1},
			{ID: "q3", Content: "Which mammal can fly?", CategoryID: "animals", Difficulty: 2},
		},
		Answers: []domain.Answer{
			{ID: "a1", Name: "White", Correct: true, QuestionID: "q1"},
			{ID: "a2", Name: "Black", Correct: false, QuestionID: "q1"},
			{ID: "a3", Name: "Eight", Correct: true, QuestionID: "q2"},
			{ID: "a4", Name: "Six", Correct: false, QuestionID: "q2"},
			{ID: "a5", Name: "Bat", Correct: true, QuestionID: "q3"},
		},
	}
}
