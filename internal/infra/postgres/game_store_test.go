package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"quiz-game-service/internal/domain"
)

func newMockStore(t *testing.T) (*GameStore, sqlmock.Sqlmock) {
	t.Helper()
	sqldb, mock, err := sqlmock.New()
	require.NoError(t, err)
	db := bun.NewDB(sqldb, pgdialect.New())
	t.Cleanup(func() { _ = db.Close() })
	return NewGameStore(db), mock
}

func TestAddGameQuestionInserts(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec(`INSERT INTO game_questions .* ON CONFLICT DO NOTHING`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	gq, err := store.AddGameQuestion(context.Background(), domain.GameQuestion{
		GameID: "g1", QuestionID: "q1", Position: 0, ServedAt: time.Now().UTC(),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, gq.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddGameQuestionConflict(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec(`INSERT INTO game_questions`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := store.AddGameQuestion(context.Background(), domain.GameQuestion{
		GameID: "g1", QuestionID: "q1", Position: 1, ServedAt: time.Now().UTC(),
	})
	assert.ErrorIs(t, err, domain.ErrConcurrencyConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIncrementScoreIsSingleStatement(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery(`UPDATE games SET score = score \+ 1 WHERE id = 'g1' RETURNING score`).
		WillReturnRows(sqlmock.NewRows([]string{"score"}).AddRow(4))

	score, err := store.IncrementScore(context.Background(), "g1")
	require.NoError(t, err)
	assert.Equal(t, 4, score)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIncrementScoreMissingGame(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery(`UPDATE games SET score = score \+ 1`).
		WillReturnRows(sqlmock.NewRows([]string{"score"}))

	_, err := store.IncrementScore(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrGameNotFound)
}

func TestIncrementScoreDatabaseError(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery(`UPDATE games`).WillReturnError(errors.New("connection reset"))

	_, err := store.IncrementScore(context.Background(), "g1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, domain.ErrPersistence, domain.KindOf(err))
}

func TestRecordAnswerDuplicate(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec(`INSERT INTO game_answers`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO game_answers`).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, store.RecordAnswer(context.Background(), "g1", "q1", "a1"))
	err := store.RecordAnswer(context.Background(), "g1", "q1", "a2")
	assert.ErrorIs(t, err, domain.ErrConcurrencyConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetGame(t *testing.T) {
	store, mock := newMockStore(t)
	created := time.Date(2024, 11, 22, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT .* FROM "games"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "time", "score", "created_at", "nb_questions", "difficulty", "category_id"}).
			AddRow("g1", "u1", 0, 2, created, 5, 1, "animals"))

	game, err := store.GetGame(context.Background(), "g1")
	require.NoError(t, err)
	assert.Equal(t, domain.Game{
		ID: "g1", UserID: "u1", Score: 2, CreatedAt: created, QuestionCount: 5, Difficulty: 1, CategoryID: "animals",
	}, game)
}

func TestGetGameNotFound(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery(`SELECT .* FROM "games"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := store.GetGame(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrGameNotFound)
}

func TestServedQuestionsOrdered(t *testing.T) {
	store, mock := newMockStore(t)
	served := time.Date(2024, 11, 22, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT .* FROM "game_questions" .* ORDER BY "position" ASC`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "game_id", "question_id", "position", "served_at"}).
			AddRow("gq1", "g1", "q3", 0, served).
			AddRow("gq2", "g1", "q1", 1, served))

	records, err := store.ServedQuestions(context.Background(), "g1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "q3", records[0].QuestionID)
	assert.Equal(t, 1, records[1].Position)
}
