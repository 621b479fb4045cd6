package domain

import "time"

// Difficulty bounds for games and questions.
const (
	MinDifficulty = 1
	MaxDifficulty = 3
)

// Game is a single quiz-playing session for one user.
type Game struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	Time          int       `json:"time"`
	Score         int       `json:"score"`
	CreatedAt     time.Time `json:"createdAt"`
	QuestionCount int       `json:"questionCount"`
	Difficulty    int       `json:"difficulty"`
	CategoryID    string    `json:"categoryId"`
}

// Category groups questions.
type Category struct {
	ID   string `json:"id" validate:"required"`
	Name string `json:"name" validate:"required,min=3"`
}

// Question is a prompt belonging to one category at one difficulty level.
type Question struct {
	ID         string `json:"id" validate:"required"`
	Content    string `json:"content" validate:"required,min=3"`
	CategoryID string `json:"categoryId" validate:"required"`
	Difficulty int    `json:"difficulty" validate:"min=1,max=3"`
}

// Answer belongs to exactly one question. Exactly one answer per question
// is expected to be correct; the catalog owns that guarantee.
type Answer struct {
	ID         string `json:"id" validate:"required"`
	Name       string `json:"name" validate:"required,min=3"`
	Correct    bool   `json:"correct"`
	QuestionID string `json:"questionId" validate:"required"`
}

// AnswerView is the client-facing answer. It never carries the correctness flag.
type AnswerView struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// View strips the correctness flag.
func (a Answer) View() AnswerView {
	return AnswerView{ID: a.ID, Name: a.Name}
}

// Views strips the correctness flag from every answer.
func Views(answers []Answer) []AnswerView {
	views := make([]AnswerView, 0, len(answers))
	for _, a := range answers {
		views = append(views, a.View())
	}
	return views
}

// GameQuestion records that a question was served within a game.
// Append-only; (GameID, QuestionID) and (GameID, Position) are unique.
type GameQuestion struct {
	ID         string    `json:"id"`
	GameID     string    `json:"gameId"`
	QuestionID string    `json:"questionId"`
	Position   int       `json:"position"`
	ServedAt   time.Time `json:"servedAt"`
}

// ServedIDs returns the set of question ids already served.
func ServedIDs(records []GameQuestion) map[string]struct{} {
	ids := make(map[string]struct{}, len(records))
	for _, r := range records {
		ids[r.QuestionID] = struct{}{}
	}
	return ids
}

// QuestionView is a question with its answers as shown to a player.
type QuestionView struct {
	Question Question     `json:"question"`
	Answers  []AnswerView `json:"answers"`
}

// NextQuestion is the result of advancing a game. When Complete is set the
// question fields are empty and nothing was recorded.
type NextQuestion struct {
	GameID    string       `json:"gameId"`
	Complete  bool         `json:"complete"`
	Question  *Question    `json:"question,omitempty"`
	Answers   []AnswerView `json:"answers,omitempty"`
	Position  int          `json:"position"`
	Remaining int          `json:"remaining"`
}

// Session is returned by StartSession. Game is set whenever the game record
// was created, even if fetching the first question failed.
type Session struct {
	Game  Game          `json:"game"`
	First *NextQuestion `json:"first,omitempty"`
}

// AnswerResult is the outcome of a submission. It does not reveal the
// correct answer.
type AnswerResult struct {
	Correct bool `json:"correct"`
}

// GameProgress is a read-only snapshot of a game. Complete is derived from
// the served count on every call.
type GameProgress struct {
	Game     Game `json:"game"`
	Served   int  `json:"served"`
	Complete bool `json:"complete"`
}

// IsComplete reports whether served has reached the requested count.
func (g Game) IsComplete(served int) bool {
	return served >= g.QuestionCount
}

// Catalog bundles question content for seeding and in-memory catalogs.
type Catalog struct {
	Categories []Category `json:"categories" validate:"dive"`
	Questions  []Question `json:"questions" validate:"dive"`
	Answers    []Answer   `json:"answers" validate:"dive"`
}
