package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"quiz-game-service/internal/app"
	"quiz-game-service/internal/domain"
)

// UserHeader carries the caller identity set by the authenticating gateway.
const UserHeader = "X-User-ID"

type RESTHandler struct {
	service *app.GameService
	log     logrus.FieldLogger
}

func NewRESTHandler(service *app.GameService, log logrus.FieldLogger) *RESTHandler {
	return &RESTHandler{service: service, log: log}
}

// Register mounts the game routes on r.
func (h *RESTHandler) Register(r *mux.Router) {
	r.HandleFunc("/games", h.startGame).Methods(http.MethodPost)
	r.HandleFunc("/games/{id}", h.getGame).Methods(http.MethodGet)
	r.HandleFunc("/games/{id}/next", h.nextQuestion).Methods(http.MethodPost)
	r.HandleFunc("/games/{id}/answers", h.submitAnswer).Methods(http.MethodPost)
	r.HandleFunc("/questions/random", h.randomQuestion).Methods(http.MethodGet)
}

type startGameRequest struct {
	QuestionCount int    `json:"questionCount"`
	Difficulty    int    `json:"difficulty"`
	CategoryID    string `json:"categoryId"`
}

type submitAnswerRequest struct {
	AnswerID string `json:"answerId"`
}

func (h *RESTHandler) startGame(w http.ResponseWriter, r *http.Request) {
	var body startGameRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, domain.EKind("decode request", domain.ErrValidation, err), "")
		return
	}
	session, err := h.service.StartSession(r.Context(), app.StartRequest{
		UserID:        r.Header.Get(UserHeader),
		QuestionCount: body.QuestionCount,
		Difficulty:    body.Difficulty,
		CategoryID:    body.CategoryID,
	})
	if err != nil {
		h.log.WithError(err).WithField("game_id", session.Game.ID).Warn("start game failed")
		writeError(w, err, session.Game.ID)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

func (h *RESTHandler) getGame(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["id"]
	progress, err := h.service.Progress(r.Context(), gameID)
	if err != nil {
		writeError(w, err, "")
		return
	}
	writeJSON(w, http.StatusOK, progress)
}

func (h *RESTHandler) nextQuestion(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["id"]
	next, err := h.service.NextQuestion(r.Context(), gameID)
	if err != nil {
		writeError(w, err, "")
		return
	}
	writeJSON(w, http.StatusOK, next)
}

func (h *RESTHandler) submitAnswer(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["id"]
	var body submitAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, domain.EKind("decode request", domain.ErrValidation, err), "")
		return
	}
	result, err := h.service.SubmitAnswer(r.Context(), gameID, body.AnswerID)
	if err != nil {
		writeError(w, err, "")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *RESTHandler) randomQuestion(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	difficulty, err := strconv.Atoi(q.Get("difficulty"))
	if err != nil {
		writeError(w, domain.EKind("parse query", domain.ErrValidation,
			fmt.Errorf("difficulty %q: %w", q.Get("difficulty"), err)), "")
		return
	}
	view, err := h.service.NextQuestionFor(r.Context(), q.Get("categoryId"), difficulty)
	if err != nil {
		writeError(w, err, "")
		return
	}
	writeJSON(w, http.StatusOK, view)
}
