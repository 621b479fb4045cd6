package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"quiz-game-service/internal/domain"
)

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	GameID  string `json:"gameId,omitempty"`
}

var notFoundCodes = []struct {
	err  error
	code string
}{
	{domain.ErrGameNotFound, "game_not_found"},
	{domain.ErrAnswerNotFound, "answer_not_found"},
	{domain.ErrQuestionNotFound, "question_not_found"},
	{domain.ErrCategoryNotFound, "category_not_found"},
}

// statusFor maps an engine error to an HTTP status and a machine code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, "invalid_request"
	case errors.Is(err, domain.ErrNotFound):
		for _, nf := range notFoundCodes {
			if errors.Is(err, nf.err) {
				return http.StatusNotFound, nf.code
			}
		}
		return http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrConcurrencyConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, domain.ErrExhaustedPool):
		return http.StatusUnprocessableEntity, "pool_exhausted"
	default:
		return http.StatusServiceUnavailable, "unavailable"
	}
}

func errorFor(err error) errorPayload {
	_, code := statusFor(err)
	return errorPayload{Code: code, Message: err.Error()}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error, gameID string) {
	status, _ := statusFor(err)
	payload := errorFor(err)
	payload.GameID = gameID
	writeJSON(w, status, payload)
}

var (
	errNoGame             = errors.New("no game started on this connection")
	errUnsupportedMessage = errors.New("unsupported message type")
)
