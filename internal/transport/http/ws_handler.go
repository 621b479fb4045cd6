package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"quiz-game-service/internal/app"
	"quiz-game-service/internal/domain"
)

type WSHandler struct {
	service  *app.GameService
	log      logrus.FieldLogger
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.GameService, log logrus.FieldLogger) *WSHandler {
	return &WSHandler{
		service: service,
		log:     log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	AnswerID string `json:"answerId"`
}

type answerResult struct {
	GameID   string `json:"gameId"`
	AnswerID string `json:"answerId"`
	Correct  bool   `json:"correct"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

// ServeWS upgrades the request and runs a play loop for one game. The game
// is either resumed from the gameId query parameter or created by a "start"
// message. Clients then alternate "next" and "answer" messages.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get(UserHeader)
	if userID == "" {
		userID = r.URL.Query().Get("userId")
	}
	gameID := r.URL.Query().Get("gameId")
	if userID == "" && gameID == "" {
		http.Error(w, "missing user id or gameId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("ws upgrade failed")
		return
	}
	defer conn.Close()

	out := outbox{send: make(chan outboundMessage[any], 16), done: make(chan struct{})}
	writerDone := out.done

	go func() {
		defer close(writerDone)
		for msg := range out.send {
			if err := conn.WriteJSON(msg); err != nil {
				h.log.WithError(err).Debug("ws write failed")
				return
			}
		}
	}()

	if gameID != "" {
		progress, err := h.service.Progress(r.Context(), gameID)
		reply := outboundMessage[any]{Type: "progress", Payload: progress}
		if err != nil {
			reply = errorMessage(err)
		}
		out.push(reply)
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		if !out.push(h.dispatch(r.Context(), inbound, userID, &gameID)) {
			break
		}
	}

	close(out.send)
	<-writerDone
}

// outbox feeds the connection's single writer goroutine.
type outbox struct {
	send chan outboundMessage[any]
	done chan struct{}
}

// push queues msg and reports false once the writer has stopped.
func (o outbox) push(msg outboundMessage[any]) bool {
	select {
	case o.send <- msg:
		return true
	case <-o.done:
		return false
	}
}

func errorMessage(err error) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorFor(err)}
}

// dispatch handles one inbound message and returns the reply. A "start"
// message binds the connection to the new game through gameID.
func (h *WSHandler) dispatch(ctx context.Context, inbound inboundMessage, userID string, gameID *string) outboundMessage[any] {
	switch inbound.Type {
	case "start":
		var payload startGameRequest
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return errorMessage(domain.EKind("decode start", domain.ErrValidation, err))
		}
		session, err := h.service.StartSession(ctx, app.StartRequest{
			UserID:        userID,
			QuestionCount: payload.QuestionCount,
			Difficulty:    payload.Difficulty,
			CategoryID:    payload.CategoryID,
		})
		if session.Game.ID != "" {
			*gameID = session.Game.ID
		}
		if err != nil {
			e := errorFor(err)
			e.GameID = session.Game.ID
			return outboundMessage[any]{Type: "error", Payload: e}
		}
		return outboundMessage[any]{Type: "session", Payload: session}
	case "next":
		if *gameID == "" {
			return errorMessage(domain.EKind("next", domain.ErrValidation, errNoGame))
		}
		next, err := h.service.NextQuestion(ctx, *gameID)
		if err != nil {
			return errorMessage(err)
		}
		typ := "question"
		if next.Complete {
			typ = "complete"
		}
		return outboundMessage[any]{Type: typ, Payload: next}
	case "answer":
		if *gameID == "" {
			return errorMessage(domain.EKind("answer", domain.ErrValidation, errNoGame))
		}
		var payload answerPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return errorMessage(domain.EKind("decode answer", domain.ErrValidation, err))
		}
		result, err := h.service.SubmitAnswer(ctx, *gameID, payload.AnswerID)
		if err != nil {
			return errorMessage(err)
		}
		return outboundMessage[any]{Type: "answerResult", Payload: answerResult{
			GameID:   *gameID,
			AnswerID: payload.AnswerID,
			Correct:  result.Correct,
		}}
	default:
		return errorMessage(domain.EKind("dispatch", domain.ErrValidation, errUnsupportedMessage))
	}
}
