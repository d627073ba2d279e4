package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/websocket"

	"interview-prep-service/internal/app"
	"interview-prep-service/internal/domain"
	"interview-prep-service/internal/logger"
)

// SessionFactory builds a practice session for one topic. Injected so tests
// can swap in canned interviewers and evaluators.
type SessionFactory func(topic domain.Topic) *app.PracticeSession

// WSHandler runs the mock-interview chat over a websocket. One connection is
// one session; closing the socket abandons the session and its transcript.
type WSHandler struct {
	topics     *app.TopicService
	newSession SessionFactory
	tokens     *TokenAuth
	log        *logger.Logger
	upgrader   websocket.Upgrader
}

func NewWSHandler(topics *app.TopicService, newSession SessionFactory, tokens *TokenAuth, log *logger.Logger) *WSHandler {
	return &WSHandler{
		topics:     topics,
		newSession: newSession,
		tokens:     tokens,
		log:        log.With("component", "ws"),
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
	Text string `json:"text"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades the request and drives the session until the summary is
// delivered or the client disconnects. Browsers cannot set headers on the
// websocket handshake, so the bearer token rides in the query string.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	topicID := r.URL.Query().Get("topicId")
	if topicID == "" {
		http.Error(w, "missing topicId", http.StatusBadRequest)
		return
	}
	if _, err := h.tokens.parseToken(r.URL.Query().Get("token")); err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	topic, err := h.topics.Get(topicID)
	if err != nil {
		http.Error(w, "topic not found", http.StatusNotFound)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", "error", err.Error())
		return
	}
	defer conn.Close()

	session := h.newSession(topic)
	defer session.Exit()

	send := make(chan outboundMessage[any], 16)
	writerDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.log.Warn("ws write error", "error", err.Error())
				return
			}
		}
	}()

	opening, err := session.Start(r.Context())
	if err != nil {
		h.log.Warn("session start failed", "topic", topic.ID, "error", err.Error())
		send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "could not start the interview, please try again"}}
		close(send)
		<-writerDone
		return
	}
	send <- outboundMessage[any]{Type: "interviewer", Payload: opening}

readLoop:
	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid answer payload"}}
				continue
			}
			reply, err := session.Submit(r.Context(), payload.Text)
			if err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: sessionError(err)}}
				continue
			}
			send <- outboundMessage[any]{Type: "interviewer", Payload: reply}
		case "end":
			summary, err := session.End(r.Context())
			if err != nil {
				// The session is back in Active; the client may retry.
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "evaluation failed, you can try ending again"}}
				continue
			}
			if summary == nil {
				send <- outboundMessage[any]{Type: "exited", Payload: struct{}{}}
			} else {
				send <- outboundMessage[any]{Type: "summary", Payload: summary}
			}
			break readLoop
		default:
			send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}}
		}
	}

	close(send)
	<-writerDone
}

// sessionError maps state-machine sentinels to client-facing text. Unknown
// errors pass through verbatim.
func sessionError(err error) string {
	switch {
	case errors.Is(err, domain.ErrEmptyMessage):
		return "message is empty"
	case errors.Is(err, domain.ErrReplyInFlight):
		return "a reply is already in flight"
	case errors.Is(err, domain.ErrEvaluationInFlight):
		return "the interview is being evaluated"
	case errors.Is(err, domain.ErrSessionClosed):
		return "the session is over"
	}
	return err.Error()
}
