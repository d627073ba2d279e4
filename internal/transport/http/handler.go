package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"interview-prep-service/internal/app"
	"interview-prep-service/internal/domain"
	"interview-prep-service/internal/logger"
)

// Fallback texts returned in place of an explanation when generation fails.
// The request still succeeds; the degraded flag tells clients what happened.
const (
	deepDiveFallback       = "Failed to load additional information. Please try again."
	simplifiedFallbackStem = "I'm sorry, I'm having trouble simplifying this further right now. Let's try focusing on the basics of "
)

// APIHandler serves the REST surface: auth, topic CRUD, question generation,
// mastery toggles and explanations. The practice chat lives on the websocket
// handler.
type APIHandler struct {
	auth         *app.AuthService
	topics       *app.TopicService
	explanations app.ExplanationSource
	tokens       *TokenAuth
	log          *logger.Logger
}

func NewAPIHandler(auth *app.AuthService, topics *app.TopicService, explanations app.ExplanationSource, tokens *TokenAuth, log *logger.Logger) *APIHandler {
	return &APIHandler{
		auth:         auth,
		topics:       topics,
		explanations: explanations,
		tokens:       tokens,
		log:          log.With("component", "http"),
	}
}

// Register mounts all routes. Everything under /api except login requires a
// bearer token.
func (h *APIHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", h.handleHealth)
	mux.HandleFunc("POST /api/auth/login", h.handleLogin)

	protect := func(fn http.HandlerFunc) http.Handler {
		return h.tokens.WithAuth(h.tokens.RequireAuth(fn))
	}
	mux.Handle("POST /api/auth/logout", protect(h.handleLogout))
	mux.Handle("GET /api/me", protect(h.handleMe))
	mux.Handle("GET /api/topics", protect(h.handleListTopics))
	mux.Handle("POST /api/topics", protect(h.handleCreateTopic))
	mux.Handle("GET /api/topics/{id}", protect(h.handleGetTopic))
	mux.Handle("PUT /api/topics/{id}", protect(h.handleUpdateTopic))
	mux.Handle("DELETE /api/topics/{id}", protect(h.handleDeleteTopic))
	mux.Handle("POST /api/topics/{id}/questions/more", protect(h.handleLoadMore))
	mux.Handle("POST /api/topics/{id}/questions/{qid}/mastery", protect(h.handleToggleMastery))
	mux.Handle("GET /api/topics/{id}/questions/{qid}/deepdive", protect(h.handleDeepDive))
	mux.Handle("GET /api/topics/{id}/questions/{qid}/simplified", protect(h.handleSimplified))
}

func (h *APIHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *APIHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AccessToken string `json:"accessToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.AccessToken == "" {
		writeError(w, http.StatusBadRequest, "accessToken required")
		return
	}
	user, token, err := h.auth.LoginWithToken(r.Context(), req.AccessToken)
	if err != nil {
		h.log.Warn("login failed", "error", err.Error())
		writeError(w, http.StatusUnauthorized, "login failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": user, "token": token})
}

func (h *APIHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.Logout(r.Context()); err != nil {
		h.log.Error("logout failed", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "logout failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *APIHandler) handleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := h.auth.CurrentUser()
	if !ok {
		writeError(w, http.StatusUnauthorized, "not logged in")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *APIHandler) handleListTopics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.topics.List())
}

func (h *APIHandler) handleCreateTopic(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Role        string `json:"role"`
		Experience  string `json:"experience"`
		Skills      string `json:"skills"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Role == "" || req.Skills == "" {
		writeError(w, http.StatusBadRequest, "role and skills required")
		return
	}
	topic, err := h.topics.Create(r.Context(), req.Role, req.Experience, req.Skills, req.Description)
	if err != nil {
		h.log.Error("topic creation failed", "role", req.Role, "error", err.Error())
		writeError(w, http.StatusBadGateway, "question generation failed")
		return
	}
	writeJSON(w, http.StatusCreated, topic)
}

func (h *APIHandler) handleGetTopic(w http.ResponseWriter, r *http.Request) {
	topic, err := h.topics.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "topic not found")
		return
	}
	writeJSON(w, http.StatusOK, topic)
}

func (h *APIHandler) handleUpdateTopic(w http.ResponseWriter, r *http.Request) {
	var topic domain.Topic
	if err := json.NewDecoder(r.Body).Decode(&topic); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	topic.ID = r.PathValue("id")
	if err := h.topics.Update(r.Context(), topic); err != nil {
		if errors.Is(err, domain.ErrTopicNotFound) {
			writeError(w, http.StatusNotFound, "topic not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	updated, err := h.topics.Get(topic.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *APIHandler) handleDeleteTopic(w http.ResponseWriter, r *http.Request) {
	if err := h.topics.Delete(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, domain.ErrTopicNotFound) {
			writeError(w, http.StatusNotFound, "topic not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *APIHandler) handleLoadMore(w http.ResponseWriter, r *http.Request) {
	topic, err := h.topics.LoadMore(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, domain.ErrTopicNotFound) {
			writeError(w, http.StatusNotFound, "topic not found")
			return
		}
		h.log.Error("load more failed", "topic", r.PathValue("id"), "error", err.Error())
		writeError(w, http.StatusBadGateway, "question generation failed")
		return
	}
	writeJSON(w, http.StatusOK, topic)
}

func (h *APIHandler) handleToggleMastery(w http.ResponseWriter, r *http.Request) {
	topic, err := h.topics.ToggleMastery(r.Context(), r.PathValue("id"), r.PathValue("qid"))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrTopicNotFound):
			writeError(w, http.StatusNotFound, "topic not found")
		case errors.Is(err, domain.ErrQuestionNotFound):
			writeError(w, http.StatusNotFound, "question not found")
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, topic)
}

func (h *APIHandler) lookupQuestion(r *http.Request) (domain.Topic, domain.Question, error) {
	topic, err := h.topics.Get(r.PathValue("id"))
	if err != nil {
		return domain.Topic{}, domain.Question{}, err
	}
	for _, q := range topic.Questions {
		if q.ID == r.PathValue("qid") {
			return topic, q, nil
		}
	}
	return domain.Topic{}, domain.Question{}, domain.ErrQuestionNotFound
}

func (h *APIHandler) handleDeepDive(w http.ResponseWriter, r *http.Request) {
	topic, question, err := h.lookupQuestion(r)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	explanation, err := h.explanations.DeepDive(r.Context(), topic.Title, question.Question)
	if err != nil {
		h.log.Warn("deep dive failed", "topic", topic.ID, "question", question.ID, "error", err.Error())
		writeJSON(w, http.StatusOK, map[string]any{"explanation": deepDiveFallback, "degraded": true})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"explanation": explanation})
}

func (h *APIHandler) handleSimplified(w http.ResponseWriter, r *http.Request) {
	topic, question, err := h.lookupQuestion(r)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	// The simpler take is grounded on whatever deep dive the user already
	// read; absent one (cache miss after a restart) the model answer serves.
	previous, err := h.explanations.DeepDive(r.Context(), topic.Title, question.Question)
	if err != nil {
		previous = question.Answer
	}
	explanation, err := h.explanations.SimplerExplanation(r.Context(), topic.Title, question.Question, previous)
	if err != nil {
		h.log.Warn("simplified explanation failed", "topic", topic.ID, "question", question.ID, "error", err.Error())
		writeJSON(w, http.StatusOK, map[string]any{"explanation": simplifiedFallbackStem + topic.Title, "degraded": true})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"explanation": explanation})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
