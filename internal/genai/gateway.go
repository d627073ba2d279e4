package genai

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/google/uuid"

	"interview-prep-service/internal/domain"
	"interview-prep-service/internal/logger"
)

// Gateway exposes the application-facing generation operations on top of the
// raw Client. Failures surface as *TransportError or *ParseError; the gateway
// never substitutes fallback content itself, so callers can tell "nothing
// generated" from "failed".
type Gateway struct {
	client Client
	log    *logger.Logger
}

func NewGateway(client Client, log *logger.Logger) *Gateway {
	return &Gateway{client: client, log: log.With("component", "gateway")}
}

type qaPair struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

func (g *Gateway) parseQuestions(raw string) ([]domain.Question, error) {
	var pairs []qaPair
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &pairs); err != nil {
		return nil, &ParseError{Raw: raw, Err: err}
	}
	questions := make([]domain.Question, 0, len(pairs))
	for _, p := range pairs {
		questions = append(questions, domain.Question{
			ID:         uuid.NewString(),
			Question:   p.Question,
			Answer:     p.Answer,
			IsMastered: false,
		})
	}
	return questions, nil
}

// GenerateQuestions produces the initial question set for a new topic. The
// model is instructed to return exactly 10 pairs; only field presence is
// structurally enforced.
func (g *Gateway) GenerateQuestions(ctx context.Context, role, experience, skills string) ([]domain.Question, error) {
	raw, err := g.client.GenerateJSON(ctx, "", questionsPrompt(role, experience, skills), qaListSchema)
	if err != nil {
		g.log.Warn("question generation failed", "role", role, "error", err.Error())
		return nil, err
	}
	return g.parseQuestions(raw)
}

// GenerateMoreQuestions asks for 10 further pairs avoiding the given texts.
// Duplication avoidance is a prompt instruction, not a guarantee.
func (g *Gateway) GenerateMoreQuestions(ctx context.Context, topic domain.Topic, existing []string) ([]domain.Question, error) {
	raw, err := g.client.GenerateJSON(ctx, "", moreQuestionsPrompt(topic, existing), qaListSchema)
	if err != nil {
		g.log.Warn("incremental generation failed", "topic", topic.ID, "error", err.Error())
		return nil, err
	}
	return g.parseQuestions(raw)
}

// DeepDive returns a long-form formatted explanation for one question.
func (g *Gateway) DeepDive(ctx context.Context, topicTitle, question string) (string, error) {
	return g.client.GenerateText(ctx, "", deepDivePrompt(topicTitle, question))
}

// SimplerExplanation re-explains a question in a plainer register, given the
// deep dive the user already read.
func (g *Gateway) SimplerExplanation(ctx context.Context, topicTitle, question, previous string) (string, error) {
	return g.client.GenerateText(ctx, "", simplerPrompt(topicTitle, question, previous))
}

// EvaluateInterview scores a flattened role-labelled transcript.
func (g *Gateway) EvaluateInterview(ctx context.Context, topic domain.Topic, transcript string) (*domain.InterviewSummary, error) {
	raw, err := g.client.GenerateJSON(ctx, "", summaryPrompt(topic, transcript), summarySchema)
	if err != nil {
		g.log.Warn("evaluation failed", "topic", topic.ID, "error", err.Error())
		return nil, err
	}
	var summary domain.InterviewSummary
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &summary); err != nil {
		return nil, &ParseError{Raw: raw, Err: err}
	}
	return &summary, nil
}

// NewInterviewChat opens a practice chat scoped to one topic. The returned
// chat owns the authoritative turn history; the collaborator receives the
// accumulated turns on every exchange and keeps no state of its own.
func (g *Gateway) NewInterviewChat(topic domain.Topic) *InterviewChat {
	return &InterviewChat{
		client:      g.client,
		instruction: interviewerInstruction(topic),
	}
}

// InterviewChat is a stateful multi-turn session. Safe for use from a single
// goroutine at a time; the practice session serializes access.
type InterviewChat struct {
	client      Client
	instruction string

	mu      sync.Mutex
	history []Turn
}

// Send submits one user turn and returns the model reply. On failure the
// user turn is rolled back from the history so a retry does not double it.
func (c *InterviewChat) Send(ctx context.Context, text string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.history = append(c.history, Turn{Role: "user", Text: text})
	reply, err := c.client.GenerateTurn(ctx, c.instruction, c.history)
	if err != nil {
		c.history = c.history[:len(c.history)-1]
		return "", err
	}
	c.history = append(c.history, Turn{Role: "model", Text: reply})
	return reply, nil
}

// History returns a copy of the accumulated turns.
func (c *InterviewChat) History() []Turn {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Turn, len(c.history))
	copy(out, c.history)
	return out
}
