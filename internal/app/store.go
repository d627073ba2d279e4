package app

import (
	"context"

	"interview-prep-service/internal/domain"
)

// Document keys for the two persisted records. Names are part of the storage
// contract and survive across store backends.
const (
	UserDocumentKey   = "interview-ai-user"
	TopicsDocumentKey = "interview-ai-topics"
)

// DocumentStore abstracts how the two JSON documents are stored (file,
// Redis, Postgres). Load returns domain.ErrDocumentNotFound for absent keys.
type DocumentStore interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
}

// QuestionGenerator produces question sets via the AI collaborator.
type QuestionGenerator interface {
	GenerateQuestions(ctx context.Context, role, experience, skills string) ([]domain.Question, error)
	GenerateMoreQuestions(ctx context.Context, topic domain.Topic, existing []string) ([]domain.Question, error)
}

// Interviewer is one open practice chat; Send exchanges a single turn.
type Interviewer interface {
	Send(ctx context.Context, text string) (string, error)
}

// Evaluator scores a finished interview transcript.
type Evaluator interface {
	EvaluateInterview(ctx context.Context, topic domain.Topic, transcript string) (*domain.InterviewSummary, error)
}

// ExplanationSource produces long-form and simplified explanations.
type ExplanationSource interface {
	DeepDive(ctx context.Context, topicTitle, question string) (string, error)
	SimplerExplanation(ctx context.Context, topicTitle, question, previous string) (string, error)
}
