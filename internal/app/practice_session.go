package app

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"interview-prep-service/internal/domain"
)

// SessionState tracks where a practice session is in its lifecycle.
type SessionState int

const (
	StateInitializing SessionState = iota
	StateActive
	StateAwaitingReply
	StateEvaluating
	StateSummarized
	StateExited
)

func (s SessionState) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateActive:
		return "active"
	case StateAwaitingReply:
		return "awaiting_reply"
	case StateEvaluating:
		return "evaluating"
	case StateSummarized:
		return "summarized"
	case StateExited:
		return "exited"
	default:
		return "unknown"
	}
}

// ReplyGlitchMessage is appended in place of a model reply when a chat turn
// fails; the user turn is kept, never dropped or retried automatically.
const ReplyGlitchMessage = "I encountered a minor glitch in the matrix. Could you repeat that?"

// minTranscriptForEval is the threshold below which ending a session skips
// evaluation entirely (too little signal to score).
const minTranscriptForEval = 3

// PracticeSession is the mock-interview state machine. It owns the ordered
// transcript as the authoritative record, independent of whatever the chat
// collaborator remembers. Transcript and summary are never persisted.
type PracticeSession struct {
	topic     domain.Topic
	chat      Interviewer
	evaluator Evaluator
	now       func() time.Time

	mu         sync.Mutex
	state      SessionState
	transcript []domain.ChatMessage
	summary    *domain.InterviewSummary
}

func NewPracticeSession(topic domain.Topic, chat Interviewer, evaluator Evaluator) *PracticeSession {
	return NewPracticeSessionWithClock(topic, chat, evaluator, time.Now)
}

// NewPracticeSessionWithClock allows deterministic timestamps in tests.
func NewPracticeSessionWithClock(topic domain.Topic, chat Interviewer, evaluator Evaluator, now func() time.Time) *PracticeSession {
	return &PracticeSession{
		topic:     topic,
		chat:      chat,
		evaluator: evaluator,
		now:       now,
		state:     StateInitializing,
	}
}

func openingMessage(topic domain.Topic) string {
	return fmt.Sprintf("I am ready for the %s mock interview. My skills are %s.",
		topic.Title, strings.Join(topic.Skills, ", "))
}

// Start sends the synthetic opening message; the first model reply becomes
// transcript entry 0. On failure the session stays in Initializing and the
// error surfaces so the caller can retry or exit.
func (p *PracticeSession) Start(ctx context.Context) (domain.ChatMessage, error) {
	p.mu.Lock()
	if p.state != StateInitializing {
		p.mu.Unlock()
		return domain.ChatMessage{}, domain.ErrSessionClosed
	}
	p.mu.Unlock()

	reply, err := p.chat.Send(ctx, openingMessage(p.topic))
	if err != nil {
		return domain.ChatMessage{}, fmt.Errorf("open practice chat: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != StateInitializing {
		// Exited while the opening exchange was in flight.
		return domain.ChatMessage{}, domain.ErrSessionClosed
	}
	msg := domain.ChatMessage{Role: "model", Text: reply, Timestamp: p.now().UnixMilli()}
	p.transcript = append(p.transcript, msg)
	p.state = StateActive
	return msg, nil
}

// Submit appends the user turn optimistically, asks for a reply, and appends
// either the reply or the fixed apology string. Guards: empty input, a reply
// in flight, an evaluation in flight, and closed sessions are rejected.
func (p *PracticeSession) Submit(ctx context.Context, text string) (domain.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.ChatMessage{}, domain.ErrEmptyMessage
	}

	p.mu.Lock()
	switch p.state {
	case StateActive:
	case StateInitializing, StateAwaitingReply:
		p.mu.Unlock()
		return domain.ChatMessage{}, domain.ErrReplyInFlight
	case StateEvaluating:
		p.mu.Unlock()
		return domain.ChatMessage{}, domain.ErrEvaluationInFlight
	default:
		p.mu.Unlock()
		return domain.ChatMessage{}, domain.ErrSessionClosed
	}
	p.transcript = append(p.transcript, domain.ChatMessage{
		Role: "user", Text: text, Timestamp: p.now().UnixMilli(),
	})
	p.state = StateAwaitingReply
	p.mu.Unlock()

	reply, err := p.chat.Send(ctx, text)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == StateExited {
		return domain.ChatMessage{}, domain.ErrSessionClosed
	}
	replyText := reply
	if err != nil {
		replyText = ReplyGlitchMessage
	}
	msg := domain.ChatMessage{Role: "model", Text: replyText, Timestamp: p.now().UnixMilli()}
	p.transcript = append(p.transcript, msg)
	p.state = StateActive
	return msg, nil
}

// End finishes the session. With fewer than 3 transcript entries the session
// exits immediately and the evaluator is never invoked. Otherwise the
// flattened transcript is scored; a failed evaluation returns the session to
// Active so the user can end again (retry) or exit.
func (p *PracticeSession) End(ctx context.Context) (*domain.InterviewSummary, error) {
	p.mu.Lock()
	switch p.state {
	case StateActive, StateAwaitingReply:
	case StateEvaluating:
		p.mu.Unlock()
		return nil, domain.ErrEvaluationInFlight
	default:
		p.mu.Unlock()
		return nil, domain.ErrSessionClosed
	}

	if len(p.transcript) < minTranscriptForEval {
		p.state = StateExited
		p.mu.Unlock()
		return nil, nil
	}

	transcript := flattenTranscript(p.transcript)
	p.state = StateEvaluating
	p.mu.Unlock()

	summary, err := p.evaluator.EvaluateInterview(ctx, p.topic, transcript)

	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		p.state = StateActive
		return nil, fmt.Errorf("evaluate interview: %w", err)
	}
	p.summary = summary
	p.state = StateSummarized
	return summary, nil
}

// Exit abandons the session; allowed at any point. The transcript and any
// summary are discarded with the session object.
func (p *PracticeSession) Exit() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = StateExited
}

func (p *PracticeSession) State() SessionState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Transcript returns a copy of the turns in submission order.
func (p *PracticeSession) Transcript() []domain.ChatMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.ChatMessage, len(p.transcript))
	copy(out, p.transcript)
	return out
}

func (p *PracticeSession) Summary() *domain.InterviewSummary {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.summary
}

// flattenTranscript renders the two-role labelled text block passed to the
// evaluator: every message in submission order, prefixed by its role label.
func flattenTranscript(messages []domain.ChatMessage) string {
	lines := make([]string, 0, len(messages))
	for _, m := range messages {
		label := "Interviewer"
		if m.Role == "user" {
			label = "Candidate"
		}
		lines = append(lines, label+": "+m.Text)
	}
	return strings.Join(lines, "\n\n")
}
