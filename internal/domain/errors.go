package domain

import "errors"

var (
	// ErrTopicNotFound is returned when no topic matches the given id.
	ErrTopicNotFound = errors.New("topic not found")
	// ErrQuestionNotFound indicates a question id is not present in the topic.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrDocumentNotFound is returned by document stores for absent keys.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrNotAuthenticated indicates no user is present in the identity session.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrEmptyMessage rejects blank practice-session input.
	ErrEmptyMessage = errors.New("empty message")
	// ErrReplyInFlight rejects a submission while a model reply is pending.
	ErrReplyInFlight = errors.New("reply already in flight")
	// ErrEvaluationInFlight rejects input while the evaluation call is pending.
	ErrEvaluationInFlight = errors.New("evaluation in flight")
	// ErrSessionClosed rejects actions on a summarized or exited session.
	ErrSessionClosed = errors.New("practice session closed")
)
