package domain

import "time"

// User is the authenticated identity derived from the OAuth userinfo exchange.
type User struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar"`
}

// Question is a single generated interview Q&A pair.
type Question struct {
	ID         string `json:"id"`
	Question   string `json:"question"`
	Answer     string `json:"answer"`
	IsMastered bool   `json:"isMastered"`
}

// Topic is a named interview-preparation track owning an ordered question list.
type Topic struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Skills      []string `json:"skills"`
	Experience  string   `json:"experience"`
	// QACount is a snapshot taken at creation and refreshed on load-more.
	// Progress math never reads it; use len(Questions) for the live count.
	QACount     int        `json:"qaCount"`
	LastUpdated string     `json:"lastUpdated"`
	Color       string     `json:"color"`
	Questions   []Question `json:"questions"`
}

// MasteredCount recomputes mastery from source truth on every call.
func (t Topic) MasteredCount() int {
	n := 0
	for _, q := range t.Questions {
		if q.IsMastered {
			n++
		}
	}
	return n
}

// ProgressPercent is the rounded mastery percentage; 0 for empty topics.
func (t Topic) ProgressPercent() int {
	if len(t.Questions) == 0 {
		return 0
	}
	return int(float64(t.MasteredCount())/float64(len(t.Questions))*100 + 0.5)
}

// Colors is the fixed tag palette assigned pseudo-randomly at topic creation.
var Colors = []string{"emerald", "amber", "sky", "rose", "violet", "indigo"}

// ChatMessage is one practice-session transcript turn. Not persisted.
type ChatMessage struct {
	Role      string `json:"role"` // "user" or "model"
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
}

// FocusArea names a weak topic and why it needs attention.
type FocusArea struct {
	Topic  string `json:"topic"`
	Reason string `json:"reason"`
}

// InterviewSummary is the structured evaluation produced when a practice
// session ends. Held in session state only, never persisted.
type InterviewSummary struct {
	OverallScore int         `json:"overallScore"`
	KeyStrengths []string    `json:"keyStrengths"`
	FocusAreas   []FocusArea `json:"focusAreas"`
	StudyPlan    []string    `json:"studyPlan"`
	Summary      string      `json:"summary"`
}

// FormatDate renders timestamps the way topic cards display them, e.g. "30 Apr 2025".
func FormatDate(t time.Time) string {
	return t.Format("2 Jan 2006")
}
