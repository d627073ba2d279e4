package genai

import (
	"fmt"
	"strings"

	"interview-prep-service/internal/domain"
)

// Schemas passed to the model as responseSchema constraints. Field presence
// is enforced by the API; counts and uniqueness remain prompt instructions.
var qaListSchema = map[string]any{
	"type": "ARRAY",
	"items": map[string]any{
		"type": "OBJECT",
		"properties": map[string]any{
			"question": map[string]any{"type": "STRING"},
			"answer":   map[string]any{"type": "STRING"},
		},
		"required": []string{"question", "answer"},
	},
}

var summarySchema = map[string]any{
	"type": "OBJECT",
	"properties": map[string]any{
		"overallScore": map[string]any{"type": "NUMBER"},
		"keyStrengths": map[string]any{"type": "ARRAY", "items": map[string]any{"type": "STRING"}},
		"focusAreas": map[string]any{
			"type": "ARRAY",
			"items": map[string]any{
				"type": "OBJECT",
				"properties": map[string]any{
					"topic":  map[string]any{"type": "STRING"},
					"reason": map[string]any{"type": "STRING"},
				},
			},
		},
		"studyPlan": map[string]any{"type": "ARRAY", "items": map[string]any{"type": "STRING"}},
		"summary":   map[string]any{"type": "STRING"},
	},
	"required": []string{"overallScore", "keyStrengths", "focusAreas", "studyPlan", "summary"},
}

func questionsPrompt(role, experience, skills string) string {
	return fmt.Sprintf(`Generate exactly 10 high-quality technical interview questions and comprehensive answers for a %s position with %s of experience. Focus on skills like %s.
Return the result as a JSON array of objects, where each object has "question" and "answer" properties. Ensure questions range from fundamental concepts to advanced scenarios.`, role, experience, skills)
}

func moreQuestionsPrompt(topic domain.Topic, existing []string) string {
	return fmt.Sprintf(`You are an expert interviewer. The candidate is preparing for a %s role (%s exp) with skills: %s.

They already have these questions: "%s".

Generate 10 MORE unique, high-quality technical interview questions and answers that cover DIFFERENT sub-topics or advanced scenarios not covered above.
Return as a JSON array of objects with "question" and "answer" properties.`,
		topic.Title, topic.Experience, strings.Join(topic.Skills, ", "), strings.Join(existing, `", "`))
}

func deepDivePrompt(topicTitle, question string) string {
	return fmt.Sprintf(`You are a fun and world-class technical mentor. Provide a comprehensive, interesting, and "fun to read" research response for this interview topic.

Topic: %s
Question: %s

Format the response as a fun mini-article with:
1. "The Big Picture": Use a fun real-world analogy.
2. "How it works": Break it down simply.
3. "Code in Action": Provide a clean, commented code example using Markdown.
4. "Pro Tip": A secret insight that makes the candidate stand out.
5. "Don't Trip": Common pitfalls to avoid.

Style: Use emojis, bold text, and a friendly, encouraging tone. Make it feel like an interesting tech blog post rather than a dry textbook.`, topicTitle, question)
}

func simplerPrompt(topicTitle, question, previousExplanation string) string {
	return fmt.Sprintf(`The user is still confused about the following interview topic after reading a deep dive.

Topic: %s
Question: %s

Previous explanation for context:
%s

Please provide a "Simpler Version" (ELI5 - Explain Like I'm 5 style).
- Use even simpler analogies.
- Break it down into very small, step-by-step concepts.
- Focus on the 'Why' before the 'How'.
- Use very clear, bold headers.
- Avoid complex jargon or explain it immediately if used.

Make it encouraging and extremely easy to grasp.`, topicTitle, question, previousExplanation)
}

func interviewerInstruction(topic domain.Topic) string {
	return fmt.Sprintf(`You are a Senior Lead Engineer and hiring manager for a %s position.
The candidate has %s of experience. Skills to assess: %s.

YOUR GOAL:
Conduct a high-stakes but fair mock interview.

YOUR STRUCTURE FOR EVERY TURN:
1. FEEDBACK: Briefly critique the candidate's last answer. Mention what was strong and what was missing.
2. RATING: Give a quick 1-10 rating for the last answer internally.
3. NEXT QUESTION: Ask a follow-up if they were vague, or a new challenging question if they were clear.

TONE:
Professional, demanding of technical precision, but encouraging. Use markdown for structure.

IMPORTANT:
If the candidate's answer is very short, challenge them to explain the "why" or "how it works under the hood".`,
		topic.Title, topic.Experience, strings.Join(topic.Skills, ", "))
}

func summaryPrompt(topic domain.Topic, transcript string) string {
	return fmt.Sprintf(`You are a career coach. Analyze the following mock interview transcript for a %s role.

TRANSCRIPT:
%s

Provide a structured summary in JSON format with the following:
1. overallScore (1-100)
2. keyStrengths (Array of strings)
3. focusAreas (Array of objects with "topic" and "reason")
4. studyPlan (Array of 3 specific action items)
5. summary (A 2-sentence encouraging closing statement)`, topic.Title, transcript)
}
