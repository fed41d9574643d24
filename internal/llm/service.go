package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"careline/api/internal/redact"
)

// Audience selects the summary style for consult summaries.
type Audience string

const (
	AudienceDoctor  Audience = "doctor"
	AudienceNurse   Audience = "nurse"
	AudiencePatient Audience = "patient session"
)

const (
	maxContextNotes  = 3
	maxExampleSpans  = 5
	maxSummaryInputs = 10
)

// Service is the facade the engine calls. A nil client means the generator
// is not configured and every analysis yields an empty set.
type Service struct {
	client *Client
	cache  *Cache
}

func NewService(client *Client, cache *Cache) *Service {
	return &Service{client: client, cache: cache}
}

// Enabled reports whether a generator is configured.
func (s *Service) Enabled() bool {
	return s != nil && s.client != nil
}

// Analyze asks the generator for highlight and action candidates. Content
// and context are redacted before leaving the process. Failures degrade to
// an empty suggestion set; they are logged, never returned.
func (s *Service) Analyze(ctx context.Context, content string, contextNotes []ContextNote, examples []string) Suggestions {
	if !s.Enabled() {
		return Suggestions{}
	}

	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, content); ok {
			return cached
		}
	}

	prompt := analysisPrompt(redact.PHI(content), contextNotes, examples)
	raw, err := s.client.Generate(ctx, prompt, true)
	if err != nil {
		log.Printf("llm: analysis failed: %v", err)
		return Suggestions{}
	}

	var suggestions Suggestions
	if err := json.Unmarshal([]byte(raw), &suggestions); err != nil {
		log.Printf("llm: undecodable analysis payload: %v", err)
		return Suggestions{}
	}

	if s.cache != nil {
		s.cache.Set(ctx, content, suggestions)
	}
	return suggestions
}

// Summarize produces a consult summary for the given audience from the
// redacted transcript. The error signals the caller to fall back to its
// canned summary.
func (s *Service) Summarize(ctx context.Context, audience Audience, transcript []ContextNote) (string, error) {
	if !s.Enabled() {
		return "", fmt.Errorf("generator not configured")
	}

	if len(transcript) > maxSummaryInputs {
		transcript = transcript[:maxSummaryInputs]
	}
	lines := make([]string, 0, len(transcript))
	for _, note := range transcript {
		lines = append(lines, fmt.Sprintf("[%s]: %s", note.AuthorRole, redact.PHI(note.Content)))
	}

	var constraints string
	if audience == AudiencePatient {
		constraints = `
STRICT RULES FOR PATIENT SUMMARY:
1. Use simple, non-medical language (layperson terms).
2. DO NOT include specific medication dosages.
3. DO NOT include raw vital signs.
4. Focus on: What happened, What was done, and What to do next.
5. NO medical jargon or complex diagnosis codes.`
	}

	prompt := fmt.Sprintf(`Summarize the following medical consultation for a %s's record.%s

Context:
%s

Output a concise professional summary.`, audience, constraints, strings.Join(lines, "\n"))

	return s.client.Generate(ctx, prompt, false)
}

// Scenario generates a short synthetic clinical note for the scribe
// simulation. Callers fall back to canned scenarios on error.
func (s *Service) Scenario(ctx context.Context) (string, error) {
	if !s.Enabled() {
		return "", fmt.Errorf("generator not configured")
	}
	return s.client.Generate(ctx,
		"Generate a realistic, short (3-5 sentences) clinical note for a random patient visit. Include symptoms, vitals, and plan.",
		false)
}

func analysisPrompt(safeContent string, contextNotes []ContextNote, examples []string) string {
	if len(contextNotes) > maxContextNotes {
		contextNotes = contextNotes[len(contextNotes)-maxContextNotes:]
	}
	contextLines := make([]string, 0, len(contextNotes))
	for _, note := range contextNotes {
		contextLines = append(contextLines, fmt.Sprintf("[%s] %s", note.Timestamp, redact.PHI(note.Content)))
	}

	if len(examples) > maxExampleSpans {
		examples = examples[:maxExampleSpans]
	}
	exampleLines := make([]string, 0, len(examples))
	for _, example := range examples {
		exampleLines = append(exampleLines, fmt.Sprintf("Text: '%s' -> Highlight (Important Signal)", example))
	}

	return fmt.Sprintf(`You are an AI medical assistant. Analyze the following clinical note.

Context (Recent History):
%s

User's Past Highlighting Habits (Self-Learning):
%s

Current Note:
%s

Task:
1. Identify key medical highlights (risks, vital changes, important symptoms).
2. Identify actionable tasks for the clinician or staff.

Output JSON format:
{
  "highlights": [
    { "text": "string", "type": "risk" | "vital" | "symptom", "reason": "short explanation" }
  ],
  "actions": [
    { "description": "string", "assignee": "clinician" | "staff" | "system", "priority": "high" | "medium" | "low", "tags": ["tag1", "tag2"] }
  ]
}`, strings.Join(contextLines, "\n"), strings.Join(exampleLines, "\n"), safeContent)
}
