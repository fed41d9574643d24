package app

import (
	"math"
	"sort"
	"strings"
	"time"

	"careline/api/internal/rbac"
	"careline/api/internal/store"
)

// glance weighting: full weight today, half at two days, under the cutoff
// past roughly a week.
const decayCutoff = 0.2

// KeySignal is a highlight annotated for the glance view with its owning
// note, decay weight and the note's timestamp for sorting.
type KeySignal struct {
	store.Highlight
	SourceNoteID string  `json:"source_note_id"`
	Weight       float64 `json:"weight"`
	Timestamp    string  `json:"timestamp"`
}

type ConfirmedItem struct {
	ID           string `json:"id"`
	Text         string `json:"text"`
	SourceNoteID string `json:"source_note_id"`
	Type         string `json:"type"`
}

type ScribedNote struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Summary    string    `json:"summary"`
	Timestamp  string    `json:"timestamp"`
	AuthorRole rbac.Role `json:"author_role"`
}

type GlanceView struct {
	Actions            []store.Action  `json:"actions"`
	KeySignals         []KeySignal     `json:"key_signals"`
	ClinicianConfirmed []ConfirmedItem `json:"clinician_confirmed"`
	AIScribedNotes     []ScribedNote   `json:"ai_scribed_notes"`
}

func emptyGlance() GlanceView {
	return GlanceView{
		Actions:            []store.Action{},
		KeySignals:         []KeySignal{},
		ClinicianConfirmed: []ConfirmedItem{},
		AIScribedNotes:     []ScribedNote{},
	}
}

// DecayWeight scores recency in [0,1]: 1.0 at age zero, ~0.5 at two days,
// ~0.16 at ten. Unparsable timestamps fail open to full weight.
func DecayWeight(timestamp string, now time.Time) float64 {
	t, err := time.ParseInLocation(store.TimeLayout, timestamp, time.Local)
	if err != nil {
		return 1.0
	}
	days := math.Floor(now.Sub(t).Hours() / 24)
	weight := 1.0 / (1.0 + 0.5*days)
	return math.Max(0.0, math.Min(1.0, weight))
}

// decayExempt highlights survive regardless of age: critical findings and
// spans a human explicitly marked.
func decayExempt(kind string) bool {
	return kind == "critical" || kind == "user-highlight"
}

// Glance aggregates key signals, open actions, clinician confirmations and
// AI-scribed summaries across every note the role may view. Patients get a
// fully suppressed (empty) view.
func (s *Service) Glance(role rbac.Role) GlanceView {
	if role == rbac.RolePatient {
		return emptyGlance()
	}

	view := emptyGlance()
	includeConfirmed := role == rbac.RoleClinician || role == rbac.RoleAdmin
	now := time.Now()

	for _, note := range s.store.All() {
		visible := canView(role, &note)

		if visible && strings.HasPrefix(note.Type, "ai_") {
			view.AIScribedNotes = append(view.AIScribedNotes, ScribedNote{
				ID:         note.ID,
				Type:       humanizeType(note.Type),
				Summary:    truncate(note.Content, 100),
				Timestamp:  note.Timestamp,
				AuthorRole: note.AuthorRole,
			})
		}

		if visible {
			weight := DecayWeight(note.Timestamp, now)
			for _, h := range note.Highlights {
				if weight < decayCutoff && !decayExempt(h.Kind) {
					continue
				}
				view.KeySignals = append(view.KeySignals, KeySignal{
					Highlight:    h,
					SourceNoteID: note.ID,
					Weight:       weight,
					Timestamp:    note.Timestamp,
				})
			}
		}

		// Assigned actions surface even when the owning note is hidden from
		// the assignee. Resolved actions never appear.
		for _, action := range note.Actions {
			open := action.Status == store.ActionPending || action.Status == store.ActionUnresolved
			if !open {
				continue
			}
			if role == rbac.RoleAdmin || action.AssignedToRole == role {
				view.Actions = append(view.Actions, action)
			}
		}

		if includeConfirmed && visible {
			if note.AuthorRole == rbac.RoleClinician {
				lower := strings.ToLower(note.Content)
				isPlan := strings.Contains(lower, "plan") || strings.Contains(lower, "decision")
				if isPlan || note.Type == "clinician_note" {
					view.ClinicianConfirmed = append(view.ClinicianConfirmed, ConfirmedItem{
						ID:           note.ID,
						Text:         "Decision: " + truncate(note.Content, 50),
						SourceNoteID: note.ID,
						Type:         "decision",
					})
				}
			}
			// Content whose earliest recorded version was AI-authored is
			// flagged as modified AI output.
			if len(note.History) > 0 && note.History[0].AuthorRole == rbac.RoleAI {
				view.ClinicianConfirmed = append(view.ClinicianConfirmed, ConfirmedItem{
					ID:           note.ID + "_mod",
					Text:         "Modified AI Consult",
					SourceNoteID: note.ID,
					Type:         "modification",
				})
			}
		}
	}

	sort.SliceStable(view.KeySignals, func(i, j int) bool {
		if view.KeySignals[i].Weight != view.KeySignals[j].Weight {
			return view.KeySignals[i].Weight > view.KeySignals[j].Weight
		}
		return view.KeySignals[i].Timestamp > view.KeySignals[j].Timestamp
	})

	return view
}

// humanizeType turns "ai_doctor_consult_summary" into "Doctor Consult Summary".
func humanizeType(noteType string) string {
	stripped := strings.TrimPrefix(noteType, "ai_")
	words := strings.Split(strings.ReplaceAll(stripped, "_", " "), " ")
	for i, word := range words {
		if word == "" {
			continue
		}
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}

// truncate limits text to max runes, never splitting a multi-byte
// character.
func truncate(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "..."
}
