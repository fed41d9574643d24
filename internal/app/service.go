package app

import (
	"context"
	"math/rand"
	"sort"
	"strings"

	"careline/api/internal/config"
	"careline/api/internal/llm"
	"careline/api/internal/rbac"
	"careline/api/internal/search"
	"careline/api/internal/store"
	"careline/api/internal/util"
)

// Service implements the timeline engine operations. Every operation is a
// single atomic store interaction; the only slow collaborator (the
// suggestion generator) always runs outside the store lock.
type Service struct {
	cfg     config.Config
	store   *store.Memory
	suggest *llm.Service
	search  *search.Service
}

func New(cfg config.Config, records *store.Memory, suggest *llm.Service, searchService *search.Service) *Service {
	return &Service{
		cfg:     cfg,
		store:   records,
		suggest: suggest,
		search:  searchService,
	}
}

// Store exposes the record store for bootstrap wiring.
func (s *Service) Store() *store.Memory {
	return s.store
}

// Timeline returns every note the role may view, most recent first.
func (s *Service) Timeline(role rbac.Role) []store.Note {
	visible := []store.Note{}
	for _, note := range s.store.All() {
		if canView(role, &note) {
			visible = append(visible, note)
		}
	}
	sort.SliceStable(visible, func(i, j int) bool {
		return visible[i].Timestamp > visible[j].Timestamp
	})
	return visible
}

type CreateNoteInput struct {
	AuthorRole    string            `json:"author_role"`
	Content       string            `json:"content"`
	Type          string            `json:"type"`
	Highlights    []store.Highlight `json:"highlights"`
	ManualActions []string          `json:"manual_actions"`
	SimulateAI    bool              `json:"simulate_ai"`
}

// Canned visits for the scribe simulation when no generator is configured.
var scribeScenarios = []string{
	"Patient presents with persistent cough for 2 weeks. Reports productive sputum, green in color. No fever, but mild fatigue. Chest clear on auscultation. Vitals: BP 120/80, HR 78, Temp 37.1C. Recommend chest X-ray and course of antibiotics.",
	"Patient complains of lower back pain radiating to right leg. Pain scale 7/10. History of heavy lifting 2 days ago. SLR positive on right at 45 degrees. Reflexes intact. Suspect lumbar disc herniation. Prescribed NSAIDs and muscle relaxants. Refer to PT.",
	"Follow-up for hypertension. BP 135/85 today. Patient reports adherence to medication. No headaches or visual changes. Labs show stable kidney function. Continue current management. Recheck in 3 months.",
	"Child, 5yo, brought in for rash on arms. Itchy, red papules. Started yesterday after playing in the park. Suspect contact dermatitis vs poison ivy. Hydrocortisone cream advised. Antihistamine for itching.",
	"Diabetic check-up. Fasting glucose 145 mg/dL. A1c 7.2%. Foot exam normal. Monofilament sensation intact. Discussed diet modifications. Increase Metformin dosage to 1000mg BID.",
}

// CreateNote validates the payload, optionally generates scribe content,
// runs the suggestion pass, and commits the note at the head of the
// timeline.
func (s *Service) CreateNote(ctx context.Context, input CreateNoteInput) (store.Note, error) {
	authorRole := rbac.Role(input.AuthorRole)
	if input.AuthorRole == "" {
		authorRole = rbac.RoleStaff
	}
	if !rbac.Author(authorRole) {
		return store.Note{}, errValidation("Unrecognized author role", map[string]string{"author_role": input.AuthorRole})
	}

	noteType := input.Type
	if noteType == "" {
		noteType = "staff_note"
	}
	if authorRole == rbac.RolePatient && noteType != "patient_input" {
		return store.Note{}, errUnauthorized("Unauthorized type for patient")
	}

	content := input.Content
	if input.SimulateAI && content == "" && authorRole == rbac.RoleAI {
		content = s.scribeContent(ctx)
	}

	note := store.Note{
		ID:         util.NewID(),
		Content:    content,
		AuthorRole: authorRole,
		Type:       noteType,
		Timestamp:  store.Now(),
		Version:    1,
		History:    []store.Note{},
		Highlights: append([]store.Highlight{}, input.Highlights...),
		Actions:    []store.Action{},
	}
	note.Visibility = store.ExplicitScope(note.ResolvedScope())

	// Suggestion pass. Patient-authored content never leaves the process.
	if authorRole != rbac.RolePatient {
		s.mergeSuggestions(ctx, &note)
	}

	for _, title := range input.ManualActions {
		note.Actions = append(note.Actions, store.Action{
			ID:               util.NewID(),
			Title:            title,
			Status:           store.ActionUnresolved,
			CreatedByRole:    authorRole,
			AssignedToRole:   swapAssignee(authorRole),
			ProvenanceNoteID: note.ID,
			CreatedAt:        store.Now(),
		})
	}

	s.store.Insert(note.Clone())
	s.search.IndexNote(noteRecord(&note))
	return note, nil
}

// AddHighlight attaches a user highlight to a note.
func (s *Service) AddHighlight(noteID, text string, start, end int) (store.Note, error) {
	var updated store.Note
	err := s.store.Update(func(tx *store.Tx) error {
		note, ok := tx.FindByID(noteID)
		if !ok {
			return errNotFound("Note not found")
		}
		note.Highlights = append(note.Highlights, store.Highlight{
			ID:    util.NewID(),
			Text:  text,
			Kind:  "user-highlight",
			Start: start,
			End:   end,
		})
		updated = note.Clone()
		return nil
	})
	return updated, err
}

// RemoveHighlight deletes a highlight by id. Removing an unknown highlight
// id is a no-op, matching the legacy behavior.
func (s *Service) RemoveHighlight(noteID, highlightID string) (store.Note, error) {
	var updated store.Note
	err := s.store.Update(func(tx *store.Tx) error {
		note, ok := tx.FindByID(noteID)
		if !ok {
			return errNotFound("Note not found")
		}
		kept := note.Highlights[:0]
		for _, h := range note.Highlights {
			if h.ID != highlightID {
				kept = append(kept, h)
			}
		}
		note.Highlights = kept
		updated = note.Clone()
		return nil
	})
	return updated, err
}

// EndConsult closes a consult session: an AI-scribed summary note typed and
// scoped for the requesting role is appended to the timeline.
func (s *Service) EndConsult(ctx context.Context, role rbac.Role, sourceNoteID string) (store.Note, error) {
	var (
		noteType string
		scope    rbac.ScopeMap
		audience llm.Audience
	)
	switch role {
	case rbac.RoleClinician:
		noteType, scope, audience = "ai_doctor_consult_summary", rbac.ClinicianOnly(), llm.AudienceDoctor
	case rbac.RoleStaff:
		noteType, scope, audience = "ai_nurse_consult_summary", rbac.StaffVisible(), llm.AudienceNurse
	case rbac.RolePatient:
		noteType, scope, audience = "ai_patient_session_summary", rbac.PatientVisible(), llm.AudiencePatient
	default:
		return store.Note{}, errValidation("Invalid role for ending consult", nil)
	}

	// Snapshot the recent transcript before calling out; the generator runs
	// with no lock held.
	recent := s.store.All()
	if len(recent) > 10 {
		recent = recent[:10]
	}
	transcript := make([]llm.ContextNote, 0, len(recent))
	for i := len(recent) - 1; i >= 0; i-- { // chronological order
		transcript = append(transcript, llm.ContextNote{
			Timestamp:  recent[i].Timestamp,
			AuthorRole: string(recent[i].AuthorRole),
			Content:    recent[i].Content,
		})
	}

	content, err := s.suggest.Summarize(ctx, audience, transcript)
	if err != nil {
		content = fallbackSummary(noteType)
	}

	note := store.Note{
		ID:         util.NewID(),
		Content:    content,
		AuthorRole: rbac.RoleSystem,
		Type:       noteType,
		Timestamp:  store.Now(),
		Version:    1,
		History:    []store.Note{},
		Highlights: []store.Highlight{},
		Actions:    []store.Action{},
		Visibility: store.ExplicitScope(scope),
		Provenance: sourceNoteID,
	}

	// Patient summaries skip the suggestion pass so clinical reasoning never
	// leaks into a patient-visible record.
	if role != rbac.RolePatient {
		s.mergeSuggestions(ctx, &note)
	}

	s.store.Insert(note.Clone())
	s.search.IndexNote(noteRecord(&note))
	return note, nil
}

// SearchNotes runs a timeline search and filters the hits through the
// requester's visibility before exposure.
func (s *Service) SearchNotes(role rbac.Role, query string, limit int) search.Response {
	resp := s.search.Search(search.Query{Text: query, Limit: limit})
	visible := make([]search.Result, 0, len(resp.Results))
	for _, result := range resp.Results {
		note, ok := s.store.FindByID(result.ID)
		if !ok || !canView(role, &note) {
			continue
		}
		visible = append(visible, result)
	}
	resp.Results = visible
	resp.Total = len(visible)
	return resp
}

// Reset clears all engine state. Test and demo tooling only.
func (s *Service) Reset() {
	s.store.Reset()
	s.search.Clear()
}

// mergeSuggestions runs the generator over the note and merges the
// candidates it can validate. A highlight candidate whose text does not
// occur verbatim in the note content is silently dropped.
func (s *Service) mergeSuggestions(ctx context.Context, note *store.Note) {
	if !s.suggest.Enabled() {
		return
	}

	existing := s.store.All()
	contextNotes := make([]llm.ContextNote, 0, len(existing))
	for _, prior := range existing {
		contextNotes = append(contextNotes, llm.ContextNote{
			Timestamp:  prior.Timestamp,
			AuthorRole: string(prior.AuthorRole),
			Content:    prior.Content,
		})
	}

	suggestions := s.suggest.Analyze(ctx, note.Content, contextNotes, userHighlightExamples(existing))

	for _, h := range suggestions.Highlights {
		start := strings.Index(note.Content, h.Text)
		if start < 0 {
			continue
		}
		kind := h.Kind
		if kind == "" {
			kind = "risk"
		}
		reason := h.Reason
		if reason == "" {
			reason = "AI detected"
		}
		note.Highlights = append(note.Highlights, store.Highlight{
			ID:     util.NewID(),
			Text:   h.Text,
			Kind:   kind,
			Reason: reason,
			Start:  start,
			End:    start + len(h.Text),
		})
	}

	for _, a := range suggestions.Actions {
		title := a.Description
		if title == "" {
			title = a.Title
		}
		if title == "" {
			title = "Untitled Action"
		}
		assignee := rbac.Role(a.Assignee)
		if !rbac.Requestor(assignee) {
			assignee = rbac.RoleClinician // AI actions default to clinician review
		}
		note.Actions = append(note.Actions, store.Action{
			ID:               util.NewID(),
			Title:            title,
			Status:           store.ActionPending,
			CreatedByRole:    rbac.RoleAI,
			AssignedToRole:   assignee,
			ProvenanceNoteID: note.ID,
			CreatedAt:        store.Now(),
			Tags:             a.Tags,
		})
	}
}

func (s *Service) scribeContent(ctx context.Context) string {
	if generated, err := s.suggest.Scenario(ctx); err == nil && generated != "" {
		return generated
	}
	return scribeScenarios[rand.Intn(len(scribeScenarios))]
}

// userHighlightExamples collects previously user-confirmed spans for the
// generator's few-shot examples.
func userHighlightExamples(notes []store.Note) []string {
	var examples []string
	for _, note := range notes {
		for _, h := range note.Highlights {
			if h.Kind == "user-highlight" {
				examples = append(examples, h.Text)
			}
		}
	}
	return examples
}

func canView(role rbac.Role, note *store.Note) bool {
	return rbac.CanView(role, note.Type, note.ResolvedScope())
}

// swapAssignee implements the default assignment heuristic: work created by
// one side of the desk lands on the other.
func swapAssignee(creator rbac.Role) rbac.Role {
	switch creator {
	case rbac.RoleClinician:
		return rbac.RoleStaff
	case rbac.RoleStaff:
		return rbac.RoleClinician
	default:
		return rbac.RoleStaff
	}
}

func noteRecord(note *store.Note) search.NoteRecord {
	return search.NoteRecord{
		ID:         note.ID,
		Content:    note.Content,
		Type:       note.Type,
		AuthorRole: string(note.AuthorRole),
		Timestamp:  note.Timestamp,
	}
}

func fallbackSummary(noteType string) string {
	switch noteType {
	case "ai_doctor_consult_summary":
		return "Assessment: Acute Bronchitis. \nPlan: Azithromycin 500mg PO x 3 days. Albuterol inhaler PRN. \nFollow-up: If symptoms worsen or fever persists > 48hrs."
	case "ai_nurse_consult_summary":
		return "Patient educated on medication adherence and hydration. Vitals stable. Patient expressed understanding of discharge instructions."
	default:
		return "Session Summary: Patient reported symptoms of cough and fatigue. Vitals recorded. Doctor consultation completed with prescription provided."
	}
}
