package app

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"careline/api/internal/rbac"
	"careline/api/internal/store"
)

func seedNote(t *testing.T, svc *Service, note store.Note) store.Note {
	t.Helper()
	if note.Version == 0 {
		note.Version = 1
	}
	if note.Timestamp == "" {
		note.Timestamp = store.Now()
	}
	svc.Store().Insert(note)
	return note
}

func TestGlancePatientIsFullyEmpty(t *testing.T) {
	svc := newTestService(t)
	mustCreate(t, svc, CreateNoteInput{AuthorRole: "patient", Content: "visible to everyone", Type: "patient_input"})
	mustCreate(t, svc, CreateNoteInput{AuthorRole: "staff", ManualActions: []string{"Task"}})

	view := svc.Glance(rbac.RolePatient)
	if view.Actions == nil || view.KeySignals == nil || view.ClinicianConfirmed == nil || view.AIScribedNotes == nil {
		t.Fatal("patient view must serialize as empty arrays, not null")
	}
	if len(view.Actions)+len(view.KeySignals)+len(view.ClinicianConfirmed)+len(view.AIScribedNotes) != 0 {
		t.Fatal("patient glance must be fully suppressed")
	}
}

func TestGlanceDecayFiltering(t *testing.T) {
	svc := newTestService(t)
	old := time.Now().AddDate(0, 0, -10).Add(-time.Hour).Format(store.TimeLayout)

	seedNote(t, svc, store.Note{
		ID:         "old-note",
		Content:    "Elevated troponin. Mild headache.",
		AuthorRole: rbac.RoleStaff,
		Type:       "staff_note",
		Timestamp:  old,
		Highlights: []store.Highlight{
			{ID: "h-risk", Text: "Mild headache", Kind: "risk"},
			{ID: "h-crit", Text: "Elevated troponin", Kind: "critical"},
			{ID: "h-user", Text: "troponin", Kind: "user-highlight"},
		},
	})
	seedNote(t, svc, store.Note{
		ID:         "fresh-note",
		Content:    "BP trending up.",
		AuthorRole: rbac.RoleStaff,
		Type:       "staff_note",
		Highlights: []store.Highlight{
			{ID: "h-fresh", Text: "BP trending up", Kind: "vital"},
		},
	})

	view := svc.Glance(rbac.RoleClinician)

	ids := make(map[string]KeySignal, len(view.KeySignals))
	for _, signal := range view.KeySignals {
		ids[signal.ID] = signal
	}
	if _, ok := ids["h-risk"]; ok {
		t.Fatal("stale ordinary highlight must decay out")
	}
	if _, ok := ids["h-crit"]; !ok {
		t.Fatal("critical highlights never decay out")
	}
	if _, ok := ids["h-user"]; !ok {
		t.Fatal("user highlights never decay out")
	}
	if _, ok := ids["h-fresh"]; !ok {
		t.Fatal("fresh highlights must appear")
	}

	// Heavier signals sort first.
	if view.KeySignals[0].ID != "h-fresh" {
		t.Fatalf("expected the full-weight signal first, got %s", view.KeySignals[0].ID)
	}
	for _, signal := range view.KeySignals {
		if signal.SourceNoteID == "" {
			t.Fatal("every signal must carry its source note")
		}
	}
}

func TestGlanceActionsByAssignee(t *testing.T) {
	svc := newTestService(t)
	clinNote := mustCreate(t, svc, CreateNoteInput{AuthorRole: "clinician", Content: "x", Type: "clinician_note", ManualActions: []string{"For staff"}})
	mustCreate(t, svc, CreateNoteInput{AuthorRole: "staff", Content: "y", ManualActions: []string{"For clinician"}})

	staffView := svc.Glance(rbac.RoleStaff)
	if len(staffView.Actions) != 1 || staffView.Actions[0].Title != "For staff" {
		t.Fatalf("staff must see only their assignments, got %+v", staffView.Actions)
	}

	// The owning clinician note is hidden from staff; the assignment still
	// surfaces.
	if len(svc.Timeline(rbac.RoleStaff)) != 1 {
		t.Fatal("precondition: the clinician note must be invisible to staff")
	}

	adminView := svc.Glance(rbac.RoleAdmin)
	if len(adminView.Actions) != 2 {
		t.Fatalf("admin sees every open action, got %d", len(adminView.Actions))
	}

	if _, err := svc.ResolveAction(clinNote.Actions[0].ID, ResolveActionInput{Role: "staff"}); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	adminView = svc.Glance(rbac.RoleAdmin)
	for _, action := range adminView.Actions {
		if action.Status == store.ActionResolved {
			t.Fatal("resolved actions never appear in the glance")
		}
	}
	if len(adminView.Actions) != 1 {
		t.Fatalf("expected 1 remaining open action, got %d", len(adminView.Actions))
	}
}

func TestGlanceClinicianConfirmed(t *testing.T) {
	svc := newTestService(t)
	mustCreate(t, svc, CreateNoteInput{AuthorRole: "clinician", Content: "Plan: start beta blocker", Type: "clinician_note"})
	aiNote := mustCreate(t, svc, CreateNoteInput{AuthorRole: "ai", Content: "AI draft", Type: "ai_doctor_consult_summary"})
	if _, err := svc.EditNote(aiNote.ID, rbac.RoleClinician, "Reviewed draft"); err != nil {
		t.Fatalf("edit: %v", err)
	}

	view := svc.Glance(rbac.RoleClinician)

	var decisions, modifications int
	for _, item := range view.ClinicianConfirmed {
		switch item.Type {
		case "decision":
			decisions++
			if !strings.HasPrefix(item.Text, "Decision: ") {
				t.Fatalf("decision text malformed: %q", item.Text)
			}
		case "modification":
			modifications++
			if item.ID != aiNote.ID+"_mod" || item.SourceNoteID != aiNote.ID {
				t.Fatalf("modification must reference the edited note: %+v", item)
			}
		}
	}
	if decisions != 1 || modifications != 1 {
		t.Fatalf("expected 1 decision and 1 modification, got %d/%d", decisions, modifications)
	}

	staffView := svc.Glance(rbac.RoleStaff)
	if len(staffView.ClinicianConfirmed) != 0 {
		t.Fatal("confirmed items are clinician and admin only")
	}
}

func TestGlanceScribedNotes(t *testing.T) {
	svc := newTestService(t)
	long := strings.Repeat("a", 150)
	seedNote(t, svc, store.Note{
		ID:         "scribed",
		Content:    long,
		AuthorRole: rbac.RoleAI,
		Type:       "ai_doctor_consult_summary",
	})

	view := svc.Glance(rbac.RoleClinician)
	if len(view.AIScribedNotes) != 1 {
		t.Fatalf("expected 1 scribed note, got %d", len(view.AIScribedNotes))
	}
	scribed := view.AIScribedNotes[0]
	if scribed.Type != "Doctor Consult Summary" {
		t.Fatalf("type must be humanized, got %q", scribed.Type)
	}
	if len(scribed.Summary) != 103 || !strings.HasSuffix(scribed.Summary, "...") {
		t.Fatalf("summary must truncate at 100 characters, got %d", len(scribed.Summary))
	}

	// Clinician-only scribed notes stay out of the staff view.
	staffView := svc.Glance(rbac.RoleStaff)
	if len(staffView.AIScribedNotes) != 0 {
		t.Fatal("staff must not see clinician-only scribed notes")
	}
}

func TestTruncateIsRuneSafe(t *testing.T) {
	in := strings.Repeat("é", 120)
	got := truncate(in, 100)
	if !utf8.ValidString(got) {
		t.Fatalf("truncation split a character: %q", got)
	}
	if utf8.RuneCountInString(got) != 103 {
		t.Fatalf("expected 100 runes plus ellipsis, got %d", utf8.RuneCountInString(got))
	}
	if !strings.HasSuffix(got, "é...") {
		t.Fatalf("unexpected tail: %q", got[len(got)-8:])
	}

	short := "café"
	if truncate(short, 100) != short {
		t.Fatal("short text passes through whole")
	}
}

func TestHumanizeType(t *testing.T) {
	tests := map[string]string{
		"ai_doctor_consult_summary": "Doctor Consult Summary",
		"ai_scribe_note":            "Scribe Note",
		"system_log":                "System Log",
	}
	for in, want := range tests {
		if got := humanizeType(in); got != want {
			t.Errorf("humanizeType(%q) = %q, want %q", in, got, want)
		}
	}
}
