package app

import (
	"careline/api/internal/rbac"
	"careline/api/internal/store"
)

// EditNote commits a new content version. The prior state is snapshotted
// into history before anything changes, so version, content and history
// always commit together: version == len(history)+1 holds on exit.
func (s *Service) EditNote(noteID string, role rbac.Role, content string) (store.Note, error) {
	var updated store.Note
	err := s.store.Update(func(tx *store.Tx) error {
		note, ok := tx.FindByID(noteID)
		if !ok {
			return errNotFound("Note not found")
		}
		if !rbac.CanEdit(role, note.AuthorRole) {
			return errUnauthorized("Unauthorized")
		}

		wasAI := note.AuthorRole == rbac.RoleAI

		note.History = append(note.History, note.Snapshot())
		note.Version++
		if content != "" {
			note.Content = content
		}
		// Edit time, not original creation time, is what the timeline shows.
		note.Timestamp = store.Now()

		// Ownership takeover: a clinician editing AI content owns it from
		// here on, which also changes who may edit it next.
		if role == rbac.RoleClinician && wasAI {
			note.AuthorRole = rbac.RoleClinician
			note.LastEditor = rbac.RoleClinician
		}

		updated = note.Clone()
		return nil
	})
	if err != nil {
		return store.Note{}, err
	}
	s.search.IndexNote(noteRecord(&updated))
	return updated, nil
}

// RevertNote restores the most recent history entry as the live state.
// The revert is non-destructive: the restored-from entry stays in history
// and the pre-revert state is archived alongside it, so history strictly
// grows and every intermediate state remains inspectable.
func (s *Service) RevertNote(noteID string, role rbac.Role) (store.Note, error) {
	var updated store.Note
	err := s.store.Update(func(tx *store.Tx) error {
		note, ok := tx.FindByID(noteID)
		if !ok {
			return errNotFound("Note not found")
		}
		if !rbac.CanEdit(role, note.AuthorRole) {
			return errUnauthorized("Unauthorized")
		}
		if len(note.History) == 0 {
			return errInvalidState("No history to revert to")
		}

		preRevert := note.Snapshot()
		target := note.History[len(note.History)-1]

		note.Version++
		note.Content = target.Content
		note.AuthorRole = target.AuthorRole
		note.RevertedAt = store.Now()
		note.RevertedBy = role
		note.History = append(note.History, preRevert)

		updated = note.Clone()
		return nil
	})
	if err != nil {
		return store.Note{}, err
	}
	s.search.IndexNote(noteRecord(&updated))
	return updated, nil
}
