package app

import (
	"fmt"

	"careline/api/internal/rbac"
	"careline/api/internal/store"
	"careline/api/internal/util"
)

type ResolveActionInput struct {
	Role           string `json:"role"`
	ResolutionType string `json:"resolution_type"`
	Comment        string `json:"comment"`
	NewActionTitle string `json:"new_action_title"`
}

// ResolveAction marks an action resolved and logs it as a system note at
// the head of the timeline. With resolution_type "forward" it additionally
// opens a fresh action for the opposite role carrying the original's
// provenance. The scan and every write happen inside one store-wide
// exclusive section. Resolution is terminal; there is no reopening.
func (s *Service) ResolveAction(actionID string, input ResolveActionInput) (store.Action, error) {
	role := rbac.Role(input.Role)

	var (
		resolved  store.Action
		auditNote store.Note
	)
	err := s.store.Update(func(tx *store.Tx) error {
		// Action ids are unique across the whole store, so the first match
		// is the only match.
		var (
			action     *store.Action
			owningNote *store.Note
		)
		for _, note := range tx.Notes() {
			for i := range note.Actions {
				if note.Actions[i].ID == actionID {
					action = &note.Actions[i]
					owningNote = note
					break
				}
			}
			if action != nil {
				break
			}
		}
		if action == nil {
			return errNotFound("Action not found")
		}

		if role != rbac.RoleAdmin && action.AssignedToRole != role {
			return errUnauthorized("Action not assigned to you")
		}

		action.Status = store.ActionResolved
		action.ResolvedAt = store.Now()
		action.ResolutionComment = input.Comment

		logContent := "✅ Action Resolved: " + action.Title
		if input.Comment != "" {
			logContent += "\nNote: " + input.Comment
		}

		if input.ResolutionType == "forward" && input.NewActionTitle != "" {
			newAssignee := rbac.RoleClinician
			if role == rbac.RoleClinician {
				newAssignee = rbac.RoleStaff
			}
			forwarded := store.Action{
				ID:             util.NewID(),
				Title:          input.NewActionTitle,
				Status:         store.ActionUnresolved,
				CreatedByRole:  role,
				AssignedToRole: newAssignee,
				// Provenance always points at the originating note, never
				// at the forwarding action.
				ProvenanceNoteID: action.ProvenanceNoteID,
				CreatedAt:        store.Now(),
			}
			owningNote.Actions = append(owningNote.Actions, forwarded)
			logContent += fmt.Sprintf("\n➡️ Forwarded to %s: %s", newAssignee, input.NewActionTitle)
		}

		auditNote = store.Note{
			ID:         util.NewID(),
			Content:    logContent,
			AuthorRole: rbac.RoleSystem,
			Type:       "system_log",
			Timestamp:  store.Now(),
			Version:    1,
			History:    []store.Note{},
			Highlights: []store.Highlight{},
			Actions:    []store.Action{},
		}
		tx.Insert(auditNote.Clone())

		resolved = *action
		return nil
	})
	if err != nil {
		return store.Action{}, err
	}

	s.search.IndexNote(noteRecord(&auditNote))
	return resolved, nil
}
