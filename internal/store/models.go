package store

import (
	"bytes"
	"encoding/json"
	"time"

	"careline/api/internal/rbac"
)

// TimeLayout is the minute-resolution timestamp format used throughout the
// timeline wire format.
const TimeLayout = "2006-01-02 15:04"

// Now returns the current time in the timeline timestamp format.
func Now() string {
	return time.Now().Format(TimeLayout)
}

// Note is the atomic timeline record. Field names match the legacy wire
// format so existing data files load unchanged.
type Note struct {
	ID         string           `json:"id"`
	Content    string           `json:"content"`
	AuthorRole rbac.Role        `json:"author_role"`
	Type       string           `json:"type"`
	Timestamp  string           `json:"timestamp"`
	Version    int              `json:"version"`
	History    []Note           `json:"history"`
	Highlights []Highlight      `json:"highlights"`
	Actions    []Action         `json:"actions"`
	Visibility *VisibilityScope `json:"visibility_scope,omitempty"`
	LastEditor rbac.Role        `json:"last_editor,omitempty"`
	RevertedAt string           `json:"reverted_at,omitempty"`
	RevertedBy rbac.Role        `json:"reverted_by,omitempty"`
	Provenance string           `json:"provenance_pointer,omitempty"`
}

// Highlight marks a span of interest inside a note's content. Text must be
// a literal substring of the owning note's content at attachment time. The
// wire field for Kind is "type" for legacy compatibility.
type Highlight struct {
	ID     string `json:"id"`
	Text   string `json:"text"`
	Kind   string `json:"type"`
	Reason string `json:"reason,omitempty"`
	Start  int    `json:"start"`
	End    int    `json:"end"`
}

// Action statuses. Resolution is terminal; there is no reopening.
const (
	ActionPending    = "pending"
	ActionUnresolved = "unresolved"
	ActionResolved   = "resolved"
)

// Action is a task derived from or attached to a note. ProvenanceNoteID
// always points at the originating note, even across forwarding.
type Action struct {
	ID                string    `json:"id"`
	Title             string    `json:"title"`
	Status            string    `json:"status"`
	CreatedByRole     rbac.Role `json:"created_by_role"`
	AssignedToRole    rbac.Role `json:"assigned_to_role"`
	ProvenanceNoteID  string    `json:"provenance_note_id"`
	CreatedAt         string    `json:"created_at"`
	ResolvedAt        string    `json:"resolved_at,omitempty"`
	ResolutionComment string    `json:"resolution_comment,omitempty"`
	Tags              []string  `json:"tags,omitempty"`
}

// VisibilityScope is the tagged union behind the visibility_scope field:
// either an explicit per-role map (current format) or a single role string
// (legacy format). A nil *VisibilityScope means the field was absent and
// visibility is inferred from the note type. Resolution never rewrites the
// stored form.
type VisibilityScope struct {
	Roles  rbac.ScopeMap
	Legacy string
}

// ExplicitScope wraps an explicit per-role map.
func ExplicitScope(roles rbac.ScopeMap) *VisibilityScope {
	return &VisibilityScope{Roles: roles}
}

func (v *VisibilityScope) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if trimmed[0] == '{' {
		roles := make(rbac.ScopeMap)
		if err := json.Unmarshal(trimmed, &roles); err != nil {
			return err
		}
		v.Roles = roles
		return nil
	}
	// Anything else is treated as the legacy string form. Malformed values
	// must never crash resolution, so decode failures leave the zero value,
	// which resolves to the staff-visible fallback.
	var tag string
	if err := json.Unmarshal(trimmed, &tag); err == nil {
		v.Legacy = tag
	}
	return nil
}

func (v VisibilityScope) MarshalJSON() ([]byte, error) {
	if v.Roles != nil {
		return json.Marshal(v.Roles)
	}
	return json.Marshal(v.Legacy)
}

// ResolvedScope produces a definite per-role visibility map for the note
// regardless of how its scope was originally specified. Pure: the stored
// scope is never modified.
func (n *Note) ResolvedScope() rbac.ScopeMap {
	if n.Visibility != nil {
		if n.Visibility.Roles != nil {
			return n.Visibility.Roles
		}
		return rbac.TemplateForTag(n.Visibility.Legacy)
	}
	return rbac.InferFromType(n.Type)
}

// Snapshot captures the note's current state for the history stack. A
// snapshot's own history is always empty; editing never mutates a snapshot
// already captured.
func (n *Note) Snapshot() Note {
	snap := n.Clone()
	snap.History = nil
	return snap
}

// Clone deep-copies the note so readers never share mutable state with the
// store.
func (n *Note) Clone() Note {
	out := *n
	if n.History != nil {
		out.History = make([]Note, len(n.History))
		for i := range n.History {
			out.History[i] = n.History[i].Clone()
		}
	}
	if n.Highlights != nil {
		out.Highlights = append([]Highlight(nil), n.Highlights...)
	}
	if n.Actions != nil {
		out.Actions = make([]Action, len(n.Actions))
		for i, a := range n.Actions {
			out.Actions[i] = a
			if a.Tags != nil {
				out.Actions[i].Tags = append([]string(nil), a.Tags...)
			}
		}
	}
	if n.Visibility != nil {
		scope := VisibilityScope{Legacy: n.Visibility.Legacy}
		if n.Visibility.Roles != nil {
			scope.Roles = make(rbac.ScopeMap, len(n.Visibility.Roles))
			for role, visible := range n.Visibility.Roles {
				scope.Roles[role] = visible
			}
		}
		out.Visibility = &scope
	}
	return out
}
