package rbac

type Role string

const (
	RolePatient   Role = "patient"
	RoleStaff     Role = "staff"
	RoleClinician Role = "clinician"
	RoleAdmin     Role = "admin"
	// Author-only roles. They never issue requests but appear as note authors.
	RoleAI     Role = "ai"
	RoleSystem Role = "system"
)

// ScopeMap maps a requesting role to whether a note is visible to it.
type ScopeMap map[Role]bool

// The three standard visibility templates. Returned as fresh copies so a
// caller mutating its map never corrupts the template.
func PatientVisible() ScopeMap {
	return ScopeMap{RolePatient: true, RoleStaff: true, RoleClinician: true, RoleAdmin: true}
}

func StaffVisible() ScopeMap {
	return ScopeMap{RolePatient: false, RoleStaff: true, RoleClinician: true, RoleAdmin: true}
}

func ClinicianOnly() ScopeMap {
	return ScopeMap{RolePatient: false, RoleStaff: false, RoleClinician: true, RoleAdmin: true}
}

// TemplateForTag maps a legacy single-role scope string to its template.
// Unrecognized tags fall back to staff-visible.
func TemplateForTag(tag string) ScopeMap {
	switch tag {
	case "patient":
		return PatientVisible()
	case "staff":
		return StaffVisible()
	case "clinician":
		return ClinicianOnly()
	default:
		return StaffVisible()
	}
}

// InferFromType derives a scope for notes that carry no scope at all,
// keyed on the note's classification tag.
func InferFromType(noteType string) ScopeMap {
	switch noteType {
	case "ai_doctor_consult_summary", "clinician_note":
		return ClinicianOnly()
	case "ai_nurse_consult_summary", "staff_note":
		return StaffVisible()
	case "ai_patient_session_summary", "patient_input":
		return PatientVisible()
	default:
		return StaffVisible()
	}
}

// CanView reports whether role may read a note of the given type under the
// resolved scope. The patient exclusion for nurse consult summaries is a
// hard constraint and overrides any explicit scope.
func CanView(role Role, noteType string, scope ScopeMap) bool {
	if role == RoleAdmin {
		return true
	}
	if role == RolePatient && noteType == "ai_nurse_consult_summary" {
		return false
	}
	return scope[role]
}

// CanEdit tracks authorship, not visibility: a role may be able to view a
// note it cannot edit.
func CanEdit(role, author Role) bool {
	switch role {
	case RoleAdmin:
		return true
	case RoleClinician:
		return author == RoleClinician || author == RoleAI || author == RoleSystem
	case RoleStaff:
		return author == RoleStaff
	case RolePatient:
		return author == RolePatient
	default:
		return false
	}
}

// Requestor reports whether role is one a request may carry.
func Requestor(role Role) bool {
	switch role {
	case RolePatient, RoleStaff, RoleClinician, RoleAdmin:
		return true
	default:
		return false
	}
}

// Author reports whether role may appear as a note author.
func Author(role Role) bool {
	return Requestor(role) || role == RoleAI || role == RoleSystem
}

// Normalize applies the clinician default for a missing role. Unknown
// non-empty roles pass through unchanged: they are absent from every scope
// map and match no CanEdit rule, so they resolve to no visibility and no
// edit rights.
func Normalize(role string) Role {
	if role == "" {
		return RoleClinician
	}
	return Role(role)
}
