package rbac

import "testing"

func TestTemplateForTag(t *testing.T) {
	tests := []struct {
		name    string
		tag     string
		patient bool
		staff   bool
	}{
		{name: "patient tag", tag: "patient", patient: true, staff: true},
		{name: "staff tag", tag: "staff", patient: false, staff: true},
		{name: "clinician tag", tag: "clinician", patient: false, staff: false},
		{name: "unknown tag falls back to staff visible", tag: "wizard", patient: false, staff: true},
		{name: "empty tag falls back to staff visible", tag: "", patient: false, staff: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			scope := TemplateForTag(tc.tag)
			if scope[RolePatient] != tc.patient {
				t.Errorf("patient visibility: expected %v, got %v", tc.patient, scope[RolePatient])
			}
			if scope[RoleStaff] != tc.staff {
				t.Errorf("staff visibility: expected %v, got %v", tc.staff, scope[RoleStaff])
			}
			if !scope[RoleAdmin] {
				t.Errorf("admin must be visible in every template")
			}
		})
	}
}

func TestInferFromType(t *testing.T) {
	tests := []struct {
		noteType string
		patient  bool
		staff    bool
	}{
		{noteType: "ai_doctor_consult_summary", patient: false, staff: false},
		{noteType: "clinician_note", patient: false, staff: false},
		{noteType: "ai_nurse_consult_summary", patient: false, staff: true},
		{noteType: "staff_note", patient: false, staff: true},
		{noteType: "ai_patient_session_summary", patient: true, staff: true},
		{noteType: "patient_input", patient: true, staff: true},
		{noteType: "something_else", patient: false, staff: true},
		{noteType: "", patient: false, staff: true},
	}

	for _, tc := range tests {
		t.Run(tc.noteType, func(t *testing.T) {
			scope := InferFromType(tc.noteType)
			if scope[RolePatient] != tc.patient || scope[RoleStaff] != tc.staff {
				t.Fatalf("scope for %q: got patient=%v staff=%v", tc.noteType, scope[RolePatient], scope[RoleStaff])
			}
		})
	}
}

func TestTemplatesReturnFreshCopies(t *testing.T) {
	scope := StaffVisible()
	scope[RolePatient] = true
	if StaffVisible()[RolePatient] {
		t.Fatal("mutating a returned template leaked into subsequent calls")
	}
}

func TestCanViewAdminAlwaysTrue(t *testing.T) {
	if !CanView(RoleAdmin, "ai_doctor_consult_summary", ScopeMap{}) {
		t.Fatal("admin must view everything")
	}
}

func TestCanViewPatientHardException(t *testing.T) {
	// An explicit patient:true scope does not override the hard constraint.
	scope := ScopeMap{RolePatient: true, RoleStaff: true, RoleClinician: true, RoleAdmin: true}
	if CanView(RolePatient, "ai_nurse_consult_summary", scope) {
		t.Fatal("patient must never view a nurse consult summary")
	}
	if !CanView(RoleStaff, "ai_nurse_consult_summary", scope) {
		t.Fatal("the exception applies to patients only")
	}
}

func TestCanViewMissingRoleDefaultsFalse(t *testing.T) {
	if CanView(RoleStaff, "staff_note", ScopeMap{RoleClinician: true}) {
		t.Fatal("a role absent from the scope map must not see the note")
	}
}

func TestCanEditMatrix(t *testing.T) {
	tests := []struct {
		role    Role
		author  Role
		allowed bool
	}{
		{RoleAdmin, RolePatient, true},
		{RoleAdmin, RoleAI, true},
		{RoleClinician, RoleClinician, true},
		{RoleClinician, RoleAI, true},
		{RoleClinician, RoleSystem, true},
		{RoleClinician, RoleStaff, false},
		{RoleClinician, RolePatient, false},
		{RoleStaff, RoleStaff, true},
		{RoleStaff, RoleClinician, false},
		{RolePatient, RolePatient, true},
		{RolePatient, RoleStaff, false},
		{Role("intruder"), RoleStaff, false},
	}

	for _, tc := range tests {
		if got := CanEdit(tc.role, tc.author); got != tc.allowed {
			t.Errorf("CanEdit(%s, %s): expected %v, got %v", tc.role, tc.author, tc.allowed, got)
		}
	}
}

func TestNormalize(t *testing.T) {
	if Normalize("staff") != RoleStaff {
		t.Fatal("known roles pass through")
	}
	if Normalize("") != RoleClinician {
		t.Fatal("missing role defaults to clinician")
	}
	// An unknown role must never be promoted: it passes through and earns
	// nothing downstream.
	wizard := Normalize("wizard")
	if wizard == RoleClinician {
		t.Fatal("unknown roles must not coerce to clinician")
	}
	if CanView(wizard, "clinician_note", ClinicianOnly()) {
		t.Fatal("unknown roles must resolve to no visibility")
	}
	if CanEdit(wizard, RoleClinician) || CanEdit(wizard, RoleAI) {
		t.Fatal("unknown roles must resolve to no edit rights")
	}
}
