package authz

import "testing"

func TestParseRole(t *testing.T) {
	cases := []struct {
		in   string
		want Role
		ok   bool
	}{
		{"admin", RoleAdmin, true},
		{"HOD", RoleHOD, true},
		{" staff ", RoleStaff, true},
		{"student", RoleStudent, true},
		{"principal", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := ParseRole(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Errorf("ParseRole(%q) = (%q, %v), want (%q, %v)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestCanManageRole(t *testing.T) {
	admin := Actor{Role: RoleAdmin}
	hod := Actor{Role: RoleHOD, Department: "cs"}
	staff := Actor{Role: RoleStaff}

	if !CanManageRole(admin, RoleAdmin) || !CanManageRole(admin, RoleStudent) {
		t.Error("admin should manage every role")
	}
	if CanManageRole(hod, RoleAdmin) || CanManageRole(hod, RoleHOD) {
		t.Error("hod must not manage admin or hod")
	}
	if !CanManageRole(hod, RoleStaff) || !CanManageRole(hod, RoleStudent) {
		t.Error("hod should manage staff and students")
	}
	if CanManageRole(staff, RoleStudent) {
		t.Error("staff must not manage anyone")
	}
}

func TestScienceHODIsReadOnly(t *testing.T) {
	sci := Actor{Role: RoleHOD, Department: DeptScience}

	if CanWriteStudents(sci, "cs") || CanWriteStudents(sci, DeptScience) {
		t.Error("science hod must never write students")
	}
	if !CanReadStudents(sci, "cs") || !CanReadStudents(sci, "me") {
		t.Error("science hod should read every department")
	}
	scope, ok := ReadScopeForStudents(sci)
	if !ok || !scope.All {
		t.Errorf("science hod scope = %+v, want all", scope)
	}
}

func TestHODScopedToOwnDepartment(t *testing.T) {
	hod := Actor{Role: RoleHOD, Department: "cs"}

	if !CanWriteStudents(hod, "cs") {
		t.Error("hod should write own department")
	}
	if CanWriteStudents(hod, "me") {
		t.Error("hod must not write other departments")
	}
	if !CanReadStudents(hod, "CS") {
		t.Error("department comparison should be case-insensitive")
	}
	scope, ok := ReadScopeForStudents(hod)
	if !ok || scope.All || scope.Department != "cs" {
		t.Errorf("scope = %+v, want department cs", scope)
	}
}

func TestStudentsAndStaffCannotTouchRoster(t *testing.T) {
	for _, r := range []Role{RoleStaff, RoleStudent} {
		a := Actor{Role: r, Department: "cs"}
		if CanWriteStudents(a, "cs") || CanReadStudents(a, "cs") {
			t.Errorf("%s must not access roster", r)
		}
		if _, ok := ReadScopeForStudents(a); ok {
			t.Errorf("%s should have no roster scope", r)
		}
	}
}

func TestCanManageSessions(t *testing.T) {
	if !CanManageSessions(Actor{Role: RoleStaff}) {
		t.Error("staff should manage sessions")
	}
	if CanManageSessions(Actor{Role: RoleStudent}) {
		t.Error("students must not manage sessions")
	}
}

func TestValidDepartment(t *testing.T) {
	for _, code := range []string{"cs", "EEE", "sc", ""} {
		if !ValidDepartment(code) {
			t.Errorf("ValidDepartment(%q) = false, want true", code)
		}
	}
	if ValidDepartment("xx") {
		t.Error("unknown code accepted")
	}
}
