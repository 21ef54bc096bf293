package rbac

import "testing"

func TestCan(t *testing.T) {
	cases := []struct {
		name   string
		role   Role
		action Action
		allow  bool
	}{
		{name: "viewer render", role: RoleViewer, action: ActionRender, allow: true},
		{name: "viewer edit values", role: RoleViewer, action: ActionEditValues, allow: false},
		{name: "viewer import", role: RoleViewer, action: ActionImport, allow: false},
		{name: "editor edit values", role: RoleEditor, action: ActionEditValues, allow: true},
		{name: "editor import", role: RoleEditor, action: ActionImport, allow: false},
		{name: "admin import", role: RoleAdmin, action: ActionImport, allow: true},
		{name: "unknown role", role: Role("guest"), action: ActionRender, allow: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Can(tc.role, tc.action); got != tc.allow {
				t.Fatalf("Can(%q, %q) = %v, want %v", tc.role, tc.action, got, tc.allow)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	if got := Normalize("admin"); got != RoleAdmin {
		t.Fatalf("Normalize(admin) = %q", got)
	}
	if got := Normalize("commenter"); got != RoleViewer {
		t.Fatalf("Normalize(commenter) = %q, want viewer", got)
	}
	if got := Normalize(""); got != RoleViewer {
		t.Fatalf("Normalize(\"\") = %q, want viewer", got)
	}
}
