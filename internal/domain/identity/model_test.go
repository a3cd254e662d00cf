package identity

import "testing"

func TestResolveRole_Precedence(t *testing.T) {
	tests := []struct {
		name        string
		isAdmin     bool
		memberships []Role
		want        Role
	}{
		{"doctor only", false, []Role{RoleDoctor}, RoleDoctor},
		{"doctor beats staff", false, []Role{RoleStaff, RoleDoctor}, RoleDoctor},
		{"doctor beats everything", false, []Role{RolePatient, RoleInventoryHead, RoleStaff, RoleDoctor}, RoleDoctor},
		{"staff beats inventory", false, []Role{RoleInventoryHead, RoleStaff}, RoleStaff},
		{"staff beats patient", false, []Role{RolePatient, RoleStaff}, RoleStaff},
		{"inventory beats patient", false, []Role{RolePatient, RoleInventoryHead}, RoleInventoryHead},
		{"patient only", false, []Role{RolePatient}, RolePatient},
		{"no memberships", false, nil, RoleDefault},
		{"unknown membership", false, []Role{"janitor"}, RoleDefault},
		{"admin flag wins over memberships", true, []Role{RoleDoctor}, RoleAdmin},
		{"admin with no memberships", true, nil, RoleAdmin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveRole(tt.isAdmin, tt.memberships)
			if got != tt.want {
				t.Errorf("ResolveRole(%v, %v) = %s, want %s", tt.isAdmin, tt.memberships, got, tt.want)
			}
		})
	}
}

func TestResolveRole_Deterministic(t *testing.T) {
	memberships := []Role{RoleStaff, RoleDoctor, RolePatient}
	first := ResolveRole(false, memberships)
	for i := 0; i < 10; i++ {
		if got := ResolveRole(false, memberships); got != first {
			t.Fatalf("resolution changed between calls: %s then %s", first, got)
		}
	}
}

func TestStaff_FullName(t *testing.T) {
	s := &Staff{FirstName: "Jane", LastName: "Doe"}
	if got := s.FullName(); got != "Jane Doe" {
		t.Errorf("expected 'Jane Doe', got %q", got)
	}
}
