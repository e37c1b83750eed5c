package session

import "testing"

func TestEvaluate(t *testing.T) {
	student := User{ID: 1, Email: "awe@test.cd", Role: RoleStudent}
	teacher := User{ID: 2, Email: "mwalimu@test.cd", Role: RoleTeacher}
	admin := User{ID: 3, Email: "admin@test.cd", Role: RoleAdmin}

	tests := []struct {
		name     string
		loading  bool
		usr      User
		allowed  []Role
		want     Decision
		wantPath string
	}{
		{name: "loading trumps everything", loading: true, usr: student, allowed: []Role{RoleStudent}, want: ShowLoading},
		{name: "loading with no user", loading: true, want: ShowLoading},
		{name: "no user", allowed: []Role{RoleStudent}, want: RedirectLogin, wantPath: "/login"},
		{name: "no user, open role set", want: RedirectLogin, wantPath: "/login"},
		{name: "allowed role", usr: student, allowed: []Role{RoleStudent}, want: Render},
		{name: "any authenticated role", usr: teacher, want: Render},
		{name: "disallowed role reroutes home", usr: student, allowed: []Role{RoleTeacher}, want: RedirectDashboard, wantPath: "/student/dashboard"},
		{name: "teacher on admin screen", usr: teacher, allowed: []Role{RoleAdmin}, want: RedirectDashboard, wantPath: "/teacher/dashboard"},
		{name: "multi-role set", usr: admin, allowed: []Role{RoleTeacher, RoleAdmin}, want: Render},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict := Evaluate(tt.loading, tt.usr, tt.allowed...)
			if verdict.Decision != tt.want {
				t.Errorf("Evaluate() decision = %v, want %v", verdict.Decision, tt.want)
			}
			if verdict.Path != tt.wantPath {
				t.Errorf("Evaluate() path = %q, want %q", verdict.Path, tt.wantPath)
			}
		})
	}
}
