package session

// Guard gates the rendering of a screen based on session state and role. It is a
// pure function of (loading, user, allowed roles); the caller performs the
// redirect.

type Decision int

const (
	// ShowLoading: initialization is still pending, render a neutral placeholder;
	// no redirect decision may be made yet.
	ShowLoading Decision = iota
	// RedirectLogin: no user is present.
	RedirectLogin
	// RedirectDashboard: a user is present but their role is not allowed; they are
	// rerouted to their own dashboard, never shown a 403.
	RedirectDashboard
	// Render: the wrapped screen renders unchanged.
	Render
)

type Verdict struct {
	Decision Decision
	Path     string // redirect target, set for RedirectLogin and RedirectDashboard
}

// Evaluate decides whether a screen guarded by the given role set may render.
// An empty role set means "any authenticated role".
func Evaluate(loading bool, usr User, allowed ...Role) Verdict {
	if loading {
		return Verdict{Decision: ShowLoading}
	}
	if usr.IsZero() {
		return Verdict{Decision: RedirectLogin, Path: "/login"}
	}
	if len(allowed) > 0 && !hasRole(allowed, usr.Role) {
		return Verdict{Decision: RedirectDashboard, Path: usr.DashboardPath()}
	}
	return Verdict{Decision: Render}
}

func hasRole(roles []Role, role Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
