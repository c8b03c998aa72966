package service

// RoutePolicy classifies a route for the navigation guard.
type RoutePolicy int

const (
	// PolicyProtected routes require an authenticated session.
	PolicyProtected RoutePolicy = iota
	// PolicyPublic routes are reachable by anyone.
	PolicyPublic
	// PolicyGuestOnly routes (login, signup) are only for unauthenticated
	// callers; authenticated ones are sent to the default view.
	PolicyGuestOnly
)

// Client-side redirect targets.
const (
	PathLogin     = "/login"
	PathDashboard = "/dashboard"
)

// GuardDecision is the outcome of a route check.
type GuardDecision struct {
	Allow      bool
	RedirectTo string
}

// DecideRoute gates one route transition. Unknown policies are treated as
// protected so the guard fails closed.
func DecideRoute(policy RoutePolicy, authenticated bool) GuardDecision {
	switch policy {
	case PolicyPublic:
		return GuardDecision{Allow: true}
	case PolicyGuestOnly:
		if authenticated {
			return GuardDecision{RedirectTo: PathDashboard}
		}
		return GuardDecision{Allow: true}
	default:
		if authenticated {
			return GuardDecision{Allow: true}
		}
		return GuardDecision{RedirectTo: PathLogin}
	}
}
