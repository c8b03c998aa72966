package service

import "testing"

func TestDecideRoute(t *testing.T) {
	tests := []struct {
		name          string
		policy        RoutePolicy
		authenticated bool
		wantAllow     bool
		wantRedirect  string
	}{
		{"protected authenticated", PolicyProtected, true, true, ""},
		{"protected anonymous", PolicyProtected, false, false, PathLogin},
		{"public authenticated", PolicyPublic, true, true, ""},
		{"public anonymous", PolicyPublic, false, true, ""},
		{"guest-only anonymous", PolicyGuestOnly, false, true, ""},
		{"guest-only authenticated", PolicyGuestOnly, true, false, PathDashboard},
		// Unknown policies fail closed.
		{"unknown policy anonymous", RoutePolicy(99), false, false, PathLogin},
		{"unknown policy authenticated", RoutePolicy(99), true, true, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := DecideRoute(tc.policy, tc.authenticated)
			if got.Allow != tc.wantAllow {
				t.Fatalf("allow: expected %v, got %v", tc.wantAllow, got.Allow)
			}
			if got.RedirectTo != tc.wantRedirect {
				t.Fatalf("redirect: expected %q, got %q", tc.wantRedirect, got.RedirectTo)
			}
		})
	}
}
