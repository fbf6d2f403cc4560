package guard

import (
	"context"

	"github.com/aerodesk/aerodesk/internal/domain"
	"github.com/aerodesk/aerodesk/internal/session"
)

// Route carries the access metadata the guard evaluates. Role gates
// imply RequiresAuth.
type Route struct {
	Name                  string
	Path                  string
	RequiresAuth          bool
	RequiresAdmin         bool
	RequiresAgencyOrAdmin bool
}

// Decision is the single outcome of one transition: either allow, or
// one redirect. RedirectFrom carries the originally requested path when
// the redirect targets the login page.
type Decision struct {
	Allow        bool
	RedirectTo   string
	RedirectFrom string
}

// State is the guard's view of the application store. Zero values mean
// "not observable" and make the guard fall back to persisted session
// state.
type State interface {
	LoggedIn() bool
	Role() domain.Role
}

// Guard decides every route transition with two checkpoints: an
// authentication check, then role gates in strict precedence order
// (agency-or-admin, admin-only, implicit admin redirect, default
// allow). Exactly one decision per transition.
type Guard struct {
	routes    map[string]Route
	state     State
	sessions  session.Store
	loginPath string
	homePath  string
	adminHome string
}

func New(routes []Route, state State, sessions session.Store) *Guard {
	byPath := make(map[string]Route, len(routes))
	for _, r := range routes {
		byPath[r.Path] = r
	}
	return &Guard{
		routes:    byPath,
		state:     state,
		sessions:  sessions,
		loginPath: "/login",
		homePath:  "/",
		adminHome: "/admin",
	}
}

// DefaultRoutes is the application's route table.
func DefaultRoutes() []Route {
	return []Route{
		{Name: "home", Path: "/"},
		{Name: "login", Path: "/login"},
		{Name: "booking", Path: "/booking", RequiresAuth: true},
		{Name: "refund", Path: "/refund", RequiresAuth: true},
		{Name: "reschedule", Path: "/reschedule", RequiresAuth: true},
		{Name: "admin", Path: "/admin", RequiresAdmin: true},
		{Name: "agency", Path: "/agency", RequiresAgencyOrAdmin: true},
	}
}

func (g *Guard) Decide(ctx context.Context, path string) Decision {
	route, known := g.routes[path]
	if !known {
		route = Route{Path: path}
	}

	authed, role := g.observe(ctx)

	needsAuth := route.RequiresAuth || route.RequiresAdmin || route.RequiresAgencyOrAdmin
	if needsAuth && !authed {
		return Decision{RedirectTo: g.loginPath, RedirectFrom: path}
	}
	if !authed {
		return Decision{Allow: true}
	}

	switch {
	case route.RequiresAgencyOrAdmin:
		if role == domain.RoleAgency || role == domain.RoleAdmin {
			return Decision{Allow: true}
		}
		return Decision{RedirectTo: g.homePath}
	case route.RequiresAdmin:
		if role == domain.RoleAdmin {
			return Decision{Allow: true}
		}
		return Decision{RedirectTo: g.homePath}
	case role == domain.RoleAdmin:
		// Admins work from the admin area; plain pages bounce there.
		return Decision{RedirectTo: g.adminHome}
	}
	return Decision{Allow: true}
}

// observe reads the store flags first and falls back to the persisted
// session, which may be stale. The guard itself never blocks on the
// backend.
func (g *Guard) observe(ctx context.Context) (bool, domain.Role) {
	if g.state != nil && g.state.LoggedIn() {
		return true, g.state.Role()
	}
	if g.sessions == nil {
		return false, ""
	}
	sess, err := g.sessions.Load(ctx)
	if err != nil || !sess.LoggedIn() {
		return false, ""
	}
	role := domain.Role("")
	if sess.User != nil {
		role = sess.User.Role
	}
	return true, role
}
