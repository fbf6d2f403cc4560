package guard

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aerodesk/aerodesk/internal/domain"
	"github.com/aerodesk/aerodesk/internal/session"
)

type fakeState struct {
	loggedIn bool
	role     domain.Role
}

func (f fakeState) LoggedIn() bool    { return f.loggedIn }
func (f fakeState) Role() domain.Role { return f.role }

func guardFor(state State) *Guard {
	return New(DefaultRoutes(), state, nil)
}

func TestDecide_UnauthenticatedGatedRouteRedirectsToLogin(t *testing.T) {
	g := guardFor(fakeState{})

	for _, path := range []string{"/booking", "/refund", "/reschedule", "/admin", "/agency"} {
		d := g.Decide(context.Background(), path)
		assert.False(t, d.Allow, path)
		assert.Equal(t, "/login", d.RedirectTo, path)
		assert.Equal(t, path, d.RedirectFrom, "redirect must remember the requested path")
	}
}

func TestDecide_UnauthenticatedOpenRoutesAllowed(t *testing.T) {
	g := guardFor(fakeState{})

	assert.True(t, g.Decide(context.Background(), "/").Allow)
	assert.True(t, g.Decide(context.Background(), "/login").Allow)
}

func TestDecide_PassengerAllowedOnAuthRoutes(t *testing.T) {
	g := guardFor(fakeState{loggedIn: true, role: domain.RolePassenger})

	for _, path := range []string{"/", "/booking", "/refund", "/reschedule"} {
		assert.True(t, g.Decide(context.Background(), path).Allow, path)
	}
}

func TestDecide_AdminOnlyRouteBlocksAgencyAndPassenger(t *testing.T) {
	for _, role := range []domain.Role{domain.RoleAgency, domain.RolePassenger} {
		g := guardFor(fakeState{loggedIn: true, role: role})
		d := g.Decide(context.Background(), "/admin")
		assert.False(t, d.Allow, string(role))
		assert.Equal(t, "/", d.RedirectTo, string(role))
	}
}

func TestDecide_AgencyRouteAdmitsAgencyAndAdmin(t *testing.T) {
	for _, role := range []domain.Role{domain.RoleAgency, domain.RoleAdmin} {
		g := guardFor(fakeState{loggedIn: true, role: role})
		assert.True(t, g.Decide(context.Background(), "/agency").Allow, string(role))
	}

	g := guardFor(fakeState{loggedIn: true, role: domain.RolePassenger})
	d := g.Decide(context.Background(), "/agency")
	assert.False(t, d.Allow)
	assert.Equal(t, "/", d.RedirectTo)
}

func TestDecide_AdminBouncesOffPlainPagesToAdminHome(t *testing.T) {
	g := guardFor(fakeState{loggedIn: true, role: domain.RoleAdmin})

	d := g.Decide(context.Background(), "/")
	assert.False(t, d.Allow)
	assert.Equal(t, "/admin", d.RedirectTo)

	assert.True(t, g.Decide(context.Background(), "/admin").Allow)
}

func TestDecide_UnknownPathDefaultsToAllow(t *testing.T) {
	g := guardFor(fakeState{loggedIn: true, role: domain.RolePassenger})

	assert.True(t, g.Decide(context.Background(), "/no-such-page").Allow)
}

func TestDecide_ExactlyOneOutcomePerTransition(t *testing.T) {
	g := guardFor(fakeState{loggedIn: true, role: domain.RoleAgency})

	for _, path := range []string{"/", "/login", "/booking", "/admin", "/agency", "/other"} {
		d := g.Decide(context.Background(), path)
		if d.Allow {
			assert.Empty(t, d.RedirectTo, path)
		} else {
			assert.NotEmpty(t, d.RedirectTo, path)
		}
	}
}

func TestDecide_FallsBackToPersistedSession(t *testing.T) {
	sessions := session.NewFileStore(filepath.Join(t.TempDir(), "session.json"))
	require.NoError(t, sessions.Save(context.Background(), session.Session{
		AccessToken: "tok",
		User:        &domain.User{ID: "u-1", Username: "zhang", Role: domain.RolePassenger},
	}))
	g := New(DefaultRoutes(), fakeState{}, sessions)

	assert.True(t, g.Decide(context.Background(), "/booking").Allow)
}

func TestDecide_EmptyPersistedSessionStaysLoggedOut(t *testing.T) {
	sessions := session.NewFileStore(filepath.Join(t.TempDir(), "session.json"))
	g := New(DefaultRoutes(), fakeState{}, sessions)

	d := g.Decide(context.Background(), "/booking")
	assert.False(t, d.Allow)
	assert.Equal(t, "/login", d.RedirectTo)
}
