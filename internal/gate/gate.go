// Package gate blocks protected pages until the session user is
// resolved. Guards are composable decorators: they wrap a render
// function and return either the guarded content or a placeholder or
// redirect result, never rendering protected content speculatively.
package gate

import (
	"context"
	"sync"

	"github.com/ebelousov/linkdash/internal/api"
	"github.com/ebelousov/linkdash/internal/session"
	"github.com/ebelousov/linkdash/internal/state"
)

// Status is the gate's resolution state.
type Status int

const (
	Unknown Status = iota
	Loading
	Authenticated
	Unauthenticated
)

// AdminStatus refines Authenticated for admin-only pages.
type AdminStatus int

const (
	AdminUnchecked AdminStatus = iota
	Authorized
	Forbidden
)

// Render produces page content for a resolved user.
type Render func(user *api.User) string

// Result is the outcome of a guard evaluation. A set RedirectTo sends
// the viewer elsewhere; Content then holds the interim notice shown
// until navigation happens. Placeholder marks content that is a
// loading or forbidden notice rather than the wrapped page.
type Result struct {
	Content     string
	RedirectTo  string
	Placeholder bool
}

// Guard wraps page renders with authentication checks. It reads the
// current-user container and never mutates it beyond triggering the
// fetch; the persisted logged-in flag is consulted synchronously so
// a known-logged-out viewer is redirected without waiting on the
// network.
type Guard struct {
	sess  *state.Session
	store *session.Store

	mu     sync.Mutex
	status Status
	admin  AdminStatus
}

// New builds a Guard over the session container and local store.
func New(sess *state.Session, store *session.Store) *Guard {
	return &Guard{sess: sess, store: store}
}

// Status returns the last resolution state.
func (g *Guard) Status() Status {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.status
}

// AdminStatus returns the admin sub-state of the last admin check.
func (g *Guard) AdminStatus() AdminStatus {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.admin
}

func (g *Guard) set(status Status, admin AdminStatus) {
	g.mu.Lock()
	g.status = status
	g.admin = admin
	g.mu.Unlock()
}

// resolve runs the shared resolve/redirect contract: consult the
// persisted flag, fetch the user when not cached, and classify the
// outcome.
func (g *Guard) resolve(ctx context.Context) (*api.User, *Result) {
	if !g.store.LoggedIn() {
		g.set(Unauthenticated, AdminUnchecked)
		return nil, &Result{RedirectTo: state.LoginPath, Content: "Not logged in", Placeholder: true}
	}

	if g.sess.User() == nil {
		g.set(Loading, AdminUnchecked)
		if err := g.sess.FetchMe(ctx); err != nil {
			g.set(Unauthenticated, AdminUnchecked)
			// On 401 the session container has already recorded the
			// redirect target and cleared the flag.
			return nil, &Result{RedirectTo: state.LoginPath, Content: "Please wait, loading...", Placeholder: true}
		}
	}

	user := g.sess.User()
	if user == nil {
		g.set(Loading, AdminUnchecked)
		return nil, &Result{Content: "Please wait, loading...", Placeholder: true}
	}

	g.set(Authenticated, AdminUnchecked)
	return user, nil
}

// RequireLogin wraps render so it only runs for an authenticated
// viewer.
func (g *Guard) RequireLogin(render Render) func(ctx context.Context) Result {
	return func(ctx context.Context) Result {
		user, blocked := g.resolve(ctx)
		if blocked != nil {
			return *blocked
		}
		return Result{Content: render(user)}
	}
}

// RequireAdmin wraps render so it only runs for an admin. A resolved
// non-admin gets a forbidden placeholder inside the normal page
// chrome, distinct from the bare redirect of the unauthenticated
// case.
func (g *Guard) RequireAdmin(render Render) func(ctx context.Context) Result {
	return func(ctx context.Context) Result {
		user, blocked := g.resolve(ctx)
		if blocked != nil {
			return *blocked
		}
		if !user.IsAdmin {
			g.set(Authenticated, Forbidden)
			return Result{Content: "You do not have access to this page.", Placeholder: true}
		}
		g.set(Authenticated, Authorized)
		return Result{Content: render(user)}
	}
}
