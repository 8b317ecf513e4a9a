package state

import (
	"context"
	"testing"

	"github.com/ebelousov/linkdash/internal/api"
)

func TestSession_LoginStoresUserAndFlag(t *testing.T) {
	env := newTestEnv(t)
	env.srv.AddUser("alice", "alice@example.com", "hunter2!", false)
	sess := env.session()

	if err := sess.Login(context.Background(), "alice@example.com", "hunter2!"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if u := sess.User(); u == nil || u.Username != "alice" {
		t.Errorf("user = %+v", sess.User())
	}
	if !env.store.LoggedIn() {
		t.Error("logged-in flag should be set")
	}
	if env.store.Token() == "" {
		t.Error("token should be persisted")
	}
}

func TestSession_LoginFailureRecordsMessage(t *testing.T) {
	env := newTestEnv(t)
	env.srv.AddUser("alice", "alice@example.com", "hunter2!", false)
	sess := env.session()

	if err := sess.Login(context.Background(), "alice@example.com", "wrong"); err == nil {
		t.Fatal("expected login failure")
	}
	if sess.Err() != "Invalid credentials." {
		t.Errorf("err = %q", sess.Err())
	}
	if sess.User() != nil || env.store.LoggedIn() {
		t.Error("failed login must not establish a session")
	}
}

func TestSession_FetchMe401RedirectsToLogin(t *testing.T) {
	env := newTestEnv(t)
	// A marker from a previous session whose token the server no
	// longer accepts.
	if err := env.store.SetLoggedIn("stale-token"); err != nil {
		t.Fatal(err)
	}
	env.nav.path = "/dash/domains"
	sess := env.session()

	if err := sess.FetchMe(context.Background()); err == nil {
		t.Fatal("expected 401")
	}

	if sess.RedirectMessage() != "Please login again." {
		t.Errorf("redirect message = %q", sess.RedirectMessage())
	}
	if got := env.store.RedirectTo(); got != "/dash/domains" {
		t.Errorf("redirect target = %q; want the page being viewed", got)
	}
	if env.store.LoggedIn() {
		t.Error("logged-in flag should be cleared on 401")
	}
	if env.nav.lastVisited() != LoginPath {
		t.Errorf("navigated to %q; want %q", env.nav.lastVisited(), LoginPath)
	}
}

func TestSession_LoginConsumesRedirectTarget(t *testing.T) {
	env := newTestEnv(t)
	env.srv.AddUser("alice", "alice@example.com", "hunter2!", false)
	if err := env.store.SetRedirectTo("/dash/domains"); err != nil {
		t.Fatal(err)
	}
	sess := env.session()

	if err := sess.Login(context.Background(), "alice@example.com", "hunter2!"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if env.nav.lastVisited() != "/dash/domains" {
		t.Errorf("navigated to %q; want the recorded target", env.nav.lastVisited())
	}
	if env.store.RedirectTo() != "" {
		t.Error("redirect target should be cleared after use")
	}
	if sess.RedirectMessage() != "" {
		t.Error("redirect message should be cleared by a successful login")
	}
}

func TestSession_LogoutIsOptimistic(t *testing.T) {
	env := newTestEnv(t)
	sess := env.loginAs(t, "alice", "alice@example.com", false)

	// Server gone: the request fails but the local session still ends.
	env.ts.Close()

	sess.Logout(context.Background(), true)

	if sess.User() != nil {
		t.Error("user should be cleared even when the logout request fails")
	}
	if env.store.LoggedIn() {
		t.Error("logged-in flag should be cleared")
	}
	if !hasError(env.notifier.Drain()) {
		t.Error("failed logout should surface a notification")
	}
	if env.nav.lastVisited() != LoginPath {
		t.Errorf("navigated to %q; want %q", env.nav.lastVisited(), LoginPath)
	}
}

func TestSession_DeleteAccount(t *testing.T) {
	env := newTestEnv(t)
	sess := env.loginAs(t, "alice", "alice@example.com", false)

	if err := sess.DeleteAccount(context.Background()); err != nil {
		t.Fatalf("DeleteAccount: %v", err)
	}
	if sess.Deleting() {
		t.Error("deleting flag should drop once the operation finishes")
	}
	if sess.User() != nil || env.store.LoggedIn() {
		t.Error("account deletion should end the session")
	}
	if sess.RedirectMessage() == "" {
		t.Error("a confirmation message should be recorded for the login page")
	}
	if env.nav.lastVisited() != LoginPath {
		t.Errorf("navigated to %q; want %q", env.nav.lastVisited(), LoginPath)
	}

	// The account is gone server-side too.
	if err := sess.Login(context.Background(), "alice@example.com", "hunter2!"); err == nil {
		t.Error("login should fail after account deletion")
	}
}

func TestSession_RegisterValidatesBeforeNetwork(t *testing.T) {
	env := newTestEnv(t)
	sess := env.session()
	posts := env.transport.count("POST")

	req := api.RegisterRequest{
		Username: "bob", Email: "bob@example.com", ConfirmEmail: "other@example.com",
		Password: "hunter2!", ConfirmPassword: "hunter2!",
	}
	if err := sess.Register(context.Background(), req); err == nil {
		t.Fatal("expected validation failure")
	}
	if env.transport.count("POST") != posts {
		t.Error("mismatched emails must be rejected before any request")
	}
	if got := sess.Registration().Phase(); got != CreationIdle {
		t.Errorf("registration phase = %v; form validation must not touch the machine", got)
	}
}

func TestSession_RegisterRedirectsToLogin(t *testing.T) {
	env := newTestEnv(t)
	sess := env.session()

	req := api.RegisterRequest{
		Username: "bob", Email: "bob@example.com", ConfirmEmail: "bob@example.com",
		Password: "hunter2!", ConfirmPassword: "hunter2!",
	}
	if err := sess.Register(context.Background(), req); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if sess.Registration().Phase() != CreationSucceeded {
		t.Errorf("registration phase = %v", sess.Registration().Phase())
	}
	if sess.RedirectMessage() != "Registered, please login!" {
		t.Errorf("redirect message = %q", sess.RedirectMessage())
	}
	if env.nav.lastVisited() != LoginPath {
		t.Errorf("navigated to %q; want %q", env.nav.lastVisited(), LoginPath)
	}
}

func TestSession_UpdateProfilePatchesCachedUser(t *testing.T) {
	env := newTestEnv(t)
	sess := env.loginAs(t, "alice", "alice@example.com", false)

	username := "alice2"
	if err := sess.UpdateProfile(context.Background(), &username, nil); err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	u := sess.User()
	if u.Username != "alice2" {
		t.Errorf("username = %q; want alice2", u.Username)
	}
	if u.Email != "alice@example.com" {
		t.Errorf("untouched field changed: email = %q", u.Email)
	}
}
