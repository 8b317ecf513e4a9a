package state

import (
	"context"
	"testing"
)

func TestDomainRepository_RefreshSeesMoreAsAdmin(t *testing.T) {
	env := newTestEnv(t)
	env.srv.AddDomain("private.example.com", false)
	repo := NewDomainRepository(env.api, nil)

	// Anonymous: only public domains.
	if err := repo.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	for _, d := range repo.Domains() {
		if !d.Public {
			t.Errorf("anonymous refresh returned a private domain: %+v", d)
		}
	}
	anon := len(repo.Domains())

	env.loginAs(t, "root", "root@example.com", true)
	if err := repo.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if got := len(repo.Domains()); got != anon+1 {
		t.Errorf("admin sees %d domains; want %d", got, anon+1)
	}
}

func TestDomainRepository_FollowsSessionUser(t *testing.T) {
	env := newTestEnv(t)
	env.srv.AddDomain("private.example.com", false)
	env.srv.AddUser("root", "root@example.com", "hunter2!", true)

	repo := NewDomainRepository(env.api, nil)
	sess := env.session()
	sess.OnUserChange(func(ctx context.Context) { _ = repo.Refresh(ctx) })

	if err := repo.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	anon := len(repo.Domains())

	if err := sess.Login(context.Background(), "root@example.com", "hunter2!"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if got := len(repo.Domains()); got != anon+1 {
		t.Errorf("list after admin login has %d domains; want %d, login should refresh it", got, anon+1)
	}

	sess.Logout(context.Background(), false)
	if got := len(repo.Domains()); got != anon {
		t.Errorf("list after logout has %d domains; want the public-only %d", got, anon)
	}
}

func TestDomainRepository_RefreshFailureKeepsList(t *testing.T) {
	env := newTestEnv(t)
	repo := NewDomainRepository(env.api, nil)
	if err := repo.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	before := repo.Domains()

	env.ts.Close()
	if err := repo.Refresh(context.Background()); err == nil {
		t.Fatal("expected refresh failure")
	}
	if repo.Err() == nil {
		t.Error("Err should record the failure")
	}
	if got := repo.Domains(); len(got) != len(before) {
		t.Errorf("failed refresh changed the cached list: %v", got)
	}
}
