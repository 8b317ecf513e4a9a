package state

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/ebelousov/linkdash/internal/api"
	"github.com/ebelousov/linkdash/internal/notify"
	"github.com/ebelousov/linkdash/internal/session"
	"github.com/ebelousov/linkdash/internal/stub"
)

// fakeNav records navigations instead of switching pages.
type fakeNav struct {
	mu      sync.Mutex
	path    string
	visited []string
}

func (n *fakeNav) Path() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.path
}

func (n *fakeNav) Navigate(target string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.path = target
	n.visited = append(n.visited, target)
}

func (n *fakeNav) lastVisited() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.visited) == 0 {
		return ""
	}
	return n.visited[len(n.visited)-1]
}

// countingTransport counts requests per method so tests can assert
// that a guarded operation never reached the network.
type countingTransport struct {
	mu     sync.Mutex
	counts map[string]int
	next   http.RoundTripper
}

func (c *countingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	c.mu.Lock()
	if c.counts == nil {
		c.counts = make(map[string]int)
	}
	c.counts[req.Method]++
	c.mu.Unlock()
	return c.next.RoundTrip(req)
}

func (c *countingTransport) count(method string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[method]
}

// testEnv wires a stub server, a state file in a temp dir and the
// API facade the containers talk through.
type testEnv struct {
	srv       *stub.Server
	ts        *httptest.Server
	store     *session.Store
	api       *api.API
	nav       *fakeNav
	notifier  *notify.Notifier
	transport *countingTransport
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	srv := stub.New(stub.Options{
		BaseURL:          "http://sho.rt",
		SetupDone:        true,
		AllowRegistering: true,
	}, nil)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)

	store := session.NewStore(filepath.Join(t.TempDir(), "state.json"))
	if err := store.Load(); err != nil {
		t.Fatalf("load store: %v", err)
	}

	transport := &countingTransport{next: http.DefaultTransport}
	client := api.NewClient(ts.URL, &http.Client{Transport: transport, Timeout: 5 * time.Second}, store, nil)

	return &testEnv{
		srv:       srv,
		ts:        ts,
		store:     store,
		api:       api.New(client),
		nav:       &fakeNav{path: "/dash"},
		notifier:  &notify.Notifier{},
		transport: transport,
	}
}

func (e *testEnv) session() *Session {
	return NewSession(e.api, e.store, e.nav, e.notifier, nil)
}

// loginAs seeds an account on the stub and authenticates as it.
func (e *testEnv) loginAs(t *testing.T, username, email string, admin bool) *Session {
	t.Helper()
	e.srv.AddUser(username, email, "hunter2!", admin)
	sess := e.session()
	if err := sess.Login(context.Background(), email, "hunter2!"); err != nil {
		t.Fatalf("login: %v", err)
	}
	return sess
}

func hasError(notifications []notify.Notification) bool {
	for _, n := range notifications {
		if n.Level == notify.Error {
			return true
		}
	}
	return false
}
