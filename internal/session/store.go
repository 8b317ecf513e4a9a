// Package session persists the small amount of client-local state the
// dashboard keeps between runs: the logged-in marker, the theme
// preference, the auth token and a pending post-login redirect target.
package session

import (
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Theme values accepted by the store.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

type persisted struct {
	LoggedIn   bool   `json:"is_logged_in"`
	Theme      string `json:"theme"`
	Token      string `json:"token,omitempty"`
	RedirectTo string `json:"redirect_to,omitempty"`
}

// Store is a file-backed key-value store. Every write fully replaces
// the prior value of its key; there are no merge semantics. All reads
// are served from memory after Load.
type Store struct {
	mu   sync.Mutex
	path string
	data persisted
}

// NewStore creates a store persisting to the given file path.
func NewStore(path string) *Store {
	return &Store{path: path, data: persisted{Theme: ThemeLight}}
}

// Load reads the state file. A missing file is not an error: the
// store starts empty with the light theme.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.data = persisted{Theme: ThemeLight}
			return nil
		}
		return err
	}
	defer f.Close()

	if err := json.NewDecoder(f).Decode(&s.data); err != nil {
		return err
	}
	if s.data.Theme != ThemeDark {
		s.data.Theme = ThemeLight
	}
	return nil
}

func (s *Store) save() error {
	f, err := os.Create(s.path)
	if err != nil {
		return err
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(&s.data)
}

// LoggedIn reports the persisted logged-in marker. It is consulted
// synchronously before the asynchronous user fetch: a false value
// short-circuits straight to the login flow.
func (s *Store) LoggedIn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.data.LoggedIn {
		return false
	}
	// A token that has visibly expired invalidates the marker without
	// waiting for the server to answer 401.
	if s.data.Token != "" && tokenExpired(s.data.Token) {
		return false
	}
	return true
}

// SetLoggedIn stores the logged-in marker and auth token together.
func (s *Store) SetLoggedIn(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.LoggedIn = true
	s.data.Token = token
	return s.save()
}

// ClearLoggedIn drops the marker and token.
func (s *Store) ClearLoggedIn() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.LoggedIn = false
	s.data.Token = ""
	return s.save()
}

// Token returns the stored auth token, or "" when logged out.
// Implements api.TokenSource.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.Token
}

// Theme returns the persisted theme preference.
func (s *Store) Theme() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.Theme
}

// SetTheme persists the theme preference. Unknown values fall back
// to light.
func (s *Store) SetTheme(theme string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if theme != ThemeDark {
		theme = ThemeLight
	}
	s.data.Theme = theme
	return s.save()
}

// RedirectTo returns the recorded post-login redirect target, or "".
func (s *Store) RedirectTo() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.RedirectTo
}

// SetRedirectTo records where to navigate after the next successful
// login. An empty value clears the target.
func (s *Store) SetRedirectTo(target string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.RedirectTo = target
	return s.save()
}

// tokenExpired parses the token without verifying its signature; the
// client has no key material and only needs the exp claim.
func tokenExpired(token string) bool {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}
