package session

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func testToken(t *testing.T, exp time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{"sub": "1", "exp": exp.Unix()}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatal(err)
	}
	return token
}

func TestStore_LoadMissingFile(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "state.json"))
	if err := s.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.LoggedIn() {
		t.Error("fresh store should not be logged in")
	}
	if s.Theme() != ThemeLight {
		t.Errorf("theme = %q; want light default", s.Theme())
	}
}

func TestStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	token := testToken(t, time.Now().Add(time.Hour))

	s := NewStore(path)
	if err := s.Load(); err != nil {
		t.Fatal(err)
	}
	if err := s.SetLoggedIn(token); err != nil {
		t.Fatal(err)
	}
	if err := s.SetTheme(ThemeDark); err != nil {
		t.Fatal(err)
	}
	if err := s.SetRedirectTo("/dash/domains"); err != nil {
		t.Fatal(err)
	}

	// A second store over the same file sees everything.
	s2 := NewStore(path)
	if err := s2.Load(); err != nil {
		t.Fatal(err)
	}
	if !s2.LoggedIn() {
		t.Error("logged-in marker lost")
	}
	if s2.Token() != token {
		t.Error("token lost")
	}
	if s2.Theme() != ThemeDark {
		t.Errorf("theme = %q; want dark", s2.Theme())
	}
	if s2.RedirectTo() != "/dash/domains" {
		t.Errorf("redirect = %q", s2.RedirectTo())
	}
}

func TestStore_ClearLoggedIn(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "state.json"))
	if err := s.SetLoggedIn(testToken(t, time.Now().Add(time.Hour))); err != nil {
		t.Fatal(err)
	}
	if err := s.ClearLoggedIn(); err != nil {
		t.Fatal(err)
	}
	if s.LoggedIn() || s.Token() != "" {
		t.Error("ClearLoggedIn should drop both marker and token")
	}
}

func TestStore_UnknownThemeFallsBackToLight(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte(`{"is_logged_in":false,"theme":"sepia"}`), 0o600); err != nil {
		t.Fatal(err)
	}

	s := NewStore(path)
	if err := s.Load(); err != nil {
		t.Fatal(err)
	}
	if s.Theme() != ThemeLight {
		t.Errorf("theme = %q; unknown values fall back to light", s.Theme())
	}

	if err := s.SetTheme("neon"); err != nil {
		t.Fatal(err)
	}
	if s.Theme() != ThemeLight {
		t.Errorf("theme = %q after bad SetTheme; want light", s.Theme())
	}
}

func TestStore_ExpiredTokenInvalidatesMarker(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "state.json"))
	if err := s.SetLoggedIn(testToken(t, time.Now().Add(-time.Minute))); err != nil {
		t.Fatal(err)
	}
	if s.LoggedIn() {
		t.Error("an expired token should invalidate the logged-in marker")
	}
	// The token itself stays readable so the 401 flow can still run.
	if s.Token() == "" {
		t.Error("token should not be wiped by expiry")
	}
}

func TestStore_OpaqueTokenKeepsMarker(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "state.json"))
	if err := s.SetLoggedIn("not-a-jwt"); err != nil {
		t.Fatal(err)
	}
	if !s.LoggedIn() {
		t.Error("an unparseable token must not invalidate the marker; the server decides")
	}
}
