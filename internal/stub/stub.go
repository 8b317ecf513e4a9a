// Package stub is an in-memory implementation of the shortener REST
// API. It exists for development without a real backend and as the
// remote side in container tests. Behavior mirrors what the real
// server exposes to clients: pagination, the base-domain delete
// refusal, 401s for missing sessions and 409s for duplicates.
package stub

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/ebelousov/linkdash/internal/api"
	"github.com/ebelousov/linkdash/internal/validate"
)

// Options seeds the stub server.
type Options struct {
	// BaseURL is reported via /api/config; its host becomes the
	// undeletable base domain.
	BaseURL string
	// SetupDone controls the first-run flag in /api/config.
	SetupDone bool
	// AllowRegistering controls whether /api/user/register accepts
	// new accounts.
	AllowRegistering bool
	// AllowAnonymousShorten permits shortening without a session.
	AllowAnonymousShorten bool
	// MinPasswordStrength is the score floor reported in the config.
	MinPasswordStrength int
	// JWTSecret signs session tokens. Randomized when empty.
	JWTSecret string
}

type account struct {
	user     api.User
	password string
}

// Server holds the in-memory data set. All access goes through mu;
// there is no persistence.
type Server struct {
	mu      sync.Mutex
	cfg     api.ServerConfig
	baseDom string
	secret  []byte

	accounts map[int]*account
	links    []api.Link
	domains  []api.Domain

	nextUserID   int
	nextLinkID   int
	nextDomainID int

	log *zap.Logger
}

// New builds a stub server seeded with the base domain.
func New(opts Options, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	secret := opts.JWTSecret
	if secret == "" {
		secret = randomString(32)
	}
	baseDom := ""
	if host, err := validate.StripProtocol(opts.BaseURL); err == nil {
		baseDom = host
	}

	s := &Server{
		cfg: api.ServerConfig{
			AllowAnonymousShorten: opts.AllowAnonymousShorten,
			AllowRegistering:      opts.AllowRegistering,
			MinPasswordStrength:   opts.MinPasswordStrength,
			BaseURL:               opts.BaseURL,
			SetupDone:             opts.SetupDone,
		},
		baseDom:      baseDom,
		secret:       []byte(secret),
		accounts:     make(map[int]*account),
		nextUserID:   1,
		nextLinkID:   1,
		nextDomainID: 1,
		log:          log,
	}
	if baseDom != "" {
		s.domains = append(s.domains, api.Domain{
			ID:        s.nextDomainID,
			Domain:    baseDom,
			Public:    true,
			CreatedAt: now(),
			UpdatedAt: now(),
		})
		s.nextDomainID++
	}
	return s
}

// AddUser registers an account directly, bypassing the register
// endpoint. Used to seed admins.
func (s *Server) AddUser(username, email, password string, admin bool) api.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := api.User{
		ID:        s.nextUserID,
		Username:  username,
		Email:     email,
		IsAdmin:   admin,
		CreatedAt: now(),
	}
	s.accounts[u.ID] = &account{user: u, password: password}
	s.nextUserID++
	return u
}

// AddDomain registers a domain directly. Used for test seeding.
func (s *Server) AddDomain(domain string, public bool) api.Domain {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := api.Domain{
		ID:        s.nextDomainID,
		Domain:    domain,
		Public:    public,
		CreatedAt: now(),
		UpdatedAt: now(),
	}
	s.domains = append(s.domains, d)
	s.nextDomainID++
	return d
}

func (s *Server) mintToken(userID int) (string, error) {
	claims := jwt.MapClaims{
		"sub": userID,
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *Server) userFromToken(token string) *api.User {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !parsed.Valid {
		return nil
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil
	}
	sub, ok := claims["sub"].(float64)
	if !ok {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[int(sub)]
	if !ok {
		return nil
	}
	u := acc.user
	return &u
}

func (s *Server) findAccountByEmail(email string) *account {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, acc := range s.accounts {
		if acc.user.Email == email {
			return acc
		}
	}
	return nil
}

// passwordScore is a rough stand-in for the server's strength
// estimator, good enough to exercise the min-strength flow.
func passwordScore(password string) int {
	score := 0
	if len(password) >= 8 {
		score++
	}
	if len(password) >= 12 {
		score++
	}
	if strings.ContainsAny(password, "0123456789") {
		score++
	}
	if strings.ContainsAny(password, "!@#$%^&*()-_=+[]{};:,.<>/?") {
		score++
	}
	return score
}

func now() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05")
}

func randomString(n int) string {
	buf := make([]byte, (n+1)/2)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)[:n]
}
