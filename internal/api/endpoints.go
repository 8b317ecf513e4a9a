package api

import (
	"context"
	"fmt"
	"net/url"
)

// API exposes the shortener's REST endpoints as typed calls on top of
// the JSON helpers in Client.
type API struct {
	c *Client
}

// New wraps a Client with the typed endpoint surface.
func New(c *Client) *API {
	return &API{c: c}
}

// Config fetches the server feature flags and setup status.
func (a *API) Config(ctx context.Context) (*ServerConfig, error) {
	var cfg ServerConfig
	if err := a.c.GetJSON(ctx, "/api/config", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Me fetches the current session user.
func (a *API) Me(ctx context.Context) (*User, error) {
	var u User
	if err := a.c.GetJSON(ctx, "/api/user/me", &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Login authenticates with email and password.
func (a *API) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	var out LoginResponse
	err := a.c.PostJSON(ctx, "/api/user/login", LoginRequest{Email: email, Password: password}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout ends the server-side session.
func (a *API) Logout(ctx context.Context) error {
	return a.c.PostJSON(ctx, "/api/user/logout", struct{}{}, nil)
}

// Register creates a new account.
func (a *API) Register(ctx context.Context, req RegisterRequest) (*RegisteredUser, error) {
	var out RegisteredUser
	if err := a.c.PostJSON(ctx, "/api/user/register", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CheckPassword scores a candidate password.
func (a *API) CheckPassword(ctx context.Context, password string) (*PasswordCheck, error) {
	var out PasswordCheck
	body := struct {
		Password string `json:"password"`
	}{Password: password}
	if err := a.c.PostJSON(ctx, "/api/user/password", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ChangePassword replaces the current user's password.
func (a *API) ChangePassword(ctx context.Context, req ChangePasswordRequest) error {
	return a.c.PostJSON(ctx, "/api/user/me/password", req, nil)
}

// UpdateProfile changes the current user's username and/or email.
func (a *API) UpdateProfile(ctx context.Context, req UpdateUserRequest) error {
	return a.c.PostJSON(ctx, "/api/user/me/update", req, nil)
}

// DeleteMe deletes the current user's account.
func (a *API) DeleteMe(ctx context.Context) error {
	return a.c.DeleteJSON(ctx, "/api/user/me", nil)
}

// MyLinks fetches one page of the current user's links.
func (a *API) MyLinks(ctx context.Context, page, perPage int) (*Paginated[Link], error) {
	var out Paginated[Link]
	path := fmt.Sprintf("/api/user/me/links?page=%d&per_page=%d", page, perPage)
	if err := a.c.GetJSON(ctx, path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Shorten creates a new link.
func (a *API) Shorten(ctx context.Context, req ShortenRequest) (*Link, error) {
	var out Link
	if err := a.c.PostJSON(ctx, "/api/link/shorten", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteLink removes a link by slug.
func (a *API) DeleteLink(ctx context.Context, slug string) error {
	return a.c.DeleteJSON(ctx, "/api/link/"+url.PathEscape(slug), nil)
}

// Domains fetches one page of the domain list. Admin only.
func (a *API) Domains(ctx context.Context, page, perPage int) (*Paginated[Domain], error) {
	var out Paginated[Domain]
	path := fmt.Sprintf("/api/domains?page=%d&per_page=%d", page, perPage)
	if err := a.c.GetJSON(ctx, path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AllDomains fetches the unpaginated domain list used by selection
// widgets. Non-admin callers receive only the public domains.
func (a *API) AllDomains(ctx context.Context) ([]Domain, error) {
	var out []Domain
	if err := a.c.GetJSON(ctx, "/api/domains/all", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateDomain registers a new domain. Admin only.
func (a *API) CreateDomain(ctx context.Context, req CreateDomainRequest) (*Domain, error) {
	var out Domain
	if err := a.c.PostJSON(ctx, "/api/domains/create", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateDomain changes a domain's hostname or public flag. Admin only.
func (a *API) UpdateDomain(ctx context.Context, id int, req UpdateDomainRequest) error {
	return a.c.PutJSON(ctx, fmt.Sprintf("/api/domains/%d", id), req, nil)
}

// DeleteDomain removes a domain. Admin only.
func (a *API) DeleteDomain(ctx context.Context, id int) error {
	return a.c.DeleteJSON(ctx, fmt.Sprintf("/api/domains/%d", id), nil)
}

// ApplySetup submits the first-run configuration.
func (a *API) ApplySetup(ctx context.Context, cfg SetupConfig) error {
	return a.c.PostJSON(ctx, "/api/setup/set", cfg, nil)
}

// Health probes server readiness.
func (a *API) Health(ctx context.Context) error {
	return a.c.GetJSON(ctx, "/api/health", nil)
}
