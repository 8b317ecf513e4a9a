package stub

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ebelousov/linkdash/internal/api"
	"github.com/ebelousov/linkdash/internal/validate"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, api.Message{Message: message})
}

func (s *Server) authedUser(r *http.Request) *api.User {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return nil
	}
	return s.userFromToken(token)
}

func pagination(r *http.Request) (page, perPage int) {
	page, perPage = 1, 10
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("per_page")); err == nil && v > 0 {
		perPage = v
	}
	return page, perPage
}

func paginate[T any](items []T, page, perPage int) []T {
	start := (page - 1) * perPage
	if start >= len(items) {
		return []T{}
	}
	end := start + perPage
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	// Bare string body, one of the error/response shapes clients
	// must tolerate.
	writeJSON(w, http.StatusOK, "OK")
}

func (s *Server) handleConfig(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	cfg := s.cfg
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req api.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request.")
		return
	}

	acc := s.findAccountByEmail(req.Email)
	if acc == nil || acc.password != req.Password {
		writeMessage(w, http.StatusUnauthorized, "Invalid credentials.")
		return
	}

	token, err := s.mintToken(acc.user.ID)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Internal server error.")
		return
	}
	writeJSON(w, http.StatusOK, api.LoginResponse{Token: token, User: acc.user})
}

func (s *Server) handleLogout(w http.ResponseWriter, _ *http.Request) {
	writeMessage(w, http.StatusOK, "Logged out")
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req api.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request.")
		return
	}

	s.mu.Lock()
	allow := s.cfg.AllowRegistering
	minStrength := s.cfg.MinPasswordStrength
	s.mu.Unlock()
	if !allow {
		writeMessage(w, http.StatusUnauthorized, "You are not allowed to perform this action.")
		return
	}

	switch {
	case req.Email != req.ConfirmEmail:
		writeMessage(w, http.StatusBadRequest, "Emails don't match")
		return
	case req.Password != req.ConfirmPassword:
		writeMessage(w, http.StatusBadRequest, "Passwords don't match")
		return
	case !validate.IsEmail(req.Email):
		writeMessage(w, http.StatusBadRequest, "Invalid email")
		return
	case passwordScore(req.Password) < minStrength:
		writeMessage(w, http.StatusConflict, "Password is not strong enough.")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, acc := range s.accounts {
		if acc.user.Email == req.Email {
			writeMessage(w, http.StatusConflict, "Email already in use")
			return
		}
		if acc.user.Username == req.Username {
			writeMessage(w, http.StatusConflict, "Username already in use")
			return
		}
	}

	u := api.User{
		ID:        s.nextUserID,
		Username:  req.Username,
		Email:     req.Email,
		CreatedAt: now(),
	}
	s.accounts[u.ID] = &account{user: u, password: req.Password}
	s.nextUserID++

	writeJSON(w, http.StatusCreated, api.RegisteredUser{ID: u.ID, Username: u.Username, Email: u.Email})
}

func (s *Server) handleCheckPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request.")
		return
	}

	score := passwordScore(req.Password)
	check := api.PasswordCheck{Score: score}
	if score < 3 {
		suggestion := "Use a longer password with digits and symbols."
		check.Feedback = &api.PasswordFeedback{
			Suggestions:      []string{suggestion},
			SuggestionString: &suggestion,
		}
	}
	writeJSON(w, http.StatusOK, check)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user := s.authedUser(r)
	if user == nil {
		writeMessage(w, http.StatusUnauthorized, "Invalid credentials.")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleDeleteMe(w http.ResponseWriter, r *http.Request) {
	user := s.authedUser(r)
	if user == nil {
		writeMessage(w, http.StatusUnauthorized, "You are not allowed to perform this action.")
		return
	}

	s.mu.Lock()
	delete(s.accounts, user.ID)
	kept := s.links[:0]
	for _, l := range s.links {
		if l.OwnerID == nil || *l.OwnerID != user.ID {
			kept = append(kept, l)
		}
	}
	s.links = kept
	s.mu.Unlock()

	writeMessage(w, http.StatusOK, "Deleted.")
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	user := s.authedUser(r)
	if user == nil {
		writeMessage(w, http.StatusUnauthorized, "You are not allowed to perform this action.")
		return
	}

	var req api.ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request.")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[user.ID]
	if !ok || acc.password != req.Password {
		writeMessage(w, http.StatusUnauthorized, "Invalid credentials.")
		return
	}
	if req.NewPassword != req.ConfirmPassword {
		writeMessage(w, http.StatusConflict, "Passwords do not match.")
		return
	}
	if passwordScore(req.NewPassword) < s.cfg.MinPasswordStrength {
		writeMessage(w, http.StatusConflict, "Password is not strong enough.")
		return
	}
	acc.password = req.NewPassword
	writeMessage(w, http.StatusOK, "Password updated.")
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	user := s.authedUser(r)
	if user == nil {
		writeMessage(w, http.StatusUnauthorized, "You are not allowed to perform this action.")
		return
	}

	var req api.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request.")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[user.ID]
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "You are not allowed to perform this action.")
		return
	}
	if req.Email != nil {
		if !validate.IsEmail(*req.Email) {
			writeMessage(w, http.StatusBadRequest, "Invalid email")
			return
		}
		for id, other := range s.accounts {
			if id != user.ID && other.user.Email == *req.Email {
				writeMessage(w, http.StatusConflict, "Email already in use")
				return
			}
		}
		acc.user.Email = *req.Email
	}
	if req.Username != nil {
		acc.user.Username = *req.Username
	}
	writeMessage(w, http.StatusOK, "Updated.")
}

func (s *Server) handleMyLinks(w http.ResponseWriter, r *http.Request) {
	user := s.authedUser(r)
	if user == nil {
		writeMessage(w, http.StatusUnauthorized, "You are not allowed to perform this action.")
		return
	}
	page, perPage := pagination(r)

	s.mu.Lock()
	var mine []api.Link
	for _, l := range s.links {
		if l.OwnerID != nil && *l.OwnerID == user.ID {
			mine = append(mine, l)
		}
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, api.Paginated[api.Link]{
		Items:      paginate(mine, page, perPage),
		TotalCount: len(mine),
	})
}

func (s *Server) handleShorten(w http.ResponseWriter, r *http.Request) {
	user := s.authedUser(r)

	s.mu.Lock()
	allowAnon := s.cfg.AllowAnonymousShorten
	s.mu.Unlock()
	if user == nil && !allowAnon {
		writeMessage(w, http.StatusUnauthorized, "You are not allowed to perform this action.")
		return
	}

	var req api.ShortenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request.")
		return
	}
	if !validate.IsURL(req.Link) {
		writeMessage(w, http.StatusBadRequest, "Provided link is not a valid URL.")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var domain *api.Domain
	for i := range s.domains {
		if s.domains[i].ID == req.DomainID {
			domain = &s.domains[i]
			break
		}
	}
	if domain == nil {
		writeMessage(w, http.StatusBadRequest, "Unknown domain.")
		return
	}

	if req.CustomSlug != nil && *req.CustomSlug != "" {
		for _, l := range s.links {
			if l.EffectiveSlug() == *req.CustomSlug {
				writeMessage(w, http.StatusConflict, "Slug already exists.")
				return
			}
		}
	}

	link := api.Link{
		ID:           s.nextLinkID,
		DomainID:     domain.ID,
		Domain:       domain.Domain,
		Slug:         newSlug(),
		CustomSlug:   req.CustomSlug,
		OriginalLink: req.Link,
		CreatedAt:    now(),
		UpdatedAt:    now(),
	}
	if user != nil {
		id := user.ID
		link.OwnerID = &id
	}
	s.nextLinkID++
	// Newest first, matching the created_at desc ordering of the
	// list endpoint.
	s.links = append([]api.Link{link}, s.links...)

	writeJSON(w, http.StatusCreated, link)
}

func (s *Server) handleDeleteLink(w http.ResponseWriter, r *http.Request) {
	user := s.authedUser(r)
	if user == nil {
		writeMessage(w, http.StatusUnauthorized, "You are not allowed to perform this action.")
		return
	}
	slug := chi.URLParam(r, "slug")

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, l := range s.links {
		if l.Slug != slug && l.EffectiveSlug() != slug {
			continue
		}
		if l.OwnerID == nil || *l.OwnerID != user.ID {
			writeMessage(w, http.StatusUnauthorized, "You are not allowed to perform this action.")
			return
		}
		s.links = append(s.links[:i], s.links[i+1:]...)
		writeMessage(w, http.StatusOK, "Slug deleted.")
		return
	}
	writeMessage(w, http.StatusNotFound, "Slug not found")
}

func (s *Server) handlePagedDomains(w http.ResponseWriter, r *http.Request) {
	user := s.authedUser(r)
	if user == nil || !user.IsAdmin {
		writeMessage(w, http.StatusUnauthorized, "You are not allowed to perform this action.")
		return
	}
	page, perPage := pagination(r)

	s.mu.Lock()
	all := make([]api.Domain, len(s.domains))
	copy(all, s.domains)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, api.Paginated[api.Domain]{
		Items:      paginate(all, page, perPage),
		TotalCount: len(all),
	})
}

func (s *Server) handleAllDomains(w http.ResponseWriter, r *http.Request) {
	user := s.authedUser(r)

	s.mu.Lock()
	defer s.mu.Unlock()
	out := []api.Domain{}
	for _, d := range s.domains {
		if d.Public || (user != nil && user.IsAdmin) {
			out = append(out, d)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateDomain(w http.ResponseWriter, r *http.Request) {
	user := s.authedUser(r)
	if user == nil || !user.IsAdmin {
		writeMessage(w, http.StatusUnauthorized, "You are not allowed to perform this action.")
		return
	}

	var req api.CreateDomainRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request.")
		return
	}
	host, err := validate.StripProtocol(req.Domain)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Provided domain is not a valid URL.")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.domains {
		if d.Domain == host {
			writeMessage(w, http.StatusConflict, "Domain already exists.")
			return
		}
	}

	d := api.Domain{
		ID:        s.nextDomainID,
		Domain:    host,
		Public:    req.Public,
		CreatedAt: now(),
		UpdatedAt: now(),
	}
	s.nextDomainID++
	s.domains = append(s.domains, d)

	writeJSON(w, http.StatusCreated, d)
}

func (s *Server) handleUpdateDomain(w http.ResponseWriter, r *http.Request) {
	user := s.authedUser(r)
	if user == nil || !user.IsAdmin {
		writeMessage(w, http.StatusUnauthorized, "You are not allowed to perform this action.")
		return
	}
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid id.")
		return
	}

	var req api.UpdateDomainRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request.")
		return
	}

	var host string
	if req.Domain != nil {
		host, err = validate.StripProtocol(*req.Domain)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "Provided domain is not a valid URL.")
			return
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	var target *api.Domain
	for i := range s.domains {
		if s.domains[i].ID == id {
			target = &s.domains[i]
			break
		}
	}
	if target == nil {
		writeMessage(w, http.StatusNotFound, "Domain not found")
		return
	}
	if host != "" {
		for _, d := range s.domains {
			if d.ID != id && d.Domain == host {
				writeMessage(w, http.StatusConflict, "Domain already exists.")
				return
			}
		}
		target.Domain = host
	}
	if req.Public != nil {
		target.Public = *req.Public
	}
	target.UpdatedAt = now()
	writeMessage(w, http.StatusOK, "Updated.")
}

func (s *Server) handleDeleteDomain(w http.ResponseWriter, r *http.Request) {
	user := s.authedUser(r)
	if user == nil || !user.IsAdmin {
		writeMessage(w, http.StatusUnauthorized, "You are not allowed to perform this action.")
		return
	}
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid id.")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, d := range s.domains {
		if d.ID != id {
			continue
		}
		if d.Domain == s.baseDom {
			writeMessage(w, http.StatusForbidden, "You are not allowed to delete the base url.")
			return
		}
		s.domains = append(s.domains[:i], s.domains[i+1:]...)
		writeMessage(w, http.StatusOK, "Domain deleted.")
		return
	}
	writeMessage(w, http.StatusNotFound, "Domain not found")
}

func (s *Server) handleSetup(w http.ResponseWriter, r *http.Request) {
	var cfg api.SetupConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request.")
		return
	}

	var errs []string
	if cfg.DB == nil || cfg.DB.URL == "" {
		errs = append(errs, "db.url is required")
	}
	if cfg.App == nil || cfg.App.BaseURL == "" {
		errs = append(errs, "app.base_url is required")
	}
	if cfg.Security == nil || cfg.Security.JWTSecret == "" {
		errs = append(errs, "security.jwt_secret is required")
	}
	if len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, struct {
			Errors []string `json:"errors"`
		}{Errors: errs})
		return
	}

	s.mu.Lock()
	s.cfg.BaseURL = cfg.App.BaseURL
	s.cfg.AllowAnonymousShorten = cfg.App.AllowAnonymousShorten
	s.cfg.AllowRegistering = cfg.App.AllowRegistering
	s.cfg.MinPasswordStrength = cfg.Security.MinPasswordStrength
	s.cfg.SetupDone = true
	if host, err := validate.StripProtocol(cfg.App.BaseURL); err == nil {
		s.baseDom = host
	}
	s.mu.Unlock()

	writeMessage(w, http.StatusOK, "OK. Restarting.")
}

func newSlug() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
}
