package api

// Link is a shortened link as returned by the server. The domain
// field carries the hostname of the domain the link was created on.
type Link struct {
	ID           int     `json:"id"`
	DomainID     int     `json:"domain_id"`
	Domain       string  `json:"domain,omitempty"`
	Slug         string  `json:"slug"`
	CustomSlug   *string `json:"custom_slug,omitempty"`
	OriginalLink string  `json:"original_link"`
	OwnerID      *int    `json:"owner_id,omitempty"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
	DeletedAt    *string `json:"deleted_at,omitempty"`
}

// EffectiveSlug returns the custom slug when one is set, otherwise
// the generated one. Deletion is keyed on this value.
func (l Link) EffectiveSlug() string {
	if l.CustomSlug != nil && *l.CustomSlug != "" {
		return *l.CustomSlug
	}
	return l.Slug
}

// Domain is a custom domain registered with the shortener.
type Domain struct {
	ID        int     `json:"id"`
	Domain    string  `json:"domain"`
	Public    bool    `json:"public"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
	DeletedAt *string `json:"deleted_at,omitempty"`
}

// User is the sanitized session user returned by /api/user/me and
// inside the login response. Password material never reaches the client.
type User struct {
	ID         int     `json:"id"`
	Username   string  `json:"username"`
	Email      string  `json:"email"`
	IsAdmin    bool    `json:"is_admin"`
	VerifiedAt *string `json:"verified_at,omitempty"`
	CreatedAt  string  `json:"created_at"`
	DeletedAt  *string `json:"deleted_at,omitempty"`
}

// ServerConfig describes the server-side feature flags fetched once
// per session from /api/config.
type ServerConfig struct {
	AllowAnonymousShorten bool   `json:"allow_anonymous_shorten"`
	AllowRegistering      bool   `json:"allow_registering"`
	MinPasswordStrength   int    `json:"min_password_strength"`
	BaseURL               string `json:"base_url"`
	SetupDone             bool   `json:"setup_done"`
}

// LoginResponse is returned by /api/user/login.
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// RegisteredUser is returned by /api/user/register.
type RegisteredUser struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// PasswordFeedback carries the strength-estimator hints for a
// rejected candidate password.
type PasswordFeedback struct {
	Warning          *string  `json:"warning,omitempty"`
	WarningString    *string  `json:"warning_string,omitempty"`
	Suggestions      []string `json:"suggestions,omitempty"`
	SuggestionString *string  `json:"suggestion_string,omitempty"`
}

// PasswordCheck is the score response of /api/user/password.
type PasswordCheck struct {
	Score    int               `json:"score"`
	Feedback *PasswordFeedback `json:"feedback,omitempty"`
}

// Message is the generic `{"message": ...}` success body used by
// endpoints that return no resource.
type Message struct {
	Message string `json:"message"`
}

// Paginated is the shared list shape `{items, total_count}` produced
// by every paginated endpoint.
type Paginated[T any] struct {
	Items      []T `json:"items"`
	TotalCount int `json:"total_count"`
}

// ShortenRequest is the body of POST /api/link/shorten.
type ShortenRequest struct {
	Link       string  `json:"link"`
	DomainID   int     `json:"domain_id"`
	CustomSlug *string `json:"custom_slug,omitempty"`
}

// CreateDomainRequest is the body of POST /api/domains/create.
type CreateDomainRequest struct {
	Domain string `json:"domain"`
	Public bool   `json:"public"`
}

// UpdateDomainRequest is the body of PUT /api/domains/{id}.
// Nil fields are left untouched by the server.
type UpdateDomainRequest struct {
	Domain *string `json:"domain,omitempty"`
	Public *bool   `json:"public,omitempty"`
}

// RegisterRequest is the body of POST /api/user/register.
type RegisterRequest struct {
	Username        string `json:"username"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	Email           string `json:"email"`
	ConfirmEmail    string `json:"confirm_email"`
}

// LoginRequest is the body of POST /api/user/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ChangePasswordRequest is the body of POST /api/user/me/password.
type ChangePasswordRequest struct {
	Password        string `json:"password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

// UpdateUserRequest is the body of POST /api/user/me/update.
type UpdateUserRequest struct {
	Username *string `json:"username,omitempty"`
	Email    *string `json:"email,omitempty"`
}

// SetupConfig is the nested first-run configuration submitted to
// /api/setup/set. Sections mirror the server's config file.
type SetupConfig struct {
	DB       *SetupDB       `json:"db,omitempty"`
	App      *SetupApp      `json:"app,omitempty"`
	Security *SetupSecurity `json:"security,omitempty"`
	SMTP     *SetupSMTP     `json:"smtp,omitempty"`
	Setup    SetupDone      `json:"setup"`
}

type SetupDB struct {
	URL string `json:"url"`
}

type SetupApp struct {
	ShortenedLinkLength      int    `json:"shortened_link_length"`
	AllowAnonymousShorten    bool   `json:"allow_anonymous_shorten"`
	AllowRegistering         bool   `json:"allow_registering"`
	BaseURL                  string `json:"base_url"`
	EnableEmailVerification  bool   `json:"enable_email_verification"`
	EmailVerificationTTL     string `json:"email_verification_ttl"`
}

type SetupSecurity struct {
	JWTSecret           string `json:"jwt_secret"`
	MinPasswordStrength int    `json:"min_password_strength"`
}

type SetupSMTP struct {
	Enabled  bool    `json:"enabled"`
	Username *string `json:"username,omitempty"`
	Password *string `json:"password,omitempty"`
	From     *string `json:"from,omitempty"`
	Host     *string `json:"host,omitempty"`
	Port     *int    `json:"port,omitempty"`
}

type SetupDone struct {
	SetupDone bool `json:"setup_done"`
}
