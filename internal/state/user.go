package state

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/ebelousov/linkdash/internal/api"
	"github.com/ebelousov/linkdash/internal/notify"
	"github.com/ebelousov/linkdash/internal/session"
	"github.com/ebelousov/linkdash/internal/validate"
)

// LoginPath is where unauthenticated viewers are sent.
const LoginPath = "/dash/login"

// Navigator abstracts page navigation so the container can redirect
// without knowing the UI. Path reports the page currently shown.
type Navigator interface {
	Path() string
	Navigate(target string)
}

// Session is the singleton current-user container: it owns the
// session user, the login/logout/registration lifecycle and the
// redirect bookkeeping the auth gate reads.
type Session struct {
	mu              sync.Mutex
	user            *api.User
	err             string
	redirectMessage string
	deleting        bool

	registration Creation
	onUserChange func(ctx context.Context)

	api      *api.API
	store    *session.Store
	nav      Navigator
	notifier *notify.Notifier
	log      *zap.Logger
}

// NewSession builds the current-user container.
func NewSession(a *api.API, store *session.Store, nav Navigator, notifier *notify.Notifier, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{api: a, store: store, nav: nav, notifier: notifier, log: log}
}

// User returns the cached session user, or nil before FetchMe
// resolves (and after logout).
func (s *Session) User() *api.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// Err returns the message of the last failed session operation.
func (s *Session) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// RedirectMessage returns the banner shown on the login page after a
// forced redirect ("Please login again.", "Registered, please login!").
func (s *Session) RedirectMessage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.redirectMessage
}

// Deleting reports whether an account deletion is in flight; the UI
// renders a blocking spinner while true.
func (s *Session) Deleting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleting
}

// Registration exposes the registration state machine.
func (s *Session) Registration() *Creation {
	return &s.registration
}

// OnUserChange registers fn to run whenever the session user changes:
// after a successful login, after logout and when FetchMe resolves.
// Dependent containers (the domain selection list, which admins see
// more of) hook their refresh here. Call before the session is used.
func (s *Session) OnUserChange(fn func(ctx context.Context)) {
	s.onUserChange = fn
}

func (s *Session) userChanged(ctx context.Context) {
	if s.onUserChange != nil {
		s.onUserChange(ctx)
	}
}

// FetchMe resolves the current session user. A 401 records the page
// the user was trying to reach as the redirect target, clears the
// logged-in marker and navigates to the login page.
func (s *Session) FetchMe(ctx context.Context) error {
	user, err := s.api.Me(ctx)
	if err != nil {
		s.mu.Lock()
		s.err = errMessage(err)
		s.mu.Unlock()

		if api.IsUnauthorized(err) {
			s.mu.Lock()
			s.redirectMessage = "Please login again."
			s.mu.Unlock()
			if storeErr := s.store.SetRedirectTo(s.nav.Path()); storeErr != nil {
				s.log.Warn("persist redirect target", zap.Error(storeErr))
			}
			if storeErr := s.store.ClearLoggedIn(); storeErr != nil {
				s.log.Warn("clear logged-in marker", zap.Error(storeErr))
			}
			s.nav.Navigate(LoginPath)
		}
		return err
	}

	s.mu.Lock()
	s.user = user
	s.err = ""
	s.mu.Unlock()
	s.userChanged(ctx)
	return nil
}

// Login authenticates, stores the user and token, and consumes a
// previously recorded redirect target if one exists.
func (s *Session) Login(ctx context.Context, email, password string) error {
	res, err := s.api.Login(ctx, email, password)
	if err != nil {
		s.mu.Lock()
		s.err = errMessage(err)
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	s.user = &res.User
	s.err = ""
	s.redirectMessage = ""
	s.mu.Unlock()

	if err := s.store.SetLoggedIn(res.Token); err != nil {
		s.log.Warn("persist logged-in marker", zap.Error(err))
	}
	s.userChanged(ctx)

	if target := s.store.RedirectTo(); target != "" {
		if err := s.store.SetRedirectTo(""); err != nil {
			s.log.Warn("clear redirect target", zap.Error(err))
		}
		s.nav.Navigate(target)
	}
	return nil
}

// Logout clears the local session first and then tells the server,
// best effort: a failed request is logged and notified but the local
// state stays cleared, the session is over client-side either way.
func (s *Session) Logout(ctx context.Context, navigate bool) {
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()

	if err := s.store.ClearLoggedIn(); err != nil {
		s.log.Warn("clear logged-in marker", zap.Error(err))
	}

	if err := s.api.Logout(ctx); err != nil {
		s.log.Error("logout request failed", zap.Error(err))
		s.notifier.Error("Failed to log out on the server.")
	}
	s.userChanged(ctx)

	if navigate {
		s.nav.Navigate(LoginPath)
	}
}

// DeleteAccount deletes the account, then performs the logout steps
// without navigating and finally redirects to the login page with a
// confirmation message.
func (s *Session) DeleteAccount(ctx context.Context) error {
	s.mu.Lock()
	s.deleting = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.deleting = false
		s.mu.Unlock()
	}()

	if err := s.api.DeleteMe(ctx); err != nil {
		s.notifier.Error(fmt.Sprintf("Failed to delete account: %s", errMessage(err)))
		return err
	}

	s.Logout(ctx, false)

	s.mu.Lock()
	s.redirectMessage = "Your account has been deleted."
	s.mu.Unlock()
	s.nav.Navigate(LoginPath)
	return nil
}

// Register creates an account. Mismatched fields and invalid emails
// are rejected before any network call without touching the
// registration machine; only server failures drive it.
func (s *Session) Register(ctx context.Context, req api.RegisterRequest) error {
	if req.Email != req.ConfirmEmail {
		return errors.New("emails don't match")
	}
	if req.Password != req.ConfirmPassword {
		return errors.New("passwords don't match")
	}
	if !validate.IsEmail(req.Email) {
		return errors.New("invalid email")
	}

	s.registration.begin()

	if _, err := s.api.Register(ctx, req); err != nil {
		s.registration.fail(errMessage(err))
		return err
	}

	s.registration.succeed()
	s.notifier.Success("Registered!")

	s.mu.Lock()
	s.redirectMessage = "Registered, please login!"
	s.mu.Unlock()
	s.nav.Navigate(LoginPath)
	return nil
}

// CheckPassword scores a candidate password against the server's
// estimator and compares it to the configured minimum strength.
func (s *Session) CheckPassword(ctx context.Context, password string, minStrength int) (bool, *api.PasswordCheck, error) {
	check, err := s.api.CheckPassword(ctx, password)
	if err != nil {
		return false, nil, err
	}
	return check.Score >= minStrength, check, nil
}

// ChangePassword replaces the current password. Mismatched
// confirmation fails before the network call.
func (s *Session) ChangePassword(ctx context.Context, current, next, confirm string) error {
	if next != confirm {
		return errors.New("passwords don't match")
	}
	if err := s.api.ChangePassword(ctx, api.ChangePasswordRequest{
		Password:        current,
		NewPassword:     next,
		ConfirmPassword: confirm,
	}); err != nil {
		s.notifier.Error(fmt.Sprintf("Failed to change password: %s", errMessage(err)))
		return err
	}
	s.notifier.Success("Password updated.")
	return nil
}

// UpdateProfile changes username and/or email and patches the cached
// user after the server confirms.
func (s *Session) UpdateProfile(ctx context.Context, username, email *string) error {
	if email != nil && !validate.IsEmail(*email) {
		return errors.New("invalid email")
	}

	if err := s.api.UpdateProfile(ctx, api.UpdateUserRequest{Username: username, Email: email}); err != nil {
		s.notifier.Error(fmt.Sprintf("Failed to update profile: %s", errMessage(err)))
		return err
	}

	s.mu.Lock()
	if s.user != nil {
		if username != nil {
			s.user.Username = *username
		}
		if email != nil {
			s.user.Email = *email
		}
	}
	s.mu.Unlock()
	s.notifier.Success("Profile updated.")
	return nil
}
