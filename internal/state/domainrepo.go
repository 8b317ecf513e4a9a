package state

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/ebelousov/linkdash/internal/api"
)

// DomainRepository holds the unpaginated domain list backing the
// domain-selection widget on the shorten form. Admins see more
// domains than regular users, so its Refresh is hooked into
// Session.OnUserChange.
type DomainRepository struct {
	mu      sync.Mutex
	domains []api.Domain
	lastErr error

	api *api.API
	log *zap.Logger
}

// NewDomainRepository builds the selection-widget domain container.
func NewDomainRepository(a *api.API, log *zap.Logger) *DomainRepository {
	if log == nil {
		log = zap.NewNop()
	}
	return &DomainRepository{api: a, log: log}
}

// Refresh replaces the cached list with the server's current one.
func (r *DomainRepository) Refresh(ctx context.Context) error {
	domains, err := r.api.AllDomains(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.lastErr = err
		return err
	}
	if domains == nil {
		domains = []api.Domain{}
	}
	r.domains = domains
	r.lastErr = nil
	return nil
}

// Domains returns a copy of the cached list. Empty until the first
// successful Refresh.
func (r *DomainRepository) Domains() []api.Domain {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]api.Domain, len(r.domains))
	copy(out, r.domains)
	return out
}

// Err returns the error from the last failed Refresh, if any.
func (r *DomainRepository) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastErr
}
