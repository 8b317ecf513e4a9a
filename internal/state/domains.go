package state

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/ebelousov/linkdash/internal/api"
	"github.com/ebelousov/linkdash/internal/notify"
	"github.com/ebelousov/linkdash/internal/validate"
)

// ErrBaseDomain is returned when a mutation targets the domain the
// server's base URL points at. The guard is client-side: the request
// is never issued.
var ErrBaseDomain = errors.New("the base domain cannot be modified")

// Domains owns the admin's paginated domain list.
type Domains struct {
	*paged[api.Domain]

	api      *api.API
	creation Creation
	notifier *notify.Notifier
	log      *zap.Logger

	baseMu     sync.Mutex
	baseDomain string
}

// NewDomains builds the domain container.
func NewDomains(a *api.API, notifier *notify.Notifier, perPage int, log *zap.Logger) *Domains {
	if log == nil {
		log = zap.NewNop()
	}
	d := &Domains{
		api:      a,
		notifier: notifier,
		log:      log,
	}
	d.paged = newPaged(func(ctx context.Context, page, perPage int) (*api.Paginated[api.Domain], error) {
		return a.Domains(ctx, page, perPage)
	}, perPage, log)
	return d
}

// SetBaseURL records the server's configured base URL so the matching
// domain can be fenced off from updates and deletes.
func (d *Domains) SetBaseURL(baseURL string) {
	host, err := validate.StripProtocol(baseURL)
	if err != nil {
		d.log.Warn("unparseable base URL", zap.String("base_url", baseURL), zap.Error(err))
		return
	}
	d.baseMu.Lock()
	d.baseDomain = host
	d.baseMu.Unlock()
}

// CanModify reports whether the domain may be updated or deleted from
// this client. False exactly for the base domain.
func (d *Domains) CanModify(dom api.Domain) bool {
	d.baseMu.Lock()
	defer d.baseMu.Unlock()
	return d.baseDomain == "" || dom.Domain != d.baseDomain
}

// Creation exposes the domain-creation state machine for UI banners.
func (d *Domains) Creation() *Creation {
	return &d.creation
}

// Create registers a new domain, prepending it to the list after
// server confirmation. An unparseable hostname is rejected directly
// without touching the creation machine.
func (d *Domains) Create(ctx context.Context, domain string, public bool) (*api.Domain, error) {
	if _, err := validate.StripProtocol(domain); err != nil {
		return nil, errors.New("provided domain is not a valid URL")
	}

	d.creation.begin()

	created, err := d.api.CreateDomain(ctx, api.CreateDomainRequest{Domain: domain, Public: public})
	if err != nil {
		d.creation.fail(errMessage(err))
		return nil, err
	}

	d.prepend(*created)
	d.creation.succeed()
	d.log.Info("domain created", zap.String("domain", created.Domain))
	return created, nil
}

// Update changes a domain's hostname and/or public flag. On success
// the matching item is replaced in place with the confirmed values;
// on failure the list is left unchanged and a notification fires.
func (d *Domains) Update(ctx context.Context, id int, domain *string, public *bool) error {
	current, ok := d.byID(id)
	if !ok {
		return fmt.Errorf("domain %d is not in the current page", id)
	}
	if !d.CanModify(current) {
		return ErrBaseDomain
	}

	if err := d.api.UpdateDomain(ctx, id, api.UpdateDomainRequest{Domain: domain, Public: public}); err != nil {
		d.notifier.Error(fmt.Sprintf("Failed to update domain: %s", errMessage(err)))
		return err
	}

	updated := current
	if domain != nil {
		if host, err := validate.StripProtocol(*domain); err == nil {
			updated.Domain = host
		} else {
			updated.Domain = *domain
		}
	}
	if public != nil {
		updated.Public = *public
	}
	d.replaceWhere(func(dom api.Domain) bool { return dom.ID == id }, updated)
	d.notifier.Success("Domain updated.")
	return nil
}

// Delete removes a domain. The base domain is refused locally without
// issuing a request.
func (d *Domains) Delete(ctx context.Context, id int) error {
	if current, ok := d.byID(id); ok && !d.CanModify(current) {
		return ErrBaseDomain
	}

	if err := d.api.DeleteDomain(ctx, id); err != nil {
		d.notifier.Error(fmt.Sprintf("Failed to delete domain: %s", errMessage(err)))
		return err
	}

	d.removeWhere(func(dom api.Domain) bool { return dom.ID == id })
	d.notifier.Success("Domain deleted.")
	return nil
}

func (d *Domains) byID(id int) (api.Domain, bool) {
	for _, dom := range d.Items() {
		if dom.ID == id {
			return dom, true
		}
	}
	return api.Domain{}, false
}
