package state

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ebelousov/linkdash/internal/api"
	"github.com/ebelousov/linkdash/internal/notify"
	"github.com/ebelousov/linkdash/internal/validate"
)

// Links owns the current user's paginated link list.
type Links struct {
	*paged[api.Link]

	api      *api.API
	creation Creation
	notifier *notify.Notifier
	log      *zap.Logger
}

// NewLinks builds the link container. notifier receives delete
// outcomes; creation feedback is read from Creation().
func NewLinks(a *api.API, notifier *notify.Notifier, perPage int, log *zap.Logger) *Links {
	if log == nil {
		log = zap.NewNop()
	}
	l := &Links{
		api:      a,
		notifier: notifier,
		log:      log,
	}
	l.paged = newPaged(func(ctx context.Context, page, perPage int) (*api.Paginated[api.Link], error) {
		return a.MyLinks(ctx, page, perPage)
	}, perPage, log)
	return l
}

// Creation exposes the link-creation state machine for UI banners.
func (l *Links) Creation() *Creation {
	return &l.creation
}

// Shorten creates a new link. The item is prepended to the list only
// after the server confirms; the page is not re-fetched, so callers
// must not trigger a refresh right after or the item shows up twice.
// Form validation failures are returned directly and never touch the
// creation machine: it only moves around the actual request.
func (l *Links) Shorten(ctx context.Context, link string, domainID int, customSlug string) (*api.Link, error) {
	if !validate.IsURL(link) {
		return nil, errors.New("provided link is not a valid URL")
	}

	l.creation.begin()

	req := api.ShortenRequest{Link: link, DomainID: domainID}
	if customSlug != "" {
		req.CustomSlug = &customSlug
	}

	created, err := l.api.Shorten(ctx, req)
	if err != nil {
		l.creation.fail(errMessage(err))
		return nil, err
	}

	l.prepend(*created)
	l.creation.succeed()
	l.log.Info("link created", zap.String("slug", created.EffectiveSlug()))
	return created, nil
}

// Delete removes a link by slug and filters it out of the list after
// the server confirms. Failures surface as a transient notification
// and leave the list untouched.
func (l *Links) Delete(ctx context.Context, slug string) error {
	if err := l.api.DeleteLink(ctx, slug); err != nil {
		l.notifier.Error(fmt.Sprintf("Failed to delete link: %s", errMessage(err)))
		return err
	}

	l.removeWhere(func(link api.Link) bool {
		return link.Slug == slug || link.EffectiveSlug() == slug
	})
	l.notifier.Success("Link deleted.")
	return nil
}

// errMessage extracts the server-supplied message from an APIError,
// falling back to the plain error text.
func errMessage(err error) string {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		if len(apiErr.Errors) > 0 {
			return fmt.Sprintf("%v", apiErr.Errors)
		}
		return apiErr.Message
	}
	return err.Error()
}
