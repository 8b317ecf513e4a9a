// Package state holds the resource state containers: in-memory
// owners of the server-backed entities the dashboard works with.
// Each container exclusively owns its list and pagination fields and
// patches them locally only after server confirmation.
package state

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/ebelousov/linkdash/internal/api"
)

// fetchPage loads one page of a paginated resource from the server.
type fetchPage[T any] func(ctx context.Context, page, perPage int) (*api.Paginated[T], error)

// DefaultPerPage is the page size used before the user picks one.
const DefaultPerPage = 10

// paged is the container core shared by Links and Domains: the
// current page's items, the pagination fields and the last read
// error. Responses are tagged with a request generation; a slow
// response that was overtaken by a newer request is discarded
// instead of overwriting newer data with stale data.
type paged[T any] struct {
	mu      sync.Mutex
	items   []T // nil until the first successful load
	pg      Pagination
	gen     uint64
	fetch   fetchPage[T]
	lastErr error
	log     *zap.Logger
}

func newPaged[T any](fetch fetchPage[T], perPage int, log *zap.Logger) *paged[T] {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &paged[T]{
		pg:    Pagination{Page: 1, PerPage: perPage},
		fetch: fetch,
		log:   log,
	}
}

// Loaded reports whether the first page fetch has completed.
func (p *paged[T]) Loaded() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.items != nil
}

// Items returns a copy of the current page's items. Nil before the
// first successful load.
func (p *paged[T]) Items() []T {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.items == nil {
		return nil
	}
	out := make([]T, len(p.items))
	copy(out, p.items)
	return out
}

// Pagination returns the current pagination fields.
func (p *paged[T]) Pagination() Pagination {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pg
}

// Err returns the error recorded by the last failed page fetch, or
// nil once a fetch succeeds again.
func (p *paged[T]) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

// EnsureLoaded fetches the first page if nothing is loaded yet.
func (p *paged[T]) EnsureLoaded(ctx context.Context) error {
	if p.Loaded() {
		return nil
	}
	return p.Refresh(ctx)
}

// Refresh re-fetches the current page and replaces items and total
// count atomically. A response belonging to an outdated request is
// dropped without touching the container.
func (p *paged[T]) Refresh(ctx context.Context) error {
	p.mu.Lock()
	p.gen++
	gen := p.gen
	page, perPage := p.pg.Page, p.pg.PerPage
	p.mu.Unlock()

	res, err := p.fetch(ctx, page, perPage)

	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.gen {
		p.log.Debug("discarding stale page response", zap.Uint64("gen", gen))
		return nil
	}
	if err != nil {
		p.lastErr = err
		return err
	}
	items := res.Items
	if items == nil {
		items = []T{}
	}
	p.items = items
	p.pg.TotalCount = res.TotalCount
	p.lastErr = nil
	return nil
}

// SetPage navigates to the given page (clamped) and re-fetches.
func (p *paged[T]) SetPage(ctx context.Context, page int) error {
	p.mu.Lock()
	p.pg.Page = p.pg.ClampPage(page)
	p.mu.Unlock()
	return p.Refresh(ctx)
}

// SetPerPage changes the page size, resets to page 1 and re-fetches.
func (p *paged[T]) SetPerPage(ctx context.Context, perPage int) error {
	if perPage < 1 {
		perPage = 1
	}
	p.mu.Lock()
	p.pg.PerPage = perPage
	p.pg.Page = 1
	p.mu.Unlock()
	return p.Refresh(ctx)
}

// prepend inserts a freshly created item at the head of the list and
// bumps the total count. Called only after server confirmation.
func (p *paged[T]) prepend(item T) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.items = append([]T{item}, p.items...)
	p.pg.TotalCount++
}

// removeWhere filters out items matching the predicate and decrements
// the total count per removal. Deleting the last item of a page past
// page 1 intentionally leaves Page unchanged: the empty page persists
// until the user navigates back.
func (p *paged[T]) removeWhere(match func(T) bool) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	kept := p.items[:0]
	removed := 0
	for _, it := range p.items {
		if match(it) {
			removed++
			continue
		}
		kept = append(kept, it)
	}
	p.items = kept
	p.pg.TotalCount -= removed
	return removed
}

// replaceWhere swaps the first item matching the predicate. Used
// after a server-confirmed update; no rollback logic exists because
// nothing is patched before confirmation.
func (p *paged[T]) replaceWhere(match func(T) bool, item T) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, it := range p.items {
		if match(it) {
			p.items[i] = item
			return true
		}
	}
	return false
}
