package state

// Pagination is the shared pagination shape implemented identically
// by every paginated container. Page is 1-based.
type Pagination struct {
	Page       int
	PerPage    int
	TotalCount int
}

// TotalPages is ceil(TotalCount / PerPage). An empty list yields 0,
// rendered as "1 of 0" with the controls disabled.
func (p Pagination) TotalPages() int {
	if p.PerPage <= 0 {
		return 0
	}
	return (p.TotalCount + p.PerPage - 1) / p.PerPage
}

// ClampPage bounds a requested page to [1, max(1, TotalPages)].
func (p Pagination) ClampPage(page int) int {
	if page < 1 {
		return 1
	}
	if total := p.TotalPages(); total > 0 && page > total {
		return total
	}
	if p.TotalPages() == 0 && page > 1 {
		return 1
	}
	return page
}
