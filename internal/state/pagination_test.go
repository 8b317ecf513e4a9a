package state

import "testing"

func TestPagination_TotalPages(t *testing.T) {
	tests := []struct {
		total, perPage, want int
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{95, 10, 10},
		{5, 0, 0},
	}
	for _, tt := range tests {
		p := Pagination{PerPage: tt.perPage, TotalCount: tt.total}
		if got := p.TotalPages(); got != tt.want {
			t.Errorf("TotalPages(%d/%d) = %d; want %d", tt.total, tt.perPage, got, tt.want)
		}
	}
}

func TestPagination_ClampPage(t *testing.T) {
	p := Pagination{PerPage: 10, TotalCount: 35}
	tests := []struct{ in, want int }{
		{-3, 1},
		{0, 1},
		{1, 1},
		{4, 4},
		{5, 4},
		{100, 4},
	}
	for _, tt := range tests {
		if got := p.ClampPage(tt.in); got != tt.want {
			t.Errorf("ClampPage(%d) = %d; want %d", tt.in, got, tt.want)
		}
	}

	// empty list clamps everything to 1
	empty := Pagination{PerPage: 10}
	if got := empty.ClampPage(7); got != 1 {
		t.Errorf("empty ClampPage(7) = %d; want 1", got)
	}
}
