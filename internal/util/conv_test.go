package util

import "testing"

func TestParsePagination(t *testing.T) {
	tests := []struct {
		name      string
		pageStr   string
		limitStr  string
		wantPage  int
		wantLimit int
	}{
		{"defaults pass through", "1", "20", 1, 20},
		{"explicit values", "3", "50", 3, 50},
		{"zero limit falls back", "1", "0", 1, 20},
		{"negative limit falls back", "1", "-5", 1, 20},
		{"zero page falls back", "0", "20", 1, 20},
		{"garbage falls back", "abc", "xyz", 1, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, limit := ParsePagination(tt.pageStr, tt.limitStr)
			if page != tt.wantPage || limit != tt.wantLimit {
				t.Fatalf("ParsePagination(%q, %q) = (%d, %d), want (%d, %d)",
					tt.pageStr, tt.limitStr, page, limit, tt.wantPage, tt.wantLimit)
			}
		})
	}
}

func TestTotalPages(t *testing.T) {
	tests := []struct {
		total int64
		limit int
		want  int
	}{
		{0, 20, 0},
		{1, 20, 1},
		{20, 20, 1},
		{21, 20, 2},
		{100, 7, 15},
		{10, 0, 0},
		{10, -1, 0},
	}
	for _, tt := range tests {
		if got := TotalPages(tt.total, tt.limit); got != tt.want {
			t.Errorf("TotalPages(%d, %d) = %d, want %d", tt.total, tt.limit, got, tt.want)
		}
	}
}
