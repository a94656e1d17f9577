package core

import "testing"

func TestCleanString(t *testing.T) {
	if got := CleanString("  Hello There "); got != "Hello There" {
		t.Errorf("CleanString() = %q", got)
	}
	if got := CleanString("  HeLLo ", true); got != "hello" {
		t.Errorf("CleanString(lower) = %q", got)
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Jane Awe", "jane-awe"},
		{"  Prof.  Lumumba Jr. ", "prof-lumumba-jr"},
		{"déjà vu", "d-j-vu"},
		{"---", ""},
		{"Already-Slugged", "already-slugged"},
		{"a  b   c", "a-b-c"},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPaginationClean(t *testing.T) {
	tests := []struct {
		name              string
		in                Pagination
		wantPage, wantLim int
		wantOffset        int
	}{
		{name: "defaults", in: Pagination{}, wantPage: 1, wantLim: DefaultPageSize, wantOffset: 0},
		{name: "negative page", in: Pagination{Page: -3, Limit: 10}, wantPage: 1, wantLim: 10, wantOffset: 0},
		{name: "limit capped", in: Pagination{Page: 2, Limit: 9999}, wantPage: 2, wantLim: MaxPageSize, wantOffset: MaxPageSize},
		{name: "plain", in: Pagination{Page: 3, Limit: 10}, wantPage: 3, wantLim: 10, wantOffset: 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.in
			p.Clean()
			if p.Page != tt.wantPage || p.Limit != tt.wantLim {
				t.Errorf("Clean() = %+v; want page=%d limit=%d", p, tt.wantPage, tt.wantLim)
			}
			if got := p.Offset(); got != tt.wantOffset {
				t.Errorf("Offset() = %d; want %d", got, tt.wantOffset)
			}
		})
	}
}

func TestNewPageMeta(t *testing.T) {
	tests := []struct {
		name      string
		p         Pagination
		total     int
		wantPages int
	}{
		{name: "exact fit", p: Pagination{Page: 1, Limit: 10}, total: 20, wantPages: 2},
		{name: "remainder adds a page", p: Pagination{Page: 1, Limit: 10}, total: 21, wantPages: 3},
		{name: "empty", p: Pagination{Page: 1, Limit: 10}, total: 0, wantPages: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := NewPageMeta(tt.p, tt.total)
			if meta.TotalPages != tt.wantPages {
				t.Errorf("TotalPages = %d; want %d", meta.TotalPages, tt.wantPages)
			}
			if meta.Total != tt.total || meta.Page != tt.p.Page || meta.Limit != tt.p.Limit {
				t.Errorf("meta = %+v", meta)
			}
		})
	}
}
