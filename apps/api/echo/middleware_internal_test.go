package echoapi

import "testing"

func Test_pathHasPrefix(t *testing.T) {
	tests := []struct {
		path   string
		prefix string
		want   bool
	}{
		{"/dashboard", "/dashboard", true},
		{"/dashboard/admin", "/dashboard", true},
		{"/dashboard/admin/users", "/dashboard/admin", true},
		{"/dashboard-public", "/dashboard", false},
		{"/dashboardian", "/dashboard", false},
		{"/api/users", "/dashboard", false},
		{"/dashboard/teacher", "/dashboard/admin", false},
	}
	for _, tt := range tests {
		if got := pathHasPrefix(tt.path, tt.prefix); got != tt.want {
			t.Errorf("pathHasPrefix(%q, %q) = %v, want %v", tt.path, tt.prefix, got, tt.want)
		}
	}
}
