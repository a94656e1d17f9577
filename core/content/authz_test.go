package content

import (
	"testing"

	"github.com/trezcool/walimu/core"
	"github.com/trezcool/walimu/core/user"
)

func TestAuthorize(t *testing.T) {
	admin := Subject{UserID: "u1", Role: user.RoleAdmin}
	owner := Subject{UserID: "u2", Role: user.RoleTeacher, ProfileID: "p2"}
	other := Subject{UserID: "u3", Role: user.RoleTeacher, ProfileID: "p3"}
	orphan := Subject{UserID: "u4", Role: user.RoleTeacher} // no profile

	tests := []struct {
		name    string
		sub     Subject
		owner   string
		wantErr bool
	}{
		{name: "admin passes on any item", sub: admin, owner: "p2"},
		{name: "owner passes", sub: owner, owner: "p2"},
		{name: "other teacher denied", sub: other, owner: "p2", wantErr: true},
		{name: "teacher without profile denied", sub: orphan, owner: "p2", wantErr: true},
		{name: "empty owner never matches", sub: orphan, owner: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Authorize(tt.sub, tt.owner)
			if (err != nil) != tt.wantErr {
				t.Errorf("Authorize() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				if _, ok := err.(*core.ForbiddenError); !ok {
					t.Errorf("Authorize() error type = %T; want *core.ForbiddenError", err)
				}
			}
		})
	}
}

func TestResolveOwner(t *testing.T) {
	admin := Subject{UserID: "u1", Role: user.RoleAdmin}
	teacher := Subject{UserID: "u2", Role: user.RoleTeacher, ProfileID: "p2"}
	orphan := Subject{UserID: "u4", Role: user.RoleTeacher}

	tests := []struct {
		name    string
		sub     Subject
		payload string
		want    string
		wantErr bool
	}{
		{name: "teacher always owns", sub: teacher, payload: "", want: "p2"},
		{name: "teacher payload owner ignored", sub: teacher, payload: "p9", want: "p2"},
		{name: "teacher without profile rejected", sub: orphan, payload: "p9", wantErr: true},
		{name: "admin must name the owner", sub: admin, payload: "", wantErr: true},
		{name: "admin payload owner honored", sub: admin, payload: "p9", want: "p9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveOwner(tt.sub, tt.payload)
			if (err != nil) != tt.wantErr {
				t.Fatalf("resolveOwner() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("resolveOwner() = %q, want %q", got, tt.want)
			}
		})
	}
}
