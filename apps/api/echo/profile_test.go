package echoapi_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/trezcool/walimu/core/profile"
	"github.com/trezcool/walimu/core/user"
	testutil "github.com/trezcool/walimu/tests"
)

type profileListResponse struct {
	Data []profile.Profile `json:"data"`
	Meta struct {
		Total      int `json:"total"`
		Page       int `json:"page"`
		Limit      int `json:"limit"`
		TotalPages int `json:"total_pages"`
	} `json:"meta"`
}

func Test_profileApi_query(t *testing.T) {
	app := setup(t)

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin1", "admin@test.cd", "LePassw0rd", user.RoleAdmin, true)
	var profs []profile.Profile
	names := []string{"Jane Awe", "King Mo", "Prof Lumumba", "Dr Kabeya", "Mme Tshala"}
	for i, name := range names {
		_, prof := testutil.CreateTeacher(t, usrRepo, profRepo, name, "teacher0"+string(rune('1'+i)), name+"@test.cd", "LePassw0rd")
		profs = append(profs, prof)
	}

	adminToken := getToken(t, admin)

	get := func(t *testing.T, path string) profileListResponse {
		t.Helper()
		req, rec := newAuthRequest(http.MethodGet, path, adminToken)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
		}
		var resp profileListResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshalling response failed: %v", err)
		}
		return resp
	}

	t.Run("default page", func(t *testing.T) {
		resp := get(t, "/api/profiles")
		if len(resp.Data) != len(profs) {
			t.Errorf("len(data) = %d; want %d", len(resp.Data), len(profs))
		}
		if resp.Meta.Total != len(profs) || resp.Meta.Page != 1 || resp.Meta.Limit != 20 || resp.Meta.TotalPages != 1 {
			t.Errorf("meta = %+v; want total=%d page=1 limit=20 total_pages=1", resp.Meta, len(profs))
		}
		// newest first
		if resp.Data[0].ID != profs[len(profs)-1].ID {
			t.Errorf("data[0] = %q; want newest profile %q", resp.Data[0].ID, profs[len(profs)-1].ID)
		}
	})

	t.Run("small pages", func(t *testing.T) {
		resp := get(t, "/api/profiles?page=2&limit=2")
		if len(resp.Data) != 2 {
			t.Errorf("len(data) = %d; want 2", len(resp.Data))
		}
		if resp.Meta.Total != 5 || resp.Meta.Page != 2 || resp.Meta.Limit != 2 || resp.Meta.TotalPages != 3 {
			t.Errorf("meta = %+v; want total=5 page=2 limit=2 total_pages=3", resp.Meta)
		}
	})

	t.Run("page beyond range", func(t *testing.T) {
		resp := get(t, "/api/profiles?page=99&limit=2")
		if len(resp.Data) != 0 {
			t.Errorf("len(data) = %d; want 0", len(resp.Data))
		}
		if resp.Meta.Total != 5 {
			t.Errorf("meta.total = %d; want the true total 5", resp.Meta.Total)
		}
	})

	t.Run("search", func(t *testing.T) {
		resp := get(t, "/api/profiles?search=king")
		if len(resp.Data) != 1 || resp.Data[0].DisplayName != "King Mo" {
			t.Errorf("data = %+v; want only King Mo", resp.Data)
		}
	})
}

func Test_profileApi_retrieveMine(t *testing.T) {
	app := setup(t)

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin1", "admin@test.cd", "LePassw0rd", user.RoleAdmin, true)
	teacher, prof := testutil.CreateTeacher(t, usrRepo, profRepo, "Jane Awe", "janeawe", "jane@test.cd", "LePassw0rd")

	t.Run("teacher gets own profile", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/api/profiles/me", getToken(t, teacher))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, prof)}, rec)
	})

	t.Run("admin has no profile", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/api/profiles/me", getToken(t, admin))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Errorf("code = %v; want %v", rec.Code, http.StatusNotFound)
		}
	})
}

func Test_profileApi_update(t *testing.T) {
	app := setup(t)

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin1", "admin@test.cd", "LePassw0rd", user.RoleAdmin, true)
	jane, janeProf := testutil.CreateTeacher(t, usrRepo, profRepo, "Jane Awe", "janeawe", "jane@test.cd", "LePassw0rd")
	_, moProf := testutil.CreateTeacher(t, usrRepo, profRepo, "King Mo", "kingmo", "king@test.cd", "LePassw0rd")

	tests := []httpTest{
		{
			name: "owner can update", path: "/api/profiles/" + janeProf.ID, token: getToken(t, jane),
			body: marchallObj(t, map[string]string{"title": "Professor of Things"}), wantCode: http.StatusOK,
		},
		{
			name: "teacher cannot update another profile", path: "/api/profiles/" + moProf.ID, token: getToken(t, jane),
			body:     marchallObj(t, map[string]string{"title": "Hijacked"}),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errPermissionDenied),
		},
		{
			name: "admin can update any profile", path: "/api/profiles/" + moProf.ID, token: getToken(t, admin),
			body: marchallObj(t, map[string]string{"title": "Head of Department"}), wantCode: http.StatusOK,
		},
		{
			name: "bad slug rejected", path: "/api/profiles/" + janeProf.ID, token: getToken(t, jane),
			body:     marchallObj(t, map[string]string{"slug": "No Spaces Allowed"}),
			wantCode: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPut, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, httpTest{wantCode: tt.wantCode, wantData: tt.wantData}, rec)
		})
	}
}

func Test_profileApi_destroy(t *testing.T) {
	app := setup(t)

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin1", "admin@test.cd", "LePassw0rd", user.RoleAdmin, true)
	jane, janeProf := testutil.CreateTeacher(t, usrRepo, profRepo, "Jane Awe", "janeawe", "jane@test.cd", "LePassw0rd")

	t.Run("admin required", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/api/profiles/"+janeProf.ID, getToken(t, jane))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errPermissionDenied)}, rec)
	})

	t.Run("delete", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/api/profiles/"+janeProf.ID, getToken(t, admin))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Errorf("code = %v; want %v; body %s", rec.Code, http.StatusNoContent, rec.Body.String())
		}
	})
}
