package echoapi_test

import (
	"encoding/json"
	"net/http"
	"strconv"
	"testing"

	"github.com/trezcool/walimu/core/content"
	"github.com/trezcool/walimu/core/user"
	testutil "github.com/trezcool/walimu/tests"
)

func Test_contentApi_create(t *testing.T) {
	app := setup(t)

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin1", "admin@test.cd", "LePassw0rd", user.RoleAdmin, true)
	jane, janeProf := testutil.CreateTeacher(t, usrRepo, profRepo, "Jane Awe", "janeawe", "jane@test.cd", "LePassw0rd")
	_, moProf := testutil.CreateTeacher(t, usrRepo, profRepo, "King Mo", "kingmo", "king@test.cd", "LePassw0rd")

	tests := []httpTest{
		{
			name: "auth required", path: "/api/articles",
			body: marchallObj(t, map[string]string{"title": "Hello"}), wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "title required", path: "/api/articles", token: getToken(t, jane),
			body:     marchallObj(t, map[string]string{"body": "..."}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"title": "this field is required"}),
		},
		{
			name: "teacher owns what they create", path: "/api/articles", token: getToken(t, jane),
			body: marchallObj(t, map[string]string{"title": "On Teaching"}), wantCode: http.StatusCreated,
			extra: janeProf.ID,
		},
		{
			name: "teacher cannot create for another profile", path: "/api/articles", token: getToken(t, jane),
			body:     marchallObj(t, map[string]string{"title": "Sneaky", "profile_id": moProf.ID}),
			wantCode: http.StatusCreated, extra: janeProf.ID, // payload owner is ignored
		},
		{
			name: "admin must name the owner", path: "/api/articles", token: getToken(t, admin),
			body:     marchallObj(t, map[string]string{"title": "Ownerless"}),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "admin creates for a named profile", path: "/api/articles", token: getToken(t, admin),
			body:     marchallObj(t, map[string]string{"title": "Ghostwritten", "profile_id": moProf.ID}),
			wantCode: http.StatusCreated, extra: moProf.ID,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			checkCodeAndData(t, httpTest{wantCode: tt.wantCode, wantData: tt.wantData}, rec)
			if tt.wantCode != http.StatusCreated {
				return
			}

			var item content.Article
			if err := json.Unmarshal(rec.Body.Bytes(), &item); err != nil {
				t.Fatalf("unmarshalling response failed: %v", err)
			}
			if wantOwner := tt.extra.(string); item.ProfileID != wantOwner {
				t.Errorf("ProfileID = %q; want %q", item.ProfileID, wantOwner)
			}
		})
	}
}

func Test_contentApi_ownership(t *testing.T) {
	app := setup(t)

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin1", "admin@test.cd", "LePassw0rd", user.RoleAdmin, true)
	jane, _ := testutil.CreateTeacher(t, usrRepo, profRepo, "Jane Awe", "janeawe", "jane@test.cd", "LePassw0rd")
	mo, moProf := testutil.CreateTeacher(t, usrRepo, profRepo, "King Mo", "kingmo", "king@test.cd", "LePassw0rd")

	create := func(t *testing.T, token, title string) content.Research {
		t.Helper()
		body := marchallObj(t, map[string]string{"title": title})
		req, rec := newAuthRequest(http.MethodPost, "/api/research", token, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("create failed: code = %v; body %s", rec.Code, rec.Body.String())
		}
		var item content.Research
		if err := json.Unmarshal(rec.Body.Bytes(), &item); err != nil {
			t.Fatalf("unmarshalling response failed: %v", err)
		}
		return item
	}

	moItem := create(t, getToken(t, mo), "Rivers of Congo")

	tests := []httpTest{
		{
			name: "teacher cannot update another's item", method: http.MethodPut, path: "/api/research/" + moItem.ID,
			token: getToken(t, jane), body: marchallObj(t, map[string]string{"title": "Hijacked"}),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errPermissionDenied),
		},
		{
			name: "teacher cannot delete another's item", method: http.MethodDelete, path: "/api/research/" + moItem.ID,
			token: getToken(t, jane), wantCode: http.StatusForbidden, wantData: marchallObj(t, errPermissionDenied),
		},
		{
			name: "owner can update", method: http.MethodPut, path: "/api/research/" + moItem.ID,
			token: getToken(t, mo), body: marchallObj(t, map[string]string{"title": "Rivers of Congo, 2nd ed."}),
			wantCode: http.StatusOK,
		},
		{
			name: "admin can update any item", method: http.MethodPut, path: "/api/research/" + moItem.ID,
			token: getToken(t, admin), body: marchallObj(t, map[string]string{"title": "Rivers of Congo, 3rd ed.", "profile_id": moProf.ID}),
			wantCode: http.StatusOK,
		},
		{
			name: "unknown item", method: http.MethodPut, path: "/api/research/b1e58bfc-0000-0000-0000-000000000000",
			token: getToken(t, mo), body: marchallObj(t, map[string]string{"title": "Ghost"}),
			wantCode: http.StatusNotFound,
		},
		{
			name: "admin can delete any item", method: http.MethodDelete, path: "/api/research/" + moItem.ID,
			token: getToken(t, admin), wantCode: http.StatusNoContent,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, httpTest{wantCode: tt.wantCode, wantData: tt.wantData}, rec)
		})
	}
}

// the attachment detail routes resolve ownership in middleware before the
// handler runs; behavior must match the other entities
func Test_contentApi_attachmentOwnership(t *testing.T) {
	app := setup(t)

	jane, _ := testutil.CreateTeacher(t, usrRepo, profRepo, "Jane Awe", "janeawe", "jane@test.cd", "LePassw0rd")
	mo, _ := testutil.CreateTeacher(t, usrRepo, profRepo, "King Mo", "kingmo", "king@test.cd", "LePassw0rd")

	body := marchallObj(t, map[string]interface{}{
		"label": "Syllabus", "file_name": "syllabus.pdf", "url": "/media/files/abc.pdf",
		"content_type": "application/pdf", "size": 1234,
	})
	req, rec := newAuthRequest(http.MethodPost, "/api/attachments", getToken(t, mo), body)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create failed: code = %v; body %s", rec.Code, rec.Body.String())
	}
	var item content.Attachment
	if err := json.Unmarshal(rec.Body.Bytes(), &item); err != nil {
		t.Fatalf("unmarshalling response failed: %v", err)
	}

	t.Run("foreign update forbidden", func(t *testing.T) {
		upd := marchallObj(t, map[string]string{"label": "Mine Now", "file_name": "syllabus.pdf", "url": "/media/files/abc.pdf"})
		req, rec := newAuthRequest(http.MethodPut, "/api/attachments/"+item.ID, getToken(t, jane), upd)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errPermissionDenied)}, rec)
	})

	t.Run("foreign delete forbidden", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/api/attachments/"+item.ID, getToken(t, jane))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errPermissionDenied)}, rec)
	})

	t.Run("owner delete", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/api/attachments/"+item.ID, getToken(t, mo))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Errorf("code = %v; want %v; body %s", rec.Code, http.StatusNoContent, rec.Body.String())
		}
	})
}

func Test_contentApi_list(t *testing.T) {
	app := setup(t)

	jane, janeProf := testutil.CreateTeacher(t, usrRepo, profRepo, "Jane Awe", "janeawe", "jane@test.cd", "LePassw0rd")
	mo, moProf := testutil.CreateTeacher(t, usrRepo, profRepo, "King Mo", "kingmo", "king@test.cd", "LePassw0rd")

	create := func(t *testing.T, token, title string) {
		t.Helper()
		body := marchallObj(t, map[string]string{"title": title})
		req, rec := newAuthRequest(http.MethodPost, "/api/courses", token, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("create failed: code = %v; body %s", rec.Code, rec.Body.String())
		}
	}
	for i := 0; i < 3; i++ {
		create(t, getToken(t, jane), "Thermodynamics "+strconv.Itoa(i+1))
	}
	create(t, getToken(t, mo), "Lingala Poetry")

	type listResponse struct {
		Data []content.Course `json:"data"`
		Meta struct {
			Total      int `json:"total"`
			Page       int `json:"page"`
			Limit      int `json:"limit"`
			TotalPages int `json:"total_pages"`
		} `json:"meta"`
	}
	get := func(t *testing.T, path string) listResponse {
		t.Helper()
		req, rec := newAuthRequest(http.MethodGet, path, getToken(t, jane))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
		}
		var resp listResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshalling response failed: %v", err)
		}
		return resp
	}

	t.Run("all", func(t *testing.T) {
		resp := get(t, "/api/courses")
		if resp.Meta.Total != 4 || len(resp.Data) != 4 {
			t.Errorf("total = %d, len(data) = %d; want 4, 4", resp.Meta.Total, len(resp.Data))
		}
		// newest first
		if resp.Data[0].Title != "Lingala Poetry" {
			t.Errorf("data[0].Title = %q; want the newest item", resp.Data[0].Title)
		}
	})

	t.Run("filter by owner", func(t *testing.T) {
		resp := get(t, "/api/courses?teacher_id="+janeProf.ID)
		if resp.Meta.Total != 3 {
			t.Errorf("total = %d; want 3", resp.Meta.Total)
		}
		for _, c := range resp.Data {
			if c.ProfileID != janeProf.ID {
				t.Errorf("ProfileID = %q; want %q", c.ProfileID, janeProf.ID)
			}
		}
	})

	t.Run("search", func(t *testing.T) {
		resp := get(t, "/api/courses?search=lingala")
		if resp.Meta.Total != 1 || len(resp.Data) != 1 {
			t.Fatalf("total = %d, len(data) = %d; want 1, 1", resp.Meta.Total, len(resp.Data))
		}
		if resp.Data[0].ProfileID != moProf.ID {
			t.Errorf("ProfileID = %q; want %q", resp.Data[0].ProfileID, moProf.ID)
		}
	})

	t.Run("pagination", func(t *testing.T) {
		resp := get(t, "/api/courses?page=2&limit=3")
		if len(resp.Data) != 1 || resp.Meta.Total != 4 || resp.Meta.TotalPages != 2 {
			t.Errorf("len(data) = %d, meta = %+v; want 1 item, total=4, total_pages=2", len(resp.Data), resp.Meta)
		}
	})

	t.Run("page beyond range", func(t *testing.T) {
		resp := get(t, "/api/courses?page=9&limit=3")
		if len(resp.Data) != 0 || resp.Meta.Total != 4 {
			t.Errorf("len(data) = %d, total = %d; want empty page with true total 4", len(resp.Data), resp.Meta.Total)
		}
	})
}
