package echoapi_test

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/trezcool/walimu/core/user"
	testutil "github.com/trezcool/walimu/tests"
)

func Test_authApi_login(t *testing.T) {
	app := setup(t)

	testutil.CreateTeacher(t, usrRepo, profRepo, "Jane Awe", "janeawe", "jane@test.cd", "LePassw0rd")
	testutil.CreateUser(t, usrRepo, "Sleeper", "sleeper", "sleeper@test.cd", "LePassw0rd", user.RoleTeacher, false)

	body := func(uname, pwd string) []byte {
		return []byte(`{"username": "` + uname + `", "password": "` + pwd + `"}`)
	}

	tests := []httpTest{
		{
			name: "empty credentials", body: body("", ""), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"username": "this field is required", "password": "this field is required"}),
		},
		{
			name: "unknown user", body: body("who", "dis"), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "invalid credentials"}),
		},
		{
			name: "wrong password", body: body("janeawe", "LeWrongPassw0rd"), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "invalid credentials"}),
		},
		{
			name: "deactivated account", body: body("sleeper", "LePassw0rd"), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
		{name: "login with username", body: body("janeawe", "LePassw0rd"), wantCode: http.StatusOK},
		{name: "login with email", body: body("jane@test.cd", "LePassw0rd"), wantCode: http.StatusOK},
		{name: "username is case-insensitive", body: body("JaneAwe", "LePassw0rd"), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/api/auth/login", tt.body)
			app.ServeHTTP(rec, req)

			checkCodeAndData(t, tt, rec)
			if tt.wantCode != http.StatusOK {
				return
			}

			var resp struct {
				Token string `json:"token"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("unmarshalling response failed: %v", err)
			}
			if resp.Token == "" {
				t.Error("expected a token in the response")
			}

			// the token must also land in the session cookie
			var sessCookie *http.Cookie
			for _, c := range rec.Result().Cookies() {
				if c.Name == conf.Server.SessionCookieName {
					sessCookie = c
				}
			}
			if sessCookie == nil {
				t.Fatal("expected the session cookie to be set")
			}
			if sessCookie.Value != resp.Token {
				t.Error("session cookie does not carry the token")
			}
			if !sessCookie.HttpOnly {
				t.Error("session cookie must be HttpOnly")
			}
		})
	}
}

func Test_authApi_logout(t *testing.T) {
	app := setup(t)

	usr, _ := testutil.CreateTeacher(t, usrRepo, profRepo, "Jane Awe", "janeawe", "jane@test.cd", "LePassw0rd")

	req, rec := newAuthRequest(http.MethodPost, "/api/auth/logout", getToken(t, usr))
	app.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("code = %v; want %v", rec.Code, http.StatusNoContent)
	}
	var sessCookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == conf.Server.SessionCookieName {
			sessCookie = c
		}
	}
	if sessCookie == nil {
		t.Fatal("expected the session cookie to be cleared")
	}
	if sessCookie.Value != "" || sessCookie.MaxAge >= 0 {
		t.Error("expected an expired empty session cookie")
	}
}

func Test_authApi_tokenRefresh(t *testing.T) {
	app := setup(t)

	usr, _ := testutil.CreateTeacher(t, usrRepo, profRepo, "Jane Awe", "janeawe", "jane@test.cd", "LePassw0rd")

	t.Run("auth required", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/api/auth/token-refresh")
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)}, rec)
	})

	t.Run("refresh", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/api/auth/token-refresh", getToken(t, usr))
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
		}
		var resp struct {
			Token string `json:"token"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshalling response failed: %v", err)
		}
		if resp.Token == "" {
			t.Error("expected a fresh token in the response")
		}
	})
}

// The session gate: API routes fail closed with a 401 while dashboard pages
// redirect browsers to the login page with a next hint.
func Test_sessionGate(t *testing.T) {
	app := setup(t)

	teacher, _ := testutil.CreateTeacher(t, usrRepo, profRepo, "Jane Awe", "janeawe", "jane@test.cd", "LePassw0rd")
	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin1", "admin@test.cd", "LePassw0rd", user.RoleAdmin, true)

	teacherToken := getToken(t, teacher)
	adminToken := getToken(t, admin)

	tests := []struct {
		name         string
		path         string
		token        string
		wantCode     int
		wantLocation string
	}{
		{name: "home is public", path: "/", wantCode: http.StatusOK},
		{name: "login page is public", path: "/login", wantCode: http.StatusOK},
		{name: "API fails closed", path: "/api/profiles", wantCode: http.StatusUnauthorized},
		{name: "API with garbage token fails closed", path: "/api/profiles", token: "not-a-jwt", wantCode: http.StatusUnauthorized},
		{
			name: "dashboard redirects to login", path: "/dashboard", wantCode: http.StatusFound,
			wantLocation: "/login?next=" + url.QueryEscape("/dashboard"),
		},
		{
			name: "dashboard with garbage token redirects", path: "/dashboard/admin", token: "not-a-jwt", wantCode: http.StatusFound,
			wantLocation: "/login?next=" + url.QueryEscape("/dashboard/admin"),
		},
		{name: "teacher dashboard", path: "/dashboard/teacher", token: teacherToken, wantCode: http.StatusOK},
		{name: "admin dashboard", path: "/dashboard/admin", token: adminToken, wantCode: http.StatusOK},
		{
			name: "teacher bounced off admin portal", path: "/dashboard/admin", token: teacherToken,
			wantCode: http.StatusFound, wantLocation: "/dashboard/teacher",
		},
		{
			name: "admin bounced off teacher portal", path: "/dashboard/teacher", token: adminToken,
			wantCode: http.StatusFound, wantLocation: "/dashboard/admin",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			app.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Errorf("code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantLocation != "" {
				if loc := rec.Header().Get("Location"); loc != tt.wantLocation {
					t.Errorf("Location = %q; want %q", loc, tt.wantLocation)
				}
			}
		})
	}
}

// preserves the full request URI, query string included
func Test_sessionGate_nextParam(t *testing.T) {
	app := setup(t)

	req, rec := newRequest(http.MethodGet, "/dashboard?tab=courses")
	app.ServeHTTP(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("code = %v; want %v", rec.Code, http.StatusFound)
	}
	loc := rec.Header().Get("Location")
	if !strings.HasPrefix(loc, "/login?next=") {
		t.Fatalf("Location = %q; want a /login?next= redirect", loc)
	}
	next, err := url.QueryUnescape(strings.TrimPrefix(loc, "/login?next="))
	if err != nil {
		t.Fatalf("unescaping next failed: %v", err)
	}
	if next != "/dashboard?tab=courses" {
		t.Errorf("next = %q; want %q", next, "/dashboard?tab=courses")
	}
}
