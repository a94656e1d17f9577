package echoapi_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/mail"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	echoapi "github.com/trezcool/walimu/apps/api/echo"
	"github.com/trezcool/walimu/core"
	"github.com/trezcool/walimu/core/content"
	"github.com/trezcool/walimu/core/profile"
	"github.com/trezcool/walimu/core/user"
	emailsvc "github.com/trezcool/walimu/services/email"
	filesvc "github.com/trezcool/walimu/services/files"
	inmemdb "github.com/trezcool/walimu/storage/database/inmem"
)

var (
	conf *core.Config

	usrRepo  user.Repository
	profRepo profile.Repository
	contRepo content.Repository

	errMissingToken     = httpErr{Error: "user not authenticated"}
	errPermissionDenied = httpErr{Error: "permission denied"}
)

func newTestConfig(t *testing.T) *core.Config {
	t.Helper()
	return &core.Config{
		Env:       "TEST",
		TestMode:  true,
		AppName:   "Walimu",
		SecretKey: []byte("test-secret-key"),

		DefaultFromEmail:          mail.Address{Name: "Walimu", Address: "noreply@localhost"},
		FrontendBaseURL:           "http://localhost:3000",
		PasswordResetTimeoutDelta: 3 * 24 * time.Hour,

		Server: core.ServerConfig{
			SessionCookieName:         "walimu_session",
			JWTExpirationDelta:        10 * time.Minute,
			JWTRefreshExpirationDelta: 4 * time.Hour,
		},
		Media: core.MediaConfig{
			Root:         t.TempDir(),
			BaseURL:      "/media",
			ImageMaxSize: 5 << 20,
			FileMaxSize:  20 << 20,
		},
	}
}

func setup(t *testing.T) echoapi.Server {
	t.Helper()

	conf = newTestConfig(t)

	// repos over the in-memory store
	db := inmemdb.NewDB()
	usrRepo = inmemdb.NewUserRepository(db)
	profRepo = inmemdb.NewProfileRepository(db)
	contRepo = inmemdb.NewContentRepository(db)

	// services
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	usrSvc := user.NewServiceMock(conf, usrRepo, mailSvc)
	profSvc := profile.NewService(profRepo)
	contSvc := content.NewService(contRepo)
	fileSvc := filesvc.NewLocalService(conf)

	validate, translator := core.NewValidator()
	user.RegisterValidators(validate, translator)

	return echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:           conf,
			Logger:         core.NewNopLogger(),
			UserSvc:        usrSvc,
			ProfileSvc:     profSvc,
			ContentSvc:     contSvc,
			FileSvc:        fileSvc,
			Validate:       validate,
			Translator:     translator,
			DisableReqLogs: true,
		},
	)
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

// newAuthRequest builds a JSON request carrying the session token in the
// session cookie, the only place the server looks for it.
func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.AddCookie(&http.Cookie{Name: conf.Server.SessionCookieName, Value: token})
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, usr user.User) string {
	t.Helper()
	claims := echoapi.GetUserClaims(conf, usr)
	token, err := echoapi.GenerateToken(conf, claims)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ObjectsAreEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
