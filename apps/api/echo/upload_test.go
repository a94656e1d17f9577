package echoapi_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	echoapi "github.com/trezcool/walimu/apps/api/echo"
	testutil "github.com/trezcool/walimu/tests"
)

// minimal valid PNG header; content sniffing keys off these bytes
var pngHead = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 13, 'I', 'H', 'D', 'R'}

func newUploadRequest(t *testing.T, token, kind, filename string, contents []byte) (*http.Request, *httptest.ResponseRecorder) {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if kind != "" {
		if err := w.WriteField("type", kind); err != nil {
			t.Fatalf("writing type field failed: %v", err)
		}
	}
	if filename != "" {
		fw, err := w.CreateFormFile("file", filename)
		if err != nil {
			t.Fatalf("creating form file failed: %v", err)
		}
		if _, err = fw.Write(contents); err != nil {
			t.Fatalf("writing file contents failed: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("closing multipart writer failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/uploads", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if token != "" {
		req.AddCookie(&http.Cookie{Name: conf.Server.SessionCookieName, Value: token})
	}
	return req, httptest.NewRecorder()
}

func Test_uploadApi(t *testing.T) {
	app := setup(t)

	jane, _ := testutil.CreateTeacher(t, usrRepo, profRepo, "Jane Awe", "janeawe", "jane@test.cd", "LePassw0rd")
	token := getToken(t, jane)

	t.Run("auth required", func(t *testing.T) {
		req, rec := newUploadRequest(t, "", "avatar", "me.png", pngHead)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)}, rec)
	})

	t.Run("unknown type", func(t *testing.T) {
		req, rec := newUploadRequest(t, token, "warez", "me.png", pngHead)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"type": "type must be one of avatar, hero, general, files"}),
		}, rec)
	})

	t.Run("missing file", func(t *testing.T) {
		req, rec := newUploadRequest(t, token, "avatar", "", nil)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"file": "a file is required"}),
		}, rec)
	})

	t.Run("image kind rejects non-images", func(t *testing.T) {
		req, rec := newUploadRequest(t, token, "avatar", "notes.txt", []byte("plain text, no image here"))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("code = %v; want %v; body %s", rec.Code, http.StatusBadRequest, rec.Body.String())
		}
	})

	t.Run("image too big", func(t *testing.T) {
		big := make([]byte, conf.Media.ImageMaxSize+1)
		copy(big, pngHead)
		req, rec := newUploadRequest(t, token, "hero", "big.png", big)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("code = %v; want %v; body %s", rec.Code, http.StatusBadRequest, rec.Body.String())
		}
	})

	t.Run("avatar upload", func(t *testing.T) {
		req, rec := newUploadRequest(t, token, "avatar", "me.png", pngHead)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusCreated, rec.Body.String())
		}

		var resp echoapi.UploadResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshalling response failed: %v", err)
		}
		if resp.FileName != "me.png" {
			t.Errorf("FileName = %q; want %q", resp.FileName, "me.png")
		}
		if resp.ContentType != "image/png" {
			t.Errorf("ContentType = %q; want image/png", resp.ContentType)
		}
		if resp.Size != int64(len(pngHead)) {
			t.Errorf("Size = %d; want %d", resp.Size, len(pngHead))
		}
		if !strings.HasPrefix(resp.URL, conf.Media.BaseURL+"/avatar/") || !strings.HasSuffix(resp.URL, ".png") {
			t.Errorf("URL = %q; want a %s/avatar/<uuid>.png URL", resp.URL, conf.Media.BaseURL)
		}

		// the file must land under <media root>/avatar/
		stored := filepath.Join(conf.Media.Root, "avatar", filepath.Base(resp.URL))
		if _, err := os.Stat(stored); err != nil {
			t.Errorf("stored file missing: %v", err)
		}
	})

	t.Run("files kind accepts anything", func(t *testing.T) {
		req, rec := newUploadRequest(t, token, "files", "syllabus.pdf", []byte("%PDF-1.4 not really"))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusCreated, rec.Body.String())
		}

		var resp echoapi.UploadResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshalling response failed: %v", err)
		}
		if !strings.HasPrefix(resp.URL, conf.Media.BaseURL+"/files/") {
			t.Errorf("URL = %q; want a %s/files/ URL", resp.URL, conf.Media.BaseURL)
		}
	})
}
