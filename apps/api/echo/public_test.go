package echoapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/trezcool/walimu/core/content"
	"github.com/trezcool/walimu/core/profile"
	testutil "github.com/trezcool/walimu/tests"
)

func Test_publicApi_retrieveProfile(t *testing.T) {
	app := setup(t)

	jane, janeProf := testutil.CreateTeacher(t, usrRepo, profRepo, "Jane Awe", "janeawe", "jane@test.cd", "LePassw0rd")

	// publish a bit of content through the API
	token := getToken(t, jane)
	post := func(t *testing.T, path string, body []byte) {
		t.Helper()
		req, rec := newAuthRequest(http.MethodPost, path, token, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("create failed: code = %v; body %s", rec.Code, rec.Body.String())
		}
	}
	post(t, "/api/articles", marchallObj(t, map[string]string{"title": "On Teaching"}))
	post(t, "/api/courses", marchallObj(t, map[string]string{"title": "Thermodynamics"}))
	post(t, "/api/education", marchallObj(t, map[string]string{"degree": "PhD", "institution": "UNIKIN"}))

	t.Run("unknown slug", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/api/public/profiles/nobody-here")
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Errorf("code = %v; want %v", rec.Code, http.StatusNotFound)
		}
	})

	t.Run("aggregated page, view counted", func(t *testing.T) {
		var got struct {
			Profile   profile.Profile     `json:"profile"`
			Articles  []content.Article   `json:"articles"`
			Courses   []content.Course    `json:"courses"`
			Education []content.Education `json:"education"`
			Research  []content.Research  `json:"research"`
		}

		for i := 1; i <= 3; i++ {
			req, rec := newRequest(http.MethodGet, "/api/public/profiles/"+janeProf.Slug)
			app.ServeHTTP(rec, req)
			if rec.Code != http.StatusOK {
				t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
				t.Fatalf("unmarshalling response failed: %v", err)
			}
			if got.Profile.ViewCount != i {
				t.Errorf("ViewCount = %d; want %d", got.Profile.ViewCount, i)
			}
		}

		if len(got.Articles) != 1 || got.Articles[0].Title != "On Teaching" {
			t.Errorf("articles = %+v; want the published article", got.Articles)
		}
		if len(got.Courses) != 1 || len(got.Education) != 1 {
			t.Errorf("courses/education = %d/%d; want 1/1", len(got.Courses), len(got.Education))
		}
		if got.Research == nil || len(got.Research) != 0 {
			t.Errorf("research = %v; want an empty list, not null", got.Research)
		}
	})
}

func Test_publicApi_downloadAttachment(t *testing.T) {
	app := setup(t)

	jane, janeProf := testutil.CreateTeacher(t, usrRepo, profRepo, "Jane Awe", "janeawe", "jane@test.cd", "LePassw0rd")

	item, err := content.NewService(contRepo).CreateAttachment(
		context.Background(),
		content.Subject{UserID: jane.ID, Role: jane.Role, ProfileID: janeProf.ID},
		content.AttachmentInput{
			Label: "Syllabus", FileName: "syllabus.pdf", URL: "/media/files/abc.pdf",
			ContentType: "application/pdf", Size: 1234,
		},
	)
	if err != nil {
		t.Fatalf("CreateAttachment() failed: %v", err)
	}

	t.Run("unknown attachment", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/api/public/attachments/b1e58bfc-0000-0000-0000-000000000000/download")
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Errorf("code = %v; want %v", rec.Code, http.StatusNotFound)
		}
	})

	t.Run("redirect and count", func(t *testing.T) {
		for i := 1; i <= 2; i++ {
			req, rec := newRequest(http.MethodGet, "/api/public/attachments/"+item.ID+"/download")
			app.ServeHTTP(rec, req)

			if rec.Code != http.StatusFound {
				t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusFound, rec.Body.String())
			}
			if loc := rec.Header().Get("Location"); loc != item.URL {
				t.Errorf("Location = %q; want %q", loc, item.URL)
			}

			refreshed, err := contRepo.GetAttachment(context.Background(), item.ID)
			if err != nil {
				t.Fatalf("GetAttachment() failed: %v", err)
			}
			if refreshed.Downloads != i {
				t.Errorf("Downloads = %d; want %d", refreshed.Downloads, i)
			}
		}
	})
}
