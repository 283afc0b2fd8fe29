package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aTrapDeer/portfolio-cms/internal/auth"
	"github.com/aTrapDeer/portfolio-cms/internal/config"
	"github.com/aTrapDeer/portfolio-cms/internal/db/dbtest"
	"github.com/aTrapDeer/portfolio-cms/internal/models"
	"github.com/aTrapDeer/portfolio-cms/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

const testSecret = "test-secret"

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
	Details []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"details"`
}

type AppTestSuite struct {
	suite.Suite
	conn      *gorm.DB
	app       *App
	uploadDir string
	admin     string
	viewer    string
}

func (s *AppTestSuite) SetupTest() {
	t := s.T()
	s.conn = dbtest.Open(t)
	s.uploadDir = t.TempDir()
	store, err := storage.NewLocal(s.uploadDir, "http://cms.test")
	require.NoError(t, err)

	cfg := config.Config{
		JWTSecret:      testSecret,
		TokenTTL:       time.Hour,
		PublicBaseURL:  "http://cms.test",
		RequestTimeout: 5 * time.Second,
	}
	s.app, err = NewApp(cfg, s.conn, store)
	require.NoError(t, err)

	s.admin = s.userToken("admin@example.com", "secret-pass", models.RoleAdmin)
	s.viewer = s.userToken("viewer@example.com", "viewer-pass", models.RoleViewer)
}

func (s *AppTestSuite) TearDownTest() {
	s.app.Close()
}

func (s *AppTestSuite) userToken(email, password, role string) string {
	hash, err := auth.HashPassword(password)
	s.Require().NoError(err)
	u := &models.User{Email: email, Name: role, Password: hash, Role: role}
	s.Require().NoError(s.app.users.Create(context.Background(), u))
	token, _, err := s.app.tokens.Issue(u)
	s.Require().NoError(err)
	return token
}

func (s *AppTestSuite) do(method, path, token, body string) (*httptest.ResponseRecorder, envelope) {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, path, nil)
	} else {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	return s.serve(r)
}

func (s *AppTestSuite) serve(r *http.Request) (*httptest.ResponseRecorder, envelope) {
	rec := httptest.NewRecorder()
	s.app.ServeHTTP(rec, r)
	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec, env
}

func decodeData[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v), string(env.Data))
	return v
}

const projectBody = `{"title":"X","description":"d","techStack":["Go"],"images":["http://x/1.png"],"awards":[],"category":"c"}`

func (s *AppTestSuite) TestWritesRequireAdmin() {
	t := s.T()
	expired, _, err := auth.NewTokens(testSecret, -time.Minute).Issue(&models.User{Base: models.Base{ID: 1}, Role: models.RoleAdmin})
	require.NoError(t, err)

	for name, token := range map[string]string{"none": "", "expired": expired, "viewer": s.viewer, "garbage": "abc"} {
		rec, env := s.do(http.MethodPost, "/projects", token, projectBody)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, name)
		assert.False(t, env.Success)
		assert.Equal(t, "UNAUTHORIZED", env.Code)

		rec, _ = s.do(http.MethodDelete, "/projects/999", token, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s: delete must not reveal existence", name)
	}

	var count int64
	require.NoError(t, s.conn.Model(&models.Project{}).Count(&count).Error)
	assert.Zero(t, count)
}

func (s *AppTestSuite) TestValidationNamesField() {
	t := s.T()
	body := strings.Replace(projectBody, `"category"`, `"liveLink":"not-a-url","category"`, 1)
	rec, env := s.do(http.MethodPost, "/projects", s.admin, body)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_FAILED", env.Code)
	require.Len(t, env.Details, 1)
	assert.Equal(t, "liveLink", env.Details[0].Field)

	rec, env = s.do(http.MethodPost, "/projects", s.admin, `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "BAD_REQUEST", env.Code)
}

func (s *AppTestSuite) TestProjectRoundTrip() {
	t := s.T()
	rec, env := s.do(http.MethodPost, "/projects", s.admin, projectBody)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeData[models.Project](t, env)
	require.NotZero(t, created.ID)
	path := fmt.Sprintf("/projects/%d", created.ID)

	rec, env = s.do(http.MethodGet, path, "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeData[models.Project](t, env)
	assert.Equal(t, "X", got.Title)
	assert.Equal(t, models.StringList{"Go"}, got.TechStack)
	assert.Equal(t, models.StringList{}, got.Awards)

	rec, env = s.do(http.MethodPut, path, s.admin, `{"description":"updated","liveLink":"https://x.dev"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decodeData[models.Project](t, env)
	assert.Equal(t, "X", updated.Title)
	assert.Equal(t, "updated", updated.Description)
	assert.Equal(t, "https://x.dev", *updated.LiveLink)

	rec, _ = s.do(http.MethodPost, "/projects", s.admin, projectBody)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, env = s.do(http.MethodGet, "/projects", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeData[[]models.Project](t, env), 1)

	rec, env = s.do(http.MethodDelete, path, s.admin, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "updated", decodeData[models.Project](t, env).Description)

	rec, env = s.do(http.MethodGet, path, "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", env.Code)

	rec, _ = s.do(http.MethodPut, path, s.admin, `{"title":"Y"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = s.do(http.MethodGet, "/projects/abc", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func (s *AppTestSuite) TestExperienceCascade() {
	t := s.T()
	body := `{"company":"Acme","logo":"http://x/l.png","period":"2020-2023","roles":[
		{"title":"Engineer","period":"2020","description":["a"]},
		{"title":"Lead","period":"2022","description":["b","c"]}
	]}`
	rec, env := s.do(http.MethodPost, "/experience", s.admin, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	e := decodeData[models.Experience](t, env)
	require.Len(t, e.Roles, 2)
	assert.Equal(t, "Engineer", e.Roles[0].Title)
	path := fmt.Sprintf("/experience/%d", e.ID)

	rec, env = s.do(http.MethodPut, path+"/roles", s.admin, `{"roles":[{"title":"CTO","period":"2023","description":[]}]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec, env = s.do(http.MethodGet, path+"/roles", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	roles := decodeData[[]models.ExperienceRole](t, env)
	require.Len(t, roles, 1)
	assert.Equal(t, "CTO", roles[0].Title)

	rec, env = s.do(http.MethodDelete, path, s.admin, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeData[models.Experience](t, env).Roles, 1)

	var count int64
	require.NoError(t, s.conn.Model(&models.ExperienceRole{}).Count(&count).Error)
	assert.Zero(t, count)
	rec, _ = s.do(http.MethodGet, path+"/roles", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func (s *AppTestSuite) TestPublicProfileExclusive() {
	t := s.T()
	rec, _ := s.do(http.MethodGet, "/public-profile", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var ids []uint
	for _, name := range []string{"A", "B"} {
		body := fmt.Sprintf(`{"name":%q,"image":"http://x/p.png","headlines":["h"],"tagline":"t","isActive":true}`, name)
		rec, env := s.do(http.MethodPost, "/public-profile", s.admin, body)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		ids = append(ids, decodeData[models.PublicProfile](t, env).ID)
	}

	rec, env := s.do(http.MethodGet, "/public-profile", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "B", decodeData[models.PublicProfile](t, env).Name)

	rec, _ = s.do(http.MethodPost, fmt.Sprintf("/public-profile/%d/activate", ids[0]), s.admin, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec, env = s.do(http.MethodGet, "/public-profile/all", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	active := 0
	for _, p := range decodeData[[]models.PublicProfile](t, env) {
		if p.IsActive {
			active++
			assert.Equal(t, ids[0], p.ID)
		}
	}
	assert.Equal(t, 1, active)
}

func (s *AppTestSuite) TestCVsActiveFilter() {
	t := s.T()
	for i, active := range []bool{true, false} {
		body := fmt.Sprintf(`{"title":"CV %d","description":"d","downloadLink":"http://x/cv.pdf","fileType":"application/pdf","fileSize":1024,"isActive":%t}`, i, active)
		rec, _ := s.do(http.MethodPost, "/cvs", s.admin, body)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}
	_, env := s.do(http.MethodGet, "/cvs", "", "")
	assert.Len(t, decodeData[[]models.Resume](t, env), 2)
	_, env = s.do(http.MethodGet, "/cvs?active=true", "", "")
	cvs := decodeData[[]models.Resume](t, env)
	require.Len(t, cvs, 1)
	assert.Equal(t, "CV 0", cvs[0].Title)

	rec, env := s.do(http.MethodPost, "/cvs", s.admin, `{"title":"Bad","description":"d","downloadLink":"http://x/cv.txt","fileType":"text/plain"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "fileType", env.Details[0].Field)
}

func (s *AppTestSuite) TestSkillsHideInactiveFromPublic() {
	t := s.T()
	rec, _ := s.do(http.MethodPost, "/skills", s.admin, `{"name":"Go","category":"lang","iconType":"text"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec, _ = s.do(http.MethodPost, "/skills", s.admin, `{"name":"Perl","category":"lang","iconType":"text","isActive":false}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	_, env := s.do(http.MethodGet, "/skills", "", "")
	assert.Len(t, decodeData[[]models.Skill](t, env), 1)
	_, env = s.do(http.MethodGet, "/skills?all=true", "", "")
	assert.Len(t, decodeData[[]models.Skill](t, env), 1, "all=true needs an admin session")
	_, env = s.do(http.MethodGet, "/skills?all=true", s.admin, "")
	assert.Len(t, decodeData[[]models.Skill](t, env), 2)
}

const (
	pdfMagic = "%PDF-1.7\n"
	pngMagic = "\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00"
)

// fileOf pads magic to size bytes.
func fileOf(magic string, size int) []byte {
	b := bytes.Repeat([]byte{0x42}, size)
	copy(b, magic)
	return b
}

func (s *AppTestSuite) multipartUpload(folder, filename, contentType string, content []byte) *http.Request {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	s.Require().NoError(mw.WriteField("folder", folder))
	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	s.Require().NoError(err)
	_, err = part.Write(content)
	s.Require().NoError(err)
	s.Require().NoError(mw.Close())

	r := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	r.Header.Set("Authorization", "Bearer "+s.admin)
	return r
}

func (s *AppTestSuite) storedFiles() int {
	n := 0
	err := filepath.WalkDir(s.uploadDir, func(_ string, d fs.DirEntry, err error) error {
		if err == nil && !d.IsDir() {
			n++
		}
		return err
	})
	s.Require().NoError(err)
	return n
}

func (s *AppTestSuite) TestUploadPolicies() {
	t := s.T()
	testCases := []struct {
		name        string
		folder      string
		contentType string
		content     []byte
	}{
		{name: "text file", folder: "images", contentType: "text/plain", content: []byte("hello")},
		{name: "oversize image", folder: "images", contentType: "image/png", content: fileOf(pngMagic, 6<<20)},
		{name: "image as cv", folder: "cvs", contentType: "image/png", content: fileOf(pngMagic, 64)},
		{name: "unknown folder", folder: "misc", contentType: "image/png", content: fileOf(pngMagic, 64)},
		{name: "text labelled png", folder: "images", contentType: "image/png", content: []byte("just some text, not pixels")},
		{name: "html labelled png", folder: "images", contentType: "image/png", content: []byte("<html><script>alert(1)</script></html>")},
		{name: "png labelled pdf", folder: "cvs", contentType: "application/pdf", content: fileOf(pngMagic, 64)},
	}
	for _, tc := range testCases {
		rec, env := s.serve(s.multipartUpload(tc.folder, "f.bin", tc.contentType, tc.content))
		assert.Equal(t, http.StatusBadRequest, rec.Code, tc.name)
		assert.Equal(t, "BAD_REQUEST", env.Code, tc.name)
	}
	assert.Zero(t, s.storedFiles())

	rec, env := s.serve(s.multipartUpload("cvs", "cv.pdf", "application/pdf", fileOf(pdfMagic, 2048)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	obj := decodeData[storage.Object](t, env)
	assert.True(t, strings.HasPrefix(obj.PublicID, "cvs/"))
	assert.True(t, strings.HasSuffix(obj.URL, ".pdf"))
	assert.Equal(t, 1, s.storedFiles())

	get := httptest.NewRecorder()
	s.app.ServeHTTP(get, httptest.NewRequest(http.MethodGet, "/uploads/"+obj.PublicID, nil))
	assert.Equal(t, http.StatusOK, get.Code)
	assert.Equal(t, fileOf(pdfMagic, 2048), get.Body.Bytes())

	rec, _ = s.serve(s.multipartUpload("images", "a.png", "image/png", fileOf(pngMagic, 64)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, 2, s.storedFiles())

	r := s.multipartUpload("images", "a.png", "image/png", fileOf(pngMagic, 64))
	r.Header.Del("Authorization")
	rec, _ = s.serve(r)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func (s *AppTestSuite) TestLogin() {
	t := s.T()
	rec, env := s.do(http.MethodPost, "/auth/login", "", `{"email":"ADMIN@example.com","password":"secret-pass"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	sess := decodeData[struct {
		Token string `json:"token"`
	}](t, env)
	require.NotEmpty(t, sess.Token)
	require.NotEmpty(t, rec.Result().Cookies())

	rec, env = s.do(http.MethodGet, "/auth/me", sess.Token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "admin@example.com", decodeData[auth.Identity](t, env).Email)

	rec, env = s.do(http.MethodPost, "/auth/login", "", `{"email":"admin@example.com"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "password", env.Details[0].Field)
}

func (s *AppTestSuite) TestLoginThrottle() {
	t := s.T()
	for i := 0; i < maxLoginFailures; i++ {
		rec, _ := s.do(http.MethodPost, "/auth/login", "", `{"email":"admin@example.com","password":"wrong"}`)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	}
	rec, env := s.do(http.MethodPost, "/auth/login", "", `{"email":"admin@example.com","password":"secret-pass"}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "TOO_MANY_ATTEMPTS", env.Code)
}

func (s *AppTestSuite) TestAdminPages() {
	t := s.T()
	rec, _ := s.do(http.MethodGet, "/admin/projects", "", "")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, auth.LoginPath, rec.Header().Get("Location"))

	rec, _ = s.do(http.MethodGet, "/admin/login", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `action="/auth/login"`)

	form := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader("email=admin%40example.com&password=secret-pass"))
	form.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec, _ = s.serve(form)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin", rec.Header().Get("Location"))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)

	s.do(http.MethodPost, "/projects", s.admin, projectBody)
	page := httptest.NewRequest(http.MethodGet, "/admin/projects", nil)
	page.AddCookie(cookies[0])
	rec, _ = s.serve(page)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<td>X</td>")

	missing := httptest.NewRequest(http.MethodGet, "/admin/nope", nil)
	missing.AddCookie(cookies[0])
	rec, _ = s.serve(missing)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	bad := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader("email=admin%40example.com&password=nope"))
	bad.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec, _ = s.serve(bad)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, auth.LoginPath+"?error=invalid", rec.Header().Get("Location"))
}

func (s *AppTestSuite) TestHealthAndUnknownRoutes() {
	t := s.T()
	rec, env := s.do(http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, string(env.Data))

	rec, env = s.do(http.MethodGet, "/nope", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", env.Code)
}

func (s *AppTestSuite) TestDatabaseOutageIsNotUnauthorized() {
	t := s.T()
	sqlDB, err := s.conn.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	rec, env := s.do(http.MethodPost, "/projects", s.admin, projectBody)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "INTERNAL", env.Code)

	rec, env = s.do(http.MethodGet, "/skills?all=true", s.admin, "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "INTERNAL", env.Code)
}

func (s *AppTestSuite) TestFailedActivationKeepsActiveProfile() {
	t := s.T()
	var ids []uint
	for _, p := range []struct {
		name   string
		active bool
	}{{"A", true}, {"B", false}} {
		body := fmt.Sprintf(`{"name":%q,"image":"http://x/p.png","headlines":["h"],"tagline":"t","isActive":%t}`, p.name, p.active)
		rec, env := s.do(http.MethodPost, "/public-profile", s.admin, body)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		ids = append(ids, decodeData[models.PublicProfile](t, env).ID)
	}

	// Let the sweep through and fail the write that activates B.
	calls := 0
	err := s.conn.Callback().Update().Before("gorm:update").Register("test:fail_activation", func(tx *gorm.DB) {
		if tx.Statement.Schema != nil && tx.Statement.Schema.Table == "public_profiles" {
			calls++
			if calls%2 == 0 {
				_ = tx.AddError(errors.New("update failed"))
			}
		}
	})
	require.NoError(t, err)

	rec, env := s.do(http.MethodPut, fmt.Sprintf("/public-profile/%d", ids[1]), s.admin, `{"isActive":true}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "INTERNAL", env.Code)
	rec, env = s.do(http.MethodPost, fmt.Sprintf("/public-profile/%d/activate", ids[1]), s.admin, "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "INTERNAL", env.Code)

	rec, env = s.do(http.MethodGet, "/public-profile", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, ids[0], decodeData[models.PublicProfile](t, env).ID)
}

func (s *AppTestSuite) TestCancelledRequestWritesNothing() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := httptest.NewRequest(http.MethodPost, "/projects", strings.NewReader(projectBody)).WithContext(ctx)
	r.Header.Set("Content-Type", "application/json")
	r.Header.Set("Authorization", "Bearer "+s.admin)

	rec := httptest.NewRecorder()
	s.app.ServeHTTP(rec, r)
	assert.GreaterOrEqual(t, rec.Code, http.StatusInternalServerError)

	var count int64
	require.NoError(t, s.conn.Model(&models.Project{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestStoredFilesBypassRequestTimeout(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.NewLocal(dir, "http://cms.test")
	require.NoError(t, err)
	obj, err := store.Upload(context.Background(), "cvs", "cv.pdf", "application/pdf", bytes.NewReader(fileOf(pdfMagic, 4096)))
	require.NoError(t, err)

	app, err := NewApp(config.Config{JWTSecret: testSecret, TokenTTL: time.Hour, RequestTimeout: time.Nanosecond}, dbtest.Open(t), store)
	require.NoError(t, err)
	defer app.Close()

	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/uploads/"+obj.PublicID, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 4096, rec.Body.Len())
}

func TestTimeoutAnswersWithEnvelope(t *testing.T) {
	slow := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	rec := httptest.NewRecorder()
	withTimeout(slow, 10*time.Millisecond).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/projects", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"success":false,"error":"request timed out","code":"TIMEOUT"}`, rec.Body.String())

	fast := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	rec = httptest.NewRecorder()
	withTimeout(fast, 0).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/projects", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestApp(t *testing.T) {
	suite.Run(t, new(AppTestSuite))
}
