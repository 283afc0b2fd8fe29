package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/aTrapDeer/portfolio-cms/internal/admin"
	"github.com/aTrapDeer/portfolio-cms/internal/auth"
	"github.com/aTrapDeer/portfolio-cms/internal/config"
	"github.com/aTrapDeer/portfolio-cms/internal/handlers"
	"github.com/aTrapDeer/portfolio-cms/internal/httpx"
	"github.com/aTrapDeer/portfolio-cms/internal/models"
	"github.com/aTrapDeer/portfolio-cms/internal/repository"
	"github.com/aTrapDeer/portfolio-cms/internal/revalidate"
	"github.com/aTrapDeer/portfolio-cms/internal/schema"
	"github.com/aTrapDeer/portfolio-cms/internal/storage"
	"github.com/rs/cors"
	"gorm.io/gorm"
)

// Login throttling: failures allowed per email and client address per window.
const (
	maxLoginFailures = 5
	loginWindow      = 15 * time.Minute
)

// App holds the wired dependencies of the server.
type App struct {
	tokens   *auth.Tokens
	users    *repository.Users
	notifier *revalidate.Notifier
	handler  http.Handler
}

// NewApp wires repositories, handlers and middleware on top of an open,
// migrated database and an upload store.
func NewApp(cfg config.Config, conn *gorm.DB, store *storage.Local) (*App, error) {
	users := repository.NewUsers(conn)
	tokens := auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL)
	gate := auth.NewGate(tokens, users)
	notifier := revalidate.New(cfg.RevalidationURL, cfg.RevalidationSecret)

	projects := repository.NewProjects(conn)
	honors := repository.NewHonors(conn)
	experiences := repository.NewExperiences(conn)
	education := repository.NewEducation(conn)
	skills := repository.NewSkills(conn)
	profiles := repository.NewProfiles(conn)
	resumes := repository.NewResumes(conn)

	mux := http.NewServeMux()

	(&handlers.Resource[models.Project, schema.ProjectInput]{
		Name: "projects", Store: projects, Notifier: notifier,
		Query: repository.Query{Order: []string{"created_at desc", "id desc"}},
	}).Register(mux, gate)

	(&handlers.Resource[models.Honor, schema.HonorInput]{
		Name: "honors", Store: honors, Notifier: notifier,
		Query: repository.Query{Order: []string{"issued_at desc", "id desc"}},
	}).Register(mux, gate)

	handlers.NewExperience(&handlers.Resource[models.Experience, schema.ExperienceInput]{
		Name: "experience", Notifier: notifier,
		Query: repository.Query{Order: []string{"id desc"}},
	}, experiences).Register(mux, gate)

	(&handlers.Resource[models.Education, schema.EducationInput]{
		Name: "education", Store: education, Notifier: notifier, Gate: gate,
		Query: repository.Query{ActiveOnly: true, Order: []string{"display_order", "id"}},
	}).Register(mux, gate)

	(&handlers.Resource[models.Skill, schema.SkillInput]{
		Name: "skills", Store: skills, Notifier: notifier, Gate: gate,
		Query: repository.Query{ActiveOnly: true, Order: []string{"category", "display_order", "name"}},
	}).Register(mux, gate)

	handlers.NewExclusive(&handlers.Resource[models.PublicProfile, schema.ProfileInput]{
		Name: "public-profile", Notifier: notifier,
		Query: repository.Query{Order: []string{"created_at desc", "id desc"}},
	}, profiles).RegisterProfile(mux, gate)

	handlers.NewExclusive(&handlers.Resource[models.Resume, schema.ResumeInput]{
		Name: "cvs", Notifier: notifier,
		Query: repository.Query{Order: []string{"created_at desc", "id desc"}},
	}, resumes).RegisterCVs(mux, gate)

	upload := &handlers.Upload{Store: store}
	mux.Handle("POST /upload", gate.RequireAdmin(http.HandlerFunc(upload.Create)))

	authH := &handlers.Auth{
		Users:        users,
		Tokens:       tokens,
		Limiter:      auth.NewLimiter(maxLoginFailures, loginWindow),
		CookieSecure: cfg.CookieSecure,
	}
	mux.HandleFunc("POST /auth/login", authH.Login)
	mux.HandleFunc("POST /auth/logout", authH.Logout)
	mux.Handle("GET /auth/me", gate.RequireAdmin(http.HandlerFunc(authH.Me)))

	pages, err := admin.New([]admin.Section{
		{Slug: "projects", Label: "Projects", API: "/projects", Items: items(projects.List, func(p models.Project) admin.Item {
			return admin.Item{ID: p.ID, Label: p.Title}
		})},
		{Slug: "honors", Label: "Honors", API: "/honors", Items: items(honors.List, func(h models.Honor) admin.Item {
			return admin.Item{ID: h.ID, Label: h.Title}
		})},
		{Slug: "experience", Label: "Experience", API: "/experience", Items: items(experiences.List, func(e models.Experience) admin.Item {
			return admin.Item{ID: e.ID, Label: e.Company}
		})},
		{Slug: "education", Label: "Education", API: "/education", Items: items(education.List, func(e models.Education) admin.Item {
			return admin.Item{ID: e.ID, Label: e.Institution + ", " + e.Degree}
		})},
		{Slug: "skills", Label: "Skills", API: "/skills", Items: items(skills.List, func(s models.Skill) admin.Item {
			return admin.Item{ID: s.ID, Label: s.Category + " / " + s.Name}
		})},
		{Slug: "profile", Label: "Public profile", API: "/public-profile/all", Items: items(profiles.List, func(p models.PublicProfile) admin.Item {
			return admin.Item{ID: p.ID, Label: activeLabel(p.Name, p.IsActive)}
		})},
		{Slug: "cvs", Label: "CVs", API: "/cvs", Items: items(resumes.List, func(r models.Resume) admin.Item {
			return admin.Item{ID: r.ID, Label: activeLabel(r.Title, r.IsActive)}
		})},
	})
	if err != nil {
		return nil, err
	}
	pages.Register(mux, gate)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.OK(w, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSONError(w, http.StatusNotFound, httpx.CodeNotFound, "route not found", nil)
	})

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.FrontendURLs,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})
	// Stored files stream outside the timeout, which buffers whole responses.
	root := http.NewServeMux()
	root.Handle("GET /uploads/", store.Handler())
	root.Handle("/", withTimeout(mux, cfg.RequestTimeout))
	h := c.Handler(withLogging(withRecover(root)))

	return &App{
		tokens:   tokens,
		users:    users,
		notifier: notifier,
		handler:  h,
	}, nil
}

func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.handler.ServeHTTP(w, r)
}

// Close waits for pending revalidation calls.
func (a *App) Close() {
	a.notifier.Wait()
}

func items[M any](list func(context.Context, repository.Query) ([]M, error), item func(M) admin.Item) func(context.Context) ([]admin.Item, error) {
	return func(ctx context.Context) ([]admin.Item, error) {
		rows, err := list(ctx, repository.Query{Order: []string{"id"}})
		if err != nil {
			return nil, err
		}
		out := make([]admin.Item, len(rows))
		for i, row := range rows {
			out[i] = item(row)
		}
		return out, nil
	}
}

func activeLabel(label string, active bool) string {
	if active {
		return label + " (active)"
	}
	return label
}

const timeoutBody = `{"success":false,"error":"request timed out","code":"` + httpx.CodeTimeout + `"}`

// withTimeout answers 503 with the JSON envelope once d has passed.
func withTimeout(next http.Handler, d time.Duration) http.Handler {
	if d <= 0 {
		return next
	}
	th := http.TimeoutHandler(next, d, timeoutBody)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		th.ServeHTTP(jsonTimeoutWriter{w}, r)
	})
}

// jsonTimeoutWriter labels the bare 503 written by http.TimeoutHandler.
type jsonTimeoutWriter struct {
	http.ResponseWriter
}

func (w jsonTimeoutWriter) WriteHeader(code int) {
	if code == http.StatusServiceUnavailable && w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "application/json")
	}
	w.ResponseWriter.WriteHeader(code)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// withLogging logs method, path, status and duration of every request.
func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Printf("%s %s %d %s", r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}

func withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				log.Printf("panic serving %s %s: %v", r.Method, r.URL.Path, rec)
				httpx.JSONError(w, http.StatusInternalServerError, httpx.CodeInternal, "internal error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
