// Package handlers binds HTTP routes to the schema validator and the
// repositories and shapes every response with the httpx envelope.
package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/aTrapDeer/portfolio-cms/internal/auth"
	"github.com/aTrapDeer/portfolio-cms/internal/errs"
	"github.com/aTrapDeer/portfolio-cms/internal/httpx"
	"github.com/aTrapDeer/portfolio-cms/internal/models"
	"github.com/aTrapDeer/portfolio-cms/internal/repository"
	"github.com/aTrapDeer/portfolio-cms/internal/revalidate"
	"github.com/aTrapDeer/portfolio-cms/internal/schema"
)

// maxBody caps JSON request bodies.
const maxBody = 1 << 20

// Store is the repository contract a Resource needs.
type Store[M any] interface {
	Create(ctx context.Context, m *M) error
	List(ctx context.Context, q repository.Query) ([]M, error)
	Get(ctx context.Context, id uint) (*M, error)
	Update(ctx context.Context, id uint, apply func(*M)) (*M, error)
	Delete(ctx context.Context, id uint) (*M, error)
}

// Input is a schema input that can be copied onto its model.
type Input[M any] interface {
	Apply(*M)
}

// Resource serves the uniform list/get/create/update/delete routes of one
// entity type. Writes must be mounted behind auth.Gate.RequireAdmin.
type Resource[M any, In Input[M]] struct {
	// Name is the URL segment and the revalidation resource name.
	Name     string
	Store    Store[M]
	Query    repository.Query
	Notifier *revalidate.Notifier

	// Gate, when set, lets admins list inactive rows with ?all=true.
	Gate *auth.Gate
}

// Register mounts the routes under /{Name}.
func (h *Resource[M, In]) Register(mux *http.ServeMux, gate *auth.Gate) {
	base := "/" + h.Name
	mux.HandleFunc("GET "+base, h.List)
	mux.HandleFunc("GET "+base+"/{id}", h.Get)
	mux.Handle("POST "+base, gate.RequireAdmin(http.HandlerFunc(h.Create)))
	mux.Handle("PUT "+base+"/{id}", gate.RequireAdmin(http.HandlerFunc(h.Update)))
	mux.Handle("DELETE "+base+"/{id}", gate.RequireAdmin(http.HandlerFunc(h.Delete)))
}

func (h *Resource[M, In]) List(w http.ResponseWriter, r *http.Request) {
	q := h.Query
	if q.ActiveOnly && h.Gate != nil && r.URL.Query().Get("all") == "true" {
		admin, err := h.Gate.IsAdmin(r)
		if err != nil {
			httpx.Fail(w, r, err)
			return
		}
		q.ActiveOnly = !admin
	}
	list, err := h.Store.List(r.Context(), q)
	if err != nil {
		httpx.Fail(w, r, err)
		return
	}
	httpx.OK(w, list)
}

func (h *Resource[M, In]) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Fail(w, r, err)
		return
	}
	m, err := h.Store.Get(r.Context(), id)
	if err != nil {
		httpx.Fail(w, r, err)
		return
	}
	httpx.OK(w, m)
}

func (h *Resource[M, In]) Create(w http.ResponseWriter, r *http.Request) {
	var in In
	if err := schema.Decode(http.MaxBytesReader(w, r.Body, maxBody), &in, schema.Create); err != nil {
		httpx.Fail(w, r, err)
		return
	}
	m := new(M)
	if d, ok := any(m).(models.Defaulter); ok {
		d.SetDefaults()
	}
	in.Apply(m)
	if err := h.Store.Create(r.Context(), m); err != nil {
		httpx.Fail(w, r, err)
		return
	}
	h.Notifier.Notify(h.Name)
	httpx.Created(w, m)
}

func (h *Resource[M, In]) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Fail(w, r, err)
		return
	}
	var in In
	if err := schema.Decode(http.MaxBytesReader(w, r.Body, maxBody), &in, schema.Patch); err != nil {
		httpx.Fail(w, r, err)
		return
	}
	m, err := h.Store.Update(r.Context(), id, in.Apply)
	if err != nil {
		httpx.Fail(w, r, err)
		return
	}
	h.Notifier.Notify(h.Name)
	httpx.OK(w, m)
}

func (h *Resource[M, In]) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Fail(w, r, err)
		return
	}
	m, err := h.Store.Delete(r.Context(), id)
	if err != nil {
		httpx.Fail(w, r, err)
		return
	}
	h.Notifier.Notify(h.Name)
	httpx.OK(w, m)
}

// pathID parses {id}. Ids are opaque to callers, so a malformed one is
// simply a missing resource.
func pathID(r *http.Request) (uint, error) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, errs.ErrNotFound
	}
	return uint(id), nil
}
