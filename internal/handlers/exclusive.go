package handlers

import (
	"context"
	"net/http"

	"github.com/aTrapDeer/portfolio-cms/internal/auth"
	"github.com/aTrapDeer/portfolio-cms/internal/httpx"
)

// ActiveStore is a Store that keeps at most one active row.
type ActiveStore[M any] interface {
	Store[M]
	Active(ctx context.Context) (*M, error)
	SetActiveExclusive(ctx context.Context, id uint) (*M, error)
}

// Exclusive adds the single-active routes to a Resource.
type Exclusive[M any, In Input[M]] struct {
	*Resource[M, In]
	Active ActiveStore[M]
}

func NewExclusive[M any, In Input[M]](res *Resource[M, In], store ActiveStore[M]) *Exclusive[M, In] {
	res.Store = store
	return &Exclusive[M, In]{Resource: res, Active: store}
}

// RegisterProfile mounts the public profile routes: the bare path returns
// the active profile and /all lists every profile.
func (h *Exclusive[M, In]) RegisterProfile(mux *http.ServeMux, gate *auth.Gate) {
	base := "/" + h.Name
	mux.HandleFunc("GET "+base, h.GetActive)
	mux.HandleFunc("GET "+base+"/all", h.List)
	h.registerOne(mux, gate)
	mux.Handle("POST "+base, gate.RequireAdmin(http.HandlerFunc(h.Create)))
}

// RegisterCVs mounts the CV routes; GET /{Name}?active=true lists only the
// active CV.
func (h *Exclusive[M, In]) RegisterCVs(mux *http.ServeMux, gate *auth.Gate) {
	base := "/" + h.Name
	mux.HandleFunc("GET "+base, h.ListCVs)
	h.registerOne(mux, gate)
	mux.Handle("POST "+base, gate.RequireAdmin(http.HandlerFunc(h.Create)))
}

func (h *Exclusive[M, In]) registerOne(mux *http.ServeMux, gate *auth.Gate) {
	base := "/" + h.Name
	mux.HandleFunc("GET "+base+"/{id}", h.Get)
	mux.Handle("PUT "+base+"/{id}", gate.RequireAdmin(http.HandlerFunc(h.Update)))
	mux.Handle("DELETE "+base+"/{id}", gate.RequireAdmin(http.HandlerFunc(h.Delete)))
	mux.Handle("POST "+base+"/{id}/activate", gate.RequireAdmin(http.HandlerFunc(h.Activate)))
}

// GetActive returns the active row, 404 when none is active.
func (h *Exclusive[M, In]) GetActive(w http.ResponseWriter, r *http.Request) {
	m, err := h.Active.Active(r.Context())
	if err != nil {
		httpx.Fail(w, r, err)
		return
	}
	httpx.OK(w, m)
}

func (h *Exclusive[M, In]) ListCVs(w http.ResponseWriter, r *http.Request) {
	q := h.Query
	q.ActiveOnly = r.URL.Query().Get("active") == "true"
	list, err := h.Store.List(r.Context(), q)
	if err != nil {
		httpx.Fail(w, r, err)
		return
	}
	httpx.OK(w, list)
}

// Activate makes {id} the only active row.
func (h *Exclusive[M, In]) Activate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Fail(w, r, err)
		return
	}
	m, err := h.Active.SetActiveExclusive(r.Context(), id)
	if err != nil {
		httpx.Fail(w, r, err)
		return
	}
	h.Notifier.Notify(h.Name)
	httpx.OK(w, m)
}
