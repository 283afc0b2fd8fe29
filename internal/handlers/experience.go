package handlers

import (
	"net/http"

	"github.com/aTrapDeer/portfolio-cms/internal/auth"
	"github.com/aTrapDeer/portfolio-cms/internal/httpx"
	"github.com/aTrapDeer/portfolio-cms/internal/models"
	"github.com/aTrapDeer/portfolio-cms/internal/repository"
	"github.com/aTrapDeer/portfolio-cms/internal/schema"
)

// Experience adds the role routes to the experience resource.
type Experience struct {
	*Resource[models.Experience, schema.ExperienceInput]
	Experiences *repository.Experiences
}

func NewExperience(res *Resource[models.Experience, schema.ExperienceInput], store *repository.Experiences) *Experience {
	res.Store = store
	return &Experience{Resource: res, Experiences: store}
}

func (h *Experience) Register(mux *http.ServeMux, gate *auth.Gate) {
	h.Resource.Register(mux, gate)
	base := "/" + h.Name
	mux.HandleFunc("GET "+base+"/{id}/roles", h.Roles)
	mux.Handle("PUT "+base+"/{id}/roles", gate.RequireAdmin(http.HandlerFunc(h.ReplaceRoles)))
}

func (h *Experience) Roles(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Fail(w, r, err)
		return
	}
	if _, err := h.Experiences.Get(r.Context(), id); err != nil {
		httpx.Fail(w, r, err)
		return
	}
	roles, err := h.Experiences.Roles(r.Context(), id)
	if err != nil {
		httpx.Fail(w, r, err)
		return
	}
	httpx.OK(w, roles)
}

// ReplaceRoles swaps the whole role list of an experience.
func (h *Experience) ReplaceRoles(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Fail(w, r, err)
		return
	}
	var in schema.RolesInput
	if err := schema.Decode(http.MaxBytesReader(w, r.Body, maxBody), &in, schema.Create); err != nil {
		httpx.Fail(w, r, err)
		return
	}
	roles, err := h.Experiences.ReplaceRoles(r.Context(), id, in.Models())
	if err != nil {
		httpx.Fail(w, r, err)
		return
	}
	h.Notifier.Notify(h.Name)
	httpx.OK(w, roles)
}
