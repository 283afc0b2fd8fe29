package handlers

import (
	"net/http"

	"github.com/aTrapDeer/portfolio-cms/internal/errs"
	"github.com/aTrapDeer/portfolio-cms/internal/httpx"
	"github.com/aTrapDeer/portfolio-cms/internal/storage"
)

// Upload accepts multipart uploads (`file` and `folder` fields) and stores
// them once the folder policy accepts both the declared type and the content.
type Upload struct {
	Store storage.Store
}

func (h *Upload) Create(w http.ResponseWriter, r *http.Request) {
	// Room for the largest file plus the other multipart parts.
	r.Body = http.MaxBytesReader(w, r.Body, storage.MaxUploadSize()+maxBody)
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		httpx.Fail(w, r, errs.BadRequest("invalid or too large multipart form"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	policy, err := storage.PolicyFor(r.FormValue("folder"))
	if err != nil {
		httpx.Fail(w, r, err)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		httpx.Fail(w, r, errs.BadRequest("file is required"))
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if err := policy.Check(contentType, header.Size); err != nil {
		httpx.Fail(w, r, err)
		return
	}
	if err := storage.Sniff(file, contentType); err != nil {
		httpx.Fail(w, r, err)
		return
	}
	obj, err := h.Store.Upload(r.Context(), policy.Folder, header.Filename, contentType, file)
	if err != nil {
		httpx.Fail(w, r, err)
		return
	}
	httpx.Created(w, obj)
}
