// Package storage keeps uploaded images and documents and decides which
// uploads are acceptable.
package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Object is a stored upload.
type Object struct {
	URL      string `json:"url"`
	PublicID string `json:"publicId"`
}

// Store is the object storage contract: uploads only ever create new objects.
type Store interface {
	Upload(ctx context.Context, folder, filename, contentType string, r io.Reader) (Object, error)
}

var extensions = map[string]string{
	"image/jpeg":         ".jpg",
	"image/png":          ".png",
	"image/webp":         ".webp",
	"image/gif":          ".gif",
	"application/pdf":    ".pdf",
	"application/msword": ".doc",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": ".docx",
}

// Local stores objects on disk and serves them under /uploads/.
type Local struct {
	dir     string
	baseURL string
}

func NewLocal(dir, baseURL string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	return &Local{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Upload writes r under folder with a fresh random name. The object becomes
// visible only once fully written.
func (s *Local) Upload(ctx context.Context, folder, filename, contentType string, r io.Reader) (Object, error) {
	id := path.Join(folder, uuid.NewString()+extension(contentType, filename))
	dst := filepath.Join(s.dir, filepath.FromSlash(id))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return Object{}, fmt.Errorf("create folder: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return Object{}, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return Object{}, fmt.Errorf("write object: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return Object{}, fmt.Errorf("close object: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return Object{}, err
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return Object{}, fmt.Errorf("store object: %w", err)
	}
	return Object{URL: s.baseURL + "/uploads/" + id, PublicID: id}, nil
}

// Handler serves stored objects; mount it at /uploads/.
func (s *Local) Handler() http.Handler {
	return http.StripPrefix("/uploads/", http.FileServer(http.Dir(s.dir)))
}

func extension(contentType, filename string) string {
	if mt, _, err := mime.ParseMediaType(contentType); err == nil {
		if ext, ok := extensions[mt]; ok {
			return ext
		}
	}
	return strings.ToLower(filepath.Ext(filename))
}
