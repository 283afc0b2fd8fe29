package storage

import (
	"fmt"
	"io"
	"mime"
	"slices"
	"strings"

	"github.com/aTrapDeer/portfolio-cms/internal/errs"
	"github.com/gabriel-vasile/mimetype"
)

const mb = 1 << 20

// Policy restricts what may be uploaded into a folder. It is the only place
// where accepted file types and size ceilings are defined.
type Policy struct {
	Folder  string
	MaxSize int64
	Types   []string
}

var (
	Images = Policy{
		Folder:  "images",
		MaxSize: 5 * mb,
		Types:   []string{"image/jpeg", "image/png", "image/webp", "image/gif"},
	}
	Documents = Policy{
		Folder:  "cvs",
		MaxSize: 10 * mb,
		Types: []string{
			"application/pdf",
			"application/msword",
			"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		},
	}
)

var policies = map[string]Policy{
	Images.Folder:    Images,
	Documents.Folder: Documents,
}

// MaxUploadSize is the largest ceiling of all folders.
func MaxUploadSize() int64 {
	var largest int64
	for _, p := range policies {
		largest = max(largest, p.MaxSize)
	}
	return largest
}

// PolicyFor returns the policy of a folder.
func PolicyFor(folder string) (Policy, error) {
	p, ok := policies[folder]
	if !ok {
		return Policy{}, errs.BadRequest("unknown upload folder %q", folder)
	}
	return p, nil
}

// Allows reports whether contentType (parameters ignored) is accepted.
func (p Policy) Allows(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return slices.Contains(p.Types, strings.ToLower(mt))
}

// Check validates a file against the policy.
func (p Policy) Check(contentType string, size int64) error {
	if !p.Allows(contentType) {
		return errs.BadRequest("file type %q is not allowed in %s (allowed: %s)", contentType, p.Folder, strings.Join(p.Types, ", "))
	}
	if size <= 0 {
		return errs.BadRequest("file is empty")
	}
	if size > p.MaxSize {
		return errs.BadRequest("file exceeds the %s limit of %s", p.Folder, humanSize(p.MaxSize))
	}
	return nil
}

// Sniff checks that the content of r is of the declared type and rewinds r.
// The detected type or any of its parents matches; Check decides which
// declared types a folder accepts.
func Sniff(r io.ReadSeeker, declared string) error {
	mt, _, err := mime.ParseMediaType(declared)
	if err != nil {
		return errs.BadRequest("invalid content type %q", declared)
	}
	detected, err := mimetype.DetectReader(r)
	if err != nil {
		return fmt.Errorf("detect content type: %w", err)
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewind upload: %w", err)
	}
	for m := detected; m != nil; m = m.Parent() {
		if m.Is(mt) {
			return nil
		}
	}
	return errs.BadRequest("file content is %s, not the declared %s", detected.String(), mt)
}

func humanSize(n int64) string {
	if n%mb == 0 {
		return fmt.Sprintf("%dMB", n/mb)
	}
	return fmt.Sprintf("%d bytes", n)
}
