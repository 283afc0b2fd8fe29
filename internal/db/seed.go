package db

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/aTrapDeer/portfolio-cms/internal/models"
	"github.com/aTrapDeer/portfolio-cms/internal/schema"
	"gopkg.in/yaml.v3"
)

// SeedFile is the YAML layout read by Seed. Entries use the same field names
// as the JSON API and pass the same validation.
type SeedFile struct {
	Projects []map[string]any `yaml:"projects"`
	Honors   []map[string]any `yaml:"honors"`
}

type ProjectUpserter interface {
	UpsertByTitle(ctx context.Context, title string, p *models.Project) (*models.Project, error)
}

type HonorUpserter interface {
	UpsertByTitle(ctx context.Context, title string, h *models.Honor) (*models.Honor, error)
}

// SeedResult counts the upserted rows.
type SeedResult struct {
	Projects int
	Honors   int
}

// Seed upserts the projects and honors of a seed file by title, so running
// it twice leaves the same rows.
func Seed(ctx context.Context, r io.Reader, projects ProjectUpserter, honors HonorUpserter) (SeedResult, error) {
	var res SeedResult
	var file SeedFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil && err != io.EOF {
		return res, fmt.Errorf("parse seed file: %w", err)
	}

	for i, entry := range file.Projects {
		var in schema.ProjectInput
		if err := decodeEntry(entry, &in); err != nil {
			return res, fmt.Errorf("projects[%d]: %w", i, err)
		}
		p := &models.Project{}
		p.SetDefaults()
		in.Apply(p)
		if _, err := projects.UpsertByTitle(ctx, p.Title, p); err != nil {
			return res, fmt.Errorf("projects[%d] %q: %w", i, p.Title, err)
		}
		res.Projects++
	}

	for i, entry := range file.Honors {
		var in schema.HonorInput
		if err := decodeEntry(entry, &in); err != nil {
			return res, fmt.Errorf("honors[%d]: %w", i, err)
		}
		h := &models.Honor{}
		in.Apply(h)
		if _, err := honors.UpsertByTitle(ctx, h.Title, h); err != nil {
			return res, fmt.Errorf("honors[%d] %q: %w", i, h.Title, err)
		}
		res.Honors++
	}
	return res, nil
}

func decodeEntry(entry map[string]any, dst any) error {
	body, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return schema.Decode(bytes.NewReader(body), dst, schema.Create)
}
