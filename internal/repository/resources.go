package repository

import (
	"context"

	"github.com/aTrapDeer/portfolio-cms/internal/models"
	"gorm.io/gorm"
)

type Projects struct {
	*CRUD[models.Project, *models.Project]
}

func NewProjects(db *gorm.DB) *Projects {
	return &Projects{CRUD: NewCRUD[models.Project, *models.Project](db)}
}

// UpsertByTitle is used by seeding: an existing project with the same title
// gets its fields replaced.
func (r *Projects) UpsertByTitle(ctx context.Context, title string, p *models.Project) (*models.Project, error) {
	p.Title = title
	return r.UpsertBy(ctx, "title", title, p)
}

type Honors struct {
	*CRUD[models.Honor, *models.Honor]
}

func NewHonors(db *gorm.DB) *Honors {
	return &Honors{CRUD: NewCRUD[models.Honor, *models.Honor](db)}
}

func (r *Honors) UpsertByTitle(ctx context.Context, title string, h *models.Honor) (*models.Honor, error) {
	h.Title = title
	return r.UpsertBy(ctx, "title", title, h)
}

type (
	Education = CRUD[models.Education, *models.Education]
	Skills    = CRUD[models.Skill, *models.Skill]
)

func NewEducation(db *gorm.DB) *Education { return NewCRUD[models.Education, *models.Education](db) }

func NewSkills(db *gorm.DB) *Skills { return NewCRUD[models.Skill, *models.Skill](db) }
