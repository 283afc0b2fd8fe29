package repository

import (
	"context"

	"github.com/aTrapDeer/portfolio-cms/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type activatable[M any] interface {
	entity[M]
	Active() bool
}

// Exclusive is a repository for entity types where at most one row may be
// active. Activating a row deactivates every other row of the type within the
// same transaction.
type Exclusive[M any, PM activatable[M]] struct {
	*CRUD[M, PM]
}

func NewExclusive[M any, PM activatable[M]](db *gorm.DB) *Exclusive[M, PM] {
	return &Exclusive[M, PM]{CRUD: NewCRUD[M, PM](db)}
}

func (r *Exclusive[M, PM]) Create(ctx context.Context, m *M) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if PM(m).Active() {
			if err := r.sweep(tx, 0); err != nil {
				return err
			}
		}
		PM(m).Meta().ID = 0
		return tx.Omit(clause.Associations).Create(m).Error
	})
	return translate(err)
}

func (r *Exclusive[M, PM]) Update(ctx context.Context, id uint, apply func(*M)) (*M, error) {
	var out *M
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m M
		if err := tx.First(&m, id).Error; err != nil {
			return err
		}
		apply(&m)
		PM(&m).Meta().ID = id
		if PM(&m).Active() {
			if err := r.sweep(tx, id); err != nil {
				return err
			}
		}
		if err := tx.Omit(clause.Associations).Save(&m).Error; err != nil {
			return err
		}
		out = &m
		return nil
	})
	if err != nil {
		return nil, translate(err)
	}
	return out, nil
}

// SetActiveExclusive makes id the only active row.
func (r *Exclusive[M, PM]) SetActiveExclusive(ctx context.Context, id uint) (*M, error) {
	var m M
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&m, id).Error; err != nil {
			return err
		}
		if err := r.sweep(tx, id); err != nil {
			return err
		}
		if err := tx.Model(new(M)).Where("id = ?", id).Update("is_active", true).Error; err != nil {
			return err
		}
		return tx.First(&m, id).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return &m, nil
}

// Active returns the active row, or errs.ErrNotFound when none is active.
func (r *Exclusive[M, PM]) Active(ctx context.Context) (*M, error) {
	var m M
	if err := r.db.WithContext(ctx).Where("is_active = ?", true).First(&m).Error; err != nil {
		return nil, translate(err)
	}
	return &m, nil
}

// sweep deactivates every active row except keep (0 keeps none).
func (r *Exclusive[M, PM]) sweep(tx *gorm.DB, keep uint) error {
	q := tx.Model(new(M)).Where("is_active = ?", true)
	if keep != 0 {
		q = q.Where("id <> ?", keep)
	}
	return q.Update("is_active", false).Error
}

type (
	Profiles = Exclusive[models.PublicProfile, *models.PublicProfile]
	Resumes  = Exclusive[models.Resume, *models.Resume]
)

func NewProfiles(db *gorm.DB) *Profiles { return NewExclusive[models.PublicProfile, *models.PublicProfile](db) }

func NewResumes(db *gorm.DB) *Resumes { return NewExclusive[models.Resume, *models.Resume](db) }
