// Package repository persists the portfolio entities with gorm.
//
// Every multi-step write runs inside one transaction so a failure or a
// cancelled context leaves no partial state behind.
package repository

import (
	"context"
	"strings"

	"github.com/aTrapDeer/portfolio-cms/internal/errs"
	"github.com/aTrapDeer/portfolio-cms/internal/models"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type entity[M any] interface {
	*M
	Meta() *models.Base
}

// Query selects and orders the rows returned by List.
type Query struct {
	ActiveOnly bool
	Order      []string
}

// CRUD is the generic repository shared by every entity type.
type CRUD[M any, PM entity[M]] struct {
	db *gorm.DB
	// scope is applied to reads (preloads).
	scope func(*gorm.DB) *gorm.DB
}

func NewCRUD[M any, PM entity[M]](db *gorm.DB) *CRUD[M, PM] {
	return &CRUD[M, PM]{db: db}
}

func (r *CRUD[M, PM]) read(q *gorm.DB) *gorm.DB {
	if r.scope != nil {
		return r.scope(q)
	}
	return q
}

func (r *CRUD[M, PM]) Create(ctx context.Context, m *M) error {
	PM(m).Meta().ID = 0
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(m).Error)
}

func (r *CRUD[M, PM]) List(ctx context.Context, q Query) ([]M, error) {
	tx := r.read(r.db.WithContext(ctx))
	if q.ActiveOnly {
		tx = tx.Where("is_active = ?", true)
	}
	for _, o := range q.Order {
		tx = tx.Order(o)
	}
	var list []M
	if err := tx.Find(&list).Error; err != nil {
		return nil, translate(err)
	}
	if list == nil {
		list = []M{}
	}
	return list, nil
}

func (r *CRUD[M, PM]) Get(ctx context.Context, id uint) (*M, error) {
	var m M
	if err := r.read(r.db.WithContext(ctx)).First(&m, id).Error; err != nil {
		return nil, translate(err)
	}
	return &m, nil
}

// Update loads the row, applies the changes and saves it in one transaction.
func (r *CRUD[M, PM]) Update(ctx context.Context, id uint, apply func(*M)) (*M, error) {
	var out *M
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m M
		if err := tx.First(&m, id).Error; err != nil {
			return err
		}
		apply(&m)
		PM(&m).Meta().ID = id
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

// Delete removes the row and returns it as it was.
func (r *CRUD[M, PM]) Delete(ctx context.Context, id uint) (*M, error) {
	var m M
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.read(tx).First(&m, id).Error; err != nil {
			return err
		}
		return tx.Delete(new(M), id).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return &m, nil
}

// UpsertBy replaces the fields of the row whose column equals value, or
// inserts m when there is none. Unlike Create it never reports a conflict on
// that key.
func (r *CRUD[M, PM]) UpsertBy(ctx context.Context, column string, value any, m *M) (*M, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing M
		err := tx.Where(clause.Eq{Column: clause.Column{Name: column}, Value: value}).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			PM(m).Meta().ID = 0
			return tx.Omit(clause.Associations).Create(m).Error
		case err != nil:
			return err
		}
		meta, prev := PM(m).Meta(), PM(&existing).Meta()
		meta.ID = prev.ID
		meta.CreatedAt = prev.CreatedAt
		return tx.Omit(clause.Associations).Save(m).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return m, nil
}

// translate maps gorm errors onto the errs taxonomy.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return errs.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey), isUniqueViolation(err):
		return errors.WithMessage(errs.ErrConflict, err.Error())
	default:
		return errors.WithStack(err)
	}
}

// isUniqueViolation catches drivers that do not translate constraint errors.
func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "duplicate key")
}
