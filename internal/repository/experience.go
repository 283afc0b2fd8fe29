package repository

import (
	"context"

	"github.com/aTrapDeer/portfolio-cms/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Experiences owns the experience roles: they are written, replaced and
// deleted together with their experience.
type Experiences struct {
	*CRUD[models.Experience, *models.Experience]
}

func NewExperiences(db *gorm.DB) *Experiences {
	c := NewCRUD[models.Experience, *models.Experience](db)
	c.scope = func(q *gorm.DB) *gorm.DB {
		return q.Preload("Roles", func(db *gorm.DB) *gorm.DB {
			return db.Order("position")
		})
	}
	return &Experiences{CRUD: c}
}

func (r *Experiences) Create(ctx context.Context, e *models.Experience) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		roles := e.Roles
		e.ID = 0
		if err := tx.Omit(clause.Associations).Create(e).Error; err != nil {
			return err
		}
		if err := insertRoles(tx, e.ID, roles); err != nil {
			return err
		}
		e.Roles = roles
		return nil
	})
	return translate(err)
}

// Update applies the changes; when apply sets Roles (even to an empty slice)
// the previous roles are replaced in the same transaction.
func (r *Experiences) Update(ctx context.Context, id uint, apply func(*models.Experience)) (*models.Experience, error) {
	var out models.Experience
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var e models.Experience
		if err := tx.First(&e, id).Error; err != nil {
			return err
		}
		e.Roles = nil
		apply(&e)
		roles := e.Roles
		e.ID = id
		if err := tx.Omit(clause.Associations).Save(&e).Error; err != nil {
			return err
		}
		if roles != nil {
			if err := replaceRoles(tx, id, roles); err != nil {
				return err
			}
		}
		return r.read(tx).First(&out, id).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return &out, nil
}

// ReplaceRoles swaps the whole role set of an experience. Either every old
// role is gone and every new one stored, or nothing changes.
func (r *Experiences) ReplaceRoles(ctx context.Context, id uint, roles []models.ExperienceRole) ([]models.ExperienceRole, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id").First(&models.Experience{}, id).Error; err != nil {
			return err
		}
		return replaceRoles(tx, id, roles)
	})
	if err != nil {
		return nil, translate(err)
	}
	return roles, nil
}

// Delete removes the experience and the roles it owns.
func (r *Experiences) Delete(ctx context.Context, id uint) (*models.Experience, error) {
	var e models.Experience
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.read(tx).First(&e, id).Error; err != nil {
			return err
		}
		if err := tx.Where("experience_id = ?", id).Delete(&models.ExperienceRole{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Experience{}, id).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return &e, nil
}

// Roles lists the roles owned by an experience in display order.
func (r *Experiences) Roles(ctx context.Context, id uint) ([]models.ExperienceRole, error) {
	roles := []models.ExperienceRole{}
	err := r.db.WithContext(ctx).Where("experience_id = ?", id).Order("position").Find(&roles).Error
	return roles, translate(err)
}

func replaceRoles(tx *gorm.DB, id uint, roles []models.ExperienceRole) error {
	if err := tx.Where("experience_id = ?", id).Delete(&models.ExperienceRole{}).Error; err != nil {
		return err
	}
	return insertRoles(tx, id, roles)
}

func insertRoles(tx *gorm.DB, id uint, roles []models.ExperienceRole) error {
	if len(roles) == 0 {
		return nil
	}
	for i := range roles {
		roles[i].ID = 0
		roles[i].ExperienceID = id
		roles[i].Position = i
	}
	return tx.Create(&roles).Error
}
