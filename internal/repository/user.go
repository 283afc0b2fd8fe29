package repository

import (
	"context"

	"github.com/aTrapDeer/portfolio-cms/internal/models"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type Users struct {
	db *gorm.DB
}

func NewUsers(db *gorm.DB) *Users {
	return &Users{db: db}
}

func (r *Users) Get(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *Users) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *Users) Create(ctx context.Context, u *models.User) error {
	return translate(r.db.WithContext(ctx).Create(u).Error)
}

// EnsureAdmin creates the admin account, or promotes an existing account with
// that email. An existing password is left untouched. It reports whether a
// new user was created.
func (r *Users) EnsureAdmin(ctx context.Context, email, name, passwordHash string) (bool, error) {
	created := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var u models.User
		err := tx.Where("email = ?", email).First(&u).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			created = true
			return tx.Create(&models.User{Email: email, Name: name, Password: passwordHash, Role: models.RoleAdmin}).Error
		case err != nil:
			return err
		case u.Role != models.RoleAdmin:
			return tx.Model(&u).Update("role", models.RoleAdmin).Error
		}
		return nil
	})
	return created, translate(err)
}
