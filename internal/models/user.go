package models

// Roles.
const (
	RoleAdmin  = "ADMIN"
	RoleViewer = "VIEWER"
)

// User is only used for authentication.
type User struct {
	Base
	Email    string `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Name     string `gorm:"size:255" json:"name,omitempty"`
	Password string `gorm:"size:255;not null" json:"-"` // bcrypt hash
	Role     string `gorm:"size:16;not null" json:"role"`
}

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }
