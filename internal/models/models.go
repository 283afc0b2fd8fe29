// Package models holds the database models of the portfolio.
package models

import (
	"time"

	"gorm.io/datatypes"
)

// StringList is an ordered list of strings stored as a JSON column.
type StringList = datatypes.JSONSlice[string]

// Base replaces gorm.Model: rows are hard deleted so unique keys are freed.
type Base struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Meta exposes the embedded Base to generic repository code.
func (b *Base) Meta() *Base { return b }

// Defaulter is implemented by models with create-time defaults.
type Defaulter interface {
	SetDefaults()
}

type Project struct {
	Base
	Title       string     `gorm:"size:255;uniqueIndex;not null" json:"title"`
	Description string     `gorm:"type:text;not null" json:"description"`
	TechStack   StringList `gorm:"not null" json:"techStack"`
	GithubLink  *string    `gorm:"size:512" json:"githubLink,omitempty"`
	LiveLink    *string    `gorm:"size:512" json:"liveLink,omitempty"`
	Images      StringList `gorm:"not null" json:"images"`
	Awards      StringList `gorm:"not null" json:"awards"`
	Category    string     `gorm:"size:128;not null" json:"category"`
}

func (p *Project) SetDefaults() {
	p.TechStack = StringList{}
	p.Images = StringList{}
	p.Awards = StringList{}
}

type Honor struct {
	Base
	Title       string    `gorm:"size:255;uniqueIndex;not null" json:"title"`
	Description string    `gorm:"type:text;not null" json:"description"`
	Image       string    `gorm:"size:512;not null" json:"image"`
	IssuedBy    string    `gorm:"size:255;not null" json:"issuedBy"`
	IssuedAt    time.Time `gorm:"not null" json:"issuedAt"`
}

// Experience exclusively owns its roles: replacing or deleting it removes them.
type Experience struct {
	Base
	Company     string           `gorm:"size:255;uniqueIndex;not null" json:"company"`
	CompanyLink *string          `gorm:"size:512" json:"companyLink,omitempty"`
	Logo        string           `gorm:"size:512;not null" json:"logo"`
	Period      string           `gorm:"size:128;not null" json:"period"`
	Roles       []ExperienceRole `gorm:"foreignKey:ExperienceID;constraint:OnDelete:CASCADE" json:"roles"`
}

func (e *Experience) SetDefaults() { e.Roles = []ExperienceRole{} }

type ExperienceRole struct {
	Base
	ExperienceID uint       `gorm:"index;not null" json:"experienceId"`
	Title        string     `gorm:"size:255;not null" json:"title"`
	Period       string     `gorm:"size:128;not null" json:"period"`
	Description  StringList `gorm:"not null" json:"description"`
	Position     int        `gorm:"not null" json:"position"`
}

type Education struct {
	Base
	Institution  string     `gorm:"size:255;not null" json:"institution"`
	Degree       string     `gorm:"size:255;not null" json:"degree"`
	Period       string     `gorm:"size:128;not null" json:"period"`
	CGPA         *string    `gorm:"column:cgpa;size:32" json:"cgpa,omitempty"`
	Logo         string     `gorm:"size:512;not null" json:"logo"`
	Link         *string    `gorm:"size:512" json:"link,omitempty"`
	CoreCourses  StringList `gorm:"not null" json:"coreCourses"`
	IsActive     bool       `gorm:"not null;index" json:"isActive"`
	DisplayOrder int        `gorm:"not null;index" json:"displayOrder"`
}

func (e *Education) SetDefaults() { e.IsActive = true }

// Skill icon types.
const (
	IconReact  = "react-icon"
	IconCustom = "custom"
	IconText   = "text"
)

type Skill struct {
	Base
	Name         string  `gorm:"size:128;not null" json:"name"`
	Category     string  `gorm:"size:128;not null;index" json:"category"`
	IconType     string  `gorm:"size:32;not null" json:"iconType"`
	IconName     *string `gorm:"size:128" json:"iconName,omitempty"`
	IconURL      *string `gorm:"column:icon_url;size:512" json:"iconUrl,omitempty"`
	Color        *string `gorm:"size:32" json:"color,omitempty"`
	Proficiency  *string `gorm:"size:32" json:"proficiency,omitempty"`
	IsActive     bool    `gorm:"not null;index" json:"isActive"`
	DisplayOrder int     `gorm:"not null" json:"displayOrder"`
}

func (s *Skill) SetDefaults() { s.IsActive = true }

// PublicProfile: at most one row is active at any time.
type PublicProfile struct {
	Base
	Name      string     `gorm:"size:255;not null" json:"name"`
	Image     string     `gorm:"size:512;not null" json:"image"`
	Headlines StringList `gorm:"not null" json:"headlines"`
	Tagline   string     `gorm:"type:text;not null" json:"tagline"`
	IsActive  bool       `gorm:"not null" json:"isActive"`
}

func (p *PublicProfile) Active() bool { return p.IsActive }

// Resume is a downloadable CV. At most one row is active at any time.
type Resume struct {
	Base
	Title        string  `gorm:"size:255;not null" json:"title"`
	Description  string  `gorm:"type:text;not null" json:"description"`
	DownloadLink string  `gorm:"size:512;not null" json:"downloadLink"`
	FileName     *string `gorm:"size:255" json:"fileName,omitempty"`
	FileSize     *int64  `json:"fileSize,omitempty"`
	FileType     *string `gorm:"size:128" json:"fileType,omitempty"`
	IsActive     bool    `gorm:"not null" json:"isActive"`
}

func (r *Resume) Active() bool { return r.IsActive }
