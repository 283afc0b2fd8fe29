package schema

import "github.com/aTrapDeer/portfolio-cms/internal/models"

type ProjectInput struct {
	Title       *string   `json:"title" validate:"required,min=1,max=255"`
	Description *string   `json:"description" validate:"required,min=1"`
	TechStack   *[]string `json:"techStack" validate:"required" each:"min=1"`
	GithubLink  *string   `json:"githubLink" validate:"omitempty,http_url"`
	LiveLink    *string   `json:"liveLink" validate:"omitempty,http_url"`
	Images      *[]string `json:"images" validate:"required,min=1" each:"http_url"`
	Awards      *[]string `json:"awards" each:"min=1"`
	Category    *string   `json:"category" validate:"required,min=1"`
}

func (in ProjectInput) Apply(p *models.Project) {
	set(&p.Title, in.Title)
	set(&p.Description, in.Description)
	setList(&p.TechStack, in.TechStack)
	setOptional(&p.GithubLink, in.GithubLink)
	setOptional(&p.LiveLink, in.LiveLink)
	setList(&p.Images, in.Images)
	setList(&p.Awards, in.Awards)
	set(&p.Category, in.Category)
}

type HonorInput struct {
	Title       *string `json:"title" validate:"required,min=1,max=255"`
	Description *string `json:"description" validate:"required,min=1"`
	Image       *string `json:"image" validate:"required,http_url"`
	IssuedBy    *string `json:"issuedBy" validate:"required,min=1"`
	IssuedAt    *string `json:"issuedAt" validate:"required,iso8601"`
}

func (in HonorInput) Apply(h *models.Honor) {
	set(&h.Title, in.Title)
	set(&h.Description, in.Description)
	set(&h.Image, in.Image)
	set(&h.IssuedBy, in.IssuedBy)
	if in.IssuedAt != nil {
		// Already validated by the iso8601 rule.
		h.IssuedAt, _ = ParseTime(*in.IssuedAt)
	}
}

type RoleInput struct {
	Title       *string   `json:"title" validate:"required,min=1"`
	Period      *string   `json:"period" validate:"required,min=1"`
	Description *[]string `json:"description" validate:"required" each:"min=1"`
}

type ExperienceInput struct {
	Company     *string      `json:"company" validate:"required,min=1,max=255"`
	CompanyLink *string      `json:"companyLink" validate:"omitempty,http_url"`
	Logo        *string      `json:"logo" validate:"required,http_url"`
	Period      *string      `json:"period" validate:"required,min=1"`
	Roles       *[]RoleInput `json:"roles" validate:"required"`
}

// Apply replaces the roles wholesale when they are present.
func (in ExperienceInput) Apply(e *models.Experience) {
	set(&e.Company, in.Company)
	setOptional(&e.CompanyLink, in.CompanyLink)
	set(&e.Logo, in.Logo)
	set(&e.Period, in.Period)
	if in.Roles != nil {
		e.Roles = roleModels(*in.Roles)
	}
}

// RolesInput is the body of a wholesale role replacement.
type RolesInput struct {
	Roles *[]RoleInput `json:"roles" validate:"required"`
}

func (in RolesInput) Models() []models.ExperienceRole {
	if in.Roles == nil {
		return []models.ExperienceRole{}
	}
	return roleModels(*in.Roles)
}

func roleModels(in []RoleInput) []models.ExperienceRole {
	roles := make([]models.ExperienceRole, 0, len(in))
	for _, r := range in {
		var role models.ExperienceRole
		set(&role.Title, r.Title)
		set(&role.Period, r.Period)
		role.Description = models.StringList{}
		setList(&role.Description, r.Description)
		roles = append(roles, role)
	}
	return roles
}

type EducationInput struct {
	Institution  *string   `json:"institution" validate:"required,min=1"`
	Degree       *string   `json:"degree" validate:"required,min=1"`
	Period       *string   `json:"period" validate:"required,min=1"`
	CGPA         *string   `json:"cgpa" validate:"max=32"`
	Logo         *string   `json:"logo" validate:"required,http_url"`
	Link         *string   `json:"link" validate:"omitempty,http_url"`
	CoreCourses  *[]string `json:"coreCourses" validate:"required,min=1" each:"min=1"`
	IsActive     *bool     `json:"isActive"`
	DisplayOrder *int      `json:"displayOrder" validate:"gte=0"`
}

func (in EducationInput) Apply(e *models.Education) {
	set(&e.Institution, in.Institution)
	set(&e.Degree, in.Degree)
	set(&e.Period, in.Period)
	setOptional(&e.CGPA, in.CGPA)
	set(&e.Logo, in.Logo)
	setOptional(&e.Link, in.Link)
	setList(&e.CoreCourses, in.CoreCourses)
	set(&e.IsActive, in.IsActive)
	set(&e.DisplayOrder, in.DisplayOrder)
}

type SkillInput struct {
	Name         *string `json:"name" validate:"required,min=1,max=128"`
	Category     *string `json:"category" validate:"required,min=1,max=128"`
	IconType     *string `json:"iconType" validate:"required,oneof=react-icon custom text"`
	IconName     *string `json:"iconName" validate:"max=128"`
	IconURL      *string `json:"iconUrl" validate:"omitempty,http_url"`
	Color        *string `json:"color" validate:"max=32"`
	Proficiency  *string `json:"proficiency" validate:"omitempty,oneof=beginner intermediate advanced expert"`
	IsActive     *bool   `json:"isActive"`
	DisplayOrder *int    `json:"displayOrder" validate:"gte=0"`
}

func (in SkillInput) Apply(s *models.Skill) {
	set(&s.Name, in.Name)
	set(&s.Category, in.Category)
	set(&s.IconType, in.IconType)
	setOptional(&s.IconName, in.IconName)
	setOptional(&s.IconURL, in.IconURL)
	setOptional(&s.Color, in.Color)
	setOptional(&s.Proficiency, in.Proficiency)
	set(&s.IsActive, in.IsActive)
	set(&s.DisplayOrder, in.DisplayOrder)
}

type ProfileInput struct {
	Name      *string   `json:"name" validate:"required,min=1,max=255"`
	Image     *string   `json:"image" validate:"required,http_url"`
	Headlines *[]string `json:"headlines" validate:"required,min=1" each:"min=1"`
	Tagline   *string   `json:"tagline" validate:"required,min=1"`
	IsActive  *bool     `json:"isActive"`
}

func (in ProfileInput) Apply(p *models.PublicProfile) {
	set(&p.Name, in.Name)
	set(&p.Image, in.Image)
	setList(&p.Headlines, in.Headlines)
	set(&p.Tagline, in.Tagline)
	set(&p.IsActive, in.IsActive)
}

type ResumeInput struct {
	Title        *string `json:"title" validate:"required,min=1,max=255"`
	Description  *string `json:"description" validate:"required,min=1"`
	DownloadLink *string `json:"downloadLink" validate:"required,http_url"`
	FileName     *string `json:"fileName" validate:"max=255"`
	FileSize     *int64  `json:"fileSize" validate:"gte=0,cvsize"`
	FileType     *string `json:"fileType" validate:"omitempty,cvtype"`
	IsActive     *bool   `json:"isActive"`
}

func (in ResumeInput) Apply(r *models.Resume) {
	set(&r.Title, in.Title)
	set(&r.Description, in.Description)
	set(&r.DownloadLink, in.DownloadLink)
	setOptional(&r.FileName, in.FileName)
	if in.FileSize != nil {
		n := *in.FileSize
		r.FileSize = &n
	}
	setOptional(&r.FileType, in.FileType)
	set(&r.IsActive, in.IsActive)
}

type LoginInput struct {
	Email    *string `json:"email" validate:"required,email"`
	Password *string `json:"password" validate:"required,min=1"`
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// setOptional clears the field when the payload sends an empty string.
func setOptional(dst **string, v *string) {
	if v == nil {
		return
	}
	if *v == "" {
		*dst = nil
		return
	}
	s := *v
	*dst = &s
}

func setList(dst *models.StringList, v *[]string) {
	if v != nil {
		*dst = append(models.StringList{}, (*v)...)
	}
}
