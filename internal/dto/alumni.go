package dto

import "github.com/tpo-cell/backend/internal/domain"

type AlumniRequest struct {
	Name           string   `json:"name" validate:"required,max=100"`
	RollNumber     string   `json:"roll_number" validate:"required,max=30"`
	PassOutYear    int      `json:"pass_out_year" validate:"required,min=1900,max=2100"`
	CurrentStatus  string   `json:"current_status" validate:"required,oneof=higher_education job"`
	Address        string   `json:"address" validate:"required"`
	ContactNumber  string   `json:"contact_number" validate:"required,max=20"`
	Email          string   `json:"email" validate:"required,email"`
	CompanyName    *string  `json:"company_name" validate:"omitempty,max=100"`
	Designation    *string  `json:"designation" validate:"omitempty,max=100"`
	Package        *float64 `json:"package" validate:"omitempty,gte=0"`
	UniversityName *string  `json:"university_name" validate:"omitempty,max=150"`
	CourseName     *string  `json:"course_name" validate:"omitempty,max=150"`
	IDCardURL      *string  `json:"id_card_url" validate:"omitempty,url"`
	LinkedinURL    *string  `json:"linkedin_url" validate:"omitempty,url"`
}

// Apply copies the request onto a, replacing every field. The id is kept.
func (r AlumniRequest) Apply(a *domain.Alumni) {
	a.Name = r.Name
	a.RollNumber = r.RollNumber
	a.PassOutYear = r.PassOutYear
	a.CurrentStatus = domain.AlumniStatus(r.CurrentStatus)
	a.Address = r.Address
	a.ContactNumber = r.ContactNumber
	a.Email = r.Email
	a.CompanyName = r.CompanyName
	a.Designation = r.Designation
	a.Package = r.Package
	a.UniversityName = r.UniversityName
	a.CourseName = r.CourseName
	a.IDCardURL = r.IDCardURL
	a.LinkedinURL = r.LinkedinURL
}
