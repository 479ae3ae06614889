package dto

import (
	"time"

	"github.com/tpo-cell/backend/internal/domain"
)

type CreateStudentRequest struct {
	RollNumber     string   `json:"roll_number" validate:"required,max=30"`
	Name           string   `json:"name" validate:"required,max=100"`
	Branch         string   `json:"branch" validate:"max=50"`
	Year           int      `json:"year" validate:"omitempty,min=1,max=4"`
	Batch          string   `json:"batch" validate:"max=20"`
	Email          string   `json:"email" validate:"omitempty,email"`
	Phone          string   `json:"phone" validate:"max=20"`
	Selected       bool     `json:"selected"`
	CompanyName    *string  `json:"company_name" validate:"omitempty,max=100"`
	Package        *float64 `json:"package" validate:"omitempty,gte=0"`
	Role           *string  `json:"role" validate:"omitempty,max=100"`
	PhotoURL       *string  `json:"photo_url" validate:"omitempty,url"`
	OfferLetterURL *string  `json:"offer_letter_url" validate:"omitempty,url"`
	IDCardURL      *string  `json:"id_card_url" validate:"omitempty,url"`
}

func (r CreateStudentRequest) Model() *domain.Student {
	s := &domain.Student{
		RollNumber:     r.RollNumber,
		Name:           r.Name,
		Branch:         r.Branch,
		Year:           r.Year,
		Batch:          r.Batch,
		Email:          r.Email,
		Phone:          r.Phone,
		Selected:       r.Selected,
		CompanyName:    r.CompanyName,
		Package:        r.Package,
		Role:           r.Role,
		PhotoURL:       r.PhotoURL,
		OfferLetterURL: r.OfferLetterURL,
		IDCardURL:      r.IDCardURL,
	}
	clearPlacement(s)
	return s
}

// UpdateStudentRequest patches only the fields that are present.
type UpdateStudentRequest struct {
	Name           *string  `json:"name" validate:"omitempty,min=1,max=100"`
	Branch         *string  `json:"branch" validate:"omitempty,max=50"`
	Year           *int     `json:"year" validate:"omitempty,min=1,max=4"`
	Batch          *string  `json:"batch" validate:"omitempty,max=20"`
	Email          *string  `json:"email" validate:"omitempty,email"`
	Phone          *string  `json:"phone" validate:"omitempty,max=20"`
	Selected       *bool    `json:"selected"`
	CompanyName    *string  `json:"company_name" validate:"omitempty,max=100"`
	Package        *float64 `json:"package" validate:"omitempty,gte=0"`
	Role           *string  `json:"role" validate:"omitempty,max=100"`
	PhotoURL       *string  `json:"photo_url" validate:"omitempty,url"`
	OfferLetterURL *string  `json:"offer_letter_url" validate:"omitempty,url"`
	IDCardURL      *string  `json:"id_card_url" validate:"omitempty,url"`
}

func (r UpdateStudentRequest) Apply(s *domain.Student) {
	if r.Name != nil {
		s.Name = *r.Name
	}
	if r.Branch != nil {
		s.Branch = *r.Branch
	}
	if r.Year != nil {
		s.Year = *r.Year
	}
	if r.Batch != nil {
		s.Batch = *r.Batch
	}
	if r.Email != nil {
		s.Email = *r.Email
	}
	if r.Phone != nil {
		s.Phone = *r.Phone
	}
	if r.Selected != nil {
		s.Selected = *r.Selected
	}
	if r.CompanyName != nil {
		s.CompanyName = r.CompanyName
	}
	if r.Package != nil {
		s.Package = r.Package
	}
	if r.Role != nil {
		s.Role = r.Role
	}
	if r.PhotoURL != nil {
		s.PhotoURL = r.PhotoURL
	}
	if r.OfferLetterURL != nil {
		s.OfferLetterURL = r.OfferLetterURL
	}
	if r.IDCardURL != nil {
		s.IDCardURL = r.IDCardURL
	}
	clearPlacement(s)
}

// placement fields only exist for selected students
func clearPlacement(s *domain.Student) {
	if s.Selected {
		return
	}
	s.CompanyName, s.Package, s.Role = nil, nil, nil
	s.PhotoURL, s.OfferLetterURL, s.IDCardURL = nil, nil, nil
}

type CreateDriveRequest struct {
	CompanyName     string   `json:"company_name" validate:"required,max=100"`
	Date            string   `json:"date" validate:"omitempty,datetime=2006-01-02"`
	RoundsQualified int      `json:"rounds_qualified" validate:"gte=0"`
	RoundsName      string   `json:"rounds_name"`
	FailedRound     string   `json:"failed_round" validate:"max=100"`
	Status          string   `json:"status" validate:"omitempty,oneof=shortlisted 'not shortlisted'"`
	OfferPackage    *float64 `json:"offer_package" validate:"omitempty,gte=0"`
	Notes           *string  `json:"notes"`
}

// Model assumes the request has been validated.
func (r CreateDriveRequest) Model() domain.Drive {
	d := domain.Drive{
		CompanyName:     r.CompanyName,
		RoundsQualified: r.RoundsQualified,
		RoundsName:      r.RoundsName,
		FailedRound:     r.FailedRound,
		Status:          domain.DriveStatus(r.Status),
		OfferPackage:    r.OfferPackage,
		Notes:           r.Notes,
	}
	if t, err := time.Parse("2006-01-02", r.Date); err == nil {
		d.Date = &t
	}
	return d
}
