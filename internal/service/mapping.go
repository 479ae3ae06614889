package service

import (
	"github.com/google/uuid"
	"github.com/tpo-cell/backend/internal/domain"
	"github.com/tpo-cell/backend/internal/importer"
)

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func StudentModel(r importer.StudentRow) *domain.Student {
	return &domain.Student{
		RollNumber:     r.RollNumber,
		Name:           r.Name,
		Branch:         r.Branch,
		Year:           r.Year,
		Batch:          r.Batch,
		Email:          r.Email,
		Phone:          r.Phone,
		Selected:       r.Selected,
		CompanyName:    optional(r.CompanyName),
		Package:        r.Package,
		Role:           optional(r.Role),
		PhotoURL:       optional(r.PhotoURL),
		OfferLetterURL: optional(r.OfferLetterURL),
		IDCardURL:      optional(r.IDCardURL),
	}
}

// DriveModel converts a drive attempt; StudentID is left for the caller.
func DriveModel(d importer.DriveAttempt) domain.Drive {
	m := domain.Drive{
		CompanyName:     d.CompanyName,
		RoundsQualified: d.RoundsQualified,
		RoundsName:      d.RoundsName,
		FailedRound:     d.FailedRound,
		Status:          domain.DriveStatus(d.Status),
		OfferPackage:    d.OfferPackage,
		Notes:           optional(d.Notes),
	}
	if !d.Date.IsZero() {
		date := d.Date
		m.Date = &date
	}
	return m
}

func EventModel(e importer.EventRow) *domain.Event {
	return &domain.Event{
		Title:            e.Title,
		Description:      e.Description,
		Company:          e.Company,
		StartDate:        e.StartDate,
		EndDate:          e.EndDate,
		NotificationLink: optional(e.NotificationLink),
		AttachmentURL:    optional(e.AttachmentURL),
	}
}

func AlumniModel(a importer.AlumniRow) *domain.Alumni {
	return &domain.Alumni{
		Name:           a.Name,
		RollNumber:     a.RollNumber,
		PassOutYear:    a.PassOutYear,
		CurrentStatus:  domain.AlumniStatus(a.CurrentStatus),
		Address:        a.Address,
		ContactNumber:  a.ContactNumber,
		Email:          a.Email,
		CompanyName:    optional(a.CompanyName),
		Designation:    optional(a.Designation),
		Package:        a.Package,
		UniversityName: optional(a.UniversityName),
		CourseName:     optional(a.CourseName),
		IDCardURL:      optional(a.IDCardURL),
		LinkedinURL:    optional(a.LinkedinURL),
	}
}

func AttendanceModel(a importer.AttendanceRow, eventID uuid.UUID) *domain.Attendance {
	return &domain.Attendance{
		EventID:     eventID,
		RollNumber:  a.RollNumber,
		StudentName: a.StudentName,
		Branch:      a.Branch,
		Year:        a.Year,
	}
}

// StudentAggregate is the inverse of StudentModel plus DriveModel, used for exports.
func StudentAggregate(s domain.Student) importer.AggregatedStudent {
	agg := importer.AggregatedStudent{
		StudentRow: importer.StudentRow{
			RollNumber:     s.RollNumber,
			Name:           s.Name,
			Branch:         s.Branch,
			Year:           s.Year,
			Batch:          s.Batch,
			Email:          s.Email,
			Phone:          s.Phone,
			Selected:       s.Selected,
			CompanyName:    deref(s.CompanyName),
			Package:        s.Package,
			Role:           deref(s.Role),
			PhotoURL:       deref(s.PhotoURL),
			OfferLetterURL: deref(s.OfferLetterURL),
			IDCardURL:      deref(s.IDCardURL),
		},
	}
	for _, d := range s.Drives {
		da := importer.DriveAttempt{
			RollNumber:      s.RollNumber,
			CompanyName:     d.CompanyName,
			RoundsQualified: d.RoundsQualified,
			RoundsName:      d.RoundsName,
			FailedRound:     d.FailedRound,
			Status:          importer.DriveStatus(d.Status),
			OfferPackage:    d.OfferPackage,
			Notes:           deref(d.Notes),
		}
		if d.Date != nil {
			da.Date = *d.Date
		}
		agg.Drives = append(agg.Drives, da)
	}
	return agg
}
