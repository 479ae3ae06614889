package dto

import (
	"time"

	"github.com/tpo-cell/backend/internal/domain"
)

type EventRequest struct {
	Title            string    `json:"title" validate:"required,max=200"`
	Description      string    `json:"description" validate:"required"`
	Company          string    `json:"company" validate:"required,max=100"`
	StartDate        time.Time `json:"start_date" validate:"required"`
	EndDate          time.Time `json:"end_date" validate:"required"`
	NotificationLink *string   `json:"notification_link" validate:"omitempty,url"`
	AttachmentURL    *string   `json:"attachment_url" validate:"omitempty,url"`
}

func (r EventRequest) Apply(e *domain.Event) {
	e.Title = r.Title
	e.Description = r.Description
	e.Company = r.Company
	e.StartDate = r.StartDate.UTC()
	e.EndDate = r.EndDate.UTC()
	e.NotificationLink = r.NotificationLink
	e.AttachmentURL = r.AttachmentURL
}

type AttendanceRequest struct {
	StudentName string `json:"student_name" validate:"required,max=100"`
	RollNumber  string `json:"roll_number" validate:"required,max=30"`
	Branch      string `json:"branch" validate:"max=50"`
	Year        int    `json:"year" validate:"omitempty,min=1,max=4"`
}

type EventDetailDTO struct {
	domain.Event
	AttendanceCount int64 `json:"attendance_count"`
}
