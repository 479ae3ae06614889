package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_ReportsJSONFieldNames(t *testing.T) {
	details := Validate(CreateStudentRequest{Year: 7, Email: "not-an-email"})
	require.Len(t, details, 4)

	fields := map[string]string{}
	for _, d := range details {
		fields[d.Field] = d.Message
	}
	assert.Equal(t, "roll_number is required", fields["roll_number"])
	assert.Equal(t, "name is required", fields["name"])
	assert.Equal(t, "year must be at most 4", fields["year"])
	assert.Equal(t, "email must be a valid email", fields["email"])
}

func TestValidate_DriveStatusAndDate(t *testing.T) {
	assert.Nil(t, Validate(CreateDriveRequest{CompanyName: "TCS", Date: "2024-08-12", Status: "not shortlisted"}))

	details := Validate(CreateDriveRequest{CompanyName: "TCS", Date: "12-08-2024", Status: "maybe"})
	require.Len(t, details, 2)
	assert.Equal(t, "date", details[0].Field)
	assert.Equal(t, "status", details[1].Field)
}

func TestValidate_EventNeedsDates(t *testing.T) {
	details := Validate(EventRequest{Title: "x", Description: "y", Company: "z"})
	require.Len(t, details, 2)
	assert.Equal(t, "start_date", details[0].Field)
	assert.Equal(t, "end_date", details[1].Field)
}

func TestCreateStudentRequest_UnselectedDropsPlacement(t *testing.T) {
	company := "TCS"
	s := CreateStudentRequest{RollNumber: "1", Name: "A", CompanyName: &company}.Model()
	assert.Nil(t, s.CompanyName)

	s = CreateStudentRequest{RollNumber: "1", Name: "A", Selected: true, CompanyName: &company}.Model()
	require.NotNil(t, s.CompanyName)
	assert.Equal(t, "TCS", *s.CompanyName)
}

func TestNewMeta(t *testing.T) {
	m := NewMeta(2, 20, 41)
	assert.Equal(t, 3, m.TotalPages)
	assert.Equal(t, int64(41), m.TotalCount)
}
