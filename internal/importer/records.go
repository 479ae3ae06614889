package importer

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type DriveStatus string

const (
	DriveShortlisted    DriveStatus = "shortlisted"
	DriveNotShortlisted DriveStatus = "not shortlisted"
)

type AlumniStatus string

const (
	AlumniHigherEducation AlumniStatus = "higher_education"
	AlumniJob             AlumniStatus = "job"
)

// StudentRow holds the scalar fields of a student. Placement fields are
// only meaningful when Selected is true.
type StudentRow struct {
	RollNumber     string
	Name           string
	Branch         string
	Year           int
	Batch          string
	Email          string
	Phone          string
	Selected       bool
	CompanyName    string
	Package        *float64
	Role           string
	PhotoURL       string
	OfferLetterURL string
	IDCardURL      string
}

// DriveAttempt is one company recruitment drive a student sat.
type DriveAttempt struct {
	Row             int
	RollNumber      string
	CompanyName     string
	Date            time.Time
	RoundsQualified int
	RoundsName      string
	FailedRound     string
	Status          DriveStatus
	OfferPackage    *float64
	Notes           string
}

// Rounds splits RoundsName on commas.
func (d DriveAttempt) Rounds() []string {
	var rounds []string
	for _, r := range strings.Split(d.RoundsName, ",") {
		if r = strings.TrimSpace(r); r != "" {
			rounds = append(rounds, r)
		}
	}
	return rounds
}

// AggregatedStudent is every row sharing one roll number folded into a
// single record. Scalar fields come from the last row seen; drives keep
// row order.
type AggregatedStudent struct {
	StudentRow
	Rows   []int
	Drives []DriveAttempt
}

type EventRow struct {
	Row              int
	Title            string
	Description      string
	Company          string
	StartDate        time.Time
	EndDate          time.Time
	NotificationLink string
	AttachmentURL    string
}

type AlumniRow struct {
	Row            int
	Name           string
	RollNumber     string
	PassOutYear    int
	CurrentStatus  AlumniStatus
	Address        string
	ContactNumber  string
	Email          string
	CompanyName    string
	Designation    string
	Package        *float64
	UniversityName string
	CourseName     string
	IDCardURL      string
	LinkedinURL    string
}

type AttendanceRow struct {
	Row         int
	EventID     string
	StudentName string
	RollNumber  string
	Branch      string
	Year        int
}

var dayFirstLayouts = []string{"2-1-2006", "2/1/2006", "2.1.2006", "2006-01-02"}

var instantLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// fieldDecoder reads typed values out of a row and keeps the first
// failure, so a decode function can read every column and check once.
type fieldDecoder struct {
	row Row
	err *RowError
}

func (d *fieldDecoder) fail(field, value string) {
	if d.err == nil {
		d.err = &RowError{Row: d.row.Number, Reason: fmt.Sprintf("invalid %s %q", field, value)}
	}
}

func (d *fieldDecoder) str(field string) string {
	return d.row.Get(field)
}

// intRange parses an optional integer in [lo, hi]; blank yields 0.
func (d *fieldDecoder) intRange(field string, lo, hi int) int {
	raw := d.row.Get(field)
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < lo || n > hi {
		d.fail(field, raw)
		return 0
	}
	return n
}

func (d *fieldDecoder) amount(field string) *float64 {
	raw := d.row.Get(field)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
	if err != nil || v < 0 {
		d.fail(field, raw)
		return nil
	}
	return &v
}

func (d *fieldDecoder) boolean(field string) bool {
	raw := d.row.Get(field)
	switch strings.ToLower(raw) {
	case "", "false", "no", "n", "0":
		return false
	case "true", "yes", "y", "1":
		return true
	}
	d.fail(field, raw)
	return false
}

func (d *fieldDecoder) dayFirstDate(field string) time.Time {
	raw := d.row.Get(field)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range dayFirstLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	d.fail(field, raw)
	return time.Time{}
}

func (d *fieldDecoder) instant(field string) time.Time {
	raw := d.row.Get(field)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range instantLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC()
		}
	}
	d.fail(field, raw)
	return time.Time{}
}

func (d *fieldDecoder) driveStatus(field string) DriveStatus {
	raw := d.row.Get(field)
	norm := strings.Join(strings.Fields(strings.NewReplacer("_", " ", "-", " ").Replace(strings.ToLower(raw))), " ")
	switch norm {
	case "":
		return ""
	case "shortlisted":
		return DriveShortlisted
	case "not shortlisted", "notshortlisted":
		return DriveNotShortlisted
	}
	d.fail(field, raw)
	return ""
}

func (d *fieldDecoder) alumniStatus(field string) AlumniStatus {
	raw := d.row.Get(field)
	switch strings.ReplaceAll(strings.ToLower(raw), " ", "_") {
	case "higher_education":
		return AlumniHigherEducation
	case "job":
		return AlumniJob
	}
	d.fail(field, raw)
	return ""
}

func (d *fieldDecoder) drive(company, date, rounds, roundsName, failedRound, status, offer, notes string) DriveAttempt {
	return DriveAttempt{
		Row:             d.row.Number,
		RollNumber:      d.str("rollNumber"),
		CompanyName:     d.str(company),
		Date:            d.dayFirstDate(date),
		RoundsQualified: d.intRange(rounds, 0, 1<<31-1),
		RoundsName:      d.str(roundsName),
		FailedRound:     d.str(failedRound),
		Status:          d.driveStatus(status),
		OfferPackage:    d.amount(offer),
		Notes:           d.str(notes),
	}
}

// decodeStudent returns the scalar fields of a students row and, when
// any drive column is populated, the drive attempt it carries.
func decodeStudent(row Row) (StudentRow, *DriveAttempt, []*RowError, error) {
	d := &fieldDecoder{row: row}
	s := StudentRow{
		RollNumber:     d.str("rollNumber"),
		Name:           d.str("name"),
		Branch:         d.str("branch"),
		Year:           d.intRange("year", 1, 4),
		Batch:          d.str("batch"),
		Email:          d.str("email"),
		Phone:          d.str("phone"),
		Selected:       d.boolean("selected"),
		CompanyName:    d.str("companyName"),
		Package:        d.amount("package"),
		Role:           d.str("role"),
		PhotoURL:       d.str("photoUrl"),
		OfferLetterURL: d.str("offerLetterUrl"),
		IDCardURL:      d.str("idCardUrl"),
	}

	var drive *DriveAttempt
	if row.HasAny(studentDriveColumns...) {
		da := d.drive(colDriveCompanyName, colDriveDate, colDriveRoundsQualified, colDriveRoundsName,
			colDriveFailedRound, colDriveStatus, colDriveOfferPackage, colDriveNotes)
		drive = &da
	}
	if d.err != nil {
		return StudentRow{}, nil, nil, d.err
	}

	var warnings []*RowError
	if !s.Selected && row.HasAny(studentPlacementColumns...) {
		s.CompanyName, s.Package, s.Role = "", nil, ""
		s.PhotoURL, s.OfferLetterURL, s.IDCardURL = "", "", ""
		warnings = append(warnings, &RowError{Row: row.Number, Reason: "placement fields ignored because selected is false"})
	}
	return s, drive, warnings, nil
}

func decodeDriveDetails(row Row) (DriveAttempt, error) {
	d := &fieldDecoder{row: row}
	da := d.drive("companyName", "date", "roundsQualified", "roundsName", "failedRound", "status", "offerPackage", "notes")
	if d.err != nil {
		return DriveAttempt{}, d.err
	}
	return da, nil
}

func decodeEvent(row Row) (EventRow, error) {
	d := &fieldDecoder{row: row}
	e := EventRow{
		Row:              row.Number,
		Title:            d.str("title"),
		Description:      d.str("description"),
		Company:          d.str("company"),
		StartDate:        d.instant("startDate"),
		EndDate:          d.instant("endDate"),
		NotificationLink: d.str("notificationLink"),
		AttachmentURL:    d.str("attachmentUrl"),
	}
	if d.err != nil {
		return EventRow{}, d.err
	}
	return e, nil
}

func decodeAlumni(row Row) (AlumniRow, []*RowError, error) {
	d := &fieldDecoder{row: row}
	a := AlumniRow{
		Row:            row.Number,
		Name:           d.str("name"),
		RollNumber:     d.str("rollNumber"),
		PassOutYear:    d.intRange("passOutYear", 1900, 2100),
		CurrentStatus:  d.alumniStatus("currentStatus"),
		Address:        d.str("address"),
		ContactNumber:  d.str("contactNumber"),
		Email:          d.str("email"),
		CompanyName:    d.str("companyName"),
		Designation:    d.str("designation"),
		Package:        d.amount("package"),
		UniversityName: d.str("universityName"),
		CourseName:     d.str("courseName"),
		IDCardURL:      d.str("idCardUrl"),
		LinkedinURL:    d.str("linkedinUrl"),
	}
	if d.err != nil {
		return AlumniRow{}, nil, d.err
	}
	return a, alumniWarnings(a), nil
}

// alumniWarnings reports the status-dependent columns that are expected
// but not enforced.
func alumniWarnings(a AlumniRow) []*RowError {
	var warnings []*RowError
	warn := func(reason string) {
		warnings = append(warnings, &RowError{Row: a.Row, Reason: reason})
	}
	switch a.CurrentStatus {
	case AlumniJob:
		if a.IDCardURL == "" {
			warn("idCardUrl is expected when currentStatus is job")
		}
		if a.CompanyName == "" {
			warn("companyName is expected when currentStatus is job")
		}
	case AlumniHigherEducation:
		if a.UniversityName == "" {
			warn("universityName is expected when currentStatus is higher_education")
		}
	}
	return warnings
}

func decodeAttendance(row Row) (AttendanceRow, error) {
	d := &fieldDecoder{row: row}
	a := AttendanceRow{
		Row:         row.Number,
		EventID:     d.str("eventId"),
		StudentName: d.str("studentName"),
		RollNumber:  d.str("rollNumber"),
		Branch:      d.str("branch"),
		Year:        d.intRange("year", 1, 4),
	}
	if d.err != nil {
		return AttendanceRow{}, d.err
	}
	return a, nil
}
