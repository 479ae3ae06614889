package importer

import (
	"errors"
	"strings"
)

// Kind identifies which record type a CSV file carries.
type Kind string

const (
	KindStudents     Kind = "students"
	KindDriveDetails Kind = "driveDetails"
	KindEvents       Kind = "events"
	KindAlumni       Kind = "alumni"
	KindAttendance   Kind = "attendance"
)

var (
	ErrUnknownKind = errors.New("unknown import type")
	ErrEmptyFile   = errors.New("file has no content")
	ErrNoHeader    = errors.New("file has no header row")
)

// Kinds lists every supported kind in a stable order.
var Kinds = []Kind{KindStudents, KindDriveDetails, KindEvents, KindAlumni, KindAttendance}

// ParseKind accepts the canonical names plus the snake/kebab spellings
// used in URLs ("drive-details", "drive_details").
func ParseKind(s string) (Kind, error) {
	norm := strings.ToLower(strings.NewReplacer("-", "", "_", "", " ", "").Replace(strings.TrimSpace(s)))
	for _, k := range Kinds {
		if strings.ToLower(string(k)) == norm {
			return k, nil
		}
	}
	return "", ErrUnknownKind
}

// Schema is the column contract of one kind.
type Schema struct {
	Kind     Kind
	Required []string
	Optional []string
}

// Columns returns the full header in template order.
func (s Schema) Columns() []string {
	cols := make([]string, 0, len(s.Required)+len(s.Optional))
	cols = append(cols, s.Required...)
	return append(cols, s.Optional...)
}

// Missing returns the required columns that are absent or blank in row.
func (s Schema) Missing(row Row) []string {
	var missing []string
	for _, field := range s.Required {
		if row.Get(field) == "" {
			missing = append(missing, field)
		}
	}
	return missing
}

// Columns carried by a students row that describe one drive attempt.
const (
	colDriveCompanyName     = "driveCompanyName"
	colDriveDate            = "driveDate"
	colDriveRoundsQualified = "driveRoundsQualified"
	colDriveRoundsName      = "driveRoundsName"
	colDriveFailedRound     = "driveFailedRound"
	colDriveStatus          = "driveStatus"
	colDriveOfferPackage    = "driveOfferPackage"
	colDriveNotes           = "driveNotes"
)

var studentDriveColumns = []string{
	colDriveCompanyName,
	colDriveDate,
	colDriveRoundsQualified,
	colDriveRoundsName,
	colDriveFailedRound,
	colDriveStatus,
	colDriveOfferPackage,
	colDriveNotes,
}

var studentPlacementColumns = []string{"companyName", "package", "role", "photoUrl", "offerLetterUrl", "idCardUrl"}

var schemas = map[Kind]Schema{
	KindStudents: {
		Kind:     KindStudents,
		Required: []string{"name", "rollNumber"},
		Optional: append(append([]string{"branch", "year", "batch", "email", "phone", "selected"},
			studentPlacementColumns...), studentDriveColumns...),
	},
	KindDriveDetails: {
		Kind:     KindDriveDetails,
		Required: []string{"rollNumber", "companyName", "date", "roundsQualified", "roundsName", "failedRound"},
		Optional: []string{"status", "offerPackage", "notes"},
	},
	KindEvents: {
		Kind:     KindEvents,
		Required: []string{"title", "description", "company", "startDate", "endDate"},
		Optional: []string{"notificationLink", "attachmentUrl"},
	},
	KindAlumni: {
		Kind:     KindAlumni,
		Required: []string{"name", "rollNumber", "passOutYear", "currentStatus", "address", "contactNumber", "email"},
		Optional: []string{"companyName", "designation", "package", "universityName", "courseName", "idCardUrl", "linkedinUrl"},
	},
	KindAttendance: {
		Kind:     KindAttendance,
		Required: []string{"studentName", "rollNumber"},
		Optional: []string{"eventId", "branch", "year"},
	},
}

// SchemaFor returns the column contract for k.
func SchemaFor(k Kind) (Schema, error) {
	s, ok := schemas[k]
	if !ok {
		return Schema{}, ErrUnknownKind
	}
	return s, nil
}
