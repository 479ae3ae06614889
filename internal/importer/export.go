package importer

import (
	"strconv"
	"time"
)

// StudentRecords lays students out in the students template columns, one
// line per drive attempt, so an export can be imported again.
func StudentRecords(students []AggregatedStudent) [][]string {
	records := [][]string{schemas[KindStudents].Columns()}
	for _, s := range students {
		base := []string{
			s.Name, s.RollNumber, s.Branch, formatInt(s.Year), s.Batch, s.Email, s.Phone,
			strconv.FormatBool(s.Selected), s.CompanyName, formatAmount(s.Package), s.Role,
			s.PhotoURL, s.OfferLetterURL, s.IDCardURL,
		}
		if len(s.Drives) == 0 {
			records = append(records, append(base, make([]string, len(studentDriveColumns))...))
			continue
		}
		for _, d := range s.Drives {
			line := append(append([]string{}, base...),
				d.CompanyName, formatDate(d.Date), strconv.Itoa(d.RoundsQualified), d.RoundsName,
				d.FailedRound, string(d.Status), formatAmount(d.OfferPackage), d.Notes,
			)
			records = append(records, line)
		}
	}
	return records
}

func formatInt(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}

func formatAmount(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02-01-2006")
}
