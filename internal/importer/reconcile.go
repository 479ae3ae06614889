package importer

import (
	"errors"
	"io"
	"iter"
	"strings"
)

// DriveGroup is every drive row of a driveDetails file sharing one roll
// number. Whether the student exists is checked when the group is saved.
type DriveGroup struct {
	RollNumber string
	Drives     []DriveAttempt
}

// Batch is the in-memory output of reconciling one file.
type Batch struct {
	Kind      Kind
	TotalRows int

	Students    []AggregatedStudent
	DriveGroups []DriveGroup
	Events      []EventRow
	Alumni      []AlumniRow
	Attendance  []AttendanceRow

	Errors   []*RowError
	Warnings []*RowError
}

// Len is the number of top-level records. An aggregated student counts
// once however many drives it carries; drive rows count individually.
func (b *Batch) Len() int {
	switch b.Kind {
	case KindStudents:
		return len(b.Students)
	case KindDriveDetails:
		n := 0
		for _, g := range b.DriveGroups {
			n += len(g.Drives)
		}
		return n
	case KindEvents:
		return len(b.Events)
	case KindAlumni:
		return len(b.Alumni)
	case KindAttendance:
		return len(b.Attendance)
	}
	return 0
}

// Result reports the batch as if every record were imported.
func (b *Batch) Result() ImportResult {
	return NewResult(b.Len(), b.TotalRows, b.Errors, b.Warnings)
}

// Reconcile validates every row of kind and folds the valid ones into
// records. Invalid rows are reported and skipped; they never stop the
// batch.
//
// For students, rows sharing a roll number merge into one record. The
// last row wins for scalar fields and that is intended: conflicting
// names across rows are not flagged. Drive columns accumulate in row
// order.
func Reconcile(rows iter.Seq2[Row, error], kind Kind) (*Batch, error) {
	if _, err := SchemaFor(kind); err != nil {
		return nil, err
	}

	b := &Batch{Kind: kind}
	studentIdx := make(map[string]int)
	driveIdx := make(map[string]int)

	for row, rowErr := range rows {
		b.TotalRows++
		if rowErr != nil {
			b.Errors = append(b.Errors, asRowError(row.Number, rowErr))
			continue
		}

		if v, _ := ValidateRow(row, kind); !v.OK() {
			b.Errors = append(b.Errors, asRowError(row.Number, v.Err()))
			continue
		}

		switch kind {
		case KindStudents:
			s, drive, warnings, err := decodeStudent(row)
			if err != nil {
				b.Errors = append(b.Errors, asRowError(row.Number, err))
				continue
			}
			b.Warnings = append(b.Warnings, warnings...)

			i, seen := studentIdx[s.RollNumber]
			if !seen {
				i = len(b.Students)
				studentIdx[s.RollNumber] = i
				b.Students = append(b.Students, AggregatedStudent{})
			}
			agg := &b.Students[i]
			agg.StudentRow = s
			agg.Rows = append(agg.Rows, row.Number)
			if drive != nil {
				agg.Drives = append(agg.Drives, *drive)
			}

		case KindDriveDetails:
			da, err := decodeDriveDetails(row)
			if err != nil {
				b.Errors = append(b.Errors, asRowError(row.Number, err))
				continue
			}
			i, seen := driveIdx[da.RollNumber]
			if !seen {
				i = len(b.DriveGroups)
				driveIdx[da.RollNumber] = i
				b.DriveGroups = append(b.DriveGroups, DriveGroup{RollNumber: da.RollNumber})
			}
			b.DriveGroups[i].Drives = append(b.DriveGroups[i].Drives, da)

		case KindEvents:
			e, err := decodeEvent(row)
			if err != nil {
				b.Errors = append(b.Errors, asRowError(row.Number, err))
				continue
			}
			b.Events = append(b.Events, e)

		case KindAlumni:
			a, warnings, err := decodeAlumni(row)
			if err != nil {
				b.Errors = append(b.Errors, asRowError(row.Number, err))
				continue
			}
			b.Warnings = append(b.Warnings, warnings...)
			b.Alumni = append(b.Alumni, a)

		case KindAttendance:
			a, err := decodeAttendance(row)
			if err != nil {
				b.Errors = append(b.Errors, asRowError(row.Number, err))
				continue
			}
			b.Attendance = append(b.Attendance, a)
		}
	}

	return b, nil
}

// ReconcileReader parses r and reconciles its rows. Only file-level
// problems (empty file, no header, unknown kind) are returned as errors.
func ReconcileReader(r io.Reader, kind Kind) (*Batch, error) {
	if _, err := SchemaFor(kind); err != nil {
		return nil, err
	}
	sheet, err := Parse(r)
	if err != nil {
		return nil, err
	}
	return Reconcile(sheet.Rows(), kind)
}

// Import is the whole reconciler as a pure function of the CSV text and
// the declared import type.
func Import(csvText, importType string) ImportResult {
	kind, err := ParseKind(importType)
	if err != nil {
		return FailedResult(err)
	}
	b, err := ReconcileReader(strings.NewReader(csvText), kind)
	if err != nil {
		return FailedResult(err)
	}
	return b.Result()
}

func asRowError(row int, err error) *RowError {
	var re *RowError
	if errors.As(err, &re) {
		return re
	}
	return &RowError{Row: row, Reason: err.Error()}
}
