package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/tpo-cell/backend/internal/domain"
	"github.com/tpo-cell/backend/internal/importer"
	"github.com/tpo-cell/backend/internal/metrics"
	"github.com/tpo-cell/backend/internal/repository"
	"gorm.io/gorm"
)

type ImportRequest struct {
	Kind   importer.Kind
	Reader io.Reader
	DryRun bool
	// EventID is used for attendance rows without an eventId column value.
	EventID string
}

// ImportService writes reconciled batches through the repositories and
// reports what was actually stored.
type ImportService struct {
	students   *repository.StudentRepository
	alumni     *repository.AlumniRepository
	events     *repository.EventRepository
	attendance *repository.AttendanceRepository
}

func NewImportService(
	students *repository.StudentRepository,
	alumni *repository.AlumniRepository,
	events *repository.EventRepository,
	attendance *repository.AttendanceRepository,
) *ImportService {
	return &ImportService{
		students:   students,
		alumni:     alumni,
		events:     events,
		attendance: attendance,
	}
}

// Import reconciles req.Reader and, unless it is a dry run, persists the
// batch. Row-level problems end up in the result; the returned error is
// reserved for file-level failures and cancellation.
func (s *ImportService) Import(ctx context.Context, req ImportRequest) (importer.ImportResult, error) {
	start := time.Now()

	batch, err := importer.ReconcileReader(req.Reader, req.Kind)
	if err != nil {
		return importer.FailedResult(err), err
	}

	if req.DryRun {
		res := batch.Result()
		res.DryRun = true
		metrics.ObserveImport(string(req.Kind), true, res.Imported, len(res.Errors), time.Since(start))
		return res, nil
	}

	w := &batchWriter{
		students:   s.students.WithContext(ctx),
		alumni:     s.alumni.WithContext(ctx),
		events:     s.events.WithContext(ctx),
		attendance: s.attendance.WithContext(ctx),
		eventID:    req.EventID,
		known:      make(map[uuid.UUID]bool),
	}

	switch batch.Kind {
	case importer.KindStudents:
		w.saveStudents(ctx, batch.Students)
	case importer.KindDriveDetails:
		w.saveDriveGroups(ctx, batch.DriveGroups)
	case importer.KindEvents:
		w.saveEvents(ctx, batch.Events)
	case importer.KindAlumni:
		w.saveAlumni(ctx, batch.Alumni)
	case importer.KindAttendance:
		w.saveAttendance(ctx, batch.Attendance)
	}
	if err := ctx.Err(); err != nil {
		return importer.FailedResult(err), err
	}

	errs := append(append([]*importer.RowError{}, batch.Errors...), w.errs...)
	res := importer.NewResult(w.saved, batch.TotalRows, errs, batch.Warnings)

	elapsed := time.Since(start)
	metrics.ObserveImport(string(req.Kind), false, res.Imported, len(res.Errors), elapsed)
	log.Printf("[Import] kind=%s rows=%d imported=%d errors=%d warnings=%d took=%s",
		req.Kind, res.TotalRows, res.Imported, len(res.Errors), len(res.Warnings), elapsed.Round(time.Millisecond))

	return res, nil
}

// batchWriter accumulates the persisted count and storage-side row errors.
type batchWriter struct {
	students   *repository.StudentRepository
	alumni     *repository.AlumniRepository
	events     *repository.EventRepository
	attendance *repository.AttendanceRepository

	eventID string
	known   map[uuid.UUID]bool

	saved int
	errs  []*importer.RowError
}

func (w *batchWriter) fail(row int, format string, args ...interface{}) {
	w.errs = append(w.errs, &importer.RowError{Row: row, Reason: fmt.Sprintf(format, args...)})
}

func (w *batchWriter) failSave(row int, err error) {
	w.fail(row, "failed to save: %v", err)
}

func (w *batchWriter) saveStudents(ctx context.Context, students []importer.AggregatedStudent) {
	for _, agg := range students {
		if ctx.Err() != nil {
			return
		}
		student := StudentModel(agg.StudentRow)
		drives := make([]domain.Drive, 0, len(agg.Drives))
		for _, d := range agg.Drives {
			drives = append(drives, DriveModel(d))
		}
		if err := w.students.UpsertWithDrives(student, drives); err != nil {
			w.failSave(agg.Rows[0], err)
			continue
		}
		w.saved++
	}
}

func (w *batchWriter) saveDriveGroups(ctx context.Context, groups []importer.DriveGroup) {
	for _, g := range groups {
		if ctx.Err() != nil {
			return
		}
		student, err := w.students.FindByRollNumber(g.RollNumber)
		if err != nil {
			for _, d := range g.Drives {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					w.fail(d.Row, "student with roll number %s not found", g.RollNumber)
				} else {
					w.failSave(d.Row, err)
				}
			}
			continue
		}

		drives := make([]domain.Drive, 0, len(g.Drives))
		for _, d := range g.Drives {
			drives = append(drives, DriveModel(d))
		}
		if err := w.students.ImportDrives(student.ID, drives); err != nil {
			for _, d := range g.Drives {
				w.failSave(d.Row, err)
			}
			continue
		}
		w.saved += len(drives)
	}
}

func (w *batchWriter) saveEvents(ctx context.Context, events []importer.EventRow) {
	for _, e := range events {
		if ctx.Err() != nil {
			return
		}
		if err := w.events.Create(EventModel(e)); err != nil {
			w.failSave(e.Row, err)
			continue
		}
		w.saved++
	}
}

func (w *batchWriter) saveAlumni(ctx context.Context, alumni []importer.AlumniRow) {
	for _, a := range alumni {
		if ctx.Err() != nil {
			return
		}
		if err := w.alumni.UpsertByRollNumber(AlumniModel(a)); err != nil {
			w.failSave(a.Row, err)
			continue
		}
		w.saved++
	}
}

func (w *batchWriter) saveAttendance(ctx context.Context, rows []importer.AttendanceRow) {
	for _, a := range rows {
		if ctx.Err() != nil {
			return
		}
		eventID, ok := w.resolveEvent(a)
		if !ok {
			continue
		}
		if err := w.attendance.Upsert(AttendanceModel(a, eventID)); err != nil {
			w.failSave(a.Row, err)
			continue
		}
		w.saved++
	}
}

// resolveEvent picks the row's eventId, falling back to the request's,
// and checks the event exists. Failures are recorded against the row.
func (w *batchWriter) resolveEvent(a importer.AttendanceRow) (uuid.UUID, bool) {
	raw := a.EventID
	if raw == "" {
		raw = w.eventID
	}
	if raw == "" {
		w.fail(a.Row, "missing eventId")
		return uuid.Nil, false
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		w.fail(a.Row, "invalid eventId %q", raw)
		return uuid.Nil, false
	}

	exists, seen := w.known[id]
	if !seen {
		exists, err = w.events.Exists(id)
		if err != nil {
			w.failSave(a.Row, err)
			return uuid.Nil, false
		}
		w.known[id] = exists
	}
	if !exists {
		w.fail(a.Row, "event %s not found", raw)
		return uuid.Nil, false
	}
	return id, true
}
