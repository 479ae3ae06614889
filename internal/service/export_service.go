package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/tpo-cell/backend/internal/importer"
	"github.com/tpo-cell/backend/internal/repository"
)

// ExportService renders stored students in the students import layout.
type ExportService struct {
	students *repository.StudentRepository
}

func NewExportService(students *repository.StudentRepository) *ExportService {
	return &ExportService{students: students}
}

func (s *ExportService) studentRecords(ctx context.Context) ([][]string, error) {
	students, err := s.students.WithContext(ctx).ListWithDrives()
	if err != nil {
		return nil, fmt.Errorf("failed to load students: %w", err)
	}
	aggs := make([]importer.AggregatedStudent, 0, len(students))
	for _, st := range students {
		aggs = append(aggs, StudentAggregate(st))
	}
	return importer.StudentRecords(aggs), nil
}

func (s *ExportService) WriteStudentsXLSX(ctx context.Context, w io.Writer) error {
	records, err := s.studentRecords(ctx)
	if err != nil {
		return err
	}
	return importer.WriteXLSX(w, records)
}

func (s *ExportService) WriteStudentsCSV(ctx context.Context, w io.Writer) error {
	records, err := s.studentRecords(ctx)
	if err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}
