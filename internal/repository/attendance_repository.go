package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/tpo-cell/backend/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AttendanceRepository struct {
	db *gorm.DB
}

func NewAttendanceRepository(db *gorm.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

func (r *AttendanceRepository) WithContext(ctx context.Context) *AttendanceRepository {
	return &AttendanceRepository{db: r.db.WithContext(ctx)}
}

func (r *AttendanceRepository) Create(attendance *domain.Attendance) error {
	return r.db.Omit("Event").Create(attendance).Error
}

func (r *AttendanceRepository) FindByID(id uuid.UUID) (*domain.Attendance, error) {
	var attendance domain.Attendance
	err := r.db.Where("id = ?", id).First(&attendance).Error
	if err != nil {
		return nil, err
	}
	return &attendance, nil
}

func (r *AttendanceRepository) ListByEvent(eventID uuid.UUID) ([]domain.Attendance, error) {
	var attendance []domain.Attendance
	err := r.db.Where("event_id = ?", eventID).Order("roll_number ASC").Find(&attendance).Error
	return attendance, err
}

func (r *AttendanceRepository) CountByEvent(eventID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&domain.Attendance{}).Where("event_id = ?", eventID).Count(&count).Error
	return count, err
}

// Upsert records attendance once per (event, roll number); a repeat overwrites name, branch and year.
func (r *AttendanceRepository) Upsert(attendance *domain.Attendance) error {
	return r.db.Omit("Event").Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "event_id"}, {Name: "roll_number"}},
		DoUpdates: clause.AssignmentColumns([]string{"student_name", "branch", "year"}),
	}).Create(attendance).Error
}

func (r *AttendanceRepository) Delete(id uuid.UUID) error {
	result := r.db.Where("id = ?", id).Delete(&domain.Attendance{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
