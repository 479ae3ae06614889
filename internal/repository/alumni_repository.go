package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/tpo-cell/backend/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AlumniRepository struct {
	db *gorm.DB
}

func NewAlumniRepository(db *gorm.DB) *AlumniRepository {
	return &AlumniRepository{db: db}
}

func (r *AlumniRepository) WithContext(ctx context.Context) *AlumniRepository {
	return &AlumniRepository{db: r.db.WithContext(ctx)}
}

// alumniUpsertColumns are overwritten when an imported roll number already exists.
var alumniUpsertColumns = []string{
	"name", "pass_out_year", "current_status", "address", "contact_number", "email",
	"company_name", "designation", "package", "university_name", "course_name",
	"id_card_url", "linkedin_url", "updated_at",
}

type AlumniFilter struct {
	Search        string
	PassOutYear   *int
	CurrentStatus string
}

func (r *AlumniRepository) Create(alumni *domain.Alumni) error {
	return r.db.Create(alumni).Error
}

func (r *AlumniRepository) FindByID(id uuid.UUID) (*domain.Alumni, error) {
	var alumni domain.Alumni
	err := r.db.Where("id = ? AND deleted_at IS NULL", id).First(&alumni).Error
	if err != nil {
		return nil, err
	}
	return &alumni, nil
}

func (r *AlumniRepository) FindByRollNumber(rollNumber string) (*domain.Alumni, error) {
	var alumni domain.Alumni
	err := r.db.Where("roll_number = ? AND deleted_at IS NULL", rollNumber).First(&alumni).Error
	if err != nil {
		return nil, err
	}
	return &alumni, nil
}

func (r *AlumniRepository) RollNumberExists(rollNumber string, excludeID *uuid.UUID) (bool, error) {
	var count int64
	query := r.db.Model(&domain.Alumni{}).Where("roll_number = ? AND deleted_at IS NULL", rollNumber)
	if excludeID != nil {
		query = query.Where("id != ?", *excludeID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}

func (f AlumniFilter) scope(db *gorm.DB) *gorm.DB {
	db = db.Where("deleted_at IS NULL")
	if f.Search != "" {
		like := "%" + strings.ToLower(f.Search) + "%"
		db = db.Where("LOWER(name) LIKE ? OR LOWER(roll_number) LIKE ? OR LOWER(company_name) LIKE ?", like, like, like)
	}
	if f.PassOutYear != nil {
		db = db.Where("pass_out_year = ?", *f.PassOutYear)
	}
	if f.CurrentStatus != "" {
		db = db.Where("current_status = ?", f.CurrentStatus)
	}
	return db
}

func (r *AlumniRepository) List(filter AlumniFilter, page, limit int) ([]domain.Alumni, int64, error) {
	var alumni []domain.Alumni
	var total int64

	if err := r.db.Model(&domain.Alumni{}).Scopes(filter.scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := r.db.Scopes(filter.scope).Offset(offset).Limit(limit).Order("pass_out_year DESC, name ASC").Find(&alumni).Error
	return alumni, total, err
}

func (r *AlumniRepository) Update(alumni *domain.Alumni) error {
	return r.db.Save(alumni).Error
}

func (r *AlumniRepository) Delete(id uuid.UUID) error {
	return r.db.Where("id = ?", id).Delete(&domain.Alumni{}).Error
}

// UpsertByRollNumber inserts alumni or overwrites the row sharing its roll number.
func (r *AlumniRepository) UpsertByRollNumber(alumni *domain.Alumni) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "roll_number"}},
		DoUpdates: clause.AssignmentColumns(alumniUpsertColumns),
	}).Create(alumni).Error
}
