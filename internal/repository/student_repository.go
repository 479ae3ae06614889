package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/tpo-cell/backend/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StudentRepository struct {
	db *gorm.DB
}

func NewStudentRepository(db *gorm.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// WithContext returns a repository bound to ctx.
func (r *StudentRepository) WithContext(ctx context.Context) *StudentRepository {
	return &StudentRepository{db: r.db.WithContext(ctx)}
}

type StudentFilter struct {
	Search   string
	Branch   string
	Year     *int
	Batch    string
	Selected *bool
}

func (r *StudentRepository) Create(student *domain.Student) error {
	return r.db.Omit(clause.Associations).Create(student).Error
}

func (r *StudentRepository) FindByID(id uuid.UUID) (*domain.Student, error) {
	var student domain.Student
	err := r.db.Preload("Drives", func(db *gorm.DB) *gorm.DB {
		return db.Order("drives.position ASC, drives.created_at ASC")
	}).Where("id = ? AND deleted_at IS NULL", id).First(&student).Error
	if err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *StudentRepository) FindByRollNumber(rollNumber string) (*domain.Student, error) {
	var student domain.Student
	err := r.db.Where("roll_number = ? AND deleted_at IS NULL", rollNumber).First(&student).Error
	if err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *StudentRepository) RollNumberExists(rollNumber string, excludeID *uuid.UUID) (bool, error) {
	var count int64
	query := r.db.Model(&domain.Student{}).Where("roll_number = ? AND deleted_at IS NULL", rollNumber)
	if excludeID != nil {
		query = query.Where("id != ?", *excludeID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}

func (f StudentFilter) scope(db *gorm.DB) *gorm.DB {
	db = db.Where("deleted_at IS NULL")
	if f.Search != "" {
		like := "%" + strings.ToLower(f.Search) + "%"
		db = db.Where("LOWER(name) LIKE ? OR LOWER(roll_number) LIKE ? OR LOWER(email) LIKE ?", like, like, like)
	}
	if f.Branch != "" {
		db = db.Where("branch = ?", f.Branch)
	}
	if f.Year != nil {
		db = db.Where("year = ?", *f.Year)
	}
	if f.Batch != "" {
		db = db.Where("batch = ?", f.Batch)
	}
	if f.Selected != nil {
		db = db.Where("selected = ?", *f.Selected)
	}
	return db
}

func (r *StudentRepository) List(filter StudentFilter, page, limit int) ([]domain.Student, int64, error) {
	var students []domain.Student
	var total int64

	if err := r.db.Model(&domain.Student{}).Scopes(filter.scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := r.db.Scopes(filter.scope).Offset(offset).Limit(limit).Order("roll_number ASC").Find(&students).Error
	return students, total, err
}

// ListWithDrives returns every student with drives in stored order, sorted by roll number.
func (r *StudentRepository) ListWithDrives() ([]domain.Student, error) {
	var students []domain.Student
	err := r.db.Preload("Drives", func(db *gorm.DB) *gorm.DB {
		return db.Order("drives.position ASC, drives.created_at ASC")
	}).Where("deleted_at IS NULL").Order("roll_number ASC").Find(&students).Error
	return students, err
}

func (r *StudentRepository) Update(student *domain.Student) error {
	return r.db.Omit(clause.Associations).Save(student).Error
}

func (r *StudentRepository) Delete(id uuid.UUID) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("student_id = ?", id).Delete(&domain.Drive{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&domain.Student{}).Error
	})
}

// UpsertWithDrives writes student keyed on roll number, overwriting the stored
// row when one exists, and appends drives to it after the drives already
// stored. A drive matching a stored one on company and date is skipped, so
// importing the same file twice leaves the drive history unchanged. Both
// happen in one transaction. On return student.ID holds the stored row's id.
func (r *StudentRepository) UpsertWithDrives(student *domain.Student, drives []domain.Drive) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var existing domain.Student
		err := tx.Where("roll_number = ?", student.RollNumber).First(&existing).Error
		switch {
		case err == nil:
			student.ID = existing.ID
			student.CreatedAt = existing.CreatedAt
			student.DeletedAt = nil
			if err := tx.Omit(clause.Associations).Save(student).Error; err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := tx.Omit(clause.Associations).Create(student).Error; err != nil {
				return err
			}
		default:
			return err
		}

		return appendDrives(tx, student.ID, drives, true)
	})
}

// Drives

// CreateDrives stores drives after each student's existing drives, in slice order.
func (r *StudentRepository) CreateDrives(drives []domain.Drive) error {
	if len(drives) == 0 {
		return nil
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		var order []uuid.UUID
		byStudent := make(map[uuid.UUID][]domain.Drive)
		for _, d := range drives {
			if _, ok := byStudent[d.StudentID]; !ok {
				order = append(order, d.StudentID)
			}
			byStudent[d.StudentID] = append(byStudent[d.StudentID], d)
		}
		for _, id := range order {
			if err := appendDrives(tx, id, byStudent[id], false); err != nil {
				return err
			}
		}

		// hand generated ids and positions back to the caller
		seen := make(map[uuid.UUID]int)
		for i := range drives {
			id := drives[i].StudentID
			drives[i] = byStudent[id][seen[id]]
			seen[id]++
		}
		return nil
	})
}

// ImportDrives appends drives to studentID like UpsertWithDrives does,
// skipping those already stored.
func (r *StudentRepository) ImportDrives(studentID uuid.UUID, drives []domain.Drive) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return appendDrives(tx, studentID, drives, true)
	})
}

func appendDrives(tx *gorm.DB, studentID uuid.UUID, drives []domain.Drive, skipKnown bool) error {
	if len(drives) == 0 {
		return nil
	}

	var stored []domain.Drive
	if err := tx.Select("company_name", "date", "position").
		Where("student_id = ?", studentID).Find(&stored).Error; err != nil {
		return err
	}
	next := 0
	known := make(map[string]bool, len(stored))
	for _, d := range stored {
		if d.Position >= next {
			next = d.Position + 1
		}
		known[driveKey(d)] = true
	}

	batch := drives[:0:0]
	kept := make([]int, 0, len(drives))
	for i := range drives {
		if skipKnown && known[driveKey(drives[i])] {
			continue
		}
		drives[i].StudentID = studentID
		drives[i].Position = next
		next++
		batch = append(batch, drives[i])
		kept = append(kept, i)
	}
	if len(batch) == 0 {
		return nil
	}
	if err := tx.Omit("Student").Create(&batch).Error; err != nil {
		return err
	}
	for j, i := range kept {
		drives[i] = batch[j]
	}
	return nil
}

// driveKey identifies a drive attempt by company and date.
func driveKey(d domain.Drive) string {
	date := ""
	if d.Date != nil {
		date = d.Date.UTC().Format("2006-01-02")
	}
	return strings.ToLower(strings.TrimSpace(d.CompanyName)) + "|" + date
}

func (r *StudentRepository) ListDrives(studentID uuid.UUID) ([]domain.Drive, error) {
	var drives []domain.Drive
	err := r.db.Where("student_id = ?", studentID).Order("position ASC, created_at ASC").Find(&drives).Error
	return drives, err
}

// DeleteDrive removes a drive owned by studentID.
func (r *StudentRepository) DeleteDrive(studentID, driveID uuid.UUID) error {
	result := r.db.Where("id = ? AND student_id = ?", driveID, studentID).Delete(&domain.Drive{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
