package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/tpo-cell/backend/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) WithContext(ctx context.Context) *EventRepository {
	return &EventRepository{db: r.db.WithContext(ctx)}
}

func (r *EventRepository) Create(event *domain.Event) error {
	return r.db.Omit(clause.Associations).Create(event).Error
}

func (r *EventRepository) FindByID(id uuid.UUID) (*domain.Event, error) {
	var event domain.Event
	err := r.db.Where("id = ? AND deleted_at IS NULL", id).First(&event).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *EventRepository) Exists(id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.Model(&domain.Event{}).Where("id = ? AND deleted_at IS NULL", id).Count(&count).Error
	return count > 0, err
}

func (r *EventRepository) List(search, company string, page, limit int) ([]domain.Event, int64, error) {
	var events []domain.Event
	var total int64

	filter := func(db *gorm.DB) *gorm.DB {
		db = db.Where("deleted_at IS NULL")
		if search != "" {
			like := "%" + strings.ToLower(search) + "%"
			db = db.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", like, like)
		}
		if company != "" {
			db = db.Where("LOWER(company) = ?", strings.ToLower(company))
		}
		return db
	}

	if err := r.db.Model(&domain.Event{}).Scopes(filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := r.db.Scopes(filter).Offset(offset).Limit(limit).Order("start_date DESC").Find(&events).Error
	return events, total, err
}

func (r *EventRepository) Update(event *domain.Event) error {
	return r.db.Omit(clause.Associations).Save(event).Error
}

func (r *EventRepository) Delete(id uuid.UUID) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("event_id = ?", id).Delete(&domain.Attendance{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&domain.Event{}).Error
	})
}
