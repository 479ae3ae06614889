package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/tpo-cell/backend/internal/domain"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(user *domain.User) error {
	return r.db.Create(user).Error
}

func (r *UserRepository) FindByID(id uuid.UUID) (*domain.User, error) {
	var user domain.User
	err := r.db.Where("id = ? AND deleted_at IS NULL", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByUsernameOrEmail matches identifier against both login columns.
func (r *UserRepository) FindByUsernameOrEmail(identifier string) (*domain.User, error) {
	var user domain.User
	err := r.db.Where("(username = ? OR email = ?) AND deleted_at IS NULL", identifier, identifier).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) UsernameExists(username string) (bool, error) {
	var count int64
	err := r.db.Model(&domain.User{}).Where("username = ? AND deleted_at IS NULL", username).Count(&count).Error
	return count > 0, err
}

func (r *UserRepository) TouchLastLogin(id uuid.UUID) error {
	return r.db.Model(&domain.User{}).Where("id = ?", id).Update("last_login_at", time.Now()).Error
}
