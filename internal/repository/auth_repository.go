package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/tpo-cell/backend/internal/domain"
	"gorm.io/gorm"
)

// AuthRepository stores refresh tokens and revoked access token ids.
type AuthRepository struct {
	db *gorm.DB
}

func NewAuthRepository(db *gorm.DB) *AuthRepository {
	return &AuthRepository{db: db}
}

func (r *AuthRepository) CreateRefreshToken(token *domain.RefreshToken) error {
	return r.db.Omit("User").Create(token).Error
}

func (r *AuthRepository) FindRefreshTokenByHash(hash string) (*domain.RefreshToken, error) {
	var token domain.RefreshToken
	err := r.db.Where("token_hash = ?", hash).First(&token).Error
	if err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *AuthRepository) revoke(reason string, query interface{}, args ...interface{}) error {
	return r.db.Model(&domain.RefreshToken{}).
		Where(query, args...).
		Where("is_revoked = ?", false).
		Updates(map[string]interface{}{
			"is_revoked":     true,
			"revoked_at":     time.Now(),
			"revoked_reason": reason,
		}).Error
}

func (r *AuthRepository) RevokeRefreshToken(id uuid.UUID, reason string) error {
	return r.revoke(reason, "id = ?", id)
}

// RevokeTokenFamily revokes every token rotated from the same login.
func (r *AuthRepository) RevokeTokenFamily(familyID uuid.UUID, reason string) error {
	return r.revoke(reason, "family_id = ?", familyID)
}

func (r *AuthRepository) UpdateLastUsed(id uuid.UUID) error {
	return r.db.Model(&domain.RefreshToken{}).
		Where("id = ?", id).
		Update("last_used_at", time.Now()).Error
}

func (r *AuthRepository) BlacklistToken(jti string, userID *uuid.UUID, expiresAt time.Time, reason string) error {
	return r.db.Create(&domain.TokenBlacklist{
		JTI:       jti,
		UserID:    userID,
		ExpiresAt: expiresAt,
		Reason:    &reason,
	}).Error
}

func (r *AuthRepository) IsTokenBlacklisted(jti string) (bool, error) {
	var count int64
	err := r.db.Model(&domain.TokenBlacklist{}).Where("jti = ?", jti).Count(&count).Error
	return count > 0, err
}

// CleanupExpiredTokens drops refresh tokens and blacklist entries past their expiry.
func (r *AuthRepository) CleanupExpiredTokens() error {
	now := time.Now()
	if err := r.db.Where("expires_at < ?", now).Delete(&domain.RefreshToken{}).Error; err != nil {
		return err
	}
	return r.db.Where("expires_at < ?", now).Delete(&domain.TokenBlacklist{}).Error
}
