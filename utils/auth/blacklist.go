package auth

import (
	"context"
	"time"

	"github.com/dabhanushali/enacton-training/model"
	"gorm.io/gorm"
)

// BlacklistService handles JWT token revocation
type BlacklistService struct {
	db *gorm.DB
}

// NewBlacklistService creates a new blacklist service
func NewBlacklistService(db *gorm.DB) *BlacklistService {
	return &BlacklistService{db: db}
}

// WithTx returns a service that writes through tx
func (s *BlacklistService) WithTx(tx *gorm.DB) *BlacklistService {
	return &BlacklistService{db: tx}
}

// RevokeToken adds a token id to the blacklist until expiresAt
func (s *BlacklistService) RevokeToken(ctx context.Context, jti string, profileID uint, expiresAt time.Time, reason string) error {
	entry := model.JWTTokenBlacklist{
		Token:     jti,
		ProfileID: profileID,
		Reason:    reason,
		ExpiresAt: expiresAt,
	}

	return s.db.WithContext(ctx).Create(&entry).Error
}

// IsTokenRevoked checks if a token id is in the blacklist
func (s *BlacklistService) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&model.JWTTokenBlacklist{}).
		Where("token = ? AND expires_at > ?", jti, time.Now()).
		Count(&count).
		Error

	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// RevokeAllProfileTokens bumps the profile's token version, invalidating every issued token
func (s *BlacklistService) RevokeAllProfileTokens(ctx context.Context, profileID uint) error {
	return s.db.WithContext(ctx).
		Model(&model.Profile{}).
		Where("id = ?", profileID).
		UpdateColumn("token_version", gorm.Expr("token_version + ?", 1)).
		Error
}

// CleanupExpiredTokens removes expired entries and returns how many were deleted
func (s *BlacklistService) CleanupExpiredTokens(ctx context.Context) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("expires_at < ?", time.Now()).
		Delete(&model.JWTTokenBlacklist{})
	return result.RowsAffected, result.Error
}
