package repository

import (
	"context"
	"time"

	"github.com/talkincode/storefront/internal/domain"
	"gorm.io/gorm"
)

type TokenRepository struct {
	db *gorm.DB
}

func NewTokenRepository(db *gorm.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

func (r *TokenRepository) Create(ctx context.Context, token *domain.AccessToken) error {
	return translate(r.db.WithContext(ctx).Create(token).Error, "create token")
}

func (r *TokenRepository) Find(ctx context.Context, id int64) (*domain.AccessToken, error) {
	var token domain.AccessToken
	if err := r.db.WithContext(ctx).First(&token, id).Error; err != nil {
		return nil, translate(err, "find token")
	}
	return &token, nil
}

func (r *TokenRepository) Touch(ctx context.Context, id int64, at time.Time) error {
	err := r.db.WithContext(ctx).Model(&domain.AccessToken{}).
		Where("id = ?", id).
		Update("last_used_at", at).Error
	return translate(err, "touch token")
}

func (r *TokenRepository) Revoke(ctx context.Context, id int64) error {
	return translate(r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.AccessToken{}).Error, "revoke token")
}

// PurgeExpired deletes tokens whose lifetime ended before now
func (r *TokenRepository) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	tx := r.db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&domain.AccessToken{})
	if tx.Error != nil {
		return 0, translate(tx.Error, "purge tokens")
	}
	return tx.RowsAffected, nil
}
