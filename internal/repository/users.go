package repository

import (
	"context"
	"time"

	"github.com/talkincode/storefront/internal/domain"
	"gorm.io/gorm"
)

type UserRepository struct {
	*Resource[domain.User]
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{
		Resource: NewResource[domain.User](db, Text("firstname"), Text("lastname"), Text("email")),
		db:       db,
	}
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err, "find user by email")
	}
	return &user, nil
}

func (r *UserRepository) EmailTaken(ctx context.Context, email string) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&domain.User{}).Where("email = ?", email).Count(&n).Error; err != nil {
		return false, translate(err, "check user email")
	}
	return n > 0, nil
}

func (r *UserRepository) PatchByEmail(ctx context.Context, email string, fields map[string]interface{}) (int64, error) {
	values := map[string]interface{}{"updated_at": time.Now()}
	for k, v := range fields {
		values[k] = v
	}
	tx := r.db.WithContext(ctx).Model(&domain.User{}).Where("email = ?", email).Updates(values)
	if tx.Error != nil {
		return 0, translate(tx.Error, "patch user")
	}
	return tx.RowsAffected, nil
}

// DeleteWithTokens removes the user and every token issued to it in one transaction
func (r *UserRepository) DeleteWithTokens(ctx context.Context, id int64) (int64, error) {
	var affected int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&domain.AccessToken{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&domain.User{})
		affected = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return 0, translate(err, "delete user")
	}
	return affected, nil
}
