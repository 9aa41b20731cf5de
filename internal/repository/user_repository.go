package repository

import (
	"context"
	"errors"

	"blog-backend/internal/model"

	"gorm.io/gorm"
)

type UserRepository struct {
	orm *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{orm: db}
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	return r.orm.WithContext(ctx).Create(user).Error
}

func (r *UserRepository) GetByID(ctx context.Context, id uint) (*model.User, error) {
	var u model.User
	if err := r.orm.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	if err := r.orm.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, "email = ?", email)
}

func (r *UserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, "username = ?", username)
}

func (r *UserRepository) exists(ctx context.Context, query string, args ...interface{}) (bool, error) {
	var count int64
	if err := r.orm.WithContext(ctx).Model(&model.User{}).Where(query, args...).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetByResetTriple 按 (id, otp, reset_token) 精确匹配，任一为空都视为不存在
func (r *UserRepository) GetByResetTriple(ctx context.Context, id uint, otp, token string) (*model.User, error) {
	if otp == "" || token == "" {
		return nil, gorm.ErrRecordNotFound
	}
	var u model.User
	err := r.orm.WithContext(ctx).
		Where("id = ? AND otp = ? AND reset_token = ?", id, otp, token).
		First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// SetResetCredentials 写入待使用的 OTP 与重置令牌
func (r *UserRepository) SetResetCredentials(ctx context.Context, id uint, otp, token string) error {
	return r.orm.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).
		Updates(map[string]interface{}{"otp": otp, "reset_token": token}).Error
}

// UpdatePassword 更新密码哈希并清空重置凭据
// 仅当 otp 仍为 expectedOTP 时生效，保证同一组凭据只能使用一次
func (r *UserRepository) UpdatePassword(ctx context.Context, id uint, expectedOTP, hash string) error {
	res := r.orm.WithContext(ctx).Model(&model.User{}).
		Where("id = ? AND otp = ?", id, expectedOTP).
		Updates(map[string]interface{}{"password_hash": hash, "otp": "", "reset_token": ""})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// IsNotFound 判断是否为记录不存在
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsDuplicate 判断是否为唯一约束冲突
func IsDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
