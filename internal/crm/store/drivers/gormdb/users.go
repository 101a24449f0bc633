package gormdb

import (
	"context"
	"time"

	"github.com/aussiebroadwan/salesdesk/internal/crm/domain"
	"gorm.io/gorm"
)

type usersRepo struct {
	db *gorm.DB
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	var m userModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&m).Error; err != nil {
		return domain.User{}, mapErr(err)
	}
	return m.toDomain(), nil
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	var m userModel
	if err := r.db.WithContext(ctx).Where("email = ?", email).Take(&m).Error; err != nil {
		return domain.User{}, mapErr(err)
	}
	return m.toDomain(), nil
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	m := userFromDomain(u)
	return mapErr(r.db.WithContext(ctx).Create(&m).Error)
}

func (r *usersRepo) UpdateUser(ctx context.Context, id string, upd domain.UserUpdate) error {
	changes := map[string]any{"updated_at": time.Now().UTC()}
	if upd.DisplayName != nil {
		changes["display_name"] = *upd.DisplayName
	}
	if upd.PasswordHash != nil {
		changes["password_hash"] = *upd.PasswordHash
	}
	if upd.Role != nil {
		changes["role"] = string(*upd.Role)
	}
	if upd.Active != nil {
		changes["active"] = *upd.Active
	}
	if upd.EmailVerified != nil {
		changes["email_verified"] = *upd.EmailVerified
	}
	if upd.LastLoginAt != nil {
		changes["last_login_at"] = upd.LastLoginAt.UTC()
	}

	return requireOne(r.db.WithContext(ctx).
		Model(&userModel{}).
		Where("id = ?", id).
		Updates(changes))
}
