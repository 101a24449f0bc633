package gormdb

import (
	"context"
	"time"

	"github.com/aussiebroadwan/salesdesk/internal/crm/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type sessionsRepo struct {
	db *gorm.DB
}

func (r *sessionsRepo) CreateSession(ctx context.Context, s domain.Session) error {
	m := sessionFromDomain(s)
	return mapErr(r.db.WithContext(ctx).Omit(clause.Associations).Create(&m).Error)
}

func (r *sessionsRepo) GetActiveSessionByTokenHash(
	ctx context.Context,
	hash string,
	now time.Time,
) (domain.Session, error) {
	var m sessionModel
	err := r.db.WithContext(ctx).
		Where("token_hash = ? AND active = ? AND expires_at > ?", hash, true, now.UTC()).
		Take(&m).Error
	if err != nil {
		return domain.Session{}, mapErr(err)
	}
	return m.toDomain(), nil
}

func (r *sessionsRepo) DeactivateUserSessions(ctx context.Context, userID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&sessionModel{}).
		Where("user_id = ? AND active = ?", userID, true).
		Update("active", false)
	if res.Error != nil {
		return 0, mapErr(res.Error)
	}
	return res.RowsAffected, nil
}

func (r *sessionsRepo) DeleteStaleSessions(ctx context.Context, before time.Time) (int64, error) {
	cutoff := before.UTC()
	res := r.db.WithContext(ctx).
		Where("created_at < ? AND (active = ? OR expires_at <= ?)", cutoff, false, cutoff).
		Delete(&sessionModel{})
	if res.Error != nil {
		return 0, mapErr(res.Error)
	}
	return res.RowsAffected, nil
}
