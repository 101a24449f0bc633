package gormdb

import (
	"time"

	"github.com/aussiebroadwan/salesdesk/internal/crm/domain"
)

type userModel struct {
	ID            string `gorm:"type:char(26);primaryKey"`
	Email         string `gorm:"type:varchar(320);not null;uniqueIndex"`
	DisplayName   string `gorm:"type:varchar(200);not null"`
	PasswordHash  string `gorm:"type:varchar(100);not null"`
	Role          string `gorm:"type:varchar(20);not null"`
	Active        bool   `gorm:"not null"`
	EmailVerified bool   `gorm:"not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
	LastLoginAt   *time.Time
}

func (userModel) TableName() string { return "users" }

func (m *userModel) toDomain() domain.User {
	u := domain.User{
		ID:            m.ID,
		Email:         m.Email,
		DisplayName:   m.DisplayName,
		PasswordHash:  m.PasswordHash,
		Role:          domain.Role(m.Role),
		Active:        m.Active,
		EmailVerified: m.EmailVerified,
		CreatedAt:     m.CreatedAt.UTC(),
		UpdatedAt:     m.UpdatedAt.UTC(),
	}
	if m.LastLoginAt != nil {
		t := m.LastLoginAt.UTC()
		u.LastLoginAt = &t
	}
	return u
}

func userFromDomain(u domain.User) userModel {
	return userModel{
		ID:            u.ID,
		Email:         u.Email,
		DisplayName:   u.DisplayName,
		PasswordHash:  u.PasswordHash,
		Role:          string(u.Role),
		Active:        u.Active,
		EmailVerified: u.EmailVerified,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
		LastLoginAt:   u.LastLoginAt,
	}
}

type sessionModel struct {
	ID        string    `gorm:"type:char(26);primaryKey"`
	UserID    string    `gorm:"type:char(26);not null;index:idx_sessions_user_active,priority:1"`
	User      userModel `gorm:"constraint:OnDelete:CASCADE"`
	TokenHash string    `gorm:"type:varchar(64);not null;uniqueIndex"`
	ExpiresAt time.Time `gorm:"not null"`
	Active    bool      `gorm:"not null;index:idx_sessions_user_active,priority:2"`
	CreatedAt time.Time
	ClientIP  string `gorm:"type:varchar(64);not null"`
	UserAgent string `gorm:"type:text;not null"`
}

func (sessionModel) TableName() string { return "sessions" }

func (m *sessionModel) toDomain() domain.Session {
	return domain.Session{
		ID:        m.ID,
		UserID:    m.UserID,
		TokenHash: m.TokenHash,
		ExpiresAt: m.ExpiresAt.UTC(),
		Active:    m.Active,
		CreatedAt: m.CreatedAt.UTC(),
		ClientIP:  m.ClientIP,
		UserAgent: m.UserAgent,
	}
}

func sessionFromDomain(s domain.Session) sessionModel {
	return sessionModel{
		ID:        s.ID,
		UserID:    s.UserID,
		TokenHash: s.TokenHash,
		ExpiresAt: s.ExpiresAt,
		Active:    s.Active,
		CreatedAt: s.CreatedAt,
		ClientIP:  s.ClientIP,
		UserAgent: s.UserAgent,
	}
}

type recordModel struct {
	ID        string    `gorm:"type:char(26);primaryKey"`
	Kind      string    `gorm:"type:varchar(20);not null;index:idx_records_kind_owner_created,priority:1"`
	OwnerID   string    `gorm:"type:char(26);not null;index:idx_records_kind_owner_created,priority:2"`
	Owner     userModel `gorm:"foreignKey:OwnerID"`
	Data      string    `gorm:"type:jsonb;not null"`
	Search    string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"index:idx_records_kind_owner_created,priority:3"`
	UpdatedAt time.Time
}

func (recordModel) TableName() string { return "records" }

func (m *recordModel) toDomain() domain.Record {
	return domain.Record{
		ID:        m.ID,
		Kind:      domain.RecordKind(m.Kind),
		OwnerID:   m.OwnerID,
		Data:      []byte(m.Data),
		Search:    m.Search,
		CreatedAt: m.CreatedAt.UTC(),
		UpdatedAt: m.UpdatedAt.UTC(),
	}
}

func recordFromDomain(r domain.Record) recordModel {
	return recordModel{
		ID:        r.ID,
		Kind:      string(r.Kind),
		OwnerID:   r.OwnerID,
		Data:      string(r.Data),
		Search:    r.Search,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}
