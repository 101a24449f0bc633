package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/salesdesk/internal/crm/domain"
)

type sessionsRepo struct {
	q querier
}

func (r *sessionsRepo) CreateSession(ctx context.Context, s domain.Session) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO sessions (id, user_id, token_hash, expires_at, active, created_at, client_ip, user_agent)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.UserID, s.TokenHash, formatTime(s.ExpiresAt), boolInt(s.Active),
		formatTime(s.CreatedAt), s.ClientIP, s.UserAgent,
	)
	return mapErr(err)
}

func (r *sessionsRepo) GetActiveSessionByTokenHash(
	ctx context.Context,
	hash string,
	now time.Time,
) (domain.Session, error) {
	var (
		s                    domain.Session
		expiresAt, createdAt string
	)
	err := r.q.QueryRowContext(ctx, `
		SELECT id, user_id, token_hash, expires_at, active, created_at, client_ip, user_agent
		FROM sessions
		WHERE token_hash = ? AND active = 1 AND expires_at > ?`,
		hash, formatTime(now),
	).Scan(&s.ID, &s.UserID, &s.TokenHash, &expiresAt, &s.Active, &createdAt, &s.ClientIP, &s.UserAgent)
	if err != nil {
		return domain.Session{}, mapErr(err)
	}

	if s.ExpiresAt, err = parseTime(expiresAt); err != nil {
		return domain.Session{}, err
	}
	if s.CreatedAt, err = parseTime(createdAt); err != nil {
		return domain.Session{}, err
	}
	return s, nil
}

func (r *sessionsRepo) DeactivateUserSessions(ctx context.Context, userID string) (int64, error) {
	res, err := r.q.ExecContext(ctx,
		`UPDATE sessions SET active = 0 WHERE user_id = ? AND active = 1`, userID)
	if err != nil {
		return 0, mapErr(err)
	}
	return res.RowsAffected()
}

func (r *sessionsRepo) DeleteStaleSessions(ctx context.Context, before time.Time) (int64, error) {
	cutoff := formatTime(before)
	res, err := r.q.ExecContext(ctx, `
		DELETE FROM sessions
		WHERE created_at < ? AND (active = 0 OR expires_at <= ?)`,
		cutoff, cutoff,
	)
	if err != nil {
		return 0, mapErr(err)
	}
	return res.RowsAffected()
}
