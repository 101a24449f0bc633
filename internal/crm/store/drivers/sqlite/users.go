package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/aussiebroadwan/salesdesk/internal/crm/domain"
)

type usersRepo struct {
	q querier
}

const userColumns = `id, email, display_name, password_hash, role, active, email_verified,
	created_at, updated_at, last_login_at`

func scanUser(row interface{ Scan(...any) error }) (domain.User, error) {
	var (
		u                    domain.User
		role                 string
		createdAt, updatedAt string
		lastLogin            sql.NullString
	)
	err := row.Scan(&u.ID, &u.Email, &u.DisplayName, &u.PasswordHash, &role, &u.Active,
		&u.EmailVerified, &createdAt, &updatedAt, &lastLogin)
	if err != nil {
		return domain.User{}, mapErr(err)
	}

	u.Role = domain.Role(role)
	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return domain.User{}, err
	}
	if u.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return domain.User{}, err
	}
	if u.LastLoginAt, err = parseOptionalTime(lastLogin); err != nil {
		return domain.User{}, err
	}
	return u, nil
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	return scanUser(r.q.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return scanUser(r.q.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email))
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.DisplayName, u.PasswordHash, string(u.Role),
		boolInt(u.Active), boolInt(u.EmailVerified),
		formatTime(u.CreatedAt), formatTime(u.UpdatedAt), formatOptionalTime(u.LastLoginAt),
	)
	return mapErr(err)
}

func (r *usersRepo) UpdateUser(ctx context.Context, id string, upd domain.UserUpdate) error {
	sets := []string{"updated_at = ?"}
	args := []any{formatTime(time.Now())}

	if upd.DisplayName != nil {
		sets = append(sets, "display_name = ?")
		args = append(args, *upd.DisplayName)
	}
	if upd.PasswordHash != nil {
		sets = append(sets, "password_hash = ?")
		args = append(args, *upd.PasswordHash)
	}
	if upd.Role != nil {
		sets = append(sets, "role = ?")
		args = append(args, string(*upd.Role))
	}
	if upd.Active != nil {
		sets = append(sets, "active = ?")
		args = append(args, boolInt(*upd.Active))
	}
	if upd.EmailVerified != nil {
		sets = append(sets, "email_verified = ?")
		args = append(args, boolInt(*upd.EmailVerified))
	}
	if upd.LastLoginAt != nil {
		sets = append(sets, "last_login_at = ?")
		args = append(args, formatTime(*upd.LastLoginAt))
	}

	args = append(args, id)
	return requireOne(r.q.ExecContext(ctx,
		`UPDATE users SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...))
}
