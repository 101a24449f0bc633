package sqlite

import (
	"context"
	"strings"

	"github.com/aussiebroadwan/salesdesk/internal/crm/domain"
)

type recordsRepo struct {
	q querier
}

const recordColumns = `id, kind, owner_id, data, search, created_at, updated_at`

func scanRecord(row interface{ Scan(...any) error }) (domain.Record, error) {
	var (
		rec                  domain.Record
		kind, data           string
		createdAt, updatedAt string
	)
	if err := row.Scan(&rec.ID, &kind, &rec.OwnerID, &data, &rec.Search, &createdAt, &updatedAt); err != nil {
		return domain.Record{}, mapErr(err)
	}

	rec.Kind = domain.RecordKind(kind)
	rec.Data = []byte(data)

	var err error
	if rec.CreatedAt, err = parseTime(createdAt); err != nil {
		return domain.Record{}, err
	}
	if rec.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return domain.Record{}, err
	}
	return rec, nil
}

func (r *recordsRepo) CreateRecord(ctx context.Context, rec domain.Record) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO records (`+recordColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, string(rec.Kind), rec.OwnerID, string(rec.Data), rec.Search,
		formatTime(rec.CreatedAt), formatTime(rec.UpdatedAt),
	)
	return mapErr(err)
}

func (r *recordsRepo) GetRecord(ctx context.Context, kind domain.RecordKind, id string) (domain.Record, error) {
	return scanRecord(r.q.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM records WHERE kind = ? AND id = ?`, string(kind), id))
}

// escapeLike makes s match literally inside a LIKE pattern using '\' as the
// escape character.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (r *recordsRepo) ListRecords(ctx context.Context, q domain.RecordQuery) ([]domain.Record, int64, error) {
	where := []string{"kind = ?"}
	args := []any{string(q.Kind)}

	if q.OwnerID != "" {
		where = append(where, "owner_id = ?")
		args = append(args, q.OwnerID)
	}
	if s := strings.ToLower(strings.TrimSpace(q.Search)); s != "" {
		where = append(where, `search LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(s)+"%")
	}
	if q.From != nil {
		where = append(where, "created_at >= ?")
		args = append(args, formatTime(*q.From))
	}
	if q.To != nil {
		where = append(where, "created_at < ?")
		args = append(args, formatTime(*q.To))
	}
	clause := " WHERE " + strings.Join(where, " AND ")

	var total int64
	if err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM records`+clause, args...).Scan(&total); err != nil {
		return nil, 0, mapErr(err)
	}

	limit := q.Limit
	if limit <= 0 {
		limit = -1 // sqlite: no limit
	}
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+recordColumns+` FROM records`+clause+
			` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		append(args, limit, q.Offset)...)
	if err != nil {
		return nil, 0, mapErr(err)
	}
	defer rows.Close()

	var out []domain.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, mapErr(err)
	}
	return out, total, nil
}

func (r *recordsRepo) UpdateRecord(ctx context.Context, rec domain.Record) error {
	return requireOne(r.q.ExecContext(ctx, `
		UPDATE records SET data = ?, search = ?, updated_at = ?
		WHERE kind = ? AND id = ?`,
		string(rec.Data), rec.Search, formatTime(rec.UpdatedAt), string(rec.Kind), rec.ID,
	))
}

func (r *recordsRepo) DeleteRecord(ctx context.Context, kind domain.RecordKind, id string) error {
	return requireOne(r.q.ExecContext(ctx,
		`DELETE FROM records WHERE kind = ? AND id = ?`, string(kind), id))
}
