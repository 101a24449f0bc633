package gormdb

import (
	"context"
	"strings"

	"github.com/aussiebroadwan/salesdesk/internal/crm/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type recordsRepo struct {
	db *gorm.DB
}

func (r *recordsRepo) CreateRecord(ctx context.Context, rec domain.Record) error {
	m := recordFromDomain(rec)
	return mapErr(r.db.WithContext(ctx).Omit(clause.Associations).Create(&m).Error)
}

func (r *recordsRepo) GetRecord(ctx context.Context, kind domain.RecordKind, id string) (domain.Record, error) {
	var m recordModel
	err := r.db.WithContext(ctx).
		Where("kind = ? AND id = ?", string(kind), id).
		Take(&m).Error
	if err != nil {
		return domain.Record{}, mapErr(err)
	}
	return m.toDomain(), nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// matching narrows a query to the filters of q. It is a scope so the count
// and the page query are built from fresh statements.
func matching(q domain.RecordQuery) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Where("kind = ?", string(q.Kind))
		if q.OwnerID != "" {
			db = db.Where("owner_id = ?", q.OwnerID)
		}
		if s := strings.ToLower(strings.TrimSpace(q.Search)); s != "" {
			db = db.Where(`search LIKE ? ESCAPE '\'`, "%"+likeEscaper.Replace(s)+"%")
		}
		if q.From != nil {
			db = db.Where("created_at >= ?", q.From.UTC())
		}
		if q.To != nil {
			db = db.Where("created_at < ?", q.To.UTC())
		}
		return db
	}
}

func (r *recordsRepo) ListRecords(ctx context.Context, q domain.RecordQuery) ([]domain.Record, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&recordModel{}).Scopes(matching(q)).Count(&total).Error; err != nil {
		return nil, 0, mapErr(err)
	}

	page := r.db.WithContext(ctx).Scopes(matching(q)).Order("created_at DESC, id DESC").Offset(q.Offset)
	if q.Limit > 0 {
		page = page.Limit(q.Limit)
	}

	var models []recordModel
	if err := page.Find(&models).Error; err != nil {
		return nil, 0, mapErr(err)
	}

	out := make([]domain.Record, 0, len(models))
	for i := range models {
		out = append(out, models[i].toDomain())
	}
	return out, total, nil
}

func (r *recordsRepo) UpdateRecord(ctx context.Context, rec domain.Record) error {
	return requireOne(r.db.WithContext(ctx).
		Model(&recordModel{}).
		Where("kind = ? AND id = ?", string(rec.Kind), rec.ID).
		Updates(map[string]any{
			"data":       string(rec.Data),
			"search":     rec.Search,
			"updated_at": rec.UpdatedAt.UTC(),
		}))
}

func (r *recordsRepo) DeleteRecord(ctx context.Context, kind domain.RecordKind, id string) error {
	return requireOne(r.db.WithContext(ctx).
		Where("kind = ? AND id = ?", string(kind), id).
		Delete(&recordModel{}))
}
