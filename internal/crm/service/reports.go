package service

import (
	"context"
	"encoding/json"
	"slices"
	"time"

	"github.com/aussiebroadwan/salesdesk/internal/crm/domain"
	"github.com/aussiebroadwan/salesdesk/internal/crm/store"
	"github.com/aussiebroadwan/salesdesk/pkg/slogx"
)

const reportBatchSize = 500

// ReportService aggregates the records visible to a user.
type ReportService struct {
	Store store.Store
	Now   func() time.Time
}

// Generate builds a report over records created inside the filter window.
func (s *ReportService) Generate(ctx context.Context, actor Actor, f domain.ReportFilter) (domain.Report, error) {
	if f.From != nil && f.To != nil && !f.From.Before(*f.To) {
		return domain.Report{}, invalid("to", "must be after from")
	}
	kinds := f.Kinds
	if len(kinds) == 0 {
		kinds = domain.RecordKinds
	}
	for _, k := range kinds {
		if _, ok := domain.ParseRecordKind(string(k)); !ok {
			return domain.Report{}, invalid("kinds", "contains unknown kind "+string(k))
		}
	}
	kinds = slices.Compact(slices.Clone(kinds))

	now := time.Now().UTC()
	if s.Now != nil {
		now = s.Now().UTC()
	}
	rep := domain.Report{
		GeneratedAt: now,
		Filter:      f,
		Counts:      make(map[domain.RecordKind]int, len(kinds)),
	}

	for _, kind := range kinds {
		agg := newAggregator(kind, &rep)
		n, err := s.scan(ctx, actor, kind, f, agg)
		if err != nil {
			return domain.Report{}, err
		}
		rep.Counts[kind] = n
	}
	finishReport(&rep)

	slogx.FromContext(ctx).Debug("report generated", "kinds", len(kinds))
	return rep, nil
}

// scan feeds every matching record to fn in batches and returns the count.
func (s *ReportService) scan(ctx context.Context, actor Actor, kind domain.RecordKind, f domain.ReportFilter, fn func(json.RawMessage)) (int, error) {
	q := domain.RecordQuery{Kind: kind, From: f.From, To: f.To, Limit: reportBatchSize}
	if !actor.isAdmin() {
		q.OwnerID = actor.UserID
	}

	seen := 0
	for {
		rows, total, err := s.Store.Records().ListRecords(ctx, q)
		if err != nil {
			return 0, storeErr("report scan", err)
		}
		for _, r := range rows {
			if fn != nil {
				fn(r.Data)
			}
		}
		seen += len(rows)
		if len(rows) < q.Limit || int64(seen) >= total {
			return seen, nil
		}
		q.Offset += q.Limit
	}
}

func newAggregator(kind domain.RecordKind, rep *domain.Report) func(json.RawMessage) {
	switch kind {
	case domain.KindDeals:
		rep.Deals = &domain.DealMetrics{ValueByStage: map[string]float64{}}
		m := rep.Deals
		return func(raw json.RawMessage) {
			var d domain.Deal
			if json.Unmarshal(raw, &d) != nil {
				return
			}
			m.ValueByStage[d.Stage] += d.Value
			switch d.Stage {
			case domain.StageClosedWon:
				m.Won++
				m.WonValue += d.Value
			case domain.StageClosedLost:
				m.Lost++
			default:
				m.Open++
				m.PipelineValue += d.Value
				m.WeightedValue += d.Value * float64(d.Probability) / 100
			}
		}
	case domain.KindLeads:
		rep.Leads = &domain.LeadMetrics{ByStatus: map[string]int{}}
		m := rep.Leads
		return func(raw json.RawMessage) {
			var l domain.Lead
			if json.Unmarshal(raw, &l) == nil {
				m.ByStatus[l.Status]++
			}
		}
	case domain.KindActivities:
		rep.Activities = &domain.ActivityMetrics{ByType: map[string]int{}}
		m := rep.Activities
		return func(raw json.RawMessage) {
			var a domain.Activity
			if json.Unmarshal(raw, &a) != nil {
				return
			}
			m.Total++
			m.ByType[a.Type]++
			if a.Completed {
				m.Completed++
			}
		}
	}
	return nil
}

func finishReport(rep *domain.Report) {
	if m := rep.Deals; m != nil {
		m.WinRate = ratio(m.Won, m.Won+m.Lost)
	}
	if m := rep.Leads; m != nil {
		total := 0
		for _, n := range m.ByStatus {
			total += n
		}
		m.ConversionRate = ratio(m.ByStatus["converted"], total)
	}
	if m := rep.Activities; m != nil {
		m.CompletionRate = ratio(m.Completed, m.Total)
	}
}

func ratio(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d)
}
