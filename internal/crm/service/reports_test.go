package service

import (
	"context"
	"testing"
	"time"

	"github.com/aussiebroadwan/salesdesk/internal/crm/domain"
	"github.com/stretchr/testify/require"
)

func TestGenerateReport(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	env := newEnv(t)
	alice := actorOf(env.signUp(t, "alice@example.com"))
	bob := actorOf(env.signUp(t, "bob@example.com"))

	create := func(a Actor, kind domain.RecordKind, body string) {
		t.Helper()
		_, err := env.records.Create(ctx, a, kind, []byte(body))
		require.NoError(t, err)
	}

	start := env.clock.Now()
	create(alice, domain.KindDeals, `{"title":"A","stage":"proposal","value":1000,"probability":50}`)
	create(alice, domain.KindDeals, `{"title":"B","stage":"closed_won","value":500}`)
	create(alice, domain.KindDeals, `{"title":"C","stage":"closed_lost","value":200}`)
	create(alice, domain.KindDeals, `{"title":"D","stage":"closed_won","value":300}`)
	create(alice, domain.KindLeads, `{"firstName":"L","lastName":"1","status":"converted"}`)
	create(alice, domain.KindLeads, `{"firstName":"L","lastName":"2","status":"new"}`)
	create(alice, domain.KindActivities, `{"type":"call","subject":"s","completed":true}`)
	create(alice, domain.KindActivities, `{"type":"email","subject":"s"}`)
	create(bob, domain.KindDeals, `{"title":"Bob","stage":"proposal","value":99999}`)

	rep, err := env.reports.Generate(ctx, alice, domain.ReportFilter{})
	require.NoError(t, err)

	require.Equal(t, 4, rep.Counts[domain.KindDeals])
	require.Equal(t, 0, rep.Counts[domain.KindContacts])
	require.Equal(t, 1, rep.Deals.Open)
	require.Equal(t, 2, rep.Deals.Won)
	require.Equal(t, 1, rep.Deals.Lost)
	require.InDelta(t, 1000, rep.Deals.PipelineValue, 1e-9)
	require.InDelta(t, 500, rep.Deals.WeightedValue, 1e-9)
	require.InDelta(t, 800, rep.Deals.WonValue, 1e-9)
	require.InDelta(t, 800, rep.Deals.ValueByStage["closed_won"], 1e-9)
	require.InDelta(t, 2.0/3.0, rep.Deals.WinRate, 1e-9)
	require.InDelta(t, 0.5, rep.Leads.ConversionRate, 1e-9)
	require.Equal(t, 2, rep.Activities.Total)
	require.InDelta(t, 0.5, rep.Activities.CompletionRate, 1e-9)

	t.Run("kind filter", func(t *testing.T) {
		rep, err := env.reports.Generate(ctx, alice, domain.ReportFilter{Kinds: []domain.RecordKind{domain.KindLeads}})
		require.NoError(t, err)
		require.Nil(t, rep.Deals)
		require.NotNil(t, rep.Leads)
		require.Len(t, rep.Counts, 1)
	})

	t.Run("time window", func(t *testing.T) {
		from := start.Add(time.Hour)
		rep, err := env.reports.Generate(ctx, alice, domain.ReportFilter{From: &from})
		require.NoError(t, err)
		require.Zero(t, rep.Counts[domain.KindDeals])
		require.Zero(t, rep.Deals.WinRate)
	})

	t.Run("admin sees everyone", func(t *testing.T) {
		admin := Actor{UserID: "root", Role: domain.RoleAdministrator}
		rep, err := env.reports.Generate(ctx, admin, domain.ReportFilter{Kinds: []domain.RecordKind{domain.KindDeals}})
		require.NoError(t, err)
		require.Equal(t, 5, rep.Counts[domain.KindDeals])
	})

	t.Run("invalid filter", func(t *testing.T) {
		from, to := start, start
		_, err := env.reports.Generate(ctx, alice, domain.ReportFilter{From: &from, To: &to})
		require.IsType(t, &ValidationError{}, err)

		_, err = env.reports.Generate(ctx, alice, domain.ReportFilter{Kinds: []domain.RecordKind{"widgets"}})
		require.IsType(t, &ValidationError{}, err)
	})
}
