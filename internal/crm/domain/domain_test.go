package domain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/aussiebroadwan/salesdesk/internal/crm/domain"
	"github.com/stretchr/testify/require"
)

func TestSessionIsUsable(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		session domain.Session
		want    bool
	}{
		{"active before expiry", domain.Session{Active: true, ExpiresAt: now.Add(time.Second)}, true},
		{"exactly at expiry", domain.Session{Active: true, ExpiresAt: now}, false},
		{"after expiry", domain.Session{Active: true, ExpiresAt: now.Add(-time.Second)}, false},
		{"inactive", domain.Session{Active: false, ExpiresAt: now.Add(time.Hour)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.session.IsUsable(now))
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	require.Equal(t, "admin@x.com", domain.NormalizeEmail("  Admin@X.com "))
}

func TestUserUpdateIsEmpty(t *testing.T) {
	require.True(t, domain.UserUpdate{}.IsEmpty())
	name := "A"
	require.False(t, domain.UserUpdate{DisplayName: &name}.IsEmpty())
}

func TestPublicUserOmitsHash(t *testing.T) {
	u := domain.User{ID: "1", Email: "a@x.com", PasswordHash: "$2a$12$secret", Role: domain.RoleAdministrator}
	p := u.Public()
	require.Equal(t, "a@x.com", p.Email)
	require.Equal(t, domain.RoleAdministrator, p.Role)
}

func TestDecodePayload(t *testing.T) {
	tests := []struct {
		name      string
		kind      domain.RecordKind
		body      string
		wantField string // empty means valid
	}{
		{"contact ok", domain.KindContacts, `{"firstName":"Ada","lastName":"Lovelace"}`, ""},
		{"contact missing last name", domain.KindContacts, `{"firstName":"Ada"}`, "lastName"},
		{"account ok", domain.KindAccounts, `{"name":"Acme"}`, ""},
		{"account blank name", domain.KindAccounts, `{"name":"  "}`, "name"},
		{"deal ok", domain.KindDeals, `{"title":"Big","stage":"proposal","value":1000}`, ""},
		{"deal bad stage", domain.KindDeals, `{"title":"Big","stage":"won","value":1}`, "stage"},
		{"deal negative value", domain.KindDeals, `{"title":"Big","stage":"proposal","value":-1}`, "value"},
		{"deal bad probability", domain.KindDeals, `{"title":"Big","stage":"proposal","probability":120}`, "probability"},
		{"activity ok", domain.KindActivities, `{"type":"call","subject":"Intro"}`, ""},
		{"activity bad type", domain.KindActivities, `{"type":"fax","subject":"Intro"}`, "type"},
		{"lead ok", domain.KindLeads, `{"firstName":"A","lastName":"B","status":"new"}`, ""},
		{"lead missing status", domain.KindLeads, `{"firstName":"A","lastName":"B"}`, "status"},
		{"not an object", domain.KindLeads, `[1,2]`, "body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := domain.DecodePayload(tt.kind, []byte(tt.body))
			if err == nil {
				err = p.Validate()
			}
			if tt.wantField == "" {
				require.NoError(t, err)
				return
			}
			var fe *domain.FieldError
			require.True(t, errors.As(err, &fe), "got %v", err)
			require.Equal(t, tt.wantField, fe.Field)
		})
	}
}

func TestParseRecordKind(t *testing.T) {
	k, ok := domain.ParseRecordKind("deals")
	require.True(t, ok)
	require.Equal(t, domain.KindDeals, k)

	_, ok = domain.ParseRecordKind("users")
	require.False(t, ok)
}

func TestSearchText(t *testing.T) {
	c := &domain.Contact{FirstName: "Ada", LastName: "Lovelace", Email: "ADA@x.com"}
	require.Equal(t, "ada lovelace ada@x.com", c.SearchText())
}
