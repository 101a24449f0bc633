package service

import (
	"strings"

	"github.com/aussiebroadwan/salesdesk/internal/crm/domain"
)

// RolePolicy decides the role of a self-registered account.
type RolePolicy interface {
	RoleFor(email string) domain.Role
}

// AllowListPolicy grants Administrator only to explicitly listed emails.
type AllowListPolicy struct {
	admins map[string]struct{}
}

func NewAllowListPolicy(adminEmails []string) AllowListPolicy {
	admins := make(map[string]struct{}, len(adminEmails))
	for _, e := range adminEmails {
		if e = domain.NormalizeEmail(e); e != "" {
			admins[e] = struct{}{}
		}
	}
	return AllowListPolicy{admins: admins}
}

func (p AllowListPolicy) RoleFor(email string) domain.Role {
	if _, ok := p.admins[domain.NormalizeEmail(email)]; ok {
		return domain.RoleAdministrator
	}
	return domain.RoleStandardUser
}

// EmailHeuristicPolicy grants Administrator to any email containing "admin".
// Anyone can register such an address, so it is only meant for demos and
// local development.
type EmailHeuristicPolicy struct{}

func (EmailHeuristicPolicy) RoleFor(email string) domain.Role {
	if strings.Contains(domain.NormalizeEmail(email), "admin") {
		return domain.RoleAdministrator
	}
	return domain.RoleStandardUser
}
