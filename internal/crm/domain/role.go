package domain

type Role string

const (
	RoleAdministrator Role = "administrator"
	RoleStandardUser  Role = "standard_user"
)

func (r Role) Valid() bool {
	return r == RoleAdministrator || r == RoleStandardUser
}
