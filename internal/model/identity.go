package model

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleClient    Role = "client"
	RoleScheduler Role = "scheduler"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleClient || r == RoleScheduler
}

// Identity is the authenticated caller of an entry point. Subject is the
// client id for clients and the staff member's id for admins.
type Identity struct {
	Subject string
	Role    Role
}

func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == RoleAdmin
}

// CanActFor reports whether the caller may act on clientID's data.
func (i *Identity) CanActFor(clientID string) bool {
	if i == nil {
		return false
	}
	return i.Role == RoleAdmin || (i.Role == RoleClient && i.Subject == clientID)
}
