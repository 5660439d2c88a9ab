package models

// Role gates privileged ledger operations.
type Role string

const (
	RoleFarmManager Role = "FARM_MANAGER"
	RoleFarmWorker  Role = "FARM_WORKER"
)

// User is the authenticated caller.
type User struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
	Role Role   `json:"role"`
}

// IsManager reports whether the user may update, delete and close.
func (u User) IsManager() bool {
	return u.Role == RoleFarmManager
}

// KnownRole reports whether r is one of the supported roles.
func KnownRole(r Role) bool {
	switch r {
	case RoleFarmManager, RoleFarmWorker:
		return true
	default:
		return false
	}
}
