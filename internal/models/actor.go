package models

// Roles recognized by the dashboard
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Actor is the resolved identity on whose behalf an operation runs
type Actor struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	Client   string `json:"client,omitempty"`
	Email    string `json:"email,omitempty"`
}

// IsAdmin reports whether the actor has the admin role
func (a *Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// CanSee reports whether a record is visible to the actor.
// Admins see everything; clients see only their own records.
func (a *Actor) CanSee(rec *PumpRecord) bool {
	return a.IsAdmin() || rec.Client == a.Client
}
