package core

// Actor is the authenticated user performing an operation, as carried in the
// bearer token claims.
type Actor struct {
	ID   string
	Name string
	Role string
}

func (a Actor) IsManager() bool { return a.Role == RoleManager }
