package domain

// Status describes where the process-wide session is in its lifecycle.
// A session starts as initializing exactly once; after bootstrap settles
// it only moves between authenticated and unauthenticated.
type Status string

const (
	StatusInitializing    Status = "initializing"
	StatusAuthenticated   Status = "authenticated"
	StatusUnauthenticated Status = "unauthenticated"
	StatusError           Status = "error"
)

// Session is a snapshot of the process-wide authentication state. The
// session manager is its sole writer; everyone else receives copies.
type Session struct {
	Identity  *Identity `json:"identity"`
	Status    Status    `json:"status"`
	LastError string    `json:"last_error,omitempty"`
}

func (s Session) Authenticated() bool {
	return s.Status == StatusAuthenticated && s.Identity != nil
}

// Permissions derives the capability flags for the session's identity.
// An anonymous session holds no permissions at all.
func (s Session) Permissions() PermissionSet {
	if s.Identity == nil {
		return nil
	}
	role := s.Identity.Role
	if s.Identity.Demo {
		role = RoleMember
	}
	return PermissionsFor(role)
}
