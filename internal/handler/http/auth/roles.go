package auth

// Role constants carried in the "role" claim.
const (
	// RoleAdmin may change favorites and clear the cache.
	RoleAdmin = "admin"
	// RoleViewer is accepted on read routes only; read routes are public anyway
	// but a viewer token lets automation share one header for everything.
	RoleViewer = "viewer"
)

// allows reports whether role satisfies required.
func allows(role, required string) bool {
	if role == RoleAdmin {
		return true
	}
	return role == required
}
